package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"chronicle/internal/entry"
	"chronicle/internal/pipeline"
)

func newEmitCommand(ctx *commandContext) *cobra.Command {
	var (
		levelFlag       string
		correlationFlag string
		errorTextFlag   string
		dataFlags       []string
	)

	cmd := &cobra.Command{
		Use:   "emit <message>",
		Short: "Emit one entry through the pipeline",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			pipe, err := ctx.ensurePipeline()
			if err != nil {
				return err
			}

			level := entry.LevelUnspecified
			if strings.TrimSpace(levelFlag) != "" {
				level, err = entry.ParseLevel(levelFlag)
				if err != nil {
					return err
				}
			}

			data, err := parseDataFlags(dataFlags)
			if err != nil {
				return err
			}

			msg := pipeline.Message{
				Text:          args[0],
				Level:         level,
				CorrelationID: correlationFlag,
				Data:          data,
			}
			if text := strings.TrimSpace(errorTextFlag); text != "" {
				msg.Err = errors.New(text)
			}

			pipe.Emit(cmd.Context(), msg)
			return nil
		},
	}

	cmd.Flags().StringVarP(&levelFlag, "level", "l", "", "Severity: debug, information, warning, error, critical")
	cmd.Flags().StringVar(&correlationFlag, "correlation-id", "", "Explicit correlation id")
	cmd.Flags().StringVar(&errorTextFlag, "error-text", "", "Attach an exception block with this message")
	cmd.Flags().StringArrayVarP(&dataFlags, "data", "d", nil, "Additional data as key=value (repeatable, order preserved)")

	return cmd
}

// parseDataFlags converts repeated key=value flags into ordered fields.
func parseDataFlags(raw []string) (entry.Fields, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	fields := make(entry.Fields, 0, len(raw))
	for _, item := range raw {
		key, value, found := strings.Cut(item, "=")
		if !found || strings.TrimSpace(key) == "" {
			return nil, fmt.Errorf("invalid --data %q: expected key=value", item)
		}
		fields = append(fields, entry.String(strings.TrimSpace(key), value))
	}
	return fields, nil
}
