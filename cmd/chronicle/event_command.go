package main

import (
	"strings"

	"github.com/spf13/cobra"

	"chronicle/internal/entry"
	"chronicle/internal/eventsink"
)

func newEventCommand(ctx *commandContext) *cobra.Command {
	var (
		eventIDFlag  int
		severityFlag string
		sourceFlag   string
		logNameFlag  string
	)

	cmd := &cobra.Command{
		Use:   "event <message>",
		Short: "Write a raw OS event, bypassing the pipeline",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			pipe, err := ctx.ensurePipeline()
			if err != nil {
				return err
			}

			severity := entry.LevelUnspecified
			if strings.TrimSpace(severityFlag) != "" {
				severity, err = entry.ParseLevel(severityFlag)
				if err != nil {
					return err
				}
			}

			pipe.WriteDirectEvent(eventsink.DirectEvent{
				Message:  args[0],
				EventID:  eventIDFlag,
				Severity: severity,
				Source:   sourceFlag,
				LogName:  logNameFlag,
			})
			return nil
		},
	}

	cmd.Flags().IntVar(&eventIDFlag, "event-id", 1000, "Numeric event identifier")
	cmd.Flags().StringVarP(&severityFlag, "severity", "s", "", "Severity: debug, information, warning, error, critical")
	cmd.Flags().StringVar(&sourceFlag, "source", "", "Event source override")
	cmd.Flags().StringVar(&logNameFlag, "log-name", "", "Target log name recorded with the event")

	return cmd
}
