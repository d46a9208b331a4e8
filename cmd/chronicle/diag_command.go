package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"chronicle/internal/diag"
	"chronicle/internal/preflight"
)

func newDiagCommand(ctx *commandContext) *cobra.Command {
	var limitFlag int

	cmd := &cobra.Command{
		Use:   "diag",
		Short: "List recorded degraded-path events",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}

			store, err := diag.OpenStore(cfg.DiagnosticsDBPath(), cfg.Diagnostics.MaxRecords)
			if err != nil {
				return err
			}
			defer store.Close()

			events, err := store.Recent(cmd.Context(), limitFlag)
			if err != nil {
				return err
			}
			if len(events) == 0 {
				cmd.Println("no degraded-path events recorded")
				return nil
			}

			rows := make([][]string, 0, len(events))
			for _, evt := range events {
				rows = append(rows, []string{
					evt.At.UTC().Format("2006-01-02 15:04:05"),
					evt.Counter,
					evt.Reason,
					evt.Detail,
				})
			}
			cmd.Println(renderTable(
				[]string{"At (UTC)", "Counter", "Reason", "Detail"},
				rows,
				[]columnAlignment{alignLeft, alignLeft, alignLeft, alignLeft},
			))
			return nil
		},
	}

	cmd.Flags().IntVar(&limitFlag, "limit", 50, "Maximum events to show")
	return cmd
}

func newPreflightCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "preflight",
		Short: "Verify directories and the OS journal before first use",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}

			results := preflight.Run(cfg)
			rows := make([][]string, 0, len(results))
			failed := 0
			for _, result := range results {
				status := "ok"
				if !result.Passed {
					status = "FAIL"
					failed++
				}
				rows = append(rows, []string{result.Name, status, result.Detail})
			}
			cmd.Println(renderTable(
				[]string{"Check", "Status", "Detail"},
				rows,
				[]columnAlignment{alignLeft, alignLeft, alignLeft},
			))
			if failed > 0 {
				return fmt.Errorf("%d preflight check(s) failed", failed)
			}
			return nil
		},
	}
}
