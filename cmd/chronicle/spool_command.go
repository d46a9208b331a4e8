package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"chronicle/internal/spool"
)

func newSpoolCommand(ctx *commandContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "spool",
		Short: "Inspect durably queued SIEM deliveries",
	}
	cmd.AddCommand(newSpoolListCommand(ctx))
	return cmd
}

func newSpoolListCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List spooled items awaiting redelivery",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}

			items, err := spool.List(cfg.Paths.SpoolDir)
			if err != nil {
				return err
			}
			if len(items) == 0 {
				cmd.Println("spool is empty")
				return nil
			}

			rows := make([][]string, 0, len(items))
			for _, info := range items {
				attempts := "?"
				message := "(unreadable)"
				if item, err := spool.Load(info.Path); err == nil && item.Entry != nil {
					attempts = fmt.Sprintf("%d", item.Attempts)
					message = item.Entry.Message
				}
				rows = append(rows, []string{
					info.Name,
					attempts,
					info.Modified.UTC().Format("2006-01-02 15:04:05"),
					message,
				})
			}

			cmd.Println(renderTable(
				[]string{"Item", "Attempts", "Queued (UTC)", "Message"},
				rows,
				[]columnAlignment{alignLeft, alignRight, alignLeft, alignLeft},
			))
			return nil
		},
	}
}
