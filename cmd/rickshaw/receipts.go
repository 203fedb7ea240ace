package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/tatianab/rickshaw/internal/models"
	"github.com/tatianab/rickshaw/internal/report"
)

func newReceiptsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "receipts",
		Short: "List saved rides",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			if cfg.SaveDir == "" {
				return fmt.Errorf("no save directory configured")
			}

			receipts, err := models.ListReceipts(cfg.SaveDir)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if len(receipts) == 0 {
				fmt.Fprintf(out, "No rides saved in %s yet.\n", cfg.SaveDir)
				return nil
			}
			fmt.Fprintln(out, report.ReceiptsTable(receipts))
			return nil
		},
	}
}
