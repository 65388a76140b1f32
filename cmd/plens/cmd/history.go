package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

func historyCmd() *cobra.Command {
	var historyLimit int

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show recent searches",
		Example: `  plens history
  plens history --limit 10 --output json`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			c := newClient()
			records, err := c.ListHistory(cmd.Context(), historyLimit)
			if err != nil {
				return err
			}
			if jsonOutput() {
				return outputJSON(records)
			}
			if len(records) == 0 {
				fmt.Println("No searches yet.")
				return nil
			}
			return printHistoryTable(records)
		},
	}
	cmd.Flags().IntVar(&historyLimit, "limit", 0, "maximum number of records (server default if 0)")

	return cmd
}
