package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/revqdev/revq/internal/output"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show task counts by status",
	Long:  "Counts are recomputed from the store on every call; nothing is cached.",
	RunE: func(cmd *cobra.Command, args []string) error {
		return statsRun()
	},
}

func init() {
	rootCmd.AddCommand(statsCmd)
}

func statsRun() error {
	svc, err := getService()
	if err != nil {
		return err
	}

	st, err := svc.Stats(context.Background())
	if err != nil {
		return err
	}

	if st.Total == 0 {
		ui.Info("No tasks yet.")
		return nil
	}

	table := ui.Table([]string{"Status", "Count"})
	_ = table.Append([]string{output.StatusColor("pending"), fmt.Sprintf("%d", st.Pending)})
	_ = table.Append([]string{output.StatusColor("in_progress"), fmt.Sprintf("%d", st.InProgress)})
	_ = table.Append([]string{output.StatusColor("completed"), fmt.Sprintf("%d", st.Completed)})
	_ = table.Append([]string{output.StatusColor("cancelled"), fmt.Sprintf("%d", st.Cancelled)})
	_ = table.Append([]string{"total", fmt.Sprintf("%d", st.Total)})
	_ = table.Render()
	return nil
}
