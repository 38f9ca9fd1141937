package commands

import (
	"fmt"

	"github.com/bradykim7/pagecrawl/internal/models"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

var listStatus *string

func init() {
	listStatus = listCmd.Flags().StringP("status", "s", "", "Only list jobs with this status.")
	rootCmd.AddCommand(listCmd)
}

var listCmd = &cobra.Command{
	Use:   "list [--status pending|running|completed|failed]",
	Short: "Lists scrape jobs, newest first.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		status := models.JobStatus(*listStatus)
		if status != "" && !status.Valid() {
			return fmt.Errorf("invalid status %q", status)
		}

		a, err := newApp(cmd.Context())
		if err != nil {
			return err
		}
		defer a.Close()

		jobs, err := a.store.ListJobs(cmd.Context(), status)
		if err != nil {
			return err
		}

		t := newTable(cmd.OutOrStdout())
		t.AppendHeader(table.Row{"ID", "Name", "Type", "Status", "URL", "Created"})
		for _, job := range jobs {
			t.AppendRow(table.Row{
				job.ID,
				job.Name,
				job.SourceType,
				job.Status,
				job.SourceURL,
				job.CreatedAt.Local().Format("2006-01-02 15:04:05"),
			})
		}
		t.Render()
		return nil
	},
}
