package commands

import (
	"fmt"

	"github.com/bradykim7/pagecrawl/internal/models"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

var resultsHistory *bool

func init() {
	resultsHistory = resultsCmd.Flags().Bool("history", false, "List every stored result instead of printing the latest.")
	rootCmd.AddCommand(resultsCmd)
}

var resultsCmd = &cobra.Command{
	Use:   "results <id> [--history]",
	Short: "Prints the latest stored result of a job as JSON.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseJobID(args[0])
		if err != nil {
			return err
		}

		a, err := newApp(cmd.Context())
		if err != nil {
			return err
		}
		defer a.Close()

		job, err := a.store.GetJob(cmd.Context(), id)
		if err != nil {
			return err
		}

		results, err := a.store.GetJobResults(cmd.Context(), id)
		if err != nil {
			return err
		}
		if len(results) == 0 {
			if !job.Status.IsTerminal() {
				return fmt.Errorf("job %d has no stored results yet, it is %s", id, job.Status)
			}
			return fmt.Errorf("job %d has no stored results", id)
		}

		if !*resultsHistory {
			fmt.Fprintln(cmd.OutOrStdout(), results[0].Data)
			return nil
		}

		t := newTable(cmd.OutOrStdout())
		t.AppendHeader(table.Row{"ID", "Scraped", "Records"})
		for _, r := range results {
			count := "invalid"
			if rs, err := models.DecodeResultSet(r.Data); err == nil {
				count = fmt.Sprint(len(rs))
			}
			t.AppendRow(table.Row{r.ID, r.ScrapedAt.Local().Format("2006-01-02 15:04:05"), count})
		}
		t.Render()
		return nil
	},
}
