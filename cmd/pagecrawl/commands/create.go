package commands

import (
	"fmt"

	"github.com/bradykim7/pagecrawl/internal/crawler/sources"
	"github.com/bradykim7/pagecrawl/internal/models"
	"github.com/spf13/cobra"
)

var createType *string

func init() {
	createType = createCmd.Flags().StringP("type", "t", string(models.SourceTypeQuotes), "The source type used to parse the pages.")
	rootCmd.AddCommand(createCmd)
}

var createCmd = &cobra.Command{
	Use:   "create <name> <url> [--type quotes|news]",
	Short: "Creates a pending scrape job.",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		sourceType := models.SourceType(*createType)
		if _, err := sources.Default().Lookup(sourceType); err != nil {
			return err
		}

		a, err := newApp(cmd.Context())
		if err != nil {
			return err
		}
		defer a.Close()

		job := models.NewJob(args[0], args[1], sourceType)
		if err := a.store.CreateJob(cmd.Context(), job); err != nil {
			return err
		}

		fmt.Fprintf(cmd.OutOrStdout(), "Created job #%d %s\n", job.ID, job.Name)
		return nil
	},
}
