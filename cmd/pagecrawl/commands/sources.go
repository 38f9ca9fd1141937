package commands

import (
	"fmt"

	"github.com/bradykim7/pagecrawl/internal/crawler/sources"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(sourcesCmd)
}

var sourcesCmd = &cobra.Command{
	Use:   "sources",
	Short: "Lists the supported source types.",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		registry := sources.Default()

		t := newTable(cmd.OutOrStdout())
		t.AppendHeader(table.Row{"Type", "Page cap", "Page 2 of https://example.com"})
		for _, st := range registry.Types() {
			src := registry[st]
			pageCap := "none"
			if src.MaxPages > 0 {
				pageCap = fmt.Sprint(src.MaxPages)
			}
			t.AppendRow(table.Row{st, pageCap, src.PageURL("https://example.com", 2)})
		}
		t.Render()
	},
}
