package main

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/openvo/go-regtap/cmd/regtap/ui"
)

// browseCmd runs a search and opens the result in the interactive browser
var browseCmd = &cobra.Command{
	Use:   "browse",
	Short: "Browse search results interactively",
	Long: `Runs a registry search and opens the matches in an interactive
terminal browser. Arrow keys move through the list, enter shows the
full record, esc goes back, q quits.

Takes the same constraint flags as search:
  regtap browse --keyword rosat
  regtap browse --service sia --waveband x-ray`,
	RunE: runBrowse,
}

func init() {
	browseCmd.Flags().StringSliceVarP(&searchKeywords, "keyword", "k", nil, "match against titles and descriptions (repeatable)")
	browseCmd.Flags().StringVarP(&searchService, "service", "s", "", "service type: conesearch, sia, ssa, or tap")
	browseCmd.Flags().StringVarP(&searchWaveband, "waveband", "w", "", "spectral coverage, e.g. optical or x-ray")
	browseCmd.Flags().StringVar(&searchSubject, "subject", "", "match against topic keywords")
	browseCmd.Flags().StringVar(&searchAuthor, "author", "", "match against creator names")
	browseCmd.Flags().StringVar(&searchDataModel, "datamodel", "", "exposed data model, e.g. obscore")
	rootCmd.AddCommand(browseCmd)
}

func runBrowse(cmd *cobra.Command, args []string) error {
	client, err := newClient()
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), requestTimeout())
	defer cancel()

	result, err := client.Search(ctx, searchConstraints())
	if err != nil {
		return err
	}
	if result.Len() == 0 {
		fmt.Println("No resources matched.")
		return nil
	}
	logger.Debug("opening browser",
		zap.Int("resources", result.Len()),
		zap.String("endpoint", result.Endpoint))

	program := tea.NewProgram(ui.NewBrowser(result), tea.WithAltScreen())
	_, err = program.Run()
	return err
}
