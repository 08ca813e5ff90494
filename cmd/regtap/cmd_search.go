package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	regtap "github.com/openvo/go-regtap"
	"github.com/openvo/go-regtap/snapshot"
)

var (
	searchKeywords  []string
	searchService   string
	searchWaveband  string
	searchSubject   string
	searchAuthor    string
	searchDataModel string
	searchSave      string
)

// searchCmd finds registry resources matching the constraint flags
var searchCmd = &cobra.Command{
	Use:   "search",
	Short: "Find registry resources",
	Long: `Searches the relational registry for resources matching the given
constraints. Constraints compose with AND; at least one is required.

Examples:
  regtap search --keyword rosat
  regtap search --keyword quasar --service conesearch
  regtap search --service sia --waveband x-ray
  regtap search --author Voges --save rosat.yaml`,
	RunE: runSearch,
}

func init() {
	searchCmd.Flags().StringSliceVarP(&searchKeywords, "keyword", "k", nil, "match against titles and descriptions (repeatable)")
	searchCmd.Flags().StringVarP(&searchService, "service", "s", "", "service type: conesearch, sia, ssa, or tap")
	searchCmd.Flags().StringVarP(&searchWaveband, "waveband", "w", "", "spectral coverage, e.g. optical or x-ray")
	searchCmd.Flags().StringVar(&searchSubject, "subject", "", "match against topic keywords")
	searchCmd.Flags().StringVar(&searchAuthor, "author", "", "match against creator names")
	searchCmd.Flags().StringVar(&searchDataModel, "datamodel", "", "exposed data model, e.g. obscore")
	searchCmd.Flags().StringVar(&searchSave, "save", "", "write the result as a snapshot to this file")
	rootCmd.AddCommand(searchCmd)
}

func searchConstraints() regtap.Constraints {
	return regtap.Constraints{
		Keywords:  searchKeywords,
		Type:      regtap.ServiceType(searchService),
		Waveband:  searchWaveband,
		Subject:   searchSubject,
		Author:    searchAuthor,
		DataModel: searchDataModel,
	}
}

func runSearch(cmd *cobra.Command, args []string) error {
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
	logger.Debug("search finished",
		zap.Int("resources", result.Len()),
		zap.String("endpoint", result.Endpoint))

	if err := printSearchResult(result); err != nil {
		return err
	}

	if searchSave != "" {
		snap := snapshot.FromResult(result)
		if err := snap.Save(searchSave); err != nil {
			return err
		}
		fmt.Printf("Snapshot of %d resources written to %s\n", snap.Len(), searchSave)
	}
	return nil
}
