package main

import (
	"github.com/spf13/cobra"

	"github.com/openvo/go-regtap/votable"
)

// parseCmd decodes a local VOTable file
var parseCmd = &cobra.Command{
	Use:   "parse FILE",
	Short: "Decode a local VOTable file and display it",
	Long: `Parses a VOTable document from disk and displays the first result
table. Useful for inspecting saved query results or service responses
captured with curl - nothing here touches the network.

Example:
  regtap parse result.vot`,
	Args: cobra.ExactArgs(1),
	RunE: runParse,
}

func init() {
	rootCmd.AddCommand(parseCmd)
}

func runParse(cmd *cobra.Command, args []string) error {
	doc, err := votable.ParseFile(args[0])
	if err != nil {
		return err
	}
	table, err := doc.FirstTable()
	if err != nil {
		return err
	}
	return printTable(table)
}
