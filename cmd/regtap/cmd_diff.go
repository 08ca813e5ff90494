package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/openvo/go-regtap/snapshot"
)

// diffCmd compares two search snapshots
var diffCmd = &cobra.Command{
	Use:   "diff OLD NEW",
	Short: "Compare two search snapshots",
	Long: `Compares two snapshot files written by 'search --save' and reports
which resources were registered, withdrawn, or updated in between.

Example:
  regtap search --keyword rosat --save before.yaml
  ... time passes ...
  regtap search --keyword rosat --save after.yaml
  regtap diff before.yaml after.yaml`,
	Args: cobra.ExactArgs(2),
	RunE: runDiff,
}

func init() {
	rootCmd.AddCommand(diffCmd)
}

func runDiff(cmd *cobra.Command, args []string) error {
	oldSnap, err := snapshot.Load(args[0])
	if err != nil {
		return err
	}
	newSnap, err := snapshot.Load(args[1])
	if err != nil {
		return err
	}

	diff := snapshot.Compare(oldSnap, newSnap)

	if outputFormat == "json" {
		data, err := json.MarshalIndent(diff, "", "  ")
		if err != nil {
			return err
		}
		fmt.Println(string(data))
		return nil
	}

	if diff.IsEmpty() {
		fmt.Println("No changes.")
		return nil
	}

	for _, change := range diff.Added {
		fmt.Printf("+ %s  %s\n", change.IVOID, change.Title)
	}
	for _, change := range diff.Removed {
		fmt.Printf("- %s  %s\n", change.IVOID, change.Title)
	}
	for _, update := range diff.Updated {
		fmt.Printf("~ %s  %s (%s -> %s)\n", update.IVOID, update.Title,
			update.OldUpdated.Format("2006-01-02"), update.NewUpdated.Format("2006-01-02"))
	}
	fmt.Printf("\n%s\n", diff.Summary())
	return nil
}
