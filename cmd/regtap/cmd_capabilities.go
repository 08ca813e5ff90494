package main

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/openvo/go-regtap/tap"
)

// capabilitiesCmd fetches VOSI capability metadata from a service
var capabilitiesCmd = &cobra.Command{
	Use:   "capabilities BASEURL",
	Short: "List the capabilities a TAP service publishes",
	Long: `Fetches the VOSI capabilities document of a service and lists the
protocols it speaks with their access URLs.

Example:
  regtap capabilities https://reg.g-vo.org/tap`,
	Args: cobra.ExactArgs(1),
	RunE: runCapabilities,
}

func init() {
	rootCmd.AddCommand(capabilitiesCmd)
}

func runCapabilities(cmd *cobra.Command, args []string) error {
	client, err := tap.New(args[0],
		tap.WithLogger(libLogger()),
		tap.WithTimeout(cfg.Timeout()),
		tap.WithUserAgent("go-regtap-cli/"+version),
	)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), requestTimeout())
	defer cancel()

	caps, err := client.Capabilities(ctx)
	if err != nil {
		return err
	}

	if outputFormat == "json" {
		data, err := json.MarshalIndent(caps, "", "  ")
		if err != nil {
			return err
		}
		fmt.Println(string(data))
		return nil
	}

	for _, capability := range caps {
		fmt.Println(capability.StandardID)
		for _, intf := range capability.Interfaces {
			marker := " "
			if intf.Role == "std" {
				marker = "*"
			}
			for _, u := range intf.AccessURLs {
				fmt.Printf("  %s %s\n", marker, u.URL)
			}
		}
	}
	fmt.Printf("\n%d capabilities\n", len(caps))
	return nil
}
