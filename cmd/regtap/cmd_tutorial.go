package main

import (
	"context"
	"fmt"

	"github.com/charmbracelet/glamour"
	"github.com/spf13/cobra"

	regtap "github.com/openvo/go-regtap"
	"github.com/openvo/go-regtap/dal"
)

var tutorialRun bool

// tutorialCmd walks through registry discovery step by step
var tutorialCmd = &cobra.Command{
	Use:   "tutorial",
	Short: "A guided walkthrough of registry discovery",
	Long: `Walks through the registry the way a new user would: find TAP
services, narrow a search by keyword and waveband, inspect one
resource's capabilities, and finally call the service you found.

By default only the explanations are shown. With --run each step's
query executes against the live registry.`,
	RunE: runTutorial,
}

func init() {
	tutorialCmd.Flags().BoolVar(&tutorialRun, "run", false, "execute each step's query against the live registry")
	rootCmd.AddCommand(tutorialCmd)
}

// tutorialStep is one section of the walkthrough: a markdown
// explanation and an optional live action.
type tutorialStep struct {
	markdown string
	action   func(ctx context.Context, client *regtap.Client) error
}

// tutorialSteps is the registry walkthrough. The queries mirror the
// classic discovery sequence: services by type, by keyword, by
// waveband, one resource in depth, then the actual call.
var tutorialSteps = []tutorialStep{
	{
		markdown: `# The VO Registry

Every archive, catalog, and query service in the Virtual Observatory
registers itself in the **IVOA Registry**. The registry is itself a
database you can query: a TAP service exposing the ` + "`rr.*`" + ` tables
(*RegTAP*), where each **resource** publishes **capabilities** (the
protocols it speaks), each reachable through one or more
**interfaces** (the access URLs).

Everything this tool does boils down to ADQL queries against those
tables. This walkthrough runs the classic discovery sequence.`,
	},
	{
		markdown: `## Step 1 - Find TAP services

Which services let me run ADQL queries? Capabilities advertise the
protocol through their ` + "`standard_id`" + `; TAP services carry
` + "`ivo://ivoa.net/std/tap`" + `.

` + "```sql" + `
SELECT ivoid, res_title, access_url
  FROM rr.resource
  NATURAL JOIN rr.capability
  NATURAL JOIN rr.interface
 WHERE standard_id LIKE 'ivo://ivoa.net/std/tap%'
   AND intf_role = 'std'
` + "```" + `

The same search through the typed API:

` + "```go" + `
result, err := regtap.Search(ctx, regtap.Constraints{
    Type: regtap.ServiceTAP,
})
` + "```",
		action: func(ctx context.Context, client *regtap.Client) error {
			return tutorialSearch(ctx, client, regtap.Constraints{Type: regtap.ServiceTAP})
		},
	},
	{
		markdown: `## Step 2 - Find cone search services for a keyword

Cone search answers "which sources lie within this circle on the
sky?". To find cone services about a topic, constrain the resource
text as well. RegTAP's ` + "`ivo_hasword`" + ` user-defined function does
word matching on titles and descriptions:

` + "```go" + `
result, err := regtap.Search(ctx, regtap.Constraints{
    Keywords: []string{"rosat"},
    Type:     regtap.ServiceConeSearch,
})
` + "```",
		action: func(ctx context.Context, client *regtap.Client) error {
			return tutorialSearch(ctx, client, regtap.Constraints{
				Keywords: []string{"rosat"},
				Type:     regtap.ServiceConeSearch,
			})
		},
	},
	{
		markdown: `## Step 3 - Find image services by waveband

Resources declare their spectral coverage in the ` + "`waveband`" + `
column as a hash-separated list ("optical#uv"). Asking for SIA (image
access) services covering the X-ray band:

` + "```go" + `
result, err := regtap.Search(ctx, regtap.Constraints{
    Type:     regtap.ServiceSIA,
    Waveband: "x-ray",
})
` + "```",
		action: func(ctx context.Context, client *regtap.Client) error {
			return tutorialSearch(ctx, client, regtap.Constraints{
				Type:     regtap.ServiceSIA,
				Waveband: "x-ray",
			})
		},
	},
	{
		markdown: `## Step 4 - Inspect one resource

A search row tells you a service exists; the full record tells you how
to talk to it. ` + "`Describe`" + ` fetches everything the registry knows
about one identifier - capabilities, interfaces, the people behind it:

` + "```go" + `
res, err := regtap.Describe(ctx, "ivo://nasa.heasarc/rosmaster")
` + "```" + `

Interfaces marked ` + "`std`" + ` follow the protocol's invocation rules;
those are the URLs you can call blind.`,
		action: func(ctx context.Context, client *regtap.Client) error {
			res, err := client.Describe(ctx, "ivo://nasa.heasarc/rosmaster")
			if err != nil {
				return err
			}
			printResource(res)
			return nil
		},
	},
	{
		markdown: `## Step 5 - Call the service you found

Discovery ends with an access URL. For a cone search service, append
` + "`RA`" + `, ` + "`DEC`" + ` and ` + "`SR`" + ` (all decimal degrees) and GET.
Around the Crab Nebula:

` + "```go" + `
svc, err := regtap.ResolveService(ctx, "ivo://nasa.heasarc/rosmaster",
    regtap.ServiceConeSearch)
table, err := dal.ConeSearch(ctx, svc.BaseURL, 83.63, 22.01, 0.5)
` + "```" + `

The answer is a VOTable like every other answer in this walkthrough -
one parser covers the whole Virtual Observatory.`,
		action: func(ctx context.Context, client *regtap.Client) error {
			svc, err := client.ResolveService(ctx, "ivo://nasa.heasarc/rosmaster", regtap.ServiceConeSearch)
			if err != nil {
				return err
			}
			fmt.Printf("resolved %s -> %s\n\n", svc.IVOID, svc.BaseURL)

			table, err := dal.ConeSearch(ctx, svc.BaseURL, 83.63, 22.01, 0.5,
				dal.WithLogger(libLogger()))
			if err != nil {
				return err
			}
			fmt.Print(table.ToText(5))
			return nil
		},
	},
	{
		markdown: `## Where to go from here

- ` + "`regtap search --help`" + ` for all constraint flags
- ` + "`regtap query`" + ` to run your own ADQL against ` + "`rr.*`" + `
- ` + "`regtap browse`" + ` for an interactive view of search results
- ` + "`regtap search --save`" + ` and ` + "`regtap diff`" + ` to watch the
  registry change over time`,
	},
}

// tutorialSearch runs a constraint search and prints the first rows.
func tutorialSearch(ctx context.Context, client *regtap.Client, cons regtap.Constraints) error {
	result, err := client.Search(ctx, cons)
	if err != nil {
		return err
	}

	limit := 5
	if result.Len() < limit {
		limit = result.Len()
	}
	for _, res := range result.Resources[:limit] {
		fmt.Printf("  %-42s %s\n", res.IVOID, res.Title)
	}
	if result.Len() > limit {
		fmt.Printf("  ... and %d more\n", result.Len()-limit)
	}
	fmt.Println()
	return nil
}

func runTutorial(cmd *cobra.Command, args []string) error {
	renderer, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(80),
	)
	if err != nil {
		return err
	}

	var client *regtap.Client
	if tutorialRun {
		if client, err = newClient(); err != nil {
			return err
		}
	}

	for _, step := range tutorialSteps {
		out, err := renderer.Render(step.markdown)
		if err != nil {
			// Styling is decoration; the walkthrough goes on in plain text.
			out = step.markdown + "\n"
		}
		fmt.Print(out)

		if tutorialRun && step.action != nil {
			ctx, cancel := context.WithTimeout(cmd.Context(), requestTimeout())
			err := step.action(ctx, client)
			cancel()
			if err != nil {
				fmt.Printf("  ⚠️  step failed: %v\n\n", err)
			}
		}
	}
	return nil
}
