package main

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/openvo/go-regtap/tap"
)

var endpointsProbe bool

// endpointsCmd lists the configured registry mirrors
var endpointsCmd = &cobra.Command{
	Use:   "endpoints",
	Short: "List the configured registry endpoints",
	Long: `Lists the registry mirrors the client would try, in order. With
--probe, each endpoint's VOSI availability document is fetched
concurrently and its status reported.

Example:
  regtap endpoints --probe`,
	RunE: runEndpoints,
}

func init() {
	endpointsCmd.Flags().BoolVar(&endpointsProbe, "probe", false, "check each endpoint's availability")
	rootCmd.AddCommand(endpointsCmd)
}

// probeResult is one endpoint's availability report.
type probeResult struct {
	url     string
	up      bool
	note    string
	elapsed time.Duration
	err     error
}

// probeEndpoints checks every endpoint's VOSI availability, at most
// four at a time. Results come back in input order; a failed probe is
// a result, not an error.
func probeEndpoints(ctx context.Context, urls []string, timeout time.Duration) []probeResult {
	results := make([]probeResult, len(urls))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(4)

	var mu sync.Mutex
	for i, url := range urls {
		i, url := i, url
		g.Go(func() error {
			r := probeOne(ctx, url, timeout)
			mu.Lock()
			results[i] = r
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()

	return results
}

// probeOne checks a single endpoint.
func probeOne(ctx context.Context, url string, timeout time.Duration) probeResult {
	result := probeResult{url: url}

	client, err := tap.New(url,
		tap.WithTimeout(timeout),
		tap.WithUserAgent("go-regtap-cli/"+version),
	)
	if err != nil {
		result.err = err
		return result
	}

	start := time.Now()
	avail, err := client.Availability(ctx)
	result.elapsed = time.Since(start)
	if err != nil {
		result.err = err
		return result
	}

	result.up = avail.Available
	result.note = avail.Note
	return result
}

func runEndpoints(cmd *cobra.Command, args []string) error {
	client, err := newClient()
	if err != nil {
		return err
	}
	urls := client.Endpoints()

	if !endpointsProbe {
		for i, url := range urls {
			fmt.Printf("%d. %s\n", i+1, url)
		}
		return nil
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), requestTimeout())
	defer cancel()

	for i, r := range probeEndpoints(ctx, urls, cfg.Timeout()) {
		switch {
		case r.err != nil:
			fmt.Printf("%d. ❌ %s (%v)\n", i+1, r.url, r.err)
		case !r.up:
			fmt.Printf("%d. ⚠️  %s reports itself unavailable", i+1, r.url)
			if r.note != "" {
				fmt.Printf(": %s", r.note)
			}
			fmt.Println()
		default:
			fmt.Printf("%d. ✅ %s (%s)\n", i+1, r.url, r.elapsed.Round(time.Millisecond))
		}
	}
	return nil
}
