package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/openvo/go-regtap/tap"
	"github.com/openvo/go-regtap/votable"
)

var (
	queryFile   string
	queryAsync  bool
	queryMaxRec int
)

// queryCmd runs raw ADQL against the registry
var queryCmd = &cobra.Command{
	Use:   "query [ADQL]",
	Short: "Run raw ADQL against the registry",
	Long: `Executes an ADQL query on the registry endpoint chain and displays
the decoded table. The query comes from the argument, a file (-f), or
standard input.

Long-running queries go through the asynchronous UWS endpoint with
--async: the job is submitted, polled until it finishes, and cleaned
up afterwards.

Examples:
  regtap query "SELECT TOP 5 ivoid, res_title FROM rr.resource"
  regtap query -f query.adql --async`,
	Args: cobra.MaximumNArgs(1),
	RunE: runQuery,
}

func init() {
	queryCmd.Flags().StringVarP(&queryFile, "file", "f", "", "read the query from a file ('-' for stdin)")
	queryCmd.Flags().BoolVar(&queryAsync, "async", false, "run through the asynchronous UWS endpoint")
	queryCmd.Flags().IntVar(&queryMaxRec, "maxrec", -1, "row limit for this query (0 asks for metadata only)")
	rootCmd.AddCommand(queryCmd)
}

// queryText resolves the query from argument, file, or stdin.
func queryText(args []string) (string, error) {
	switch {
	case len(args) == 1 && queryFile != "":
		return "", errors.New("give the query as an argument or with -f, not both")
	case len(args) == 1:
		return args[0], nil
	case queryFile == "-":
		data, err := os.ReadFile("/dev/stdin")
		if err != nil {
			return "", err
		}
		return string(data), nil
	case queryFile != "":
		data, err := os.ReadFile(queryFile)
		if err != nil {
			return "", err
		}
		return string(data), nil
	default:
		return "", errors.New("no query given; pass ADQL as an argument or use -f")
	}
}

func runQuery(cmd *cobra.Command, args []string) error {
	query, err := queryText(args)
	if err != nil {
		return err
	}
	query = strings.TrimSpace(query)

	client, err := newClient()
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), requestTimeout())
	defer cancel()

	var opts []tap.QueryOption
	if queryMaxRec >= 0 {
		opts = append(opts, tap.MaxRec(queryMaxRec))
	}

	var table *votable.Table
	if queryAsync {
		table, err = runAsyncQuery(ctx, client, query, opts)
	} else {
		table, err = client.Query(ctx, query, opts...)
	}
	if err != nil {
		return err
	}

	return printTable(table)
}

// runAsyncQuery runs the query through the UWS endpoint of the first
// endpoint that accepts the job. The chain is walked by hand here:
// async jobs are stateful, so failover only applies to submission.
func runAsyncQuery(ctx context.Context, client interface{ Endpoints() []string }, query string, opts []tap.QueryOption) (*votable.Table, error) {
	var lastErr error
	for _, endpoint := range client.Endpoints() {
		tc, err := tap.New(endpoint,
			tap.WithLogger(libLogger()),
			tap.WithTimeout(cfg.Timeout()),
			tap.WithUserAgent("go-regtap-cli/"+version),
		)
		if err != nil {
			lastErr = err
			continue
		}

		fmt.Fprintf(os.Stderr, "submitting async job to %s\n", endpoint)
		table, err := tc.Async(ctx, query, opts...)
		if err == nil {
			return table, nil
		}
		lastErr = err

		var verrs *tap.ValidationErrors
		if errors.As(err, &verrs) || ctx.Err() != nil {
			break
		}
		fmt.Fprintf(os.Stderr, "async job on %s failed: %v\n", endpoint, err)
	}
	return nil, lastErr
}
