package main

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/openvo/go-regtap/dal"
)

var (
	coneRA        float64
	coneDec       float64
	coneRadius    float64
	coneVerbosity int
)

// coneCmd calls a cone search service directly
var coneCmd = &cobra.Command{
	Use:   "cone ACCESSURL",
	Short: "Call a cone search service",
	Long: `Queries a cone search service for sources around a position. The
access URL usually comes out of 'regtap search' or 'regtap describe';
positions and the radius are decimal degrees (ICRS).

Example:
  regtap cone https://heasarc.gsfc.nasa.gov/xamin/vo/cone?table=rosmaster \
      --ra 83.63 --dec 22.01 --radius 0.5`,
	Args: cobra.ExactArgs(1),
	RunE: runCone,
}

func init() {
	coneCmd.Flags().Float64Var(&coneRA, "ra", 0, "right ascension in degrees")
	coneCmd.Flags().Float64Var(&coneDec, "dec", 0, "declination in degrees")
	coneCmd.Flags().Float64Var(&coneRadius, "radius", 0, "search radius in degrees")
	coneCmd.Flags().IntVar(&coneVerbosity, "verbosity", -1, "VERB column verbosity: 1 minimal, 2 standard, 3 everything")
	_ = coneCmd.MarkFlagRequired("ra")
	_ = coneCmd.MarkFlagRequired("dec")
	_ = coneCmd.MarkFlagRequired("radius")
	rootCmd.AddCommand(coneCmd)
}

func runCone(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithTimeout(cmd.Context(), requestTimeout())
	defer cancel()

	opts := []dal.Option{
		dal.WithLogger(libLogger()),
		dal.WithUserAgent("go-regtap-cli/" + version),
	}
	if coneVerbosity >= 0 {
		opts = append(opts, dal.WithVerbosity(coneVerbosity))
	}

	table, err := dal.ConeSearch(ctx, args[0], coneRA, coneDec, coneRadius, opts...)
	if err != nil {
		return err
	}
	return printTable(table)
}
