// Command regtap searches the Virtual Observatory registry from the
// terminal: find services, inspect their capabilities, run ADQL, and
// call what you found.
package main

import (
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/exp/zapslog"
	"go.uber.org/zap/zapcore"

	regtap "github.com/openvo/go-regtap"
	"github.com/openvo/go-regtap/internal/config"
)

const version = "0.1.0"

var (
	// Global flags
	configPath   string
	verbose      bool
	endpoints    []string
	outputFormat string

	// Wired in PersistentPreRunE
	logger *zap.Logger
	cfg    *config.Config
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "regtap",
	Short: "Virtual Observatory registry queries from the command line",
	Long: `regtap discovers astronomical data services through the IVOA
relational registry.

The registry is a TAP service exposing the rr.* tables; every command
here is sugar over ADQL queries against the public mirrors. Start with
'regtap tutorial' for a guided walkthrough, or jump straight in:

  regtap search --keyword rosat --service conesearch
  regtap describe ivo://nasa.heasarc/rosmaster
  regtap cone <access-url> --ra 83.63 --dec 22.01 --radius 0.5`,
	Version:       version,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		zapCfg := zap.NewProductionConfig()
		if verbose {
			zapCfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
		}
		var err error
		logger, err = zapCfg.Build()
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}

		path := configPath
		if path == "" {
			path = config.DefaultPath()
		}
		cfg, err = config.Load(path)
		if err != nil {
			return err
		}

		// Flags beat config file and environment.
		if len(endpoints) > 0 {
			cfg.Registry.Endpoints = endpoints
		}
		if cmd.Flags().Changed("output") {
			cfg.Output.Format = outputFormat
		}
		outputFormat = cfg.Output.Format
		if err := cfg.Validate(); err != nil {
			return err
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

// newClient builds the registry client the way the resolved
// configuration asks for, with the CLI's zap logger bridged into the
// library's slog surface.
func newClient() (*regtap.Client, error) {
	opts := cfg.ClientOptions()
	opts = append(opts,
		regtap.WithUserAgent("go-regtap-cli/"+version),
		regtap.WithLogger(libLogger()),
	)
	return regtap.New(opts...)
}

// libLogger bridges the zap core into the slog logger the library
// packages expect.
func libLogger() *slog.Logger {
	return slog.New(zapslog.NewHandler(logger.Core()))
}

// requestTimeout bounds one command's network work.
func requestTimeout() time.Duration {
	if cfg != nil && cfg.Registry.TimeoutSeconds > 0 {
		// Room for several sequential requests per command.
		return 4 * cfg.Timeout()
	}
	return 2 * time.Minute
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "config file (default ~/.config/regtap/config.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")
	rootCmd.PersistentFlags().StringSliceVar(&endpoints, "endpoint", nil, "registry endpoint (repeatable, overrides config)")
	rootCmd.PersistentFlags().StringVarP(&outputFormat, "output", "o", "text", "output format: text, csv, or json")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
