package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sort"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/vulnverified/iseeyou/internal/config"
	"github.com/vulnverified/iseeyou/internal/logging"
	"github.com/vulnverified/iseeyou/internal/lookup"
	"github.com/vulnverified/iseeyou/internal/output"
	"github.com/vulnverified/iseeyou/internal/server"
)

// Set via ldflags at build time.
var version = "dev"

func main() {
	output.Version = version

	rootCmd := &cobra.Command{
		Use:           "iseeyou",
		Short:         "OSINT lookups with graceful degradation",
		Long:          "Domain, email, IP and username intelligence. Every lookup walks a chain of live sources and falls back to deterministic synthetic data when they all fail.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	config.BindFlags(rootCmd.PersistentFlags())

	rootCmd.AddCommand(serveCommand(), lookupCommand())
	rootCmd.Version = version
	rootCmd.SetVersionTemplate("iseeyou {{.Version}}\n")

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

// setup loads config, configures logging and builds the lookup service.
func setup(cmd *cobra.Command) (*config.Config, *lookup.Service, error) {
	cfg, err := config.Load(cmd.Flags())
	if err != nil {
		return nil, nil, err
	}
	if err := logging.Init(logging.Config{Level: cfg.Log.Level, Format: cfg.Log.Format}); err != nil {
		return nil, nil, err
	}
	svc, err := lookup.New(cfg)
	if err != nil {
		return nil, nil, err
	}
	return cfg, svc, nil
}

func serveCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve the JSON API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, svc, err := setup(cmd)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			return server.New(cfg.Server, svc, version).Run(ctx)
		},
	}
}

func lookupCommand() *cobra.Command {
	var (
		jsonOutput  bool
		noColor     bool
		silent      bool
		verbose     bool
		recordTypes string
		limit       int
	)

	cmd := &cobra.Command{
		Use:   "lookup <operation> <value>",
		Short: "Run one lookup and print the result",
		Long:  "Run one lookup and print the result.\n\nOperations: " + strings.Join(operationNames(), ", "),
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			op, ok := operations[strings.ToLower(args[0])]
			if !ok {
				return fmt.Errorf("unknown operation %q (want one of %s)", args[0], strings.Join(operationNames(), ", "))
			}

			// Respect NO_COLOR env var.
			if _, ok := os.LookupEnv("NO_COLOR"); ok {
				noColor = true
			}

			var types []string
			if recordTypes != "" {
				parsed, err := parseRecordTypes(recordTypes)
				if err != nil {
					return fmt.Errorf("invalid --record-types: %w", err)
				}
				types = parsed
			}

			_, svc, err := setup(cmd)
			if err != nil {
				return err
			}

			ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
			defer cancel()

			showProgress := !jsonOutput && !silent
			progress := output.NewProgress(os.Stderr, verbose, !showProgress)
			ctx = lookup.WithReporter(ctx, progress)

			if showProgress {
				output.WriteHeader(os.Stderr, noColor)
			}

			env, err := op(ctx, svc, args[1], lookupArgs{recordTypes: types, limit: limit})
			if err != nil {
				return err
			}

			if showProgress {
				progress.Complete()
			}

			if jsonOutput {
				return output.WriteJSON(os.Stdout, env)
			}
			if err := output.WriteTable(os.Stdout, env, noColor); err != nil {
				return err
			}
			if !silent {
				output.WriteSummary(os.Stdout, env, noColor)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output the response envelope as JSON to stdout")
	cmd.Flags().BoolVar(&noColor, "no-color", false, "Disable terminal colors")
	cmd.Flags().BoolVar(&silent, "silent", false, "Results only, no progress or summary")
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "Print every tier attempted")
	cmd.Flags().StringVar(&recordTypes, "record-types", "", "Comma-separated DNS record types (default: A,AAAA,MX,NS,TXT,SOA,CNAME)")
	cmd.Flags().IntVar(&limit, "limit", server.DefaultSearchLimit, "Sites to probe for the username operation (0 = whole catalog)")
	return cmd
}

// parseRecordTypes parses a comma-separated list of DNS record types.
func parseRecordTypes(s string) ([]string, error) {
	var parts []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			parts = append(parts, p)
		}
	}
	if len(parts) == 0 {
		return nil, fmt.Errorf("no record types specified")
	}
	return lookup.ParseRecordTypes(parts)
}

func operationNames() []string {
	names := make([]string, 0, len(operations))
	for name := range operations {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
