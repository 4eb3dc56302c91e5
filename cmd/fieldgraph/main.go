// Command fieldgraph serves and inspects the bookstore schema.
package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/hanpama/fieldgraph/internal/config"
	"github.com/hanpama/fieldgraph/internal/demo"
	"github.com/hanpama/fieldgraph/internal/names"
	"github.com/hanpama/fieldgraph/internal/schema"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}
}

// globalFlags are shared by every subcommand.
type globalFlags struct {
	configPath string
	logLevel   string
	logFormat  string
}

func newRootCmd() *cobra.Command {
	g := &globalFlags{}
	root := &cobra.Command{
		Use:           "fieldgraph",
		Short:         "GraphQL schemas from Go types",
		SilenceErrors: true,
		SilenceUsage:  true,
	}
	root.PersistentFlags().StringVar(&g.configPath, "config", "", "YAML config file (default: built-in defaults)")
	root.PersistentFlags().StringVar(&g.logLevel, "log-level", "", "override log.level: debug|info|warn|error")
	root.PersistentFlags().StringVar(&g.logFormat, "log-format", "", "override log.format: text|json")

	root.AddCommand(newServeCmd(g), newPrintSchemaCmd(g))
	return root
}

// load reads the config file and applies the global overrides.
func (g *globalFlags) load() (config.Config, error) {
	cfg, err := config.Load(g.configPath)
	if err != nil {
		return config.Config{}, err
	}
	if g.logLevel != "" {
		cfg.Log.Level = g.logLevel
	}
	if g.logFormat != "" {
		cfg.Log.Format = g.logFormat
	}
	return cfg, cfg.Validate()
}

// buildSchema builds the bookstore schema with the configured naming.
func buildSchema(cfg config.Config, store *demo.Store, logger *slog.Logger) (*schema.Schema, error) {
	s, err := demo.Schema(store, cfg.Schema.RelayMaxResults,
		schema.WithNameConverter(names.Converter{AutoCamelCase: cfg.Schema.AutoCamelCase}),
		schema.WithLogger(logger),
	)
	if err != nil {
		return nil, fmt.Errorf("build schema: %w", err)
	}
	return s, nil
}
