package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/hanpama/fieldgraph/internal/demo"
	"github.com/hanpama/fieldgraph/internal/schema"
)

func newPrintSchemaCmd(g *globalFlags) *cobra.Command {
	var out string
	cmd := &cobra.Command{
		Use:   "print-schema",
		Short: "Print the schema as SDL",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := g.load()
			if err != nil {
				return err
			}
			logger, err := cfg.Log.NewLogger(cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			s, err := buildSchema(cfg, demo.NewStore(), logger)
			if err != nil {
				return err
			}
			return writeSDL(cmd.OutOrStdout(), out, s, logger)
		},
	}
	cmd.Flags().StringVar(&out, "out", "", "write the SDL to this file instead of stdout")
	return cmd
}

func writeSDL(stdout io.Writer, path string, s *schema.Schema, logger *slog.Logger) error {
	sdl := schema.Render(s)
	if path == "" {
		_, err := io.WriteString(stdout, sdl)
		return err
	}
	if err := os.WriteFile(path, []byte(sdl), 0o644); err != nil {
		return fmt.Errorf("write schema: %w", err)
	}
	logger.Info("schema written", "path", path, "types", len(s.Types))
	return nil
}
