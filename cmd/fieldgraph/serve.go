package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/hanpama/fieldgraph/internal/config"
	"github.com/hanpama/fieldgraph/internal/demo"
	"github.com/hanpama/fieldgraph/internal/eventbus"
	"github.com/hanpama/fieldgraph/internal/executor"
	"github.com/hanpama/fieldgraph/internal/introspection"
	"github.com/hanpama/fieldgraph/internal/nativert"
	"github.com/hanpama/fieldgraph/internal/otel"
	"github.com/hanpama/fieldgraph/internal/server"
)

const shutdownTimeout = 5 * time.Second

type serveFlags struct {
	addr           string
	pretty         bool
	forwardHeaders []string
	otelEndpoint   string
}

func newServeCmd(g *globalFlags) *cobra.Command {
	f := &serveFlags{}
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP GraphQL endpoint",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := g.load()
			if err != nil {
				return err
			}
			f.apply(cmd, &cfg)
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return serve(ctx, cfg, cmd.ErrOrStderr())
		},
	}
	cmd.Flags().StringVar(&f.addr, "addr", "", "override server.addr")
	cmd.Flags().BoolVar(&f.pretty, "pretty", false, "pretty-print JSON responses")
	cmd.Flags().StringSliceVar(&f.forwardHeaders, "forward-header", nil, "forward an HTTP header into gRPC metadata (repeatable)")
	cmd.Flags().StringVar(&f.otelEndpoint, "otel-endpoint", "", "override telemetry.endpoint")
	return cmd
}

// apply overrides cfg with the flags set on the command line.
func (f *serveFlags) apply(cmd *cobra.Command, cfg *config.Config) {
	flags := cmd.Flags()
	if flags.Changed("addr") {
		cfg.Server.Addr = f.addr
	}
	if flags.Changed("pretty") {
		cfg.Server.Pretty = f.pretty
	}
	if flags.Changed("forward-header") {
		cfg.Server.ForwardHeaders = f.forwardHeaders
	}
	if flags.Changed("otel-endpoint") {
		cfg.Telemetry.Endpoint = f.otelEndpoint
	}
}

func serve(ctx context.Context, cfg config.Config, logOut io.Writer) error {
	logger, err := cfg.Log.NewLogger(logOut)
	if err != nil {
		return err
	}
	eventbus.Use(eventbus.New())
	shutdownTracing, err := otel.Setup(ctx, otel.Options{
		Endpoint:    cfg.Telemetry.Endpoint,
		ServiceName: cfg.Telemetry.ServiceName,
		Insecure:    cfg.Telemetry.Insecure,
	})
	if err != nil {
		return fmt.Errorf("otel setup: %w", err)
	}
	defer func() {
		sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := shutdownTracing(sctx); err != nil {
			logger.Warn("tracing shutdown failed", "error", err)
		}
	}()

	handler, err := newHandler(cfg, logger)
	if err != nil {
		return err
	}
	mux := http.NewServeMux()
	mux.Handle(cfg.Server.Path, handler)
	srv := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
		ErrorLog:          slog.NewLogLogger(logger.Handler(), slog.LevelError),
	}

	errc := make(chan error, 1)
	go func() { errc <- srv.ListenAndServe() }()
	logger.Info("GraphQL server listening", "addr", cfg.Server.Addr, "path", cfg.Server.Path)

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}
	logger.Info("shutting down")
	sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(sctx); err != nil {
		return err
	}
	if err := <-errc; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// newHandler wires the bookstore schema, the native runtime and the HTTP
// handler from cfg.
func newHandler(cfg config.Config, logger *slog.Logger) (*server.Handler, error) {
	s, err := buildSchema(cfg, demo.NewStore(), logger)
	if err != nil {
		return nil, err
	}
	rtOpts := []nativert.Option{nativert.WithLogger(logger)}
	if cfg.Runtime.Concurrency > 0 {
		rtOpts = append(rtOpts, nativert.WithConcurrency(cfg.Runtime.Concurrency))
	}
	var rt executor.Runtime = nativert.New(s, rtOpts...)
	if cfg.Schema.Introspection {
		rt, s = introspection.Wrap(rt, s)
	}
	return server.New(rt, s, serverOptions(cfg, logger)...), nil
}

func serverOptions(cfg config.Config, logger *slog.Logger) []server.Option {
	sc := cfg.Server
	opts := []server.Option{
		server.WithLogger(logger),
		server.WithTimeout(sc.Timeout),
		server.WithMaxBodyBytes(sc.MaxBodyBytes),
		server.WithMaxTokens(cfg.Schema.MaxTokens),
	}
	if sc.Pretty {
		opts = append(opts, server.WithPretty())
	}
	if len(sc.CORSOrigins) > 0 {
		opts = append(opts, server.WithCORS(sc.CORSOrigins...))
	}
	if len(sc.ForwardHeaders) > 0 {
		opts = append(opts, server.WithMetadataHeaders(sc.ForwardHeaders...))
	}
	if cfg.Schema.Batching.Enabled {
		opts = append(opts, server.WithBatching(cfg.Schema.Batching.MaxOperations))
	}
	if cfg.Schema.DisableFieldSuggestions {
		opts = append(opts, server.WithoutFieldSuggestions())
	}
	return opts
}
