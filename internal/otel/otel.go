// Package otel turns lifecycle events into OpenTelemetry spans.
package otel

import (
	"context"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.17.0"
	"go.opentelemetry.io/otel/trace"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"

	"github.com/hanpama/fieldgraph/internal/eventbus"
	"github.com/hanpama/fieldgraph/internal/events"
	"github.com/hanpama/fieldgraph/internal/reqid"
)

const instrumentation = "github.com/hanpama/fieldgraph"

type Options struct {
	// Endpoint is the OTLP gRPC collector address. Empty disables tracing.
	Endpoint    string
	ServiceName string
	Insecure    bool
}

// Setup installs an OTLP exporting tracer provider and subscribes it to
// the global eventbus. The returned function flushes and stops it.
func Setup(ctx context.Context, opts Options) (shutdown func(context.Context) error, err error) {
	if opts.Endpoint == "" {
		return func(context.Context) error { return nil }, nil
	}
	expOpts := []otlptracegrpc.Option{otlptracegrpc.WithEndpoint(opts.Endpoint)}
	if opts.Insecure {
		expOpts = append(expOpts, otlptracegrpc.WithDialOption(
			grpc.WithTransportCredentials(insecure.NewCredentials())))
	}
	exp, err := otlptracegrpc.New(ctx, expOpts...)
	if err != nil {
		return nil, err
	}
	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exp),
		sdktrace.WithResource(resource.NewWithAttributes(
			semconv.SchemaURL,
			semconv.ServiceName(opts.ServiceName),
		)),
	)
	otel.SetTracerProvider(tp)
	unsubscribe := Register(tp)

	return func(ctx context.Context) error {
		unsubscribe()
		return tp.Shutdown(ctx)
	}, nil
}

// Register subscribes span recording for HTTP, operation and resolver
// events to the global eventbus.
func Register(tp trace.TracerProvider) (unsubscribe func()) {
	s := &subscriber{tracer: tp.Tracer(instrumentation)}
	return s.register()
}

type subscriber struct {
	tracer    trace.Tracer
	httpSpans sync.Map // request id -> trace.Span
	opSpans   sync.Map // request id -> trace.Span
}

// parent returns ctx carrying the innermost open span of the request.
func (s *subscriber) parent(ctx context.Context, rid int64) context.Context {
	if v, ok := s.opSpans.Load(rid); ok {
		return trace.ContextWithSpan(ctx, v.(trace.Span))
	}
	if v, ok := s.httpSpans.Load(rid); ok {
		return trace.ContextWithSpan(ctx, v.(trace.Span))
	}
	return ctx
}

func (s *subscriber) register() func() {
	unsubs := []func(){
		eventbus.Subscribe(func(ctx context.Context, e events.HTTPStart) {
			rid, _ := reqid.FromContext(ctx)
			_, span := s.tracer.Start(ctx, "http.request", trace.WithSpanKind(trace.SpanKindServer))
			span.SetAttributes(
				semconv.HTTPMethodKey.String(e.Request.Method),
				attribute.String("http.target", e.Request.URL.Path),
				attribute.Int64("graphql.request_id", rid),
			)
			s.httpSpans.Store(rid, span)
		}),

		eventbus.Subscribe(func(ctx context.Context, e events.HTTPFinish) {
			rid, _ := reqid.FromContext(ctx)
			v, ok := s.httpSpans.LoadAndDelete(rid)
			if !ok {
				return
			}
			span := v.(trace.Span)
			span.SetAttributes(
				semconv.HTTPStatusCodeKey.Int(e.Status),
				attribute.Int("graphql.operation_count", e.Operations),
			)
			if e.Status >= 500 {
				span.SetStatus(codes.Error, "")
			}
			span.End()
		}),

		eventbus.Subscribe(func(ctx context.Context, e events.OperationStart) {
			rid, _ := reqid.FromContext(ctx)
			_, span := s.tracer.Start(s.parent(ctx, rid), "graphql.operation")
			span.SetAttributes(
				attribute.String("graphql.operation.name", e.OperationName),
				attribute.String("graphql.operation.type", e.OperationType),
			)
			s.opSpans.Store(rid, span)
		}),

		eventbus.Subscribe(func(ctx context.Context, e events.OperationFinish) {
			rid, _ := reqid.FromContext(ctx)
			v, ok := s.opSpans.LoadAndDelete(rid)
			if !ok {
				// failed before the operation was known
				_, span := s.tracer.Start(s.parent(ctx, rid), "graphql.operation",
					trace.WithTimestamp(time.Now().Add(-e.Duration)))
				v = span
			}
			span := v.(trace.Span)
			span.SetAttributes(
				attribute.Int("graphql.error_count", len(e.Errors)),
				attribute.Bool("graphql.pre_execution", e.PreExecution),
			)
			if e.PreExecution {
				span.SetStatus(codes.Error, e.Errors.Error())
			}
			span.End()
		}),

		// Resolvers run concurrently, so their spans are recorded whole
		// when they finish.
		eventbus.Subscribe(func(ctx context.Context, e events.ResolverFinish) {
			rid, _ := reqid.FromContext(ctx)
			end := time.Now()
			_, span := s.tracer.Start(s.parent(ctx, rid), "graphql.resolve",
				trace.WithTimestamp(end.Add(-e.Duration)))
			span.SetAttributes(
				attribute.String("graphql.object_type", e.ObjectType),
				attribute.String("graphql.field", e.Field),
			)
			if e.Err != nil {
				span.RecordError(e.Err)
				span.SetStatus(codes.Error, e.Err.Error())
			}
			span.End(trace.WithTimestamp(end))
		}),
	}
	return func() {
		for _, u := range unsubs {
			u()
		}
	}
}
