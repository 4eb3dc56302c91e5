// Package server exposes a schema over HTTP. Every operation in a request
// gets its own ExecutionContext.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"slices"
	"strings"
	"time"

	"github.com/vektah/gqlparser/v2/gqlerror"
	"google.golang.org/grpc/metadata"

	"github.com/hanpama/fieldgraph/internal/eventbus"
	"github.com/hanpama/fieldgraph/internal/events"
	"github.com/hanpama/fieldgraph/internal/execution"
	"github.com/hanpama/fieldgraph/internal/executor"
	"github.com/hanpama/fieldgraph/internal/language"
	"github.com/hanpama/fieldgraph/internal/reqid"
	"github.com/hanpama/fieldgraph/internal/schema"
)

// RequestIDMetadata is the metadata key the request ID is forwarded under.
const RequestIDMetadata = "graphql-request-id"

var (
	getOperations  = []language.Operation{language.Query}
	postOperations = []language.Operation{language.Query, language.Mutation}
)

// Handler is an http.Handler serving a GraphQL endpoint.
type Handler struct {
	exec   *executor.Executor
	schema *schema.Schema
	opt    Options
}

type Options struct {
	// Timeout applies when the incoming request context has no deadline.
	// 0 means none.
	Timeout time.Duration

	// Pretty indents JSON responses.
	Pretty bool

	// MaxBodyBytes limits the request body. 0 means unlimited.
	MaxBodyBytes int64

	// CORS is disabled when AllowedOrigins is empty.
	CORS CORSOptions

	// MetadataHeaders lists HTTP headers forwarded into outgoing gRPC
	// metadata. Names are case-insensitive.
	MetadataHeaders []string

	Batching BatchingOptions

	// MaxTokens limits query parsing. 0 means unlimited.
	MaxTokens int

	// HideSuggestions removes "Did you mean" hints from validation errors.
	HideSuggestions bool

	Logger *slog.Logger
}

type CORSOptions struct {
	AllowedOrigins []string
}

// BatchingOptions control JSON array requests.
type BatchingOptions struct {
	Enabled       bool
	MaxOperations int
}

type Option func(*Options)

func WithTimeout(d time.Duration) Option { return func(o *Options) { o.Timeout = d } }
func WithPretty() Option                 { return func(o *Options) { o.Pretty = true } }
func WithMaxBodyBytes(n int64) Option    { return func(o *Options) { o.MaxBodyBytes = n } }
func WithMaxTokens(n int) Option         { return func(o *Options) { o.MaxTokens = n } }
func WithoutFieldSuggestions() Option    { return func(o *Options) { o.HideSuggestions = true } }
func WithLogger(l *slog.Logger) Option   { return func(o *Options) { o.Logger = l } }

func WithCORS(origins ...string) Option {
	return func(o *Options) { o.CORS.AllowedOrigins = origins }
}

func WithMetadataHeaders(headers ...string) Option {
	return func(o *Options) { o.MetadataHeaders = headers }
}

// WithBatching accepts JSON arrays of up to maxOperations requests.
func WithBatching(maxOperations int) Option {
	return func(o *Options) { o.Batching = BatchingOptions{Enabled: true, MaxOperations: maxOperations} }
}

// New returns a handler executing operations against s with runtime.
func New(runtime executor.Runtime, s *schema.Schema, opts ...Option) *Handler {
	op := Options{Timeout: 10 * time.Second}
	for _, f := range opts {
		f(&op)
	}
	if op.Logger == nil {
		op.Logger = slog.New(slog.DiscardHandler)
	}
	execOpts := []executor.Option{executor.WithLogger(op.Logger)}
	if op.HideSuggestions {
		execOpts = append(execOpts, executor.WithoutFieldSuggestions())
	}
	return &Handler{exec: executor.NewExecutor(runtime, s, execOpts...), schema: s, opt: op}
}

// RequestContext is the user context resolvers see for HTTP operations.
type RequestContext struct {
	Request   *http.Request
	RequestID int64
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if _, ok := ctx.Deadline(); !ok && h.opt.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, h.opt.Timeout)
		defer cancel()
	}

	var rid int64
	if id, ok := reqid.Parse(r.Header.Get(reqid.Header)); ok {
		rid = id
		ctx = reqid.WithID(ctx, id)
	} else {
		ctx, rid = reqid.NewContext(ctx)
	}
	w.Header().Set(reqid.Header, reqid.Format(rid))

	status, operations := http.StatusOK, 0
	start := time.Now()
	eventbus.Publish(ctx, events.HTTPStart{Request: r})
	defer func() {
		eventbus.Publish(ctx, events.HTTPFinish{
			Request: r, Status: status, Operations: operations, Duration: time.Since(start),
		})
	}()

	if len(h.opt.CORS.AllowedOrigins) > 0 {
		setCORSHeaders(w, r, h.opt.CORS)
	}
	if r.Method == http.MethodOptions {
		status = http.StatusNoContent
		w.WriteHeader(status)
		return
	}

	var allowed []language.Operation
	switch r.Method {
	case http.MethodGet:
		allowed = getOperations
	case http.MethodPost:
		allowed = postOperations
	default:
		status = http.StatusMethodNotAllowed
		w.Header().Set("Allow", "GET, POST, OPTIONS")
		h.writeError(w, status, "method not allowed")
		return
	}

	reqs, batch, rerr := parseRequest(r, h.opt.MaxBodyBytes)
	if rerr == nil && batch {
		rerr = h.checkBatch(len(reqs))
	}
	if rerr != nil {
		status = rerr.status
		h.opt.Logger.DebugContext(ctx, "rejected request", "request_id", rid, "error", rerr.message)
		h.writeError(w, status, rerr.message)
		return
	}
	operations = len(reqs)
	ctx = h.forwardMetadata(ctx, r, rid)
	user := &RequestContext{Request: r, RequestID: rid}

	if batch {
		out := make([]*execution.ExecutionResult, len(reqs))
		for i, req := range reqs {
			out[i] = execution.Unwrap(h.execute(ctx, req, allowed, user))
		}
		writeJSON(w, status, out, h.opt.Pretty)
		return
	}

	res := h.execute(ctx, reqs[0], allowed, user)
	if r.Method == http.MethodGet && execution.IsPreExecution(res) &&
		errors.Is(execution.Unwrap(res).Errors, executor.ErrOperationNotAllowed) {
		status = http.StatusMethodNotAllowed
		w.Header().Set("Allow", "POST")
	}
	writeJSON(w, status, execution.Unwrap(res), h.opt.Pretty)
}

func (h *Handler) execute(ctx context.Context, req Request, allowed []language.Operation, user *RequestContext) execution.Result {
	opts := []execution.Option{
		execution.WithUserContext(user),
		execution.WithVariables(req.Variables),
		execution.WithParseOptions(execution.ParseOptions{MaxTokens: h.opt.MaxTokens}),
		execution.WithOperationExtensions(req.Extensions),
	}
	if req.OperationName != "" {
		opts = append(opts, execution.WithOperationName(req.OperationName))
	}
	ec := execution.New(req.Query, h.schema, allowed, opts...)
	res := h.exec.Execute(ctx, ec)
	if errs := execution.Unwrap(res).Errors; len(errs) > 0 {
		h.opt.Logger.DebugContext(ctx, "operation finished with errors",
			"request_id", user.RequestID, "pre_execution", execution.IsPreExecution(res), "errors", len(errs))
	}
	return res
}

func (h *Handler) checkBatch(n int) *requestError {
	if !h.opt.Batching.Enabled {
		return &requestError{http.StatusBadRequest, "batching is not enabled"}
	}
	if limit := h.opt.Batching.MaxOperations; limit > 0 && n > limit {
		return &requestError{http.StatusBadRequest, "too many operations in batch"}
	}
	return nil
}

// forwardMetadata copies the configured headers and the request ID into
// outgoing gRPC metadata, so resolvers calling gRPC backends pass them on.
func (h *Handler) forwardMetadata(ctx context.Context, r *http.Request, rid int64) context.Context {
	md := metadata.MD{}
	for _, hdr := range h.opt.MetadataHeaders {
		if v := r.Header.Values(hdr); len(v) > 0 {
			md[strings.ToLower(hdr)] = slices.Clone(v)
		}
	}
	md.Set(RequestIDMetadata, reqid.Format(rid))
	return metadata.NewOutgoingContext(ctx, md)
}

func (h *Handler) writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, &execution.ExecutionResult{Errors: gqlerror.List{{Message: message}}}, h.opt.Pretty)
}

func writeJSON(w http.ResponseWriter, status int, v any, pretty bool) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	if pretty {
		enc.SetIndent("", "  ")
	}
	_ = enc.Encode(v)
}

func setCORSHeaders(w http.ResponseWriter, r *http.Request, opts CORSOptions) {
	origin := r.Header.Get("Origin")
	if origin == "" {
		return
	}
	wildcard := slices.Contains(opts.AllowedOrigins, "*")
	if !wildcard && !slices.Contains(opts.AllowedOrigins, origin) {
		return
	}
	if wildcard {
		w.Header().Set("Access-Control-Allow-Origin", "*")
	} else {
		w.Header().Set("Access-Control-Allow-Origin", origin)
		w.Header().Add("Vary", "Origin")
	}
	if r.Method == http.MethodOptions {
		if hdr := r.Header.Get("Access-Control-Request-Headers"); hdr != "" {
			w.Header().Set("Access-Control-Allow-Headers", hdr)
		}
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
	}
}
