package executor

import "log/slog"

type options struct {
	logger          *slog.Logger
	hideSuggestions bool
}

type Option func(*options)

// WithLogger sets the logger used for operation diagnostics.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithoutFieldSuggestions removes "Did you mean" hints from validation
// errors so clients cannot probe the schema through them.
func WithoutFieldSuggestions() Option {
	return func(o *options) { o.hideSuggestions = true }
}
