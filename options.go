package turnblock

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/flexigpt/turnblock-go/spec"
)

type runtimeOptions struct {
	logger     *slog.Logger
	dispatcher spec.Dispatcher

	sessionTTL  time.Duration
	maxSessions int

	promptFilter *PromptFilter
}

type Option func(*runtimeOptions) error

func WithLogger(l *slog.Logger) Option {
	return func(o *runtimeOptions) error {
		o.logger = l
		return nil
	}
}

// WithDispatcher runs every presenter call through d, typically the host's
// UI loop. Without it the Runtime starts and owns its own loop.
func WithDispatcher(d spec.Dispatcher) Option {
	return func(o *runtimeOptions) error {
		if d == nil {
			return fmt.Errorf("%w: nil dispatcher", spec.ErrInvalidArgument)
		}
		o.dispatcher = d
		return nil
	}
}

func WithSessionTTL(ttl time.Duration) Option {
	return func(o *runtimeOptions) error {
		if ttl < 0 {
			return fmt.Errorf("%w: negative session ttl", spec.ErrInvalidArgument)
		}
		o.sessionTTL = ttl
		return nil
	}
}

func WithMaxSessions(maxSessions int) Option {
	return func(o *runtimeOptions) error {
		if maxSessions < 0 {
			return fmt.Errorf("%w: negative max sessions", spec.ErrInvalidArgument)
		}
		o.maxSessions = maxSessions
		return nil
	}
}

// WithPromptFilter sets the filter Prompts and PromptsXML use when they are
// called with a nil filter.
func WithPromptFilter(f PromptFilter) Option {
	return func(o *runtimeOptions) error {
		for _, l := range f.Langs {
			if _, ok := l.Kind(); !ok {
				return fmt.Errorf("%w: %q", spec.ErrUnsupportedLang, l)
			}
		}
		o.promptFilter = &f
		return nil
	}
}
