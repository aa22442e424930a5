package turnblock

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"sync/atomic"

	llmtoolsgoSpec "github.com/flexigpt/llmtools-go/spec"

	"github.com/flexigpt/turnblock-go/blocktool"
	"github.com/flexigpt/turnblock-go/spec"

	"github.com/flexigpt/turnblock-go/internal/dispatch"
	"github.com/flexigpt/turnblock-go/internal/prompts"
	"github.com/flexigpt/turnblock-go/internal/session"
)

// Runtime owns every session and the dispatch context that presenter calls
// run in. It is safe for concurrent use.
type Runtime struct {
	logger *slog.Logger

	// loop is set when the Runtime owns its dispatch context.
	loop       *dispatch.Loop
	dispatcher spec.Dispatcher

	sessions *session.Store

	promptFilter *PromptFilter

	mu              sync.RWMutex
	promptOverrides []prompts.Override

	closed atomic.Bool
}

var _ spec.Runtime = (*Runtime)(nil)

func New(opts ...Option) (*Runtime, error) {
	o := runtimeOptions{}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		if err := opt(&o); err != nil {
			return nil, err
		}
	}
	if o.logger == nil {
		o.logger = slog.Default()
	}

	rt := &Runtime{
		logger:       o.logger,
		dispatcher:   o.dispatcher,
		promptFilter: o.promptFilter,
	}
	if rt.dispatcher == nil {
		rt.loop = dispatch.New(o.logger)
		rt.dispatcher = rt.loop
	}
	rt.sessions = session.NewStore(session.StoreConfig{
		TTL:         o.sessionTTL,
		MaxSessions: o.maxSessions,
		Dispatcher:  rt.dispatcher,
		Logger:      o.logger,
	})
	return rt, nil
}

// Close closes every session, releasing callers still waiting on a turn,
// and stops the Runtime's own dispatch loop. A dispatcher passed with
// WithDispatcher is left running.
func (r *Runtime) Close() {
	if r.closed.Swap(true) {
		return
	}
	r.sessions.CloseAll()
	if r.loop != nil {
		r.loop.Close()
	}
}

// Langs returns the fenced code-block languages the Runtime handles.
func (r *Runtime) Langs() []spec.Lang { return spec.Langs() }

// Handles reports whether blocks of lang should be routed to the Runtime.
func (r *Runtime) Handles(lang spec.Lang) bool {
	_, ok := lang.Kind()
	return ok
}

// NewSession starts a conversation whose panels are drawn by presenter.
func (r *Runtime) NewSession(ctx context.Context, presenter spec.Presenter) (spec.SessionID, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if r.closed.Load() {
		return "", spec.ErrDispatcherClosed
	}
	s, err := r.sessions.NewSession(ctx, presenter)
	if err != nil {
		return "", err
	}
	r.logger.Debug("session created", "session", s.ID())
	return s.ID(), nil
}

// CloseSession closes a session. Callers waiting on its turns get CANCELLED.
func (r *Runtime) CloseSession(ctx context.Context, id spec.SessionID) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if strings.TrimSpace(string(id)) == "" {
		return nil
	}
	r.sessions.Delete(id)
	return nil
}

// Session returns a convenience wrapper bound to a session ID,
// including tool registration via package blocktool.
func (r *Runtime) Session(id spec.SessionID) *Session {
	return &Session{rt: r, id: id}
}

// HandleBlock runs one block body in a session and returns the status line
// for the model. Languages the Runtime does not handle give
// ErrUnsupportedLang so the host can fall through to its own renderers.
func (r *Runtime) HandleBlock(
	ctx context.Context,
	sessionID spec.SessionID,
	lang spec.Lang,
	block string,
) (string, error) {
	if ctx == nil {
		return "", fmt.Errorf("%w: nil context", spec.ErrInvalidArgument)
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}
	lang = spec.Lang(strings.ToLower(strings.TrimSpace(string(lang))))
	if !r.Handles(lang) {
		return "", fmt.Errorf("%w: %q", spec.ErrUnsupportedLang, lang)
	}
	s, err := r.mustGetSession(sessionID)
	if err != nil {
		return "", err
	}
	return s.HandleBlock(ctx, lang, block)
}

// NewGame restarts the rpg of a session, optionally keeping achievements.
func (r *Runtime) NewGame(ctx context.Context, sessionID spec.SessionID, keepAchievements bool) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s, err := r.mustGetSession(sessionID)
	if err != nil {
		return err
	}
	return s.NewGame(keepAchievements)
}

// State snapshots both engines of a session.
func (r *Runtime) State(ctx context.Context, sessionID spec.SessionID) (spec.SessionStateOut, error) {
	if err := ctx.Err(); err != nil {
		return spec.SessionStateOut{}, err
	}
	s, err := r.mustGetSession(sessionID)
	if err != nil {
		return spec.SessionStateOut{}, err
	}
	return s.State(), nil
}

func (r *Runtime) QuizState(ctx context.Context, sessionID spec.SessionID) (spec.QuizState, error) {
	st, err := r.State(ctx, sessionID)
	return st.Quiz, err
}

func (r *Runtime) RPGState(ctx context.Context, sessionID spec.SessionID) (spec.RPGState, error) {
	st, err := r.State(ctx, sessionID)
	return st.RPG, err
}

// Pending reports the turn of kind still waiting for the user, if any.
func (r *Runtime) Pending(sessionID spec.SessionID, kind spec.EngineKind) (spec.TurnID, bool) {
	s, err := r.mustGetSession(sessionID)
	if err != nil {
		return "", false
	}
	return s.Pending(kind)
}

// Tools returns the block tool specs.
func (r *Runtime) Tools() []llmtoolsgoSpec.Tool { return blocktool.Tools() }

func (r *Runtime) mustGetSession(id spec.SessionID) (*session.Session, error) {
	sid := spec.SessionID(strings.TrimSpace(string(id)))
	if sid == "" {
		return nil, spec.ErrSessionNotFound
	}
	s, ok := r.sessions.Get(sid)
	if !ok {
		return nil, spec.ErrSessionNotFound
	}
	return s, nil
}
