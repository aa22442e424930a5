package rpg

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"sync"

	"github.com/flexigpt/turnblock-go/internal/turn"
	"github.com/flexigpt/turnblock-go/spec"
)

const Icon = "applications-games-symbolic"

// Config wires an engine to its host.
type Config struct {
	Presenter  spec.Presenter
	Dispatcher spec.Dispatcher
	Logger     *slog.Logger
}

type Engine struct {
	presenter  spec.Presenter
	dispatcher spec.Dispatcher
	logger     *slog.Logger

	turns *turn.Controller[spec.Decision]

	// mu guards state and mounted. state is only written from the
	// dispatch context.
	mu      sync.Mutex
	state   spec.RPGState
	mounted bool
}

func New(cfg Config) (*Engine, error) {
	if cfg.Presenter == nil {
		return nil, spec.ErrNoPresenter
	}
	if cfg.Dispatcher == nil {
		return nil, fmt.Errorf("%w: dispatcher is required", spec.ErrInvalidArgument)
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("engine", spec.EngineRPG)
	e := &Engine{
		presenter:  cfg.Presenter,
		dispatcher: cfg.Dispatcher,
		logger:     logger,
		turns:      turn.NewController(spec.CancelledDecision(), logger),
	}
	Reset(&e.state, false)
	return e, nil
}

// Init loads the starting sheet, (re)opens the panel and returns without
// waiting. A turn still waiting for the player is cancelled.
func (e *Engine) Init(ctx context.Context, text string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	cfg := ParseInit(text)
	e.turns.Cancel()

	e.mu.Lock()
	e.mounted = true
	e.mu.Unlock()

	if !e.dispatcher.Post(func() {
		e.mu.Lock()
		e.state = FromInit(cfg)
		e.mu.Unlock()
		e.mount()
	}) {
		return "", spec.ErrDispatcherClosed
	}
	e.logger.Debug("game started", "title", cfg.Title,
		"inventory", len(cfg.Inventory), "stats", len(cfg.Stats))
	return "The game has started.", nil
}

// Turn processes one rpg block. Its mutations are applied in the dispatch
// context before anything is shown. A terminal block shows the end screen
// and returns at once; any other block blocks until the player decides,
// the turn is superseded, or ctx ends.
func (e *Engine) Turn(ctx context.Context, text string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	t := ParseTurn(text)
	m := t.Mutations

	e.mu.Lock()
	mount := !e.mounted
	e.mounted = true
	e.mu.Unlock()

	if m.Terminal() {
		e.turns.Cancel()
		end := EndScreenFor(m)
		if !e.dispatcher.Post(func() {
			if mount {
				e.mount()
			}
			e.apply(m, func(s *spec.RPGState) bool {
				s.Ended, s.Outcome = true, end.Outcome
				return true
			})
			e.presenter.ShowEnd(end)
		}) {
			return "", spec.ErrDispatcherClosed
		}
		e.logger.Debug("game ended", "outcome", end.Outcome)
		return "RPG End: " + strings.ToUpper(string(end.Outcome)), nil
	}

	p, _ := e.turns.Begin()
	view := spec.TurnView{
		ID:          p.ID,
		Kind:        spec.EngineRPG,
		Question:    t.Question,
		Options:     slices.Clone(t.Options),
		AllowCustom: t.AllowCustom,
	}
	submit := func(d spec.Decision) {
		e.dispatcher.Post(func() { e.turns.Resolve(p.ID, d) })
	}
	if !e.dispatcher.Post(func() {
		if mount {
			e.mount()
		}
		e.apply(m, func(s *spec.RPGState) bool {
			wasEnded := s.Ended
			s.Ended, s.Outcome = false, ""
			return wasEnded
		})
		e.presenter.PresentTurn(view, submit)
	}) {
		e.turns.Resolve(p.ID, spec.CancelledDecision())
		return "", spec.ErrDispatcherClosed
	}
	e.logger.Debug("turn presented", "turn", p.ID, "options", len(view.Options))

	d, err := e.turns.Await(ctx, p)
	if err != nil {
		return "", err
	}
	return "RPG Answer: " + d.String(), nil
}

// NewGame empties the sheet and keeps the title. It is the end screen's
// restart action and may be called from the dispatch context.
func (e *Engine) NewGame(keepAchievements bool) error {
	e.turns.Cancel()

	if !e.dispatcher.Post(func() {
		e.mu.Lock()
		Reset(&e.state, keepAchievements)
		snap := e.state.Clone()
		e.mu.Unlock()
		e.presenter.RenderState(stateView(snap, true))
	}) {
		return spec.ErrDispatcherClosed
	}
	e.logger.Debug("new game", "keepAchievements", keepAchievements)
	return nil
}

// apply runs in the dispatch context. extra adjusts the end flags and
// reports whether it changed anything.
func (e *Engine) apply(m spec.Mutations, extra func(*spec.RPGState) bool) {
	e.mu.Lock()
	changed := Apply(&e.state, m)
	if extra(&e.state) {
		changed = true
	}
	snap := e.state.Clone()
	e.mu.Unlock()

	if changed {
		e.presenter.RenderState(stateView(snap, false))
	}
}

func (e *Engine) mount() {
	s := e.State()
	e.presenter.OpenPanel(spec.Panel{Kind: spec.EngineRPG, Title: s.Title, Icon: Icon})
	e.presenter.RenderState(stateView(s, true))
}

// Close releases a caller still waiting on a turn. Turns started
// afterwards are cancelled at once.
func (e *Engine) Close() {
	e.turns.Close()
}

// Pending reports the id of the turn awaiting the player, if any.
func (e *Engine) Pending() (spec.TurnID, bool) {
	return e.turns.Current()
}

func (e *Engine) State() spec.RPGState {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state.Clone()
}

func stateView(s spec.RPGState, reset bool) spec.StateView {
	return spec.StateView{
		Kind:    spec.EngineRPG,
		Title:   s.Title,
		Summary: Summary(s),
		Reset:   reset,
		RPG:     &s,
	}
}
