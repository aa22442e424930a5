package quiz

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"sync"

	"github.com/flexigpt/turnblock-go/internal/turn"
	"github.com/flexigpt/turnblock-go/spec"
)

const Icon = "help-faq-symbolic"

// Config wires an engine to its host.
type Config struct {
	Presenter  spec.Presenter
	Dispatcher spec.Dispatcher
	Logger     *slog.Logger
}

// Result is what the blocked caller of Ask receives.
type Result struct {
	Decision spec.Decision
	Correct  bool
}

type Engine struct {
	presenter  spec.Presenter
	dispatcher spec.Dispatcher
	logger     *slog.Logger

	turns *turn.Controller[Result]

	mu      sync.Mutex
	state   spec.QuizState
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
	logger = logger.With("engine", spec.EngineQuiz)
	return &Engine{
		presenter:  cfg.Presenter,
		dispatcher: cfg.Dispatcher,
		logger:     logger,
		turns:      turn.NewController(Result{Decision: spec.CancelledDecision()}, logger),
		state:      spec.QuizState{Title: DefaultTitle},
	}, nil
}

// Init resets the score, (re)opens the panel and returns immediately. A
// question still waiting for an answer is cancelled. The reset itself runs
// in the dispatch context, after anything posted before it.
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
		e.state = spec.QuizState{Title: cfg.Title}
		e.mu.Unlock()
		e.mount()
	}) {
		return "", spec.ErrDispatcherClosed
	}
	e.logger.Debug("quiz started", "title", cfg.Title)
	return "The quiz has started.", nil
}

// Ask presents one question and blocks until it is answered, superseded by
// a newer question, or ctx ends. It must not be called from the dispatch
// context.
func (e *Engine) Ask(ctx context.Context, text string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	q := ParseTurn(text)
	p, _ := e.turns.Begin()

	e.mu.Lock()
	mount := !e.mounted
	e.mounted = true
	e.mu.Unlock()

	view := spec.TurnView{
		ID:       p.ID,
		Kind:     spec.EngineQuiz,
		Question: q.Question,
		Options:  slices.Clone(q.Options),
		Mode:     q.Mode,
		Hint:     q.Hint,
	}
	submit := func(d spec.Decision) {
		e.dispatcher.Post(func() { e.settle(p.ID, q, d) })
	}
	if !e.dispatcher.Post(func() {
		if mount {
			e.mount()
		}
		e.presenter.PresentTurn(view, submit)
	}) {
		e.turns.Resolve(p.ID, Result{Decision: spec.CancelledDecision()})
		return "", spec.ErrDispatcherClosed
	}
	e.logger.Debug("question presented", "turn", p.ID, "mode", q.Mode)

	r, err := e.turns.Await(ctx, p)
	if err != nil {
		return "", err
	}
	if r.Decision.Superseded {
		return fmt.Sprintf("User answered: %s. Correct: None", spec.Cancelled), nil
	}
	return fmt.Sprintf("User answered: %s. Correct: %s", r.Decision, boolText(r.Correct)), nil
}

// settle runs in the dispatch context. The score is updated and the header
// re-rendered before the caller is released; feedback follows as a
// separate dispatch step.
func (e *Engine) settle(id spec.TurnID, q spec.QuizTurn, d spec.Decision) {
	e.turns.Settle(id, func() Result {
		correct := Score(d, q)

		e.mu.Lock()
		e.state.Total++
		if correct {
			e.state.Score++
		}
		snap := e.state
		e.mu.Unlock()

		e.presenter.RenderState(stateView(snap, false))
		fb := spec.Feedback{
			TurnID:      id,
			Correct:     correct,
			Title:       FeedbackTitle(q, correct),
			Explanation: q.Explanation,
		}
		e.dispatcher.Post(func() { e.presenter.ShowFeedback(fb) })
		e.logger.Debug("answer scored", "turn", id, "correct", correct, "score", snap.Score, "total", snap.Total)
		return Result{Decision: d, Correct: correct}
	})
}

func (e *Engine) mount() {
	snap := e.State()
	e.presenter.OpenPanel(spec.Panel{Kind: spec.EngineQuiz, Title: snap.Title, Icon: Icon})
	e.presenter.RenderState(stateView(snap, true))
}

// Close releases a caller still waiting on a question. Questions asked
// afterwards are cancelled at once.
func (e *Engine) Close() {
	e.turns.Close()
}

// Pending reports the id of the question awaiting an answer, if any.
func (e *Engine) Pending() (spec.TurnID, bool) {
	return e.turns.Current()
}

func (e *Engine) State() spec.QuizState {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state
}

func stateView(s spec.QuizState, reset bool) spec.StateView {
	return spec.StateView{
		Kind:    spec.EngineQuiz,
		Title:   s.Title,
		Summary: ScoreLine(s),
		Reset:   reset,
		Quiz:    &s,
	}
}

func boolText(b bool) string {
	if b {
		return "True"
	}
	return "False"
}
