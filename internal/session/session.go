package session

import (
	"context"
	"fmt"
	"log/slog"
	"sync/atomic"

	"github.com/flexigpt/turnblock-go/internal/quiz"
	"github.com/flexigpt/turnblock-go/internal/rpg"
	"github.com/flexigpt/turnblock-go/spec"
)

type SessionConfig struct {
	ID         spec.SessionID
	Presenter  spec.Presenter
	Dispatcher spec.Dispatcher
	Logger     *slog.Logger

	// Touch marks the session as recently used in its store.
	Touch func()
}

// Session is one conversation: a quiz engine and an rpg engine bound to the
// same presenter.
type Session struct {
	id spec.SessionID

	quiz *quiz.Engine
	rpg  *rpg.Engine

	touch  func()
	logger *slog.Logger

	closed atomic.Bool
}

func newSession(cfg SessionConfig) (*Session, error) {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("session", cfg.ID)

	q, err := quiz.New(quiz.Config{Presenter: cfg.Presenter, Dispatcher: cfg.Dispatcher, Logger: logger})
	if err != nil {
		return nil, err
	}
	g, err := rpg.New(rpg.Config{Presenter: cfg.Presenter, Dispatcher: cfg.Dispatcher, Logger: logger})
	if err != nil {
		return nil, err
	}
	touch := cfg.Touch
	if touch == nil {
		touch = func() {}
	}
	return &Session{id: cfg.ID, quiz: q, rpg: g, touch: touch, logger: logger}, nil
}

func (s *Session) ID() spec.SessionID { return s.id }

// HandleBlock routes one block body to the engine of its language and
// returns the status line for the model. Turn blocks wait for the user.
func (s *Session) HandleBlock(ctx context.Context, lang spec.Lang, text string) (string, error) {
	s.touch()
	if s.closed.Load() {
		return "", spec.ErrSessionClosed
	}

	switch lang {
	case spec.LangQuizInit:
		return s.quiz.Init(ctx, text)
	case spec.LangQuiz:
		return s.quiz.Ask(ctx, text)
	case spec.LangRPGInit:
		return s.rpg.Init(ctx, text)
	case spec.LangRPG:
		return s.rpg.Turn(ctx, text)
	default:
		return "", fmt.Errorf("%w: %q", spec.ErrUnsupportedLang, lang)
	}
}

// NewGame restarts the rpg after its end screen.
func (s *Session) NewGame(keepAchievements bool) error {
	s.touch()
	if s.closed.Load() {
		return spec.ErrSessionClosed
	}
	return s.rpg.NewGame(keepAchievements)
}

func (s *Session) QuizState() spec.QuizState { return s.quiz.State() }

func (s *Session) RPGState() spec.RPGState { return s.rpg.State() }

// State snapshots both engines.
func (s *Session) State() spec.SessionStateOut {
	return spec.SessionStateOut{Quiz: s.quiz.State(), RPG: s.rpg.State()}
}

// Pending reports the turn awaiting the user in the given engine, if any.
func (s *Session) Pending(kind spec.EngineKind) (spec.TurnID, bool) {
	switch kind {
	case spec.EngineQuiz:
		return s.quiz.Pending()
	case spec.EngineRPG:
		return s.rpg.Pending()
	default:
		return "", false
	}
}

// waiting reports whether either engine has a turn awaiting the user.
func (s *Session) waiting() bool {
	if _, ok := s.quiz.Pending(); ok {
		return true
	}
	_, ok := s.rpg.Pending()
	return ok
}

// close marks the session closed and releases any caller still waiting on
// a turn.
func (s *Session) close() {
	if s.closed.Swap(true) {
		return
	}
	s.quiz.Close()
	s.rpg.Close()
	s.logger.Debug("session closed")
}
