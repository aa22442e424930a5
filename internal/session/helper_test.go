package session

import (
	"context"
	"testing"
	"time"

	"github.com/flexigpt/turnblock-go/internal/dispatch"
	"github.com/flexigpt/turnblock-go/internal/presentertest"
	"github.com/flexigpt/turnblock-go/spec"
)

type blockResult struct {
	out string
	err error
}

func newTestStore(t *testing.T, cfg StoreConfig) *Store {
	t.Helper()
	loop := dispatch.New(nil)
	t.Cleanup(loop.Close)
	cfg.Dispatcher = loop
	st := NewStore(cfg)
	t.Cleanup(st.CloseAll)
	return st
}

func mustNewSession(t *testing.T, st *Store) (*Session, *presentertest.Recorder) {
	t.Helper()
	rec := presentertest.New()
	s, err := st.NewSession(t.Context(), rec)
	if err != nil {
		t.Fatalf("NewSession: %v", err)
	}
	return s, rec
}

func handleAsync(ctx context.Context, s *Session, lang spec.Lang, text string) <-chan blockResult {
	ch := make(chan blockResult, 1)
	go func() {
		out, err := s.HandleBlock(ctx, lang, text)
		ch <- blockResult{out, err}
	}()
	return ch
}

func nextTurn(t *testing.T, rec *presentertest.Recorder) presentertest.Presented {
	t.Helper()
	ctx, cancel := context.WithTimeout(t.Context(), 2*time.Second)
	defer cancel()
	p, err := rec.NextTurn(ctx)
	if err != nil {
		t.Fatalf("no turn presented: %v", err)
	}
	return p
}

func waitResult(t *testing.T, ch <-chan blockResult) blockResult {
	t.Helper()
	select {
	case r := <-ch:
		return r
	case <-time.After(2 * time.Second):
		t.Fatalf("caller was never released")
		return blockResult{}
	}
}

// flush waits until everything posted to the store's dispatcher has run.
func flush(t *testing.T, st *Store) {
	t.Helper()
	loop, ok := st.cfg.Dispatcher.(*dispatch.Loop)
	if !ok {
		t.Fatalf("store dispatcher is not a loop")
	}
	if err := loop.Do(t.Context(), func() {}); err != nil {
		t.Fatalf("flush: %v", err)
	}
}
