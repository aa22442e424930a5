// Package presentertest provides a recording spec.Presenter for tests.
package presentertest

import (
	"context"
	"sync"

	"github.com/flexigpt/turnblock-go/spec"
)

// Presented is one PresentTurn call.
type Presented struct {
	Turn   spec.TurnView
	Submit spec.SubmitFunc
}

// Recorder records every presenter call. Presented turns are also queued so
// a test can answer them with NextTurn.
type Recorder struct {
	mu       sync.Mutex
	panels   []spec.Panel
	states   []spec.StateView
	feedback []spec.Feedback
	ends     []spec.EndScreen
	turns    []spec.TurnView

	queue chan Presented
}

func New() *Recorder {
	return &Recorder{queue: make(chan Presented, 256)}
}

func (r *Recorder) OpenPanel(p spec.Panel) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.panels = append(r.panels, p)
}

func (r *Recorder) RenderState(v spec.StateView) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.states = append(r.states, v)
}

func (r *Recorder) PresentTurn(t spec.TurnView, submit spec.SubmitFunc) {
	r.mu.Lock()
	r.turns = append(r.turns, t)
	r.mu.Unlock()
	r.queue <- Presented{Turn: t, Submit: submit}
}

func (r *Recorder) ShowFeedback(f spec.Feedback) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.feedback = append(r.feedback, f)
}

func (r *Recorder) ShowEnd(e spec.EndScreen) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.ends = append(r.ends, e)
}

// NextTurn waits for the next presented turn.
func (r *Recorder) NextTurn(ctx context.Context) (Presented, error) {
	select {
	case p := <-r.queue:
		return p, nil
	case <-ctx.Done():
		return Presented{}, ctx.Err()
	}
}

func (r *Recorder) Panels() []spec.Panel {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]spec.Panel(nil), r.panels...)
}

func (r *Recorder) States() []spec.StateView {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]spec.StateView(nil), r.states...)
}

// LastState returns the most recent RenderState call.
func (r *Recorder) LastState() (spec.StateView, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.states) == 0 {
		return spec.StateView{}, false
	}
	return r.states[len(r.states)-1], true
}

func (r *Recorder) Feedback() []spec.Feedback {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]spec.Feedback(nil), r.feedback...)
}

func (r *Recorder) Ends() []spec.EndScreen {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]spec.EndScreen(nil), r.ends...)
}

// Turns returns every presented turn, answered or not.
func (r *Recorder) Turns() []spec.TurnView {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]spec.TurnView(nil), r.turns...)
}
