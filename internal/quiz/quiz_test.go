package quiz

import (
	"context"
	"errors"
	"slices"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/flexigpt/turnblock-go/internal/dispatch"
	"github.com/flexigpt/turnblock-go/internal/presentertest"
	"github.com/flexigpt/turnblock-go/spec"
)

const planetQuestion = `question: Which planet is the largest?
mode: single_choice
options:
- Earth
- Mars
- Jupiter
- Saturn
correct_answer: Jupiter
commentary_correct: Spot on!
explanation: Jupiter is a gas giant.
`

func TestParseInit(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		in   string
		want string
	}{
		{"line", "title: General Knowledge Quiz", "General Knowledge Quiz"},
		{"json", `{"title": "Space Trivia"}`, "Space Trivia"},
		{"empty", "", DefaultTitle},
		{"empty title", "title:", DefaultTitle},
		{"broken json falls back to lines", "{title: x", DefaultTitle},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			if got := ParseInit(tc.in).Title; got != tc.want {
				t.Fatalf("title: got %q want %q", got, tc.want)
			}
		})
	}
}

func TestParseTurn(t *testing.T) {
	t.Parallel()

	q := ParseTurn(planetQuestion)
	if q.Question != "Which planet is the largest?" {
		t.Fatalf("question: %q", q.Question)
	}
	if q.Mode != spec.QuizModeSingleChoice {
		t.Fatalf("mode: %q", q.Mode)
	}
	if !slices.Equal(q.Options, []string{"Earth", "Mars", "Jupiter", "Saturn"}) {
		t.Fatalf("options: %v", q.Options)
	}
	if q.CorrectAnswer != "Jupiter" || q.CommentaryCorrect != "Spot on!" || q.Explanation == "" {
		t.Fatalf("unexpected fields: %+v", q)
	}
}

func TestParseTurn_Degradation(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name     string
		in       string
		question string
		mode     spec.QuizMode
		answers  []string
	}{
		{"empty", "", DefaultQuestion, spec.QuizModeSingleChoice, nil},
		{"loose first line", "Name a primary colour\nmode: text_input", "Name a primary colour", spec.QuizModeTextInput, nil},
		{"unknown mode", "question: Q\nmode: essay", "Q", spec.QuizModeSingleChoice, nil},
		{
			"csv answers", "question: Q\nmode: Multiple_Choice\ncorrect_answers: Earth, Mars",
			"Q", spec.QuizModeMultipleChoice, []string{"Earth", "Mars"},
		},
		{
			"list answers", "question: Q\nmode: multiple_choice\ncorrect_answers:\n- A\n- B",
			"Q", spec.QuizModeMultipleChoice, []string{"A", "B"},
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			q := ParseTurn(tc.in)
			if q.Question != tc.question || q.Mode != tc.mode {
				t.Fatalf("got question=%q mode=%q", q.Question, q.Mode)
			}
			if q.Options == nil {
				t.Fatalf("options must never be nil")
			}
			if tc.answers != nil && !slices.Equal(q.CorrectAnswers, tc.answers) {
				t.Fatalf("correct answers: %v", q.CorrectAnswers)
			}
		})
	}
}

func TestScore(t *testing.T) {
	t.Parallel()

	single := spec.QuizTurn{Mode: spec.QuizModeSingleChoice, CorrectAnswer: "jupiter"}
	text := spec.QuizTurn{Mode: spec.QuizModeTextInput, CorrectAnswer: " Paris "}
	multi := spec.QuizTurn{Mode: spec.QuizModeMultipleChoice, CorrectAnswers: []string{"Mars", "Earth"}}
	dup := spec.QuizTurn{Mode: spec.QuizModeMultipleChoice, CorrectAnswers: []string{"A", "A", "B"}}

	cases := []struct {
		name string
		d    spec.Decision
		q    spec.QuizTurn
		want bool
	}{
		{"case folded", spec.Choose("Jupiter"), single, true},
		{"wrong", spec.Choose("Mars"), single, false},
		{"trimmed text", spec.Choose("paris  "), text, true},
		{"order independent", spec.ChooseMany("Earth", "Mars"), multi, true},
		{"subset", spec.ChooseMany("Earth"), multi, false},
		{"superset", spec.ChooseMany("Earth", "Mars", "Venus"), multi, false},
		{"single answer to multiple", spec.Choose("Earth"), multi, false},
		{"multiple answer to single", spec.ChooseMany("jupiter"), single, false},
		{"duplicates kept", spec.ChooseMany("A", "B"), dup, false},
		{"duplicates matched", spec.ChooseMany("B", "A", "A"), dup, true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			if got := Score(tc.d, tc.q); got != tc.want {
				t.Fatalf("Score(%v) = %v want %v", tc.d, got, tc.want)
			}
		})
	}
}

func TestEngine_EndToEnd(t *testing.T) {
	t.Parallel()

	cases := []struct {
		answer string
		want   string
		score  int
		title  string
	}{
		{"Jupiter", "User answered: Jupiter. Correct: True", 1, "Spot on!"},
		{"Mars", "User answered: Mars. Correct: False", 0, "Incorrect"},
	}
	for _, tc := range cases {
		t.Run(tc.answer, func(t *testing.T) {
			t.Parallel()
			e, rec, loop := newTestEngine(t)

			got, err := e.Init(t.Context(), "title: General Knowledge Quiz")
			if err != nil || got != "The quiz has started." {
				t.Fatalf("Init: %q %v", got, err)
			}

			res := askAsync(t.Context(), e, planetQuestion)
			p := nextTurn(t, rec)
			if p.Turn.Question != "Which planet is the largest?" || len(p.Turn.Options) != 4 {
				t.Fatalf("presented turn: %+v", p.Turn)
			}
			p.Submit(spec.Choose(tc.answer))

			r := <-res
			if r.err != nil || r.out != tc.want {
				t.Fatalf("Ask: %q %v", r.out, r.err)
			}
			st := e.State()
			if st.Title != "General Knowledge Quiz" || st.Score != tc.score || st.Total != 1 {
				t.Fatalf("state: %+v", st)
			}

			barrier(t, loop)
			fb := rec.Feedback()
			if len(fb) != 1 || fb[0].Title != tc.title || fb[0].Explanation != "Jupiter is a gas giant." {
				t.Fatalf("feedback: %+v", fb)
			}
			last, _ := rec.LastState()
			if last.Summary != "Score: "+strconv.Itoa(tc.score)+" / 1" {
				t.Fatalf("summary: %q", last.Summary)
			}
		})
	}
}

func TestEngine_NewQuestionCancelsPending(t *testing.T) {
	t.Parallel()
	e, rec, _ := newTestEngine(t)

	first := askAsync(t.Context(), e, "question: A?\ncorrect_answer: a")
	a := nextTurn(t, rec)

	second := askAsync(t.Context(), e, "question: B?\ncorrect_answer: b")
	r := <-first
	if r.err != nil || r.out != "User answered: CANCELLED. Correct: None" {
		t.Fatalf("superseded caller: %q %v", r.out, r.err)
	}
	b := nextTurn(t, rec)

	// A late answer to A is ignored.
	a.Submit(spec.Choose("a"))
	b.Submit(spec.Choose("B"))

	r = <-second
	if r.err != nil || r.out != "User answered: B. Correct: True" {
		t.Fatalf("second caller: %q %v", r.out, r.err)
	}
	if st := e.State(); st.Score != 1 || st.Total != 1 {
		t.Fatalf("only the live turn should be scored: %+v", st)
	}
}

func TestEngine_SubmitOnlyOnce(t *testing.T) {
	t.Parallel()
	e, rec, loop := newTestEngine(t)

	res := askAsync(t.Context(), e, planetQuestion)
	p := nextTurn(t, rec)
	p.Submit(spec.Choose("Jupiter"))
	p.Submit(spec.Choose("Mars"))
	<-res
	barrier(t, loop)

	if st := e.State(); st.Total != 1 {
		t.Fatalf("double submit scored twice: %+v", st)
	}
	if len(rec.Feedback()) != 1 {
		t.Fatalf("feedback shown %d times", len(rec.Feedback()))
	}
}

func TestEngine_AskWithoutInitMountsPanel(t *testing.T) {
	t.Parallel()
	e, rec, _ := newTestEngine(t)

	res := askAsync(t.Context(), e, "question: Q?")
	p := nextTurn(t, rec)
	panels := rec.Panels()
	if len(panels) != 1 || panels[0].Title != DefaultTitle || panels[0].Icon != Icon {
		t.Fatalf("panels: %+v", panels)
	}
	p.Submit(spec.Choose("x"))
	<-res
}

func TestEngine_InitCancelsPending(t *testing.T) {
	t.Parallel()
	e, rec, _ := newTestEngine(t)

	res := askAsync(t.Context(), e, "question: Q?")
	nextTurn(t, rec)
	if _, err := e.Init(t.Context(), "title: Again"); err != nil {
		t.Fatalf("Init: %v", err)
	}
	if r := <-res; !strings.Contains(r.out, spec.Cancelled) {
		t.Fatalf("pending caller: %q", r.out)
	}
	if _, ok := e.Pending(); ok {
		t.Fatalf("no question should be pending after init")
	}
}

func TestEngine_AskContextCancelled(t *testing.T) {
	t.Parallel()
	e, rec, _ := newTestEngine(t)

	ctx, cancel := context.WithCancel(t.Context())
	res := askAsync(ctx, e, "question: Q?")
	p := nextTurn(t, rec)
	cancel()

	if r := <-res; !errors.Is(r.err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", r.err)
	}
	p.Submit(spec.Choose("late"))
	if st := e.State(); st.Total != 0 {
		t.Fatalf("late answer scored: %+v", st)
	}
}

// pendingQueryPresenter asks the engine for its pending question on every
// header render, the way a host toggles its answer controls.
type pendingQueryPresenter struct {
	*presentertest.Recorder
	eng     *Engine
	pending []bool
}

func (p *pendingQueryPresenter) RenderState(v spec.StateView) {
	_, ok := p.eng.Pending()
	p.pending = append(p.pending, ok)
	p.Recorder.RenderState(v)
}

func TestEngine_PresenterMayQueryPendingWhileScoring(t *testing.T) {
	t.Parallel()

	loop := dispatch.New(nil)
	t.Cleanup(loop.Close)
	pres := &pendingQueryPresenter{Recorder: presentertest.New()}
	e, err := New(Config{Presenter: pres, Dispatcher: loop})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	pres.eng = e

	res := askAsync(t.Context(), e, planetQuestion)
	nextTurn(t, pres.Recorder).Submit(spec.Choose("Jupiter"))

	select {
	case r := <-res:
		if r.err != nil || r.out != "User answered: Jupiter. Correct: True" {
			t.Fatalf("Ask: %q %v", r.out, r.err)
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("Ask did not return after the answer was scored")
	}

	ctx, cancel := context.WithTimeout(t.Context(), 2*time.Second)
	defer cancel()
	if err := loop.Do(ctx, func() {}); err != nil {
		t.Fatalf("dispatch loop stalled: %v", err)
	}
	if n := len(pres.pending); n == 0 || pres.pending[n-1] {
		t.Fatalf("scored question still reported pending: %v", pres.pending)
	}
	if st := e.State(); st.Score != 1 || st.Total != 1 {
		t.Fatalf("state: %+v", st)
	}
}

func TestNew_RequiresPresenter(t *testing.T) {
	t.Parallel()
	loop := dispatch.New(nil)
	defer loop.Close()
	if _, err := New(Config{Dispatcher: loop}); !errors.Is(err, spec.ErrNoPresenter) {
		t.Fatalf("got %v", err)
	}
}

type askResult struct {
	out string
	err error
}

func newTestEngine(t *testing.T) (*Engine, *presentertest.Recorder, *dispatch.Loop) {
	t.Helper()
	loop := dispatch.New(nil)
	t.Cleanup(loop.Close)
	rec := presentertest.New()
	e, err := New(Config{Presenter: rec, Dispatcher: loop})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return e, rec, loop
}

func askAsync(ctx context.Context, e *Engine, text string) <-chan askResult {
	ch := make(chan askResult, 1)
	go func() {
		out, err := e.Ask(ctx, text)
		ch <- askResult{out, err}
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

// barrier waits until everything posted so far has run.
func barrier(t *testing.T, loop *dispatch.Loop) {
	t.Helper()
	if err := loop.Do(t.Context(), func() {}); err != nil {
		t.Fatalf("barrier: %v", err)
	}
}
