package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"slices"
	"strconv"
	"strings"
	"sync"

	"github.com/charmbracelet/lipgloss"

	"github.com/flexigpt/turnblock-go/internal/rpg"
	"github.com/flexigpt/turnblock-go/spec"
)

var errEmptyAnswer = errors.New("empty answer")

var (
	panelStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#7C3AED"))

	summaryStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#6B7280"))

	questionStyle = lipgloss.NewStyle().Bold(true)

	correctStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#10B981"))

	incorrectStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#EF4444"))
)

// terminalPresenter draws panels as text and reads answers line by line.
// Its spec.Presenter methods run in the runtime's dispatch loop; answers
// are read on a separate goroutine per turn.
type terminalPresenter struct {
	mu  sync.Mutex
	out io.Writer

	ctx   context.Context
	lines <-chan string
	// eof is called when the answer stream ends.
	eof func()
}

func newTerminalPresenter(ctx context.Context, out io.Writer, lines <-chan string, eof func()) *terminalPresenter {
	return &terminalPresenter{out: out, ctx: ctx, lines: lines, eof: eof}
}

func (p *terminalPresenter) printf(format string, args ...any) {
	p.mu.Lock()
	defer p.mu.Unlock()
	fmt.Fprintf(p.out, format, args...)
}

func (p *terminalPresenter) OpenPanel(pn spec.Panel) {
	p.printf("%s\n", panelStyle.Render("== "+pn.Title+" =="))
}

func (p *terminalPresenter) RenderState(v spec.StateView) {
	var b strings.Builder
	b.WriteString(summaryStyle.Render(v.Summary))
	if s := v.RPG; s != nil {
		for _, st := range s.Stats {
			fmt.Fprintf(&b, "\n  %s: %s", st.Name, st.Value)
		}
		for _, it := range s.Inventory {
			fmt.Fprintf(&b, "\n  %s", rpg.DecorateItem(it))
		}
		if len(s.Traits) > 0 {
			fmt.Fprintf(&b, "\n  Traits: %s", strings.Join(s.Traits, ", "))
		}
		if len(s.Achievements) > 0 {
			fmt.Fprintf(&b, "\n  Achievements: %s", strings.Join(s.Achievements, ", "))
		}
	}
	p.printf("%s\n", b.String())
}

func (p *terminalPresenter) PresentTurn(t spec.TurnView, submit spec.SubmitFunc) {
	var b strings.Builder
	b.WriteString(questionStyle.Render(t.Question))
	for i, o := range t.Options {
		fmt.Fprintf(&b, "\n  %d) %s", i+1, o)
	}
	if t.Hint != "" {
		fmt.Fprintf(&b, "\n  %s", summaryStyle.Render("Hint: "+t.Hint))
	}
	b.WriteString("\n" + answerPrompt(t))
	p.printf("%s", b.String())

	go p.readAnswer(t, submit)
}

func (p *terminalPresenter) readAnswer(t spec.TurnView, submit spec.SubmitFunc) {
	for {
		select {
		case <-p.ctx.Done():
			return
		case line, ok := <-p.lines:
			if !ok {
				p.eof()
				return
			}
			d, err := parseAnswer(line, t)
			if err != nil {
				p.printf("%s\n%s", incorrectStyle.Render(err.Error()), answerPrompt(t))
				continue
			}
			submit(d)
			return
		}
	}
}

func (p *terminalPresenter) ShowFeedback(f spec.Feedback) {
	style := incorrectStyle
	if f.Correct {
		style = correctStyle
	}
	msg := style.Render(f.Title)
	if f.Explanation != "" {
		msg += "\n" + f.Explanation
	}
	p.printf("%s\n", msg)
}

func (p *terminalPresenter) ShowEnd(e spec.EndScreen) {
	style := incorrectStyle
	if e.Outcome == spec.OutcomeWin {
		style = correctStyle
	}
	p.printf("%s\n%s\n", style.Bold(true).Render(e.Title), e.Message)
}

func answerPrompt(t spec.TurnView) string {
	switch {
	case t.Mode == spec.QuizModeMultipleChoice:
		return "> choose one or more (e.g. 1,3): "
	case len(t.Options) > 0 && (t.AllowCustom || t.Mode == spec.QuizModeTextInput):
		return "> pick a number or type an answer: "
	case len(t.Options) > 0:
		return "> pick a number: "
	default:
		return "> "
	}
}

// parseAnswer turns one input line into a decision for t. Numbers pick
// options; option text is accepted as typed. Free text is only taken when
// the turn has no options or allows it.
func parseAnswer(line string, t spec.TurnView) (spec.Decision, error) {
	line = strings.TrimSpace(line)
	if line == "" {
		return spec.Decision{}, errEmptyAnswer
	}

	if t.Mode == spec.QuizModeMultipleChoice {
		var picked []string
		for part := range strings.SplitSeq(line, ",") {
			part = strings.TrimSpace(part)
			if part == "" {
				continue
			}
			o, ok := pickOption(part, t.Options)
			if !ok {
				return spec.Decision{}, fmt.Errorf("unknown option %q", part)
			}
			picked = append(picked, o)
		}
		if len(picked) == 0 {
			return spec.Decision{}, errEmptyAnswer
		}
		return spec.ChooseMany(picked...), nil
	}

	if o, ok := pickOption(line, t.Options); ok {
		return spec.Choose(o), nil
	}
	if len(t.Options) == 0 || t.AllowCustom || t.Mode == spec.QuizModeTextInput {
		return spec.Choose(line), nil
	}
	return spec.Decision{}, fmt.Errorf("pick one of 1-%d", len(t.Options))
}

func pickOption(s string, options []string) (string, bool) {
	if n, err := strconv.Atoi(s); err == nil && n >= 1 && n <= len(options) {
		return options[n-1], true
	}
	if i := slices.IndexFunc(options, func(o string) bool { return strings.EqualFold(o, s) }); i >= 0 {
		return options[i], true
	}
	return "", false
}
