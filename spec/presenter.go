package spec

import "strings"

// Cancelled is the decision value delivered to a caller whose turn was
// superseded by a newer one.
const Cancelled = "CANCELLED"

// Decision is the user's answer to one turn.
type Decision struct {
	// Choice holds a chosen option or typed text.
	Choice string `json:"choice,omitempty"`
	// Choices holds the selection of a multiple-choice question.
	Choices []string `json:"choices,omitempty"`
	// Multiple marks Choices as the answer.
	Multiple bool `json:"multiple,omitempty"`
	// Superseded is set when the turn was cancelled rather than answered.
	Superseded bool `json:"superseded,omitempty"`
}

// Choose is a single option or typed answer.
func Choose(s string) Decision { return Decision{Choice: s} }

// ChooseMany is a multiple-choice selection.
func ChooseMany(choices ...string) Decision {
	return Decision{Choices: append([]string{}, choices...), Multiple: true}
}

// CancelledDecision is what a superseded caller receives.
func CancelledDecision() Decision { return Decision{Choice: Cancelled, Superseded: true} }

func (d Decision) String() string {
	if d.Multiple {
		return strings.Join(d.Choices, ", ")
	}
	return d.Choice
}

// Panel asks the host to mount (or re-title) the panel for one engine.
type Panel struct {
	Kind  EngineKind `json:"kind"`
	Title string     `json:"title"`
	Icon  string     `json:"icon"`
}

// StateView is the header/sections content of a panel.
type StateView struct {
	Kind    EngineKind `json:"kind"`
	Title   string     `json:"title"`
	Summary string     `json:"summary"`

	// Reset asks the host to clear the turn area (init and new game).
	Reset bool `json:"reset,omitempty"`

	Quiz *QuizState `json:"quiz,omitempty"`
	RPG  *RPGState  `json:"rpg,omitempty"`
}

// TurnView is the question handed to the host for one pending turn.
type TurnView struct {
	ID       TurnID     `json:"id"`
	Kind     EngineKind `json:"kind"`
	Question string     `json:"question"`
	Options  []string   `json:"options,omitempty"`

	// Mode is set for quiz turns.
	Mode QuizMode `json:"mode,omitempty"`
	Hint string   `json:"hint,omitempty"`

	// AllowCustom lets the user type a free-form rpg action.
	AllowCustom bool `json:"allowCustom,omitempty"`
}

// SubmitFunc reports the user's decision for a presented turn. It may be
// called from any goroutine; calls after the first, or for a turn that is no
// longer pending, are ignored.
type SubmitFunc func(Decision)

// Feedback is shown after a quiz answer has been scored.
type Feedback struct {
	TurnID      TurnID `json:"turnID"`
	Correct     bool   `json:"correct"`
	Title       string `json:"title"`
	Explanation string `json:"explanation,omitempty"`
}

// EndScreen is shown when an rpg block ends the game.
type EndScreen struct {
	Outcome Outcome `json:"outcome"`
	Title   string  `json:"title"`
	Message string  `json:"message"`
}

// Presenter is the GUI host. Every method is invoked from the dispatch
// context and every call is safe to repeat with refreshed content.
type Presenter interface {
	OpenPanel(p Panel)
	RenderState(v StateView)
	PresentTurn(t TurnView, submit SubmitFunc)
	ShowFeedback(f Feedback)
	ShowEnd(e EndScreen)
}

// Dispatcher runs functions in the host's single dispatch context, in
// submission order. Post must not block the caller.
type Dispatcher interface {
	Post(fn func()) bool
}
