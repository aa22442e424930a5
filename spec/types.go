package spec

// SessionID identifies a runtime session (UUIDv7 string).
type SessionID string

// TurnID identifies one pending turn (UUIDv7 string).
type TurnID string

// EngineKind names one of the turn engines.
type EngineKind string

const (
	EngineQuiz EngineKind = "quiz"
	EngineRPG  EngineKind = "rpg"
)

// Lang is a fenced code-block language handled by the runtime.
type Lang string

const (
	LangQuizInit Lang = "quizinit"
	LangQuiz     Lang = "quiz"
	LangRPGInit  Lang = "rpginit"
	LangRPG      Lang = "rpg"
)

// Langs returns every code-block language the runtime replaces, in a stable order.
func Langs() []Lang {
	return []Lang{LangQuizInit, LangQuiz, LangRPGInit, LangRPG}
}

// Kind reports the engine a language belongs to.
func (l Lang) Kind() (EngineKind, bool) {
	switch l {
	case LangQuizInit, LangQuiz:
		return EngineQuiz, true
	case LangRPGInit, LangRPG:
		return EngineRPG, true
	default:
		return "", false
	}
}

// IsInit reports whether the language carries an init-config block.
func (l Lang) IsInit() bool { return l == LangQuizInit || l == LangRPGInit }

// QuizMode selects how a quiz question is answered.
type QuizMode string

const (
	QuizModeSingleChoice   QuizMode = "single_choice"
	QuizModeMultipleChoice QuizMode = "multiple_choice"
	QuizModeTextInput      QuizMode = "text_input"
)

// Valid reports whether m is one of the known modes.
func (m QuizMode) Valid() bool {
	switch m {
	case QuizModeSingleChoice, QuizModeMultipleChoice, QuizModeTextInput:
		return true
	default:
		return false
	}
}

type QuizInit struct {
	Title string `json:"title"`
}

// QuizTurn is one parsed quiz question. It is consumed once and discarded.
type QuizTurn struct {
	Question string   `json:"question"`
	Mode     QuizMode `json:"mode"`
	Options  []string `json:"options,omitempty"`

	// CorrectAnswer is used by single_choice and text_input.
	CorrectAnswer string `json:"correctAnswer,omitempty"`
	// CorrectAnswers is used by multiple_choice.
	CorrectAnswers []string `json:"correctAnswers,omitempty"`

	Hint                string `json:"hint,omitempty"`
	CommentaryCorrect   string `json:"commentaryCorrect,omitempty"`
	CommentaryIncorrect string `json:"commentaryIncorrect,omitempty"`
	Explanation         string `json:"explanation,omitempty"`
}

type QuizState struct {
	Title string `json:"title"`
	Score int    `json:"score"`
	Total int    `json:"total"`
}

type RPGInit struct {
	Title        string   `json:"title"`
	Inventory    []string `json:"inventory"`
	Stats        Stats    `json:"stats"`
	Traits       []string `json:"traits"`
	Achievements []string `json:"achievements"`
}

// Outcome is the result of a terminal rpg block.
type Outcome string

const (
	OutcomeWin  Outcome = "win"
	OutcomeLose Outcome = "lose"
)

// Mutations are the side-effect directives of one rpg block.
// Every directive is optional.
type Mutations struct {
	StatsDelta      Stats    `json:"statsDelta,omitempty"`
	SetStats        Stats    `json:"setStats,omitempty"`
	AddInventory    []string `json:"addInventory,omitempty"`
	RemoveInventory []string `json:"removeInventory,omitempty"`
	AddTraits       []string `json:"addTraits,omitempty"`
	RemoveTraits    []string `json:"removeTraits,omitempty"`
	AddAchievements []string `json:"addAchievements,omitempty"`

	// End is set when the block carried an end directive; anything other
	// than "win" is normalized to OutcomeLose.
	End        Outcome `json:"end,omitempty"`
	EndTitle   string  `json:"endTitle,omitempty"`
	EndMessage string  `json:"endMessage,omitempty"`
}

// Terminal reports whether the block ends the game.
func (m Mutations) Terminal() bool { return m.End != "" }

// Empty reports whether no directive is present.
func (m Mutations) Empty() bool {
	return len(m.StatsDelta) == 0 && len(m.SetStats) == 0 &&
		len(m.AddInventory) == 0 && len(m.RemoveInventory) == 0 &&
		len(m.AddTraits) == 0 && len(m.RemoveTraits) == 0 &&
		len(m.AddAchievements) == 0 && !m.Terminal()
}

// RPGTurn is one parsed rpg block.
type RPGTurn struct {
	Question    string    `json:"question"`
	Options     []string  `json:"options,omitempty"`
	AllowCustom bool      `json:"allowCustom,omitempty"`
	Mutations   Mutations `json:"mutations"`
}

type RPGState struct {
	Title        string   `json:"title"`
	Inventory    []string `json:"inventory"`
	Stats        Stats    `json:"stats"`
	Traits       []string `json:"traits"`
	Achievements []string `json:"achievements"`

	Ended   bool    `json:"ended,omitempty"`
	Outcome Outcome `json:"outcome,omitempty"`
}

// Clone returns a deep copy safe to hand across goroutines.
func (s RPGState) Clone() RPGState {
	out := s
	out.Inventory = cloneStrings(s.Inventory)
	out.Stats = s.Stats.Clone()
	out.Traits = cloneStrings(s.Traits)
	out.Achievements = cloneStrings(s.Achievements)
	return out
}

func cloneStrings(in []string) []string {
	if in == nil {
		return []string{}
	}
	return append([]string(nil), in...)
}
