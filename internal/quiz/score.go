package quiz

import (
	"fmt"
	"slices"
	"strings"

	"github.com/flexigpt/turnblock-go/spec"
)

// Score reports whether d answers q correctly.
//
// Multiple choice compares the sorted selections with the sorted correct
// answers; duplicates are kept, so a repeated entry on one side only is
// incorrect. Other modes compare trimmed text case-insensitively. A decision
// of the wrong shape for the mode counts as an empty answer.
func Score(d spec.Decision, q spec.QuizTurn) bool {
	if q.Mode == spec.QuizModeMultipleChoice {
		var user []string
		if d.Multiple {
			user = slices.Clone(d.Choices)
		}
		want := slices.Clone(q.CorrectAnswers)
		slices.Sort(user)
		slices.Sort(want)
		return slices.Equal(user, want)
	}

	user := ""
	if !d.Multiple {
		user = d.Choice
	}
	return strings.EqualFold(strings.TrimSpace(user), strings.TrimSpace(q.CorrectAnswer))
}

// ScoreLine is the header text for s.
func ScoreLine(s spec.QuizState) string {
	return fmt.Sprintf("Score: %d / %d", s.Score, s.Total)
}

// FeedbackTitle is the commentary for a scored answer, falling back to a
// fixed text.
func FeedbackTitle(q spec.QuizTurn, correct bool) string {
	if correct {
		if q.CommentaryCorrect != "" {
			return q.CommentaryCorrect
		}
		return "Correct!"
	}
	if q.CommentaryIncorrect != "" {
		return q.CommentaryIncorrect
	}
	return "Incorrect"
}
