// Package quiz implements the quiz engine: question blocks are presented one
// at a time, each answer is scored, and the running score is kept per
// session.
package quiz

import (
	"strings"

	"github.com/flexigpt/turnblock-go/internal/blockparse"
	"github.com/flexigpt/turnblock-go/spec"
)

const (
	DefaultTitle    = "Quiz"
	DefaultQuestion = "What is your answer?"
)

// ParseInit reads a quizinit block. JSON objects are accepted as well as
// "title: ..." lines.
func ParseInit(text string) spec.QuizInit {
	cfg := spec.QuizInit{}
	if obj, ok := blockparse.DecodeObject(text); ok {
		cfg.Title, _ = obj.String("title")
	} else {
		cfg.Title = blockparse.Parse(text).Scalar("title")
	}
	if strings.TrimSpace(cfg.Title) == "" {
		cfg.Title = DefaultTitle
	}
	return cfg
}

// ParseTurn reads a quiz block. It never fails; missing fields get defaults.
func ParseTurn(text string) spec.QuizTurn {
	b := blockparse.Parse(text)

	q := spec.QuizTurn{
		Question:            b.Scalar("question"),
		Mode:                spec.QuizMode(strings.ToLower(b.Scalar("mode"))),
		Options:             []string{},
		Hint:                b.Scalar("hint"),
		CommentaryCorrect:   b.Scalar("commentary_correct"),
		CommentaryIncorrect: b.Scalar("commentary_incorrect"),
		Explanation:         b.Scalar("explanation"),
	}
	if q.Question == "" {
		q.Question = b.FirstLoose()
	}
	if q.Question == "" {
		q.Question = DefaultQuestion
	}
	if !q.Mode.Valid() {
		q.Mode = spec.QuizModeSingleChoice
	}
	if opts, ok := b.List("options"); ok {
		q.Options = opts
	}

	if e, ok := b.Lookup("correct_answer"); ok {
		if e.Kind == blockparse.Scalar {
			q.CorrectAnswer = e.Value
		} else if len(e.Items) > 0 {
			q.CorrectAnswer = e.Items[0]
		}
	}
	if answers, ok := b.List("correct_answers"); ok {
		q.CorrectAnswers = answers
	}
	return q
}
