// Package turnblock runs the quiz and rpg block languages of a chat
// assistant. A model writes fenced quizinit, quiz, rpginit and rpg blocks;
// the host hands each block body to a Runtime, which drives a presenter
// panel and returns a short status line to feed back to the model.
//
// Turn blocks (quiz, rpg) wait until the user answers, the turn is
// superseded by a newer one, or the context ends. Init blocks return at once.
package turnblock

import (
	"github.com/flexigpt/turnblock-go/internal/prompts"
	"github.com/flexigpt/turnblock-go/spec"
)

// BlockPrompt is one block-format instruction for the model's system prompt.
type BlockPrompt = prompts.Template

// PromptFilter selects block prompts. The zero value selects all of them.
type PromptFilter struct {
	// Langs restricts to these block languages. Empty means "all".
	Langs []spec.Lang

	// Kinds restricts to the languages of these engines. Empty means "all".
	Kinds []spec.EngineKind

	// DefaultOnly drops prompts that are off by default.
	DefaultOnly bool
}

func toPromptsFilter(f *PromptFilter) prompts.Filter {
	if f == nil {
		return prompts.Filter{}
	}
	return prompts.Filter{
		Langs:       append([]spec.Lang(nil), f.Langs...),
		Kinds:       append([]spec.EngineKind(nil), f.Kinds...),
		DefaultOnly: f.DefaultOnly,
	}
}
