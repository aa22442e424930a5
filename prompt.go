package turnblock

import (
	"context"
	"fmt"

	"github.com/flexigpt/turnblock-go/internal/prompts"
	"github.com/flexigpt/turnblock-go/spec"
)

// LoadPromptOverrides reads user-edited prompts from dir ("quiz.md",
// "rpg.md", ...) and lays them over the built-in ones. A later call replaces
// the overrides of an earlier one.
func (r *Runtime) LoadPromptOverrides(ctx context.Context, dir string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	overrides, err := prompts.LoadDir(ctx, dir)
	if err != nil {
		return err
	}

	r.mu.Lock()
	r.promptOverrides = overrides
	r.mu.Unlock()

	r.logger.Debug("prompt overrides loaded", "dir", dir, "count", len(overrides))
	return nil
}

// Prompts returns the block-format instructions matching f. A nil f falls
// back to the filter given with WithPromptFilter, if any.
func (r *Runtime) Prompts(f *PromptFilter) ([]BlockPrompt, error) {
	if r == nil {
		return nil, fmt.Errorf("%w: nil runtime receiver", spec.ErrInvalidArgument)
	}
	all, err := prompts.All()
	if err != nil {
		return nil, err
	}

	r.mu.RLock()
	all = prompts.Apply(all, r.promptOverrides)
	r.mu.RUnlock()

	if f == nil {
		f = r.promptFilter
	}
	return toPromptsFilter(f).Select(all), nil
}

// PromptsXML renders the selected prompts as a <blockFormats> section for a
// system prompt. Template texts are kept verbatim in CDATA.
func (r *Runtime) PromptsXML(ctx context.Context, f *PromptFilter) (string, error) {
	if ctx == nil {
		return "", fmt.Errorf("%w: nil context", spec.ErrInvalidArgument)
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}
	ts, err := r.Prompts(f)
	if err != nil {
		return "", err
	}
	return prompts.XML(ts)
}
