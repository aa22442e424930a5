package blocktool

import (
	"errors"

	"github.com/flexigpt/llmtools-go"

	"github.com/flexigpt/turnblock-go/spec"
)

// NewBlocksRegistry creates an llmtools-go Registry and registers ONLY the block tools into it.
func NewBlocksRegistry(
	rt spec.Runtime,
	sessionID spec.SessionID,
	opts ...llmtools.RegistryOption,
) (*llmtools.Registry, error) {
	if rt == nil {
		return nil, errors.New("nil runtime")
	}
	r, err := llmtools.NewRegistry(opts...)
	if err != nil {
		return nil, err
	}
	if err := Register(r, rt, sessionID); err != nil {
		return nil, err
	}
	return r, nil
}
