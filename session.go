package turnblock

import (
	"errors"

	"github.com/flexigpt/llmtools-go"
	llmtoolsgoSpec "github.com/flexigpt/llmtools-go/spec"

	"github.com/flexigpt/turnblock-go/blocktool"
	"github.com/flexigpt/turnblock-go/spec"
)

// Session binds tool registration to one session id.
type Session struct {
	rt *Runtime
	id spec.SessionID
}

func (s *Session) ID() spec.SessionID { return s.id }

// Tools returns the block tool specs (quiz.init/quiz.ask/rpg.init/rpg.turn/session.state).
func (s *Session) Tools() []llmtoolsgoSpec.Tool { return blocktool.Tools() }

// RegisterTools registers the block tools into an existing llmtools-go Registry.
func (s *Session) RegisterTools(reg *llmtools.Registry) error {
	if s == nil || s.rt == nil {
		return errors.New("nil session runtime")
	}
	return blocktool.Register(reg, s.rt, s.id)
}

// NewToolsRegistry returns a new llmtools-go Registry containing only the block tools.
func (s *Session) NewToolsRegistry(opts ...llmtools.RegistryOption) (*llmtools.Registry, error) {
	if s == nil || s.rt == nil {
		return nil, errors.New("nil session runtime")
	}
	return blocktool.NewBlocksRegistry(s.rt, s.id, opts...)
}
