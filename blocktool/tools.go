// Package blocktool exposes the quiz and rpg block handlers as llmtools-go
// tools, for drivers that call tools instead of emitting fenced blocks.
package blocktool

import (
	"context"
	"errors"

	"github.com/flexigpt/llmtools-go"
	llmtoolsgoSpec "github.com/flexigpt/llmtools-go/spec"

	"github.com/flexigpt/turnblock-go/spec"
)

const (
	FuncIDQuizInit     llmtoolsgoSpec.FuncID = "github.com/flexigpt/turnblock-go/blocktool.QuizInit"
	FuncIDQuizAsk      llmtoolsgoSpec.FuncID = "github.com/flexigpt/turnblock-go/blocktool.QuizAsk"
	FuncIDRPGInit      llmtoolsgoSpec.FuncID = "github.com/flexigpt/turnblock-go/blocktool.RPGInit"
	FuncIDRPGTurn      llmtoolsgoSpec.FuncID = "github.com/flexigpt/turnblock-go/blocktool.RPGTurn"
	FuncIDSessionState llmtoolsgoSpec.FuncID = "github.com/flexigpt/turnblock-go/blocktool.SessionState"
)

// Register registers the block tools into an existing llmtools-go Registry.
// Session binding is done by closure via sessionID.
func Register(r *llmtools.Registry, rt spec.Runtime, sessionID spec.SessionID) error {
	if r == nil {
		return errors.New("nil registry")
	}
	if rt == nil {
		return errors.New("nil runtime")
	}

	blockTools := []struct {
		tool llmtoolsgoSpec.Tool
		lang spec.Lang
	}{
		{QuizInitTool(), spec.LangQuizInit},
		{QuizAskTool(), spec.LangQuiz},
		{RPGInitTool(), spec.LangRPGInit},
		{RPGTurnTool(), spec.LangRPG},
	}
	for _, bt := range blockTools {
		lang := bt.lang
		if err := llmtools.RegisterTypedAsTextTool[spec.BlockArgs, spec.BlockOut](
			r,
			bt.tool,
			func(ctx context.Context, args spec.BlockArgs) (spec.BlockOut, error) {
				out, err := rt.HandleBlock(ctx, sessionID, lang, args.Block)
				if err != nil {
					return spec.BlockOut{}, err
				}
				return spec.BlockOut{Result: out}, nil
			},
		); err != nil {
			return err
		}
	}

	// "session.state" -> typed -> text output (JSON).
	if err := llmtools.RegisterTypedAsTextTool[spec.SessionStateArgs, spec.SessionStateOut](
		r,
		SessionStateTool(),
		func(ctx context.Context, _ spec.SessionStateArgs) (spec.SessionStateOut, error) {
			return rt.State(ctx, sessionID)
		},
	); err != nil {
		return err
	}

	return nil
}

func Tools() []llmtoolsgoSpec.Tool {
	return []llmtoolsgoSpec.Tool{
		QuizInitTool(),
		QuizAskTool(),
		RPGInitTool(),
		RPGTurnTool(),
		SessionStateTool(),
	}
}

const blockArgSchema = `{
  "$schema":"http://json-schema.org/draft-07/schema#",
  "type":"object",
  "properties":{
    "block":{"type":"string","description":"Block body in key: value and bullet list form."}
  },
  "required":["block"],
  "additionalProperties":false
}`

func blockTool(id, slug, name, desc string, funcID llmtoolsgoSpec.FuncID, tag string) llmtoolsgoSpec.Tool {
	return llmtoolsgoSpec.Tool{
		SchemaVersion: llmtoolsgoSpec.SchemaVersion,
		ID:            id,
		Slug:          slug,
		Version:       "v1.0.0",
		DisplayName:   name,
		Description:   desc,
		Tags:          []string{tag},
		ArgSchema:     llmtoolsgoSpec.JSONSchema(blockArgSchema),
		GoImpl:        llmtoolsgoSpec.GoToolImpl{FuncID: funcID},
		CreatedAt:     llmtoolsgoSpec.SchemaStartTime,
		ModifiedAt:    llmtoolsgoSpec.SchemaStartTime,
	}
}

func QuizInitTool() llmtoolsgoSpec.Tool {
	return blockTool(
		"019c5a21-7e0b-7c41-9a52-3b1f0d6e8a01",
		"quiz.init",
		"Quiz Init",
		"Open the quiz panel and reset the score.",
		FuncIDQuizInit,
		"quiz",
	)
}

func QuizAskTool() llmtoolsgoSpec.Tool {
	return blockTool(
		"019c5a21-7e0b-7c41-9a52-3b1f0d6e8a02",
		"quiz.ask",
		"Quiz Question",
		"Ask one quiz question and wait for the user's answer.",
		FuncIDQuizAsk,
		"quiz",
	)
}

func RPGInitTool() llmtoolsgoSpec.Tool {
	return blockTool(
		"019c5a21-7e0b-7c41-9a52-3b1f0d6e8a03",
		"rpg.init",
		"RPG Init",
		"Open the game panel with a starting character sheet.",
		FuncIDRPGInit,
		"rpg",
	)
}

func RPGTurnTool() llmtoolsgoSpec.Tool {
	return blockTool(
		"019c5a21-7e0b-7c41-9a52-3b1f0d6e8a04",
		"rpg.turn",
		"RPG Turn",
		"Apply state changes, then ask the player what to do or end the game.",
		FuncIDRPGTurn,
		"rpg",
	)
}

func SessionStateTool() llmtoolsgoSpec.Tool {
	return llmtoolsgoSpec.Tool{
		SchemaVersion: llmtoolsgoSpec.SchemaVersion,
		ID:            "019c5a21-7e0b-7c41-9a52-3b1f0d6e8a05",
		Slug:          "session.state",
		Version:       "v1.0.0",
		DisplayName:   "Session State",
		Description:   "Read the current quiz score and game state.",
		Tags:          []string{"quiz", "rpg"},
		ArgSchema: llmtoolsgoSpec.JSONSchema(`{
		  "$schema":"http://json-schema.org/draft-07/schema#",
		  "type":"object",
		  "properties":{},
		  "additionalProperties":false
		}`),
		GoImpl:     llmtoolsgoSpec.GoToolImpl{FuncID: FuncIDSessionState},
		CreatedAt:  llmtoolsgoSpec.SchemaStartTime,
		ModifiedAt: llmtoolsgoSpec.SchemaStartTime,
	}
}
