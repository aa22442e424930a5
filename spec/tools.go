package spec

// BlockArgs carries the raw body of one fenced block.
type BlockArgs struct {
	Block string `json:"block"`
}

// BlockOut is the status line returned to the model after a block ran.
type BlockOut struct {
	Result string `json:"result"`
}

type SessionStateArgs struct{}

type SessionStateOut struct {
	Quiz QuizState `json:"quiz"`
	RPG  RPGState  `json:"rpg"`
}
