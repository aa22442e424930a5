package spec

import "context"

// Runtime is the interface that tools bind to.
// Implementations (like package turnblock Runtime) own session state.
type Runtime interface {
	HandleBlock(ctx context.Context, sessionID SessionID, lang Lang, block string) (string, error)
	State(ctx context.Context, sessionID SessionID) (SessionStateOut, error)
}
