package tools

import (
	"context"
	"encoding/json"

	"mdit/internal/chat"
)

// Tool is one callable operation exposed to the model. Implementations
// validate their own arguments; the registry only routes by name.
type Tool interface {
	Name() string
	Definition() chat.ToolDef
	Execute(ctx context.Context, args json.RawMessage) (string, error)
}
