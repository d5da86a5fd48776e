package mcp

import (
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
)

// decode turns a tool call's raw arguments into one of the request
// structs in handlers.go (CaptureRequest, HelpStartRequest, ...).
// Arguments arrive as map[string]any; a marshal round trip through
// the struct's json tags replaces per-field type assertions, and
// unknown keys are dropped rather than rejected.
func decode[T any](req mcp.CallToolRequest) (T, error) {
	var parsed T
	raw, err := json.Marshal(req.GetArguments())
	if err != nil {
		return parsed, fmt.Errorf("encode tool arguments: %w", err)
	}
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return parsed, fmt.Errorf("decode tool arguments: %w", err)
	}
	return parsed, nil
}
