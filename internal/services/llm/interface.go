// File: internal/services/llm/interface.go
package llm

import (
	"context"

	"github.com/citizenslab/citizens-chat/internal/services/prompt"
)

// Options carries per-call generation parameters.
type Options struct {
	MaxTokens   int
	Temperature float32
}

// Generator is the uniform contract over "given a prompt, produce reply
// text". Implementations must be safe for concurrent use; failures are always
// *GenerationError.
type Generator interface {
	Generate(ctx context.Context, p prompt.Prompt, opts Options) (string, error)
}
