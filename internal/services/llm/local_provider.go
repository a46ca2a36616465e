// File: internal/services/llm/local_provider.go
package llm

import (
	"context"
	"fmt"
	"os/exec"
	"strings"
	"sync"

	"github.com/citizenslab/citizens-chat/internal/services/prompt"
)

// Engine is the in-process inference capability behind the local backend.
// Implementations are loaded once per process and shared read-only across
// concurrent turns.
type Engine interface {
	Complete(ctx context.Context, flattened string, opts Options) (string, error)
}

// LocalProvider is the local model inference variant. The engine is
// initialized lazily on first use, memoized for the life of the process and
// never reloaded. Generation runs off the calling goroutine and is joined
// under the caller's context so a slow engine cannot block a turn past its
// timeout.
type LocalProvider struct {
	loadEngine func() (Engine, error)

	once   sync.Once
	engine Engine
	err    error
}

func NewLocalProvider(config *Config) *LocalProvider {
	return &LocalProvider{
		loadEngine: func() (Engine, error) {
			return newCommandEngine(config.LocalCommand)
		},
	}
}

// NewLocalProviderWithEngine wires an explicit engine loader; used by tests
// and by deployments embedding their own runtime.
func NewLocalProviderWithEngine(load func() (Engine, error)) *LocalProvider {
	return &LocalProvider{loadEngine: load}
}

type localResult struct {
	text string
	err  error
}

func (p *LocalProvider) Generate(ctx context.Context, pr prompt.Prompt, opts Options) (string, error) {
	p.once.Do(func() {
		p.engine, p.err = p.loadEngine()
	})
	if p.err != nil {
		return "", NewGenerationError(ErrKindBackendUnavailable, BackendLocal, "engine failed to load", p.err)
	}

	flattened := pr.Flatten()

	resultCh := make(chan localResult, 1)
	go func() {
		text, err := p.engine.Complete(ctx, flattened, opts)
		resultCh <- localResult{text: text, err: err}
	}()

	select {
	case res := <-resultCh:
		if res.err != nil {
			if genErr := wrapContextError(BackendLocal, res.err); genErr != nil {
				return "", genErr
			}
			return "", NewGenerationError(ErrKindBackendUnavailable, BackendLocal, "inference failed", res.err)
		}
		if strings.TrimSpace(res.text) == "" {
			return "", NewGenerationError(ErrKindMalformedResponse, BackendLocal, "empty inference output", nil)
		}
		return ExtractReply(res.text), nil
	case <-ctx.Done():
		// The engine goroutine drains into the buffered channel on its own.
		return "", NewGenerationError(ErrKindTimeout, BackendLocal, "generation timed out", ctx.Err())
	}
}

// commandEngine shells out to a local inference command (e.g. a llama.cpp
// binary) with the flattened prompt on stdin. The command must exist at load
// time; it is resolved once and reused for every turn.
type commandEngine struct {
	path string
	args []string
}

func newCommandEngine(command string) (*commandEngine, error) {
	fields := strings.Fields(command)
	if len(fields) == 0 {
		return nil, fmt.Errorf("empty local inference command")
	}

	path, err := exec.LookPath(fields[0])
	if err != nil {
		return nil, fmt.Errorf("inference command not found: %w", err)
	}

	return &commandEngine{path: path, args: fields[1:]}, nil
}

func (e *commandEngine) Complete(ctx context.Context, flattened string, opts Options) (string, error) {
	args := append([]string{}, e.args...)
	if opts.MaxTokens > 0 {
		args = append(args, fmt.Sprintf("--max-tokens=%d", opts.MaxTokens))
	}
	args = append(args, fmt.Sprintf("--temperature=%.2f", opts.Temperature))

	cmd := exec.CommandContext(ctx, e.path, args...)
	cmd.Stdin = strings.NewReader(flattened)

	out, err := cmd.Output()
	if err != nil {
		return "", fmt.Errorf("inference command failed: %w", err)
	}
	return string(out), nil
}
