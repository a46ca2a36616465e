package llm

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"
)

type stubEngine struct {
	output string
	delay  time.Duration
	err    error
}

func (e *stubEngine) Complete(ctx context.Context, flattened string, _ Options) (string, error) {
	if e.delay > 0 {
		select {
		case <-time.After(e.delay):
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}
	if e.err != nil {
		return "", e.err
	}
	return e.output, nil
}

func TestLocalProviderGenerate(t *testing.T) {
	p := NewLocalProviderWithEngine(func() (Engine, error) {
		return &stubEngine{output: "User: hi\nAssistant: local reply"}, nil
	})

	got, err := p.Generate(context.Background(), testPrompt(), Options{})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if got != "local reply" {
		t.Fatalf("prompt echo not stripped, got %q", got)
	}
}

func TestLocalProviderLoadsEngineOnce(t *testing.T) {
	var loads int
	var mu sync.Mutex
	p := NewLocalProviderWithEngine(func() (Engine, error) {
		mu.Lock()
		loads++
		mu.Unlock()
		return &stubEngine{output: "ok"}, nil
	})

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := p.Generate(context.Background(), testPrompt(), Options{}); err != nil {
				t.Errorf("Generate: %v", err)
			}
		}()
	}
	wg.Wait()

	if loads != 1 {
		t.Fatalf("engine must load exactly once, loaded %d times", loads)
	}
}

func TestLocalProviderLoadFailure(t *testing.T) {
	var loads int
	p := NewLocalProviderWithEngine(func() (Engine, error) {
		loads++
		return nil, fmt.Errorf("model file missing")
	})

	for i := 0; i < 2; i++ {
		_, err := p.Generate(context.Background(), testPrompt(), Options{})
		var genErr *GenerationError
		if !errors.As(err, &genErr) || genErr.Kind != ErrKindBackendUnavailable {
			t.Fatalf("expected BACKEND_UNAVAILABLE, got %v", err)
		}
	}
	if loads != 1 {
		t.Fatalf("failed load must not be retried, loaded %d times", loads)
	}
}

func TestLocalProviderTimeout(t *testing.T) {
	p := NewLocalProviderWithEngine(func() (Engine, error) {
		return &stubEngine{output: "too late", delay: time.Second}, nil
	})

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := p.Generate(ctx, testPrompt(), Options{})

	var genErr *GenerationError
	if !errors.As(err, &genErr) || genErr.Kind != ErrKindTimeout {
		t.Fatalf("expected TIMEOUT, got %v", err)
	}
}

func TestLocalProviderEmptyOutput(t *testing.T) {
	p := NewLocalProviderWithEngine(func() (Engine, error) {
		return &stubEngine{output: "   \n"}, nil
	})

	_, err := p.Generate(context.Background(), testPrompt(), Options{})

	var genErr *GenerationError
	if !errors.As(err, &genErr) || genErr.Kind != ErrKindMalformedResponse {
		t.Fatalf("expected MALFORMED_RESPONSE, got %v", err)
	}
}

func TestLocalProviderEngineFailure(t *testing.T) {
	p := NewLocalProviderWithEngine(func() (Engine, error) {
		return &stubEngine{err: fmt.Errorf("inference crashed")}, nil
	})

	_, err := p.Generate(context.Background(), testPrompt(), Options{})

	var genErr *GenerationError
	if !errors.As(err, &genErr) || genErr.Kind != ErrKindBackendUnavailable {
		t.Fatalf("expected BACKEND_UNAVAILABLE, got %v", err)
	}
}
