package llm

import (
	"testing"
	"time"
)

func TestConfigValidate(t *testing.T) {
	valid := func() *Config {
		c := DefaultConfig()
		c.Model = "test-model"
		c.APIKey = "key"
		return c
	}

	if err := valid().Validate(); err != nil {
		t.Fatalf("valid config rejected: %v", err)
	}

	cases := []struct {
		name   string
		mutate func(*Config)
	}{
		{"unknown backend", func(c *Config) { c.Backend = "carrier_pigeon" }},
		{"hosted without api key", func(c *Config) { c.APIKey = "" }},
		{"hosted without model", func(c *Config) { c.Model = "" }},
		{"local without command", func(c *Config) { c.Backend = BackendLocal; c.LocalCommand = "" }},
		{"zero timeout", func(c *Config) { c.Timeout = 0 }},
		{"zero retries", func(c *Config) { c.MaxRetries = 0 }},
		{"temperature out of range", func(c *Config) { c.Temperature = 2.5 }},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			c := valid()
			tc.mutate(c)
			if err := c.Validate(); err == nil {
				t.Fatal("expected validation error")
			}
		})
	}
}

func TestNewSelectsBackendVariant(t *testing.T) {
	base := func(backend string) *Config {
		return &Config{
			Backend:      backend,
			Model:        "test-model",
			APIKey:       "key",
			LocalCommand: "true",
			Timeout:      time.Second,
			MaxRetries:   1,
			Temperature:  0.7,
		}
	}

	if gen, err := New(base(BackendChatAPI)); err != nil {
		t.Fatalf("chat_api: %v", err)
	} else if _, ok := gen.(*OpenAIProvider); !ok {
		t.Fatalf("chat_api: got %T", gen)
	}

	if gen, err := New(base(BackendInferenceAPI)); err != nil {
		t.Fatalf("inference_api: %v", err)
	} else if _, ok := gen.(*InferenceProvider); !ok {
		t.Fatalf("inference_api: got %T", gen)
	}

	if gen, err := New(base(BackendLocal)); err != nil {
		t.Fatalf("local: %v", err)
	} else if _, ok := gen.(*LocalProvider); !ok {
		t.Fatalf("local: got %T", gen)
	}

	if _, err := New(base("smoke_signals")); err == nil {
		t.Fatal("expected error for unknown backend")
	}
}
