// Package llm provides the ordered model-variant fallback chain shared by
// the topic selector and the script writer.
package llm

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"mystery-shorts-pipeline/config"
)

// ErrAllModelsFailed is returned when every model variant in the chain
// failed. Callers can tell it apart from parse errors with errors.Is.
var ErrAllModelsFailed = errors.New("all model variants failed")

// Generator is what pipeline stages depend on.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// GenerateFunc performs one completion against a named model variant.
type GenerateFunc func(ctx context.Context, model, prompt string) (string, error)

// Chain tries a fixed ordered list of model variants from highest to
// lowest capability, waiting a short fixed delay between attempts.
// Every call restarts the chain from the top; there is no per-model
// health memory across calls.
type Chain struct {
	generate GenerateFunc
	models   []string
	delay    time.Duration
}

// NewChain builds a chain over an arbitrary generate function.
func NewChain(generate GenerateFunc, cfg config.LLMConfig) *Chain {
	return &Chain{
		generate: generate,
		models:   cfg.Models,
		delay:    time.Duration(cfg.AttemptDelaySec) * time.Second,
	}
}

// Generate returns the first successful completion, or an error wrapping
// ErrAllModelsFailed once the variant list is exhausted.
func (c *Chain) Generate(ctx context.Context, prompt string) (string, error) {
	if len(c.models) == 0 {
		return "", fmt.Errorf("%w: no model variants configured", ErrAllModelsFailed)
	}

	var lastErr error
	for _, model := range c.models {
		log.Printf("[llm] Trying model: %s...", model)
		text, err := c.generate(ctx, model, prompt)
		if err == nil {
			return text, nil
		}
		lastErr = err
		log.Printf("[llm] Warning: %s failed: %v — trying next", model, err)
		time.Sleep(c.delay)
	}

	return "", fmt.Errorf("%w: last error: %v", ErrAllModelsFailed, lastErr)
}
