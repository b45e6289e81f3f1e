package topic

import (
	"context"
	"fmt"
	"log"
	"strings"

	"mystery-shorts-pipeline/config"
	"mystery-shorts-pipeline/llm"
	"mystery-shorts-pipeline/store"
)

// Selector picks one unused topic via the generative chain.
type Selector struct {
	cfg *config.Config
	gen llm.Generator
}

// New creates a new Selector
func New(cfg *config.Config, gen llm.Generator) *Selector {
	return &Selector{cfg: cfg, gen: gen}
}

// Run returns the chosen topic. It never fails: if every model variant
// errors out, or the chosen topic cannot be recorded in history, it falls
// back to the configured default topic with the history file untouched so
// a healthy later run is not poisoned by the outage.
func (s *Selector) Run(ctx context.Context) string {
	history, err := store.ReadHistory(s.cfg.Paths.HistoryFile)
	if err != nil {
		log.Printf("[topic] Warning: could not read history: %v", err)
	}

	reply, err := s.gen.Generate(ctx, s.buildPrompt(history))
	if err != nil {
		log.Printf("[topic] ❌ Topic generation failed: %v — using fallback topic", err)
		return s.cfg.Topic.FallbackTopic
	}

	chosen := strings.TrimSpace(reply)
	if chosen == "" {
		log.Println("[topic] ❌ Model returned an empty topic — using fallback topic")
		return s.cfg.Topic.FallbackTopic
	}

	if err := store.AppendHistory(s.cfg.Paths.HistoryFile, chosen); err != nil {
		log.Printf("[topic] ❌ Could not append history: %v — using fallback topic", err)
		return s.cfg.Topic.FallbackTopic
	}

	log.Printf("[topic] ✅ Topic selected: %s", chosen)
	return chosen
}

func (s *Selector) buildPrompt(history string) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("You are a YouTube Strategist for '%s'.\n", s.cfg.Topic.Channel))
	sb.WriteString("Generate ONE viral, dark mystery, paradox, or cosmic horror topic.\n")
	sb.WriteString("Rules:\n")
	sb.WriteString("1. It must be scary, mysterious, or mind-blowing.\n")
	sb.WriteString(fmt.Sprintf("2. It must NOT be in this list: %s\n", history))
	sb.WriteString("3. Return ONLY the topic name (no quotes).\n")
	return sb.String()
}
