package llm

import (
	"context"
	"errors"
	"testing"

	"mystery-shorts-pipeline/config"
)

func chainCfg(models ...string) config.LLMConfig {
	return config.LLMConfig{Models: models}
}

func TestChainFirstSuccessWins(t *testing.T) {
	var tried []string
	gen := func(ctx context.Context, model, prompt string) (string, error) {
		tried = append(tried, model)
		return "reply from " + model, nil
	}

	chain := NewChain(gen, chainCfg("best", "backup"))
	got, err := chain.Generate(context.Background(), "p")
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if got != "reply from best" {
		t.Errorf("got %q", got)
	}
	if len(tried) != 1 {
		t.Errorf("tried %v, want only the first variant", tried)
	}
}

func TestChainFallsThroughInOrder(t *testing.T) {
	var tried []string
	gen := func(ctx context.Context, model, prompt string) (string, error) {
		tried = append(tried, model)
		if model == "last-resort" {
			return "ok", nil
		}
		return "", errors.New("quota exceeded")
	}

	chain := NewChain(gen, chainCfg("best", "backup", "last-resort"))
	got, err := chain.Generate(context.Background(), "p")
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if got != "ok" {
		t.Errorf("got %q", got)
	}
	want := []string{"best", "backup", "last-resort"}
	for i := range want {
		if tried[i] != want[i] {
			t.Fatalf("attempt order %v, want %v", tried, want)
		}
	}
}

func TestChainExhaustionIsTerminal(t *testing.T) {
	gen := func(ctx context.Context, model, prompt string) (string, error) {
		return "", errors.New("boom")
	}

	chain := NewChain(gen, chainCfg("a", "b"))
	_, err := chain.Generate(context.Background(), "p")
	if !errors.Is(err, ErrAllModelsFailed) {
		t.Fatalf("err = %v, want ErrAllModelsFailed", err)
	}
}

func TestChainRestartsFromTopEachCall(t *testing.T) {
	var tried []string
	gen := func(ctx context.Context, model, prompt string) (string, error) {
		tried = append(tried, model)
		if model == "best" {
			return "", errors.New("down")
		}
		return "ok", nil
	}

	chain := NewChain(gen, chainCfg("best", "backup"))
	for i := 0; i < 2; i++ {
		if _, err := chain.Generate(context.Background(), "p"); err != nil {
			t.Fatal(err)
		}
	}
	// No health memory: the failing best model is retried on every call.
	if len(tried) != 4 || tried[0] != "best" || tried[2] != "best" {
		t.Errorf("attempts %v, want chain restarted from the top", tried)
	}
}

func TestChainNoModelsConfigured(t *testing.T) {
	chain := NewChain(nil, chainCfg())
	_, err := chain.Generate(context.Background(), "p")
	if !errors.Is(err, ErrAllModelsFailed) {
		t.Fatalf("err = %v, want ErrAllModelsFailed", err)
	}
}
