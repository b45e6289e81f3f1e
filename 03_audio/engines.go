package audio

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
)

// Engine converts narration text into an audio file. Engines that
// produce word-boundary timing also write a subtitle track and return
// its path; engines without timing return "".
type Engine interface {
	Synthesize(ctx context.Context, text, audioFile string) (subtitleFile string, err error)
}

// EdgeEngine drives the edge-tts CLI. It supports a rate multiplier and
// emits word-boundary subtitles alongside the audio.
type EdgeEngine struct {
	Voice string
	Rate  string
}

func (e *EdgeEngine) Synthesize(ctx context.Context, text, audioFile string) (string, error) {
	subtitleFile := filepath.Join(filepath.Dir(audioFile), "subtitles.vtt")

	cmd := exec.CommandContext(ctx,
		"edge-tts",
		"--voice", e.Voice,
		"--rate", e.Rate,
		"--text", text,
		"--write-media", audioFile,
		"--write-subtitles", subtitleFile,
	)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr

	if err := cmd.Run(); err != nil {
		return "", fmt.Errorf("edge-tts: %w", err)
	}
	return subtitleFile, nil
}

// GTTSEngine drives the gtts-cli CLI. No timing output, no rate control.
type GTTSEngine struct {
	Lang string
}

func (g *GTTSEngine) Synthesize(ctx context.Context, text, audioFile string) (string, error) {
	cmd := exec.CommandContext(ctx,
		"gtts-cli", text,
		"--lang", g.Lang,
		"--output", audioFile,
	)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr

	if err := cmd.Run(); err != nil {
		return "", fmt.Errorf("gtts-cli: %w", err)
	}
	return "", nil
}

// cleanTextForSpeech strips markup characters the synthesizers would
// read aloud.
func cleanTextForSpeech(text string) string {
	r := strings.NewReplacer("*", "", "#", "", `"`, "")
	return r.Replace(text)
}
