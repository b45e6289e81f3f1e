package audio

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"mystery-shorts-pipeline/config"
	"mystery-shorts-pipeline/store"
	"mystery-shorts-pipeline/types"
)

// Narrator turns the script's narration into a voiceover track, with a
// subtitle track when the primary engine delivers word timing.
type Narrator struct {
	cfg       *config.Config
	primary   Engine
	secondary Engine
}

// New creates a Narrator with the edge-tts primary and gtts fallback.
func New(cfg *config.Config) *Narrator {
	return &Narrator{
		cfg:       cfg,
		primary:   &EdgeEngine{Voice: cfg.Audio.Voice, Rate: cfg.Audio.Rate},
		secondary: &GTTSEngine{Lang: cfg.Audio.FallbackLang},
	}
}

// NewWithEngines wires explicit engines.
func NewWithEngines(cfg *config.Config, primary, secondary Engine) *Narrator {
	return &Narrator{cfg: cfg, primary: primary, secondary: secondary}
}

// Run synthesizes the full narration into assets/<slug>/voiceover.mp3
// and records the artifact paths on the document. If the primary engine
// fails for any reason the secondary is used and no subtitle track is
// produced. The stage fails only if no audio file exists afterwards.
func (n *Narrator) Run(ctx context.Context, doc *types.Document, docPath string) error {
	slug := trimExt(filepath.Base(docPath))
	assetDir := filepath.Join(n.cfg.Paths.AssetsRoot, slug)
	if err := os.MkdirAll(assetDir, 0755); err != nil {
		return fmt.Errorf("create asset dir: %w", err)
	}

	text := cleanTextForSpeech(doc.Narration())
	audioFile := filepath.Join(assetDir, "voiceover.mp3")

	log.Printf("[audio] 🗣️ Generating audio (%s speed)...", n.cfg.Audio.Rate)

	subtitleFile, err := n.primary.Synthesize(ctx, text, audioFile)
	if err != nil {
		log.Printf("[audio] Warning: primary engine failed: %v — switching to fallback", err)
		subtitleFile = ""
		if _, err2 := n.secondary.Synthesize(ctx, text, audioFile); err2 != nil {
			log.Printf("[audio] Warning: fallback engine failed: %v", err2)
		}
	}

	if _, err := os.Stat(audioFile); err != nil {
		return fmt.Errorf("audio generation failed: no file at %s", audioFile)
	}

	doc.AudioPath = audioFile
	if err := store.Patch(docPath, "audio_path", audioFile); err != nil {
		return fmt.Errorf("record audio path: %w", err)
	}

	if subtitleFile != "" {
		if _, err := os.Stat(subtitleFile); err == nil {
			doc.SubtitlePath = subtitleFile
			if err := store.Patch(docPath, "subtitle_path", subtitleFile); err != nil {
				return fmt.Errorf("record subtitle path: %w", err)
			}
		}
	}

	log.Printf("[audio] ✅ Voiceover ready: %s", audioFile)
	return nil
}

func trimExt(name string) string {
	return name[:len(name)-len(filepath.Ext(name))]
}
