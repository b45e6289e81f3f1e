package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"time"

	topic "mystery-shorts-pipeline/01_topic"
	script "mystery-shorts-pipeline/02_script"
	audio "mystery-shorts-pipeline/03_audio"
	images "mystery-shorts-pipeline/04_images"
	render "mystery-shorts-pipeline/05_render"
	upload "mystery-shorts-pipeline/06_upload"
	"mystery-shorts-pipeline/config"
	"mystery-shorts-pipeline/llm"
	"mystery-shorts-pipeline/types"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
)

func main() {
	// Load .env (local dev only — CI uses secrets)
	_ = godotenv.Load()

	cfg, err := config.Load("config.yaml")
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	runID := uuid.NewString()[:8]
	log.Printf("☁️ ECHOES OF REALITY: CLOUD BOT STARTED ☁️ — Run ID: %s", runID)

	ctx := context.Background()
	state := &types.PipelineState{
		RunID:     runID,
		StartedAt: time.Now().UTC().Format(time.RFC3339),
	}

	// Save state on exit; a set Error makes the run fail
	defer func() {
		state.CompletedAt = time.Now().UTC().Format(time.RFC3339)
		saveJSON("pipeline_state.json", state)
		if state.Error != "" {
			log.Printf("❌ Pipeline failed: %s", state.Error)
			os.Exit(1)
		}
		log.Println("✅ Pipeline complete!")
	}()

	gen, err := llm.NewGemini(ctx, cfg.LLM)
	if err != nil {
		state.Error = fmt.Sprintf("generative client: %v", err)
		return
	}
	defer gen.Close()

	// ─────────────────────────────────────────────
	// STAGE 1: Topic — never fails, falls back internally
	// ─────────────────────────────────────────────
	log.Println("\n━━━ STAGE 1: Topic Selection ━━━")
	chosenTopic := topic.New(cfg, gen).Run(ctx)
	state.Topic = chosenTopic

	// ─────────────────────────────────────────────
	// STAGE 2: Script — hard gate
	// ─────────────────────────────────────────────
	log.Println("\n━━━ STAGE 2: Script Writing ━━━")
	doc, docPath, err := script.New(cfg, gen).Run(ctx, chosenTopic)
	if err != nil {
		state.Error = fmt.Sprintf("Stage 2 Script: %v", err)
		return
	}
	state.ScriptFile = docPath

	videoTitle := doc.Title
	if videoTitle == "" {
		videoTitle = chosenTopic
	}
	viralComment := doc.ViralComment
	if viralComment == "" {
		viralComment = fmt.Sprintf("What do you think about %s? 👇", chosenTopic)
	}

	// ─────────────────────────────────────────────
	// STAGE 3: Audio — hard gate
	// ─────────────────────────────────────────────
	log.Println("\n━━━ STAGE 3: Voiceover ━━━")
	if err := audio.New(cfg).Run(ctx, doc, docPath); err != nil {
		state.Error = fmt.Sprintf("Stage 3 Audio: %v", err)
		return
	}
	state.AudioFile = doc.AudioPath

	// ─────────────────────────────────────────────
	// STAGE 4: Images — internal fallbacks guarantee a full set
	// ─────────────────────────────────────────────
	log.Println("\n━━━ STAGE 4: Images ━━━")
	if err := images.New(cfg).Run(ctx, doc, docPath); err != nil {
		log.Printf("⚠️ Stage 4 Images: %v — continuing with whatever was produced", err)
	}

	// ─────────────────────────────────────────────
	// STAGE 5: Render — hard gate
	// ─────────────────────────────────────────────
	log.Println("\n━━━ STAGE 5: Render ━━━")
	videoFile, err := render.New(cfg).Run(ctx, doc, docPath)
	if err != nil {
		state.Error = fmt.Sprintf("Stage 5 Render: %v", err)
		return
	}
	state.VideoFile = videoFile

	if _, err := os.Stat(videoFile); err != nil {
		state.Error = fmt.Sprintf("Stage 5 Render: final video missing at %s", videoFile)
		return
	}

	// ─────────────────────────────────────────────
	// STAGE 6: Publish — failure logged, run still succeeds
	// ─────────────────────────────────────────────
	log.Println("\n━━━ STAGE 6: Publish ━━━")
	videoID, err := upload.New(cfg).Run(ctx, videoFile, videoTitle, chosenTopic, viralComment)
	if err != nil {
		log.Printf("⚠️ Stage 6 Publish: %v", err)
		state.PublishNote = fmt.Sprintf("publish failed: %v", err)
		return
	}
	state.YouTubeID = videoID
	state.YouTubeURL = fmt.Sprintf("https://www.youtube.com/watch?v=%s", videoID)

	_ = upload.LogUpload(videoID, videoTitle, videoFile, cfg.Paths.Logs)
}

func saveJSON(path string, v interface{}) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		log.Printf("Warning: could not marshal JSON for %s: %v", path, err)
		return
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		log.Printf("Warning: could not save %s: %v", path, err)
	}
}
