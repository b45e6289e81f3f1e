package script

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"

	"github.com/tidwall/gjson"

	"mystery-shorts-pipeline/config"
	"mystery-shorts-pipeline/llm"
	"mystery-shorts-pipeline/store"
	"mystery-shorts-pipeline/types"
)

// Writer generates the structured script document for a topic.
type Writer struct {
	cfg *config.Config
	gen llm.Generator
}

// New creates a new script Writer
func New(cfg *config.Config, gen llm.Generator) *Writer {
	return &Writer{cfg: cfg, gen: gen}
}

// Run asks the chain for a script, validates its shape and persists it
// as <topic-slug>.json. Any failure here is fatal to the run.
func (w *Writer) Run(ctx context.Context, topic string) (*types.Document, string, error) {
	log.Printf("[script] 🧠 Brainstorming: %s...", topic)

	reply, err := w.gen.Generate(ctx, w.buildPrompt(topic))
	if err != nil {
		return nil, "", fmt.Errorf("script generation: %w", err)
	}

	doc, err := w.parse(reply)
	if err != nil {
		return nil, "", err
	}

	path := store.DocPath(topic)
	if err := store.Save(path, doc); err != nil {
		return nil, "", fmt.Errorf("save script: %w", err)
	}

	log.Printf("[script] ✅ Script ready: %q, %d segments → %s", doc.Title, len(doc.Segments), path)
	return doc, path, nil
}

// parse strips any markdown fence wrapping, pre-validates the shape and
// unmarshals into a Document.
func (w *Writer) parse(raw string) (*types.Document, error) {
	content := cleanJSON(raw)

	if !gjson.Valid(content) {
		return nil, fmt.Errorf("parse script JSON: invalid JSON in model output: %s", truncate(content, 200))
	}

	if gjson.Get(content, "title").String() == "" {
		return nil, fmt.Errorf("script missing title")
	}
	if gjson.Get(content, "viral_comment").String() == "" {
		return nil, fmt.Errorf("script missing viral_comment")
	}

	segments := gjson.Get(content, "segments").Array()
	if len(segments) != w.cfg.Script.SegmentCount {
		return nil, fmt.Errorf("script has %d segments, want %d", len(segments), w.cfg.Script.SegmentCount)
	}
	for i, seg := range segments {
		if seg.Get("text").String() == "" || seg.Get("image_prompt").String() == "" {
			return nil, fmt.Errorf("segment %d missing text or image_prompt", i)
		}
	}

	var doc types.Document
	if err := json.Unmarshal([]byte(content), &doc); err != nil {
		return nil, fmt.Errorf("parse script JSON: %w", err)
	}
	return &doc, nil
}

func (w *Writer) buildPrompt(topic string) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("You are an elite viral screenwriter. Write a STRICTLY 40-SECOND YouTube Shorts script about: %s.\n\n", topic))
	sb.WriteString("CRITICAL RULES:\n")
	sb.WriteString(fmt.Sprintf("1. MAX WORD COUNT: %d words. Do not exceed this. (Mandatory for retention).\n", w.cfg.Script.MaxWords))
	sb.WriteString(fmt.Sprintf("2. COLD OPEN: The first sentence must be a hook under %d words.\n", w.cfg.Script.HookMaxWords))
	sb.WriteString("3. NO FILLER: Jump straight into the horror.\n\n")
	sb.WriteString("Structure as valid JSON only:\n")
	sb.WriteString("{\n")
	sb.WriteString("    \"title\": \"Clickbait Title (ALL CAPS)\",\n")
	sb.WriteString("    \"viral_comment\": \"Controversial question\",\n")
	sb.WriteString("    \"segments\": [\n")
	sb.WriteString("        {\n")
	sb.WriteString("            \"text\": \"The Hook (Shocking statement)...\",\n")
	sb.WriteString(fmt.Sprintf("            \"image_prompt\": \"Terrifying, high contrast, hyper-detailed close-up shot of %s, 8k\"\n", topic))
	sb.WriteString("        },\n")
	sb.WriteString("        {\n")
	sb.WriteString("            \"text\": \"The Mystery (Fast paced)...\",\n")
	sb.WriteString("            \"image_prompt\": \"Cinematic wide shot of...\"\n")
	sb.WriteString("        },\n")
	sb.WriteString("        {\n")
	sb.WriteString("            \"text\": \"The Twist (Leave them scared)...\",\n")
	sb.WriteString("            \"image_prompt\": \"Abstract horror art of...\"\n")
	sb.WriteString("        }\n")
	sb.WriteString("    ]\n")
	sb.WriteString("}\n")
	return sb.String()
}

// cleanJSON strips markdown fences if the model wraps its response in ```json ... ```
func cleanJSON(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
