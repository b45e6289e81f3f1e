package store

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/tidwall/gjson"

	"mystery-shorts-pipeline/types"
)

func TestSlug(t *testing.T) {
	tests := []struct {
		topic string
		want  string
	}{
		{"The Dark Forest Theory", "The_Dark_Forest_Theory"},
		{"What's Hiding in the Mariana Trench?", "Whats_Hiding_in_the_Mariana_Trench"},
		{"  padded topic  ", "padded_topic"},
		{"glitch: reality #2", "glitch_reality_2"},
	}
	for _, tt := range tests {
		if got := Slug(tt.topic); got != tt.want {
			t.Errorf("Slug(%q) = %q, want %q", tt.topic, got, tt.want)
		}
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "doc.json")
	doc := &types.Document{
		Title:        "THE SIGNAL THAT NEVER STOPPED",
		ViralComment: "Would you answer it?",
		Segments: []types.Segment{
			{Text: "It started in 1977.", ImagePrompt: "radio telescope at night"},
		},
	}

	if err := Save(path, doc); err != nil {
		t.Fatalf("Save: %v", err)
	}
	got, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got.Title != doc.Title || got.ViralComment != doc.ViralComment {
		t.Errorf("round trip mismatch: got %+v", got)
	}
	if len(got.Segments) != 1 || got.Segments[0].Text != doc.Segments[0].Text {
		t.Errorf("segments mismatch: got %+v", got.Segments)
	}
}

func TestPatchPreservesUnknownFields(t *testing.T) {
	path := filepath.Join(t.TempDir(), "doc.json")
	raw := `{"title":"T","viral_comment":"C","segments":[],"model_notes":"keep me"}`
	if err := os.WriteFile(path, []byte(raw), 0644); err != nil {
		t.Fatal(err)
	}

	if err := Patch(path, "audio_path", "assets/T/voiceover.mp3"); err != nil {
		t.Fatalf("Patch: %v", err)
	}
	if err := Patch(path, "image_paths", []string{"a.jpg", "b.jpg"}); err != nil {
		t.Fatalf("Patch: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	content := string(data)

	if gjson.Get(content, "model_notes").String() != "keep me" {
		t.Error("patch dropped a field it does not model")
	}
	if gjson.Get(content, "audio_path").String() != "assets/T/voiceover.mp3" {
		t.Error("audio_path not recorded")
	}
	paths := gjson.Get(content, "image_paths").Array()
	if len(paths) != 2 || paths[0].String() != "a.jpg" {
		t.Errorf("image_paths not recorded: %s", content)
	}
}

func TestHistoryMissingFileIsEmpty(t *testing.T) {
	got, err := ReadHistory(filepath.Join(t.TempDir(), "history.txt"))
	if err != nil {
		t.Fatalf("ReadHistory: %v", err)
	}
	if got != "" {
		t.Errorf("missing history = %q, want empty", got)
	}
}

func TestHistoryAppendGrows(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.txt")

	for _, topic := range []string{"Topic A", "Topic B"} {
		if err := AppendHistory(path, topic); err != nil {
			t.Fatalf("AppendHistory(%q): %v", topic, err)
		}
	}

	got, err := ReadHistory(path)
	if err != nil {
		t.Fatal(err)
	}
	if got != "Topic A\nTopic B\n" {
		t.Errorf("history = %q", got)
	}
	if !strings.HasSuffix(got, "\n") {
		t.Error("history entries must be newline terminated")
	}
}
