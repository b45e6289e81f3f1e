package render

import (
	"context"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"mystery-shorts-pipeline/config"
	"mystery-shorts-pipeline/types"
)

func TestSortByIndexIsNumericNotLexical(t *testing.T) {
	files := []string{"image_10.jpg", "image_2.jpg", "image_0.jpg", "image_1.jpg"}
	sortByIndex(files)
	want := []string{"image_0.jpg", "image_1.jpg", "image_2.jpg", "image_10.jpg"}
	for i := range want {
		if files[i] != want[i] {
			t.Fatalf("order %v, want %v", files, want)
		}
	}
}

func TestSplitDurationsSumsToTotal(t *testing.T) {
	tests := []struct {
		total float64
		n     int
	}{
		{90, 3},
		{41.37, 3},
		{12.5, 1},
		{100, 7},
	}
	for _, tt := range tests {
		durs := splitDurations(tt.total, tt.n)
		if len(durs) != tt.n {
			t.Fatalf("splitDurations(%v, %d) returned %d slots", tt.total, tt.n, len(durs))
		}
		var sum float64
		for _, d := range durs {
			sum += d
		}
		if math.Abs(sum-tt.total) > 1e-9 {
			t.Errorf("splitDurations(%v, %d) sums to %v", tt.total, tt.n, sum)
		}
	}
}

func TestSplitDurationsEqualSlots(t *testing.T) {
	// 90 seconds of narration over 3 images: 30 seconds each.
	for i, d := range splitDurations(90, 3) {
		if math.Abs(d-30) > 1e-9 {
			t.Errorf("slot %d = %v, want 30", i, d)
		}
	}
}

func TestWrapTitle(t *testing.T) {
	tests := []struct {
		in    string
		width int
		want  string
	}{
		{"THE DARK FOREST THEORY", 15, "THE DARK FOREST\nTHEORY"},
		{"SHORT", 15, "SHORT"},
		{"A B C D", 3, "A B\nC D"},
		{"", 15, ""},
	}
	for _, tt := range tests {
		if got := wrapTitle(tt.in, tt.width); got != tt.want {
			t.Errorf("wrapTitle(%q, %d) = %q, want %q", tt.in, tt.width, got, tt.want)
		}
	}
}

func TestEscapeDrawText(t *testing.T) {
	got := escapeDrawText("IT'S REAL: 100%")
	if got != `IT\'S REAL\: 100\%` {
		t.Errorf("escapeDrawText = %q", got)
	}
}

func renderCfg(assetsRoot string) *config.Config {
	return &config.Config{
		Render: config.RenderConfig{
			FPS: 24, TargetWidth: 720, TargetHeight: 1280,
			ZoomFactor: 1.10, Darken: 0.9,
			MusicVolume: 0.10, MusicFadeSec: 2,
			TitleDuration: 3.5, TitleWrapWidth: 15, TitleFontSize: 80,
			Preset: "ultrafast",
		},
		Paths: config.PathsConfig{AssetsRoot: assetsRoot, BackgroundMusic: "no_such_music.mp3"},
	}
}

func TestRunAbortsWhenAudioMissing(t *testing.T) {
	root := t.TempDir()
	assetDir := filepath.Join(root, "Topic")
	if err := os.MkdirAll(assetDir, 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(assetDir, "image_0.jpg"), []byte("img"), 0644); err != nil {
		t.Fatal(err)
	}

	doc := &types.Document{Title: "T"}
	_, err := New(renderCfg(root)).Run(context.Background(), doc, "Topic.json")
	if err == nil || !strings.Contains(err.Error(), "audio missing") {
		t.Fatalf("err = %v, want audio-missing abort", err)
	}
}

func TestRunAbortsWhenNoImages(t *testing.T) {
	root := t.TempDir()
	assetDir := filepath.Join(root, "Topic")
	if err := os.MkdirAll(assetDir, 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(assetDir, "voiceover.mp3"), []byte("mp3"), 0644); err != nil {
		t.Fatal(err)
	}

	doc := &types.Document{Title: "T"}
	_, err := New(renderCfg(root)).Run(context.Background(), doc, "Topic.json")
	if err == nil || !strings.Contains(err.Error(), "no images") {
		t.Fatalf("err = %v, want no-images abort", err)
	}
}

func TestMixBackgroundMusicAbsentKeepsNarration(t *testing.T) {
	c := New(renderCfg(t.TempDir()))
	workDir := t.TempDir()

	mixed, err := c.mixBackgroundMusic(context.Background(), "voiceover.mp3", 40, workDir)
	if err != nil {
		t.Fatal(err)
	}
	// An empty mix path tells Run to mux the narration track unchanged.
	if mixed != "" {
		t.Errorf("mixBackgroundMusic = %q, want empty when no music file exists", mixed)
	}
	if _, err := os.Stat(filepath.Join(workDir, "audio_mixed.mp3")); !os.IsNotExist(err) {
		t.Error("mix file written despite absent music")
	}
}

func TestCollectImagesOrdersAndFilters(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"image_2.jpg", "image_0.jpg", "image_1.png", "subtitles.vtt", "voiceover.mp3"} {
		if err := os.WriteFile(filepath.Join(dir, name), []byte("x"), 0644); err != nil {
			t.Fatal(err)
		}
	}

	got, err := collectImages(dir)
	if err != nil {
		t.Fatal(err)
	}
	want := []string{"image_0.jpg", "image_1.png", "image_2.jpg"}
	if len(got) != len(want) {
		t.Fatalf("collectImages = %v", got)
	}
	for i := range want {
		if filepath.Base(got[i]) != want[i] {
			t.Errorf("slot %d = %s, want %s", i, got[i], want[i])
		}
	}
}
