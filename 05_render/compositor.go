package render

import (
	"context"
	"fmt"
	"log"
	"math/rand"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"mystery-shorts-pipeline/config"
	"mystery-shorts-pipeline/types"
)

// Compositor assembles the voiceover, the per-segment images, background
// music and the title card into the final vertical video.
type Compositor struct {
	cfg *config.Config
	rng *rand.Rand
}

// New creates a new Compositor
func New(cfg *config.Config) *Compositor {
	return &Compositor{
		cfg: cfg,
		rng: rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// Run renders <slug>_FINAL.mp4. Missing inputs abort before anything is
// written; music and title-card failures degrade gracefully.
func (c *Compositor) Run(ctx context.Context, doc *types.Document, docPath string) (string, error) {
	slug := strings.TrimSuffix(filepath.Base(docPath), filepath.Ext(docPath))
	assetDir := filepath.Join(c.cfg.Paths.AssetsRoot, slug)

	audioFile := filepath.Join(assetDir, "voiceover.mp3")
	if _, err := os.Stat(audioFile); err != nil {
		return "", fmt.Errorf("audio missing at %s", audioFile)
	}

	imagePaths, err := collectImages(assetDir)
	if err != nil {
		return "", err
	}
	log.Printf("[render] 🔹 Found %d images", len(imagePaths))

	totalDur, err := probeDuration(ctx, audioFile)
	if err != nil {
		return "", fmt.Errorf("probe audio duration: %w", err)
	}
	durations := splitDurations(totalDur, len(imagePaths))

	workDir := filepath.Join(assetDir, "render")
	if err := os.MkdirAll(workDir, 0755); err != nil {
		return "", fmt.Errorf("create render dir: %w", err)
	}

	// Step 1: one Ken Burns clip per image
	log.Println("[render] 🔹 Processing images...")
	var clips []string
	for i, img := range imagePaths {
		clip := filepath.Join(workDir, fmt.Sprintf("clip_%03d.mp4", i))
		zoomIn := c.rng.Intn(2) == 0
		if err := c.makeKenBurnsClip(ctx, img, clip, durations[i], zoomIn); err != nil {
			return "", fmt.Errorf("ken burns clip %d: %w", i, err)
		}
		clips = append(clips, clip)
	}

	// Step 2: concatenate clips
	baseVideo, err := c.concatClips(ctx, clips, workDir)
	if err != nil {
		return "", fmt.Errorf("concatenate clips: %w", err)
	}

	// Step 3: title card (non-critical)
	video := baseVideo
	if titled, err := c.applyTitleCard(ctx, baseVideo, doc.Title, workDir); err != nil {
		log.Printf("[render] Warning: title overlay failed: %v — exporting without it", err)
	} else {
		video = titled
	}

	// Step 4: background music (non-critical)
	finalAudio := audioFile
	if mixed, err := c.mixBackgroundMusic(ctx, audioFile, totalDur, workDir); err != nil {
		log.Printf("[render] Warning: music mix failed: %v — using narration only", err)
	} else if mixed != "" {
		finalAudio = mixed
	}

	// Step 5: final mux
	outFile := slug + "_FINAL.mp4"
	log.Println("[render] 🔹 Rendering final video...")
	cmd := exec.CommandContext(ctx, "ffmpeg", "-y",
		"-i", video,
		"-i", finalAudio,
		"-c:v", "copy",
		"-c:a", "aac",
		"-b:a", "192k",
		"-shortest",
		"-movflags", "+faststart",
		outFile,
	)
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return "", fmt.Errorf("ffmpeg final mux: %w", err)
	}

	log.Printf("[render] ✅ Video saved: %s", outFile)
	return outFile, nil
}

// makeKenBurnsClip renders a still image into a clip with a continuous
// linear zoom and a fixed darkening multiplier. The image is upscaled
// before zoompan so the pan does not jitter.
func (c *Compositor) makeKenBurnsClip(ctx context.Context, imgPath, outFile string, duration float64, zoomIn bool) error {
	fps := c.cfg.Render.FPS
	w, h := c.cfg.Render.TargetWidth, c.cfg.Render.TargetHeight
	zoom := c.cfg.Render.ZoomFactor
	frames := int(duration * float64(fps))
	if frames < 1 {
		frames = 1
	}
	step := (zoom - 1.0) / float64(frames)

	var zoomExpr string
	if zoomIn {
		zoomExpr = fmt.Sprintf("min(zoom+%.6f,%.3f)", step, zoom)
	} else {
		zoomExpr = fmt.Sprintf("if(eq(on,1),%.3f,max(zoom-%.6f,1.0))", zoom, step)
	}

	filter := fmt.Sprintf(
		"scale=%d:%d,zoompan=z='%s':x='iw/2-(iw/zoom/2)':y='ih/2-(ih/zoom/2)':d=%d:s=%dx%d:fps=%d,colorchannelmixer=rr=%.2f:gg=%.2f:bb=%.2f",
		w*4, h*4,
		zoomExpr,
		frames, w, h, fps,
		c.cfg.Render.Darken, c.cfg.Render.Darken, c.cfg.Render.Darken,
	)

	cmd := exec.CommandContext(ctx, "ffmpeg", "-y",
		"-loop", "1",
		"-i", imgPath,
		"-vf", filter,
		"-t", fmt.Sprintf("%.3f", duration),
		"-c:v", "libx264",
		"-preset", c.cfg.Render.Preset,
		"-pix_fmt", "yuv420p",
		"-an",
		outFile,
	)
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("ffmpeg zoompan: %w", err)
	}
	return nil
}

// concatClips joins the per-image clips in order with the concat demuxer.
func (c *Compositor) concatClips(ctx context.Context, clips []string, workDir string) (string, error) {
	listFile := filepath.Join(workDir, "concat_list.txt")
	var lines []string
	for _, clip := range clips {
		abs, err := filepath.Abs(clip)
		if err != nil {
			abs = clip
		}
		lines = append(lines, fmt.Sprintf("file '%s'", abs))
	}
	if err := os.WriteFile(listFile, []byte(strings.Join(lines, "\n")), 0644); err != nil {
		return "", err
	}

	outFile := filepath.Join(workDir, "base_video.mp4")
	cmd := exec.CommandContext(ctx, "ffmpeg", "-y",
		"-f", "concat",
		"-safe", "0",
		"-i", listFile,
		"-c", "copy",
		outFile,
	)
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return "", fmt.Errorf("ffmpeg concat: %w", err)
	}
	return outFile, nil
}

// applyTitleCard overlays the wrapped, upper-cased title near the top of
// the frame over a translucent box, fading in and out.
func (c *Compositor) applyTitleCard(ctx context.Context, videoFile, title, workDir string) (string, error) {
	if strings.TrimSpace(title) == "" {
		return "", fmt.Errorf("empty title")
	}

	wrapped := wrapTitle(strings.ToUpper(title), c.cfg.Render.TitleWrapWidth)
	dur := c.cfg.Render.TitleDuration
	fade := 0.5

	alphaExpr := fmt.Sprintf(
		"if(lt(t,%.2f),t/%.2f,if(lt(t,%.2f),1,max(0,(%.2f-t)/%.2f)))",
		fade, fade, dur-fade, dur, fade,
	)

	filter := fmt.Sprintf(
		"drawtext=text='%s':fontsize=%d:fontcolor=white:borderw=4:bordercolor=black:"+
			"box=1:boxcolor=black@0.4:boxborderw=24:x=(w-text_w)/2:y=300:"+
			"alpha='%s':enable='between(t,0,%.2f)'",
		escapeDrawText(wrapped),
		c.cfg.Render.TitleFontSize,
		alphaExpr,
		dur,
	)

	outFile := filepath.Join(workDir, "titled_video.mp4")
	cmd := exec.CommandContext(ctx, "ffmpeg", "-y",
		"-i", videoFile,
		"-vf", filter,
		"-c:v", "libx264",
		"-preset", c.cfg.Render.Preset,
		"-pix_fmt", "yuv420p",
		"-an",
		outFile,
	)
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return "", fmt.Errorf("ffmpeg drawtext: %w", err)
	}
	return outFile, nil
}

// mixBackgroundMusic loops the fixed music bed under the narration. It
// returns "" when the music file is absent, which keeps the narration
// track bit-for-bit untouched.
func (c *Compositor) mixBackgroundMusic(ctx context.Context, narrationFile string, narrationDur float64, workDir string) (string, error) {
	musicFile := c.cfg.Paths.BackgroundMusic
	if _, err := os.Stat(musicFile); err != nil {
		log.Println("[render] No background music file found")
		return "", nil
	}
	log.Println("[render] 🔹 Adding background music...")

	fade := c.cfg.Render.MusicFadeSec
	tail := narrationDur + fade
	fadeStart := narrationDur - fade
	if fadeStart < 0 {
		fadeStart = 0
	}
	filter := fmt.Sprintf(
		"[1:a]atrim=0:%.3f,volume=%.2f,afade=t=out:st=%.3f:d=%.2f[bg];"+
			"[0:a][bg]amix=inputs=2:duration=first:normalize=0[aout]",
		tail,
		c.cfg.Render.MusicVolume,
		fadeStart,
		fade,
	)

	outFile := filepath.Join(workDir, "audio_mixed.mp3")
	cmd := exec.CommandContext(ctx, "ffmpeg", "-y",
		"-i", narrationFile,
		"-stream_loop", "-1",
		"-i", musicFile,
		"-filter_complex", filter,
		"-map", "[aout]",
		"-c:a", "libmp3lame",
		"-q:a", "2",
		outFile,
	)
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return "", fmt.Errorf("ffmpeg music mix: %w", err)
	}
	return outFile, nil
}

func probeDuration(ctx context.Context, file string) (float64, error) {
	out, err := exec.CommandContext(ctx, "ffprobe",
		"-v", "error",
		"-show_entries", "format=duration",
		"-of", "default=noprint_wrappers=1:nokey=1",
		file,
	).Output()
	if err != nil {
		return 0, err
	}
	var dur float64
	_, err = fmt.Sscanf(strings.TrimSpace(string(out)), "%f", &dur)
	return dur, err
}
