package images

import (
	"context"
	"fmt"
	"image"
	"image/color"
	"image/jpeg"
	"io"
	"log"
	"math/rand"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"time"

	"mystery-shorts-pipeline/config"
	"mystery-shorts-pipeline/store"
	"mystery-shorts-pipeline/types"
)

// Illustrator generates one image per script segment. Requests are
// sequential with a pause after each, to stay under the image service's
// informal rate limits.
type Illustrator struct {
	cfg        *config.Config
	httpClient *http.Client
	rng        *rand.Rand
}

// New creates a new Illustrator
func New(cfg *config.Config) *Illustrator {
	return &Illustrator{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: time.Duration(cfg.Images.RequestTimeoutSec) * time.Second},
		rng:        rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// Run fetches an image for every segment and records the ordered path
// list on the document. It maintains exactly one image per segment: a
// segment whose retries exhaust gets a copy of the most recent
// successful image, or a solid placeholder if nothing succeeded yet.
// The stage cannot halt the run once the asset dir exists.
func (il *Illustrator) Run(ctx context.Context, doc *types.Document, docPath string) error {
	slug := trimExt(filepath.Base(docPath))
	assetDir := filepath.Join(il.cfg.Paths.AssetsRoot, slug)
	if err := os.MkdirAll(assetDir, 0755); err != nil {
		return fmt.Errorf("create asset dir: %w", err)
	}

	log.Printf("[images] 🎨 Downloading %d images (high-fidelity mode)...", len(doc.Segments))

	var saved []string
	for i, seg := range doc.Segments {
		path := filepath.Join(assetDir, fmt.Sprintf("image_%d.jpg", i))

		if err := il.fetchWithRetry(ctx, seg.ImagePrompt, path, i); err != nil {
			log.Printf("[images] ❌ Segment %d failed: %v — using fallback", i, err)
			if len(saved) > 0 {
				if err := copyFile(saved[len(saved)-1], path); err != nil {
					log.Printf("[images] Warning: duplicate failed: %v — writing placeholder", err)
					il.writePlaceholder(path)
				} else {
					log.Printf("[images] ↪️ Duplicated previous image for segment %d", i)
				}
			} else {
				il.writePlaceholder(path)
				log.Printf("[images] ⬛ Created placeholder for segment %d", i)
			}
		}

		saved = append(saved, path)
		time.Sleep(time.Duration(il.cfg.Images.RequestPauseSec) * time.Second)
	}

	doc.ImagePaths = saved
	if err := store.Patch(docPath, "image_paths", saved); err != nil {
		return fmt.Errorf("record image paths: %w", err)
	}

	log.Printf("[images] ✅ Art generation complete: %d images", len(saved))
	return nil
}

func (il *Illustrator) fetchWithRetry(ctx context.Context, prompt, path string, index int) error {
	imageURL := il.buildURL(prompt)

	var err error
	for attempt := 1; attempt <= il.cfg.Images.Attempts; attempt++ {
		log.Printf("[images] ⬇️ Downloading image %d (attempt %d)...", index+1, attempt)
		err = il.download(ctx, imageURL, path)
		if err == nil {
			return nil
		}
		log.Printf("[images] Warning: attempt %d failed: %v", attempt, err)
		time.Sleep(time.Duration(il.cfg.Images.RetryPauseSec) * time.Second)
	}
	return err
}

// buildURL merges the segment prompt with the house style suffix and a
// random seed so the service never serves a cached render.
func (il *Illustrator) buildURL(prompt string) string {
	finalPrompt := fmt.Sprintf("%s, %s", prompt, il.cfg.Images.StyleSuffix)
	seed := il.rng.Intn(999999) + 1
	return fmt.Sprintf(
		"%s/prompt/%s?seed=%d&width=%d&height=%d&nologo=true&model=%s",
		il.cfg.Images.BaseURL,
		url.PathEscape(finalPrompt),
		seed,
		il.cfg.Images.Width,
		il.cfg.Images.Height,
		il.cfg.Images.Model,
	)
}

func (il *Illustrator) download(ctx context.Context, imageURL, path string) error {
	req, err := http.NewRequestWithContext(ctx, "GET", imageURL, nil)
	if err != nil {
		return err
	}
	req.Header.Set("User-Agent", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36")

	resp, err := il.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("HTTP %d from image service", resp.StatusCode)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	if len(data) < 100 {
		return fmt.Errorf("response too small (%d bytes) — likely an error page", len(data))
	}

	return os.WriteFile(path, data, 0644)
}

// writePlaceholder renders a solid black frame of the expected
// dimensions so the compositor's one-image-per-segment invariant holds.
func (il *Illustrator) writePlaceholder(path string) {
	img := image.NewRGBA(image.Rect(0, 0, il.cfg.Images.Width, il.cfg.Images.Height))
	black := color.RGBA{A: 255}
	for y := 0; y < il.cfg.Images.Height; y++ {
		for x := 0; x < il.cfg.Images.Width; x++ {
			img.Set(x, y, black)
		}
	}

	f, err := os.Create(path)
	if err != nil {
		log.Printf("[images] Warning: placeholder create failed: %v", err)
		return
	}
	defer f.Close()

	if err := jpeg.Encode(f, img, &jpeg.Options{Quality: 90}); err != nil {
		log.Printf("[images] Warning: placeholder encode failed: %v", err)
	}
}

func copyFile(src, dst string) error {
	data, err := os.ReadFile(src)
	if err != nil {
		return err
	}
	return os.WriteFile(dst, data, 0644)
}

func trimExt(name string) string {
	return name[:len(name)-len(filepath.Ext(name))]
}
