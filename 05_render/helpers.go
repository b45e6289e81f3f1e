package render

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
)

// collectImages lists the segment images in an asset dir, ordered by the
// numeric index embedded in their filenames so segment order survives
// any filesystem listing order.
func collectImages(assetDir string) ([]string, error) {
	entries, err := os.ReadDir(assetDir)
	if err != nil {
		return nil, fmt.Errorf("read asset dir: %w", err)
	}

	var files []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		ext := strings.ToLower(filepath.Ext(e.Name()))
		if ext == ".jpg" || ext == ".png" {
			files = append(files, e.Name())
		}
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("no images found in %s", assetDir)
	}

	sortByIndex(files)

	paths := make([]string, len(files))
	for i, f := range files {
		paths[i] = filepath.Join(assetDir, f)
	}
	return paths, nil
}

// sortByIndex orders filenames by the number formed from their digits,
// not lexically, so image_10 sorts after image_2.
func sortByIndex(files []string) {
	sort.SliceStable(files, func(i, j int) bool {
		return digitValue(files[i]) < digitValue(files[j])
	})
}

func digitValue(name string) int {
	var digits strings.Builder
	for _, r := range name {
		if r >= '0' && r <= '9' {
			digits.WriteRune(r)
		}
	}
	n, err := strconv.Atoi(digits.String())
	if err != nil {
		return 0
	}
	return n
}

// splitDurations divides the narration length into equal per-image
// display durations. The last slot absorbs the rounding remainder so
// the slots always sum to the total.
func splitDurations(total float64, n int) []float64 {
	per := total / float64(n)
	out := make([]float64, n)
	var used float64
	for i := 0; i < n-1; i++ {
		out[i] = per
		used += per
	}
	out[n-1] = total - used
	return out
}

// wrapTitle greedily wraps text at the given rune width, words joined
// with newlines the drawtext filter renders as line breaks.
func wrapTitle(s string, width int) string {
	words := strings.Fields(s)
	if len(words) == 0 {
		return ""
	}

	var lines []string
	line := words[0]
	for _, word := range words[1:] {
		if len(line)+1+len(word) > width {
			lines = append(lines, line)
			line = word
			continue
		}
		line += " " + word
	}
	lines = append(lines, line)
	return strings.Join(lines, "\n")
}

// escapeDrawText escapes characters the ffmpeg drawtext filter treats
// specially.
func escapeDrawText(s string) string {
	r := strings.NewReplacer(
		`\`, `\\`,
		`'`, `\'`,
		`:`, `\:`,
		`%`, `\%`,
	)
	return r.Replace(s)
}
