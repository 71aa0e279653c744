package fetch

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"

	"github.com/avasseur/reelpress/internal/domain"
)

// extract delegates hosted-video pages to yt-dlp: the page URL does not
// address the media bytes, so a scraping extractor does the work. Format
// selection asks for the most compatible single-file output ("b" = best
// pre-merged format, no post-merge step needed).
func (e *Engine) extract(ctx context.Context, url, destPath string) error {
	args := []string{
		"-f", "b",
		"--no-playlist",
		"--no-progress",
		"-o", destPath,
		url,
	}

	cmd := exec.CommandContext(ctx, e.ytdlpPath, args...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		removeIfExists(destPath)
		return fmt.Errorf("%w: %v: %s", domain.ErrExtractionFailed, err, tailLines(stderr.String(), 5))
	}
	return nil
}

// tailLines keeps the last n non-empty lines of diagnostic output.
func tailLines(s string, n int) string {
	lines := strings.Split(strings.TrimSpace(s), "\n")
	var kept []string
	for _, l := range lines {
		if strings.TrimSpace(l) != "" {
			kept = append(kept, strings.TrimSpace(l))
		}
	}
	if len(kept) > n {
		kept = kept[len(kept)-n:]
	}
	return strings.Join(kept, " | ")
}
