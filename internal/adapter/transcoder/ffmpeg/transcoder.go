package ffmpeg

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"

	"github.com/avasseur/reelpress/internal/domain"
	"github.com/avasseur/reelpress/internal/infrastructure/logger"
	"github.com/avasseur/reelpress/internal/port"
)

// Transcoder drives the external ffmpeg binary. One invocation per job,
// no retries; a non-zero exit is terminal and carries the last stderr
// lines as diagnostics. Cancellation mid-flight is not supported: the
// context passed to Transcode only bounds process startup, and once
// running the engine finishes or fails on its own.
type Transcoder struct {
	ffmpegPath  string
	ffprobePath string
}

func New(ffmpegPath, ffprobePath string) *Transcoder {
	return &Transcoder{
		ffmpegPath:  ffmpegPath,
		ffprobePath: ffprobePath,
	}
}

func (t *Transcoder) Transcode(ctx context.Context, inputPath, outputPath string, profile domain.QualityProfile, progress func(percent float64)) error {
	duration, err := t.probeDuration(ctx, inputPath)
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrEngineFailed, err)
	}

	args := BuildArgs(inputPath, outputPath, profile)
	logger.Info.Printf("transcoding %s -> %s tier=%s duration=%.1fs", inputPath, outputPath, profile.Name, duration)

	cmd := exec.Command(t.ffmpegPath, args...)

	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrEngineFailed, err)
	}

	if err := cmd.Start(); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrEngineFailed, err)
	}

	scanProgress(stdout, duration, progress)

	if err := cmd.Wait(); err != nil {
		return fmt.Errorf("%w: %v: %s", domain.ErrEngineFailed, err, stderrTail(stderr.String()))
	}
	return nil
}

// stderrTail keeps the last few diagnostic lines; full ffmpeg stderr for a
// long encode is large and the tail is where the actual error lands.
func stderrTail(s string) string {
	lines := strings.Split(strings.TrimSpace(s), "\n")
	if len(lines) > 5 {
		lines = lines[len(lines)-5:]
	}
	return strings.Join(lines, " | ")
}

var _ port.Transcoder = (*Transcoder)(nil)
