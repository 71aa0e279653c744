package ffmpeg

import "github.com/avasseur/reelpress/internal/domain"

// BuildArgs constructs the complete ffmpeg argument slice for one job.
// The fixed section is identical for every tier: H.264 + AAC for broad
// compatibility, medium preset, crf 23, faststart for progressive
// playback, yuv420p so older decoders cope. Tier-specific parts are the
// scale-and-pad filter (bounded tiers only) and the target video bitrate.
func BuildArgs(inputPath, outputPath string, p domain.QualityProfile) []string {
	args := []string{
		"-hide_banner",
		"-nostdin",
		"-y",
		"-i", inputPath,
		"-c:v", "libx264",
		"-preset", "medium",
		"-crf", "23",
		"-c:a", "aac",
		"-b:a", "192k",
		"-movflags", "+faststart",
		"-pix_fmt", "yuv420p",
	}

	if p.Bounded() {
		args = append(args, "-vf", p.ScaleFilter())
	}
	args = append(args, "-b:v", p.VideoBitrate)

	// Machine-readable progress on stdout; human stats stay off.
	args = append(args, "-progress", "pipe:1", "-nostats")

	args = append(args, outputPath)
	return args
}
