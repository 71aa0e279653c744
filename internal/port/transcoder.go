package port

import (
	"context"

	"github.com/avasseur/reelpress/internal/domain"
)

// Transcoder invokes the external engine. progress receives advisory
// percent-complete values in [0,100] and may be nil. Re-invoking with the
// same output path overwrites it; the caller owns retry policy (none is
// applied anywhere in this design).
type Transcoder interface {
	Transcode(ctx context.Context, inputPath, outputPath string, profile domain.QualityProfile, progress func(percent float64)) error
}
