package port

import (
	"context"

	"github.com/avasseur/reelpress/internal/domain"
)

// ProgressFunc receives advisory byte counts during a transfer. total is
// -1 when the remote end did not declare a content length. Never used for
// control flow.
type ProgressFunc func(received, total int64)

// Acquirer turns a classified source reference into bytes at destPath.
// On error no file remains at destPath.
type Acquirer interface {
	Acquire(ctx context.Context, ref domain.SourceReference, destPath string, progress ProgressFunc) error
}
