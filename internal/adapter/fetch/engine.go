package fetch

import (
	"context"
	"fmt"
	"net/http"

	"github.com/avasseur/reelpress/internal/domain"
	"github.com/avasseur/reelpress/internal/infrastructure/logger"
	"github.com/avasseur/reelpress/internal/port"
)

// Engine resolves classified source references into local bytes. Cloud
// drive shares run through an ordered strategy list with content
// validation; hosted-video pages delegate to yt-dlp; anything else is a
// single streaming fetch.
type Engine struct {
	client    *http.Client
	ytdlpPath string

	// driveBase is swapped for a test server in tests.
	driveBase string
}

func NewEngine(client *http.Client, ytdlpPath string) *Engine {
	return &Engine{
		client:    client,
		ytdlpPath: ytdlpPath,
		driveBase: "https://drive.google.com",
	}
}

func (e *Engine) Acquire(ctx context.Context, ref domain.SourceReference, destPath string, progress port.ProgressFunc) error {
	switch ref.Kind {
	case domain.SourceCloudDrive:
		logger.Info.Printf("acquiring drive file %s", logger.SanitizeForLog(ref.FileID))
		return e.acquireDrive(ctx, ref.FileID, destPath, progress)

	case domain.SourceHostedVideo:
		logger.Info.Printf("extracting hosted video %s", logger.SanitizeForLog(ref.URL))
		return e.extract(ctx, ref.URL, destPath)

	case domain.SourceDirectURL:
		logger.Info.Printf("direct fetch %s", logger.SanitizeForLog(ref.URL))
		if err := e.streamToFile(ctx, ref.URL, nil, destPath, progress); err != nil {
			return fmt.Errorf("%w: %v", domain.ErrDirectFetchFailed, err)
		}
		return nil

	default:
		return fmt.Errorf("%w: unknown source kind %q", domain.ErrInvalidReference, ref.Kind)
	}
}

var _ port.Acquirer = (*Engine)(nil)
