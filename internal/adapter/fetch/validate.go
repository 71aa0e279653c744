package fetch

import (
	"bytes"
	"fmt"
	"os"

	"github.com/avasseur/reelpress/internal/infrastructure/logger"
)

// htmlSniffThreshold: files below this size are suspect. Real media is
// effectively never this small, but an interstitial confirmation page is.
const htmlSniffThreshold = 50 * 1024

var htmlMarkers = [][]byte{
	[]byte("<!DOCTYPE"),
	[]byte("<html"),
}

// rejectHTMLPage validates that the file at path is plausibly media and
// not an HTML error or confirmation page served with a 200. Only small
// files are sniffed; anything at or above the threshold passes.
func rejectHTMLPage(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return err
	}
	if info.Size() >= htmlSniffThreshold {
		return nil
	}

	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer func() { _ = f.Close() }()

	head := make([]byte, 512)
	n, err := f.Read(head)
	if err != nil && n == 0 {
		return err
	}
	head = head[:n]

	for _, marker := range htmlMarkers {
		if bytes.Contains(head, marker) {
			return fmt.Errorf("received an html page instead of media (%d bytes)", info.Size())
		}
	}
	return nil
}

// removeIfExists deletes a partial artifact; absence is fine.
func removeIfExists(path string) {
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		logger.Warn.Printf("failed to remove partial file %s: %v", path, err)
	}
}
