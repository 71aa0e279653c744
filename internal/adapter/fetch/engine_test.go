package fetch

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/avasseur/reelpress/internal/domain"
)

func newTestEngine(t *testing.T, handler http.Handler) (*Engine, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	e := NewEngine(NewHTTPClient(10*time.Second), "yt-dlp")
	e.driveBase = srv.URL
	return e, srv
}

func mediaBytes() []byte {
	// Large enough to clear the sniff threshold.
	return []byte(strings.Repeat("x", htmlSniffThreshold))
}

func TestAcquireDrive_FirstStrategySucceeds(t *testing.T) {
	var hits atomic.Int32
	e, _ := newTestEngine(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		_, _ = w.Write(mediaBytes())
	}))

	dest := filepath.Join(t.TempDir(), "out.mp4")
	err := e.acquireDrive(context.Background(), "abc123", dest, nil)
	require.NoError(t, err)

	info, err := os.Stat(dest)
	require.NoError(t, err)
	assert.EqualValues(t, htmlSniffThreshold, info.Size())
	assert.EqualValues(t, 1, hits.Load())
}

func TestAcquireDrive_InterstitialFallsThroughToNextStrategy(t *testing.T) {
	var hits atomic.Int32
	e, _ := newTestEngine(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if hits.Add(1) == 1 {
			// Interstitial page served with a 200.
			_, _ = w.Write([]byte("<!DOCTYPE html><html><body>Download anyway?</body></html>"))
			return
		}
		_, _ = w.Write(mediaBytes())
	}))

	dest := filepath.Join(t.TempDir(), "out.mp4")
	err := e.acquireDrive(context.Background(), "abc123", dest, nil)
	require.NoError(t, err)

	info, err := os.Stat(dest)
	require.NoError(t, err)
	assert.EqualValues(t, htmlSniffThreshold, info.Size())
	assert.EqualValues(t, 2, hits.Load())
}

func TestAcquireDrive_TokenScrapeStrategy(t *testing.T) {
	e, _ := newTestEngine(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		switch q.Get("confirm") {
		case "t":
			// Direct strategies get the interstitial.
			_, _ = w.Write([]byte("<html>virus scan warning</html>"))
		case "":
			// Token scrape: share page carrying the confirmation token.
			_, _ = w.Write([]byte(`<html><form action="/uc?export=download&confirm=tok123&uuid=u-42&id=abc123"></form></html>`))
		case "tok123":
			assert.Equal(t, "u-42", q.Get("uuid"))
			_, _ = w.Write(mediaBytes())
		default:
			http.NotFound(w, r)
		}
	}))

	dest := filepath.Join(t.TempDir(), "out.mp4")
	err := e.acquireDrive(context.Background(), "abc123", dest, nil)
	require.NoError(t, err)

	info, err := os.Stat(dest)
	require.NoError(t, err)
	assert.EqualValues(t, htmlSniffThreshold, info.Size())
}

func TestAcquireDrive_AllStrategiesFail(t *testing.T) {
	e, _ := newTestEngine(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("<html>quota exceeded</html>"))
	}))

	dest := filepath.Join(t.TempDir(), "out.mp4")
	err := e.acquireDrive(context.Background(), "abc123", dest, nil)
	require.ErrorIs(t, err, domain.ErrAllStrategiesFailed)

	_, statErr := os.Stat(dest)
	assert.True(t, os.IsNotExist(statErr), "partial artifact must not survive a failed acquisition")
}

func TestAcquire_DirectURL(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write(mediaBytes())
	}))
	defer srv.Close()

	e := NewEngine(NewHTTPClient(10*time.Second), "yt-dlp")
	dest := filepath.Join(t.TempDir(), "out.mp4")

	ref := domain.SourceReference{Kind: domain.SourceDirectURL, URL: srv.URL + "/clip.mp4"}
	require.NoError(t, e.Acquire(context.Background(), ref, dest, nil))

	info, err := os.Stat(dest)
	require.NoError(t, err)
	assert.EqualValues(t, htmlSniffThreshold, info.Size())
}

func TestAcquire_DirectURLServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer srv.Close()

	e := NewEngine(NewHTTPClient(10*time.Second), "yt-dlp")
	dest := filepath.Join(t.TempDir(), "out.mp4")

	ref := domain.SourceReference{Kind: domain.SourceDirectURL, URL: srv.URL + "/missing.mp4"}
	err := e.Acquire(context.Background(), ref, dest, nil)
	require.ErrorIs(t, err, domain.ErrDirectFetchFailed)

	_, statErr := os.Stat(dest)
	assert.True(t, os.IsNotExist(statErr))
}

func TestAcquire_ReportsProgress(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Length", strconv.Itoa(htmlSniffThreshold))
		_, _ = w.Write(mediaBytes())
	}))
	defer srv.Close()

	e := NewEngine(NewHTTPClient(10*time.Second), "yt-dlp")
	dest := filepath.Join(t.TempDir(), "out.mp4")

	var lastReceived, lastTotal int64
	ref := domain.SourceReference{Kind: domain.SourceDirectURL, URL: srv.URL}
	err := e.Acquire(context.Background(), ref, dest, func(received, total int64) {
		lastReceived, lastTotal = received, total
	})
	require.NoError(t, err)
	assert.EqualValues(t, htmlSniffThreshold, lastReceived)
	assert.EqualValues(t, htmlSniffThreshold, lastTotal)
}

func TestRejectHTMLPage(t *testing.T) {
	dir := t.TempDir()

	t.Run("small html file rejected", func(t *testing.T) {
		path := filepath.Join(dir, "page.mp4")
		require.NoError(t, os.WriteFile(path, []byte("<html><body>nope</body></html>"), 0644))
		assert.Error(t, rejectHTMLPage(path))
	})

	t.Run("small binary file passes", func(t *testing.T) {
		path := filepath.Join(dir, "tiny.mp4")
		require.NoError(t, os.WriteFile(path, []byte{0x00, 0x00, 0x00, 0x18, 'f', 't', 'y', 'p'}, 0644))
		assert.NoError(t, rejectHTMLPage(path))
	})

	t.Run("large file passes without sniffing", func(t *testing.T) {
		path := filepath.Join(dir, "big.mp4")
		require.NoError(t, os.WriteFile(path, append([]byte("<html>"), mediaBytes()...), 0644))
		assert.NoError(t, rejectHTMLPage(path))
	})
}
