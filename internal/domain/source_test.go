package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractDriveID(t *testing.T) {
	const id = "1AbC-dEf_9xYz"

	tests := []struct {
		name string
		url  string
	}{
		{"file path form", "https://drive.google.com/file/d/" + id + "/view?usp=sharing"},
		{"uc export form", "https://drive.google.com/uc?export=download&id=" + id},
		{"open form", "https://drive.google.com/open?id=" + id},
		{"trailing id param", "https://drive.google.com/some/path?foo=1&id=" + id},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, id, ExtractDriveID(tt.url))
		})
	}
}

func TestExtractDriveID_NoMatch(t *testing.T) {
	assert.Empty(t, ExtractDriveID("https://drive.google.com/drive/folders"))
}

func TestClassify(t *testing.T) {
	t.Run("drive link with extractable id", func(t *testing.T) {
		ref, err := Classify("https://drive.google.com/file/d/abc123/view")
		require.NoError(t, err)
		assert.Equal(t, SourceCloudDrive, ref.Kind)
		assert.Equal(t, "abc123", ref.FileID)
	})

	t.Run("drive link without id is unresolvable", func(t *testing.T) {
		for _, url := range []string{
			"https://drive.google.com/badformat",
			"https://drive.google.com/drive/my-drive",
		} {
			_, err := Classify(url)
			assert.ErrorIs(t, err, ErrUnresolvableID, url)
		}
	})

	t.Run("hosted video domains", func(t *testing.T) {
		for _, url := range []string{
			"https://www.youtube.com/watch?v=dQw4w9WgXcQ",
			"https://youtu.be/dQw4w9WgXcQ",
			"https://vimeo.com/123456",
			"https://www.dailymotion.com/video/x7tgad0",
		} {
			ref, err := Classify(url)
			require.NoError(t, err, url)
			assert.Equal(t, SourceHostedVideo, ref.Kind, url)
			assert.Equal(t, url, ref.URL)
		}
	})

	t.Run("anything else is a direct url", func(t *testing.T) {
		ref, err := Classify("https://cdn.example.com/media/clip.mp4")
		require.NoError(t, err)
		assert.Equal(t, SourceDirectURL, ref.Kind)
	})

	t.Run("rejects non-http schemes", func(t *testing.T) {
		_, err := Classify("ftp://example.com/clip.mp4")
		assert.ErrorIs(t, err, ErrInvalidReference)
	})

	t.Run("rejects garbage", func(t *testing.T) {
		_, err := Classify("not a url at all")
		assert.ErrorIs(t, err, ErrInvalidReference)
	})

	t.Run("rejects empty input", func(t *testing.T) {
		_, err := Classify("")
		assert.ErrorIs(t, err, ErrInvalidReference)
	})
}
