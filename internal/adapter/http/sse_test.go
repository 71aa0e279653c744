package http

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/avasseur/reelpress/internal/service"
)

func TestWriteSSEEvent(t *testing.T) {
	var sb strings.Builder
	err := writeSSEEvent(&sb, service.Event{Type: "progress", Stage: "transcode", Percent: 42.5})
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(sb.String(), "data: "))
	assert.True(t, strings.HasSuffix(sb.String(), "\n\n"))
	assert.Contains(t, sb.String(), `"type":"progress"`)
	assert.Contains(t, sb.String(), `"stage":"transcode"`)
	assert.Contains(t, sb.String(), `"percent":42.5`)
}

func TestWriteSSEEvent_OmitsEmptyFields(t *testing.T) {
	var sb strings.Builder
	require.NoError(t, writeSSEEvent(&sb, service.Event{Type: "status", State: "ready"}))

	assert.Contains(t, sb.String(), `"state":"ready"`)
	assert.NotContains(t, sb.String(), "percent")
	assert.NotContains(t, sb.String(), "stage")
}

func TestEventsHandler_ClosesOnClientDisconnect(t *testing.T) {
	bus := service.NewEventBus()
	h := testHandlers(t, &fakeConverter{}, nil)

	ctx, cancel := context.WithCancel(context.Background())
	req := httptest.NewRequest(http.MethodGet, "/events/job-1", nil).WithContext(ctx)
	req.SetPathValue("id", "job-1")
	rec := httptest.NewRecorder()

	done := make(chan struct{})
	go func() {
		h.Events(bus)(rec, req)
		close(done)
	}()

	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("handler did not return after disconnect")
	}

	assert.Equal(t, "text/event-stream", rec.Header().Get("Content-Type"))
}
