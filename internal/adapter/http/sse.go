package http

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/avasseur/reelpress/internal/service"
)

// keepAliveInterval paces SSE comments so proxies keep the stream open.
const keepAliveInterval = 15 * time.Second

type sseEvent struct {
	Type    string  `json:"type"`
	Stage   string  `json:"stage,omitempty"`
	State   string  `json:"state,omitempty"`
	Percent float64 `json:"percent,omitempty"`
	Message string  `json:"message,omitempty"`
}

// Events streams job progress over Server-Sent Events. Events are
// advisory: a subscriber that connects late or reads slowly misses
// updates without affecting the job.
func (h *Handlers) Events(bus *service.EventBus) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		jobID := r.PathValue("id")

		flusher, ok := w.(http.Flusher)
		if !ok {
			writeError(w, http.StatusInternalServerError, "internal", "streaming unsupported")
			return
		}

		w.Header().Set("Content-Type", "text/event-stream")
		w.Header().Set("Cache-Control", "no-cache")
		w.Header().Set("Connection", "keep-alive")
		w.WriteHeader(http.StatusOK)
		flusher.Flush()

		ch := bus.Subscribe(jobID)
		defer bus.Unsubscribe(jobID, ch)

		keepAlive := time.NewTicker(keepAliveInterval)
		defer keepAlive.Stop()

		for {
			select {
			case <-r.Context().Done():
				return
			case <-keepAlive.C:
				fmt.Fprint(w, ": keep-alive\n\n")
				flusher.Flush()
			case ev, open := <-ch:
				if !open {
					return
				}
				if err := writeSSEEvent(w, ev); err != nil {
					return
				}
				flusher.Flush()
			}
		}
	}
}

func writeSSEEvent(w io.Writer, ev service.Event) error {
	payload, err := json.Marshal(sseEvent{
		Type:    ev.Type,
		Stage:   ev.Stage,
		State:   ev.State,
		Percent: ev.Percent,
		Message: ev.Message,
	})
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(w, "data: %s\n\n", payload)
	return err
}
