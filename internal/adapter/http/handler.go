package http

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/avasseur/reelpress/internal/adapter/http/validation"
	"github.com/avasseur/reelpress/internal/domain"
	"github.com/avasseur/reelpress/internal/infrastructure/logger"
)

// Converter runs one conversion job to completion.
type Converter interface {
	Convert(ctx context.Context, rawURL, quality, desiredName string, outputTTL time.Duration) (*domain.ConversionJob, error)
	ConvertUpload(ctx context.Context, uploadedPath, originalName, quality string, outputTTL time.Duration) (*domain.ConversionJob, error)
}

// JobReader looks up persisted job records.
type JobReader interface {
	Get(id string) (*domain.ConversionJob, error)
	GetByOutputName(name string) (*domain.ConversionJob, error)
}

type Handlers struct {
	converter Converter
	jobs      JobReader

	domain          string
	tempDir         string
	maxSizeMB       int
	outputTTL       time.Duration
	uploadOutputTTL time.Duration
}

func NewHandlers(converter Converter, jobs JobReader, domain, tempDir string, maxSizeMB int, outputTTL, uploadOutputTTL time.Duration) *Handlers {
	return &Handlers{
		converter:       converter,
		jobs:            jobs,
		domain:          domain,
		tempDir:         tempDir,
		maxSizeMB:       maxSizeMB,
		outputTTL:       outputTTL,
		uploadOutputTTL: uploadOutputTTL,
	}
}

type convertRequest struct {
	URL      string `json:"url"`
	Quality  string `json:"quality"`
	Filename string `json:"filename"`
}

type convertData struct {
	DownloadURL string `json:"downloadUrl"`
	Filename    string `json:"filename"`
	Quality     string `json:"quality"`
	Size        int64  `json:"size"`
	SizeMB      string `json:"sizeMB"`
	ExpiresIn   string `json:"expiresIn"`
	Format      string `json:"format"`
}

type convertResponse struct {
	Success bool        `json:"success"`
	Data    convertData `json:"data"`
}

// Convert accepts a source reference and runs the pipeline synchronously
// to completion. The job deliberately ignores the request context: once
// started, a conversion is not cancellable, even by a disconnecting
// client.
func (h *Handlers) Convert() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req convertRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid_request", "request body must be JSON")
			return
		}
		if req.URL == "" {
			writeError(w, http.StatusBadRequest, "invalid_request", "url is required")
			return
		}

		logger.Info.Printf("convert request: url=%s quality=%s", logger.SanitizeForLog(req.URL), logger.SanitizeForLog(req.Quality))

		job, err := h.converter.Convert(context.Background(), req.URL, req.Quality, validation.SanitizeFilename(req.Filename), h.outputTTL)
		if err != nil {
			writeStageError(w, err)
			return
		}

		h.writeReady(w, job)
	}
}

// Upload accepts multipart media directly, skipping acquisition. Uploads
// get the longer expiry window.
func (h *Handlers) Upload() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		maxBytes := int64(h.maxSizeMB) * 1024 * 1024
		r.Body = http.MaxBytesReader(w, r.Body, maxBytes)

		if err := r.ParseMultipartForm(maxBytes); err != nil {
			writeError(w, http.StatusRequestEntityTooLarge, "invalid_request", "file too large")
			return
		}

		file, header, err := r.FormFile("file")
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_request", "missing file field")
			return
		}
		defer func() { _ = file.Close() }()

		tmp, err := os.CreateTemp(h.tempDir, "upload_*.mp4")
		if err != nil {
			writeError(w, http.StatusInternalServerError, "internal", "failed to stage upload")
			return
		}
		uploadedPath := tmp.Name()

		if _, err := io.Copy(tmp, file); err != nil {
			_ = tmp.Close()
			_ = os.Remove(uploadedPath)
			writeError(w, http.StatusInternalServerError, "internal", "failed to save upload")
			return
		}
		if err := tmp.Close(); err != nil {
			_ = os.Remove(uploadedPath)
			writeError(w, http.StatusInternalServerError, "internal", "failed to save upload")
			return
		}

		name := validation.SanitizeFilename(header.Filename)
		quality := r.FormValue("quality")

		job, err := h.converter.ConvertUpload(context.Background(), uploadedPath, name, quality, h.uploadOutputTTL)
		if err != nil {
			writeStageError(w, err)
			return
		}

		h.writeReady(w, job)
	}
}

func (h *Handlers) writeReady(w http.ResponseWriter, job *domain.ConversionJob) {
	writeJSON(w, http.StatusOK, convertResponse{
		Success: true,
		Data: convertData{
			DownloadURL: fmt.Sprintf("%s/download/%s", h.domain, job.OutputName),
			Filename:    job.OutputName,
			Quality:     job.Quality,
			Size:        job.SizeBytes,
			SizeMB:      fmt.Sprintf("%.2f", float64(job.SizeBytes)/1024/1024),
			ExpiresIn:   expiresIn(time.Until(job.ExpiresAt)),
			Format:      "mp4",
		},
	})
}

func expiresIn(d time.Duration) string {
	minutes := int(d.Round(time.Minute).Minutes())
	if minutes < 1 {
		minutes = 1
	}
	return fmt.Sprintf("%d minutes", minutes)
}

// Download serves a ready output artifact by name. Expired or unknown
// names look identical to the caller: the file may simply be gone.
func (h *Handlers) Download() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		name := r.PathValue("filename")
		if !validation.SafeDownloadName(name) {
			writeError(w, http.StatusForbidden, "forbidden", "invalid filename")
			return
		}

		job, err := h.jobs.GetByOutputName(name)
		if err != nil || !job.Downloadable(time.Now()) {
			writeError(w, http.StatusNotFound, "not_found", "file not found; it may have expired")
			return
		}

		if _, err := os.Stat(job.OutputPath); err != nil {
			writeError(w, http.StatusNotFound, "not_found", "file not found; it may have expired")
			return
		}

		w.Header().Set("Content-Type", "video/mp4")
		w.Header().Set("Content-Disposition", validation.ContentDisposition(filepath.Base(job.OutputPath), false))
		http.ServeFile(w, r, job.OutputPath)
	}
}

type jobResponse struct {
	ID        string `json:"id"`
	State     string `json:"state"`
	Quality   string `json:"quality"`
	Filename  string `json:"filename,omitempty"`
	SizeBytes int64  `json:"sizeBytes,omitempty"`
	Error     string `json:"error,omitempty"`
	Message   string `json:"message,omitempty"`
	ExpiresAt string `json:"expiresAt,omitempty"`
}

// Job returns the persisted state of one job.
func (h *Handlers) Job() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		job, err := h.jobs.Get(r.PathValue("id"))
		if err != nil {
			writeError(w, http.StatusNotFound, "not_found", "job not found")
			return
		}

		resp := jobResponse{
			ID:        job.ID,
			State:     string(job.State),
			Quality:   job.Quality,
			Filename:  job.OutputName,
			SizeBytes: job.SizeBytes,
			Error:     job.ErrorKind,
			Message:   job.ErrorMessage,
		}
		if !job.ExpiresAt.IsZero() {
			resp.ExpiresAt = job.ExpiresAt.Format(time.RFC3339)
		}
		writeJSON(w, http.StatusOK, resp)
	}
}

// Echo mirrors the request body back; kept for integration debugging.
func (h *Handlers) Echo() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body map[string]any
		_ = json.NewDecoder(r.Body).Decode(&body)
		writeJSON(w, http.StatusOK, map[string]any{
			"success":   true,
			"received":  body,
			"timestamp": time.Now().UTC().Format(time.RFC3339),
		})
	}
}

// Banner is the root page: name, version, pointers.
func (h *Handlers) Banner(version string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{
			"name":          "reelpress",
			"version":       version,
			"status":        "ready",
			"documentation": "/api/status",
			"usage":         "POST /api/convert with X-API-Key header",
		})
	}
}
