package http

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/avasseur/reelpress/internal/adapter/http/middleware"
	"github.com/avasseur/reelpress/internal/service"
)

type Server struct {
	mux         *http.ServeMux
	handlers    *Handlers
	bus         *service.EventBus
	authSvc     AuthService
	rateLimiter *middleware.RateLimiter
	version     string
	dataDir     string
	startedAt   time.Time
}

func NewServer(
	handlers *Handlers,
	authSvc AuthService,
	bus *service.EventBus,
	rateLimiter *middleware.RateLimiter,
	version string,
	dataDir string,
) *Server {
	s := &Server{
		mux:         http.NewServeMux(),
		handlers:    handlers,
		bus:         bus,
		authSvc:     authSvc,
		rateLimiter: rateLimiter,
		version:     version,
		dataDir:     dataDir,
		startedAt:   time.Now(),
	}

	s.registerRoutes()

	return s
}

func (s *Server) registerRoutes() {
	// Submission routes require an API key and are rate limited per client.
	s.mux.HandleFunc("POST /api/convert",
		s.rateLimiter.Limit(APIKeyMiddleware(s.authSvc, s.handlers.Convert())))
	s.mux.HandleFunc("POST /api/upload",
		s.rateLimiter.Limit(APIKeyMiddleware(s.authSvc, s.handlers.Upload())))
	s.mux.HandleFunc("POST /api/test",
		APIKeyMiddleware(s.authSvc, s.handlers.Echo()))

	// Download links are shared with third parties: no API key.
	s.mux.HandleFunc("GET /download/{filename}", s.handlers.Download())

	s.mux.HandleFunc("GET /api/jobs/{id}", s.handlers.Job())
	s.mux.HandleFunc("GET /events/{id}", s.handlers.Events(s.bus))
	s.mux.HandleFunc("GET /api/status", s.handlers.Status(s.version, s.dataDir, s.startedAt))

	s.mux.HandleFunc("GET /{$}", s.handlers.Banner(s.version))

	s.mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	s.mux.Handle("GET /metrics", promhttp.Handler())
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	middleware.SecurityHeaders(middleware.Metrics(s.mux)).ServeHTTP(w, r)
}
