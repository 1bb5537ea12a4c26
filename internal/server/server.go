package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/certvet/certvet/internal/ocr"
	"github.com/certvet/certvet/internal/store"
	"github.com/certvet/certvet/internal/verify"
)

// DefaultMaxUploadBytes caps certificate uploads at 16 MiB; flatbed scans at
// 600 DPI stay well under this.
const DefaultMaxUploadBytes = 16 << 20

// Config holds the HTTP server settings.
type Config struct {
	// Addr is the listen address, e.g. ":8080".
	Addr string

	// MaxUploadBytes caps the request body size for uploads.
	// Zero means DefaultMaxUploadBytes.
	MaxUploadBytes int64
}

// Server routes HTTP requests into the screening pipeline.
type Server struct {
	cfg      Config
	verifier *verify.Verifier
	reports  *store.Store
	log      *zap.Logger

	// probe is swapped in tests to simulate engine availability.
	probe func() ocr.Info
}

// New creates a Server. A nil logger disables logging.
func New(cfg Config, verifier *verify.Verifier, reports *store.Store, log *zap.Logger) *Server {
	if cfg.MaxUploadBytes <= 0 {
		cfg.MaxUploadBytes = DefaultMaxUploadBytes
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Server{
		cfg:      cfg,
		verifier: verifier,
		reports:  reports,
		log:      log,
		probe:    ocr.Probe,
	}
}

// Handler returns the route table.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/verify", s.handleVerify)
	mux.HandleFunc("GET /api/reports", s.handleListReports)
	mux.HandleFunc("GET /api/reports/{id}", s.handleGetReport)
	mux.HandleFunc("GET /api/reports/{id}/report.txt", s.handleDownloadReport)
	mux.HandleFunc("GET /healthz", s.handleHealthz)
	return mux
}

// Run serves until the context is canceled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	httpSrv := &http.Server{
		Addr:              s.cfg.Addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- httpSrv.ListenAndServe()
	}()
	s.log.Info("http server listening", zap.String("addr", s.cfg.Addr))

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := httpSrv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown: %w", err)
		}
		return nil
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("serve: %w", err)
	}
}
