package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/certvet/certvet/internal/imaging"
	"github.com/certvet/certvet/internal/ocr"
	"github.com/certvet/certvet/internal/store"
)

// allowedUploadExts mirror the upload types the web UI accepted.
var allowedUploadExts = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
}

type errorBody struct {
	Error string `json:"error"`
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.log.Warn("failed to encode response", zap.Error(err))
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, format string, args ...any) {
	s.writeJSON(w, status, errorBody{Error: fmt.Sprintf(format, args...)})
}

// handleVerify screens an uploaded scan and persists its report.
func (s *Server) handleVerify(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxUploadBytes)

	file, header, err := r.FormFile("image")
	if err != nil {
		s.writeError(w, http.StatusBadRequest, "missing image upload: %v", err)
		return
	}
	defer file.Close()

	ext := strings.ToLower(filepath.Ext(header.Filename))
	if !allowedUploadExts[ext] {
		s.writeError(w, http.StatusUnsupportedMediaType,
			"unsupported file type %q: upload jpg, jpeg, or png", ext)
		return
	}

	img, _, err := imaging.Decode(file)
	if err != nil {
		s.writeError(w, http.StatusUnprocessableEntity, "unreadable image: %v", err)
		return
	}

	report, err := s.verifier.Verify(r.Context(), img, filepath.Base(header.Filename))
	if err != nil {
		s.log.Error("verification failed",
			zap.String("file", header.Filename), zap.Error(err))
		s.writeError(w, http.StatusInternalServerError, "verification failed: %v", err)
		return
	}

	if err := s.reports.Save(r.Context(), report); err != nil {
		s.log.Error("failed to persist report",
			zap.String("report_id", report.ID), zap.Error(err))
		s.writeError(w, http.StatusInternalServerError, "failed to persist report: %v", err)
		return
	}

	s.writeJSON(w, http.StatusOK, report)
}

// handleListReports returns recent reports, newest first.
func (s *Server) handleListReports(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			s.writeError(w, http.StatusBadRequest, "invalid limit %q", raw)
			return
		}
		limit = parsed
	}

	reports, err := s.reports.List(r.Context(), limit)
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, "failed to list reports: %v", err)
		return
	}
	s.writeJSON(w, http.StatusOK, reports)
}

// handleGetReport returns one report as JSON.
func (s *Server) handleGetReport(w http.ResponseWriter, r *http.Request) {
	report, err := s.reports.Get(r.Context(), r.PathValue("id"))
	if errors.Is(err, store.ErrNotFound) {
		s.writeError(w, http.StatusNotFound, "report not found")
		return
	}
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, "failed to load report: %v", err)
		return
	}
	s.writeJSON(w, http.StatusOK, report)
}

// handleDownloadReport returns the plain-text rendering of a report.
func (s *Server) handleDownloadReport(w http.ResponseWriter, r *http.Request) {
	report, err := s.reports.Get(r.Context(), r.PathValue("id"))
	if errors.Is(err, store.ErrNotFound) {
		s.writeError(w, http.StatusNotFound, "report not found")
		return
	}
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, "failed to load report: %v", err)
		return
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="validation_report.txt"`)
	_, _ = w.Write([]byte(report.RenderText()))
}

// healthBody is the /healthz response payload.
type healthBody struct {
	Status string   `json:"status"`
	OCR    ocr.Info `json:"ocr"`
}

// handleHealthz reports whether the OCR engine is provisioned.
func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	info := s.probe()
	if !info.Available {
		s.writeJSON(w, http.StatusServiceUnavailable, healthBody{Status: "unavailable", OCR: info})
		return
	}
	s.writeJSON(w, http.StatusOK, healthBody{Status: "ok", OCR: info})
}
