// Package store persists screening reports in SQLite.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite" // SQLite driver

	"github.com/certvet/certvet/internal/imaging"
	"github.com/certvet/certvet/internal/verify"
)

// ErrNotFound is returned by Get for unknown report IDs.
var ErrNotFound = errors.New("report not found")

const schema = `
CREATE TABLE IF NOT EXISTS reports (
	id                 TEXT PRIMARY KEY,
	created_at         INTEGER NOT NULL,
	file_name          TEXT NOT NULL DEFAULT '',
	document_type      TEXT NOT NULL,
	serial_number      TEXT NOT NULL DEFAULT '',
	serial_found       INTEGER NOT NULL,
	seal_detected      INTEGER NOT NULL,
	edge_score         REAL NOT NULL,
	laplacian_variance REAL NOT NULL,
	pixelation         TEXT NOT NULL,
	ink_json           TEXT NOT NULL DEFAULT '',
	extracted_text     TEXT NOT NULL DEFAULT '',
	ocr_confidence     REAL NOT NULL DEFAULT 0,
	score              INTEGER NOT NULL,
	recommendation     TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_reports_created_at ON reports(created_at);
`

// Store persists verification reports in SQLite.
type Store struct {
	sqlDB *sql.DB
}

func toMillis(value time.Time) int64 {
	return value.UTC().UnixMilli()
}

func fromMillis(value int64) time.Time {
	return time.UnixMilli(value).UTC()
}

// Open opens (or creates) a SQLite report store at path and ensures the
// schema exists.
func Open(path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("storage path is required")
	}
	dsn := filepath.Clean(path) +
		"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=synchronous(NORMAL)&_pragma=foreign_keys(ON)"
	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	if err := sqlDB.Ping(); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	if _, err := sqlDB.Exec(schema); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}
	return &Store{sqlDB: sqlDB}, nil
}

// Close closes the SQLite handle.
func (s *Store) Close() error {
	if s == nil || s.sqlDB == nil {
		return nil
	}
	return s.sqlDB.Close()
}

// Save inserts one report.
func (s *Store) Save(ctx context.Context, report *verify.Report) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.sqlDB == nil {
		return fmt.Errorf("storage is not configured")
	}
	if report == nil {
		return fmt.Errorf("report is required")
	}
	if _, err := uuid.Parse(report.ID); err != nil {
		return fmt.Errorf("report id must be a UUID: %w", err)
	}

	createdAt := report.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}

	inkJSON := ""
	if report.Analysis.Ink != nil {
		encoded, err := json.Marshal(report.Analysis.Ink)
		if err != nil {
			return fmt.Errorf("encode ink profile: %w", err)
		}
		inkJSON = string(encoded)
	}

	_, err := s.sqlDB.ExecContext(ctx, `
		INSERT INTO reports (
			id, created_at, file_name, document_type, serial_number,
			serial_found, seal_detected, edge_score, laplacian_variance,
			pixelation, ink_json, extracted_text, ocr_confidence,
			score, recommendation
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		report.ID,
		toMillis(createdAt),
		report.FileName,
		string(report.Analysis.DocumentType),
		report.Analysis.SerialNumber,
		boolToInt(report.Analysis.SerialFound),
		boolToInt(report.Analysis.SealDetected),
		report.Analysis.EdgeScore,
		report.Analysis.LaplacianVariance,
		string(report.Analysis.Pixelation),
		inkJSON,
		report.Analysis.ExtractedText,
		report.Analysis.OCRConfidence,
		report.Score,
		string(report.Recommendation),
	)
	if err != nil {
		return fmt.Errorf("insert report: %w", err)
	}
	return nil
}

// Get returns one report by ID, or ErrNotFound.
func (s *Store) Get(ctx context.Context, id string) (*verify.Report, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s == nil || s.sqlDB == nil {
		return nil, fmt.Errorf("storage is not configured")
	}

	row := s.sqlDB.QueryRowContext(ctx, `
		SELECT id, created_at, file_name, document_type, serial_number,
			serial_found, seal_detected, edge_score, laplacian_variance,
			pixelation, ink_json, extracted_text, ocr_confidence,
			score, recommendation
		FROM reports WHERE id = ?`, id)

	report, err := scanReport(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query report: %w", err)
	}
	return report, nil
}

// List returns the most recent reports, newest first. A non-positive limit
// defaults to 50.
func (s *Store) List(ctx context.Context, limit int) ([]*verify.Report, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s == nil || s.sqlDB == nil {
		return nil, fmt.Errorf("storage is not configured")
	}
	if limit <= 0 {
		limit = 50
	}

	rows, err := s.sqlDB.QueryContext(ctx, `
		SELECT id, created_at, file_name, document_type, serial_number,
			serial_found, seal_detected, edge_score, laplacian_variance,
			pixelation, ink_json, extracted_text, ocr_confidence,
			score, recommendation
		FROM reports ORDER BY created_at DESC, id LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query reports: %w", err)
	}
	defer rows.Close()

	reports := make([]*verify.Report, 0, limit)
	for rows.Next() {
		report, err := scanReport(rows)
		if err != nil {
			return nil, fmt.Errorf("scan report: %w", err)
		}
		reports = append(reports, report)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate reports: %w", err)
	}
	return reports, nil
}

// scanner covers both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanReport(row scanner) (*verify.Report, error) {
	var (
		report       verify.Report
		createdAt    int64
		serialFound  int
		sealDetected int
		docType      string
		pixelation   string
		inkJSON      string
		recommend    string
	)
	err := row.Scan(
		&report.ID,
		&createdAt,
		&report.FileName,
		&docType,
		&report.Analysis.SerialNumber,
		&serialFound,
		&sealDetected,
		&report.Analysis.EdgeScore,
		&report.Analysis.LaplacianVariance,
		&pixelation,
		&inkJSON,
		&report.Analysis.ExtractedText,
		&report.Analysis.OCRConfidence,
		&report.Score,
		&recommend,
	)
	if err != nil {
		return nil, err
	}

	report.CreatedAt = fromMillis(createdAt)
	report.Analysis.DocumentType = verify.DocumentType(docType)
	report.Analysis.SerialFound = serialFound != 0
	report.Analysis.SealDetected = sealDetected != 0
	report.Analysis.Pixelation = imaging.PixelationBand(pixelation)
	report.Recommendation = verify.Recommendation(recommend)

	if inkJSON != "" {
		var ink imaging.InkProfile
		if err := json.Unmarshal([]byte(inkJSON), &ink); err != nil {
			return nil, fmt.Errorf("decode ink profile: %w", err)
		}
		report.Analysis.Ink = &ink
	}
	return &report, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
