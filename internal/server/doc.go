// Package server exposes the screening pipeline over HTTP.
//
// # Endpoints
//
//   - POST /api/verify: multipart upload ("image" field, jpg/jpeg/png);
//     screens the scan, persists the report, returns it as JSON
//   - GET  /api/reports: recent reports, newest first (limit query param)
//   - GET  /api/reports/{id}: one report as JSON
//   - GET  /api/reports/{id}/report.txt: plain-text rendering for download
//   - GET  /healthz: environment smoke check (OCR engine availability)
//
// # Error Handling
//
// Client errors (bad upload, unknown report, oversized body) return 4xx with
// a JSON body {"error": "..."}; pipeline and storage failures return 500.
// The health endpoint returns 503 with install guidance while the OCR engine
// is unavailable, so a fresh deployment that forgot to provision the
// tesseract packages fails its readiness check instead of failing its first
// upload.
package server
