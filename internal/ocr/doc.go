// Package ocr extracts text from certificate scans using the Tesseract OCR
// engine (via gosseract/v2).
//
// # Prerequisites
//
// Tesseract and its English language data must be installed on the system:
//   - Ubuntu/Debian: apt-get install tesseract-ocr tesseract-ocr-eng
//   - macOS: brew install tesseract
//   - Windows: install from https://github.com/UB-Mannheim/tesseract/wiki
//     and add the install directory to PATH
//
// Hosts that provision from a package manifest can use the apt.txt file at
// the repository root, which declares the same two packages.
//
// # Page Segmentation
//
// Extraction runs with page segmentation mode 6 (assume a single uniform
// block of text), which matches the dense fielded layout of certificate
// stock better than the default automatic segmentation.
//
// # Engine Interface
//
// The Engine interface decouples the verification pipeline from the
// Tesseract binding so tests and alternative backends can substitute their
// own extractor. Tesseract is the production implementation.
//
// # Availability
//
// Probe reports whether the engine is usable in the current environment and,
// when it is not, names the packages to install. Use it for health checks
// and start-up diagnostics rather than failing mid-request.
package ocr
