package ocr

import (
	"context"
	"fmt"
	"image"
	"image/png"
	"os"

	"github.com/disintegration/imaging"
	"github.com/otiai10/gosseract/v2"
)

// maxOCRWidth caps the pixel width handed to Tesseract. High-DPI flatbed
// scans gain nothing past this and roughly double extraction time per
// additional megapixel.
const maxOCRWidth = 2400

// LanguageError reports that the configured language could not be used,
// either because the engine is missing or because its traineddata pack is
// not installed. The message names the packages to install.
type LanguageError struct {
	Language string
	Err      error
}

func (e *LanguageError) Error() string {
	return fmt.Sprintf("tesseract language %q unavailable: %v (install the tesseract-ocr and tesseract-ocr-%s packages; see apt.txt)",
		e.Language, e.Err, e.Language)
}

func (e *LanguageError) Unwrap() error { return e.Err }

// Tesseract is the production Engine implementation backed by gosseract.
//
// A fresh gosseract client is created per extraction; the binding's client
// is not safe for concurrent reuse, and per-call setup cost is negligible
// next to recognition itself.
type Tesseract struct {
	// Language is the Tesseract language code, e.g. "eng". The matching
	// traineddata package must be installed.
	Language string
}

// NewTesseract returns a Tesseract engine for the given language code.
// An empty language defaults to English.
func NewTesseract(language string) *Tesseract {
	if language == "" {
		language = "eng"
	}
	return &Tesseract{Language: language}
}

// Extract performs OCR on an image file and returns the recognized text
// with word-level bounding boxes.
//
// If word-level box extraction fails (possible on some Tesseract builds),
// the full text is still returned with an empty Words slice.
func (t *Tesseract) Extract(ctx context.Context, imagePath string) (*Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	client := gosseract.NewClient()
	defer client.Close()

	if err := client.SetLanguage(t.Language); err != nil {
		return nil, &LanguageError{Language: t.Language, Err: err}
	}
	if err := client.SetPageSegMode(gosseract.PSM_SINGLE_BLOCK); err != nil {
		return nil, fmt.Errorf("failed to set page segmentation mode: %w", err)
	}
	if err := client.SetImage(imagePath); err != nil {
		return nil, fmt.Errorf("failed to set image: %w", err)
	}

	// Missing traineddata surfaces here rather than in SetLanguage; the
	// binding only initializes the engine on first recognition.
	text, err := client.Text()
	if err != nil {
		if info := Probe(); !info.Available || !info.HasLanguage(t.Language) {
			return nil, &LanguageError{Language: t.Language, Err: err}
		}
		return nil, fmt.Errorf("OCR failed: %w", err)
	}

	boxes, err := client.GetBoundingBoxes(gosseract.RIL_WORD)
	if err != nil {
		return &Result{FullText: text, Words: []Word{}}, nil
	}

	words := make([]Word, 0, len(boxes))
	for _, box := range boxes {
		if box.Word == "" {
			continue
		}
		words = append(words, Word{
			Text:       box.Word,
			Confidence: float64(box.Confidence) / 100.0,
			Bounds: Bounds{
				X1: box.Box.Min.X,
				Y1: box.Box.Min.Y,
				X2: box.Box.Max.X,
				Y2: box.Box.Max.Y,
			},
		})
	}

	return &Result{FullText: text, Words: words}, nil
}

// ExtractImage performs OCR on an in-memory image.
//
// Tesseract needs a file path, so the image is written to a temporary PNG
// which is removed when extraction completes. Images wider than maxOCRWidth
// are downscaled first; returned bounding boxes refer to the scaled image.
func (t *Tesseract) ExtractImage(ctx context.Context, img image.Image) (*Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if img.Bounds().Dx() > maxOCRWidth {
		img = imaging.Resize(img, maxOCRWidth, 0, imaging.Lanczos)
	}

	tmpFile, err := os.CreateTemp("", "certvet-ocr-*.png")
	if err != nil {
		return nil, fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmpFile.Name()
	defer os.Remove(tmpPath)

	if err := png.Encode(tmpFile, img); err != nil {
		tmpFile.Close()
		return nil, fmt.Errorf("failed to encode temp image: %w", err)
	}
	if err := tmpFile.Close(); err != nil {
		return nil, fmt.Errorf("failed to close temp file: %w", err)
	}

	return t.Extract(ctx, tmpPath)
}

// Close implements Engine. The Tesseract engine holds no persistent
// resources; clients are created per call.
func (t *Tesseract) Close() error {
	return nil
}
