package ocr

import (
	"context"
	"image"
)

// Bounds represents a rectangular bounding box in pixel coordinates.
type Bounds struct {
	X1 int `json:"x1"` // Left edge
	Y1 int `json:"y1"` // Top edge
	X2 int `json:"x2"` // Right edge
	Y2 int `json:"y2"` // Bottom edge
}

// Word represents a recognized word with its location and OCR confidence.
type Word struct {
	// Text is the recognized word.
	Text string `json:"text"`

	// Confidence is the OCR confidence score (0.0 to 1.0).
	Confidence float64 `json:"confidence"`

	// Bounds is the bounding box around the word in the source image.
	Bounds Bounds `json:"bounds"`
}

// Result contains the complete output of text extraction from an image.
type Result struct {
	// FullText is all recognized text with original spacing and newlines.
	FullText string `json:"full_text"`

	// Words contains individual words with bounding boxes and confidence.
	// May be empty if box extraction fails; FullText is still populated.
	Words []Word `json:"words"`
}

// MeanConfidence returns the average word confidence, or 0 when no word
// boxes are available.
func (r *Result) MeanConfidence() float64 {
	if len(r.Words) == 0 {
		return 0
	}
	var sum float64
	for _, w := range r.Words {
		sum += w.Confidence
	}
	return sum / float64(len(r.Words))
}

// Engine is the text-extraction backend used by the verification pipeline.
//
// Implementations must be safe for concurrent use. The context is honored
// on a best-effort basis: extraction checks for cancellation before starting
// work but does not interrupt an in-flight engine call.
type Engine interface {
	// ExtractImage recognizes text in an in-memory image.
	ExtractImage(ctx context.Context, img image.Image) (*Result, error)

	// Close releases any backend resources.
	Close() error
}
