package verify

import "github.com/certvet/certvet/internal/imaging"

// MaxScore is the highest attainable confidence score.
const MaxScore = 10

// Score weights. The heading and seal carry the most weight: both are hard
// to reproduce convincingly, while a serial-shaped token or a crisp scan can
// appear on a forgery by accident.
const (
	scoreDocumentType       = 3
	scoreSerialNumber       = 2
	scoreSealDetected       = 3
	scoreLowPixelation      = 2
	scoreModeratePixelation = 1
)

// Recommendation bands.
const (
	proceedFloor = 7
	holdFloor    = 5
)

// Recommendation is the screening verdict derived from the confidence score.
type Recommendation string

const (
	// RecommendProceed: the scan shows the expected features of genuine
	// certificate stock.
	RecommendProceed Recommendation = "proceed"

	// RecommendHold: some inconsistencies detected; route to manual review.
	RecommendHold Recommendation = "hold"

	// RecommendReject: high fraud risk; do not proceed without additional
	// verification.
	RecommendReject Recommendation = "reject"
)

// Describe returns the operator-facing wording for the verdict.
func (r Recommendation) Describe() string {
	switch r {
	case RecommendProceed:
		return "Proceed - Document appears valid."
	case RecommendHold:
		return "Hold for Further Review - Some inconsistencies detected."
	default:
		return "High Fraud Risk - Do not proceed without additional verification."
	}
}

// Analysis collects the per-check findings for one scan.
type Analysis struct {
	// DocumentType is the heading classification from the extracted text.
	DocumentType DocumentType `json:"document_type"`

	// SerialNumber is the first serial candidate, empty when none found.
	SerialNumber string `json:"serial_number,omitempty"`

	// SerialFound reports whether a serial candidate was present.
	SerialFound bool `json:"serial_found"`

	// SealDetected reports the edge-density seal/signature heuristic.
	SealDetected bool `json:"seal_detected"`

	// EdgeScore is the mean Canny edge intensity (0-255).
	EdgeScore float64 `json:"edge_score"`

	// LaplacianVariance is the sharpness measurement behind Pixelation.
	LaplacianVariance float64 `json:"laplacian_variance"`

	// Pixelation is the tampering band for the sharpness measurement.
	Pixelation imaging.PixelationBand `json:"pixelation"`

	// Ink is the saturated-ink profile of the scan.
	Ink *imaging.InkProfile `json:"ink,omitempty"`

	// ExtractedText is the raw OCR output.
	ExtractedText string `json:"extracted_text"`

	// OCRConfidence is the mean word confidence (0-1), 0 when unknown.
	OCRConfidence float64 `json:"ocr_confidence"`
}

// Score computes the 0-10 confidence score for an analysis:
//
//	+3 recognized certificate heading
//	+2 serial number present
//	+3 seal/signature detected
//	+2 low pixelation, or +1 moderate pixelation
func Score(a Analysis) int {
	score := 0
	if a.DocumentType.Known() {
		score += scoreDocumentType
	}
	if a.SerialFound {
		score += scoreSerialNumber
	}
	if a.SealDetected {
		score += scoreSealDetected
	}
	switch a.Pixelation {
	case imaging.PixelationLow:
		score += scoreLowPixelation
	case imaging.PixelationModerate:
		score += scoreModeratePixelation
	}
	return score
}

// Recommend maps a confidence score to a verdict: 7 and above proceed,
// 5-6 hold for review, below 5 reject.
func Recommend(score int) Recommendation {
	switch {
	case score >= proceedFloor:
		return RecommendProceed
	case score >= holdFloor:
		return RecommendHold
	default:
		return RecommendReject
	}
}
