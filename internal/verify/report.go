package verify

import (
	"fmt"
	"strings"
	"time"

	"github.com/certvet/certvet/internal/imaging"
)

// Report is the persisted outcome of screening one scan.
type Report struct {
	// ID is the report's UUID.
	ID string `json:"id"`

	// CreatedAt is the screening time in UTC.
	CreatedAt time.Time `json:"created_at"`

	// FileName is the original upload or inbox file name, when known.
	FileName string `json:"file_name,omitempty"`

	// Analysis holds the per-check findings.
	Analysis Analysis `json:"analysis"`

	// Score is the confidence score out of MaxScore.
	Score int `json:"score"`

	// Recommendation is the verdict for this score.
	Recommendation Recommendation `json:"recommendation"`
}

// sealStatus renders the seal finding in the report wording.
func sealStatus(detected bool) string {
	if detected {
		return "Seal/Signature Detected"
	}
	return "Seal/Signature Not Detected"
}

// pixelationStatus renders the sharpness finding with its score.
func (r *Report) pixelationStatus() string {
	switch r.Analysis.Pixelation {
	case imaging.PixelationLow:
		return fmt.Sprintf("Low Pixelation (Likely Authentic) - Score: %.2f", r.Analysis.LaplacianVariance)
	case imaging.PixelationModerate:
		return fmt.Sprintf("Moderate Pixelation - Score: %.2f", r.Analysis.LaplacianVariance)
	default:
		return fmt.Sprintf("High Pixelation Detected (Possible Tampering) - Score: %.2f", r.Analysis.LaplacianVariance)
	}
}

// RenderText renders the plain-text validation report handed to operators
// and written beside inbox files in watch mode.
func (r *Report) RenderText() string {
	serial := r.Analysis.SerialNumber
	if !r.Analysis.SerialFound {
		serial = "Not Found"
	}

	ink := "None detected"
	if r.Analysis.Ink != nil && len(r.Analysis.Ink.Swatches) > 0 {
		parts := make([]string, 0, len(r.Analysis.Ink.Swatches))
		for _, s := range r.Analysis.Ink.Swatches {
			parts = append(parts, s.String())
		}
		ink = strings.Join(parts, ", ")
	}

	var b strings.Builder
	b.WriteString("Birth Certificate Validation Report\n")
	b.WriteString("\n")
	fmt.Fprintf(&b, "Report ID: %s\n", r.ID)
	fmt.Fprintf(&b, "Generated: %s\n", r.CreatedAt.Format(time.RFC3339))
	if r.FileName != "" {
		fmt.Fprintf(&b, "Source File: %s\n", r.FileName)
	}
	b.WriteString("\n")
	fmt.Fprintf(&b, "Document Type: %s\n", r.Analysis.DocumentType)
	fmt.Fprintf(&b, "Serial Number: %s\n", serial)
	fmt.Fprintf(&b, "Seal & Signature Detection: %s\n", sealStatus(r.Analysis.SealDetected))
	fmt.Fprintf(&b, "Pixelation & Tampering Analysis: %s\n", r.pixelationStatus())
	fmt.Fprintf(&b, "Ink Profile: %s\n", ink)
	b.WriteString("\n")
	fmt.Fprintf(&b, "Final Confidence Score: %d/%d\n", r.Score, MaxScore)
	fmt.Fprintf(&b, "Recommendation: %s\n", r.Recommendation.Describe())
	return b.String()
}
