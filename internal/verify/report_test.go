package verify

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/certvet/certvet/internal/imaging"
)

func sampleReport() *Report {
	analysis := Analysis{
		DocumentType:      DocTypeCertificateOfBirth,
		SerialNumber:      "BC12345",
		SerialFound:       true,
		SealDetected:      true,
		EdgeScore:         112.4,
		LaplacianVariance: 240.91,
		Pixelation:        imaging.PixelationLow,
		Ink: &imaging.InkProfile{
			SaturatedFraction: 0.04,
			DominantHue:       225,
			DominantName:      "blue",
			Swatches: []imaging.InkSwatch{
				{Hue: 225, Name: "blue", Hex: "#2929cc", Fraction: 1.0},
			},
		},
		ExtractedText: "CERTIFICATE OF BIRTH BC12345",
	}
	return &Report{
		ID:             "8b33cbb1-2e4f-4b6e-9c41-0a4a3d1f6b1c",
		CreatedAt:      time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC),
		FileName:       "scan-0042.png",
		Analysis:       analysis,
		Score:          Score(analysis),
		Recommendation: Recommend(Score(analysis)),
	}
}

func TestReport_RenderText(t *testing.T) {
	text := sampleReport().RenderText()

	assert.Contains(t, text, "Birth Certificate Validation Report")
	assert.Contains(t, text, "Document Type: Certificate of Birth")
	assert.Contains(t, text, "Serial Number: BC12345")
	assert.Contains(t, text, "Seal & Signature Detection: Seal/Signature Detected")
	assert.Contains(t, text, "Low Pixelation (Likely Authentic) - Score: 240.91")
	assert.Contains(t, text, "Final Confidence Score: 10/10")
	assert.Contains(t, text, "Proceed - Document appears valid.")
	assert.Contains(t, text, "blue #2929cc")
	assert.Contains(t, text, "Source File: scan-0042.png")
}

func TestReport_RenderText_NothingFound(t *testing.T) {
	analysis := Analysis{
		DocumentType:      DocTypeUnknown,
		LaplacianVariance: 12.5,
		Pixelation:        imaging.PixelationHigh,
	}
	r := &Report{
		ID:             "d0b1f25c-5f87-4f43-8f2c-d3a1c31f2ab9",
		CreatedAt:      time.Now().UTC(),
		Analysis:       analysis,
		Score:          Score(analysis),
		Recommendation: Recommend(Score(analysis)),
	}

	text := r.RenderText()

	assert.Contains(t, text, "Serial Number: Not Found")
	assert.Contains(t, text, "Seal/Signature Not Detected")
	assert.Contains(t, text, "High Pixelation Detected (Possible Tampering) - Score: 12.50")
	assert.Contains(t, text, "Ink Profile: None detected")
	assert.Contains(t, text, "Final Confidence Score: 0/10")
	assert.Contains(t, text, "High Fraud Risk")
	assert.NotContains(t, text, "Source File:")
}
