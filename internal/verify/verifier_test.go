package verify

import (
	"context"
	"errors"
	"image"
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/certvet/certvet/internal/imaging"
	"github.com/certvet/certvet/internal/ocr"
)

// stubEngine is a canned OCR backend for pipeline tests.
type stubEngine struct {
	result *ocr.Result
	err    error
	calls  int
}

func (s *stubEngine) ExtractImage(ctx context.Context, img image.Image) (*ocr.Result, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	return s.result, nil
}

func (s *stubEngine) Close() error { return nil }

func whiteImage(width, height int) image.Image {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.Set(x, y, color.White)
		}
	}
	return img
}

func TestVerifier_Verify(t *testing.T) {
	// Mixed-case heading so the serial pattern picks up BC12345 rather
	// than an all-caps heading word.
	engine := &stubEngine{result: &ocr.Result{
		FullText: "Certificate of Birth\nFile No. BC12345\n",
		Words: []ocr.Word{
			{Text: "Certificate", Confidence: 0.9},
			{Text: "BC12345", Confidence: 0.7},
		},
	}}
	v := New(engine, DefaultOptions(), nil)

	report, err := v.Verify(context.Background(), whiteImage(80, 80), "upload.png")
	require.NoError(t, err)
	require.NotNil(t, report)

	assert.NotEmpty(t, report.ID)
	assert.False(t, report.CreatedAt.IsZero())
	assert.Equal(t, "upload.png", report.FileName)
	assert.Equal(t, 1, engine.calls)

	a := report.Analysis
	assert.Equal(t, DocTypeCertificateOfBirth, a.DocumentType)
	assert.Equal(t, "BC12345", a.SerialNumber)
	assert.True(t, a.SerialFound)

	// A blank white page has no edges and no high-frequency detail.
	assert.False(t, a.SealDetected)
	assert.Equal(t, 0.0, a.EdgeScore)
	assert.Equal(t, imaging.PixelationHigh, a.Pixelation)
	assert.InDelta(t, 0.8, a.OCRConfidence, 1e-9)

	// +3 heading, +2 serial; nothing from the image checks.
	assert.Equal(t, 5, report.Score)
	assert.Equal(t, RecommendHold, report.Recommendation)
}

func TestVerifier_Verify_UniqueIDs(t *testing.T) {
	engine := &stubEngine{result: &ocr.Result{FullText: ""}}
	v := New(engine, DefaultOptions(), nil)

	first, err := v.Verify(context.Background(), whiteImage(20, 20), "")
	require.NoError(t, err)
	second, err := v.Verify(context.Background(), whiteImage(20, 20), "")
	require.NoError(t, err)

	assert.NotEqual(t, first.ID, second.ID)
}

func TestVerifier_Verify_EngineError(t *testing.T) {
	wantErr := errors.New("traineddata missing")
	v := New(&stubEngine{err: wantErr}, DefaultOptions(), nil)

	report, err := v.Verify(context.Background(), whiteImage(20, 20), "bad.png")
	assert.Nil(t, report)
	require.Error(t, err)
	assert.ErrorIs(t, err, wantErr)
	assert.Contains(t, err.Error(), "text extraction")
}

func TestVerifier_Verify_CanceledContext(t *testing.T) {
	v := New(&stubEngine{result: &ocr.Result{FullText: ""}}, DefaultOptions(), nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	report, err := v.Verify(ctx, whiteImage(20, 20), "")
	assert.Nil(t, report)
	assert.Error(t, err)
}
