package verify

import (
	"context"
	"fmt"
	"image"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/certvet/certvet/internal/imaging"
	"github.com/certvet/certvet/internal/ocr"
)

// Options tune the image-forensics thresholds.
type Options struct {
	// EdgeLowThreshold is the low Canny hysteresis threshold (0-255).
	EdgeLowThreshold int

	// EdgeHighThreshold is the high Canny hysteresis threshold (0-255).
	EdgeHighThreshold int
}

// DefaultOptions returns the thresholds used in production.
func DefaultOptions() Options {
	return Options{
		EdgeLowThreshold:  imaging.DefaultEdgeLowThreshold,
		EdgeHighThreshold: imaging.DefaultEdgeHighThreshold,
	}
}

// Verifier runs the screening pipeline over certificate scans.
type Verifier struct {
	engine ocr.Engine
	opts   Options
	log    *zap.Logger
}

// New creates a Verifier backed by the given OCR engine. A nil logger
// disables logging.
func New(engine ocr.Engine, opts Options, log *zap.Logger) *Verifier {
	if log == nil {
		log = zap.NewNop()
	}
	return &Verifier{engine: engine, opts: opts, log: log}
}

// Verify screens one scan and returns its report.
//
// OCR runs over the preprocessed (grayscale, sharpened) image; the edge,
// sharpness, and ink analyses run over the original. The four checks run
// concurrently and the report is assembled only when all succeed; a partial
// analysis is never returned.
func (v *Verifier) Verify(ctx context.Context, img image.Image, fileName string) (*Report, error) {
	started := time.Now()

	pre := imaging.Preprocess(img)

	var (
		ocrResult *ocr.Result
		edges     *imaging.EdgeProfile
		sharpness *imaging.SharpnessResult
		ink       *imaging.InkProfile
	)

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		ocrResult, err = v.engine.ExtractImage(ctx, pre)
		if err != nil {
			return fmt.Errorf("text extraction: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		edges = imaging.ProfileEdges(img, v.opts.EdgeLowThreshold, v.opts.EdgeHighThreshold)
		return ctx.Err()
	})
	g.Go(func() error {
		sharpness = imaging.MeasureSharpness(img)
		return ctx.Err()
	})
	g.Go(func() error {
		ink = imaging.ProfileInk(img)
		return ctx.Err()
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	serial, serialFound := ExtractSerialNumber(ocrResult.FullText)
	analysis := Analysis{
		DocumentType:      DetectDocumentType(ocrResult.FullText),
		SerialNumber:      serial,
		SerialFound:       serialFound,
		SealDetected:      edges.SealDetected,
		EdgeScore:         edges.MeanScore,
		LaplacianVariance: sharpness.LaplacianVariance,
		Pixelation:        sharpness.Band,
		Ink:               ink,
		ExtractedText:     strings.TrimSpace(ocrResult.FullText),
		OCRConfidence:     ocrResult.MeanConfidence(),
	}

	score := Score(analysis)
	report := &Report{
		ID:             uuid.NewString(),
		CreatedAt:      time.Now().UTC(),
		FileName:       fileName,
		Analysis:       analysis,
		Score:          score,
		Recommendation: Recommend(score),
	}

	v.log.Info("scan verified",
		zap.String("report_id", report.ID),
		zap.String("file", fileName),
		zap.String("document_type", string(analysis.DocumentType)),
		zap.Int("score", report.Score),
		zap.String("recommendation", string(report.Recommendation)),
		zap.Duration("elapsed", time.Since(started)))

	return report, nil
}
