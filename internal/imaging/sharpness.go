package imaging

import "image"

// Pixelation bands derived from the Laplacian variance of a scan.
//
// Heavy recompression or upscaling destroys high-frequency detail, so a low
// variance is a tampering signal: a genuine flatbed scan of printed stock
// keeps its fine texture, while a doctored image that went through an editor
// and re-export typically does not.
type PixelationBand string

const (
	// PixelationHigh indicates variance below 50: heavy pixelation,
	// possible tampering.
	PixelationHigh PixelationBand = "high"

	// PixelationModerate indicates variance in [50, 100).
	PixelationModerate PixelationBand = "moderate"

	// PixelationLow indicates variance of 100 or more: crisp detail,
	// likely an authentic scan.
	PixelationLow PixelationBand = "low"
)

// Variance cutoffs for the pixelation bands, on the 0-255 luminance scale.
const (
	pixelationHighCutoff = 50.0
	pixelationLowCutoff  = 100.0
)

// SharpnessResult holds the Laplacian-variance sharpness measurement.
type SharpnessResult struct {
	// LaplacianVariance is the variance of the 3x3 Laplacian response over
	// the grayscale image, on the 0-255 luminance scale.
	LaplacianVariance float64 `json:"laplacian_variance"`

	// Band classifies the variance into a pixelation band.
	Band PixelationBand `json:"band"`
}

// MeasureSharpness computes the variance of the Laplacian over an image.
//
// The Laplacian is the standard 3x3 second-derivative kernel:
//
//	 0  1  0
//	 1 -4  1
//	 0  1  0
//
// applied to BT.601 luminance with replicated borders. The variance of the
// response measures how much high-frequency detail survives in the scan;
// see PixelationBand for how the verification pipeline interprets it.
func MeasureSharpness(img image.Image) *SharpnessResult {
	bounds := img.Bounds()
	width := bounds.Dx()
	height := bounds.Dy()

	lum := Luminance(img)

	n := width * height
	if n == 0 {
		return &SharpnessResult{LaplacianVariance: 0, Band: PixelationHigh}
	}

	response := make([]float64, 0, n)
	var sum float64
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			center := lum[y][x]
			up := lum[clamp(y-1, 0, height-1)][x]
			down := lum[clamp(y+1, 0, height-1)][x]
			left := lum[y][clamp(x-1, 0, width-1)]
			right := lum[y][clamp(x+1, 0, width-1)]

			v := up + down + left + right - 4*center
			response = append(response, v)
			sum += v
		}
	}

	mean := sum / float64(n)
	var variance float64
	for _, v := range response {
		d := v - mean
		variance += d * d
	}
	variance /= float64(n)

	return &SharpnessResult{
		LaplacianVariance: variance,
		Band:              classifyPixelation(variance),
	}
}

func classifyPixelation(variance float64) PixelationBand {
	switch {
	case variance < pixelationHighCutoff:
		return PixelationHigh
	case variance < pixelationLowCutoff:
		return PixelationModerate
	default:
		return PixelationLow
	}
}
