package imaging

import (
	"image"
	"image/color"
	"math"
)

// Default Canny thresholds and the seal heuristic cutoff, on the 0-255
// intensity scale of the binary edge map.
const (
	// DefaultEdgeLowThreshold discards gradients below this value.
	DefaultEdgeLowThreshold = 100

	// DefaultEdgeHighThreshold always keeps gradients above this value.
	DefaultEdgeHighThreshold = 200

	// DefaultSealThreshold is the minimum mean edge score for a scan to be
	// considered as carrying an embossed seal or handwritten signature.
	DefaultSealThreshold = 100.0
)

// EdgeProfile summarises the edge structure of a certificate scan.
//
// The mean edge score is the average intensity of the binary edge map, where
// edge pixels are 255 and non-edge pixels are 0. A densely stamped or signed
// document produces a high score; a flat forged print-out produces a low one.
type EdgeProfile struct {
	// Width of the analysed image in pixels.
	Width int `json:"width"`

	// Height of the analysed image in pixels.
	Height int `json:"height"`

	// MeanScore is the average intensity of the edge map (0-255).
	// Equivalently 255 times EdgeFraction.
	MeanScore float64 `json:"mean_score"`

	// EdgeFraction is the fraction of pixels classified as edges (0.0-1.0).
	EdgeFraction float64 `json:"edge_fraction"`

	// SealDetected reports whether MeanScore exceeded the seal threshold.
	SealDetected bool `json:"seal_detected"`
}

// ProfileEdges runs Canny edge detection over a scan and aggregates the
// result into an EdgeProfile used by the seal/signature heuristic.
//
// Parameters:
//   - img: source image (color or grayscale).
//   - thresholdLow: low hysteresis threshold (0-255). Gradients below this
//     are discarded. Pass DefaultEdgeLowThreshold for document scans.
//   - thresholdHigh: high hysteresis threshold (0-255). Gradients above this
//     are always kept.
//
// # Algorithm
//
// The edge map follows the Canny algorithm:
//
//  1. Grayscale conversion (ITU-R BT.601 luminance)
//  2. 5x5 Gaussian blur to reduce noise
//  3. Sobel gradients, magnitude and direction
//  4. Non-maximum suppression to thin edges to 1 pixel
//  5. Hysteresis thresholding: strong edges kept, weak edges kept only
//     when connected to a strong edge
//
// The mean of the resulting binary map is the seal/signature score; callers
// compare it against DefaultSealThreshold (or their own cutoff).
func ProfileEdges(img image.Image, thresholdLow, thresholdHigh int) *EdgeProfile {
	edges := cannyEdges(img, thresholdLow, thresholdHigh)
	bounds := edges.Bounds()
	width := bounds.Dx()
	height := bounds.Dy()

	var sum float64
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			sum += float64(edges.GrayAt(x, y).Y)
		}
	}

	mean := 0.0
	if width > 0 && height > 0 {
		mean = sum / float64(width*height)
	}

	return &EdgeProfile{
		Width:        width,
		Height:       height,
		MeanScore:    mean,
		EdgeFraction: mean / 255.0,
		SealDetected: mean > DefaultSealThreshold,
	}
}

// cannyEdges computes the binary edge map for an image. Edge pixels are 255,
// everything else is 0.
func cannyEdges(img image.Image, thresholdLow, thresholdHigh int) *image.Gray {
	bounds := img.Bounds()
	width := bounds.Dx()
	height := bounds.Dy()

	gray := Luminance(img)
	for y := range gray {
		for x := range gray[y] {
			gray[y][x] /= 255.0
		}
	}

	blurred := gaussianBlur(gray, width, height)

	// Sobel gradients.
	sobelX := [][]float64{
		{-1, 0, 1},
		{-2, 0, 2},
		{-1, 0, 1},
	}
	sobelY := [][]float64{
		{-1, -2, -1},
		{0, 0, 0},
		{1, 2, 1},
	}

	magnitude := make([][]float64, height)
	direction := make([][]float64, height)
	for y := 0; y < height; y++ {
		magnitude[y] = make([]float64, width)
		direction[y] = make([]float64, width)

		for x := 0; x < width; x++ {
			var gx, gy float64
			for ky := -1; ky <= 1; ky++ {
				for kx := -1; kx <= 1; kx++ {
					py := clamp(y+ky, 0, height-1)
					px := clamp(x+kx, 0, width-1)
					gx += blurred[py][px] * sobelX[ky+1][kx+1]
					gy += blurred[py][px] * sobelY[ky+1][kx+1]
				}
			}
			magnitude[y][x] = math.Sqrt(gx*gx + gy*gy)
			direction[y][x] = math.Atan2(gy, gx)
		}
	}

	// Non-maximum suppression: keep only local maxima along the gradient.
	suppressed := make([][]float64, height)
	for y := 0; y < height; y++ {
		suppressed[y] = make([]float64, width)
		for x := 0; x < width; x++ {
			if y == 0 || y == height-1 || x == 0 || x == width-1 {
				continue
			}

			angle := direction[y][x]
			mag := magnitude[y][x]

			var n1, n2 float64
			if (angle >= -math.Pi/8 && angle < math.Pi/8) || (angle >= 7*math.Pi/8 || angle < -7*math.Pi/8) {
				n1 = magnitude[y][x-1]
				n2 = magnitude[y][x+1]
			} else if (angle >= math.Pi/8 && angle < 3*math.Pi/8) || (angle >= -7*math.Pi/8 && angle < -5*math.Pi/8) {
				n1 = magnitude[y-1][x+1]
				n2 = magnitude[y+1][x-1]
			} else if (angle >= 3*math.Pi/8 && angle < 5*math.Pi/8) || (angle >= -5*math.Pi/8 && angle < -3*math.Pi/8) {
				n1 = magnitude[y-1][x]
				n2 = magnitude[y+1][x]
			} else {
				n1 = magnitude[y-1][x-1]
				n2 = magnitude[y+1][x+1]
			}

			if mag >= n1 && mag >= n2 {
				suppressed[y][x] = mag
			}
		}
	}

	// Double threshold with edge tracking by hysteresis.
	result := image.NewGray(bounds)
	lowThresh := float64(thresholdLow) / 255.0
	highThresh := float64(thresholdHigh) / 255.0

	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			val := suppressed[y][x]
			if val >= highThresh {
				result.SetGray(x+bounds.Min.X, y+bounds.Min.Y, color.Gray{Y: 255})
			} else if val >= lowThresh {
				hasStrongNeighbor := false
				for ky := -1; ky <= 1 && !hasStrongNeighbor; ky++ {
					for kx := -1; kx <= 1 && !hasStrongNeighbor; kx++ {
						py := clamp(y+ky, 0, height-1)
						px := clamp(x+kx, 0, width-1)
						if suppressed[py][px] >= highThresh {
							hasStrongNeighbor = true
						}
					}
				}
				if hasStrongNeighbor {
					result.SetGray(x+bounds.Min.X, y+bounds.Min.Y, color.Gray{Y: 255})
				}
			}
		}
	}

	return result
}

// gaussianBlur applies a 5x5 Gaussian kernel (sigma ~1.4) to reduce noise
// before gradient computation. Border pixels use replicated edge values.
func gaussianBlur(img [][]float64, width, height int) [][]float64 {
	kernel := [][]float64{
		{1, 4, 7, 4, 1},
		{4, 16, 26, 16, 4},
		{7, 26, 41, 26, 7},
		{4, 16, 26, 16, 4},
		{1, 4, 7, 4, 1},
	}
	kernelSum := 273.0

	result := make([][]float64, height)
	for y := 0; y < height; y++ {
		result[y] = make([]float64, width)
		for x := 0; x < width; x++ {
			var sum float64
			for ky := -2; ky <= 2; ky++ {
				for kx := -2; kx <= 2; kx++ {
					py := clamp(y+ky, 0, height-1)
					px := clamp(x+kx, 0, width-1)
					sum += img[py][px] * kernel[ky+2][kx+2]
				}
			}
			result[y][x] = sum / kernelSum
		}
	}
	return result
}

// clamp constrains an integer value to the range [min, max].
func clamp(val, min, max int) int {
	if val < min {
		return min
	}
	if val > max {
		return max
	}
	return val
}
