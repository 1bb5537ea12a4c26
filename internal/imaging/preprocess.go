package imaging

import (
	"image"

	"github.com/anthonynsimon/bild/blur"
	"github.com/anthonynsimon/bild/effect"
)

// Preprocessing constants. The unsharp blend weights and blur radius were
// tuned for scanned certificate stock: enough smoothing to suppress paper
// grain, enough sharpening to keep thin serif strokes legible for OCR.
const (
	// preprocessBlurRadius approximates a 5x5 Gaussian kernel.
	preprocessBlurRadius = 2.0

	// Unsharp blend: sharpened = sharpenWeight*gray + blurWeight*blurred.
	sharpenWeight = 1.5
	blurWeight    = -0.5
)

// Preprocess prepares a certificate scan for OCR.
//
// The pipeline is grayscale conversion, Gaussian blur, then an unsharp blend
// of the original grayscale against the blurred copy:
//
//	sharpened = 1.5*gray - 0.5*blurred
//
// The blend amplifies stroke boundaries (where gray and blurred diverge)
// while leaving flat paper regions untouched, which measurably improves
// tesseract's word segmentation on low-contrast scans.
//
// The returned image is always *image.Gray with the same bounds as the
// input. The input image is never modified.
func Preprocess(img image.Image) *image.Gray {
	gray := effect.Grayscale(img)
	blurred := blur.Gaussian(gray, preprocessBlurRadius)

	bounds := img.Bounds()
	out := image.NewGray(bounds)
	grayMin := gray.Bounds().Min
	blurMin := blurred.Bounds().Min

	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			// effect.Grayscale yields equal R/G/B; red carries the luminance.
			gx := x - bounds.Min.X
			gy := y - bounds.Min.Y
			g := float64(gray.RGBAAt(gx+grayMin.X, gy+grayMin.Y).R)
			b := float64(blurred.RGBAAt(gx+blurMin.X, gy+blurMin.Y).R)

			v := sharpenWeight*g + blurWeight*b
			if v < 0 {
				v = 0
			} else if v > 255 {
				v = 255
			}
			out.Pix[out.PixOffset(x, y)] = uint8(v + 0.5)
		}
	}

	return out
}

// Luminance converts an image to a row-major float64 matrix of 0-255
// luminance values using ITU-R BT.601 weights. It is the shared front end of
// the edge and sharpness analyses.
func Luminance(img image.Image) [][]float64 {
	bounds := img.Bounds()
	width := bounds.Dx()
	height := bounds.Dy()

	lum := make([][]float64, height)
	for y := 0; y < height; y++ {
		lum[y] = make([]float64, width)
		for x := 0; x < width; x++ {
			r, g, b, _ := img.At(x+bounds.Min.X, y+bounds.Min.Y).RGBA()
			rf := float64(r >> 8)
			gf := float64(g >> 8)
			bf := float64(b >> 8)
			lum[y][x] = 0.299*rf + 0.587*gf + 0.114*bf
		}
	}
	return lum
}
