package imaging

import (
	"fmt"
	"image"
	"sort"

	"github.com/lucasb-eyer/go-colorful"
)

// Ink analysis parameters. Printed certificate text is near-black and the
// paper near-white; both have low saturation. Stamp and seal inks (and most
// pen inks) are saturated, so the saturated-pixel population characterises
// the stamped/inked portion of the document.
const (
	inkSaturationFloor = 0.35
	inkValueFloor      = 0.15
	inkValueCeiling    = 0.95

	// inkSampleStride subsamples large scans; full-resolution hue counting
	// adds nothing at this granularity.
	inkSampleStride = 2

	inkHueBuckets = 12 // 30 degrees per bucket
)

// InkSwatch describes one hue bucket of saturated ink found in a scan.
type InkSwatch struct {
	// Hue is the bucket center in degrees (0-360).
	Hue float64 `json:"hue"`

	// Name is a human-readable hue family ("red", "blue", ...).
	Name string `json:"name"`

	// Hex is a representative color for the bucket, "#RRGGBB".
	Hex string `json:"hex"`

	// Fraction is the share of sampled pixels falling in this bucket.
	Fraction float64 `json:"fraction"`
}

// InkProfile summarises the saturated-ink content of a certificate scan.
//
// Registrar stamps and wet signatures leave saturated pigment that survives
// scanning; an all-grayscale scan with zero ink coverage is worth flagging
// for manual review even when the other checks pass.
type InkProfile struct {
	// SaturatedFraction is the share of sampled pixels that qualify as ink.
	SaturatedFraction float64 `json:"saturated_fraction"`

	// DominantHue is the hue bucket with the largest ink population, in
	// degrees. Zero when no ink was found.
	DominantHue float64 `json:"dominant_hue"`

	// DominantName names the dominant hue family, or "none".
	DominantName string `json:"dominant_name"`

	// Swatches lists the populated hue buckets, largest first.
	Swatches []InkSwatch `json:"swatches"`
}

// ProfileInk measures the saturated ink coverage of a scan.
//
// Pixels are converted to HSV; those with saturation above 0.35 and a value
// away from the black/white extremes are counted into 30-degree hue buckets.
// Buckets holding less than 1% of the ink population are dropped from the
// swatch list but still counted in SaturatedFraction.
func ProfileInk(img image.Image) *InkProfile {
	bounds := img.Bounds()

	var sampled, saturated int
	buckets := make([]int, inkHueBuckets)

	for y := bounds.Min.Y; y < bounds.Max.Y; y += inkSampleStride {
		for x := bounds.Min.X; x < bounds.Max.X; x += inkSampleStride {
			sampled++

			c, ok := colorful.MakeColor(img.At(x, y))
			if !ok {
				continue // fully transparent pixel
			}
			h, s, v := c.Hsv()
			if s < inkSaturationFloor || v < inkValueFloor || v > inkValueCeiling {
				continue
			}

			saturated++
			idx := int(h/(360.0/inkHueBuckets)) % inkHueBuckets
			buckets[idx]++
		}
	}

	profile := &InkProfile{DominantName: "none"}
	if sampled == 0 || saturated == 0 {
		return profile
	}
	profile.SaturatedFraction = float64(saturated) / float64(sampled)

	for i, count := range buckets {
		if count == 0 {
			continue
		}
		fraction := float64(count) / float64(saturated)
		if fraction < 0.01 {
			continue
		}
		hue := (float64(i) + 0.5) * (360.0 / inkHueBuckets)
		swatch := colorful.Hsv(hue, 0.8, 0.8)
		profile.Swatches = append(profile.Swatches, InkSwatch{
			Hue:      hue,
			Name:     hueName(hue),
			Hex:      swatch.Hex(),
			Fraction: fraction,
		})
	}

	sort.Slice(profile.Swatches, func(i, j int) bool {
		return profile.Swatches[i].Fraction > profile.Swatches[j].Fraction
	})

	if len(profile.Swatches) > 0 {
		profile.DominantHue = profile.Swatches[0].Hue
		profile.DominantName = profile.Swatches[0].Name
	}

	return profile
}

// hueName maps a hue angle to a coarse color family.
func hueName(hue float64) string {
	switch {
	case hue < 20 || hue >= 340:
		return "red"
	case hue < 45:
		return "orange"
	case hue < 70:
		return "yellow"
	case hue < 160:
		return "green"
	case hue < 200:
		return "cyan"
	case hue < 260:
		return "blue"
	case hue < 300:
		return "purple"
	default:
		return "magenta"
	}
}

// String renders a swatch for logs.
func (s InkSwatch) String() string {
	return fmt.Sprintf("%s %s (%.1f%%)", s.Name, s.Hex, s.Fraction*100)
}
