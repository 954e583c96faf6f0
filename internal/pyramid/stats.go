package pyramid

import (
	"image"
	"math"

	colorful "github.com/lucasb-eyer/go-colorful"
)

// tissueLightness is the CIE Lab lightness (0..1) below which a pixel
// counts as tissue. Slide background is glass scanned as near-white; H&E
// stained tissue sits well under this threshold.
const tissueLightness = 0.88

// RegionStats summarizes the colors of a rendered region.
//
// TissueFraction is the share of pixels darker than the background
// threshold, a cheap proxy for how much of the region contains specimen
// rather than empty glass. Mean values are computed in CIE Lab space,
// where averaging matches perceived color better than in RGB.
type RegionStats struct {
	LevelUsed       int     `json:"level_used"`
	LevelDownsample float64 `json:"level_downsample"`
	Width           int     `json:"width"`
	Height          int     `json:"height"`
	MeanHex         string  `json:"mean_hex"`
	MeanL           float64 `json:"mean_l"`
	MeanA           float64 `json:"mean_a"`
	MeanB           float64 `json:"mean_b"`
	TissueFraction  float64 `json:"tissue_fraction"`
}

// AnalyzeRegion computes color statistics over every pixel of img. The
// image is expected to be alpha-flattened already; transparent pixels
// would otherwise skew the means.
func AnalyzeRegion(img image.Image) *RegionStats {
	bounds := img.Bounds()
	width := bounds.Dx()
	height := bounds.Dy()

	var sumL, sumA, sumB float64
	var tissue int

	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			c, ok := colorful.MakeColor(img.At(x, y))
			if !ok {
				continue
			}
			l, a, b := c.Lab()
			sumL += l
			sumA += a
			sumB += b
			if l < tissueLightness {
				tissue++
			}
		}
	}

	total := width * height
	if total == 0 {
		return &RegionStats{Width: width, Height: height, MeanHex: "#000000"}
	}

	n := float64(total)
	meanL := sumL / n
	meanA := sumA / n
	meanB := sumB / n
	mean := colorful.Lab(meanL, meanA, meanB).Clamped()

	return &RegionStats{
		Width:          width,
		Height:         height,
		MeanHex:        mean.Hex(),
		MeanL:          round3(meanL),
		MeanA:          round3(meanA),
		MeanB:          round3(meanB),
		TissueFraction: round3(float64(tissue) / n),
	}
}

func round3(v float64) float64 {
	return math.Round(v*1000) / 1000
}
