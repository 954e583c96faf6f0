package pyramid

import (
	"image"

	"github.com/disintegration/imaging"
)

// FitBudget downscales img so that its longest side is at most maxPixels,
// returning the (possibly untouched) image and its final dimensions.
//
// Images already within the budget pass through unchanged; this step never
// enlarges. Shrinking uses Lanczos resampling: the source block can be
// arbitrarily close to the target size, and a cheaper filter would alias
// visibly in that range.
func FitBudget(img image.Image, maxPixels int) (image.Image, int, int) {
	w := img.Bounds().Dx()
	h := img.Bounds().Dy()

	longest := w
	if h > longest {
		longest = h
	}
	if longest <= maxPixels {
		return img, w, h
	}

	scale := float64(maxPixels) / float64(longest)
	outW := int(float64(w) * scale)
	outH := int(float64(h) * scale)
	if outW < 1 {
		outW = 1
	}
	if outH < 1 {
		outH = 1
	}

	resized := imaging.Resize(img, outW, outH, imaging.Lanczos)
	return resized, outW, outH
}
