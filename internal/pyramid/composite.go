package pyramid

import (
	"image"
	"image/color"
	"image/draw"
)

// Flatten composites a decoded block over an opaque white canvas, using the
// block's alpha channel as the per-pixel blend weight. Pyramid formats pad
// out-of-bounds reads with transparent pixels, so flattening renders those
// areas as white background rather than black.
//
// Blocks arrive premultiplied (image.RGBA from the slide decoder) or
// straight (image.NRGBA); draw.Over normalizes both into the standard
// src + dst*(1-alpha) compositing on premultiplied values.
//
// Blocks that are already fully opaque pass through unchanged. The result
// never carries transparency.
func Flatten(img image.Image) image.Image {
	if isOpaque(img) {
		return img
	}

	b := img.Bounds()
	white := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(white, white.Bounds(), image.NewUniform(color.White), image.Point{}, draw.Src)
	draw.Draw(white, white.Bounds(), img, b.Min, draw.Over)

	return white
}

func isOpaque(img image.Image) bool {
	op, ok := img.(interface{ Opaque() bool })
	return ok && op.Opaque()
}
