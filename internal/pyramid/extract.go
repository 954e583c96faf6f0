package pyramid

import (
	"bytes"
	"fmt"
	"image"
	"image/png"
)

// readSize converts a level-0 extent into level-local read dimensions.
//
// The division truncates, matching the behavior of existing pyramid
// viewers: the read block can be up to one pixel smaller per dimension
// than the exact geometric downscale. The result is clamped to 1 pixel so
// a degenerate aspect ratio cannot request a zero-sized decode.
func readSize(width, height int64, downsample float64) (int64, int64) {
	readW := int64(float64(width) / downsample)
	readH := int64(float64(height) / downsample)
	if readW < 1 {
		readW = 1
	}
	if readH < 1 {
		readH = 1
	}
	return readW, readH
}

// GetRegion extracts the requested level-0 rectangle from src and renders
// it within the pixel budget.
//
// It selects the coarsest level that still satisfies the budget, decodes
// the matching level-local block, flattens any alpha over white, downscales
// to the budget if the block is still larger, and encodes the result as
// PNG. Either a complete result is returned or an error; there are no
// partial results.
func GetRegion(src Source, region Region, maxPixels int) (*RegionResult, error) {
	block, choice, err := extractBlock(src, region, maxPixels)
	if err != nil {
		return nil, err
	}

	out, outW, outH := FitBudget(block, maxPixels)

	encoded, err := encodePNG(out)
	if err != nil {
		return nil, err
	}

	return &RegionResult{
		PNG:             encoded,
		LevelUsed:       choice.Level,
		LevelDownsample: choice.Downsample,
		OutputWidth:     outW,
		OutputHeight:    outH,
		OriginalRegion:  region,
	}, nil
}

// extractBlock runs the pipeline up to (and including) alpha flattening:
// level selection, level-local read, composite over white. The returned
// block may still exceed the budget; callers resize as needed.
func extractBlock(src Source, region Region, maxPixels int) (image.Image, LevelChoice, error) {
	downsamples := make([]float64, src.LevelCount())
	for i := range downsamples {
		downsamples[i] = src.LevelDownsample(i)
	}

	choice := SelectLevel(region.Width, region.Height, maxPixels, downsamples)
	readW, readH := readSize(region.Width, region.Height, choice.Downsample)

	block, err := src.ReadRegion(region.X, region.Y, choice.Level, readW, readH)
	if err != nil {
		return nil, choice, fmt.Errorf("read %dx%d block at level %d: %w", readW, readH, choice.Level, err)
	}

	return Flatten(block), choice, nil
}

// encodePNG serializes img losslessly. The encoding is deterministic for a
// given pixel buffer, so identical requests yield byte-identical output.
func encodePNG(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("encode png: %w", err)
	}
	return buf.Bytes(), nil
}
