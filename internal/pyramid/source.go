package pyramid

import (
	"errors"
	"image"
)

// ErrNotFound reports that no backing file exists for a requested slide name.
var ErrNotFound = errors.New("slide not found")

// Source is one opened pyramid image. Implementations decode the actual
// file formats (svs, ndpi, tiff, mrxs); this package only consumes the
// level table and pixel blocks.
//
// A Source's metadata is fixed once opened, so all methods except Close
// must be safe for concurrent use.
type Source interface {
	// Dimensions returns the level-0 (full resolution) size in pixels.
	Dimensions() (width, height int64)

	// LevelCount returns the number of pyramid levels. Always >= 1.
	LevelCount() int

	// LevelDimensions returns the pixel size of the given level.
	LevelDimensions(level int) (width, height int64)

	// LevelDownsample returns the downsample factor of the given level
	// relative to level 0. Level 0 is 1.0 and factors ascend with level.
	LevelDownsample(level int) float64

	// ReadRegion decodes a w x h pixel block at the given level. The
	// top-left corner (x, y) is expressed in level-0 coordinates; the
	// source translates it into level-local space. The returned image
	// may carry an alpha channel.
	ReadRegion(x, y int64, level int, w, h int64) (image.Image, error)

	// Properties returns the source-defined free-form metadata of the
	// pyramid, verbatim. The key set is open-ended.
	Properties() map[string]string

	// Close releases the decoder resources.
	Close() error
}

// OpenFunc opens the pyramid file at path. The Registry uses it to
// materialize cache misses.
type OpenFunc func(path string) (Source, error)

// Region is a rectangle in level-0 pixel coordinates.
type Region struct {
	X      int64 `json:"x"`
	Y      int64 `json:"y"`
	Width  int64 `json:"width"`
	Height int64 `json:"height"`
}

// LevelChoice is the pyramid level selected for a region request.
type LevelChoice struct {
	Level      int     `json:"level"`
	Downsample float64 `json:"downsample"`
}

// RegionResult is the output of one region extraction: the encoded raster
// plus the metadata describing how it was produced.
type RegionResult struct {
	// PNG is the lossless encoding of the final raster.
	PNG []byte `json:"-"`

	// LevelUsed is the pyramid level the block was decoded from.
	LevelUsed int `json:"level_used"`

	// LevelDownsample is the downsample factor of LevelUsed.
	LevelDownsample float64 `json:"level_downsample"`

	// OutputWidth and OutputHeight are the final raster dimensions.
	OutputWidth  int `json:"output_width"`
	OutputHeight int `json:"output_height"`

	// OriginalRegion echoes the requested rectangle in level-0 coordinates.
	OriginalRegion Region `json:"original_region"`
}

// LevelInfo describes one pyramid level.
type LevelInfo struct {
	Level      int     `json:"level"`
	Width      int64   `json:"width"`
	Height     int64   `json:"height"`
	Downsample float64 `json:"downsample"`
}

// SlideInfo is the full metadata of an opened slide.
type SlideInfo struct {
	Filename   string            `json:"filename"`
	Width      int64             `json:"width"`
	Height     int64             `json:"height"`
	LevelCount int               `json:"level_count"`
	Levels     []LevelInfo       `json:"levels"`
	Properties map[string]string `json:"properties"`
}
