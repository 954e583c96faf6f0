//go:build !cgo

package openslide

import (
	"errors"
	"image"
)

// Slide is a placeholder for builds without CGO; it can never be obtained
// because Open always fails.
type Slide struct{}

var errNoCgo = errors.New("openslide: built without cgo; native slide decoding unavailable")

// Open always fails in non-CGO builds.
func Open(path string) (*Slide, error) {
	return nil, errNoCgo
}

func (s *Slide) Close() error { return nil }

func (s *Slide) Dimensions() (int64, int64) { return 0, 0 }

func (s *Slide) LevelCount() int { return 0 }

func (s *Slide) LevelDimensions(level int) (int64, int64) { return 0, 0 }

func (s *Slide) LevelDownsample(level int) float64 { return 0 }

func (s *Slide) Properties() map[string]string { return nil }

func (s *Slide) ReadRegion(x, y int64, level int, w, h int64) (image.Image, error) {
	return nil, errNoCgo
}

// Version reports the linked OpenSlide library version.
func Version() string {
	return "unavailable (no cgo)"
}
