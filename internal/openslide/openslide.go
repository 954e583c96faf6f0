//go:build cgo

package openslide

/*
#cgo pkg-config: openslide
#include <stdlib.h>
#include <openslide.h>
*/
import "C"

import (
	"fmt"
	"image"
	"unsafe"
)

// Slide is one open whole-slide image. It is safe for concurrent reads;
// OpenSlide serializes access internally.
type Slide struct {
	ptr *C.openslide_t
}

// Open opens the slide file at path. It fails if the file is missing,
// unreadable, or not a format OpenSlide recognizes.
func Open(path string) (*Slide, error) {
	cpath := C.CString(path)
	defer C.free(unsafe.Pointer(cpath))

	ptr := C.openslide_open(cpath)
	if ptr == nil {
		return nil, fmt.Errorf("openslide: unrecognized or unreadable file: %s", path)
	}

	s := &Slide{ptr: ptr}
	if err := s.lastError(); err != nil {
		C.openslide_close(ptr)
		return nil, err
	}
	return s, nil
}

// lastError surfaces OpenSlide's sticky error state. Once set, the handle
// is permanently unusable.
func (s *Slide) lastError() error {
	if msg := C.openslide_get_error(s.ptr); msg != nil {
		return fmt.Errorf("openslide: %s", C.GoString(msg))
	}
	return nil
}

// Close releases the native handle. The Slide must not be used afterwards.
func (s *Slide) Close() error {
	if s.ptr != nil {
		C.openslide_close(s.ptr)
		s.ptr = nil
	}
	return nil
}

// Dimensions returns the level-0 size in pixels.
func (s *Slide) Dimensions() (int64, int64) {
	var w, h C.int64_t
	C.openslide_get_level0_dimensions(s.ptr, &w, &h)
	return int64(w), int64(h)
}

// LevelCount returns the number of pyramid levels.
func (s *Slide) LevelCount() int {
	return int(C.openslide_get_level_count(s.ptr))
}

// LevelDimensions returns the pixel size of the given level.
func (s *Slide) LevelDimensions(level int) (int64, int64) {
	var w, h C.int64_t
	C.openslide_get_level_dimensions(s.ptr, C.int32_t(level), &w, &h)
	return int64(w), int64(h)
}

// LevelDownsample returns the downsample factor of the given level.
func (s *Slide) LevelDownsample(level int) float64 {
	return float64(C.openslide_get_level_downsample(s.ptr, C.int32_t(level)))
}

// ReadRegion decodes a w x h block at the given level. The (x, y) origin
// is in level-0 coordinates, per the OpenSlide API. The returned image is
// premultiplied RGBA and may contain transparent pixels where the read
// extends past the slide bounds.
func (s *Slide) ReadRegion(x, y int64, level int, w, h int64) (image.Image, error) {
	if w < 1 || h < 1 {
		return nil, fmt.Errorf("openslide: invalid read size %dx%d", w, h)
	}

	buf := make([]C.uint32_t, w*h)
	C.openslide_read_region(s.ptr, &buf[0], C.int64_t(x), C.int64_t(y), C.int32_t(level), C.int64_t(w), C.int64_t(h))
	if err := s.lastError(); err != nil {
		return nil, err
	}

	img := image.NewRGBA(image.Rect(0, 0, int(w), int(h)))
	for i, px := range buf {
		// Premultiplied ARGB word -> premultiplied RGBA bytes.
		img.Pix[i*4+0] = uint8(px >> 16)
		img.Pix[i*4+1] = uint8(px >> 8)
		img.Pix[i*4+2] = uint8(px)
		img.Pix[i*4+3] = uint8(px >> 24)
	}
	return img, nil
}

// Properties returns all slide properties verbatim. The key set is
// vendor-defined and open-ended.
func (s *Slide) Properties() map[string]string {
	props := make(map[string]string)
	names := C.openslide_get_property_names(s.ptr)
	if names == nil {
		return props
	}
	for p := names; *p != nil; p = (**C.char)(unsafe.Add(unsafe.Pointer(p), unsafe.Sizeof(*p))) {
		value := C.openslide_get_property_value(s.ptr, *p)
		if value != nil {
			props[C.GoString(*p)] = C.GoString(value)
		}
	}
	return props
}

// Version reports the linked OpenSlide library version.
func Version() string {
	return C.GoString(C.openslide_get_version())
}
