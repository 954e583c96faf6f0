// Package openslide wraps the OpenSlide C library, the de facto decoder
// for whole-slide image formats (Aperio svs, Hamamatsu ndpi, generic tiled
// tiff, MIRAX mrxs and others).
//
// With CGO enabled, the package binds directly to libopenslide via
// pkg-config. Without CGO, Open returns an error so that the rest of the
// application (and its tests) still builds; pure-Go callers supply their
// own pyramid sources instead.
//
// # Prerequisites
//
// The native library must be installed for CGO builds:
//   - Ubuntu/Debian: apt-get install libopenslide-dev
//   - macOS: brew install openslide
//
// # Pixel Format
//
// OpenSlide decodes regions as premultiplied ARGB, which maps directly
// onto Go's premultiplied image.RGBA; ReadRegion performs that conversion.
// Out-of-bounds areas of a read are transparent and should be flattened
// against a background by the caller.
package openslide
