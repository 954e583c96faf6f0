// Package pyramid implements the level-selection and region-composition
// engine for whole-slide (multi-resolution pyramid) images.
//
// A pyramid image stores the same scene as a stack of levels, each a
// progressively coarser downsample of level 0 (full resolution). Extracting
// a viewable raster from a region of such an image means answering one
// question well: which level should be decoded so that the least data is
// read while the output still carries at least as much detail as the
// caller's pixel budget demands?
//
// # Coordinate System
//
// All request coordinates are expressed in level-0 pixel space, with (0,0)
// at the top-left corner. Downsample factors relate a level's resolution to
// level 0: level 0 is always 1.0 and the sequence is ascending.
//
// # Pipeline
//
// A region request flows through:
//
//  1. SelectLevel - pick the coarsest level whose downsample still meets
//     the required resolution.
//  2. Source.ReadRegion - decode the level-local block (may carry alpha).
//  3. Flatten - composite any alpha channel over an opaque white canvas.
//  4. FitBudget - Lanczos-downscale so the longest side fits the budget.
//  5. PNG encoding plus extraction metadata (level used, downsample,
//     output size, original region).
//
// The decoded block before the final resize can be large when the required
// downsample falls between two level downsamples; per-request memory is
// proportional to that block, not to the budget. This is a known cost of
// never reading an under-resolved level.
//
// # Thread Safety
//
// Registry is safe for concurrent use. Sources cached by the registry are
// effectively immutable after open, so their metadata may be read without
// synchronization. Individual pipeline functions are pure and stateless.
package pyramid
