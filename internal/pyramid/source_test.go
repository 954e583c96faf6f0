package pyramid

import (
	"errors"
	"image"
	"image/color"
	"sync"
)

// fakeLevel describes one level of a fakeSource.
type fakeLevel struct {
	width      int64
	height     int64
	downsample float64
}

// readCall records the arguments of one ReadRegion invocation.
type readCall struct {
	x, y  int64
	level int
	w, h  int64
}

// fakeSource is an in-memory Source for pipeline tests. Reads return a
// uniform block of the configured fill color; when withAlpha is set the
// block is NRGBA and keeps the fill's alpha, otherwise it is opaque RGBA.
type fakeSource struct {
	levels    []fakeLevel
	fill      color.NRGBA
	withAlpha bool
	readErr   error

	mu     sync.Mutex
	reads  []readCall
	closed bool
}

// newFakeSource builds a 4096x4096 three-level pyramid with downsamples
// 1, 4 and 16, filled with opaque mid-gray.
func newFakeSource() *fakeSource {
	return &fakeSource{
		levels: []fakeLevel{
			{4096, 4096, 1},
			{1024, 1024, 4},
			{256, 256, 16},
		},
		fill: color.NRGBA{R: 128, G: 128, B: 128, A: 255},
	}
}

func (f *fakeSource) Dimensions() (int64, int64) {
	return f.levels[0].width, f.levels[0].height
}

func (f *fakeSource) LevelCount() int {
	return len(f.levels)
}

func (f *fakeSource) LevelDimensions(level int) (int64, int64) {
	return f.levels[level].width, f.levels[level].height
}

func (f *fakeSource) LevelDownsample(level int) float64 {
	return f.levels[level].downsample
}

func (f *fakeSource) ReadRegion(x, y int64, level int, w, h int64) (image.Image, error) {
	f.mu.Lock()
	f.reads = append(f.reads, readCall{x: x, y: y, level: level, w: w, h: h})
	f.mu.Unlock()

	if f.readErr != nil {
		return nil, f.readErr
	}

	rect := image.Rect(0, 0, int(w), int(h))
	if f.withAlpha {
		img := image.NewNRGBA(rect)
		fillNRGBA(img, f.fill)
		return img, nil
	}
	img := image.NewRGBA(rect)
	for yy := 0; yy < int(h); yy++ {
		for xx := 0; xx < int(w); xx++ {
			img.Set(xx, yy, color.NRGBA{R: f.fill.R, G: f.fill.G, B: f.fill.B, A: 255})
		}
	}
	return img, nil
}

func (f *fakeSource) Properties() map[string]string {
	return map[string]string{"fake.vendor": "test"}
}

func (f *fakeSource) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closed {
		return errors.New("already closed")
	}
	f.closed = true
	return nil
}

func (f *fakeSource) lastRead() readCall {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.reads[len(f.reads)-1]
}

func fillNRGBA(img *image.NRGBA, c color.NRGBA) {
	b := img.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			img.SetNRGBA(x, y, c)
		}
	}
}
