package server

import (
	"image"
	"image/color"
	"os"
	"path/filepath"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/wsi-tools/wsi-clip/internal/pyramid"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// stubSource is a minimal pyramid.Source for handler tests: a 4096x4096
// slide with downsamples 1, 4 and 16, returning uniform opaque blocks.
type stubSource struct{}

var stubLevels = [3]struct {
	w, h int64
	ds   float64
}{
	{4096, 4096, 1},
	{1024, 1024, 4},
	{256, 256, 16},
}

func (stubSource) Dimensions() (int64, int64) { return stubLevels[0].w, stubLevels[0].h }
func (stubSource) LevelCount() int            { return len(stubLevels) }

func (stubSource) LevelDimensions(level int) (int64, int64) {
	return stubLevels[level].w, stubLevels[level].h
}

func (stubSource) LevelDownsample(level int) float64 {
	return stubLevels[level].ds
}

func (stubSource) ReadRegion(x, y int64, level int, w, h int64) (image.Image, error) {
	img := image.NewNRGBA(image.Rect(0, 0, int(w), int(h)))
	for yy := 0; yy < int(h); yy++ {
		for xx := 0; xx < int(w); xx++ {
			img.SetNRGBA(xx, yy, color.NRGBA{R: 200, G: 120, B: 160, A: 255})
		}
	}
	return img, nil
}

func (stubSource) Properties() map[string]string {
	return map[string]string{"openslide.vendor": "stub"}
}

func (stubSource) Close() error { return nil }

// newTestServer builds a router over a temp slide directory containing
// sample.svs, plus the save directory used for /api/save assertions.
func newTestServer(t *testing.T, clientSave bool) (*gin.Engine, string) {
	t.Helper()
	slideDir := t.TempDir()
	saveDir := t.TempDir()
	if err := os.WriteFile(filepath.Join(slideDir, "sample.svs"), nil, 0o644); err != nil {
		t.Fatal(err)
	}

	registry := pyramid.NewRegistry(slideDir, func(path string) (pyramid.Source, error) {
		return stubSource{}, nil
	})
	service := pyramid.NewService(registry, saveDir, 512)
	return New(service, clientSave).Router(), saveDir
}
