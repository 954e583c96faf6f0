package pyramid

import (
	"bytes"
	"errors"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// newTestService builds a service over a temp slide directory containing
// sample.svs, backed by fake sources. It returns the service and the save
// directory.
func newTestService(t *testing.T) (*Service, string) {
	t.Helper()
	slideDir := t.TempDir()
	saveDir := t.TempDir()
	touchFile(t, slideDir, "sample.svs")

	r := NewRegistry(slideDir, func(path string) (Source, error) {
		return newFakeSource(), nil
	})
	return NewService(r, saveDir, 512), saveDir
}

func TestService_SlideInfo(t *testing.T) {
	svc, _ := newTestService(t)

	info, err := svc.SlideInfo("sample.svs")
	if err != nil {
		t.Fatalf("SlideInfo failed: %v", err)
	}

	if info.Filename != "sample.svs" {
		t.Errorf("filename = %s, want sample.svs", info.Filename)
	}
	if info.Width != 4096 || info.Height != 4096 {
		t.Errorf("dimensions = %dx%d, want 4096x4096", info.Width, info.Height)
	}
	if info.LevelCount != 3 || len(info.Levels) != 3 {
		t.Fatalf("level count = %d (%d entries), want 3", info.LevelCount, len(info.Levels))
	}
	if info.Levels[2].Downsample != 16 || info.Levels[2].Width != 256 {
		t.Errorf("level 2 = %+v, want downsample 16, width 256", info.Levels[2])
	}
	if info.Properties["fake.vendor"] != "test" {
		t.Errorf("properties not passed through: %v", info.Properties)
	}
}

func TestService_SlideInfoUnknown(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.SlideInfo("nope.svs")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("got %v, want ErrNotFound", err)
	}
}

func TestService_Thumbnail(t *testing.T) {
	svc, _ := newTestService(t)

	thumb, err := svc.Thumbnail("sample.svs", 100, 100)
	if err != nil {
		t.Fatalf("Thumbnail failed: %v", err)
	}

	decoded, err := png.Decode(bytes.NewReader(thumb))
	if err != nil {
		t.Fatalf("thumbnail is not valid PNG: %v", err)
	}
	if decoded.Bounds().Dx() > 100 || decoded.Bounds().Dy() > 100 {
		t.Errorf("thumbnail %v exceeds 100x100 box", decoded.Bounds())
	}
}

func TestService_RegionStats(t *testing.T) {
	svc, _ := newTestService(t)

	stats, err := svc.RegionStats("sample.svs", Region{X: 0, Y: 0, Width: 2048, Height: 2048})
	if err != nil {
		t.Fatalf("RegionStats failed: %v", err)
	}

	if stats.LevelUsed != 1 || stats.LevelDownsample != 4 {
		t.Errorf("level: got {%d, %g}, want {1, 4}", stats.LevelUsed, stats.LevelDownsample)
	}
	if stats.Width != 512 || stats.Height != 512 {
		t.Errorf("analyzed size %dx%d, want the budget-fitted 512x512", stats.Width, stats.Height)
	}
	// The fake slide is uniform mid-gray, darker than background.
	if stats.TissueFraction != 1 {
		t.Errorf("tissue fraction = %g, want 1", stats.TissueFraction)
	}
}

func TestService_SaveRegion(t *testing.T) {
	svc, saveDir := newTestService(t)

	path, err := svc.SaveRegion("sample.svs", Region{X: 0, Y: 0, Width: 256, Height: 256}, "clip")
	if err != nil {
		t.Fatalf("SaveRegion failed: %v", err)
	}

	if !strings.HasPrefix(path, saveDir) {
		t.Errorf("save path %s not under save dir %s", path, saveDir)
	}
	if filepath.Base(path) != "clip.png" {
		t.Errorf("saved as %s, want clip.png (extension enforced)", filepath.Base(path))
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("saved file unreadable: %v", err)
	}
	if _, err := png.Decode(bytes.NewReader(data)); err != nil {
		t.Errorf("saved file is not valid PNG: %v", err)
	}
}

func TestService_SaveRegionCreatesSubdirectories(t *testing.T) {
	svc, saveDir := newTestService(t)

	path, err := svc.SaveRegion("sample.svs", Region{X: 0, Y: 0, Width: 64, Height: 64}, "case1/roi.png")
	if err != nil {
		t.Fatalf("SaveRegion failed: %v", err)
	}
	if path != filepath.Join(saveDir, "case1", "roi.png") {
		t.Errorf("save path = %s, want nested under %s", path, saveDir)
	}
	if _, err := os.Stat(path); err != nil {
		t.Errorf("saved file missing: %v", err)
	}
}

func TestService_SaveRegionRejectsEscapingNames(t *testing.T) {
	svc, _ := newTestService(t)

	for _, name := range []string{"", "..", "../out.png", "/etc/out.png"} {
		if _, err := svc.SaveRegion("sample.svs", Region{X: 0, Y: 0, Width: 64, Height: 64}, name); err == nil {
			t.Errorf("SaveRegion(%q) should fail", name)
		}
	}
}

func TestService_ListSlides(t *testing.T) {
	svc, _ := newTestService(t)

	files, err := svc.ListSlides()
	if err != nil {
		t.Fatalf("ListSlides failed: %v", err)
	}
	if len(files) != 1 || files[0] != "sample.svs" {
		t.Errorf("ListSlides = %v, want [sample.svs]", files)
	}
}
