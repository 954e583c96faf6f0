package pyramid

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/disintegration/imaging"
)

// Service ties the registry and the extraction pipeline into the operations
// exposed to the serving layer: listing slides, reading metadata, rendering
// thumbnails, extracting regions and saving them server-side.
type Service struct {
	registry  *Registry
	saveDir   string
	maxPixels int
}

// NewService creates a service backed by registry. Extracted regions are
// limited to maxPixels per output side; server-side saves land under
// saveDir.
func NewService(registry *Registry, saveDir string, maxPixels int) *Service {
	return &Service{
		registry:  registry,
		saveDir:   saveDir,
		maxPixels: maxPixels,
	}
}

// MaxPixels returns the configured pixel budget.
func (s *Service) MaxPixels() int {
	return s.maxPixels
}

// ListSlides returns the sorted names of pyramid files available to open.
func (s *Service) ListSlides() ([]string, error) {
	return s.registry.ListFiles()
}

// SlideInfo returns the full metadata of the named slide: level-0 size,
// the per-level dimension and downsample table, and the source-defined
// properties passed through verbatim.
func (s *Service) SlideInfo(name string) (*SlideInfo, error) {
	src, err := s.registry.Open(name)
	if err != nil {
		return nil, err
	}

	width, height := src.Dimensions()
	count := src.LevelCount()

	levels := make([]LevelInfo, count)
	for i := 0; i < count; i++ {
		w, h := src.LevelDimensions(i)
		levels[i] = LevelInfo{
			Level:      i,
			Width:      w,
			Height:     h,
			Downsample: src.LevelDownsample(i),
		}
	}

	props := src.Properties()
	if props == nil {
		props = map[string]string{}
	}

	return &SlideInfo{
		Filename:   name,
		Width:      width,
		Height:     height,
		LevelCount: count,
		Levels:     levels,
		Properties: props,
	}, nil
}

// GetRegion extracts a level-0 rectangle from the named slide within the
// configured pixel budget.
func (s *Service) GetRegion(name string, region Region) (*RegionResult, error) {
	src, err := s.registry.Open(name)
	if err != nil {
		return nil, err
	}
	return GetRegion(src, region, s.maxPixels)
}

// RegionStats renders a region through the same level-selection pipeline
// as GetRegion and returns its color statistics instead of pixels.
func (s *Service) RegionStats(name string, region Region) (*RegionStats, error) {
	src, err := s.registry.Open(name)
	if err != nil {
		return nil, err
	}

	block, choice, err := extractBlock(src, region, s.maxPixels)
	if err != nil {
		return nil, err
	}
	out, _, _ := FitBudget(block, s.maxPixels)

	stats := AnalyzeRegion(out)
	stats.LevelUsed = choice.Level
	stats.LevelDownsample = choice.Downsample
	return stats, nil
}

// Thumbnail renders a whole-slide overview fitting within maxW x maxH.
//
// The pyramid's own coarsest suitable level is read in full and fitted to
// the box, the same strategy slide viewers use: pick the best level for the
// box's downsample, then shrink the remainder.
func (s *Service) Thumbnail(name string, maxW, maxH int) ([]byte, error) {
	if maxW < 1 {
		maxW = 1
	}
	if maxH < 1 {
		maxH = 1
	}

	src, err := s.registry.Open(name)
	if err != nil {
		return nil, err
	}

	width, height := src.Dimensions()
	required := float64(width) / float64(maxW)
	if hr := float64(height) / float64(maxH); hr > required {
		required = hr
	}

	downsamples := make([]float64, src.LevelCount())
	for i := range downsamples {
		downsamples[i] = src.LevelDownsample(i)
	}
	choice := bestLevelForDownsample(downsamples, required)

	levelW, levelH := src.LevelDimensions(choice.Level)
	block, err := src.ReadRegion(0, 0, choice.Level, levelW, levelH)
	if err != nil {
		return nil, fmt.Errorf("read thumbnail level %d: %w", choice.Level, err)
	}

	thumb := imaging.Fit(Flatten(block), maxW, maxH, imaging.Lanczos)
	return encodePNG(thumb)
}

// SaveRegion extracts a region and writes it under the save directory,
// creating parent directories as needed and enforcing a .png extension.
// It returns the path written.
func (s *Service) SaveRegion(name string, region Region, saveName string) (string, error) {
	saveName = normalizeSaveName(saveName)
	if saveName == "" {
		return "", fmt.Errorf("invalid save filename")
	}

	result, err := s.GetRegion(name, region)
	if err != nil {
		return "", err
	}

	path := filepath.Join(s.saveDir, saveName)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", fmt.Errorf("create save directory: %w", err)
	}
	if err := os.WriteFile(path, result.PNG, 0o644); err != nil {
		return "", fmt.Errorf("write %s: %w", path, err)
	}
	return path, nil
}

// normalizeSaveName cleans a client-supplied save path, appends .png when
// missing, and rejects anything escaping the save directory. Returns ""
// for unusable names.
func normalizeSaveName(name string) string {
	if name == "" {
		return ""
	}
	name = filepath.Clean(name)
	if filepath.IsAbs(name) || name == "." || name == ".." || strings.HasPrefix(name, ".."+string(filepath.Separator)) {
		return ""
	}
	if !strings.HasSuffix(strings.ToLower(name), ".png") {
		name += ".png"
	}
	return name
}

// Close releases every cached slide. Call only at shutdown, after all
// in-flight extractions have finished.
func (s *Service) Close() {
	s.registry.CloseAll()
}
