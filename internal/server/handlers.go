package server

import (
	"errors"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/wsi-tools/wsi-clip/internal/pyramid"
)

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "ok",
		"timestamp": time.Now().Format(time.RFC3339),
	})
}

func (s *Server) handleFiles(c *gin.Context) {
	files, err := s.service.ListSlides()
	if err != nil {
		log.Printf("handleFiles: %v", err)
		fail(c, http.StatusInternalServerError, "list_failed", err.Error())
		return
	}
	c.JSON(http.StatusOK, gin.H{"files": files})
}

func (s *Server) handleInfo(c *gin.Context) {
	name := c.Param("filename")

	info, err := s.service.SlideInfo(name)
	if err != nil {
		s.respondError(c, "handleInfo", err)
		return
	}
	c.JSON(http.StatusOK, info)
}

func (s *Server) handleThumbnail(c *gin.Context) {
	name := c.Param("filename")
	maxW, okW := intQueryDefault(c, "max_width", 800)
	maxH, okH := intQueryDefault(c, "max_height", 800)
	if !okW || !okH {
		fail(c, http.StatusBadRequest, "invalid_request", "max_width and max_height must be integers")
		return
	}
	if maxW < 1 || maxH < 1 {
		fail(c, http.StatusBadRequest, "invalid_size", "max_width and max_height must be positive")
		return
	}

	thumb, err := s.service.Thumbnail(name, maxW, maxH)
	if err != nil {
		s.respondError(c, "handleThumbnail", err)
		return
	}
	c.Data(http.StatusOK, "image/png", thumb)
}

func (s *Server) handleRegion(c *gin.Context) {
	name, region, ok := regionQuery(c)
	if !ok {
		return
	}

	result, err := s.service.GetRegion(name, region)
	if err != nil {
		s.respondError(c, "handleRegion", err)
		return
	}

	c.Header("X-Level-Used", strconv.Itoa(result.LevelUsed))
	c.Header("X-Level-Downsample", strconv.FormatFloat(result.LevelDownsample, 'f', -1, 64))
	c.Header("X-Output-Width", strconv.Itoa(result.OutputWidth))
	c.Header("X-Output-Height", strconv.Itoa(result.OutputHeight))
	c.Data(http.StatusOK, "image/png", result.PNG)
}

func (s *Server) handleStats(c *gin.Context) {
	name, region, ok := regionQuery(c)
	if !ok {
		return
	}

	stats, err := s.service.RegionStats(name, region)
	if err != nil {
		s.respondError(c, "handleStats", err)
		return
	}
	c.JSON(http.StatusOK, stats)
}

// saveRequest is the body of POST /api/save. X and Y are pointers so a
// missing coordinate is distinguishable from 0.
type saveRequest struct {
	Filename       string `json:"filename"`
	X              *int64 `json:"x"`
	Y              *int64 `json:"y"`
	Width          int64  `json:"width"`
	Height         int64  `json:"height"`
	SaveFilename   string `json:"save_filename"`
	ClientDownload bool   `json:"client_download"`
}

func (s *Server) handleSave(c *gin.Context) {
	var req saveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, "invalid_request", "JSON body required")
		return
	}
	if req.Filename == "" || req.X == nil || req.Y == nil || req.SaveFilename == "" {
		fail(c, http.StatusBadRequest, "invalid_request", "filename, x, y, width, height and save_filename are required")
		return
	}
	if req.Width <= 0 || req.Height <= 0 {
		fail(c, http.StatusBadRequest, "invalid_region", "width and height must be positive")
		return
	}

	region := pyramid.Region{X: *req.X, Y: *req.Y, Width: req.Width, Height: req.Height}

	if s.clientSave && req.ClientDownload {
		result, err := s.service.GetRegion(req.Filename, region)
		if err != nil {
			s.respondError(c, "handleSave", err)
			return
		}
		name := req.SaveFilename
		if !strings.HasSuffix(strings.ToLower(name), ".png") {
			name += ".png"
		}
		c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))
		c.Data(http.StatusOK, "image/png", result.PNG)
		return
	}

	path, err := s.service.SaveRegion(req.Filename, region, req.SaveFilename)
	if err != nil {
		s.respondError(c, "handleSave", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "region saved",
		"path":    path,
	})
}

func (s *Server) handleConfig(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"client_save_enabled": s.clientSave,
		"max_pixels":          s.service.MaxPixels(),
	})
}

// regionQuery parses the shared query parameters of /api/region and
// /api/stats. On failure it writes the 400 response and returns ok=false.
func regionQuery(c *gin.Context) (string, pyramid.Region, bool) {
	name := c.Query("filename")
	if name == "" {
		fail(c, http.StatusBadRequest, "invalid_request", "filename is required")
		return "", pyramid.Region{}, false
	}

	x, okX := intQuery(c, "x")
	y, okY := intQuery(c, "y")
	width, okW := intQuery(c, "width")
	height, okH := intQuery(c, "height")
	if !okX || !okY || !okW || !okH {
		fail(c, http.StatusBadRequest, "invalid_request", "x, y, width and height must be integers")
		return "", pyramid.Region{}, false
	}
	if width <= 0 || height <= 0 {
		fail(c, http.StatusBadRequest, "invalid_region", "width and height must be positive")
		return "", pyramid.Region{}, false
	}

	return name, pyramid.Region{X: x, Y: y, Width: width, Height: height}, true
}

// respondError maps service errors onto HTTP statuses: unknown slides are
// client errors, anything else is a decode/server failure.
func (s *Server) respondError(c *gin.Context, op string, err error) {
	if errors.Is(err, pyramid.ErrNotFound) {
		fail(c, http.StatusNotFound, "not_found", err.Error())
		return
	}
	log.Printf("%s: %v", op, err)
	fail(c, http.StatusInternalServerError, "extraction_failed", err.Error())
}

func fail(c *gin.Context, status int, code, message string) {
	c.JSON(status, gin.H{
		"success": false,
		"error":   code,
		"message": message,
	})
}

func intQuery(c *gin.Context, name string) (int64, bool) {
	raw := c.Query(name)
	if raw == "" {
		return 0, false
	}
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

// intQueryDefault returns def when the parameter is absent, and ok=false
// when it is present but not an integer, so handlers can reject malformed
// values the same way intQuery does.
func intQueryDefault(c *gin.Context, name string, def int) (int, bool) {
	raw := c.Query(name)
	if raw == "" {
		return def, true
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, false
	}
	return v, true
}
