package server

import (
	"github.com/gin-gonic/gin"

	"github.com/wsi-tools/wsi-clip/internal/pyramid"
)

// Server wires the pyramid service into an HTTP API.
type Server struct {
	service    *pyramid.Service
	clientSave bool
}

// New creates a server around service. When clientSave is true, /api/save
// may stream the rendered region back to the client as a download instead
// of writing it server-side.
func New(service *pyramid.Service, clientSave bool) *Server {
	return &Server{
		service:    service,
		clientSave: clientSave,
	}
}

// Router builds the gin engine with all routes and middleware attached.
func (s *Server) Router() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(accessLog())

	r.GET("/health", s.handleHealth)

	api := r.Group("/api")
	api.GET("/files", s.handleFiles)
	api.GET("/info/:filename", s.handleInfo)
	api.GET("/thumbnail/:filename", s.handleThumbnail)
	api.GET("/region", s.handleRegion)
	api.GET("/stats", s.handleStats)
	api.POST("/save", s.handleSave)
	api.GET("/config", s.handleConfig)

	return r
}

// Run starts serving on addr (e.g. ":8080") and blocks.
func (s *Server) Run(addr string) error {
	return s.Router().Run(addr)
}
