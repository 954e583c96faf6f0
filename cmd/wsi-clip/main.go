package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"

	"github.com/wsi-tools/wsi-clip/internal/openslide"
	"github.com/wsi-tools/wsi-clip/internal/pyramid"
	"github.com/wsi-tools/wsi-clip/internal/server"
)

// Version information - set by ldflags during build
var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

func main() {
	svsDir := flag.String("svs-dir", "", "directory containing slide files (required)")
	saveDir := flag.String("save-dir", "", "directory for server-side saves (required)")
	port := flag.Int("port", 8080, "listen port")
	maxPixels := flag.Int("max-pixels", 1024, "maximum output size per image side, in pixels")
	showVersion := flag.Bool("version", false, "print version information and exit")
	flag.Parse()

	if *showVersion {
		fmt.Printf("wsi-clip %s\n", Version)
		fmt.Printf("  Build time: %s\n", BuildTime)
		fmt.Printf("  Git commit: %s\n", GitCommit)
		fmt.Printf("  OpenSlide:  %s\n", openslide.Version())
		return
	}

	log.SetOutput(os.Stderr)
	log.SetFlags(log.Ldate | log.Ltime | log.Lshortfile)

	if *svsDir == "" || *saveDir == "" {
		flag.Usage()
		log.Fatal("both --svs-dir and --save-dir are required")
	}
	if info, err := os.Stat(*svsDir); err != nil || !info.IsDir() {
		log.Fatalf("slide directory does not exist: %s", *svsDir)
	}
	if err := os.MkdirAll(*saveDir, 0o755); err != nil {
		log.Fatalf("cannot create save directory %s: %v", *saveDir, err)
	}
	if *maxPixels < 1 {
		log.Fatalf("--max-pixels must be positive, got %d", *maxPixels)
	}

	if os.Getenv("WSI_CLIP_MODE") == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	registry := pyramid.NewRegistry(*svsDir, openPyramid)
	service := pyramid.NewService(registry, *saveDir, *maxPixels)

	// Release cached slide handles on shutdown. CloseAll must not race
	// with in-flight requests, so it only runs here.
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigCh
		log.Println("shutting down, closing cached slides")
		service.Close()
		os.Exit(0)
	}()

	log.Printf("wsi-clip %s (OpenSlide %s)", Version, openslide.Version())
	log.Printf("  slide directory: %s", *svsDir)
	log.Printf("  save directory:  %s", *saveDir)
	log.Printf("  max pixels:      %d", *maxPixels)
	log.Printf("  listening on:    http://localhost:%d", *port)

	srv := server.New(service, true)
	if err := srv.Run(fmt.Sprintf(":%d", *port)); err != nil {
		log.Fatalf("server error: %v", err)
	}
}

// openPyramid adapts the OpenSlide binding to the registry's OpenFunc.
func openPyramid(path string) (pyramid.Source, error) {
	slide, err := openslide.Open(path)
	if err != nil {
		return nil, err
	}
	return slide, nil
}
