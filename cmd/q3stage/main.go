// Command q3stage renders shader stages headlessly. It reads a YAML or TOML scene, draws
// every frame with the CPU rasterizer and writes one image per frame.
//
//	q3stage -config scene.yaml -out frames -frames 60 -v
//	q3stage -emit-msl stage.metal
package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/Carmen-Shannon/oxy-q3/common"
)

func run() error {
	configPath := flag.String("config", "", "scene file (.yaml, .yml or .toml)")
	outDir := flag.String("out", "out", "directory for rendered frames")
	frames := flag.Int("frames", 0, "number of frames to render, overrides the scene")
	format := flag.String("format", "png", "image format: png, bmp or tiff")
	gpu := flag.Bool("gpu", false, "also upload every draw to a headless GPU device")
	noProgress := flag.Bool("no-progress", false, "disable the progress bar")
	verbose := flag.Bool("v", false, "enable debug logging")
	emitMSL := flag.String("emit-msl", "", "write the surface stage shader as MSL to this file")
	emitGLSL := flag.String("emit-glsl", "", "write the surface stage fragment shader as GLSL to this file")
	emitWGSL := flag.String("emit-wgsl", "", "write the processed surface stage shader WGSL to this file")
	flag.Parse()

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	common.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))

	emitted := false
	for _, e := range []struct{ path, lang string }{
		{*emitMSL, "msl"},
		{*emitGLSL, "glsl"},
		{*emitWGSL, "wgsl"},
	} {
		if e.path == "" {
			continue
		}
		if err := emitShader(e.path, e.lang); err != nil {
			return err
		}
		emitted = true
	}

	if *configPath == "" {
		if emitted {
			return nil
		}
		flag.Usage()
		return fmt.Errorf("-config is required")
	}

	cfg, err := LoadConfig(*configPath)
	if err != nil {
		return err
	}
	if *frames > 0 {
		cfg.Frames = *frames
	}

	sc, err := buildScene(cfg, filepath.Dir(*configPath))
	if err != nil {
		return fmt.Errorf("build scene: %w", err)
	}

	res, err := render(cfg, sc, renderOptions{
		outDir:   *outDir,
		format:   *format,
		gpu:      *gpu,
		progress: !*noProgress,
	})
	if err != nil {
		return err
	}
	fmt.Printf("wrote %d frames to %s\n", len(res.files), *outDir)
	return nil
}

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "q3stage: %v\n", err)
		os.Exit(1)
	}
}
