package raster

import (
	"runtime"
	"time"
)

const defaultIdleTimeout = 1 * time.Second

// RasterizerBuilderOption is a functional option for configuring a Rasterizer.
type RasterizerBuilderOption func(*rasterizer)

func defaultWorkers() int {
	return max(runtime.NumCPU(), 1)
}

// WithSize sets the framebuffer size in pixels. Non-positive values keep the 640x480 default.
//
// Parameters:
//   - width: the framebuffer width
//   - height: the framebuffer height
//
// Returns:
//   - RasterizerBuilderOption: a function that applies the size option
func WithSize(width, height int) RasterizerBuilderOption {
	return func(r *rasterizer) {
		if width > 0 && height > 0 {
			r.width = width
			r.height = height
		}
	}
}

// WithWorkers sets the number of pool workers evaluating bands. Defaults to the CPU count.
//
// Parameters:
//   - n: the worker count, ignored if < 1
//
// Returns:
//   - RasterizerBuilderOption: a function that applies the workers option
func WithWorkers(n int) RasterizerBuilderOption {
	return func(r *rasterizer) {
		if n >= 1 {
			r.workers = n
		}
	}
}

// WithBandHeight sets the number of rows evaluated by one task.
//
// Parameters:
//   - rows: rows per band, ignored if < 1
//
// Returns:
//   - RasterizerBuilderOption: a function that applies the band height option
func WithBandHeight(rows int) RasterizerBuilderOption {
	return func(r *rasterizer) {
		if rows >= 1 {
			r.bandHeight = rows
		}
	}
}

// WithValidation enables stage validation before each draw.
//
// Parameters:
//   - enabled: whether Draw validates the surface against the mesh format
//
// Returns:
//   - RasterizerBuilderOption: a function that applies the validation option
func WithValidation(enabled bool) RasterizerBuilderOption {
	return func(r *rasterizer) {
		r.validate = enabled
	}
}

// WithClearColor sets the color Clear fills the framebuffer with.
func WithClearColor(c [4]float32) RasterizerBuilderOption {
	return func(r *rasterizer) {
		r.clearColor = c
	}
}
