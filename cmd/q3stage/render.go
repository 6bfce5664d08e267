package main

import (
	"fmt"
	"image"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/Carmen-Shannon/oxy-q3/common"
	"github.com/Carmen-Shannon/oxy-q3/engine/frame"
	"github.com/Carmen-Shannon/oxy-q3/engine/model"
	"github.com/Carmen-Shannon/oxy-q3/engine/profiler"
	"github.com/Carmen-Shannon/oxy-q3/engine/raster"
	"github.com/Carmen-Shannon/oxy-q3/engine/renderer"
	"github.com/Carmen-Shannon/oxy-q3/engine/renderer/shader"
	"github.com/schollz/progressbar/v3"
	"golang.org/x/image/bmp"
	"golang.org/x/image/tiff"
)

// encoders maps an output format to its image encoder.
var encoders = map[string]func(io.Writer, image.Image) error{
	"png":  png.Encode,
	"bmp":  bmp.Encode,
	"tiff": func(w io.Writer, m image.Image) error { return tiff.Encode(w, m, nil) },
}

// renderOptions are the command line settings of one run.
type renderOptions struct {
	outDir   string
	format   string
	gpu      bool
	progress bool
}

// renderResult summarizes a run.
type renderResult struct {
	files []string
	stats raster.Stats
	// uploads counts draws mirrored to the GPU; zero when no device was used.
	uploads int
}

// render draws every frame of the scene on the CPU and writes one image per frame.
// With opts.gpu set, every draw is also uploaded to a headless device; a missing device
// only logs a warning.
func render(cfg *Config, sc *scene, opts renderOptions) (*renderResult, error) {
	encode, ok := encoders[strings.ToLower(opts.format)]
	if !ok {
		return nil, fmt.Errorf("unsupported image format %q", opts.format)
	}
	if err := os.MkdirAll(opts.outDir, 0o755); err != nil {
		return nil, fmt.Errorf("output directory: %w", err)
	}

	ras := raster.NewRasterizer(
		raster.WithSize(cfg.Width, cfg.Height),
		raster.WithWorkers(cfg.Workers),
		raster.WithValidation(cfg.Validate),
		raster.WithClearColor(cfg.Clear),
	)
	defer ras.Release()

	var up renderer.Uploader
	if opts.gpu {
		u, err := renderer.NewUploader(renderer.WithValidation(cfg.Validate))
		if err != nil {
			common.Logger().Warn("gpu upload disabled", "error", err)
		} else {
			up = u
			defer up.Release()
		}
	}

	var pb *progressbar.ProgressBar
	if opts.progress {
		pb = progressbar.Default(int64(cfg.Frames), "rendering")
		defer pb.Close()
	}

	prof := profiler.NewProfiler()
	pub := frame.NewPublisher()
	res := &renderResult{}

	for i := range cfg.Frames {
		f, err := publishFrame(pub, cfg, i)
		if err != nil {
			return nil, fmt.Errorf("frame %d: %w", i, err)
		}

		ras.Clear()
		for _, d := range sc.draws {
			st, err := ras.Draw(f, d.mesh, d.surface)
			if err != nil {
				return nil, fmt.Errorf("frame %d surface %q: %w", i, d.surface.Name(), err)
			}
			res.stats.Written += st.Written
			res.stats.Discarded += st.Discarded
			res.stats.Misconfigured += st.Misconfigured
			res.stats.DepthRejected += st.DepthRejected

			if up != nil {
				if err := up.Upload(f, d.mesh, d.surface); err != nil {
					return nil, fmt.Errorf("frame %d upload %q: %w", i, d.surface.Name(), err)
				}
				res.uploads++
			}
		}

		name := filepath.Join(opts.outDir, fmt.Sprintf("frame_%04d.%s", i, strings.ToLower(opts.format)))
		if err := writeImage(name, ras.Framebuffer().Image(), encode); err != nil {
			return nil, err
		}
		res.files = append(res.files, name)
		common.Logger().Debug("frame written", "generation", f.Generation(), "time", f.Time(), "file", name)

		prof.Tick()
		if pb != nil {
			_ = pb.Add(1)
		}
	}

	s := prof.Summary()
	common.Logger().Info("render complete",
		"frames", s.Frames,
		"fps", s.FPS,
		"frame_time", s.FrameTime,
		"heap_mb", s.HeapMB,
		"gc", s.GCCount,
		"written", res.stats.Written,
		"discarded", res.stats.Discarded,
		"misconfigured", res.stats.Misconfigured,
		"uploads", res.uploads,
	)
	return res, nil
}

func writeImage(name string, img image.Image, encode func(io.Writer, image.Image) error) error {
	out, err := os.Create(name)
	if err != nil {
		return fmt.Errorf("create %s: %w", name, err)
	}
	if err := encode(out, img); err != nil {
		out.Close()
		return fmt.Errorf("encode %s: %w", name, err)
	}
	return out.Close()
}

// emitShader writes the surface stage shader translated for lang to path.
func emitShader(path, lang string) error {
	sh := shader.NewStageShader(model.MeshKindSurface)

	var (
		src string
		err error
	)
	switch lang {
	case "msl":
		src, err = shader.TranslateMSL(sh)
	case "glsl":
		src, err = shader.TranslateGLSL(sh, sh.FragmentEntryPoint())
	case "wgsl":
		src = sh.Source()
	default:
		return fmt.Errorf("unsupported shader language %q", lang)
	}
	if err != nil {
		return fmt.Errorf("translate %s: %w", lang, err)
	}
	if err := os.WriteFile(path, []byte(src), 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	common.Logger().Info("shader written", "lang", lang, "path", path, "bytes", len(src))
	return nil
}
