package main

import (
	"cmp"
	"fmt"
	"path/filepath"
	"slices"

	"github.com/Carmen-Shannon/oxy-q3/common"
	"github.com/Carmen-Shannon/oxy-q3/engine/frame"
	"github.com/Carmen-Shannon/oxy-q3/engine/model"
	"github.com/Carmen-Shannon/oxy-q3/engine/stage"
	"github.com/Carmen-Shannon/oxy-q3/engine/surface"
	"github.com/Carmen-Shannon/oxy-q3/engine/texture"
	"github.com/chewxy/math32"
)

// draw is one mesh shaded by one surface.
type draw struct {
	mesh    model.Mesh
	surface surface.Surface
}

// scene holds everything built from a Config.
type scene struct {
	textures map[string]texture.Texture
	surfaces map[string]surface.Surface
	// draws are ordered by surface sort key, then by declaration.
	draws []draw
}

// buildScene decodes the textures and builds the surfaces and meshes of a config. Relative
// texture paths resolve against baseDir.
//
// Parameters:
//   - cfg: the configuration
//   - baseDir: the directory of the config file
//
// Returns:
//   - *scene: the built scene
//   - error: an error if a texture fails to load or a stage field does not parse
func buildScene(cfg *Config, baseDir string) (*scene, error) {
	sc := &scene{
		textures: make(map[string]texture.Texture, len(cfg.Textures)),
		surfaces: make(map[string]surface.Surface, len(cfg.Surfaces)),
	}

	for _, tc := range cfg.Textures {
		t, err := loadTexture(tc, baseDir)
		if err != nil {
			return nil, err
		}
		sc.textures[tc.Name] = t
	}

	for _, s := range cfg.Surfaces {
		opts := []surface.SurfaceBuilderOption{surface.WithName(s.Name), surface.WithSort(s.Sort)}
		for i, stc := range s.Stages {
			st, err := buildStage(stc, sc.textures)
			if err != nil {
				return nil, fmt.Errorf("surface %q stage %d: %w", s.Name, i, err)
			}
			opts = append(opts, surface.WithLayer(st, sc.textures[stc.Map], sc.textures[stc.Lightmap]))
		}
		sc.surfaces[s.Name] = surface.NewSurface(opts...)
	}

	for i, d := range cfg.Draws {
		sc.draws = append(sc.draws, draw{
			mesh:    buildMesh(fmt.Sprintf("draw_%d", i), d),
			surface: sc.surfaces[d.Surface],
		})
	}
	slices.SortStableFunc(sc.draws, func(a, b draw) int {
		return cmp.Compare(a.surface.Sort(), b.surface.Sort())
	})

	common.Logger().Debug("scene built",
		"textures", len(sc.textures), "surfaces", len(sc.surfaces), "draws", len(sc.draws))
	return sc, nil
}

func loadTexture(tc TextureConfig, baseDir string) (texture.Texture, error) {
	if len(tc.Paths) == 0 {
		return texture.Solid(tc.Name, tc.Color), nil
	}

	s := texture.Sampler{}
	if tc.Clamp {
		s.AddressU, s.AddressV = texture.AddressClamp, texture.AddressClamp
	}
	if tc.Nearest {
		s.Filter = texture.FilterNearest
	}
	staging := s.Staging()

	frames := make([]*common.ImportedTexture, len(tc.Paths))
	for i, p := range tc.Paths {
		if !filepath.IsAbs(p) {
			p = filepath.Join(baseDir, p)
		}
		frames[i] = &common.ImportedTexture{Name: tc.Name, Path: p, SamplerData: &staging}
	}
	return texture.FromImported(tc.Name, frames...)
}

func buildStage(c StageConfig, textures map[string]texture.Texture) (stage.Stage, error) {
	opts := []stage.StageBuilderOption{
		stage.WithName(c.Name),
		stage.WithTimeOffset(c.TimeOffset),
	}

	if c.TCGen != "" {
		g, err := stage.ParseTCGen(c.TCGen)
		if err != nil {
			return nil, err
		}
		opts = append(opts, stage.WithTCGen(g))
	}
	if len(c.TCGenVectors) == 2 {
		opts = append(opts, stage.WithTCGenVectors(c.TCGenVectors[0], c.TCGenVectors[1]))
	}

	mods := make([]stage.TCMod, 0, len(c.TCMods))
	for _, mc := range c.TCMods {
		m, err := buildTCMod(mc)
		if err != nil {
			return nil, err
		}
		mods = append(mods, m)
	}
	if len(mods) > 0 {
		opts = append(opts, stage.WithTCMods(mods...))
	}

	rgb, err := buildRGBGen(c.RGBGen)
	if err != nil {
		return nil, err
	}
	alpha, err := buildAlphaGen(c.AlphaGen)
	if err != nil {
		return nil, err
	}
	opts = append(opts, stage.WithRGBGen(rgb), stage.WithAlphaGen(alpha))
	if c.IdentityLight != 0 {
		opts = append(opts, stage.WithIdentityLight(c.IdentityLight))
	}

	if c.AlphaFunc != "" {
		fn, err := stage.ParseAlphaTestFunc(c.AlphaFunc)
		if err != nil {
			return nil, err
		}
		opts = append(opts, stage.WithAlphaTest(fn))
	}
	if c.AlphaValue != nil {
		opts = append(opts, stage.WithAlphaTestValue(*c.AlphaValue))
	}

	blend, err := stage.ParseBlendMode(c.Blend)
	if err != nil {
		return nil, err
	}
	opts = append(opts, stage.WithBlendMode(blend))
	if c.DepthWrite != nil {
		opts = append(opts, stage.WithDepthWrite(*c.DepthWrite))
	}

	if c.Lightmap != "" {
		opts = append(opts, stage.WithLightmap(true))
	}
	if c.AnimFrequency > 0 {
		frames := 1
		if t, ok := textures[c.Map]; ok {
			frames = t.Layers()
		}
		opts = append(opts, stage.WithAnimMap(c.AnimFrequency, frames))
	}
	return stage.NewStage(opts...), nil
}

func buildWave(c WaveConfig) (stage.Wave, error) {
	w := stage.Wave{Base: c.Base, Amplitude: c.Amplitude, Phase: c.Phase, Frequency: c.Frequency}
	if c.Func == "" {
		return w, nil
	}
	fn, err := stage.ParseWaveFunc(c.Func)
	if err != nil {
		return stage.Wave{}, err
	}
	w.Func = fn
	return w, nil
}

func buildTCMod(c TCModConfig) (stage.TCMod, error) {
	kind, err := stage.ParseTCModKind(c.Type)
	if err != nil {
		return stage.TCMod{}, err
	}
	switch kind {
	case stage.TCModScroll:
		return stage.Scroll(c.Vec[0], c.Vec[1]), nil
	case stage.TCModScale:
		return stage.Scale(c.Vec[0], c.Vec[1]), nil
	case stage.TCModRotate:
		return stage.Rotate(c.Degrees), nil
	case stage.TCModStretch:
		w, err := buildWave(c.Wave)
		if err != nil {
			return stage.TCMod{}, err
		}
		return stage.Stretch(w), nil
	case stage.TCModTransform:
		m := c.Matrix
		return stage.Transform(m[0], m[1], m[2], m[3], c.Translate[0], c.Translate[1]), nil
	default:
		return stage.Turb(c.Wave.Amplitude, c.Wave.Phase, c.Wave.Frequency), nil
	}
}

func buildRGBGen(c RGBGenConfig) (stage.RGBGen, error) {
	kind, err := stage.ParseRGBGenKind(c.Type)
	if err != nil {
		return stage.RGBGen{}, err
	}
	w, err := buildWave(c.Wave)
	if err != nil {
		return stage.RGBGen{}, err
	}
	return stage.RGBGen{Kind: kind, Const: c.Const, Wave: w}, nil
}

func buildAlphaGen(c AlphaGenConfig) (stage.AlphaGen, error) {
	kind, err := stage.ParseAlphaGenKind(c.Type)
	if err != nil {
		return stage.AlphaGen{}, err
	}
	w, err := buildWave(c.Wave)
	if err != nil {
		return stage.AlphaGen{}, err
	}
	return stage.AlphaGen{Kind: kind, Const: c.Const, Wave: w}, nil
}

func buildMesh(name string, d DrawConfig) model.Mesh {
	if q := d.Quad; q != nil {
		verts, idx := model.Quad2D(q.X, q.Y, q.W, q.H, q.ST[0], q.ST[1], q.ST[2], q.ST[3], q.Color)
		return model.NewMesh(model.WithName(name), model.With2DVertices(verts), model.WithIndices(idx))
	}
	p := d.Plane
	verts, idx, format := model.QuadSurface(p.Origin, p.U, p.V, p.Repeat[0], p.Repeat[1], p.Color)
	if p.Bare {
		format = model.VertexFormat{}
	}
	return model.NewMesh(model.WithName(name), model.WithSurfaceVertices(verts, format), model.WithIndices(idx))
}

// publishFrame publishes the frame of index i: time i/fps seen through the configured camera.
func publishFrame(p frame.Publisher, cfg *Config, i int) (frame.Frame, error) {
	cam := cfg.Camera
	return p.Publish(frame.NewFrame(
		frame.WithFrom(p.Current()),
		frame.WithTime(float32(i)/cfg.FPS),
		frame.WithPerspective(cam.FovY*math32.Pi/180, float32(cfg.Width)/float32(cfg.Height), cam.Near, cam.Far),
		frame.WithLookAt(cam.Eye, cam.Target, cam.Up),
	))
}
