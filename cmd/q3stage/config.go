package main

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/Carmen-Shannon/oxy-q3/common"
	"github.com/Carmen-Shannon/oxy-q3/engine/model"
	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// Config is a headless scene: the textures, the surfaces built from them and the draws that
// put surfaces on geometry. YAML and TOML files share the same keys.
type Config struct {
	Width   int     `yaml:"width" toml:"width"`
	Height  int     `yaml:"height" toml:"height"`
	Frames  int     `yaml:"frames" toml:"frames"`
	FPS     float32 `yaml:"fps" toml:"fps"`
	Workers int     `yaml:"workers" toml:"workers"`
	// Validate checks every stage at bind time and fails the draw on a bad stage.
	Validate bool       `yaml:"validate" toml:"validate"`
	Clear    [4]float32 `yaml:"clear" toml:"clear"`

	Camera   CameraConfig    `yaml:"camera" toml:"camera"`
	Textures []TextureConfig `yaml:"textures" toml:"textures"`
	Surfaces []SurfaceConfig `yaml:"surfaces" toml:"surfaces"`
	Draws    []DrawConfig    `yaml:"draws" toml:"draws"`
}

// CameraConfig places the eye of surface draws. 2D draws ignore it.
type CameraConfig struct {
	Eye    [3]float32 `yaml:"eye" toml:"eye"`
	Target [3]float32 `yaml:"target" toml:"target"`
	Up     [3]float32 `yaml:"up" toml:"up"`
	// FovY is the vertical field of view in degrees.
	FovY float32 `yaml:"fov_y" toml:"fov_y"`
	Near float32 `yaml:"near" toml:"near"`
	Far  float32 `yaml:"far" toml:"far"`
}

// TextureConfig is one texture. Paths lists the frames of an animated map in order;
// a texture without paths is a single texel of Color.
type TextureConfig struct {
	Name    string     `yaml:"name" toml:"name"`
	Paths   []string   `yaml:"paths" toml:"paths"`
	Color   [4]float32 `yaml:"color" toml:"color"`
	Clamp   bool       `yaml:"clamp" toml:"clamp"`
	Nearest bool       `yaml:"nearest" toml:"nearest"`
}

// SurfaceConfig is a named list of stages drawn in order.
type SurfaceConfig struct {
	Name   string        `yaml:"name" toml:"name"`
	Sort   float32       `yaml:"sort" toml:"sort"`
	Stages []StageConfig `yaml:"stages" toml:"stages"`
}

// StageConfig is one authored stage. Enum fields take the names accepted by the stage
// package Parse functions; empty fields keep the stage defaults.
type StageConfig struct {
	Name string `yaml:"name" toml:"name"`
	// Map names the color texture; AnimFrequency above zero animates through its layers.
	Map           string  `yaml:"map" toml:"map"`
	AnimFrequency float32 `yaml:"anim_frequency" toml:"anim_frequency"`
	// Lightmap names the lightmap texture and enables the lightmap multiply.
	Lightmap      string         `yaml:"lightmap" toml:"lightmap"`
	TCGen         string         `yaml:"tcgen" toml:"tcgen"`
	TCGenVectors  [][3]float32   `yaml:"tcgen_vectors" toml:"tcgen_vectors"`
	TCMods        []TCModConfig  `yaml:"tcmods" toml:"tcmods"`
	RGBGen        RGBGenConfig   `yaml:"rgbgen" toml:"rgbgen"`
	AlphaGen      AlphaGenConfig `yaml:"alphagen" toml:"alphagen"`
	AlphaFunc     string         `yaml:"alpha_func" toml:"alpha_func"`
	AlphaValue    *float32       `yaml:"alpha_value" toml:"alpha_value"`
	Blend         string         `yaml:"blend" toml:"blend"`
	DepthWrite    *bool          `yaml:"depth_write" toml:"depth_write"`
	TimeOffset    float32        `yaml:"time_offset" toml:"time_offset"`
	IdentityLight float32        `yaml:"identity_light" toml:"identity_light"`
}

// WaveConfig is a periodic function of time.
type WaveConfig struct {
	Func      string  `yaml:"func" toml:"func"`
	Base      float32 `yaml:"base" toml:"base"`
	Amplitude float32 `yaml:"amplitude" toml:"amplitude"`
	Phase     float32 `yaml:"phase" toml:"phase"`
	Frequency float32 `yaml:"frequency" toml:"frequency"`
}

// TCModConfig is one texture coordinate modifier. Only the fields of its Type are read:
// scroll and scale read Vec, rotate reads Degrees, stretch and turb read Wave, transform
// reads Matrix and Translate.
type TCModConfig struct {
	Type      string     `yaml:"type" toml:"type"`
	Vec       [2]float32 `yaml:"vec" toml:"vec"`
	Degrees   float32    `yaml:"degrees" toml:"degrees"`
	Wave      WaveConfig `yaml:"wave" toml:"wave"`
	Matrix    [4]float32 `yaml:"matrix" toml:"matrix"`
	Translate [2]float32 `yaml:"translate" toml:"translate"`
}

// RGBGenConfig is an authored rgbGen.
type RGBGenConfig struct {
	Type  string     `yaml:"type" toml:"type"`
	Const [3]float32 `yaml:"const" toml:"const"`
	Wave  WaveConfig `yaml:"wave" toml:"wave"`
}

// AlphaGenConfig is an authored alphaGen.
type AlphaGenConfig struct {
	Type  string     `yaml:"type" toml:"type"`
	Const float32    `yaml:"const" toml:"const"`
	Wave  WaveConfig `yaml:"wave" toml:"wave"`
}

// DrawConfig draws a surface on exactly one of Quad or Plane.
type DrawConfig struct {
	Surface string       `yaml:"surface" toml:"surface"`
	Quad    *QuadConfig  `yaml:"quad" toml:"quad"`
	Plane   *PlaneConfig `yaml:"plane" toml:"plane"`
}

// QuadConfig is a screen rectangle in the 640x480 virtual screen.
type QuadConfig struct {
	X     float32    `yaml:"x" toml:"x"`
	Y     float32    `yaml:"y" toml:"y"`
	W     float32    `yaml:"w" toml:"w"`
	H     float32    `yaml:"h" toml:"h"`
	ST    [4]float32 `yaml:"st" toml:"st"`
	Color [4]float32 `yaml:"color" toml:"color"`
}

// PlaneConfig is a world-space parallelogram spanned from Origin by U and V.
type PlaneConfig struct {
	Origin [3]float32 `yaml:"origin" toml:"origin"`
	U      [3]float32 `yaml:"u" toml:"u"`
	V      [3]float32 `yaml:"v" toml:"v"`
	Repeat [2]float32 `yaml:"repeat" toml:"repeat"`
	Color  [4]float32 `yaml:"color" toml:"color"`
	// Bare drops normals and lightmap coordinates from the vertex stream.
	Bare bool `yaml:"bare" toml:"bare"`
}

// LoadConfig reads a scene file, decoding it as YAML or TOML by extension, and fills defaults.
//
// Parameters:
//   - path: a .yaml, .yml or .toml file
//
// Returns:
//   - *Config: the decoded configuration
//   - error: an error if the file cannot be read, decoded or is inconsistent
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	cfg, err := ParseConfig(data, filepath.Ext(path))
	if err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// ParseConfig decodes a scene from memory.
//
// Parameters:
//   - data: the encoded scene
//   - ext: the file extension selecting the decoder
//
// Returns:
//   - *Config: the decoded configuration with defaults filled
//   - error: an error if decoding fails or the scene is inconsistent
func ParseConfig(data []byte, ext string) (*Config, error) {
	cfg := &Config{}
	switch strings.ToLower(ext) {
	case ".yaml", ".yml":
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(cfg); err != nil {
			return nil, fmt.Errorf("yaml: %w", err)
		}
	case ".toml":
		dec := toml.NewDecoder(bytes.NewReader(data))
		dec.DisallowUnknownFields()
		if err := dec.Decode(cfg); err != nil {
			return nil, fmt.Errorf("toml: %w", err)
		}
	default:
		return nil, fmt.Errorf("unsupported config extension %q", ext)
	}
	cfg.applyDefaults()
	if err := cfg.check(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyDefaults() {
	c.Width = common.Coalesce(c.Width, model.VirtualScreenWidth)
	c.Height = common.Coalesce(c.Height, model.VirtualScreenHeight)
	c.Frames = common.Coalesce(c.Frames, 1)
	c.FPS = common.Coalesce(c.FPS, 30)
	c.Camera.Eye = common.Coalesce(c.Camera.Eye, [3]float32{0, 0, 3})
	c.Camera.Up = common.Coalesce(c.Camera.Up, [3]float32{0, 1, 0})
	c.Camera.FovY = common.Coalesce(c.Camera.FovY, 90)
	c.Camera.Near = common.Coalesce(c.Camera.Near, 0.1)
	c.Camera.Far = common.Coalesce(c.Camera.Far, 100)

	white := [4]float32{1, 1, 1, 1}
	for i := range c.Textures {
		if len(c.Textures[i].Paths) == 0 {
			c.Textures[i].Color = common.Coalesce(c.Textures[i].Color, white)
		}
	}
	for i := range c.Draws {
		if q := c.Draws[i].Quad; q != nil {
			q.ST = common.Coalesce(q.ST, [4]float32{0, 0, 1, 1})
			q.Color = common.Coalesce(q.Color, white)
		}
		if p := c.Draws[i].Plane; p != nil {
			p.Repeat = common.Coalesce(p.Repeat, [2]float32{1, 1})
			p.Color = common.Coalesce(p.Color, white)
		}
	}
}

// check reports references to undeclared names and malformed draws.
func (c *Config) check() error {
	if c.Width < 0 || c.Height < 0 || c.Frames < 0 || c.FPS < 0 {
		return fmt.Errorf("width, height, frames and fps must not be negative")
	}

	textures := make(map[string]bool, len(c.Textures))
	for _, t := range c.Textures {
		if t.Name == "" {
			return fmt.Errorf("texture without a name")
		}
		if textures[t.Name] {
			return fmt.Errorf("texture %q declared twice", t.Name)
		}
		textures[t.Name] = true
	}

	surfaces := make(map[string]bool, len(c.Surfaces))
	for _, s := range c.Surfaces {
		if s.Name == "" {
			return fmt.Errorf("surface without a name")
		}
		if surfaces[s.Name] {
			return fmt.Errorf("surface %q declared twice", s.Name)
		}
		surfaces[s.Name] = true
		if len(s.Stages) == 0 {
			return fmt.Errorf("surface %q has no stages", s.Name)
		}
		for i, st := range s.Stages {
			for _, ref := range []string{st.Map, st.Lightmap} {
				if ref != "" && !textures[ref] {
					return fmt.Errorf("surface %q stage %d: unknown texture %q", s.Name, i, ref)
				}
			}
			if n := len(st.TCGenVectors); n != 0 && n != 2 {
				return fmt.Errorf("surface %q stage %d: tcgen_vectors needs 2 vectors, got %d", s.Name, i, n)
			}
		}
	}

	for i, d := range c.Draws {
		if !surfaces[d.Surface] {
			return fmt.Errorf("draw %d: unknown surface %q", i, d.Surface)
		}
		if (d.Quad == nil) == (d.Plane == nil) {
			return fmt.Errorf("draw %d: exactly one of quad or plane is required", i)
		}
	}
	return nil
}
