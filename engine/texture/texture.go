package texture

import (
	"errors"
	"fmt"

	"github.com/Carmen-Shannon/oxy-q3/common"
)

// ErrEmptyTexture is returned when a texture is built without pixels.
var ErrEmptyTexture = errors.New("texture has no pixels")

// texture is the implementation of the Texture interface.
type texture struct {
	name    string
	width   int
	height  int
	layers  int
	pixels  []byte
	sampler Sampler
}

// Texture is an immutable RGBA8 texture array sampled by the software evaluator. Animated
// stage textures hold one layer per animation frame; still textures have a single layer.
// The same pixels are handed to the GPU uploader through StagingData so both evaluators
// read identical texels.
type Texture interface {
	// Name retrieves the texture identifier.
	//
	// Returns:
	//   - string: the texture name
	Name() string

	// Width retrieves the width of each layer in pixels.
	//
	// Returns:
	//   - int: the width
	Width() int

	// Height retrieves the height of each layer in pixels.
	//
	// Returns:
	//   - int: the height
	Height() int

	// Layers retrieves the number of array layers, at least 1.
	//
	// Returns:
	//   - int: the layer count
	Layers() int

	// Sampler retrieves the sampler used by Sample.
	//
	// Returns:
	//   - Sampler: the sampler
	Sampler() Sampler

	// Texel returns the normalized RGBA texel at integer coordinates, applying the sampler's
	// address modes. The layer is clamped to the valid range.
	//
	// Parameters:
	//   - x, y: texel coordinates
	//   - layer: array layer
	//
	// Returns:
	//   - [4]float32: the texel color, each channel in [0, 1]
	Texel(x, y, layer int) [4]float32

	// Sample filters the texture at a normalized coordinate. The layer is clamped to the
	// valid range, matching the GPU path.
	//
	// Parameters:
	//   - uv: the texture coordinate
	//   - layer: array layer
	//
	// Returns:
	//   - [4]float32: the filtered color, each channel in [0, 1]
	Sample(uv [2]float32, layer int) [4]float32

	// StagingData returns the pixels in the layout the GPU uploader expects.
	//
	// Returns:
	//   - common.TextureStagingData: the packed layers
	StagingData() common.TextureStagingData
}

var _ Texture = &texture{}

// NewTexture creates a new Texture configured with the provided options.
//
// Parameters:
//   - options: variadic list of TextureBuilderOption functions to configure the texture
//
// Returns:
//   - Texture: a new Texture instance
//   - error: ErrEmptyTexture if no pixels were supplied, or a size mismatch
func NewTexture(options ...TextureBuilderOption) (Texture, error) {
	t := &texture{}
	for _, opt := range options {
		if err := opt(t); err != nil {
			return nil, fmt.Errorf("texture %q: %w", t.name, err)
		}
	}
	if t.width == 0 || t.height == 0 || len(t.pixels) == 0 {
		return nil, fmt.Errorf("texture %q: %w", t.name, ErrEmptyTexture)
	}
	t.layers = common.Coalesce(t.layers, 1)
	if want := t.width * t.height * 4 * t.layers; len(t.pixels) != want {
		return nil, fmt.Errorf("texture %q: %d bytes of pixels, expected %d", t.name, len(t.pixels), want)
	}
	return t, nil
}

// FromImported decodes the frames of an animated texture into one texture array.
// The sampler is taken from the first frame.
//
// Parameters:
//   - name: the texture name
//   - frames: the frames in animation order
//
// Returns:
//   - Texture: the decoded texture
//   - error: an error if any frame fails to decode or the sizes differ
func FromImported(name string, frames ...*common.ImportedTexture) (Texture, error) {
	if len(frames) == 0 {
		return nil, fmt.Errorf("texture %q: %w", name, ErrEmptyTexture)
	}
	staged, err := common.StageTextures(frames...)
	if err != nil {
		return nil, fmt.Errorf("texture %q: %w", name, err)
	}
	return NewTexture(
		WithName(name),
		WithStagingData(staged),
		WithSampler(SamplerFromStaging(frames[0].SamplerData)),
	)
}

// Solid returns a single texel texture of one color.
//
// Parameters:
//   - name: the texture name
//   - c: the RGBA color, each channel in [0, 1]
//
// Returns:
//   - Texture: the texture
func Solid(name string, c [4]float32) Texture {
	px := make([]byte, 4)
	for i := range 4 {
		px[i] = uint8(common.Clamp01(c[i])*255 + 0.5)
	}
	return &texture{name: name, width: 1, height: 1, layers: 1, pixels: px}
}

// White is the texture sampled when a stage has no color texture bound.
var White = Solid("*white", [4]float32{1, 1, 1, 1})

func (t *texture) Name() string {
	return t.name
}

func (t *texture) Width() int {
	return t.width
}

func (t *texture) Height() int {
	return t.height
}

func (t *texture) Layers() int {
	return t.layers
}

func (t *texture) Sampler() Sampler {
	return t.sampler
}

func (t *texture) Texel(x, y, layer int) [4]float32 {
	x = wrap(x, t.width, t.sampler.AddressU)
	y = wrap(y, t.height, t.sampler.AddressV)
	layer = min(max(layer, 0), t.layers-1)
	i := ((layer*t.height+y)*t.width + x) * 4
	p := t.pixels[i : i+4 : i+4]
	return [4]float32{
		float32(p[0]) / 255,
		float32(p[1]) / 255,
		float32(p[2]) / 255,
		float32(p[3]) / 255,
	}
}

func (t *texture) Sample(uv [2]float32, layer int) [4]float32 {
	x, fx := texelPosition(uv[0], t.width, t.sampler.Filter)
	y, fy := texelPosition(uv[1], t.height, t.sampler.Filter)
	if t.sampler.Filter == FilterNearest {
		return t.Texel(x, y, layer)
	}

	c00 := t.Texel(x, y, layer)
	c10 := t.Texel(x+1, y, layer)
	c01 := t.Texel(x, y+1, layer)
	c11 := t.Texel(x+1, y+1, layer)
	var out [4]float32
	for i := range 4 {
		top := common.Lerp(c00[i], c10[i], fx)
		bottom := common.Lerp(c01[i], c11[i], fx)
		out[i] = common.Lerp(top, bottom, fy)
	}
	return out
}

func (t *texture) StagingData() common.TextureStagingData {
	return common.TextureStagingData{
		Pixels: t.pixels,
		Width:  uint32(t.width),
		Height: uint32(t.height),
		Layers: uint32(t.layers),
	}
}
