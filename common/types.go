// package common contains common types that are used throughout this engine. They are not interface-wrapped structs, just plain structs that express
// commonly used data-types.
package common

import (
	"bytes"
	"fmt"
	"image"
	"image/draw"
	_ "image/jpeg"
	_ "image/png"
	"os"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"github.com/cogentcore/webgpu/wgpu"
)

// TextureStagingData holds RGBA pixel data for a texture binding pending GPU upload.
// Animated stage textures upload every frame of the animation as one array layer.
type TextureStagingData struct {
	// Pixels is the RGBA pixel data, 4 bytes per pixel. Layers are stored back to back.
	Pixels []byte
	// Width is the width of each layer in pixels.
	Width uint32
	// Height is the height of each layer in pixels.
	Height uint32
	// Layers is the number of array layers held in Pixels. Zero is treated as one.
	Layers uint32
}

// LayerCount returns the number of array layers, treating zero as a single layer.
func (t TextureStagingData) LayerCount() uint32 {
	return Coalesce(t.Layers, 1)
}

// SamplerStagingData holds the configuration for a sampler binding pending GPU creation.
type SamplerStagingData struct {
	// AddressModeU, AddressModeV, AddressModeW specify the addressing mode for texture coordinates outside the [0, 1] range.
	AddressModeU, AddressModeV, AddressModeW wgpu.AddressMode
	// MagFilter and MinFilter specify the filtering mode for magnification and minification.
	MagFilter, MinFilter wgpu.FilterMode
	// MipmapFilter specifies the filtering mode for mipmap level selection.
	MipmapFilter wgpu.MipmapFilterMode
	// LodMinClamp and LodMaxClamp specify the minimum and maximum level of detail.
	LodMinClamp, LodMaxClamp float32
	// MaxAnisotropy specifies the maximum anisotropy level for anisotropic filtering.
	MaxAnisotropy uint16
}

// ImportedTexture represents encoded image data for a stage texture, either in memory or on disk.
type ImportedTexture struct {
	// Name is an identifier for this texture (e.g., "textures/base_wall/metal").
	Name string

	// Path is the file path for textures loaded from disk (empty for in-memory data).
	Path string

	// Data contains raw encoded image bytes (PNG, JPEG, BMP, TIFF or WebP).
	Data []byte

	// Width is the texture width in pixels (populated after Decode).
	Width int

	// Height is the texture height in pixels (populated after Decode).
	Height int

	// SamplerData holds GPU sampler parameters. When nil the uploader uses linear/repeat.
	SamplerData *SamplerStagingData
}

// Decode decodes the texture to an RGBA image.
// Uses either the in-memory Data bytes or loads from Path on disk.
// Supports PNG, JPEG, BMP, TIFF and WebP.
//
// Returns:
//   - *image.RGBA: the decoded image in RGBA layout
//   - error: error if decoding fails
func (t *ImportedTexture) Decode() (*image.RGBA, error) {
	if t == nil {
		return nil, fmt.Errorf("texture is nil")
	}

	var img image.Image
	var err error

	if len(t.Data) > 0 {
		img, _, err = image.Decode(bytes.NewReader(t.Data))
		if err != nil {
			return nil, fmt.Errorf("failed to decode embedded image %q: %w", t.Name, err)
		}
	} else if t.Path != "" {
		file, fileErr := os.Open(t.Path)
		if fileErr != nil {
			return nil, fmt.Errorf("failed to open texture file %s: %w", t.Path, fileErr)
		}
		defer file.Close()

		img, _, err = image.Decode(file)
		if err != nil {
			return nil, fmt.Errorf("failed to decode texture file %s: %w", t.Path, err)
		}
	} else {
		return nil, fmt.Errorf("texture %q has neither data nor path", t.Name)
	}

	bounds := img.Bounds()
	rgba := image.NewRGBA(image.Rect(0, 0, bounds.Dx(), bounds.Dy()))
	draw.Draw(rgba, rgba.Bounds(), img, bounds.Min, draw.Src)

	t.Width = bounds.Dx()
	t.Height = bounds.Dy()

	return rgba, nil
}

// StageTextures decodes every frame of an animated texture and packs them into
// a single array-layer staging buffer. All frames must share the same dimensions.
//
// Parameters:
//   - frames: the textures to pack, one array layer each, in animation order
//
// Returns:
//   - TextureStagingData: the packed pixel data
//   - error: error if any frame fails to decode or the sizes differ
func StageTextures(frames ...*ImportedTexture) (TextureStagingData, error) {
	if len(frames) == 0 {
		return TextureStagingData{}, fmt.Errorf("no texture frames to stage")
	}
	var out TextureStagingData
	for i, f := range frames {
		img, err := f.Decode()
		if err != nil {
			return TextureStagingData{}, fmt.Errorf("frame %d: %w", i, err)
		}
		w, h := uint32(img.Rect.Dx()), uint32(img.Rect.Dy())
		if i == 0 {
			out.Width, out.Height = w, h
			out.Pixels = make([]byte, 0, int(w*h*4)*len(frames))
		} else if w != out.Width || h != out.Height {
			return TextureStagingData{}, fmt.Errorf("frame %d is %dx%d, expected %dx%d", i, w, h, out.Width, out.Height)
		}
		out.Pixels = append(out.Pixels, img.Pix...)
	}
	out.Layers = uint32(len(frames))
	return out, nil
}
