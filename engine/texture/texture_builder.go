package texture

import (
	"fmt"
	"image"
	"image/draw"

	"github.com/Carmen-Shannon/oxy-q3/common"
)

// TextureBuilderOption is a function that configures a texture instance during construction.
// Options that convert pixel data report failures through the returned error.
type TextureBuilderOption func(*texture) error

// WithName is an option builder that sets the name of the texture.
//
// Parameters:
//   - name: the identifier for the texture
//
// Returns:
//   - TextureBuilderOption: a function that applies the name option to a texture
func WithName(name string) TextureBuilderOption {
	return func(t *texture) error {
		t.name = name
		return nil
	}
}

// WithStagingData is an option builder that takes pixels already packed as RGBA8 layers.
//
// Parameters:
//   - data: the packed layers
//
// Returns:
//   - TextureBuilderOption: a function that applies the pixels to a texture
func WithStagingData(data common.TextureStagingData) TextureBuilderOption {
	return func(t *texture) error {
		t.width = int(data.Width)
		t.height = int(data.Height)
		t.layers = int(data.LayerCount())
		t.pixels = data.Pixels
		return nil
	}
}

// WithImages is an option builder that converts images into texture layers, one per image.
//
// Parameters:
//   - images: the layers in order, all the same size
//
// Returns:
//   - TextureBuilderOption: a function that applies the layers to a texture
func WithImages(images ...image.Image) TextureBuilderOption {
	return func(t *texture) error {
		if len(images) == 0 {
			return ErrEmptyTexture
		}
		b := images[0].Bounds()
		w, h := b.Dx(), b.Dy()
		pixels := make([]byte, 0, w*h*4*len(images))
		for i, img := range images {
			ib := img.Bounds()
			if ib.Dx() != w || ib.Dy() != h {
				return fmt.Errorf("layer %d is %dx%d, expected %dx%d", i, ib.Dx(), ib.Dy(), w, h)
			}
			rgba := image.NewRGBA(image.Rect(0, 0, w, h))
			draw.Draw(rgba, rgba.Bounds(), img, ib.Min, draw.Src)
			pixels = append(pixels, rgba.Pix...)
		}
		t.width, t.height, t.layers = w, h, len(images)
		t.pixels = pixels
		return nil
	}
}

// WithSampler is an option builder that sets the sampler of the texture.
//
// Parameters:
//   - s: the sampler
//
// Returns:
//   - TextureBuilderOption: a function that applies the sampler to a texture
func WithSampler(s Sampler) TextureBuilderOption {
	return func(t *texture) error {
		t.sampler = s
		return nil
	}
}
