package scenekit

import (
	"context"
	"errors"
	"fmt"
	"image"
	"image/color"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"io/fs"
	"math"
	"os"

	"github.com/gekko3d/scenekit/raster"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/webp"
)

// DecodeTexture decodes PNG, JPEG, GIF, BMP or WebP data.
func DecodeTexture(r io.Reader) (*raster.Texture, error) {
	img, _, err := image.Decode(r)
	if err != nil {
		if errors.Is(err, image.ErrFormat) {
			return nil, fmt.Errorf("decode texture: %w", ErrUnsupportedFormat)
		}
		return nil, fmt.Errorf("decode texture: %w", err)
	}
	return raster.NewTexture(img), nil
}

func openAsset(path string) (*os.File, error) {
	f, err := os.Open(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%s: %w", path, ErrAssetNotFound)
	}
	return f, err
}

// ReadTexture loads a texture file synchronously.
func ReadTexture(path string) (*raster.Texture, error) {
	f, err := openAsset(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return DecodeTexture(f)
}

// LoadTexture reserves an id and fills it when the file has been decoded.
// Until then the id samples as white. fallback, when set, is registered if the
// load fails.
func (server *AssetServer) LoadTexture(q *LoadQueue, name string, fallback image.Image) (AssetId, *Future[*raster.Texture]) {
	id := server.ReserveId()
	path := server.Path(name)
	f := LoadAsync(q, path, func(ctx context.Context) (*raster.Texture, error) {
		return ReadTexture(path)
	}, LoadHandlers[*raster.Texture]{
		OnLoad: func(_ *Commands, t *raster.Texture) {
			server.SetTexture(id, t)
		},
		OnError: func(cmd *Commands, _ error) {
			if fallback != nil {
				cmd.App().Logger().Warnf("using built-in texture for %s", name)
				server.SetTexture(id, raster.NewTexture(fallback))
			}
		},
	})
	return id, f
}

// MatcapImage renders a soft lit sphere used when no matcap file is available.
func MatcapImage(size int, base Color) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, size, size))
	light := [3]float64{-0.4, 0.5, 0.77}
	for y := 0; y < size; y++ {
		for x := 0; x < size; x++ {
			nx := (float64(x)+0.5)/float64(size)*2 - 1
			ny := 1 - (float64(y)+0.5)/float64(size)*2
			d := nx*nx + ny*ny
			if d > 1 {
				img.SetNRGBA(x, y, color.NRGBA{A: 255})
				continue
			}
			nz := math.Sqrt(1 - d)
			diffuse := math.Max(0, nx*light[0]+ny*light[1]+nz*light[2])
			spec := math.Pow(math.Max(0, nz*0.9+ny*0.3), 40)
			shade := 0.15 + 0.75*diffuse
			img.SetNRGBA(x, y, color.NRGBA{
				R: clampByte(float64(base[0])*shade + spec),
				G: clampByte(float64(base[1])*shade + spec),
				B: clampByte(float64(base[2])*shade + spec),
				A: 255,
			})
		}
	}
	return img
}

// SpriteImage is a radial falloff mask in the green channel, suitable as a points alpha map.
func SpriteImage(size int) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, size, size))
	for y := 0; y < size; y++ {
		for x := 0; x < size; x++ {
			dx := (float64(x)+0.5)/float64(size)*2 - 1
			dy := (float64(y)+0.5)/float64(size)*2 - 1
			r := math.Sqrt(dx*dx + dy*dy)
			v := clampByte(1 - r*r)
			img.SetNRGBA(x, y, color.NRGBA{R: v, G: v, B: v, A: 255})
		}
	}
	return img
}

func clampByte(v float64) uint8 {
	return uint8(math.Round(math.Min(math.Max(v, 0), 1) * 255))
}
