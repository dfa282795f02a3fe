package scenekit

import (
	"context"
	"fmt"
	"os"

	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/sfnt"
)

// ParseFont reads TrueType or OpenType data.
func ParseFont(data []byte) (*sfnt.Font, error) {
	f, err := sfnt.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("parse font: %w", err)
	}
	return f, nil
}

// BuiltinFont is Go Regular.
func BuiltinFont() *sfnt.Font {
	f, err := sfnt.Parse(goregular.TTF)
	if err != nil {
		panic(err)
	}
	return f
}

// LoadFont loads name in the background; an empty name loads the built-in font.
func (server *AssetServer) LoadFont(q *LoadQueue, name string, h LoadHandlers[*sfnt.Font]) *Future[*sfnt.Font] {
	label := name
	if label == "" {
		label = "builtin font"
	}
	onLoad := h.OnLoad
	h.OnLoad = func(cmd *Commands, f *sfnt.Font) {
		server.AddFont(f)
		if onLoad != nil {
			onLoad(cmd, f)
		}
	}
	return LoadAsync(q, label, func(ctx context.Context) (*sfnt.Font, error) {
		if name == "" {
			return ParseFont(goregular.TTF)
		}
		path := server.Path(name)
		if _, err := os.Stat(path); err != nil {
			return nil, fmt.Errorf("%s: %w", path, ErrAssetNotFound)
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}
		return ParseFont(data)
	}, h)
}
