package scenekit

import "errors"

var (
	ErrLoopStopped       = errors.New("render loop stopped")
	ErrAssetNotFound     = errors.New("asset not found")
	ErrUnsupportedFormat = errors.New("unsupported asset format")
	ErrNotLoaded         = errors.New("asset not loaded yet")
	ErrNoCamera          = errors.New("no camera to render from")
	ErrLoadPanicked      = errors.New("loader panicked")
)
