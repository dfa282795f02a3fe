package scenekit

import (
	"fmt"
	"path/filepath"
	"sync"

	"github.com/gekko3d/scenekit/geometry"
	"github.com/gekko3d/scenekit/raster"
	"github.com/google/uuid"
	"golang.org/x/image/font/sfnt"
)

type AssetId string

// AssetServer owns every shared asset. Entities refer to assets by id.
// Loader goroutines may register assets while frames read them.
type AssetServer struct {
	mu sync.RWMutex

	// Root is prepended to relative asset paths.
	Root string

	geometries map[AssetId]*geometry.BufferGeometry
	materials  map[AssetId]Material
	textures   map[AssetId]*raster.Texture
	fonts      map[AssetId]*sfnt.Font
	models     map[AssetId]*Model
	loading    set[AssetId]
}

type AssetServerModule struct {
	Root string
}

func NewAssetServer(root string) *AssetServer {
	return &AssetServer{
		Root:       root,
		geometries: make(map[AssetId]*geometry.BufferGeometry),
		materials:  make(map[AssetId]Material),
		textures:   make(map[AssetId]*raster.Texture),
		fonts:      make(map[AssetId]*sfnt.Font),
		models:     make(map[AssetId]*Model),
		loading:    make(set[AssetId]),
	}
}

func (mod AssetServerModule) Install(app *App, cmd *Commands) {
	cmd.AddResources(NewAssetServer(mod.Root))
}

func makeAssetId() AssetId {
	return AssetId(uuid.NewString())
}

// ReserveId returns a fresh id for an asset that will be registered later.
func (server *AssetServer) ReserveId() AssetId {
	return makeAssetId()
}

// Path resolves name against Root unless it is absolute.
func (server *AssetServer) Path(name string) string {
	if filepath.IsAbs(name) || server.Root == "" {
		return name
	}
	return filepath.Join(server.Root, name)
}

func (server *AssetServer) AddGeometry(g *geometry.BufferGeometry) AssetId {
	id := makeAssetId()
	server.SetGeometry(id, g)
	return id
}

func (server *AssetServer) SetGeometry(id AssetId, g *geometry.BufferGeometry) {
	server.mu.Lock()
	defer server.mu.Unlock()
	server.geometries[id] = g
}

func (server *AssetServer) Geometry(id AssetId) (*geometry.BufferGeometry, bool) {
	server.mu.RLock()
	defer server.mu.RUnlock()
	g, ok := server.geometries[id]
	return g, ok
}

func (server *AssetServer) AddMaterial(m Material) AssetId {
	id := makeAssetId()
	server.mu.Lock()
	defer server.mu.Unlock()
	server.materials[id] = m
	return id
}

func (server *AssetServer) Material(id AssetId) (Material, bool) {
	server.mu.RLock()
	defer server.mu.RUnlock()
	m, ok := server.materials[id]
	return m, ok
}

func (server *AssetServer) AddTexture(t *raster.Texture) AssetId {
	id := makeAssetId()
	server.SetTexture(id, t)
	return id
}

func (server *AssetServer) SetTexture(id AssetId, t *raster.Texture) {
	server.mu.Lock()
	defer server.mu.Unlock()
	server.textures[id] = t
}

// Texture returns nil for empty or unknown ids, which samples as white.
func (server *AssetServer) Texture(id AssetId) *raster.Texture {
	if id == "" {
		return nil
	}
	server.mu.RLock()
	defer server.mu.RUnlock()
	return server.textures[id]
}

func (server *AssetServer) AddFont(f *sfnt.Font) AssetId {
	id := makeAssetId()
	server.mu.Lock()
	defer server.mu.Unlock()
	server.fonts[id] = f
	return id
}

func (server *AssetServer) Font(id AssetId) (*sfnt.Font, bool) {
	server.mu.RLock()
	defer server.mu.RUnlock()
	f, ok := server.fonts[id]
	return f, ok
}

func (server *AssetServer) AddModel(m *Model) AssetId {
	id := makeAssetId()
	server.setModel(id, m)
	return id
}

func (server *AssetServer) setModel(id AssetId, m *Model) {
	server.mu.Lock()
	defer server.mu.Unlock()
	delete(server.loading, id)
	if m != nil {
		server.models[id] = m
	}
}

func (server *AssetServer) markLoading(id AssetId) {
	server.mu.Lock()
	defer server.mu.Unlock()
	server.loading[id] = struct{}{}
}

// Model returns ErrNotLoaded while the model's load is still running and
// ErrAssetNotFound for unknown ids or failed loads.
func (server *AssetServer) Model(id AssetId) (*Model, error) {
	server.mu.RLock()
	defer server.mu.RUnlock()
	if _, ok := server.loading[id]; ok {
		return nil, fmt.Errorf("model %s: %w", id, ErrNotLoaded)
	}
	m, ok := server.models[id]
	if !ok {
		return nil, fmt.Errorf("model %s: %w", id, ErrAssetNotFound)
	}
	return m, nil
}
