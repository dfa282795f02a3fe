package present

import (
	_ "embed"
	"fmt"
	"image"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/cogentcore/webgpu/wgpuglfw"
	"github.com/go-gl/glfw/v3.3/glfw"
)

//go:embed blit.wgsl
var blitWGSL string

// blitter uploads a CPU framebuffer into a texture and draws it over the
// whole surface.
type blitter struct {
	instance *wgpu.Instance
	surface  *wgpu.Surface
	adapter  *wgpu.Adapter
	device   *wgpu.Device
	queue    *wgpu.Queue
	config   *wgpu.SurfaceConfiguration

	pipeline *wgpu.RenderPipeline
	sampler  *wgpu.Sampler

	frameTex  *wgpu.Texture
	frameView *wgpu.TextureView
	bindGroup *wgpu.BindGroup
	texW      int
	texH      int
}

func newBlitter(win *glfw.Window) (*blitter, error) {
	b := &blitter{instance: wgpu.CreateInstance(nil)}
	b.surface = b.instance.CreateSurface(wgpuglfw.GetSurfaceDescriptor(win))

	var err error
	b.adapter, err = b.instance.RequestAdapter(&wgpu.RequestAdapterOptions{
		CompatibleSurface: b.surface,
		PowerPreference:   wgpu.PowerPreferenceHighPerformance,
	})
	if err != nil {
		return nil, fmt.Errorf("request adapter: %w", err)
	}
	b.device, err = b.adapter.RequestDevice(&wgpu.DeviceDescriptor{Label: "scenekit device"})
	if err != nil {
		return nil, fmt.Errorf("request device: %w", err)
	}
	b.queue = b.device.GetQueue()

	width, height := win.GetFramebufferSize()
	caps := b.surface.GetCapabilities(b.adapter)
	format := caps.Formats[0]
	// the software renderer writes display-ready values, so avoid sRGB re-encoding
	for _, f := range caps.Formats {
		if f == wgpu.TextureFormatBGRA8Unorm || f == wgpu.TextureFormatRGBA8Unorm {
			format = f
			break
		}
	}
	b.config = &wgpu.SurfaceConfiguration{
		Usage:       wgpu.TextureUsageRenderAttachment,
		Format:      format,
		Width:       uint32(max(width, 1)),
		Height:      uint32(max(height, 1)),
		PresentMode: wgpu.PresentModeFifo,
		AlphaMode:   caps.AlphaModes[0],
	}
	b.surface.Configure(b.adapter, b.device, b.config)

	module, err := b.device.CreateShaderModule(&wgpu.ShaderModuleDescriptor{
		Label:          "blit",
		WGSLDescriptor: &wgpu.ShaderModuleWGSLDescriptor{Code: blitWGSL},
	})
	if err != nil {
		return nil, fmt.Errorf("blit shader: %w", err)
	}
	defer module.Release()

	b.pipeline, err = b.device.CreateRenderPipeline(&wgpu.RenderPipelineDescriptor{
		Label: "blit pipeline",
		Vertex: wgpu.VertexState{
			Module:     module,
			EntryPoint: "vs_main",
		},
		Fragment: &wgpu.FragmentState{
			Module:     module,
			EntryPoint: "fs_main",
			Targets: []wgpu.ColorTargetState{{
				Format:    format,
				WriteMask: wgpu.ColorWriteMaskAll,
			}},
		},
		Primitive: wgpu.PrimitiveState{
			Topology: wgpu.PrimitiveTopologyTriangleList,
		},
		Multisample: wgpu.MultisampleState{
			Count: 1,
			Mask:  0xFFFFFFFF,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("blit pipeline: %w", err)
	}

	b.sampler, err = b.device.CreateSampler(&wgpu.SamplerDescriptor{
		AddressModeU:  wgpu.AddressModeClampToEdge,
		AddressModeV:  wgpu.AddressModeClampToEdge,
		AddressModeW:  wgpu.AddressModeClampToEdge,
		MinFilter:     wgpu.FilterModeLinear,
		MagFilter:     wgpu.FilterModeLinear,
		MaxAnisotropy: 1,
	})
	if err != nil {
		return nil, fmt.Errorf("sampler: %w", err)
	}
	return b, nil
}

// resize reconfigures the surface when the framebuffer size changed.
func (b *blitter) resize(width, height int) {
	if width <= 0 || height <= 0 {
		return
	}
	if b.config.Width == uint32(width) && b.config.Height == uint32(height) {
		return
	}
	b.config.Width, b.config.Height = uint32(width), uint32(height)
	b.surface.Configure(b.adapter, b.device, b.config)
}

func (b *blitter) ensureTexture(w, h int) error {
	if b.frameTex != nil && b.texW == w && b.texH == h {
		return nil
	}
	b.releaseTexture()

	var err error
	b.frameTex, err = b.device.CreateTexture(&wgpu.TextureDescriptor{
		Label:         "frame",
		Size:          wgpu.Extent3D{Width: uint32(w), Height: uint32(h), DepthOrArrayLayers: 1},
		MipLevelCount: 1,
		SampleCount:   1,
		Dimension:     wgpu.TextureDimension2D,
		Format:        wgpu.TextureFormatRGBA8Unorm,
		Usage:         wgpu.TextureUsageTextureBinding | wgpu.TextureUsageCopyDst,
	})
	if err != nil {
		return fmt.Errorf("frame texture: %w", err)
	}
	b.frameView, err = b.frameTex.CreateView(nil)
	if err != nil {
		return fmt.Errorf("frame view: %w", err)
	}
	b.bindGroup, err = b.device.CreateBindGroup(&wgpu.BindGroupDescriptor{
		Layout: b.pipeline.GetBindGroupLayout(0),
		Entries: []wgpu.BindGroupEntry{
			{Binding: 0, TextureView: b.frameView},
			{Binding: 1, Sampler: b.sampler},
		},
	})
	if err != nil {
		return fmt.Errorf("frame bind group: %w", err)
	}
	b.texW, b.texH = w, h
	return nil
}

func (b *blitter) draw(img *image.RGBA) error {
	w, h := img.Bounds().Dx(), img.Bounds().Dy()
	if w == 0 || h == 0 {
		return nil
	}
	if err := b.ensureTexture(w, h); err != nil {
		return err
	}
	b.queue.WriteTexture(b.frameTex.AsImageCopy(), img.Pix, &wgpu.TextureDataLayout{
		Offset:       0,
		BytesPerRow:  uint32(img.Stride),
		RowsPerImage: uint32(h),
	}, &wgpu.Extent3D{Width: uint32(w), Height: uint32(h), DepthOrArrayLayers: 1})

	next, err := b.surface.GetCurrentTexture()
	if err != nil {
		return fmt.Errorf("surface texture: %w", err)
	}
	defer next.Release()
	view, err := next.CreateView(nil)
	if err != nil {
		return fmt.Errorf("surface view: %w", err)
	}
	defer view.Release()

	encoder, err := b.device.CreateCommandEncoder(nil)
	if err != nil {
		return fmt.Errorf("command encoder: %w", err)
	}
	pass := encoder.BeginRenderPass(&wgpu.RenderPassDescriptor{
		ColorAttachments: []wgpu.RenderPassColorAttachment{{
			View:       view,
			LoadOp:     wgpu.LoadOpClear,
			StoreOp:    wgpu.StoreOpStore,
			ClearValue: wgpu.Color{R: 0, G: 0, B: 0, A: 1},
		}},
	})
	pass.SetPipeline(b.pipeline)
	pass.SetBindGroup(0, b.bindGroup, nil)
	pass.Draw(3, 1, 0, 0)
	if err := pass.End(); err != nil {
		return fmt.Errorf("blit pass: %w", err)
	}
	cmd, err := encoder.Finish(nil)
	if err != nil {
		return fmt.Errorf("finish: %w", err)
	}
	b.queue.Submit(cmd)
	b.surface.Present()
	return nil
}

func (b *blitter) releaseTexture() {
	if b.bindGroup != nil {
		b.bindGroup.Release()
		b.bindGroup = nil
	}
	if b.frameView != nil {
		b.frameView.Release()
		b.frameView = nil
	}
	if b.frameTex != nil {
		b.frameTex.Release()
		b.frameTex = nil
	}
}

func (b *blitter) release() {
	b.releaseTexture()
	if b.sampler != nil {
		b.sampler.Release()
	}
	if b.pipeline != nil {
		b.pipeline.Release()
	}
	if b.device != nil {
		b.device.Release()
	}
	if b.adapter != nil {
		b.adapter.Release()
	}
	if b.surface != nil {
		b.surface.Release()
	}
	if b.instance != nil {
		b.instance.Release()
	}
}
