package render

import (
	"fmt"
	"log"
	"runtime"
	"sync"

	"github.com/cogentcore/webgpu/wgpu"

	"github.com/strata-engine/strata/common"
	"github.com/strata-engine/strata/engine/shader"
)

// WGPUGeometry is the geometry surface the wgpu backend draws from.
// Geometry handed to DrawPrimitive must implement it.
type WGPUGeometry interface {
	Geometry

	// VertexBuffer returns the interleaved vertex buffer.
	//
	// Returns:
	//   - *wgpu.Buffer: the vertex buffer
	VertexBuffer() *wgpu.Buffer

	// IndexBuffer returns the uint32 index buffer shared by all sub-meshes.
	//
	// Returns:
	//   - *wgpu.Buffer: the index buffer
	IndexBuffer() *wgpu.Buffer

	// SubMeshRange returns the index range of one sub-mesh.
	//
	// Parameters:
	//   - subMesh: the sub-mesh index
	//
	// Returns:
	//   - firstIndex: offset into the index buffer, in indices
	//   - indexCount: the number of indices
	SubMeshRange(subMesh int) (firstIndex, indexCount uint32)
}

// WGPUProgram is the compiled program surface the wgpu backend binds.
// Programs handed to DrawPrimitive must implement it.
type WGPUProgram interface {
	shader.Program

	// RenderPipeline returns the compiled pipeline for this variant.
	//
	// Returns:
	//   - *wgpu.RenderPipeline: the pipeline
	RenderPipeline() *wgpu.RenderPipeline

	// BindGroups returns the bind groups in binding order, uniforms
	// already uploaded.
	//
	// Returns:
	//   - []*wgpu.BindGroup: the bind groups
	BindGroups() []*wgpu.BindGroup
}

// MipmapGenerator regenerates the mip chain of a finished render target.
// Installed on the backend by the asset layer, which owns blit pipelines.
type MipmapGenerator func(encoder *wgpu.CommandEncoder, target *common.RenderTarget)

// wgpuBackendImpl is the wgpu implementation of the Backend interface.
type wgpuBackendImpl struct {
	mu *sync.Mutex

	instance *wgpu.Instance
	adapter  *wgpu.Adapter
	surface  *wgpu.Surface
	device   *wgpu.Device
	queue    *wgpu.Queue

	surfaceFormat *wgpu.TextureFormat
	presentMode   wgpu.PresentMode
	sampleCount   int

	width  int
	height int

	// Canvas attachments, rebuilt on Resize.
	msaaTexture      *wgpu.Texture
	msaaTextureView  *wgpu.TextureView
	depthTexture     *wgpu.Texture
	depthTextureView *wgpu.TextureView

	// Frame state between BeginFrame and EndFrame.
	frameEncoder *wgpu.CommandEncoder
	frameSurface *wgpu.Texture
	frameView    *wgpu.TextureView

	// Current attachment state. The render pass itself begins lazily at
	// the first draw so clear flags can be expressed as load ops.
	pass          *wgpu.RenderPassEncoder
	activeTarget  *common.RenderTarget
	activeView    common.Viewport
	activeMip     int
	pendingClear  common.ClearFlag
	pendingColor  common.Color
	mipGenerator  MipmapGenerator
	mipWarnedOnce bool
}

var _ Backend = &wgpuBackendImpl{}
var _ DepthTargetCreator = &wgpuBackendImpl{}

// WGPUBackendBuilderOption is a function that configures the wgpu backend
// during construction.
type WGPUBackendBuilderOption func(*wgpuBackendImpl)

// WithVSync is an option builder that selects FIFO presentation instead of
// the default immediate (uncapped) mode.
//
// Parameters:
//   - vsync: true for FIFO presentation
//
// Returns:
//   - WGPUBackendBuilderOption: a function that applies the present option
func WithVSync(vsync bool) WGPUBackendBuilderOption {
	return func(b *wgpuBackendImpl) {
		if vsync {
			b.presentMode = wgpu.PresentModeFifo
		} else {
			b.presentMode = wgpu.PresentModeImmediate
		}
	}
}

// WithSampleCount is an option builder that enables canvas MSAA with the
// given sample count.
//
// Parameters:
//   - count: the sample count (1 disables MSAA)
//
// Returns:
//   - WGPUBackendBuilderOption: a function that applies the MSAA option
func WithSampleCount(count int) WGPUBackendBuilderOption {
	return func(b *wgpuBackendImpl) {
		if count < 1 {
			count = 1
		}
		b.sampleCount = count
	}
}

// WithMipmapGenerator is an option builder that installs the blit hook
// GenerateMipmaps delegates to. Without one, mipmap requests log a warning
// once and are skipped.
//
// Parameters:
//   - fn: the generator hook
//
// Returns:
//   - WGPUBackendBuilderOption: a function that applies the generator option
func WithMipmapGenerator(fn MipmapGenerator) WGPUBackendBuilderOption {
	return func(b *wgpuBackendImpl) {
		b.mipGenerator = fn
	}
}

// NewWGPUBackend creates a wgpu backend drawing to the surface described
// by the descriptor and configures it for the given canvas size.
//
// Parameters:
//   - surfaceDescriptor: the window surface descriptor (must not be nil)
//   - width: the initial canvas width in pixels
//   - height: the initial canvas height in pixels
//   - opts: variadic list of WGPUBackendBuilderOption functions
//
// Returns:
//   - Backend: the new backend
func NewWGPUBackend(surfaceDescriptor *wgpu.SurfaceDescriptor, width, height int, opts ...WGPUBackendBuilderOption) Backend {
	if surfaceDescriptor == nil {
		panic("render: NewWGPUBackend requires a non-nil surface descriptor")
	}
	runtime.LockOSThread()

	b := &wgpuBackendImpl{
		mu:          &sync.Mutex{},
		instance:    wgpu.CreateInstance(nil),
		presentMode: wgpu.PresentModeImmediate,
		sampleCount: 1,
	}
	for _, opt := range opts {
		opt(b)
	}

	b.surface = b.instance.CreateSurface(surfaceDescriptor)

	adapter, err := b.instance.RequestAdapter(&wgpu.RequestAdapterOptions{
		CompatibleSurface: b.surface,
	})
	if err != nil {
		panic(err)
	}
	b.adapter = adapter

	limits := wgpu.DefaultLimits()
	limits.MaxBindGroups = 8

	device, err := adapter.RequestDevice(&wgpu.DeviceDescriptor{
		Label: "Main Device",
		RequiredLimits: &wgpu.RequiredLimits{
			Limits: limits,
		},
	})
	if err != nil {
		panic(err)
	}
	b.device = device
	b.queue = device.GetQueue()

	b.Resize(width, height)
	return b
}

// Device returns the wgpu device for asset-layer resource creation.
//
// Returns:
//   - *wgpu.Device: the device
func (b *wgpuBackendImpl) Device() *wgpu.Device {
	return b.device
}

// Queue returns the wgpu queue for asset-layer uploads.
//
// Returns:
//   - *wgpu.Queue: the queue
func (b *wgpuBackendImpl) Queue() *wgpu.Queue {
	return b.queue
}

// SurfaceFormat returns the configured swapchain format, for pipeline
// creation by the asset layer.
//
// Returns:
//   - wgpu.TextureFormat: the surface format
func (b *wgpuBackendImpl) SurfaceFormat() wgpu.TextureFormat {
	if b.surfaceFormat == nil {
		return wgpu.TextureFormatUndefined
	}
	return *b.surfaceFormat
}

func (b *wgpuBackendImpl) Resize(width, height int) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if width <= 0 || height <= 0 {
		return
	}
	b.width = width
	b.height = height

	capabilities := b.surface.GetCapabilities(b.adapter)
	b.surfaceFormat = &capabilities.Formats[0]

	b.surface.Configure(b.adapter, b.device, &wgpu.SurfaceConfiguration{
		Usage:       wgpu.TextureUsageRenderAttachment,
		Format:      *b.surfaceFormat,
		Width:       uint32(width),
		Height:      uint32(height),
		PresentMode: b.presentMode,
		AlphaMode:   capabilities.AlphaModes[0],
	})

	b.releaseCanvasAttachments()

	if b.sampleCount > 1 {
		msaa, err := b.device.CreateTexture(&wgpu.TextureDescriptor{
			Label: "Canvas MSAA Texture",
			Size: wgpu.Extent3D{
				Width:              uint32(width),
				Height:             uint32(height),
				DepthOrArrayLayers: 1,
			},
			MipLevelCount: 1,
			SampleCount:   uint32(b.sampleCount),
			Dimension:     wgpu.TextureDimension2D,
			Format:        *b.surfaceFormat,
			Usage:         wgpu.TextureUsageRenderAttachment,
		})
		if err != nil {
			panic(err)
		}
		view, err := msaa.CreateView(nil)
		if err != nil {
			panic(err)
		}
		b.msaaTexture = msaa
		b.msaaTextureView = view
	}

	// Depth sample count must match the color attachment.
	depth, err := b.device.CreateTexture(&wgpu.TextureDescriptor{
		Label: "Canvas Depth Texture",
		Size: wgpu.Extent3D{
			Width:              uint32(width),
			Height:             uint32(height),
			DepthOrArrayLayers: 1,
		},
		MipLevelCount: 1,
		SampleCount:   uint32(b.sampleCount),
		Dimension:     wgpu.TextureDimension2D,
		Format:        wgpu.TextureFormatDepth24Plus,
		Usage:         wgpu.TextureUsageRenderAttachment,
	})
	if err != nil {
		panic(err)
	}
	depthView, err := depth.CreateView(nil)
	if err != nil {
		panic(err)
	}
	b.depthTexture = depth
	b.depthTextureView = depthView
}

func (b *wgpuBackendImpl) releaseCanvasAttachments() {
	if b.msaaTextureView != nil {
		b.msaaTextureView.Release()
		b.msaaTextureView = nil
	}
	if b.msaaTexture != nil {
		b.msaaTexture.Release()
		b.msaaTexture = nil
	}
	if b.depthTextureView != nil {
		b.depthTextureView.Release()
		b.depthTextureView = nil
	}
	if b.depthTexture != nil {
		b.depthTexture.Release()
		b.depthTexture = nil
	}
}

func (b *wgpuBackendImpl) BeginFrame() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	// Avoid acquiring a second swapchain image if the previous frame was
	// never presented; wgpu-native treats that as a validation error.
	if b.frameSurface != nil {
		return fmt.Errorf("previous frame surface not yet presented")
	}

	surfaceTexture, err := b.surface.GetCurrentTexture()
	if err != nil {
		return err
	}
	view, err := surfaceTexture.CreateView(nil)
	if err != nil {
		surfaceTexture.Release()
		return err
	}
	encoder, err := b.device.CreateCommandEncoder(nil)
	if err != nil {
		view.Release()
		surfaceTexture.Release()
		return err
	}

	b.frameSurface = surfaceTexture
	b.frameView = view
	b.frameEncoder = encoder
	b.activeTarget = nil
	b.activeView = common.Viewport{Width: float32(b.width), Height: float32(b.height)}
	b.activeMip = 0
	b.pendingClear = common.ClearFlagNone
	return nil
}

func (b *wgpuBackendImpl) ActivateRenderTarget(target *common.RenderTarget, viewport common.Viewport, mipLevel int) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.endPassLocked()
	b.activeTarget = target
	b.activeView = viewport
	b.activeMip = mipLevel
	b.pendingClear = common.ClearFlagNone
}

func (b *wgpuBackendImpl) ClearRenderTarget(flags common.ClearFlag, color common.Color) {
	b.mu.Lock()
	defer b.mu.Unlock()

	// A mid-target clear must split the render pass so the new load ops
	// take effect.
	b.endPassLocked()
	b.pendingClear = flags
	b.pendingColor = color
}

func (b *wgpuBackendImpl) DrawPrimitive(geometry Geometry, subMesh int, program shader.Program) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.frameEncoder == nil {
		log.Printf("[Render] DrawPrimitive outside BeginFrame/EndFrame; ignoring")
		return
	}
	geo, ok := geometry.(WGPUGeometry)
	if !ok {
		log.Printf("[Render] geometry %q is not wgpu-backed; skipping", geometry.Name())
		return
	}
	prog, ok := program.(WGPUProgram)
	if !ok {
		log.Printf("[Render] program %q is not wgpu-backed; skipping", program.Name())
		return
	}

	b.ensurePassLocked()
	if b.pass == nil {
		return
	}

	b.pass.SetPipeline(prog.RenderPipeline())
	for i, bg := range prog.BindGroups() {
		b.pass.SetBindGroup(uint32(i), bg, nil)
	}
	b.pass.SetVertexBuffer(0, geo.VertexBuffer(), 0, wgpu.WholeSize)
	b.pass.SetIndexBuffer(geo.IndexBuffer(), wgpu.IndexFormatUint32, 0, wgpu.WholeSize)
	first, count := geo.SubMeshRange(subMesh)
	b.pass.DrawIndexed(count, 1, first, 0, 0)
}

// ensurePassLocked begins the render pass for the active target if one is
// not already open, translating pending clear flags into load ops.
func (b *wgpuBackendImpl) ensurePassLocked() {
	if b.pass != nil {
		return
	}

	colorLoad := wgpu.LoadOpLoad
	if b.pendingClear&common.ClearFlagColor != 0 {
		colorLoad = wgpu.LoadOpClear
	}
	depthLoad := wgpu.LoadOpLoad
	if b.pendingClear&common.ClearFlagDepth != 0 {
		depthLoad = wgpu.LoadOpClear
	}
	b.pendingClear = common.ClearFlagNone

	clearValue := wgpu.Color{
		R: float64(b.pendingColor.R),
		G: float64(b.pendingColor.G),
		B: float64(b.pendingColor.B),
		A: float64(b.pendingColor.A),
	}

	descriptor := &wgpu.RenderPassDescriptor{}
	if b.activeTarget == nil {
		// Canvas. With MSAA the pass draws into the MSAA texture and
		// resolves into the swapchain view.
		attachment := wgpu.RenderPassColorAttachment{
			View:       b.frameView,
			LoadOp:     colorLoad,
			StoreOp:    wgpu.StoreOpStore,
			ClearValue: clearValue,
		}
		if b.sampleCount > 1 {
			attachment.View = b.msaaTextureView
			attachment.ResolveTarget = b.frameView
			attachment.StoreOp = wgpu.StoreOpDiscard
		}
		descriptor.ColorAttachments = []wgpu.RenderPassColorAttachment{attachment}
		descriptor.DepthStencilAttachment = &wgpu.RenderPassDepthStencilAttachment{
			View:            b.depthTextureView,
			DepthLoadOp:     depthLoad,
			DepthStoreOp:    wgpu.StoreOpDiscard,
			DepthClearValue: 1.0,
		}
	} else {
		t := b.activeTarget
		if t.View != nil {
			attachment := wgpu.RenderPassColorAttachment{
				View:       t.View,
				LoadOp:     colorLoad,
				StoreOp:    wgpu.StoreOpStore,
				ClearValue: clearValue,
			}
			if t.MultiSampled() && t.ResolveView != nil {
				attachment.ResolveTarget = t.ResolveView
				attachment.StoreOp = wgpu.StoreOpDiscard
			}
			descriptor.ColorAttachments = []wgpu.RenderPassColorAttachment{attachment}
		}
		if t.DepthView != nil {
			// Offscreen depth is stored: depth-only targets are the
			// shadow map.
			descriptor.DepthStencilAttachment = &wgpu.RenderPassDepthStencilAttachment{
				View:            t.DepthView,
				DepthLoadOp:     depthLoad,
				DepthStoreOp:    wgpu.StoreOpStore,
				DepthClearValue: 1.0,
			}
		}
	}

	b.pass = b.frameEncoder.BeginRenderPass(descriptor)
	v := b.activeView
	if v.Width > 0 && v.Height > 0 {
		b.pass.SetViewport(v.X, v.Y, v.Width, v.Height, 0, 1)
	}
}

func (b *wgpuBackendImpl) endPassLocked() {
	if b.pass == nil {
		return
	}
	b.pass.End()
	b.pass = nil
}

func (b *wgpuBackendImpl) ResolveRenderTarget(target *common.RenderTarget) {
	b.mu.Lock()
	defer b.mu.Unlock()

	// Resolution happens via the pass's ResolveTarget attachment; here we
	// only have to make sure the pass has been closed out.
	if target == b.activeTarget {
		b.endPassLocked()
	}
}

func (b *wgpuBackendImpl) GenerateMipmaps(target *common.RenderTarget) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if target == nil || !target.GenerateMipmaps {
		return
	}
	if b.mipGenerator == nil {
		if !b.mipWarnedOnce {
			b.mipWarnedOnce = true
			log.Printf("[Render] no mipmap generator installed; mipmap requests skipped")
		}
		return
	}
	b.endPassLocked()
	b.mipGenerator(b.frameEncoder, target)
}

func (b *wgpuBackendImpl) EndFrame() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.frameEncoder == nil {
		return
	}
	b.endPassLocked()

	commandBuffer, err := b.frameEncoder.Finish(nil)
	if err != nil {
		log.Printf("[Render] finishing frame encoder: %v", err)
	} else {
		b.queue.Submit(commandBuffer)
		commandBuffer.Release()
	}
	b.frameEncoder.Release()
	b.frameEncoder = nil

	b.surface.Present()

	if b.frameView != nil {
		b.frameView.Release()
		b.frameView = nil
	}
	if b.frameSurface != nil {
		b.frameSurface.Release()
		b.frameSurface = nil
	}
}

// CreateDepthRenderTarget creates a sampleable depth-only render target,
// suitable as the shadow map. Usable as a ShadowTargetFactory via a
// closure over the backend.
//
// Parameters:
//   - width: target width in texels
//   - height: target height in texels
//
// Returns:
//   - *common.RenderTarget: the depth target, or nil on failure
func (b *wgpuBackendImpl) CreateDepthRenderTarget(width, height int) *common.RenderTarget {
	b.mu.Lock()
	defer b.mu.Unlock()

	tex, err := b.device.CreateTexture(&wgpu.TextureDescriptor{
		Label: "Shadow Depth Texture",
		Size: wgpu.Extent3D{
			Width:              uint32(width),
			Height:             uint32(height),
			DepthOrArrayLayers: 1,
		},
		MipLevelCount: 1,
		SampleCount:   1,
		Dimension:     wgpu.TextureDimension2D,
		Format:        wgpu.TextureFormatDepth32Float,
		Usage:         wgpu.TextureUsageRenderAttachment | wgpu.TextureUsageTextureBinding,
	})
	if err != nil {
		log.Printf("[Render] creating shadow depth texture: %v", err)
		return nil
	}
	view, err := tex.CreateView(nil)
	if err != nil {
		tex.Release()
		log.Printf("[Render] creating shadow depth texture view: %v", err)
		return nil
	}
	return &common.RenderTarget{
		Width:        width,
		Height:       height,
		SampleCount:  1,
		DepthTexture: tex,
		DepthView:    view,
	}
}

// CreateComparisonSampler creates a PCF comparison sampler for shadow map
// reads in the lit fragment shader.
//
// Returns:
//   - *wgpu.Sampler: the comparison sampler
//   - error: an error if sampler creation fails
func (b *wgpuBackendImpl) CreateComparisonSampler() (*wgpu.Sampler, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	samp, err := b.device.CreateSampler(&wgpu.SamplerDescriptor{
		Label:         "Shadow Comparison Sampler",
		AddressModeU:  wgpu.AddressModeClampToEdge,
		AddressModeV:  wgpu.AddressModeClampToEdge,
		AddressModeW:  wgpu.AddressModeClampToEdge,
		MagFilter:     wgpu.FilterModeLinear,
		MinFilter:     wgpu.FilterModeLinear,
		MipmapFilter:  wgpu.MipmapFilterModeNearest,
		Compare:       wgpu.CompareFunctionLess,
		MaxAnisotropy: 1,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create comparison sampler: %w", err)
	}
	return samp, nil
}

func (b *wgpuBackendImpl) Destroy() {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.endPassLocked()
	if b.frameEncoder != nil {
		b.frameEncoder.Release()
		b.frameEncoder = nil
	}
	if b.frameView != nil {
		b.frameView.Release()
		b.frameView = nil
	}
	if b.frameSurface != nil {
		b.frameSurface.Release()
		b.frameSurface = nil
	}
	b.releaseCanvasAttachments()
	if b.device != nil {
		b.device.Release()
		b.device = nil
	}
	if b.surface != nil {
		b.surface.Release()
		b.surface = nil
	}
	if b.instance != nil {
		b.instance.Release()
		b.instance = nil
	}
}
