// Copyright (c) 2024, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package gpu

import (
	"image"

	"github.com/cogentcore/webgpu/wgpu"
)

// The interfaces in this file are the subset of the WebGPU API that
// the renderer uses. [NewInstance] returns the implementation backed by
// the native wgpu library, and gputest provides a recording fake.
// Plain descriptor, enum, and limit types are taken from wgpu directly.

// Limits are the resource limits of an adapter or device.
type Limits = wgpu.Limits

// RequestStatus is the outcome reported to a request callback.
type RequestStatus int32

const (
	RequestSuccess RequestStatus = iota
	RequestUnavailable
	RequestError
	RequestUnknown
)

func (rs RequestStatus) String() string {
	switch rs {
	case RequestSuccess:
		return "Success"
	case RequestUnavailable:
		return "Unavailable"
	case RequestError:
		return "Error"
	}
	return "Unknown"
}

// Window is a native window that a [Surface] can present to.
type Window interface {
	// ShouldClose returns true once the user has asked to close the window.
	ShouldClose() bool

	// PollEvents processes pending window system events.
	PollEvents()

	// Size returns the framebuffer size in pixels.
	Size() image.Point

	// SurfaceDescriptor returns the platform handles for creating a surface.
	SurfaceDescriptor() *wgpu.SurfaceDescriptor

	// Destroy closes the window and shuts down the window system.
	Destroy()
}

// Instance is the entry point to the GPU API.
type Instance interface {
	CreateSurface(win Window) (Surface, error)

	// RequestAdapter starts an adapter request. The callback is called
	// once when it completes, possibly before RequestAdapter returns.
	RequestAdapter(opts *AdapterOptions, callback func(status RequestStatus, ad Adapter, msg string))

	// ProcessEvents gives the implementation a chance to fire pending callbacks.
	ProcessEvents()

	Release()
}

// Adapter is a physical GPU (or software fallback) and its driver.
type Adapter interface {
	// RequestDevice starts a device request, with the same callback
	// contract as [Instance.RequestAdapter].
	RequestDevice(desc *DeviceDescriptor, callback func(status RequestStatus, dev Device, msg string))

	ProcessEvents()
	Limits() Limits
	Features() []wgpu.FeatureName
	Info() AdapterInfo
	Release()
}

// Device is the logical device that creates all other resources.
type Device interface {
	Queue() Queue
	Limits() Limits
	Features() []wgpu.FeatureName
	CreateBuffer(desc *wgpu.BufferDescriptor) (Buffer, error)
	CreateShaderModule(label, wgsl string) (ShaderModule, error)
	CreateRenderPipeline(desc *RenderPipelineDescriptor) (RenderPipeline, error)
	CreateCommandEncoder(label string) (CommandEncoder, error)

	// Poll processes completed work, firing map callbacks.
	// If wait is true it blocks until the queue is empty.
	// It returns true if the queue is empty.
	Poll(wait bool) bool

	Release()
}

// Queue submits work to a [Device].
type Queue interface {
	WriteBuffer(buf Buffer, offset uint64, data []byte) error
	Submit(cmds ...CommandBuffer)
	Release()
}

// Surface is the presentable image chain of a [Window].
type Surface interface {
	// PreferredFormat returns the first format supported for
	// presenting with the given adapter.
	PreferredFormat(ad Adapter) wgpu.TextureFormat

	Configure(ad Adapter, dev Device, config *wgpu.SurfaceConfiguration)
	Unconfigure()

	// CurrentTexture returns the texture to render the next frame to.
	// An error means there is no texture for this frame.
	CurrentTexture() (Texture, error)

	Present()
	Release()
}

type Texture interface {
	CreateView(desc *wgpu.TextureViewDescriptor) (TextureView, error)
	Release()
}

type TextureView interface {
	Release()
}

type Buffer interface {
	Size() uint64

	// MapAsync starts mapping the buffer for host access. The callback
	// fires during a later [Device.Poll].
	MapAsync(mode wgpu.MapMode, offset, size uint64, callback func(status wgpu.BufferMapAsyncStatus)) error

	MappedRange(offset, size uint64) []byte
	Unmap()
	Release()
}

type ShaderModule interface {
	Release()
}

type RenderPipeline interface {
	Release()
}

type CommandEncoder interface {
	BeginRenderPass(desc *RenderPassDescriptor) RenderPass
	CopyBufferToBuffer(src Buffer, srcOffset uint64, dst Buffer, dstOffset, size uint64)
	Finish(label string) (CommandBuffer, error)
	Release()
}

type CommandBuffer interface {
	Release()
}

// RenderPass records draw commands into a [CommandEncoder].
type RenderPass interface {
	SetPipeline(pl RenderPipeline)
	SetVertexBuffer(slot uint32, buf Buffer, offset, size uint64)
	SetIndexBuffer(buf Buffer, format wgpu.IndexFormat, offset, size uint64)
	Draw(vertexCount, instanceCount, firstVertex, firstInstance uint32)
	DrawIndexed(indexCount, instanceCount, firstIndex uint32, baseVertex int32, firstInstance uint32)
	End()
	Release()
}

// AdapterOptions selects an adapter.
type AdapterOptions struct {

	// CompatibleSurface, if set, requires an adapter that can present to it.
	CompatibleSurface Surface

	PowerPreference wgpu.PowerPreference

	// ForceFallbackAdapter requests a software adapter.
	ForceFallbackAdapter bool
}

// DeviceDescriptor describes a device request.
type DeviceDescriptor struct {
	Label string

	// RequiredLimits are the limits the device must support.
	// nil uses the backend defaults.
	RequiredLimits *Limits

	// DeviceLost is called if the device becomes unusable.
	DeviceLost func(reason string, msg string)

	// UncapturedError receives errors from device operations
	// that are not otherwise reported to the caller.
	UncapturedError func(kind string, msg string)
}

// AdapterInfo describes an adapter for diagnostic output.
type AdapterInfo struct {
	VendorID     uint32 `toml:"vendor_id" yaml:"vendor_id"`
	DeviceID     uint32 `toml:"device_id" yaml:"device_id"`
	Vendor       string `toml:"vendor" yaml:"vendor"`
	Architecture string `toml:"architecture" yaml:"architecture"`
	Name         string `toml:"name" yaml:"name"`
	Driver       string `toml:"driver" yaml:"driver"`
	AdapterType  string `toml:"adapter_type" yaml:"adapter_type"`
	BackendType  string `toml:"backend_type" yaml:"backend_type"`
}

// RenderPipelineDescriptor describes a render pipeline with a single
// shader module providing both stages.
type RenderPipelineDescriptor struct {
	Label         string
	Module        ShaderModule
	VertexEntry   string
	Buffers       []wgpu.VertexBufferLayout
	FragmentEntry string
	Targets       []wgpu.ColorTargetState
	Primitive     wgpu.PrimitiveState
	Multisample   wgpu.MultisampleState
}

// RenderPassDescriptor describes a render pass.
type RenderPassDescriptor struct {
	Label            string
	ColorAttachments []ColorAttachment
}

// ColorAttachment is one color target of a render pass.
type ColorAttachment struct {
	View       TextureView
	LoadOp     wgpu.LoadOp
	StoreOp    wgpu.StoreOp
	ClearValue wgpu.Color
}
