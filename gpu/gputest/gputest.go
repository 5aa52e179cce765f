// Copyright (c) 2024, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package gputest provides an in-memory implementation of the gpu
// API and window that records every call made on it, for testing
// code that renders without a GPU or a display.
package gputest

import (
	"fmt"
	"image"
	"slices"

	"cogentcore.org/core/base/errors"
	"cogentcore.org/learngpu/gpu"
	"github.com/cogentcore/webgpu/wgpu"
)

// Recorder is the ordered log of calls made on the fake objects
// created from one [Instance].
type Recorder struct {
	Calls []string
}

// Record appends a call to the log.
func (rc *Recorder) Record(format string, args ...any) {
	rc.Calls = append(rc.Calls, fmt.Sprintf(format, args...))
}

// Index returns the position of the first occurrence of call, or -1.
func (rc *Recorder) Index(call string) int {
	return slices.Index(rc.Calls, call)
}

// Count returns the number of times call was made.
func (rc *Recorder) Count(call string) int {
	n := 0
	for _, c := range rc.Calls {
		if c == call {
			n++
		}
	}
	return n
}

// Reset clears the log.
func (rc *Recorder) Reset() {
	rc.Calls = nil
}

// Options control the behavior of the fakes.
type Options struct {
	// AdapterStatus and DeviceStatus are the request outcomes.
	AdapterStatus gpu.RequestStatus
	DeviceStatus  gpu.RequestStatus

	// NilHandle makes a successful request return no object.
	NilHandle bool

	// RepeatCompletion calls each request callback twice, the
	// second time with a failure status.
	RepeatCompletion bool

	// PendingPolls is the number of ProcessEvents calls before a
	// request completes. Negative never completes.
	PendingPolls int

	// MapPolls is the number of device polls before a buffer map completes.
	MapPolls int

	// Limits are reported by the adapter and device.
	Limits gpu.Limits

	// Format is the preferred surface format.
	Format wgpu.TextureFormat

	// SkipFrames are the frame numbers, from 0, for which the
	// surface has no texture.
	SkipFrames []int

	// PipelineError is returned from CreateRenderPipeline.
	PipelineError error

	// WriteError is returned from Queue.WriteBuffer.
	WriteError error
}

// DefaultOptions returns options for requests that succeed at once,
// with default limits and a BGRA8UnormSrgb surface.
func DefaultOptions() Options {
	return Options{
		Limits: wgpu.DefaultLimits(),
		Format: wgpu.TextureFormatBGRA8UnormSrgb,
	}
}

// Instance is a fake [gpu.Instance]. The objects it creates are
// kept in its fields for inspection.
type Instance struct {
	Options
	*Recorder

	Surface *Surface
	Adapter *Adapter
	Device  *Device

	pending []func()
	polls   int
}

// NewInstance returns a new fake instance with given options.
func NewInstance(opts Options) *Instance {
	return &Instance{Options: opts, Recorder: &Recorder{}}
}

// NewWindow returns a new fake window recording to this instance,
// that reports closing after closeAfter event polls (never if 0).
func (in *Instance) NewWindow(size image.Point, closeAfter int) *Window {
	return &Window{Recorder: in.Recorder, WindowSize: size, CloseAfter: closeAfter}
}

func (in *Instance) CreateSurface(win gpu.Window) (gpu.Surface, error) {
	in.Record("Instance.CreateSurface")
	in.Surface = &Surface{in: in}
	return in.Surface, nil
}

// complete runs the completion now or after PendingPolls.
func (in *Instance) complete(fn func()) {
	switch {
	case in.PendingPolls == 0:
		fn()
	case in.PendingPolls > 0:
		in.polls = 0
		in.pending = append(in.pending, fn)
	}
}

func (in *Instance) RequestAdapter(opts *gpu.AdapterOptions, callback func(gpu.RequestStatus, gpu.Adapter, string)) {
	in.Record("Instance.RequestAdapter")
	in.complete(func() {
		if in.AdapterStatus != gpu.RequestSuccess {
			callback(in.AdapterStatus, nil, "no suitable adapter")
		} else if in.NilHandle {
			callback(gpu.RequestSuccess, nil, "")
		} else {
			in.Adapter = &Adapter{in: in}
			callback(gpu.RequestSuccess, in.Adapter, "")
		}
		if in.RepeatCompletion {
			callback(gpu.RequestError, nil, "repeated")
		}
	})
}

func (in *Instance) ProcessEvents() {
	if len(in.pending) == 0 {
		return
	}
	in.polls++
	if in.polls < in.PendingPolls {
		return
	}
	fns := in.pending
	in.pending = nil
	for _, fn := range fns {
		fn()
	}
}

func (in *Instance) Release() { in.Record("Instance.Release") }

// Adapter is a fake [gpu.Adapter].
type Adapter struct {
	in *Instance
}

func (ad *Adapter) RequestDevice(desc *gpu.DeviceDescriptor, callback func(gpu.RequestStatus, gpu.Device, string)) {
	in := ad.in
	in.Record("Adapter.RequestDevice")
	in.complete(func() {
		if in.DeviceStatus != gpu.RequestSuccess {
			callback(in.DeviceStatus, nil, "device request failed")
		} else if in.NilHandle {
			callback(gpu.RequestSuccess, nil, "")
		} else {
			in.Device = &Device{in: in, Desc: *desc}
			in.Device.queue = &Queue{dev: in.Device}
			callback(gpu.RequestSuccess, in.Device, "")
		}
		if in.RepeatCompletion {
			callback(gpu.RequestError, nil, "repeated")
		}
	})
}

func (ad *Adapter) ProcessEvents() { ad.in.ProcessEvents() }

func (ad *Adapter) Limits() gpu.Limits { return ad.in.Limits }

func (ad *Adapter) Features() []wgpu.FeatureName {
	return []wgpu.FeatureName{wgpu.FeatureNameDepthClipControl}
}

func (ad *Adapter) Info() gpu.AdapterInfo {
	return gpu.AdapterInfo{VendorID: 0x10de, DeviceID: 0x2204, Vendor: "fake", Name: "Fake Adapter", AdapterType: "CPU", BackendType: "Null"}
}

func (ad *Adapter) Release() { ad.in.Record("Adapter.Release") }

// Device is a fake [gpu.Device].
type Device struct {
	in *Instance

	// Desc is the descriptor the device was requested with.
	Desc gpu.DeviceDescriptor

	// Buffers, Shaders and Pipelines are all created objects, in order.
	Buffers   []*Buffer
	Shaders   []*ShaderModule
	Pipelines []*gpu.RenderPipelineDescriptor

	// Errors are the errors sent to the uncaptured error handler.
	Errors []string

	queue *Queue
	maps  []*Buffer
}

func (dv *Device) Queue() gpu.Queue { return dv.queue }

func (dv *Device) Limits() gpu.Limits { return dv.in.Limits }

func (dv *Device) Features() []wgpu.FeatureName { return nil }

func (dv *Device) CreateBuffer(desc *wgpu.BufferDescriptor) (gpu.Buffer, error) {
	dv.in.Record("Device.CreateBuffer(%s, %d)", desc.Label, desc.Size)
	bf := &Buffer{in: dv.in, Desc: *desc, Data: make([]byte, desc.Size)}
	dv.Buffers = append(dv.Buffers, bf)
	return bf, nil
}

// BufferByLabel returns the last created buffer with given label, or nil.
func (dv *Device) BufferByLabel(label string) *Buffer {
	for i := len(dv.Buffers) - 1; i >= 0; i-- {
		if dv.Buffers[i].Desc.Label == label {
			return dv.Buffers[i]
		}
	}
	return nil
}

func (dv *Device) CreateShaderModule(label, wgsl string) (gpu.ShaderModule, error) {
	dv.in.Record("Device.CreateShaderModule(%s)", label)
	sm := &ShaderModule{in: dv.in, Label: label, Code: wgsl}
	dv.Shaders = append(dv.Shaders, sm)
	return sm, nil
}

func (dv *Device) CreateRenderPipeline(desc *gpu.RenderPipelineDescriptor) (gpu.RenderPipeline, error) {
	dv.in.Record("Device.CreateRenderPipeline(%s)", desc.Label)
	if err := dv.in.PipelineError; err != nil {
		dv.Errors = append(dv.Errors, err.Error())
		if dv.Desc.UncapturedError != nil {
			dv.Desc.UncapturedError("validation", err.Error())
		}
		return nil, err
	}
	dv.Pipelines = append(dv.Pipelines, desc)
	return &RenderPipeline{in: dv.in, Label: desc.Label}, nil
}

func (dv *Device) CreateCommandEncoder(label string) (gpu.CommandEncoder, error) {
	dv.in.Record("Device.CreateCommandEncoder")
	return &CommandEncoder{in: dv.in}, nil
}

// Poll fires the callbacks of completed buffer maps.
func (dv *Device) Poll(wait bool) bool {
	dv.in.Record("Device.Poll")
	var still []*Buffer
	for _, bf := range dv.maps {
		bf.mapPolls++
		if bf.mapPolls < dv.in.MapPolls {
			still = append(still, bf)
			continue
		}
		bf.Mapped = true
		bf.mapCallback(wgpu.BufferMapAsyncStatusSuccess)
	}
	dv.maps = still
	return len(still) == 0
}

func (dv *Device) Release() { dv.in.Record("Device.Release") }

// Queue is a fake [gpu.Queue]. Submitting executes buffer copies.
type Queue struct {
	dev *Device
}

func (qu *Queue) WriteBuffer(buf gpu.Buffer, offset uint64, data []byte) error {
	bf := buf.(*Buffer)
	qu.dev.in.Record("Queue.WriteBuffer(%s, %d)", bf.Desc.Label, len(data))
	if err := qu.dev.in.WriteError; err != nil {
		return err
	}
	if len(data)%gpu.CopyAlignment != 0 {
		return errors.New("gputest: write size is not a multiple of 4")
	}
	if offset+uint64(len(data)) > bf.Desc.Size {
		return errors.New("gputest: write past end of buffer")
	}
	copy(bf.Data[offset:], data)
	return nil
}

func (qu *Queue) Submit(cmds ...gpu.CommandBuffer) {
	qu.dev.in.Record("Queue.Submit(%d)", len(cmds))
	for _, cb := range cmds {
		for _, cp := range cb.(*CommandBuffer).copies {
			copy(cp.dst.Data[cp.dstOffset:cp.dstOffset+cp.size], cp.src.Data[cp.srcOffset:])
		}
	}
}

func (qu *Queue) Release() { qu.dev.in.Record("Queue.Release") }

// Surface is a fake [gpu.Surface].
type Surface struct {
	in *Instance

	// Config is the last configuration, nil if not configured.
	Config *wgpu.SurfaceConfiguration

	// Frame is the number of textures requested so far.
	Frame int
}

func (sf *Surface) PreferredFormat(ad gpu.Adapter) wgpu.TextureFormat {
	return sf.in.Format
}

func (sf *Surface) Configure(ad gpu.Adapter, dev gpu.Device, config *wgpu.SurfaceConfiguration) {
	sf.in.Record("Surface.Configure")
	cf := *config
	sf.Config = &cf
}

func (sf *Surface) Unconfigure() {
	sf.in.Record("Surface.Unconfigure")
	sf.Config = nil
}

func (sf *Surface) CurrentTexture() (gpu.Texture, error) {
	fr := sf.Frame
	sf.Frame++
	if sf.Config == nil {
		return nil, errors.New("gputest: surface not configured")
	}
	if slices.Contains(sf.in.SkipFrames, fr) {
		return nil, errors.New("gputest: surface texture outdated")
	}
	sf.in.Record("Surface.CurrentTexture")
	return &Texture{in: sf.in}, nil
}

func (sf *Surface) Present() { sf.in.Record("Surface.Present") }

func (sf *Surface) Release() { sf.in.Record("Surface.Release") }

// Texture is a fake [gpu.Texture].
type Texture struct {
	in *Instance
}

func (tx *Texture) CreateView(desc *wgpu.TextureViewDescriptor) (gpu.TextureView, error) {
	tx.in.Record("Texture.CreateView")
	return &TextureView{in: tx.in, Desc: *desc}, nil
}

func (tx *Texture) Release() { tx.in.Record("Texture.Release") }

// TextureView is a fake [gpu.TextureView].
type TextureView struct {
	in   *Instance
	Desc wgpu.TextureViewDescriptor
}

func (tv *TextureView) Release() { tv.in.Record("TextureView.Release") }

// Buffer is a fake [gpu.Buffer] holding its contents in Data.
type Buffer struct {
	in   *Instance
	Desc wgpu.BufferDescriptor
	Data []byte

	// Mapped is true while mapped for reading.
	Mapped bool

	mapCallback func(wgpu.BufferMapAsyncStatus)
	mapPolls    int
}

func (bf *Buffer) Size() uint64 { return bf.Desc.Size }

func (bf *Buffer) MapAsync(mode wgpu.MapMode, offset, size uint64, callback func(wgpu.BufferMapAsyncStatus)) error {
	bf.in.Record("Buffer.MapAsync(%s)", bf.Desc.Label)
	if bf.Desc.Usage&wgpu.BufferUsageMapRead == 0 {
		return errors.New("gputest: buffer is not mappable")
	}
	bf.mapCallback = callback
	bf.mapPolls = 0
	bf.in.Device.maps = append(bf.in.Device.maps, bf)
	return nil
}

func (bf *Buffer) MappedRange(offset, size uint64) []byte {
	if !bf.Mapped {
		return nil
	}
	return bf.Data[offset : offset+size]
}

func (bf *Buffer) Unmap() {
	bf.in.Record("Buffer.Unmap(%s)", bf.Desc.Label)
	bf.Mapped = false
}

func (bf *Buffer) Release() { bf.in.Record("Buffer.Release(%s)", bf.Desc.Label) }

// ShaderModule is a fake [gpu.ShaderModule].
type ShaderModule struct {
	in    *Instance
	Label string
	Code  string
}

func (sm *ShaderModule) Release() { sm.in.Record("ShaderModule.Release(%s)", sm.Label) }

// RenderPipeline is a fake [gpu.RenderPipeline].
type RenderPipeline struct {
	in    *Instance
	Label string
}

func (rp *RenderPipeline) Release() { rp.in.Record("RenderPipeline.Release(%s)", rp.Label) }

type bufferCopy struct {
	src, dst             *Buffer
	srcOffset, dstOffset uint64
	size                 uint64
}

// CommandEncoder is a fake [gpu.CommandEncoder].
type CommandEncoder struct {
	in     *Instance
	copies []bufferCopy
}

func (ce *CommandEncoder) BeginRenderPass(desc *gpu.RenderPassDescriptor) gpu.RenderPass {
	c := desc.ColorAttachments[0].ClearValue
	ce.in.Record("CommandEncoder.BeginRenderPass(%g, %g, %g, %g)", c.R, c.G, c.B, c.A)
	return &RenderPass{in: ce.in}
}

func (ce *CommandEncoder) CopyBufferToBuffer(src gpu.Buffer, srcOffset uint64, dst gpu.Buffer, dstOffset, size uint64) {
	sb, db := src.(*Buffer), dst.(*Buffer)
	ce.in.Record("CommandEncoder.CopyBufferToBuffer(%s, %s, %d)", sb.Desc.Label, db.Desc.Label, size)
	ce.copies = append(ce.copies, bufferCopy{src: sb, dst: db, srcOffset: srcOffset, dstOffset: dstOffset, size: size})
}

func (ce *CommandEncoder) Finish(label string) (gpu.CommandBuffer, error) {
	ce.in.Record("CommandEncoder.Finish")
	return &CommandBuffer{in: ce.in, copies: ce.copies}, nil
}

func (ce *CommandEncoder) Release() { ce.in.Record("CommandEncoder.Release") }

// CommandBuffer is a fake [gpu.CommandBuffer].
type CommandBuffer struct {
	in     *Instance
	copies []bufferCopy
}

func (cb *CommandBuffer) Release() { cb.in.Record("CommandBuffer.Release") }

// RenderPass is a fake [gpu.RenderPass].
type RenderPass struct {
	in *Instance
}

func (rp *RenderPass) SetPipeline(pl gpu.RenderPipeline) {
	rp.in.Record("RenderPass.SetPipeline(%s)", pl.(*RenderPipeline).Label)
}

func (rp *RenderPass) SetVertexBuffer(slot uint32, buf gpu.Buffer, offset, size uint64) {
	rp.in.Record("RenderPass.SetVertexBuffer(%d, %s, %d, %d)", slot, buf.(*Buffer).Desc.Label, offset, size)
}

func (rp *RenderPass) SetIndexBuffer(buf gpu.Buffer, format wgpu.IndexFormat, offset, size uint64) {
	rp.in.Record("RenderPass.SetIndexBuffer(%s, %d, %d)", buf.(*Buffer).Desc.Label, offset, size)
}

func (rp *RenderPass) Draw(vertexCount, instanceCount, firstVertex, firstInstance uint32) {
	rp.in.Record("RenderPass.Draw(%d, %d, %d, %d)", vertexCount, instanceCount, firstVertex, firstInstance)
}

func (rp *RenderPass) DrawIndexed(indexCount, instanceCount, firstIndex uint32, baseVertex int32, firstInstance uint32) {
	rp.in.Record("RenderPass.DrawIndexed(%d, %d, %d, %d, %d)", indexCount, instanceCount, firstIndex, baseVertex, firstInstance)
}

func (rp *RenderPass) End() { rp.in.Record("RenderPass.End") }

func (rp *RenderPass) Release() { rp.in.Record("RenderPass.Release") }

// Window is a fake [gpu.Window].
type Window struct {
	*Recorder
	WindowSize image.Point

	// CloseAfter is the number of event polls after which
	// the window reports it should close. 0 is never.
	CloseAfter int

	// Polls is the number of event polls so far.
	Polls int
}

func (wn *Window) ShouldClose() bool {
	return wn.CloseAfter > 0 && wn.Polls >= wn.CloseAfter
}

func (wn *Window) PollEvents() {
	wn.Polls++
	wn.Record("Window.PollEvents")
}

func (wn *Window) Size() image.Point { return wn.WindowSize }

func (wn *Window) SurfaceDescriptor() *wgpu.SurfaceDescriptor { return nil }

func (wn *Window) Destroy() { wn.Record("Window.Destroy") }
