// Copyright (c) 2024, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package gpu

import (
	"fmt"

	"cogentcore.org/core/base/errors"
	"github.com/cogentcore/webgpu/wgpu"
)

// NewInstance returns an [Instance] backed by the native wgpu library.
func NewInstance() Instance {
	return &wInstance{inst: wgpu.CreateInstance(nil)}
}

type wInstance struct {
	inst *wgpu.Instance
}

func (in *wInstance) CreateSurface(win Window) (Surface, error) {
	sd := win.SurfaceDescriptor()
	if sd == nil {
		return nil, errors.New("gpu: window has no surface descriptor")
	}
	sf := in.inst.CreateSurface(sd)
	if sf == nil {
		return nil, errors.New("gpu: could not create surface")
	}
	return &wSurface{sf: sf}, nil
}

// RequestAdapter calls back before returning: the native request
// completes synchronously.
func (in *wInstance) RequestAdapter(opts *AdapterOptions, callback func(RequestStatus, Adapter, string)) {
	ro := &wgpu.RequestAdapterOptions{}
	if opts != nil {
		ro.PowerPreference = opts.PowerPreference
		ro.ForceFallbackAdapter = opts.ForceFallbackAdapter
		if sf, ok := opts.CompatibleSurface.(*wSurface); ok {
			ro.CompatibleSurface = sf.sf
		}
	}
	ad, err := in.inst.RequestAdapter(ro)
	if err != nil {
		callback(RequestUnavailable, nil, err.Error())
		return
	}
	callback(RequestSuccess, &wAdapter{ad: ad}, "")
}

func (in *wInstance) ProcessEvents() {}

func (in *wInstance) Release() {
	in.inst.Release()
}

type wAdapter struct {
	ad *wgpu.Adapter
}

func (wa *wAdapter) RequestDevice(desc *DeviceDescriptor, callback func(RequestStatus, Device, string)) {
	dd := &wgpu.DeviceDescriptor{}
	var uncaptured func(kind, msg string)
	if desc != nil {
		dd.Label = desc.Label
		if desc.RequiredLimits != nil {
			dd.RequiredLimits = &wgpu.RequiredLimits{Limits: *desc.RequiredLimits}
		}
		if lost := desc.DeviceLost; lost != nil {
			dd.DeviceLostCallback = func(reason wgpu.DeviceLostReason, msg string) {
				lost(fmt.Sprint(reason), msg)
			}
		}
		uncaptured = desc.UncapturedError
	}
	dev, err := wa.ad.RequestDevice(dd)
	if err != nil {
		callback(RequestError, nil, err.Error())
		return
	}
	callback(RequestSuccess, &wDevice{dev: dev, queue: &wQueue{q: dev.GetQueue()}, uncaptured: uncaptured}, "")
}

func (wa *wAdapter) ProcessEvents() {}

func (wa *wAdapter) Limits() Limits {
	return wa.ad.GetLimits().Limits
}

func (wa *wAdapter) Features() []wgpu.FeatureName {
	return wa.ad.EnumerateFeatures()
}

func (wa *wAdapter) Info() AdapterInfo {
	pr := wa.ad.GetInfo()
	return AdapterInfo{
		VendorID:     pr.VendorId,
		DeviceID:     pr.DeviceId,
		Vendor:       pr.VendorName,
		Architecture: pr.Architecture,
		Name:         pr.Name,
		Driver:       pr.DriverDescription,
		AdapterType:  pr.AdapterType.String(),
		BackendType:  pr.BackendType.String(),
	}
}

func (wa *wAdapter) Release() {
	wa.ad.Release()
}

type wDevice struct {
	dev        *wgpu.Device
	queue      *wQueue
	uncaptured func(kind, msg string)
}

// report sends a creation error to the uncaptured error handler,
// which the native binding otherwise only returns to the caller.
func (wd *wDevice) report(err error) error {
	if err != nil && wd.uncaptured != nil {
		wd.uncaptured("validation", err.Error())
	}
	return err
}

func (wd *wDevice) Queue() Queue { return wd.queue }

func (wd *wDevice) Limits() Limits {
	return wd.dev.GetLimits().Limits
}

func (wd *wDevice) Features() []wgpu.FeatureName {
	return wd.dev.EnumerateFeatures()
}

func (wd *wDevice) CreateBuffer(desc *wgpu.BufferDescriptor) (Buffer, error) {
	buf, err := wd.dev.CreateBuffer(desc)
	if wd.report(err) != nil {
		return nil, err
	}
	return &wBuffer{buf: buf}, nil
}

func (wd *wDevice) CreateShaderModule(label, wgsl string) (ShaderModule, error) {
	sm, err := wd.dev.CreateShaderModule(&wgpu.ShaderModuleDescriptor{
		Label:          label,
		WGSLDescriptor: &wgpu.ShaderModuleWGSLDescriptor{Code: wgsl},
	})
	if wd.report(err) != nil {
		return nil, err
	}
	return sm, nil
}

func (wd *wDevice) CreateRenderPipeline(desc *RenderPipelineDescriptor) (RenderPipeline, error) {
	sm, ok := desc.Module.(*wgpu.ShaderModule)
	if !ok {
		return nil, wd.report(errors.New("gpu: shader module was not created by this device"))
	}
	pd := &wgpu.RenderPipelineDescriptor{
		Label: desc.Label,
		Vertex: wgpu.VertexState{
			Module:     sm,
			EntryPoint: desc.VertexEntry,
			Buffers:    desc.Buffers,
		},
		Primitive:   desc.Primitive,
		Multisample: desc.Multisample,
		Fragment: &wgpu.FragmentState{
			Module:     sm,
			EntryPoint: desc.FragmentEntry,
			Targets:    desc.Targets,
		},
	}
	rp, err := wd.dev.CreateRenderPipeline(pd)
	if wd.report(err) != nil {
		return nil, err
	}
	return rp, nil
}

func (wd *wDevice) CreateCommandEncoder(label string) (CommandEncoder, error) {
	ce, err := wd.dev.CreateCommandEncoder(&wgpu.CommandEncoderDescriptor{Label: label})
	if wd.report(err) != nil {
		return nil, err
	}
	return &wEncoder{ce: ce}, nil
}

func (wd *wDevice) Poll(wait bool) bool {
	return wd.dev.Poll(wait, nil)
}

func (wd *wDevice) Release() {
	wd.dev.Release()
}

type wQueue struct {
	q *wgpu.Queue
}

func (wq *wQueue) WriteBuffer(buf Buffer, offset uint64, data []byte) error {
	return wq.q.WriteBuffer(buf.(*wBuffer).buf, offset, data)
}

func (wq *wQueue) Submit(cmds ...CommandBuffer) {
	cbs := make([]*wgpu.CommandBuffer, len(cmds))
	for i, cb := range cmds {
		cbs[i] = cb.(*wgpu.CommandBuffer)
	}
	wq.q.Submit(cbs...)
}

func (wq *wQueue) Release() {
	wq.q.Release()
}

type wSurface struct {
	sf         *wgpu.Surface
	configured bool
}

func (ws *wSurface) PreferredFormat(ad Adapter) wgpu.TextureFormat {
	caps := ws.sf.GetCapabilities(ad.(*wAdapter).ad)
	if len(caps.Formats) == 0 {
		return wgpu.TextureFormatUndefined
	}
	return caps.Formats[0]
}

func (ws *wSurface) Configure(ad Adapter, dev Device, config *wgpu.SurfaceConfiguration) {
	ws.sf.Configure(ad.(*wAdapter).ad, dev.(*wDevice).dev, config)
	ws.configured = true
}

// Unconfigure marks the surface as unconfigured: the binding has no
// separate call for it, and the native configuration goes with Release.
func (ws *wSurface) Unconfigure() {
	ws.configured = false
}

func (ws *wSurface) CurrentTexture() (Texture, error) {
	if !ws.configured {
		return nil, errors.New("gpu: surface is not configured")
	}
	tx, err := ws.sf.GetCurrentTexture()
	if err != nil {
		return nil, err
	}
	return &wTexture{tx: tx}, nil
}

func (ws *wSurface) Present() {
	ws.sf.Present()
}

func (ws *wSurface) Release() {
	ws.sf.Release()
}

type wTexture struct {
	tx *wgpu.Texture
}

func (wt *wTexture) CreateView(desc *wgpu.TextureViewDescriptor) (TextureView, error) {
	return wt.tx.CreateView(desc)
}

func (wt *wTexture) Release() {
	wt.tx.Release()
}

type wBuffer struct {
	buf *wgpu.Buffer
}

func (wb *wBuffer) Size() uint64 {
	return wb.buf.GetSize()
}

func (wb *wBuffer) MapAsync(mode wgpu.MapMode, offset, size uint64, callback func(wgpu.BufferMapAsyncStatus)) error {
	return wb.buf.MapAsync(mode, offset, size, callback)
}

func (wb *wBuffer) MappedRange(offset, size uint64) []byte {
	return wb.buf.GetMappedRange(uint(offset), uint(size))
}

func (wb *wBuffer) Unmap() {
	wb.buf.Unmap()
}

func (wb *wBuffer) Release() {
	wb.buf.Release()
}

type wEncoder struct {
	ce *wgpu.CommandEncoder
}

func (we *wEncoder) BeginRenderPass(desc *RenderPassDescriptor) RenderPass {
	rd := &wgpu.RenderPassDescriptor{Label: desc.Label}
	for _, ca := range desc.ColorAttachments {
		rd.ColorAttachments = append(rd.ColorAttachments, wgpu.RenderPassColorAttachment{
			View:       ca.View.(*wgpu.TextureView),
			LoadOp:     ca.LoadOp,
			StoreOp:    ca.StoreOp,
			ClearValue: ca.ClearValue,
		})
	}
	return &wRenderPass{rp: we.ce.BeginRenderPass(rd)}
}

func (we *wEncoder) CopyBufferToBuffer(src Buffer, srcOffset uint64, dst Buffer, dstOffset, size uint64) {
	we.ce.CopyBufferToBuffer(src.(*wBuffer).buf, srcOffset, dst.(*wBuffer).buf, dstOffset, size)
}

func (we *wEncoder) Finish(label string) (CommandBuffer, error) {
	return we.ce.Finish(&wgpu.CommandBufferDescriptor{Label: label})
}

func (we *wEncoder) Release() {
	we.ce.Release()
}

type wRenderPass struct {
	rp *wgpu.RenderPassEncoder
}

func (wr *wRenderPass) SetPipeline(pl RenderPipeline) {
	wr.rp.SetPipeline(pl.(*wgpu.RenderPipeline))
}

func (wr *wRenderPass) SetVertexBuffer(slot uint32, buf Buffer, offset, size uint64) {
	wr.rp.SetVertexBuffer(slot, buf.(*wBuffer).buf, offset, size)
}

func (wr *wRenderPass) SetIndexBuffer(buf Buffer, format wgpu.IndexFormat, offset, size uint64) {
	wr.rp.SetIndexBuffer(buf.(*wBuffer).buf, format, offset, size)
}

func (wr *wRenderPass) Draw(vertexCount, instanceCount, firstVertex, firstInstance uint32) {
	wr.rp.Draw(vertexCount, instanceCount, firstVertex, firstInstance)
}

func (wr *wRenderPass) DrawIndexed(indexCount, instanceCount, firstIndex uint32, baseVertex int32, firstInstance uint32) {
	wr.rp.DrawIndexed(indexCount, instanceCount, firstIndex, baseVertex, firstInstance)
}

func (wr *wRenderPass) End() {
	wr.rp.End()
}

func (wr *wRenderPass) Release() {
	wr.rp.Release()
}
