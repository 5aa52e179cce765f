// Copyright (c) 2024, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package gpu

import (
	"fmt"

	"cogentcore.org/core/base/errors"
	"github.com/cogentcore/webgpu/wgpu"
)

// ErrNoFrame is returned by [Render.BeginFrame] when the surface
// has no texture to render to this time. The frame should be skipped.
var ErrNoFrame = errors.New("gpu: no surface texture for frame")

// DefaultClearColor is the color each frame is cleared to by default.
var DefaultClearColor = wgpu.Color{R: 0.9, G: 0.1, B: 0.2, A: 1}

// Render records the render passes for frames presented to a
// configured [Surface].
type Render struct {
	// Format of the surface textures
	Format SurfaceFormat

	// ClearColor is the value for clearing the texture when
	// starting a render pass.
	ClearColor wgpu.Color

	surface Surface
	device  Device
}

// NewRender returns a new Render for the given configured surface.
func NewRender(sf Surface, dev Device, format *SurfaceFormat) *Render {
	return &Render{Format: *format, ClearColor: DefaultClearColor, surface: sf, device: dev}
}

// ClearRenderPass returns a render pass descriptor that clears the view
// to the ClearColor and stores the result.
func (rd *Render) ClearRenderPass(view TextureView) *RenderPassDescriptor {
	return &RenderPassDescriptor{
		Label: "Render pass",
		ColorAttachments: []ColorAttachment{{
			View:       view,
			LoadOp:     wgpu.LoadOpClear,
			StoreOp:    wgpu.StoreOpStore,
			ClearValue: rd.ClearColor,
		}},
	}
}

// Frame holds everything used to render a single frame.
// None of it outlives the frame.
type Frame struct {
	Texture Texture
	View    TextureView
	Encoder CommandEncoder

	// Pass is the render pass, to which draw commands are added.
	Pass RenderPass
}

// BeginFrame acquires the next surface texture and begins a clearing
// render pass on it. It returns [ErrNoFrame] if there is no texture,
// and the frame is then simply skipped.
// Call [Render.EndFrame] when done adding commands to the Pass.
func (rd *Render) BeginFrame() (*Frame, error) {
	tx, err := rd.surface.CurrentTexture()
	if err != nil {
		if Debug {
			fmt.Println("gpu: no surface texture:", err)
		}
		return nil, ErrNoFrame
	}
	fr := &Frame{Texture: tx}
	fr.View, err = tx.CreateView(rd.Format.ViewDescriptor())
	if err != nil {
		tx.Release()
		return nil, ErrNoFrame
	}
	fr.Encoder, err = rd.device.CreateCommandEncoder("Command encoder")
	if errors.Log(err) != nil {
		fr.View.Release()
		tx.Release()
		return nil, err
	}
	fr.Pass = fr.Encoder.BeginRenderPass(rd.ClearRenderPass(fr.View))
	return fr, nil
}

// EndFrame ends the render pass, submits the commands to the device
// queue and presents the texture, releasing all of the frame objects.
func (rd *Render) EndFrame(fr *Frame) error {
	fr.Pass.End()
	fr.Pass.Release() // must happen before Finish
	cmdBuffer, err := fr.Encoder.Finish("Command buffer")
	fr.Encoder.Release()
	if errors.Log(err) != nil {
		fr.View.Release()
		fr.Texture.Release()
		return err
	}
	rd.device.Queue().Submit(cmdBuffer)
	cmdBuffer.Release()
	fr.View.Release()
	rd.surface.Present()
	fr.Texture.Release()
	return nil
}
