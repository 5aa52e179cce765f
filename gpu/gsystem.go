// Copyright (c) 2024, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package gpu

import (
	"fmt"

	"cogentcore.org/core/base/errors"
	"github.com/cogentcore/webgpu/wgpu"
)

// GraphicsSystem owns the GPU objects used to draw one mesh to a
// window surface: the device and its queue, the configured surface,
// one render pipeline and the vertex and index buffers.
// All of them are released together by [GraphicsSystem.Release].
type GraphicsSystem struct {
	// optional name of this GraphicsSystem
	Name string

	Device  Device
	Queue   Queue
	Surface Surface

	// Render records the frames presented to the Surface.
	Render *Render

	// Pipeline draws the vertex data. It is set with [GraphicsSystem.SetPipeline].
	Pipeline RenderPipeline

	// Vertices is the vertex buffer, nil if the shader generates
	// its own vertices.
	Vertices Buffer

	// Indexes is the index buffer, nil for a non-indexed draw.
	Indexes Buffer

	// IndexFormat is the format of the Indexes.
	IndexFormat wgpu.IndexFormat

	// NumVertices is the number of vertices to draw when there is
	// no index buffer.
	NumVertices int

	// NumIndexes is the number of indexes to draw.
	NumIndexes int
}

// NewGraphicsSystem returns a new GraphicsSystem that renders to the
// given surface, configuring the surface for the given format.
// The adapter is only needed for configuring and can be released after.
func NewGraphicsSystem(name string, ad Adapter, dev Device, sf Surface, format *SurfaceFormat) *GraphicsSystem {
	sf.Configure(ad, dev, format.Configuration())
	sy := &GraphicsSystem{Name: name, Device: dev, Queue: dev.Queue(), Surface: sf}
	sy.Render = NewRender(sf, dev, format)
	if Debug {
		fmt.Printf("gpu: %s surface %s\n", name, format.String())
	}
	return sy
}

// SetPipeline builds the given pipeline for the surface format,
// replacing any existing one.
func (sy *GraphicsSystem) SetPipeline(pl *GraphicsPipeline) error {
	pl.Format = sy.Render.Format.Format
	rp, err := pl.Build(sy.Device)
	if err != nil {
		return err
	}
	if sy.Pipeline != nil {
		sy.Pipeline.Release()
	}
	sy.Pipeline = rp
	return nil
}

// SetVertices uploads the vertex data, for a non-indexed draw of
// numVertices unless indexes are also set.
func SetVertices[E any](sy *GraphicsSystem, data []E, numVertices int) error {
	buf, err := UploadSlice(sy.Device, "Vertex buffer", VertexBuffer, data)
	if err != nil {
		return err
	}
	if sy.Vertices != nil {
		sy.Vertices.Release()
	}
	sy.Vertices = buf
	sy.NumVertices = numVertices
	return nil
}

// SetIndexes uploads the uint16 triangle indexes.
func (sy *GraphicsSystem) SetIndexes(indexes []uint16) error {
	buf, err := UploadSlice(sy.Device, "Index buffer", IndexBuffer, indexes)
	if err != nil {
		return err
	}
	if sy.Indexes != nil {
		sy.Indexes.Release()
	}
	sy.Indexes = buf
	sy.IndexFormat = Uint16.IndexType()
	sy.NumIndexes = len(indexes)
	return nil
}

// SetClearColor sets the RGBA color to clear to when starting a new render.
func (sy *GraphicsSystem) SetClearColor(c wgpu.Color) *GraphicsSystem {
	sy.Render.ClearColor = c
	return sy
}

// Draw adds the commands to draw the mesh to the render pass:
// one indexed draw of all indexes if there is an index buffer,
// otherwise one draw of NumVertices.
func (sy *GraphicsSystem) Draw(rp RenderPass) {
	rp.SetPipeline(sy.Pipeline)
	if sy.Vertices != nil {
		rp.SetVertexBuffer(0, sy.Vertices, 0, sy.Vertices.Size())
	}
	if sy.Indexes != nil {
		rp.SetIndexBuffer(sy.Indexes, sy.IndexFormat, 0, sy.Indexes.Size())
		rp.DrawIndexed(uint32(sy.NumIndexes), 1, 0, 0, 0)
		return
	}
	rp.Draw(uint32(sy.NumVertices), 1, 0, 0)
}

// RenderFrame renders and presents one frame, then polls the device.
// If there is no surface texture, the frame is skipped without error.
func (sy *GraphicsSystem) RenderFrame() error {
	if sy.Pipeline == nil {
		return errors.New("gpu.GraphicsSystem: RenderFrame without a pipeline")
	}
	fr, err := sy.Render.BeginFrame()
	if errors.Is(err, ErrNoFrame) {
		return nil
	}
	if err != nil {
		return err
	}
	sy.Draw(fr.Pass)
	err = sy.Render.EndFrame(fr)
	sy.Device.Poll(false)
	return err
}

// Release releases all of the GPU objects, in dependency order:
// buffers, pipeline, surface configuration, queue, surface, device.
// It is safe to call more than once.
func (sy *GraphicsSystem) Release() {
	if sy.Vertices != nil {
		sy.Vertices.Release()
		sy.Vertices = nil
	}
	if sy.Indexes != nil {
		sy.Indexes.Release()
		sy.Indexes = nil
	}
	if sy.Pipeline != nil {
		sy.Pipeline.Release()
		sy.Pipeline = nil
	}
	if sy.Surface != nil {
		sy.Surface.Unconfigure()
	}
	if sy.Queue != nil {
		sy.Queue.Release()
		sy.Queue = nil
	}
	if sy.Surface != nil {
		sy.Surface.Release()
		sy.Surface = nil
	}
	if sy.Device != nil {
		sy.Device.Release()
		sy.Device = nil
	}
}
