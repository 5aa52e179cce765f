// Copyright (c) 2024, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package gpu

import (
	"fmt"
	"log/slog"

	"cogentcore.org/core/base/errors"
	"github.com/cogentcore/webgpu/wgpu"
)

// StraightAlphaBlend blends color by source alpha, and keeps the
// destination alpha.
var StraightAlphaBlend = wgpu.BlendState{
	Color: wgpu.BlendComponent{
		SrcFactor: wgpu.BlendFactorSrcAlpha,
		DstFactor: wgpu.BlendFactorOneMinusSrcAlpha,
		Operation: wgpu.BlendOperationAdd,
	},
	Alpha: wgpu.BlendComponent{
		SrcFactor: wgpu.BlendFactorZero,
		DstFactor: wgpu.BlendFactorOne,
		Operation: wgpu.BlendOperationAdd,
	},
}

// GraphicsPipeline holds the settings for a render pipeline that draws
// into a single color target with one WGSL shader module providing both
// the vertex and fragment entry points. Set the options with the Set*
// methods, then call [GraphicsPipeline.Build].
type GraphicsPipeline struct {
	// unique name of this pipeline, used as the GPU object label
	Name string

	// Code is the WGSL source for both stages.
	Code string

	// VertexEntry and FragmentEntry are the shader entry points.
	VertexEntry   string
	FragmentEntry string

	// Format is the color target format, normally the surface format.
	Format wgpu.TextureFormat

	// Buffers are the vertex buffer layouts, in slot order.
	// None for shaders that generate their own vertices.
	Buffers []wgpu.VertexBufferLayout

	// Primitive has various settings for graphics primitives,
	// e.g., TriangleList
	Primitive wgpu.PrimitiveState

	Multisample wgpu.MultisampleState

	// Blend is the color blending, nil for none:
	// new color overwrites old.
	Blend *wgpu.BlendState

	WriteMask wgpu.ColorWriteMask
}

// NewGraphicsPipeline returns a new GraphicsPipeline with the
// default settings from [GraphicsPipeline.SetGraphicsDefaults].
func NewGraphicsPipeline(name, code string, format wgpu.TextureFormat) *GraphicsPipeline {
	pl := &GraphicsPipeline{Name: name, Code: code, Format: format}
	pl.SetGraphicsDefaults()
	return pl
}

// SetGraphicsDefaults configures all the default settings:
// vs_main and fs_main entry points, triangle list, counter clockwise
// front faces, no culling, straight alpha blending, all channels
// written and a single sample.
func (pl *GraphicsPipeline) SetGraphicsDefaults() *GraphicsPipeline {
	pl.VertexEntry = "vs_main"
	pl.FragmentEntry = "fs_main"
	pl.SetTopology(TriangleList)
	pl.SetFrontFace(wgpu.FrontFaceCCW)
	pl.SetCullMode(wgpu.CullModeNone)
	pl.SetAlphaBlend(true)
	pl.SetMultisample(1)
	pl.WriteMask = wgpu.ColorWriteMaskAll
	return pl
}

// SetTopology sets the topology of vertex position data.
// TriangleList is the default.
func (pl *GraphicsPipeline) SetTopology(topo Topologies) *GraphicsPipeline {
	pl.Primitive.Topology = topo.Primitive()
	return pl
}

// SetFrontFace sets the winding order for what counts as a front face.
func (pl *GraphicsPipeline) SetFrontFace(face wgpu.FrontFace) *GraphicsPipeline {
	pl.Primitive.FrontFace = face
	return pl
}

// SetCullMode sets the face culling mode.
func (pl *GraphicsPipeline) SetCullMode(mode wgpu.CullMode) *GraphicsPipeline {
	pl.Primitive.CullMode = mode
	return pl
}

func (pl *GraphicsPipeline) SetMultisample(ms int) *GraphicsPipeline {
	pl.Multisample.Count = uint32(max(1, ms))
	pl.Multisample.Mask = 0xFFFFFFFF
	pl.Multisample.AlphaToCoverageEnabled = false
	return pl
}

// SetAlphaBlend determines the color blending function:
// either [StraightAlphaBlend] or no blending.
func (pl *GraphicsPipeline) SetAlphaBlend(alphaBlend bool) *GraphicsPipeline {
	if alphaBlend {
		bs := StraightAlphaBlend
		pl.Blend = &bs
	} else {
		pl.Blend = nil
	}
	return pl
}

// SetVertexBuffers sets the vertex buffer layouts.
func (pl *GraphicsPipeline) SetVertexBuffers(layouts ...wgpu.VertexBufferLayout) *GraphicsPipeline {
	pl.Buffers = layouts
	return pl
}

// Descriptor returns the pipeline descriptor for given shader module.
func (pl *GraphicsPipeline) Descriptor(module ShaderModule) *RenderPipelineDescriptor {
	return &RenderPipelineDescriptor{
		Label:         pl.Name,
		Module:        module,
		VertexEntry:   pl.VertexEntry,
		Buffers:       pl.Buffers,
		FragmentEntry: pl.FragmentEntry,
		Targets: []wgpu.ColorTargetState{{
			Format:    pl.Format,
			Blend:     pl.Blend,
			WriteMask: pl.WriteMask,
		}},
		Primitive:   pl.Primitive,
		Multisample: pl.Multisample,
	}
}

// Build compiles the shader module and creates the render pipeline.
// The shader module is released once the pipeline holds it.
// The WGSL code is not checked here: errors come back from the device,
// which also reports them to its uncaptured error handler.
func (pl *GraphicsPipeline) Build(dev Device) (RenderPipeline, error) {
	if pl.Code == "" {
		return nil, errors.Log(fmt.Errorf("gpu.GraphicsPipeline %q: no shader code", pl.Name))
	}
	sm, err := dev.CreateShaderModule(pl.Name, pl.Code)
	if err != nil {
		slog.Error("gpu.GraphicsPipeline: shader module", "pipeline", pl.Name, "err", err)
		return nil, err
	}
	defer sm.Release()
	rp, err := dev.CreateRenderPipeline(pl.Descriptor(sm))
	if err != nil {
		slog.Error("gpu.GraphicsPipeline: render pipeline", "pipeline", pl.Name, "err", err)
		return nil, err
	}
	if Debug {
		fmt.Printf("gpu: built pipeline %q: format %s, %d vertex buffers\n", pl.Name, TextureFormatName(pl.Format), len(pl.Buffers))
	}
	return rp, nil
}

// Topologies are the different vertex topology
type Topologies int32

const (
	PointList Topologies = iota
	LineList
	LineStrip
	TriangleList
	TriangleStrip
)

func (tp Topologies) Primitive() wgpu.PrimitiveTopology {
	return WebGPUTopologies[tp]
}

var WebGPUTopologies = map[Topologies]wgpu.PrimitiveTopology{
	PointList:     wgpu.PrimitiveTopologyPointList,
	LineList:      wgpu.PrimitiveTopologyLineList,
	LineStrip:     wgpu.PrimitiveTopologyLineStrip,
	TriangleList:  wgpu.PrimitiveTopologyTriangleList,
	TriangleStrip: wgpu.PrimitiveTopologyTriangleStrip,
}
