// Copyright (c) 2024, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package gpu

import (
	"fmt"
	"image"

	"github.com/cogentcore/webgpu/wgpu"
)

// SurfaceFormat describes the size and WebGPU format of the
// textures presented to a window surface.
type SurfaceFormat struct {
	// Size of the surface textures in pixels
	Size image.Point

	// Texture format, as preferred by the surface for the adapter
	Format wgpu.TextureFormat

	// PresentMode is Fifo (vsync) by default, which is always supported.
	PresentMode wgpu.PresentMode
}

// NewSurfaceFormat returns a new SurfaceFormat with given size and format,
// and the default Fifo present mode.
func NewSurfaceFormat(size image.Point, format wgpu.TextureFormat) *SurfaceFormat {
	return &SurfaceFormat{Size: size, Format: format, PresentMode: wgpu.PresentModeFifo}
}

// String returns human-readable version of format
func (sf *SurfaceFormat) String() string {
	return fmt.Sprintf("Size: %v  Format: %s", sf.Size, TextureFormatName(sf.Format))
}

// Configuration returns the surface configuration for rendering
// to the surface textures. The zero AlphaMode is Auto.
func (sf *SurfaceFormat) Configuration() *wgpu.SurfaceConfiguration {
	return &wgpu.SurfaceConfiguration{
		Usage:       wgpu.TextureUsageRenderAttachment,
		Format:      sf.Format,
		Width:       uint32(sf.Size.X),
		Height:      uint32(sf.Size.Y),
		PresentMode: sf.PresentMode,
	}
}

// ViewDescriptor returns the descriptor for a view of a whole
// surface texture: 2D, one mip level and one layer, all aspects.
func (sf *SurfaceFormat) ViewDescriptor() *wgpu.TextureViewDescriptor {
	return &wgpu.TextureViewDescriptor{
		Label:           "Surface texture view",
		Format:          sf.Format,
		Dimension:       wgpu.TextureViewDimension2D,
		BaseMipLevel:    0,
		MipLevelCount:   1,
		BaseArrayLayer:  0,
		ArrayLayerCount: 1,
		Aspect:          wgpu.TextureAspectAll,
	}
}

// most commonly available formats: https://WebGPU.gpuinfo.org/listsurfaceformats.php

// TextureFormatNames translates image format into human-readable string
// for most commonly available formats
var TextureFormatNames = map[wgpu.TextureFormat]string{
	wgpu.TextureFormatRGBA8UnormSrgb: "RGBA 8bit sRGB colorspace",
	wgpu.TextureFormatRGBA8Unorm:     "RGBA 8bit unsigned linear colorspace",
	wgpu.TextureFormatBGRA8UnormSrgb: "BGRA 8bit sRGB colorspace",
	wgpu.TextureFormatBGRA8Unorm:     "BGRA 8bit unsigned linear colorspace",
	wgpu.TextureFormatRGBA16Float:    "RGBA 16bit floating point linear colorspace",
}

// TextureFormatName returns the name of the format, or its number
// if it is not a common one.
func TextureFormatName(tf wgpu.TextureFormat) string {
	if nm, ok := TextureFormatNames[tf]; ok {
		return nm
	}
	return fmt.Sprintf("TextureFormat(%d)", uint32(tf))
}
