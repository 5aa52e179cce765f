// Copyright (c) 2024, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package gpu

import (
	"github.com/cogentcore/webgpu/wgpu"
)

// RequiredLimitsFor returns the limits to request for a device that
// draws with the given vertex buffer layouts and allocates buffers of
// at most maxBufferSize bytes. Vertex limits are exactly what the
// layouts need, and offset alignments are taken from the supported
// limits, since they must not be stricter than the adapter's.
// All other limits are the backend defaults.
func RequiredLimitsFor(supported Limits, layouts []wgpu.VertexBufferLayout, maxBufferSize uint64) Limits {
	lm := wgpu.DefaultLimits()
	nattr := 0
	stride := uint64(0)
	for _, ly := range layouts {
		nattr += len(ly.Attributes)
		stride = max(stride, ly.ArrayStride)
	}
	lm.MaxVertexAttributes = uint32(nattr)
	lm.MaxVertexBuffers = uint32(len(layouts))
	lm.MaxVertexBufferArrayStride = uint32(stride)
	if maxBufferSize > 0 {
		lm.MaxBufferSize = AlignedSize(maxBufferSize, CopyAlignment)
	}
	lm.MinUniformBufferOffsetAlignment = supported.MinUniformBufferOffsetAlignment
	lm.MinStorageBufferOffsetAlignment = supported.MinStorageBufferOffsetAlignment
	return lm
}
