// Copyright (c) 2024, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package gpu

import (
	"fmt"

	"cogentcore.org/core/base/errors"
	"github.com/cogentcore/webgpu/wgpu"
)

// CopyAlignment is the byte alignment required for the size of
// buffer writes and copies.
const CopyAlignment = 4

// AlignedSize returns size rounded up to a multiple of align.
func AlignedSize[T ~int | ~uint64](size, align T) T {
	if align <= 1 {
		return size
	}
	return ((size + align - 1) / align) * align
}

// BufferRoles are the ways a buffer is used, which determine its usage flags.
type BufferRoles int32

const (
	// VertexBuffer holds vertex attributes, written once from the host.
	VertexBuffer BufferRoles = iota

	// IndexBuffer holds triangle indexes, written once from the host.
	IndexBuffer

	// CopyBuffer is written from the host and copied to other buffers.
	CopyBuffer

	// ReadBuffer is copied into on the GPU and mapped for reading on the host.
	ReadBuffer
)

// Usage returns the buffer usage flags for the role.
func (br BufferRoles) Usage() wgpu.BufferUsage {
	switch br {
	case VertexBuffer:
		return wgpu.BufferUsageCopyDst | wgpu.BufferUsageVertex
	case IndexBuffer:
		return wgpu.BufferUsageCopyDst | wgpu.BufferUsageIndex
	case CopyBuffer:
		return wgpu.BufferUsageCopyDst | wgpu.BufferUsageCopySrc
	case ReadBuffer:
		return wgpu.BufferUsageCopyDst | wgpu.BufferUsageMapRead
	}
	return 0
}

func (br BufferRoles) String() string {
	switch br {
	case VertexBuffer:
		return "Vertex"
	case IndexBuffer:
		return "Index"
	case CopyBuffer:
		return "Copy"
	case ReadBuffer:
		return "Read"
	}
	return fmt.Sprintf("BufferRoles(%d)", int32(br))
}

// NewBuffer creates a buffer of at least size bytes for given role,
// rounding the size up to [CopyAlignment].
func NewBuffer(dev Device, label string, role BufferRoles, size int) (Buffer, error) {
	buf, err := dev.CreateBuffer(&wgpu.BufferDescriptor{
		Label: label,
		Usage: role.Usage(),
		Size:  uint64(AlignedSize(size, CopyAlignment)),
	})
	if err != nil {
		return nil, errors.Log(fmt.Errorf("gpu: creating %s buffer %q: %w", role, label, err))
	}
	return buf, nil
}

// UploadBuffer creates a buffer for given role and writes data to it.
// The data is zero padded up to the aligned buffer size.
func UploadBuffer(dev Device, label string, role BufferRoles, data []byte) (Buffer, error) {
	buf, err := NewBuffer(dev, label, role, len(data))
	if err != nil {
		return nil, err
	}
	if pad := int(buf.Size()) - len(data); pad > 0 {
		data = append(data[:len(data):len(data)], make([]byte, pad)...)
	}
	if err := dev.Queue().WriteBuffer(buf, 0, data); err != nil {
		buf.Release()
		return nil, errors.Log(fmt.Errorf("gpu: writing %s buffer %q: %w", role, label, err))
	}
	if Debug {
		fmt.Printf("gpu: uploaded %s buffer %q: %d bytes\n", role, label, len(data))
	}
	return buf, nil
}

// UploadSlice is [UploadBuffer] for a slice of plain values.
func UploadSlice[E any](dev Device, label string, role BufferRoles, data []E) (Buffer, error) {
	return UploadBuffer(dev, label, role, wgpu.ToBytes(data))
}

// BufferMapAsyncError returns an error message if the status is not success.
func BufferMapAsyncError(status wgpu.BufferMapAsyncStatus) error {
	if status != wgpu.BufferMapAsyncStatusSuccess {
		return fmt.Errorf("gpu: buffer MapAsync was not successful: status %d", status)
	}
	return nil
}

// ReadBufferSync maps size bytes of buf at offset for reading, polling
// the device until the map completes, and returns a copy of them.
// The buffer is unmapped again before returning.
func ReadBufferSync(dev Device, buf Buffer, offset, size uint64) ([]byte, error) {
	mapped := newRequest[wgpu.BufferMapAsyncStatus]("buffer map")
	err := buf.MapAsync(wgpu.MapModeRead, offset, size, func(s wgpu.BufferMapAsyncStatus) {
		mapped.complete(RequestSuccess, s, "")
	})
	if errors.Log(err) != nil {
		return nil, err
	}
	err = mapped.wait(func() { dev.Poll(false) })
	if errors.Log(err) != nil {
		return nil, err
	}
	if err := BufferMapAsyncError(mapped.value); err != nil {
		return nil, errors.Log(err)
	}
	data := make([]byte, size)
	copy(data, buf.MappedRange(offset, size))
	buf.Unmap()
	return data, nil
}
