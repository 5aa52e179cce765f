// Copyright (c) 2024, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package app

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"cogentcore.org/learngpu/gpu"
	"cogentcore.org/learngpu/gpu/gputest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInspect(t *testing.T) {
	in := gputest.NewInstance(gputest.DefaultOptions())
	cfg := NewConfig()
	cfg.Report = filepath.Join(t.TempDir(), "caps.toml")
	var sb strings.Builder
	cp, err := Inspect(cfg, in, &sb)
	require.NoError(t, err)
	assert.Equal(t, "Fake Adapter", cp.Adapter.Info.Name)
	assert.Contains(t, sb.String(), "Adapter properties:")
	assert.Contains(t, sb.String(), " - name: Fake Adapter")
	assert.Contains(t, sb.String(), "Device limits:")

	b, err := os.ReadFile(cfg.Report)
	require.NoError(t, err)
	assert.Contains(t, string(b), "Fake Adapter")

	assert.Equal(t, []string{"Queue.Release", "Device.Release", "Adapter.Release", "Instance.Release"}, in.Calls[len(in.Calls)-4:])
}

func TestInspectNoAdapter(t *testing.T) {
	opts := gputest.DefaultOptions()
	opts.AdapterStatus = gpu.RequestUnavailable
	in := gputest.NewInstance(opts)
	_, err := Inspect(NewConfig(), in, &strings.Builder{})
	assert.ErrorIs(t, err, gpu.ErrRequestFailed)
	assert.Equal(t, "Instance.Release", in.Calls[len(in.Calls)-1])
}

func TestBuffers(t *testing.T) {
	opts := gputest.DefaultOptions()
	opts.MapPolls = 2
	in := gputest.NewInstance(opts)
	var sb strings.Builder
	data, err := Buffers(in, &sb)
	require.NoError(t, err)
	want := []byte{0, 1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12, 13, 14, 15}
	assert.Equal(t, want, data)
	assert.Equal(t, "bufferData = [0, 1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12, 13, 14, 15]\n", sb.String())

	assert.Less(t, in.Index("CommandEncoder.CopyBufferToBuffer(Input buffer, Output buffer, 16)"), in.Index("Queue.Submit(1)"))
	assert.Less(t, in.Index("Queue.Submit(1)"), in.Index("Buffer.MapAsync(Output buffer)"))
	assert.Less(t, in.Index("Buffer.Unmap(Output buffer)"), in.Index("Buffer.Release(Output buffer)"))
	assert.Equal(t, 1, in.Count("Buffer.Release(Input buffer)"))
	assert.Equal(t, "Instance.Release", in.Calls[len(in.Calls)-1])
}
