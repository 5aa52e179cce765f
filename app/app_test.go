// Copyright (c) 2024, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package app

import (
	"image"
	"path/filepath"
	"strings"
	"testing"

	"cogentcore.org/learngpu/geom"
	"cogentcore.org/learngpu/gpu"
	"cogentcore.org/learngpu/gpu/gputest"
	"github.com/cogentcore/webgpu/wgpu"
	"github.com/gogpu/naga"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newTestApp returns an App drawing to a fake backend, with a window
// that closes after closeAfter event polls.
func newTestApp(t *testing.T, opts gputest.Options, geometry string, closeAfter int) (*App, *gputest.Instance) {
	in := gputest.NewInstance(opts)
	cfg := NewConfig()
	if geometry != "" {
		cfg.Geometry = filepath.Join("testdata", geometry)
	}
	a := New(cfg)
	a.NewInstance = func() gpu.Instance { return in }
	a.NewWindow = func(size image.Point, title string) (gpu.Window, error) {
		return in.NewWindow(size, closeAfter), nil
	}
	return a, in
}

func TestConfigDefaults(t *testing.T) {
	cfg := NewConfig()
	assert.Equal(t, image.Pt(640, 480), cfg.Size())
	assert.Equal(t, "Learn WebGPU", cfg.Title)
	clr, err := cfg.Clear()
	require.NoError(t, err)
	assert.Equal(t, gpu.DefaultClearColor, clr)
}

func TestConfigClearColor(t *testing.T) {
	cfg := &Config{ClearColor: "#336699"}
	clr, err := cfg.Clear()
	require.NoError(t, err)
	assert.InDelta(t, 0.2, clr.R, 1e-6)
	assert.InDelta(t, 0.4, clr.G, 1e-6)
	assert.InDelta(t, 0.6, clr.B, 1e-6)
	assert.InDelta(t, 1.0, clr.A, 1e-6)

	cfg.ClearColor = "not a color"
	_, err = cfg.Clear()
	assert.Error(t, err)
}

func TestStatesString(t *testing.T) {
	assert.Equal(t, "Running", Running.String())
	assert.Equal(t, "States(9)", States(9).String())
}

func TestInitialize(t *testing.T) {
	a, in := newTestApp(t, gputest.DefaultOptions(), "triangle.txt", 0)
	require.NoError(t, a.Initialize())
	assert.Equal(t, Initialized, a.State)
	assert.Equal(t, geom.Triangle(), a.Mesh)
	assert.Equal(t, []string{
		"Instance.CreateSurface",
		"Instance.RequestAdapter",
		"Adapter.RequestDevice",
		"Surface.Configure",
		"Adapter.Release",
		"Instance.Release",
		"Device.CreateShaderModule(colored)",
		"Device.CreateRenderPipeline(colored)",
		"ShaderModule.Release(colored)",
		"Device.CreateBuffer(Vertex buffer, 60)",
		"Queue.WriteBuffer(Vertex buffer, 60)",
		"Device.CreateBuffer(Index buffer, 8)",
		"Queue.WriteBuffer(Index buffer, 8)",
	}, in.Calls)

	lm := in.Device.Desc.RequiredLimits
	require.NotNil(t, lm)
	assert.Equal(t, uint32(2), lm.MaxVertexAttributes)
	assert.Equal(t, uint32(1), lm.MaxVertexBuffers)
	assert.Equal(t, uint32(20), lm.MaxVertexBufferArrayStride)
	assert.Equal(t, uint64(60), lm.MaxBufferSize)
	assert.NotNil(t, in.Device.Desc.DeviceLost)
	assert.NotNil(t, in.Device.Desc.UncapturedError)

	require.NotNil(t, a.Capabilities)
	assert.Equal(t, "Fake Adapter", a.Capabilities.Adapter.Info.Name)

	assert.Error(t, a.Initialize())
}

// The drawing of the three corner triangle file, for each frame.
func TestTriangleScenario(t *testing.T) {
	a, in := newTestApp(t, gputest.DefaultOptions(), "triangle.txt", 0)
	a.Config.MaxFrames = 2
	require.NoError(t, a.Run())
	assert.Equal(t, 2, a.Frames)
	assert.Equal(t, Terminated, a.State)

	ms := a.Mesh
	assert.Len(t, ms.Points, 15)
	assert.Equal(t, []uint16{0, 1, 2}, ms.Indexes)

	assert.Equal(t, 2, in.Count("RenderPass.DrawIndexed(3, 1, 0, 0, 0)"))
	assert.Equal(t, 0, in.Count("RenderPass.Draw(3, 1, 0, 0)"))
	assert.Equal(t, 2, in.Count("Surface.Present"))
	assert.Equal(t, 2, in.Count("Window.PollEvents"))

	// each frame draws exactly once
	first := in.Index("Surface.CurrentTexture")
	present := in.Index("Surface.Present")
	frame := in.Calls[first : present+1]
	draws := 0
	for _, c := range frame {
		if strings.HasPrefix(c, "RenderPass.Draw") {
			draws++
		}
	}
	assert.Equal(t, 1, draws)
}

func TestBuiltinTriangle(t *testing.T) {
	a, in := newTestApp(t, gputest.DefaultOptions(), "", 0)
	a.Config.MaxFrames = 1
	require.NoError(t, a.Run())
	assert.Nil(t, a.Mesh)
	assert.Equal(t, 1, in.Count("Device.CreateRenderPipeline(triangle)"))
	assert.Equal(t, 1, in.Count("RenderPass.Draw(3, 1, 0, 0)"))
	assert.Equal(t, -1, in.Index("Device.CreateBuffer(Vertex buffer, 60)"))
	assert.Zero(t, in.Count("RenderPass.SetVertexBuffer(0, Vertex buffer, 0, 60)"))
}

func TestWindowClose(t *testing.T) {
	a, _ := newTestApp(t, gputest.DefaultOptions(), "triangle.txt", 3)
	require.NoError(t, a.Run())
	assert.Equal(t, 3, a.Frames)
}

func TestTerminateOrder(t *testing.T) {
	a, in := newTestApp(t, gputest.DefaultOptions(), "triangle.txt", 0)
	require.NoError(t, a.Initialize())
	require.NoError(t, a.Tick())
	assert.Equal(t, Running, a.State)
	assert.True(t, a.IsRunning())

	in.Reset()
	a.Terminate()
	a.Terminate()
	assert.Equal(t, []string{
		"Buffer.Release(Vertex buffer)",
		"Buffer.Release(Index buffer)",
		"RenderPipeline.Release(colored)",
		"Surface.Unconfigure",
		"Queue.Release",
		"Surface.Release",
		"Device.Release",
		"Window.Destroy",
	}, in.Calls)
	assert.False(t, a.IsRunning())
	assert.ErrorIs(t, a.Tick(), ErrNotInitialized)
}

func TestTickUninitialized(t *testing.T) {
	a, in := newTestApp(t, gputest.DefaultOptions(), "triangle.txt", 0)
	assert.ErrorIs(t, a.Tick(), ErrNotInitialized)
	assert.False(t, a.IsRunning())
	assert.Empty(t, in.Calls)
}

func TestSkippedFrame(t *testing.T) {
	opts := gputest.DefaultOptions()
	opts.SkipFrames = []int{0, 2}
	a, in := newTestApp(t, opts, "triangle.txt", 0)
	a.Config.MaxFrames = 4
	require.NoError(t, a.Run())
	assert.Equal(t, 4, a.Frames)
	assert.Equal(t, 2, in.Count("Surface.Present"))
	assert.Equal(t, 2, in.Count("RenderPass.DrawIndexed(3, 1, 0, 0, 0)"))
}

func TestAdapterFailure(t *testing.T) {
	opts := gputest.DefaultOptions()
	opts.AdapterStatus = gpu.RequestUnavailable
	a, in := newTestApp(t, opts, "triangle.txt", 0)
	err := a.Initialize()
	assert.ErrorIs(t, err, gpu.ErrRequestFailed)
	assert.Equal(t, Terminated, a.State)
	assert.Equal(t, []string{
		"Instance.CreateSurface",
		"Instance.RequestAdapter",
		"Surface.Release",
		"Instance.Release",
		"Window.Destroy",
	}, in.Calls)
	assert.False(t, a.IsRunning())
}

func TestDeviceFailure(t *testing.T) {
	opts := gputest.DefaultOptions()
	opts.DeviceStatus = gpu.RequestError
	a, in := newTestApp(t, opts, "triangle.txt", 0)
	assert.ErrorIs(t, a.Initialize(), gpu.ErrRequestFailed)
	assert.Equal(t, []string{
		"Surface.Release",
		"Adapter.Release",
		"Instance.Release",
		"Window.Destroy",
	}, in.Calls[len(in.Calls)-4:])
}

func TestPipelineFailure(t *testing.T) {
	opts := gputest.DefaultOptions()
	opts.PipelineError = assert.AnError
	a, in := newTestApp(t, opts, "triangle.txt", 0)
	assert.ErrorIs(t, a.Initialize(), assert.AnError)
	assert.Equal(t, Terminated, a.State)
	assert.Equal(t, []string{assert.AnError.Error()}, in.Device.Errors)
	assert.Equal(t, []string{
		"Surface.Unconfigure",
		"Queue.Release",
		"Surface.Release",
		"Device.Release",
		"Window.Destroy",
	}, in.Calls[len(in.Calls)-5:])
}

func TestGeometryErrors(t *testing.T) {
	a, in := newTestApp(t, gputest.DefaultOptions(), "missing.txt", 0)
	assert.Error(t, a.Initialize())
	assert.Empty(t, in.Calls)

	a, in = newTestApp(t, gputest.DefaultOptions(), "bad_index.txt", 0)
	assert.ErrorIs(t, a.Initialize(), geom.ErrIndexOutOfRange)
	assert.Equal(t, Terminated, a.State)
	assert.Empty(t, in.Calls)
}

func TestReport(t *testing.T) {
	a, _ := newTestApp(t, gputest.DefaultOptions(), "triangle.txt", 0)
	a.Config.Report = filepath.Join(t.TempDir(), "caps.yaml")
	require.NoError(t, a.Initialize())
	assert.FileExists(t, a.Config.Report)
	a.Terminate()
}

func TestDeviceFormat(t *testing.T) {
	opts := gputest.DefaultOptions()
	opts.Format = wgpu.TextureFormatRGBA8Unorm
	a, in := newTestApp(t, opts, "triangle.txt", 0)
	require.NoError(t, a.Initialize())
	assert.Equal(t, wgpu.TextureFormatRGBA8Unorm, in.Surface.Config.Format)
	assert.Equal(t, wgpu.TextureFormatRGBA8Unorm, in.Device.Pipelines[0].Targets[0].Format)
	a.Terminate()
}

func compileShader(t *testing.T, name, code string) {
	spirv, err := naga.Compile(code)
	if err != nil {
		msg := err.Error()
		if strings.Contains(msg, "not yet implemented") || strings.Contains(msg, "not supported") {
			t.Skipf("Skipping %s: naga feature not yet implemented: %v", name, err)
		}
		t.Fatalf("failed to compile %s shader: %v", name, err)
	}
	require.GreaterOrEqual(t, len(spirv), 4)
	magic := uint32(spirv[0]) | uint32(spirv[1])<<8 | uint32(spirv[2])<<16 | uint32(spirv[3])<<24
	assert.Equal(t, uint32(0x07230203), magic)
}

func TestShadersCompile(t *testing.T) {
	compileShader(t, "triangle", triangleShader)
	compileShader(t, "colored", coloredShader)
}
