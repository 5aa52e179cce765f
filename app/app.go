// Copyright (c) 2024, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package app provides the learngpu application, which draws one mesh
// to a window with WebGPU until the window is closed.
package app

import (
	_ "embed"
	"fmt"
	"image"
	"log/slog"
	"os"
	"time"

	"cogentcore.org/core/base/errors"
	"cogentcore.org/learngpu/geom"
	"cogentcore.org/learngpu/gpu"
)

//go:embed shaders/triangle.wgsl
var triangleShader string

//go:embed shaders/colored.wgsl
var coloredShader string

// ErrNotInitialized is returned by [App.Tick] when the app is not
// initialized, or already terminated.
var ErrNotInitialized = errors.New("app: not initialized")

// States are the lifecycle states of an [App].
type States int32

const (
	Uninitialized States = iota
	Initialized
	Running
	Terminated
)

func (st States) String() string {
	switch st {
	case Uninitialized:
		return "Uninitialized"
	case Initialized:
		return "Initialized"
	case Running:
		return "Running"
	case Terminated:
		return "Terminated"
	}
	return fmt.Sprintf("States(%d)", int32(st))
}

// App owns a window and every GPU object used to draw to it,
// and renders one frame per [App.Tick].
type App struct {
	Config *Config

	// Mesh is the geometry to draw. If nil, it is loaded from
	// Config.Geometry on Initialize, and if that is empty too the
	// built-in triangle shader is drawn without vertex buffers.
	Mesh *geom.Mesh

	// NewWindow opens the window. It defaults to [gpu.NewGLFWWindow].
	NewWindow func(size image.Point, title string) (gpu.Window, error)

	// NewInstance creates the GPU instance. It defaults to [gpu.NewInstance].
	NewInstance func() gpu.Instance

	// State is the current lifecycle state.
	State States

	Window gpu.Window
	System *gpu.GraphicsSystem

	// Capabilities of the adapter and device, set on Initialize.
	Capabilities *gpu.Capabilities

	// Frames is the number of frames ticked so far.
	Frames int

	instance gpu.Instance
	adapter  gpu.Adapter
	surface  gpu.Surface
}

// New returns a new App for given config, using glfw and wgpu.
func New(cfg *Config) *App {
	return &App{
		Config:      cfg,
		NewWindow:   gpu.NewGLFWWindow,
		NewInstance: gpu.NewInstance,
	}
}

// Initialize opens the window, acquires the device, configures the
// surface, builds the pipeline and uploads the mesh. If any step fails,
// everything acquired so far is released, the App is Terminated and
// the error is returned.
func (a *App) Initialize() error {
	if a.State != Uninitialized {
		return fmt.Errorf("app: Initialize when %s", a.State)
	}
	if err := a.initialize(); err != nil {
		a.release()
		a.State = Terminated
		return err
	}
	a.State = Initialized
	return nil
}

func (a *App) initialize() error {
	cfg := a.Config
	if a.Mesh == nil && cfg.Geometry != "" {
		ld := &geom.Loader{Strict: cfg.Strict}
		ms, err := ld.Load(cfg.Geometry)
		if err != nil {
			return err
		}
		a.Mesh = ms
	}
	if a.Mesh != nil {
		if err := a.Mesh.Validate(); err != nil {
			return errors.Log(err)
		}
	}
	clr, err := cfg.Clear()
	if err != nil {
		return errors.Log(err)
	}

	a.Window, err = a.NewWindow(cfg.Size(), cfg.Title)
	if err != nil {
		a.Window = nil
		return fmt.Errorf("app: could not open window: %w", err)
	}
	a.instance = a.NewInstance()
	if a.instance == nil {
		return errors.Log(errors.New("app: could not create WebGPU instance"))
	}
	a.surface, err = a.instance.CreateSurface(a.Window)
	if errors.Log(err) != nil {
		return err
	}
	a.adapter, err = gpu.RequestAdapterSync(a.instance, &gpu.AdapterOptions{CompatibleSurface: a.surface})
	if err != nil {
		return err
	}

	pl := a.pipeline()
	limits := gpu.RequiredLimitsFor(a.adapter.Limits(), pl.Buffers, a.maxBufferSize())
	dev, err := gpu.RequestDeviceSync(a.adapter, &gpu.DeviceDescriptor{
		Label:           "learngpu device",
		RequiredLimits:  &limits,
		DeviceLost:      deviceLost,
		UncapturedError: uncapturedError,
	})
	if err != nil {
		return err
	}

	format := gpu.NewSurfaceFormat(a.Window.Size(), a.surface.PreferredFormat(a.adapter))
	a.System = gpu.NewGraphicsSystem("learngpu", a.adapter, dev, a.surface, format)
	a.surface = nil // owned by System now
	a.System.SetClearColor(clr)

	a.Capabilities = &gpu.Capabilities{Adapter: gpu.InspectAdapter(a.adapter), Device: gpu.InspectDevice(dev)}
	if cfg.Inspect {
		a.Capabilities.WriteTo(os.Stdout)
	}
	if cfg.Report != "" {
		errors.Log(a.Capabilities.Save(cfg.Report))
	}
	// only needed to acquire the device and configure the surface
	a.adapter.Release()
	a.adapter = nil
	a.instance.Release()
	a.instance = nil

	if err := a.System.SetPipeline(pl); err != nil {
		return err
	}
	if a.Mesh == nil {
		a.System.NumVertices = 3
		return nil
	}
	if err := gpu.SetVertices(a.System, a.Mesh.Points, a.Mesh.NumVertices()); err != nil {
		return err
	}
	if a.Mesh.IsIndexed() {
		return a.System.SetIndexes(a.Mesh.Indexes)
	}
	return nil
}

// pipeline returns the pipeline for drawing the Mesh.
func (a *App) pipeline() *gpu.GraphicsPipeline {
	if a.Mesh == nil {
		return gpu.NewGraphicsPipeline("triangle", triangleShader, 0)
	}
	pl := gpu.NewGraphicsPipeline("colored", coloredShader, 0)
	pl.SetVertexBuffers(gpu.VertexLayout(gpu.Float32Vector2, gpu.Float32Vector3))
	return pl
}

// maxBufferSize returns the largest buffer size needed for the Mesh.
func (a *App) maxBufferSize() uint64 {
	if a.Mesh == nil {
		return 0
	}
	return uint64(max(4*len(a.Mesh.Points), 2*len(a.Mesh.Indexes)))
}

func deviceLost(reason, msg string) {
	slog.Error("WebGPU device lost", "reason", reason, "message", msg)
}

func uncapturedError(kind, msg string) {
	slog.Error("Uncaptured WebGPU device error", "type", kind, "message", msg)
}

// Tick processes window events and renders one frame.
// A frame without a surface texture is skipped, and is not an error.
func (a *App) Tick() error {
	switch a.State {
	case Initialized:
		a.State = Running
	case Running:
	default:
		return ErrNotInitialized
	}
	a.Window.PollEvents()
	if err := a.System.RenderFrame(); err != nil {
		return err
	}
	a.Frames++
	return nil
}

// IsRunning returns true until the window has been asked to close,
// or Config.MaxFrames have been ticked.
func (a *App) IsRunning() bool {
	if a.State != Initialized && a.State != Running {
		return false
	}
	if a.Config.MaxFrames > 0 && a.Frames >= a.Config.MaxFrames {
		return false
	}
	return !a.Window.ShouldClose()
}

// Terminate releases all of the GPU objects and destroys the window.
// It only does anything the first time it is called.
func (a *App) Terminate() {
	if a.State == Terminated {
		return
	}
	a.release()
	a.State = Terminated
}

// release releases everything that has been acquired, in reverse order.
func (a *App) release() {
	if a.System != nil {
		a.System.Release()
		a.System = nil
	}
	if a.surface != nil {
		a.surface.Release()
		a.surface = nil
	}
	if a.adapter != nil {
		a.adapter.Release()
		a.adapter = nil
	}
	if a.instance != nil {
		a.instance.Release()
		a.instance = nil
	}
	if a.Window != nil {
		a.Window.Destroy()
		a.Window = nil
	}
}

// Run initializes the app, ticks it while it is running and
// terminates it.
func (a *App) Run() error {
	if err := a.Initialize(); err != nil {
		return err
	}
	defer a.Terminate()

	frameCount := 0
	stTime := time.Now()
	for a.IsRunning() {
		if err := a.Tick(); err != nil {
			return err
		}
		if !a.Config.Debug {
			continue
		}
		frameCount++
		eTime := time.Now()
		dur := float64(eTime.Sub(stTime)) / float64(time.Second)
		if dur > 10 {
			fps := float64(frameCount) / dur
			fmt.Printf("fps: %.0f\n", fps)
			frameCount = 0
			stTime = eTime
		}
	}
	return nil
}
