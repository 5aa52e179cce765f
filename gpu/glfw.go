// Copyright (c) 2022, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

//go:build !offscreen && ((darwin && !ios) || windows || (linux && !android) || dragonfly || openbsd)

package gpu

import (
	"image"

	"cogentcore.org/core/base/errors"
	"github.com/cogentcore/webgpu/wgpu"
	"github.com/cogentcore/webgpu/wgpuglfw"
	"github.com/go-gl/glfw/v3.3/glfw"
)

// note: this file contains the glfw dependencies, for desktop platform builds.

// GLFWWindow is a [Window] made with glfw.
type GLFWWindow struct {
	window *glfw.Window
}

// NewGLFWWindow initializes glfw and opens a fixed size window with
// no client graphics API, for rendering with WebGPU.
// IMPORTANT: must be called on the main initial thread!
func NewGLFWWindow(size image.Point, title string) (Window, error) {
	if err := glfw.Init(); err != nil {
		return nil, errors.Log(err)
	}
	glfw.WindowHint(glfw.ClientAPI, glfw.NoAPI)
	glfw.WindowHint(glfw.Resizable, glfw.False)
	window, err := glfw.CreateWindow(size.X, size.Y, title, nil, nil)
	if err != nil {
		glfw.Terminate()
		return nil, errors.Log(err)
	}
	return &GLFWWindow{window: window}, nil
}

func (w *GLFWWindow) ShouldClose() bool {
	return w.window.ShouldClose()
}

func (w *GLFWWindow) PollEvents() {
	glfw.PollEvents()
}

func (w *GLFWWindow) Size() image.Point {
	x, y := w.window.GetFramebufferSize()
	return image.Point{x, y}
}

func (w *GLFWWindow) SurfaceDescriptor() *wgpu.SurfaceDescriptor {
	return wgpuglfw.GetSurfaceDescriptor(w.window)
}

// Destroy destroys the window and terminates glfw.
// IMPORTANT: must be called on the main initial thread!
func (w *GLFWWindow) Destroy() {
	w.window.Destroy()
	glfw.Terminate()
}
