// Copyright (c) 2024, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package app

import (
	"fmt"
	"image"

	"cogentcore.org/core/cli"
	"cogentcore.org/core/colors"
	"cogentcore.org/learngpu/gpu"
	"github.com/cogentcore/webgpu/wgpu"
)

// Config is the configuration for the learngpu app and commands.
type Config struct {

	// Geometry is the geometry file to draw, with [points] and
	// [indices] sections. The built-in triangle is drawn if it is empty.
	Geometry string `posarg:"0" required:"-"`

	// Width of the window in pixels.
	Width int `default:"640"`

	// Height of the window in pixels.
	Height int `default:"480"`

	// Title of the window.
	Title string `default:"Learn WebGPU"`

	// ClearColor is the hex background color, such as #336699.
	// Frames are cleared to a red default if it is empty.
	ClearColor string `flag:"c,clear"`

	// Strict makes any malformed line in the geometry file an error,
	// instead of a warning.
	Strict bool

	// Debug turns on the gpu debug output and the frame rate report.
	Debug bool `flag:"d,debug"`

	// Inspect prints the adapter and device capabilities on startup.
	Inspect bool `cmd:"run"`

	// Report is an optional file to save the adapter and device
	// capabilities to, as .toml, .yaml or text.
	Report string `flag:"r,report"`

	// MaxFrames stops after this many frames, if > 0.
	MaxFrames int `cmd:"run"`
}

// NewConfig returns a new Config with the default values.
func NewConfig() *Config {
	c := &Config{}
	cli.SetFromDefaults(c)
	return c
}

// Size returns the window size.
func (c *Config) Size() image.Point {
	return image.Pt(c.Width, c.Height)
}

// Clear returns the color to clear frames to.
func (c *Config) Clear() (wgpu.Color, error) {
	if c.ClearColor == "" {
		return gpu.DefaultClearColor, nil
	}
	clr, err := colors.FromHex(c.ClearColor)
	if err != nil {
		return gpu.DefaultClearColor, fmt.Errorf("app: clear color %q: %w", c.ClearColor, err)
	}
	return wgpu.Color{
		R: float64(clr.R) / 255,
		G: float64(clr.G) / 255,
		B: float64(clr.B) / 255,
		A: float64(clr.A) / 255,
	}, nil
}
