// Copyright (c) 2024, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Command learngpu draws geometry from a text file with WebGPU,
// and inspects the WebGPU adapter and device.
package main

import (
	"log/slog"
	"os"
	"runtime"

	"cogentcore.org/core/cli"
	"cogentcore.org/learngpu/app"
	"cogentcore.org/learngpu/gpu"
)

func init() {
	// must lock main thread for gpu!
	runtime.LockOSThread()
}

func main() {
	opts := cli.DefaultOptions("learngpu", "Draws geometry with WebGPU, and inspects the WebGPU adapter and device.")
	cli.Run(opts, &app.Config{},
		&cli.Cmd[*app.Config]{Func: Run, Name: "run", Doc: "Run opens a window and draws the geometry file, or a built-in triangle, until the window is closed.", Root: true},
		&cli.Cmd[*app.Config]{Func: Inspect, Name: "inspect", Doc: "Inspect prints the capabilities of the default adapter and device."},
		&cli.Cmd[*app.Config]{Func: Buffers, Name: "buffers", Doc: "Buffers copies a buffer on the GPU and prints the contents read back."},
	)
}

func setDebug(c *app.Config) {
	if !c.Debug {
		return
	}
	gpu.Debug = true
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug})))
}

// Run opens a window and draws the geometry until the window is closed.
func Run(c *app.Config) error {
	setDebug(c)
	return app.New(c).Run()
}

// Inspect prints the adapter and device capabilities.
func Inspect(c *app.Config) error {
	setDebug(c)
	_, err := app.Inspect(c, gpu.NewInstance(), os.Stdout)
	return err
}

// Buffers runs the GPU buffer copy and read back.
func Buffers(c *app.Config) error {
	setDebug(c)
	_, err := app.Buffers(gpu.NewInstance(), os.Stdout)
	return err
}
