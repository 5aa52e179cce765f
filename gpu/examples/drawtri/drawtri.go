// Copyright (c) 2024, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Command drawtri draws a triangle generated in the vertex shader,
// without any vertex buffer.
package main

import (
	"runtime"

	"cogentcore.org/core/base/errors"
	"cogentcore.org/learngpu/app"
	"cogentcore.org/learngpu/gpu"
)

func init() {
	// must lock main thread for gpu!
	runtime.LockOSThread()
}

func main() {
	gpu.Debug = true
	cfg := app.NewConfig()
	cfg.Title = "Draw Triangle"
	cfg.Debug = true
	errors.Log(app.New(cfg).Run())
}
