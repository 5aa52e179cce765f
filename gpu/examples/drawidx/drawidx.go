// Copyright (c) 2024, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Command drawidx draws an indexed square with colored corners.
package main

import (
	_ "embed"
	"fmt"
	"runtime"
	"strings"

	"cogentcore.org/core/base/errors"
	"cogentcore.org/learngpu/app"
	"cogentcore.org/learngpu/geom"
	"cogentcore.org/learngpu/gpu"
)

//go:embed square.txt
var square string

func init() {
	// must lock main thread for gpu!
	runtime.LockOSThread()
}

func main() {
	gpu.Debug = true
	ms, err := new(geom.Loader).Read(strings.NewReader(square))
	if errors.Log(err) != nil {
		return
	}
	fmt.Printf("vertices: %d  indexes: %d\n", ms.NumVertices(), ms.NumIndexes())

	cfg := app.NewConfig()
	cfg.Title = "Draw Square Indexed"
	cfg.ClearColor = "#323232"
	cfg.Debug = true
	a := app.New(cfg)
	a.Mesh = ms
	errors.Log(a.Run())
}
