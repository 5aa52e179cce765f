// Copyright (c) 2024, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

//go:build offscreen || !((darwin && !ios) || windows || (linux && !android) || dragonfly || openbsd)

package gpu

import (
	"image"

	"cogentcore.org/core/base/errors"
)

// NewGLFWWindow is not available in offscreen builds
// or on platforms without glfw.
func NewGLFWWindow(size image.Point, title string) (Window, error) {
	return nil, errors.New("gpu: no window system in this build")
}
