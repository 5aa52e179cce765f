// Copyright (c) 2024, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package gpu negotiates a WebGPU adapter and device, builds render
// pipelines, uploads vertex and index buffers, and records the frames
// drawn to a window surface. All access to the GPU goes through the
// small API in backend.go, implemented on the native wgpu library by
// [NewInstance] and faked for tests by package gputest.
package gpu

// Debug is whether to print debugging information.
var Debug = false
