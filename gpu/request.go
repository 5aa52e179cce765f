// Copyright (c) 2024, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package gpu

import (
	"fmt"
	"log/slog"
	"sync"

	"cogentcore.org/core/base/errors"
)

// MaxRequestPolls is the number of times a blocking request
// processes events waiting for its completion before giving up.
var MaxRequestPolls = 100000

var (
	// ErrRequestFailed is returned when a request completes
	// without success.
	ErrRequestFailed = errors.New("gpu: request failed")

	// ErrRequestIncomplete is returned when a request never completes.
	ErrRequestIncomplete = errors.New("gpu: request did not complete")
)

// request holds the single completion of a callback-based request.
// The first completion wins, later ones are logged and dropped.
type request[T any] struct {
	name    string
	once    sync.Once
	done    chan struct{}
	status  RequestStatus
	value   T
	message string
}

func newRequest[T any](name string) *request[T] {
	return &request[T]{name: name, done: make(chan struct{})}
}

// complete is the callback passed to the request.
func (rq *request[T]) complete(status RequestStatus, value T, msg string) {
	first := false
	rq.once.Do(func() {
		rq.status, rq.value, rq.message = status, value, msg
		first = true
		close(rq.done)
	})
	if !first {
		slog.Warn("gpu: ignoring repeated completion", "request", rq.name, "status", status)
	}
}

func (rq *request[T]) isDone() bool {
	select {
	case <-rq.done:
		return true
	default:
		return false
	}
}

// wait calls poll until the request completes,
// at most [MaxRequestPolls] times.
func (rq *request[T]) wait(poll func()) error {
	for range MaxRequestPolls {
		if rq.isDone() {
			return nil
		}
		poll()
	}
	if rq.isDone() {
		return nil
	}
	return fmt.Errorf("%w: %s", ErrRequestIncomplete, rq.name)
}

// result returns the value of a completed request, or an error
// if the request was not successful.
func (rq *request[T]) result() (T, error) {
	var zero T
	if rq.status != RequestSuccess {
		slog.Error("Could not get WebGPU "+rq.name, "status", rq.status, "message", rq.message)
		return zero, fmt.Errorf("%w: %s: %s %s", ErrRequestFailed, rq.name, rq.status, rq.message)
	}
	if any(rq.value) == nil {
		slog.Error("Could not get WebGPU "+rq.name, "status", rq.status, "message", "no "+rq.name+" returned")
		return zero, fmt.Errorf("%w: %s: none returned", ErrRequestFailed, rq.name)
	}
	return rq.value, nil
}

// RequestAdapterSync requests an adapter and blocks until the request
// completes. On failure it returns a nil [Adapter] and an error.
func RequestAdapterSync(inst Instance, opts *AdapterOptions) (Adapter, error) {
	rq := newRequest[Adapter]("adapter")
	inst.RequestAdapter(opts, rq.complete)
	if err := rq.wait(inst.ProcessEvents); err != nil {
		return nil, errors.Log(err)
	}
	return rq.result()
}

// RequestDeviceSync requests a device and blocks until the request
// completes. On failure it returns a nil [Device] and an error.
func RequestDeviceSync(ad Adapter, desc *DeviceDescriptor) (Device, error) {
	rq := newRequest[Device]("device")
	ad.RequestDevice(desc, rq.complete)
	if err := rq.wait(ad.ProcessEvents); err != nil {
		return nil, errors.Log(err)
	}
	return rq.result()
}
