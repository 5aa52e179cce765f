// Copyright (c) 2024, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package app

import (
	"fmt"
	"io"

	"cogentcore.org/core/base/errors"
	"cogentcore.org/learngpu/gpu"
)

// openDevice acquires an adapter and device without any surface.
// The returned release function releases all of them.
func openDevice(inst gpu.Instance, label string) (gpu.Adapter, gpu.Device, func(), error) {
	ad, err := gpu.RequestAdapterSync(inst, &gpu.AdapterOptions{})
	if err != nil {
		inst.Release()
		return nil, nil, nil, err
	}
	dev, err := gpu.RequestDeviceSync(ad, &gpu.DeviceDescriptor{
		Label:           label,
		DeviceLost:      deviceLost,
		UncapturedError: uncapturedError,
	})
	if err != nil {
		ad.Release()
		inst.Release()
		return nil, nil, nil, err
	}
	release := func() {
		dev.Queue().Release()
		dev.Release()
		ad.Release()
		inst.Release()
	}
	return ad, dev, release, nil
}

// Inspect acquires an adapter and a device with default limits,
// writes their capabilities to w and saves them to Config.Report
// if it is set.
func Inspect(cfg *Config, inst gpu.Instance, w io.Writer) (*gpu.Capabilities, error) {
	ad, dev, release, err := openDevice(inst, "inspect device")
	if err != nil {
		return nil, err
	}
	defer release()
	cp := &gpu.Capabilities{Adapter: gpu.InspectAdapter(ad), Device: gpu.InspectDevice(dev)}
	if _, err := cp.WriteTo(w); err != nil {
		return cp, err
	}
	if cfg.Report != "" {
		if err := cp.Save(cfg.Report); err != nil {
			return cp, err
		}
	}
	return cp, nil
}

// BufferBytes is the number of bytes copied by [Buffers].
const BufferBytes = 16

// Buffers writes the bytes 0 to 15 to a buffer, copies them on the
// GPU to a second buffer, reads that one back and writes the bytes to w.
func Buffers(inst gpu.Instance, w io.Writer) ([]byte, error) {
	_, dev, release, err := openDevice(inst, "buffers device")
	if err != nil {
		return nil, err
	}
	defer release()

	numbers := make([]byte, BufferBytes)
	for i := range numbers {
		numbers[i] = byte(i)
	}
	src, err := gpu.UploadBuffer(dev, "Input buffer", gpu.CopyBuffer, numbers)
	if err != nil {
		return nil, err
	}
	defer src.Release()
	dst, err := gpu.NewBuffer(dev, "Output buffer", gpu.ReadBuffer, BufferBytes)
	if err != nil {
		return nil, err
	}
	defer dst.Release()

	ce, err := dev.CreateCommandEncoder("Buffer copy encoder")
	if errors.Log(err) != nil {
		return nil, err
	}
	ce.CopyBufferToBuffer(src, 0, dst, 0, BufferBytes)
	cmd, err := ce.Finish("Buffer copy commands")
	ce.Release()
	if errors.Log(err) != nil {
		return nil, err
	}
	dev.Queue().Submit(cmd)
	cmd.Release()

	data, err := gpu.ReadBufferSync(dev, dst, 0, BufferBytes)
	if err != nil {
		return nil, err
	}
	fmt.Fprintf(w, "bufferData = [")
	for i, b := range data {
		if i > 0 {
			fmt.Fprint(w, ", ")
		}
		fmt.Fprint(w, b)
	}
	fmt.Fprintln(w, "]")
	return data, nil
}
