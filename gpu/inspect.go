// Copyright (c) 2024, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package gpu

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"reflect"
	"strings"

	"cogentcore.org/core/base/errors"
	"github.com/cogentcore/webgpu/wgpu"
	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// Report lists the capabilities of an adapter or device.
type Report struct {
	// Info is only available for an adapter.
	Info *AdapterInfo `toml:"info,omitempty" yaml:"info,omitempty"`

	Limits Limits `toml:"limits" yaml:"limits"`

	// Features are the feature names in hex.
	Features []string `toml:"features" yaml:"features"`
}

// InspectAdapter returns the capabilities of the adapter.
func InspectAdapter(ad Adapter) *Report {
	info := ad.Info()
	return &Report{Info: &info, Limits: ad.Limits(), Features: featureNames(ad.Features())}
}

// InspectDevice returns the capabilities of the device.
func InspectDevice(dev Device) *Report {
	return &Report{Limits: dev.Limits(), Features: featureNames(dev.Features())}
}

func featureNames(fs []wgpu.FeatureName) []string {
	nms := make([]string, len(fs))
	for i, f := range fs {
		nms[i] = fmt.Sprintf("0x%x", uint32(f))
	}
	return nms
}

// Capabilities is the report for an adapter and the device
// requested from it.
type Capabilities struct {
	Adapter *Report `toml:"adapter,omitempty" yaml:"adapter,omitempty"`
	Device  *Report `toml:"device,omitempty" yaml:"device,omitempty"`
}

// WriteTo writes the capabilities as indented text.
func (cp *Capabilities) WriteTo(w io.Writer) (int64, error) {
	var b strings.Builder
	if cp.Adapter != nil {
		cp.Adapter.write(&b, "Adapter")
	}
	if cp.Device != nil {
		cp.Device.write(&b, "Device")
	}
	n, err := io.WriteString(w, b.String())
	return int64(n), err
}

func (rp *Report) write(b *strings.Builder, kind string) {
	if in := rp.Info; in != nil {
		fmt.Fprintf(b, "%s properties:\n", kind)
		fmt.Fprintf(b, " - vendorID: %d\n", in.VendorID)
		fmt.Fprintf(b, " - vendorName: %s\n", in.Vendor)
		fmt.Fprintf(b, " - architecture: %s\n", in.Architecture)
		fmt.Fprintf(b, " - deviceID: %d\n", in.DeviceID)
		fmt.Fprintf(b, " - name: %s\n", in.Name)
		fmt.Fprintf(b, " - driverDescription: %s\n", in.Driver)
		fmt.Fprintf(b, " - adapterType: %s\n", in.AdapterType)
		fmt.Fprintf(b, " - backendType: %s\n", in.BackendType)
	}
	fmt.Fprintf(b, "%s limits:\n", kind)
	lv := reflect.ValueOf(rp.Limits)
	lt := lv.Type()
	for i := range lt.NumField() {
		f := lt.Field(i)
		if !f.IsExported() {
			continue
		}
		nm := strings.ToLower(f.Name[:1]) + f.Name[1:]
		fmt.Fprintf(b, " - %s: %v\n", nm, lv.Field(i).Interface())
	}
	fmt.Fprintf(b, "%s features:\n", kind)
	for _, f := range rp.Features {
		fmt.Fprintf(b, " - %s\n", f)
	}
}

// Save writes the capabilities to the given file, as TOML or YAML
// according to its extension, or as text for any other extension.
func (cp *Capabilities) Save(filename string) error {
	var b []byte
	var err error
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".toml":
		b, err = toml.Marshal(cp)
	case ".yaml", ".yml":
		b, err = yaml.Marshal(cp)
	default:
		var sb strings.Builder
		_, err = cp.WriteTo(&sb)
		b = []byte(sb.String())
	}
	if err != nil {
		return errors.Log(err)
	}
	return errors.Log(os.WriteFile(filename, b, 0666))
}
