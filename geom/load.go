// Copyright (c) 2024, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package geom

import (
	"bufio"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"
)

// Sections are the sections of a geometry file.
type Sections int32

const (
	// NoSection is the state before any section header is seen.
	NoSection Sections = iota

	// PointsSection holds one vertex per line: x y r g b.
	PointsSection

	// IndicesSection holds one triangle per line: i0 i1 i2.
	IndicesSection

	// UnknownSection is any other bracketed header; its lines are skipped.
	UnknownSection
)

var sectionHeaders = map[string]Sections{
	"[points]":  PointsSection,
	"[indices]": IndicesSection,
}

func (sc Sections) String() string {
	switch sc {
	case PointsSection:
		return "points"
	case IndicesSection:
		return "indices"
	case UnknownSection:
		return "unknown"
	}
	return "none"
}

// ParseError records a line of a geometry file that could not be used.
type ParseError struct {
	Filename string
	Line     int
	Text     string
	Err      error
}

func (pe *ParseError) Error() string {
	fn := pe.Filename
	if fn == "" {
		fn = "geometry"
	}
	return fmt.Sprintf("%s:%d: %v: %q", fn, pe.Line, pe.Err, pe.Text)
}

func (pe *ParseError) Unwrap() error { return pe.Err }

// Loader reads geometry files. The zero value is a lenient loader:
// malformed lines are logged, recorded in Issues, and skipped whole.
type Loader struct {

	// Strict makes the first malformed line a returned error
	// instead of a logged and skipped one.
	Strict bool

	// Issues are the lines skipped during the last Read or Load.
	Issues []*ParseError
}

// Load reads the geometry file at path with a default (lenient) [Loader].
func Load(path string) (*Mesh, error) {
	var ld Loader
	return ld.Load(path)
}

// Load reads the geometry file at path.
// Failure to open the file is returned as an error with no data.
func (ld *Loader) Load(path string) (*Mesh, error) {
	f, err := os.Open(path)
	if err != nil {
		slog.Error("geom: could not load geometry", "file", path, "err", err)
		return nil, err
	}
	defer f.Close()
	return ld.read(f, path)
}

// Read reads geometry from r.
func (ld *Loader) Read(r io.Reader) (*Mesh, error) {
	return ld.read(r, "")
}

func (ld *Loader) read(r io.Reader, filename string) (*Mesh, error) {
	ld.Issues = nil
	ms := &Mesh{}
	sect := NoSection
	sc := bufio.NewScanner(r)
	ln := 0
	for sc.Scan() {
		ln++
		line := strings.TrimSpace(strings.TrimSuffix(sc.Text(), "\r"))
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if strings.HasPrefix(line, "[") {
			s, ok := sectionHeaders[line]
			if !ok {
				s = UnknownSection
				if err := ld.issue(filename, ln, line, fmt.Errorf("unknown section header")); err != nil {
					return nil, err
				}
			}
			sect = s
			continue
		}
		var err error
		switch sect {
		case PointsSection:
			err = parsePoints(ms, line)
		case IndicesSection:
			err = parseIndexes(ms, line)
		case UnknownSection:
			continue // already reported at the header
		default:
			err = fmt.Errorf("data outside of any section")
		}
		if err != nil {
			if err := ld.issue(filename, ln, line, err); err != nil {
				return nil, err
			}
		}
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	return ms, nil
}

// issue records a skipped line, returning it as an error in Strict mode.
func (ld *Loader) issue(filename string, ln int, text string, err error) error {
	pe := &ParseError{Filename: filename, Line: ln, Text: text, Err: err}
	if ld.Strict {
		return pe
	}
	slog.Warn("geom: skipping line", "file", filename, "line", ln, "err", err)
	ld.Issues = append(ld.Issues, pe)
	return nil
}

// parsePoints appends one vertex, or nothing if the line is malformed.
func parsePoints(ms *Mesh, line string) error {
	fs := strings.Fields(line)
	if len(fs) != FloatsPerVertex {
		return fmt.Errorf("expected %d values, got %d", FloatsPerVertex, len(fs))
	}
	var v [FloatsPerVertex]float32
	for i, f := range fs {
		x, err := strconv.ParseFloat(f, 32)
		if err != nil {
			return err
		}
		v[i] = float32(x)
	}
	ms.Points = append(ms.Points, v[:]...)
	return nil
}

// parseIndexes appends one triangle, or nothing if the line is malformed.
func parseIndexes(ms *Mesh, line string) error {
	fs := strings.Fields(line)
	if len(fs) != IndexesPerLine {
		return fmt.Errorf("expected %d indexes, got %d", IndexesPerLine, len(fs))
	}
	var ix [IndexesPerLine]uint16
	for i, f := range fs {
		x, err := strconv.ParseUint(f, 10, 16)
		if err != nil {
			return err
		}
		ix[i] = uint16(x)
	}
	ms.Indexes = append(ms.Indexes, ix[:]...)
	return nil
}
