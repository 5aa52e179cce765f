// Copyright (c) 2024, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package geom provides the vertex data model for 2D colored meshes,
// and a loader for the simple sectioned text format they are stored in.
package geom

import (
	"fmt"

	"cogentcore.org/core/base/errors"
	"cogentcore.org/core/math32"
)

// FloatsPerVertex is the number of float32 values per vertex
// in the flat [Mesh.Points] array: x, y, r, g, b.
const FloatsPerVertex = 5

// IndexesPerLine is the number of indexes on each line
// of the [indices] section, one triangle per line.
const IndexesPerLine = 3

// Vertex is one vertex as laid out in GPU memory: a 2D position
// followed by an RGB color, tightly packed (20 bytes).
type Vertex struct {
	Pos   math32.Vector2
	Color math32.Vector3
}

// ErrIndexOutOfRange is returned by [Mesh.Validate] when an index
// refers past the end of the vertex array.
var ErrIndexOutOfRange = errors.New("geom: index out of range")

// Mesh holds vertex attribute data and an optional triangle index list,
// both in file order. Points is flat with [FloatsPerVertex] values per vertex.
type Mesh struct {
	Points  []float32
	Indexes []uint16
}

// NumVertices returns the number of complete vertices in Points.
func (ms *Mesh) NumVertices() int {
	return len(ms.Points) / FloatsPerVertex
}

// NumIndexes returns the number of indexes.
func (ms *Mesh) NumIndexes() int {
	return len(ms.Indexes)
}

// IsIndexed returns true if the mesh has an index list.
func (ms *Mesh) IsIndexed() bool {
	return len(ms.Indexes) > 0
}

// IsEmpty returns true if there are no vertices at all.
func (ms *Mesh) IsEmpty() bool {
	return len(ms.Points) == 0
}

// Vertex returns the i'th vertex.
func (ms *Mesh) Vertex(i int) Vertex {
	p := ms.Points[i*FloatsPerVertex:]
	return Vertex{
		Pos:   math32.Vec2(p[0], p[1]),
		Color: math32.Vec3(p[2], p[3], p[4]),
	}
}

// Vertices returns the points as a slice of [Vertex].
func (ms *Mesh) Vertices() []Vertex {
	n := ms.NumVertices()
	vs := make([]Vertex, n)
	for i := range n {
		vs[i] = ms.Vertex(i)
	}
	return vs
}

// AddVertex appends given vertex to Points.
func (ms *Mesh) AddVertex(v Vertex) *Mesh {
	ms.Points = append(ms.Points, v.Pos.X, v.Pos.Y, v.Color.X, v.Color.Y, v.Color.Z)
	return ms
}

// AddTriangle appends one triangle to Indexes.
func (ms *Mesh) AddTriangle(a, b, c uint16) *Mesh {
	ms.Indexes = append(ms.Indexes, a, b, c)
	return ms
}

// Validate checks that Points holds whole vertices and that every
// index refers to an existing vertex.
func (ms *Mesh) Validate() error {
	if len(ms.Points)%FloatsPerVertex != 0 {
		return fmt.Errorf("geom: %d point values is not a multiple of %d", len(ms.Points), FloatsPerVertex)
	}
	nv := ms.NumVertices()
	for i, ix := range ms.Indexes {
		if int(ix) >= nv {
			return fmt.Errorf("%w: index %d at position %d, only %d vertices", ErrIndexOutOfRange, ix, i, nv)
		}
	}
	return nil
}

// Triangle returns the built-in example mesh: one triangle with
// red, green and blue corners, drawn with three indexes.
func Triangle() *Mesh {
	ms := &Mesh{}
	ms.AddVertex(Vertex{Pos: math32.Vec2(-0.5, -0.5), Color: math32.Vec3(1, 0, 0)})
	ms.AddVertex(Vertex{Pos: math32.Vec2(0.5, -0.5), Color: math32.Vec3(0, 1, 0)})
	ms.AddVertex(Vertex{Pos: math32.Vec2(0, 0.5), Color: math32.Vec3(0, 0, 1)})
	return ms.AddTriangle(0, 1, 2)
}
