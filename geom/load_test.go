// Copyright (c) 2024, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package geom

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"testing"
	"unsafe"

	"cogentcore.org/core/math32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVertexSize(t *testing.T) {
	assert.Equal(t, uintptr(20), unsafe.Sizeof(Vertex{}))
	assert.Equal(t, uintptr(8), unsafe.Offsetof(Vertex{}.Color))
}

func TestLoadTriangle(t *testing.T) {
	ms, err := Load("testdata/triangle.txt")
	require.NoError(t, err)
	assert.Equal(t, []float32{
		-0.5, -0.5, 1, 0, 0,
		0.5, -0.5, 0, 1, 0,
		0, 0.5, 0, 0, 1,
	}, ms.Points)
	assert.Equal(t, []uint16{0, 1, 2}, ms.Indexes)
	assert.Equal(t, 3, ms.NumVertices())
	assert.True(t, ms.IsIndexed())
	assert.NoError(t, ms.Validate())
	assert.Equal(t, Triangle(), ms)
}

func TestLoadCRLF(t *testing.T) {
	var ld Loader
	ms, err := ld.Load("testdata/square_crlf.txt")
	require.NoError(t, err)
	assert.Empty(t, ld.Issues)
	assert.Equal(t, 4, ms.NumVertices())
	assert.Equal(t, []uint16{0, 1, 2, 0, 2, 3}, ms.Indexes)
	assert.Equal(t, Vertex{Pos: math32.Vec2(-0.5, 0.5), Color: math32.Vec3(1, 1, 0)}, ms.Vertex(3))
}

func TestLoadPointsOnly(t *testing.T) {
	ms, err := Load("testdata/points_only.txt")
	require.NoError(t, err)
	assert.Equal(t, 3, ms.NumVertices())
	assert.False(t, ms.IsIndexed())
	assert.Len(t, ms.Vertices(), 3)
}

func TestLoadMissing(t *testing.T) {
	ms, err := Load("testdata/does-not-exist.txt")
	assert.Nil(t, ms)
	assert.True(t, errors.Is(err, os.ErrNotExist))
}

func TestLoadLenient(t *testing.T) {
	var ld Loader
	ms, err := ld.Load("testdata/malformed.txt")
	require.NoError(t, err)
	assert.Equal(t, []float32{0, 0, 1, 0, 0, 0, 1, 0, 0, 1}, ms.Points)
	assert.Equal(t, []uint16{0, 1, 2}, ms.Indexes)

	lines := make([]int, len(ld.Issues))
	for i, is := range ld.Issues {
		lines[i] = is.Line
		assert.Equal(t, "testdata/malformed.txt", is.Filename)
	}
	assert.Equal(t, []int{1, 4, 5, 7, 11, 12}, lines)

	// the index 2 survived but the vertex it refers to did not
	assert.ErrorIs(t, ms.Validate(), ErrIndexOutOfRange)
}

func TestLoadStrict(t *testing.T) {
	ld := Loader{Strict: true}
	ms, err := ld.Load("testdata/malformed.txt")
	assert.Nil(t, ms)
	var pe *ParseError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, 1, pe.Line)
	assert.Contains(t, err.Error(), "malformed.txt:1")

	ms, err = ld.Load("testdata/triangle.txt")
	require.NoError(t, err)
	assert.Equal(t, 3, ms.NumIndexes())
}

func TestReadCounts(t *testing.T) {
	for _, n := range []int{0, 1, 7, 100} {
		for _, m := range []int{0, 1, 5} {
			var sb strings.Builder
			sb.WriteString("[points]\n")
			for i := range n {
				fmt.Fprintf(&sb, "%d 0.5 0.25 0.125 1\n", i)
			}
			sb.WriteString("[indices]\n")
			for i := range m {
				fmt.Fprintf(&sb, "%d %d %d\n", i, i+1, i+2)
			}
			var ld Loader
			ms, err := ld.Read(strings.NewReader(sb.String()))
			require.NoError(t, err)
			assert.Empty(t, ld.Issues)
			require.Len(t, ms.Points, 5*n)
			require.Len(t, ms.Indexes, 3*m)
			for i := range n {
				assert.Equal(t, float32(i), ms.Points[i*5])
			}
			for i := range m {
				assert.Equal(t, uint16(i+2), ms.Indexes[i*3+2])
			}
		}
	}
}

func TestValidate(t *testing.T) {
	ms := Triangle()
	assert.NoError(t, ms.Validate())
	ms.AddTriangle(0, 2, 3)
	assert.ErrorIs(t, ms.Validate(), ErrIndexOutOfRange)

	ms = &Mesh{Points: []float32{1, 2, 3}}
	assert.Error(t, ms.Validate())
	assert.True(t, (&Mesh{}).IsEmpty())
}
