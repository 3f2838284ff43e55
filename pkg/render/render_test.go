package render

import (
	"encoding/json"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chazu/biomimic/pkg/kernel"
	"github.com/chazu/biomimic/pkg/params"
	"github.com/chazu/biomimic/pkg/pattern"
)

func TestFromMesh(t *testing.T) {
	for _, alg := range params.Algorithms {
		m, err := pattern.Generate(alg, params.Default())
		require.NoError(t, err)

		g := FromMesh(m, alg.String())
		assert.Len(t, g.Vertices, 3*m.VertexCount(), alg)
		assert.Len(t, g.Normals, 3*m.VertexCount(), alg)
		assert.Equal(t, m.Indices, g.Indices, alg)
		assert.Equal(t, DefaultMaterial, g.Material)

		// Every vertex lands inside the unit cube after the fit transform.
		for i := 0; i < len(g.Vertices); i += 3 {
			p := g.Model.Mul4x1(mgl32.Vec4{g.Vertices[i], g.Vertices[i+1], g.Vertices[i+2], 1})
			for k := 0; k < 3; k++ {
				require.InDelta(t, 0, p[k], 0.5+1e-4, "%v vertex %d", alg, i/3)
			}
		}
	}
}

func TestFromMeshDoesNotAlias(t *testing.T) {
	m := kernel.NewMesh(1)
	m.AddTriangle(kernel.V(0, 0, 0), kernel.V(1, 0, 0), kernel.V(0, 1, 0))
	g := FromMesh(m, "tri")
	g.Indices[0] = 9
	assert.Equal(t, uint32(0), m.Indices[0])
}

func TestFitMatrix(t *testing.T) {
	fit := FitMatrix(mgl32.Vec3{1, 1, 1}, mgl32.Vec3{5, 3, 2})
	lo := fit.Mul4x1(mgl32.Vec4{1, 1, 1, 1})
	hi := fit.Mul4x1(mgl32.Vec4{5, 3, 2, 1})
	assert.InDelta(t, -0.5, lo[0], 1e-6)
	assert.InDelta(t, 0.5, hi[0], 1e-6)
	assert.InDelta(t, -0.25, lo[1], 1e-6)
	assert.InDelta(t, 0.25, hi[1], 1e-6)

	empty := FitMatrix(mgl32.Vec3{}, mgl32.Vec3{})
	assert.Equal(t, mgl32.Ident4(), empty)
}

func TestGeometryJSON(t *testing.T) {
	m := kernel.NewMesh(1)
	m.AddTriangle(kernel.V(0, 0, 0), kernel.V(1, 0, 0), kernel.V(0, 1, 0))
	b, err := json.Marshal(FromMesh(m, "tri"))
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(b, &decoded))
	assert.Equal(t, "tri", decoded["name"])
	assert.Len(t, decoded["vertices"], 9)
	assert.Len(t, decoded["model"], 16)
	mat := decoded["material"].(map[string]any)
	assert.Equal(t, "#00FF66", mat["color"])
	assert.Equal(t, true, mat["wireframe"])
}
