package geom

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestVec3Arithmetic(t *testing.T) {
	a := Vec3{1, 2, 3}
	b := Vec3{4, 5, 6}

	assert.Equal(t, Vec3{5, 7, 9}, a.Add(b))
	assert.Equal(t, Vec3{-3, -3, -3}, a.Sub(b))
	assert.Equal(t, Vec3{2, 4, 6}, a.Scale(2))
	assert.InDelta(t, 32.0, a.Dot(b), 1e-12)
}

func TestVec3Cross(t *testing.T) {
	x := Vec3{1, 0, 0}
	y := Vec3{0, 1, 0}
	z := x.Cross(y)
	assert.InDelta(t, 0.0, z.X, 1e-12)
	assert.InDelta(t, 0.0, z.Y, 1e-12)
	assert.InDelta(t, 1.0, z.Z, 1e-12)
}

func TestVec3Normalize(t *testing.T) {
	v := Vec3{3, 4, 0}
	n := v.Normalize()
	assert.InDelta(t, 1.0, n.Norm(), 1e-12)
	assert.InDelta(t, 0.6, n.X, 1e-12)
	assert.InDelta(t, 0.8, n.Y, 1e-12)

	zero := Vec3{}
	assert.Equal(t, zero, zero.Normalize())
}

func TestVec3Norm2MatchesNormSquared(t *testing.T) {
	v := Vec3{1, 2, 2}
	assert.InDelta(t, v.Norm()*v.Norm(), v.Norm2(), 1e-12)
}
