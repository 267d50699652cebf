package wind

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMat3InverseRoundTrips(t *testing.T) {
	m := Mat3{
		{2, 0, 0},
		{0, 3, 0},
		{0, 0, 4},
	}
	inv, err := m.Inverse()
	require.NoError(t, err)

	v := [3]float64{1, 1, 1}
	roundTripped := m.MulVec(inv.MulVec(v))
	assert.InDelta(t, v[0], roundTripped[0], 1e-9)
	assert.InDelta(t, v[1], roundTripped[1], 1e-9)
	assert.InDelta(t, v[2], roundTripped[2], 1e-9)
}

func TestMat3InverseRejectsSingular(t *testing.T) {
	m := Mat3{
		{1, 2, 3},
		{2, 4, 6},
		{1, 1, 1},
	}
	_, err := m.Inverse()
	assert.Error(t, err)
}

func TestIdentityMat3IsNoOp(t *testing.T) {
	v := [3]float64{5, -2, 7}
	out := IdentityMat3.MulVec(v)
	assert.Equal(t, v, out)
}

func TestCrossProductOfOrthonormalAxes(t *testing.T) {
	x := [3]float64{1, 0, 0}
	y := [3]float64{0, 1, 0}
	z := cross(x, y)
	assert.InDelta(t, 0.0, z[0], 1e-9)
	assert.InDelta(t, 0.0, z[1], 1e-9)
	assert.InDelta(t, 1.0, z[2], 1e-9)
}
