package qspace

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestComputeWeights(t *testing.T) {
	w, err := ComputeWeights(2, []int{2, 3}, [][]int{{0, 1}}, []float64{1})
	require.NoError(t, err)
	for i := range w {
		for j := range w[i] {
			require.InDelta(t, 1.0/25, w[i][j], 1e-15)
		}
	}

	w, err = ComputeWeights(2, []int{2, 3}, [][]int{{0}, {1}, {0, 1}}, []float64{0.5, 0.5, 1})
	require.NoError(t, err)
	require.InDelta(t, 0.5/4+1.0/25, w[0][0], 1e-15)
	require.InDelta(t, 0.5/9+1.0/25, w[1][1], 1e-15)
	require.InDelta(t, 1.0/25, w[0][1], 1e-15)
}

func TestComputeWeights_Errors(t *testing.T) {
	_, err := ComputeWeights(2, []int{2}, [][]int{{0}}, []float64{1})
	require.ErrorIs(t, err, ErrShellMismatch)

	_, err = ComputeWeights(1, []int{0}, [][]int{{0}}, []float64{1})
	require.ErrorIs(t, err, ErrInvalidPointCount)

	_, err = ComputeWeights(1, []int{3}, [][]int{{0}}, nil)
	require.ErrorIs(t, err, ErrShellMismatch)

	_, err = ComputeWeights(1, []int{3}, [][]int{{1}}, []float64{1})
	require.ErrorIs(t, err, ErrShellMismatch)
}

func TestRepulsion_Optimize(t *testing.T) {
	shells := []int{6, 10}
	s := Repulsion{}
	w, err := s.ComputeWeights(len(shells), shells, [][]int{{0, 1}}, []float64{1})
	require.NoError(t, err)

	points, err := s.Optimize(len(shells), shells, w, 200)
	require.NoError(t, err)
	require.Len(t, points, 16)

	for _, p := range points {
		require.InDelta(t, 1, math.Sqrt(dot(p, p)), 1e-9)
		require.GreaterOrEqual(t, p[2], 0.0)
	}

	again, err := s.Optimize(len(shells), shells, w, 200)
	require.NoError(t, err)
	require.Equal(t, points, again)
}

func TestRepulsion_ImprovesSpread(t *testing.T) {
	shells := []int{12}
	w, err := ComputeWeights(1, shells, [][]int{{0}}, []float64{1})
	require.NoError(t, err)

	start, _ := initialPoints(shells)
	points, err := Repulsion{}.Optimize(1, shells, w, 500)
	require.NoError(t, err)

	shellOf := make([]int, len(points))
	require.LessOrEqual(t,
		repulsionEnergy(points, shellOf, w),
		repulsionEnergy(start, shellOf, w)+1e-12)
}

func TestRepulsion_SinglePoint(t *testing.T) {
	points, err := Repulsion{}.Optimize(1, []int{1}, [][]float64{{1}}, 10)
	require.NoError(t, err)
	require.Len(t, points, 1)
	require.InDelta(t, 1, math.Sqrt(dot(points[0], points[0])), 1e-12)
}

func TestRepulsion_Errors(t *testing.T) {
	_, err := Repulsion{}.Optimize(1, []int{3}, [][]float64{{1}}, 0)
	require.ErrorIs(t, err, ErrInvalidIterations)

	_, err = Repulsion{}.Optimize(2, []int{3, 3}, [][]float64{{1, 1}}, 10)
	require.ErrorIs(t, err, ErrShellMismatch)
}
