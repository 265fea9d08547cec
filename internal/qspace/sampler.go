// Package qspace provides the multishell direction sampler consumed by the
// simulation factory.
//
// The factory treats sampling as an external numerical service behind the
// Sampler interface. Repulsion is the implementation used when no other
// sampler is supplied: a deterministic electrostatic repulsion of
// antipodally symmetric points, weighted per shell pair.
package qspace

import (
	"errors"
	"fmt"
)

var (
	// ErrShellMismatch is returned when the shell count disagrees with the
	// per-shell point counts, groups or weight matrix.
	ErrShellMismatch = errors.New("qspace: shell count mismatch")

	// ErrInvalidPointCount is returned when a shell asks for fewer than one point.
	ErrInvalidPointCount = errors.New("qspace: points per shell must be >= 1")

	// ErrInvalidIterations is returned when maxIter < 1.
	ErrInvalidIterations = errors.New("qspace: max iterations must be >= 1")
)

// Sampler computes well distributed gradient directions over shells.
type Sampler interface {
	// ComputeWeights returns the shellCount x shellCount coupling matrix for
	// the given shell groups and their coefficients.
	ComputeWeights(shellCount int, pointsPerShell []int, shellGroups [][]int, alphas []float64) ([][]float64, error)

	// Optimize returns one unit vector per requested point, grouped by
	// shell in order.
	Optimize(shellCount int, pointsPerShell []int, weights [][]float64, maxIter int) ([][3]float64, error)
}

// ComputeWeights builds the coupling matrix: for every group with
// coefficient alpha, each pair of shells (i, j) in the group receives
// alpha / N², N being the total number of points in the group.
func ComputeWeights(shellCount int, pointsPerShell []int, shellGroups [][]int, alphas []float64) ([][]float64, error) {
	if err := checkShells(shellCount, pointsPerShell); err != nil {
		return nil, err
	}
	if len(shellGroups) != len(alphas) {
		return nil, fmt.Errorf("%d groups, %d coefficients: %w", len(shellGroups), len(alphas), ErrShellMismatch)
	}

	weights := make([][]float64, shellCount)
	for i := range weights {
		weights[i] = make([]float64, shellCount)
	}
	for g, group := range shellGroups {
		total := 0
		for _, s := range group {
			if s < 0 || s >= shellCount {
				return nil, fmt.Errorf("group %d references shell %d: %w", g, s, ErrShellMismatch)
			}
			total += pointsPerShell[s]
		}
		if total == 0 {
			continue
		}
		w := alphas[g] / float64(total*total)
		for _, i := range group {
			for _, j := range group {
				weights[i][j] += w
			}
		}
	}
	return weights, nil
}

func checkShells(shellCount int, pointsPerShell []int) error {
	if shellCount < 1 || shellCount != len(pointsPerShell) {
		return fmt.Errorf("%d shells, %d point counts: %w", shellCount, len(pointsPerShell), ErrShellMismatch)
	}
	for i, n := range pointsPerShell {
		if n < 1 {
			return fmt.Errorf("shell %d has %d points: %w", i, n, ErrInvalidPointCount)
		}
	}
	return nil
}
