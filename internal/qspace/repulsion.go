package qspace

import (
	"fmt"
	"math"
)

const (
	goldenAngle = 2.399963229728653 // π(3 - √5)
	initialStep = 0.1
	minStep     = 1e-9
	converged   = 1e-10
)

// Repulsion is a deterministic Sampler. Points start on a golden spiral of
// the upper hemisphere, each shell offset in azimuth, and are then moved
// along the tangent of the weighted repulsive force between every pair of
// points and their antipodes. The step shrinks whenever the energy rises.
type Repulsion struct{}

var _ Sampler = Repulsion{}

func (Repulsion) ComputeWeights(shellCount int, pointsPerShell []int, shellGroups [][]int, alphas []float64) ([][]float64, error) {
	return ComputeWeights(shellCount, pointsPerShell, shellGroups, alphas)
}

func (Repulsion) Optimize(shellCount int, pointsPerShell []int, weights [][]float64, maxIter int) ([][3]float64, error) {
	if err := checkShells(shellCount, pointsPerShell); err != nil {
		return nil, err
	}
	if len(weights) != shellCount {
		return nil, fmt.Errorf("weight matrix has %d rows: %w", len(weights), ErrShellMismatch)
	}
	for i, row := range weights {
		if len(row) != shellCount {
			return nil, fmt.Errorf("weight row %d has %d columns: %w", i, len(row), ErrShellMismatch)
		}
	}
	if maxIter < 1 {
		return nil, fmt.Errorf("max iterations %d: %w", maxIter, ErrInvalidIterations)
	}

	points, shellOf := initialPoints(pointsPerShell)
	energy := repulsionEnergy(points, shellOf, weights)
	step := initialStep

	for iter := 0; iter < maxIter && step > minStep; iter++ {
		forces := repulsionForces(points, shellOf, weights)
		scale := maxNorm(forces)
		if scale < converged {
			break
		}
		candidate := make([][3]float64, len(points))
		for i, p := range points {
			candidate[i] = normalize(add(p, mul(forces[i], step/scale)))
		}
		next := repulsionEnergy(candidate, shellOf, weights)
		if next > energy {
			step /= 2
			continue
		}
		if energy-next < converged*math.Max(1, energy) {
			points = candidate
			break
		}
		points, energy = candidate, next
		step *= 1.1
	}

	for i, p := range points {
		// antipodal points are the same direction; keep the upper hemisphere
		if p[2] < 0 {
			points[i] = mul(p, -1)
		}
	}
	return points, nil
}

func initialPoints(pointsPerShell []int) ([][3]float64, []int) {
	var points [][3]float64
	var shellOf []int
	for s, n := range pointsPerShell {
		offset := float64(s) * goldenAngle / float64(len(pointsPerShell))
		for k := 0; k < n; k++ {
			z := 1 - (float64(k)+0.5)/float64(n)
			r := math.Sqrt(1 - z*z)
			phi := float64(k)*goldenAngle + offset
			points = append(points, [3]float64{r * math.Cos(phi), r * math.Sin(phi), z})
			shellOf = append(shellOf, s)
		}
	}
	return points, shellOf
}

func repulsionEnergy(points [][3]float64, shellOf []int, weights [][]float64) float64 {
	e := 0.0
	for i := range points {
		for j := i + 1; j < len(points); j++ {
			w := weights[shellOf[i]][shellOf[j]]
			if w == 0 {
				continue
			}
			e += w * (1/safeNorm(sub(points[i], points[j])) + 1/safeNorm(add(points[i], points[j])))
		}
	}
	return e
}

func repulsionForces(points [][3]float64, shellOf []int, weights [][]float64) [][3]float64 {
	forces := make([][3]float64, len(points))
	for i := range points {
		var f [3]float64
		for j := range points {
			if i == j {
				continue
			}
			w := weights[shellOf[i]][shellOf[j]]
			if w == 0 {
				continue
			}
			d := sub(points[i], points[j])
			a := add(points[i], points[j])
			dn, an := safeNorm(d), safeNorm(a)
			f = add(f, mul(d, w/(dn*dn*dn)))
			f = add(f, mul(a, w/(an*an*an)))
		}
		// project on the tangent plane
		forces[i] = sub(f, mul(points[i], dot(f, points[i])))
	}
	return forces
}

func add(a, b [3]float64) [3]float64 { return [3]float64{a[0] + b[0], a[1] + b[1], a[2] + b[2]} }
func sub(a, b [3]float64) [3]float64 { return [3]float64{a[0] - b[0], a[1] - b[1], a[2] - b[2]} }
func mul(a [3]float64, k float64) [3]float64 {
	return [3]float64{a[0] * k, a[1] * k, a[2] * k}
}
func dot(a, b [3]float64) float64 { return a[0]*b[0] + a[1]*b[1] + a[2]*b[2] }

func safeNorm(a [3]float64) float64 {
	return math.Max(math.Sqrt(dot(a, a)), 1e-12)
}

func normalize(a [3]float64) [3]float64 {
	return mul(a, 1/safeNorm(a))
}

func maxNorm(vs [][3]float64) float64 {
	m := 0.0
	for _, v := range vs {
		m = math.Max(m, math.Sqrt(dot(v, v)))
	}
	return m
}
