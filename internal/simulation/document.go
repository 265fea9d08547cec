package simulation

import (
	"math"
	"strings"

	"github.com/dmrisim/simfactory/internal/serialize"
)

var axes = [3]string{"x", "y", "z"}

// Document renders the parameter document. It fails with ErrIncomplete when
// the acquisition profile, gradient profile or compartments are missing.
//
// Missing world axes are written with size 1 and spacing 1. Gradient
// directions are scaled by sqrt(b/bmax) and bvalue holds bmax.
func (h *Handler) Document() (string, error) {
	if err := h.ready(); err != nil {
		return "", err
	}
	p := h.acquisition
	g := h.gradient

	spec := serialize.NewElement("image_specifications",
		h.basic(),
		gradientsElement(g.ScaledDirections()),
		g.Variant().element(),
		serialize.Leaf("bvalue", serialize.Float(g.MaxBValue())),
		serialize.Leaf("signalScale", serialize.Float(p.SignalScale)),
		serialize.Leaf("tEcho", serialize.Float(p.EchoTime)),
		serialize.Leaf("tRep", serialize.Float(p.RepetitionTime)),
		serialize.Leaf("tLine", serialize.Float(p.DwellTime)),
		serialize.Leaf("tInhom", serialize.Float(p.InhomogenTime)),
		serialize.Leaf("numberofcoils", serialize.Int(p.Coils)),
		serialize.Leaf("reversePhase", serialize.Bool(p.ReversePhase)),
		serialize.Leaf("partialfourier", serialize.Float(p.PartialFourier)),
		serialize.Leaf("axonRadius", serialize.Float(p.AxonRadius)),
		h.artifacts.element(),
		compartmentsElement(h.compartments),
	)
	return serialize.Document(serialize.NewElement("fiberfox", spec)), nil
}

func (h *Handler) basic() *serialize.Element {
	size := serialize.NewElement("size")
	spacing := serialize.NewElement("spacing")
	origin := serialize.NewElement("origin")
	for i, axis := range axes {
		n, s := 1, 1.0
		if i < len(h.resolution) {
			n, s = h.resolution[i], h.spacing[i]
		}
		size.Add(serialize.Leaf(axis, serialize.Int(n)))
		spacing.Add(serialize.Leaf(axis, serialize.Float(s)))
		origin.Add(serialize.Leaf(axis, "0"))
	}
	direction := serialize.NewElement("direction")
	for i := 0; i < 9; i++ {
		v := "0"
		if i%4 == 0 {
			v = "1"
		}
		direction.Add(serialize.Leaf(serialize.Int(i+1), v))
	}
	return serialize.NewElement("basic", size, spacing, origin, direction,
		serialize.Leaf("numgradients", serialize.Int(len(h.gradient.bvals))))
}

func gradientsElement(dirs [][3]float64) *serialize.Element {
	e := serialize.NewElement("gradients")
	for i, d := range dirs {
		v := serialize.NewElement(serialize.Int(i))
		for j, axis := range axes {
			v.Add(serialize.Leaf(axis, serialize.Float(d[j])))
		}
		e.Add(v)
	}
	return e
}

func compartmentsElement(cs []Compartment) *serialize.Element {
	e := serialize.NewElement("compartments")
	for i, c := range cs {
		entry := serialize.NewElement(serialize.Int(i),
			serialize.Leaf("type", c.Model.Kind()),
			serialize.Leaf("model", string(c.Model)),
		)
		if c.Model == ModelTensor {
			entry.Add(
				serialize.Leaf("d1", serialize.Float(c.D1)),
				serialize.Leaf("d2", serialize.Float(c.D2)),
				serialize.Leaf("d3", serialize.Float(c.D3)),
			)
		} else {
			entry.Add(serialize.Leaf("d", serialize.Float(c.D)))
		}
		entry.Add(
			serialize.Leaf("t2", serialize.Float(c.T2)),
			serialize.Leaf("t1", serialize.Float(c.T1)),
			serialize.Leaf("ID", c.Type.ID()),
		)
		e.Add(entry)
	}
	return e
}

// bvalsTable is the FSL single-row b-value table.
func bvalsTable(g GradientProfile) string {
	return floatRow(g.bvals) + "\n"
}

// bvecsTable is the FSL three-row direction table with unit vectors.
func bvecsTable(g GradientProfile) string {
	var rows [3][]float64
	for _, v := range g.bvecs {
		n := math.Sqrt(v[0]*v[0] + v[1]*v[1] + v[2]*v[2])
		for j := range rows {
			c := v[j]
			if n > 0 {
				c /= n
			}
			rows[j] = append(rows[j], c)
		}
	}
	var b strings.Builder
	for _, r := range rows {
		b.WriteString(floatRow(r))
		b.WriteString("\n")
	}
	return b.String()
}

func floatRow(values []float64) string {
	parts := make([]string, len(values))
	for i, v := range values {
		parts[i] = serialize.Float(v)
	}
	return strings.Join(parts, " ")
}
