package scene

import (
	"fmt"
	"math"

	"github.com/dmrisim/simfactory/internal/geometry"
)

// BuildGeometry compiles the world, fibers, bundles, clusters and spheres
// into a geometry handler. Standalone bundles are added first, then
// clusters, then spheres, each in document order.
func (s *Scene) BuildGeometry() (*geometry.Handler, error) {
	h, err := geometry.NewHandler(s.World.Resolution, s.World.Spacing)
	if err != nil {
		return nil, fmt.Errorf("world: %w", err)
	}

	fibers, err := s.buildFibers()
	if err != nil {
		return nil, err
	}
	bundles, err := s.buildBundles(fibers)
	if err != nil {
		return nil, err
	}

	for _, bs := range s.Bundles {
		if bs.Standalone {
			h.AddBundle(bundles[bs.ID])
		}
	}

	for i, cs := range s.Clusters {
		meta, err := buildMeta(cs.Meta)
		if err != nil {
			return nil, fmt.Errorf("cluster %d: %w", i, err)
		}
		members := make([]geometry.Bundle, len(cs.Bundles))
		for j, id := range cs.Bundles {
			b, ok := bundles[id]
			if !ok {
				return nil, fmt.Errorf("cluster %d bundle %q: %w", i, id, ErrUnknownReference)
			}
			members[j] = b
		}
		center, err := vec3(fmt.Sprintf("cluster %d world_center", i), cs.WorldCenter)
		if err != nil {
			return nil, err
		}
		c, err := geometry.CreateCluster(meta, members, center)
		if err != nil {
			return nil, fmt.Errorf("cluster %d: %w", i, err)
		}
		h.AddCluster(c)
	}

	for i, ss := range s.Spheres {
		center, err := vec3(fmt.Sprintf("sphere %d center", i), ss.Center)
		if err != nil {
			return nil, err
		}
		sp, err := geometry.CreateSphere(ss.Radius, center)
		if err != nil {
			return nil, fmt.Errorf("sphere %d: %w", i, err)
		}
		h.AddSphere(sp)
	}
	return h, nil
}

func (s *Scene) buildFibers() (map[string]geometry.Fiber, error) {
	fibers := make(map[string]geometry.Fiber, len(s.Fibers))
	for i, fs := range s.Fibers {
		if fs.ID == "" {
			return nil, fmt.Errorf("fiber %d has no id: %w", i, ErrInvalidScene)
		}
		if _, dup := fibers[fs.ID]; dup {
			return nil, fmt.Errorf("fiber %q: %w", fs.ID, ErrDuplicateID)
		}

		var f geometry.Fiber
		if fs.From != "" {
			src, ok := fibers[fs.From]
			if !ok {
				return nil, fmt.Errorf("fiber %q from %q: %w", fs.ID, fs.From, ErrUnknownReference)
			}
			f = src
		} else {
			points := fs.Points
			if fs.Anchors != "" {
				set, ok := s.Anchors[fs.Anchors]
				if !ok {
					return nil, fmt.Errorf("fiber %q anchors %q: %w", fs.ID, fs.Anchors, ErrUnknownReference)
				}
				points = set
			}
			built, err := geometry.CreateFiberFromPoints(fs.Radius, fs.Symmetry, fs.Sampling, points)
			if err != nil {
				return nil, fmt.Errorf("fiber %q: %w", fs.ID, err)
			}
			f = built
		}

		if fs.Rotate != nil {
			r, pivot, shift, err := buildRotation(fs.Rotate)
			if err != nil {
				return nil, fmt.Errorf("fiber %q: %w", fs.ID, err)
			}
			_, f = geometry.RotateFiber(f, nil, r, pivot, shift)
		}
		if fs.Translate != nil {
			t, err := vec3("translate", fs.Translate)
			if err != nil {
				return nil, fmt.Errorf("fiber %q: %w", fs.ID, err)
			}
			_, f = geometry.TranslateFiber(f, nil, t)
		}
		fibers[fs.ID] = f
	}
	return fibers, nil
}

func (s *Scene) buildBundles(fibers map[string]geometry.Fiber) (map[string]geometry.Bundle, error) {
	bundles := make(map[string]geometry.Bundle, len(s.Bundles))
	for i, bs := range s.Bundles {
		if bs.ID == "" {
			return nil, fmt.Errorf("bundle %d has no id: %w", i, ErrInvalidScene)
		}
		if _, dup := bundles[bs.ID]; dup {
			return nil, fmt.Errorf("bundle %q: %w", bs.ID, ErrDuplicateID)
		}

		var b geometry.Bundle
		if bs.From != "" {
			src, ok := bundles[bs.From]
			if !ok {
				return nil, fmt.Errorf("bundle %q from %q: %w", bs.ID, bs.From, ErrUnknownReference)
			}
			b = src
			if bs.Meta != nil {
				meta, err := buildMeta(*bs.Meta)
				if err != nil {
					return nil, fmt.Errorf("bundle %q: %w", bs.ID, err)
				}
				rebuilt, err := geometry.CreateBundle(meta, src.Fibers())
				if err != nil {
					return nil, fmt.Errorf("bundle %q: %w", bs.ID, err)
				}
				b = rebuilt
			}
		} else {
			meta := geometry.DefaultBundleMeta()
			if bs.Meta != nil {
				m, err := buildMeta(*bs.Meta)
				if err != nil {
					return nil, fmt.Errorf("bundle %q: %w", bs.ID, err)
				}
				meta = m
			}
			members := make([]geometry.Fiber, len(bs.Fibers))
			for j, id := range bs.Fibers {
				f, ok := fibers[id]
				if !ok {
					return nil, fmt.Errorf("bundle %q fiber %q: %w", bs.ID, id, ErrUnknownReference)
				}
				members[j] = f
			}
			built, err := geometry.CreateBundle(meta, members)
			if err != nil {
				return nil, fmt.Errorf("bundle %q: %w", bs.ID, err)
			}
			b = built
		}

		if bs.Rotate != nil {
			r, pivot, shift, err := buildRotation(bs.Rotate)
			if err != nil {
				return nil, fmt.Errorf("bundle %q: %w", bs.ID, err)
			}
			_, b = geometry.RotateBundle(b, nil, r, pivot, shift)
		}
		if bs.Translate != nil {
			t, err := vec3("translate", bs.Translate)
			if err != nil {
				return nil, fmt.Errorf("bundle %q: %w", bs.ID, err)
			}
			_, b = geometry.TranslateBundle(b, nil, t)
		}
		bundles[bs.ID] = b
	}
	return bundles, nil
}

func buildMeta(m MetaSpec) (geometry.BundleMeta, error) {
	center, err := optionalVec3("meta center", m.Center, [3]float64{})
	if err != nil {
		return geometry.BundleMeta{}, err
	}
	limits := make([][2]float64, len(m.Limits))
	for i, l := range m.Limits {
		if len(l) != 2 {
			return geometry.BundleMeta{}, fmt.Errorf("meta limits %d has %d values, want 2: %w", i, len(l), ErrInvalidScene)
		}
		limits[i] = [2]float64{l[0], l[1]}
	}
	return geometry.CreateBundleMeta(m.Dimensions, m.FiberCount, m.Symmetry, center, limits)
}

func buildRotation(r *RotateSpec) (geometry.Rotation, geometry.Vec3, geometry.Vec3, error) {
	plane, err := geometry.ParsePlane(r.Plane)
	if err != nil {
		return geometry.Rotation{}, geometry.Vec3{}, geometry.Vec3{}, fmt.Errorf("%v: %w", err, ErrInvalidScene)
	}
	pivot, err := optionalVec3("rotate pivot", r.Pivot, [3]float64{})
	if err != nil {
		return geometry.Rotation{}, geometry.Vec3{}, geometry.Vec3{}, err
	}
	shift, err := optionalVec3("rotate shift", r.Shift, [3]float64{})
	if err != nil {
		return geometry.Rotation{}, geometry.Vec3{}, geometry.Vec3{}, err
	}
	return geometry.NewRotation(plane, r.Degrees*math.Pi/180), pivot, shift, nil
}
