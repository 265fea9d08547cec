package geometry

import "fmt"

// Cluster places several bundles together at a world location. All bundles
// of a cluster are generated with the cluster's metadata.
type Cluster struct {
	meta        BundleMeta
	bundles     []Bundle
	worldCenter Vec3
}

// CreateCluster returns a cluster of bundles placed at worldCenter.
func CreateCluster(meta BundleMeta, bundles []Bundle, worldCenter Vec3) (Cluster, error) {
	if len(bundles) == 0 {
		return Cluster{}, fmt.Errorf("cluster: %w", ErrEmptyBundle)
	}
	if !worldCenter.finite() {
		return Cluster{}, fmt.Errorf("cluster world center: %w", ErrNonFinite)
	}
	own := make([]Bundle, len(bundles))
	copy(own, bundles)
	return Cluster{meta: meta, bundles: own, worldCenter: worldCenter}, nil
}

func (c Cluster) Meta() BundleMeta  { return c.meta }
func (c Cluster) WorldCenter() Vec3 { return c.worldCenter }
func (c Cluster) BundleCount() int  { return len(c.bundles) }

// Bundles returns the member bundles with the cluster metadata applied.
// This is the form in which a Handler stores them.
func (c Cluster) Bundles() []Bundle {
	out := make([]Bundle, len(c.bundles))
	for i, b := range c.bundles {
		out[i] = b.withMeta(c.meta)
	}
	return out
}
