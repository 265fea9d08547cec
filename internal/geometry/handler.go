package geometry

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/dmrisim/simfactory/internal/logging"
	"github.com/dmrisim/simfactory/internal/pathutil"
	"github.com/dmrisim/simfactory/internal/serialize"
)

const (
	// GeometrySuffix is appended to the output naming for the geometry document.
	GeometrySuffix = "_geometry_base.json"

	// SplineExtension is the extension of per-bundle spline files.
	SplineExtension = ".vspl"
)

// SplineID returns the identifier of the spline file holding bundle i.
func SplineID(i int) string {
	return fmt.Sprintf("f_%d", i)
}

// placedBundle is a bundle together with the center used for its structure entry.
type placedBundle struct {
	bundle Bundle
	center Vec3
}

// Output lists the files written by a generation call.
type Output struct {
	GeometryFile string
	SplineFiles  []string
}

// Files returns every written path, geometry document first.
func (o *Output) Files() []string {
	return append([]string{o.GeometryFile}, o.SplineFiles...)
}

// Handler collects the structures of one world and writes the geometry
// document and spline files. It is not safe for concurrent use.
type Handler struct {
	world   World
	bundles []placedBundle
	spheres []Sphere
	logger  *slog.Logger
	events  *logging.GenerationLog
}

// NewHandler returns an empty handler for a world of the given sizing.
// The dimensionality is the length of resolution.
func NewHandler(resolution []int, spacing []float64) (*Handler, error) {
	world, err := CreateWorld(len(resolution), resolution, spacing)
	if err != nil {
		return nil, err
	}
	return &Handler{world: world}, nil
}

// SetLogger sets the operational logger and generation trace.
func (h *Handler) SetLogger(logger *slog.Logger, events *logging.GenerationLog) {
	h.logger = logger
	h.events = events
}

// AddBundle appends a bundle. Its spline index is its position among all
// bundles added so far, including those contributed by clusters.
func (h *Handler) AddBundle(b Bundle) *Handler {
	h.bundles = append(h.bundles, placedBundle{bundle: b, center: b.Center()})
	return h
}

// AddCluster appends every bundle of c, in order, each carrying the cluster
// metadata and centered on the cluster's world center.
func (h *Handler) AddCluster(c Cluster) *Handler {
	for _, b := range c.Bundles() {
		h.bundles = append(h.bundles, placedBundle{bundle: b, center: c.worldCenter})
	}
	return h
}

// AddSphere appends a sphere. Spheres follow all bundles in the document.
func (h *Handler) AddSphere(s Sphere) *Handler {
	h.spheres = append(h.spheres, s)
	return h
}

func (h *Handler) World() World       { return h.world }
func (h *Handler) Resolution() []int  { return h.world.Resolution() }
func (h *Handler) Spacing() []float64 { return h.world.Spacing() }
func (h *Handler) BundleCount() int   { return len(h.bundles) }
func (h *Handler) SphereCount() int   { return len(h.spheres) }

// Bundle returns the bundle stored at spline index i.
func (h *Handler) Bundle(i int) Bundle { return h.bundles[i].bundle }

// Structures returns the structure entries in document order: one bundle
// object per bundle, then one entry per sphere.
func (h *Handler) Structures() ([]Structure, error) {
	out := make([]Structure, 0, len(h.bundles)+len(h.spheres))
	for i, pb := range h.bundles {
		obj, err := CreateBundleObject("", []string{SplineID(i)}, []float64{1}, pb.center)
		if err != nil {
			return nil, fmt.Errorf("bundle %d: %w", i, err)
		}
		out = append(out, obj)
	}
	for _, s := range h.spheres {
		out = append(out, s)
	}
	return out, nil
}

// Document renders the geometry document referencing simulationPath.
func (h *Handler) Document(simulationPath string) (string, error) {
	structures, err := h.Structures()
	if err != nil {
		return "", err
	}
	items := make([]serialize.Serializable, len(structures))
	for i, s := range structures {
		items[i] = s
	}

	var b strings.Builder
	b.WriteString("{\n")
	b.WriteString(`    "world": ` + h.world.Serialize(6) + ",\n")
	b.WriteString(`    "path": ` + serialize.Quote(simulationPath) + ",\n")
	if len(items) == 0 {
		b.WriteString(`    "structures": []` + "\n")
	} else {
		b.WriteString(`    "structures": [` + "\n")
		b.WriteString(serialize.JoinItems(items, 8))
		b.WriteString("\n    ]\n")
	}
	b.WriteString("}")
	return b.String(), nil
}

// GenerateConfigurationFiles writes {outputNaming}_geometry_base.json and one
// {outputNaming}_f_{i}.vspl per bundle into simulationPath, creating the
// directory if needed and overwriting existing files. Files written before a
// failure are left in place.
func (h *Handler) GenerateConfigurationFiles(outputNaming, simulationPath string) (*Output, error) {
	if simulationPath == "" {
		return nil, ErrEmptyOutputPath
	}
	if err := os.MkdirAll(simulationPath, 0755); err != nil {
		return nil, fmt.Errorf("creating output directory %s: %w", pathutil.RedactPath(simulationPath), err)
	}

	doc, err := h.Document(simulationPath)
	if err != nil {
		return nil, err
	}

	out := &Output{}
	out.GeometryFile, err = h.write(simulationPath, outputNaming+GeometrySuffix, doc)
	if err != nil {
		return nil, err
	}
	h.trace("geometry", out.GeometryFile, map[string]any{
		"bundles": len(h.bundles),
		"spheres": len(h.spheres),
	})

	for i, pb := range h.bundles {
		path, err := h.write(simulationPath, outputNaming+"_"+SplineID(i)+SplineExtension, pb.bundle.Serialize(2))
		if err != nil {
			return nil, err
		}
		out.SplineFiles = append(out.SplineFiles, path)
		h.trace("spline", path, map[string]any{
			"index":  i,
			"fibers": pb.bundle.FiberCount(),
		})
	}

	return out, nil
}

func (h *Handler) write(dir, name, content string) (string, error) {
	path, err := pathutil.OutputFile(dir, name)
	if err != nil {
		return "", err
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		return "", fmt.Errorf("writing %s: %w", pathutil.RedactPath(path), err)
	}
	if h.logger != nil {
		h.logger.Log(context.Background(), logging.LevelTrace, "fragment written", "file", name, "content", content)
	}
	return path, nil
}

func (h *Handler) trace(step, path string, fields map[string]any) {
	if h.logger != nil {
		h.logger.Debug("file written", "step", step, "file", pathutil.RedactPath(path))
	}
	if h.events != nil {
		entry := map[string]any{"file": path}
		for k, v := range fields {
			entry[k] = v
		}
		h.events.Log(step, entry)
	}
}
