package simulation

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"os"

	"github.com/dmrisim/simfactory/internal/logging"
	"github.com/dmrisim/simfactory/internal/pathutil"
)

const (
	// ParameterExtension is the extension of the simulator parameter document.
	ParameterExtension = ".ffp"

	// BValsExtension and BVecsExtension name the FSL-style gradient tables
	// written next to the parameter document.
	BValsExtension = ".bvals"
	BVecsExtension = ".bvecs"
)

// Output lists the files written by GenerateXMLConfigurationFile.
type Output struct {
	ParameterFile string
	BValsFile     string
	BVecsFile     string
}

// Files returns every written path, parameter document first.
func (o *Output) Files() []string {
	return []string{o.ParameterFile, o.BValsFile, o.BVecsFile}
}

// Handler binds the geometry world sizing to the simulation components and
// writes the parameter document. It is not safe for concurrent use.
type Handler struct {
	resolution   []int
	spacing      []float64
	compartments []Compartment
	acquisition  *AcquisitionProfile
	gradient     *GradientProfile
	artifacts    ArtifactModel
	logger       *slog.Logger
	events       *logging.GenerationLog
}

// NewHandler returns an empty handler for a world of up to three axes.
func NewHandler(resolution []int, spacing []float64) (*Handler, error) {
	if len(resolution) == 0 || len(resolution) > 3 || len(resolution) != len(spacing) {
		return nil, fmt.Errorf("resolution %v, spacing %v: %w", resolution, spacing, ErrInvalidParameter)
	}
	for i := range resolution {
		if resolution[i] < 1 || !finite(spacing[i]) || spacing[i] <= 0 {
			return nil, fmt.Errorf("axis %d: %w", i, ErrInvalidParameter)
		}
	}
	return &Handler{
		resolution: append([]int(nil), resolution...),
		spacing:    append([]float64(nil), spacing...),
	}, nil
}

// SetLogger sets the diagnostic logger and generation event log. Either may be nil.
func (h *Handler) SetLogger(logger *slog.Logger, events *logging.GenerationLog) {
	h.logger = logger
	h.events = events
}

// AddCompartment validates c and rejects a second compartment of the same type.
func (h *Handler) AddCompartment(c Compartment) error {
	if err := c.Validate(); err != nil {
		return err
	}
	for _, existing := range h.compartments {
		if existing.Type == c.Type {
			return fmt.Errorf("%s: %w", c.Type, ErrDuplicateCompartment)
		}
	}
	h.compartments = append(h.compartments, c)
	return nil
}

func (h *Handler) SetAcquisitionProfile(p AcquisitionProfile) *Handler {
	h.acquisition = &p
	return h
}

func (h *Handler) SetGradientProfile(g GradientProfile) *Handler {
	h.gradient = &g
	return h
}

func (h *Handler) SetArtifactModel(m ArtifactModel) *Handler {
	h.artifacts = m
	return h
}

// Compartments returns the compartments in insertion order.
func (h *Handler) Compartments() []Compartment {
	return append([]Compartment(nil), h.compartments...)
}

func (h *Handler) Resolution() []int  { return append([]int(nil), h.resolution...) }
func (h *Handler) Spacing() []float64 { return append([]float64(nil), h.spacing...) }

func (h *Handler) ready() error {
	switch {
	case h.acquisition == nil:
		return fmt.Errorf("no acquisition profile: %w", ErrIncomplete)
	case h.gradient == nil || h.gradient.variant == nil:
		return fmt.Errorf("no gradient profile: %w", ErrIncomplete)
	case len(h.compartments) == 0:
		return fmt.Errorf("no compartments: %w", ErrIncomplete)
	}
	if err := h.acquisition.validate(); err != nil {
		return fmt.Errorf("acquisition profile: %w", err)
	}
	return nil
}

// GenerateXMLConfigurationFile writes {outputNaming}.ffp with the matching
// .bvals and .bvecs into simulationPath, creating the directory if needed
// and overwriting existing files.
func (h *Handler) GenerateXMLConfigurationFile(outputNaming, simulationPath string) (*Output, error) {
	if simulationPath == "" {
		return nil, fmt.Errorf("empty output path: %w", ErrInvalidParameter)
	}
	doc, err := h.Document()
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(simulationPath, 0755); err != nil {
		return nil, fmt.Errorf("creating output directory %s: %w", pathutil.RedactPath(simulationPath), err)
	}

	out := &Output{}
	if out.ParameterFile, err = h.write(simulationPath, outputNaming+ParameterExtension, doc); err != nil {
		return nil, err
	}
	if out.BValsFile, err = h.write(simulationPath, outputNaming+BValsExtension, bvalsTable(*h.gradient)); err != nil {
		return nil, err
	}
	if out.BVecsFile, err = h.write(simulationPath, outputNaming+BVecsExtension, bvecsTable(*h.gradient)); err != nil {
		return nil, err
	}
	if h.logger != nil {
		h.logger.Debug("simulation parameters written",
			"file", pathutil.RedactPath(out.ParameterFile),
			"volumes", h.gradient.Len(),
			"b0", h.gradient.B0Count(),
			"shells", shellCount(h.gradient.bvals),
			"bmax", h.gradient.MaxBValue(),
			"artifacts", h.artifacts.Len())
	}
	h.events.Log("simulation", map[string]any{
		"file":         out.ParameterFile,
		"volumes":      h.gradient.Len(),
		"compartments": len(h.compartments),
		"acquisition":  string(h.gradient.Variant().Type()),
	})
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
		h.logger.Log(context.Background(), logging.LevelTrace, "fragment written", "file", name, "bytes", len(content))
	}
	return path, nil
}

// shellCount is the number of distinct non-zero b-values.
func shellCount(bvals []float64) int {
	seen := map[float64]bool{}
	for _, b := range bvals {
		if b != 0 {
			seen[math.Round(b)] = true
		}
	}
	return len(seen)
}
