// Package design defines the Design record: the seed, algorithm,
// parameters and derived properties of one generated structure. A Design
// never stores its mesh; RegenerateMesh rebuilds it from the inputs.
package design

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/chazu/biomimic/pkg/analysis"
	"github.com/chazu/biomimic/pkg/catalog"
	"github.com/chazu/biomimic/pkg/kernel"
	"github.com/chazu/biomimic/pkg/params"
	"github.com/chazu/biomimic/pkg/pattern"
)

// Design is the persisted record of one generation.
type Design struct {
	ID         uuid.UUID           `json:"id"`
	Seed       int64               `json:"seed"`
	Algorithm  params.Algorithm    `json:"algorithm"`
	Parameters params.Parameters   `json:"parameters"`
	Properties analysis.Properties `json:"properties"`
	CreatedAt  time.Time           `json:"createdAt"`

	// Gyroid surface settings the mesh was built with. Records written
	// before these existed decode as the patch surface.
	Surface       pattern.SurfaceMode `json:"surface"`
	MarchingCells int                 `json:"marchingCells,omitempty"`
}

// New creates a design with a fresh random ID, stamped with the current
// time. The seed is taken from p; opts are the pattern options the mesh
// was generated with, of which the surface settings are kept.
func New(alg params.Algorithm, p params.Parameters, props analysis.Properties, opts ...pattern.Option) *Design {
	o := pattern.Resolve(opts...)
	return &Design{
		ID:            uuid.New(),
		Seed:          p.Seed,
		Algorithm:     alg,
		Parameters:    p,
		Properties:    props,
		CreatedAt:     time.Now().UTC(),
		Surface:       o.Surface,
		MarchingCells: o.MarchingCells,
	}
}

// Validate checks a design read back from storage.
func (d *Design) Validate() error {
	if d.ID == uuid.Nil {
		return errors.New("design: missing id")
	}
	if !d.Algorithm.Valid() {
		return fmt.Errorf("design %s: invalid algorithm %v", d.ID, d.Algorithm)
	}
	if err := d.Parameters.Validate(); err != nil {
		return fmt.Errorf("design %s: %w", d.ID, err)
	}
	if _, err := d.Surface.MarshalText(); err != nil {
		return fmt.Errorf("design %s: %w", d.ID, err)
	}
	if d.MarchingCells < 0 || d.MarchingCells > pattern.MaxMarchingCells {
		return fmt.Errorf("design %s: marching cells %d outside [0, %d]", d.ID, d.MarchingCells, pattern.MaxMarchingCells)
	}
	return nil
}

// RegenerateMesh rebuilds the mesh from the stored seed, algorithm,
// parameters and surface settings, reproducing the original mesh exactly.
// opts are applied after the stored settings, so a surface option passed
// here overrides them.
func (d *Design) RegenerateMesh(opts ...pattern.Option) (*kernel.Mesh, error) {
	p := d.Parameters
	p.Seed = d.Seed
	stored := []pattern.Option{
		pattern.WithSurface(d.Surface),
		pattern.WithMarchingCells(d.MarchingCells),
	}
	return pattern.Generate(d.Algorithm, p, append(stored, opts...)...)
}

var algorithmNames = map[params.Algorithm]string{
	params.Honeycomb:   "Honeycomb",
	params.CellPacking: "Voronoi",
	params.Branching:   "Branching",
	params.Spiral:      "Spiral",
	params.Gyroid:      "Gyroid",
}

// AlgorithmName is the human-readable algorithm name.
func (d *Design) AlgorithmName() string {
	if n, ok := algorithmNames[d.Algorithm]; ok {
		return n
	}
	return d.Algorithm.String()
}

// AlgorithmDescription returns the reference description of the
// algorithm, or "" when cat has no entry.
func (d *Design) AlgorithmDescription(cat *catalog.Catalog) string {
	if cat == nil {
		return ""
	}
	p, ok := cat.Lookup(d.Algorithm)
	if !ok {
		return ""
	}
	return p.Description
}

// DisplayName is the short title shown in listings, e.g. "GYROID #000042".
func (d *Design) DisplayName() string {
	return strings.ToUpper(d.AlgorithmName()) + " #" + d.SeedString()
}

// SeedString zero-pads the seed to six digits.
func (d *Design) SeedString() string {
	return fmt.Sprintf("%06d", d.Seed)
}

// DateString formats the creation time in UTC.
func (d *Design) DateString() string {
	return d.CreatedAt.UTC().Format("2006-01-02 15:04")
}

// Report renders the plain-text summary used by "show" and clipboard style
// exports.
func (d *Design) Report() string {
	props := d.Properties
	var b strings.Builder
	fmt.Fprintf(&b, "NOVEL DESIGN: %s\n", d.DisplayName())
	fmt.Fprintf(&b, "Algorithm: %s\n", d.AlgorithmName())
	fmt.Fprintf(&b, "Seed: %s\n\n", d.SeedString())
	b.WriteString("STRUCTURAL PROPERTIES:\n")
	fmt.Fprintf(&b, "- Porosity: %s\n", props.PorosityPercent())
	fmt.Fprintf(&b, "- Surface/Volume Ratio: %s\n", props.SurfaceToVolumeFormatted())
	fmt.Fprintf(&b, "- Complexity: %s\n", props.ComplexityLevel())
	fmt.Fprintf(&b, "- Symmetry: %s\n", props.Symmetry)
	fmt.Fprintf(&b, "- Triangles: %d\n", props.TriangleCount)
	fmt.Fprintf(&b, "- Vertices: %d\n\n", props.VertexCount)
	b.WriteString("CHARACTERISTICS:\n")
	b.WriteString(props.Characteristics)
	b.WriteString("\n\nPOTENTIAL APPLICATIONS:\n")
	for _, a := range props.Applications {
		fmt.Fprintf(&b, "- %s\n", a)
	}
	fmt.Fprintf(&b, "\nGenerated: %s\n", d.DateString())
	return b.String()
}
