// Package pattern turns an expanded params.Plan into a triangle mesh. Each
// of the five algorithms lives in its own file; Build dispatches on the
// concrete plan type. Generators are pure functions of the plan and the
// random source handed to them, so the same seed always yields the same
// mesh.
package pattern

import (
	"errors"
	"fmt"
	"log/slog"
	"math"
	"strings"

	"cogentcore.org/core/base/randx"

	"github.com/chazu/biomimic/pkg/kernel"
	"github.com/chazu/biomimic/pkg/params"
)

// ErrDefect marks a generated mesh that breaks its own invariants. It
// indicates a bug in a generator, never bad user input.
var ErrDefect = errors.New("generation defect")

// SurfaceMode selects how the gyroid surface is extracted.
type SurfaceMode int

const (
	// SurfacePatch emits a fixed two-triangle patch per grid cell the
	// surface crosses.
	SurfacePatch SurfaceMode = iota
	// SurfaceMarchingCubes polygonizes a thin shell around the surface.
	SurfaceMarchingCubes
)

func (m SurfaceMode) String() string {
	switch m {
	case SurfacePatch:
		return "patch"
	case SurfaceMarchingCubes:
		return "marching-cubes"
	default:
		return fmt.Sprintf("SurfaceMode(%d)", int(m))
	}
}

// ParseSurfaceMode converts "patch" or "marching-cubes" to a SurfaceMode.
func ParseSurfaceMode(s string) (SurfaceMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "patch":
		return SurfacePatch, nil
	case "marching-cubes", "marchingcubes", "mc":
		return SurfaceMarchingCubes, nil
	}
	return 0, fmt.Errorf("unknown surface mode %q, expected patch or marching-cubes", s)
}

// MarshalText encodes the mode by name.
func (m SurfaceMode) MarshalText() ([]byte, error) {
	if m != SurfacePatch && m != SurfaceMarchingCubes {
		return nil, fmt.Errorf("cannot marshal %s", m)
	}
	return []byte(m.String()), nil
}

// UnmarshalText decodes a mode name; empty means SurfacePatch.
func (m *SurfaceMode) UnmarshalText(b []byte) error {
	parsed, err := ParseSurfaceMode(string(b))
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}

// MaxMarchingCells caps the marching cubes grid along the longest axis.
const MaxMarchingCells = 200

// Options tune generation without affecting the plan.
type Options struct {
	Surface       SurfaceMode
	MarchingCells int // 0 derives the grid from the gyroid resolution
	Logger        *slog.Logger
}

// Option configures Options.
type Option func(*Options)

// WithSurface selects the gyroid surface extraction mode.
func WithSurface(m SurfaceMode) Option {
	return func(o *Options) { o.Surface = m }
}

// WithMarchingCells fixes the marching cubes grid size.
func WithMarchingCells(n int) Option {
	return func(o *Options) { o.MarchingCells = n }
}

// WithLogger routes generation diagnostics to l.
func WithLogger(l *slog.Logger) Option {
	return func(o *Options) { o.Logger = l }
}

// Resolve applies opts over the zero Options, later options winning.
func Resolve(opts ...Option) Options {
	return buildOptions(opts)
}

func buildOptions(opts []Option) Options {
	o := Options{}
	for _, opt := range opts {
		opt(&o)
	}
	if o.Logger == nil {
		o.Logger = slog.Default()
	}
	return o
}

// Generate expands p for alg and builds the mesh with a fresh random
// source seeded from p.Seed. It is the single regeneration path: calling
// it twice with the same arguments returns identical meshes.
func Generate(alg params.Algorithm, p params.Parameters, opts ...Option) (*kernel.Mesh, error) {
	plan, err := params.Expand(alg, p)
	if err != nil {
		return nil, err
	}
	return Build(plan, randx.NewSysRand(p.Seed), opts...)
}

// Build runs the generator matching plan's concrete type. rng is consumed
// only by the cell packing and branching generators.
func Build(plan params.Plan, rng randx.Rand, opts ...Option) (*kernel.Mesh, error) {
	o := buildOptions(opts)

	var (
		m   *kernel.Mesh
		err error
	)
	switch p := plan.(type) {
	case params.HoneycombPlan:
		m = honeycomb(p)
	case params.CellPlan:
		m = cells(p, rng)
	case params.BranchPlan:
		m, err = branching(p, rng)
	case params.SpiralPlan:
		m = spiral(p)
	case params.GyroidPlan:
		m, err = gyroid(p, o)
	default:
		return nil, fmt.Errorf("build: unsupported plan %T", plan)
	}
	if err != nil {
		return nil, err
	}

	if errs := kernel.Errors(m.Validate()); len(errs) > 0 {
		return nil, fmt.Errorf("%s: %w: %v", plan.Algorithm(), ErrDefect, errs[0])
	}
	if d := m.Degenerate(); d > 0 {
		o.Logger.Debug("degenerate triangles", "algorithm", plan.Algorithm(), "count", d)
	}
	o.Logger.Debug("generated mesh",
		"algorithm", plan.Algorithm(),
		"triangles", m.TriangleCount(),
		"vertices", m.VertexCount(),
	)
	return m, nil
}

// uniform draws from [lo, hi).
func uniform(rng randx.Rand, lo, hi float64) float64 {
	return lo + rng.Float64()*(hi-lo)
}

// In-plane axes for outlines lying in the X-Z plane.
var (
	axisX = kernel.V(1, 0, 0)
	axisZ = kernel.V(0, 0, 1)
)

func polar(center kernel.Vec3, r, angle float64) kernel.Vec3 {
	return kernel.V(center.X+r*math.Cos(angle), center.Y, center.Z+r*math.Sin(angle))
}
