// Package generator is the engine's entry point: it validates a request,
// picks an algorithm when none is pinned, builds the mesh and analyzes it,
// and bundles the outcome as a design.Design.
package generator

import (
	"context"
	"fmt"
	"log/slog"

	"cogentcore.org/core/base/randx"
	"golang.org/x/sync/errgroup"

	"github.com/chazu/biomimic/pkg/analysis"
	"github.com/chazu/biomimic/pkg/catalog"
	"github.com/chazu/biomimic/pkg/design"
	"github.com/chazu/biomimic/pkg/kernel"
	"github.com/chazu/biomimic/pkg/params"
	"github.com/chazu/biomimic/pkg/pattern"
)

// MaxSeed bounds randomly drawn seeds so they fit the six-digit display.
const MaxSeed = 999999

// Request holds the inputs of one generation. A nil Algorithm lets the
// generator choose, weighted by OrganicBias.
type Request struct {
	Seed        int64             `json:"seed"`
	Complexity  float64           `json:"complexity"`
	Density     float64           `json:"density"`
	OrganicBias float64           `json:"organicBias"`
	Scale       float64           `json:"scale,omitempty"`
	Algorithm   *params.Algorithm `json:"algorithm,omitempty"`
}

// NewRequest returns a request with the default sliders and the given seed.
func NewRequest(seed int64) Request {
	d := params.Default()
	return Request{
		Seed:        seed,
		Complexity:  d.Complexity,
		Density:     d.Density,
		OrganicBias: d.OrganicBias,
		Scale:       d.Scale,
	}
}

// Pin returns a pointer to a, for Request.Algorithm.
func Pin(a params.Algorithm) *params.Algorithm {
	return &a
}

// Parameters converts the request sliders to params.Parameters.
func (r Request) Parameters() params.Parameters {
	return params.Parameters{
		Seed:        r.Seed,
		Complexity:  r.Complexity,
		Density:     r.Density,
		OrganicBias: r.OrganicBias,
		Scale:       r.Scale,
	}
}

// Result is the outcome of one generation.
type Result struct {
	Algorithm  params.Algorithm
	Mesh       *kernel.Mesh
	Properties analysis.Properties
	Design     *design.Design
}

// Generator produces designs. It holds no per-call state and is safe for
// concurrent use.
type Generator struct {
	catalog  *catalog.Catalog
	logger   *slog.Logger
	patterns []pattern.Option
}

// Option configures a Generator.
type Option func(*Generator)

// WithLogger sets the logger for the generator and its pattern builds.
func WithLogger(l *slog.Logger) Option {
	return func(g *Generator) { g.logger = l }
}

// WithPatternOptions forwards options to every pattern build.
func WithPatternOptions(opts ...pattern.Option) Option {
	return func(g *Generator) { g.patterns = append(g.patterns, opts...) }
}

// New returns a generator that reads reference data from cat.
func New(cat *catalog.Catalog, opts ...Option) *Generator {
	g := &Generator{catalog: cat, logger: slog.Default()}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// PatternOptions returns the options used for every build, including the
// logger. Regenerating a design with them reproduces the generated mesh.
func (g *Generator) PatternOptions() []pattern.Option {
	opts := append([]pattern.Option(nil), g.patterns...)
	return append(opts, pattern.WithLogger(g.logger))
}

// Generate runs one generation. Out-of-range sliders are rejected with an
// error wrapping params.ErrOutOfRange.
func (g *Generator) Generate(req Request) (Result, error) {
	p := req.Parameters()
	if err := p.Validate(); err != nil {
		return Result{}, fmt.Errorf("generate: %w", err)
	}

	alg := SelectAlgorithm(req.Seed, req.OrganicBias)
	if req.Algorithm != nil {
		if !req.Algorithm.Valid() {
			return Result{}, fmt.Errorf("generate: invalid algorithm %v", *req.Algorithm)
		}
		alg = *req.Algorithm
	}

	opts := g.PatternOptions()
	mesh, err := pattern.Generate(alg, p, opts...)
	if err != nil {
		return Result{}, fmt.Errorf("generate %s: %w", alg, err)
	}

	props, err := analysis.Analyze(mesh, p, alg, g.catalog)
	if err != nil {
		return Result{}, fmt.Errorf("generate %s: %w", alg, err)
	}

	d := design.New(alg, p, props, opts...)
	g.logger.Info("generated design",
		"id", d.ID,
		"algorithm", alg,
		"seed", req.Seed,
		"triangles", props.TriangleCount,
	)
	return Result{Algorithm: alg, Mesh: mesh, Properties: props, Design: d}, nil
}

// GenerateAll runs reqs on up to workers goroutines and returns results in
// request order. The first failure cancels the remaining work.
func (g *Generator) GenerateAll(ctx context.Context, reqs []Request, workers int) ([]Result, error) {
	if workers <= 0 {
		workers = 1
	}
	results := make([]Result, len(reqs))

	eg, ctx := errgroup.WithContext(ctx)
	eg.SetLimit(workers)
	for i, req := range reqs {
		eg.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			res, err := g.Generate(req)
			if err != nil {
				return fmt.Errorf("request %d: %w", i, err)
			}
			results[i] = res
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// Weights returns the selection probability of each algorithm, in
// params.Algorithms order. Rigid lattices (honeycomb, spiral) are favored
// at low organic bias and organic forms (voronoi, branching, gyroid) at
// high bias; a bias of 0.5 is uniform.
func Weights(organicBias float64) []float64 {
	ws := make([]float64, len(params.Algorithms))
	var sum float64
	for i, a := range params.Algorithms {
		if isRigid(a) {
			ws[i] = 1.5 - organicBias
		} else {
			ws[i] = 0.5 + organicBias
		}
		sum += ws[i]
	}
	for i := range ws {
		ws[i] /= sum
	}
	return ws
}

func isRigid(a params.Algorithm) bool {
	return a == params.Honeycomb || a == params.Spiral
}

// SelectAlgorithm picks an algorithm from a random source seeded with seed,
// so the choice is reproducible and independent of the mesh draws.
func SelectAlgorithm(seed int64, organicBias float64) params.Algorithm {
	rng := randx.NewSysRand(seed)
	return params.Algorithms[randx.PChoose64(Weights(organicBias), rng)]
}

// RandomSeed draws a seed in [0, MaxSeed] from the global source.
func RandomSeed() int64 {
	return randx.NewGlobalRand().Int63n(MaxSeed + 1)
}
