// Package catalog holds the biomimicry reference data for each pattern
// algorithm: where the structure occurs in nature, the engineering
// principle it embodies, and where it is applied. The data ships embedded
// in the binary as YAML.
package catalog

import (
	_ "embed"
	"fmt"
	"strings"

	"cogentcore.org/core/base/randx"
	"github.com/samber/lo"
	"gopkg.in/yaml.v3"

	"github.com/chazu/biomimic/pkg/params"
)

//go:embed patterns.yaml
var patternsYAML []byte

// Application is one engineering field a pattern is used in.
type Application struct {
	Field       string `yaml:"field" json:"field"`
	Description string `yaml:"description" json:"description"`
}

// Pattern is the reference entry for one algorithm.
type Pattern struct {
	Algorithm        params.Algorithm `yaml:"algorithm" json:"algorithm"`
	Name             string           `yaml:"name" json:"name"`
	BiologicalSource string           `yaml:"biologicalSource" json:"biologicalSource"`
	Principle        string           `yaml:"principle" json:"principle"`
	UseCases         []string         `yaml:"useCases" json:"useCases"`
	StrengthRating   float64          `yaml:"strengthRating" json:"strengthRating"`
	WeightEfficiency float64          `yaml:"weightEfficiency" json:"weightEfficiency"`
	Complexity       float64          `yaml:"complexity" json:"complexity"`
	Description      string           `yaml:"description" json:"description"`
	Applications     []Application    `yaml:"applications" json:"applications"`
}

// Catalog is an immutable, algorithm-keyed set of patterns.
type Catalog struct {
	patterns []Pattern
	byAlg    map[params.Algorithm]Pattern
}

// New loads the embedded reference data.
func New() (*Catalog, error) {
	return Parse(patternsYAML)
}

// Parse decodes a YAML document with a top-level "patterns" list. Every
// algorithm must appear exactly once.
func Parse(data []byte) (*Catalog, error) {
	var doc struct {
		Patterns []Pattern `yaml:"patterns"`
	}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parsing catalog: %w", err)
	}

	byAlg := lo.KeyBy(doc.Patterns, func(p Pattern) params.Algorithm { return p.Algorithm })
	if len(byAlg) != len(doc.Patterns) {
		return nil, fmt.Errorf("catalog: duplicate algorithm entries")
	}
	for _, a := range params.Algorithms {
		p, ok := byAlg[a]
		if !ok {
			return nil, fmt.Errorf("catalog: missing entry for %s", a)
		}
		if err := p.validate(); err != nil {
			return nil, fmt.Errorf("catalog: %s: %w", a, err)
		}
	}

	ordered := lo.Map(params.Algorithms, func(a params.Algorithm, _ int) Pattern { return byAlg[a] })
	return &Catalog{patterns: ordered, byAlg: byAlg}, nil
}

func (p Pattern) validate() error {
	if p.Name == "" {
		return fmt.Errorf("name is required")
	}
	for name, v := range map[string]float64{
		"strengthRating":   p.StrengthRating,
		"weightEfficiency": p.WeightEfficiency,
		"complexity":       p.Complexity,
	} {
		if v < 0 || v > 1 {
			return fmt.Errorf("%s %v outside [0, 1]", name, v)
		}
	}
	return nil
}

// Lookup returns the entry for alg.
func (c *Catalog) Lookup(alg params.Algorithm) (Pattern, bool) {
	p, ok := c.byAlg[alg]
	return p, ok
}

// All returns every entry in algorithm order. The slice is a copy.
func (c *Catalog) All() []Pattern {
	out := make([]Pattern, len(c.patterns))
	copy(out, c.patterns)
	return out
}

// Random picks an entry uniformly with rng.
func (c *Catalog) Random(rng randx.Rand) Pattern {
	return c.patterns[rng.Intn(len(c.patterns))]
}

// Search returns the entries whose name, biological source, principle or
// use cases contain term, ignoring case. An empty term matches everything.
func (c *Catalog) Search(term string) []Pattern {
	term = strings.ToLower(strings.TrimSpace(term))
	return lo.Filter(c.patterns, func(p Pattern, _ int) bool {
		if term == "" {
			return true
		}
		fields := append([]string{p.Name, p.BiologicalSource, p.Principle}, p.UseCases...)
		return lo.SomeBy(fields, func(f string) bool {
			return strings.Contains(strings.ToLower(f), term)
		})
	})
}
