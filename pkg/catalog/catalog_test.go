package catalog

import (
	"strings"
	"testing"

	"cogentcore.org/core/base/randx"

	"github.com/chazu/biomimic/pkg/params"
)

func mustNew(t *testing.T) *Catalog {
	t.Helper()
	c, err := New()
	if err != nil {
		t.Fatalf("New(): %v", err)
	}
	return c
}

func TestEmbeddedCatalogComplete(t *testing.T) {
	c := mustNew(t)
	for _, a := range params.Algorithms {
		p, ok := c.Lookup(a)
		if !ok {
			t.Fatalf("no entry for %v", a)
		}
		if p.Algorithm != a {
			t.Errorf("entry for %v reports algorithm %v", a, p.Algorithm)
		}
		if len(p.UseCases) != 4 {
			t.Errorf("%v: %d use cases, want 4", a, len(p.UseCases))
		}
		if len(p.Applications) != 3 {
			t.Errorf("%v: %d applications, want 3", a, len(p.Applications))
		}
		if p.Description == "" || strings.Contains(p.Description, "\n") {
			t.Errorf("%v: description should be one folded paragraph, got %q", a, p.Description)
		}
	}
}

func TestLookupValues(t *testing.T) {
	c := mustNew(t)
	tests := []struct {
		alg        params.Algorithm
		name       string
		strength   float64
		complexity float64
	}{
		{params.Honeycomb, "Honeycomb", 0.85, 0.4},
		{params.CellPacking, "Voronoi", 0.78, 0.6},
		{params.Branching, "Branching", 0.65, 0.7},
		{params.Spiral, "Spiral", 0.72, 0.5},
		{params.Gyroid, "Gyroid", 0.90, 0.9},
	}
	for _, tt := range tests {
		p, _ := c.Lookup(tt.alg)
		if p.Name != tt.name || p.StrengthRating != tt.strength || p.Complexity != tt.complexity {
			t.Errorf("Lookup(%v) = %q %v %v", tt.alg, p.Name, p.StrengthRating, p.Complexity)
		}
	}
}

func TestAllIsOrderedCopy(t *testing.T) {
	c := mustNew(t)
	all := c.All()
	if len(all) != len(params.Algorithms) {
		t.Fatalf("All() returned %d entries", len(all))
	}
	for i, a := range params.Algorithms {
		if all[i].Algorithm != a {
			t.Errorf("All()[%d] = %v, want %v", i, all[i].Algorithm, a)
		}
	}
	all[0].Name = "mutated"
	if p, _ := c.Lookup(params.Honeycomb); p.Name == "mutated" {
		t.Error("All() exposed internal storage")
	}
}

func TestRandomIsSeeded(t *testing.T) {
	c := mustNew(t)
	a := c.Random(randx.NewSysRand(7))
	b := c.Random(randx.NewSysRand(7))
	if a.Algorithm != b.Algorithm {
		t.Errorf("same seed picked %v and %v", a.Algorithm, b.Algorithm)
	}

	seen := map[params.Algorithm]bool{}
	rng := randx.NewSysRand(1)
	for i := 0; i < 200; i++ {
		seen[c.Random(rng).Algorithm] = true
	}
	if len(seen) != len(params.Algorithms) {
		t.Errorf("200 draws covered only %d algorithms", len(seen))
	}
}

func TestSearch(t *testing.T) {
	c := mustNew(t)
	tests := []struct {
		term string
		want []params.Algorithm
	}{
		{"", params.Algorithms},
		{"HEAT", []params.Algorithm{params.Gyroid}},
		{"giraffe", []params.Algorithm{params.CellPacking}},
		{"no such thing", nil},
	}
	for _, tt := range tests {
		got := c.Search(tt.term)
		if len(got) != len(tt.want) {
			t.Errorf("Search(%q) returned %d entries, want %d", tt.term, len(got), len(tt.want))
			continue
		}
		for i := range got {
			if got[i].Algorithm != tt.want[i] {
				t.Errorf("Search(%q)[%d] = %v, want %v", tt.term, i, got[i].Algorithm, tt.want[i])
			}
		}
	}
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{"malformed", "patterns: [unclosed"},
		{"unknown algorithm", "patterns:\n  - algorithm: fractal\n    name: X\n"},
		{"missing entries", "patterns:\n  - algorithm: honeycomb\n    name: Honeycomb\n"},
		{
			"duplicate",
			"patterns:\n  - algorithm: honeycomb\n    name: A\n  - algorithm: honeycomb\n    name: B\n",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Parse([]byte(tt.doc)); err == nil {
				t.Error("expected error")
			}
		})
	}
}
