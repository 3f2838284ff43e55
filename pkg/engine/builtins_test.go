package engine

import (
	"strings"
	"testing"

	zygo "github.com/glycerine/zygomys/zygo"

	"github.com/chazu/biomimic/pkg/params"
)

// ---------------------------------------------------------------------------
// Preprocessing tests
// ---------------------------------------------------------------------------

func TestPreprocessKeywords(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		expect string
	}{
		{
			name:   "simple keyword",
			input:  `(design :seed 7)`,
			expect: `(design "__kw_seed" 7)`,
		},
		{
			name:   "keyword value",
			input:  `(design :algorithm :gyroid)`,
			expect: `(design "__kw_algorithm" "__kw_gyroid")`,
		},
		{
			name:   "keyword in string preserved",
			input:  `"thing with :keyword inside"`,
			expect: `"thing with :keyword inside"`,
		},
		{
			name:   "assignment operator preserved",
			input:  `(def x := 10)`,
			expect: `(def x := 10)`,
		},
		{
			name:   "kebab-case identifier",
			input:  `(def soft-lattice 1)`,
			expect: `(def soft_lattice 1)`,
		},
		{
			name:   "minus operator preserved",
			input:  `(- 10 5)`,
			expect: `(- 10 5)`,
		},
		{
			name:   "negative literal preserved",
			input:  `(+ x -5)`,
			expect: `(+ x -5)`,
		},
		{
			name:   "comment converted to // style",
			input:  `;; comment with :keyword`,
			expect: `// comment with :keyword`,
		},
		{
			name:   "hyphen in keyword preserved",
			input:  `:organic-bias`,
			expect: `"__kw_organic-bias"`,
		},
		{
			name:   "escaped quote inside string",
			input:  `"say \":hi\"" :seed`,
			expect: `"say \":hi\"" "__kw_seed"`,
		},
		{
			name:   "keyword at end of source",
			input:  `(design :seed 1) :`,
			expect: `(design "__kw_seed" 1) :`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := preprocessSource(tt.input)
			if got != tt.expect {
				t.Errorf("preprocessSource(%q) = %q, want %q", tt.input, got, tt.expect)
			}
		})
	}
}

func mustEvaluate(t *testing.T, source string) *Recipe {
	t.Helper()
	r, evalErrs, err := NewEngine().Evaluate(source)
	if err != nil {
		t.Fatalf("fatal error: %v", err)
	}
	if len(evalErrs) > 0 {
		t.Fatalf("eval errors: %v", evalErrs)
	}
	if r == nil {
		t.Fatal("expected non-nil recipe")
	}
	return r
}

func expectEvalError(t *testing.T, source string) {
	t.Helper()
	r, evalErrs, err := NewEngine().Evaluate(source)
	if err != nil {
		t.Fatalf("expected non-fatal eval error, got fatal: %v", err)
	}
	if r != nil {
		t.Fatalf("expected nil recipe, got %+v", r)
	}
	if len(evalErrs) == 0 {
		t.Fatal("expected eval errors")
	}
}

// ---------------------------------------------------------------------------
// design
// ---------------------------------------------------------------------------

func TestDesign(t *testing.T) {
	r := mustEvaluate(t, `
(design :seed 7 :algorithm :gyroid :complexity 0.5 :density 0.6
        :organic-bias 0.4 :scale 1.5 :name "lattice")
`)
	if len(r.Entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(r.Entries))
	}
	e := r.Entries[0]
	if e.Name != "lattice" {
		t.Errorf("name = %q, want lattice", e.Name)
	}
	req := e.Request
	if req.Seed != 7 || req.Complexity != 0.5 || req.Density != 0.6 || req.OrganicBias != 0.4 || req.Scale != 1.5 {
		t.Errorf("unexpected request %+v", req)
	}
	if req.Algorithm == nil || *req.Algorithm != params.Gyroid {
		t.Errorf("algorithm = %v, want gyroid", req.Algorithm)
	}
	if len(r.Warnings) != 0 {
		t.Errorf("unexpected warnings: %v", r.Warnings)
	}
}

func TestDesignDefaults(t *testing.T) {
	r := mustEvaluate(t, `(design :seed 42)`)
	req := r.Entries[0].Request
	d := params.Default()
	if req.Complexity != d.Complexity || req.Density != d.Density || req.OrganicBias != d.OrganicBias {
		t.Errorf("defaults not applied: %+v", req)
	}
	if req.Algorithm != nil {
		t.Errorf("algorithm should be left to selection, got %v", *req.Algorithm)
	}
	if len(r.Warnings) != 1 || !strings.Contains(r.Warnings[0].Message, "no :algorithm") {
		t.Errorf("expected a selection warning, got %v", r.Warnings)
	}
}

func TestDesignVoronoiAlias(t *testing.T) {
	r := mustEvaluate(t, `(design :seed 1 :algorithm :voronoi) (design :seed 2 :algorithm "cell-packing")`)
	for i, e := range r.Entries {
		if *e.Request.Algorithm != params.CellPacking {
			t.Errorf("entry %d: algorithm = %v", i, *e.Request.Algorithm)
		}
	}
}

func TestVariableReference(t *testing.T) {
	r := mustEvaluate(t, `
(def s 19)
(def dense 0.9)
(design :seed s :algorithm :honeycomb :density dense)
`)
	req := r.Entries[0].Request
	if req.Seed != 19 || req.Density != 0.9 {
		t.Errorf("variables not resolved: %+v", req)
	}
}

func TestPreset(t *testing.T) {
	r := mustEvaluate(t, `
(def soft (preset :density 0.3 :organic-bias 0.8))
(design :seed 1 :algorithm :branching :preset soft)
(design :seed 2 :algorithm :branching :preset soft :density 0.6)
`)
	if len(r.Entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(r.Entries))
	}
	a, b := r.Entries[0].Request, r.Entries[1].Request
	if a.Density != 0.3 || a.OrganicBias != 0.8 {
		t.Errorf("preset not applied: %+v", a)
	}
	if b.Density != 0.6 || b.OrganicBias != 0.8 {
		t.Errorf("explicit keyword should override preset: %+v", b)
	}
	if a.Complexity != params.Default().Complexity {
		t.Errorf("unset preset slider changed complexity: %v", a.Complexity)
	}
}

func TestSweep(t *testing.T) {
	r := mustEvaluate(t, `(sweep :from 100 :count 4 :algorithm :spiral :complexity 0.9 :name "coil")`)
	if len(r.Entries) != 4 {
		t.Fatalf("expected 4 entries, got %d", len(r.Entries))
	}
	for i, e := range r.Entries {
		if e.Request.Seed != int64(100+i) {
			t.Errorf("entry %d seed = %d", i, e.Request.Seed)
		}
		if e.Request.Complexity != 0.9 || *e.Request.Algorithm != params.Spiral {
			t.Errorf("entry %d: %+v", i, e.Request)
		}
	}
	if r.Entries[2].Name != "coil-2" {
		t.Errorf("name = %q, want coil-2", r.Entries[2].Name)
	}

	reqs := r.Requests()
	if len(reqs) != 4 || reqs[3].Seed != 103 {
		t.Errorf("Requests() = %+v", reqs)
	}
}

func TestUnknownKeywordWarns(t *testing.T) {
	r := mustEvaluate(t, `(design :seed 1 :algorithm :gyroid :colour "red")`)
	if len(r.Warnings) != 1 {
		t.Fatalf("expected 1 warning, got %v", r.Warnings)
	}
	if !strings.Contains(r.Warnings[0].Message, ":colour") {
		t.Errorf("warning = %q", r.Warnings[0].Message)
	}
}

func TestAlgorithmsBuiltin(t *testing.T) {
	mustEvaluate(t, `(def names (algorithms))`)
}

func TestBuiltinErrors(t *testing.T) {
	sources := map[string]string{
		"missing seed":      `(design :algorithm :gyroid)`,
		"float seed":        `(design :seed 1.5)`,
		"unknown algorithm": `(design :seed 1 :algorithm :coral)`,
		"out of range":      `(design :seed 1 :density 1.5)`,
		"bad preset":        `(design :seed 1 :preset 3)`,
		"string slider":     `(preset :density "high")`,
		"missing count":     `(sweep :from 1)`,
		"zero count":        `(sweep :count 0)`,
		"negative from":     `(sweep :from -4 :count 2)`,
	}
	for name, src := range sources {
		t.Run(name, func(t *testing.T) {
			expectEvalError(t, src)
		})
	}
}

// ---------------------------------------------------------------------------
// Builder helpers, exercised without the interpreter
// ---------------------------------------------------------------------------

func kw(name string) zygo.Sexp { return &zygo.SexpStr{S: kwPrefix + name} }

func TestParseArgs(t *testing.T) {
	pa := parseArgs([]zygo.Sexp{
		&zygo.SexpStr{S: "positional"},
		kw("seed"), &zygo.SexpInt{Val: 3},
		kw("density"), &zygo.SexpFloat{Val: 0.25},
		kw("flag"),
	})
	if len(pa.positional) != 1 {
		t.Errorf("positional = %v", pa.positional)
	}
	if got := strings.Join(pa.order, ","); got != "seed,density,flag" {
		t.Errorf("order = %s", got)
	}
	if pa.kw["flag"] != zygo.SexpNull {
		t.Error("trailing keyword should map to null")
	}
	if got := pa.unknown("seed", "density"); len(got) != 1 || got[0] != "flag" {
		t.Errorf("unknown = %v", got)
	}
}

func TestBuilderRequestErrors(t *testing.T) {
	b := &builder{recipe: &Recipe{}}

	_, err := b.request("design", parseArgs([]zygo.Sexp{kw("algorithm"), kw("coral")}))
	if err == nil || !strings.Contains(err.Error(), "design: algorithm") {
		t.Errorf("err = %v", err)
	}

	_, err = b.request("sweep", parseArgs([]zygo.Sexp{kw("scale"), &zygo.SexpStr{S: "big"}}))
	if err == nil || !strings.Contains(err.Error(), "sweep: scale") {
		t.Errorf("err = %v", err)
	}

	req, err := b.request("design", parseArgs(nil))
	if err != nil {
		t.Fatal(err)
	}
	req.Complexity = 0
	if _, err := b.add("", req); err == nil {
		t.Error("out-of-range request accepted")
	}
}

func TestBuilderEntryCap(t *testing.T) {
	r := &Recipe{Entries: make([]Entry, MaxEntries)}
	b := &builder{recipe: r}
	req, _ := b.request("design", parseArgs(nil))
	if _, err := b.add("", req); err == nil {
		t.Error("expected entry cap error")
	}
}

func TestSexpStrings(t *testing.T) {
	p := &sexpPreset{values: map[string]float64{"scale": 2, "density": 0.5}}
	if got := p.SexpString(nil); got != "(preset :density 0.5 :scale 2)" {
		t.Errorf("preset = %q", got)
	}
	e := &sexpEntry{index: 3, entry: Entry{}}
	e.entry.Request.Seed = 9
	if got := e.SexpString(nil); got != "(design 3 :algorithm :auto :seed 9)" {
		t.Errorf("entry = %q", got)
	}
}
