package engine

import (
	"fmt"
	"sort"
	"strings"

	zygo "github.com/glycerine/zygomys/zygo"

	"github.com/chazu/biomimic/pkg/generator"
	"github.com/chazu/biomimic/pkg/params"
)

// preprocessSource rewrites a recipe into zygomys syntax. Outside string
// literals, :name becomes the string "__kw_name", kebab-case names are
// joined with underscores (zygomys reads a bare hyphen as minus) and
// ; comments become // comments.
func preprocessSource(src string) string {
	var out strings.Builder
	out.Grow(len(src) + len(src)/4)
	for i := 0; i < len(src); {
		c := src[i]
		switch {
		case c == '"':
			end := stringEnd(src, i)
			out.WriteString(src[i:end])
			i = end
		case c == ';':
			end := lineEnd(src, i)
			out.WriteString("//")
			out.WriteString(strings.TrimLeft(src[i:end], ";"))
			i = end
		case c == ':' && i+1 < len(src) && isAlpha(src[i+1]):
			end := i + 1 + nameLen(src[i+1:], true)
			out.WriteString(`"` + kwPrefix + src[i+1:end] + `"`)
			i = end
		case c == '-' && i > 0 && i+1 < len(src) && isNameChar(src[i-1], false) && isAlpha(src[i+1]):
			out.WriteByte('_')
			i++
		default:
			out.WriteByte(c)
			i++
		}
	}
	return out.String()
}

// stringEnd returns the index just past the string literal opening at i.
func stringEnd(src string, i int) int {
	for j := i + 1; j < len(src); j++ {
		switch src[j] {
		case '\\':
			j++
		case '"':
			return j + 1
		}
	}
	return len(src)
}

func lineEnd(src string, i int) int {
	if n := strings.IndexByte(src[i:], '\n'); n >= 0 {
		return i + n
	}
	return len(src)
}

func isAlpha(c byte) bool {
	return ('a' <= c && c <= 'z') || ('A' <= c && c <= 'Z')
}

// isNameChar reports whether c continues a name. Keywords may also
// contain hyphens.
func isNameChar(c byte, keyword bool) bool {
	return isAlpha(c) || ('0' <= c && c <= '9') || c == '_' || (keyword && c == '-')
}

func nameLen(s string, keyword bool) int {
	n := 0
	for n < len(s) && isNameChar(s[n], keyword) {
		n++
	}
	return n
}

// ---------------------------------------------------------------------------
// Custom Sexp types
// ---------------------------------------------------------------------------

// sexpPreset carries slider overrides between builtins.
type sexpPreset struct {
	values map[string]float64
}

func (p *sexpPreset) SexpString(ps *zygo.PrintState) string {
	keys := make([]string, 0, len(p.values))
	for k := range p.values {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	var b strings.Builder
	b.WriteString("(preset")
	for _, k := range keys {
		fmt.Fprintf(&b, " :%s %g", k, p.values[k])
	}
	b.WriteString(")")
	return b.String()
}
func (p *sexpPreset) Type() *zygo.RegisteredType { return nil }

// sexpEntry is the value returned by `design`: a handle on the recipe entry
// it appended.
type sexpEntry struct {
	index int
	entry Entry
}

func (e *sexpEntry) SexpString(ps *zygo.PrintState) string {
	alg := "auto"
	if e.entry.Request.Algorithm != nil {
		alg = e.entry.Request.Algorithm.String()
	}
	return fmt.Sprintf("(design %d :algorithm :%s :seed %d)", e.index, alg, e.entry.Request.Seed)
}
func (e *sexpEntry) Type() *zygo.RegisteredType { return nil }

// ---------------------------------------------------------------------------
// Keyword argument parsing
// ---------------------------------------------------------------------------

// kwPrefix is the marker prepended to keyword names by preprocessSource.
const kwPrefix = "__kw_"

// isKW reports whether s is a preprocessed keyword and returns its name.
func isKW(s zygo.Sexp) (string, bool) {
	str, ok := s.(*zygo.SexpStr)
	if !ok {
		return "", false
	}
	if strings.HasPrefix(str.S, kwPrefix) {
		return str.S[len(kwPrefix):], true
	}
	return "", false
}

type kwArgs struct {
	kw         map[string]zygo.Sexp
	order      []string
	positional []zygo.Sexp
}

// parseArgs separates keyword and positional arguments.
func parseArgs(args []zygo.Sexp) kwArgs {
	result := kwArgs{kw: make(map[string]zygo.Sexp)}
	i := 0
	for i < len(args) {
		name, ok := isKW(args[i])
		if !ok {
			result.positional = append(result.positional, args[i])
			i++
			continue
		}
		if _, seen := result.kw[name]; !seen {
			result.order = append(result.order, name)
		}
		if i+1 < len(args) {
			result.kw[name] = args[i+1]
			i += 2
		} else {
			result.kw[name] = zygo.SexpNull
			i++
		}
	}
	return result
}

// unknown returns the keywords of pa not in allowed, in source order.
func (pa kwArgs) unknown(allowed ...string) []string {
	var out []string
	for _, k := range pa.order {
		found := false
		for _, a := range allowed {
			if k == a {
				found = true
				break
			}
		}
		if !found {
			out = append(out, k)
		}
	}
	return out
}

// ---------------------------------------------------------------------------
// Value extraction helpers
// ---------------------------------------------------------------------------

func toFloat64(s zygo.Sexp) (float64, error) {
	switch v := s.(type) {
	case *zygo.SexpInt:
		return float64(v.Val), nil
	case *zygo.SexpFloat:
		return v.Val, nil
	}
	return 0, fmt.Errorf("expected number, got %T (%s)", s, s.SexpString(nil))
}

func toInt64(s zygo.Sexp) (int64, error) {
	if v, ok := s.(*zygo.SexpInt); ok {
		return v.Val, nil
	}
	return 0, fmt.Errorf("expected integer, got %T (%s)", s, s.SexpString(nil))
}

func toString(s zygo.Sexp) (string, error) {
	if str, ok := s.(*zygo.SexpStr); ok {
		return str.S, nil
	}
	return "", fmt.Errorf("expected string, got %T (%s)", s, s.SexpString(nil))
}

// toKeywordString accepts a keyword (:gyroid) or a plain string ("gyroid").
func toKeywordString(s zygo.Sexp) (string, error) {
	str, ok := s.(*zygo.SexpStr)
	if !ok {
		return "", fmt.Errorf("expected keyword or string, got %T (%s)", s, s.SexpString(nil))
	}
	return strings.TrimPrefix(str.S, kwPrefix), nil
}

func toAlgorithm(s zygo.Sexp) (params.Algorithm, error) {
	name, err := toKeywordString(s)
	if err != nil {
		return 0, err
	}
	return params.ParseAlgorithm(name)
}

func toPreset(s zygo.Sexp) (*sexpPreset, error) {
	if p, ok := s.(*sexpPreset); ok {
		return p, nil
	}
	return nil, fmt.Errorf("expected preset, got %T (%s)", s, s.SexpString(nil))
}

// sliderKeys are the keywords shared by `preset`, `design` and `sweep`.
var sliderKeys = []string{"complexity", "density", "organic-bias", "scale"}

// readSliders collects the slider keywords present in pa.
func readSliders(fn string, pa kwArgs) (map[string]float64, error) {
	out := make(map[string]float64)
	for _, k := range sliderKeys {
		v, ok := pa.kw[k]
		if !ok {
			continue
		}
		f, err := toFloat64(v)
		if err != nil {
			return nil, fmt.Errorf("%s: %s: %w", fn, k, err)
		}
		out[k] = f
	}
	return out, nil
}

func applySliders(req *generator.Request, values map[string]float64) {
	for k, v := range values {
		switch k {
		case "complexity":
			req.Complexity = v
		case "density":
			req.Density = v
		case "organic-bias":
			req.OrganicBias = v
		case "scale":
			req.Scale = v
		}
	}
}

// ---------------------------------------------------------------------------
// Builtin registration
// ---------------------------------------------------------------------------

// builder accumulates the recipe while builtins run.
type builder struct {
	recipe *Recipe
}

func (b *builder) warn(format string, args ...any) {
	b.recipe.Warnings = append(b.recipe.Warnings, EvalWarning{
		Entry:   len(b.recipe.Entries),
		Message: fmt.Sprintf(format, args...),
	})
}

// request builds one generation request from the shared keywords.
func (b *builder) request(fn string, pa kwArgs) (generator.Request, error) {
	req := generator.NewRequest(0)
	if v, ok := pa.kw["preset"]; ok {
		p, err := toPreset(v)
		if err != nil {
			return req, fmt.Errorf("%s: preset: %w", fn, err)
		}
		applySliders(&req, p.values)
	}
	sliders, err := readSliders(fn, pa)
	if err != nil {
		return req, err
	}
	applySliders(&req, sliders)

	if v, ok := pa.kw["algorithm"]; ok {
		alg, err := toAlgorithm(v)
		if err != nil {
			return req, fmt.Errorf("%s: algorithm: %w", fn, err)
		}
		req.Algorithm = generator.Pin(alg)
	}
	return req, nil
}

func (b *builder) add(name string, req generator.Request) (*sexpEntry, error) {
	if len(b.recipe.Entries) >= MaxEntries {
		return nil, fmt.Errorf("recipe exceeds %d designs", MaxEntries)
	}
	if err := req.Parameters().Validate(); err != nil {
		return nil, err
	}
	e := Entry{Name: name, Request: req}
	b.recipe.Entries = append(b.recipe.Entries, e)
	return &sexpEntry{index: len(b.recipe.Entries) - 1, entry: e}, nil
}

// registerBuiltins installs the recipe builtins into env. Source must be
// preprocessed with preprocessSource first so keywords are recognizable.
func registerBuiltins(env *zygo.Zlisp, r *Recipe) {
	b := &builder{recipe: r}

	// -----------------------------------------------------------------------
	// (preset :complexity 0.8 :density 0.3 :organic-bias 0.6 :scale 1.5)
	// -----------------------------------------------------------------------
	env.AddFunction("preset", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)
		for _, k := range pa.unknown(sliderKeys...) {
			b.warn("preset: unknown keyword :%s", k)
		}
		values, err := readSliders("preset", pa)
		if err != nil {
			return zygo.SexpNull, err
		}
		return &sexpPreset{values: values}, nil
	})

	// -----------------------------------------------------------------------
	// (design :seed 7 :algorithm :gyroid :complexity 0.5 :density 0.6
	//         :organic-bias 0.4 :scale 1.0 :preset p :name "lattice")
	// -----------------------------------------------------------------------
	env.AddFunction("design", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)
		for _, k := range pa.unknown(append([]string{"seed", "algorithm", "preset", "name"}, sliderKeys...)...) {
			b.warn("design: unknown keyword :%s", k)
		}

		v, ok := pa.kw["seed"]
		if !ok {
			return zygo.SexpNull, fmt.Errorf("design: :seed is required")
		}
		seed, err := toInt64(v)
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("design: seed: %w", err)
		}

		req, err := b.request("design", pa)
		if err != nil {
			return zygo.SexpNull, err
		}
		req.Seed = seed

		label := ""
		if v, ok := pa.kw["name"]; ok {
			if label, err = toString(v); err != nil {
				return zygo.SexpNull, fmt.Errorf("design: name: %w", err)
			}
		}
		if req.Algorithm == nil {
			b.warn("design: no :algorithm, seed %d selects one by organic bias", seed)
		}

		e, err := b.add(label, req)
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("design: %w", err)
		}
		return e, nil
	})

	// -----------------------------------------------------------------------
	// (sweep :from 100 :count 8 :algorithm :spiral :preset p)
	// Adds count designs with consecutive seeds and returns count.
	// -----------------------------------------------------------------------
	env.AddFunction("sweep", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)
		for _, k := range pa.unknown(append([]string{"from", "count", "algorithm", "preset", "name"}, sliderKeys...)...) {
			b.warn("sweep: unknown keyword :%s", k)
		}

		var from, count int64
		var err error
		if v, ok := pa.kw["from"]; ok {
			if from, err = toInt64(v); err != nil {
				return zygo.SexpNull, fmt.Errorf("sweep: from: %w", err)
			}
		}
		v, ok := pa.kw["count"]
		if !ok {
			return zygo.SexpNull, fmt.Errorf("sweep: :count is required")
		}
		if count, err = toInt64(v); err != nil {
			return zygo.SexpNull, fmt.Errorf("sweep: count: %w", err)
		}
		if count < 1 || count > MaxSweep {
			return zygo.SexpNull, fmt.Errorf("sweep: count %d outside [1, %d]", count, MaxSweep)
		}
		if from < 0 {
			return zygo.SexpNull, fmt.Errorf("sweep: from %d is negative", from)
		}

		req, err := b.request("sweep", pa)
		if err != nil {
			return zygo.SexpNull, err
		}
		label := ""
		if v, ok := pa.kw["name"]; ok {
			if label, err = toString(v); err != nil {
				return zygo.SexpNull, fmt.Errorf("sweep: name: %w", err)
			}
		}
		for i := int64(0); i < count; i++ {
			r := req
			r.Seed = from + i
			entryName := label
			if label != "" {
				entryName = fmt.Sprintf("%s-%d", label, i)
			}
			if _, err := b.add(entryName, r); err != nil {
				return zygo.SexpNull, fmt.Errorf("sweep: %w", err)
			}
		}
		return &zygo.SexpInt{Val: count}, nil
	})

	// -----------------------------------------------------------------------
	// (algorithms) returns the algorithm names as a list of strings.
	// -----------------------------------------------------------------------
	env.AddFunction("algorithms", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		names := make([]zygo.Sexp, len(params.Algorithms))
		for i, a := range params.Algorithms {
			names[i] = &zygo.SexpStr{S: a.String()}
		}
		return zygo.MakeList(names), nil
	})
}
