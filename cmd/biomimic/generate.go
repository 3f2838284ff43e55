package main

import (
	"encoding/json"
	"fmt"
	"io"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/chazu/biomimic/pkg/design"
	"github.com/chazu/biomimic/pkg/export"
	"github.com/chazu/biomimic/pkg/generator"
	"github.com/chazu/biomimic/pkg/kernel"
	"github.com/chazu/biomimic/pkg/params"
	"github.com/chazu/biomimic/pkg/pattern"
	"github.com/chazu/biomimic/pkg/store"
)

type generateFlags struct {
	seed        int64
	algorithm   string
	complexity  float64
	density     float64
	organicBias float64
	scale       float64
	noSave      bool
	out         string
	format      string
	json        bool
}

func newGenerateCmd(a *app) *cobra.Command {
	f := &generateFlags{}
	d := params.Default()
	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate a design and save it to the library",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runGenerate(cmd, f)
		},
	}
	fl := cmd.Flags()
	fl.Int64Var(&f.seed, "seed", -1, "seed; negative draws a random one")
	fl.StringVarP(&f.algorithm, "algorithm", "a", "", "pin the algorithm instead of selecting by organic bias")
	fl.Float64Var(&f.complexity, "complexity", d.Complexity,
		fmt.Sprintf("complexity slider [%g, %g]", params.MinComplexity, params.MaxComplexity))
	fl.Float64Var(&f.density, "density", d.Density,
		fmt.Sprintf("density slider [%g, %g]", params.MinDensity, params.MaxDensity))
	fl.Float64Var(&f.organicBias, "organic-bias", d.OrganicBias,
		fmt.Sprintf("organic bias slider [%g, %g]", params.MinOrganicBias, params.MaxOrganicBias))
	fl.Float64Var(&f.scale, "scale", 0, "structure scale; 0 uses generation.scale from the config")
	fl.BoolVar(&f.noSave, "no-save", false, "do not save the design to the library")
	fl.StringVarP(&f.out, "out", "o", "", "also export the mesh to this file")
	fl.StringVar(&f.format, "format", "", "export format (stl, stl-ascii); defaults to export.format")
	fl.BoolVar(&f.json, "json", false, "print the design as JSON")
	return cmd
}

func (a *app) runGenerate(cmd *cobra.Command, f *generateFlags) error {
	seed := f.seed
	if seed < 0 {
		seed = generator.RandomSeed()
	}
	req := generator.NewRequest(seed)
	req.Complexity = f.complexity
	req.Density = f.density
	req.OrganicBias = f.organicBias
	req.Scale = a.cfg.Generation.Scale
	if f.scale != 0 {
		req.Scale = f.scale
	}
	if f.algorithm != "" {
		alg, err := params.ParseAlgorithm(f.algorithm)
		if err != nil {
			return err
		}
		req.Algorithm = generator.Pin(alg)
	}

	gen, err := a.generator()
	if err != nil {
		return err
	}
	session := generator.NewSession(gen, a.cfg.Generation.Timeout.Duration())
	res, err := session.Generate(cmd.Context(), req)
	if err != nil {
		return err
	}

	if !f.noSave {
		s, err := a.store()
		if err != nil {
			return err
		}
		if err := s.Save(res.Design); err != nil {
			return fmt.Errorf("save design: %w", err)
		}
	}

	if f.out != "" {
		if err := a.exportMesh(res.Mesh, f.out, f.format); err != nil {
			return err
		}
		a.logger.Info("exported", "path", f.out)
	}

	return printDesign(cmd.OutOrStdout(), res.Design, f.json)
}

func printDesign(w io.Writer, d *design.Design, asJSON bool) error {
	if asJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(d)
	}
	_, err := fmt.Fprintln(w, d.Report())
	return err
}

func (a *app) exportMesh(m *kernel.Mesh, path, format string) error {
	if format == "" {
		format = a.cfg.Export.Format
	}
	f, err := export.ParseFormat(format)
	if err != nil {
		return err
	}
	return export.WriteFile(path, m, f)
}

func newExportCmd(a *app) *cobra.Command {
	var out, format string
	cmd := &cobra.Command{
		Use:   "export <id>",
		Short: "Regenerate a saved design and write its mesh",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := a.store()
			if err != nil {
				return err
			}
			d, err := store.Resolve(s, args[0])
			if err != nil {
				return err
			}
			// The design carries its own surface settings; the current
			// config does not apply.
			m, err := d.RegenerateMesh(pattern.WithLogger(a.logger))
			if err != nil {
				return fmt.Errorf("regenerate %s: %w", d.ID, err)
			}
			if out == "" {
				out = filepath.Join(a.cfg.Export.Dir, defaultFileName(d))
			}
			if err := a.exportMesh(m, out, format); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), out)
			return nil
		},
	}
	cmd.Flags().StringVarP(&out, "out", "o", "", "output file; defaults to <algorithm>-<seed>.stl in export.dir")
	cmd.Flags().StringVar(&format, "format", "", "export format (stl, stl-ascii); defaults to export.format")
	return cmd
}

func defaultFileName(d *design.Design) string {
	return fmt.Sprintf("%s-%s.stl", d.Algorithm, d.SeedString())
}
