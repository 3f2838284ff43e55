package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/chazu/biomimic/pkg/engine"
)

func newBatchCmd(a *app) *cobra.Command {
	var (
		exportDir string
		format    string
		noSave    bool
		workers   int
	)
	cmd := &cobra.Command{
		Use:   "batch <recipe>",
		Short: "Generate every design described by a recipe file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			src, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}

			recipe, evalErrs, err := engine.NewEngine().Evaluate(string(src))
			if err != nil {
				return fmt.Errorf("%s: %w", args[0], err)
			}
			if len(evalErrs) > 0 {
				for _, e := range evalErrs {
					fmt.Fprintf(cmd.ErrOrStderr(), "%s: %s\n", args[0], e)
				}
				return errors.New("recipe has errors")
			}
			for _, w := range recipe.Warnings {
				a.logger.Warn("recipe", "entry", w.Entry, "msg", w.Message)
			}
			if len(recipe.Entries) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "recipe produced no designs")
				return nil
			}

			gen, err := a.generator()
			if err != nil {
				return err
			}
			if workers <= 0 {
				workers = a.cfg.Generation.Workers
			}
			results, err := gen.GenerateAll(cmd.Context(), recipe.Requests(), workers)
			if err != nil {
				return err
			}

			if !noSave {
				s, err := a.store()
				if err != nil {
					return err
				}
				for _, res := range results {
					if err := s.Save(res.Design); err != nil {
						return fmt.Errorf("save design: %w", err)
					}
				}
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "ENTRY\tID\tNAME\tTRIANGLES\tFILE")
			for i, res := range results {
				entry := recipe.Entries[i]
				file := "-"
				if exportDir != "" {
					name := defaultFileName(res.Design)
					if entry.Name != "" {
						name = entry.Name + ".stl"
					}
					file = filepath.Join(exportDir, name)
					if err := os.MkdirAll(exportDir, 0o755); err != nil {
						return err
					}
					if err := a.exportMesh(res.Mesh, file, format); err != nil {
						return err
					}
				}
				label := entry.Name
				if label == "" {
					label = fmt.Sprintf("#%d", i)
				}
				fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%s\n",
					label, res.Design.ID.String()[:8], res.Design.DisplayName(),
					res.Properties.TriangleCount, file)
			}
			return tw.Flush()
		},
	}
	cmd.Flags().StringVar(&exportDir, "export-dir", "", "export every mesh into this directory")
	cmd.Flags().StringVar(&format, "format", "", "export format (stl, stl-ascii); defaults to export.format")
	cmd.Flags().BoolVar(&noSave, "no-save", false, "do not save the designs to the library")
	cmd.Flags().IntVarP(&workers, "workers", "j", 0, "concurrent generations; 0 uses generation.workers")
	return cmd
}
