package main

import (
	"errors"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/chazu/biomimic/pkg/store"
)

func newListCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List saved designs, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := a.store()
			if err != nil {
				return err
			}
			designs, err := s.List()
			if err != nil {
				return err
			}
			if len(designs) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "no saved designs")
				return nil
			}
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tNAME\tPOROSITY\tCOMPLEXITY\tTRIANGLES\tCREATED")
			for _, d := range designs {
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%d\t%s\n",
					d.ID.String()[:8],
					d.DisplayName(),
					d.Properties.PorosityPercent(),
					d.Properties.ComplexityLevel(),
					d.Properties.TriangleCount,
					d.DateString(),
				)
			}
			return tw.Flush()
		},
	}
}

func newShowCmd(a *app) *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "show <id>",
		Short: "Print the report of a saved design",
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
			if !asJSON {
				fmt.Fprintf(cmd.OutOrStdout(), "ID: %s\n%s\n\n", d.ID, d.AlgorithmDescription(a.catalog))
			}
			return printDesign(cmd.OutOrStdout(), d, asJSON)
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the design as JSON")
	return cmd
}

func newDeleteCmd(a *app) *cobra.Command {
	var all bool
	cmd := &cobra.Command{
		Use:   "delete <id>...",
		Short: "Delete saved designs",
		RunE: func(cmd *cobra.Command, args []string) error {
			if all == (len(args) > 0) {
				return errors.New("give design IDs or --all, not both")
			}
			s, err := a.store()
			if err != nil {
				return err
			}
			if all {
				if err := s.DeleteAll(); err != nil {
					return err
				}
				a.logger.Info("deleted all designs")
				return nil
			}
			for _, ref := range args {
				d, err := store.Resolve(s, ref)
				if err != nil {
					return err
				}
				if err := s.Delete(d.ID); err != nil {
					return err
				}
				a.logger.Info("deleted design", "id", d.ID, "name", d.DisplayName())
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&all, "all", false, "delete every saved design")
	return cmd
}
