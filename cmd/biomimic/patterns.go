package main

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

func newPatternsCmd(a *app) *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "patterns [query]",
		Short: "Describe the biological patterns behind each algorithm",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			query := ""
			if len(args) == 1 {
				query = args[0]
			}
			found := a.catalog.Search(query)
			w := cmd.OutOrStdout()
			if asJSON {
				enc := json.NewEncoder(w)
				enc.SetIndent("", "  ")
				return enc.Encode(found)
			}
			if len(found) == 0 {
				fmt.Fprintf(w, "no pattern matches %q\n", query)
				return nil
			}
			for i, p := range found {
				if i > 0 {
					fmt.Fprintln(w)
				}
				fmt.Fprintf(w, "%s (%s)\n", p.Name, p.Algorithm)
				fmt.Fprintf(w, "  source:     %s\n", p.BiologicalSource)
				fmt.Fprintf(w, "  principle:  %s\n", p.Principle)
				fmt.Fprintf(w, "  strength %.0f%%  weight efficiency %.0f%%  complexity %.0f%%\n",
					p.StrengthRating*100, p.WeightEfficiency*100, p.Complexity*100)
				fmt.Fprintf(w, "  use cases:  %s\n", strings.Join(p.UseCases, ", "))
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the matching patterns as JSON")
	return cmd
}
