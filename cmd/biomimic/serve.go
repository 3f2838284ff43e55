package main

import (
	"github.com/spf13/cobra"

	"github.com/chazu/biomimic/pkg/generator"
	"github.com/chazu/biomimic/pkg/viewer"
)

func newServeCmd(a *app) *cobra.Command {
	var (
		listen  string
		noSave  bool
		initial bool
	)
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the live preview feed over websockets",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if listen == "" {
				listen = a.cfg.Viewer.Listen
			}
			gen, err := a.generator()
			if err != nil {
				return err
			}
			session := generator.NewSession(gen, a.cfg.Generation.Timeout.Duration())

			opts := []viewer.Option{viewer.WithLogger(a.logger)}
			if !noSave {
				s, err := a.store()
				if err != nil {
					return err
				}
				opts = append(opts, viewer.WithStore(s))
			}
			hub := viewer.NewHub(session, opts...)

			if initial {
				req := generator.NewRequest(generator.RandomSeed())
				req.Scale = a.cfg.Generation.Scale
				if _, err := hub.Generate(cmd.Context(), req); err != nil {
					return err
				}
			}
			return hub.Serve(cmd.Context(), listen)
		},
	}
	cmd.Flags().StringVar(&listen, "listen", "", "listen address; defaults to viewer.listen")
	cmd.Flags().BoolVar(&noSave, "no-save", false, "do not save designs requested by viewers")
	cmd.Flags().BoolVar(&initial, "initial", true, "generate a random design before accepting viewers")
	return cmd
}
