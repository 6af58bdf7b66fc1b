package main

import (
	"github.com/spf13/cobra"
)

func newServeCmd(g *globalFlags) *cobra.Command {
	var port int
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve charts, JSON reports and live reload over HTTP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			s, err := g.open(ctx, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer s.close()

			if cmd.Flags().Changed("port") {
				s.app.Config().Server.Port = port
			}
			return s.app.Serve(ctx)
		},
	}
	cmd.Flags().IntVar(&port, "port", 0, "listen port (overrides server.port)")
	return cmd
}
