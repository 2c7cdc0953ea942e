package ui

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/javiermolinar/almanac/internal/server"
)

func (a *App) serveCmd() *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the events API over the local database",
		Long: `Serve the JSON events API over the local SQLite database until
interrupted. Other almanac instances can point api.base_url at it.

Example:
  almanac serve --addr=127.0.0.1:8080`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if addr == "" {
				addr = a.config.Server.Addr
			}
			st, err := a.openStack()
			if err != nil {
				return err
			}
			if !st.Local {
				return errors.New("serve needs the local database; unset api.base_url")
			}

			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Serving events API on %s/api\n", addr)
			return server.New(st.Repo, a.logger.With("component", "server")).Run(cmd.Context(), addr)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "Listen address (default: server.addr from config)")
	return cmd
}
