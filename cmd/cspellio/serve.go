package main

import (
	"fmt"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"

	"github.com/CageChen/cspellio/internal/handler"
)

func newServeCmd(a *app) *cobra.Command {
	var port int

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the HTTP API over the configured backend",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if cmd.Flags().Changed("port") {
				a.cfg.Port = port
			}
			if err := a.cfg.Validate(); err != nil {
				return err
			}

			gin.SetMode(gin.ReleaseMode)
			r := handler.NewRouter(a.io, a.log)
			a.log.Info("serving", "backend", a.cfg.Backend, "root", a.cfg.Root, "port", a.cfg.Port)
			return handler.ListenAndServe(cmd.Context(), fmt.Sprintf(":%d", a.cfg.Port), r, a.log)
		},
	}
	cmd.Flags().IntVarP(&port, "port", "p", 8080, "Server port")
	return cmd
}
