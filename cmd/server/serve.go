package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/simp-lee/flyingpig/internal/app"
	"github.com/simp-lee/flyingpig/internal/config"
)

type loadFunc func() (*config.Config, error)

func serveCmd(load loadFunc) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP server",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := load()
			if err != nil {
				return err
			}
			a, err := app.New(cfg)
			if err != nil {
				return fmt.Errorf("create app: %w", err)
			}
			return a.Run()
		},
	}
}
