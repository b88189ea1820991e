package main

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/simp-lee/flyingpig/internal/app"
	"github.com/simp-lee/flyingpig/internal/urls"
)

func routesCmd(load loadFunc) *cobra.Command {
	return &cobra.Command{
		Use:   "routes",
		Short: "Print the URL configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := load()
			if err != nil {
				return err
			}
			a, err := app.New(cfg)
			if err != nil {
				return fmt.Errorf("create app: %w", err)
			}
			defer a.Close()
			return printRoutes(cmd.OutOrStdout(), a.Routes().Routes())
		},
	}
}

func printRoutes(w io.Writer, routes []urls.Route) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "PATTERN\tMETHODS\tNAME")
	for _, r := range routes {
		name := r.Name
		if name == "" {
			name = "-"
		}
		fmt.Fprintf(tw, "/%s\t%s\t%s\n", r.Pattern, strings.Join(r.View.Methods(), ","), name)
	}
	return tw.Flush()
}
