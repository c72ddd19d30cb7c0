package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mohammed-shakir/city-map-poster/internal/app/poster"
	"github.com/mohammed-shakir/city-map-poster/internal/core/model"
	"github.com/mohammed-shakir/city-map-poster/internal/theme"
)

func newGenerateCmd(c *cli) *cobra.Command {
	var city, country string

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate a poster for a city",
		Example: `  poster generate -c "Paris" -C "France" -t noir -d 10000
  poster generate -c "Venice" -C "Italy" -n walk --no-cache`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if strings.TrimSpace(city) == "" || strings.TrimSpace(country) == "" {
				return fmt.Errorf("%w: --city and --country are required", model.ErrConfig)
			}
			cfg := c.cfg
			ctx := cmd.Context()

			rt, err := buildRuntime(ctx, cfg, c.log, cmd.OutOrStdout())
			if err != nil {
				return err
			}
			defer func() {
				if err := rt.Close(); err != nil {
					c.log.Warn("shutdown", "err", err)
				}
			}()

			cmd.Printf("Generating map for %s, %s\n", city, country)
			res, err := rt.app.Generate(ctx, poster.Request{
				City:         city,
				Country:      country,
				Theme:        cfg.Theme,
				RadiusMeters: cfg.Radius,
				Network:      cfg.Network(),
			})
			rt.pushMetrics(ctx, c.log)
			if err != nil {
				if errors.Is(err, model.ErrThemeNotFound) {
					listThemes(cmd, cfg.ThemeDir)
				}
				return err
			}

			ws := res.WorkingSet
			cmd.Printf("Poster saved as %s\n", res.Output)
			cmd.Printf("Layers: %d (%d cached, %d downloaded, %d omitted)\n",
				len(res.Features), ws.Stats.CacheReads, ws.Stats.Fetches, len(ws.Omissions))
			return nil
		},
	}

	f := cmd.Flags()
	f.StringVarP(&city, "city", "c", "", "city name (required)")
	f.StringVarP(&country, "country", "C", "", "country name (required)")
	f.StringP("theme", "t", "", "theme name (default feature_based)")
	f.IntP("distance", "d", 0, "map radius in meters (default 29000)")
	f.StringP("network-type", "n", "", "street network: drive, all, walk or bike (default drive)")
	f.StringP("output-dir", "o", "", "output directory (default posters)")
	f.Bool("no-cache", false, "fetch every layer upstream and write nothing to the cache")
	return cmd
}

func listThemes(cmd *cobra.Command, dir string) {
	names, err := theme.NewStore(dir).List()
	if err != nil || len(names) == 0 {
		cmd.PrintErrf("No themes found in %s\n", dir)
		return
	}
	printList(cmd.ErrOrStderr(), "Available themes:", names)
}
