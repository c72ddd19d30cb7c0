package main

import (
	"github.com/spf13/cobra"

	"github.com/mohammed-shakir/city-map-poster/internal/cache"
	"github.com/mohammed-shakir/city-map-poster/internal/cache/layerstore"
)

func newCacheCmd(c *cli) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Manage the layer cache",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "clear",
		Short: "Remove every cached layer",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			blobs, err := cache.New(cmd.Context(), cacheConfig(c.cfg), c.log)
			if err != nil {
				return err
			}
			store := layerstore.New(blobs)
			defer func() { _ = store.Close() }()

			if err := store.Clear(cmd.Context()); err != nil {
				return err
			}
			cmd.Printf("Cleared %s layer cache\n", c.cfg.Cache.Backend)
			return nil
		},
	})
	return cmd
}
