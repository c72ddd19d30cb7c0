package main

import (
	"github.com/spf13/cobra"

	"github.com/mohammed-shakir/city-map-poster/internal/theme"
)

func newThemesCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "themes",
		Short: "List available themes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			sums, err := theme.NewStore(c.cfg.ThemeDir).Describe()
			if err != nil {
				return err
			}
			if len(sums) == 0 {
				cmd.Printf("No themes found in %s\n", c.cfg.ThemeDir)
				return nil
			}
			cmd.Println("Available Themes:")
			cmd.Println("------------------------------------------------------------")
			for _, s := range sums {
				cmd.Printf("  %s\n", s.ID)
				cmd.Printf("    %s\n", s.Name)
				if s.Description != "" {
					cmd.Printf("    %s\n", s.Description)
				}
				cmd.Println()
			}
			return nil
		},
	}
}
