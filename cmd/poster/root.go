package main

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/mohammed-shakir/city-map-poster/internal/core/config"
	"github.com/mohammed-shakir/city-map-poster/internal/core/model"
	"github.com/mohammed-shakir/city-map-poster/internal/logger"
)

// cli carries state shared by the subcommands of one invocation.
type cli struct {
	configFile string
	cfg        *config.Config
	zl         zerolog.Logger
	log        *slog.Logger
}

// flagKeys maps config keys to the flag that overrides them.
var flagKeys = map[string]string{
	"theme":        "theme",
	"radius":       "distance",
	"network_type": "network-type",
	"output_dir":   "output-dir",
	"theme_dir":    "theme-dir",
	"cache.dir":    "cache-dir",
	"log.level":    "log-level",
}

func newRootCmd() *cobra.Command {
	c := &cli{}

	root := &cobra.Command{
		Use:          "poster",
		Short:        "Generate minimalist city map posters from OpenStreetMap data",
		SilenceUsage: true,
		Run: func(cmd *cobra.Command, _ []string) {
			cmd.Print(examples)
		},
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return c.load(cmd)
		},
	}
	root.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return fmt.Errorf("%w: %w", model.ErrConfig, err)
	})

	pf := root.PersistentFlags()
	pf.StringVar(&c.configFile, "config", "", "config file (default: ./poster.yaml or ./configs/poster.yaml)")
	pf.String("theme-dir", "", "directory holding theme JSON files")
	pf.String("cache-dir", "", "directory of the file layer cache")
	pf.String("log-level", "", "debug, info, warn or error")

	root.AddCommand(
		newGenerateCmd(c),
		newThemesCmd(c),
		newCacheCmd(c),
		newVersionCmd(),
	)
	return root
}

// load resolves configuration for the executing command and builds the logger.
func (c *cli) load(cmd *cobra.Command) error {
	v, err := config.NewViper(c.configFile)
	if err != nil {
		return err
	}
	if err := bindFlags(v, cmd.Flags()); err != nil {
		return err
	}
	if noCache, err := cmd.Flags().GetBool("no-cache"); err == nil && noCache {
		v.Set("cache.enabled", false)
	}
	cfg, err := config.FromViper(v)
	if err != nil {
		return err
	}
	c.cfg = cfg

	c.zl = logger.Build(logger.Config{
		Level:     cfg.Log.Level,
		Console:   cfg.Log.Console,
		SampleN:   cfg.Log.SampleN,
		Component: "poster",
	}, cmd.ErrOrStderr())
	c.log = logger.NewSlog(&c.zl)
	return nil
}

func bindFlags(v *viper.Viper, fs *pflag.FlagSet) error {
	for key, name := range flagKeys {
		f := fs.Lookup(name)
		if f == nil {
			continue
		}
		if err := v.BindPFlag(key, f); err != nil {
			return fmt.Errorf("%w: bind --%s: %w", model.ErrConfig, name, err)
		}
	}
	return nil
}

func printList(w io.Writer, header string, items []string) {
	fmt.Fprintln(w, header)
	for _, it := range items {
		fmt.Fprintf(w, "  - %s\n", it)
	}
}
