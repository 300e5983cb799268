package main

import (
	"fmt"

	"github.com/Sternrassler/category-pager/internal/config"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// options is shared by all subcommands. cfg is filled before any RunE.
type options struct {
	configPath string
	v          *viper.Viper
	cfg        *config.Config
}

// flagBindings maps config keys to persistent flag names.
var flagBindings = map[string]string{
	"api.base_url":     "api-url",
	"redis.addr":       "redis-addr",
	"log.level":        "log-level",
	"log.file":         "log-file",
	"metrics.addr":     "metrics-addr",
	"paging.page_size": "page-size",
}

func newRootCommand() *cobra.Command {
	opts := &options{v: config.New()}

	rootCmd := &cobra.Command{
		Use:           "category-pager",
		Short:         "Browse the paginated category list of a catalog API",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(opts.v, opts.configPath)
			if err != nil {
				return err
			}
			opts.cfg = cfg
			return nil
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&opts.configPath, "config", "", "path to a YAML config file")
	flags.String("api-url", "", "catalog API base URL (default http://localhost:8000)")
	flags.String("redis-addr", "", "Redis address for the shared page cache (default in-memory)")
	flags.String("log-level", "", "log level: debug, info, warn, error (default info)")
	flags.String("log-file", "", "write logs to this file instead of stderr")
	flags.String("metrics-addr", "", "serve Prometheus metrics on this address, e.g. :9090")
	flags.Int("page-size", 0, "rows per page (default 5)")

	for key, name := range flagBindings {
		if err := opts.v.BindPFlag(key, flags.Lookup(name)); err != nil {
			panic(fmt.Sprintf("bind flag %s: %v", name, err))
		}
	}

	rootCmd.AddCommand(
		newBrowseCommand(opts),
		newListCommand(opts),
		newWarmCommand(opts),
	)

	return rootCmd
}
