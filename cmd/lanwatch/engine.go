package main

import (
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/marcuoli/go-lanwatch/internal/config"
	"github.com/marcuoli/go-lanwatch/pkg/lanwatch"
	"github.com/marcuoli/go-lanwatch/pkg/lanwatch/oui"
)

// newEngine builds an engine from the config file, environment and flags.
// Flags win over both. interval sets the background connection check;
// one-shot commands pass 0.
func newEngine(cmd *cobra.Command, interval time.Duration) (*lanwatch.Engine, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	opts := cfg.Options
	if cfg.File != "" {
		logger.Debug("loaded config", zap.String("file", cfg.File))
	}

	flags := cmd.Flags()
	if flags.Changed("timeout") {
		opts.Timeout = time.Duration(timeout) * time.Second
	}
	if flags.Changed("include-endpoints") {
		opts.IncludeEndpoints = includeEndpoints
	}
	if flags.Changed("interface") {
		opts.Filters.Interfaces = interfaces
	}
	if flags.Changed("no-names") {
		opts.ResolveNames = !noNames
	}
	if flags.Changed("oui-db") {
		vendors, err := oui.Open(ouiDatabase)
		if err != nil {
			return nil, err
		}
		opts.Vendors = vendors
	}
	opts.ConnectionInterval = interval
	opts.Logger = logger
	return lanwatch.New(opts)
}
