// Package leasehold parses lease ledger service flags and launches the service.
package leasehold

import (
	"context"
	"flag"

	"github.com/openlease/leasehold/internal/app"
	entrypoint "github.com/openlease/leasehold/internal/platform/cmd"
)

// Config holds leasehold command configuration.
type Config struct {
	Port int `env:"LEASEHOLD_PORT" envDefault:"8090"`
}

// ParseConfig parses environment and flags into Config.
func ParseConfig(fs *flag.FlagSet, args []string) (Config, error) {
	var cfg Config
	if err := entrypoint.ParseConfig(&cfg); err != nil {
		return Config{}, err
	}
	fs.IntVar(&cfg.Port, "port", cfg.Port, "The lease ledger HTTP server port")
	if err := entrypoint.ParseArgs(fs, args); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Run starts the lease ledger HTTP service.
func Run(ctx context.Context, cfg Config) error {
	return entrypoint.RunWithTelemetry(ctx, entrypoint.ServiceLeasehold, func(context.Context) error {
		return app.Run(ctx, cfg.Port)
	})
}
