// Package shipping parses shipping command flags and starts the service runtime.
package shipping

import (
	"context"
	"flag"

	entrypoint "github.com/louisbranch/fulfillment/internal/platform/cmd"
	server "github.com/louisbranch/fulfillment/internal/services/shipping/app"
)

// Config holds shipping command configuration.
type Config struct {
	Port int    `env:"FULFILLMENT_SHIPPING_PORT" envDefault:"8082"`
	Addr string `env:"FULFILLMENT_SHIPPING_ADDR"`
}

// ParseConfig parses environment and flags into a Config.
func ParseConfig(fs *flag.FlagSet, args []string) (Config, error) {
	var cfg Config
	if err := entrypoint.ParseConfig(&cfg); err != nil {
		return Config{}, err
	}
	fs.IntVar(&cfg.Port, "port", cfg.Port, "The shipping server port")
	fs.StringVar(&cfg.Addr, "addr", cfg.Addr, "The shipping server listen address (overrides -port)")
	if err := entrypoint.ParseArgs(fs, args); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Run starts the shipping API service.
func Run(ctx context.Context, cfg Config) error {
	return entrypoint.RunWithTelemetry(ctx, entrypoint.ServiceShipping, func(context.Context) error {
		if cfg.Addr != "" {
			return server.RunWithAddr(ctx, cfg.Addr)
		}
		return server.Run(ctx, cfg.Port)
	})
}
