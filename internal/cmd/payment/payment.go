// Package payment parses payment command flags and starts the service runtime.
package payment

import (
	"context"
	"flag"

	entrypoint "github.com/louisbranch/fulfillment/internal/platform/cmd"
	server "github.com/louisbranch/fulfillment/internal/services/payment/app"
)

// Config holds payment command configuration.
type Config struct {
	Port int    `env:"FULFILLMENT_PAYMENT_PORT" envDefault:"8081"`
	Addr string `env:"FULFILLMENT_PAYMENT_ADDR"`
}

// ParseConfig parses environment and flags into a Config.
func ParseConfig(fs *flag.FlagSet, args []string) (Config, error) {
	var cfg Config
	if err := entrypoint.ParseConfig(&cfg); err != nil {
		return Config{}, err
	}
	fs.IntVar(&cfg.Port, "port", cfg.Port, "The payment server port")
	fs.StringVar(&cfg.Addr, "addr", cfg.Addr, "The payment server listen address (overrides -port)")
	if err := entrypoint.ParseArgs(fs, args); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Run starts the payment API service.
func Run(ctx context.Context, cfg Config) error {
	return entrypoint.RunWithTelemetry(ctx, entrypoint.ServicePayment, func(context.Context) error {
		if cfg.Addr != "" {
			return server.RunWithAddr(ctx, cfg.Addr)
		}
		return server.Run(ctx, cfg.Port)
	})
}
