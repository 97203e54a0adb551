package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	shippingcmd "github.com/louisbranch/fulfillment/internal/cmd/shipping"
)

func main() {
	cfg, err := shippingcmd.ParseConfig(flag.CommandLine, os.Args[1:])
	if err != nil {
		log.Fatalf("parse flags: %v", err)
	}
	log.SetPrefix("[SHIPPING] ")
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := shippingcmd.Run(ctx, cfg); err != nil {
		log.Fatalf("failed to serve: %v", err)
	}
}
