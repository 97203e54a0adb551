package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	paymentcmd "github.com/louisbranch/fulfillment/internal/cmd/payment"
)

func main() {
	cfg, err := paymentcmd.ParseConfig(flag.CommandLine, os.Args[1:])
	if err != nil {
		log.Fatalf("parse flags: %v", err)
	}
	log.SetPrefix("[PAYMENT] ")
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := paymentcmd.Run(ctx, cfg); err != nil {
		log.Fatalf("failed to serve: %v", err)
	}
}
