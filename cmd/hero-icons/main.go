// Package main downloads per-hero images from the assets API.
package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	heroiconscmd "github.com/deadlock-tools/tracker/internal/cmd/heroicons"
)

func main() {
	cfg, err := heroiconscmd.ParseConfig(flag.CommandLine, os.Args[1:])
	if err != nil {
		log.Fatalf("parse flags: %v", err)
	}
	log.SetPrefix("[HERO-ICONS] ")
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := heroiconscmd.Run(ctx, cfg); err != nil {
		log.Fatalf("hero icons: %v", err)
	}
}
