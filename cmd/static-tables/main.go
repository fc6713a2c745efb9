// Package main fetches the assets API reference dumps.
package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	statictablescmd "github.com/deadlock-tools/tracker/internal/cmd/statictables"
)

func main() {
	cfg, err := statictablescmd.ParseConfig(flag.CommandLine, os.Args[1:])
	if err != nil {
		log.Fatalf("parse flags: %v", err)
	}
	log.SetPrefix("[STATIC-TABLES] ")
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := statictablescmd.Run(ctx, cfg); err != nil {
		log.Fatalf("static tables: %v", err)
	}
}
