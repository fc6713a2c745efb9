// Package main pulls per-account match history into the tracker store.
package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	ingesthistorycmd "github.com/deadlock-tools/tracker/internal/cmd/ingesthistory"
)

func main() {
	cfg, err := ingesthistorycmd.ParseConfig(flag.CommandLine, os.Args[1:])
	if err != nil {
		log.Fatalf("parse flags: %v", err)
	}
	log.SetPrefix("[INGEST-HISTORY] ")
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := ingesthistorycmd.Run(ctx, cfg); err != nil {
		log.Fatalf("ingest history: %v", err)
	}
}
