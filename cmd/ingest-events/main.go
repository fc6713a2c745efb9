// Package main pulls match timelines into the tracker store.
package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	ingesteventscmd "github.com/deadlock-tools/tracker/internal/cmd/ingestevents"
)

func main() {
	cfg, err := ingesteventscmd.ParseConfig(flag.CommandLine, os.Args[1:])
	if err != nil {
		log.Fatalf("parse flags: %v", err)
	}
	log.SetPrefix("[INGEST-EVENTS] ")
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := ingesteventscmd.Run(ctx, cfg); err != nil {
		log.Fatalf("ingest events: %v", err)
	}
}
