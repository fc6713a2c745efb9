// Package main scans esports matches for notable accounts.
package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	ingestaccountscmd "github.com/deadlock-tools/tracker/internal/cmd/ingestaccounts"
)

func main() {
	cfg, err := ingestaccountscmd.ParseConfig(flag.CommandLine, os.Args[1:])
	if err != nil {
		log.Fatalf("parse flags: %v", err)
	}
	log.SetPrefix("[INGEST-ACCOUNTS] ")
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := ingestaccountscmd.Run(ctx, cfg); err != nil {
		log.Fatalf("ingest accounts: %v", err)
	}
}
