// Package main clears the ingested match tables.
package main

import (
	"context"
	"flag"
	"log"
	"os"

	resetdynamiccmd "github.com/deadlock-tools/tracker/internal/cmd/resetdynamic"
	"github.com/deadlock-tools/tracker/internal/platform/config"
)

func main() {
	cfg, err := resetdynamiccmd.ParseConfig(flag.CommandLine, os.Args[1:])
	if err != nil {
		config.Exitf("Error: %v", err)
	}
	log.SetPrefix("[RESET-DYNAMIC] ")

	if err := resetdynamiccmd.Run(context.Background(), cfg, os.Stdout); err != nil {
		config.Exitf("Error: %v", err)
	}
}
