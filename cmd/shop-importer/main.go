// Package main imports the curated shop item CSV tables.
package main

import (
	"context"
	"flag"
	"log"
	"os"

	shopimportercmd "github.com/deadlock-tools/tracker/internal/cmd/shopimporter"
	"github.com/deadlock-tools/tracker/internal/platform/config"
)

func main() {
	cfg, err := shopimportercmd.ParseConfig(flag.CommandLine, os.Args[1:])
	if err != nil {
		config.Exitf("Error: %v", err)
	}
	log.SetPrefix("[SHOP-IMPORTER] ")

	if err := shopimportercmd.Run(context.Background(), cfg); err != nil {
		config.Exitf("Error: %v", err)
	}
}
