package mcp

import (
	"flag"
	"testing"
)

func TestParseConfig_ParsesDefaultsAndFlags(t *testing.T) {
	fs := flag.NewFlagSet("mcp", flag.ContinueOnError)
	t.Setenv("TRACKER_MCP_DB_PATH", "/tmp/env.db")

	cfg, err := ParseConfig(fs, []string{"-db-path", "flag.db"})
	if err != nil {
		t.Fatalf("parse config: %v", err)
	}
	if cfg.DBPath != "flag.db" {
		t.Fatalf("db path = %q, want flag override", cfg.DBPath)
	}
}

func TestParseConfig_Defaults(t *testing.T) {
	fs := flag.NewFlagSet("mcp", flag.ContinueOnError)

	cfg, err := ParseConfig(fs, nil)
	if err != nil {
		t.Fatalf("parse config: %v", err)
	}
	if cfg.DBPath != "data/tracker.db" {
		t.Fatalf("db path = %q", cfg.DBPath)
	}
}
