package statictables

import (
	"flag"
	"testing"
)

func TestParseConfig_ParsesDefaultsAndFlags(t *testing.T) {
	fs := flag.NewFlagSet("static-tables", flag.ContinueOnError)
	t.Setenv("TRACKER_STATIC_TABLES_OUT_DIR", "/tmp/dumps")

	cfg, err := ParseConfig(fs, []string{"-load", "-db-path", "test.db"})
	if err != nil {
		t.Fatalf("parse config: %v", err)
	}
	if cfg.OutDir != "/tmp/dumps" {
		t.Fatalf("out dir = %q, want %q", cfg.OutDir, "/tmp/dumps")
	}
	if !cfg.Load {
		t.Fatal("load flag not set")
	}
	if cfg.DBPath != "test.db" {
		t.Fatalf("db path = %q, want %q", cfg.DBPath, "test.db")
	}
}

func TestParseConfig_Defaults(t *testing.T) {
	fs := flag.NewFlagSet("static-tables", flag.ContinueOnError)

	cfg, err := ParseConfig(fs, nil)
	if err != nil {
		t.Fatalf("parse config: %v", err)
	}
	if cfg.OutDir != "data/dumps" {
		t.Fatalf("out dir = %q, want %q", cfg.OutDir, "data/dumps")
	}
	if cfg.DBPath != "data/tracker.db" {
		t.Fatalf("db path = %q, want %q", cfg.DBPath, "data/tracker.db")
	}
	if cfg.Load {
		t.Fatal("load should default to false")
	}
}
