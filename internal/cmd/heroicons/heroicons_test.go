package heroicons

import (
	"flag"
	"testing"
)

func TestParseConfig_ParsesDefaultsAndFlags(t *testing.T) {
	fs := flag.NewFlagSet("hero-icons", flag.ContinueOnError)
	t.Setenv("TRACKER_HERO_ICONS_FORCE", "true")

	cfg, err := ParseConfig(fs, []string{"-out-dir", "/tmp/icons"})
	if err != nil {
		t.Fatalf("parse config: %v", err)
	}
	if cfg.OutDir != "/tmp/icons" {
		t.Fatalf("out dir = %q, want %q", cfg.OutDir, "/tmp/icons")
	}
	if !cfg.Force {
		t.Fatal("force flag not set from env")
	}
}

func TestParseConfig_Defaults(t *testing.T) {
	fs := flag.NewFlagSet("hero-icons", flag.ContinueOnError)

	cfg, err := ParseConfig(fs, nil)
	if err != nil {
		t.Fatalf("parse config: %v", err)
	}
	if cfg.OutDir != "data/icons" {
		t.Fatalf("out dir = %q, want %q", cfg.OutDir, "data/icons")
	}
	if cfg.Force {
		t.Fatal("force should default to false")
	}
}
