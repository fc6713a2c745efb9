package config

import "testing"

func TestParseEnvReadsValues(t *testing.T) {
	type target struct {
		Addr string `env:"TRACKER_TEST_ADDR" envDefault:"localhost:9"`
		Max  int    `env:"TRACKER_TEST_MAX" envDefault:"3"`
	}

	t.Setenv("TRACKER_TEST_ADDR", "localhost:7000")

	var cfg target
	if err := ParseEnv(&cfg); err != nil {
		t.Fatalf("parse env: %v", err)
	}
	if cfg.Addr != "localhost:7000" {
		t.Fatalf("addr = %q, want localhost:7000", cfg.Addr)
	}
	if cfg.Max != 3 {
		t.Fatalf("max = %d, want default 3", cfg.Max)
	}
}

func TestParseEnvRejectsBadValue(t *testing.T) {
	type target struct {
		Max int `env:"TRACKER_TEST_BAD_MAX"`
	}

	t.Setenv("TRACKER_TEST_BAD_MAX", "not-a-number")

	var cfg target
	if err := ParseEnv(&cfg); err == nil {
		t.Fatal("expected error for non-numeric value")
	}
}
