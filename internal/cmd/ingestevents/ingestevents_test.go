package ingestevents

import (
	"flag"
	"testing"
)

func TestParseConfig_RepeatableMatchIDs(t *testing.T) {
	fs := flag.NewFlagSet("ingest-events", flag.ContinueOnError)

	cfg, err := ParseConfig(fs, []string{"-match-id", "900", "-match-id", "901", "-replace"})
	if err != nil {
		t.Fatalf("parse config: %v", err)
	}
	if len(cfg.MatchIDs) != 2 || cfg.MatchIDs[0] != 900 || cfg.MatchIDs[1] != 901 {
		t.Fatalf("match ids = %v", cfg.MatchIDs)
	}
	if !cfg.Replace {
		t.Fatal("replace flag not set")
	}
	if cfg.ProgressEvery != 25 {
		t.Fatalf("progress every = %d, want 25", cfg.ProgressEvery)
	}
}

func TestParseConfig_AllMatchesWithLimit(t *testing.T) {
	fs := flag.NewFlagSet("ingest-events", flag.ContinueOnError)

	cfg, err := ParseConfig(fs, []string{"-all-matches", "-limit", "100"})
	if err != nil {
		t.Fatalf("parse config: %v", err)
	}
	if !cfg.AllMatches {
		t.Fatal("all-matches flag not set")
	}
	if cfg.Limit != 100 {
		t.Fatalf("limit = %d, want 100", cfg.Limit)
	}
}

func TestParseConfig_RequiresTargetSelection(t *testing.T) {
	fs := flag.NewFlagSet("ingest-events", flag.ContinueOnError)
	if _, err := ParseConfig(fs, nil); err == nil {
		t.Fatal("expected error without -match-id or -all-matches")
	}
}

func TestParseConfig_RejectsConflictingSelection(t *testing.T) {
	fs := flag.NewFlagSet("ingest-events", flag.ContinueOnError)
	if _, err := ParseConfig(fs, []string{"-match-id", "900", "-all-matches"}); err == nil {
		t.Fatal("expected error for conflicting selection")
	}
}
