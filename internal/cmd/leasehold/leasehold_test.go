package leasehold

import (
	"flag"
	"testing"
)

func TestParseConfigDefaults(t *testing.T) {
	fs := flag.NewFlagSet("leasehold", flag.ContinueOnError)
	cfg, err := ParseConfig(fs, nil)
	if err != nil {
		t.Fatalf("ParseConfig() error = %v", err)
	}
	if cfg.Port != 8090 {
		t.Errorf("Port = %d, want 8090", cfg.Port)
	}
}

func TestParseConfigEnvOverride(t *testing.T) {
	t.Setenv("LEASEHOLD_PORT", "9100")

	fs := flag.NewFlagSet("leasehold", flag.ContinueOnError)
	cfg, err := ParseConfig(fs, nil)
	if err != nil {
		t.Fatalf("ParseConfig() error = %v", err)
	}
	if cfg.Port != 9100 {
		t.Errorf("Port = %d, want 9100", cfg.Port)
	}
}

func TestParseConfigFlagOverridesEnv(t *testing.T) {
	t.Setenv("LEASEHOLD_PORT", "9100")

	fs := flag.NewFlagSet("leasehold", flag.ContinueOnError)
	cfg, err := ParseConfig(fs, []string{"-port", "9200"})
	if err != nil {
		t.Fatalf("ParseConfig() error = %v", err)
	}
	if cfg.Port != 9200 {
		t.Errorf("Port = %d, want 9200", cfg.Port)
	}
}
