package config

import (
	"os"
	"path/filepath"
	"testing"
)

func writeConfig(t *testing.T, doc string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(p, []byte(doc), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return p
}

func TestLoadAppliesDefaults(t *testing.T) {
	cfg, err := Load(writeConfig(t, "port: 9000\n"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Port != 9000 {
		t.Fatalf("port got %d", cfg.Port)
	}
	if cfg.DefaultVenue != "coinbase" || cfg.TTL.OrderBookSeconds != 15 {
		t.Fatalf("defaults missing: %+v", cfg)
	}
	if cfg.Endpoints.MempoolSpaceURL == "" {
		t.Fatalf("endpoint defaults missing")
	}
}

func TestLoadCanonicalizesVenue(t *testing.T) {
	cfg, err := Load(writeConfig(t, "default_venue: Kraken\n"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.DefaultVenue != "kraken" {
		t.Fatalf("venue got %q", cfg.DefaultVenue)
	}
}

func TestLoadRejectsBadValues(t *testing.T) {
	cases := []string{
		"port: 0\n",
		"port: 70000\n",
		"refresh_seconds: 0\n",
		"depth_rows: 0\n",
		"default_venue: binance\n",
		"ttl:\n  price_seconds: 0\n",
	}
	for _, doc := range cases {
		if _, err := Load(writeConfig(t, doc)); err == nil {
			t.Fatalf("want error for %q", doc)
		}
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Fatalf("want error for missing file")
	}
}
