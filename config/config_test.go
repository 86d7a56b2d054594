package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefault(t *testing.T) {
	cfg := Default()
	if cfg.DataDir == "" {
		t.Error("default DataDir empty")
	}
	if cfg.Log.Level != "info" {
		t.Errorf("default log level = %q, want info", cfg.Log.Level)
	}
}

func TestLoadFile_Missing(t *testing.T) {
	values, err := LoadFile(filepath.Join(t.TempDir(), "nope.conf"))
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	if len(values) != 0 {
		t.Errorf("values = %v, want empty", values)
	}
}

func TestLoadFile_Apply(t *testing.T) {
	path := filepath.Join(t.TempDir(), "registry.conf")
	content := `# registry settings
datadir = /var/lib/multiasset
fallback_uri = "ipfs://fallback404"

log.level = debug
log.json = true
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	values, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}

	cfg := Default()
	if err := ApplyFileConfig(cfg, values); err != nil {
		t.Fatalf("ApplyFileConfig: %v", err)
	}

	if cfg.DataDir != "/var/lib/multiasset" {
		t.Errorf("DataDir = %q", cfg.DataDir)
	}
	if cfg.FallbackURI != "ipfs://fallback404" {
		t.Errorf("FallbackURI = %q", cfg.FallbackURI)
	}
	if cfg.Log.Level != "debug" || !cfg.Log.JSON {
		t.Errorf("Log = %+v", cfg.Log)
	}
}

func TestLoadFile_BadLine(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.conf")
	if err := os.WriteFile(path, []byte("no equals sign here\n"), 0644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	if _, err := LoadFile(path); err == nil {
		t.Error("expected error for malformed line")
	}
}

func TestApplyFileConfig_Invalid(t *testing.T) {
	cases := []struct {
		name   string
		values map[string]string
	}{
		{"unknown key", map[string]string{"bogus": "1"}},
		{"bad level", map[string]string{"log.level": "loud"}},
		{"bad bool", map[string]string{"log.json": "maybe"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if err := ApplyFileConfig(Default(), tc.values); err == nil {
				t.Error("expected error")
			}
		})
	}
}
