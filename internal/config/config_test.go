package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultIsZeroValue(t *testing.T) {
	cfg := Default()
	if cfg.Demangle || cfg.StrictNameMap || cfg.MaxWarnings != 0 {
		t.Fatalf("got %+v, want zero value", cfg)
	}
}

func TestLoadParsesJSON(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "reader.json")
	body := `{"demangle": true, "strictNameMap": true, "maxWarnings": 5}`
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if !cfg.Demangle || !cfg.StrictNameMap || cfg.MaxWarnings != 5 {
		t.Fatalf("got %+v", cfg)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing.json")); err == nil {
		t.Fatal("expected an error for a missing config file")
	}
}

func TestLoadInvalidJSON(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bad.json")
	if err := os.WriteFile(path, []byte(`{not json`), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Fatal("expected a parse error for malformed JSON")
	}
}
