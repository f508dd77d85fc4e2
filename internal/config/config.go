// Package config holds reader configuration, loaded via plain
// encoding/json rather than a third-party config library.
package config

import (
	"encoding/json"
	"fmt"
	"os"
)

// ReaderConfig controls optional behavior of both the SPEF and SDF
// readers beyond their minimal "demangle bool" constructor argument.
type ReaderConfig struct {
	// Demangle attaches the demangler adapter during identifier
	// reconstruction.
	Demangle bool `json:"demangle,omitempty"`

	// StrictNameMap turns a duplicate *NAME_MAP integer into a hard
	// structural error instead of a warning-and-replace.
	StrictNameMap bool `json:"strictNameMap,omitempty"`

	// MaxWarnings caps how many warnings a Sink accumulates before
	// parsing aborts as a structural error (0 = unbounded).
	MaxWarnings int `json:"maxWarnings,omitempty"`
}

// Default returns the zero-value configuration: non-strict, unbounded
// warnings, no demangler.
func Default() *ReaderConfig {
	return &ReaderConfig{}
}

// Load reads a JSON-encoded ReaderConfig from path.
func Load(path string) (*ReaderConfig, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}
	var cfg ReaderConfig
	if err := json.Unmarshal(b, &cfg); err != nil {
		return nil, fmt.Errorf("config: parse %s: %w", path, err)
	}
	return &cfg, nil
}
