package main

import (
	"fmt"

	"github.com/BurntSushi/toml"
)

// settings is the content of the --config file. Command line flags take precedence.
type settings struct {
	// Conn is passed to pgadapt.ParseConfig.
	Conn     string `toml:"conn"`
	LogLevel string `toml:"log_level"`

	// Extensions names the ext packages to register, in order.
	Extensions []string `toml:"extensions"`

	// PostGISOID is the oid of geometry in the captured database. 0 leaves PostGIS values to the fallback decoder.
	PostGISOID uint32 `toml:"postgis_oid"`

	// PgtypeOIDs are decoded with the pgx type catalog.
	PgtypeOIDs []uint32 `toml:"pgtype_oids"`
}

func loadSettings(path string) (*settings, error) {
	s := &settings{}
	if path == "" {
		return s, nil
	}

	md, err := toml.DecodeFile(path, s)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return nil, fmt.Errorf("read config %s: unknown keys %v", path, undecoded)
	}
	return s, nil
}
