package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/woozymasta/pngme"
)

// Config holds CLI defaults loaded with --config. Flags override it.
//
// Example:
//
//	{
//	  "compression": "zstd",
//	  "fetch_timeout": "15s",
//	  "max_fetch_bytes": 16777216
//	}
type Config struct {
	// Compression is the default codec for encode: "none", "lz4" or "zstd".
	Compression string `json:"compression,omitempty"`
	// FetchTimeout bounds HTTP retrieval of URL sources, as a time.Duration string.
	FetchTimeout string `json:"fetch_timeout,omitempty"`
	// MaxFetchBytes limits the size of URL sources.
	MaxFetchBytes int64 `json:"max_fetch_bytes,omitempty"`
}

// LoadConfig reads and validates a JSON config file.
// An empty path returns the zero Config.
func LoadConfig(path string) (Config, error) {
	var cfg Config
	if path == "" {
		return cfg, nil
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	if err := json.Unmarshal(b, &cfg); err != nil {
		return cfg, fmt.Errorf("config: %w", err)
	}
	return cfg, cfg.Validate()
}

func (c Config) Validate() error {
	if _, err := pngme.ParseCompression(c.Compression); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	if c.FetchTimeout != "" {
		d, err := time.ParseDuration(c.FetchTimeout)
		if err != nil {
			return fmt.Errorf("config: fetch_timeout: %w", err)
		}
		if d <= 0 {
			return errors.New("config: fetch_timeout must be positive")
		}
	}
	if c.MaxFetchBytes < 0 {
		return errors.New("config: max_fetch_bytes must not be negative")
	}
	return nil
}

// ReadOptions translates the config into library read options.
// Validate must have succeeded.
func (c Config) ReadOptions() *pngme.ReadOptions {
	opts := &pngme.ReadOptions{MaxBytes: c.MaxFetchBytes}
	if d, err := time.ParseDuration(c.FetchTimeout); err == nil && d > 0 {
		opts.HTTPClient = &http.Client{Timeout: d}
	}
	return opts
}
