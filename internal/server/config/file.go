package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/Extra154/spectra-data-server/internal/flagx"
	"github.com/Extra154/spectra-data-server/internal/timex"
)

// FileConfig is the on-disk shape of the configuration, shared by the JSON
// and TOML decoders. Durations accept "24h" style strings or integer
// nanoseconds. Absent keys leave the current value untouched.
type FileConfig struct {
	EndpointAddrGRPC   string          `json:"endpoint_addr_grpc" toml:"endpoint_addr_grpc"`
	StoreDriver        string          `json:"store_driver" toml:"store_driver"`
	DatabaseDSN        string          `json:"database_dsn" toml:"database_dsn"`
	StoryTTL           *timex.Duration `json:"story_ttl" toml:"story_ttl"`
	StorySweepInterval *timex.Duration `json:"story_sweep_interval" toml:"story_sweep_interval"`
	RequestTimeout     *timex.Duration `json:"request_timeout" toml:"request_timeout"`
	PullLimit          *int            `json:"pull_limit" toml:"pull_limit"`
	LogLevel           string          `json:"log_level" toml:"log_level"`
}

// parseFile overlays the file named by -c/-config, if any. Files ending in
// .toml are decoded as TOML, everything else as JSON.
func parseFile(cfg *Config, args []string) error {
	path := flagx.ConfigFilePath(args)
	if path == "" {
		return nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}

	fc := &FileConfig{}
	if strings.EqualFold(filepath.Ext(path), ".toml") {
		if _, err := toml.Decode(string(data), fc); err != nil {
			return fmt.Errorf("decode toml config %s: %w", path, err)
		}
	} else {
		if err := json.Unmarshal(data, fc); err != nil {
			return fmt.Errorf("decode json config %s: %w", path, err)
		}
	}

	fc.apply(cfg)
	return nil
}

func (fc *FileConfig) apply(cfg *Config) {
	if fc.EndpointAddrGRPC != "" {
		cfg.EndpointAddrGRPC = fc.EndpointAddrGRPC
	}
	if fc.StoreDriver != "" {
		cfg.StoreDriver = fc.StoreDriver
	}
	if fc.DatabaseDSN != "" {
		cfg.DatabaseDSN = fc.DatabaseDSN
	}
	if fc.StoryTTL != nil {
		cfg.StoryTTL = fc.StoryTTL.Duration
	}
	if fc.StorySweepInterval != nil {
		cfg.StorySweepInterval = fc.StorySweepInterval.Duration
	}
	if fc.RequestTimeout != nil {
		cfg.RequestTimeout = fc.RequestTimeout.Duration
	}
	if fc.PullLimit != nil {
		cfg.PullLimit = *fc.PullLimit
	}
	if fc.LogLevel != "" {
		cfg.LogLevel = fc.LogLevel
	}
}
