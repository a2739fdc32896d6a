// Package config loads runtime configuration for the attrshare client.
//
// Sources, later ones win:
//
//  1. Built-in defaults (see Defaults).
//  2. Optional JSON file selected with -c or -config.
//  3. Command-line flags.
//
// The merged values are built into Config with cfgx and validated.
package config

import (
	"errors"
	"fmt"
	"maps"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/goliatone/go-config/cfgx"
)

// MinTransferTimeout is the lowest accepted transfer timeout.
const MinTransferTimeout = 30 * time.Second

type Config struct {
	BaseURL              string        `koanf:"base_url" mapstructure:"base_url"`
	Timeout              time.Duration `koanf:"timeout" mapstructure:"timeout"`
	TransferTimeout      time.Duration `koanf:"transfer_timeout" mapstructure:"transfer_timeout"`
	SuccessCodes         []int         `koanf:"success_codes" mapstructure:"success_codes"`
	LoginRoute           string        `koanf:"login_route" mapstructure:"login_route"`
	SessionFile          string        `koanf:"session_file" mapstructure:"session_file"`
	DownloadDir          string        `koanf:"download_dir" mapstructure:"download_dir"`
	SlowRequestThreshold time.Duration `koanf:"slow_request_threshold" mapstructure:"slow_request_threshold"`
	RetryCount           int           `koanf:"retry_count" mapstructure:"retry_count"`
	Verbose              bool          `koanf:"verbose" mapstructure:"verbose"`
}

func Defaults() Config {
	return Config{
		BaseURL:              "http://localhost:8080/api",
		Timeout:              10 * time.Second,
		TransferTimeout:      MinTransferTimeout,
		SuccessCodes:         []int{0, 1, 2},
		LoginRoute:           "/",
		SessionFile:          defaultSessionFile(),
		DownloadDir:          ".",
		SlowRequestThreshold: 2 * time.Second,
	}
}

func (c Config) Validate() error {
	var errs []error
	if strings.TrimSpace(c.BaseURL) == "" {
		errs = append(errs, errors.New("config: base_url is required"))
	} else if u, err := url.Parse(c.BaseURL); err != nil || u.Host == "" {
		errs = append(errs, fmt.Errorf("config: invalid base_url %q", c.BaseURL))
	}
	if c.Timeout <= 0 {
		errs = append(errs, errors.New("config: timeout must be positive"))
	}
	if c.TransferTimeout < MinTransferTimeout {
		errs = append(errs, fmt.Errorf("config: transfer_timeout must be at least %s", MinTransferTimeout))
	}
	if len(c.SuccessCodes) == 0 {
		errs = append(errs, errors.New("config: success_codes must not be empty"))
	}
	if c.RetryCount < 0 {
		errs = append(errs, errors.New("config: retry_count must not be negative"))
	}
	return errors.Join(errs...)
}

// Build merges raw over the defaults and validates the result.
func Build(raw map[string]any) (Config, error) {
	merged := maps.Clone(raw)
	if merged == nil {
		merged = map[string]any{}
	}

	// Slices are decoded element by element over the defaults, so a shorter
	// list would keep trailing default codes. Seed the key instead.
	defaults := Defaults()
	if _, ok := merged["success_codes"]; !ok {
		merged["success_codes"] = defaults.SuccessCodes
	}
	defaults.SuccessCodes = nil

	return cfgx.Build[Config](merged,
		cfgx.WithDefaults(defaults),
		cfgx.WithValidator[Config]((*Config).Validate),
	)
}

// Load builds the configuration from args: global flags first, with an
// optional -c/-config JSON file underneath them. It returns the arguments
// left after the flags.
func Load(args []string) (Config, []string, error) {
	fromFlags, path, rest, err := parseFlags(args)
	if err != nil {
		return Config{}, nil, err
	}

	raw := map[string]any{}
	if path != "" {
		fromFile, err := parseJSON(path)
		if err != nil {
			return Config{}, nil, err
		}
		maps.Copy(raw, fromFile)
	}
	maps.Copy(raw, fromFlags)

	cfg, err := Build(raw)
	if err != nil {
		return Config{}, nil, err
	}
	return cfg, rest, nil
}

func defaultSessionFile() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ".attrshare-session"
	}
	return filepath.Join(dir, "attrshare", "session")
}
