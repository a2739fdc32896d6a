package config

import (
	"encoding/json"
	"fmt"
	"os"
	"time"
)

// Duration accepts either a string like "30s" or integer nanoseconds.
type Duration time.Duration

func (d *Duration) UnmarshalJSON(b []byte) error {
	var v any
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	switch value := v.(type) {
	case float64:
		*d = Duration(time.Duration(value))
	case string:
		parsed, err := time.ParseDuration(value)
		if err != nil {
			return err
		}
		*d = Duration(parsed)
	default:
		return fmt.Errorf("invalid duration %s", string(b))
	}
	return nil
}

// jsonConfig is only used for unmarshalling; pointers tell unset fields
// apart from zero values.
type jsonConfig struct {
	BaseURL              *string   `json:"base_url"`
	Timeout              *Duration `json:"timeout"`
	TransferTimeout      *Duration `json:"transfer_timeout"`
	SuccessCodes         []int     `json:"success_codes"`
	LoginRoute           *string   `json:"login_route"`
	SessionFile          *string   `json:"session_file"`
	DownloadDir          *string   `json:"download_dir"`
	SlowRequestThreshold *Duration `json:"slow_request_threshold"`
	RetryCount           *int      `json:"retry_count"`
	Verbose              *bool     `json:"verbose"`
}

// parseJSON reads path and returns the keys it sets.
func parseJSON(path string) (map[string]any, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}

	var jc jsonConfig
	if err := json.Unmarshal(data, &jc); err != nil {
		return nil, fmt.Errorf("config: parse %s: %w", path, err)
	}

	raw := map[string]any{}
	if jc.BaseURL != nil {
		raw["base_url"] = *jc.BaseURL
	}
	if jc.Timeout != nil {
		raw["timeout"] = time.Duration(*jc.Timeout)
	}
	if jc.TransferTimeout != nil {
		raw["transfer_timeout"] = time.Duration(*jc.TransferTimeout)
	}
	if jc.SuccessCodes != nil {
		raw["success_codes"] = jc.SuccessCodes
	}
	if jc.LoginRoute != nil {
		raw["login_route"] = *jc.LoginRoute
	}
	if jc.SessionFile != nil {
		raw["session_file"] = *jc.SessionFile
	}
	if jc.DownloadDir != nil {
		raw["download_dir"] = *jc.DownloadDir
	}
	if jc.SlowRequestThreshold != nil {
		raw["slow_request_threshold"] = time.Duration(*jc.SlowRequestThreshold)
	}
	if jc.RetryCount != nil {
		raw["retry_count"] = *jc.RetryCount
	}
	if jc.Verbose != nil {
		raw["verbose"] = *jc.Verbose
	}
	return raw, nil
}
