package config

import (
	"flag"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// parseFlags reads the global flags at the front of args. It returns the
// values of flags that were set explicitly, the JSON config path and the
// remaining arguments.
//
//	-c, -config string          JSON config file
//	-base-url string            API base URL, e.g. http://host:8080/api
//	-timeout duration           default per-call timeout
//	-transfer-timeout duration  upload and download timeout (at least 30s)
//	-success-codes string       comma separated envelope success codes
//	-login-route string         route opened on 401
//	-session string             session file
//	-download-dir string        where downloads are saved
//	-slow duration              slow request warning threshold
//	-retry int                  GET retries on transient failures
//	-v                          verbose logging
func parseFlags(args []string) (map[string]any, string, []string, error) {
	var (
		path         string
		defaults     = Defaults()
		cfg          = defaults
		successCodes string
	)

	fs := flag.NewFlagSet("attrshare", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	fs.StringVar(&path, "config", "", "path to config file")
	fs.StringVar(&path, "c", "", "path to config file (short)")
	fs.StringVar(&cfg.BaseURL, "base-url", defaults.BaseURL, "API base URL")
	fs.DurationVar(&cfg.Timeout, "timeout", defaults.Timeout, "default per-call timeout")
	fs.DurationVar(&cfg.TransferTimeout, "transfer-timeout", defaults.TransferTimeout, "upload and download timeout")
	fs.StringVar(&successCodes, "success-codes", "", "comma separated envelope success codes")
	fs.StringVar(&cfg.LoginRoute, "login-route", defaults.LoginRoute, "route opened on 401")
	fs.StringVar(&cfg.SessionFile, "session", defaults.SessionFile, "session file")
	fs.StringVar(&cfg.DownloadDir, "download-dir", defaults.DownloadDir, "download directory")
	fs.DurationVar(&cfg.SlowRequestThreshold, "slow", defaults.SlowRequestThreshold, "slow request threshold")
	fs.IntVar(&cfg.RetryCount, "retry", defaults.RetryCount, "GET retries on transient failures")
	fs.BoolVar(&cfg.Verbose, "v", defaults.Verbose, "verbose logging")

	if err := fs.Parse(args); err != nil {
		return nil, "", nil, fmt.Errorf("config: %w", err)
	}

	raw := map[string]any{}
	var parseErr error
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "base-url":
			raw["base_url"] = cfg.BaseURL
		case "timeout":
			raw["timeout"] = cfg.Timeout
		case "transfer-timeout":
			raw["transfer_timeout"] = cfg.TransferTimeout
		case "success-codes":
			codes, err := parseCodes(successCodes)
			if err != nil {
				parseErr = err
				return
			}
			raw["success_codes"] = codes
		case "login-route":
			raw["login_route"] = cfg.LoginRoute
		case "session":
			raw["session_file"] = cfg.SessionFile
		case "download-dir":
			raw["download_dir"] = cfg.DownloadDir
		case "slow":
			raw["slow_request_threshold"] = cfg.SlowRequestThreshold
		case "retry":
			raw["retry_count"] = cfg.RetryCount
		case "v":
			raw["verbose"] = cfg.Verbose
		}
	})
	if parseErr != nil {
		return nil, "", nil, parseErr
	}

	return raw, path, fs.Args(), nil
}

func parseCodes(s string) ([]int, error) {
	var codes []int
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		code, err := strconv.Atoi(part)
		if err != nil {
			return nil, fmt.Errorf("config: invalid success code %q", part)
		}
		codes = append(codes, code)
	}
	return codes, nil
}
