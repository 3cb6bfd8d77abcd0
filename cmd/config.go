package cmd

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

const (
	transportStdio          = "stdio"
	transportStreamableHTTP = "streamable-http"
)

// Environment variables read by serve.
const (
	envGoogleClientID     = "GOOGLE_CLIENT_ID"
	envGoogleClientSecret = "GOOGLE_CLIENT_SECRET"
	envMetricsEnabled     = "METRICS_ENABLED"
	envMetricsAddr        = "METRICS_ADDR"
	envYolo               = "GDRIVE_MCP_YOLO"
	envIncludeTables      = "GDRIVE_MCP_INCLUDE_TABLES"
)

// serveConfig is the resolved configuration of the serve command.
type serveConfig struct {
	Transport          string
	HTTPAddr           string
	Yolo               bool
	Debug              bool
	DisableStreaming   bool
	MetricsEnabled     bool
	MetricsAddr        string
	GoogleClientID     string
	GoogleClientSecret string
	IncludeTables      bool
}

func defaultServeConfig() serveConfig {
	return serveConfig{
		Transport:      transportStdio,
		HTTPAddr:       ":8080",
		MetricsEnabled: true,
		MetricsAddr:    ":9090",
	}
}

// fileConfig is the YAML config file. Unset keys leave the default in place.
type fileConfig struct {
	Transport          *string `yaml:"transport"`
	HTTPAddr           *string `yaml:"httpAddr"`
	Yolo               *bool   `yaml:"yolo"`
	Debug              *bool   `yaml:"debug"`
	DisableStreaming   *bool   `yaml:"disableStreaming"`
	MetricsEnabled     *bool   `yaml:"metricsEnabled"`
	MetricsAddr        *string `yaml:"metricsAddr"`
	GoogleClientID     *string `yaml:"googleClientId"`
	GoogleClientSecret *string `yaml:"googleClientSecret"`
	IncludeTables      *bool   `yaml:"includeTables"`
}

func loadConfigFile(path string) (*fileConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var fc fileConfig
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&fc); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	return &fc, nil
}

func (fc *fileConfig) applyTo(cfg *serveConfig) {
	setIf(&cfg.Transport, fc.Transport)
	setIf(&cfg.HTTPAddr, fc.HTTPAddr)
	setIf(&cfg.Yolo, fc.Yolo)
	setIf(&cfg.Debug, fc.Debug)
	setIf(&cfg.DisableStreaming, fc.DisableStreaming)
	setIf(&cfg.MetricsEnabled, fc.MetricsEnabled)
	setIf(&cfg.MetricsAddr, fc.MetricsAddr)
	setIf(&cfg.GoogleClientID, fc.GoogleClientID)
	setIf(&cfg.GoogleClientSecret, fc.GoogleClientSecret)
	setIf(&cfg.IncludeTables, fc.IncludeTables)
}

func setIf[T any](dst *T, src *T) {
	if src != nil {
		*dst = *src
	}
}

func applyEnv(cfg *serveConfig, getenv func(string) string) error {
	if v := getenv(envGoogleClientID); v != "" {
		cfg.GoogleClientID = v
	}
	if v := getenv(envGoogleClientSecret); v != "" {
		cfg.GoogleClientSecret = v
	}
	if v := getenv(envMetricsAddr); v != "" {
		cfg.MetricsAddr = v
	}

	for name, dst := range map[string]*bool{
		envMetricsEnabled: &cfg.MetricsEnabled,
		envYolo:           &cfg.Yolo,
		envIncludeTables:  &cfg.IncludeTables,
	} {
		v := getenv(name)
		if v == "" {
			continue
		}
		parsed, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("invalid %s value %q: expected true or false", name, v)
		}
		*dst = parsed
	}
	return nil
}

// applyChangedFlags copies only flags the user set explicitly.
func applyChangedFlags(cmd *cobra.Command, cfg *serveConfig) {
	flags := cmd.Flags()

	stringFlags := map[string]*string{
		"transport":            &cfg.Transport,
		"http-addr":            &cfg.HTTPAddr,
		"metrics-addr":         &cfg.MetricsAddr,
		"google-client-id":     &cfg.GoogleClientID,
		"google-client-secret": &cfg.GoogleClientSecret,
	}
	for name, dst := range stringFlags {
		if flags.Changed(name) {
			*dst, _ = flags.GetString(name)
		}
	}

	boolFlags := map[string]*bool{
		"yolo":              &cfg.Yolo,
		"debug":             &cfg.Debug,
		"disable-streaming": &cfg.DisableStreaming,
		"metrics-enabled":   &cfg.MetricsEnabled,
		"include-tables":    &cfg.IncludeTables,
	}
	for name, dst := range boolFlags {
		if flags.Changed(name) {
			*dst, _ = flags.GetBool(name)
		}
	}
}

// resolveServeConfig merges configuration sources. An explicitly set flag
// wins over the environment, which wins over the config file, which wins
// over the defaults.
func resolveServeConfig(cmd *cobra.Command, configPath string, getenv func(string) string) (serveConfig, error) {
	cfg := defaultServeConfig()

	if configPath != "" {
		fc, err := loadConfigFile(configPath)
		if err != nil {
			return cfg, err
		}
		fc.applyTo(&cfg)
	}

	if err := applyEnv(&cfg, getenv); err != nil {
		return cfg, err
	}

	applyChangedFlags(cmd, &cfg)

	switch cfg.Transport {
	case transportStdio, transportStreamableHTTP:
	default:
		return cfg, fmt.Errorf("unsupported transport type: %s (supported: stdio, streamable-http)", cfg.Transport)
	}
	return cfg, nil
}
