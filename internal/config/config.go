package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	toml "github.com/pelletier/go-toml/v2"
)

// Config holds the client settings formstate reads at startup.
type Config struct {
	BaseURL     string
	Timeout     time.Duration
	UserAgent   string
	LogLevel    string
	LogJSON     bool
	LogFile     string
	MetricsAddr string
}

const (
	defaultConfigPath = "~/.config/formstate/config.toml"
	defaultBaseURL    = "http://127.0.0.1:8000"
	defaultTimeout    = 5 * time.Second
	defaultUserAgent  = "formstate/0.1"
	defaultLogLevel   = "info"
	defaultLogFile    = "~/.local/state/formstate/formstate.log"
)

// Default returns the configuration used when no file exists.
func Default() Config {
	return Config{
		BaseURL:   defaultBaseURL,
		Timeout:   defaultTimeout,
		UserAgent: defaultUserAgent,
		LogLevel:  defaultLogLevel,
		LogFile:   mustExpand(defaultLogFile),
	}
}

// Load locates and parses the formstate config, falling back to defaults when missing.
func Load(path string) (Config, error) {
	resolved, err := resolvePath(path)
	if err != nil {
		return Config{}, err
	}

	cfg := Default()

	file, err := os.Open(resolved)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return Config{}, fmt.Errorf("open config: %w", err)
	}
	defer file.Close()

	bytes, err := io.ReadAll(file)
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}

	var raw struct {
		BaseURL     string `toml:"base_url"`
		Timeout     string `toml:"timeout"`
		UserAgent   string `toml:"user_agent"`
		LogLevel    string `toml:"log_level"`
		LogJSON     bool   `toml:"log_json"`
		LogFile     string `toml:"log_file"`
		MetricsAddr string `toml:"metrics_addr"`
	}
	if err := toml.Unmarshal(bytes, &raw); err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}

	if v := strings.TrimSpace(raw.BaseURL); v != "" {
		cfg.BaseURL = v
	}
	if v := strings.TrimSpace(raw.Timeout); v != "" {
		timeout, err := time.ParseDuration(v)
		if err != nil {
			return Config{}, fmt.Errorf("parse timeout %q: %w", v, err)
		}
		if timeout <= 0 {
			return Config{}, fmt.Errorf("timeout %q must be positive", v)
		}
		cfg.Timeout = timeout
	}
	if v := strings.TrimSpace(raw.UserAgent); v != "" {
		cfg.UserAgent = v
	}
	if v := strings.TrimSpace(raw.LogLevel); v != "" {
		cfg.LogLevel = strings.ToLower(v)
	}
	cfg.LogJSON = raw.LogJSON
	if v := strings.TrimSpace(raw.LogFile); v != "" {
		cfg.LogFile = mustExpand(v)
	}
	cfg.MetricsAddr = strings.TrimSpace(raw.MetricsAddr)

	return cfg, nil
}

// ExpandPath resolves a leading ~ and returns an absolute path.
func ExpandPath(path string) (string, error) {
	return expandPath(path)
}

func resolvePath(path string) (string, error) {
	if strings.TrimSpace(path) == "" {
		return expandPath(defaultConfigPath)
	}
	return expandPath(path)
}

func mustExpand(path string) string {
	expanded, err := expandPath(path)
	if err != nil {
		return path
	}
	return expanded
}

func expandPath(path string) (string, error) {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		return "", fmt.Errorf("path is empty")
	}
	if strings.HasPrefix(trimmed, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home dir: %w", err)
		}
		trimmed = filepath.Join(home, strings.TrimPrefix(trimmed, "~"))
	}
	return filepath.Abs(trimmed)
}
