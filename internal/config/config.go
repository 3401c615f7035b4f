package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"runtime"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// ErrInvalid is wrapped by every Validate failure.
var ErrInvalid = errors.New("invalid configuration")

const envPrefix = "DHALL_DOCS_"

type Config struct {
	// Output
	OutputDir   string `yaml:"output"`
	PackageName string `yaml:"package_name"`

	// Discovery
	Extensions []string `yaml:"extensions"`
	UseIgnore  bool     `yaml:"use_ignore"`

	// Worker pool
	Workers int `yaml:"workers"`

	// Verification
	CheckLinks bool `yaml:"check_links"`

	// Logging
	LogFormat string `yaml:"log_format"`
	LogLevel  string `yaml:"log_level"`

	// Preview server
	PreviewAddr string `yaml:"preview_addr"`
}

func Default() Config {
	return Config{
		OutputDir:   "./docs",
		UseIgnore:   true,
		Workers:     runtime.GOMAXPROCS(0),
		LogFormat:   "text",
		LogLevel:    "info",
		PreviewAddr: ":8000",
	}
}

// Load layers defaults, the YAML file at path and the DHALL_DOCS_* environment,
// in that order. Either path or envFile may be empty; a missing envFile is
// not an error.
func Load(path, envFile string) (Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !os.IsNotExist(err) {
			return Config{}, fmt.Errorf("load env file: %w", err)
		}
	}

	cfg := Default()
	if path != "" {
		if err := cfg.LoadFile(path); err != nil {
			return Config{}, err
		}
	}
	cfg.ApplyEnv()

	if cfg.Workers <= 0 {
		cfg.Workers = runtime.GOMAXPROCS(0)
	}
	return cfg, nil
}

// LoadFile overlays the keys present in a YAML file onto c. Unknown keys are
// rejected.
func (c *Config) LoadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(c); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}
	return nil
}

// ApplyEnv overlays DHALL_DOCS_* variables onto c. Unparsable values are
// ignored.
func (c *Config) ApplyEnv() {
	c.OutputDir = envOr(envPrefix+"OUTPUT", c.OutputDir)
	c.PackageName = envOr(envPrefix+"PACKAGE_NAME", c.PackageName)
	c.Extensions = envList(envPrefix+"EXTENSIONS", c.Extensions)
	c.UseIgnore = envBool(envPrefix+"USE_IGNORE", c.UseIgnore)
	c.Workers = envInt(envPrefix+"WORKERS", c.Workers)
	c.CheckLinks = envBool(envPrefix+"CHECK_LINKS", c.CheckLinks)
	c.LogFormat = envOr(envPrefix+"LOG_FORMAT", c.LogFormat)
	c.LogLevel = envOr(envPrefix+"LOG_LEVEL", c.LogLevel)
	c.PreviewAddr = envOr(envPrefix+"PREVIEW_ADDR", c.PreviewAddr)
}

func (c Config) Validate() error {
	if c.Workers <= 0 {
		return fmt.Errorf("%w: workers must be positive, got %d", ErrInvalid, c.Workers)
	}
	if strings.TrimSpace(c.OutputDir) == "" {
		return fmt.Errorf("%w: output directory is required", ErrInvalid)
	}
	switch c.LogFormat {
	case "text", "json":
	default:
		return fmt.Errorf("%w: unknown log format %q", ErrInvalid, c.LogFormat)
	}
	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("%w: unknown log level %q", ErrInvalid, c.LogLevel)
	}
	return nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

func envList(key string, fallback []string) []string {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	var out []string
	for _, item := range strings.Split(v, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}
