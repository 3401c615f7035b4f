package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/alecthomas/kong"
	"github.com/dgallion1/dhalldocs/internal/config"
	"github.com/dgallion1/dhalldocs/internal/discovery"
)

// Global is the state shared by every command once flags are parsed.
type Global struct {
	Logger *slog.Logger
	Config config.Config
}

type CLI struct {
	Config    string           `short:"c" help:"Configuration file path" type:"path"`
	Verbose   bool             `short:"v" help:"Enable verbose logging"`
	LogFormat string           `name:"log-format" help:"Log format (text|json)"`
	Version   kong.VersionFlag `name:"version" help:"Show version and exit"`

	Generate GenerateCmd `cmd:"" default:"withargs" help:"Generate the documentation tree for a package"`
	Serve    ServeCmd    `cmd:"" help:"Serve a generated documentation tree over HTTP"`
}

// AfterApply loads configuration and sets up logging once.
func (c *CLI) AfterApply(g *Global) error {
	cfg, err := config.Load(c.Config, ".env")
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if c.LogFormat != "" {
		cfg.LogFormat = c.LogFormat
	}
	if c.Verbose {
		cfg.LogLevel = "debug"
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	g.Config = cfg
	g.Logger = newLogger(os.Stderr, cfg.LogFormat, cfg.LogLevel)
	slog.SetDefault(g.Logger)
	return nil
}

func newLogger(w io.Writer, format, level string) *slog.Logger {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		lvl = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: lvl}
	if format == "json" {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

// candidateFilter combines the ignore rules and extension list selected by
// cfg into one discovery filter.
func candidateFilter(cfg config.Config, root string) (discovery.Filter, error) {
	var filters []discovery.Filter
	if cfg.UseIgnore {
		ignore, err := discovery.Ignore(root)
		if err != nil {
			return nil, err
		}
		filters = append(filters, ignore)
	}
	if len(cfg.Extensions) > 0 {
		filters = append(filters, discovery.Extensions(cfg.Extensions...))
	}
	return discovery.All(filters...), nil
}
