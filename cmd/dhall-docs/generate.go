package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/dgallion1/dhalldocs/internal/config"
	"github.com/dgallion1/dhalldocs/internal/markdown"
	"github.com/dgallion1/dhalldocs/internal/parser"
	"github.com/dgallion1/dhalldocs/internal/pipeline"
)

// GenerateCmd implements the 'generate' command.
type GenerateCmd struct {
	Input       string   `short:"i" help:"Package root containing the Dhall sources" type:"existingdir" required:""`
	Output      string   `short:"o" help:"Output directory (default ./docs)" type:"path"`
	PackageName string   `name:"package-name" help:"Name shown for the package root (default: input directory name)"`
	Workers     int      `short:"j" help:"Parallel workers (default: number of CPUs)"`
	Ext         []string `name:"ext" help:"Only parse files with these extensions (repeatable)"`
	NoIgnore    bool     `name:"no-ignore" help:"Do not skip dot-files or paths matched by .gitignore and .dhalldocsignore"`
	CheckLinks  bool     `name:"check-links" help:"Verify every relative link in the generated tree"`
}

func (c *GenerateCmd) Run(g *Global) error {
	cfg := c.apply(g.Config)
	if err := cfg.Validate(); err != nil {
		return err
	}
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	_, err := generate(ctx, g, cfg, c.Input)
	return err
}

// apply overlays the flags that were set onto cfg.
func (c *GenerateCmd) apply(cfg config.Config) config.Config {
	if c.Output != "" {
		cfg.OutputDir = c.Output
	}
	if c.PackageName != "" {
		cfg.PackageName = c.PackageName
	}
	if c.Workers != 0 {
		cfg.Workers = c.Workers
	}
	if len(c.Ext) > 0 {
		cfg.Extensions = c.Ext
	}
	if c.NoIgnore {
		cfg.UseIgnore = false
	}
	if c.CheckLinks {
		cfg.CheckLinks = true
	}
	return cfg
}

func generate(ctx context.Context, g *Global, cfg config.Config, input string) (*pipeline.Report, error) {
	filter, err := candidateFilter(cfg, input)
	if err != nil {
		return nil, err
	}
	orch := pipeline.NewOrchestrator(cfg, &parser.DhallParser{}, markdown.NewGoldmark(), g.Logger)
	return orch.Run(ctx, pipeline.Options{
		PackageRoot: input,
		OutputRoot:  cfg.OutputDir,
		PackageName: cfg.PackageName,
		Filter:      filter,
		CheckLinks:  cfg.CheckLinks,
	})
}
