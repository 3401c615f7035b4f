package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"runtime"
	"sort"
	"strings"
	"time"

	"github.com/dgallion1/dhalldocs/internal/config"
	"github.com/dgallion1/dhalldocs/internal/discovery"
	"github.com/dgallion1/dhalldocs/internal/linkcheck"
	"github.com/dgallion1/dhalldocs/internal/logfields"
	"github.com/dgallion1/dhalldocs/internal/markdown"
	"github.com/dgallion1/dhalldocs/internal/parser"
	"github.com/dgallion1/dhalldocs/internal/render"
	"golang.org/x/sync/errgroup"
)

// Options are the per-invocation inputs of a run.
type Options struct {
	PackageRoot string
	OutputRoot  string
	PackageName string           // empty derives it from PackageRoot
	Filter      discovery.Filter // candidate predicate; nil accepts everything
	CheckLinks  bool
}

// Orchestrator runs the documentation pipeline: discover, render pages,
// build indexes, write assets.
type Orchestrator struct {
	cfg      config.Config
	parser   parser.Parser
	markdown markdown.Renderer
	log      *slog.Logger
}

func NewOrchestrator(cfg config.Config, p parser.Parser, md markdown.Renderer, log *slog.Logger) *Orchestrator {
	if p == nil {
		p = &parser.DhallParser{}
	}
	if md == nil {
		md = markdown.NewGoldmark()
	}
	if log == nil {
		log = slog.Default()
	}
	if cfg.Workers <= 0 {
		cfg.Workers = runtime.GOMAXPROCS(0)
	}
	return &Orchestrator{cfg: cfg, parser: p, markdown: md, log: log}
}

// PackageName returns override when set, otherwise the final element of the
// cleaned package root.
func PackageName(packageRoot, override string) string {
	if override != "" {
		return override
	}
	return filepath.Base(filepath.Clean(packageRoot))
}

// Run generates the documentation tree for one package. An empty package
// writes nothing and is not an error. The returned report is non-nil even
// when err is set.
func (o *Orchestrator) Run(ctx context.Context, opts Options) (*Report, error) {
	report := NewReport(PackageName(opts.PackageRoot, opts.PackageName), opts.PackageRoot, opts.OutputRoot)
	pkgRoot, err := filepath.Abs(opts.PackageRoot)
	if err != nil {
		err = fmt.Errorf("resolve package root: %w", err)
		report.Fail(err)
		return report, err
	}
	outRoot, err := filepath.Abs(opts.OutputRoot)
	if err != nil {
		err = fmt.Errorf("resolve output root: %w", err)
		report.Fail(err)
		return report, err
	}
	name := PackageName(pkgRoot, opts.PackageName)
	report.setRoots(name, pkgRoot, outRoot)
	log := o.log.With(logfields.Package(name))

	if err := o.run(ctx, report, log, opts, pkgRoot, outRoot, name); err != nil {
		report.Fail(err)
		return report, err
	}
	return report, nil
}

func (o *Orchestrator) run(ctx context.Context, report *Report, log *slog.Logger, opts Options, pkgRoot, outRoot, name string) error {
	start := time.Now()

	report.SetStatus(StatusRunning, PhaseDiscover)
	walker := &discovery.Walker{
		Parser:  o.parser,
		Filter:  opts.Filter,
		Workers: o.cfg.Workers,
		Log:     log,
	}
	if within(pkgRoot, outRoot) {
		walker.Exclude = []string{outRoot}
	}
	found, err := walker.Discover(ctx, pkgRoot)
	if err != nil {
		return fmt.Errorf("discover: %w", err)
	}
	report.SetDiscovered(len(found.Entries), len(found.Skipped))
	for _, s := range found.Skipped {
		report.AddWarning(fmt.Sprintf("skipped %s: %v", s.Path, s.Err))
	}
	if len(found.Entries) == 0 {
		log.Info("no documentation generated", logfields.Path(pkgRoot))
		report.SetStatus(StatusEmpty, PhaseDone)
		return nil
	}

	entries := found.Entries
	sort.Slice(entries, func(i, j int) bool { return entries[i].Path < entries[j].Path })

	report.SetStatus(StatusRunning, PhaseRender)
	site := render.NewSite(pkgRoot, outRoot, name, o.markdown, log)
	stats := NewRenderStats()
	pages := make([]string, len(entries))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(o.cfg.Workers)
	for i, entry := range entries {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			t := time.Now()
			res, err := site.RenderPage(entry)
			if err != nil {
				return fmt.Errorf("render %s: %w", entry.Path, err)
			}
			stats.Record(time.Since(t))
			pages[i] = res.Path
			report.IncrPagesWritten(res.Fallback)
			if res.Fallback {
				report.AddWarning(fmt.Sprintf("markdown fallback for %s", entry.Path))
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}
	report.SetRenderStats(stats.Snapshot())

	report.SetStatus(StatusRunning, PhaseIndex)
	indexes, err := site.BuildIndexes(ctx, pages, o.cfg.Workers)
	if err != nil {
		return fmt.Errorf("build indexes: %w", err)
	}
	report.SetIndexesWritten(len(indexes))

	report.SetStatus(StatusRunning, PhaseAssets)
	assets, err := render.WriteAssets(outRoot, render.Assets)
	if err != nil {
		return err
	}
	report.SetAssetsWritten(len(assets))

	if opts.CheckLinks {
		report.SetStatus(StatusRunning, PhaseCheckLinks)
		broken, err := linkcheck.Check(outRoot)
		if err != nil {
			return err
		}
		for _, b := range broken {
			log.Warn("broken link", logfields.Path(b.Page), slog.String("url", b.URL), slog.String("reason", b.Reason))
			report.AddWarning("broken link " + b.String())
		}
		report.SetBrokenLinks(len(broken))
	}

	report.SetStatus(StatusCompleted, PhaseDone)
	snap := stats.Snapshot()
	log.Info("documentation generated",
		logfields.Output(outRoot),
		slog.Int("pages", len(pages)),
		slog.Int("indexes", len(indexes)),
		logfields.DurationMS(time.Since(start).Milliseconds()),
		slog.Duration("render_p50", snap.P50),
		slog.Duration("render_p95", snap.P95),
		slog.Duration("render_max", snap.Max),
	)
	return nil
}

func within(root, path string) bool {
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return false
	}
	return rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}
