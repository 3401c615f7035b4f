package pipeline

import (
	"sync"
	"time"
)

// Status is the state of a generation run.
type Status string

const (
	StatusRunning   Status = "running"
	StatusCompleted Status = "completed"
	StatusEmpty     Status = "empty"
	StatusFailed    Status = "failed"
)

// Phases a run passes through, in order.
const (
	PhaseDiscover   = "discovering sources"
	PhaseRender     = "rendering pages"
	PhaseIndex      = "building indexes"
	PhaseAssets     = "writing assets"
	PhaseCheckLinks = "checking links"
	PhaseDone       = "done"
)

// Report tracks the state of a single generation run. It is safe for
// concurrent use by the render workers.
type Report struct {
	mu sync.Mutex

	PackageName string
	PackageRoot string
	OutputRoot  string

	Status Status
	Phase  string

	Progress Progress
	Render   StatsSnapshot

	StartedAt time.Time
	UpdatedAt time.Time

	err      string
	warnings []string
}

// Progress counts what a run has produced so far.
type Progress struct {
	Discovered     int      `json:"discovered"`
	Skipped        int      `json:"skipped"`
	PagesWritten   int      `json:"pages_written"`
	Fallbacks      int      `json:"fallbacks"`
	IndexesWritten int      `json:"indexes_written"`
	AssetsWritten  int      `json:"assets_written"`
	BrokenLinks    int      `json:"broken_links"`
	Warnings       []string `json:"warnings"`
}

func NewReport(packageName, packageRoot, outputRoot string) *Report {
	now := time.Now()
	return &Report{
		PackageName: packageName,
		PackageRoot: packageRoot,
		OutputRoot:  outputRoot,
		Status:      StatusRunning,
		StartedAt:   now,
		UpdatedAt:   now,
	}
}

func (r *Report) setRoots(packageName, packageRoot, outputRoot string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.PackageName = packageName
	r.PackageRoot = packageRoot
	r.OutputRoot = outputRoot
}

// SetStatus updates status and phase atomically.
func (r *Report) SetStatus(status Status, phase string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Status = status
	r.Phase = phase
	r.UpdatedAt = time.Now()
}

// Fail marks the run failed in its current phase.
func (r *Report) Fail(err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Status = StatusFailed
	if err != nil {
		r.err = err.Error()
	}
	r.UpdatedAt = time.Now()
}

// AddWarning records a recoverable problem.
func (r *Report) AddWarning(msg string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.warnings = append(r.warnings, msg)
	r.Progress.Warnings = r.warnings
	r.UpdatedAt = time.Now()
}

// SetDiscovered records discovery totals.
func (r *Report) SetDiscovered(found, skipped int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Progress.Discovered = found
	r.Progress.Skipped = skipped
	r.UpdatedAt = time.Now()
}

// IncrPagesWritten counts one written page.
func (r *Report) IncrPagesWritten(fallback bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Progress.PagesWritten++
	if fallback {
		r.Progress.Fallbacks++
	}
	r.UpdatedAt = time.Now()
}

func (r *Report) SetIndexesWritten(n int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Progress.IndexesWritten = n
	r.UpdatedAt = time.Now()
}

func (r *Report) SetAssetsWritten(n int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Progress.AssetsWritten = n
	r.UpdatedAt = time.Now()
}

func (r *Report) SetBrokenLinks(n int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Progress.BrokenLinks = n
	r.UpdatedAt = time.Now()
}

func (r *Report) SetRenderStats(s StatsSnapshot) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Render = s
	r.UpdatedAt = time.Now()
}

// ReportSnapshot is a read-only, JSON-safe copy of report state.
type ReportSnapshot struct {
	PackageName string        `json:"package_name"`
	PackageRoot string        `json:"package_root"`
	OutputRoot  string        `json:"output_root"`
	Status      Status        `json:"status"`
	Phase       string        `json:"phase"`
	Error       string        `json:"error,omitempty"`
	Progress    Progress      `json:"progress"`
	Render      StatsSnapshot `json:"render"`
	DurationMs  int64         `json:"duration_ms"`
}

// Snapshot returns a JSON-safe copy of the report state.
func (r *Report) Snapshot() ReportSnapshot {
	r.mu.Lock()
	defer r.mu.Unlock()
	warnings := append([]string{}, r.warnings...)
	p := r.Progress
	p.Warnings = warnings
	return ReportSnapshot{
		PackageName: r.PackageName,
		PackageRoot: r.PackageRoot,
		OutputRoot:  r.OutputRoot,
		Status:      r.Status,
		Phase:       r.Phase,
		Error:       r.err,
		Progress:    p,
		Render:      r.Render,
		DurationMs:  r.UpdatedAt.Sub(r.StartedAt).Milliseconds(),
	}
}
