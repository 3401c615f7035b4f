package logfields

import "log/slog"

// Canonical log field names shared across packages.
const (
	KeyPath       = "path"
	KeyOutput     = "output"
	KeyPackage    = "package"
	KeyPhase      = "phase"
	KeyCount      = "count"
	KeyDurationMS = "duration_ms"
	KeyError      = "error"
)

func Path(p string) slog.Attr       { return slog.String(KeyPath, p) }
func Output(p string) slog.Attr     { return slog.String(KeyOutput, p) }
func Package(name string) slog.Attr { return slog.String(KeyPackage, name) }
func Phase(name string) slog.Attr   { return slog.String(KeyPhase, name) }
func Count(n int) slog.Attr         { return slog.Int(KeyCount, n) }
func DurationMS(ms int64) slog.Attr { return slog.Int64(KeyDurationMS, ms) }
func Error(err error) slog.Attr {
	if err == nil {
		return slog.String(KeyError, "")
	}
	return slog.String(KeyError, err.Error())
}
