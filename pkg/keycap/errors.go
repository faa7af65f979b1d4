package keycap

import "fmt"

// The error taxonomy mirrors the failure surface the pipeline exposes:
// configuration problems are rejected at the boundary before geometry
// runs, profile-data problems are fatal for that profile, offset
// infeasibility is recoverable by clamping, and boolean failures are
// reported with the last good preview retained.

// ConfigurationError reports an invalid or unsupported parameter
// combination. Surfaced before the pipeline runs.
type ConfigurationError struct {
	Field  string
	Detail string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("configuration: %s: %s", e.Field, e.Detail)
}

// InvalidProfileError reports a malformed profile table entry. This is a
// data bug, fatal for that profile.
type InvalidProfileError struct {
	Family Family
	Row    Row
	Detail string
}

func (e *InvalidProfileError) Error() string {
	return fmt.Sprintf("profile %s/%s: %s", e.Family, e.Row, e.Detail)
}

// DegenerateGeometryError reports geometry that cannot be constructed at
// the requested dimensions (e.g. an inward offset that would
// self-intersect with no feasible clamp).
type DegenerateGeometryError struct {
	Stage  string
	Detail string
}

func (e *DegenerateGeometryError) Error() string {
	return fmt.Sprintf("%s: degenerate geometry: %s", e.Stage, e.Detail)
}

// BooleanFailureError reports a numerically failed compositing step.
// Never silently patched; the caller keeps the last good preview.
type BooleanFailureError struct {
	Op     string
	Detail string
}

func (e *BooleanFailureError) Error() string {
	return fmt.Sprintf("boolean %s failed: %s", e.Op, e.Detail)
}

// Warning is an advisory condition signaled alongside a successful stage,
// such as a wall thickness clamped to the maximum feasible value.
type Warning struct {
	Stage   string
	Message string
}

func (w Warning) String() string {
	return fmt.Sprintf("[%s] %s", w.Stage, w.Message)
}
