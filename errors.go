package ausgrid

import "fmt"

// DomainError indicates an input outside the valid angular, zone, envelope or
// precision range of an operation. Inputs are never clamped.
type DomainError struct {
	Field  string
	Value  float64
	Reason string
}

func (e *DomainError) Error() string {
	return fmt.Sprintf("%s out of range (%v): %s", e.Field, e.Value, e.Reason)
}

// ConvergenceError indicates an iterative solver exhausted its iteration cap.
type ConvergenceError struct {
	Op         string
	Iterations int
}

func (e *ConvergenceError) Error() string {
	return fmt.Sprintf("%s failed to converge after %d iterations", e.Op, e.Iterations)
}

// InvalidGridReferenceError indicates a 100 km square identifier that does not
// exist in the given zone.
type InvalidGridReferenceError struct {
	Zone   int
	Square string
	Reason string
}

func (e *InvalidGridReferenceError) Error() string {
	return fmt.Sprintf("invalid grid reference %d%s: %s", e.Zone, e.Square, e.Reason)
}

// UnsupportedTransformError indicates there is no projection path between a
// point and the requested datum or grid.
type UnsupportedTransformError struct {
	From   string
	To     string
	Reason string
}

func (e *UnsupportedTransformError) Error() string {
	return fmt.Sprintf("unsupported transform %s -> %s: %s", e.From, e.To, e.Reason)
}

func domainErr(field string, value float64, reason string) error {
	return &DomainError{Field: field, Value: value, Reason: reason}
}
