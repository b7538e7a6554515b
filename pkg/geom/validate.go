package geom

import (
	"fmt"
	"math"
)

// ValidationSeverity indicates whether a validation finding blocks building
// the zone or is merely informational.
type ValidationSeverity int

const (
	SeverityError   ValidationSeverity = iota // blocks building
	SeverityWarning                           // informational
)

func (s ValidationSeverity) String() string {
	switch s {
	case SeverityError:
		return "error"
	case SeverityWarning:
		return "warning"
	default:
		return fmt.Sprintf("ValidationSeverity(%d)", int(s))
	}
}

// ValidationError describes a single validation finding.
type ValidationError struct {
	Field    string             // offending field, empty if geometry-level
	Message  string             // human-readable description
	Severity ValidationSeverity // error or warning
}

func (e ValidationError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("[%s] %s", e.Severity, e.Message)
	}
	return fmt.Sprintf("[%s] %s: %s", e.Severity, e.Field, e.Message)
}

// ValidationResult splits findings into blocking errors and warnings.
type ValidationResult struct {
	Errors   []ValidationError
	Warnings []ValidationError
}

// OK reports whether no blocking error was found.
func (r ValidationResult) OK() bool {
	return len(r.Errors) == 0
}

// Validate runs all checks on g and returns every finding. It never mutates g.
func Validate(g ZoneGeometry) []ValidationError {
	var errs []ValidationError
	errs = append(errs, validateFinite(g)...)
	errs = append(errs, validatePointCount(g)...)
	errs = append(errs, validateHeight(g)...)
	errs = append(errs, validateOutline(g)...)
	return errs
}

// ValidateAll runs Validate and separates errors from warnings.
func ValidateAll(g ZoneGeometry) ValidationResult {
	var result ValidationResult
	for _, e := range Validate(g) {
		if e.Severity == SeverityWarning {
			result.Warnings = append(result.Warnings, e)
		} else {
			result.Errors = append(result.Errors, e)
		}
	}
	return result
}

func validateFinite(g ZoneGeometry) []ValidationError {
	var errs []ValidationError
	if !finite(g.Altitude) {
		errs = append(errs, ValidationError{Field: "altitude", Message: "must be finite", Severity: SeverityError})
	}
	if !finite(g.Height) {
		errs = append(errs, ValidationError{Field: "height", Message: "must be finite", Severity: SeverityError})
	}
	for i, p := range g.Footprint {
		if !finite(p.X) || !finite(p.Y) {
			errs = append(errs, ValidationError{
				Field:    fmt.Sprintf("planeCoordinates[%d]", i),
				Message:  "coordinates must be finite",
				Severity: SeverityError,
			})
		}
	}
	return errs
}

func validatePointCount(g ZoneGeometry) []ValidationError {
	if len(g.Footprint) < 3 {
		return []ValidationError{{
			Field:    "planeCoordinates",
			Message:  fmt.Sprintf("need at least 3 points, got %d", len(g.Footprint)),
			Severity: SeverityError,
		}}
	}
	return nil
}

func validateHeight(g ZoneGeometry) []ValidationError {
	if g.Height == 0 {
		return []ValidationError{{Field: "height", Message: "zero height is not renderable", Severity: SeverityError}}
	}
	return nil
}

// validateOutline checks the closed outline for crossings, repeated points
// and a zero enclosed area.
func validateOutline(g ZoneGeometry) []ValidationError {
	f := g.Footprint
	if len(f) < 3 {
		return nil
	}
	var errs []ValidationError
	for i := range f {
		j := (i + 1) % len(f)
		if f[i] == f[j] {
			errs = append(errs, ValidationError{
				Field:    fmt.Sprintf("planeCoordinates[%d]", j),
				Message:  fmt.Sprintf("repeats point %d", i),
				Severity: SeverityWarning,
			})
		}
	}
	if SelfIntersects(f) {
		errs = append(errs, ValidationError{
			Field:    "planeCoordinates",
			Message:  "outline intersects itself",
			Severity: SeverityError,
		})
	}
	if SignedArea(f) == 0 {
		errs = append(errs, ValidationError{
			Field:    "planeCoordinates",
			Message:  "outline encloses no area",
			Severity: SeverityWarning,
		})
	}
	return errs
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
