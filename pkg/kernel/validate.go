package kernel

import "fmt"

// Severity indicates whether a mesh finding breaks the mesh contract or is
// merely informational.
type Severity int

const (
	SeverityError   Severity = iota // violates a Mesh invariant
	SeverityWarning                 // tolerated, e.g. zero-area faces
)

func (s Severity) String() string {
	switch s {
	case SeverityError:
		return "error"
	case SeverityWarning:
		return "warning"
	default:
		return fmt.Sprintf("Severity(%d)", int(s))
	}
}

// Issue describes a single validation finding.
type Issue struct {
	Triangle int // offending triangle, -1 for mesh-level findings
	Message  string
	Severity Severity
}

func (i Issue) Error() string {
	if i.Triangle < 0 {
		return fmt.Sprintf("[%s] %s", i.Severity, i.Message)
	}
	return fmt.Sprintf("[%s] triangle %d: %s", i.Severity, i.Triangle, i.Message)
}

// Validate checks the Mesh invariants and returns every finding. Index or
// length mismatches are errors; zero-normal (degenerate) triangles are
// warnings. Validate never mutates the mesh.
func (m *Mesh) Validate() []Issue {
	var issues []Issue

	if len(m.Normals) != len(m.Vertices) {
		issues = append(issues, Issue{
			Triangle: -1,
			Message:  fmt.Sprintf("%d normals for %d vertices", len(m.Normals), len(m.Vertices)),
			Severity: SeverityError,
		})
	}
	if len(m.Indices)%3 != 0 {
		issues = append(issues, Issue{
			Triangle: -1,
			Message:  fmt.Sprintf("index count %d is not a multiple of 3", len(m.Indices)),
			Severity: SeverityError,
		})
	}

	for i, idx := range m.Indices {
		if int(idx) >= len(m.Vertices) {
			issues = append(issues, Issue{
				Triangle: i / 3,
				Message:  fmt.Sprintf("index %d out of range (%d vertices)", idx, len(m.Vertices)),
				Severity: SeverityError,
			})
		}
	}

	if len(m.Normals) == len(m.Vertices) {
		for t := 0; t < len(m.Indices)/3; t++ {
			idx := m.Indices[3*t]
			if int(idx) < len(m.Normals) && m.Normals[idx] == (Vec3{}) {
				issues = append(issues, Issue{
					Triangle: t,
					Message:  "zero-area triangle",
					Severity: SeverityWarning,
				})
			}
		}
	}

	return issues
}

// Errors filters issues down to those with SeverityError.
func Errors(issues []Issue) []Issue {
	var errs []Issue
	for _, is := range issues {
		if is.Severity == SeverityError {
			errs = append(errs, is)
		}
	}
	return errs
}
