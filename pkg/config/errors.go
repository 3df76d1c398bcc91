package config

import (
	"fmt"
	"sort"
	"strings"
)

// Problem records a single issue found during a collect-all pass, tied to
// the dotted path of the value at fault.
type Problem struct {
	Path    string
	Message string
}

func (p Problem) String() string {
	if p.Path == "" {
		return p.Message
	}
	return fmt.Sprintf("%s: %s", p.Path, p.Message)
}

func formatProblems(problems []Problem) string {
	lines := make([]string, 0, len(problems))
	seen := make(map[string]bool, len(problems))
	for _, p := range problems {
		s := p.String()
		if !seen[s] {
			seen[s] = true
			lines = append(lines, s)
		}
	}
	sort.Strings(lines)
	return "   " + strings.Join(lines, "\n   ")
}

// InterpolationError aggregates every unresolved `${...}` reference found
// during a single interpolation pass. Individual misses never stop the
// pass; they are collected and reported together.
type InterpolationError struct {
	Problems []Problem
}

func (e *InterpolationError) Error() string {
	return fmt.Sprintf("%d variable interpolation errors:\n%s",
		len(e.Problems), formatProblems(e.Problems))
}

// SectionRefError reports a create-from-section-names value naming a
// section that does not exist at any dotted prefix length. Fatal.
type SectionRefError struct {
	Path        string
	SectionName string
}

func (e *SectionRefError) Error() string {
	return fmt.Sprintf("%s refers to section %s which does not exist", e.Path, e.SectionName)
}

// CoercionError reports a raw value that could not be parsed into its
// declared field shape. Fatal.
type CoercionError struct {
	Path  string
	Value string
	Err   error
}

func (e *CoercionError) Error() string {
	return fmt.Sprintf("%s: cannot parse value %q: %v", e.Path, truncateValue(e.Value), e.Err)
}

func (e *CoercionError) Unwrap() error { return e.Err }

// StructuralError reports a recursion depth limit being exceeded, which
// indicates an interpolation cycle or a self-referential model rather
// than a data-quality problem. Fatal, never collected.
type StructuralError struct {
	Message string
}

func (e *StructuralError) Error() string { return e.Message }

// ConfigError is the aggregate a load reports: interpolation misses,
// coercion and section-reference failures, tag validation problems, and
// hierarchy validator failures, collected across the whole tree and
// keyed by the dotted path of each failing node.
type ConfigError struct {
	Problems []Problem
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("config errors (cnt=%d):\n%s", len(e.Problems), formatProblems(e.Problems))
}

const maxValueInError = 80

func truncateValue(v string) string {
	if len(v) <= maxValueInError {
		return v
	}
	return v[:maxValueInError] + "..."
}
