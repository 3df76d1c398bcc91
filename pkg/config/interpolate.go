package config

import (
	"fmt"
	"regexp"
	"strings"
)

var interpolationRe = regexp.MustCompile(`\$\{([^}]+)}`)

// maxInterpolationDepth bounds the substitution fixed-point loop for a
// single value. Exceeding it means the data contains a reference cycle.
const maxInterpolationDepth = 50

// Interpolate rewrites `${name}` macro references inside every string
// value of tree, in place, recursing into nested sections. Names are
// resolved against root when they contain a `:` or `.` part delimiter,
// and against the immediately enclosing section otherwise; both lookups
// are case-insensitive.
//
// Resolution misses are soft: the token contributes the literal string
// "ERROR" to the assembled value and processing continues, so that a
// single pass reports every bad reference at once. If any miss occurred
// the returned error is an *InterpolationError listing all of them. A
// reference cycle exceeding the depth limit returns a *StructuralError
// immediately.
func Interpolate(tree, root RawTree) error {
	problems, err := interpolateTree(tree, root, "")
	if err != nil {
		return err
	}
	if len(problems) > 0 {
		return &InterpolationError{Problems: problems}
	}
	return nil
}

func interpolateTree(tree, root RawTree, path string) ([]Problem, error) {
	var problems []Problem
	for _, key := range sortedKeys(tree) {
		loc := key
		if path != "" {
			loc = path + "." + key
		}
		if sub, ok := asTree(tree[key]); ok {
			subProblems, err := interpolateTree(sub, root, loc)
			problems = append(problems, subProblems...)
			if err != nil {
				return problems, err
			}
			continue
		}
		value, ok := tree[key].(string)
		if !ok || !strings.Contains(value, "$") {
			continue
		}
		newValue, valueProblems, err := interpolateValue(value, tree, root, loc)
		problems = append(problems, valueProblems...)
		if err != nil {
			return problems, err
		}
		tree[key] = newValue
	}
	return problems, nil
}

// interpolateValue substitutes every token in value, repeating until the
// result contains no further tokens (replacements may themselves contain
// references) or the depth limit trips.
func interpolateValue(value string, container, root RawTree, loc string) (string, []Problem, error) {
	var problems []Problem
	current := value
	for depth := 1; ; depth++ {
		matches := interpolationRe.FindAllStringSubmatchIndex(current, -1)
		if len(matches) == 0 {
			return current, problems, nil
		}
		var b strings.Builder
		next := 0
		for _, m := range matches {
			name := current[m[2]:m[3]]
			replacement := "ERROR"
			delimiter := ""
			if strings.Contains(name, ":") {
				delimiter = ":"
			} else if strings.Contains(name, ".") {
				delimiter = "."
			}
			if delimiter != "" {
				resolved, err := resolveVariable(root, name, delimiter)
				if err != nil {
					problems = append(problems, Problem{Path: loc, Message: err.Error()})
				} else {
					replacement = resolved
				}
			} else {
				_, sibling, found := container.lookup(name)
				if !found {
					problems = append(problems, Problem{Path: loc, Message: fmt.Sprintf("<<%s NOT FOUND>>", name)})
				} else if s, isScalar := scalarString(sibling); isScalar {
					replacement = s
				} else {
					problems = append(problems, Problem{Path: loc, Message: fmt.Sprintf("<<%s resolves to a section, not a value>>", name)})
				}
			}
			b.WriteString(current[next:m[0]])
			b.WriteString(replacement)
			next = m[1]
		}
		b.WriteString(current[next:])
		current = b.String()
		if depth >= maxInterpolationDepth {
			return "", problems, &StructuralError{Message: fmt.Sprintf(
				"interpolation recursion depth limit reached on value %q, ended with %q",
				truncateValue(value), truncateValue(current))}
		}
	}
}

// resolveVariable walks root part by part, case-insensitively at each
// level, and renders the found scalar as a string.
func resolveVariable(root RawTree, name, delimiter string) (string, error) {
	parts := strings.Split(name, delimiter)
	var current any = root
	for _, part := range parts {
		tree, ok := asTree(current)
		if !ok {
			return "", fmt.Errorf("<<%s NOT FOUND when resolving %v>>", part, parts)
		}
		_, next, found := tree.lookup(part)
		if !found {
			return "", fmt.Errorf("<<%s NOT FOUND when resolving %v>>", part, parts)
		}
		current = next
	}
	s, isScalar := scalarString(current)
	if !isScalar {
		return "", fmt.Errorf("<<%s resolves to a section, not a value>>", name)
	}
	return s, nil
}
