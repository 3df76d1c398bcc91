package loaders

import (
	"fmt"
	"os"
	"strings"

	"github.com/arcann/config-wrangler/pkg/config"
)

// envSeparators are the characters tried between name parts when
// probing the environment. "MYAPP_DATABASE_HOST", "MYAPP.DATABASE.HOST"
// and "MYAPP:DATABASE:HOST" all address the same setting.
var envSeparators = []string{"_", ".", ":"}

// Env reads settings from environment variables, shaped by the target
// schema: every field of every section is probed under its dotted
// location, uppercased and joined with each accepted separator.
type Env struct {
	// Prefix namespaces the probe, e.g. "MYAPP".
	Prefix string

	// LookupEnv defaults to os.LookupEnv; tests inject a fake.
	LookupEnv func(key string) (string, bool)
}

// NewEnv probes variables beginning with prefix.
func NewEnv(prefix string) *Env {
	return &Env{Prefix: prefix}
}

// EnvAmbiguityError reports settings that were found under several
// variable spellings with conflicting values. All conflicts from one
// read are reported together.
type EnvAmbiguityError struct {
	Problems []config.Problem
}

func (e *EnvAmbiguityError) Error() string {
	lines := make([]string, len(e.Problems))
	for i, p := range e.Problems {
		lines[i] = p.String()
	}
	return fmt.Sprintf("%d ambiguous environment settings:\n   %s",
		len(e.Problems), strings.Join(lines, "\n   "))
}

func (e *Env) ReadConfigData(schema *config.Section) (config.RawTree, error) {
	if schema == nil {
		return config.RawTree{}, nil
	}
	lookup := e.LookupEnv
	if lookup == nil {
		lookup = os.LookupEnv
	}
	tree := config.RawTree{}
	var problems []config.Problem
	e.readSection(schema, nil, tree, lookup, &problems)
	if len(problems) > 0 {
		return nil, &EnvAmbiguityError{Problems: problems}
	}
	return tree, nil
}

func (e *Env) readSection(schema *config.Section, path []string, tree config.RawTree, lookup func(string) (string, bool), problems *[]config.Problem) {
	for i := range schema.Fields {
		field := &schema.Fields[i]
		fieldPath := append(append([]string(nil), path...), field.Name)
		if field.Shape == config.ShapeSection {
			sub := config.RawTree{}
			e.readSection(field.Section, fieldPath, sub, lookup, problems)
			if len(sub) > 0 {
				tree[field.Name] = sub
			}
			continue
		}
		value, ok := e.probe(fieldPath, lookup, problems)
		if ok {
			tree[field.Name] = value
		}
	}
}

// probe checks every separator spelling of the variable name. Finding
// the same value under several spellings is fine; different values are
// recorded as an ambiguity.
func (e *Env) probe(path []string, lookup func(string) (string, bool), problems *[]config.Problem) (string, bool) {
	parts := path
	if e.Prefix != "" {
		parts = append([]string{e.Prefix}, path...)
	}
	type hit struct {
		name  string
		value string
	}
	var hits []hit
	for _, sep := range envSeparators {
		name := strings.ToUpper(strings.Join(parts, sep))
		if value, ok := lookup(name); ok {
			hits = append(hits, hit{name: name, value: value})
		}
	}
	if len(hits) == 0 {
		return "", false
	}
	for _, h := range hits[1:] {
		if h.value != hits[0].value {
			*problems = append(*problems, config.Problem{
				Path: strings.Join(path, "."),
				Message: fmt.Sprintf("both %s=%q and %s=%q are set",
					hits[0].name, hits[0].value, h.name, h.value),
			})
			return "", false
		}
	}
	return hits[0].value, true
}
