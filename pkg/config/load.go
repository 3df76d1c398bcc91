package config

import (
	"errors"
	"fmt"
	"log/slog"
	"reflect"
)

// Loader produces a raw configuration tree from some source. The
// schema of the target struct is passed in so sources with no inherent
// structure, such as environment variables, can shape their output.
type Loader interface {
	ReadConfigData(schema *Section) (RawTree, error)
}

// TreeTranslator is an optional hook that rewrites the merged raw tree
// after interpolation and before it is decoded into the target struct.
type TreeTranslator func(tree RawTree) (RawTree, error)

type loadOptions struct {
	overrides         RawTree
	translator        TreeTranslator
	skipInterpolation bool
	logger            *slog.Logger
}

// Option customizes a Load call.
type Option func(*loadOptions)

// WithOverrides merges tree over everything the loaders produce.
func WithOverrides(tree RawTree) Option {
	return func(o *loadOptions) { o.overrides = tree }
}

// WithTranslator installs a hook to rewrite the merged raw tree before
// decoding, typically to rename legacy sections or keys.
func WithTranslator(fn TreeTranslator) Option {
	return func(o *loadOptions) { o.translator = fn }
}

// WithoutInterpolation disables `${...}` macro substitution, leaving
// raw values untouched.
func WithoutInterpolation() Option {
	return func(o *loadOptions) { o.skipInterpolation = true }
}

// WithLogger routes the engine's debug output somewhere other than
// slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(o *loadOptions) { o.logger = logger }
}

// Load reads configuration from the given loaders, merges it, expands
// `${...}` macros, decodes the result into target (a pointer to a
// struct), runs `validate` tag validation, and finally wires up the
// hierarchy and its validators.
//
// Earlier loaders take precedence over later ones, so callers list
// their most specific source first. Overrides beat every loader.
func Load(target any, loaders []Loader, opts ...Option) error {
	options := loadOptions{logger: slog.Default()}
	for _, opt := range opts {
		opt(&options)
	}

	schema, err := SchemaFor(target)
	if err != nil {
		return err
	}

	merged := RawTree{}
	if options.overrides != nil {
		merged = options.overrides.DeepCopy()
	}
	for i, loader := range loaders {
		tree, err := loader.ReadConfigData(schema)
		if err != nil {
			return fmt.Errorf("reading config data: %w", err)
		}
		options.logger.Debug("merging config source", "source", i, "keys", len(tree))
		// Copied so later interpolation cannot mutate the loader's tree.
		Merge(merged, tree.DeepCopy())
	}

	// Interpolation misses are soft; they ride along so the final
	// report covers every problem in one error.
	var problems []Problem
	if !options.skipInterpolation {
		if err := Interpolate(merged, merged); err != nil {
			var interpErr *InterpolationError
			if !errors.As(err, &interpErr) {
				return err
			}
			problems = interpErr.Problems
		}
	}
	if options.translator != nil {
		merged, err = options.translator(merged)
		if err != nil {
			return fmt.Errorf("translating config tree: %w", err)
		}
	}

	return loadTree(merged, target, problems)
}

// LoadTree decodes an already merged and interpolated raw tree into
// target, then validates and hierarchy-fills it. Decode problems are
// collected across the whole tree and reported together.
func LoadTree(tree RawTree, target any) error {
	return loadTree(tree, target, nil)
}

func loadTree(tree RawTree, target any, problems []Problem) error {
	rv := reflect.ValueOf(target)
	if rv.Kind() != reflect.Pointer || rv.IsNil() || rv.Elem().Kind() != reflect.Struct {
		return &StructuralError{Message: "load target must be a non-nil pointer to a struct"}
	}
	schema, err := SchemaFor(target)
	if err != nil {
		return err
	}

	w := walker{root: tree}
	w.decodeSection(tree, schema, rv.Elem(), nil)
	if len(w.problems) > 0 {
		return &ConfigError{Problems: append(problems, w.problems...)}
	}

	if err := Validate(target); err != nil {
		var cfgErr *ConfigError
		if !errors.As(err, &cfgErr) {
			return err
		}
		return &ConfigError{Problems: append(problems, cfgErr.Problems...)}
	}
	if err := Fill(target); err != nil {
		var cfgErr *ConfigError
		if !errors.As(err, &cfgErr) {
			return err
		}
		return &ConfigError{Problems: append(problems, cfgErr.Problems...)}
	}
	if len(problems) > 0 {
		return &ConfigError{Problems: problems}
	}
	return nil
}
