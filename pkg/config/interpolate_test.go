package config

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInterpolate(t *testing.T) {
	t.Run("sibling reference", func(t *testing.T) {
		tree := RawTree{
			"env":    "prod",
			"bucket": "data-${env}",
		}
		require.NoError(t, Interpolate(tree, tree))
		assert.Equal(t, "data-prod", tree["bucket"])
	})

	t.Run("sibling reference is case-insensitive", func(t *testing.T) {
		tree := RawTree{
			"Env":    "prod",
			"bucket": "data-${ENV}",
		}
		require.NoError(t, Interpolate(tree, tree))
		assert.Equal(t, "data-prod", tree["bucket"])
	})

	t.Run("dotted and colon paths resolve from the root", func(t *testing.T) {
		tree := RawTree{
			"database": RawTree{"host": "db1", "port": 5432},
			"app": RawTree{
				"dsn":     "postgres://${database.host}:${database:port}/main",
				"verbose": "true",
			},
		}
		require.NoError(t, Interpolate(tree, tree))
		app, _ := asTree(tree["app"])
		assert.Equal(t, "postgres://db1:5432/main", app["dsn"])
	})

	t.Run("chained references expand to a fixed point", func(t *testing.T) {
		tree := RawTree{
			"region": "us-east-1",
			"prefix": "acme-${region}",
			"bucket": "${prefix}-data",
		}
		require.NoError(t, Interpolate(tree, tree))
		assert.Equal(t, "acme-us-east-1-data", tree["bucket"])
	})

	t.Run("missing reference yields ERROR literal and a soft error", func(t *testing.T) {
		tree := RawTree{
			"bucket": "data-${no_such_key}",
			"other":  "${also.missing}",
		}
		err := Interpolate(tree, tree)
		require.Error(t, err)

		var interpErr *InterpolationError
		require.ErrorAs(t, err, &interpErr)
		assert.Len(t, interpErr.Problems, 2)

		// Substitution still happened; the bad token became ERROR.
		assert.Equal(t, "data-ERROR", tree["bucket"])
		assert.Contains(t, err.Error(), "NOT FOUND")
	})

	t.Run("reference cycle trips the depth limit", func(t *testing.T) {
		tree := RawTree{
			"a": "${b}",
			"b": "${a}",
		}
		err := Interpolate(tree, tree)
		require.Error(t, err)

		var structErr *StructuralError
		require.ErrorAs(t, err, &structErr)
		assert.Contains(t, err.Error(), "depth limit")
	})

	t.Run("values without macros are untouched", func(t *testing.T) {
		tree := RawTree{
			"cost":  "$100",
			"plain": "hello",
			"num":   42,
		}
		require.NoError(t, Interpolate(tree, tree))
		assert.Equal(t, "$100", tree["cost"])
		assert.Equal(t, 42, tree["num"])
	})

	t.Run("all problems reported at once", func(t *testing.T) {
		tree := RawTree{
			"x": "${gone1}",
			"y": "${gone2} and ${gone3}",
		}
		err := Interpolate(tree, tree)
		require.Error(t, err)

		var interpErr *InterpolationError
		require.ErrorAs(t, err, &interpErr)
		assert.Len(t, interpErr.Problems, 3)
		assert.True(t, strings.HasPrefix(err.Error(), "3 variable interpolation errors"))
	})
}
