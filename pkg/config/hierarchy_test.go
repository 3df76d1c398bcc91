package config

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type hierDatabase struct {
	Hierarchy
	Host string   `config:"host"`
	Pool hierPool `config:"pool"`
}

type hierPool struct {
	Hierarchy
	Size    int `config:"size"`
	MaxSize int `config:"max_size"`
}

func (p *hierPool) ValidateInHierarchy() error {
	validationOrder = append(validationOrder, "pool")
	if p.MaxSize > 0 && p.Size > p.MaxSize {
		return fmt.Errorf("size %d exceeds max_size %d", p.Size, p.MaxSize)
	}
	return nil
}

func (d *hierDatabase) ValidateInHierarchy() error {
	validationOrder = append(validationOrder, "database")
	if d.Host == "" {
		return fmt.Errorf("host must be set")
	}
	return nil
}

type hierRoot struct {
	Hierarchy
	Database hierDatabase        `config:"database"`
	Workers  []hierPool          `config:"workers"`
	Named    map[string]hierPool `config:"named"`
	AppName  string              `config:"app_name"`
}

var validationOrder []string

func TestFill(t *testing.T) {
	t.Run("locations are wired through the tree", func(t *testing.T) {
		cfg := &hierRoot{
			Database: hierDatabase{Host: "db1", Pool: hierPool{Size: 2}},
			Workers:  []hierPool{{Size: 1}},
			Named:    map[string]hierPool{"batch": {Size: 3}},
		}
		validationOrder = nil
		require.NoError(t, Fill(cfg))

		assert.Equal(t, "root", cfg.FullPath())
		assert.Equal(t, "database", cfg.Database.FullPath())
		assert.Equal(t, []string{"database", "pool"}, cfg.Database.Pool.Parents())
		assert.Equal(t, "database -> pool", cfg.Database.Pool.FullItemName())
		assert.Equal(t, "database -> pool -> size", cfg.Database.Pool.FullItemName("size"))
		assert.Same(t, cfg, cfg.Database.Pool.Root().(*hierRoot))

		assert.Equal(t, []string{"workers", "[0]"}, cfg.Workers[0].Parents())

		// Map values are not addressable, so read through a copy.
		batch := cfg.Named["batch"]
		assert.Equal(t, []string{"named", "[batch]"}, batch.Parents())
	})

	t.Run("children validate before their parents", func(t *testing.T) {
		cfg := &hierRoot{Database: hierDatabase{Host: "db1"}}
		validationOrder = nil
		require.NoError(t, Fill(cfg))
		assert.Equal(t, []string{"pool", "database"}, validationOrder)
	})

	t.Run("validator failures are collected across the tree", func(t *testing.T) {
		cfg := &hierRoot{
			Database: hierDatabase{
				Pool: hierPool{Size: 10, MaxSize: 5},
			},
			Workers: []hierPool{{Size: 9, MaxSize: 1}},
		}
		validationOrder = nil
		err := Fill(cfg)
		require.Error(t, err)

		var cfgErr *ConfigError
		require.ErrorAs(t, err, &cfgErr)
		assert.Len(t, cfgErr.Problems, 3)
		assert.Contains(t, err.Error(), "database.pool")
		assert.Contains(t, err.Error(), "host must be set")
		assert.Contains(t, err.Error(), "workers[0]")
	})

	t.Run("requires a struct pointer", func(t *testing.T) {
		err := Fill(hierRoot{})
		require.Error(t, err)
		var structErr *StructuralError
		assert.ErrorAs(t, err, &structErr)
	})
}

func TestHierarchyGet(t *testing.T) {
	cfg := &hierRoot{
		AppName:  "wrangler",
		Database: hierDatabase{Host: "db1", Pool: hierPool{Size: 4}},
		Named:    map[string]hierPool{"batch": {Size: 7}},
	}
	validationOrder = nil
	require.NoError(t, Fill(cfg))

	t.Run("dotted navigation from any node", func(t *testing.T) {
		v, err := cfg.Database.Pool.Get("app_name")
		require.NoError(t, err)
		assert.Equal(t, "wrangler", v)

		v, err = cfg.Database.Pool.Get("database.host")
		require.NoError(t, err)
		assert.Equal(t, "db1", v)
	})

	t.Run("map entries navigate by key", func(t *testing.T) {
		v, err := cfg.Get("named.batch.size")
		require.NoError(t, err)
		assert.Equal(t, 7, v)
	})

	t.Run("missing paths report and fall back", func(t *testing.T) {
		_, err := cfg.Get("database.nope")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "database.nope not found")

		assert.Equal(t, "default", cfg.GetOr("database.nope", "default"))
		assert.Equal(t, "db1", cfg.GetOr("database.host", "other"))
	})

	t.Run("detached section cannot navigate", func(t *testing.T) {
		detached := &hierPool{}
		_, err := detached.Get("app_name")
		require.Error(t, err)
	})
}
