package config

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type staticSource struct {
	tree RawTree
}

func (s staticSource) ReadConfigData(*Section) (RawTree, error) {
	return s.tree, nil
}

type loadAppConfig struct {
	Hierarchy
	AppName  string       `config:"app_name" validate:"required"`
	Database loadDatabase `config:"database"`
}

type loadDatabase struct {
	Hierarchy
	Host string `config:"host" validate:"required"`
	Port int    `config:"port" validate:"min=1,max=65535"`
	DSN  string `config:"dsn"`
}

type auditedConfig struct {
	Hierarchy
	AppName  string       `config:"app_name"`
	Database loadDatabase `config:"database"`
	Audit    auditSection `config:"audit"`
}

type auditSection struct {
	Hierarchy
	Endpoint string `config:"endpoint"`
}

func (a *auditSection) ValidateInHierarchy() error {
	if a.Endpoint == "" {
		return fmt.Errorf("endpoint must be set")
	}
	return nil
}

func TestLoad(t *testing.T) {
	t.Run("earlier loaders win and interpolation runs on the merge", func(t *testing.T) {
		specific := staticSource{tree: RawTree{
			"database": RawTree{"host": "db-prod"},
		}}
		defaults := staticSource{tree: RawTree{
			"app_name": "wrangler",
			"database": RawTree{
				"host": "db-default",
				"port": "5432",
				"dsn":  "postgres://${database.host}:${database.port}",
			},
		}}

		var cfg loadAppConfig
		require.NoError(t, Load(&cfg, []Loader{specific, defaults}))

		assert.Equal(t, "db-prod", cfg.Database.Host)
		assert.Equal(t, 5432, cfg.Database.Port)
		// Interpolation saw the merged tree, not the defaults alone.
		assert.Equal(t, "postgres://db-prod:5432", cfg.Database.DSN)
		assert.Equal(t, []string{"database"}, cfg.Database.Parents())
	})

	t.Run("overrides beat every loader", func(t *testing.T) {
		source := staticSource{tree: RawTree{
			"app_name": "wrangler",
			"database": RawTree{"host": "db1", "port": 5432},
		}}

		var cfg loadAppConfig
		require.NoError(t, Load(&cfg, []Loader{source},
			WithOverrides(RawTree{"database": RawTree{"port": "9999"}})))
		assert.Equal(t, 9999, cfg.Database.Port)
		assert.Equal(t, "db1", cfg.Database.Host)
	})

	t.Run("translator rewrites the merged tree before decoding", func(t *testing.T) {
		source := staticSource{tree: RawTree{
			"app_name": "wrangler",
			"db":       RawTree{"host": "db1", "port": 5432},
		}}

		var cfg loadAppConfig
		err := Load(&cfg, []Loader{source}, WithTranslator(func(tree RawTree) (RawTree, error) {
			if old, ok := asTree(tree["db"]); ok {
				tree["database"] = old
				delete(tree, "db")
			}
			return tree, nil
		}))
		require.NoError(t, err)
		assert.Equal(t, "db1", cfg.Database.Host)
	})

	t.Run("interpolation can be disabled", func(t *testing.T) {
		source := staticSource{tree: RawTree{
			"app_name": "wrangler",
			"database": RawTree{"host": "h", "port": 1, "dsn": "${database.host}"},
		}}

		var cfg loadAppConfig
		require.NoError(t, Load(&cfg, []Loader{source}, WithoutInterpolation()))
		assert.Equal(t, "${database.host}", cfg.Database.DSN)
	})

	t.Run("validate tags run on the decoded struct", func(t *testing.T) {
		source := staticSource{tree: RawTree{
			"database": RawTree{"host": "db1", "port": "70000"},
		}}

		var cfg loadAppConfig
		err := Load(&cfg, []Loader{source})
		require.Error(t, err)

		var cfgErr *ConfigError
		require.ErrorAs(t, err, &cfgErr)
		assert.Contains(t, err.Error(), "'app_name' is required")
		assert.Contains(t, err.Error(), "'port' must be at most 65535")
	})

	t.Run("interpolation misses and validator failures report together", func(t *testing.T) {
		source := staticSource{tree: RawTree{
			"app_name": "wrangler",
			"database": RawTree{"host": "${servers.primary}", "port": 1},
			"audit":    RawTree{},
		}}

		var cfg auditedConfig
		err := Load(&cfg, []Loader{source})
		require.Error(t, err)

		var cfgErr *ConfigError
		require.ErrorAs(t, err, &cfgErr)
		assert.Contains(t, err.Error(), "NOT FOUND")
		assert.Contains(t, err.Error(), "endpoint must be set")
		// The bad macro still produced a decodable value.
		assert.Equal(t, "ERROR", cfg.Database.Host)
	})

	t.Run("loader trees are not mutated by interpolation", func(t *testing.T) {
		source := staticSource{tree: RawTree{
			"app_name": "wrangler",
			"database": RawTree{"host": "h", "port": 1, "dsn": "${database.host}"},
		}}

		var cfg loadAppConfig
		require.NoError(t, Load(&cfg, []Loader{source}))

		db, _ := asTree(source.tree["database"])
		assert.Equal(t, "${database.host}", db["dsn"])
	})
}
