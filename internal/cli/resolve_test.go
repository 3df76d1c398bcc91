package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arcann/config-wrangler/pkg/config"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestResolveTree(t *testing.T) {
	t.Run("earlier files win, macros expand across files", func(t *testing.T) {
		tempDir := t.TempDir()
		appINI := filepath.Join(tempDir, "app.ini")
		defaultsINI := filepath.Join(tempDir, "defaults.ini")
		writeFile(t, appINI, "[database]\nhost = prod-db\n")
		writeFile(t, defaultsINI, `
[database]
host = default-db
port = 5432

[app]
dsn = ${database.host}:${database.port}
`)

		tree, err := ResolveTree(ResolveOptions{Files: []string{appINI, defaultsINI}})
		require.NoError(t, err)

		db, _ := tree["database"].(config.RawTree)
		assert.Equal(t, "prod-db", db["host"])
		app, _ := tree["app"].(config.RawTree)
		assert.Equal(t, "prod-db:5432", app["dsn"])
	})

	t.Run("set overrides beat files", func(t *testing.T) {
		tempDir := t.TempDir()
		appINI := filepath.Join(tempDir, "app.ini")
		writeFile(t, appINI, "[database]\nhost = file-db\n")

		tree, err := ResolveTree(ResolveOptions{
			Files: []string{appINI},
			Sets:  []string{"database.host=cli-db"},
		})
		require.NoError(t, err)

		db, _ := tree["database"].(config.RawTree)
		assert.Equal(t, "cli-db", db["host"])
	})

	t.Run("bad set syntax is rejected", func(t *testing.T) {
		_, err := ResolveTree(ResolveOptions{Files: []string{"x.ini"}, Sets: []string{"no-equals"}})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "--set")
	})

	t.Run("env prefix nests on double underscore", func(t *testing.T) {
		tempDir := t.TempDir()
		appINI := filepath.Join(tempDir, "app.ini")
		writeFile(t, appINI, "[database]\nhost = file-db\nport = 1\n")
		t.Setenv("WRTEST_DATABASE__HOST", "env-db")

		tree, err := ResolveTree(ResolveOptions{
			Files:     []string{appINI},
			EnvPrefix: "WRTEST",
		})
		require.NoError(t, err)

		db, _ := tree["database"].(config.RawTree)
		assert.Equal(t, "env-db", db["host"])
		assert.Equal(t, "1", db["port"])
	})

	t.Run("interpolation problems surface", func(t *testing.T) {
		tempDir := t.TempDir()
		appINI := filepath.Join(tempDir, "app.ini")
		writeFile(t, appINI, "[app]\ndsn = ${missing.ref}\n")

		_, err := ResolveTree(ResolveOptions{Files: []string{appINI}})
		require.Error(t, err)
		var interpErr *config.InterpolationError
		assert.ErrorAs(t, err, &interpErr)
	})

	t.Run("no interpolation leaves macros alone", func(t *testing.T) {
		tempDir := t.TempDir()
		appINI := filepath.Join(tempDir, "app.ini")
		writeFile(t, appINI, "[app]\ndsn = ${missing.ref}\n")

		tree, err := ResolveTree(ResolveOptions{Files: []string{appINI}, SkipInterpolation: true})
		require.NoError(t, err)
		app, _ := tree["app"].(config.RawTree)
		assert.Equal(t, "${missing.ref}", app["dsn"])
	})
}

func TestRenderAndValidate(t *testing.T) {
	tempDir := t.TempDir()
	goodINI := filepath.Join(tempDir, "good.ini")
	badINI := filepath.Join(tempDir, "bad.ini")
	writeFile(t, goodINI, "[database]\nhost = db1\n")
	writeFile(t, badINI, "[app]\ndsn = ${missing.ref}\n")

	t.Run("render prints YAML", func(t *testing.T) {
		var out bytes.Buffer
		require.NoError(t, Render(&out, ResolveOptions{Files: []string{goodINI}}))
		assert.Contains(t, out.String(), "database:")
		assert.Contains(t, out.String(), "host: db1")
	})

	t.Run("validate reports OK", func(t *testing.T) {
		var out bytes.Buffer
		require.NoError(t, Validate(&out, ResolveOptions{Files: []string{goodINI}}))
		assert.Equal(t, "OK\n", out.String())
	})

	t.Run("validate lists every problem", func(t *testing.T) {
		var out bytes.Buffer
		err := Validate(&out, ResolveOptions{Files: []string{badINI}})
		require.Error(t, err)
		assert.Contains(t, out.String(), "missing")
		assert.Contains(t, err.Error(), "1 problems found")
	})
}
