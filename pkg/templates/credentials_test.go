package templates

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zalando/go-keyring"

	"github.com/arcann/config-wrangler/pkg/config"
)

type credsRoot struct {
	config.Hierarchy
	Service  Credentials      `config:"service"`
	Defaults PasswordDefaults `config:"passwords"`
}

func fakeLookup(vars map[string]string) func(string) (string, bool) {
	return func(key string) (string, bool) {
		v, ok := vars[key]
		return v, ok
	}
}

func TestGetPassword(t *testing.T) {
	t.Run("config file source", func(t *testing.T) {
		cfg := &credsRoot{Service: Credentials{
			UserID:         "svc",
			PasswordSource: SourceConfigFile,
			RawPassword:    "hunter2",
		}}
		require.NoError(t, config.Fill(cfg))

		password, err := cfg.Service.GetPassword()
		require.NoError(t, err)
		assert.Equal(t, "hunter2", password)
	})

	t.Run("environment source probes section then user id", func(t *testing.T) {
		cfg := &credsRoot{Service: Credentials{
			UserID:         "svc",
			PasswordSource: SourceEnvironment,
			LookupEnv:      fakeLookup(map[string]string{"SERVICE_SVC": "from-env"}),
		}}
		require.NoError(t, config.Fill(cfg))

		password, err := cfg.Service.GetPassword()
		require.NoError(t, err)
		assert.Equal(t, "from-env", password)
	})

	t.Run("environment miss names the probed variables", func(t *testing.T) {
		cfg := &credsRoot{Service: Credentials{
			UserID:         "svc",
			PasswordSource: SourceEnvironment,
			LookupEnv:      fakeLookup(nil),
		}}
		require.NoError(t, config.Fill(cfg))

		_, err := cfg.Service.GetPassword()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "SERVICE_SVC")
		assert.Contains(t, err.Error(), "service")
	})

	t.Run("password file source", func(t *testing.T) {
		tempDir := t.TempDir()
		secrets := filepath.Join(tempDir, "secrets.env")
		require.NoError(t, os.WriteFile(secrets, []byte("svc=file-secret\n"), 0o600))

		cfg := &credsRoot{Service: Credentials{
			UserID:           "svc",
			PasswordSource:   SourcePasswordFile,
			PasswordFilePath: secrets,
		}}
		require.NoError(t, config.Fill(cfg))

		password, err := cfg.Service.GetPassword()
		require.NoError(t, err)
		assert.Equal(t, "file-secret", password)
	})

	t.Run("defaults section supplies source and file", func(t *testing.T) {
		tempDir := t.TempDir()
		secrets := filepath.Join(tempDir, "secrets.env")
		require.NoError(t, os.WriteFile(secrets, []byte("SVC=upper-key\n"), 0o600))

		cfg := &credsRoot{
			Service: Credentials{UserID: "svc"},
			Defaults: PasswordDefaults{
				PasswordSource: SourcePasswordFile,
				PasswordFile:   secrets,
			},
		}
		require.NoError(t, config.Fill(cfg))

		password, err := cfg.Service.GetPassword()
		require.NoError(t, err)
		assert.Equal(t, "upper-key", password)
	})

	t.Run("keyring source", func(t *testing.T) {
		keyring.MockInit()
		require.NoError(t, keyring.Set("myapp", "svc", "ring-secret"))

		cfg := &credsRoot{Service: Credentials{
			UserID:         "svc",
			PasswordSource: SourceKeyring,
			KeyringSection: "myapp",
		}}
		require.NoError(t, config.Fill(cfg))

		password, err := cfg.Service.GetPassword()
		require.NoError(t, err)
		assert.Equal(t, "ring-secret", password)
	})

	t.Run("empty password is an error", func(t *testing.T) {
		cfg := &credsRoot{Service: Credentials{
			UserID:         "svc",
			PasswordSource: SourceConfigFile,
		}}
		require.NoError(t, config.Fill(cfg))

		_, err := cfg.Service.GetPassword()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "empty password")
	})

	t.Run("missing user id is an error", func(t *testing.T) {
		cfg := &credsRoot{Service: Credentials{PasswordSource: SourceConfigFile, RawPassword: "x"}}
		require.NoError(t, config.Fill(cfg))

		_, err := cfg.Service.GetPassword()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "user_id")
	})

	t.Run("eager validation fails the hierarchy pass", func(t *testing.T) {
		cfg := &credsRoot{Service: Credentials{
			UserID:                 "svc",
			PasswordSource:         SourceEnvironment,
			ValidatePasswordOnLoad: true,
			LookupEnv:              fakeLookup(nil),
		}}
		err := config.Fill(cfg)
		require.Error(t, err)

		var cfgErr *config.ConfigError
		require.ErrorAs(t, err, &cfgErr)
		assert.Contains(t, err.Error(), "service")
	})
}
