package templates

import (
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"

	"github.com/arcann/config-wrangler/pkg/config"
)

// PasswordSource names a backend that can produce a password.
type PasswordSource string

const (
	// SourceConfigFile reads the password straight out of the config
	// data. Only for development setups.
	SourceConfigFile PasswordSource = "CONFIG_FILE"
	// SourceEnvironment reads an environment variable derived from the
	// section and user id.
	SourceEnvironment PasswordSource = "ENVIRONMENT"
	// SourceKeyring reads the operating system keyring.
	SourceKeyring PasswordSource = "KEYRING"
	// SourcePasswordFile reads a dotenv-format secrets file keyed by
	// user id.
	SourcePasswordFile PasswordSource = "PASSWORD_FILE"
)

// Valid reports whether s names a known backend. Matching is
// case-insensitive; use Normalize for the canonical spelling.
func (s PasswordSource) Valid() bool {
	switch s.Normalize() {
	case SourceConfigFile, SourceEnvironment, SourceKeyring, SourcePasswordFile:
		return true
	}
	return false
}

// Normalize returns the canonical upper-case spelling.
func (s PasswordSource) Normalize() PasswordSource {
	return PasswordSource(strings.ToUpper(strings.TrimSpace(string(s))))
}

// PasswordDefaults is an optional root-level section supplying the
// password source and secrets file for any Credentials section that
// does not set its own. It is found by type, so the field name in the
// root config does not matter.
type PasswordDefaults struct {
	config.Hierarchy
	PasswordSource PasswordSource `config:"password_source"`
	PasswordFile   string         `config:"password_file"`
}

// readPasswordFile parses a dotenv-format secrets file and returns the
// value stored under key, trying an exact match before an upper-case
// one.
func readPasswordFile(path, key string) (string, error) {
	if path == "" {
		return "", fmt.Errorf("no password file configured")
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("reading password file: %w", err)
	}
	entries, err := godotenv.UnmarshalBytes(data)
	if err != nil {
		return "", fmt.Errorf("parsing password file %s: %w", path, err)
	}
	if value, ok := entries[key]; ok {
		return value, nil
	}
	if value, ok := entries[strings.ToUpper(key)]; ok {
		return value, nil
	}
	return "", fmt.Errorf("password file %s has no entry for %s", path, key)
}
