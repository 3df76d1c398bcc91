package templates

import (
	"fmt"
	"os"
	"reflect"
	"strings"

	"github.com/zalando/go-keyring"

	"github.com/arcann/config-wrangler/pkg/config"
)

// Credentials is a user id plus a password obtained from a pluggable
// backend. Sections embed it (or use it as a field) and call
// GetPassword when the secret is actually needed, so a password is
// never stored in the resolved configuration itself.
type Credentials struct {
	config.Hierarchy

	UserID string `config:"user_id,alias=default_user_id"`

	// PasswordSource picks the backend. When empty, the root config's
	// PasswordDefaults section (found by type) supplies it.
	PasswordSource PasswordSource `config:"password_source"`

	// RawPassword is only consulted by the CONFIG_FILE backend.
	RawPassword string `config:"password"`

	// KeyringSection overrides the keyring service name, which
	// defaults to the section's dotted location.
	KeyringSection string `config:"keyring_section,alias=key_ring_system"`

	// PasswordFilePath overrides the PasswordDefaults secrets file.
	PasswordFilePath string `config:"password_file"`

	// ValidatePasswordOnLoad makes the hierarchy pass fail when the
	// password cannot be fetched, instead of deferring the error to
	// first use.
	ValidatePasswordOnLoad bool `config:"validate_password_on_load"`

	// LookupEnv defaults to os.LookupEnv; tests inject a fake.
	LookupEnv func(key string) (string, bool) `config:"-"`
}

// GetPassword fetches the password from the configured backend.
func (c *Credentials) GetPassword() (string, error) {
	if c.UserID == "" {
		return "", fmt.Errorf("%s: user_id must be set before fetching a password", c.itemName())
	}
	source := c.PasswordSource.Normalize()
	defaults := c.findDefaults()
	if source == "" && defaults != nil {
		source = defaults.PasswordSource.Normalize()
	}
	if source == "" {
		return "", fmt.Errorf("%s: no password_source configured", c.itemName())
	}

	var password string
	var err error
	switch source {
	case SourceConfigFile:
		password = c.RawPassword
	case SourceEnvironment:
		password, err = c.fromEnvironment()
	case SourceKeyring:
		password, err = keyring.Get(c.keyringService(), c.UserID)
		if err != nil {
			err = fmt.Errorf("%s: keyring entry %s/%s: %w", c.itemName(), c.keyringService(), c.UserID, err)
		}
	case SourcePasswordFile:
		path := c.PasswordFilePath
		if path == "" && defaults != nil {
			path = defaults.PasswordFile
		}
		password, err = readPasswordFile(path, c.UserID)
	default:
		err = fmt.Errorf("%s: unknown password_source %q", c.itemName(), c.PasswordSource)
	}
	if err != nil {
		return "", err
	}
	if password == "" {
		return "", fmt.Errorf("%s: empty password from source %s", c.itemName(), source)
	}
	return password, nil
}

// ValidateInHierarchy eagerly verifies the password when asked to.
func (c *Credentials) ValidateInHierarchy() error {
	if !c.ValidatePasswordOnLoad {
		return nil
	}
	_, err := c.GetPassword()
	return err
}

// fromEnvironment probes SECTION_USERID style variable names, most
// specific first: the full dotted location with the user id appended,
// then the last section name, then the bare user id.
func (c *Credentials) fromEnvironment() (string, error) {
	lookup := c.LookupEnv
	if lookup == nil {
		lookup = os.LookupEnv
	}
	var names []string
	parents := c.Parents()
	if len(parents) > 0 {
		names = append(names, envName(append(append([]string{}, parents...), c.UserID)...))
		names = append(names, envName(parents[len(parents)-1], c.UserID))
	}
	names = append(names, envName(c.UserID))
	for _, name := range names {
		if value, ok := lookup(name); ok {
			return value, nil
		}
	}
	return "", fmt.Errorf("%s: none of %s are set in the environment", c.itemName(), strings.Join(names, ", "))
}

func envName(parts ...string) string {
	name := strings.Join(parts, "_")
	name = strings.NewReplacer(".", "_", "[", "", "]", "_").Replace(name)
	return strings.ToUpper(strings.Trim(name, "_"))
}

func (c *Credentials) keyringService() string {
	if c.KeyringSection != "" {
		return c.KeyringSection
	}
	return c.FullPath()
}

func (c *Credentials) itemName() string {
	return c.FullItemName()
}

// findDefaults scans the root configuration for a PasswordDefaults
// section by type, looking a few levels deep.
func (c *Credentials) findDefaults() *PasswordDefaults {
	root := c.Root()
	if root == nil {
		return nil
	}
	return findPasswordDefaults(reflect.ValueOf(root), 0)
}

func findPasswordDefaults(v reflect.Value, depth int) *PasswordDefaults {
	if depth > 3 {
		return nil
	}
	for v.Kind() == reflect.Pointer || v.Kind() == reflect.Interface {
		if v.IsNil() {
			return nil
		}
		v = v.Elem()
	}
	if v.Kind() != reflect.Struct {
		return nil
	}
	if v.Type() == reflect.TypeOf(PasswordDefaults{}) {
		if v.CanAddr() {
			return v.Addr().Interface().(*PasswordDefaults)
		}
		copied := v.Interface().(PasswordDefaults)
		return &copied
	}
	for i := 0; i < v.NumField(); i++ {
		if !v.Type().Field(i).IsExported() {
			continue
		}
		if found := findPasswordDefaults(v.Field(i), depth+1); found != nil {
			return found
		}
	}
	return nil
}
