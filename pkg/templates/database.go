package templates

import (
	"fmt"
	"net/url"
	"sort"
	"strings"
)

// SQLDatabase holds connection settings for a SQL database, with the
// password supplied through the embedded Credentials at connect time.
//
// Legacy key spellings from older deployments are accepted via
// aliases: dsn for host, dbname for database_name, default_user_id for
// user_id and key_ring_system for keyring_section.
type SQLDatabase struct {
	Credentials

	// Dialect is the database family, e.g. postgresql, mysql, sqlite.
	Dialect string `config:"dialect" validate:"required"`

	// DriverName optionally picks a driver within the dialect,
	// rendered as dialect+driver in the connection string.
	DriverName string `config:"driver_name"`

	Host         string `config:"host,alias=dsn"`
	Port         int    `config:"port" validate:"omitempty,min=1,max=65535"`
	DatabaseName string `config:"database_name,alias=dbname"`

	// EngineArgs become query parameters on the connection string.
	EngineArgs map[string]string `config:"engine_args"`
}

// IsSqlite reports whether this section points at a file database, in
// which case no credentials are involved.
func (d *SQLDatabase) IsSqlite() bool {
	return strings.EqualFold(d.Dialect, "sqlite")
}

// ValidateInHierarchy checks connection settings once the whole tree
// is built. Sqlite sections bypass every credential check.
func (d *SQLDatabase) ValidateInHierarchy() error {
	if d.IsSqlite() {
		if d.DatabaseName == "" {
			return fmt.Errorf("sqlite requires database_name to hold the file path")
		}
		return nil
	}
	if d.Host == "" {
		return fmt.Errorf("host must be set for dialect %s", d.Dialect)
	}
	if d.UserID == "" {
		return fmt.Errorf("user_id must be set for dialect %s", d.Dialect)
	}
	return d.Credentials.ValidateInHierarchy()
}

// ConnectionString renders a DSN URL with the resolved password.
func (d *SQLDatabase) ConnectionString() (string, error) {
	scheme := d.Dialect
	if d.DriverName != "" {
		scheme += "+" + d.DriverName
	}
	if d.IsSqlite() {
		return fmt.Sprintf("%s://%s", scheme, d.DatabaseName), nil
	}

	password, err := d.GetPassword()
	if err != nil {
		return "", err
	}
	u := url.URL{
		Scheme: scheme,
		User:   url.UserPassword(d.UserID, password),
		Host:   d.Host,
		Path:   "/" + d.DatabaseName,
	}
	if d.Port != 0 {
		u.Host = fmt.Sprintf("%s:%d", d.Host, d.Port)
	}
	if len(d.EngineArgs) > 0 {
		keys := make([]string, 0, len(d.EngineArgs))
		for k := range d.EngineArgs {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		query := url.Values{}
		for _, k := range keys {
			query.Set(k, d.EngineArgs[k])
		}
		u.RawQuery = query.Encode()
	}
	return u.String(), nil
}
