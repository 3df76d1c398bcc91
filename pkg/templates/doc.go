// Package templates provides ready-made configuration sections for
// common application concerns: credentials with pluggable password
// backends, SQL database connection settings, and log output setup.
// Each is a plain struct meant to be embedded in an application's own
// configuration model and resolved through pkg/config.
package templates
