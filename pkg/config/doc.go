// Package config resolves application configuration from layered raw
// sources into validated Go structs.
//
// Raw data from any number of loaders is merged child-over-parent,
// `${...}` macros are expanded, and the result is decoded into a
// struct guided by `config` field tags. Scalars are coerced from
// strings, delimited strings become lists, and fields may refer to
// other sections by name instead of holding inline data. After
// decoding, go-playground/validator tags run and every section
// embedding Hierarchy learns its place in the tree so cross-section
// checks can execute.
package config
