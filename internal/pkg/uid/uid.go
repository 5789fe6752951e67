// Package uid generates identifiers: snowflake numbers for stored records and
// UUIDv7 strings for correlation and token ids.
package uid

// NumberID generates numeric identifiers.
type NumberID interface {
	Generate() int64
}

// StringID generates string identifiers.
type StringID interface {
	Generate() string
}
