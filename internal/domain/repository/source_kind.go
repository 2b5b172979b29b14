package repository

import "strings"

// SourceKind names the backing store series are ingested from.
type SourceKind string

const (
	SourceCSV        SourceKind = "csv"
	SourceSQLite     SourceKind = "sqlite"
	SourceClickHouse SourceKind = "clickhouse"
)

// IsValidSourceKind returns true if k is a supported source.
func IsValidSourceKind(k SourceKind) bool {
	switch k {
	case SourceCSV, SourceSQLite, SourceClickHouse:
		return true
	default:
		return false
	}
}

// DefaultSourceKind returns the default source.
func DefaultSourceKind() SourceKind { return SourceCSV }

// NormalizeSourceKind converts raw string to a valid source kind (or default).
func NormalizeSourceKind(s string) SourceKind {
	k := SourceKind(strings.ToLower(strings.TrimSpace(s)))
	if k == "" {
		return DefaultSourceKind()
	}
	if IsValidSourceKind(k) {
		return k
	}
	return DefaultSourceKind()
}
