package sqlite

import (
	"database/sql"
	"strings"
	"time"

	"netatlas/internal/domain"
)

// ============================================================================
// Null Type Conversion Helpers
// ============================================================================

// nullToString safely converts sql.NullString to string
func nullToString(ns sql.NullString) string {
	if ns.Valid {
		return ns.String
	}
	return ""
}

// stringToNull safely converts string to sql.NullString ("" becomes NULL)
func stringToNull(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}

// ============================================================================
// Timestamp Helpers
// ============================================================================

// Timestamps are stored as RFC 3339 text set by the application, so reads
// behave the same regardless of driver type mapping.

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

func parseTime(s string) time.Time {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}
	}
	return t
}

// ============================================================================
// Capability Column Mapping
// ============================================================================

// capabilityColumns maps the closed capability enum onto device table
// columns, in declaration order of the schema.
var capabilityColumns = []domain.Capability{
	domain.CapabilityWifi,
	domain.CapabilityEthernet,
	domain.CapabilityZigbee,
	domain.CapabilityMatterThread,
	domain.CapabilityBluetooth,
	domain.CapabilityBLE,
}

func capabilityArgs(set domain.CapabilitySet) []any {
	args := make([]any, 0, len(capabilityColumns))
	for _, c := range capabilityColumns {
		args = append(args, boolToInt(set.Has(c)))
	}
	return args
}

func capabilitySetFrom(flags []int64) domain.CapabilitySet {
	set := make(domain.CapabilitySet, len(capabilityColumns))
	for i, c := range capabilityColumns {
		if i < len(flags) && flags[i] != 0 {
			set[c] = true
		}
	}
	return set
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

// ============================================================================
// Query Builders
// ============================================================================

// placeholders builds "?, ?, ?" for n parameters.
func placeholders(n int) string {
	if n <= 0 {
		return ""
	}
	return strings.TrimSuffix(strings.Repeat("?, ", n), ", ")
}

// idArgs converts a string id slice to query arguments.
func idArgs(ids []string) []any {
	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}
	return args
}

// isUniqueViolation reports whether the driver error is a UNIQUE constraint
// failure. modernc.org/sqlite does not expose a typed error for this.
func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}
