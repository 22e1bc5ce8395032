// Package migrate discovers, orders, and applies schema migration scripts
// against a single database, recording every applied script in a ledger
// table so reruns are no-ops.
package migrate

import "strings"

const (
	upMarker   = "-- +migrate Up"
	downMarker = "-- +migrate Down"
)

// A Unit is one versioned schema change script.
type Unit struct {
	// Version is the unit's identifier and ledger key: the bare file name.
	Version string
	// SQL is the statement batch from the script's up section.
	SQL string
}

// ExtractUpSQL returns the statements in the -- +migrate Up section. Content
// without section markers is returned whole.
func ExtractUpSQL(content string) string {
	upIdx := strings.Index(content, upMarker)
	if upIdx == -1 {
		return content
	}
	downIdx := strings.Index(content, downMarker)
	if downIdx == -1 {
		return content[upIdx+len(upMarker):]
	}
	return content[upIdx+len(upMarker) : downIdx]
}
