// Package migrations embeds the SQL scripts that define the baseline CMS
// schema.
//
// Each supported database engine carries its own script set because column
// types and default expressions differ between engines. Scripts apply in
// file name order and every applied script is recorded in the
// schema_migrations ledger, so the sets are safe to replay.
package migrations
