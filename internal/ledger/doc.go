// Package ledger records batch runs and per-file dispositions in SQLite.
//
// The ledger is history only: nothing is resumed from it and the intake
// directories remain the source of truth for what still needs processing.
// When changing the schema, update schema.sql and bump schemaVersion.
package ledger
