// Package config loads, normalizes, and validates intake configuration data.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, and honours environment overrides for the three
// directory roles (INTAKE_UNPROCESSED_DIR, INTAKE_PROCESSED_DIR,
// INTAKE_ERROR_DIR). Always obtain settings through this package so the
// orchestrator receives absolute, non-blank, distinct directories.
package config
