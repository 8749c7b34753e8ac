// Package main hosts the intake CLI entrypoint and command graph.
//
// The Cobra command tree loads configuration once, then hands batch runs to
// internal/batchrun and reads run history back from internal/ledger. Keep the
// commands thin: behavior belongs in the internal packages.
package main
