// Package services defines shared utilities consumed by the intake
// orchestrator, the mover, and the content processors.
//
// Key responsibilities:
//   - Context helpers that stamp batch run IDs, file paths, and stage names
//     for logging.
//   - Structured error markers plus the Wrap helper so callers can classify
//     failures with errors.Is (invalid argument, missing file, configuration,
//     no usable data, relocation).
//
// Use these helpers when wiring new processors so failure classification and
// observability stay uniform across the pipeline.
package services
