// Package processors provides the built-in intake.Processor implementations:
// delimited text, JSON, YAML, TOML, and Markdown tables, plus a Router that
// picks one by file extension.
//
// Every processor names its tables after the file stem (or the source key or
// heading) and reports malformed input as services.ErrValidation. Input that
// parses but holds no tabular data yields an empty set, which the orchestrator
// classifies as a failure.
package processors
