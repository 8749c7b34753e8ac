// Package batchrun wires configuration, logging, the run lock, the ledger and
// the intake orchestrator into a single batch run.
//
// Run holds an exclusive flock on <log_dir>/intake.lock for its whole
// duration so two invocations never race over the same unprocessed
// directory. Each run writes a JSON log to <log_dir>/intake-<stamp>.log,
// points <log_dir>/intake.log at it, and prunes logs older than
// logging.retention_days.
package batchrun
