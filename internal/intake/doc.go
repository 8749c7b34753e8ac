// Package intake drives files from an unprocessed directory through a
// Processor and routes each one by outcome.
//
// A file whose processor returns at least one table is moved to the processed
// directory and its payload is handed back to the caller. Anything else (an
// error, a panic, a nil payload, a payload without tables) is a failure and
// the file is moved to the error directory. If the move itself fails the file
// stays in the unprocessed directory for a later run and the outcome is
// reported as a failure, even after a successful parse.
//
// Only a missing file passed to ProcessOne, bad arguments, and missing root
// directories surface as errors. Per-file problems never abort ProcessAll.
package intake
