// Package preflight provides readiness checks for the filesystem paths that
// intake depends on.
//
// These checks run in two contexts:
//   - batchrun calls RunAll before touching any file and aborts the run when
//     a directory is unusable.
//   - The CLI "intake status" command shows the same results together with the
//     per-directory Inventory.
package preflight
