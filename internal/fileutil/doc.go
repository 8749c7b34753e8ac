// Package fileutil relocates files between directories, including across
// filesystem boundaries.
package fileutil
