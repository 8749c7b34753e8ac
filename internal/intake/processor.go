package intake

import (
	"context"

	"intake/internal/dataset"
)

// Processor extracts tabular data from the file at path. Returning a nil set,
// a set without tables, or an error marks the file as failed.
type Processor interface {
	ProcessFile(ctx context.Context, path string) (*dataset.Set, error)
}

// ProcessorFunc adapts a function to Processor.
type ProcessorFunc func(ctx context.Context, path string) (*dataset.Set, error)

// ProcessFile calls f.
func (f ProcessorFunc) ProcessFile(ctx context.Context, path string) (*dataset.Set, error) {
	return f(ctx, path)
}

// Relocator moves a file into a directory and reports the final path.
// *mover.Mover satisfies it.
type Relocator interface {
	Move(ctx context.Context, sourceFile, destinationDir string) (string, bool)
}
