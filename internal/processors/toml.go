package processors

import (
	"context"

	"github.com/pelletier/go-toml/v2"

	"intake/internal/dataset"
	"intake/internal/services"
)

// TOML turns every top-level array of tables into a table named after its key.
type TOML struct{}

// ProcessFile implements intake.Processor.
func (TOML) ProcessFile(ctx context.Context, path string) (*dataset.Set, error) {
	data, err := readSource(ctx, path)
	if err != nil {
		return nil, err
	}

	var doc map[string]any
	if err := toml.Unmarshal(data, &doc); err != nil {
		return nil, services.Wrap(services.ErrValidation, "process", "parse toml", path, err)
	}
	tables, err := tablesFromValue(stem(path), doc)
	if err != nil {
		return nil, services.Wrap(services.ErrValidation, "process", "parse toml", path, err)
	}
	return &dataset.Set{Tables: tables}, nil
}
