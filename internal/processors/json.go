package processors

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"

	"intake/internal/dataset"
	"intake/internal/services"
)

// JSON reads a document that is either an array of objects (one table named
// after the file stem) or an object whose array-of-object members each become
// a table named after the member.
type JSON struct{}

// ProcessFile implements intake.Processor.
func (JSON) ProcessFile(ctx context.Context, path string) (*dataset.Set, error) {
	data, err := readSource(ctx, path)
	if err != nil {
		return nil, err
	}

	decoder := json.NewDecoder(bytes.NewReader(data))
	decoder.UseNumber()
	var doc any
	if err := decoder.Decode(&doc); err != nil {
		if errors.Is(err, io.EOF) {
			return &dataset.Set{}, nil
		}
		return nil, services.Wrap(services.ErrValidation, "process", "parse json", path, err)
	}
	if decoder.More() {
		return nil, services.Wrap(services.ErrValidation, "process", "parse json", path+": trailing data after document", nil)
	}

	tables, err := tablesFromValue(stem(path), doc)
	if err != nil {
		return nil, services.Wrap(services.ErrValidation, "process", "parse json", path, err)
	}
	return &dataset.Set{Tables: tables}, nil
}
