package processors

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"

	"intake/internal/dataset"
	"intake/internal/services"
)

// YAML reads one or more documents. Each document is shaped like JSON input:
// a sequence of mappings or a mapping of sequences. Tables from a sequence
// document after the first are suffixed with the document number.
type YAML struct{}

// ProcessFile implements intake.Processor.
func (YAML) ProcessFile(ctx context.Context, path string) (*dataset.Set, error) {
	data, err := readSource(ctx, path)
	if err != nil {
		return nil, err
	}

	set := &dataset.Set{}
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	name := stem(path)
	for index := 1; ; index++ {
		var doc any
		err := decoder.Decode(&doc)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, services.Wrap(services.ErrValidation, "process", "parse yaml", path, err)
		}

		docName := name
		if index > 1 {
			docName = fmt.Sprintf("%s_%d", name, index)
		}
		tables, err := tablesFromValue(docName, doc)
		if err != nil {
			return nil, services.Wrap(services.ErrValidation, "process", "parse yaml", fmt.Sprintf("%s: document %d", path, index), err)
		}
		set.Tables = append(set.Tables, tables...)
	}
	return set, nil
}
