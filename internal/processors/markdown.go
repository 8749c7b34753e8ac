package processors

import (
	"context"
	"fmt"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	east "github.com/yuin/goldmark/extension/ast"
	"github.com/yuin/goldmark/text"

	"intake/internal/dataset"
	"intake/internal/services"
)

// Markdown extracts every GFM pipe table in a document. A table is named after
// the closest preceding heading, or <stem>_<n> when there is none.
type Markdown struct {
	md goldmark.Markdown
}

// NewMarkdown returns a Markdown processor with the table extension enabled.
func NewMarkdown() *Markdown {
	return &Markdown{md: goldmark.New(goldmark.WithExtensions(extension.Table))}
}

// ProcessFile implements intake.Processor.
func (m *Markdown) ProcessFile(ctx context.Context, path string) (*dataset.Set, error) {
	data, err := readSource(ctx, path)
	if err != nil {
		return nil, err
	}
	md := m.md
	if md == nil {
		md = goldmark.New(goldmark.WithExtensions(extension.Table))
	}

	doc := md.Parser().Parse(text.NewReader(data))
	set := &dataset.Set{}
	heading := ""
	used := make(map[string]bool)
	err = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		switch node := n.(type) {
		case *ast.Heading:
			heading = strings.TrimSpace(inlineText(node, data))
			return ast.WalkSkipChildren, nil
		case *east.Table:
			name := heading
			if name == "" {
				name = fmt.Sprintf("%s_%d", stem(path), len(set.Tables)+1)
			}
			name = uniqueName(name, used)
			used[name] = true
			set.Add(markdownTable(name, node, data))
			return ast.WalkSkipChildren, nil
		}
		return ast.WalkContinue, nil
	})
	if err != nil {
		return nil, services.Wrap(services.ErrValidation, "process", "parse markdown", path, err)
	}
	return set, nil
}

func markdownTable(name string, table *east.Table, source []byte) dataset.Table {
	out := dataset.Table{Name: name}
	for row := table.FirstChild(); row != nil; row = row.NextSibling() {
		var cells []string
		for cell := row.FirstChild(); cell != nil; cell = cell.NextSibling() {
			cells = append(cells, strings.TrimSpace(inlineText(cell, source)))
		}
		switch row.(type) {
		case *east.TableHeader:
			out.Columns = cells
		case *east.TableRow:
			out.Rows = append(out.Rows, cells)
		}
	}
	return out
}

// inlineText concatenates the text segments below n.
func inlineText(n ast.Node, source []byte) string {
	var sb strings.Builder
	_ = ast.Walk(n, func(child ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		switch node := child.(type) {
		case *ast.Text:
			sb.Write(node.Segment.Value(source))
			if node.SoftLineBreak() || node.HardLineBreak() {
				sb.WriteByte(' ')
			}
		case *ast.String:
			sb.Write(node.Value)
		}
		return ast.WalkContinue, nil
	})
	return sb.String()
}
