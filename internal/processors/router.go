package processors

import (
	"context"
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"intake/internal/config"
	"intake/internal/dataset"
	"intake/internal/intake"
	"intake/internal/services"
)

// Router dispatches to a processor chosen by file extension. When Fallback is
// set it handles every extension without a route.
type Router struct {
	routes   map[string]intake.Processor
	formats  map[string]string
	Fallback intake.Processor
}

// NewRouter returns an empty router.
func NewRouter() *Router {
	return &Router{
		routes:  make(map[string]intake.Processor),
		formats: make(map[string]string),
	}
}

// Handle routes ext (with or without the leading dot) to p.
func (r *Router) Handle(ext, format string, p intake.Processor) {
	ext = normalizeExt(ext)
	r.routes[ext] = p
	r.formats[ext] = format
}

// Route returns the processor for path, or nil.
func (r *Router) Route(path string) intake.Processor {
	if p, ok := r.routes[normalizeExt(filepath.Ext(path))]; ok {
		return p
	}
	return r.Fallback
}

// Routes returns extension to format name pairs, sorted by extension.
func (r *Router) Routes() [][2]string {
	exts := make([]string, 0, len(r.formats))
	for ext := range r.formats {
		exts = append(exts, ext)
	}
	sort.Strings(exts)
	out := make([][2]string, 0, len(exts))
	for _, ext := range exts {
		out = append(out, [2]string{ext, r.formats[ext]})
	}
	return out
}

// ProcessFile implements intake.Processor. A file with no route fails
// validation and ends up in the error directory.
func (r *Router) ProcessFile(ctx context.Context, path string) (*dataset.Set, error) {
	p := r.Route(path)
	if p == nil {
		return nil, services.Wrap(services.ErrValidation, "process", "route", fmt.Sprintf("no processor for extension %q", filepath.Ext(path)), nil)
	}
	return p.ProcessFile(ctx, path)
}

func normalizeExt(ext string) string {
	ext = strings.ToLower(strings.TrimSpace(ext))
	if ext != "" && !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	return ext
}

var defaultExtensions = map[string]string{
	".csv":      "csv",
	".tsv":      "tsv",
	".json":     "json",
	".yaml":     "yaml",
	".yml":      "yaml",
	".toml":     "toml",
	".md":       "markdown",
	".markdown": "markdown",
}

// ForFormat builds the processor for a format name from config.Formats.
func ForFormat(cfg *config.Config, format string) (intake.Processor, error) {
	switch format {
	case "csv":
		return CSV{Delimiter: cfg.CSVDelimiterRune(), Encoding: cfg.Processing.CSVEncoding, HasHeader: cfg.Processing.CSVHasHeader}, nil
	case "tsv":
		return CSV{Delimiter: '\t', Encoding: cfg.Processing.CSVEncoding, HasHeader: cfg.Processing.CSVHasHeader}, nil
	case "json":
		return JSON{}, nil
	case "yaml":
		return YAML{}, nil
	case "toml":
		return TOML{}, nil
	case "markdown":
		return NewMarkdown(), nil
	default:
		return nil, services.Wrap(services.ErrConfiguration, "process", "select processor", fmt.Sprintf("unknown format %q", format), nil)
	}
}

// FromConfig builds the processor described by cfg.Processing. With
// default_format "auto" files are routed by extension, with
// processing.extensions layered over the built-in table; any other
// default_format applies that processor to every file.
func FromConfig(cfg *config.Config) (intake.Processor, error) {
	if cfg == nil {
		return nil, services.Wrap(services.ErrInvalidArgument, "process", "select processor", "config is required", nil)
	}
	if format := cfg.Processing.DefaultFormat; format != "" && format != "auto" {
		return ForFormat(cfg, format)
	}

	mapping := make(map[string]string, len(defaultExtensions)+len(cfg.Processing.Extensions))
	for ext, format := range defaultExtensions {
		mapping[ext] = format
	}
	for ext, format := range cfg.Processing.Extensions {
		mapping[normalizeExt(ext)] = format
	}

	router := NewRouter()
	for ext, format := range mapping {
		p, err := ForFormat(cfg, format)
		if err != nil {
			return nil, err
		}
		router.Handle(ext, format, p)
	}
	return router, nil
}
