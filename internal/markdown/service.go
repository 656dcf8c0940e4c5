package markdown

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/goliatone/go-press/pkg/interfaces"
	"github.com/goliatone/go-press/posts"
)

// Config controls how the document service discovers and renders files.
type Config struct {
	BasePath  string
	Pattern   string
	Recursive bool
	Render    interfaces.RenderOptions
}

// Service loads filesystem-backed documents and renders their bodies into
// node sequences. Documents are independent: the service holds no state that
// crosses from one document's render to another's.
type Service struct {
	cfg      Config
	renderer interfaces.BodyRenderer
	loader   *Loader
}

// NewService constructs a document service using an underlying loader. When
// renderer is nil, a goldmark-backed renderer with the configured defaults is
// created.
func NewService(cfg Config, renderer interfaces.BodyRenderer) (*Service, error) {
	filesystem, err := prepareFilesystem(cfg.BasePath)
	if err != nil {
		return nil, err
	}

	if renderer == nil {
		renderer = NewRenderer(cfg.Render)
	}

	loader := NewLoader(filesystem, LoaderConfig{
		BasePath:  cfg.BasePath,
		Pattern:   cfg.Pattern,
		Recursive: cfg.Recursive,
	})

	return &Service{
		cfg:      cfg,
		renderer: renderer,
		loader:   loader,
	}, nil
}

// Load reads a single document relative to the configured base path.
func (s *Service) Load(ctx context.Context, path string, opts interfaces.LoadOptions) (*interfaces.Document, error) {
	result, err := s.loader.LoadFile(ctx, s.normalisePath(path), toLoaderParams(opts))
	if err != nil {
		return nil, err
	}
	return result.Document, nil
}

// LoadDirectory reads every document within the supplied directory. When
// individual documents fail to parse the healthy ones are still returned,
// with the failures aggregated in a *posts.CorpusError.
func (s *Service) LoadDirectory(ctx context.Context, dir string, opts interfaces.LoadOptions) ([]*interfaces.Document, error) {
	results, err := s.loader.LoadDirectory(ctx, s.normalisePath(dir), toLoaderParams(opts))
	var corpusErr *posts.CorpusError
	if err != nil && !errors.As(err, &corpusErr) {
		return nil, err
	}

	docs := make([]*interfaces.Document, 0, len(results))
	for _, result := range results {
		docs = append(docs, result.Document)
	}

	sort.Slice(docs, func(i, j int) bool {
		return docs[i].SourcePath < docs[j].SourcePath
	})
	return docs, err
}

// RenderBody converts a document body into its node sequence.
func (s *Service) RenderBody(ctx context.Context, body []byte) (*interfaces.NodeList, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}
	return s.renderer.RenderBody(body)
}

// RenderDocument renders the document's body, annotating failures with the
// source path so batch drivers can report per-document diagnostics.
func (s *Service) RenderDocument(ctx context.Context, doc *interfaces.Document) (*interfaces.NodeList, error) {
	if doc == nil {
		return nil, errors.New("markdown service: document is nil")
	}
	nodes, err := s.RenderBody(ctx, doc.Body)
	if err != nil {
		return nil, fmt.Errorf("markdown render document %s: %w", doc.SourcePath, err)
	}
	return nodes, nil
}

func (s *Service) normalisePath(path string) string {
	if strings.TrimSpace(path) == "" {
		return "."
	}
	clean := filepath.Clean(path)
	if filepath.IsAbs(clean) && strings.TrimSpace(s.cfg.BasePath) != "" {
		if rel, err := filepath.Rel(s.cfg.BasePath, clean); err == nil {
			return filepath.ToSlash(rel)
		}
	}
	return filepath.ToSlash(clean)
}

func toLoaderParams(opts interfaces.LoadOptions) LoadParams {
	return LoadParams{
		Pattern:   opts.Pattern,
		Recursive: opts.Recursive,
	}
}

func prepareFilesystem(basePath string) (fs.FS, error) {
	if strings.TrimSpace(basePath) == "" {
		basePath = "."
	}
	if _, err := os.Stat(basePath); err != nil {
		return nil, fmt.Errorf("markdown service: stat base path %s: %w", basePath, err)
	}
	return os.DirFS(basePath), nil
}
