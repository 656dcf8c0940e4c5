package interfaces

import "context"

// DocumentParser splits raw source bytes into front matter and body. The
// parse is a pure function of the input text: no side effects, no partial
// results on failure.
type DocumentParser interface {
	// ParseFrontMatter returns the structured front matter and the Markdown
	// body without delimiters. Front matter is recognised only when the
	// opening delimiter sits at byte offset 0.
	ParseFrontMatter(source []byte) (FrontMatter, []byte, error)
}

// BodyRenderer converts a document body into an ordered node sequence.
// Implementations must be deterministic: rendering the same body twice yields
// identical sequences, with no hidden counters persisting across calls.
type BodyRenderer interface {
	RenderBody(body []byte) (*NodeList, error)
}

// PageAssembler merges a document with its rendered nodes into an output
// page, resolving footnote references to stable anchors derived from
// definition declaration order.
type PageAssembler interface {
	AssemblePage(doc *Document, nodes *NodeList) (*OutputPage, error)
}

// RenderOptions customises body rendering, keeping option names readable for
// configuration unmarshalling and CLI flags.
type RenderOptions struct {
	Extensions []string
	HardWraps  bool
	SafeMode   bool
}

// LoadOptions fine-tunes how documents are discovered on disk.
type LoadOptions struct {
	Pattern   string
	Recursive *bool
}

// DocumentService exposes the high-level file workflows: load source files,
// render their bodies, and assemble publishable pages.
type DocumentService interface {
	Load(ctx context.Context, path string, opts LoadOptions) (*Document, error)
	LoadDirectory(ctx context.Context, dir string, opts LoadOptions) ([]*Document, error)
	RenderDocument(ctx context.Context, doc *Document) (*OutputPage, error)
}

// LayoutValidator checks a layout name against a known registry. When no
// registry is configured implementations should treat every name as opaque
// and return nil.
type LayoutValidator interface {
	ValidateLayout(name string) error
}
