package interfaces

import (
	"iter"
	"regexp"
	"time"

	"github.com/google/uuid"
)

// Document represents a parsed Markdown source file with its metadata split
// out. The struct is shared between the interfaces package and internal
// implementations so consumers can depend on a stable contract. A Document is
// immutable once built; render stages derive new values instead of mutating it.
type Document struct {
	// ID is a deterministic identifier derived from SourcePath so repeated
	// builds produce stable references for the same file.
	ID         uuid.UUID
	SourcePath string
	// Slug and Date are derived from the source filename when it follows the
	// `YYYY-MM-DD-title.md` convention; front matter values win when present.
	Slug        string
	Date        time.Time
	FrontMatter FrontMatter
	// Body holds the Markdown source with the front matter block removed.
	Body         []byte
	LastModified time.Time
	// Checksum stores a hex SHA-256 digest of the original file content so
	// incremental builds can detect changes without re-rendering.
	Checksum string
}

// FrontMatter models the metadata block at the top of a source document.
// Known keys are lifted into typed fields; everything else lands in Custom.
// Raw preserves every key untouched so publishing layers that only pass
// metadata through never lose information.
type FrontMatter struct {
	Title   string         `yaml:"title" json:"title"`
	Layout  string         `yaml:"layout" json:"layout"`
	Slug    string         `yaml:"slug" json:"slug"`
	Summary string         `yaml:"summary" json:"summary"`
	Tags    []string       `yaml:"tags" json:"tags"`
	Author  string         `yaml:"author" json:"author"`
	Date    time.Time      `yaml:"date" json:"date"`
	Draft   bool           `yaml:"draft" json:"draft"`
	Custom  map[string]any `yaml:",inline" json:"custom"`
	Raw     map[string]any `yaml:"-" json:"raw"`
}

// NodeKind discriminates the Node variants produced by the body renderer.
type NodeKind string

const (
	NodeParagraph     NodeKind = "paragraph"
	NodeHeading       NodeKind = "heading"
	NodeCodeBlock     NodeKind = "code_block"
	NodeImage         NodeKind = "image"
	NodeBulletList    NodeKind = "list"
	NodeBlockquote    NodeKind = "blockquote"
	NodeTable         NodeKind = "table"
	NodeHTMLBlock     NodeKind = "html_block"
	NodeThematicBreak NodeKind = "thematic_break"
	NodeFootnoteRef   NodeKind = "footnote_ref"
	NodeFootnoteDef   NodeKind = "footnote_def"
)

// Node is a single rendered unit of the document body. It is a tagged variant:
// Kind selects which fields carry meaning. Sequence order reflects document
// order and is significant end-to-end.
type Node struct {
	Kind NodeKind

	// HTML carries the rendered fragment for block variants. Footnote
	// reference markers inside it are placeholder comments resolved during
	// page assembly.
	HTML string

	// Level and Text apply to headings.
	Level int
	Text  string

	// Language and Literal apply to code blocks. Literal is the fenced
	// content byte-for-byte; no inline processing is ever applied to it.
	Language string
	Literal  string

	// Alt, Href and LinkHref apply to images. LinkHref is set when the image
	// itself is wrapped in a link.
	Alt      string
	Href     string
	LinkHref string

	// FootnoteID applies to footnote references and definitions.
	FootnoteID string
}

// NodeList is a finite, restartable sequence of nodes. Iteration is
// deterministic: the same body rendered twice yields identical node lists and
// every call to All replays the same sequence.
type NodeList struct {
	nodes []Node
}

// NewNodeList wraps the provided nodes. The slice is copied so callers cannot
// mutate the sequence after construction.
func NewNodeList(nodes []Node) *NodeList {
	return &NodeList{nodes: append([]Node(nil), nodes...)}
}

// Len reports the number of nodes in the sequence.
func (l *NodeList) Len() int {
	if l == nil {
		return 0
	}
	return len(l.nodes)
}

// Nodes returns a copy of the underlying sequence in document order.
func (l *NodeList) Nodes() []Node {
	if l == nil {
		return nil
	}
	return append([]Node(nil), l.nodes...)
}

// All returns a restartable iterator over the sequence.
func (l *NodeList) All() iter.Seq[Node] {
	return func(yield func(Node) bool) {
		if l == nil {
			return
		}
		for _, node := range l.nodes {
			if !yield(node) {
				return
			}
		}
	}
}

// FootnotePlaceholder returns the marker a body renderer embeds where a
// footnote reference occurred. Page assembly resolves each marker to its
// numbered anchor once definition ordinals are known; the comment form keeps
// unresolved markers invisible if a fragment ever leaks unassembled.
func FootnotePlaceholder(id string) string {
	return "<!--press:fnref:" + id + "-->"
}

// FootnotePlaceholderPattern matches markers produced by FootnotePlaceholder.
var FootnotePlaceholderPattern = regexp.MustCompile(`<!--press:fnref:([A-Za-z0-9_-]+)-->`)

// OutputPage is the assembled result for a single document: the HTML fragment
// plus the resolved metadata a publishing layer needs to write the page. It is
// read-only after assembly; the publishing step owns it from there.
type OutputPage struct {
	HTML       string
	Title      string
	LayoutName string
	Slug       string
	Date       time.Time
	Summary    string
	Tags       []string
	// Metadata passes the raw front matter through untouched for layouts
	// that consume custom keys.
	Metadata map[string]any
}
