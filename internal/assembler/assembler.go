// Package assembler merges a parsed document with its rendered node sequence
// into a publishable page. Footnote cross-references are resolved through an
// index built in a single pass over the sequence; nodes never point back at
// each other.
package assembler

import (
	"errors"
	"strconv"
	"strings"

	"github.com/goliatone/go-press/pkg/interfaces"
	"github.com/goliatone/go-press/posts"
)

// Config controls page assembly defaults.
type Config struct {
	// DefaultLayout is used when a document's front matter names no layout.
	DefaultLayout string
	// Layouts validates layout names when set. A nil validator passes every
	// name through opaquely.
	Layouts interfaces.LayoutValidator
}

// Assembler builds output pages. It is stateless across documents and safe
// for concurrent use.
type Assembler struct {
	cfg Config
}

var _ interfaces.PageAssembler = (*Assembler)(nil)

// New constructs an assembler.
func New(cfg Config) *Assembler {
	return &Assembler{cfg: cfg}
}

// AssemblePage resolves footnote references against the definitions declared
// in the sequence and emits the final HTML fragment plus page metadata.
// Anchor ids follow definition declaration order, starting at 1.
func (a *Assembler) AssemblePage(doc *interfaces.Document, nodes *interfaces.NodeList) (*interfaces.OutputPage, error) {
	if doc == nil {
		return nil, errors.New("assembler: document is nil")
	}
	if nodes == nil {
		return nil, errors.New("assembler: node sequence is nil")
	}

	index := newFootnoteIndex(nodes)

	for node := range nodes.All() {
		if node.Kind != interfaces.NodeFootnoteRef {
			continue
		}
		if _, ok := index.ordinal(node.FootnoteID); !ok {
			return nil, &posts.DanglingReferenceError{
				Kind:       posts.ReferenceFootnote,
				ID:         node.FootnoteID,
				SourcePath: doc.SourcePath,
			}
		}
	}

	var body strings.Builder
	for node := range nodes.All() {
		switch node.Kind {
		case interfaces.NodeFootnoteRef, interfaces.NodeFootnoteDef:
			continue
		default:
			resolved, err := index.resolvePlaceholders(node.HTML, doc.SourcePath)
			if err != nil {
				return nil, err
			}
			body.WriteString(resolved)
		}
	}

	if trailing, err := index.trailingBlock(doc.SourcePath); err != nil {
		return nil, err
	} else if trailing != "" {
		body.WriteString(trailing)
	}

	layout := strings.TrimSpace(doc.FrontMatter.Layout)
	if layout == "" {
		layout = a.cfg.DefaultLayout
	}
	if a.cfg.Layouts != nil {
		if err := a.cfg.Layouts.ValidateLayout(layout); err != nil {
			return nil, err
		}
	}

	return &interfaces.OutputPage{
		HTML:       body.String(),
		Title:      resolveTitle(doc, nodes),
		LayoutName: layout,
		Slug:       doc.Slug,
		Date:       doc.Date,
		Summary:    doc.FrontMatter.Summary,
		Tags:       append([]string(nil), doc.FrontMatter.Tags...),
		Metadata:   cloneMetadata(doc.FrontMatter.Raw),
	}, nil
}

// resolveTitle prefers front matter, then the first top-level heading, then
// the slug.
func resolveTitle(doc *interfaces.Document, nodes *interfaces.NodeList) string {
	if title := strings.TrimSpace(doc.FrontMatter.Title); title != "" {
		return title
	}
	for node := range nodes.All() {
		if node.Kind == interfaces.NodeHeading && node.Level == 1 {
			if text := strings.TrimSpace(node.Text); text != "" {
				return text
			}
		}
	}
	return doc.Slug
}

// footnoteIndex maps footnote ids to their declaration-order ordinals. Built
// once per assembly in a single pass.
type footnoteIndex struct {
	ordinals map[string]int
	defs     []interfaces.Node
	anchored map[int]bool
}

func newFootnoteIndex(nodes *interfaces.NodeList) *footnoteIndex {
	index := &footnoteIndex{
		ordinals: map[string]int{},
		anchored: map[int]bool{},
	}
	for node := range nodes.All() {
		if node.Kind != interfaces.NodeFootnoteDef {
			continue
		}
		if _, exists := index.ordinals[node.FootnoteID]; exists {
			continue
		}
		index.defs = append(index.defs, node)
		index.ordinals[node.FootnoteID] = len(index.defs)
	}
	return index
}

func (i *footnoteIndex) ordinal(id string) (int, bool) {
	ordinal, ok := i.ordinals[id]
	return ordinal, ok
}

// resolvePlaceholders rewrites footnote placeholders into numbered anchor
// links. The first occurrence of each ordinal carries the back-reference id
// so the trailing block can link back to it.
func (i *footnoteIndex) resolvePlaceholders(fragment, sourcePath string) (string, error) {
	var firstErr error
	resolved := interfaces.FootnotePlaceholderPattern.ReplaceAllStringFunc(fragment, func(marker string) string {
		id := interfaces.FootnotePlaceholderPattern.FindStringSubmatch(marker)[1]
		ordinal, ok := i.ordinals[id]
		if !ok {
			if firstErr == nil {
				firstErr = &posts.DanglingReferenceError{
					Kind:       posts.ReferenceFootnote,
					ID:         id,
					SourcePath: sourcePath,
				}
			}
			return marker
		}
		anchor := i.anchorHTML(ordinal)
		return anchor
	})
	if firstErr != nil {
		return "", firstErr
	}
	return resolved, nil
}

func (i *footnoteIndex) anchorHTML(ordinal int) string {
	n := strconv.Itoa(ordinal)
	if !i.anchored[ordinal] {
		i.anchored[ordinal] = true
		return `<sup class="footnote-ref" id="fnref:` + n + `"><a href="#fn:` + n + `">` + n + `</a></sup>`
	}
	return `<sup class="footnote-ref"><a href="#fn:` + n + `">` + n + `</a></sup>`
}

// trailingBlock emits the footnote definitions as an ordered list in
// declaration order. Returns the empty string when the document has no
// footnotes.
func (i *footnoteIndex) trailingBlock(sourcePath string) (string, error) {
	if len(i.defs) == 0 {
		return "", nil
	}

	var b strings.Builder
	b.WriteString("<section class=\"footnotes\">\n<hr>\n<ol>\n")
	for idx, def := range i.defs {
		ordinal := strconv.Itoa(idx + 1)
		text, err := i.resolvePlaceholders(def.HTML, sourcePath)
		if err != nil {
			return "", err
		}
		b.WriteString(`<li id="fn:` + ordinal + `"><p>` + text +
			` <a href="#fnref:` + ordinal + `" class="footnote-backref">&#8617;</a></p></li>` + "\n")
	}
	b.WriteString("</ol>\n</section>\n")
	return b.String(), nil
}

func cloneMetadata(input map[string]any) map[string]any {
	if input == nil {
		return map[string]any{}
	}
	out := make(map[string]any, len(input))
	for key, value := range input {
		out[key] = value
	}
	return out
}
