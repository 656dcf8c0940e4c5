package markdown

import (
	"bytes"
	"fmt"
	"regexp"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	east "github.com/yuin/goldmark/extension/ast"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer"
	"github.com/yuin/goldmark/renderer/html"
	"github.com/yuin/goldmark/text"

	"github.com/goliatone/go-press/pkg/interfaces"
	"github.com/goliatone/go-press/posts"
)

// danglingLinkPattern matches reference-style links the engine left as
// literal text, which only happens when the label has no definition.
var danglingLinkPattern = regexp.MustCompile(`\[[^\[\]\n]+\]\[[^\]\n]*\]`)

// Renderer converts Markdown bodies into ordered node sequences using the
// goldmark engine. The renderer is stateless across calls so a single
// instance can be shared without locking; every render parses with a fresh
// context, which is what keeps repeated renders byte-identical.
type Renderer struct {
	engine goldmark.Markdown
}

var _ interfaces.BodyRenderer = (*Renderer)(nil)

// NewRenderer constructs a renderer with the supplied options. Footnotes are
// handled by the press pipeline itself, so the goldmark footnote extension is
// deliberately absent from the registry.
func NewRenderer(opts interfaces.RenderOptions) *Renderer {
	return &Renderer{engine: newEngine(opts)}
}

// RenderBody produces the node sequence for a Markdown body. Fenced code
// block content is carried byte-for-byte; footnote definitions surface as
// nodes at their declaration position; every footnote reference and
// reference-style link must resolve or the whole render fails.
func (r *Renderer) RenderBody(body []byte) (*interfaces.NodeList, error) {
	defs, blanked, err := extractFootnoteDefs(body)
	if err != nil {
		return nil, err
	}

	defined := make(map[string]struct{}, len(defs))
	for _, def := range defs {
		defined[def.id] = struct{}{}
	}

	root := r.engine.Parser().Parse(text.NewReader(blanked), parser.WithContext(parser.NewContext()))

	var nodes []interfaces.Node
	defIndex := 0

	flushDefs := func(before int) error {
		for defIndex < len(defs) {
			def := defs[defIndex]
			if before >= 0 && def.offset >= before {
				return nil
			}
			node, err := r.renderFootnoteDef(def, defined)
			if err != nil {
				return err
			}
			nodes = append(nodes, node)
			defIndex++
		}
		return nil
	}

	for block := root.FirstChild(); block != nil; block = block.NextSibling() {
		if off := blockOffset(block); off >= 0 {
			if err := flushDefs(off); err != nil {
				return nil, err
			}
		}

		rendered, refs, err := r.renderBlock(block, blanked, defined)
		if err != nil {
			return nil, err
		}
		nodes = append(nodes, rendered)
		for _, id := range refs {
			nodes = append(nodes, interfaces.Node{Kind: interfaces.NodeFootnoteRef, FootnoteID: id})
		}
	}

	if err := flushDefs(-1); err != nil {
		return nil, err
	}

	return interfaces.NewNodeList(nodes), nil
}

func (r *Renderer) renderBlock(block ast.Node, source []byte, defined map[string]struct{}) (interfaces.Node, []string, error) {
	switch typed := block.(type) {
	case *ast.FencedCodeBlock:
		return interfaces.Node{
			Kind:     interfaces.NodeCodeBlock,
			Language: string(typed.Language(source)),
			Literal:  blockLiteral(typed, source),
		}, nil, nil
	case *ast.CodeBlock:
		return interfaces.Node{
			Kind:    interfaces.NodeCodeBlock,
			Literal: blockLiteral(typed, source),
		}, nil, nil
	}

	fragment, err := r.renderFragment(block, source)
	if err != nil {
		return interfaces.Node{}, nil, err
	}

	var refs []string
	fragment, err = replaceFootnoteRefs(fragment, defined, &refs)
	if err != nil {
		return interfaces.Node{}, nil, err
	}
	if err := checkDanglingLinks(fragment); err != nil {
		return interfaces.Node{}, nil, err
	}

	node := interfaces.Node{HTML: fragment}
	switch typed := block.(type) {
	case *ast.Heading:
		node.Kind = interfaces.NodeHeading
		node.Level = typed.Level
		node.Text = nodeText(typed, source)
	case *ast.Paragraph:
		if img, link, ok := soleImage(typed); ok {
			node.Kind = interfaces.NodeImage
			node.Alt = nodeText(img, source)
			node.Href = string(img.Destination)
			if link != nil {
				node.LinkHref = string(link.Destination)
			}
		} else {
			node.Kind = interfaces.NodeParagraph
		}
	case *ast.List:
		node.Kind = interfaces.NodeBulletList
	case *ast.Blockquote:
		node.Kind = interfaces.NodeBlockquote
	case *east.Table:
		node.Kind = interfaces.NodeTable
	case *ast.ThematicBreak:
		node.Kind = interfaces.NodeThematicBreak
	case *ast.HTMLBlock:
		node.Kind = interfaces.NodeHTMLBlock
	default:
		node.Kind = interfaces.NodeHTMLBlock
	}

	return node, refs, nil
}

func (r *Renderer) renderFootnoteDef(def footnoteDef, defined map[string]struct{}) (interfaces.Node, error) {
	fragment, err := r.renderInline(def.text)
	if err != nil {
		return interfaces.Node{}, err
	}
	fragment, err = replaceFootnoteRefs(fragment, defined, nil)
	if err != nil {
		return interfaces.Node{}, err
	}
	if err := checkDanglingLinks(fragment); err != nil {
		return interfaces.Node{}, err
	}
	return interfaces.Node{
		Kind:       interfaces.NodeFootnoteDef,
		FootnoteID: def.id,
		Text:       def.text,
		HTML:       fragment,
	}, nil
}

func (r *Renderer) renderFragment(block ast.Node, source []byte) (string, error) {
	var buf bytes.Buffer
	if err := r.engine.Renderer().Render(&buf, source, block); err != nil {
		return "", fmt.Errorf("markdown render block: %w", err)
	}
	return buf.String(), nil
}

// renderInline renders a one-line Markdown snippet and strips the paragraph
// wrapper, leaving just the inline HTML.
func (r *Renderer) renderInline(markdown string) (string, error) {
	var buf bytes.Buffer
	if err := r.engine.Convert([]byte(markdown), &buf); err != nil {
		return "", fmt.Errorf("markdown render inline: %w", err)
	}
	fragment := strings.TrimSpace(buf.String())
	fragment = strings.TrimPrefix(fragment, "<p>")
	fragment = strings.TrimSuffix(fragment, "</p>")
	return fragment, nil
}

func checkDanglingLinks(fragment string) error {
	_, err := transformOutsideCodeSpans(fragment, func(segment string) (string, error) {
		if match := danglingLinkPattern.FindString(segment); match != "" {
			return "", &posts.DanglingReferenceError{Kind: posts.ReferenceLink, ID: match}
		}
		return segment, nil
	})
	return err
}

// blockLiteral concatenates a code block's line segments verbatim.
func blockLiteral(block ast.Node, source []byte) string {
	var buf bytes.Buffer
	lines := block.Lines()
	for i := 0; i < lines.Len(); i++ {
		segment := lines.At(i)
		buf.Write(segment.Value(source))
	}
	return buf.String()
}

// blockOffset reports the byte offset of the first line owned by the block,
// descending into containers that carry no lines of their own. Returns -1 for
// blocks with no addressable position (e.g. thematic breaks).
func blockOffset(node ast.Node) int {
	if lines := node.Lines(); lines != nil && lines.Len() > 0 {
		return lines.At(0).Start
	}
	for child := node.FirstChild(); child != nil; child = child.NextSibling() {
		if off := blockOffset(child); off >= 0 {
			return off
		}
	}
	return -1
}

// nodeText collects the plain text content of a node's subtree.
func nodeText(node ast.Node, source []byte) string {
	var buf bytes.Buffer
	_ = ast.Walk(node, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		switch typed := n.(type) {
		case *ast.Text:
			buf.Write(typed.Segment.Value(source))
		case *ast.String:
			buf.Write(typed.Value)
		}
		return ast.WalkContinue, nil
	})
	return buf.String()
}

// soleImage reports whether a paragraph consists of a single image, possibly
// wrapped in a link.
func soleImage(para *ast.Paragraph) (*ast.Image, *ast.Link, bool) {
	child := para.FirstChild()
	if child == nil || child.NextSibling() != nil {
		return nil, nil, false
	}
	switch typed := child.(type) {
	case *ast.Image:
		return typed, nil, true
	case *ast.Link:
		inner := typed.FirstChild()
		if inner == nil || inner.NextSibling() != nil {
			return nil, nil, false
		}
		if img, ok := inner.(*ast.Image); ok {
			return img, typed, true
		}
	}
	return nil, nil, false
}

func newEngine(opts interfaces.RenderOptions) goldmark.Markdown {
	exts := collectExtensions(opts.Extensions)

	parserOptions := []parser.Option{
		parser.WithAutoHeadingID(),
	}

	rendererOptions := []renderer.Option{}
	if opts.HardWraps {
		rendererOptions = append(rendererOptions, html.WithHardWraps())
	}
	if !opts.SafeMode {
		rendererOptions = append(rendererOptions, html.WithUnsafe())
	}

	engineOptions := []goldmark.Option{
		goldmark.WithParserOptions(parserOptions...),
	}
	if len(rendererOptions) > 0 {
		engineOptions = append(engineOptions, goldmark.WithRendererOptions(rendererOptions...))
	}
	if len(exts) > 0 {
		engineOptions = append(engineOptions, goldmark.WithExtensions(exts...))
	}

	return goldmark.New(engineOptions...)
}

var extensionRegistry = map[string]goldmark.Extender{
	"gfm":           extension.GFM,
	"table":         extension.Table,
	"tables":        extension.Table,
	"strikethrough": extension.Strikethrough,
	"linkify":       extension.Linkify,
	"autolink":      extension.Linkify,
	"tasklist":      extension.TaskList,
	"definition":    extension.DefinitionList,
}

func collectExtensions(names []string) []goldmark.Extender {
	if len(names) == 0 {
		return []goldmark.Extender{
			extension.GFM,
			extension.Linkify,
		}
	}

	var extenders []goldmark.Extender
	seen := map[string]struct{}{}

	for _, name := range names {
		key := strings.ToLower(strings.TrimSpace(name))
		if key == "" {
			continue
		}
		if _, ok := seen[key]; ok {
			continue
		}
		ext, ok := extensionRegistry[key]
		if !ok {
			continue
		}
		extenders = append(extenders, ext)
		seen[key] = struct{}{}
	}

	return extenders
}
