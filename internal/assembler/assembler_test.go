package assembler

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/goliatone/go-press/pkg/interfaces"
	"github.com/goliatone/go-press/posts"
)

func testDocument() *interfaces.Document {
	return &interfaces.Document{
		SourcePath: "posts/2014-11-02-variable-scope.md",
		Slug:       "variable-scope",
		Date:       time.Date(2014, 11, 2, 0, 0, 0, 0, time.UTC),
		FrontMatter: interfaces.FrontMatter{
			Title:  "Variable Scope",
			Layout: "post",
		},
	}
}

func TestAssemblePageNumbersFootnotesByDeclarationOrder(t *testing.T) {
	nodes := interfaces.NewNodeList([]interfaces.Node{
		{Kind: interfaces.NodeParagraph, HTML: "<p>Hoisting" + interfaces.FootnotePlaceholder("hoisting") + " precedes closures" + interfaces.FootnotePlaceholder("closures") + ".</p>"},
		{Kind: interfaces.NodeFootnoteRef, FootnoteID: "hoisting"},
		{Kind: interfaces.NodeFootnoteRef, FootnoteID: "closures"},
		{Kind: interfaces.NodeFootnoteDef, FootnoteID: "hoisting", HTML: "Declarations move up."},
		{Kind: interfaces.NodeFootnoteDef, FootnoteID: "closures", HTML: "Functions capture scope."},
	})

	page, err := New(Config{}).AssemblePage(testDocument(), nodes)
	if err != nil {
		t.Fatalf("AssemblePage() error = %v", err)
	}

	if !strings.Contains(page.HTML, `<sup class="footnote-ref" id="fnref:1"><a href="#fn:1">1</a></sup>`) {
		t.Errorf("expected first footnote anchor, got %q", page.HTML)
	}
	if !strings.Contains(page.HTML, `id="fnref:2"`) {
		t.Errorf("expected second footnote anchor, got %q", page.HTML)
	}
	if strings.Contains(page.HTML, "press:fnref") {
		t.Errorf("placeholder survived assembly: %q", page.HTML)
	}
}

func TestAssemblePageRepeatedReferenceSharesOrdinal(t *testing.T) {
	nodes := interfaces.NewNodeList([]interfaces.Node{
		{Kind: interfaces.NodeParagraph, HTML: "<p>First" + interfaces.FootnotePlaceholder("note") + "</p>"},
		{Kind: interfaces.NodeParagraph, HTML: "<p>Again" + interfaces.FootnotePlaceholder("note") + "</p>"},
		{Kind: interfaces.NodeFootnoteRef, FootnoteID: "note"},
		{Kind: interfaces.NodeFootnoteRef, FootnoteID: "note"},
		{Kind: interfaces.NodeFootnoteDef, FootnoteID: "note", HTML: "Shared note."},
	})

	page, err := New(Config{}).AssemblePage(testDocument(), nodes)
	if err != nil {
		t.Fatalf("AssemblePage() error = %v", err)
	}

	if count := strings.Count(page.HTML, `href="#fn:1"`); count != 2 {
		t.Errorf("expected both references to link fn:1, got %d in %q", count, page.HTML)
	}
	if count := strings.Count(page.HTML, `id="fnref:1"`); count != 1 {
		t.Errorf("back-reference id must appear exactly once, got %d", count)
	}
	if strings.Contains(page.HTML, "fn:2") {
		t.Errorf("single definition must not produce a second ordinal: %q", page.HTML)
	}
}

func TestAssemblePageDanglingFootnoteFails(t *testing.T) {
	nodes := interfaces.NewNodeList([]interfaces.Node{
		{Kind: interfaces.NodeParagraph, HTML: "<p>Ghost" + interfaces.FootnotePlaceholder("ghost") + "</p>"},
		{Kind: interfaces.NodeFootnoteRef, FootnoteID: "ghost"},
	})

	_, err := New(Config{}).AssemblePage(testDocument(), nodes)
	if !errors.Is(err, posts.ErrDanglingReference) {
		t.Fatalf("expected ErrDanglingReference, got %v", err)
	}

	var dangling *posts.DanglingReferenceError
	if !errors.As(err, &dangling) {
		t.Fatalf("expected DanglingReferenceError, got %T", err)
	}
	if dangling.ID != "ghost" || dangling.Kind != posts.ReferenceFootnote {
		t.Errorf("unexpected error detail: %+v", dangling)
	}
}

func TestAssemblePageTrailingBlock(t *testing.T) {
	nodes := interfaces.NewNodeList([]interfaces.Node{
		{Kind: interfaces.NodeParagraph, HTML: "<p>Body" + interfaces.FootnotePlaceholder("only") + "</p>"},
		{Kind: interfaces.NodeFootnoteRef, FootnoteID: "only"},
		{Kind: interfaces.NodeFootnoteDef, FootnoteID: "only", HTML: "The definition text."},
	})

	page, err := New(Config{}).AssemblePage(testDocument(), nodes)
	if err != nil {
		t.Fatalf("AssemblePage() error = %v", err)
	}

	trailingAt := strings.Index(page.HTML, `<section class="footnotes">`)
	if trailingAt < 0 {
		t.Fatalf("expected trailing footnotes section in %q", page.HTML)
	}
	if bodyAt := strings.Index(page.HTML, "<p>Body"); bodyAt > trailingAt {
		t.Errorf("footnotes section must follow the body")
	}
	if !strings.Contains(page.HTML, `<li id="fn:1"><p>The definition text. <a href="#fnref:1" class="footnote-backref">&#8617;</a></p></li>`) {
		t.Errorf("unexpected footnote list item in %q", page.HTML)
	}
}

func TestAssemblePageWithoutFootnotesOmitsTrailingBlock(t *testing.T) {
	nodes := interfaces.NewNodeList([]interfaces.Node{
		{Kind: interfaces.NodeParagraph, HTML: "<p>Plain paragraph.</p>"},
	})

	page, err := New(Config{}).AssemblePage(testDocument(), nodes)
	if err != nil {
		t.Fatalf("AssemblePage() error = %v", err)
	}
	if strings.Contains(page.HTML, "footnotes") {
		t.Errorf("no footnotes section expected, got %q", page.HTML)
	}
}

func TestAssemblePageLayoutSelection(t *testing.T) {
	doc := testDocument()
	doc.FrontMatter.Layout = ""

	nodes := interfaces.NewNodeList([]interfaces.Node{
		{Kind: interfaces.NodeParagraph, HTML: "<p>Body.</p>"},
	})

	page, err := New(Config{DefaultLayout: "default"}).AssemblePage(doc, nodes)
	if err != nil {
		t.Fatalf("AssemblePage() error = %v", err)
	}
	if page.LayoutName != "default" {
		t.Errorf("LayoutName = %q, want default", page.LayoutName)
	}

	doc.FrontMatter.Layout = "post"
	page, err = New(Config{DefaultLayout: "default"}).AssemblePage(doc, nodes)
	if err != nil {
		t.Fatalf("AssemblePage() error = %v", err)
	}
	if page.LayoutName != "post" {
		t.Errorf("LayoutName = %q, want post", page.LayoutName)
	}
}

type stubLayoutValidator struct {
	known map[string]bool
}

func (s stubLayoutValidator) ValidateLayout(name string) error {
	if s.known[name] {
		return nil
	}
	return &posts.UnknownLayoutError{Layout: name, Theme: "test"}
}

func TestAssemblePageUnknownLayout(t *testing.T) {
	doc := testDocument()
	doc.FrontMatter.Layout = "missing"

	nodes := interfaces.NewNodeList([]interfaces.Node{
		{Kind: interfaces.NodeParagraph, HTML: "<p>Body.</p>"},
	})

	validator := stubLayoutValidator{known: map[string]bool{"post": true, "default": true}}
	_, err := New(Config{Layouts: validator}).AssemblePage(doc, nodes)
	if !errors.Is(err, posts.ErrUnknownLayout) {
		t.Fatalf("expected ErrUnknownLayout, got %v", err)
	}

	doc.FrontMatter.Layout = "post"
	if _, err := New(Config{Layouts: validator}).AssemblePage(doc, nodes); err != nil {
		t.Fatalf("known layout must pass validation, got %v", err)
	}
}

func TestAssemblePageTitleFallback(t *testing.T) {
	doc := testDocument()
	doc.FrontMatter.Title = ""

	nodes := interfaces.NewNodeList([]interfaces.Node{
		{Kind: interfaces.NodeHeading, Level: 1, Text: "Scope and Hoisting", HTML: "<h1>Scope and Hoisting</h1>"},
		{Kind: interfaces.NodeParagraph, HTML: "<p>Body.</p>"},
	})

	page, err := New(Config{}).AssemblePage(doc, nodes)
	if err != nil {
		t.Fatalf("AssemblePage() error = %v", err)
	}
	if page.Title != "Scope and Hoisting" {
		t.Errorf("Title = %q, want first heading text", page.Title)
	}

	bare := interfaces.NewNodeList([]interfaces.Node{
		{Kind: interfaces.NodeParagraph, HTML: "<p>Body.</p>"},
	})
	page, err = New(Config{}).AssemblePage(doc, bare)
	if err != nil {
		t.Fatalf("AssemblePage() error = %v", err)
	}
	if page.Title != doc.Slug {
		t.Errorf("Title = %q, want slug fallback %q", page.Title, doc.Slug)
	}
}

func TestAssemblePageCopiesMetadata(t *testing.T) {
	doc := testDocument()
	doc.FrontMatter.Raw = map[string]any{"custom_flag": true}
	doc.FrontMatter.Tags = []string{"javascript"}

	nodes := interfaces.NewNodeList([]interfaces.Node{
		{Kind: interfaces.NodeParagraph, HTML: "<p>Body.</p>"},
	})

	page, err := New(Config{}).AssemblePage(doc, nodes)
	if err != nil {
		t.Fatalf("AssemblePage() error = %v", err)
	}

	page.Metadata["custom_flag"] = false
	page.Tags[0] = "mutated"
	if doc.FrontMatter.Raw["custom_flag"] != true {
		t.Errorf("page metadata must not alias front matter")
	}
	if doc.FrontMatter.Tags[0] != "javascript" {
		t.Errorf("page tags must not alias front matter tags")
	}
}
