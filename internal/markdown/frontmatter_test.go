package markdown

import (
	"errors"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/goliatone/go-press/posts"
)

func TestParseFrontMatter(t *testing.T) {
	data := readFixture(t, "testdata/basic.md")

	fm, body, err := ParseFrontMatter(data)
	if err != nil {
		t.Fatalf("ParseFrontMatter: %v", err)
	}

	if fm.Title != "Understanding Scope" {
		t.Fatalf("FrontMatter Title mismatch, got %q", fm.Title)
	}
	if fm.Layout != "post" {
		t.Fatalf("FrontMatter Layout mismatch, got %q", fm.Layout)
	}
	if fm.Slug != "understanding-scope" {
		t.Fatalf("FrontMatter Slug mismatch, got %q", fm.Slug)
	}
	if len(fm.Tags) != 2 || fm.Tags[0] != "javascript" {
		t.Fatalf("FrontMatter Tags mismatch: %#v", fm.Tags)
	}
	if fm.Custom["custom_flag"] != true {
		t.Fatalf("FrontMatter Custom flag missing: %#v", fm.Custom)
	}
	if len(body) == 0 || !strings.Contains(string(body), "# Understanding Scope") {
		t.Fatalf("Markdown body not returned correctly: %q", string(body))
	}
}

func TestParseFrontMatterRawPreservesEveryKey(t *testing.T) {
	data := readFixture(t, "testdata/basic.md")

	fm, _, err := ParseFrontMatter(data)
	if err != nil {
		t.Fatalf("ParseFrontMatter: %v", err)
	}

	for _, key := range []string{"title", "layout", "slug", "summary", "tags", "author", "custom_flag"} {
		if _, ok := fm.Raw[key]; !ok {
			t.Fatalf("expected Raw to carry %q: %#v", key, fm.Raw)
		}
	}
}

func TestParseFrontMatterRawKeepsExplicitZeroValues(t *testing.T) {
	source := []byte("---\ntitle: \"\"\ndraft: false\n---\n\nBody.\n")

	fm, _, err := ParseFrontMatter(source)
	if err != nil {
		t.Fatalf("ParseFrontMatter: %v", err)
	}

	title, ok := fm.Raw["title"]
	if !ok || title != "" {
		t.Fatalf("expected Raw to keep the empty title, got %#v", fm.Raw)
	}
	draft, ok := fm.Raw["draft"]
	if !ok || draft != false {
		t.Fatalf("expected Raw to keep draft false, got %#v", fm.Raw)
	}
}

func TestParseFrontMatterOnlyAtOffsetZero(t *testing.T) {
	source := []byte("\n---\ntitle: Nope\n---\nBody\n")

	fm, body, err := ParseFrontMatter(source)
	if err != nil {
		t.Fatalf("ParseFrontMatter: %v", err)
	}
	if fm.Title != "" {
		t.Fatalf("expected no front matter, got title %q", fm.Title)
	}
	if string(body) != string(source) {
		t.Fatalf("expected body to pass through unchanged, got %q", string(body))
	}
}

func TestParseFrontMatterUnterminated(t *testing.T) {
	source := []byte("---\ntitle: Broken\nlayout: default\n\nBody continues forever\n")

	fm, body, err := ParseFrontMatter(source)
	if !errors.Is(err, posts.ErrMalformedFrontMatter) {
		t.Fatalf("expected ErrMalformedFrontMatter, got %v", err)
	}
	if fm.Title != "" || body != nil {
		t.Fatalf("expected no partial result on malformed front matter")
	}
}

func TestBuildDocumentDerivesSlugAndDate(t *testing.T) {
	data := readFixture(t, "testdata/2010-02-08-scoping-post.md")
	modified := time.Now().UTC()

	doc, err := BuildDocument("testdata/2010-02-08-scoping-post.md", data, modified)
	if err != nil {
		t.Fatalf("BuildDocument: %v", err)
	}

	if doc.Slug != "scoping-post" {
		t.Fatalf("expected slug derived from file name, got %q", doc.Slug)
	}
	want := time.Date(2010, 2, 8, 0, 0, 0, 0, time.UTC)
	if !doc.Date.Equal(want) {
		t.Fatalf("expected date %s, got %s", want, doc.Date)
	}
	if doc.FrontMatter.Layout != "default" {
		t.Fatalf("expected layout default, got %q", doc.FrontMatter.Layout)
	}
	if doc.LastModified != modified {
		t.Fatalf("expected LastModified to equal the provided timestamp")
	}
	if doc.ID.String() == "00000000-0000-0000-0000-000000000000" {
		t.Fatalf("expected deterministic document id to be set")
	}
}

func TestBuildDocumentFrontMatterWins(t *testing.T) {
	data := readFixture(t, "testdata/basic.md")

	doc, err := BuildDocument("testdata/basic.md", data, time.Now())
	if err != nil {
		t.Fatalf("BuildDocument: %v", err)
	}
	if doc.Slug != "understanding-scope" {
		t.Fatalf("expected front matter slug to win, got %q", doc.Slug)
	}
}

func readFixture(tb testing.TB, path string) []byte {
	tb.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		tb.Fatalf("read fixture %s: %v", path, err)
	}
	return data
}
