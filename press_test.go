package press

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/goliatone/go-press/posts"
)

const postSource = `---
title: Variable Scope
layout: default
tags:
  - javascript
---
Closures capture variables by reference, not by value.[^capture]

` + "```javascript" + `
for (var i = 0; i < 3; i++) {
  setTimeout(function () { console.log(i); });
}
` + "```" + `

[^capture]: Each callback sees the final value of i.
`

func writeContentDir(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	postsDir := filepath.Join(dir, "posts")
	if err := os.MkdirAll(postsDir, 0o755); err != nil {
		t.Fatalf("mkdir posts: %v", err)
	}
	post := filepath.Join(postsDir, "2014-11-02-variable-scope.md")
	if err := os.WriteFile(post, []byte(postSource), 0o644); err != nil {
		t.Fatalf("write post: %v", err)
	}
	about := filepath.Join(dir, "about.md")
	if err := os.WriteFile(about, []byte("---\ntitle: About\n---\nHello.\n"), 0o644); err != nil {
		t.Fatalf("write about: %v", err)
	}
	return dir
}

func newTestPress(t *testing.T, mutate func(*Config)) *Press {
	t.Helper()
	cfg := DefaultConfig()
	cfg.Content.Dir = writeContentDir(t)
	if mutate != nil {
		mutate(&cfg)
	}
	module, err := New(cfg)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return module
}

func TestNewRejectsDisabledModule(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Enabled = false
	if _, err := New(cfg); !errors.Is(err, ErrModuleDisabled) {
		t.Fatalf("expected ErrModuleDisabled, got %v", err)
	}
}

func TestNewValidatesConfig(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Content.Dir = ""
	if _, err := New(cfg); !errors.Is(err, ErrContentDirRequired) {
		t.Fatalf("expected ErrContentDirRequired, got %v", err)
	}
}

func TestRenderSource(t *testing.T) {
	module := newTestPress(t, nil)

	page, err := module.RenderSource(context.Background(), "posts/2014-11-02-variable-scope.md", []byte(postSource))
	if err != nil {
		t.Fatalf("RenderSource: %v", err)
	}

	if page.LayoutName != "default" {
		t.Errorf("layout = %q, want default", page.LayoutName)
	}
	if page.Title != "Variable Scope" {
		t.Errorf("title = %q, want Variable Scope", page.Title)
	}
	if page.Slug != "variable-scope" {
		t.Errorf("slug = %q, want variable-scope", page.Slug)
	}
	if page.Date.Year() != 2014 || page.Date.Month() != 11 || page.Date.Day() != 2 {
		t.Errorf("date = %v, want 2014-11-02", page.Date)
	}
	if !strings.Contains(page.HTML, `<code class="language-javascript">`) {
		t.Errorf("expected fenced code block with language class, got:\n%s", page.HTML)
	}
	if !strings.Contains(page.HTML, "setTimeout(function () { console.log(i); });") {
		t.Errorf("expected code content preserved verbatim, got:\n%s", page.HTML)
	}
	if !strings.Contains(page.HTML, `id="fnref:1"`) {
		t.Errorf("expected footnote reference anchor, got:\n%s", page.HTML)
	}
	if !strings.Contains(page.HTML, `<section class="footnotes">`) {
		t.Errorf("expected trailing footnote block, got:\n%s", page.HTML)
	}
	if !strings.Contains(page.HTML, "Each callback sees the final value of i.") {
		t.Errorf("expected footnote text, got:\n%s", page.HTML)
	}
}

func TestRenderFile(t *testing.T) {
	module := newTestPress(t, nil)

	page, err := module.RenderFile(context.Background(), "posts/2014-11-02-variable-scope.md")
	if err != nil {
		t.Fatalf("RenderFile: %v", err)
	}
	if page.Slug != "variable-scope" {
		t.Errorf("slug = %q, want variable-scope", page.Slug)
	}
	if len(page.Tags) != 1 || page.Tags[0] != "javascript" {
		t.Errorf("tags = %v, want [javascript]", page.Tags)
	}
}

func TestBuildDisabledGenerator(t *testing.T) {
	module := newTestPress(t, nil)
	if _, err := module.Build(context.Background(), BuildOptions{}); err == nil {
		t.Fatal("expected disabled generator to reject builds")
	}
}

func TestBuildWritesSite(t *testing.T) {
	output := filepath.Join(t.TempDir(), "public")
	module := newTestPress(t, func(cfg *Config) {
		cfg.Features.Generator = true
		cfg.Generator.OutputDir = output
		cfg.Generator.BaseURL = "https://example.com"
	})

	result, err := module.Build(context.Background(), BuildOptions{})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if result.PagesBuilt != 2 {
		t.Fatalf("pages built = %d, want 2", result.PagesBuilt)
	}

	postPath := filepath.Join(output, "2014", "11", "02", "variable-scope", "index.html")
	html, err := os.ReadFile(postPath)
	if err != nil {
		t.Fatalf("read post output: %v", err)
	}
	if !strings.Contains(string(html), `<code class="language-javascript">`) {
		t.Errorf("post output missing code block:\n%s", html)
	}

	aboutPath := filepath.Join(output, "about", "index.html")
	if _, err := os.Stat(aboutPath); err != nil {
		t.Errorf("about output missing: %v", err)
	}

	sitemap, err := os.ReadFile(filepath.Join(output, "sitemap.xml"))
	if err != nil {
		t.Fatalf("read sitemap: %v", err)
	}
	if !strings.Contains(string(sitemap), "https://example.com/2014/11/02/variable-scope/") {
		t.Errorf("sitemap missing post route:\n%s", sitemap)
	}
}

func TestBuildSurvivesUnparsableDocument(t *testing.T) {
	output := filepath.Join(t.TempDir(), "public")
	module := newTestPress(t, func(cfg *Config) {
		cfg.Features.Generator = true
		cfg.Generator.OutputDir = output
		cfg.Generator.BaseURL = "https://example.com"
	})

	bad := filepath.Join(module.cfg.Content.Dir, "posts", "2010-02-09-bad.md")
	if err := os.WriteFile(bad, []byte("---\ntitle: Broken\n\nNo closing delimiter.\n"), 0o644); err != nil {
		t.Fatalf("write bad post: %v", err)
	}

	result, err := module.Build(context.Background(), BuildOptions{})
	if !errors.Is(err, posts.ErrMalformedFrontMatter) {
		t.Fatalf("expected malformed front matter in aggregate error, got %v", err)
	}
	if result == nil {
		t.Fatalf("expected partial result despite the broken document")
	}
	if result.PagesBuilt != 2 {
		t.Errorf("pages built = %d, want 2", result.PagesBuilt)
	}

	postPath := filepath.Join(output, "2014", "11", "02", "variable-scope", "index.html")
	if _, err := os.Stat(postPath); err != nil {
		t.Errorf("healthy post output missing: %v", err)
	}

	var failed bool
	for _, diag := range result.Diagnostics {
		if diag.Err != nil && strings.Contains(diag.SourcePath, "2010-02-09-bad.md") {
			failed = true
		}
	}
	if !failed {
		t.Errorf("expected a diagnostic for the broken document, got %+v", result.Diagnostics)
	}
}

func TestCommandsBuildSite(t *testing.T) {
	output := filepath.Join(t.TempDir(), "public")
	module := newTestPress(t, func(cfg *Config) {
		cfg.Features.Generator = true
		cfg.Generator.OutputDir = output
	})

	var captured *BuildResult
	cmds := module.Commands()
	err := cmds.Build.Execute(context.Background(), BuildSiteCommand{
		ResultCallback: func(envelope ResultEnvelope) {
			captured = envelope.Result
		},
	})
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if captured == nil || captured.PagesBuilt != 2 {
		t.Fatalf("expected 2 pages in callback result, got %+v", captured)
	}
}

func TestCommandsRenderPost(t *testing.T) {
	module := newTestPress(t, nil)

	var page *OutputPage
	cmds := module.Commands()
	err := cmds.Render.Execute(context.Background(), RenderPostCommand{
		Path: "posts/2014-11-02-variable-scope.md",
		PageCallback: func(p *OutputPage) {
			page = p
		},
	})
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if page == nil || page.Slug != "variable-scope" {
		t.Fatalf("expected rendered page in callback, got %+v", page)
	}
}
