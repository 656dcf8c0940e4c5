package generator

import (
	"strings"
	"testing"
	"time"
)

func TestManifestRoundTrip(t *testing.T) {
	manifest := newBuildManifest()
	manifest.GeneratedAt = time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	manifest.setPage(manifestPage{
		Slug:       "variable-scope",
		SourcePath: "posts/2014-11-02-variable-scope.md",
		Route:      "/2014/11/02/variable-scope/",
		Output:     "public/2014/11/02/variable-scope/index.html",
		Layout:     "post",
		SourceHash: "abc",
		Checksum:   "def",
	})

	data, err := manifest.marshal()
	if err != nil {
		t.Fatalf("marshal() error = %v", err)
	}

	parsed, err := parseManifest(data)
	if err != nil {
		t.Fatalf("parseManifest() error = %v", err)
	}
	entry, ok := parsed.lookupPage("posts/2014-11-02-variable-scope.md")
	if !ok {
		t.Fatalf("expected page entry after round trip")
	}
	if entry.SourceHash != "abc" || entry.Checksum != "def" || entry.Layout != "post" {
		t.Errorf("unexpected entry: %+v", entry)
	}
}

func TestManifestDeterministicMarshal(t *testing.T) {
	build := func() []byte {
		manifest := newBuildManifest()
		manifest.setPage(manifestPage{Slug: "b", SourcePath: "posts/b.md", SourceHash: "hb"})
		manifest.setPage(manifestPage{Slug: "a", SourcePath: "posts/a.md", SourceHash: "ha"})
		data, err := manifest.marshal()
		if err != nil {
			t.Fatalf("marshal() error = %v", err)
		}
		return data
	}

	first, second := build(), build()
	if string(first) != string(second) {
		t.Fatalf("marshal output must be deterministic")
	}
	if strings.Index(string(first), "posts/a.md") > strings.Index(string(first), "posts/b.md") {
		t.Errorf("pages must be ordered by source path")
	}
}

func TestShouldSkipPage(t *testing.T) {
	manifest := newBuildManifest()
	manifest.setPage(manifestPage{
		Slug:       "about",
		SourcePath: "pages/about.md",
		SourceHash: "hash-1",
		Output:     "public/about/index.html",
	})

	if !manifest.shouldSkipPage("pages/about.md", "hash-1", "public/about/index.html") {
		t.Errorf("identical source and output must be skippable")
	}
	if manifest.shouldSkipPage("pages/about.md", "hash-2", "public/about/index.html") {
		t.Errorf("changed source hash must rebuild")
	}
	if manifest.shouldSkipPage("pages/about.md", "hash-1", "public/en/about/index.html") {
		t.Errorf("moved output must rebuild")
	}
	if manifest.shouldSkipPage("pages/missing.md", "hash-1", "public/about/index.html") {
		t.Errorf("unknown source must rebuild")
	}
}

func TestParseManifestEmptyAndInvalid(t *testing.T) {
	manifest, err := parseManifest(nil)
	if err != nil {
		t.Fatalf("parseManifest(nil) error = %v", err)
	}
	if manifest.Version != manifestFileVersion {
		t.Errorf("empty manifest must default to version %d", manifestFileVersion)
	}

	if _, err := parseManifest([]byte("{not json")); err == nil {
		t.Errorf("invalid JSON must fail")
	}
}

func TestPrunePages(t *testing.T) {
	manifest := newBuildManifest()
	manifest.setPage(manifestPage{Slug: "kept", SourcePath: "posts/kept.md"})
	manifest.setPage(manifestPage{Slug: "stale", SourcePath: "posts/stale.md"})

	manifest.prunePages(map[string]struct{}{
		manifest.pageKey("posts/kept.md"): {},
	})

	if _, ok := manifest.lookupPage("posts/kept.md"); !ok {
		t.Errorf("kept page must survive pruning")
	}
	if _, ok := manifest.lookupPage("posts/stale.md"); ok {
		t.Errorf("stale page must be pruned")
	}
}
