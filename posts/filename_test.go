package posts

import (
	"errors"
	"testing"
	"time"
)

func TestParseSourceName(t *testing.T) {
	meta, err := ParseSourceName("_posts/2010-02-08-javascript-scoping.md")
	if err != nil {
		t.Fatalf("ParseSourceName: %v", err)
	}
	if meta.Slug != "javascript-scoping" {
		t.Fatalf("expected slug javascript-scoping, got %q", meta.Slug)
	}
	want := time.Date(2010, 2, 8, 0, 0, 0, 0, time.UTC)
	if !meta.Date.Equal(want) {
		t.Fatalf("expected date %s, got %s", want, meta.Date)
	}
}

func TestParseSourceNameWithoutDate(t *testing.T) {
	meta, err := ParseSourceName("pages/About Me.md")
	if err != nil {
		t.Fatalf("ParseSourceName: %v", err)
	}
	if !meta.Date.IsZero() {
		t.Fatalf("expected zero date, got %s", meta.Date)
	}
	if meta.Slug != "about-me" {
		t.Fatalf("expected slug about-me, got %q", meta.Slug)
	}
}

func TestParseSourceNameInvalid(t *testing.T) {
	if _, err := ParseSourceName(""); !errors.Is(err, ErrSourceNameInvalid) {
		t.Fatalf("expected ErrSourceNameInvalid, got %v", err)
	}
}

func TestFallbackSlugCollapsesSeparators(t *testing.T) {
	if got := fallbackSlug("A  Long -- Title!"); got != "a-long-title" {
		t.Fatalf("fallbackSlug mismatch, got %q", got)
	}
}
