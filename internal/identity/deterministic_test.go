package identity

import (
	"testing"

	"github.com/google/uuid"
)

func TestUUIDIsDeterministic(t *testing.T) {
	a := UUID("go-press:document:posts/hello.md")
	b := UUID("go-press:document:posts/hello.md")
	if a != b {
		t.Fatalf("same key must hash identically, got %s and %s", a, b)
	}
	if a == uuid.Nil {
		t.Fatal("non-empty key must not hash to the nil UUID")
	}
}

func TestUUIDEmptyKey(t *testing.T) {
	if got := UUID("   "); got != uuid.Nil {
		t.Fatalf("blank key should map to the nil UUID, got %s", got)
	}
}

func TestDocumentUUIDDiffersByPath(t *testing.T) {
	a := DocumentUUID("posts/one.md")
	b := DocumentUUID("posts/two.md")
	if a == b {
		t.Fatalf("different paths must produce different identities, got %s twice", a)
	}
}

func TestBuildUUIDDiffersByOutputDir(t *testing.T) {
	if BuildUUID("public") == BuildUUID("dist") {
		t.Fatal("different output directories must produce different build ids")
	}
}
