package identity

import (
	"path/filepath"
	"strings"

	hashid "github.com/goliatone/hashid/pkg/hashid"
	"github.com/google/uuid"
)

// UUID derives a deterministic UUID from a stable key using go-hashid.
//
// Callers must ensure key construction prevents cross-entity collisions (prefix by domain/type).
func UUID(key string) uuid.UUID {
	trimmed := strings.TrimSpace(key)
	if trimmed == "" {
		return uuid.Nil
	}
	uid, err := hashid.NewUUID(trimmed, hashid.WithHashAlgorithm(hashid.SHA256), hashid.WithNormalization(true))
	if err != nil || uid == uuid.Nil {
		return uuid.NewSHA1(uuid.NameSpaceOID, []byte(trimmed))
	}
	return uid
}

// DocumentUUID derives a stable identifier for a source document. Paths are
// normalised to slashes so the same file hashes identically across platforms.
func DocumentUUID(sourcePath string) uuid.UUID {
	return UUID("go-press:document:" + filepath.ToSlash(strings.TrimSpace(sourcePath)))
}

// BuildUUID derives a stable identifier for a corpus build targeting the
// provided output directory.
func BuildUUID(outputDir string) uuid.UUID {
	return UUID("go-press:build:" + filepath.ToSlash(strings.TrimSpace(outputDir)))
}
