package posts

import (
	"path"
	"regexp"
	"strings"
	"time"
)

// sourceNamePattern matches the conventional `YYYY-MM-DD-title.md` post file
// name used by static site layouts.
var sourceNamePattern = regexp.MustCompile(`^(\d{4})-(\d{2})-(\d{2})-(.+)$`)

// SourceName carries the metadata derived from a post's file name.
type SourceName struct {
	Slug string
	Date time.Time
}

// ParseSourceName derives slug and publication date from a source path. Files
// named `2010-02-08-javascript-scoping.md` yield the embedded date and the
// trailing slug; files without a date prefix keep a zero date and slugify the
// whole stem. The returned slug is always normalized.
func ParseSourceName(sourcePath string) (SourceName, error) {
	stem := strings.TrimSuffix(path.Base(strings.TrimSpace(sourcePath)), path.Ext(sourcePath))
	if stem == "" || stem == "." {
		return SourceName{}, ErrSourceNameInvalid
	}

	var meta SourceName
	rest := stem
	if match := sourceNamePattern.FindStringSubmatch(stem); match != nil {
		date, err := time.Parse("2006-01-02", match[1]+"-"+match[2]+"-"+match[3])
		if err == nil {
			meta.Date = date.UTC()
			rest = match[4]
		}
	}

	normalized, err := NormalizeSlug(rest)
	if err != nil || strings.TrimSpace(normalized) == "" {
		// Fall back to a conservative lowering when the normalizer rejects
		// the stem outright.
		normalized = fallbackSlug(rest)
	}
	if normalized == "" {
		return SourceName{}, ErrSourceNameInvalid
	}

	meta.Slug = normalized
	return meta, nil
}

func fallbackSlug(value string) string {
	var b strings.Builder
	lastDash := true
	for _, r := range strings.ToLower(strings.TrimSpace(value)) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			lastDash = false
		default:
			if !lastDash {
				b.WriteByte('-')
				lastDash = true
			}
		}
	}
	return strings.Trim(b.String(), "-")
}
