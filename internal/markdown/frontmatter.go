package markdown

import (
	"bytes"
	"errors"
	"fmt"
	"time"

	"github.com/adrg/frontmatter"

	"github.com/goliatone/go-press/internal/identity"
	"github.com/goliatone/go-press/pkg/interfaces"
	"github.com/goliatone/go-press/posts"
)

var frontMatterDelimiter = []byte("---")

// ParseFrontMatter extracts metadata and Markdown body content from the
// provided source bytes. Front matter is recognised only when the opening
// `---` line sits at byte offset 0; a block that opens but never closes fails
// with posts.ErrMalformedFrontMatter and no partial result is returned.
func ParseFrontMatter(source []byte) (interfaces.FrontMatter, []byte, error) {
	opened, closed := scanDelimiters(source)
	if !opened {
		return emptyFrontMatter(), source, nil
	}
	if !closed {
		return interfaces.FrontMatter{}, nil, &posts.MalformedFrontMatterError{Line: 1}
	}

	var meta frontMatterEnvelope
	body, err := frontmatter.Parse(bytes.NewReader(source), &meta)
	if err != nil {
		return interfaces.FrontMatter{}, nil, fmt.Errorf("parse frontmatter: %w", err)
	}

	// Decode a second time into a plain map so Raw keeps every authored key,
	// including explicit zero values the typed envelope cannot distinguish.
	raw := map[string]any{}
	if _, err := frontmatter.Parse(bytes.NewReader(source), &raw); err != nil {
		return interfaces.FrontMatter{}, nil, fmt.Errorf("parse frontmatter: %w", err)
	}

	return envelopeToFrontMatter(meta, raw), body, nil
}

// BuildDocument assembles an interfaces.Document from the supplied file path,
// raw content, and modification time. Slug and date fall back to values
// derived from the file name when front matter leaves them unset.
func BuildDocument(path string, source []byte, modified time.Time) (*interfaces.Document, error) {
	fm, body, err := ParseFrontMatter(source)
	if err != nil {
		return nil, annotateSourcePath(err, path)
	}

	doc := &interfaces.Document{
		ID:           identity.DocumentUUID(path),
		SourcePath:   path,
		FrontMatter:  fm,
		Body:         body,
		LastModified: modified,
	}

	doc.Slug = fm.Slug
	doc.Date = fm.Date
	if name, nameErr := posts.ParseSourceName(path); nameErr == nil {
		if doc.Slug == "" {
			doc.Slug = name.Slug
		}
		if doc.Date.IsZero() {
			doc.Date = name.Date
		}
	}

	return doc, nil
}

func annotateSourcePath(err error, path string) error {
	var malformed *posts.MalformedFrontMatterError
	if errors.As(err, &malformed) && malformed.SourcePath == "" {
		return &posts.MalformedFrontMatterError{SourcePath: path, Line: malformed.Line}
	}
	return err
}

// scanDelimiters reports whether a front matter block opens at offset 0 and
// whether a closing delimiter line follows.
func scanDelimiters(source []byte) (opened, closed bool) {
	lines := bytes.Split(source, []byte("\n"))
	if len(lines) == 0 {
		return false, false
	}
	if !isDelimiterLine(lines[0]) {
		return false, false
	}
	for _, line := range lines[1:] {
		if isDelimiterLine(line) {
			return true, true
		}
	}
	return true, false
}

func isDelimiterLine(line []byte) bool {
	return bytes.Equal(bytes.TrimRight(line, "\r"), frontMatterDelimiter)
}

func emptyFrontMatter() interfaces.FrontMatter {
	return interfaces.FrontMatter{
		Custom: map[string]any{},
		Raw:    map[string]any{},
	}
}

type frontMatterEnvelope struct {
	Title   string         `yaml:"title"`
	Layout  string         `yaml:"layout"`
	Slug    string         `yaml:"slug"`
	Summary string         `yaml:"summary"`
	Tags    []string       `yaml:"tags"`
	Author  string         `yaml:"author"`
	Date    time.Time      `yaml:"date"`
	Draft   bool           `yaml:"draft"`
	Custom  map[string]any `yaml:",inline"`
}

func envelopeToFrontMatter(env frontMatterEnvelope, raw map[string]any) interfaces.FrontMatter {
	if env.Custom == nil {
		env.Custom = map[string]any{}
	}
	if raw == nil {
		raw = map[string]any{}
	}

	return interfaces.FrontMatter{
		Title:   env.Title,
		Layout:  env.Layout,
		Slug:    env.Slug,
		Summary: env.Summary,
		Tags:    append([]string(nil), env.Tags...),
		Author:  env.Author,
		Date:    env.Date,
		Draft:   env.Draft,
		Custom:  cloneMap(env.Custom),
		Raw:     raw,
	}
}

func cloneMap(input map[string]any) map[string]any {
	if input == nil {
		return map[string]any{}
	}

	out := make(map[string]any, len(input))
	for key, value := range input {
		out[key] = value
	}
	return out
}
