package posts

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrMalformedFrontMatter = errors.New("posts: front matter block is not terminated")
	ErrDanglingReference    = errors.New("posts: reference has no matching definition")
	ErrDuplicateFootnote    = errors.New("posts: footnote id defined more than once")
	ErrUnknownLayout        = errors.New("posts: layout is not registered")
	ErrSourceNameInvalid    = errors.New("posts: source file name is invalid")
	ErrCorpusLoad           = errors.New("posts: some documents failed to load")
)

// DocumentFailure pairs a source path with the error that kept the document
// out of a batch load.
type DocumentFailure struct {
	SourcePath string
	Err        error
}

// CorpusError aggregates per-document failures from a directory load. The
// documents that parsed cleanly are still returned alongside it so a batch
// can keep going.
type CorpusError struct {
	Failures []DocumentFailure
}

func (e *CorpusError) Error() string {
	if e == nil || len(e.Failures) == 0 {
		return ErrCorpusLoad.Error()
	}
	paths := make([]string, 0, len(e.Failures))
	for _, failure := range e.Failures {
		paths = append(paths, failure.SourcePath)
	}
	return fmt.Sprintf("%s: %d failed (%s)", ErrCorpusLoad.Error(), len(e.Failures), strings.Join(paths, ", "))
}

func (e *CorpusError) Unwrap() error {
	return ErrCorpusLoad
}

// MalformedFrontMatterError captures an opened front matter block that never
// closes. No partial document is ever returned alongside it.
type MalformedFrontMatterError struct {
	SourcePath string
	Line       int
}

func (e *MalformedFrontMatterError) Error() string {
	if e == nil {
		return ErrMalformedFrontMatter.Error()
	}
	path := strings.TrimSpace(e.SourcePath)
	if path != "" {
		return fmt.Sprintf("%s: file=%s opened at line %d", ErrMalformedFrontMatter.Error(), path, e.Line)
	}
	return fmt.Sprintf("%s: opened at line %d", ErrMalformedFrontMatter.Error(), e.Line)
}

func (e *MalformedFrontMatterError) Unwrap() error {
	return ErrMalformedFrontMatter
}

// ReferenceKind names the reference family that failed to resolve.
type ReferenceKind string

const (
	ReferenceFootnote ReferenceKind = "footnote"
	ReferenceLink     ReferenceKind = "link"
)

// DanglingReferenceError captures a footnote or link reference whose
// definition is missing from the document.
type DanglingReferenceError struct {
	Kind       ReferenceKind
	ID         string
	SourcePath string
}

func (e *DanglingReferenceError) Error() string {
	if e == nil {
		return ErrDanglingReference.Error()
	}
	id := strings.TrimSpace(e.ID)
	kind := string(e.Kind)
	if kind == "" {
		kind = string(ReferenceLink)
	}
	if id != "" {
		return fmt.Sprintf("%s: %s=%s", ErrDanglingReference.Error(), kind, id)
	}
	return fmt.Sprintf("%s: kind=%s", ErrDanglingReference.Error(), kind)
}

func (e *DanglingReferenceError) Unwrap() error {
	return ErrDanglingReference
}

// DuplicateFootnoteError captures a footnote id declared twice in one
// document, which would make reference resolution ambiguous.
type DuplicateFootnoteError struct {
	ID         string
	SourcePath string
}

func (e *DuplicateFootnoteError) Error() string {
	if e == nil {
		return ErrDuplicateFootnote.Error()
	}
	if id := strings.TrimSpace(e.ID); id != "" {
		return fmt.Sprintf("%s: footnote=%s", ErrDuplicateFootnote.Error(), id)
	}
	return ErrDuplicateFootnote.Error()
}

func (e *DuplicateFootnoteError) Unwrap() error {
	return ErrDuplicateFootnote
}

// UnknownLayoutError is returned when layout validation is enabled and the
// requested layout is absent from the registry. Without a registry the layout
// name passes through opaquely and this error never occurs.
type UnknownLayoutError struct {
	Layout string
	Theme  string
}

func (e *UnknownLayoutError) Error() string {
	if e == nil {
		return ErrUnknownLayout.Error()
	}
	layout := strings.TrimSpace(e.Layout)
	theme := strings.TrimSpace(e.Theme)
	switch {
	case layout != "" && theme != "":
		return fmt.Sprintf("%s: layout=%s theme=%s", ErrUnknownLayout.Error(), layout, theme)
	case layout != "":
		return fmt.Sprintf("%s: layout=%s", ErrUnknownLayout.Error(), layout)
	default:
		return ErrUnknownLayout.Error()
	}
}

func (e *UnknownLayoutError) Unwrap() error {
	return ErrUnknownLayout
}
