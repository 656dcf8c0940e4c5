package markdown

import (
	"bytes"
	"regexp"
	"strings"

	"github.com/goliatone/go-press/pkg/interfaces"
	"github.com/goliatone/go-press/posts"
)

var (
	footnoteDefPattern = regexp.MustCompile(`^\[\^([A-Za-z0-9_-]+)\]:\s*(.*)$`)
	footnoteRefPattern = regexp.MustCompile(`\[\^([A-Za-z0-9_-]+)\]`)
)

// footnoteDef records a footnote definition found in the body. Offset is the
// byte position of the definition line in the original body so definitions
// can be interleaved back into the node sequence at their declaration
// position.
type footnoteDef struct {
	id     string
	text   string
	offset int
}

// extractFootnoteDefs scans the body line by line, collecting definition
// lines of the form `[^id]: text`. Each definition line is blanked in place
// (every byte except the newline becomes a space) so byte offsets of the
// remaining Markdown survive for the block parser. Lines inside fenced code
// blocks are left untouched so code literals keep their exact bytes.
// Duplicate ids fail the extraction: a reference must resolve to exactly one
// definition.
func extractFootnoteDefs(body []byte) ([]footnoteDef, []byte, error) {
	blanked := append([]byte(nil), body...)

	var defs []footnoteDef
	seen := map[string]struct{}{}

	var fenceChar byte
	fenceLen := 0

	offset := 0
	for offset <= len(blanked) {
		end := bytes.IndexByte(blanked[offset:], '\n')
		var line []byte
		if end == -1 {
			line = blanked[offset:]
			end = len(blanked) - offset
		} else {
			line = blanked[offset : offset+end]
		}

		char, run, restBlank := fenceMarker(line)
		if fenceChar != 0 {
			if char == fenceChar && run >= fenceLen && restBlank {
				fenceChar, fenceLen = 0, 0
			}
			offset += end + 1
			continue
		}
		if char != 0 {
			fenceChar, fenceLen = char, run
			offset += end + 1
			continue
		}

		if match := footnoteDefPattern.FindSubmatch(bytes.TrimRight(line, "\r")); match != nil {
			id := string(match[1])
			if _, dup := seen[id]; dup {
				return nil, nil, &posts.DuplicateFootnoteError{ID: id}
			}
			seen[id] = struct{}{}
			defs = append(defs, footnoteDef{
				id:     id,
				text:   strings.TrimSpace(string(match[2])),
				offset: offset,
			})
			for i := range line {
				line[i] = ' '
			}
		}

		offset += end + 1
	}

	return defs, blanked, nil
}

// fenceMarker inspects a line for a code fence delimiter. It returns the
// fence character, the run length, and whether nothing but whitespace follows
// the run. Backtick fences with a backtick in the info string do not count,
// matching CommonMark. A zero char means the line is not a fence delimiter.
func fenceMarker(line []byte) (char byte, run int, restBlank bool) {
	trimmed := bytes.TrimRight(line, "\r")
	indent := 0
	for indent < len(trimmed) && indent < 3 && trimmed[indent] == ' ' {
		indent++
	}
	trimmed = trimmed[indent:]
	if len(trimmed) < 3 || (trimmed[0] != '`' && trimmed[0] != '~') {
		return 0, 0, false
	}
	char = trimmed[0]
	for run < len(trimmed) && trimmed[run] == char {
		run++
	}
	if run < 3 {
		return 0, 0, false
	}
	rest := trimmed[run:]
	if char == '`' && bytes.IndexByte(rest, '`') != -1 {
		return 0, 0, false
	}
	return char, run, len(bytes.TrimSpace(rest)) == 0
}

// replaceFootnoteRefs swaps `[^id]` markers in a rendered fragment for
// placeholders, skipping anything inside code spans. Each replaced id must
// have a definition; a miss fails the whole render.
func replaceFootnoteRefs(fragment string, defined map[string]struct{}, found *[]string) (string, error) {
	return transformOutsideCodeSpans(fragment, func(segment string) (string, error) {
		var firstErr error
		replaced := footnoteRefPattern.ReplaceAllStringFunc(segment, func(marker string) string {
			id := footnoteRefPattern.FindStringSubmatch(marker)[1]
			if _, ok := defined[id]; !ok {
				if firstErr == nil {
					firstErr = &posts.DanglingReferenceError{Kind: posts.ReferenceFootnote, ID: id}
				}
				return marker
			}
			if found != nil {
				*found = append(*found, id)
			}
			return interfaces.FootnotePlaceholder(id)
		})
		if firstErr != nil {
			return "", firstErr
		}
		return replaced, nil
	})
}

// transformOutsideCodeSpans applies fn to the stretches of a rendered HTML
// fragment that sit outside <code>...</code> regions. Fenced code blocks are
// rendered as separate nodes, so code spans are the only protected region in
// the fragments this sees.
func transformOutsideCodeSpans(fragment string, fn func(string) (string, error)) (string, error) {
	var out strings.Builder

	for {
		open := strings.Index(fragment, "<code")
		if open == -1 {
			transformed, err := fn(fragment)
			if err != nil {
				return "", err
			}
			out.WriteString(transformed)
			return out.String(), nil
		}

		transformed, err := fn(fragment[:open])
		if err != nil {
			return "", err
		}
		out.WriteString(transformed)

		rest := fragment[open:]
		closing := strings.Index(rest, "</code>")
		if closing == -1 {
			out.WriteString(rest)
			return out.String(), nil
		}
		end := closing + len("</code>")
		out.WriteString(rest[:end])
		fragment = rest[end:]
	}
}
