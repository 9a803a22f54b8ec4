package summary

import (
	"regexp"
	"slices"
	"strconv"
	"strings"
)

// Heading is one markdown heading of a summary field.
type Heading struct {
	Level  int    `json:"level"`
	Text   string `json:"text"`
	Anchor string `json:"anchor"`
	Empty  bool   `json:"empty,omitempty"` // no content beyond a placeholder before the next heading
}

// headingPattern matches ATX headings (h1-h6) at the start of a line. The
// opening run must be followed by a space or tab on the same line, and an
// optional closing run of '#' is dropped.
// Groups: hash run, heading text.
var headingPattern = regexp.MustCompile(`(?m)^(#{1,6})[ \t]+([^\n]+?)(?:[ \t]+#+)?[ \t]*$`)

// fencePattern matches fenced code block delimiters with up to three spaces of indent.
var fencePattern = regexp.MustCompile("(?m)^[ ]{0,3}(`{3,}|~{3,})")

// emptyMarkers are section bodies the backend emits when a domain had nothing.
var emptyMarkers = []string{
	"(none)",
	"(empty)",
	"none",
	"n/a",
	"no items",
	"nothing to report",
	"-",
}

// Outline lists the headings of a markdown summary in order. Headings inside
// fenced code blocks are skipped. Returns nil for text without headings.
func Outline(text string) []Heading {
	matches := headingPattern.FindAllStringSubmatchIndex(text, -1)
	if len(matches) == 0 {
		return nil
	}

	fences := fencedRanges(text)
	kept := matches[:0:0]
	for _, m := range matches {
		if !insideFence(m[0], fences) {
			kept = append(kept, m)
		}
	}
	if len(kept) == 0 {
		return nil
	}

	seen := make(map[string]bool)
	out := make([]Heading, len(kept))
	for i, m := range kept {
		// m: [fullStart, fullEnd, hashStart, hashEnd, textStart, textEnd]
		bodyStart := m[1]
		bodyEnd := len(text)
		if i+1 < len(kept) {
			bodyEnd = kept[i+1][0]
		}
		body := ""
		if bodyStart < bodyEnd {
			body = text[bodyStart:bodyEnd]
		}

		title := text[m[4]:m[5]]
		anchor := Slug(title)
		if seen[anchor] {
			for n := 1; ; n++ {
				if c := anchor + "-" + strconv.Itoa(n); !seen[c] {
					anchor = c
					break
				}
			}
		}
		seen[anchor] = true

		out[i] = Heading{
			Level:  m[3] - m[2],
			Text:   title,
			Anchor: anchor,
			Empty:  isEmptyBody(body),
		}
	}
	return out
}

// Slug derives a heading anchor the same way goldmark's auto heading ids do:
// ASCII letters and digits are kept lowercased, each space, '-' or '_'
// becomes '-', and everything else is dropped.
func Slug(s string) string {
	var b strings.Builder
	for _, r := range strings.TrimSpace(s) {
		switch {
		case r >= 'A' && r <= 'Z':
			b.WriteRune(r + 'a' - 'A')
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == ' ', r == '\t', r == '-', r == '_':
			b.WriteByte('-')
		}
	}
	if b.Len() == 0 {
		return "heading"
	}
	return b.String()
}

func isEmptyBody(body string) bool {
	trimmed := strings.TrimSpace(body)
	if trimmed == "" {
		return true
	}
	return slices.Contains(emptyMarkers, strings.ToLower(trimmed))
}

// fencedRanges returns [start, end) byte ranges of fenced code blocks. A
// closing fence must use the opening character and be at least as long.
func fencedRanges(text string) [][2]int {
	matches := fencePattern.FindAllStringSubmatchIndex(text, -1)
	if len(matches) < 2 {
		return nil
	}

	var ranges [][2]int
	var openChar byte
	var openLen, openStart int
	inFence := false
	for _, m := range matches {
		fence := text[m[2]:m[3]]
		switch {
		case !inFence:
			openChar, openLen, openStart = fence[0], len(fence), m[0]
			inFence = true
		case fence[0] == openChar && len(fence) >= openLen:
			ranges = append(ranges, [2]int{openStart, m[1]})
			inFence = false
		}
	}
	return ranges
}

func insideFence(pos int, ranges [][2]int) bool {
	for _, r := range ranges {
		if pos >= r[0] && pos < r[1] {
			return true
		}
	}
	return false
}
