// Package sax is a single-pass, event-driven XML scanner for the xlsx
// package parts. It fires start/end/text callbacks in document order
// and retains no tree, which keeps multi-megabyte sheet parts streaming
// and memory-bounded. It is deliberately not a validating parser:
// CDATA, entities beyond the default set, and namespace semantics are
// out of scope, and unparseable fragments are skipped silently.
package sax

import (
	"regexp"
	"strings"
)

// Handlers receives parse events. Any handler may be nil.
type Handlers struct {
	StartElement func(name string, attrs map[string]string)
	EndElement   func(name string)
	Text         func(text string)
}

var attrPattern = regexp.MustCompile(`([A-Za-z_][\w:.-]*)\s*=\s*"([^"]*)"`)

// Parse scans the document once, switching between markup and text
// state on '<' and '>'. Self-closing elements fire both start and end;
// declarations and processing instructions are ignored. Text callbacks
// fire with trimmed content and never for whitespace-only runs.
func Parse(data []byte, h Handlers) {
	doc := string(data)
	inTag := false
	tagStart := 0
	textStart := 0

	for i := 0; i < len(doc); i++ {
		switch doc[i] {
		case '<':
			if text := strings.TrimSpace(doc[textStart:i]); text != "" && h.Text != nil {
				h.Text(decodeEntities(text))
			}
			inTag = true
			tagStart = i + 1
		case '>':
			if !inTag {
				continue
			}
			inTag = false
			textStart = i + 1
			emitTag(doc[tagStart:i], h)
		}
	}
}

func emitTag(tag string, h Handlers) {
	switch {
	case tag == "":
	case tag[0] == '/':
		if h.EndElement != nil {
			h.EndElement(strings.TrimSpace(tag[1:]))
		}
	case tag[0] == '?' || tag[0] == '!':
		// Declaration, processing instruction, comment, DOCTYPE.
	case strings.HasSuffix(tag, "/"):
		name, attrs := parseTag(tag[:len(tag)-1])
		if h.StartElement != nil {
			h.StartElement(name, attrs)
		}
		if h.EndElement != nil {
			h.EndElement(name)
		}
	default:
		name, attrs := parseTag(tag)
		if h.StartElement != nil {
			h.StartElement(name, attrs)
		}
	}
}

// parseTag splits tag content into an element name and its attributes.
func parseTag(content string) (string, map[string]string) {
	content = strings.TrimSpace(content)
	name := content
	if i := strings.IndexAny(content, " \t\r\n"); i >= 0 {
		name = content[:i]
	}

	attrs := map[string]string{}
	rest := content[len(name):]
	for _, m := range attrPattern.FindAllStringSubmatch(rest, -1) {
		attrs[m[1]] = decodeEntities(m[2])
	}
	return name, attrs
}

var entityReplacer = strings.NewReplacer(
	"&lt;", "<",
	"&gt;", ">",
	"&quot;", `"`,
	"&apos;", "'",
	"&amp;", "&",
)

func decodeEntities(s string) string {
	if !strings.Contains(s, "&") {
		return s
	}
	return entityReplacer.Replace(s)
}
