package sax

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type event struct {
	kind  string // "start", "end", "text"
	name  string
	attrs map[string]string
}

func collect(doc string) []event {
	var events []event
	Parse([]byte(doc), Handlers{
		StartElement: func(name string, attrs map[string]string) {
			events = append(events, event{kind: "start", name: name, attrs: attrs})
		},
		EndElement: func(name string) {
			events = append(events, event{kind: "end", name: name})
		},
		Text: func(text string) {
			events = append(events, event{kind: "text", name: text})
		},
	})
	return events
}

func TestParse_ElementsAndText(t *testing.T) {
	events := collect(`<root><c r="A1" t="s"><v>42</v></c></root>`)
	require.Len(t, events, 7)

	assert.Equal(t, event{kind: "start", name: "root", attrs: map[string]string{}}, events[0])
	assert.Equal(t, "c", events[1].name)
	assert.Equal(t, "A1", events[1].attrs["r"])
	assert.Equal(t, "s", events[1].attrs["t"])
	assert.Equal(t, event{kind: "text", name: "42"}, events[3])
	assert.Equal(t, event{kind: "end", name: "v"}, events[4])
	assert.Equal(t, event{kind: "end", name: "root"}, events[6])
}

func TestParse_SelfClosing(t *testing.T) {
	events := collect(`<mergeCell ref="A1:B2"/>`)
	require.Len(t, events, 2)
	assert.Equal(t, "start", events[0].kind)
	assert.Equal(t, "A1:B2", events[0].attrs["ref"])
	assert.Equal(t, "end", events[1].kind)
	assert.Equal(t, "mergeCell", events[1].name)
}

func TestParse_DeclarationIgnored(t *testing.T) {
	events := collect(`<?xml version="1.0" encoding="UTF-8"?><a/>`)
	require.Len(t, events, 2)
	assert.Equal(t, "a", events[0].name)
}

func TestParse_NamespacedAttributes(t *testing.T) {
	events := collect(`<sheet name="Data" sheetId="1" r:id="rId1"/>`)
	require.NotEmpty(t, events)
	assert.Equal(t, "rId1", events[0].attrs["r:id"])
	assert.Equal(t, "Data", events[0].attrs["name"])
}

func TestParse_Entities(t *testing.T) {
	events := collect(`<t>a &amp; b &lt;c&gt;</t>`)
	require.Len(t, events, 3)
	assert.Equal(t, "a & b <c>", events[1].name)
}

func TestParse_WhitespaceOnlyTextSkipped(t *testing.T) {
	events := collect("<a>\n  \t\n</a>")
	require.Len(t, events, 2)
	assert.Equal(t, "start", events[0].kind)
	assert.Equal(t, "end", events[1].kind)
}

func TestParse_AttributeValueWithSpaces(t *testing.T) {
	events := collect(`<definedName name="My Range">Sheet1!$A$1</definedName>`)
	require.Len(t, events, 3)
	assert.Equal(t, "My Range", events[0].attrs["name"])
	assert.Equal(t, "Sheet1!$A$1", events[1].name)
}
