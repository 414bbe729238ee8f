package dita

import (
	"bytes"
	"encoding/xml"
	"strings"
)

// elem is a minimal XML element tree for emitting DITA documents. Topic
// bodies are mixed content (text interleaved with inline markup), which
// encoding/xml struct marshaling cannot express, so serialization is done by
// hand with proper escaping.
type elem struct {
	name     string
	attrs    []xml.Attr
	children []any // *elem or string (character data)
}

func el(name string, attrPairs ...string) *elem {
	e := &elem{name: name}
	for i := 0; i+1 < len(attrPairs); i += 2 {
		e.attrs = append(e.attrs, xml.Attr{
			Name:  xml.Name{Local: attrPairs[i]},
			Value: attrPairs[i+1],
		})
	}
	return e
}

// add appends child elements and/or text nodes and returns the receiver.
func (e *elem) add(children ...any) *elem {
	e.children = append(e.children, children...)
	return e
}

func (e *elem) render(buf *bytes.Buffer, indent int) {
	pad := strings.Repeat("  ", indent)
	buf.WriteString(pad)
	buf.WriteByte('<')
	buf.WriteString(e.name)
	for _, a := range e.attrs {
		buf.WriteByte(' ')
		buf.WriteString(a.Name.Local)
		buf.WriteString(`="`)
		xml.EscapeText(buf, []byte(a.Value))
		buf.WriteByte('"')
	}
	if len(e.children) == 0 {
		buf.WriteString("/>\n")
		return
	}

	// Elements with any text child render inline on one line, preserving
	// the exact interleaving of text and inline markup.
	if e.hasText() {
		buf.WriteByte('>')
		e.renderInline(buf)
		buf.WriteString("</")
		buf.WriteString(e.name)
		buf.WriteString(">\n")
		return
	}

	buf.WriteString(">\n")
	for _, c := range e.children {
		if child, ok := c.(*elem); ok {
			child.render(buf, indent+1)
		}
	}
	buf.WriteString(pad)
	buf.WriteString("</")
	buf.WriteString(e.name)
	buf.WriteString(">\n")
}

func (e *elem) renderInline(buf *bytes.Buffer) {
	for _, c := range e.children {
		switch c := c.(type) {
		case string:
			xml.EscapeText(buf, []byte(c))
		case *elem:
			buf.WriteByte('<')
			buf.WriteString(c.name)
			for _, a := range c.attrs {
				buf.WriteByte(' ')
				buf.WriteString(a.Name.Local)
				buf.WriteString(`="`)
				xml.EscapeText(buf, []byte(a.Value))
				buf.WriteByte('"')
			}
			if len(c.children) == 0 {
				buf.WriteString("/>")
				continue
			}
			buf.WriteByte('>')
			c.renderInline(buf)
			buf.WriteString("</")
			buf.WriteString(c.name)
			buf.WriteByte('>')
		}
	}
}

func (e *elem) hasText() bool {
	for _, c := range e.children {
		if _, ok := c.(string); ok {
			return true
		}
	}
	return false
}

// document renders a complete XML file with declaration and doctype.
func document(doctype string, root *elem) []byte {
	var buf bytes.Buffer
	buf.WriteString(`<?xml version="1.0" encoding="UTF-8"?>` + "\n")
	if doctype != "" {
		buf.WriteString(doctype + "\n")
	}
	root.render(&buf, 0)
	return buf.Bytes()
}
