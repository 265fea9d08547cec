package serialize

import (
	"bytes"
	"encoding/xml"
	"strings"
)

// XMLHeader is the declaration line written before a root element.
const XMLHeader = `<?xml version="1.0" encoding="utf-8"?>`

// Element is a node of an XML-like parameter document. Tag names are written
// verbatim, which permits the numeric tags used for indexed lists.
type Element struct {
	Name     string
	Text     string
	Children []*Element
}

// NewElement returns a container element.
func NewElement(name string, children ...*Element) *Element {
	return &Element{Name: name, Children: children}
}

// Leaf returns an element holding text.
func Leaf(name, text string) *Element {
	return &Element{Name: name, Text: text}
}

// Add appends children and returns e.
func (e *Element) Add(children ...*Element) *Element {
	e.Children = append(e.Children, children...)
	return e
}

// Serialize renders the element with its opening tag at indent.
// Children are placed two columns further right.
func (e *Element) Serialize(indent int) string {
	if len(e.Children) == 0 {
		return Pad(indent) + "<" + e.Name + ">" + escape(e.Text) + "</" + e.Name + ">"
	}
	lines := make([]string, 0, len(e.Children)+2)
	lines = append(lines, Pad(indent)+"<"+e.Name+">")
	for _, c := range e.Children {
		lines = append(lines, c.Serialize(indent+2))
	}
	lines = append(lines, Pad(indent)+"</"+e.Name+">")
	return strings.Join(lines, "\n")
}

// Document renders root preceded by the XML declaration, with a trailing newline.
func Document(root *Element) string {
	return XMLHeader + "\n" + root.Serialize(0) + "\n"
}

func escape(s string) string {
	var buf bytes.Buffer
	// Writes to a bytes.Buffer cannot fail.
	_ = xml.EscapeText(&buf, []byte(s))
	return buf.String()
}
