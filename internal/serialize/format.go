// Package serialize renders configuration objects into indentation-controlled
// text fragments.
//
// Fragments are plain strings. A parent document is assembled by
// concatenating the fragments of its children, each rendered at the
// indentation depth of the slot it is placed in, so that the byte layout of
// every emitted file is reproducible field for field.
package serialize

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"
)

// Serializable is implemented by every object that can render itself.
// For JSON-like objects, indent is the column of the object's fields; the
// closing brace sits two columns to the left.
type Serializable interface {
	Serialize(indent int) string
}

// Pad returns n spaces, or the empty string for n <= 0.
func Pad(n int) string {
	if n <= 0 {
		return ""
	}
	return strings.Repeat(" ", n)
}

// Float formats v in its shortest round-trippable form. Negative zero is
// written as 0.
func Float(v float64) string {
	if v == 0 {
		v = 0
	}
	return strconv.FormatFloat(v, 'g', -1, 64)
}

// Int formats v in base 10.
func Int(v int) string {
	return strconv.Itoa(v)
}

// Bool formats v as true or false.
func Bool(v bool) string {
	return strconv.FormatBool(v)
}

// Quote returns s as a JSON string literal. HTML characters are not escaped.
func Quote(s string) string {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	// Encoding a string cannot fail.
	_ = enc.Encode(s)
	return strings.TrimSuffix(buf.String(), "\n")
}

// Floats renders values inline, e.g. [0.5, -0.3, 0.5].
func Floats(values []float64) string {
	parts := make([]string, len(values))
	for i, v := range values {
		parts[i] = Float(v)
	}
	return "[" + strings.Join(parts, ", ") + "]"
}

// Ints renders values inline, e.g. [10, 10, 10].
func Ints(values []int) string {
	parts := make([]string, len(values))
	for i, v := range values {
		parts[i] = Int(v)
	}
	return "[" + strings.Join(parts, ", ") + "]"
}

// Strings renders values inline as quoted literals.
func Strings(values []string) string {
	parts := make([]string, len(values))
	for i, v := range values {
		parts[i] = Quote(v)
	}
	return "[" + strings.Join(parts, ", ") + "]"
}

// JoinItems renders each item at indent and places it on its own line,
// two columns to the left of its fields. Items are separated by ",\n".
func JoinItems(items []Serializable, indent int) string {
	parts := make([]string, len(items))
	for i, item := range items {
		parts[i] = Pad(indent-2) + item.Serialize(indent)
	}
	return strings.Join(parts, ",\n")
}
