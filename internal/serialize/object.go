package serialize

import "strings"

type field struct {
	key    string
	render func(indent int) string
}

// Object is an ordered set of keyed fields rendered as a JSON-like object.
// Field order is insertion order.
type Object struct {
	fields []field
}

// NewObject returns an empty object.
func NewObject() *Object {
	return &Object{}
}

func (o *Object) add(key string, render func(indent int) string) *Object {
	o.fields = append(o.fields, field{key: key, render: render})
	return o
}

func (o *Object) scalar(key, value string) *Object {
	return o.add(key, func(int) string { return value })
}

// Int adds an integer field.
func (o *Object) Int(key string, v int) *Object { return o.scalar(key, Int(v)) }

// Float adds a floating point field.
func (o *Object) Float(key string, v float64) *Object { return o.scalar(key, Float(v)) }

// Bool adds a boolean field.
func (o *Object) Bool(key string, v bool) *Object { return o.scalar(key, Bool(v)) }

// String adds a quoted string field.
func (o *Object) String(key, v string) *Object { return o.scalar(key, Quote(v)) }

// Ints adds an inline integer list.
func (o *Object) Ints(key string, v []int) *Object { return o.scalar(key, Ints(v)) }

// Floats adds an inline float list.
func (o *Object) Floats(key string, v []float64) *Object { return o.scalar(key, Floats(v)) }

// Strings adds an inline list of quoted strings.
func (o *Object) Strings(key string, v []string) *Object { return o.scalar(key, Strings(v)) }

// Rows adds a list with one inline float row per line.
func (o *Object) Rows(key string, rows [][]float64) *Object {
	return o.add(key, func(indent int) string {
		if len(rows) == 0 {
			return "[]"
		}
		lines := make([]string, len(rows))
		for i, row := range rows {
			lines[i] = Pad(indent+2) + Floats(row)
		}
		return "[\n" + strings.Join(lines, ",\n") + "\n" + Pad(indent) + "]"
	})
}

// Child adds a nested object rendered two columns right of this object's fields.
func (o *Object) Child(key string, s Serializable) *Object {
	return o.add(key, func(indent int) string { return s.Serialize(indent + 2) })
}

// List adds a multi-line list of nested objects.
func (o *Object) List(key string, items []Serializable) *Object {
	return o.add(key, func(indent int) string {
		if len(items) == 0 {
			return "[]"
		}
		return "[\n" + JoinItems(items, indent+4) + "\n" + Pad(indent) + "]"
	})
}

// Len reports the number of fields.
func (o *Object) Len() int { return len(o.fields) }

// Serialize renders the object with its fields at indent.
func (o *Object) Serialize(indent int) string {
	if len(o.fields) == 0 {
		return "{}"
	}
	var b strings.Builder
	b.WriteString("{\n")
	for i, f := range o.fields {
		b.WriteString(Pad(indent))
		b.WriteString(Quote(f.key))
		b.WriteString(": ")
		b.WriteString(f.render(indent))
		if i < len(o.fields)-1 {
			b.WriteString(",")
		}
		b.WriteString("\n")
	}
	b.WriteString(Pad(indent - 2))
	b.WriteString("}")
	return b.String()
}
