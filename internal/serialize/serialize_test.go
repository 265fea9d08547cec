package serialize

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"
)

type point struct{ x, y float64 }

func (p point) Serialize(indent int) string {
	return NewObject().Float("x", p.x).Float("y", p.y).Serialize(indent)
}

func TestFloat(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{1000, "1000"},
		{0.5, "0.5"},
		{-0.3, "-0.3"},
		{math.Copysign(0, -1), "0"},
		{100000, "100000"},
		{1e-7, "1e-07"},
	}
	for _, tt := range tests {
		if got := Float(tt.in); got != tt.want {
			t.Errorf("Float(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestQuote(t *testing.T) {
	if got := Quote(`a "b" <c>`); got != `"a \"b\" <c>"` {
		t.Errorf("Quote = %s", got)
	}
}

func TestObjectLayout(t *testing.T) {
	obj := NewObject().
		Int("dimensions", 3).
		Ints("resolution", []int{10, 10, 10}).
		Child("origin", point{1, 2}).
		Rows("anchors", [][]float64{{0, 1, 2}, {3, 4, 5}}).
		List("points", []Serializable{point{0, 0}, point{1, 1}}).
		Strings("refs", []string{"f_0"})

	want := `{
    "dimensions": 3,
    "resolution": [10, 10, 10],
    "origin": {
      "x": 1,
      "y": 2
    },
    "anchors": [
      [0, 1, 2],
      [3, 4, 5]
    ],
    "points": [
      {
        "x": 0,
        "y": 0
      },
      {
        "x": 1,
        "y": 1
      }
    ],
    "refs": ["f_0"]
  }`
	if diff := cmp.Diff(want, obj.Serialize(4)); diff != "" {
		t.Errorf("Serialize(4) mismatch (-want +got):\n%s", diff)
	}

	var decoded map[string]any
	if err := json.Unmarshal([]byte(obj.Serialize(2)), &decoded); err != nil {
		t.Fatalf("rendered object is not valid JSON: %v", err)
	}
}

func TestEmptyContainers(t *testing.T) {
	obj := NewObject().List("items", nil).Rows("rows", nil)
	want := "{\n  \"items\": [],\n  \"rows\": []\n}"
	if diff := cmp.Diff(want, obj.Serialize(2)); diff != "" {
		t.Errorf("mismatch (-want +got):\n%s", diff)
	}
	if got := NewObject().Serialize(2); got != "{}" {
		t.Errorf("empty object = %q", got)
	}
}

func TestJoinItems(t *testing.T) {
	got := JoinItems([]Serializable{point{1, 2}}, 4)
	want := "  {\n    \"x\": 1,\n    \"y\": 2\n  }"
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("mismatch (-want +got):\n%s", diff)
	}
}

func TestElement(t *testing.T) {
	root := NewElement("fiberfox",
		NewElement("size", Leaf("x", "10"), Leaf("y", "20")),
		Leaf("note", "a<b"),
	)
	want := `<?xml version="1.0" encoding="utf-8"?>
<fiberfox>
  <size>
    <x>10</x>
    <y>20</y>
  </size>
  <note>a&lt;b</note>
</fiberfox>
`
	if diff := cmp.Diff(want, Document(root)); diff != "" {
		t.Errorf("mismatch (-want +got):\n%s", diff)
	}
}
