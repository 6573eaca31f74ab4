package billingresp

import (
	"fmt"
	"sort"
	"strconv"
	"time"

	"github.com/r9s-ai/open-billing-client/pkg/jsonutil"
)

// Kind tags the variant held by a Node.
type Kind uint8

const (
	KindNull Kind = iota
	KindMap
	KindSeq
	KindString
	KindBool
	KindInt
	KindFloat
	KindDate
	KindDateTime
)

func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindMap:
		return "map"
	case KindSeq:
		return "seq"
	case KindString:
		return "string"
	case KindBool:
		return "bool"
	case KindInt:
		return "int"
	case KindFloat:
		return "float"
	case KindDate:
		return "date"
	case KindDateTime:
		return "datetime"
	default:
		return "kind(" + strconv.Itoa(int(k)) + ")"
	}
}

// Key is a canonical map key.
type Key string

// Node is one element of the canonical tree: a map, a sequence or a scalar.
// The zero value is the null node. Readers never panic; asking a node for a
// variant it does not hold returns that variant's zero value.
type Node struct {
	kind   Kind
	fields map[Key]Node
	items  []Node
	str    string
	b      bool
	i      int64
	f      float64
	t      time.Time
}

func Null() Node { return Node{} }
func Str(s string) Node { return Node{kind: KindString, str: s} }
func Bool(b bool) Node { return Node{kind: KindBool, b: b} }
func Int(i int64) Node { return Node{kind: KindInt, i: i} }
func Float(f float64) Node { return Node{kind: KindFloat, f: f} }
func Date(t time.Time) Node { return Node{kind: KindDate, t: t} }
func DateTime(t time.Time) Node { return Node{kind: KindDateTime, t: t} }

// NewMap wraps fields in a map node. A nil map yields an empty map node.
func NewMap(fields map[Key]Node) Node {
	if fields == nil {
		fields = map[Key]Node{}
	}
	return Node{kind: KindMap, fields: fields}
}

// NewSeq wraps items in a sequence node. A nil slice yields an empty sequence.
func NewSeq(items ...Node) Node {
	if items == nil {
		items = []Node{}
	}
	return Node{kind: KindSeq, items: items}
}

func (n Node) Kind() Kind { return n.kind }
func (n Node) IsNull() bool { return n.kind == KindNull }
func (n Node) IsMap() bool { return n.kind == KindMap }
func (n Node) IsSeq() bool { return n.kind == KindSeq }
func (n Node) IsTime() bool { return n.kind == KindDate || n.kind == KindDateTime }
func (n Node) IsScalar() bool {
	return n.kind != KindMap && n.kind != KindSeq && n.kind != KindNull
}

// Get returns the child under k, or the null node.
func (n Node) Get(k Key) Node {
	if n.kind != KindMap {
		return Node{}
	}
	return n.fields[k]
}

// Has reports whether a map node carries k, even when the value is null.
func (n Node) Has(k Key) bool {
	if n.kind != KindMap {
		return false
	}
	_, ok := n.fields[k]
	return ok
}

// Keys returns the map keys in sorted order.
func (n Node) Keys() []Key {
	if n.kind != KindMap {
		return nil
	}
	keys := make([]Key, 0, len(n.fields))
	for k := range n.fields {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	return keys
}

// Fields returns a copy of the map entries.
func (n Node) Fields() map[Key]Node {
	if n.kind != KindMap {
		return nil
	}
	out := make(map[Key]Node, len(n.fields))
	for k, v := range n.fields {
		out[k] = v
	}
	return out
}

// Items returns a copy of the sequence elements.
func (n Node) Items() []Node {
	if n.kind != KindSeq {
		return nil
	}
	out := make([]Node, len(n.items))
	copy(out, n.items)
	return out
}

// Index returns the i-th element of a sequence, or the null node.
func (n Node) Index(i int) Node {
	if n.kind != KindSeq || i < 0 || i >= len(n.items) {
		return Node{}
	}
	return n.items[i]
}

// Len is the number of entries of a map or elements of a sequence.
func (n Node) Len() int {
	switch n.kind {
	case KindMap:
		return len(n.fields)
	case KindSeq:
		return len(n.items)
	default:
		return 0
	}
}

// With returns a copy of a map node with k set to v. Non-map nodes become a one-entry map.
func (n Node) With(k Key, v Node) Node {
	fields := n.Fields()
	if fields == nil {
		fields = map[Key]Node{}
	}
	fields[k] = v
	return NewMap(fields)
}

// Without returns a copy of a map node without k.
func (n Node) Without(k Key) Node {
	if n.kind != KindMap {
		return n
	}
	fields := n.Fields()
	delete(fields, k)
	return NewMap(fields)
}

// String renders a scalar the way it would appear on the wire. Maps and sequences render as "".
func (n Node) String() string {
	switch n.kind {
	case KindString:
		return n.str
	case KindBool:
		return strconv.FormatBool(n.b)
	case KindInt:
		return strconv.FormatInt(n.i, 10)
	case KindFloat:
		return strconv.FormatFloat(n.f, 'f', -1, 64)
	case KindDate:
		return n.t.Format(time.DateOnly)
	case KindDateTime:
		return n.t.Format(time.RFC3339)
	default:
		return ""
	}
}

func (n Node) Bool() bool {
	switch n.kind {
	case KindBool:
		return n.b
	case KindInt:
		return n.i != 0
	case KindFloat:
		return n.f != 0
	case KindString:
		return jsonutil.CoerceBool(n.str)
	default:
		return false
	}
}

func (n Node) Int() int64 {
	switch n.kind {
	case KindInt:
		return n.i
	case KindFloat:
		return int64(n.f)
	case KindBool:
		return jsonutil.CoerceInt(n.b)
	case KindString:
		return jsonutil.CoerceInt(n.str)
	default:
		return 0
	}
}

func (n Node) Float() float64 {
	switch n.kind {
	case KindFloat:
		return n.f
	case KindInt:
		return float64(n.i)
	case KindBool:
		return jsonutil.CoerceFloat(n.b)
	case KindString:
		return jsonutil.CoerceFloat(n.str)
	default:
		return 0
	}
}

// Time returns the value of a date or datetime node.
func (n Node) Time() (time.Time, bool) {
	if !n.IsTime() {
		return time.Time{}, false
	}
	return n.t, true
}

// Equal reports deep equality of two trees.
func (n Node) Equal(o Node) bool {
	if n.kind != o.kind {
		return false
	}
	switch n.kind {
	case KindNull:
		return true
	case KindMap:
		if len(n.fields) != len(o.fields) {
			return false
		}
		for k, v := range n.fields {
			ov, ok := o.fields[k]
			if !ok || !v.Equal(ov) {
				return false
			}
		}
		return true
	case KindSeq:
		if len(n.items) != len(o.items) {
			return false
		}
		for i := range n.items {
			if !n.items[i].Equal(o.items[i]) {
				return false
			}
		}
		return true
	case KindString:
		return n.str == o.str
	case KindBool:
		return n.b == o.b
	case KindInt:
		return n.i == o.i
	case KindFloat:
		return n.f == o.f
	default:
		return n.t.Equal(o.t)
	}
}

// Interface converts the tree back to plain Go values (map[string]any, []any, scalars),
// suitable for JSON encoding.
func (n Node) Interface() any {
	switch n.kind {
	case KindMap:
		out := make(map[string]any, len(n.fields))
		for k, v := range n.fields {
			out[string(k)] = v.Interface()
		}
		return out
	case KindSeq:
		out := make([]any, len(n.items))
		for i, v := range n.items {
			out[i] = v.Interface()
		}
		return out
	case KindString:
		return n.str
	case KindBool:
		return n.b
	case KindInt:
		return n.i
	case KindFloat:
		return n.f
	case KindDate, KindDateTime:
		return n.String()
	default:
		return nil
	}
}

// GoString makes %#v output readable in test failures.
func (n Node) GoString() string {
	return fmt.Sprintf("billingresp.Node(%s:%v)", n.kind, n.Interface())
}
