package billingresp

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/r9s-ai/open-billing-client/pkg/jsonutil"
)

// Normalize turns a decoded body into the canonical tree. It never fails:
// anything it cannot make sense of degrades to empty structures or unmodified scalars.
// The stages run in a fixed order, each over the whole tree.
func Normalize(body any, d *Dialect) Node {
	if d == nil {
		d = defaultDialect
	}
	tree := CanonicalizeKeys(body)
	tree = ReduceErrors(tree)
	tree = FixArrays(tree, d)
	return CoerceTypes(tree, d)
}

// CanonicalizeKeys converts a decoded value (maps, slices, scalars) into a Node tree with
// identifier keys.
func CanonicalizeKeys(raw any) Node {
	switch t := raw.(type) {
	case nil:
		return Null()
	case Node:
		return t
	case map[string]any:
		fields := make(map[Key]Node, len(t))
		for k, v := range t {
			fields[canonicalKey(k)] = CanonicalizeKeys(v)
		}
		return NewMap(fields)
	case map[any]any:
		return canonicalizeAnyKeys(t)
	case []any:
		items := make([]Node, len(t))
		for i, v := range t {
			items[i] = CanonicalizeKeys(v)
		}
		return NewSeq(items...)
	case []map[string]any:
		items := make([]Node, len(t))
		for i, v := range t {
			items[i] = CanonicalizeKeys(v)
		}
		return NewSeq(items...)
	case string:
		return Str(t)
	case bool:
		return Bool(t)
	case float64:
		return Float(t)
	case float32:
		return Float(float64(t))
	case int:
		return Int(int64(t))
	case int64:
		return Int(t)
	case int32:
		return Int(int64(t))
	case json.Number:
		if i, err := t.Int64(); err == nil {
			return Int(i)
		}
		return Float(jsonutil.CoerceFloat(t))
	case time.Time:
		return DateTime(t)
	default:
		return Str(fmt.Sprint(t))
	}
}

// canonicalKey keeps the key text exactly as decoded, so distinct wire keys never share a slot.
func canonicalKey(raw string) Key {
	return Key(raw)
}

// canonicalizeAnyKeys handles maps from decoders that produce non-string keys. Keys that render
// to the same text are resolved in a fixed order: non-string keys sorted by type, then string
// keys, so the result does not depend on map iteration order.
func canonicalizeAnyKeys(t map[any]any) Node {
	type entry struct {
		key   string
		typ   string
		value any
	}
	entries := make([]entry, 0, len(t))
	for k, v := range t {
		e := entry{key: fmt.Sprint(k), typ: fmt.Sprintf("%T", k), value: v}
		if _, ok := k.(string); ok {
			e.typ = "~string"
		}
		entries = append(entries, e)
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].key != entries[j].key {
			return entries[i].key < entries[j].key
		}
		return entries[i].typ < entries[j].typ
	})
	fields := make(map[Key]Node, len(entries))
	for _, e := range entries {
		fields[canonicalKey(e.key)] = CanonicalizeKeys(e.value)
	}
	return NewMap(fields)
}

// ReduceErrors hoists every error entry into the root "errors" sequence.
// Sources, in order: root "errors" container, root "error", then the same two inside the
// embedded "customers" (or else "plans") map.
func ReduceErrors(root Node) Node {
	if !root.IsMap() {
		root = NewMap(nil)
	}
	root, collected := extractErrors(root, nil)
	for _, k := range []Key{KeyCustomers, KeyPlans} {
		embedded := root.Get(k)
		if !embedded.IsMap() {
			continue
		}
		embedded, collected = extractErrors(embedded, collected)
		root = root.With(k, embedded)
		break
	}
	return root.With(KeyErrors, NewSeq(collected...))
}

func extractErrors(m Node, out []Node) (Node, []Node) {
	plural := m.Get(KeyErrors)
	singular := m.Get(KeyError)
	m = m.Without(KeyErrors).Without(KeyError)

	switch {
	case plural.IsMap() && plural.Has(KeyError):
		out = appendErrors(out, plural.Get(KeyError))
	default:
		out = appendErrors(out, plural)
	}
	return m, appendErrors(out, singular)
}

func appendErrors(out []Node, v Node) []Node {
	switch v.Kind() {
	case KindNull:
		return out
	case KindSeq:
		for _, it := range v.items {
			out = appendErrors(out, it)
		}
		return out
	case KindMap:
		if v.Len() == 0 {
			return out
		}
		return append(out, v)
	default:
		text := strings.TrimSpace(v.String())
		if text == "" {
			return out
		}
		return append(out, NewMap(map[Key]Node{KeyText: Str(text)}))
	}
}

// FixArrays rewrites collections that the wire collapsed into a singular wrapper
// ({"plans": {"plan": {...}}}) into sequences. Already-fixed trees are returned unchanged.
func FixArrays(n Node, d *Dialect) Node {
	if d == nil {
		d = defaultDialect
	}
	switch n.Kind() {
	case KindMap:
		fields := make(map[Key]Node, len(n.fields))
		for k, v := range n.fields {
			if singular, ok := d.Singular(k); ok {
				v = unwrapCollection(v, singular)
			}
			fields[k] = FixArrays(v, d)
		}
		return NewMap(fields)
	case KindSeq:
		items := make([]Node, len(n.items))
		for i, v := range n.items {
			items[i] = FixArrays(v, d)
		}
		return NewSeq(items...)
	default:
		return n
	}
}

func unwrapCollection(v Node, singular Key) Node {
	switch v.Kind() {
	case KindNull:
		return NewSeq()
	case KindString:
		if strings.TrimSpace(v.str) == "" {
			return NewSeq()
		}
	case KindMap:
		if v.Len() == 0 {
			return NewSeq()
		}
		if v.Len() != 1 || !v.Has(singular) {
			return v
		}
		inner := v.Get(singular)
		switch inner.Kind() {
		case KindSeq:
			return inner
		case KindNull:
			return NewSeq()
		default:
			return NewSeq(inner)
		}
	}
	return v
}

// CoerceTypes converts string leaves under typed fields to their semantic type.
func CoerceTypes(n Node, d *Dialect) Node {
	if d == nil {
		d = defaultDialect
	}
	switch n.Kind() {
	case KindMap:
		fields := make(map[Key]Node, len(n.fields))
		for k, v := range n.fields {
			if ft, ok := d.FieldType(k); ok && v.Kind() == KindString {
				fields[k] = coerceLeaf(v.str, ft)
				continue
			}
			fields[k] = CoerceTypes(v, d)
		}
		return NewMap(fields)
	case KindSeq:
		items := make([]Node, len(n.items))
		for i, v := range n.items {
			items[i] = CoerceTypes(v, d)
		}
		return NewSeq(items...)
	default:
		return n
	}
}
