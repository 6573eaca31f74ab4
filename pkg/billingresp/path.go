package billingresp

import (
	"strconv"
	"strings"
)

// Lookup reads values from a restricted JSONPath subset.
// Supported syntax:
// - $.a.b.c
// - $.items[0].x
// - $.items[*].x (every matched element)
//
// A path that does not match yields nil.
func (n Node) Lookup(path string) []Node {
	p := strings.TrimSpace(path)
	if p == "$" {
		return []Node{n}
	}
	if p == "" || !strings.HasPrefix(p, "$.") {
		return nil
	}
	parts := strings.Split(strings.TrimPrefix(p, "$."), ".")
	vals, ok := collectPathValues(n, parts)
	if !ok {
		return nil
	}
	return vals
}

func collectPathValues(cur Node, parts []string) ([]Node, bool) {
	if len(parts) == 0 {
		return []Node{cur}, true
	}
	part := strings.TrimSpace(parts[0])
	if part == "" {
		return nil, false
	}
	name, idx, hasIdx, isStar := splitIndex(part)
	if name != "" {
		if !cur.Has(Key(name)) {
			return nil, false
		}
		cur = cur.Get(Key(name))
	}
	rest := parts[1:]
	if !hasIdx {
		return collectPathValues(cur, rest)
	}
	if !cur.IsSeq() {
		return nil, false
	}
	if isStar {
		out := make([]Node, 0, cur.Len())
		if len(rest) == 0 {
			out = append(out, cur.items...)
			return out, true
		}
		for _, item := range cur.items {
			vals, ok := collectPathValues(item, rest)
			if !ok {
				continue
			}
			out = append(out, vals...)
		}
		return out, true
	}
	if idx < 0 || idx >= cur.Len() {
		return nil, false
	}
	return collectPathValues(cur.items[idx], rest)
}

func splitIndex(s string) (name string, idx int, hasIdx bool, isStar bool) {
	open := strings.IndexByte(s, '[')
	if open < 0 {
		return s, 0, false, false
	}
	close := strings.IndexByte(s, ']')
	if close < 0 || close < open {
		return s, 0, false, false
	}
	name = s[:open]
	inner := strings.TrimSpace(s[open+1 : close])
	if inner == "*" {
		return name, 0, true, true
	}
	n, err := strconv.Atoi(inner)
	if err != nil {
		return name, 0, false, false
	}
	return name, n, true, false
}
