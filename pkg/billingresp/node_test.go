package billingresp

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNode_WithDoesNotAlias(t *testing.T) {
	orig := NewMap(map[Key]Node{KeyCode: Str("a"), KeyQuantity: Float(1)})
	changed := orig.With(KeyQuantity, Float(2)).Without(KeyCode)

	assert.Equal(t, 1.0, orig.Get(KeyQuantity).Float())
	assert.True(t, orig.Has(KeyCode))
	assert.Equal(t, 2.0, changed.Get(KeyQuantity).Float())
	assert.False(t, changed.Has(KeyCode))
}

func TestNode_ScalarRendering(t *testing.T) {
	ts := time.Date(2026, 3, 4, 5, 6, 7, 0, time.UTC)
	cases := map[string]struct {
		n    Node
		want string
	}{
		"string":   {Str("x"), "x"},
		"bool":     {Bool(true), "true"},
		"int":      {Int(-3), "-3"},
		"float":    {Float(2.5), "2.5"},
		"big":      {Float(1e21), "1000000000000000000000"},
		"date":     {Date(ts), "2026-03-04"},
		"datetime": {DateTime(ts), "2026-03-04T05:06:07Z"},
		"null":     {Null(), ""},
		"map":      {NewMap(nil), ""},
	}
	for name, tc := range cases {
		if got := tc.n.String(); got != tc.want {
			t.Fatalf("%s: String()=%q, want %q", name, got, tc.want)
		}
	}
}

func TestNode_EqualAndInterface(t *testing.T) {
	a := NewMap(map[Key]Node{
		KeyItems: NewSeq(Int(1), Str("two")),
		"when":   Date(time.Date(2026, 1, 2, 0, 0, 0, 0, time.UTC)),
	})
	b := CanonicalizeKeys(map[string]any{
		"items": []any{1, "two"},
		"when":  Date(time.Date(2026, 1, 2, 0, 0, 0, 0, time.UTC)),
	})
	require.True(t, a.Equal(b))
	require.False(t, a.Equal(a.With("extra", Null())))

	plain, ok := a.Interface().(map[string]any)
	require.True(t, ok)
	assert.Equal(t, []any{int64(1), "two"}, plain["items"])
	assert.Equal(t, "2026-01-02", plain["when"])
}

func TestNode_IndexAndItemsAreSafe(t *testing.T) {
	seq := NewSeq(Str("a"))
	assert.True(t, seq.Index(3).IsNull())
	assert.True(t, seq.Index(-1).IsNull())
	assert.True(t, Str("x").Index(0).IsNull())

	items := seq.Items()
	items[0] = Str("b")
	assert.Equal(t, "a", seq.Index(0).String())
}
