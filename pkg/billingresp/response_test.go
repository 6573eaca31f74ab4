package billingresp

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResponse_ValidRequiresNoErrorsAndStatusBelow400(t *testing.T) {
	withError := map[string]any{"error": map[string]any{"text": "boom"}}
	clean := map[string]any{"plans": map[string]any{"plan": map[string]any{"code": "p1"}}}

	cases := []struct {
		status int
		body   map[string]any
		want   bool
	}{
		{200, clean, true},
		{399, clean, true},
		{400, clean, false},
		{500, clean, false},
		{200, withError, false},
		{404, withError, false},
	}
	for _, tc := range cases {
		t.Run(fmt.Sprintf("status=%d/valid=%t", tc.status, tc.want), func(t *testing.T) {
			res := New(Payload{StatusCode: tc.status, Body: tc.body})
			require.Equal(t, tc.want, res.Valid())
			require.Equal(t, tc.want, len(res.Errors()) == 0 && res.StatusCode() < 400)
		})
	}
}

func TestResponse_ErrorMessagesAppendFieldName(t *testing.T) {
	res := New(Payload{StatusCode: 400, Body: map[string]any{
		"errors": map[string]any{"error": []any{
			map[string]any{"text": "Invalid code", "fieldName": "planCode"},
			map[string]any{"text": "Try again"},
		}},
	}})
	require.Equal(t, []string{"Invalid code: planCode", "Try again"}, res.ErrorMessages())
	require.False(t, res.Recovered())
}

func TestResponse_ValidBodySkipsFallback(t *testing.T) {
	res := New(Payload{StatusCode: 200, Body: decode(t, plansBody), RawBody: `<error>should not be read</error>`})
	require.True(t, res.Valid())
	require.False(t, res.Recovered())
	require.Equal(t, 2, res.Get(KeyPlans).Len())
}

func TestResponse_GetAndLookup(t *testing.T) {
	res := newTestResponse(t, twoCustomersBody)

	assert.Equal(t, 2, res.Get(KeyCustomers).Len())
	assert.True(t, res.Get("missing").IsNull())
	assert.Equal(t, []string{"A", "B"}, codes(res.Lookup("$.customers[*]"), KeyCode))

	plans := res.Lookup("$.customers[1].subscriptions[0].plans[0].code")
	require.Len(t, plans, 1)
	assert.Equal(t, "FREE", plans[0].String())

	assert.Nil(t, res.Lookup("$.customers[5]"))
	assert.Nil(t, res.Lookup("customers"))
	assert.Len(t, res.Lookup("$"), 1)
}

func TestResponse_ClockDefaultsToWallTime(t *testing.T) {
	res := New(Payload{StatusCode: 200})
	assert.WithinDuration(t, time.Now(), res.now(), time.Minute)

	fixed := New(Payload{StatusCode: 200}, WithClock(func() time.Time { return fixedNow }), WithClock(nil))
	assert.Equal(t, fixedNow, fixed.now())
}

func TestResponse_CustomDialectIsUsed(t *testing.T) {
	d := NewDialect(map[Key]Key{"widgets": "widget"}, map[Key]FieldType{"weight": TypeFloat})
	res := New(Payload{StatusCode: 200, Body: map[string]any{
		"widgets": map[string]any{"widget": map[string]any{"code": "w1", "weight": "1.5"}},
	}}, WithDialect(d))

	w, err := Retrieve(res.Tree(), "widgets", "")
	require.NoError(t, err)
	assert.Equal(t, KindFloat, w.Get("weight").Kind())
	assert.Equal(t, 1.5, w.Get("weight").Float())
}
