package billingresp

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFallback_RecoversAuxCodeFromErrorDocument(t *testing.T) {
	raw := `<?xml version="1.0" encoding="UTF-8"?>
<error id="73542" code="404" auxCode="planCode:NotFound">Plan not found</error>`
	res := New(Payload{StatusCode: 404, Body: nil, RawBody: raw})

	require.True(t, res.Recovered())
	require.False(t, res.Valid())
	errs := res.Errors()
	require.Len(t, errs, 1)
	assert.Equal(t, "Plan not found", errs[0].Get(KeyText).String())
	assert.Equal(t, "planCode", errs[0].Get(KeyFieldName).String())
	assert.Equal(t, "NotFound", errs[0].Get(KeyErrorType).String())
	assert.Equal(t, "404", errs[0].Get(KeyCode).String())
	assert.Equal(t, []string{"Plan not found: planCode"}, res.ErrorMessages())
}

func TestFallback_EmbeddedErrorList(t *testing.T) {
	raw := `<?xml version="1.0" encoding="UTF-8"?>
<customers>
  <errors>
    <error id="1" code="400" auxCode="email:invalid">Invalid email</error>
    <error id="2" code="400" auxCode="">Missing name</error>
  </errors>
</customers>`
	res := New(Payload{StatusCode: 400, Body: map[string]any{"unparsed": true}, RawBody: raw})

	require.True(t, res.Recovered())
	assert.Equal(t, []string{"Invalid email: email", "Missing name"}, res.ErrorMessages())
	errs := res.Errors()
	require.Len(t, errs, 2)
	assert.Equal(t, "invalid", errs[0].Get(KeyErrorType).String())
	assert.True(t, errs[1].Get(KeyFieldName).IsNull())
	// the structured body is discarded, not merged
	assert.False(t, res.Tree().Has("unparsed"))
}

func TestFallback_ErrorFragmentInsideMalformedBody(t *testing.T) {
	raw := `Gateway trouble: <error code="502" auxCode="gateway:Timeout">Upstream timed out</error> (retry later)`
	res := New(Payload{StatusCode: 502, RawBody: raw})

	require.True(t, res.Recovered())
	require.Len(t, res.Errors(), 1)
	assert.Equal(t, "gateway", res.Errors()[0].Get(KeyFieldName).String())
	assert.Equal(t, "Timeout", res.Errors()[0].Get(KeyErrorType).String())
}

func TestFallback_KeepsPrimaryTreeWhenRawBodyIsNotXML(t *testing.T) {
	body := `{"errors":{"error":{"text":"Customer not found","auxCode":"code:NotFound"}}}`
	res := New(Payload{StatusCode: 404, Body: decode(t, body), RawBody: body})

	require.False(t, res.Recovered())
	require.False(t, res.Valid())
	require.Len(t, res.Errors(), 1)
	assert.Equal(t, []string{"Customer not found"}, res.ErrorMessages())
	// auxCode is only split on the recovery path
	assert.True(t, res.Errors()[0].Get(KeyFieldName).IsNull())
}

func TestFallback_JSONErrorQuotingMarkupKeepsErrors(t *testing.T) {
	body := `{"errors":{"error":{"text":"Field <b>planCode</b> is invalid","auxCode":"planCode:invalid"}}}`
	res := New(Payload{StatusCode: 400, Body: decode(t, body), RawBody: body})

	require.False(t, res.Recovered())
	require.False(t, res.Valid())
	assert.Equal(t, []string{"Field <b>planCode</b> is invalid"}, res.ErrorMessages())
	assert.False(t, res.Tree().Has("b"))
}

func TestFallback_DocumentWithByteOrderMark(t *testing.T) {
	raw := "\ufeff<?xml version=\"1.0\" encoding=\"UTF-8\"?>\n<error code=\"500\" auxCode=\"\">Internal error</error>"
	res := New(Payload{StatusCode: 500, RawBody: raw})

	require.True(t, res.Recovered())
	assert.Equal(t, []string{"Internal error"}, res.ErrorMessages())
}

func TestFallback_EmptyRawBody(t *testing.T) {
	res := New(Payload{StatusCode: 500})
	assert.False(t, res.Recovered())
	assert.False(t, res.Valid())
	assert.Empty(t, res.Errors())
	assert.Empty(t, res.ErrorMessages())
}

func TestFallback_AbsentBodyWithXMLSuccessDocument(t *testing.T) {
	raw := `<?xml version="1.0" encoding="UTF-8"?>
<plans>
  <plan id="p-1" code="PRO">
    <name>Pro</name>
    <isActive>1</isActive>
    <setupChargeAmount>0.00</setupChargeAmount>
    <items>
      <item id="i-1" code="SEATS"><includedQuantity>100</includedQuantity></item>
    </items>
  </plan>
</plans>`
	res := New(Payload{StatusCode: 200, RawBody: raw})

	require.True(t, res.Recovered())
	require.True(t, res.Valid())
	plan, err := res.Plan("")
	require.NoError(t, err)
	assert.Equal(t, "PRO", plan.Get(KeyCode).String())
	assert.True(t, plan.Get("isActive").Bool())
	items, err := res.PlanItems("")
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.InDelta(t, 100, items[0].Get(KeyIncludedQuantity).Float(), 1e-9)
}

func TestRewriteErrorMarkup(t *testing.T) {
	in := `<errors><error code="1">first</error><error code="2"/></errors>`
	out := rewriteErrorMarkup(in)
	assert.Equal(t, `<errors><error code="1"><text>first</text></error><error code="2"/></errors>`, out)
	assert.Equal(t, out, rewriteErrorMarkup(out))
}

func TestParseFallbackXML_RepeatedChildrenBecomeList(t *testing.T) {
	out := parseFallbackXML(`<customers><customer code="a"/><customer code="b"/><customer code="c"/></customers>`)
	require.NotNil(t, out)
	customers, ok := out["customers"].(map[string]any)
	require.True(t, ok)
	list, ok := customers["customer"].([]any)
	require.True(t, ok)
	assert.Len(t, list, 3)

	assert.Nil(t, parseFallbackXML(`{"json": true}`))
	assert.Nil(t, parseFallbackXML(""))
}
