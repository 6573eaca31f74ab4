package billingresp

import (
	"testing"
	"time"

	json "github.com/goccy/go-json"
	"github.com/stretchr/testify/require"
)

const customerBody = `{
  "customers": {
    "customer": {
      "id": "c1",
      "code": "CUST-1",
      "firstName": "Ada",
      "createdDatetime": "2011-01-07T20:46:43+00:00",
      "subscriptions": {
        "subscription": [
          {
            "id": "s0",
            "createdDatetime": "2026-01-07T20:46:43+00:00",
            "canceledDatetime": "",
            "ccExpirationDate": "2027-04-30T00:00:00+00:00",
            "plans": {
              "plan": {
                "code": "PRO",
                "name": "Pro",
                "isActive": "1",
                "trialDays": "30",
                "recurringChargeAmount": "20.00",
                "items": {
                  "item": [
                    {"code": "SEATS", "name": "Seats", "includedQuantity": "100", "overageAmount": "2.50"},
                    {"code": "PROJECTS", "name": "Projects", "includedQuantity": "10", "overageAmount": "5.00"}
                  ]
                }
              }
            },
            "items": {
              "item": [
                {"code": "SEATS", "quantity": "120"},
                {"code": "PROJECTS", "quantity": "4"}
              ]
            },
            "invoices": {
              "invoice": [
                {"id": "i0", "number": "2", "billingDatetime": "2026-11-07T00:00:00+00:00", "paidTransactionId": "", "transactions": ""},
                {
                  "id": "i1",
                  "number": "1",
                  "billingDatetime": "2026-10-07T00:00:00+00:00",
                  "paidTransactionId": "t1",
                  "transactions": {
                    "transaction": {"id": "t1", "amount": "20.00", "transactedDatetime": "2026-10-07T00:00:05+00:00"}
                  }
                }
              ]
            }
          },
          {
            "id": "s1",
            "canceledDatetime": "2010-12-01T00:00:00+00:00",
            "plans": {"plan": {"code": "FREE", "items": ""}},
            "items": "",
            "invoices": {
              "invoice": {
                "id": "i2",
                "billingDatetime": "2010-11-01T00:00:00+00:00",
                "transactions": {"transaction": [{"id": "t2"}, {"id": "t3"}]}
              }
            }
          }
        ]
      }
    }
  }
}`

const twoCustomersBody = `{
  "customers": {
    "customer": [
      {"code": "A", "subscriptions": {"subscription": {"id": "sa", "plans": {"plan": {"code": "PRO"}}}}},
      {"code": "B", "subscriptions": {"subscription": {"id": "sb", "plans": {"plan": {"code": "FREE"}}}}}
    ]
  }
}`

const plansBody = `{
  "plans": {
    "plan": [
      {"code": "PRO", "isFree": "0", "items": {"item": [{"code": "SEATS"}, {"code": "PROJECTS"}]}},
      {"code": "FREE", "isFree": "1", "items": {"item": {"code": "SEATS"}}}
    ]
  }
}`

var fixedNow = time.Date(2026, 10, 19, 12, 0, 0, 0, time.UTC)

func decode(t *testing.T, body string) any {
	t.Helper()
	var out any
	require.NoError(t, json.Unmarshal([]byte(body), &out))
	return out
}

func newTestResponse(t *testing.T, body string) *Response {
	t.Helper()
	return New(Payload{StatusCode: 200, Body: decode(t, body), RawBody: body}, WithClock(func() time.Time { return fixedNow }))
}

func codes(nodes []Node, k Key) []string {
	out := make([]string, len(nodes))
	for i, n := range nodes {
		out[i] = n.Get(k).String()
	}
	return out
}
