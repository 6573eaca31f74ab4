package cli

import (
	"bytes"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/r9s-ai/open-billing-client/internal/fixtureserver"
)

const customerFixture = `{
  "customers": {"customer": {
    "code": "CUST-1", "firstName": "Ada",
    "subscriptions": {"subscription": [
      {
        "id": "s0", "canceledDatetime": "",
        "plans": {"plan": {"code": "PRO", "name": "Pro", "items": {"item": [
          {"code": "SEATS", "includedQuantity": "100", "overageAmount": "2.50"},
          {"code": "PROJECTS", "includedQuantity": "10", "overageAmount": "5.00"}
        ]}}},
        "items": {"item": [{"code": "SEATS", "quantity": "120"}, {"code": "PROJECTS", "quantity": "4"}]},
        "invoices": {"invoice": [
          {"id": "i0", "number": "2", "billingDatetime": "2099-01-01T00:00:00+00:00", "paidTransactionId": ""},
          {"id": "i1", "number": "1", "billingDatetime": "2020-01-01T00:00:00+00:00", "paidTransactionId": "t1"}
        ]}
      },
      {"id": "s1", "canceledDatetime": "2019-01-01T00:00:00+00:00"}
    ]}
  }}
}`

const anonymousInvoicesFixture = `{"customers": {"customer": {
  "code": "CUST-2",
  "subscriptions": {"subscription": {"id": "s0", "invoices": {"invoice": [
    {"number": "3", "billingDatetime": "2099-01-01T00:00:00+00:00"},
    {"number": "2", "billingDatetime": "2020-01-01T00:00:00+00:00"},
    {"number": "1", "billingDatetime": "2019-01-01T00:00:00+00:00"}
  ]}}}
}}}`

const plansFixture = `{"plans": {"plan": [
  {"code": "PRO", "name": "Pro", "items": {"item": {"code": "SEATS", "includedQuantity": "100", "overageAmount": "2.50"}}},
  {"code": "FREE", "name": "Free", "items": ""}
]}}`

func writeTestFile(t *testing.T, dir, name, body string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(p, []byte(body), 0o600))
	return p
}

// newBackend starts a fixture server and returns a config file pointing at it.
func newBackend(t *testing.T, productCode string) string {
	t.Helper()
	gin.SetMode(gin.TestMode)
	dir := t.TempDir()
	writeTestFile(t, dir, "customer.json", customerFixture)
	writeTestFile(t, dir, "plans.json", plansFixture)
	writeTestFile(t, dir, "customer2.json", anonymousInvoicesFixture)
	writeTestFile(t, dir, "routes.yaml", `
routes:
  - path: /json/plans/get/productCode/ACME
    file: plans.json
  - path: /json/plans/get/productCode/ACME/code/PRO
    file: plans.json
  - path: /json/customers/get/productCode/ACME/code/CUST-1
    file: customer.json
  - path: /json/customers/get/productCode/ACME/code/CUST-2
    file: customer2.json
`)
	s, err := fixtureserver.New(dir, "routes.yaml", nil)
	require.NoError(t, err)
	srv := httptest.NewServer(s.Handler())
	t.Cleanup(srv.Close)

	cfg := "billing:\n  base_url: " + srv.URL + "\n"
	if productCode != "" {
		cfg += "  product_code: " + productCode + "\n"
	}
	return writeTestFile(t, t.TempDir(), "billing.yaml", cfg)
}

func runCmd(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	root := newRootCmd()
	root.SetArgs(args)
	root.SetOut(&out)
	root.SetErr(&errOut)
	err := root.Execute()
	return out.String(), errOut.String(), err
}

func TestPlanGet(t *testing.T) {
	cfg := newBackend(t, "ACME")

	out, _, err := runCmd(t, "plan", "get", "--config", cfg, "--code", "PRO")
	require.NoError(t, err)
	assert.Contains(t, out, "Plan PRO")
	assert.Contains(t, out, "Items (1)")
	assert.Contains(t, out, "SEATS")
	assert.Contains(t, out, "2.50")

	_, _, err = runCmd(t, "plan", "get", "--config", cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "multiple plans; a code is required to disambiguate")
}

func TestCustomerUsage(t *testing.T) {
	cfg := newBackend(t, "ACME")

	out, _, err := runCmd(t, "customer", "usage", "--config", cfg, "--code", "CUST-1")
	require.NoError(t, err)
	var seats, projects string
	for _, line := range strings.Split(out, "\n") {
		fields := strings.Fields(line)
		if len(fields) == 0 {
			continue
		}
		switch fields[0] {
		case "SEATS":
			seats = strings.Join(fields, " ")
		case "PROJECTS":
			projects = strings.Join(fields, " ")
		}
	}
	assert.Equal(t, "SEATS 100 120 -20 20 50.00", seats)
	assert.Equal(t, "PROJECTS 10 4 6 0 0.00", projects)

	_, _, err = runCmd(t, "customer", "usage", "--config", cfg, "--code", "CUST-1", "--item", "NOPE")
	require.Error(t, err)
}

func TestCustomerInvoices(t *testing.T) {
	cfg := newBackend(t, "ACME")

	out, _, err := runCmd(t, "customer", "invoices", "--config", cfg, "--code", "CUST-1")
	require.NoError(t, err)
	assert.Contains(t, out, "open, outstanding")
	assert.Contains(t, out, "last billed")
	assert.Contains(t, out, "outstanding: 1")
}

func TestCustomerInvoices_WithoutIDs(t *testing.T) {
	cfg := newBackend(t, "ACME")

	out, _, err := runCmd(t, "customer", "invoices", "--config", cfg, "--code", "CUST-2")
	require.NoError(t, err)
	marked := 0
	for _, line := range strings.Split(out, "\n") {
		if strings.Contains(line, "outstanding") && !strings.HasPrefix(line, "outstanding:") {
			marked++
			assert.Contains(t, line, "2099-01-01")
		}
	}
	assert.Equal(t, 1, marked)
	assert.Contains(t, out, "outstanding: 1")
}

func TestCustomerGet(t *testing.T) {
	cfg := newBackend(t, "ACME")

	out, _, err := runCmd(t, "customer", "get", "--config", cfg, "--code", "CUST-1")
	require.NoError(t, err)
	assert.Contains(t, out, "Customer CUST-1")
	assert.Contains(t, out, "Subscription (active)")
	assert.Contains(t, out, "Plan PRO")
}

func TestCustomerGet_ServiceErrorsArePrinted(t *testing.T) {
	cfg := newBackend(t, "ACME")

	_, errOut, err := runCmd(t, "customer", "get", "--config", cfg, "--code", "NOPE")
	require.ErrorIs(t, err, errServiceReported)
	assert.Contains(t, errOut, "error: No fixture for GET /json/customers/get/productCode/ACME/code/NOPE")
}

func TestCustomerGet_RequiresProductCode(t *testing.T) {
	cfg := newBackend(t, "")

	_, _, err := runCmd(t, "customer", "get", "--config", cfg, "--code", "CUST-1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "product_code")
}

func TestInspect_RecoversXMLError(t *testing.T) {
	dir := t.TempDir()
	body := writeTestFile(t, dir, "err.xml", `<?xml version="1.0" encoding="UTF-8"?>
<error id="1" code="404" auxCode="planCode:NotFound">Plan not found</error>`)

	out, _, err := runCmd(t, "inspect", "--config", filepath.Join(dir, "absent.yaml"), "--body", body, "--status", "404")
	require.NoError(t, err)
	assert.Contains(t, out, "recovered: true")
	assert.Contains(t, out, "error: Plan not found: planCode")
	assert.Contains(t, out, "errorType: NotFound")
}

func TestInspect_PathAndJSONOutput(t *testing.T) {
	dir := t.TempDir()
	body := writeTestFile(t, dir, "customer.json", customerFixture)

	out, _, err := runCmd(t, "inspect", "--config", filepath.Join(dir, "absent.yaml"), "--body", body,
		"--path", "$.customers[0].subscriptions[*].id", "-o", "json")
	require.NoError(t, err)
	assert.Contains(t, out, "valid: true")
	assert.Contains(t, out, `"s0"`)
	assert.Contains(t, out, `"s1"`)

	_, _, err = runCmd(t, "inspect", "--config", filepath.Join(dir, "absent.yaml"), "--body", body, "--path", "$.nope")
	require.Error(t, err)
}

func TestVersion(t *testing.T) {
	out, _, err := runCmd(t, "version")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "billing-admin "))
}
