package billingresp

import (
	"strings"

	"github.com/shopspring/decimal"
)

// Ordering conventions of the service, relied on below and never re-derived:
//   - a customer's subscriptions: index 0 is the active one, the rest are history;
//   - a subscription's plans: index 0 is the current plan;
//   - a customer's invoices: index 0 is open, index 1 is the most recently billed.

// Plan returns the plan with the given code.
func (r *Response) Plan(code string) (Node, error) {
	return Retrieve(r.tree, KeyPlans, code)
}

// PlanItems returns the items of the selected plan, empty when the plan is not found.
func (r *Response) PlanItems(code string) ([]Node, error) {
	plan, err := r.Plan(code)
	if err != nil {
		return nil, err
	}
	return itemsOf(plan, KeyItems), nil
}

func (r *Response) PlanItem(itemCode, code string) (Node, error) {
	plan, err := r.Plan(code)
	if err != nil || plan.IsNull() {
		return Null(), err
	}
	return Retrieve(plan, KeyItems, itemCode)
}

func (r *Response) Customer(code string) (Node, error) {
	return Retrieve(r.tree, KeyCustomers, code)
}

// Promotion returns the promotion with the given code.
func (r *Response) Promotion(code string) (Node, error) {
	return Retrieve(r.tree, KeyPromotions, code)
}

func (r *Response) CustomerSubscriptions(code string) ([]Node, error) {
	customer, err := r.Customer(code)
	if err != nil {
		return nil, err
	}
	return itemsOf(customer, KeySubscriptions), nil
}

// CustomerSubscription returns the active subscription.
func (r *Response) CustomerSubscription(code string) (Node, error) {
	subs, err := r.CustomerSubscriptions(code)
	if err != nil || len(subs) == 0 {
		return Null(), err
	}
	return subs[0], nil
}

// CustomerPlan returns the current plan of the active subscription.
func (r *Response) CustomerPlan(code string) (Node, error) {
	sub, err := r.CustomerSubscription(code)
	if err != nil {
		return Null(), err
	}
	return sub.Get(KeyPlans).Index(0), nil
}

// CustomerItems returns the item records of the active subscription.
func (r *Response) CustomerItems(code string) ([]Node, error) {
	sub, err := r.CustomerSubscription(code)
	if err != nil {
		return nil, err
	}
	return itemsOf(sub, KeyItems), nil
}

// CustomerInvoices returns the invoices of every subscription, in subscription order and
// then invoice order.
func (r *Response) CustomerInvoices(code string) ([]Node, error) {
	subs, err := r.CustomerSubscriptions(code)
	if err != nil {
		return nil, err
	}
	out := []Node{}
	for _, sub := range subs {
		out = append(out, elements(sub.Get(KeyInvoices))...)
	}
	return out, nil
}

// CustomerInvoice returns the open invoice.
func (r *Response) CustomerInvoice(code string) (Node, error) {
	return r.customerInvoiceAt(code, 0)
}

// CustomerLastBilledInvoice returns the most recently billed invoice.
func (r *Response) CustomerLastBilledInvoice(code string) (Node, error) {
	return r.customerInvoiceAt(code, 1)
}

func (r *Response) customerInvoiceAt(code string, idx int) (Node, error) {
	invoices, err := r.CustomerInvoices(code)
	if err != nil || idx >= len(invoices) {
		return Null(), err
	}
	return invoices[idx], nil
}

func (r *Response) CustomerTransactions(code string) ([]Node, error) {
	invoices, err := r.CustomerInvoices(code)
	if err != nil {
		return nil, err
	}
	out := []Node{}
	for _, inv := range invoices {
		out = append(out, elements(inv.Get(KeyTransactions))...)
	}
	return out, nil
}

// CustomerLastTransaction returns the first transaction of the last billed invoice.
func (r *Response) CustomerLastTransaction(code string) (Node, error) {
	inv, err := r.CustomerLastBilledInvoice(code)
	if err != nil {
		return Null(), err
	}
	return inv.Get(KeyTransactions).Index(0), nil
}

// CustomerOutstandingInvoices returns the unpaid invoices whose billing time lies after now.
// now is read on every call.
func (r *Response) CustomerOutstandingInvoices(code string) ([]Node, error) {
	invoices, err := r.CustomerInvoices(code)
	if err != nil {
		return nil, err
	}
	now := r.now()
	out := []Node{}
	for _, inv := range invoices {
		if isPaid(inv) {
			continue
		}
		billed, ok := inv.Get(KeyBillingDatetime).Time()
		if ok && billed.After(now) {
			out = append(out, inv)
		}
	}
	return out, nil
}

func isPaid(inv Node) bool {
	ref := inv.Get(KeyPaidTransactionID)
	if ref.IsNull() {
		return false
	}
	if ref.Kind() == KindString {
		return strings.TrimSpace(ref.str) != ""
	}
	return true
}

// CustomerItem merges the plan's definition of an item with the subscription's record of it:
// the plan record is returned with its quantity replaced by the subscription's.
// The null node is returned when either side is missing.
func (r *Response) CustomerItem(itemCode, code string) (Node, error) {
	sub, err := r.CustomerSubscription(code)
	if err != nil || sub.IsNull() {
		return Null(), err
	}
	plan := sub.Get(KeyPlans).Index(0)
	if plan.IsNull() {
		return Null(), nil
	}
	subItem, err := Retrieve(sub, KeyItems, itemCode)
	if err != nil {
		return Null(), err
	}
	planItem, err := Retrieve(plan, KeyItems, itemCode)
	if err != nil {
		return Null(), err
	}
	if subItem.IsNull() || planItem.IsNull() {
		return Null(), nil
	}
	return planItem.With(KeyQuantity, subItem.Get(KeyQuantity)), nil
}

// CustomerItemQuantityRemaining is included minus used quantity; negative means overage.
func (r *Response) CustomerItemQuantityRemaining(itemCode, code string) (float64, error) {
	item, err := r.CustomerItem(itemCode, code)
	if err != nil || item.IsNull() {
		return 0, err
	}
	return remaining(item).InexactFloat64(), nil
}

func (r *Response) CustomerItemQuantityOverage(itemCode, code string) (float64, error) {
	item, err := r.CustomerItem(itemCode, code)
	if err != nil || item.IsNull() {
		return 0, err
	}
	return overage(item).InexactFloat64(), nil
}

func (r *Response) CustomerItemQuantityOverageCost(itemCode, code string) (float64, error) {
	item, err := r.CustomerItem(itemCode, code)
	if err != nil || item.IsNull() {
		return 0, err
	}
	perUnit := decimal.NewFromFloat(item.Get(KeyOverageAmount).Float())
	return perUnit.Mul(overage(item)).InexactFloat64(), nil
}

func remaining(item Node) decimal.Decimal {
	included := decimal.NewFromFloat(item.Get(KeyIncludedQuantity).Float())
	used := decimal.NewFromFloat(item.Get(KeyQuantity).Float())
	return included.Sub(used)
}

func overage(item Node) decimal.Decimal {
	over := remaining(item).Neg()
	if over.IsNegative() {
		return decimal.Zero
	}
	return over
}

// CustomerCanceled reports whether the active subscription carries a cancellation time.
// It returns nil when there is no active subscription.
func (r *Response) CustomerCanceled(code string) (*bool, error) {
	sub, err := r.CustomerSubscription(code)
	if err != nil || sub.IsNull() {
		return nil, err
	}
	canceled := !sub.Get(KeyCanceledDatetime).IsNull()
	return &canceled, nil
}

func itemsOf(n Node, k Key) []Node {
	items := elements(n.Get(k))
	if items == nil {
		return []Node{}
	}
	out := make([]Node, len(items))
	copy(out, items)
	return out
}
