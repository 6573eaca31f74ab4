package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/r9s-ai/open-billing-client/pkg/billingresp"
)

func newCustomerCmd(g *globalOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "customer",
		Short: "Query customers, invoices and usage",
	}
	cmd.AddCommand(
		newCustomerGetCmd(g),
		newCustomerInvoicesCmd(g),
		newCustomerUsageCmd(g),
	)
	return cmd
}

type customerOptions struct {
	code string
	item string
}

func addCustomerFlags(cmd *cobra.Command, opts *customerOptions) {
	cmd.Flags().StringVar(&opts.code, "code", "", "customer code")
	_ = cmd.MarkFlagRequired("code")
}

func newCustomerGetCmd(g *globalOptions) *cobra.Command {
	opts := &customerOptions{}
	cmd := &cobra.Command{
		Use:   "get",
		Short: "Print a customer with its active subscription and plan",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCustomerGet(cmd, g, opts)
		},
	}
	addCustomerFlags(cmd, opts)
	return cmd
}

func newCustomerInvoicesCmd(g *globalOptions) *cobra.Command {
	opts := &customerOptions{}
	cmd := &cobra.Command{
		Use:   "invoices",
		Short: "List invoices and the outstanding ones",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCustomerInvoices(cmd, g, opts)
		},
	}
	addCustomerFlags(cmd, opts)
	return cmd
}

func newCustomerUsageCmd(g *globalOptions) *cobra.Command {
	opts := &customerOptions{}
	cmd := &cobra.Command{
		Use:   "usage",
		Short: "Print included, used and overage quantities per item",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCustomerUsage(cmd, g, opts)
		},
	}
	addCustomerFlags(cmd, opts)
	cmd.Flags().StringVar(&opts.item, "item", "", "item code (default: every item of the active subscription)")
	return cmd
}

func fetchCustomer(cmd *cobra.Command, g *globalOptions, code string) (*billingresp.Response, error) {
	c, err := g.client(cmd)
	if err != nil {
		return nil, err
	}
	res, err := c.Customer(cmd.Context(), code)
	if err != nil {
		return nil, err
	}
	if err := checkValid(cmd, res); err != nil {
		return nil, err
	}
	customer, err := res.Customer(code)
	if err != nil {
		return nil, err
	}
	if customer.IsNull() {
		return nil, fmt.Errorf("customer %q not found", code)
	}
	return res, nil
}

func runCustomerGet(cmd *cobra.Command, g *globalOptions, opts *customerOptions) error {
	res, err := fetchCustomer(cmd, g, opts.code)
	if err != nil {
		return err
	}
	customer, _ := res.Customer(opts.code)
	sub, err := res.CustomerSubscription(opts.code)
	if err != nil {
		return err
	}
	plan, err := res.CustomerPlan(opts.code)
	if err != nil {
		return err
	}
	canceled, err := res.CustomerCanceled(opts.code)
	if err != nil {
		return err
	}

	w := cmd.OutOrStdout()
	renderTitle(w, "Customer %s", opts.code)
	renderScalars(w, customer)
	fmt.Fprintln(w)
	if sub.IsNull() {
		fmt.Fprintln(w, noteStyle.Render("no active subscription"))
		return nil
	}
	status := "active"
	if canceled != nil && *canceled {
		status = "canceled"
	}
	renderTitle(w, "Subscription (%s)", status)
	renderScalars(w, sub)
	fmt.Fprintln(w)
	renderTitle(w, "Plan %s", plan.Get(billingresp.KeyCode).String())
	renderScalars(w, plan)
	return nil
}

func runCustomerInvoices(cmd *cobra.Command, g *globalOptions, opts *customerOptions) error {
	res, err := fetchCustomer(cmd, g, opts.code)
	if err != nil {
		return err
	}
	invoices, err := res.CustomerInvoices(opts.code)
	if err != nil {
		return err
	}
	outstanding, err := res.CustomerOutstandingInvoices(opts.code)
	if err != nil {
		return err
	}

	w := cmd.OutOrStdout()
	renderTitle(w, "Invoices of %s (%d)", opts.code, len(invoices))
	tbl := newTable("#", "ID", "NUMBER", "BILLING", "PAID BY", "NOTE")
	next := 0 // outstanding is an ordered subsequence of invoices
	for i, inv := range invoices {
		var notes []string
		switch i {
		case 0:
			notes = append(notes, "open")
		case 1:
			notes = append(notes, "last billed")
		}
		if next < len(outstanding) && inv.Equal(outstanding[next]) {
			notes = append(notes, "outstanding")
			next++
		}
		tbl.Row(
			fmt.Sprint(i),
			inv.Get("id").String(),
			inv.Get("number").String(),
			inv.Get(billingresp.KeyBillingDatetime).String(),
			inv.Get(billingresp.KeyPaidTransactionID).String(),
			strings.Join(notes, ", "),
		)
	}
	fmt.Fprintln(w, tbl.Render())
	fmt.Fprintln(w)
	fmt.Fprintf(w, "outstanding: %d\n", len(outstanding))
	return nil
}

func runCustomerUsage(cmd *cobra.Command, g *globalOptions, opts *customerOptions) error {
	res, err := fetchCustomer(cmd, g, opts.code)
	if err != nil {
		return err
	}
	itemCodes := []string{opts.item}
	if opts.item == "" {
		items, err := res.CustomerItems(opts.code)
		if err != nil {
			return err
		}
		itemCodes = itemCodes[:0]
		for _, it := range items {
			itemCodes = append(itemCodes, it.Get(billingresp.KeyCode).String())
		}
	}

	w := cmd.OutOrStdout()
	renderTitle(w, "Usage of %s", opts.code)
	tbl := newTable("ITEM", "INCLUDED", "USED", "REMAINING", "OVERAGE", "OVERAGE COST")
	rows := 0
	for _, code := range itemCodes {
		item, err := res.CustomerItem(code, opts.code)
		if err != nil {
			return err
		}
		if item.IsNull() {
			if opts.item != "" {
				return fmt.Errorf("item %q not found for customer %q", code, opts.code)
			}
			continue
		}
		remaining, err := res.CustomerItemQuantityRemaining(code, opts.code)
		if err != nil {
			return err
		}
		overage, err := res.CustomerItemQuantityOverage(code, opts.code)
		if err != nil {
			return err
		}
		cost, err := res.CustomerItemQuantityOverageCost(code, opts.code)
		if err != nil {
			return err
		}
		rows++
		tbl.Row(
			code,
			quantity(item.Get(billingresp.KeyIncludedQuantity).Float()),
			quantity(item.Get(billingresp.KeyQuantity).Float()),
			quantity(remaining),
			quantity(overage),
			money(cost),
		)
	}
	if rows == 0 {
		return errors.New("no billable items on the active subscription")
	}
	fmt.Fprintln(w, tbl.Render())
	return nil
}
