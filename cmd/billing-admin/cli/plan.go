package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/r9s-ai/open-billing-client/pkg/billingresp"
)

func newPlanCmd(g *globalOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "plan",
		Short: "Query pricing plans",
	}
	cmd.AddCommand(newPlanGetCmd(g))
	return cmd
}

type planGetOptions struct {
	code string
}

func newPlanGetCmd(g *globalOptions) *cobra.Command {
	opts := planGetOptions{}
	cmd := &cobra.Command{
		Use:   "get",
		Short: "Print one plan and its items",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPlanGet(cmd, g, opts)
		},
	}
	cmd.Flags().StringVar(&opts.code, "code", "", "plan code (required when the product has several plans)")
	return cmd
}

func runPlanGet(cmd *cobra.Command, g *globalOptions, opts planGetOptions) error {
	c, err := g.client(cmd)
	if err != nil {
		return err
	}
	var res *billingresp.Response
	if opts.code == "" {
		res, err = c.Plans(cmd.Context())
	} else {
		res, err = c.Plan(cmd.Context(), opts.code)
	}
	if err != nil {
		return err
	}
	if err := checkValid(cmd, res); err != nil {
		return err
	}

	plan, err := res.Plan(opts.code)
	if err != nil {
		return err
	}
	if plan.IsNull() {
		return fmt.Errorf("plan %q not found", opts.code)
	}
	items, err := res.PlanItems(opts.code)
	if err != nil {
		return err
	}

	w := cmd.OutOrStdout()
	renderTitle(w, "Plan %s", plan.Get(billingresp.KeyCode).String())
	renderScalars(w, plan)
	fmt.Fprintln(w)
	renderTitle(w, "Items (%d)", len(items))
	tbl := newTable("CODE", "NAME", "INCLUDED", "OVERAGE")
	for _, it := range items {
		tbl.Row(
			it.Get(billingresp.KeyCode).String(),
			it.Get("name").String(),
			quantity(it.Get(billingresp.KeyIncludedQuantity).Float()),
			money(it.Get(billingresp.KeyOverageAmount).Float()),
		)
	}
	fmt.Fprintln(w, tbl.Render())
	return nil
}
