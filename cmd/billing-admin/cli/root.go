package cli

import (
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/r9s-ai/open-billing-client/internal/config"
	"github.com/r9s-ai/open-billing-client/internal/logx"
	"github.com/r9s-ai/open-billing-client/internal/version"
	"github.com/r9s-ai/open-billing-client/pkg/billingclient"
	"github.com/r9s-ai/open-billing-client/pkg/billingresp"
)

// errServiceReported is returned after the service's own error messages have been printed.
var errServiceReported = errors.New("billing service reported errors")

func Run(args []string) error {
	root := newRootCmd()
	root.SetArgs(args)
	return root.Execute()
}

type globalOptions struct {
	cfgPath string
	debug   bool
}

func newRootCmd() *cobra.Command {
	g := &globalOptions{}
	cmd := &cobra.Command{
		Use:           "billing-admin",
		Short:         "Billing service admin CLI",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	pf := cmd.PersistentFlags()
	pf.StringVarP(&g.cfgPath, "config", "c", "billing.yaml", "config yaml path (missing file uses defaults)")
	pf.BoolVar(&g.debug, "debug", false, "debug logging")

	cmd.AddCommand(
		newPlanCmd(g),
		newCustomerCmd(g),
		newInspectCmd(g),
		newFixturesCmd(g),
		newVersionCmd(),
	)
	return cmd
}

func (g *globalOptions) load(errOut io.Writer) (*config.Config, logx.Logger, error) {
	cfg, err := config.LoadOrDefault(g.cfgPath)
	if err != nil {
		return nil, nil, fmt.Errorf("load config %s: %w", g.cfgPath, err)
	}
	lc := logx.DefaultConfig()
	lc.Output = errOut
	lc.Level = logx.Level(cfg.Logging.Level)
	lc.JSON = cfg.Logging.JSON
	if g.debug {
		lc.Level = logx.DebugLevel
	}
	return cfg, logx.New(lc), nil
}

func (g *globalOptions) client(cmd *cobra.Command) (*billingclient.Client, error) {
	cfg, logger, err := g.load(cmd.ErrOrStderr())
	if err != nil {
		return nil, err
	}
	if err := cfg.RequireProductCode(); err != nil {
		return nil, err
	}
	return billingclient.New(billingclient.Config{
		BaseURL:     cfg.Billing.BaseURL,
		ProductCode: cfg.Billing.ProductCode,
		Username:    cfg.Billing.Username,
		Password:    cfg.Billing.Password,
		Format:      cfg.Billing.Format,
		Timeout:     cfg.Timeout(),
		RetryCount:  cfg.Billing.RetryCount,
	}, billingclient.WithLogger(logger))
}

// checkValid prints the service's errors and fails when res is not valid.
func checkValid(cmd *cobra.Command, res *billingresp.Response) error {
	if res.Valid() {
		return nil
	}
	renderServiceErrors(cmd.ErrOrStderr(), res)
	return errServiceReported
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		RunE: func(cmd *cobra.Command, args []string) error {
			_, err := fmt.Fprintln(cmd.OutOrStdout(), version.Get().String())
			return err
		},
	}
}
