package cli

import (
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/r9s-ai/open-billing-client/internal/fixtureserver"
	"github.com/r9s-ai/open-billing-client/pkg/jsonutil"
)

func newFixturesCmd(g *globalOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "fixtures",
		Short: "Local fake of the billing service",
	}
	cmd.AddCommand(newFixturesServeCmd(g))
	return cmd
}

type fixturesServeOptions struct {
	listen     string
	dir        string
	autoReload bool
}

func newFixturesServeCmd(g *globalOptions) *cobra.Command {
	opts := fixturesServeOptions{}
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve recorded payloads from the fixtures dir",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runFixturesServe(cmd, g, opts)
		},
	}
	fs := cmd.Flags()
	fs.StringVar(&opts.listen, "listen", "", "listen address (override fixtures.listen)")
	fs.StringVar(&opts.dir, "dir", "", "fixtures dir (override fixtures.dir)")
	fs.BoolVar(&opts.autoReload, "watch", false, "reload the manifest on file changes (also fixtures.auto_reload)")
	return cmd
}

func runFixturesServe(cmd *cobra.Command, g *globalOptions, opts fixturesServeOptions) error {
	cfg, logger, err := g.load(cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	dir := strings.TrimSpace(jsonutil.FirstNonEmpty(opts.dir, cfg.Fixtures.Dir))
	listen := strings.TrimSpace(jsonutil.FirstNonEmpty(opts.listen, cfg.Fixtures.Listen))

	s, err := fixtureserver.New(dir, cfg.Fixtures.Manifest, logger)
	if err != nil {
		return err
	}
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	return s.ListenAndServe(ctx, listen, opts.autoReload || cfg.Fixtures.AutoReload, cfg.Debounce())
}
