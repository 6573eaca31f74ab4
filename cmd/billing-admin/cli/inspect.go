package cli

import (
	"errors"
	"fmt"
	"os"

	json "github.com/goccy/go-json"
	"github.com/spf13/cobra"

	"github.com/r9s-ai/open-billing-client/pkg/billingresp"
	"github.com/r9s-ai/open-billing-client/pkg/jsonutil"
)

type inspectOptions struct {
	bodyPath string
	rawPath  string
	status   int
	path     string
	output   string
}

func newInspectCmd(g *globalOptions) *cobra.Command {
	opts := inspectOptions{status: 200, output: "yaml"}
	cmd := &cobra.Command{
		Use:   "inspect",
		Short: "Normalize a recorded response offline and print the canonical tree",
		Long: "Normalize a recorded response offline and print the canonical tree.\n" +
			"A body that is not a JSON object is treated as undecodable and read through the XML fallback.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInspect(cmd, g, opts)
		},
	}
	fs := cmd.Flags()
	fs.StringVar(&opts.bodyPath, "body", "", "recorded response body file")
	fs.StringVar(&opts.rawPath, "raw", "", "raw body file for fallback recovery (default: the --body file)")
	fs.IntVar(&opts.status, "status", 200, "HTTP status the body was returned with")
	fs.StringVar(&opts.path, "path", "", "print only the values at this path, e.g. $.customers[0].subscriptions[*].id")
	fs.StringVarP(&opts.output, "output", "o", "yaml", "yaml or json")
	_ = cmd.MarkFlagRequired("body")
	return cmd
}

func runInspect(cmd *cobra.Command, g *globalOptions, opts inspectOptions) error {
	_, logger, err := g.load(cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	// #nosec G304 -- operator-supplied file.
	body, err := os.ReadFile(opts.bodyPath)
	if err != nil {
		return fmt.Errorf("read body: %w", err)
	}
	// #nosec G304 -- operator-supplied file.
	raw, err := os.ReadFile(jsonutil.FirstNonEmpty(opts.rawPath, opts.bodyPath))
	if err != nil {
		return fmt.Errorf("read raw body: %w", err)
	}

	p := billingresp.Payload{StatusCode: opts.status, RawBody: string(raw)}
	var decoded map[string]any
	if err := json.Unmarshal(body, &decoded); err == nil && decoded != nil {
		p.Body = decoded
	}
	res := billingresp.New(p, billingresp.WithLogger(logger))

	w := cmd.OutOrStdout()
	fmt.Fprintf(w, "%s %t\n", keyStyle.Render("valid:"), res.Valid())
	fmt.Fprintf(w, "%s %t\n", keyStyle.Render("recovered:"), res.Recovered())
	for _, m := range res.ErrorMessages() {
		fmt.Fprintln(w, errStyle.Render("error: "+m))
	}

	if opts.path == "" {
		return renderTree(w, res.Tree().Interface(), opts.output)
	}
	nodes := res.Lookup(opts.path)
	if nodes == nil {
		return errors.New("path matched nothing: " + opts.path)
	}
	values := make([]any, len(nodes))
	for i, n := range nodes {
		values[i] = n.Interface()
	}
	return renderTree(w, values, opts.output)
}
