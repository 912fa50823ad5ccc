package app

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"k8s.io/klog/v2"

	"github.com/oleg578/csvstream/cmd/csvstream/app/options"
)

func newCheckCommand(s *options.Options) *cobra.Command {
	return &cobra.Command{
		Use:   "check [file]",
		Short: "Read every row and report the first error",
		Long: `check reads the whole input and fails on the first read or parse error,
reporting its line and column. Combine with --strict and --fields-per-record to validate input.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, err := loadOptions(cmd, s)
			if err != nil {
				return err
			}
			in, name, err := openInput(cmd, args)
			if err != nil {
				return err
			}
			defer in.Close()
			return runCheck(cmd.Context(), opts, in, name, cmd.OutOrStdout())
		},
	}
}

func runCheck(ctx context.Context, opts *options.Options, in io.Reader, name string, out io.Writer) error {
	r, err := opts.NewReader(in)
	if err != nil {
		return err
	}
	r.ReuseRecord = true

	rows, err := forEachRow(ctx, r, name, func([][]byte) error { return nil })
	if err != nil {
		klog.V(2).InfoS("Check failed", "input", name, "validRows", rows)
		return err
	}
	_, err = fmt.Fprintf(out, "%s: ok, %d rows\n", name, rows)
	return err
}
