package app

import (
	"context"
	"io"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"k8s.io/klog/v2"

	"github.com/oleg578/csvstream/cmd/csvstream/app/options"
)

func newConvertCommand(s *options.Options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "convert [file]",
		Short: "Re-encode rows, optionally with another delimiter",
		Long: `convert reads every row and writes it back with minimal quoting.
CRLF line endings become LF. Use --out-delimiter to change the delimiter, e.g. CSV to TSV.`,
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
			return runConvert(cmd.Context(), opts, in, name, cmd.OutOrStdout())
		},
	}
	s.AddOutputFlags(cmd.Flags(), s)
	return cmd
}

func runConvert(ctx context.Context, opts *options.Options, in io.Reader, name string, out io.Writer) error {
	r, err := opts.NewReader(in)
	if err != nil {
		return err
	}
	w, err := opts.NewWriter(out)
	if err != nil {
		return err
	}

	rows, err := forEachRow(ctx, r, name, func(row [][]byte) error {
		return errors.Wrap(w.WriteRow(row), "write output")
	})
	if ferr := w.Flush(); err == nil && ferr != nil {
		err = errors.Wrap(ferr, "flush output")
	}
	if err != nil {
		return err
	}
	klog.V(2).InfoS("Converted rows", "input", name, "rows", rows)
	return nil
}
