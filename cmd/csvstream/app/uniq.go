package app

import (
	"context"
	"io"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"github.com/zeebo/xxh3"
	"k8s.io/klog/v2"

	"github.com/oleg578/csvstream"
	"github.com/oleg578/csvstream/cmd/csvstream/app/options"
)

func newUniqCommand(s *options.Options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "uniq [file]",
		Short: "Drop repeated rows, keeping the first occurrence",
		Long: `uniq writes each distinct row once, in input order. Rows are compared by
a 128-bit hash of their canonical encoding, so "a" and a quoted "a" are the same row.`,
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
			return runUniq(cmd.Context(), opts, in, name, cmd.OutOrStdout())
		},
	}
	s.AddOutputFlags(cmd.Flags(), s)
	return cmd
}

// rowSet remembers rows by the xxh3 hash of their canonical encoding.
type rowSet struct {
	comma byte
	seen  map[xxh3.Uint128]struct{}
	line  []byte
}

func newRowSet(comma byte) *rowSet {
	return &rowSet{comma: comma, seen: make(map[xxh3.Uint128]struct{})}
}

// add reports whether row was not in the set before.
func (s *rowSet) add(row [][]byte) bool {
	s.line = csvstream.AppendRecord(s.line[:0], row, s.comma)
	h := xxh3.Hash128(s.line)
	if _, ok := s.seen[h]; ok {
		return false
	}
	s.seen[h] = struct{}{}
	return true
}

func runUniq(ctx context.Context, opts *options.Options, in io.Reader, name string, out io.Writer) error {
	comma, err := options.ParseDelimiter(opts.Delimiter)
	if err != nil {
		return err
	}
	r, err := opts.NewReader(in)
	if err != nil {
		return err
	}
	r.ReuseRecord = true
	w, err := opts.NewWriter(out)
	if err != nil {
		return err
	}

	set := newRowSet(comma)
	dropped := 0
	rows, err := forEachRow(ctx, r, name, func(row [][]byte) error {
		if !set.add(row) {
			dropped++
			return nil
		}
		return errors.Wrap(w.WriteRow(row), "write output")
	})
	if ferr := w.Flush(); err == nil && ferr != nil {
		err = errors.Wrap(ferr, "flush output")
	}
	if err != nil {
		return err
	}
	klog.V(1).InfoS("Removed duplicate rows", "input", name, "rows", rows, "dropped", dropped)
	return nil
}
