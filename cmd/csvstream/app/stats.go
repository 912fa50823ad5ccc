package app

import (
	"context"
	"io"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/oleg578/csvstream"
	"github.com/oleg578/csvstream/cmd/csvstream/app/options"
)

// Report summarises the shape of an input.
type Report struct {
	Input       string `json:"input" yaml:"input"`
	Rows        int    `json:"rows" yaml:"rows"`
	Fields      int    `json:"fields" yaml:"fields"`
	MinFields   int    `json:"minFields" yaml:"minFields"`
	MaxFields   int    `json:"maxFields" yaml:"maxFields"`
	EmptyFields int    `json:"emptyFields" yaml:"emptyFields"`
	// NeedsQuoteFields counts fields the writer would quote on output,
	// whether or not they were quoted in the input.
	NeedsQuoteFields int   `json:"needsQuoteFields" yaml:"needsQuoteFields"`
	FieldBytes       int64 `json:"fieldBytes" yaml:"fieldBytes"`
}

func (s *Report) add(row [][]byte, comma byte) {
	s.Rows++
	s.Fields += len(row)
	if s.Rows == 1 || len(row) < s.MinFields {
		s.MinFields = len(row)
	}
	if len(row) > s.MaxFields {
		s.MaxFields = len(row)
	}
	for _, f := range row {
		s.FieldBytes += int64(len(f))
		if len(f) == 0 {
			s.EmptyFields++
		}
		if csvstream.NeedsQuote(f, comma) {
			s.NeedsQuoteFields++
		}
	}
}

func newStatsCommand(s *options.Options) *cobra.Command {
	return &cobra.Command{
		Use:   "stats [file]",
		Short: "Print a YAML summary of rows and fields",
		Args:  cobra.MaximumNArgs(1),
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
			return runStats(cmd.Context(), opts, in, name, cmd.OutOrStdout())
		},
	}
}

func runStats(ctx context.Context, opts *options.Options, in io.Reader, name string, out io.Writer) error {
	comma, err := options.ParseDelimiter(opts.Delimiter)
	if err != nil {
		return err
	}
	r, err := opts.NewReader(in)
	if err != nil {
		return err
	}
	r.ReuseRecord = true

	report := Report{Input: name}
	if _, err := forEachRow(ctx, r, name, func(row [][]byte) error {
		report.add(row, comma)
		return nil
	}); err != nil {
		return err
	}

	enc := yaml.NewEncoder(out)
	enc.SetIndent(2)
	if err := enc.Encode(&report); err != nil {
		return err
	}
	return enc.Close()
}
