package app

import (
	"context"
	"io"

	"github.com/pkg/errors"

	"github.com/oleg578/csvstream"
)

// ctxCheckInterval is how many rows are read between cancellation checks.
const ctxCheckInterval = 1024

// forEachRow calls fn for every row of r. It stops at the first read error,
// the first error from fn, or when ctx is done, and reports the rows read.
func forEachRow(ctx context.Context, r *csvstream.Reader, input string, fn func(row [][]byte) error) (int, error) {
	rows := 0
	for {
		if rows%ctxCheckInterval == 0 {
			if err := ctx.Err(); err != nil {
				return rows, err
			}
		}
		row, err := r.ReadRow()
		if err == io.EOF {
			return rows, nil
		}
		if err != nil {
			return rows, errors.Wrapf(err, "%s: record %d", input, rows+1)
		}
		rows++
		if err := fn(row); err != nil {
			return rows, err
		}
	}
}
