package csvstream

import (
	"bufio"
	"errors"
	"io"
)

var (
	errNilWriter      = errors.New("csvstream: writer is nil")
	errWriterNoTarget = errors.New("csvstream: writer destination cannot be nil")
)

const defaultLineSize = 256

// Writer emits delimiter-separated records, quoting a field only when it
// contains the delimiter, the quote byte, CR or LF.
//
// Output is buffered; call Flush to push it to the underlying io.Writer.
// A row that fits the buffer reaches the sink, and reports its failure, on a
// later call. A failed call discards whatever was still buffered, so the next
// call starts clean against the same sink.
// A Writer must not be used from multiple goroutines at once.
type Writer struct {
	sink io.Writer
	dst  *bufio.Writer

	// Comma is the field delimiter. Default is ','.
	Comma byte

	line []byte
	err  error
}

// NewWriter creates a new Writer with internal buffering tuned for bulk writes.
func NewWriter(w io.Writer) *Writer {
	if w == nil {
		panic(errWriterNoTarget.Error())
	}
	return &Writer{
		sink:  w,
		dst:   bufio.NewWriterSize(w, defaultBufferSize),
		Comma: DefaultComma,
		line:  make([]byte, 0, defaultLineSize),
	}
}

// Reset discards unflushed output and switches to dst, preserving Comma.
func (w *Writer) Reset(dst io.Writer) {
	if w == nil {
		panic(errNilWriter.Error())
	}
	if dst == nil {
		panic(errWriterNoTarget.Error())
	}
	w.sink = dst
	if w.dst == nil {
		w.dst = bufio.NewWriterSize(dst, defaultBufferSize)
	} else {
		w.dst.Reset(dst)
	}
	w.line = w.line[:0]
	w.err = nil
}

// WriteRow emits a single record terminated by '\n'.
// The record is handed to the buffered sink in one write; a sink failure
// aborts the row and is returned as is.
func (w *Writer) WriteRow(row [][]byte) error {
	return writeRecord(w, row)
}

// WriteHeader is WriteRow. It exists to document intent at call sites.
func (w *Writer) WriteHeader(row [][]byte) error {
	return writeRecord(w, row)
}

// Write emits a single record of string fields.
func (w *Writer) Write(record []string) error {
	return writeRecord(w, record)
}

// WriteAll writes multiple records, stopping at the first error.
func (w *Writer) WriteAll(records [][]string) error {
	if w == nil {
		return errNilWriter
	}
	for _, record := range records {
		if err := writeRecord(w, record); err != nil {
			return err
		}
	}
	return nil
}

// Flush flushes pending buffered data to the underlying writer.
func (w *Writer) Flush() error {
	if w == nil {
		return errNilWriter
	}
	if w.dst == nil {
		return errWriterNoTarget
	}
	if err := w.dst.Flush(); err != nil {
		return w.fail(err)
	}
	w.err = nil
	return nil
}

// Error reports the sink error of the most recent failed Write or Flush,
// or nil once a later Flush has succeeded.
func (w *Writer) Error() error {
	if w == nil {
		return errNilWriter
	}
	return w.err
}

// fail records err and drops the buffered bytes, which bufio would otherwise
// keep failing on forever.
func (w *Writer) fail(err error) error {
	w.err = err
	w.dst.Reset(w.sink)
	return err
}

func writeRecord[F ~string | ~[]byte](w *Writer, record []F) error {
	if w == nil {
		return errNilWriter
	}
	if w.dst == nil {
		return errWriterNoTarget
	}
	comma, err := resolveComma(w.Comma)
	if err != nil {
		return err
	}

	w.line = AppendRecord(w.line[:0], record, comma)
	_, err = w.dst.Write(w.line)
	if cap(w.line) > defaultBufferSize<<4 {
		// Do not pin a huge scratch line after an oversized record.
		w.line = make([]byte, 0, defaultLineSize)
	}
	if err != nil {
		return w.fail(err)
	}
	return nil
}
