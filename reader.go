package csvstream

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"unsafe"
)

const (
	defaultBufferSize = 1 << 10 // 1024 bytes

	maxEmptyReads = 100
)

var (
	// ErrBareQuote is returned in strict mode when a quote appears inside an unquoted field.
	ErrBareQuote = errors.New("csvstream: bare quote in non-quoted field")
	// ErrQuote is returned in strict mode when a closing quote is followed by
	// something other than a quote, the delimiter or a line break.
	ErrQuote = errors.New("csvstream: extraneous byte after closing quote")
	// ErrUnterminatedQuote is returned in strict mode when a quoted field is still open at end of stream.
	ErrUnterminatedQuote = errors.New("csvstream: unterminated quoted field")
	// ErrFieldCount is returned when a record does not have FieldsPerRecord fields.
	ErrFieldCount = errors.New("csvstream: wrong number of fields")
)

// ParseError contains location information for CSV parsing errors.
type ParseError struct {
	Line   int
	Column int
	Err    error
}

// Error formats the parse error message with the stored line, column, and Err values.
func (e *ParseError) Error() string {
	if e == nil {
		return ""
	}
	return fmt.Sprintf("csvstream: parse error on line %d, column %d: %v", e.Line, e.Column, e.Err)
}

// Unwrap returns the underlying Err so ParseError participates in errors.Unwrap.
func (e *ParseError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

type readState uint8

const (
	stateFieldStart readState = iota
	stateUnquotedField
	stateQuotedField
	stateQuoteSeen // quote seen inside a quoted field; the next byte decides
)

// Reader tokenizes a byte stream into records one at a time.
//
// By default the Reader never reports malformed input: an unterminated quoted
// field is closed implicitly at end of stream, quotes inside unquoted fields
// are literal, and carriage returns outside quoted fields are dropped so that
// CRLF input reads like LF input. Set Strict to turn those cases into errors.
type Reader struct {
	src io.Reader

	// Comma is the field delimiter. Default is ','.
	Comma byte
	// Strict reports bare quotes, bytes after a closing quote and unterminated
	// quoted fields as *ParseError instead of accepting them.
	Strict bool
	// ReuseRecord indicates whether reads may return fields backed by internal
	// storage that is overwritten by the next call.
	ReuseRecord bool
	// FieldsPerRecord, when positive, is the number of fields every record must have.
	FieldsPerRecord int

	buf    []byte
	bufPos int
	bufLen int
	bufErr error
	eof    bool

	dataBuf     []byte
	fieldBounds []int
	row         [][]byte
	record      []string

	line       int
	column     int
	recordLine int
}

// NewReader creates a Reader that consumes data from r, panicking if r is nil.
func NewReader(r io.Reader) *Reader {
	if r == nil {
		panic("csvstream: reader source cannot be nil")
	}

	return &Reader{
		src:         r,
		Comma:       DefaultComma,
		buf:         make([]byte, defaultBufferSize),
		dataBuf:     make([]byte, 0, 512),
		fieldBounds: make([]int, 0, 32),
		line:        1,
		column:      1,
	}
}

// Reset switches the Reader to a new source, discarding buffered input and
// keeping the configuration fields.
func (r *Reader) Reset(src io.Reader) {
	if src == nil {
		panic("csvstream: reader source cannot be nil")
	}
	r.src = src
	if r.buf == nil {
		r.buf = make([]byte, defaultBufferSize)
	}
	r.bufPos, r.bufLen = 0, 0
	r.bufErr = nil
	r.eof = false
	r.dataBuf = r.dataBuf[:0]
	r.fieldBounds = r.fieldBounds[:0]
	r.line, r.column = 1, 1
}

// ReadRow returns the next record as byte fields. It returns io.EOF, and no
// record, once the stream ends at a record boundary. Data at the end of the
// stream without a trailing line feed is returned as a final record.
//
// Unless ReuseRecord is set, the returned fields belong to the caller.
func (r *Reader) ReadRow() ([][]byte, error) {
	if err := r.readRecord(); err != nil {
		return nil, err
	}
	return r.buildRow(), r.checkWidth()
}

// Read is ReadRow for string fields.
func (r *Reader) Read() ([]string, error) {
	if err := r.readRecord(); err != nil {
		return nil, err
	}
	return r.buildRecord(), r.checkWidth()
}

// ReadAll reads records until io.EOF and returns them. It stops at the first
// other error, returning nil records.
func (r *Reader) ReadAll() (records [][]string, err error) {
	for {
		record, err := r.Read()
		if err == io.EOF {
			return records, nil
		}
		if err != nil {
			return nil, err
		}
		records = append(records, record)
	}
}

// readRecord runs the state machine until a record boundary, leaving the
// record in dataBuf and fieldBounds.
func (r *Reader) readRecord() error {
	if r == nil || r.src == nil {
		return io.EOF
	}
	comma, err := resolveComma(r.Comma)
	if err != nil {
		return err
	}

	r.dataBuf = r.dataBuf[:0]
	r.fieldBounds = r.fieldBounds[:0]
	r.recordLine = r.line

	state := stateFieldStart
	fieldStart := 0

	for {
		if r.bufPos >= r.bufLen {
			err := r.fill()
			if err == nil {
				continue
			}
			if err != io.EOF {
				return err
			}
			switch state {
			case stateFieldStart:
				if len(r.fieldBounds) == 0 {
					return io.EOF
				}
			case stateQuotedField:
				if r.Strict {
					return r.wrapError(r.line, r.column, ErrUnterminatedQuote)
				}
			}
			// Implicit close of whatever was accumulated.
			r.fieldBounds = append(r.fieldBounds, fieldStart, len(r.dataBuf))
			return nil
		}

		switch state {
		case stateFieldStart:
			if r.buf[r.bufPos] == Quote {
				r.bufPos++
				r.column++
				state = stateQuotedField
				continue
			}
			state = stateUnquotedField

		case stateUnquotedField:
			data := r.buf[r.bufPos:r.bufLen]
			i := indexUnquotedStop(data, comma)
			if i < 0 {
				r.dataBuf = append(r.dataBuf, data...)
				r.bufPos = r.bufLen
				r.column += len(data)
				continue
			}
			r.dataBuf = append(r.dataBuf, data[:i]...)
			r.bufPos += i + 1
			r.column += i

			switch data[i] {
			case comma:
				r.column++
				r.fieldBounds = append(r.fieldBounds, fieldStart, len(r.dataBuf))
				fieldStart = len(r.dataBuf)
				state = stateFieldStart
			case '\n':
				r.newLine()
				r.fieldBounds = append(r.fieldBounds, fieldStart, len(r.dataBuf))
				return nil
			case '\r':
				r.column++
			case Quote:
				if r.Strict {
					col := r.column
					r.column++
					return r.wrapError(r.line, col, ErrBareQuote)
				}
				r.column++
				r.dataBuf = append(r.dataBuf, Quote)
			}

		case stateQuotedField:
			data := r.buf[r.bufPos:r.bufLen]
			i := bytes.IndexByte(data, Quote)
			chunk := data
			if i >= 0 {
				chunk = data[:i]
			}
			r.dataBuf = append(r.dataBuf, chunk...)
			r.advance(chunk)
			r.bufPos += len(chunk)
			if i >= 0 {
				r.bufPos++
				r.column++
				state = stateQuoteSeen
			}

		case stateQuoteSeen:
			b := r.buf[r.bufPos]
			r.bufPos++
			switch b {
			case Quote:
				r.column++
				r.dataBuf = append(r.dataBuf, Quote)
				state = stateQuotedField
			case comma:
				r.column++
				r.fieldBounds = append(r.fieldBounds, fieldStart, len(r.dataBuf))
				fieldStart = len(r.dataBuf)
				state = stateFieldStart
			case '\n':
				r.newLine()
				r.fieldBounds = append(r.fieldBounds, fieldStart, len(r.dataBuf))
				return nil
			case '\r':
				// Wait for the byte after CR to close the field.
				r.column++
			default:
				if r.Strict {
					col := r.column
					r.column++
					return r.wrapError(r.line, col, ErrQuote)
				}
				r.column++
				r.dataBuf = append(r.dataBuf, b)
				state = stateUnquotedField
			}
		}
	}
}

// indexUnquotedStop returns the index of the first byte in data that an
// unquoted field cannot simply accumulate, or -1.
func indexUnquotedStop(data []byte, comma byte) int {
	for i, c := range data {
		switch c {
		case comma, '\n', '\r', Quote:
			return i
		}
	}
	return -1
}

// fill refills buf from the source. It returns io.EOF once the source is
// exhausted and keeps returning it without reading again.
func (r *Reader) fill() error {
	if r.eof {
		return io.EOF
	}
	for empty := 0; ; empty++ {
		if r.bufErr != nil {
			err := r.bufErr
			r.bufErr = nil
			if err == io.EOF {
				r.eof = true
			}
			return err
		}
		if empty >= maxEmptyReads {
			return io.ErrNoProgress
		}

		n, err := r.src.Read(r.buf)
		r.bufPos = 0
		r.bufLen = n
		r.bufErr = err
		if n > 0 {
			return nil
		}
	}
}

// advance updates line and column for bytes consumed inside a quoted field.
func (r *Reader) advance(chunk []byte) {
	nl := bytes.LastIndexByte(chunk, '\n')
	if nl < 0 {
		r.column += len(chunk)
		return
	}
	r.line += bytes.Count(chunk, []byte{'\n'})
	r.column = len(chunk) - nl
}

func (r *Reader) newLine() {
	r.line++
	r.column = 1
}

// buildRow slices the accumulated record into fields. Each field is capped so
// that appending to it never writes into its neighbour.
func (r *Reader) buildRow() [][]byte {
	fieldCount := len(r.fieldBounds) / 2

	var data []byte
	var row [][]byte
	if r.ReuseRecord {
		data = r.dataBuf
		if cap(r.row) < fieldCount {
			r.row = make([][]byte, fieldCount)
		}
		r.row = r.row[:fieldCount]
		row = r.row
	} else {
		data = make([]byte, len(r.dataBuf))
		copy(data, r.dataBuf)
		row = make([][]byte, fieldCount)
	}

	for i := 0; i < fieldCount; i++ {
		start := r.fieldBounds[2*i]
		end := r.fieldBounds[2*i+1]
		row[i] = data[start:end:end]
	}
	return row
}

// buildRecord maps the accumulated fieldBounds onto the data buffer, respecting ReuseRecord,
// and returns the materialised []string representing the current record.
func (r *Reader) buildRecord() []string {
	fieldCount := len(r.fieldBounds) / 2

	var recordStr string
	var record []string
	if r.ReuseRecord {
		if len(r.dataBuf) > 0 {
			// Zero-copy string construction so fields can share a single backing buffer.
			recordStr = unsafe.String(unsafe.SliceData(r.dataBuf), len(r.dataBuf))
		}
		if cap(r.record) < fieldCount {
			r.record = make([]string, fieldCount)
		}
		r.record = r.record[:fieldCount]
		record = r.record
	} else {
		recordStr = string(r.dataBuf)
		record = make([]string, fieldCount)
	}

	for i := 0; i < fieldCount; i++ {
		start := r.fieldBounds[2*i]
		end := r.fieldBounds[2*i+1]
		record[i] = recordStr[start:end]
	}
	return record
}

func (r *Reader) checkWidth() error {
	if r.FieldsPerRecord <= 0 {
		return nil
	}
	if n := len(r.fieldBounds) / 2; n != r.FieldsPerRecord {
		return r.wrapError(r.recordLine, 1, ErrFieldCount)
	}
	return nil
}

// wrapError attaches the supplied line and column to err, producing a *ParseError.
func (r *Reader) wrapError(line, column int, err error) error {
	return &ParseError{Line: line, Column: column, Err: err}
}
