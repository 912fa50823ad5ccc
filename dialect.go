package csvstream

import "errors"

const (
	// Quote is the quote character. It is not configurable.
	Quote byte = '"'
	// DefaultComma is the delimiter used when Comma is left zero.
	DefaultComma byte = ','
)

// ErrInvalidDelim is returned when the configured delimiter is the quote byte, CR or LF.
var ErrInvalidDelim = errors.New("csvstream: invalid field delimiter")

// resolveComma applies the default for a zero delimiter and validates the result.
func resolveComma(c byte) (byte, error) {
	if c == 0 {
		return DefaultComma, nil
	}
	if c == Quote || c == '\r' || c == '\n' {
		return 0, ErrInvalidDelim
	}
	return c, nil
}

// NeedsQuote reports whether field must be quoted when written with the given
// delimiter: it contains the delimiter, the quote byte, a carriage return or a
// line feed.
func NeedsQuote[F ~string | ~[]byte](field F, comma byte) bool {
	for i := 0; i < len(field); i++ {
		switch field[i] {
		case Quote, comma, '\n', '\r':
			return true
		}
	}
	return false
}
