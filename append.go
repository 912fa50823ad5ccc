package csvstream

// AppendField appends field to dst, quoting it and doubling every embedded
// quote only when NeedsQuote reports it is required.
func AppendField[F ~string | ~[]byte](dst []byte, field F, comma byte) []byte {
	if !NeedsQuote(field, comma) {
		return append(dst, field...)
	}
	dst = append(dst, Quote)
	start := 0
	for i := 0; i < len(field); i++ {
		if field[i] == Quote {
			// Emit the run including the quote, then the quote again.
			dst = append(dst, field[start:i+1]...)
			dst = append(dst, Quote)
			start = i + 1
		}
	}
	dst = append(dst, field[start:]...)
	return append(dst, Quote)
}

// AppendRecord appends the fields of record separated by comma and terminated by '\n'.
func AppendRecord[F ~string | ~[]byte](dst []byte, record []F, comma byte) []byte {
	for i := range record {
		if i > 0 {
			dst = append(dst, comma)
		}
		dst = AppendField(dst, record[i], comma)
	}
	return append(dst, '\n')
}
