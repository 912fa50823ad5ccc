// # csvstream: streaming delimiter-separated text for Go
//
// csvstream reads and writes delimiter-separated, quote-escaped records one
// row at a time. Neither side buffers a whole document.
//
// # Format
//
// - Fields are separated by a single delimiter byte (Comma, default ',').
// - A field is quoted with '"' when it contains the delimiter, a quote, CR or LF; every quote inside is doubled.
// - Records end with a single '\n'. The Reader also accepts CRLF.
//
// The Writer quotes exactly the fields that NeedsQuote reports, so anything it
// writes reads back byte for byte.
//
// # Leniency
//
// The Reader accepts every byte sequence by default: a quoted field left open
// at end of stream is closed implicitly and stray quotes are kept literally.
// Reader.Strict reports those cases as *ParseError instead.
//
// # Tab-separated data
//
// Set Comma to '\t' on both Reader and Writer; nothing else changes.
package csvstream
