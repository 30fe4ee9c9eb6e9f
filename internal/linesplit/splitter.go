package linesplit

import (
	"bufio"
	"bytes"
	"io"
	"iter"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/unicode"
)

// DefaultMaxLineBytes bounds a single buffered line.
const DefaultMaxLineBytes = 1 << 20

const initialBufferSize = 4096

// SplitLines is a bufio.SplitFunc that ends a token at the earliest '\n' or
// '\r'. Unterminated data left at EOF is consumed without producing a token.
func SplitLines(data []byte, atEOF bool) (advance int, token []byte, err error) {
	if i := bytes.IndexAny(data, "\n\r"); i >= 0 {
		return i + 1, data[:i], nil
	}
	if atEOF && len(data) > 0 {
		return len(data), nil, nil
	}
	return 0, nil, nil
}

// Option configures a Scanner.
type Option func(*Scanner)

// WithMaxLineBytes overrides the longest line the scanner will buffer.
func WithMaxLineBytes(n int) Option {
	return func(s *Scanner) {
		if n > 0 {
			s.maxLine = n
		}
	}
}

// Scanner yields trimmed, non-empty lines from a byte stream.
type Scanner struct {
	sc      *bufio.Scanner
	dec     *encoding.Decoder
	maxLine int
	line    string
}

// NewScanner wraps r. The scanner is not safe for concurrent use.
func NewScanner(r io.Reader, opts ...Option) *Scanner {
	s := &Scanner{
		dec:     unicode.UTF8.NewDecoder(),
		maxLine: DefaultMaxLineBytes,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.sc = bufio.NewScanner(r)
	s.sc.Buffer(make([]byte, 0, min(initialBufferSize, s.maxLine)), s.maxLine)
	s.sc.Split(SplitLines)
	return s
}

// Scan advances to the next non-empty line. It returns false at end of
// stream or on a read error; see Err.
func (s *Scanner) Scan() bool {
	for s.sc.Scan() {
		line := strings.TrimSpace(s.decode(s.sc.Bytes()))
		if line == "" {
			continue
		}
		s.line = line
		return true
	}
	s.line = ""
	return false
}

// Text returns the most recent line produced by Scan.
func (s *Scanner) Text() string {
	return s.line
}

// Err returns the first non-EOF error encountered.
func (s *Scanner) Err() error {
	return s.sc.Err()
}

func (s *Scanner) decode(raw []byte) string {
	if utf8.Valid(raw) {
		return string(raw)
	}
	decoded, err := s.dec.Bytes(raw)
	if err != nil {
		return strings.ToValidUTF8(string(raw), string(utf8.RuneError))
	}
	return string(decoded)
}

// Lines returns a lazy sequence over the lines of r. Read errors end the
// sequence silently; use Scanner directly when the error matters.
func Lines(r io.Reader, opts ...Option) iter.Seq[string] {
	return func(yield func(string) bool) {
		s := NewScanner(r, opts...)
		for s.Scan() {
			if !yield(s.Text()) {
				return
			}
		}
	}
}
