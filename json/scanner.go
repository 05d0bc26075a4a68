// Package json implements a JSON reader and writer that materialise
// directly into and out of bson.Document/bson.Array, the way the BSON
// library's own JSON surface is described: no intermediate generic
// interface{} tree, no streaming SAX-style callbacks.
//
// The lexer below is the same state-machine shape as bson/json_scanner.go
// (whitespace/string/number/literal scanning over a byte cursor), adapted
// to read from an in-memory buffer rather than an io.Reader, since the
// whole input is already materialised after UTF transcoding, and extended
// to combine UTF-16 surrogate pairs inside `\uXXXX` escapes rather than
// writing each code unit's two bytes verbatim.
package json

import (
	"bytes"
	"strconv"

	"github.com/pkg/errors"
)

type tokenType byte

const (
	tokBeginObject tokenType = iota
	tokEndObject
	tokBeginArray
	tokEndArray
	tokColon
	tokComma
	tokInt32
	tokInt64
	tokDouble
	tokString
	tokBool
	tokNull
	tokEOF
)

type token struct {
	t   tokenType
	i32 int32
	i64 int64
	f64 float64
	s   string
	b   bool
	pos int
}

type scanner struct {
	buf []byte
	pos int
}

func newScanner(buf []byte) *scanner { return &scanner{buf: buf} }

// Pos reports the scanner's current byte offset.
func (s *scanner) Pos() int { return s.pos }

func (s *scanner) readByte() (byte, bool) {
	if s.pos >= len(s.buf) {
		return 0, false
	}
	b := s.buf[s.pos]
	s.pos++
	return b, true
}

func (s *scanner) peekByte() (byte, bool) {
	if s.pos >= len(s.buf) {
		return 0, false
	}
	return s.buf[s.pos], true
}

func isWhiteSpace(c byte) bool { return c == ' ' || c == '\t' || c == '\r' || c == '\n' }
func isDigit(c byte) bool      { return c >= '0' && c <= '9' }
func isValueTerminator(c byte) bool {
	return c == ',' || c == '}' || c == ']' || isWhiteSpace(c)
}

func (s *scanner) next() (token, error) {
	c, ok := s.readByte()
	for ok && isWhiteSpace(c) {
		c, ok = s.readByte()
	}
	if !ok {
		return token{t: tokEOF, pos: s.pos}, nil
	}

	p := s.pos - 1
	switch c {
	case '{':
		return token{t: tokBeginObject, pos: p}, nil
	case '}':
		return token{t: tokEndObject, pos: p}, nil
	case '[':
		return token{t: tokBeginArray, pos: p}, nil
	case ']':
		return token{t: tokEndArray, pos: p}, nil
	case ':':
		return token{t: tokColon, pos: p}, nil
	case ',':
		return token{t: tokComma, pos: p}, nil
	case '"':
		return s.scanString(p)
	case 't', 'f', 'n':
		return s.scanLiteral(c, p)
	}

	if c == '-' || isDigit(c) {
		return s.scanNumber(c, p)
	}

	return token{}, errors.Errorf("json_parse_error: unexpected character %q at offset %d", c, p)
}

func (s *scanner) scanString(start int) (token, error) {
	var b bytes.Buffer
	for {
		c, ok := s.readByte()
		if !ok {
			return token{}, errors.Errorf("json_parse_error: unterminated string starting at offset %d", start)
		}
		switch c {
		case '\\':
			esc, ok := s.readByte()
			if !ok {
				return token{}, errors.Errorf("json_parse_error: unterminated escape at offset %d", s.pos)
			}
			switch esc {
			case '"', '\\', '/', '\'':
				b.WriteByte(esc)
			case 'b':
				b.WriteByte('\b')
			case 'f':
				b.WriteByte('\f')
			case 'n':
				b.WriteByte('\n')
			case 'r':
				b.WriteByte('\r')
			case 't':
				b.WriteByte('\t')
			case 'u':
				r, err := s.readHex4()
				if err != nil {
					return token{}, err
				}
				if isHighSurrogate(r) {
					mark := s.pos
					if next2, ok := s.peekByte(); ok && next2 == '\\' {
						s.pos++
						if u, ok := s.readByte(); ok && u == 'u' {
							r2, err := s.readHex4()
							if err != nil {
								return token{}, err
							}
							if isLowSurrogate(r2) {
								combined := combineSurrogates(r, r2)
								b.WriteRune(combined)
								continue
							}
							// not a low surrogate: emit both independently
							b.WriteRune(r)
							b.WriteRune(r2)
							continue
						}
					}
					s.pos = mark
					b.WriteRune(r)
				} else {
					b.WriteRune(r)
				}
			default:
				return token{}, errors.Errorf("json_parse_error: invalid escape sequence '\\%c' at offset %d", esc, s.pos-1)
			}
		case '"':
			return token{t: tokString, s: b.String(), pos: start}, nil
		default:
			b.WriteByte(c)
		}
	}
}

func (s *scanner) readHex4() (rune, error) {
	if s.pos+4 > len(s.buf) {
		return 0, errors.Errorf("json_parse_error: truncated \\u escape at offset %d", s.pos)
	}
	v, err := strconv.ParseUint(string(s.buf[s.pos:s.pos+4]), 16, 32)
	if err != nil {
		return 0, errors.Wrapf(err, "json_parse_error: invalid \\u escape at offset %d", s.pos)
	}
	s.pos += 4
	return rune(v), nil
}

func isHighSurrogate(r rune) bool { return r >= 0xD800 && r <= 0xDBFF }
func isLowSurrogate(r rune) bool  { return r >= 0xDC00 && r <= 0xDFFF }

func combineSurrogates(hi, lo rune) rune {
	return ((hi - 0xD800) << 10) | (lo - 0xDC00) + 0x10000
}

func (s *scanner) scanLiteral(first byte, start int) (token, error) {
	want := map[byte]string{'t': "true", 'f': "false", 'n': "null"}[first]
	lit := make([]byte, 1, len(want))
	lit[0] = first
	for len(lit) < len(want) {
		c, ok := s.readByte()
		if !ok {
			return token{}, errors.Errorf("json_parse_error: invalid literal at offset %d", start)
		}
		lit = append(lit, c)
	}
	if string(lit) != want {
		return token{}, errors.Errorf("json_parse_error: invalid literal at offset %d", start)
	}
	if c, ok := s.peekByte(); ok && !isValueTerminator(c) {
		return token{}, errors.Errorf("json_parse_error: invalid literal at offset %d", start)
	}
	switch first {
	case 't':
		return token{t: tokBool, b: true, pos: start}, nil
	case 'f':
		return token{t: tokBool, b: false, pos: start}, nil
	default:
		return token{t: tokNull, pos: start}, nil
	}
}

type numberState byte

const (
	stLeadingMinus numberState = iota
	stLeadingZero
	stIntegerDigits
	stDecimalPoint
	stFractionDigits
	stExponentLetter
	stExponentSign
	stExponentDigits
)

func (s *scanner) scanNumber(first byte, start int) (token, error) {
	var b bytes.Buffer
	b.WriteByte(first)

	isDouble := false
	var st numberState
	switch first {
	case '-':
		st = stLeadingMinus
	case '0':
		st = stLeadingZero
	default:
		st = stIntegerDigits
	}

	for {
		c, ok := s.peekByte()
		done := !ok

		if ok {
			switch st {
			case stLeadingMinus:
				switch {
				case c == '0':
					st = stLeadingZero
				case isDigit(c):
					st = stIntegerDigits
				default:
					return token{}, errors.Errorf("json_parse_error: invalid number at offset %d", start)
				}
				b.WriteByte(c)
				s.pos++
				continue
			case stLeadingZero:
				switch {
				case c == '.':
					st = stDecimalPoint
					isDouble = true
				case c == 'e' || c == 'E':
					st = stExponentLetter
					isDouble = true
				case isValueTerminator(c):
					done = true
				default:
					return token{}, errors.Errorf("json_parse_error: invalid number at offset %d", start)
				}
			case stIntegerDigits:
				switch {
				case c == '.':
					st = stDecimalPoint
					isDouble = true
				case c == 'e' || c == 'E':
					st = stExponentLetter
					isDouble = true
				case isValueTerminator(c):
					done = true
				case isDigit(c):
					// stay
				default:
					return token{}, errors.Errorf("json_parse_error: invalid number at offset %d", start)
				}
			case stDecimalPoint:
				if !isDigit(c) {
					return token{}, errors.Errorf("json_parse_error: invalid number at offset %d", start)
				}
				st = stFractionDigits
			case stFractionDigits:
				switch {
				case c == 'e' || c == 'E':
					st = stExponentLetter
				case isValueTerminator(c):
					done = true
				case isDigit(c):
					// stay
				default:
					return token{}, errors.Errorf("json_parse_error: invalid number at offset %d", start)
				}
			case stExponentLetter:
				switch {
				case c == '+' || c == '-':
					st = stExponentSign
				case isDigit(c):
					st = stExponentDigits
				default:
					return token{}, errors.Errorf("json_parse_error: invalid number at offset %d", start)
				}
			case stExponentSign:
				if !isDigit(c) {
					return token{}, errors.Errorf("json_parse_error: invalid number at offset %d", start)
				}
				st = stExponentDigits
			case stExponentDigits:
				switch {
				case isValueTerminator(c):
					done = true
				case isDigit(c):
					// stay
				default:
					return token{}, errors.Errorf("json_parse_error: invalid number at offset %d", start)
				}
			}
		}

		if done {
			if st == stLeadingMinus || st == stDecimalPoint || st == stExponentLetter || st == stExponentSign {
				return token{}, errors.Errorf("json_parse_error: truncated number at offset %d", start)
			}
			break
		}

		b.WriteByte(c)
		s.pos++
	}

	text := b.String()
	if isDouble {
		f, err := strconv.ParseFloat(text, 64)
		if err != nil {
			return token{}, errors.Wrapf(err, "json_parse_error: invalid number %q at offset %d", text, start)
		}
		return token{t: tokDouble, f64: f, pos: start}, nil
	}

	v, err := strconv.ParseInt(text, 10, 64)
	if err != nil {
		return token{}, errors.Wrapf(err, "json_parse_error: number out of range %q at offset %d", text, start)
	}
	if v >= -2147483648 && v <= 2147483647 {
		return token{t: tokInt32, i32: int32(v), pos: start}, nil
	}
	return token{t: tokInt64, i64: v, pos: start}, nil
}
