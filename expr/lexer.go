package expr

import (
	"strconv"

	"github.com/pkg/errors"
)

type tokenKind byte

const (
	tokEOF tokenKind = iota
	tokInt
	tokString
	tokTrue
	tokFalse
	tokPath
	tokLParen
	tokRParen
	tokPlus
	tokMinus
	tokStar
	tokSlash
	tokNot
	tokEq
	tokNeq
	tokLt
	tokLte
	tokGt
	tokGte
	tokAnd
	tokOr
)

type token struct {
	kind tokenKind
	i    int64
	s    string
	pos  int
}

type lexer struct {
	src string
	pos int
}

func newLexer(src string) *lexer { return &lexer{src: src} }

func (l *lexer) peekByte() byte {
	if l.pos >= len(l.src) {
		return 0
	}
	return l.src[l.pos]
}

func (l *lexer) skipSpace() {
	for l.pos < len(l.src) {
		switch l.src[l.pos] {
		case ' ', '\t', '\n', '\r':
			l.pos++
		default:
			return
		}
	}
}

// isPathStart reports whether c can begin a variable path token: `@`, a
// leading `$`, or an identifier character.
func isPathStart(c byte) bool {
	return c == '@' || c == '$' || c == '_' ||
		(c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isPathCont(c byte) bool {
	return isPathStart(c) || (c >= '0' && c <= '9') || c == '.' || c == '[' || c == ']' ||
		c == '\'' || c == '"' || c == '-'
}

func (l *lexer) next() (token, error) {
	l.skipSpace()
	start := l.pos
	if l.pos >= len(l.src) {
		return token{kind: tokEOF, pos: start}, nil
	}

	c := l.src[l.pos]
	switch c {
	case '(':
		l.pos++
		return token{kind: tokLParen, pos: start}, nil
	case ')':
		l.pos++
		return token{kind: tokRParen, pos: start}, nil
	case '+':
		l.pos++
		return token{kind: tokPlus, pos: start}, nil
	case '-':
		l.pos++
		return token{kind: tokMinus, pos: start}, nil
	case '*':
		l.pos++
		return token{kind: tokStar, pos: start}, nil
	case '/':
		l.pos++
		return token{kind: tokSlash, pos: start}, nil
	case '!':
		l.pos++
		if l.peekByte() == '=' {
			l.pos++
			return token{kind: tokNeq, pos: start}, nil
		}
		return token{kind: tokNot, pos: start}, nil
	case '=':
		l.pos++
		if l.peekByte() == '=' {
			l.pos++
			return token{kind: tokEq, pos: start}, nil
		}
		return token{}, errors.Errorf("expression_parse_error: unexpected '=' at offset %d", start)
	case '<':
		l.pos++
		if l.peekByte() == '=' {
			l.pos++
			return token{kind: tokLte, pos: start}, nil
		}
		return token{kind: tokLt, pos: start}, nil
	case '>':
		l.pos++
		if l.peekByte() == '=' {
			l.pos++
			return token{kind: tokGte, pos: start}, nil
		}
		return token{kind: tokGt, pos: start}, nil
	case '&':
		l.pos++
		if l.peekByte() == '&' {
			l.pos++
			return token{kind: tokAnd, pos: start}, nil
		}
		return token{}, errors.Errorf("expression_parse_error: unexpected '&' at offset %d", start)
	case '|':
		l.pos++
		if l.peekByte() == '|' {
			l.pos++
			return token{kind: tokOr, pos: start}, nil
		}
		return token{}, errors.Errorf("expression_parse_error: unexpected '|' at offset %d", start)
	case '"':
		return l.scanString()
	}

	if c >= '0' && c <= '9' {
		return l.scanNumber()
	}

	if isPathStart(c) {
		return l.scanPathOrLiteral()
	}

	return token{}, errors.Errorf("expression_parse_error: unexpected character %q at offset %d", c, start)
}

func (l *lexer) scanString() (token, error) {
	start := l.pos
	l.pos++ // consume opening quote
	var sb []byte
	for {
		if l.pos >= len(l.src) {
			return token{}, errors.Errorf("expression_parse_error: unterminated string at offset %d", start)
		}
		c := l.src[l.pos]
		if c == '"' {
			l.pos++
			return token{kind: tokString, s: string(sb), pos: start}, nil
		}
		if c == '\\' && l.pos+1 < len(l.src) {
			l.pos++
			sb = append(sb, l.src[l.pos])
			l.pos++
			continue
		}
		sb = append(sb, c)
		l.pos++
	}
}

func (l *lexer) scanNumber() (token, error) {
	start := l.pos
	for l.pos < len(l.src) && l.src[l.pos] >= '0' && l.src[l.pos] <= '9' {
		l.pos++
	}
	v, err := strconv.ParseInt(l.src[start:l.pos], 10, 64)
	if err != nil {
		return token{}, errors.Wrapf(err, "expression_parse_error: invalid integer at offset %d", start)
	}
	return token{kind: tokInt, i: v, pos: start}, nil
}

func (l *lexer) scanPathOrLiteral() (token, error) {
	start := l.pos
	depth := 0
	for l.pos < len(l.src) {
		c := l.src[l.pos]
		if c == '[' {
			depth++
			l.pos++
			continue
		}
		if c == ']' {
			if depth == 0 {
				break
			}
			depth--
			l.pos++
			continue
		}
		if depth > 0 {
			l.pos++
			continue
		}
		if isPathCont(c) {
			l.pos++
			continue
		}
		break
	}
	lit := l.src[start:l.pos]
	switch lit {
	case "true":
		return token{kind: tokTrue, pos: start}, nil
	case "false":
		return token{kind: tokFalse, pos: start}, nil
	}
	return token{kind: tokPath, s: lit, pos: start}, nil
}
