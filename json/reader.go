package json

import (
	"unicode/utf8"

	"github.com/ikmak/mongo-go-driver/bson"
	"github.com/pkg/errors"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/unicode"
)

// Read parses buf as a single JSON object and materialises it into a
// *bson.Document. buf may be UTF-8, UTF-16, or UTF-32, detected from its
// code-unit width before the byte-level scanner runs.
func Read(buf []byte) (*bson.Document, error) {
	p, err := newParser(buf)
	if err != nil {
		return nil, err
	}
	tok, err := p.s.next()
	if err != nil {
		return nil, err
	}
	if tok.t != tokBeginObject {
		return nil, errors.Errorf("json_parse_error: expected '{' at offset %d", tok.pos)
	}
	return p.parseObjectBody()
}

// ReadArray parses buf as a single JSON array and materialises it into a
// *bson.Array.
func ReadArray(buf []byte) (*bson.Array, error) {
	p, err := newParser(buf)
	if err != nil {
		return nil, err
	}
	tok, err := p.s.next()
	if err != nil {
		return nil, err
	}
	if tok.t != tokBeginArray {
		return nil, errors.Errorf("json_parse_error: expected '[' at offset %d", tok.pos)
	}
	return p.parseArrayBody()
}

type parser struct {
	s *scanner
}

func newParser(buf []byte) (*parser, error) {
	utf8Buf, err := toUTF8(buf)
	if err != nil {
		return nil, err
	}
	return &parser{s: newScanner(utf8Buf)}, nil
}

// toUTF8 detects UTF-16/UTF-32 input by code-unit width and transcodes to
// UTF-8; UTF-8 input (including plain ASCII) passes through untouched.
func toUTF8(buf []byte) ([]byte, error) {
	switch detectEncoding(buf) {
	case encUTF16LE:
		return transcode(buf, unicode.UTF16(unicode.LittleEndian, unicode.IgnoreBOM))
	case encUTF16BE:
		return transcode(buf, unicode.UTF16(unicode.BigEndian, unicode.IgnoreBOM))
	case encUTF32:
		return utf32ToUTF8(buf)
	default:
		return buf, nil
	}
}

type encodingGuess byte

const (
	encUTF8 encodingGuess = iota
	encUTF16LE
	encUTF16BE
	encUTF32
)

// detectEncoding applies the classic zero-byte heuristic used to tell
// UTF-8/16/32 apart from the first few code units of a JSON document: JSON's
// first character is always ASCII (`{`, `[`, or whitespace), so looking at
// which bytes among the first four are zero identifies the unit width.
func detectEncoding(buf []byte) encodingGuess {
	if len(buf) < 4 {
		return encUTF8
	}
	b := buf[:4]
	switch {
	case b[0] == 0 && b[1] == 0 && b[2] == 0:
		return encUTF32
	case b[0] != 0 && b[1] == 0 && b[2] == 0 && b[3] == 0:
		return encUTF32
	case b[0] != 0 && b[1] == 0 && b[2] != 0 && b[3] == 0:
		return encUTF16LE
	case b[0] == 0 && b[1] != 0 && b[2] == 0 && b[3] != 0:
		return encUTF16BE
	default:
		return encUTF8
	}
}

func transcode(buf []byte, enc encoding.Encoding) ([]byte, error) {
	out, err := enc.NewDecoder().Bytes(buf)
	if err != nil {
		return nil, errors.Wrap(err, "json_parse_error: invalid UTF-16 input")
	}
	return out, nil
}

func utf32ToUTF8(buf []byte) ([]byte, error) {
	if len(buf)%4 != 0 {
		return nil, errors.New("json_parse_error: truncated UTF-32 input")
	}
	big := len(buf) >= 4 && buf[0] == 0 && buf[1] == 0 && buf[2] == 0
	out := make([]byte, 0, len(buf))
	var tmp [utf8.UTFMax]byte
	for i := 0; i < len(buf); i += 4 {
		var r rune
		if big {
			r = rune(uint32(buf[i])<<24 | uint32(buf[i+1])<<16 | uint32(buf[i+2])<<8 | uint32(buf[i+3]))
		} else {
			r = rune(uint32(buf[i+3])<<24 | uint32(buf[i+2])<<16 | uint32(buf[i+1])<<8 | uint32(buf[i]))
		}
		if r > utf8.MaxRune || (r >= 0xD800 && r <= 0xDFFF) {
			return nil, errors.Errorf("json_parse_error: invalid UTF-32 code unit at offset %d", i)
		}
		n := utf8.EncodeRune(tmp[:], r)
		out = append(out, tmp[:n]...)
	}
	return out, nil
}

// fieldKind tags a single parsed object field so the extended-JSON wrapper
// dispatcher can inspect field shapes without re-parsing anything.
type fieldKind byte

const (
	fieldString fieldKind = iota
	fieldInt32
	fieldInt64
	fieldDouble
	fieldBool
	fieldNull
	fieldDocument
	fieldArray
	// fieldOpaque carries an element type a plain JSON literal can never
	// produce (oid, date, regex, binary, timestamp, ...), already built by
	// extended-JSON wrapper dispatch.
	fieldOpaque
)

type field struct {
	key    string
	d      fieldKind
	s      string
	i32    int32
	i64    int64
	f64    float64
	b      bool
	doc    *bson.Document
	arr    *bson.Array
	opaque *bson.Element
}

func (f field) toElement() *bson.Element {
	switch f.d {
	case fieldString:
		return bson.EC.String(f.key, f.s)
	case fieldInt32:
		return bson.EC.Int32(f.key, f.i32)
	case fieldInt64:
		return bson.EC.Int64(f.key, f.i64)
	case fieldDouble:
		return bson.EC.Double(f.key, f.f64)
	case fieldBool:
		return bson.EC.Boolean(f.key, f.b)
	case fieldNull:
		return bson.EC.Null(f.key)
	case fieldDocument:
		return bson.EC.SubDocument(f.key, f.doc)
	case fieldArray:
		return bson.EC.Array(f.key, f.arr)
	case fieldOpaque:
		return f.opaque
	}
	panic("json: unreachable field kind")
}

func (f field) toValue() *bson.Value {
	switch f.d {
	case fieldString:
		return bson.VC.String(f.s)
	case fieldInt32:
		return bson.VC.Int32(f.i32)
	case fieldInt64:
		return bson.VC.Int64(f.i64)
	case fieldDouble:
		return bson.VC.Double(f.f64)
	case fieldBool:
		return bson.VC.Boolean(f.b)
	case fieldNull:
		return bson.VC.Null()
	case fieldDocument:
		return bson.VC.Document(f.doc)
	case fieldArray:
		return bson.VC.Array(f.arr)
	case fieldOpaque:
		return f.opaque.Value()
	}
	panic("json: unreachable field kind")
}

// parseObjectBody parses the comma-separated member list of an object whose
// opening '{' has already been consumed, through its closing '}'.
func (p *parser) parseObjectBody() (*bson.Document, error) {
	fields, err := p.parseFields()
	if err != nil {
		return nil, err
	}

	elems := make([]*bson.Element, 0, len(fields))
	for _, f := range fields {
		elems = append(elems, f.toElement())
	}
	return bson.NewDocument(elems...), nil
}

func (p *parser) parseFields() ([]field, error) {
	var fields []field

	tok, err := p.s.next()
	if err != nil {
		return nil, err
	}
	if tok.t == tokEndObject {
		return fields, nil
	}

	for {
		if tok.t != tokString {
			return nil, errors.Errorf("json_parse_error: expected object key at offset %d", tok.pos)
		}
		key := tok.s

		colon, err := p.s.next()
		if err != nil {
			return nil, err
		}
		if colon.t != tokColon {
			return nil, errors.Errorf("json_parse_error: expected ':' at offset %d", colon.pos)
		}

		f, err := p.parseFieldValue(key)
		if err != nil {
			return nil, err
		}
		fields = append(fields, f)

		sep, err := p.s.next()
		if err != nil {
			return nil, err
		}
		switch sep.t {
		case tokEndObject:
			return fields, nil
		case tokComma:
			tok, err = p.s.next()
			if err != nil {
				return nil, err
			}
			if tok.t == tokEndObject {
				return nil, errors.Errorf("json_parse_error: trailing comma before '}' at offset %d", tok.pos)
			}
		default:
			return nil, errors.Errorf("json_parse_error: expected ',' or '}' at offset %d", sep.pos)
		}
	}
}

func (p *parser) parseFieldValue(key string) (field, error) {
	tok, err := p.s.next()
	if err != nil {
		return field{}, err
	}
	switch tok.t {
	case tokString:
		return field{key: key, d: fieldString, s: tok.s}, nil
	case tokInt32:
		return field{key: key, d: fieldInt32, i32: tok.i32}, nil
	case tokInt64:
		return field{key: key, d: fieldInt64, i64: tok.i64}, nil
	case tokDouble:
		return field{key: key, d: fieldDouble, f64: tok.f64}, nil
	case tokBool:
		return field{key: key, d: fieldBool, b: tok.b}, nil
	case tokNull:
		return field{key: key, d: fieldNull}, nil
	case tokBeginObject:
		inner, err := p.parseFields()
		if err != nil {
			return field{}, err
		}
		if el, ok, err := wrapElement(key, inner); err != nil {
			return field{}, err
		} else if ok {
			return fieldFromElement(el), nil
		}
		elems := make([]*bson.Element, 0, len(inner))
		for _, f := range inner {
			elems = append(elems, f.toElement())
		}
		return field{key: key, d: fieldDocument, doc: bson.NewDocument(elems...)}, nil
	case tokBeginArray:
		arr, err := p.parseArrayBody()
		if err != nil {
			return field{}, err
		}
		return field{key: key, d: fieldArray, arr: arr}, nil
	}
	return field{}, errors.Errorf("json_parse_error: unexpected token at offset %d", tok.pos)
}

// fieldFromElement adapts an *bson.Element produced by wrapper dispatch back
// into a field, so the rest of the object/array builders don't need a
// second code path for wrapper-typed members.
func fieldFromElement(el *bson.Element) field {
	v := el.Value()
	switch v.Type() {
	case bson.TypeString:
		return field{key: el.Key(), d: fieldString, s: v.StringValue()}
	case bson.TypeInt32:
		return field{key: el.Key(), d: fieldInt32, i32: v.Int32()}
	case bson.TypeInt64:
		return field{key: el.Key(), d: fieldInt64, i64: v.Int64()}
	case bson.TypeDouble:
		return field{key: el.Key(), d: fieldDouble, f64: v.Double()}
	case bson.TypeBoolean:
		return field{key: el.Key(), d: fieldBool, b: v.Boolean()}
	case bson.TypeNull:
		return field{key: el.Key(), d: fieldNull}
	case bson.TypeEmbeddedDocument:
		return field{key: el.Key(), d: fieldDocument, doc: v.MutableDocument()}
	case bson.TypeArray:
		return field{key: el.Key(), d: fieldArray, arr: v.MutableArray()}
	default:
		return wrapperScalarField(el)
	}
}

// wrapperScalarField handles element types a plain JSON value can never
// natively carry (oid, date, regex, binary, ...): these only ever arise
// from wrapper dispatch, so they are threaded through as opaque elements
// rather than one of the plain fieldKinds.
func wrapperScalarField(el *bson.Element) field {
	return field{key: el.Key(), d: fieldOpaque, opaque: el}
}

func (p *parser) parseArrayBody() (*bson.Array, error) {
	tok, err := p.s.next()
	if err != nil {
		return nil, err
	}
	if tok.t == tokEndArray {
		return bson.NewArray(), nil
	}

	var values []*bson.Value
	for {
		v, err := p.parseArrayElement(tok)
		if err != nil {
			return nil, err
		}
		values = append(values, v)

		sep, err := p.s.next()
		if err != nil {
			return nil, err
		}
		switch sep.t {
		case tokEndArray:
			return bson.NewArray(values...), nil
		case tokComma:
			tok, err = p.s.next()
			if err != nil {
				return nil, err
			}
			if tok.t == tokEndArray {
				return nil, errors.Errorf("json_parse_error: trailing comma before ']' at offset %d", tok.pos)
			}
		default:
			return nil, errors.Errorf("json_parse_error: expected ',' or ']' at offset %d", sep.pos)
		}
	}
}

func (p *parser) parseArrayElement(tok token) (*bson.Value, error) {
	switch tok.t {
	case tokString:
		return bson.VC.String(tok.s), nil
	case tokInt32:
		return bson.VC.Int32(tok.i32), nil
	case tokInt64:
		return bson.VC.Int64(tok.i64), nil
	case tokDouble:
		return bson.VC.Double(tok.f64), nil
	case tokBool:
		return bson.VC.Boolean(tok.b), nil
	case tokNull:
		return bson.VC.Null(), nil
	case tokBeginObject:
		inner, err := p.parseFields()
		if err != nil {
			return nil, err
		}
		if el, ok, err := wrapElement("", inner); err != nil {
			return nil, err
		} else if ok {
			return el.Value(), nil
		}
		elems := make([]*bson.Element, 0, len(inner))
		for _, f := range inner {
			elems = append(elems, f.toElement())
		}
		return bson.VC.Document(bson.NewDocument(elems...)), nil
	case tokBeginArray:
		arr, err := p.parseArrayBody()
		if err != nil {
			return nil, err
		}
		return bson.VC.Array(arr), nil
	}
	return nil, errors.Errorf("json_parse_error: unexpected token at offset %d", tok.pos)
}
