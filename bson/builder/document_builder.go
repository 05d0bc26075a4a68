// Copyright (C) MongoDB, Inc. 2017-present.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may
// not use this file except in compliance with the License. You may obtain
// a copy of the License at http://www.apache.org/licenses/LICENSE-2.0

package builder

import (
	"encoding/binary"

	"github.com/ikmak/mongo-go-driver/bson/elements"
)

// C is a convenience variable provided for access to the Constructor methods.
var C Constructor

// AC is a convenience variable provided for access to the ArrayConstructor methods.
var AC ArrayConstructor

// Constructor is used as a namespace for document element constructor functions.
type Constructor struct{}

// sizerFunc returns the number of bytes an element will occupy once written.
type sizerFunc func() uint32

// elementFunc writes an element into writer starting at start, returning the
// number of bytes written.
type elementFunc func(start uint32, writer []byte) (uint32, error)

// Elementer is implemented by values that can be appended to a DocumentBuilder.
type Elementer interface {
	Element() (sizerFunc, elementFunc)
}

type constructedElement struct {
	sizer sizerFunc
	write elementFunc
}

func (ce constructedElement) Element() (sizerFunc, elementFunc) { return ce.sizer, ce.write }

func newElement(sizer sizerFunc, write elementFunc) constructedElement {
	return constructedElement{sizer: sizer, write: write}
}

// DocumentBuilder allows the creation of a BSON document by appending elements
// and then writing the document. The document can be written multiple times,
// so appending then writing and then appending and writing again is a valid
// usage pattern.
type DocumentBuilder struct {
	funcs  []elementFunc
	sizers []sizerFunc
}

// NewDocumentBuilder constructs an empty DocumentBuilder.
func NewDocumentBuilder() *DocumentBuilder {
	return new(DocumentBuilder)
}

func (db *DocumentBuilder) init() {
	if db.funcs == nil {
		db.funcs = make([]elementFunc, 0)
		db.sizers = make([]sizerFunc, 0)
	}
}

// Append adds the given elements to the BSON document.
func (db *DocumentBuilder) Append(elems ...Elementer) *DocumentBuilder {
	db.init()
	for _, elem := range elems {
		sizer, f := elem.Element()
		db.sizers = append(db.sizers, sizer)
		db.funcs = append(db.funcs, f)
	}
	return db
}

// RequiredBytes returns the number of bytes needed to hold the document this
// builder would produce, including the length prefix and the trailing null
// byte.
func (db *DocumentBuilder) RequiredBytes() uint32 {
	var total uint32 = 5
	for _, sizer := range db.sizers {
		total += sizer()
	}
	return total
}

// WriteDocument writes the document this builder represents into writer,
// which must be at least RequiredBytes() long.
func (db *DocumentBuilder) WriteDocument(writer []byte) (int64, error) {
	size := db.RequiredBytes()
	if uint32(len(writer)) < size {
		return 0, elements.ErrTooSmall
	}

	binary.LittleEndian.PutUint32(writer[0:4], size)

	start := uint32(4)
	for _, f := range db.funcs {
		n, err := f(start, writer)
		if err != nil {
			return int64(start), err
		}
		start += n
	}
	writer[start] = 0x00

	return int64(size), nil
}

// Build writes the document this builder represents into a freshly allocated
// slice of bytes.
func (db *DocumentBuilder) Build() ([]byte, error) {
	buf := make([]byte, db.RequiredBytes())
	_, err := db.WriteDocument(buf)
	return buf, err
}

// Double creates a double element with the given key and value.
func (Constructor) Double(key string, f float64) Elementer {
	return newElement(
		func() uint32 { return uint32(1 + len(key) + 1 + 8) },
		func(start uint32, writer []byte) (uint32, error) {
			n, err := elements.Double.Element(uint(start), writer, key, f)
			return uint32(n), err
		},
	)
}

// String creates a string element with the given key and value.
func (Constructor) String(key string, s string) Elementer {
	return newElement(
		func() uint32 { return uint32(1 + len(key) + 1 + 4 + len(s) + 1) },
		func(start uint32, writer []byte) (uint32, error) {
			n, err := elements.String.Element(uint(start), writer, key, s)
			return uint32(n), err
		},
	)
}

// SubDocument creates a subdocument element with the given key, built from
// another DocumentBuilder.
func (Constructor) SubDocument(key string, sub *DocumentBuilder) Elementer {
	return newElement(
		func() uint32 { return uint32(1+len(key)+1) + sub.RequiredBytes() },
		func(start uint32, writer []byte) (uint32, error) {
			doc, err := sub.Build()
			if err != nil {
				return 0, err
			}
			n, err := elements.Document.Element(uint(start), writer, key, doc)
			return uint32(n), err
		},
	)
}

// SubDocumentWithElements creates a subdocument element with the given key
// from a set of elements.
func (c Constructor) SubDocumentWithElements(key string, elems ...Elementer) Elementer {
	sub := NewDocumentBuilder().Append(elems...)
	return c.SubDocument(key, sub)
}

// Array creates an array element with the given key, built from an
// ArrayBuilder.
func (Constructor) Array(key string, arr *ArrayBuilder) Elementer {
	return newElement(
		func() uint32 { return uint32(1+len(key)+1) + arr.RequiredBytes() },
		func(start uint32, writer []byte) (uint32, error) {
			doc, err := arr.Build()
			if err != nil {
				return 0, err
			}
			n, err := elements.Array.Element(uint(start), writer, key, doc)
			return uint32(n), err
		},
	)
}

// ArrayWithElements creates an array element with the given key from a set of
// array elements.
func (c Constructor) ArrayWithElements(key string, elems ...ArrayElementer) Elementer {
	var ab ArrayBuilder
	ab.Append(elems...)
	return c.Array(key, &ab)
}

// Binary creates a binary element with the given key and value.
func (c Constructor) Binary(key string, b []byte) Elementer {
	return c.BinaryWithSubtype(key, b, 0)
}

// BinaryWithSubtype creates a binary element with the given key, value, and subtype.
func (Constructor) BinaryWithSubtype(key string, b []byte, btype byte) Elementer {
	return newElement(
		func() uint32 { return uint32(1 + len(key) + 1 + 4 + 1 + len(b)) },
		func(start uint32, writer []byte) (uint32, error) {
			n, err := elements.Binary.Element(uint(start), writer, key, b, btype)
			return uint32(n), err
		},
	)
}

// Undefined creates an undefined element with the given key.
func (Constructor) Undefined(key string) Elementer {
	return newElement(
		func() uint32 { return uint32(1 + len(key) + 1) },
		func(start uint32, writer []byte) (uint32, error) {
			n, err := elements.Byte.Encode(uint(start), writer, '\x06')
			if err != nil {
				return uint32(n), err
			}
			n2, err := elements.CString.Encode(uint(start)+uint(n), writer, key)
			return uint32(n + n2), err
		},
	)
}

// ObjectID creates an objectid element with the given key and value.
func (Constructor) ObjectID(key string, oid [12]byte) Elementer {
	return newElement(
		func() uint32 { return uint32(1 + len(key) + 1 + 12) },
		func(start uint32, writer []byte) (uint32, error) {
			n, err := elements.ObjectID.Element(uint(start), writer, key, oid)
			return uint32(n), err
		},
	)
}

// Boolean creates a boolean element with the given key and value.
func (Constructor) Boolean(key string, b bool) Elementer {
	return newElement(
		func() uint32 { return uint32(1 + len(key) + 1 + 1) },
		func(start uint32, writer []byte) (uint32, error) {
			n, err := elements.Boolean.Element(uint(start), writer, key, b)
			return uint32(n), err
		},
	)
}

// DateTime creates a datetime element with the given key and value.
func (Constructor) DateTime(key string, dt int64) Elementer {
	return newElement(
		func() uint32 { return uint32(1 + len(key) + 1 + 8) },
		func(start uint32, writer []byte) (uint32, error) {
			n, err := elements.DateTime.Element(uint(start), writer, key, dt)
			return uint32(n), err
		},
	)
}

// Null creates a null element with the given key.
func (Constructor) Null(key string) Elementer {
	return newElement(
		func() uint32 { return uint32(1 + len(key) + 1) },
		func(start uint32, writer []byte) (uint32, error) {
			n, err := elements.Byte.Encode(uint(start), writer, '\x0A')
			if err != nil {
				return uint32(n), err
			}
			n2, err := elements.CString.Encode(uint(start)+uint(n), writer, key)
			return uint32(n + n2), err
		},
	)
}

// Regex creates a regex element with the given key, pattern, and options.
func (Constructor) Regex(key string, pattern, options string) Elementer {
	return newElement(
		func() uint32 { return uint32(1 + len(key) + 1 + len(pattern) + 1 + len(options) + 1) },
		func(start uint32, writer []byte) (uint32, error) {
			n, err := elements.Regex.Element(uint(start), writer, key, pattern, options)
			return uint32(n), err
		},
	)
}

// DBPointer creates a dbpointer element with the given key, namespace, and id.
func (Constructor) DBPointer(key string, ns string, oid [12]byte) Elementer {
	return newElement(
		func() uint32 { return uint32(1 + len(key) + 1 + 4 + len(ns) + 1 + 12) },
		func(start uint32, writer []byte) (uint32, error) {
			n, err := elements.DBPointer.Element(uint(start), writer, key, ns, oid)
			return uint32(n), err
		},
	)
}

// JavaScriptCode creates a JavaScript code element with the given key and code.
func (Constructor) JavaScriptCode(key string, code string) Elementer {
	return newElement(
		func() uint32 { return uint32(1 + len(key) + 1 + 4 + len(code) + 1) },
		func(start uint32, writer []byte) (uint32, error) {
			n, err := elements.JavaScript.Element(uint(start), writer, key, code)
			return uint32(n), err
		},
	)
}

// Symbol creates a symbol element with the given key and value.
func (Constructor) Symbol(key string, symbol string) Elementer {
	return newElement(
		func() uint32 { return uint32(1 + len(key) + 1 + 4 + len(symbol) + 1) },
		func(start uint32, writer []byte) (uint32, error) {
			n, err := elements.Symbol.Element(uint(start), writer, key, symbol)
			return uint32(n), err
		},
	)
}

// CodeWithScope creates a JavaScript-with-scope element with the given key, code, and scope bytes.
func (Constructor) CodeWithScope(key string, code string, scope []byte) Elementer {
	return newElement(
		func() uint32 { return uint32(1+len(key)+1+4+4+len(code)+1) + uint32(len(scope)) },
		func(start uint32, writer []byte) (uint32, error) {
			n, err := elements.CodeWithScope.Element(uint(start), writer, key, code, scope)
			return uint32(n), err
		},
	)
}

// Int32 creates an int32 element with the given key and value.
func (Constructor) Int32(key string, i int32) Elementer {
	return newElement(
		func() uint32 { return uint32(1 + len(key) + 1 + 4) },
		func(start uint32, writer []byte) (uint32, error) {
			n, err := elements.Int32.Element(uint(start), writer, key, i)
			return uint32(n), err
		},
	)
}

// Timestamp creates a timestamp element with the given key and value.
func (Constructor) Timestamp(key string, t, i uint32) Elementer {
	return newElement(
		func() uint32 { return uint32(1 + len(key) + 1 + 8) },
		func(start uint32, writer []byte) (uint32, error) {
			n, err := elements.Timestamp.Element(uint(start), writer, key, t, i)
			return uint32(n), err
		},
	)
}

// Int64 creates an int64 element with the given key and value.
func (Constructor) Int64(key string, i int64) Elementer {
	return newElement(
		func() uint32 { return uint32(1 + len(key) + 1 + 8) },
		func(start uint32, writer []byte) (uint32, error) {
			n, err := elements.Int64.Element(uint(start), writer, key, i)
			return uint32(n), err
		},
	)
}

// MinKey creates a minkey element with the given key.
func (Constructor) MinKey(key string) Elementer {
	return newElement(
		func() uint32 { return uint32(1 + len(key) + 1) },
		func(start uint32, writer []byte) (uint32, error) {
			n, err := elements.Byte.Encode(uint(start), writer, '\xFF')
			if err != nil {
				return uint32(n), err
			}
			n2, err := elements.CString.Encode(uint(start)+uint(n), writer, key)
			return uint32(n + n2), err
		},
	)
}

// MaxKey creates a maxkey element with the given key.
func (Constructor) MaxKey(key string) Elementer {
	return newElement(
		func() uint32 { return uint32(1 + len(key) + 1) },
		func(start uint32, writer []byte) (uint32, error) {
			n, err := elements.Byte.Encode(uint(start), writer, '\x7F')
			if err != nil {
				return uint32(n), err
			}
			n2, err := elements.CString.Encode(uint(start)+uint(n), writer, key)
			return uint32(n + n2), err
		},
	)
}
