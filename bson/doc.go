// Copyright (C) MongoDB, Inc. 2017-present.
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may
// not use this file except in compliance with the License. You may obtain
// a copy of the License at http://www.apache.org/licenses/LICENSE-2.0

// Package bson is a library for reading, writing, and manipulating BSON
// documents in memory.
//
// Document and Array hold a BSON document's elements in insertion order,
// backed by a lazily-parsed []byte so that Lookup, Append, Set, and Delete
// work without eagerly decoding every element:
//
//	doc, err := bson.ReadDocument(b) // b is a BSON-encoded []byte
//	if err != nil { return err }
//	el, err := doc.Lookup("foo")
//	if err != nil { return err }
//	s := el.Value().StringValue()
//
// Reader offers the same Lookup without ever materialising a Document, for
// callers that only need to read a handful of fields out of a byte slice.
//
// Constructor (C) and ArrayConstructor (AC) build new Elements and Values
// from native Go types:
//
//	doc := bson.NewDocument(bson.C.String("foo", "bar"), bson.C.Int32("n", 1))
//	b, err := doc.MarshalBSON()
//
// The bson/builder package offers a lower-level builder that writes a
// document straight into a byte slice, rather than keeping a mutable Document
// around. Build does not consume the builder: it can be appended to and built
// again.
package bson
