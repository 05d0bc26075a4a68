package bson

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestArrayAppendAndLookup(t *testing.T) {
	arr := NewArray(VC.Int32(1), VC.String("two"))
	require.Equal(t, 2, arr.Len())

	v, err := arr.Lookup(0)
	require.NoError(t, err)
	require.EqualValues(t, 1, v.Int32())

	v, err = arr.Lookup(1)
	require.NoError(t, err)
	require.Equal(t, "two", v.StringValue())
}

func TestArrayLookupOutOfBounds(t *testing.T) {
	arr := NewArray(VC.Int32(1))
	_, err := arr.Lookup(5)
	require.Equal(t, ErrOutOfBounds, err)
}

func TestArraySet(t *testing.T) {
	arr := NewArray(VC.Int32(1), VC.Int32(2))
	arr.Set(1, VC.Int32(99))

	v, err := arr.Lookup(1)
	require.NoError(t, err)
	require.EqualValues(t, 99, v.Int32())
}

func TestArraySetOutOfBoundsPanics(t *testing.T) {
	arr := NewArray(VC.Int32(1))
	require.Panics(t, func() {
		arr.Set(5, VC.Int32(1))
	})
}

func TestArrayDelete(t *testing.T) {
	arr := NewArray(VC.Int32(1), VC.Int32(2), VC.Int32(3))
	deleted := arr.Delete(1)
	require.NotNil(t, deleted)
	require.EqualValues(t, 2, deleted.Int32())
	require.Equal(t, 2, arr.Len())
}

func TestArrayMarshalUnmarshalRoundTrip(t *testing.T) {
	arr := NewArray(VC.String("a"), VC.String("b"), VC.Int32(3))

	b, err := arr.MarshalBSON()
	require.NoError(t, err)

	doc, err := ReadDocument(b)
	require.NoError(t, err)
	back := ArrayFromDocument(doc)
	require.Equal(t, 3, back.Len())

	v, err := back.Lookup(2)
	require.NoError(t, err)
	require.EqualValues(t, 3, v.Int32())
}

func TestArrayDocumentExposesBackingDocument(t *testing.T) {
	arr := NewArray(VC.Int32(7))
	doc := arr.Document()

	el, err := doc.Lookup("0")
	require.NoError(t, err)
	require.EqualValues(t, 7, el.Value().Int32())
}

func TestArrayIterator(t *testing.T) {
	arr := NewArray(VC.Int32(1), VC.Int32(2))
	iter, err := arr.Iterator()
	require.NoError(t, err)

	var values []int32
	for iter.Next() {
		values = append(values, iter.Value().Int32())
	}
	require.Equal(t, []int32{1, 2}, values)
}
