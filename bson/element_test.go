package bson

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestElementSetNameRenames(t *testing.T) {
	elem := C.Int32("n", 7)
	require.NoError(t, elem.SetName("m"))
	require.Equal(t, "m", elem.Key())
	require.Equal(t, TypeInt32, elem.Value().Type())
	require.EqualValues(t, 7, elem.Value().Int32())
}

func TestElementSetTypePreservesPayload(t *testing.T) {
	elem := C.Int32("n", 1)

	require.NoError(t, elem.SetType(TypeBoolean))
	require.Equal(t, TypeBoolean, elem.Value().Type())
	require.Equal(t, "n", elem.Key())
	// The int32 payload's low byte (0x01) is reused verbatim as the
	// boolean's payload byte.
	require.True(t, elem.Value().Boolean())
}

func TestElementSetValueInfersTag(t *testing.T) {
	elem := C.String("s", "x")

	require.NoError(t, elem.SetValue(int32(42)))
	require.Equal(t, TypeInt32, elem.Value().Type())
	require.EqualValues(t, 42, elem.Value().Int32())

	require.NoError(t, elem.SetValue("back to a string"))
	require.Equal(t, TypeString, elem.Value().Type())
	require.Equal(t, "back to a string", elem.Value().StringValue())

	require.NoError(t, elem.SetValue(true))
	require.Equal(t, TypeBoolean, elem.Value().Type())
	require.True(t, elem.Value().Boolean())
}

func TestElementSetValueSubDocument(t *testing.T) {
	elem := C.Int32("doc", 1)
	inner := NewDocument(EC.Int32("n", 9))

	require.NoError(t, elem.SetValue(inner))
	require.Equal(t, TypeEmbeddedDocument, elem.Value().Type())

	nested, err := elem.Value().MutableDocument().Lookup("n")
	require.NoError(t, err)
	require.EqualValues(t, 9, nested.Value().Int32())
}

// elementSnapshot captures an Element's public state so a failed setter's
// strong-exception-safety guarantee can be checked afterward.
type elementSnapshot struct {
	name string
	typ  Type
	size uint32
}

func snapshotElement(t *testing.T, elem *Element) elementSnapshot {
	size, err := elem.Validate()
	require.NoError(t, err)
	return elementSnapshot{
		name: elem.Key(),
		typ:  elem.Value().Type(),
		size: size,
	}
}

func requireUnchanged(t *testing.T, elem *Element, before elementSnapshot) {
	after := snapshotElement(t, elem)
	require.Equal(t, before, after)
}

func TestElementSetNameStrongExceptionSafety(t *testing.T) {
	elem := C.String("s", "value")
	before := snapshotElement(t, elem)

	err := elem.SetName("has\x00nul")
	require.Error(t, err)
	requireUnchanged(t, elem, before)
}

func TestElementSetTypeStrongExceptionSafety(t *testing.T) {
	elem := C.String("s", "value")
	before := snapshotElement(t, elem)

	err := elem.SetType(Type(0x99))
	require.Error(t, err)
	requireUnchanged(t, elem, before)
}

func TestElementSetValueStrongExceptionSafety(t *testing.T) {
	elem := C.String("s", "value")
	before := snapshotElement(t, elem)

	err := elem.SetValue(struct{ X int }{X: 1})
	require.Error(t, err)
	requireUnchanged(t, elem, before)
}

func TestElementVisit(t *testing.T) {
	elem := C.Int32("n", 5)

	var gotName string
	var gotTag Type
	var gotValue interface{}
	elem.Visit(func(name string, tag Type, value interface{}) {
		gotName, gotTag, gotValue = name, tag, value
	})

	require.Equal(t, "n", gotName)
	require.Equal(t, TypeInt32, gotTag)
	require.EqualValues(t, 5, gotValue)
}

func TestElementVisitEmptyPayloadTagYieldsNilValue(t *testing.T) {
	elem := C.Null("n")

	var gotValue interface{}
	called := false
	elem.Visit(func(name string, tag Type, value interface{}) {
		called = true
		gotValue = value
	})

	require.True(t, called)
	require.Nil(t, gotValue)
}
