package elements

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDoubleRoundTrip(t *testing.T) {
	buf := make([]byte, 8)
	n, err := Double.Encode(0, buf, 3.5)
	require.NoError(t, err)
	require.Equal(t, 8, n)

	got, n2, err := Double.Decode(0, buf)
	require.NoError(t, err)
	require.Equal(t, 8, n2)
	require.Equal(t, 3.5, got)
}

func TestStringRoundTrip(t *testing.T) {
	buf := make([]byte, 64)
	n, err := String.Encode(0, buf, "hello")
	require.NoError(t, err)

	got, n2, err := String.Decode(0, buf)
	require.NoError(t, err)
	require.Equal(t, n, n2)
	require.Equal(t, "hello", got)
}

func TestInt32RoundTrip(t *testing.T) {
	buf := make([]byte, 4)
	_, err := Int32.Encode(0, buf, -12345)
	require.NoError(t, err)

	got, n, err := Int32.Decode(0, buf)
	require.NoError(t, err)
	require.Equal(t, 4, n)
	require.EqualValues(t, -12345, got)
}

func TestInt64RoundTrip(t *testing.T) {
	buf := make([]byte, 8)
	_, err := Int64.Encode(0, buf, -9223372036854775808)
	require.NoError(t, err)

	got, n, err := Int64.Decode(0, buf)
	require.NoError(t, err)
	require.Equal(t, 8, n)
	require.EqualValues(t, -9223372036854775808, got)
}

func TestBooleanRoundTrip(t *testing.T) {
	buf := make([]byte, 1)
	_, err := Boolean.Encode(0, buf, true)
	require.NoError(t, err)

	got, n, err := Boolean.Decode(0, buf)
	require.NoError(t, err)
	require.Equal(t, 1, n)
	require.True(t, got)
}

func TestBooleanDecodeRejectsInvalidByte(t *testing.T) {
	buf := []byte{0x02}
	_, _, err := Boolean.Decode(0, buf)
	require.Error(t, err)
}

func TestObjectIDRoundTrip(t *testing.T) {
	var oid [12]byte
	for i := range oid {
		oid[i] = byte(i)
	}
	buf := make([]byte, 12)
	_, err := ObjectID.Encode(0, buf, oid)
	require.NoError(t, err)

	got, n, err := ObjectID.Decode(0, buf)
	require.NoError(t, err)
	require.Equal(t, 12, n)
	require.Equal(t, oid, got)
}

func TestCStringRoundTrip(t *testing.T) {
	buf := make([]byte, 16)
	n, err := CString.Encode(0, buf, "abc")
	require.NoError(t, err)

	got, n2, err := CString.Decode(0, buf)
	require.NoError(t, err)
	require.Equal(t, n, n2)
	require.Equal(t, "abc", got)
}

func TestCStringDecodeRejectsMissingTerminator(t *testing.T) {
	buf := []byte{'a', 'b', 'c'}
	_, _, err := CString.Decode(0, buf)
	require.Error(t, err)
}

func TestRegexRoundTrip(t *testing.T) {
	buf := make([]byte, 32)
	n, err := Regex.Encode(0, buf, "^a.*z$", "i")
	require.NoError(t, err)

	pattern, options, n2, err := Regex.Decode(0, buf)
	require.NoError(t, err)
	require.Equal(t, n, n2)
	require.Equal(t, "^a.*z$", pattern)
	require.Equal(t, "i", options)
}

func TestTimestampRoundTrip(t *testing.T) {
	buf := make([]byte, 8)
	_, err := Timestamp.Encode(0, buf, 100, 7)
	require.NoError(t, err)

	tVal, iVal, n, err := Timestamp.Decode(0, buf)
	require.NoError(t, err)
	require.Equal(t, 8, n)
	require.EqualValues(t, 100, tVal)
	require.EqualValues(t, 7, iVal)
}

func TestBinaryRoundTrip(t *testing.T) {
	buf := make([]byte, 32)
	data := []byte{1, 2, 3, 4}
	n, err := Binary.Encode(0, buf, data, 0x80)
	require.NoError(t, err)

	got, subtype, n2, err := Binary.Decode(0, buf)
	require.NoError(t, err)
	require.Equal(t, n, n2)
	require.Equal(t, byte(0x80), subtype)
	require.Equal(t, data, got)
}

func TestDBPointerRoundTrip(t *testing.T) {
	var oid [12]byte
	oid[0] = 0x42
	buf := make([]byte, 64)
	n, err := DBPointer.Encode(0, buf, "coll", oid)
	require.NoError(t, err)

	ns, gotOID, n2, err := DBPointer.Decode(0, buf)
	require.NoError(t, err)
	require.Equal(t, n, n2)
	require.Equal(t, "coll", ns)
	require.Equal(t, oid, gotOID)
}

func TestCodeWithScopeRoundTrip(t *testing.T) {
	scopeDoc := make([]byte, 5)
	scopeDoc[0] = 5
	buf := make([]byte, 64)
	n, err := CodeWithScope.Encode(0, buf, "function(){}", scopeDoc)
	require.NoError(t, err)

	code, scope, n2, err := CodeWithScope.Decode(0, buf)
	require.NoError(t, err)
	require.Equal(t, n, n2)
	require.Equal(t, "function(){}", code)
	require.Equal(t, scopeDoc, scope)
}
