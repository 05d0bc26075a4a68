package json

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"math"
	"strconv"

	"github.com/ikmak/mongo-go-driver/bson"
	"github.com/pkg/errors"
)

// Write renders doc as canonical JSON per spec.md §4.F: BSON types that have
// no native JSON representation are emitted as extended-JSON wrapper objects
// keyed by `$`-prefixed names ($oid, $date, $regex/$options, ...), mirroring json/extjson.go's parsing
// vocabulary in reverse.
func Write(doc *bson.Document) ([]byte, error) {
	var buf bytes.Buffer
	if err := writeDocument(&buf, doc); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// WriteArray renders arr as a canonical JSON array.
func WriteArray(arr *bson.Array) ([]byte, error) {
	var buf bytes.Buffer
	if err := writeArray(&buf, arr); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func writeDocument(buf *bytes.Buffer, doc *bson.Document) error {
	buf.WriteByte('{')
	iter := doc.Iterator()
	first := true
	for iter.Next() {
		e := iter.Element()
		if !first {
			buf.WriteByte(',')
		}
		first = false
		writeString(buf, e.Key())
		buf.WriteByte(':')
		if err := writeValue(buf, e.Value()); err != nil {
			return errors.Wrapf(err, "json_write_error: field %q", e.Key())
		}
	}
	buf.WriteByte('}')
	return nil
}

func writeArray(buf *bytes.Buffer, arr *bson.Array) error {
	buf.WriteByte('[')
	doc := arr.Document()
	iter := doc.Iterator()
	first := true
	for iter.Next() {
		e := iter.Element()
		if !first {
			buf.WriteByte(',')
		}
		first = false
		if err := writeValue(buf, e.Value()); err != nil {
			return errors.Wrapf(err, "json_write_error: index %s", e.Key())
		}
	}
	buf.WriteByte(']')
	return nil
}

func writeValue(buf *bytes.Buffer, v *bson.Value) error {
	switch v.Type() {
	case bson.TypeDouble:
		return writeDouble(buf, v.Double())
	case bson.TypeString:
		writeString(buf, v.StringValue())
		return nil
	case bson.TypeEmbeddedDocument:
		return writeDocument(buf, v.MutableDocument())
	case bson.TypeArray:
		return writeArray(buf, v.MutableArray())
	case bson.TypeBinary:
		subtype, data := v.Binary()
		return writeWrapperBinary(buf, subtype, data)
	case bson.TypeUndefined:
		return writeWrapperLiteral(buf, "$undefined", "true")
	case bson.TypeObjectID:
		return writeWrapperString(buf, "$oid", v.ObjectID().Hex())
	case bson.TypeBoolean:
		if v.Boolean() {
			buf.WriteString("true")
		} else {
			buf.WriteString("false")
		}
		return nil
	case bson.TypeDateTime:
		return writeWrapperString(buf, "$date", v.DateTime().UTC().Format(rfc3339Milli))
	case bson.TypeNull:
		buf.WriteString("null")
		return nil
	case bson.TypeRegex:
		pattern, options := v.Regex()
		return writeWrapperRegex(buf, pattern, options)
	case bson.TypeDBPointer:
		ns, oid := v.DBPointer()
		return writeWrapperDBPointer(buf, ns, oid)
	case bson.TypeJavaScript:
		return writeWrapperString(buf, "$code", v.JavaScript())
	case bson.TypeSymbol:
		return writeWrapperString(buf, "$symbol", v.Symbol())
	case bson.TypeCodeWithScope:
		code, scope := v.MutableJavaScriptWithScope()
		return writeWrapperCodeWithScope(buf, code, scope)
	case bson.TypeInt32:
		buf.WriteString(strconv.FormatInt(int64(v.Int32()), 10))
		return nil
	case bson.TypeTimestamp:
		t, i := v.Timestamp()
		return writeWrapperTimestamp(buf, t, i)
	case bson.TypeInt64:
		return writeWrapperString(buf, "$numberLong", strconv.FormatInt(v.Int64(), 10))
	case bson.TypeMinKey:
		return writeWrapperLiteral(buf, "$minKey", "1")
	case bson.TypeMaxKey:
		return writeWrapperLiteral(buf, "$maxKey", "1")
	}
	return errors.Errorf("json_write_error: unsupported BSON type %v", v.Type())
}

// writeDouble renders a BSON double as round-trippable JSON. BSON permits
// NaN and the infinities; JSON has no literal for either, so the writer
// raises an incompatible-type-conversion error instead of emitting invalid
// output or a lossy string.
func writeDouble(buf *bytes.Buffer, f float64) error {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return errors.Errorf("json_write_error: incompatible type conversion: %v has no JSON representation", f)
	}
	buf.WriteString(strconv.FormatFloat(f, 'g', -1, 64))
	return nil
}

func writeString(buf *bytes.Buffer, s string) {
	buf.WriteByte('"')
	for _, r := range s {
		switch r {
		case '"':
			buf.WriteString(`\"`)
		case '\\':
			buf.WriteString(`\\`)
		case '\b':
			buf.WriteString(`\b`)
		case '\f':
			buf.WriteString(`\f`)
		case '\n':
			buf.WriteString(`\n`)
		case '\r':
			buf.WriteString(`\r`)
		case '\t':
			buf.WriteString(`\t`)
		default:
			if r < 0x20 {
				fmt.Fprintf(buf, `\u%04x`, r)
			} else {
				buf.WriteRune(r)
			}
		}
	}
	buf.WriteByte('"')
}

func writeWrapperString(buf *bytes.Buffer, key, val string) error {
	buf.WriteByte('{')
	writeString(buf, key)
	buf.WriteByte(':')
	writeString(buf, val)
	buf.WriteByte('}')
	return nil
}

// writeWrapperLiteral writes {"key": <raw literal>}, for wrappers whose
// canonical value is a bare number or boolean rather than a string.
func writeWrapperLiteral(buf *bytes.Buffer, key, literal string) error {
	buf.WriteByte('{')
	writeString(buf, key)
	buf.WriteByte(':')
	buf.WriteString(literal)
	buf.WriteByte('}')
	return nil
}

func writeWrapperBinary(buf *bytes.Buffer, subtype byte, data []byte) error {
	buf.WriteString(`{"$binary":{"base64":`)
	writeString(buf, base64.StdEncoding.EncodeToString(data))
	buf.WriteString(`,"subType":`)
	writeString(buf, fmt.Sprintf("%02x", subtype))
	buf.WriteString("}}")
	return nil
}

func writeWrapperRegex(buf *bytes.Buffer, pattern, options string) error {
	buf.WriteString(`{"$regex":`)
	writeString(buf, pattern)
	buf.WriteString(`,"$options":`)
	writeString(buf, options)
	buf.WriteByte('}')
	return nil
}

func writeWrapperDBPointer(buf *bytes.Buffer, ns string, oid bson.ObjectID) error {
	buf.WriteString(`{"$dbPointer":{"$ref":`)
	writeString(buf, ns)
	buf.WriteString(`,"$id":{"$oid":`)
	writeString(buf, oid.Hex())
	buf.WriteString("}}}")
	return nil
}

func writeWrapperCodeWithScope(buf *bytes.Buffer, code string, scope *bson.Document) error {
	buf.WriteString(`{"$code":`)
	writeString(buf, code)
	buf.WriteString(`,"$scope":`)
	if err := writeDocument(buf, scope); err != nil {
		return err
	}
	buf.WriteByte('}')
	return nil
}

func writeWrapperTimestamp(buf *bytes.Buffer, t, i uint32) error {
	fmt.Fprintf(buf, `{"$timestamp":{"t":%d,"i":%d}}`, t, i)
	return nil
}
