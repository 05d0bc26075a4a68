package json

import (
	"encoding/base64"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/ikmak/mongo-go-driver/bson"
	"github.com/pkg/errors"
)

// rfc3339Milli is the timestamp layout canonical extended JSON uses for
// $date string values, millisecond precision with a mandatory zone offset.
const rfc3339Milli = "2006-01-02T15:04:05.999Z07:00"

// wrapElement inspects a just-parsed object's field list for one of the
// extended-JSON wrapper shapes and, if it matches one, builds the single
// *bson.Element those fields represent. ok is false for an ordinary object,
// in which case the caller builds a ordinary sub-document instead.
func wrapElement(key string, fields []field) (*bson.Element, bool, error) {
	byKey := make(map[string]field, len(fields))
	for _, f := range fields {
		byKey[f.key] = f
	}

	switch {
	case has(byKey, "$oid") && len(fields) == 1:
		return wrapOID(key, byKey)
	case has(byKey, "$numberInt") && len(fields) == 1:
		return wrapNumberInt(key, byKey)
	case has(byKey, "$numberLong") && len(fields) == 1:
		return wrapNumberLong(key, byKey)
	case has(byKey, "$numberDouble") && len(fields) == 1:
		return wrapNumberDouble(key, byKey)
	case has(byKey, "$date") && len(fields) == 1:
		return wrapDate(key, byKey)
	case has(byKey, "$binary") && len(fields) == 1:
		return wrapBinary(key, byKey)
	case has(byKey, "$regex") && (len(fields) == 1 || (len(fields) == 2 && has(byKey, "$options"))):
		return wrapRegex(key, byKey)
	case has(byKey, "$minKey") && len(fields) == 1:
		return wrapMinKey(key, byKey)
	case has(byKey, "$maxKey") && len(fields) == 1:
		return wrapMaxKey(key, byKey)
	case has(byKey, "$undefined") && len(fields) == 1:
		return wrapUndefined(key, byKey)
	case has(byKey, "$symbol") && len(fields) == 1:
		return wrapSymbol(key, byKey)
	case has(byKey, "$code") && (len(fields) == 1 || (len(fields) == 2 && has(byKey, "$scope"))):
		return wrapCode(key, byKey)
	case has(byKey, "$timestamp") && len(fields) == 1:
		return wrapTimestamp(key, byKey)
	case has(byKey, "$dbPointer") && len(fields) == 1:
		return wrapDBPointer(key, byKey)
	}
	return nil, false, nil
}

func has(byKey map[string]field, k string) bool {
	_, ok := byKey[k]
	return ok
}

func wrapOID(key string, byKey map[string]field) (*bson.Element, bool, error) {
	f := byKey["$oid"]
	if f.d != fieldString {
		return nil, false, errors.New("extjson_parse_error: $oid requires a string value")
	}
	oid, err := bson.ObjectIDFromHex(f.s)
	if err != nil {
		return nil, false, errors.Wrap(err, "extjson_parse_error: invalid $oid")
	}
	return bson.EC.ObjectID(key, oid), true, nil
}

func wrapNumberInt(key string, byKey map[string]field) (*bson.Element, bool, error) {
	f := byKey["$numberInt"]
	var s string
	switch f.d {
	case fieldString:
		s = f.s
	case fieldInt32:
		return bson.EC.Int32(key, f.i32), true, nil
	default:
		return nil, false, errors.New("extjson_parse_error: $numberInt requires a string or int32 value")
	}
	v, err := strconv.ParseInt(s, 10, 32)
	if err != nil {
		return nil, false, errors.Wrap(err, "extjson_parse_error: invalid $numberInt")
	}
	return bson.EC.Int32(key, int32(v)), true, nil
}

func wrapNumberLong(key string, byKey map[string]field) (*bson.Element, bool, error) {
	f := byKey["$numberLong"]
	var s string
	switch f.d {
	case fieldString:
		s = f.s
	case fieldInt64:
		return bson.EC.Int64(key, f.i64), true, nil
	case fieldInt32:
		return bson.EC.Int64(key, int64(f.i32)), true, nil
	default:
		return nil, false, errors.New("extjson_parse_error: $numberLong requires a string or integer value")
	}
	v, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return nil, false, errors.Wrap(err, "extjson_parse_error: invalid $numberLong")
	}
	return bson.EC.Int64(key, v), true, nil
}

func wrapNumberDouble(key string, byKey map[string]field) (*bson.Element, bool, error) {
	f := byKey["$numberDouble"]
	switch f.d {
	case fieldDouble:
		return bson.EC.Double(key, f.f64), true, nil
	case fieldInt32:
		return bson.EC.Double(key, float64(f.i32)), true, nil
	case fieldInt64:
		return bson.EC.Double(key, float64(f.i64)), true, nil
	case fieldString:
		switch f.s {
		case "Infinity":
			return bson.EC.Double(key, math.Inf(1)), true, nil
		case "-Infinity":
			return bson.EC.Double(key, math.Inf(-1)), true, nil
		case "NaN":
			return bson.EC.Double(key, math.NaN()), true, nil
		}
		v, err := strconv.ParseFloat(f.s, 64)
		if err != nil {
			return nil, false, errors.Wrap(err, "extjson_parse_error: invalid $numberDouble")
		}
		return bson.EC.Double(key, v), true, nil
	}
	return nil, false, errors.New("extjson_parse_error: $numberDouble requires a numeric or string value")
}

func wrapDate(key string, byKey map[string]field) (*bson.Element, bool, error) {
	f := byKey["$date"]
	switch f.d {
	case fieldInt64:
		return bson.EC.DateTime(key, f.i64), true, nil
	case fieldInt32:
		return bson.EC.DateTime(key, int64(f.i32)), true, nil
	case fieldString:
		t, err := time.Parse(rfc3339Milli, f.s)
		if err != nil {
			t, err = time.Parse(time.RFC3339, f.s)
		}
		if err != nil {
			return nil, false, errors.Wrap(err, "extjson_parse_error: invalid $date string")
		}
		return bson.EC.Time(key, t), true, nil
	}
	return nil, false, errors.New("extjson_parse_error: $date requires a $numberLong value or an ISO-8601 string")
}

func wrapBinary(key string, byKey map[string]field) (*bson.Element, bool, error) {
	f := byKey["$binary"]
	if f.d != fieldDocument {
		return nil, false, errors.New("extjson_parse_error: $binary requires an object with base64/subType")
	}
	var b64, subType string
	iter := f.doc.Iterator()
	for iter.Next() {
		e := iter.Element()
		switch e.Key() {
		case "base64":
			b64 = e.Value().StringValue()
		case "subType":
			subType = e.Value().StringValue()
		}
	}
	data, err := decodeBase64(b64)
	if err != nil {
		return nil, false, errors.Wrap(err, "extjson_parse_error: invalid $binary base64")
	}
	st, err := strconv.ParseUint(subType, 16, 8)
	if err != nil {
		return nil, false, errors.Wrap(err, "extjson_parse_error: invalid $binary subType")
	}
	return bson.EC.BinaryWithSubtype(key, data, byte(st)), true, nil
}

func wrapRegex(key string, byKey map[string]field) (*bson.Element, bool, error) {
	pf := byKey["$regex"]
	if pf.d != fieldString {
		return nil, false, errors.New("extjson_parse_error: $regex requires a string pattern")
	}
	options := ""
	if of, ok := byKey["$options"]; ok {
		if of.d != fieldString {
			return nil, false, errors.New("extjson_parse_error: $options requires a string value")
		}
		options = of.s
	}
	return bson.EC.Regex(key, pf.s, options), true, nil
}

func wrapMinKey(key string, byKey map[string]field) (*bson.Element, bool, error) {
	if !isOne(byKey["$minKey"]) {
		return nil, false, errors.New("extjson_parse_error: $minKey requires the value 1")
	}
	return bson.EC.MinKey(key), true, nil
}

func wrapMaxKey(key string, byKey map[string]field) (*bson.Element, bool, error) {
	if !isOne(byKey["$maxKey"]) {
		return nil, false, errors.New("extjson_parse_error: $maxKey requires the value 1")
	}
	return bson.EC.MaxKey(key), true, nil
}

func isOne(f field) bool {
	switch f.d {
	case fieldInt32:
		return f.i32 == 1
	case fieldInt64:
		return f.i64 == 1
	case fieldDouble:
		return f.f64 == 1
	}
	return false
}

func wrapUndefined(key string, byKey map[string]field) (*bson.Element, bool, error) {
	f := byKey["$undefined"]
	if f.d != fieldBool || !f.b {
		return nil, false, errors.New("extjson_parse_error: $undefined requires the value true")
	}
	return bson.EC.Undefined(key), true, nil
}

func wrapSymbol(key string, byKey map[string]field) (*bson.Element, bool, error) {
	f := byKey["$symbol"]
	if f.d != fieldString {
		return nil, false, errors.New("extjson_parse_error: $symbol requires a string value")
	}
	return bson.EC.Symbol(key, f.s), true, nil
}

func wrapCode(key string, byKey map[string]field) (*bson.Element, bool, error) {
	cf := byKey["$code"]
	if cf.d != fieldString {
		return nil, false, errors.New("extjson_parse_error: $code requires a string value")
	}
	sf, hasScope := byKey["$scope"]
	if !hasScope {
		return bson.EC.JavaScript(key, cf.s), true, nil
	}
	if sf.d != fieldDocument {
		return nil, false, errors.New("extjson_parse_error: $scope requires an object value")
	}
	return bson.EC.CodeWithScope(key, cf.s, sf.doc), true, nil
}

func wrapTimestamp(key string, byKey map[string]field) (*bson.Element, bool, error) {
	f := byKey["$timestamp"]
	if f.d != fieldDocument {
		return nil, false, errors.New("extjson_parse_error: $timestamp requires an object with t/i")
	}
	var t, i uint32
	iter := f.doc.Iterator()
	for iter.Next() {
		e := iter.Element()
		v := e.Value()
		n, err := asUint32(v)
		if err != nil {
			return nil, false, errors.Wrap(err, "extjson_parse_error: invalid $timestamp field")
		}
		switch e.Key() {
		case "t":
			t = n
		case "i":
			i = n
		}
	}
	return bson.EC.Timestamp(key, t, i), true, nil
}

func asUint32(v *bson.Value) (uint32, error) {
	switch v.Type() {
	case bson.TypeInt32:
		return uint32(v.Int32()), nil
	case bson.TypeInt64:
		return uint32(v.Int64()), nil
	case bson.TypeDouble:
		return uint32(v.Double()), nil
	}
	return 0, errors.New("value is not numeric")
}

func wrapDBPointer(key string, byKey map[string]field) (*bson.Element, bool, error) {
	f := byKey["$dbPointer"]
	if f.d != fieldDocument {
		return nil, false, errors.New("extjson_parse_error: $dbPointer requires an object with $ref/$id")
	}
	var ns string
	var oid bson.ObjectID
	var haveOID bool
	iter := f.doc.Iterator()
	for iter.Next() {
		e := iter.Element()
		switch e.Key() {
		case "$ref":
			ns = e.Value().StringValue()
		case "$id":
			v := e.Value()
			if v.Type() == bson.TypeObjectID {
				oid = v.ObjectID()
				haveOID = true
			}
		}
	}
	if !haveOID {
		return nil, false, errors.New("extjson_parse_error: $dbPointer.$id must be an $oid")
	}
	return bson.EC.DBPointer(key, ns, oid), true, nil
}

// decodeBase64 decodes standard (non-URL) base64 text, the encoding
// extended JSON's $binary.base64 field always uses.
func decodeBase64(s string) ([]byte, error) {
	return base64.StdEncoding.DecodeString(strings.TrimSpace(s))
}
