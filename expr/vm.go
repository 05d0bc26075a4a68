package expr

import (
	"bytes"

	"github.com/ikmak/mongo-go-driver/bson"
	"github.com/pkg/errors"
)

// Eval runs code against doc, resolving LOAD instructions with resolve.
func Eval(code []Instr, doc *bson.Document, resolve Resolver) (Value, error) {
	var stack [maxStack]Value
	sp := 0

	push := func(v Value) error {
		if sp >= maxStack {
			return errors.New("expr: evaluation stack overflow")
		}
		stack[sp] = v
		sp++
		return nil
	}
	pop := func() (Value, error) {
		if sp == 0 {
			return Value{}, errors.New("expr: evaluation stack underflow")
		}
		sp--
		return stack[sp], nil
	}

	for _, instr := range code {
		switch instr.Op {
		case OpPushInt:
			if err := push(IntValue(instr.IntArg)); err != nil {
				return Value{}, err
			}
		case OpPushString:
			if err := push(StringValue(instr.StrArg)); err != nil {
				return Value{}, err
			}
		case OpPushTrue:
			if err := push(BoolValue(true)); err != nil {
				return Value{}, err
			}
		case OpPushFalse:
			if err := push(BoolValue(false)); err != nil {
				return Value{}, err
			}
		case OpLoad:
			matches, err := resolve(doc, instr.StrArg)
			if err != nil {
				return Value{}, err
			}
			if len(matches) == 0 {
				return BoolValue(false), nil
			}
			for _, m := range matches {
				if err := push(ElementValue(m)); err != nil {
					return Value{}, err
				}
			}
		case OpNeg, OpPos, OpNot:
			v, err := pop()
			if err != nil {
				return Value{}, err
			}
			r, err := evalUnary(instr.Op, v)
			if err != nil {
				return Value{}, err
			}
			if err := push(r); err != nil {
				return Value{}, err
			}
		case OpStore:
			// No expression production in this grammar emits OpStore; it is
			// kept to mirror the original bytecode enum verbatim.
			if _, err := pop(); err != nil {
				return Value{}, err
			}
		default:
			b, err := pop()
			if err != nil {
				return Value{}, err
			}
			a, err := pop()
			if err != nil {
				return Value{}, err
			}
			r, err := evalBinary(instr.Op, a, b)
			if err != nil {
				return Value{}, err
			}
			if err := push(r); err != nil {
				return Value{}, err
			}
		}
	}

	if sp == 0 {
		return Value{}, errors.New("expr: expression produced no value")
	}
	return stack[sp-1], nil
}

// EvalBool evaluates code and reports its truthiness.
func EvalBool(code []Instr, doc *bson.Document, resolve Resolver) (bool, error) {
	v, err := Eval(code, doc, resolve)
	if err != nil {
		return false, err
	}
	return truthy(v), nil
}

func truthy(v Value) bool {
	switch v.Kind {
	case KindBool:
		return v.Bool
	case KindInt:
		return v.Int != 0
	case KindString:
		return v.Str != ""
	case KindElement:
		return true
	}
	return false
}

func evalUnary(op Opcode, v Value) (Value, error) {
	switch op {
	case OpNot:
		return BoolValue(!truthy(scalarize(v))), nil
	case OpNeg, OpPos:
		sv := scalarize(v)
		if sv.Kind != KindInt {
			return Value{}, errors.Errorf("expr: unary %s requires an integer operand", unaryName(op))
		}
		if op == OpNeg {
			return IntValue(-sv.Int), nil
		}
		return IntValue(sv.Int), nil
	}
	return Value{}, errors.New("expr: invalid unary opcode")
}

func unaryName(op Opcode) string {
	if op == OpNeg {
		return "-"
	}
	return "+"
}

// scalarize decodes an element-kind Value into the bool/int/string kind its
// wire type actually holds, leaving non-element values untouched. It is the
// single place element-vs-scalar coercion happens for both comparisons and
// equality, per the expression engine's element-vs-scalar equality rule.
func scalarize(v Value) Value {
	if v.Kind != KindElement {
		return v
	}
	el := v.Elem
	if el == nil {
		return v
	}
	val := el.Value()
	switch val.Type() {
	case bson.TypeBoolean:
		if b, ok := val.BooleanOK(); ok {
			return BoolValue(b)
		}
	case bson.TypeInt32:
		if i, ok := val.Int32OK(); ok {
			return IntValue(int64(i))
		}
	case bson.TypeInt64:
		if i, ok := val.Int64OK(); ok {
			return IntValue(i)
		}
	case bson.TypeDouble:
		if d, ok := val.DoubleOK(); ok {
			return IntValue(int64(d))
		}
	case bson.TypeString:
		if s, ok := val.StringValueOK(); ok {
			return StringValue(s)
		}
	}
	return v
}

func evalBinary(op Opcode, a, b Value) (Value, error) {
	switch op {
	case OpEq:
		return BoolValue(valuesEqual(a, b)), nil
	case OpNeq:
		return BoolValue(!valuesEqual(a, b)), nil
	case OpAnd:
		return BoolValue(truthy(scalarize(a)) && truthy(scalarize(b))), nil
	case OpOr:
		return BoolValue(truthy(scalarize(a)) || truthy(scalarize(b))), nil
	}

	sa, sb := scalarize(a), scalarize(b)

	switch op {
	case OpAdd, OpSub, OpMul, OpDiv:
		if sa.Kind != KindInt || sb.Kind != KindInt {
			return Value{}, errors.New("expr: arithmetic requires integer operands")
		}
		switch op {
		case OpAdd:
			return IntValue(sa.Int + sb.Int), nil
		case OpSub:
			return IntValue(sa.Int - sb.Int), nil
		case OpMul:
			return IntValue(sa.Int * sb.Int), nil
		case OpDiv:
			if sb.Int == 0 {
				return Value{}, errors.New("expr: division by zero")
			}
			return IntValue(sa.Int / sb.Int), nil
		}
	case OpLt, OpLte, OpGt, OpGte:
		return compareOrdered(op, sa, sb)
	}

	return Value{}, errors.Errorf("expr: invalid binary opcode %d", op)
}

func compareOrdered(op Opcode, a, b Value) (Value, error) {
	if a.Kind != b.Kind {
		return Value{}, errors.New("expr: comparison requires operands of matching kind")
	}
	var cmp int
	switch a.Kind {
	case KindInt:
		switch {
		case a.Int < b.Int:
			cmp = -1
		case a.Int > b.Int:
			cmp = 1
		}
	case KindString:
		cmp = bytes.Compare([]byte(a.Str), []byte(b.Str))
	case KindBool:
		// false < true
		ai, bi := 0, 0
		if a.Bool {
			ai = 1
		}
		if b.Bool {
			bi = 1
		}
		cmp = ai - bi
	default:
		return Value{}, errors.New("expr: comparison requires bool, int, or string operands")
	}

	switch op {
	case OpLt:
		return BoolValue(cmp < 0), nil
	case OpLte:
		return BoolValue(cmp <= 0), nil
	case OpGt:
		return BoolValue(cmp > 0), nil
	case OpGte:
		return BoolValue(cmp >= 0), nil
	}
	return Value{}, errors.New("expr: invalid comparison opcode")
}

// valuesEqual implements the equality rule: element vs scalar decodes the
// element under the scalar's kind and compares; incompatible shapes are
// simply unequal, never an error.
func valuesEqual(a, b Value) bool {
	sa, sb := scalarize(a), scalarize(b)
	if sa.Kind != sb.Kind {
		return false
	}
	switch sa.Kind {
	case KindBool:
		return sa.Bool == sb.Bool
	case KindInt:
		return sa.Int == sb.Int
	case KindString:
		return sa.Str == sb.Str
	case KindElement:
		return sa.Elem == sb.Elem
	}
	return false
}
