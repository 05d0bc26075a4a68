// Package expr implements the small arithmetic/comparison expression
// language used inside JSONPath filter and computed-subscript brackets
// (`(...)`  and `?(...)`). Expressions are compiled in one recursive-descent
// pass, without a separate AST, to a linear bytecode that is evaluated against a document on a fixed-size
// stack, mirroring the expression VM in the jbson path-selection code this
// package is ported from.
package expr

import "github.com/ikmak/mongo-go-driver/bson"

// Opcode identifies a single bytecode instruction.
type Opcode byte

// The opcode set mirrors jbson's expression::byte_code enum: unary and
// binary arithmetic, comparisons, logical combinators, and the four ways of
// pushing a value onto the evaluation stack.
const (
	OpNeg Opcode = iota
	OpPos
	OpNot

	OpAdd
	OpSub
	OpMul
	OpDiv

	OpEq
	OpNeq
	OpLt
	OpLte
	OpGt
	OpGte

	OpAnd
	OpOr

	OpLoad
	OpStore

	OpPushInt
	OpPushString
	OpPushTrue
	OpPushFalse
)

// Instr is a single bytecode instruction. Only one of IntArg/StrArg is
// meaningful, depending on Op.
type Instr struct {
	Op     Opcode
	IntArg int64
	StrArg string
}

// Kind identifies the runtime shape of a Value on the evaluation stack.
type Kind byte

const (
	KindBool Kind = iota
	KindInt
	KindString
	KindElement
)

// Value is a tagged stack slot: {bool, int64, string, element}, per the
// expression engine's value variant.
type Value struct {
	Kind Kind
	Bool bool
	Int  int64
	Str  string
	Elem *bson.Element
}

// BoolValue, IntValue, StringValue, and ElementValue are convenience
// constructors for the corresponding Value kind.
func BoolValue(b bool) Value          { return Value{Kind: KindBool, Bool: b} }
func IntValue(i int64) Value          { return Value{Kind: KindInt, Int: i} }
func StringValue(s string) Value      { return Value{Kind: KindString, Str: s} }
func ElementValue(e *bson.Element) Value { return Value{Kind: KindElement, Elem: e} }

// maxStack is the fixed evaluation-stack depth. Overflow is a
// programmer/input error, not something the VM grows dynamically, matching
// the original's std::array<variant, 32> stack.
const maxStack = 32

// Resolver resolves a variable path (e.g. "@.price", "a.b") against doc,
// returning every matched element. It is satisfied by path.Select itself;
// the expr package never imports path, to avoid a cycle, so callers supply
// their own path selector at Eval time.
type Resolver func(doc *bson.Document, path string) ([]*bson.Element, error)
