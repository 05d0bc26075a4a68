package expr

import "github.com/pkg/errors"

// compiler performs a single recursive-descent pass over the token stream,
// emitting bytecode as it recognizes each production -- the parse tree is
// implicit in the recursion rather than materialized as a separate AST,
// the same way a one-pass compiler for a small grammar is usually written.
type compiler struct {
	lex  *lexer
	tok  token
	code []Instr
}

// Compile parses an expression (the text inside `(...)` or `?(...)`,
// brackets already stripped by the caller) and lowers it to bytecode.
func Compile(src string) ([]Instr, error) {
	c := &compiler{lex: newLexer(src)}
	if err := c.advance(); err != nil {
		return nil, err
	}
	if err := c.parseOr(); err != nil {
		return nil, err
	}
	if c.tok.kind != tokEOF {
		return nil, errors.Errorf("expression_parse_error: unexpected trailing input at offset %d", c.tok.pos)
	}
	return c.code, nil
}

func (c *compiler) advance() error {
	t, err := c.lex.next()
	if err != nil {
		return err
	}
	c.tok = t
	return nil
}

func (c *compiler) expect(k tokenKind, what string) error {
	if c.tok.kind != k {
		return errors.Errorf("expression_parse_error: expected %s at offset %d", what, c.tok.pos)
	}
	return c.advance()
}

func (c *compiler) emit(op Opcode) { c.code = append(c.code, Instr{Op: op}) }

func (c *compiler) parseOr() error {
	if err := c.parseAnd(); err != nil {
		return err
	}
	for c.tok.kind == tokOr {
		if err := c.advance(); err != nil {
			return err
		}
		if err := c.parseAnd(); err != nil {
			return err
		}
		c.emit(OpOr)
	}
	return nil
}

func (c *compiler) parseAnd() error {
	if err := c.parseEquality(); err != nil {
		return err
	}
	for c.tok.kind == tokAnd {
		if err := c.advance(); err != nil {
			return err
		}
		if err := c.parseEquality(); err != nil {
			return err
		}
		c.emit(OpAnd)
	}
	return nil
}

func (c *compiler) parseEquality() error {
	if err := c.parseComparison(); err != nil {
		return err
	}
	for c.tok.kind == tokEq || c.tok.kind == tokNeq {
		op := OpEq
		if c.tok.kind == tokNeq {
			op = OpNeq
		}
		if err := c.advance(); err != nil {
			return err
		}
		if err := c.parseComparison(); err != nil {
			return err
		}
		c.emit(op)
	}
	return nil
}

func (c *compiler) parseComparison() error {
	if err := c.parseAdditive(); err != nil {
		return err
	}
	for {
		var op Opcode
		switch c.tok.kind {
		case tokLt:
			op = OpLt
		case tokLte:
			op = OpLte
		case tokGt:
			op = OpGt
		case tokGte:
			op = OpGte
		default:
			return nil
		}
		if err := c.advance(); err != nil {
			return err
		}
		if err := c.parseAdditive(); err != nil {
			return err
		}
		c.emit(op)
	}
}

func (c *compiler) parseAdditive() error {
	if err := c.parseMultiplicative(); err != nil {
		return err
	}
	for c.tok.kind == tokPlus || c.tok.kind == tokMinus {
		op := OpAdd
		if c.tok.kind == tokMinus {
			op = OpSub
		}
		if err := c.advance(); err != nil {
			return err
		}
		if err := c.parseMultiplicative(); err != nil {
			return err
		}
		c.emit(op)
	}
	return nil
}

func (c *compiler) parseMultiplicative() error {
	if err := c.parseUnary(); err != nil {
		return err
	}
	for c.tok.kind == tokStar || c.tok.kind == tokSlash {
		op := OpMul
		if c.tok.kind == tokSlash {
			op = OpDiv
		}
		if err := c.advance(); err != nil {
			return err
		}
		if err := c.parseUnary(); err != nil {
			return err
		}
		c.emit(op)
	}
	return nil
}

func (c *compiler) parseUnary() error {
	switch c.tok.kind {
	case tokMinus:
		if err := c.advance(); err != nil {
			return err
		}
		if err := c.parseUnary(); err != nil {
			return err
		}
		c.emit(OpNeg)
		return nil
	case tokPlus:
		if err := c.advance(); err != nil {
			return err
		}
		if err := c.parseUnary(); err != nil {
			return err
		}
		c.emit(OpPos)
		return nil
	case tokNot:
		if err := c.advance(); err != nil {
			return err
		}
		if err := c.parseUnary(); err != nil {
			return err
		}
		c.emit(OpNot)
		return nil
	default:
		return c.parsePrimary()
	}
}

func (c *compiler) parsePrimary() error {
	switch c.tok.kind {
	case tokInt:
		c.code = append(c.code, Instr{Op: OpPushInt, IntArg: c.tok.i})
		return c.advance()
	case tokString:
		c.code = append(c.code, Instr{Op: OpPushString, StrArg: c.tok.s})
		return c.advance()
	case tokTrue:
		c.emit(OpPushTrue)
		return c.advance()
	case tokFalse:
		c.emit(OpPushFalse)
		return c.advance()
	case tokPath:
		c.code = append(c.code, Instr{Op: OpLoad, StrArg: c.tok.s})
		return c.advance()
	case tokLParen:
		if err := c.advance(); err != nil {
			return err
		}
		if err := c.parseOr(); err != nil {
			return err
		}
		return c.expect(tokRParen, "')'")
	default:
		return errors.Errorf("expression_parse_error: unexpected token at offset %d", c.tok.pos)
	}
}
