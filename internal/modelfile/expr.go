// Package modelfile reads GDP models from a YAML description and writes
// relaxed models back out, for the CLI and for test fixtures.
package modelfile

import (
	"fmt"
	"strconv"
	"unicode"

	"github.com/polyopt/gdphull/model"
)

type tokenType int

const (
	tokenEOF tokenType = iota
	tokenNumber
	tokenIdent
	tokenPlus
	tokenMinus
	tokenStar
	tokenSlash
	tokenCaret
	tokenLParen
	tokenRParen
	tokenLE
	tokenGE
	tokenEQ
)

type token struct {
	typ tokenType
	val string
	pos int
}

// lexer scans a constraint expression string into tokens.
type lexer struct {
	input string
	pos   int
}

func (l *lexer) lex() ([]token, error) {
	var tokens []token
	for l.pos < len(l.input) {
		start := l.pos
		switch c := l.input[l.pos]; {
		case c == ' ' || c == '\t':
			l.pos++
		case c == '+':
			tokens = append(tokens, token{tokenPlus, "+", start})
			l.pos++
		case c == '-':
			tokens = append(tokens, token{tokenMinus, "-", start})
			l.pos++
		case c == '*':
			tokens = append(tokens, token{tokenStar, "*", start})
			l.pos++
		case c == '/':
			tokens = append(tokens, token{tokenSlash, "/", start})
			l.pos++
		case c == '^':
			tokens = append(tokens, token{tokenCaret, "^", start})
			l.pos++
		case c == '(':
			tokens = append(tokens, token{tokenLParen, "(", start})
			l.pos++
		case c == ')':
			tokens = append(tokens, token{tokenRParen, ")", start})
			l.pos++
		case c == '<' || c == '>':
			if l.pos+1 >= len(l.input) || l.input[l.pos+1] != '=' {
				return nil, fmt.Errorf("column %d: strict inequalities are not supported, use <= or >=", start)
			}
			if c == '<' {
				tokens = append(tokens, token{tokenLE, "<=", start})
			} else {
				tokens = append(tokens, token{tokenGE, ">=", start})
			}
			l.pos += 2
		case c == '=':
			l.pos++
			if l.pos < len(l.input) && l.input[l.pos] == '=' {
				l.pos++
			}
			tokens = append(tokens, token{tokenEQ, "=", start})
		case c >= '0' && c <= '9' || c == '.':
			tokens = append(tokens, l.lexNumber())
		case isIdentStart(rune(c)):
			tokens = append(tokens, l.lexIdent())
		default:
			return nil, fmt.Errorf("column %d: unexpected character %q", start, c)
		}
	}
	tokens = append(tokens, token{tokenEOF, "", l.pos})
	return tokens, nil
}

func (l *lexer) lexNumber() token {
	start := l.pos
	for l.pos < len(l.input) {
		c := l.input[l.pos]
		if c >= '0' && c <= '9' || c == '.' || c == 'e' || c == 'E' {
			l.pos++
			continue
		}
		if (c == '+' || c == '-') && l.pos > start &&
			(l.input[l.pos-1] == 'e' || l.input[l.pos-1] == 'E') {
			l.pos++
			continue
		}
		break
	}
	return token{tokenNumber, l.input[start:l.pos], start}
}

func (l *lexer) lexIdent() token {
	start := l.pos
	for l.pos < len(l.input) && isIdentPart(rune(l.input[l.pos])) {
		l.pos++
	}
	return token{tokenIdent, l.input[start:l.pos], start}
}

func isIdentStart(c rune) bool { return unicode.IsLetter(c) || c == '_' }
func isIdentPart(c rune) bool  { return unicode.IsLetter(c) || unicode.IsDigit(c) || c == '_' }

// resolver maps an identifier to the expression it denotes (a variable or
// parameter reference) following the lexical scope of the owning block.
type resolver func(name string) (model.Expr, error)

// parser builds expressions and relations from a token stream.
type parser struct {
	tokens  []token
	current int
	resolve resolver
}

func newParser(input string, resolve resolver) (*parser, error) {
	tokens, err := (&lexer{input: input}).lex()
	if err != nil {
		return nil, err
	}
	return &parser{tokens: tokens, resolve: resolve}, nil
}

// parseRelation parses "expr", "expr <= expr", "expr >= expr", "expr = expr"
// or the range form "expr <= expr <= expr" (and the >= mirror) where the
// outer operands must be constants.
func parseRelation(input string, resolve resolver) (model.Relation, error) {
	p, err := newParser(input, resolve)
	if err != nil {
		return model.Relation{}, err
	}

	first, err := p.parseExpr()
	if err != nil {
		return model.Relation{}, err
	}

	op := p.peek().typ
	switch op {
	case tokenEOF:
		return model.Relation{Body: first}, nil
	case tokenLE, tokenGE, tokenEQ:
		p.current++
	default:
		return model.Relation{}, p.unexpected("comparison or end of expression")
	}

	second, err := p.parseExpr()
	if err != nil {
		return model.Relation{}, err
	}

	if p.peek().typ == op && op != tokenEQ {
		// Range form: both outer operands must fold to constants.
		p.current++
		third, err := p.parseExpr()
		if err != nil {
			return model.Relation{}, err
		}
		if err := p.expect(tokenEOF); err != nil {
			return model.Relation{}, err
		}
		lo, okLo := constValue(first)
		hi, okHi := constValue(third)
		if !okLo || !okHi {
			return model.Relation{}, fmt.Errorf("range bounds must be constant in %q", input)
		}
		if op == tokenGE {
			lo, hi = hi, lo
		}
		return model.Bounded(second, &lo, &hi), nil
	}
	if err := p.expect(tokenEOF); err != nil {
		return model.Relation{}, err
	}

	switch op {
	case tokenLE:
		return model.LE(first, second), nil
	case tokenGE:
		return model.GE(first, second), nil
	default:
		return model.EQ(first, second), nil
	}
}

func (p *parser) peek() token { return p.tokens[p.current] }

func (p *parser) expect(typ tokenType) error {
	if p.peek().typ != typ {
		return p.unexpected("end of expression")
	}
	p.current++
	return nil
}

func (p *parser) unexpected(want string) error {
	tok := p.peek()
	if tok.typ == tokenEOF {
		return fmt.Errorf("column %d: unexpected end of expression, want %s", tok.pos, want)
	}
	return fmt.Errorf("column %d: unexpected %q, want %s", tok.pos, tok.val, want)
}

// parseExpr handles + and -.
func (p *parser) parseExpr() (model.Expr, error) {
	left, err := p.parseTerm()
	if err != nil {
		return nil, err
	}
	for {
		switch p.peek().typ {
		case tokenPlus:
			p.current++
			right, err := p.parseTerm()
			if err != nil {
				return nil, err
			}
			left = model.Add(left, right)
		case tokenMinus:
			p.current++
			right, err := p.parseTerm()
			if err != nil {
				return nil, err
			}
			left = model.Sub(left, right)
		default:
			return left, nil
		}
	}
}

// parseTerm handles * and /.
func (p *parser) parseTerm() (model.Expr, error) {
	left, err := p.parseUnary()
	if err != nil {
		return nil, err
	}
	for {
		switch p.peek().typ {
		case tokenStar:
			p.current++
			right, err := p.parseUnary()
			if err != nil {
				return nil, err
			}
			left = model.Mul(left, right)
		case tokenSlash:
			p.current++
			right, err := p.parseUnary()
			if err != nil {
				return nil, err
			}
			left = model.Div(left, right)
		default:
			return left, nil
		}
	}
}

func (p *parser) parseUnary() (model.Expr, error) {
	if p.peek().typ == tokenMinus {
		p.current++
		e, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return model.Neg(e), nil
	}
	return p.parsePower()
}

// parsePower handles ^ with a constant integer exponent.
func (p *parser) parsePower() (model.Expr, error) {
	base, err := p.parseAtom()
	if err != nil {
		return nil, err
	}
	if p.peek().typ != tokenCaret {
		return base, nil
	}
	p.current++
	tok := p.peek()
	if tok.typ != tokenNumber {
		return nil, p.unexpected("integer exponent")
	}
	exp, err := strconv.Atoi(tok.val)
	if err != nil {
		return nil, fmt.Errorf("column %d: exponent must be an integer, got %q", tok.pos, tok.val)
	}
	p.current++
	return model.PowOf(base, exp), nil
}

func (p *parser) parseAtom() (model.Expr, error) {
	tok := p.peek()
	switch tok.typ {
	case tokenNumber:
		v, err := strconv.ParseFloat(tok.val, 64)
		if err != nil {
			return nil, fmt.Errorf("column %d: bad number %q", tok.pos, tok.val)
		}
		p.current++
		return model.C(v), nil
	case tokenIdent:
		p.current++
		return p.resolve(tok.val)
	case tokenLParen:
		p.current++
		e, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		if p.peek().typ != tokenRParen {
			return nil, p.unexpected(`")"`)
		}
		p.current++
		return e, nil
	default:
		return nil, p.unexpected("number, identifier or \"(\"")
	}
}

// constValue folds an expression to a constant if it is one structurally.
func constValue(e model.Expr) (float64, bool) {
	v, err := model.Eval(e, nil)
	if err != nil {
		return 0, false
	}
	return v, true
}
