// Package parser turns a lexer.Token stream into an ast.Program. It
// implements exactly the grammar spec.md §6 names as the external AST
// shape; spec.md treats parsing as a black-box surface concern, so this
// parser is deliberately minimal (one statement per source line, no
// nested blocks) rather than a general-purpose BASIC front end.
package parser

import (
	"strings"

	"github.com/pkg/errors"

	"github.com/RyanMarcus/basicaf/internal/ast"
	"github.com/RyanMarcus/basicaf/internal/lexer"
)

type Parser struct {
	toks []lexer.Token
	pos  int
}

func New(toks []lexer.Token) *Parser {
	return &Parser{toks: toks}
}

// Parse lexes src and parses the resulting token stream, returning one
// ast.Command per non-blank source line.
func Parse(src string) (*ast.Program, error) {
	toks, err := lexer.New(src).Tokens()
	if err != nil {
		return nil, errors.Wrap(err, "lex")
	}
	return New(toks).Parse()
}

func (p *Parser) Parse() (*ast.Program, error) {
	prog := &ast.Program{}
	lastLine := -1
	for !p.atEnd() {
		for p.check(lexer.TokNewline) {
			p.advance()
		}
		if p.atEnd() {
			break
		}
		cmd, err := p.command()
		if err != nil {
			return nil, err
		}
		if cmd.Line <= lastLine {
			return nil, errors.Errorf("line %d: line numbers must strictly increase (previous was %d)", cmd.Line, lastLine)
		}
		lastLine = cmd.Line
		prog.Commands = append(prog.Commands, cmd)
		if !p.check(lexer.TokEOF) {
			if _, err := p.expect(lexer.TokNewline); err != nil {
				return nil, err
			}
		}
	}
	return prog, nil
}

func (p *Parser) command() (ast.Command, error) {
	numTok, err := p.expect(lexer.TokNumber)
	if err != nil {
		return ast.Command{}, err
	}
	stmt, err := p.statement()
	if err != nil {
		return ast.Command{}, err
	}
	return ast.Command{Line: numTok.Num, Stmt: stmt}, nil
}

func (p *Parser) statement() (ast.Statement, error) {
	tok := p.peek()
	switch tok.Type {
	case lexer.TokDef:
		return p.defStmt()
	case lexer.TokDim:
		return p.dimStmt()
	case lexer.TokEnd:
		p.advance()
		return ast.Statement{Kind: ast.KEnd}, nil
	case lexer.TokFor:
		return p.forStmt()
	case lexer.TokNext:
		return p.nextStmt()
	case lexer.TokGosub:
		return p.gosubStmt()
	case lexer.TokReturn:
		p.advance()
		return ast.Statement{Kind: ast.KReturn}, nil
	case lexer.TokGoto:
		return p.gotoStmt()
	case lexer.TokIf:
		return p.ifStmt()
	case lexer.TokLet:
		return p.letStmt()
	case lexer.TokPrint:
		return p.printStmt()
	case lexer.TokData:
		return p.dataStmt()
	case lexer.TokRead:
		return p.readStmt()
	case lexer.TokRem:
		txt := tok.Lexeme
		p.advance()
		return ast.Statement{Kind: ast.KRem, DefName: txt}, nil
	case lexer.TokIdent:
		// Bare `X = expr` is sugar for LET X = expr.
		return p.letStmt()
	}
	return ast.Statement{}, errors.Errorf("line %d: unexpected token %s starting a statement", tok.Line, tok.Type)
}

func (p *Parser) defStmt() (ast.Statement, error) {
	p.advance() // DEF
	fn, err := p.expect(lexer.TokIdent)
	if err != nil {
		return ast.Statement{}, err
	}
	if _, err := p.expect(lexer.TokLParen); err != nil {
		return ast.Statement{}, err
	}
	v, err := p.expect(lexer.TokIdent)
	if err != nil {
		return ast.Statement{}, err
	}
	if _, err := p.expect(lexer.TokRParen); err != nil {
		return ast.Statement{}, err
	}
	if _, err := p.expect(lexer.TokEQ); err != nil {
		return ast.Statement{}, err
	}
	expr, err := p.expression()
	if err != nil {
		return ast.Statement{}, err
	}
	return ast.Statement{Kind: ast.KDef, DefName: fn.Lexeme, DefVar: v.Lexeme, DefExpr: expr}, nil
}

func (p *Parser) dimStmt() (ast.Statement, error) {
	p.advance() // DIM
	var arrays []ast.ArrayDef
	for {
		name, err := p.expect(lexer.TokIdent)
		if err != nil {
			return ast.Statement{}, err
		}
		if _, err := p.expect(lexer.TokLParen); err != nil {
			return ast.Statement{}, err
		}
		var dims []ast.Expr
		for {
			d, err := p.expression()
			if err != nil {
				return ast.Statement{}, err
			}
			dims = append(dims, d)
			if p.match(lexer.TokComma) {
				continue
			}
			break
		}
		if _, err := p.expect(lexer.TokRParen); err != nil {
			return ast.Statement{}, err
		}
		arrays = append(arrays, ast.ArrayDef{Name: name.Lexeme, Dims: dims})
		if p.match(lexer.TokComma) {
			continue
		}
		break
	}
	return ast.Statement{Kind: ast.KDim, DimArrays: arrays}, nil
}

func (p *Parser) forStmt() (ast.Statement, error) {
	p.advance() // FOR
	v, err := p.expect(lexer.TokIdent)
	if err != nil {
		return ast.Statement{}, err
	}
	if _, err := p.expect(lexer.TokEQ); err != nil {
		return ast.Statement{}, err
	}
	from, err := p.expression()
	if err != nil {
		return ast.Statement{}, err
	}
	if _, err := p.expect(lexer.TokTo); err != nil {
		return ast.Statement{}, err
	}
	to, err := p.expression()
	if err != nil {
		return ast.Statement{}, err
	}
	return ast.Statement{Kind: ast.KFor, ForVar: v.Lexeme, ForFrom: from, ForTo: to}, nil
}

func (p *Parser) nextStmt() (ast.Statement, error) {
	p.advance() // NEXT
	v, err := p.expect(lexer.TokIdent)
	if err != nil {
		return ast.Statement{}, err
	}
	return ast.Statement{Kind: ast.KNext, NextVar: v.Lexeme}, nil
}

func (p *Parser) gosubStmt() (ast.Statement, error) {
	p.advance() // GOSUB
	line, err := p.expect(lexer.TokNumber)
	if err != nil {
		return ast.Statement{}, err
	}
	return ast.Statement{Kind: ast.KGosub, TargetLine: line.Num}, nil
}

func (p *Parser) gotoStmt() (ast.Statement, error) {
	p.advance() // GOTO
	line, err := p.expect(lexer.TokNumber)
	if err != nil {
		return ast.Statement{}, err
	}
	return ast.Statement{Kind: ast.KGoto, TargetLine: line.Num}, nil
}

var relOps = map[lexer.TokenType]ast.RelOp{
	lexer.TokEQ: ast.OpEQ, lexer.TokNE: ast.OpNE, lexer.TokLT: ast.OpLT,
	lexer.TokGT: ast.OpGT, lexer.TokLE: ast.OpLE, lexer.TokGE: ast.OpGE,
}

func (p *Parser) ifStmt() (ast.Statement, error) {
	p.advance() // IF
	lhs, err := p.expression()
	if err != nil {
		return ast.Statement{}, err
	}
	opTok := p.peek()
	op, ok := relOps[opTok.Type]
	if !ok {
		return ast.Statement{}, errors.Errorf("line %d: expected a relational operator, got %s", opTok.Line, opTok.Type)
	}
	p.advance()
	rhs, err := p.expression()
	if err != nil {
		return ast.Statement{}, err
	}
	if _, err := p.expect(lexer.TokThen); err != nil {
		return ast.Statement{}, err
	}
	line, err := p.expect(lexer.TokNumber)
	if err != nil {
		return ast.Statement{}, err
	}
	return ast.Statement{Kind: ast.KIf, IfLhs: lhs, IfOp: op, IfRhs: rhs, IfLine: line.Num}, nil
}

func (p *Parser) letStmt() (ast.Statement, error) {
	if p.check(lexer.TokLet) {
		p.advance()
	}
	name, err := p.expect(lexer.TokIdent)
	if err != nil {
		return ast.Statement{}, err
	}
	target := ast.LetTarget{Var: name.Lexeme}
	if p.match(lexer.TokLParen) {
		var dims []ast.Expr
		for {
			d, err := p.expression()
			if err != nil {
				return ast.Statement{}, err
			}
			dims = append(dims, d)
			if p.match(lexer.TokComma) {
				continue
			}
			break
		}
		if _, err := p.expect(lexer.TokRParen); err != nil {
			return ast.Statement{}, err
		}
		target = ast.LetTarget{Array: &ast.ArrayDef{Name: name.Lexeme, Dims: dims}}
	}
	if _, err := p.expect(lexer.TokEQ); err != nil {
		return ast.Statement{}, err
	}
	expr, err := p.expression()
	if err != nil {
		return ast.Statement{}, err
	}
	return ast.Statement{Kind: ast.KLet, LetTarget: target, LetExpr: expr}, nil
}

func (p *Parser) printStmt() (ast.Statement, error) {
	p.advance() // PRINT
	var seq []ast.PrintItem
	for {
		if p.check(lexer.TokString) {
			s := p.advance().Lexeme
			seq = append(seq, ast.PrintItem{Str: &s})
		} else {
			e, err := p.expression()
			if err != nil {
				return ast.Statement{}, err
			}
			seq = append(seq, ast.PrintItem{Expr: e})
		}
		if p.match(lexer.TokComma) {
			continue
		}
		break
	}
	return ast.Statement{Kind: ast.KPrint, PrintSeq: seq}, nil
}

func (p *Parser) dataStmt() (ast.Statement, error) {
	p.advance() // DATA
	var lits []int
	for {
		n, err := p.expect(lexer.TokNumber)
		if err != nil {
			return ast.Statement{}, err
		}
		lits = append(lits, n.Num)
		if p.match(lexer.TokComma) {
			continue
		}
		break
	}
	return ast.Statement{Kind: ast.KData, DataLiterals: lits}, nil
}

func (p *Parser) readStmt() (ast.Statement, error) {
	p.advance() // READ
	var vars []string
	for {
		v, err := p.expect(lexer.TokIdent)
		if err != nil {
			return ast.Statement{}, err
		}
		vars = append(vars, v.Lexeme)
		if p.match(lexer.TokComma) {
			continue
		}
		break
	}
	return ast.Statement{Kind: ast.KRead, ReadVars: vars}, nil
}

// expression parses the additive level: term (('+' | '-') term)*.
func (p *Parser) expression() (ast.Expr, error) {
	left, err := p.term()
	if err != nil {
		return nil, err
	}
	for p.check(lexer.TokPlus) || p.check(lexer.TokMinus) {
		opTok := p.advance()
		right, err := p.term()
		if err != nil {
			return nil, err
		}
		code := ast.Add
		if opTok.Type == lexer.TokMinus {
			code = ast.Sub
		}
		left = &ast.Op{Left: left, Code: code, Right: right}
	}
	return left, nil
}

// term parses the multiplicative level: factor (('*' | '/') factor)*.
func (p *Parser) term() (ast.Expr, error) {
	left, err := p.factor()
	if err != nil {
		return nil, err
	}
	for p.check(lexer.TokStar) || p.check(lexer.TokSlash) {
		opTok := p.advance()
		right, err := p.factor()
		if err != nil {
			return nil, err
		}
		code := ast.Mul
		if opTok.Type == lexer.TokSlash {
			code = ast.Div
		}
		left = &ast.Op{Left: left, Code: code, Right: right}
	}
	return left, nil
}

func (p *Parser) factor() (ast.Expr, error) {
	tok := p.peek()
	switch tok.Type {
	case lexer.TokNumber:
		p.advance()
		return &ast.Num{Value: tok.Num}, nil
	case lexer.TokLParen:
		p.advance()
		inner, err := p.expression()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(lexer.TokRParen); err != nil {
			return nil, err
		}
		return &ast.Paren{Inner: inner}, nil
	case lexer.TokIdent:
		p.advance()
		if p.match(lexer.TokLParen) {
			var dims []ast.Expr
			for {
				d, err := p.expression()
				if err != nil {
					return nil, err
				}
				dims = append(dims, d)
				if p.match(lexer.TokComma) {
					continue
				}
				break
			}
			if _, err := p.expect(lexer.TokRParen); err != nil {
				return nil, err
			}
			return &ast.Array{Def: ast.ArrayDef{Name: tok.Lexeme, Dims: dims}}, nil
		}
		return &ast.Var{Name: tok.Lexeme}, nil
	}
	return nil, errors.Errorf("line %d: unexpected token %s in expression", tok.Line, tok.Type)
}

func (p *Parser) check(t lexer.TokenType) bool {
	return p.peek().Type == t
}

func (p *Parser) match(t lexer.TokenType) bool {
	if p.check(t) {
		p.advance()
		return true
	}
	return false
}

func (p *Parser) peek() lexer.Token {
	if p.pos >= len(p.toks) {
		return lexer.Token{Type: lexer.TokEOF}
	}
	return p.toks[p.pos]
}

func (p *Parser) advance() lexer.Token {
	t := p.peek()
	if t.Type != lexer.TokEOF {
		p.pos++
	}
	return t
}

func (p *Parser) atEnd() bool {
	return p.check(lexer.TokEOF)
}

func (p *Parser) expect(t lexer.TokenType) (lexer.Token, error) {
	if p.check(t) {
		return p.advance(), nil
	}
	got := p.peek()
	return lexer.Token{}, errors.Errorf("line %d: expected %s, got %s %q", got.Line, t, got.Type, got.Lexeme)
}

// joinIdents joins a list of identifiers with ", ". No parser diagnostic
// currently calls it.
func joinIdents(names []string) string {
	return strings.Join(names, ", ")
}
