package irgen

import (
	"github.com/RyanMarcus/basicaf/internal/ast"
	"github.com/RyanMarcus/basicaf/internal/compileerr"
	"github.com/RyanMarcus/basicaf/internal/quads"
)

// exprResult is the value an ast.ExprVisitor method hands back through the
// Accept/interface{} double-dispatch boundary: the cell holding the
// expression's result plus the quads that compute it, or an error.
type exprResult struct {
	loc  uint32
	code []quads.Quad
	err  error
}

// Generator implements ast.ExprVisitor so expression lowering dispatches
// through Accept instead of a type switch (see ast.Expr's doc comment).
var _ ast.ExprVisitor = (*Generator)(nil)

func (g *Generator) irForExpr(e ast.Expr) (uint32, []quads.Quad, error) {
	res := e.Accept(g).(exprResult)
	return res.loc, res.code, res.err
}

func (g *Generator) VisitNum(e *ast.Num) interface{} {
	loc, code, err := g.irForConst(e.Value)
	return exprResult{loc, code, err}
}

func (g *Generator) VisitVar(e *ast.Var) interface{} {
	loc, code, err := g.irForVar(e.Name)
	return exprResult{loc, code, err}
}

func (g *Generator) VisitParen(e *ast.Paren) interface{} {
	return e.Inner.Accept(g)
}

func (g *Generator) VisitArray(e *ast.Array) interface{} {
	pos, idx, code, err := g.computeArrayIndex(g.currentLine, e.Def)
	if err != nil {
		return exprResult{err: err}
	}

	tmp := g.reserveZeroedInto(&code)
	code = append(code, quads.GetArray(pos, idx, tmp))
	g.alloc.Free(idx)

	return exprResult{tmp, code, nil}
}

func (g *Generator) VisitOp(e *ast.Op) interface{} {
	e1l, e1c, err := g.irForExpr(e.Left)
	if err != nil {
		return exprResult{err: err}
	}
	e2l, e2c, err := g.irForExpr(e.Right)
	if err != nil {
		return exprResult{err: err}
	}

	var code []quads.Quad
	code = append(code, e1c...)
	code = append(code, e2c...)

	switch e.Code {
	case ast.Add:
		tmp := g.alloc.Reserve()
		code = append(code, quads.Zero(tmp), quads.AddTo(e2l, e1l, tmp))
		g.alloc.Free(tmp)
		g.alloc.Free(e2l)
		return exprResult{e1l, code, nil}

	case ast.Sub:
		code = append(code, quads.SubFrom(e1l, e2l))
		g.alloc.Free(e2l)
		return exprResult{e1l, code, nil}

	case ast.Mul:
		tmp := g.alloc.Reserve()
		loc := g.alloc.Reserve()
		code = append(code, quads.Zero(tmp), quads.Zero(loc), quads.Times(e1l, e2l, loc, tmp))
		g.alloc.Free(e1l)
		g.alloc.Free(e2l)
		g.alloc.Free(tmp)
		return exprResult{loc, code, nil}

	case ast.Div:
		// quo, t1, div, rem, res, t3, t4: seven contiguous cells, per
		// the Div quad's documented layout.
		tmpStart := g.alloc.ReserveRange(7)
		t1 := g.alloc.Reserve()

		for i := uint32(0); i < 7; i++ {
			code = append(code, quads.Zero(tmpStart+i))
		}

		code = append(code, quads.AddTo(e1l, tmpStart, t1), quads.Zero(t1))
		code = append(code, quads.AddTo(e2l, tmpStart+2, t1))
		code = append(code, quads.Div(tmpStart, tmpStart+1, tmpStart+2, tmpStart+3, tmpStart+4, tmpStart+5, tmpStart+6))

		loc := g.alloc.Reserve()
		code = append(code, quads.Zero(t1), quads.AddTo(tmpStart+4, loc, t1))

		g.alloc.Free(t1)
		for i := uint32(0); i < 7; i++ {
			g.alloc.Free(tmpStart + i)
		}
		g.alloc.Free(e1l)
		g.alloc.Free(e2l)
		return exprResult{loc, code, nil}

	default:
		return exprResult{err: compileerr.Semanticf(g.currentLine, "unsupported binary operator %q", e.Code.String())}
	}
}

// reserveZeroedInto reserves a fresh cell, appends its Zero quad to code,
// and returns the cell.
func (g *Generator) reserveZeroedInto(code *[]quads.Quad) uint32 {
	v := g.alloc.Reserve()
	*code = append(*code, quads.Zero(v))
	return v
}

func (g *Generator) irForConst(val int) (uint32, []quads.Quad, error) {
	if val < 0 {
		return 0, nil, compileerr.Arithmeticf(g.currentLine, "the Tape Language does not support negative values")
	}

	var code []quads.Quad
	if !g.constOpt {
		dest := g.alloc.Reserve()
		code = append(code, quads.Zero(dest), quads.To(dest), quads.Constant(uint32(val)))
		return dest, code, nil
	}

	synth, size := quads.OptimizedConstant(uint32(val))
	dest := g.alloc.ReserveRange(size)
	for i := dest; i < dest+size; i++ {
		code = append(code, quads.Zero(i))
	}
	code = append(code, quads.To(dest), quads.RawBFStr(synth))
	for i := dest + 1; i < dest+size; i++ {
		g.alloc.Free(i)
	}
	return dest, code, nil
}

func (g *Generator) irForVar(name string) (uint32, []quads.Quad, error) {
	varloc, ok := g.symbolT[name]
	if !ok {
		return 0, nil, compileerr.Semanticf(g.currentLine, "variable %s is not defined", name)
	}

	pos := g.alloc.Reserve()
	tmp := g.alloc.Reserve()
	code := []quads.Quad{quads.Zero(pos), quads.Zero(tmp), quads.AddTo(varloc, pos, tmp)}
	g.alloc.Free(tmp)
	return pos, code, nil
}

// printDecimalLiteral is the opaque decimal-printing routine: it destroys
// its 15-cell scratch range while writing the cell's value as ASCII
// digits. Grounded on original_source/src/ir/block_to_ir.rs's
// ir_for_print, emitted as a raw literal rather than a Quad since it is
// used exactly once per print site and never re-expanded.
const printDecimalLiteral = "[>>+>+<<<-]>>>[<<<+>>>-]<<+>[<->[>++++++++++<[->-[>+>>]>[+[-<+>]>+>>]<<<<<]>[-]++++++++[<++++++>-]>[<<+>>-]>[<<+>>-]<<]>]<[->>++++++++[<++++++>-]]<[.[-]<]<"

// irForPrint lowers one PRINT operand: a string literal is emitted via
// ASCII-delta dot-printing (each character's code point relative to the
// previous one), a numeric expression via the decimal-print routine.
func (g *Generator) irForPrint(item ast.PrintItem) ([]quads.Quad, error) {
	if item.Str != nil {
		return g.irForPrintString(*item.Str), nil
	}

	el, ec, err := g.irForExpr(item.Expr)
	if err != nil {
		return nil, err
	}

	var code []quads.Quad
	code = append(code, ec...)

	tmp := g.alloc.ReserveRange(15)
	for i := tmp; i < tmp+15; i++ {
		code = append(code, quads.Zero(i))
	}

	code = append(code, quads.Move(el, tmp))
	g.alloc.Free(el)

	code = append(code, quads.To(tmp), quads.RawBF(printDecimalLiteral))

	for i := tmp; i < tmp+15; i++ {
		g.alloc.Free(i)
	}

	return code, nil
}

func (g *Generator) irForPrintString(s string) []quads.Quad {
	ascii := g.alloc.Reserve()
	code := []quads.Quad{quads.Zero(ascii), quads.To(ascii)}

	currVal := uint32(0)
	for _, r := range s {
		ichr := uint32(r)
		switch {
		case ichr > currVal:
			code = append(code, quads.Constant(ichr-currVal))
		case ichr < currVal:
			code = append(code, quads.SubConstant(currVal-ichr))
		}
		currVal = ichr
		code = append(code, quads.RawBF("."))
	}

	g.alloc.Free(ascii)
	return code
}
