package irgen

import (
	"fmt"

	"github.com/RyanMarcus/basicaf/internal/ast"
	"github.com/RyanMarcus/basicaf/internal/blockgen"
	"github.com/RyanMarcus/basicaf/internal/compileerr"
	"github.com/RyanMarcus/basicaf/internal/quads"
)

// emitNonLoop lowers every command of a straight-line block in order,
// reporting whether the block ended on a branching/terminating statement
// (in which case blockToIR must not fall through to OutBlocks[0]).
func (g *Generator) emitNonLoop(block int) (bool, error) {
	shouldBeEnd := false

	for _, cmd := range append([]ast.Command(nil), g.blocks[block].Cmds...) {
		if shouldBeEnd {
			return false, compileerr.Invariantf(
				"line %d: command type should have ended a block but didn't", cmd.Line)
		}
		g.currentLine = cmd.Line

		var err error
		switch cmd.Stmt.Kind {
		case ast.KDef:
			g.defMap[cmd.Stmt.DefName] = defEntry{Var: cmd.Stmt.DefVar, Expr: cmd.Stmt.DefExpr}

		case ast.KDim:
			err = g.emitDim(cmd)

		case ast.KFor:
			err = g.emitFor(block, cmd)
			shouldBeEnd = true

		case ast.KNext:
			shouldBeEnd = true

		case ast.KGosub:
			err = g.emitGosub(block)
			shouldBeEnd = true

		case ast.KReturn:
			err = g.emitReturn(block)
			shouldBeEnd = true

		case ast.KGoto:
			err = g.emitGoto(block)
			shouldBeEnd = true

		case ast.KIf:
			err = g.emitIf(block, cmd)
			shouldBeEnd = true

		case ast.KLet:
			err = g.emitLet(cmd.Line, cmd.Stmt.LetTarget, cmd.Stmt.LetExpr)

		case ast.KRead:
			for idx, vname := range cmd.Stmt.ReadVars {
				err = g.emitLet(cmd.Line, ast.LetTarget{Var: vname}, &ast.Num{Value: cmd.Data[idx]})
				if err != nil {
					break
				}
			}

		case ast.KPrint:
			g.comment("Printing")
			for _, item := range cmd.Stmt.PrintSeq {
				code, perr := g.irForPrint(item)
				if perr != nil {
					err = perr
					break
				}
				g.ir = append(g.ir, code...)
			}
			g.comment("End of print")

		case ast.KEnd, ast.KData, ast.KRem:
			// no codegen.
		}

		if err != nil {
			return false, err
		}
	}

	return shouldBeEnd, nil
}

func (g *Generator) emitDim(cmd ast.Command) error {
	for _, array := range cmd.Stmt.DimArrays {
		if g.usedArray {
			return compileerr.Semanticf(cmd.Line,
				"definition of array %s must come before the first use of any array", array.Name)
		}

		dims := make([]int, 0, len(array.Dims))
		total := uint32(1)
		for _, e := range array.Dims {
			n, ok := e.(*ast.Num)
			if !ok {
				return compileerr.Semanticf(cmd.Line,
					"DIM statement for array %s must give a fixed size", array.Name)
			}
			if n.Value < 1 {
				return compileerr.Semanticf(cmd.Line,
					"array %s must have all > 0 dimensions", array.Name)
			}
			dims = append(dims, n.Value)
			total *= uint32(n.Value)
		}

		pos := g.alloc.ReserveArray(total)
		g.arrayT[array.Name] = arrayEntry{Dims: dims, Pos: pos}
	}
	return nil
}

func (g *Generator) emitFor(block int, cmd ast.Command) error {
	varname := cmd.Stmt.ForVar
	varPos, ok := g.symbolT[varname]
	if !ok {
		varPos = g.alloc.Reserve()
		g.symbolT[varname] = varPos
	}

	// initialize the loop variable.
	fromLoc, fromCode, err := g.irForExpr(cmd.Stmt.ForFrom)
	if err != nil {
		return err
	}
	g.ir = append(g.ir, fromCode...)
	g.ir = append(g.ir, quads.Zero(varPos), quads.Move(fromLoc, varPos))
	g.alloc.Free(fromLoc)

	condPos := g.alloc.Reserve()

	if err := g.emitForCondition(cmd, varPos, condPos); err != nil {
		return err
	}

	g.ir = append(g.ir, quads.RawBF("["))
	if err := g.blockToIR(g.blocks[block].OutBlocks[1]); err != nil {
		return err
	}

	g.ir = append(g.ir, quads.To(varPos), quads.RawBF("+"))

	if err := g.emitForCondition(cmd, varPos, condPos); err != nil {
		return err
	}
	g.alloc.Free(condPos)

	g.ir = append(g.ir, quads.RawBF("]"))
	return g.blockToIR(g.blocks[block].OutBlocks[0])
}

// emitForCondition recomputes the `var != to_expr` condition into condPos,
// leaving the head parked on condPos -- called once before the loop body
// and once more before closing the raw bracket, mirroring the original's
// duplicated condition-check blocks.
func (g *Generator) emitForCondition(cmd ast.Command, varPos, condPos uint32) error {
	toLoc, toCode, err := g.irForExpr(cmd.Stmt.ForTo)
	if err != nil {
		return err
	}
	g.ir = append(g.ir, toCode...)

	varCopy := g.alloc.Reserve()
	t2 := g.alloc.Reserve()
	t3 := g.alloc.Reserve()

	g.ir = append(g.ir,
		quads.Zero(varCopy),
		quads.Zero(condPos),
		quads.Zero(t2),
		quads.Zero(t3),
		quads.AddTo(varPos, varCopy, condPos),
		quads.Zero(condPos),
		quads.To(condPos),
		quads.NotEqual(varCopy, toLoc, condPos, t2, t3),
	)

	g.alloc.Free(t2)
	g.alloc.Free(t3)
	g.alloc.Free(toLoc)
	g.alloc.Free(varCopy)
	g.ir = append(g.ir, quads.To(condPos))
	return nil
}

func (g *Generator) emitGosub(block int) error {
	b := g.blocks[block]
	outIdx1, ok := returnTarget(b.SpecialOut)
	if !ok {
		return compileerr.Invariantf("GOSUB block %d did not have its return target set", block)
	}

	if err := g.blockToIR(b.OutBlocks[0]); err != nil {
		return err
	}
	return g.blockToIR(outIdx1)
}

func returnTarget(s blockgen.SpecialOut) (int, bool) {
	if s.Kind != blockgen.SpecialReturn {
		return 0, false
	}
	return s.Pos, true
}

func (g *Generator) emitReturn(block int) error {
	b := g.blocks[block]
	if len(b.OutBlocks) != 1 {
		return compileerr.Invariantf("line %d: RETURN should have exactly one out block", g.currentLine)
	}
	returnLoc := b.OutBlocks[0]

	if len(g.loopStack) > 0 {
		top := g.loopStack[len(g.loopStack)-1]
		for idx, e := range g.blocks[top.blockIdx].LoopExits {
			if e == returnLoc {
				g.markLoopDone(top.loopVar, top.condVar, idx)
				break
			}
		}
	}
	return nil
}

func (g *Generator) emitGoto(block int) error {
	outIdx := g.blocks[block].OutBlocks[0]
	if len(g.loopStack) > 0 && g.loopStack[len(g.loopStack)-1].blockIdx == outIdx {
		// jumping back to the current loop's header: the natural
		// back-edge, already handled by the raw bracket. Nothing to emit.
		return nil
	}
	return g.blockToIR(outIdx)
}

func (g *Generator) emitIf(block int, cmd ast.Command) error {
	g.comment("Start of if statement")

	loc1, code1, err := g.irForExpr(cmd.Stmt.IfLhs)
	if err != nil {
		return err
	}
	loc2, code2, err := g.irForExpr(cmd.Stmt.IfRhs)
	if err != nil {
		return err
	}
	g.ir = append(g.ir, code1...)
	g.ir = append(g.ir, code2...)

	cond := g.reserveZeroed()
	t1 := g.reserveZeroed()
	t2 := g.reserveZeroed()

	action, err := relopQuad(cmd.Line, cmd.Stmt.IfOp, loc1, loc2, cond, t1, t2)
	if err != nil {
		return err
	}
	g.ir = append(g.ir, action)

	g.alloc.Free(t1)
	g.alloc.Free(t2)
	g.alloc.Free(loc1)
	g.alloc.Free(loc2)

	elseTmp := g.reserveZeroed()

	outIdx0 := g.blocks[block].OutBlocks[0]
	outIdx1 := g.blocks[block].OutBlocks[1]
	// an arm that jumps back to the current loop's node is the natural
	// back edge: the loop's closing bracket re-enters the body, so that
	// arm emits nothing (as emitGoto does for the same edge).
	lowerArm := func(idx int) error {
		if len(g.loopStack) > 0 && g.loopStack[len(g.loopStack)-1].blockIdx == idx {
			return nil
		}
		return g.blockToIR(idx)
	}
	g.ir = append(g.ir, quads.IfElse(cond, elseTmp))

	doesLoopExit := false
	if len(g.loopStack) > 0 {
		top := g.loopStack[len(g.loopStack)-1]
		exits := g.blocks[top.blockIdx].LoopExits
		index0, has0 := indexOf(exits, outIdx0)
		index1, has1 := indexOf(exits, outIdx1)

		if has0 || has1 {
			doesLoopExit = true
			switch {
			case has1:
				g.markLoopDone(top.loopVar, top.condVar, index1)
				g.comment("else")
				g.ir = append(g.ir, quads.Else(cond, elseTmp))
				if err := lowerArm(outIdx0); err != nil {
					return err
				}
				g.comment("end if")
				g.ir = append(g.ir, quads.EndElse(elseTmp))

			case has0:
				if err := lowerArm(outIdx1); err != nil {
					return err
				}
				g.comment("else")
				g.ir = append(g.ir, quads.Else(cond, elseTmp))
				g.markLoopDone(top.loopVar, top.condVar, index0)
				g.comment("end if")
				g.ir = append(g.ir, quads.EndElse(elseTmp))
			}
		}
	}

	if !doesLoopExit {
		if err := g.blockToIR(outIdx1); err != nil {
			return err
		}
		g.comment("else")
		g.ir = append(g.ir, quads.Else(cond, elseTmp))
		if err := g.blockToIR(outIdx0); err != nil {
			return err
		}
		g.comment("end if")
		g.ir = append(g.ir, quads.EndElse(elseTmp))
	}

	g.alloc.Free(cond)
	g.alloc.Free(elseTmp)
	return nil
}

func indexOf(s []int, v int) (int, bool) {
	for i, x := range s {
		if x == v {
			return i, true
		}
	}
	return 0, false
}

func relopQuad(line int, op ast.RelOp, loc1, loc2, cond, t1, t2 uint32) (quads.Quad, error) {
	switch op {
	case ast.OpEQ:
		return quads.Equal(loc1, loc2, cond, t1, t2), nil
	case ast.OpGT:
		return quads.Greater(loc1, loc2, cond, t1, t2), nil
	case ast.OpLT:
		return quads.Less(loc1, loc2, cond, t1, t2), nil
	case ast.OpNE:
		return quads.NotEqual(loc1, loc2, cond, t1, t2), nil
	case ast.OpGE:
		return quads.GreaterOrEqual(loc1, loc2, cond, t1, t2), nil
	case ast.OpLE:
		return quads.LessOrEqual(loc1, loc2, cond, t1, t2), nil
	default:
		return quads.Quad{}, compileerr.Semanticf(line, "unsupported relational operator %q", op.String())
	}
}

// emitLet lowers both LET target shapes: a scalar variable or an indexed
// array element.
func (g *Generator) emitLet(line int, target ast.LetTarget, expr ast.Expr) error {
	if target.IsArray() {
		g.comment(fmt.Sprintf("LET for array %s", target.Array.Name))
		g.usedArray = true

		arrPos, arrIdx, idxCode, err := g.computeArrayIndex(line, *target.Array)
		if err != nil {
			return err
		}
		g.ir = append(g.ir, idxCode...)

		loc, code, err := g.irForExpr(expr)
		if err != nil {
			return err
		}
		g.ir = append(g.ir, code...)

		g.ir = append(g.ir, quads.SetArray(arrPos, arrIdx, loc))

		g.alloc.Free(loc)
		g.alloc.Free(arrIdx)
	} else {
		g.comment(fmt.Sprintf("LET for variable %s", target.Var))
		varPos, ok := g.symbolT[target.Var]
		if !ok {
			varPos = g.alloc.Reserve()
			g.symbolT[target.Var] = varPos
		}

		loc, code, err := g.irForExpr(expr)
		if err != nil {
			return err
		}
		g.ir = append(g.ir, code...)

		g.ir = append(g.ir, quads.Zero(varPos), quads.Move(loc, varPos))
		g.alloc.Free(loc)
	}

	g.comment("End of LET")
	return nil
}

// computeArrayIndex flattens an N-dimensional index into a single
// accumulator cell via row-major multiplication (spec.md §4.4): for all
// but the last dimension, the index is multiplied by the next dimension's
// size via a For/Next loop; the last dimension's index is moved directly.
func (g *Generator) computeArrayIndex(line int, def ast.ArrayDef) (uint32, uint32, []quads.Quad, error) {
	entry, ok := g.arrayT[def.Name]
	if !ok {
		return 0, 0, nil, compileerr.Semanticf(line, "indexing into array %s before it is declared", def.Name)
	}

	var code []quads.Quad
	dimIdx := make([]uint32, 0, len(def.Dims))
	for _, dim := range def.Dims {
		pos, dcode, err := g.irForExpr(dim)
		if err != nil {
			return 0, 0, nil, err
		}
		dimIdx = append(dimIdx, pos)
		code = append(code, dcode...)
	}

	accum := g.alloc.Reserve()
	code = append(code, quads.Zero(accum))

	lastIndex := len(dimIdx) - 1
	for idx, di := range dimIdx {
		if idx == lastIndex {
			code = append(code, quads.Move(di, accum))
			g.alloc.Free(di)
			continue
		}

		nextDimSize := entry.Dims[idx+1]
		code = append(code,
			quads.For(di),
			quads.To(accum),
			quads.Constant(uint32(nextDimSize)),
			quads.Next(di),
		)
		g.alloc.Free(di)
	}

	return entry.Pos, accum, code, nil
}
