package blockgen

import (
	"strings"

	"github.com/RyanMarcus/basicaf/internal/ast"
	"github.com/RyanMarcus/basicaf/internal/compileerr"
)

type splitType int

const (
	splitNone splitType = iota
	splitAfter
	splitBefore
	splitBoth
)

// gotoTargets collects every line number referenced by a GOSUB, IF or
// GOTO -- a block boundary must exist right before each one so jumps
// always land on a block's first command.
func gotoTargets(cmds []ast.Command) map[int]struct{} {
	out := make(map[int]struct{})
	for _, c := range cmds {
		switch c.Stmt.Kind {
		case ast.KGosub, ast.KGoto:
			out[c.Stmt.TargetLine] = struct{}{}
		case ast.KIf:
			out[c.Stmt.IfLine] = struct{}{}
		}
	}
	return out
}

// bindData threads every DATA literal in program order into the READ
// statements that consume them, in program order, one queue shared across
// the whole program (spec.md §3's DATA/READ pairing).
func bindData(prog *ast.Program) error {
	var data []int
	for _, c := range prog.Commands {
		if c.Stmt.Kind == ast.KData {
			data = append(data, c.Stmt.DataLiterals...)
		}
	}
	pos := 0
	for i := range prog.Commands {
		c := &prog.Commands[i]
		if c.Stmt.Kind != ast.KRead {
			continue
		}
		for range c.Stmt.ReadVars {
			if pos >= len(data) {
				return compileerr.Semanticf(c.Line, "not enough DATA for READ on line %d", c.Line)
			}
			c.Data = append(c.Data, data[pos])
			pos++
		}
	}
	return nil
}

// ToBlocks is the Blockifier entry point (spec.md §4.1): it binds DATA to
// READ, partitions the program into basic blocks, and links every edge.
func ToBlocks(prog *ast.Program) ([]*Block, error) {
	if err := bindData(prog); err != nil {
		return nil, err
	}

	targets := gotoTargets(prog.Commands)

	var blocks []*Block
	curr := newRootBlock()

	for _, cmd := range prog.Commands {
		st := splitNone
		switch cmd.Stmt.Kind {
		case ast.KEnd, ast.KReturn, ast.KNext, ast.KGosub, ast.KGoto, ast.KIf:
			st = splitAfter
		case ast.KFor:
			st = splitBoth
		}

		if _, isTarget := targets[cmd.Line]; isTarget {
			switch st {
			case splitNone, splitBefore:
				st = splitBefore
			case splitAfter, splitBoth:
				st = splitBoth
			}
		}

		switch st {
		case splitBefore:
			if len(curr.Cmds) != 0 {
				blocks = append(blocks, curr)
				curr = newBlock()
			}
			curr.Cmds = append(curr.Cmds, cmd)

		case splitAfter:
			curr.Cmds = append(curr.Cmds, cmd)
			blocks = append(blocks, curr)
			curr = newBlock()

		case splitBoth:
			if len(curr.Cmds) != 0 {
				blocks = append(blocks, curr)
				curr = newBlock()
			}
			curr.Cmds = append(curr.Cmds, cmd)
			blocks = append(blocks, curr)
			curr = newBlock()

		case splitNone:
			curr.Cmds = append(curr.Cmds, cmd)
		}
	}

	if len(curr.Cmds) != 0 {
		last := curr.lastCmd()
		return nil, compileerr.Structuralf(last.Line, "program does not end with an END statement")
	}

	if err := linkBlocks(blocks); err != nil {
		return nil, err
	}

	if err := ensureNoDeadCode(blocks); err != nil {
		return nil, err
	}

	return blocks, nil
}

func cloneBlock(b *Block) *Block {
	nb := &Block{
		Root:       b.Root,
		SpecialOut: b.SpecialOut,
		IsLoop:     b.IsLoop,
	}
	nb.InBlocks = append(nb.InBlocks, b.InBlocks...)
	nb.OutBlocks = append(nb.OutBlocks, b.OutBlocks...)
	nb.Cmds = append(nb.Cmds, b.Cmds...)
	nb.LoopExits = append(nb.LoopExits, b.LoopExits...)
	if b.LoopNodes != nil {
		nb.LoopNodes = make(map[int]struct{}, len(b.LoopNodes))
		for k := range b.LoopNodes {
			nb.LoopNodes[k] = struct{}{}
		}
	}
	return nb
}

// linkBlocks wires every control-flow edge, including GOSUB-callee
// inlining by deep-cloning the callee span when a subroutine is called a
// second time (spec.md §4.1's "inline GOSUB callees by cloning").
func linkBlocks(blocks []*Block) error {
	lnoMap := make(map[int]int)
	for idx, b := range blocks {
		for _, c := range b.Cmds {
			lnoMap[c.Line] = idx
		}
	}

	follows := func(i int) error {
		if i+1 >= len(blocks) {
			return compileerr.Structuralf(blocks[i].lastCmd().Line, "program does not end with an END statement")
		}
		blocks[i].OutBlocks = append(blocks[i].OutBlocks, i+1)
		blocks[i+1].InBlocks = append(blocks[i+1].InBlocks, i)
		return nil
	}

	i := 0
	for i < len(blocks) {
		last := blocks[i].lastCmd()
		handled := false // true once this iteration has already wired its own fallthrough edge

		switch last.Stmt.Kind {
		case ast.KFor:
			parent := last.Stmt.ForVar
			found := false
			for j := i + 1; j < len(blocks)-1; j++ {
				cand := blocks[j].lastCmd()
				if cand.Stmt.Kind == ast.KNext && strings.TrimSpace(parent) == strings.TrimSpace(cand.Stmt.NextVar) {
					found = true
					blocks[j].SpecialOut = SpecialOut{Kind: SpecialNext, Pos: i}
					blocks[i].InBlocks = append(blocks[i].InBlocks, j)
					blocks[i].OutBlocks = append(blocks[i].OutBlocks, j+1)
					blocks[j+1].InBlocks = append(blocks[j+1].InBlocks, i)
					break
				}
			}
			if !found {
				return compileerr.Structuralf(last.Line, "no matching NEXT statement for FOR %s", parent)
			}
			if err := follows(i); err != nil {
				return err
			}
			handled = true

		case ast.KNext:
			if blocks[i].SpecialOut.Kind != SpecialNext {
				return compileerr.Structuralf(last.Line, "NEXT statement without a preceding FOR loop")
			}
			handled = true

		case ast.KGosub:
			lineno := last.Stmt.TargetLine
			outBlock, ok := lnoMap[lineno]
			if !ok {
				return compileerr.Structuralf(last.Line, "GOSUB target line %d does not exist", lineno)
			}

			found := false
			subStart, subReturn := 0, 0
			for j := 0; j < len(blocks); j++ {
				if j == i {
					continue
				}
				cand := blocks[j].lastCmd()
				if cand.Line < lineno {
					continue
				}
				if cand.Stmt.Kind != ast.KReturn {
					continue
				}

				if len(blocks[j].OutBlocks) != 0 {
					// this subroutine has already been inlined once: clone
					// its block span [outBlock, j] and splice the copy in
					// rather than reusing the original (spec.md §4.1).
					copy := make([]*Block, 0, j-outBlock+1)
					for k := outBlock; k <= j; k++ {
						copy = append(copy, cloneBlock(blocks[k]))
					}
					numCopied := len(copy)
					currLen := len(blocks)
					copy[0].InBlocks = nil
					copy[numCopied-1].OutBlocks = nil
					blocks = append(blocks, copy...)
					subStart = currLen
					subReturn = len(blocks) - 1
					found = true
					break
				}

				subStart = outBlock
				subReturn = j
				found = true
				break
			}

			if !found {
				return compileerr.Structuralf(last.Line, "no RETURN found for GOSUB %d", lineno)
			}

			if i+1 >= len(blocks) {
				return compileerr.Structuralf(last.Line, "program does not end with an END statement")
			}

			blocks[subReturn].OutBlocks = append(blocks[subReturn].OutBlocks, i+1)
			blocks[i+1].InBlocks = append(blocks[i+1].InBlocks, subReturn)
			blocks[subStart].InBlocks = append(blocks[subStart].InBlocks, i)
			blocks[i].OutBlocks = append(blocks[i].OutBlocks, subStart)
			blocks[i].SpecialOut = SpecialOut{Kind: SpecialReturn, Pos: i + 1}
			blocks[i+1].InBlocks = append(blocks[i+1].InBlocks, i)
			handled = true

		case ast.KGoto:
			lineno := last.Stmt.TargetLine
			outBlock, ok := lnoMap[lineno]
			if !ok {
				return compileerr.Structuralf(last.Line, "GOTO target line %d does not exist", lineno)
			}
			blocks[outBlock].InBlocks = append(blocks[outBlock].InBlocks, i)
			blocks[i].OutBlocks = append(blocks[i].OutBlocks, outBlock)
			handled = true

		case ast.KIf:
			lineno := last.Stmt.IfLine
			outBlock, ok := lnoMap[lineno]
			if !ok {
				return compileerr.Structuralf(last.Line, "IF target line %d does not exist", lineno)
			}
			// spec.md's Data Model: outgoing[0] is the fallthrough,
			// outgoing[1] is the branch-taken edge.
			if err := follows(i); err != nil {
				return err
			}
			blocks[outBlock].InBlocks = append(blocks[outBlock].InBlocks, i)
			blocks[i].OutBlocks = append(blocks[i].OutBlocks, outBlock)
			handled = true

		case ast.KEnd, ast.KReturn:
			handled = true
		}

		if !handled {
			if err := follows(i); err != nil {
				return err
			}
		}

		i++
	}

	return nil
}

func ensureNoDeadCode(blocks []*Block) error {
	for _, b := range blocks {
		if !b.Root && len(b.InBlocks) == 0 {
			return compileerr.Structuralf(b.lastCmd().Line, "unreachable code ending at line %d", b.lastCmd().Line)
		}
	}
	return nil
}
