// Package irgen implements the IR generator (spec.md §4.3-4.4): a
// structured walk of the loop-recovered CFG that lowers each ast.Command
// into Quad IR, maintaining the symbol table, array table, DEF-function
// table and a loop-stack used to dispatch RETURN/GOTO/IF edges that leave
// a recovered loop.
package irgen

import (
	"fmt"

	"github.com/RyanMarcus/basicaf/internal/alloc"
	"github.com/RyanMarcus/basicaf/internal/ast"
	"github.com/RyanMarcus/basicaf/internal/blockgen"
	"github.com/RyanMarcus/basicaf/internal/compileerr"
	"github.com/RyanMarcus/basicaf/internal/quads"
)

// defEntry is a DEF FNx(v) = expr binding. CORE preserves it in the table
// (so a later FN-name collision is at least recorded) but never expands a
// call site against it -- see DESIGN.md's Open Question decision.
type defEntry struct {
	Var  string
	Expr ast.Expr
}

// arrayEntry is one DIM'd array: its dimension sizes in declaration order
// and the base cell of its reserved run.
type arrayEntry struct {
	Dims []int
	Pos  uint32
}

// loopFrame is the active (header block, loop_var cell, cond_var cell)
// triple for the innermost recovered loop currently being lowered.
type loopFrame struct {
	blockIdx int
	loopVar  uint32
	condVar  uint32
}

// Generator walks the blockified, loop-recovered program and accumulates
// Quad IR. One Generator lowers exactly one program.
type Generator struct {
	ir        []quads.Quad
	alloc     *alloc.Allocator
	defMap    map[string]defEntry
	arrayT    map[string]arrayEntry
	symbolT   map[string]uint32
	blocks    []*blockgen.Block
	loopStack []loopFrame
	constOpt  bool
	usedArray bool

	// currentLine is the line of the command currently being lowered,
	// used to cite a source line in errors raised from expression
	// lowering (which has no direct line parameter, mirroring
	// original_source/src/ir/block_to_ir.rs's expression helpers).
	currentLine int
}

// New constructs a Generator over a loop-recovered block list.
// constOpt selects optimized constant synthesis (spec.md §4.5) over the
// naive unary-increment encoding.
func New(blocks []*blockgen.Block, constOpt bool) *Generator {
	return &Generator{
		alloc:    alloc.New(),
		defMap:   make(map[string]defEntry),
		arrayT:   make(map[string]arrayEntry),
		symbolT:  make(map[string]uint32),
		blocks:   blocks,
		constOpt: constOpt,
	}
}

// Generate lowers the whole program starting at block 0 and returns the
// flat Quad IR stream, freeing every symbol/array cell at the end.
func Generate(blocks []*blockgen.Block, constOpt bool) ([]quads.Quad, error) {
	g := New(blocks, constOpt)
	if err := g.blockToIR(0); err != nil {
		return nil, err
	}
	if err := g.done(); err != nil {
		return nil, err
	}
	return g.ir, nil
}

func (g *Generator) done() error {
	for _, v := range g.symbolT {
		g.alloc.Free(v)
	}
	for _, e := range g.arrayT {
		accum := uint32(1)
		for _, d := range e.Dims {
			accum *= uint32(d)
		}
		g.alloc.FreeArray(e.Pos, accum)
	}
	g.alloc.AssertEmpty()
	return nil
}

func (g *Generator) comment(txt string) {
	g.ir = append(g.ir, quads.Comment("\n"+txt+"\n"))
}

func (g *Generator) reserveZeroed() uint32 {
	v := g.alloc.Reserve()
	g.ir = append(g.ir, quads.Zero(v))
	return v
}

func (g *Generator) markLoopDone(loopVar, condVar uint32, idx int) {
	g.comment(fmt.Sprintf("marking loop %d as complete with exit %d", loopVar, idx+1))
	g.ir = append(g.ir,
		quads.To(loopVar),
		quads.Zero(loopVar),
		quads.To(condVar),
		quads.Constant(uint32(idx+1)),
	)
	g.comment("done marking loop complete")
}

// blockToIR lowers one block and everything reachable through its
// fallthrough edge (branching statements recurse into their targets
// directly and set should-be-end, so the walk never double-visits a
// block reached only through a branch).
func (g *Generator) blockToIR(block int) error {
	b := g.blocks[block]

	if b.IsLoop {
		return g.blockToIRLoop(block)
	}

	shouldBeEnd, err := g.emitNonLoop(block)
	if err != nil {
		return err
	}

	if !shouldBeEnd {
		switch len(b.OutBlocks) {
		case 0:
			// fell off the end with nothing further to lower.
		case 1:
			return g.blockToIR(b.OutBlocks[0])
		default:
			return compileerr.Invariantf(
				"block %d has multiple outputs but does not end with a branching instruction", block)
		}
	}

	return nil
}

func (g *Generator) blockToIRLoop(block int) error {
	loopVar := g.reserveZeroed()
	condVar := g.reserveZeroed()
	g.comment(fmt.Sprintf("Starting loop: cond_var is %d and loop_var is %d", condVar, loopVar))

	g.loopStack = append(g.loopStack, loopFrame{blockIdx: block, loopVar: loopVar, condVar: condVar})

	g.ir = append(g.ir, quads.To(loopVar), quads.Constant(1), quads.RawBF("["))
	g.comment("start of loop body")
	if err := g.blockToIR(g.blocks[block].OutBlocks[0]); err != nil {
		return err
	}
	g.comment("end of loop body")
	g.ir = append(g.ir, quads.To(loopVar), quads.RawBF("]"))

	g.loopStack = g.loopStack[:len(g.loopStack)-1]
	g.comment("Finished loop code: now checking exit conditions")

	loopExits := g.blocks[block].LoopExits
	for idx, outBlk := range loopExits {
		g.comment(fmt.Sprintf("Checking loop condition %d", idx+1))
		cond := g.reserveZeroed()
		t1 := g.reserveZeroed()
		t2 := g.reserveZeroed()
		v := g.reserveZeroed()

		g.ir = append(g.ir,
			quads.To(v),
			quads.Constant(uint32(idx+1)),
			quads.Equal(condVar, v, cond, t1, t2),
		)

		g.comment("if loop condition is true: taking this exit")
		g.ir = append(g.ir, quads.If(cond))
		if err := g.blockToIR(outBlk); err != nil {
			return err
		}
		g.ir = append(g.ir, quads.EndIf(cond))
		g.comment(fmt.Sprintf("end if for loop condition %d", idx+1))

		g.alloc.Free(cond)
		g.alloc.Free(t1)
		g.alloc.Free(t2)
		g.alloc.Free(v)
	}
	g.alloc.Free(loopVar)
	g.alloc.Free(condVar)

	g.comment(fmt.Sprintf("Loop complete with loop_var=%d", loopVar))
	return nil
}
