// Package blockgen implements the Blockifier (spec.md §4.1): it partitions
// a parsed ast.Program into basic blocks and links their control-flow
// edges, including GOSUB-callee inlining by block-span cloning.
package blockgen

import "github.com/RyanMarcus/basicaf/internal/ast"

// SpecialOutKind distinguishes the two block terminators that need extra
// bookkeeping beyond a plain out-edge list.
type SpecialOutKind int

const (
	SpecialNone SpecialOutKind = iota
	// SpecialNext marks a NEXT block, recording the index of its matching FOR block.
	SpecialNext
	// SpecialReturn marks a GOSUB block, recording the index of the block
	// the call returns to.
	SpecialReturn
)

type SpecialOut struct {
	Kind SpecialOutKind
	Pos  int
}

// Block is one maximal straight-line run of commands (spec.md §4.1's basic
// block). Ordinary blocks carry OutBlocks in source order; IF and FOR
// blocks carry exactly two, ordered [fallthrough/loop-exit,
// branch-taken/loop-body] (spec.md's Data Model section) -- note this is
// the opposite of the order the original Rust blockifier used for IF, see
// DESIGN.md.
type Block struct {
	Root       bool
	InBlocks   []int
	OutBlocks  []int
	SpecialOut SpecialOut
	Cmds       []ast.Command
	IsLoop     bool
	LoopExits  []int
	LoopNodes  map[int]struct{}
}

func newBlock() *Block {
	return &Block{}
}

func newRootBlock() *Block {
	return &Block{Root: true}
}

// NewLoopBlock constructs a synthetic loop node (spec.md §4.2), the only
// kind of Block loopify ever creates from scratch.
func NewLoopBlock(exits []int, nodes map[int]struct{}) *Block {
	return &Block{IsLoop: true, LoopExits: exits, LoopNodes: nodes}
}

func (b *Block) lastCmd() ast.Command {
	if len(b.Cmds) == 0 {
		panic("blockgen: block has no commands")
	}
	return b.Cmds[len(b.Cmds)-1]
}

func (b *Block) firstCmd() ast.Command {
	if len(b.Cmds) == 0 {
		panic("blockgen: block has no commands")
	}
	return b.Cmds[0]
}
