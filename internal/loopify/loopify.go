// Package loopify recovers structured loops from an arbitrary GOTO/IF CFG
// (spec.md §4.2): it computes naive dominators, finds back edges, verifies
// the flow graph is reducible, and replaces every natural loop with a
// synthetic loop Block the IR generator can walk directly.
package loopify

import (
	"sort"

	"github.com/RyanMarcus/basicaf/internal/blockgen"
	"github.com/RyanMarcus/basicaf/internal/compileerr"
)

type edge struct {
	src, dst int
}

// FindDominatedNodes returns every block dominated by blocks[idx]: the set
// unreachable from the root when idx is removed from the graph (spec.md
// §4.2's definition, computed per-candidate rather than with a proper
// dominator-tree algorithm -- the dialect's CFGs are small enough that the
// O(V^2) version is the idiomatic choice here, matching the original).
func FindDominatedNodes(blocks []*blockgen.Block, idx int) map[int]struct{} {
	unreachable := make(map[int]struct{}, len(blocks))
	for i := range blocks {
		unreachable[i] = struct{}{}
	}
	if idx == 0 {
		return unreachable
	}

	stack := []int{0}
	for len(stack) > 0 {
		v := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if _, stillUnreached := unreachable[v]; stillUnreached && v != idx {
			delete(unreachable, v)
			stack = append(stack, blocks[v].OutBlocks...)
		}
	}
	return unreachable
}

// BuildDominatedSets computes FindDominatedNodes for every block.
func BuildDominatedSets(blocks []*blockgen.Block) map[int]map[int]struct{} {
	out := make(map[int]map[int]struct{}, len(blocks))
	for i := range blocks {
		out[i] = FindDominatedNodes(blocks, i)
	}
	return out
}

// ReversePostorder numbers each reachable block in the order an iterative
// DFS from the root first visits it (a preorder numbering), used to detect
// retreating edges cheaply. A block that dominates another is always
// visited first, so every back edge's source numbers >= its header.
func ReversePostorder(blocks []*blockgen.Block) map[int]int {
	out := make(map[int]int, len(blocks))
	unvisited := make(map[int]struct{}, len(blocks))
	for i := range blocks {
		unvisited[i] = struct{}{}
	}

	stack := []int{0}
	for len(stack) > 0 {
		v := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if _, ok := unvisited[v]; ok {
			delete(unvisited, v)
			out[v] = len(out)
			stack = append(stack, blocks[v].OutBlocks...)
		}
	}
	return out
}

// BackEdges finds every edge (src, dst) that is both retreating (src's RPO
// number is >= dst's) and a genuine back edge (dst dominates src).
func BackEdges(blocks []*blockgen.Block, rpo map[int]int, dom map[int]map[int]struct{}) map[edge]struct{} {
	out := make(map[edge]struct{})
	for src, b := range blocks {
		for _, dst := range b.OutBlocks {
			if rpo[src] >= rpo[dst] {
				if _, dominates := dom[dst][src]; dominates {
					out[edge{src, dst}] = struct{}{}
				}
			}
		}
	}
	return out
}

type dfsColor int

const (
	white dfsColor = iota
	gray
	black
)

// ensureReducible walks the flow graph with every back edge removed and
// fails if a cycle remains -- spec.md §4.2's reducibility requirement.
func ensureReducible(blocks []*blockgen.Block, backEdges map[edge]struct{}, colors []dfsColor, idx int) error {
	colors[idx] = gray
	for _, child := range blocks[idx].OutBlocks {
		if _, isBack := backEdges[edge{idx, child}]; isBack {
			continue
		}
		switch colors[child] {
		case black:
			// already fully explored
		case white:
			if err := ensureReducible(blocks, backEdges, colors, child); err != nil {
				return err
			}
		case gray:
			return compileerr.StructuralEdge(
				lastLine(blocks[idx]), lastLine(blocks[child]),
				"non-reducible flow")
		}
	}
	colors[idx] = black
	return nil
}

func lastLine(b *blockgen.Block) int {
	return b.Cmds[len(b.Cmds)-1].Line
}

// reachable reports whether dest can be reached from src without passing
// through withoutPassing, short-circuiting as soon as a node already known
// to be part of the loop is encountered.
func reachable(blocks []*blockgen.Block, knownLoopNodes map[int]struct{}, dest, src, withoutPassing int) bool {
	visited := make(map[int]struct{})
	stack := []int{src}
	for len(stack) > 0 {
		v := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		visited[v] = struct{}{}

		if _, ok := knownLoopNodes[v]; ok {
			return true
		}
		if v == dest {
			return true
		}

		for _, child := range blocks[v].OutBlocks {
			if _, seen := visited[child]; seen {
				continue
			}
			if child == withoutPassing {
				continue
			}
			stack = append(stack, child)
		}
	}
	return false
}

// nodesForBackEdge computes the natural-loop membership for a back edge
// (endpoint -> header) by a fixed-point membership test: a node belongs if
// it can reach the endpoint without passing back through the header.
func nodesForBackEdge(blocks []*blockgen.Block, e edge) map[int]struct{} {
	loopNodes := map[int]struct{}{e.src: {}, e.dst: {}}
	endpoint, header := e.src, e.dst

	for i := range blocks {
		if _, in := loopNodes[i]; in {
			continue
		}
		if reachable(blocks, loopNodes, endpoint, i, header) {
			loopNodes[i] = struct{}{}
		}
	}
	return loopNodes
}

// collectLoopExits lists, in ascending block-index order for determinism,
// every out-edge leaving the loop-node set.
func collectLoopExits(blocks []*blockgen.Block, loopNodes map[int]struct{}) []int {
	nodes := make([]int, 0, len(loopNodes))
	for n := range loopNodes {
		nodes = append(nodes, n)
	}
	sort.Ints(nodes)

	var out []int
	seen := make(map[int]struct{})
	for _, n := range nodes {
		for _, outNode := range blocks[n].OutBlocks {
			if _, inLoop := loopNodes[outNode]; inLoop {
				continue
			}
			if _, already := seen[outNode]; already {
				continue
			}
			seen[outNode] = struct{}{}
			out = append(out, outNode)
		}
	}
	return out
}

// EliminateGotos is the loop-recovery entry point: it verifies the graph
// is reducible, then replaces every natural loop with a synthetic loop
// Block whose single out-edge is the loop header, redirecting every
// original incoming edge on the header to point at the new node instead
// (spec.md §4.2).
func EliminateGotos(blocks []*blockgen.Block) ([]*blockgen.Block, error) {
	dom := BuildDominatedSets(blocks)
	rpo := ReversePostorder(blocks)
	backEdges := BackEdges(blocks, rpo, dom)

	colors := make([]dfsColor, len(blocks))
	if err := ensureReducible(blocks, backEdges, colors, 0); err != nil {
		return nil, err
	}

	// Deterministic order: back edges are processed by ascending
	// (src, dst), matching the ascending block-index ordering used
	// elsewhere for reproducible output.
	sortedEdges := make([]edge, 0, len(backEdges))
	for e := range backEdges {
		sortedEdges = append(sortedEdges, e)
	}
	sort.Slice(sortedEdges, func(i, j int) bool {
		if sortedEdges[i].src != sortedEdges[j].src {
			return sortedEdges[i].src < sortedEdges[j].src
		}
		return sortedEdges[i].dst < sortedEdges[j].dst
	})

	for _, e := range sortedEdges {
		loopNodes := nodesForBackEdge(blocks, e)
		exitNodes := collectLoopExits(blocks, loopNodes)
		header := e.dst

		loopBlock := blockgen.NewLoopBlock(exitNodes, loopNodes)
		lpIdx := len(blocks)
		loopBlock.OutBlocks = append(loopBlock.OutBlocks, header)

		inBlocks := append([]int(nil), blocks[header].InBlocks...)
		for _, incoming := range inBlocks {
			pos := -1
			for i, r := range blocks[incoming].OutBlocks {
				if r == header {
					pos = i
					break
				}
			}
			if pos == -1 {
				return nil, compileerr.Invariantf("incoming and outgoing edges not set correctly for block %d", incoming)
			}
			blocks[incoming].OutBlocks = append(blocks[incoming].OutBlocks[:pos], blocks[incoming].OutBlocks[pos+1:]...)
			blocks[incoming].OutBlocks = append(blocks[incoming].OutBlocks, lpIdx)
		}

		blocks[header].InBlocks = []int{lpIdx}
		blocks = append(blocks, loopBlock)
	}

	return blocks, nil
}
