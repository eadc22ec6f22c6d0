// Package compile wires the CORE stages into the single entry point both
// the CLI and the end-to-end test suite call (spec.md §2, §8): parse →
// blockify → loop recovery → IR generation → quad expansion → head
// linearization → serialization, in that order, matching
// original_source/src/compile/mod.rs's compile/to_graphviz split.
package compile

import (
	"github.com/RyanMarcus/basicaf/internal/blockgen"
	"github.com/RyanMarcus/basicaf/internal/dotgraph"
	"github.com/RyanMarcus/basicaf/internal/emit"
	"github.com/RyanMarcus/basicaf/internal/irgen"
	"github.com/RyanMarcus/basicaf/internal/loopify"
	"github.com/RyanMarcus/basicaf/internal/parser"
)

// Options controls the optional output stages, mirroring the original
// CLI's flag set: SemanticComments keeps the IR generator's `Comment`
// quads in the final Tape Language source, IRComments prefixes each
// generated quad's expansion with a raw text label naming the quad, and
// ConstantSynthesis selects optimized constant synthesis (the original's
// `!disable-opt`).
type Options struct {
	SemanticComments  bool
	IRComments        bool
	ConstantSynthesis bool
}

// DefaultOptions matches the original CLI's defaults: no comments,
// optimizer enabled.
func DefaultOptions() Options {
	return Options{ConstantSynthesis: true}
}

// Compile runs the full pipeline over src and returns Tape Language
// source text.
func Compile(src string, opts Options) (string, error) {
	blocks, err := recoveredBlocks(src)
	if err != nil {
		return "", err
	}

	quads, err := irgen.Generate(blocks, opts.ConstantSynthesis)
	if err != nil {
		return "", err
	}

	resolved, err := emit.Resolve(quads, opts.IRComments, opts.SemanticComments)
	if err != nil {
		return "", err
	}

	return emit.Serialize(resolved)
}

// Graphviz runs blockify + loop recovery only and renders the resulting
// CFG as graphviz `.dot` source, bypassing IR generation entirely --
// original_source/src/main.rs's `-g` flag does the same, so a graphviz
// dump always reflects structured loops rather than the raw goto CFG.
func Graphviz(src string) (string, error) {
	blocks, err := recoveredBlocks(src)
	if err != nil {
		return "", err
	}
	return dotgraph.Render(blocks)
}

func recoveredBlocks(src string) ([]*blockgen.Block, error) {
	prog, err := parser.Parse(src)
	if err != nil {
		return nil, err
	}

	blocks, err := blockgen.ToBlocks(prog)
	if err != nil {
		return nil, err
	}

	return loopify.EliminateGotos(blocks)
}
