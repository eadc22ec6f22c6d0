// Package dotgraph renders a loop-recovered control-flow graph as
// graphviz `.dot` source. It is an external collaborator, not part of
// CORE -- spec.md lists the graphviz pretty-printer as out of scope.
// original_source/src/main.rs's `-g` flag bypasses compilation entirely
// and calls this stage right after blockify + loop recovery, before IR
// generation, so the rendered graph always shows *structured* loop nodes
// rather than the raw goto-induced CFG.
package dotgraph

import (
	"fmt"
	"strings"
	"text/template"

	"github.com/RyanMarcus/basicaf/internal/blockgen"
)

const dotTemplate = `digraph G {
{{- range .Nodes}}
{{.ID}} [label="{{.Label}}"];
{{- end}}
{{range .Edges}}
{{.From}} -> {{.To}}{{if .Dotted}} [style=dotted]{{end}};
{{- end}}
}
`

type node struct {
	ID    int
	Label string
}

type edge struct {
	From, To int
	Dotted   bool
}

type graph struct {
	Nodes []node
	Edges []edge
}

var tmpl = template.Must(template.New("dotgraph").Parse(dotTemplate))

// Render writes blocks as a digraph: one node per block (labeled with its
// line range and last command kind for a straight-line block, or "Loop"
// for a synthesized loop node), and solid edges for OutBlocks plus dotted
// edges for a block's SpecialOut (the NEXT/GOSUB return target that isn't
// part of the primary control flow).
func Render(blocks []*blockgen.Block) (string, error) {
	g := graph{}

	for idx, b := range blocks {
		g.Nodes = append(g.Nodes, node{ID: idx, Label: label(idx, b)})
	}

	for idx, b := range blocks {
		if b.IsLoop {
			for _, out := range b.OutBlocks {
				g.Edges = append(g.Edges, edge{From: idx, To: out})
			}
			continue
		}

		if b.SpecialOut.Kind != blockgen.SpecialNone {
			g.Edges = append(g.Edges, edge{From: idx, To: b.SpecialOut.Pos, Dotted: true})
		}
		for _, out := range b.OutBlocks {
			g.Edges = append(g.Edges, edge{From: idx, To: out})
		}
	}

	var sb strings.Builder
	if err := tmpl.Execute(&sb, g); err != nil {
		return "", err
	}
	return sb.String(), nil
}

func label(idx int, b *blockgen.Block) string {
	if b.IsLoop {
		return "Loop"
	}
	if len(b.Cmds) == 0 {
		return fmt.Sprintf("%d: (empty)", idx)
	}
	first := b.Cmds[0]
	last := b.Cmds[len(b.Cmds)-1]
	return fmt.Sprintf("%d: %d - %d (%s)", idx, first.Line, last.Line, last.Stmt.Kind.String())
}
