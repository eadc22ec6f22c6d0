// Package emit implements the last two CORE stages (spec.md §4.7-§4.8):
// the head linearizer, which threads a current tape-head position through
// a resolved quad stream and rewrites every absolute `To` into relative
// `Left`/`Right` navigation, and the serializer, which concatenates the
// result into Tape Language source text.
package emit

import (
	"strings"

	"github.com/RyanMarcus/basicaf/internal/compileerr"
	"github.com/RyanMarcus/basicaf/internal/quads"
)

// Linearize threads a current-head position through a flat quad stream,
// rewriting every To into a Left/Right navigation relative to the
// previous head position. The input must already be fully expanded down
// to {RawBF, To, RawBFStr, Comment} -- anything else is an invariant
// violation in the caller.
func Linearize(qs []quads.Quad) ([]quads.Quad, error) {
	var out []quads.Quad
	curr := uint32(0)

	for _, q := range qs {
		switch q.Kind {
		case quads.KTo:
			dest := q.Args[0]
			if curr > dest {
				out = append(out, quads.Left(curr-dest))
			} else if dest > curr {
				out = append(out, quads.Right(dest-curr))
			}
			curr = dest

		case quads.KRawBF, quads.KRawBFStr, quads.KComment:
			out = append(out, q)

		default:
			return nil, compileerr.Invariantf("Linearize called with an unexpanded quad (kind %d)", q.Kind)
		}
	}

	return out, nil
}

// Resolve is the full quad-expansion pipeline: expand every quad down to
// {RawBF, To, RawBFStr, Comment}, linearize the head movement, then expand
// the resulting Left/Right quads into raw instructions.
func Resolve(qs []quads.Quad, quadComments, semComments bool) ([]quads.Quad, error) {
	var flat []quads.Quad
	for _, q := range qs {
		flat = append(flat, quads.Expand(q, quadComments, semComments)...)
	}

	linearized, err := Linearize(flat)
	if err != nil {
		return nil, err
	}

	var out []quads.Quad
	for _, q := range linearized {
		out = append(out, quads.Expand(q, false, semComments)...)
	}
	return out, nil
}

// Serialize concatenates a fully-resolved quad stream (only RawBF,
// RawBFStr, and Comment quads may remain) into the final Tape Language
// source text. A Comment containing any of the six characters + - [ ] < >
// is rejected -- the serializer has no escaping mechanism to
// tell a comment apart from code.
func Serialize(qs []quads.Quad) (string, error) {
	var sb strings.Builder

	for _, q := range qs {
		switch q.Kind {
		case quads.KRawBF, quads.KRawBFStr:
			sb.WriteString(q.Str)

		case quads.KComment:
			if strings.ContainsAny(q.Str, "+-[]<>") {
				return "", compileerr.Invariantf("comment contained a Tape Language instruction character: %q", q.Str)
			}
			sb.WriteString(q.Str)

		default:
			return "", compileerr.Invariantf("non-terminal quad (kind %d) reached the serializer", q.Kind)
		}
	}

	return sb.String(), nil
}
