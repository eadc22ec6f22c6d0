package quads

import "github.com/RyanMarcus/basicaf/internal/compileerr"

// divLiteral is the opaque 7-cell division routine: quo, t1, div, rem,
// res, t3, t4 must be seven consecutive cells in that order.
const divLiteral = "[->+>-[>+>>]>[+[-<+>]>+>>]<<<<<<]"

// setArrayLiteral and getArrayLiteral are the opaque array-indexing
// routines; b is the array base, the four scratch cells b+1..b+4 are
// threaded through them exactly as original_source/src/codegen/quads.rs
// leaves them.
const setArrayLiteral = ">[>>>[-<<<<+>>>>]<[->+<]<[->+<]<[->+<]>-]>>>[-]<[->+<]<[[-<+>]<<<[->>>>+<<<<]>>-]<<"
const getArrayLiteral = ">[>>>[-<<<<+>>>>]<<[->+<]<[->+<]>-]>>>[-<+<<+>>>]<<<[->>>+<<<]>[[-<+>]>[-<+>]<<<<[->>>>+<<<<]>>-]<<"

// emitStep expands exactly one quad one level: most variants rewrite to a
// short sequence of simpler quads; RawBF/To/RawBFStr/Comment are terminal.
func emitStep(q Quad, comment bool) []Quad {
	var out []Quad

	wrap := func(label string, body []Quad) []Quad {
		if !comment {
			return body
		}
		withWrap := make([]Quad, 0, len(body)+2)
		withWrap = append(withWrap, RawBF(label))
		withWrap = append(withWrap, body...)
		withWrap = append(withWrap, RawBF("\n"))
		return withWrap
	}

	switch q.Kind {
	case KLeft:
		for i := uint32(0); i < q.Val; i++ {
			out = append(out, RawBF("<"))
		}
		return wrap("left: ", out)

	case KRight:
		for i := uint32(0); i < q.Val; i++ {
			out = append(out, RawBF(">"))
		}
		return wrap("right: ", out)

	case KZero:
		out = []Quad{To(q.Args[0]), RawBF("[-]")}
		return wrap("zero: ", out)

	case KMove:
		from, dest := q.Args[0], q.Args[1]
		out = []Quad{To(from), RawBF("["), To(dest), RawBF("+"), To(from), RawBF("-]")}
		return wrap("move: ", out)

	case KFor:
		out = []Quad{To(q.Args[0]), RawBF("[")}
		return wrap("for: ", out)

	case KNext:
		out = []Quad{To(q.Args[0]), RawBF("-]")}
		return wrap("next: ", out)

	case KMove2:
		from, to1, to2 := q.Args[0], q.Args[1], q.Args[2]
		out = []Quad{For(from), To(to1), RawBF("+"), To(to2), RawBF("+"), Next(from)}
		return wrap("move2: ", out)

	case KAddTo:
		from, dest, tmp := q.Args[0], q.Args[1], q.Args[2]
		out = []Quad{Move2(from, dest, tmp), Move(tmp, from)}
		return wrap("addto: ", out)

	case KSubFrom:
		a1, a2 := q.Args[0], q.Args[1]
		out = []Quad{For(a2), To(a1), RawBF("-"), Next(a2)}
		return wrap("subfrom: ", out)

	case KConstant:
		for i := uint32(0); i < q.Val; i++ {
			out = append(out, RawBF("+"))
		}
		return wrap("const: ", out)

	case KSubConstant:
		for i := uint32(0); i < q.Val; i++ {
			out = append(out, RawBF("-"))
		}
		return wrap("subconst: ", out)

	case KTimes:
		v1, v2, dest, tmp := q.Args[0], q.Args[1], q.Args[2], q.Args[3]
		out = []Quad{For(v1), AddTo(v2, dest, tmp), Next(v1), Zero(v2)}
		return wrap("times: ", out)

	case KIf:
		out = []Quad{To(q.Args[0]), RawBF("[")}
		return wrap("if: ", out)

	case KEndIf:
		out = []Quad{Zero(q.Args[0]), RawBF("]")}
		return wrap("endif: ", out)

	case KIfElse:
		v1, t := q.Args[0], q.Args[1]
		out = []Quad{To(t), RawBF("+"), If(v1), To(t), RawBF("-")}
		return wrap("ifelse: ", out)

	case KElse:
		v1, t := q.Args[0], q.Args[1]
		out = []Quad{EndIf(v1), If(t)}
		return wrap("else: ", out)

	case KEndElse:
		out = []Quad{EndIf(q.Args[0])}
		return wrap("endelse: ", out)

	case KOr:
		s1, s2, d := q.Args[0], q.Args[1], q.Args[2]
		out = []Quad{Move(s1, d), Move(s2, d)}
		return wrap("or: ", out)

	case KNot:
		s, d := q.Args[0], q.Args[1]
		out = []Quad{To(d), RawBF("+"), If(s), To(d), RawBF("-"), EndIf(s)}
		return wrap("not: ", out)

	case KDiv:
		quo, t1, div, rem, res, t3, t4 := q.Args[0], q.Args[1], q.Args[2], q.Args[3], q.Args[4], q.Args[5], q.Args[6]
		if !(t1-quo == 1 && div-t1 == 1 && rem-div == 1 && res-rem == 1 && t3-res == 1 && t4-t3 == 1) {
			panic(compileerr.Invariantf("Div quad requires seven contiguous cells, got %d %d %d %d %d %d %d", quo, t1, div, rem, res, t3, t4))
		}
		out = []Quad{To(quo), RawBF(divLiteral)}
		return wrap("div: ", out)

	case KSubtractMinimum:
		x1, x2, t1, t2, t3 := q.Args[0], q.Args[1], q.Args[2], q.Args[3], q.Args[4]
		out = []Quad{
			For(x1),
			AddTo(x2, t1, t2),
			IfElse(t1, t2),
			To(x2), RawBF("-"),
			Else(t1, t2),
			To(t3), RawBF("+"),
			EndElse(t2),
			Next(x1),
			Move(t3, x1),
		}
		return wrap("submin: ", out)

	case KNotEqual:
		x1, x2, d, t1, t2 := q.Args[0], q.Args[1], q.Args[2], q.Args[3], q.Args[4]
		out = []Quad{SubtractMinimum(x1, x2, d, t1, t2), Or(x1, x2, d)}
		return wrap("neq: ", out)

	case KEqual:
		x1, x2, d, t1, t2 := q.Args[0], q.Args[1], q.Args[2], q.Args[3], q.Args[4]
		out = []Quad{NotEqual(x1, x2, t1, d, t2), Not(t1, d)}
		return wrap("eq: ", out)

	case KGreater:
		x1, x2, d, t1, t2 := q.Args[0], q.Args[1], q.Args[2], q.Args[3], q.Args[4]
		out = []Quad{SubtractMinimum(x1, x2, d, t1, t2), Zero(x2), Move(x1, d)}
		return wrap("gt: ", out)

	case KLess:
		x1, x2, d, t1, t2 := q.Args[0], q.Args[1], q.Args[2], q.Args[3], q.Args[4]
		out = []Quad{SubtractMinimum(x1, x2, d, t1, t2), Zero(x1), Move(x2, d)}
		return wrap("lt: ", out)

	case KGreaterOrEqual:
		x1, x2, d, t1, t2 := q.Args[0], q.Args[1], q.Args[2], q.Args[3], q.Args[4]
		out = []Quad{To(x1), RawBF("+"), Greater(x1, x2, d, t1, t2)}
		return wrap("geq: ", out)

	case KLessOrEqual:
		x1, x2, d, t1, t2 := q.Args[0], q.Args[1], q.Args[2], q.Args[3], q.Args[4]
		out = []Quad{To(x2), RawBF("+"), Less(x1, x2, d, t1, t2)}
		return wrap("leq: ", out)

	case KSetArray:
		b, i, v := q.Args[0], q.Args[1], q.Args[2]
		out = []Quad{
			Move2(i, b+1, b+2),
			Move(v, b+3),
			Zero(b),
			To(b),
			RawBF(setArrayLiteral),
		}
		return wrap("setarr: ", out)

	case KGetArray:
		b, i, v := q.Args[0], q.Args[1], q.Args[2]
		out = []Quad{
			Move2(i, b+1, b+2),
			Zero(b + 3),
			Zero(b),
			To(b),
			RawBF(getArrayLiteral),
			Move(b+3, v),
		}
		return wrap("getarr: ", out)

	case KTo:
		out = []Quad{q}
		return wrap("to: ", out)

	case KRawBF:
		out = []Quad{q}
		return wrap("raw: ", out)

	case KRawBFStr, KComment:
		return []Quad{q}
	}

	panic(compileerr.Invariantf("emitStep: unhandled quad kind %d", q.Kind))
}

// emit fixpoint-expands a single quad until only {RawBF, To, RawBFStr,
// Comment} remain.
func emit(q Quad, quadComments, semComments bool) []Quad {
	vec := emitStep(q, quadComments)

	for {
		var next []Quad
		didMod := false
		for _, x := range vec {
			switch x.Kind {
			case KRawBF, KTo, KRawBFStr:
				next = append(next, x)
			case KComment:
				if semComments {
					next = append(next, x)
				}
			default:
				didMod = true
				next = append(next, emitStep(x, false)...)
			}
		}
		vec = next
		if !didMod {
			break
		}
	}

	return vec
}

// Expand is emit exported for internal/emit: it fixpoint-expands a single
// quad until only {RawBF, To, RawBFStr, Comment} remain.
func Expand(q Quad, quadComments, semComments bool) []Quad {
	return emit(q, quadComments, semComments)
}
