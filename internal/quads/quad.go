// Package quads implements the Quad IR (spec.md §4.5) and its expansion
// into the seven-instruction Tape Language alphabet (spec.md §4.6): increment,
// decrement, move left, move right, loop-open, loop-close, print, plus the
// comment/raw-text carriers the expansion pipeline itself needs.
package quads

// Kind tags one of the roughly thirty Quad variants spec.md §4.5 lists.
// Args carries the variant's cell-index operands in the order the original
// dispatch expects; Str carries literal text for RawBF/RawBFStr/Comment;
// Val carries the literal for Constant/SubConstant.
type Kind int

const (
	KTo Kind = iota
	KLeft
	KRight
	KZero
	KMove
	KFor
	KNext
	KMove2
	KAddTo
	KSubFrom
	KConstant
	KSubConstant
	KTimes
	KDiv
	KIf
	KEndIf
	KIfElse
	KElse
	KEndElse
	KOr
	KNot
	KSubtractMinimum
	KNotEqual
	KEqual
	KGreater
	KLess
	KGreaterOrEqual
	KLessOrEqual
	KSetArray
	KGetArray
	KRawBF
	KRawBFStr
	KComment
)

type Quad struct {
	Kind Kind
	Args []uint32
	Str  string
	Val  uint32
}

func To(dest uint32) Quad         { return Quad{Kind: KTo, Args: []uint32{dest}} }
func Left(n uint32) Quad          { return Quad{Kind: KLeft, Val: n} }
func Right(n uint32) Quad         { return Quad{Kind: KRight, Val: n} }
func Zero(loc uint32) Quad        { return Quad{Kind: KZero, Args: []uint32{loc}} }
func Move(from, dest uint32) Quad { return Quad{Kind: KMove, Args: []uint32{from, dest}} }
func For(v uint32) Quad           { return Quad{Kind: KFor, Args: []uint32{v}} }
func Next(v uint32) Quad          { return Quad{Kind: KNext, Args: []uint32{v}} }
func Move2(from, to1, to2 uint32) Quad {
	return Quad{Kind: KMove2, Args: []uint32{from, to1, to2}}
}
func AddTo(from, dest, tmp uint32) Quad {
	return Quad{Kind: KAddTo, Args: []uint32{from, dest, tmp}}
}
func SubFrom(a1, a2 uint32) Quad { return Quad{Kind: KSubFrom, Args: []uint32{a1, a2}} }
func Constant(v uint32) Quad     { return Quad{Kind: KConstant, Val: v} }
func SubConstant(v uint32) Quad  { return Quad{Kind: KSubConstant, Val: v} }
func Times(v1, v2, dest, tmp uint32) Quad {
	return Quad{Kind: KTimes, Args: []uint32{v1, v2, dest, tmp}}
}
func Div(quo, t1, div, rem, res, t3, t4 uint32) Quad {
	return Quad{Kind: KDiv, Args: []uint32{quo, t1, div, rem, res, t3, t4}}
}
func If(v uint32) Quad         { return Quad{Kind: KIf, Args: []uint32{v}} }
func EndIf(v uint32) Quad      { return Quad{Kind: KEndIf, Args: []uint32{v}} }
func IfElse(v, t uint32) Quad  { return Quad{Kind: KIfElse, Args: []uint32{v, t}} }
func Else(v, t uint32) Quad    { return Quad{Kind: KElse, Args: []uint32{v, t}} }
func EndElse(t uint32) Quad    { return Quad{Kind: KEndElse, Args: []uint32{t}} }
func Or(s1, s2, d uint32) Quad { return Quad{Kind: KOr, Args: []uint32{s1, s2, d}} }
func Not(s, d uint32) Quad     { return Quad{Kind: KNot, Args: []uint32{s, d}} }
func SubtractMinimum(x1, x2, t1, t2, t3 uint32) Quad {
	return Quad{Kind: KSubtractMinimum, Args: []uint32{x1, x2, t1, t2, t3}}
}
func NotEqual(x1, x2, d, t1, t2 uint32) Quad {
	return Quad{Kind: KNotEqual, Args: []uint32{x1, x2, d, t1, t2}}
}
func Equal(x1, x2, d, t1, t2 uint32) Quad {
	return Quad{Kind: KEqual, Args: []uint32{x1, x2, d, t1, t2}}
}
func Greater(x1, x2, d, t1, t2 uint32) Quad {
	return Quad{Kind: KGreater, Args: []uint32{x1, x2, d, t1, t2}}
}
func Less(x1, x2, d, t1, t2 uint32) Quad {
	return Quad{Kind: KLess, Args: []uint32{x1, x2, d, t1, t2}}
}
func GreaterOrEqual(x1, x2, d, t1, t2 uint32) Quad {
	return Quad{Kind: KGreaterOrEqual, Args: []uint32{x1, x2, d, t1, t2}}
}
func LessOrEqual(x1, x2, d, t1, t2 uint32) Quad {
	return Quad{Kind: KLessOrEqual, Args: []uint32{x1, x2, d, t1, t2}}
}
func SetArray(b, i, v uint32) Quad { return Quad{Kind: KSetArray, Args: []uint32{b, i, v}} }
func GetArray(b, i, v uint32) Quad { return Quad{Kind: KGetArray, Args: []uint32{b, i, v}} }
func RawBF(s string) Quad          { return Quad{Kind: KRawBF, Str: s} }
func RawBFStr(s string) Quad       { return Quad{Kind: KRawBFStr, Str: s} }
func Comment(s string) Quad        { return Quad{Kind: KComment, Str: s} }
