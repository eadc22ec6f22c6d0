package quads

import (
	"math"
	"strings"
)

// numStrategy is one way to synthesize a non-negative literal directly as
// raw Brainfuck text on the current cell; it reports both the code and how
// many cells (including the current one) the code leaves touched, so the
// caller can reserve the right amount of scratch.
type numStrategy interface {
	forNum(num uint32) (string, uint32)
}

type simpleConstant struct{}

// forNum emits num literal '+' characters: always correct, always O(num).
func (simpleConstant) forNum(num uint32) (string, uint32) {
	return strings.Repeat("+", int(num)), 1
}

type product struct{}

// forNum finds the smallest factor of num at or above floor(sqrt(num)) and
// emits a multiply-by-repetition loop: `> other_factor×+ [< sqrt×+ >-] <`,
// where other_factor * sqrt == num. For prime num this degrades to
// sqrt == num and one loop iteration -- barely better than unary, which is
// why OptimizedConstant always compares against the other two strategies.
func (product) forNum(num uint32) (string, uint32) {
	sqrt := uint32(math.Floor(math.Sqrt(float64(num))))
	if sqrt == 0 {
		sqrt = 1
	}
	for num%sqrt != 0 && sqrt <= num {
		sqrt++
	}
	otherFactor := num / sqrt

	var sb strings.Builder
	sb.WriteByte('>')
	sb.WriteString(strings.Repeat("+", int(otherFactor)))
	sb.WriteString("[<")
	sb.WriteString(strings.Repeat("+", int(sqrt)))
	sb.WriteString(">-]<")
	return sb.String(), 2
}

type nearestPerfectSquare struct{}

// forNum emits a Product for the largest perfect square <= num, then a
// SimpleConstant for the remainder.
func (nearestPerfectSquare) forNum(num uint32) (string, uint32) {
	sqrt := uint32(math.Floor(math.Sqrt(float64(num))))
	ps := sqrt * sqrt
	diff := num - ps

	p := product{}
	sc := simpleConstant{}

	code, _ := p.forNum(ps)
	constCode, _ := sc.forNum(diff)

	return code + constCode, 2
}

// OptimizedConstant picks whichever of the three constant-synthesis
// strategies produces the shortest code for num, returning that code and
// how many cells (starting at the destination cell) it requires.
func OptimizedConstant(num uint32) (string, uint32) {
	if num == 0 {
		return "", 1
	}

	strategies := []numStrategy{simpleConstant{}, product{}, nearestPerfectSquare{}}

	bestCode, bestSize := "", uint32(0)
	for i, s := range strategies {
		code, size := s.forNum(num)
		if i == 0 || len(code) < len(bestCode) {
			bestCode, bestSize = code, size
		}
	}
	return bestCode, bestSize
}
