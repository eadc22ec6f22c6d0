package compile

import (
	"testing"

	"github.com/RyanMarcus/basicaf/internal/tapevm"
	"github.com/stretchr/testify/require"
)

func run(t *testing.T, src string) string {
	t.Helper()
	out, err := Compile(src, DefaultOptions())
	require.NoError(t, err)

	env := tapevm.New()
	result, err := env.Execute(out)
	require.NoError(t, err)
	return result
}

func TestScenarioHelloWorld(t *testing.T) {
	src := "10 PRINT \"hello world\"\n20 END\n"
	require.Equal(t, "hello world", run(t, src))
}

func TestScenarioArithmeticExpression(t *testing.T) {
	src := "" +
		"10 LET X = ((6*8)/2)+1\n" +
		"20 PRINT X\n" +
		"30 END\n"
	require.Equal(t, "25", run(t, src))
}

func TestScenarioForLoopDoubling(t *testing.T) {
	src := "" +
		"10 LET Y=5\n" +
		"15 FOR X=0 TO 10\n" +
		"20 LET Y=Y*2\n" +
		"25 NEXT X\n" +
		"30 PRINT Y\n" +
		"35 END\n"
	require.Equal(t, "5120", run(t, src))
}

func TestScenarioGotoAndIfDispatch(t *testing.T) {
	src := "" +
		"5  GOTO 10\n" +
		"6  PRINT \"2\"\n" +
		"7  GOTO 40\n" +
		"10 LET X=500\n" +
		"20 IF X<1000 THEN 30\n" +
		"25 PRINT \"does not print\"\n" +
		"30 PRINT \"1\"\n" +
		"35 GOTO 6\n" +
		"40 END\n"
	require.Equal(t, "12", run(t, src))
}

func TestScenarioNestedForLoopsMultiplicationTable(t *testing.T) {
	src := "" +
		"10 FOR X=5 TO 8\n" +
		"15 FOR Y=3 TO 7\n" +
		"20 PRINT X,\" times \",Y,\" is \",X*Y,\"\\n\"\n" +
		"25 NEXT Y\n" +
		"27 PRINT \"\\n\"\n" +
		"30 NEXT X\n" +
		"40 END\n"

	var want string
	for x := 5; x < 8; x++ {
		for y := 3; y < 7; y++ {
			want += itoa(x) + " times " + itoa(y) + " is " + itoa(x*y) + "\n"
		}
		want += "\n"
	}
	require.Equal(t, want, run(t, src))
}

func itoa(n int) string {
	if n == 0 {
		return "0"
	}
	var digits []byte
	for n > 0 {
		digits = append([]byte{byte('0' + n%10)}, digits...)
		n /= 10
	}
	return string(digits)
}

func TestScenarioArrayRoundTrip(t *testing.T) {
	src := "" +
		"5   DIM X(5)\n" +
		"20  LET X(0)=7\n" +
		"30  LET X(1)=9\n" +
		"40  LET X(2)=11\n" +
		"50  LET X(3)=13\n" +
		"60  LET X(4)=15\n" +
		"80  FOR I=0 TO 5\n" +
		"90  PRINT X(I),\"\\n\"\n" +
		"100 NEXT I\n" +
		"110 END\n"
	require.Equal(t, "7\n9\n11\n13\n15\n", run(t, src))
}

func TestScenarioReadData(t *testing.T) {
	src := "" +
		"10 DATA 1,2,3\n" +
		"20 READ X,Y,Z\n" +
		"30 PRINT X,\" \",Y,\" \",Z\n" +
		"40 END\n"
	require.Equal(t, "1 2 3", run(t, src))
}

func TestCompileIsDeterministic(t *testing.T) {
	src := "10 LET X = 3\n20 PRINT X\n30 END\n"
	a, err := Compile(src, DefaultOptions())
	require.NoError(t, err)
	b, err := Compile(src, DefaultOptions())
	require.NoError(t, err)
	require.Equal(t, a, b)
}

func TestGraphvizBypassesIRGeneration(t *testing.T) {
	src := "" +
		"0  LET X = 0\n" +
		"10 LET X = X + 1\n" +
		"20 IF X < 5 THEN 10\n" +
		"30 END\n"
	out, err := Graphviz(src)
	require.NoError(t, err)
	require.Contains(t, out, "digraph G {")
}
