package lowerer

import (
	"testing"

	"github.com/vahlkar/pixmath/internal/ast"
	"github.com/vahlkar/pixmath/internal/token"
)

func TestLowerPostOrder(t *testing.T) {
	// abs(1 + 2): expect components [1, 2, +, abs], root last.
	one := ast.NewSampleLiteral(token.Token{}, 1)
	two := ast.NewSampleLiteral(token.Token{}, 2)
	plus := ast.NewOperator(token.Token{}, "+", one, two)
	abs := ast.NewFunction(token.Token{}, "abs", "abs", []*ast.Node{plus})

	prog := Lower(abs)
	if len(prog) != 4 {
		t.Fatalf("got %d components, want 4", len(prog))
	}
	if prog[0].Node.SampleValue != 1 || prog[1].Node.SampleValue != 2 {
		t.Errorf("literals out of order: %+v", prog[:2])
	}
	if prog[2].Node.FuncName != "+" || prog[2].Arity != 2 {
		t.Errorf("expected '+' with arity 2 at index 2, got %+v", prog[2])
	}
	if prog[3].Node.FuncName != "abs" || prog[3].Arity != 1 {
		t.Errorf("expected root 'abs' last with arity 1, got %+v", prog[3])
	}
}

func TestLowerStripsArgs(t *testing.T) {
	one := ast.NewSampleLiteral(token.Token{}, 1)
	plus := ast.NewOperator(token.Token{}, "+", one, one)
	prog := Lower(plus)
	for _, c := range prog {
		if c.Node.Args != nil {
			t.Errorf("lowered component retained Args: %+v", c.Node)
		}
	}
}

func TestMaxStackDepth(t *testing.T) {
	testCases := []struct {
		name string
		prog Program
		want int
	}{
		{"single_literal", Program{{Node: ast.Node{Kind: ast.KindSampleLiteral}}}, 1},
		{
			"binary_op",
			Program{
				{Node: ast.Node{Kind: ast.KindSampleLiteral}},
				{Node: ast.Node{Kind: ast.KindSampleLiteral}},
				{Node: ast.Node{Kind: ast.KindOperator, FuncName: "+"}, Arity: 2},
			},
			2,
		},
		{
			"nested_binary",
			// (1+2)+(3+4): the left sum stays live while both operands of
			// the right sum are pushed, so depth briefly reaches 3.
			Program{
				{Node: ast.Node{Kind: ast.KindSampleLiteral}},
				{Node: ast.Node{Kind: ast.KindSampleLiteral}},
				{Node: ast.Node{Kind: ast.KindOperator, FuncName: "+"}, Arity: 2},
				{Node: ast.Node{Kind: ast.KindSampleLiteral}},
				{Node: ast.Node{Kind: ast.KindSampleLiteral}},
				{Node: ast.Node{Kind: ast.KindOperator, FuncName: "+"}, Arity: 2},
				{Node: ast.Node{Kind: ast.KindOperator, FuncName: "+"}, Arity: 2},
			},
			3,
		},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if got := MaxStackDepth(tc.prog); got != tc.want {
				t.Errorf("got %d, want %d", got, tc.want)
			}
		})
	}
}
