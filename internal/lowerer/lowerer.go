// Package lowerer flattens an optimized expression tree into the post-order
// component list the evaluator executes. The root functional
// is emitted last; each component carries just enough information (kind,
// data payload, declared arity) for the evaluator's stack machine to
// replay the tree without walking pointers into the original AST.
package lowerer

import "github.com/vahlkar/pixmath/internal/ast"

// Component is one entry of the execution stream: a value copy of the
// node's own fields (Args stripped, since post-order position plus Arity
// already encodes the tree shape) so the program is independent of the
// tree it was lowered from.
type Component struct {
	Node  ast.Node
	Arity int // argument count to pop, meaningful only when Node.Kind.IsFunctional()
}

// Program is the ordered execution stream produced by Lower.
type Program []Component

// Lower walks root in post-order, producing the flat program (// "Walks the tree in post-order, emitting clones into a component list
// ... The root functional is emitted last").
func Lower(root *ast.Node) Program {
	var prog Program
	emit(root, &prog)
	return prog
}

func emit(n *ast.Node, prog *Program) {
	if n == nil {
		return
	}
	if n.Kind.IsFunctional() {
		for _, a := range n.Args {
			emit(a, prog)
		}
		c := *n
		c.Args = nil
		*prog = append(*prog, Component{Node: c, Arity: len(n.Args)})
		return
	}
	c := *n
	c.Args = nil
	*prog = append(*prog, Component{Node: c, Arity: 0})
}

// MaxStackDepth simulates the program's push/pop pattern to find the
// maximum number of live pixels the evaluator's stack must hold: bounded
// depth equal to the maximum live count in the post-order program, known
// at lowering time.
func MaxStackDepth(prog Program) int {
	depth, maxDepth := 0, 0
	for _, c := range prog {
		if c.Node.Kind.IsFunctional() {
			depth -= c.Arity
		}
		depth++
		if depth > maxDepth {
			maxDepth = depth
		}
	}
	return maxDepth
}
