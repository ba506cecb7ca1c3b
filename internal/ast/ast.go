// Package ast defines the expression tree produced by the parser.
//
// Node is a closed set of variants collapsed into a single tagged struct
// rather than a Visitor-dispatched interface hierarchy. The four
// per-function contracts (validate, invariance, per-pixel eval, invariant
// eval) live in the catalog package and are looked up by the node's
// FuncName — ast itself never imports catalog, breaking what would
// otherwise be a cycle.
package ast

import (
	"github.com/vahlkar/pixmath/internal/pixel"
	"github.com/vahlkar/pixmath/internal/token"
)

// Kind is the node's type-tag bitfield.
type Kind uint16

const (
	KindOperator Kind = 1 << iota
	KindFunction
	KindImageRef
	KindVarRef
	KindConstRef
	KindPixelLiteral
	KindSampleLiteral
	KindArgList

	// Optimizer-use flags, not mutually exclusive with the tag bits above.
	FlagBranch  // node is a conditional functional (iif/iswitch)
	FlagPointer // node was substituted by a generator call-site rewrite
)

// Functional is the OR of the two functional tags.
const Functional = KindOperator | KindFunction

// Data is the OR of the six data tags; exactly one is set on any data node.
const Data = KindImageRef | KindVarRef | KindConstRef | KindPixelLiteral | KindSampleLiteral | KindArgList

// IsFunctional reports whether k has a functional tag set.
func (k Kind) IsFunctional() bool { return k&Functional != 0 }

// IsData reports whether k has exactly one data tag set.
func (k Kind) IsData() bool {
	d := k & Data
	return d != 0 && d&(d-1) == 0
}

// Node is the tagged expression-tree value. Only the fields relevant to
// Kind are meaningful; the zero value of the others is ignored.
type Node struct {
	Kind Kind
	Pos  token.Token

	// invariant caches whether this subtree is known not to depend on the
	// evaluation pixel; set by the parser's stage-2 pass and read by the
	// optimizer. Call Invariant()/SetInvariant() rather than
	// touching the field directly so the cache can't be read before it is
	// computed.
	invariantKnown bool
	invariantValue bool

	// Functional fields (Kind&Functional != 0).
	FuncName string  // canonical catalog token, never an alias
	SeenAs   string  // the alias the user actually typed, if any
	Args     []*Node // owned, ordered argument sequence

	// IMAGE_REF fields.
	ImageID    string
	Channel    int
	HasChannel bool

	// VAR_REF fields.
	VarName string
	VarID   int

	// CONST_REF fields.
	ConstName string

	// PIXEL_LITERAL / SAMPLE_LITERAL fields.
	PixelValue  pixel.Pixel
	SampleValue float64
}

// Invariant returns the cached invariance flag. Panics if it was never set,
// since every node must pass through the optimizer's invariance pass before
// lowering.
func (n *Node) Invariant() bool {
	if !n.invariantKnown {
		panic("ast: Invariant() read before SetInvariant()")
	}
	return n.invariantValue
}

// SetInvariant caches the invariance flag computed by the optimizer.
func (n *Node) SetInvariant(v bool) {
	n.invariantKnown = true
	n.invariantValue = v
}

// InvariantKnown reports whether SetInvariant has run for this node.
func (n *Node) InvariantKnown() bool { return n.invariantKnown }

// Clone makes a deep, owned copy of the subtree rooted at n. The lowerer
// uses this to populate the component list's "Ownership"
// design note: "the execution stream owns clones of the nodes it needs."
func (n *Node) Clone() *Node {
	if n == nil {
		return nil
	}
	c := *n
	if n.Args != nil {
		c.Args = make([]*Node, len(n.Args))
		for i, a := range n.Args {
			c.Args[i] = a.Clone()
		}
	}
	return &c
}

// NewOperator builds an operator functional node.
func NewOperator(pos token.Token, canonical string, args ...*Node) *Node {
	return &Node{Kind: KindOperator, Pos: pos, FuncName: canonical, Args: args}
}

// NewFunction builds a function-call functional node.
func NewFunction(pos token.Token, canonical, seenAs string, args []*Node) *Node {
	return &Node{Kind: KindFunction, Pos: pos, FuncName: canonical, SeenAs: seenAs, Args: args}
}

// NewArgList builds an ARG_LIST data node.
func NewArgList(pos token.Token, args []*Node) *Node {
	return &Node{Kind: KindArgList, Pos: pos, Args: args}
}

// NewImageRef builds an IMAGE_REF node. hasChannel is false for a bare `$name`.
func NewImageRef(pos token.Token, imageID string, channel int, hasChannel bool) *Node {
	return &Node{Kind: KindImageRef, Pos: pos, ImageID: imageID, Channel: channel, HasChannel: hasChannel}
}

// NewVarRef builds a VAR_REF node.
func NewVarRef(pos token.Token, name string, id int) *Node {
	return &Node{Kind: KindVarRef, Pos: pos, VarName: name, VarID: id}
}

// NewConstRef builds a CONST_REF node.
func NewConstRef(pos token.Token, name string) *Node {
	return &Node{Kind: KindConstRef, Pos: pos, ConstName: name}
}

// NewSampleLiteral builds a numeric SAMPLE_LITERAL node; it is
// unconditionally invariant.
func NewSampleLiteral(pos token.Token, v float64) *Node {
	n := &Node{Kind: KindSampleLiteral, Pos: pos, SampleValue: v}
	n.SetInvariant(true)
	return n
}

// NewPixelLiteral builds a PIXEL_LITERAL node; it is unconditionally
// invariant.
func NewPixelLiteral(pos token.Token, p pixel.Pixel) *Node {
	n := &Node{Kind: KindPixelLiteral, Pos: pos, PixelValue: p}
	n.SetInvariant(true)
	return n
}
