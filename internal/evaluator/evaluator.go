// Package evaluator executes a lowered component list at one target pixel
// coordinate. It is allocation-free in the inner loop: the
// caller supplies a reusable Stack sized to the program's known maximum
// depth.
package evaluator

import (
	"github.com/vahlkar/pixmath/internal/ast"
	"github.com/vahlkar/pixmath/internal/catalog"
	"github.com/vahlkar/pixmath/internal/diagnostics"
	"github.com/vahlkar/pixmath/internal/lowerer"
	"github.com/vahlkar/pixmath/internal/pixel"
	"github.com/vahlkar/pixmath/internal/registry"
	"github.com/vahlkar/pixmath/internal/token"
)

// Stack is the per-worker reusable pixel stack.
type Stack struct {
	items []pixel.Pixel
}

// NewStack allocates a stack with enough capacity for the given program.
func NewStack(depth int) *Stack {
	return &Stack{items: make([]pixel.Pixel, 0, depth)}
}

func (s *Stack) push(p pixel.Pixel) { s.items = append(s.items, p) }

func (s *Stack) popN(n int) []pixel.Pixel {
	start := len(s.items) - n
	args := s.items[start:len(s.items):len(s.items)]
	s.items = s.items[:start]
	return args
}

// Eval executes prog at pixel coordinate (x,y) for the calling worker's TLS,
// resolving IMAGE_REF samples against reg (steps 1-6).
func Eval(prog lowerer.Program, x, y int, tls *pixel.TLS, reg registry.Registry, cat *catalog.Catalog, stack *Stack) (pixel.Pixel, error) {
	stack.items = stack.items[:0]

	for i := range prog {
		comp := &prog[i]
		n := &comp.Node

		if !n.Kind.IsFunctional() {
			p, err := evalData(n, x, y, tls, reg)
			if err != nil {
				return pixel.Pixel{}, err
			}
			stack.push(p)
			continue
		}

		entry, _, _, ok := cat.Lookup(n.FuncName)
		if !ok || entry.EvalPixel == nil {
			return pixel.Pixel{}, diagnostics.Internal(n.Pos, n.FuncName, "functional missing its per-pixel evaluator")
		}
		if len(stack.items) < comp.Arity {
			return pixel.Pixel{}, diagnostics.Internal(n.Pos, n.FuncName, "stack underflow")
		}
		args := stack.popN(comp.Arity)
		result := pixel.Pixel{X: x, Y: y, TLS: tls}
		if err := entry.EvalPixel(&result, args); err != nil {
			return pixel.Pixel{}, diagnostics.New(diagnostics.PhaseEval, diagnostics.ErrGFailed, n.Pos, n.FuncName, err.Error())
		}
		stack.push(result)
	}

	if len(stack.items) != 1 {
		return pixel.Pixel{}, diagnostics.Internal(token.Token{}, "<program>", "final stack depth != 1")
	}
	return stack.items[0], nil
}

func evalData(n *ast.Node, x, y int, tls *pixel.TLS, reg registry.Registry) (pixel.Pixel, error) {
	switch n.Kind {
	case ast.KindSampleLiteral:
		return pixel.Pixel{X: x, Y: y, TLS: tls, Length: 1, Samples: [3]float64{n.SampleValue}}, nil

	case ast.KindPixelLiteral:
		p := n.PixelValue
		p.X, p.Y, p.TLS = x, y, tls
		return p, nil

	case ast.KindVarRef:
		cell := tls.Cells[n.VarID]
		cell.X, cell.Y, cell.TLS = x, y, tls
		return cell, nil

	case ast.KindImageRef:
		return sampleImage(n, x, y, tls, reg)

	case ast.KindConstRef:
		return pixel.Pixel{X: x, Y: y, TLS: tls, Length: 1}, nil

	default:
		return pixel.Pixel{}, diagnostics.Internal(n.Pos, "<data>", "unrecognized data node kind")
	}
}

func sampleImage(n *ast.Node, x, y int, tls *pixel.TLS, reg registry.Registry) (pixel.Pixel, error) {
	var img registry.Image
	if n.ImageID == "" {
		img = reg.Target()
	} else {
		found, ok := reg.Lookup(n.ImageID)
		if !ok {
			return pixel.Pixel{}, diagnostics.New(diagnostics.PhaseResolve, diagnostics.ErrRUnknownImage, n.Pos, n.ImageID)
		}
		img = found
	}
	if img == nil {
		return pixel.Pixel{}, diagnostics.New(diagnostics.PhaseResolve, diagnostics.ErrRUnknownImage, n.Pos, n.ImageID)
	}

	if n.HasChannel {
		if n.Channel < 0 || n.Channel >= img.Channels() {
			return pixel.Pixel{}, diagnostics.New(diagnostics.PhaseResolve, diagnostics.ErrRChannelRange, n.Pos, n.Channel, n.ImageID)
		}
		return pixel.NewScalar(x, y, img.Sample(x, y, n.Channel), tls), nil
	}
	if !img.IsColor() {
		return pixel.NewScalar(x, y, img.Sample(x, y, 0), tls), nil
	}
	return pixel.NewRGB(x, y, img.Sample(x, y, 0), img.Sample(x, y, 1), img.Sample(x, y, 2), tls), nil
}
