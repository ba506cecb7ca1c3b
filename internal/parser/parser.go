// Package parser implements a two-stage parse: a structural pass that
// classifies tokens into an expression tree, and a semantic pass that runs
// each functional through its catalog validator (and, where the catalog
// entry declares one, its generator) as soon as the node is built.
package parser

import (
	"github.com/vahlkar/pixmath/internal/ast"
	"github.com/vahlkar/pixmath/internal/catalog"
	"github.com/vahlkar/pixmath/internal/diagnostics"
	"github.com/vahlkar/pixmath/internal/symbols"
	"github.com/vahlkar/pixmath/internal/token"
)

// Statement is one top-level `;`-separated expression, optionally an
// assignment to a variable or global ("Variable declarations",
// "Global variables").
type Statement struct {
	Pos      token.Token
	IsAssign bool
	VarID    int
	IsGlobal bool
	ReduceOp symbols.ReduceOp
	Expr     *ast.Node
}

// Program is the parsed form of every statement in one source string.
type Program struct {
	Statements []Statement
}

type parser struct {
	toks   []token.Token
	pos    int
	cat    *catalog.Catalog
	symtab *symbols.Table
	gc     *catalog.GenContext
}

// ParseProgram parses every statement produced by the tokenizer.
func ParseProgram(stmts [][]token.Token, cat *catalog.Catalog, symtab *symbols.Table, gc *catalog.GenContext) (*Program, error) {
	prog := &Program{}
	for _, toks := range stmts {
		stmt, err := parseStatement(toks, cat, symtab, gc)
		if err != nil {
			return nil, err
		}
		prog.Statements = append(prog.Statements, *stmt)
	}
	return prog, nil
}

func parseStatement(toks []token.Token, cat *catalog.Catalog, symtab *symbols.Table, gc *catalog.GenContext) (*Statement, error) {
	p := &parser{toks: toks, cat: cat, symtab: symtab, gc: gc}
	if len(toks) == 0 {
		return nil, diagnostics.New(diagnostics.PhaseParse, diagnostics.ErrPUnexpectedEnd, token.Token{})
	}

	if len(toks) >= 2 && toks[0].Type == token.IDENT && toks[1].Type == token.ASSIGN {
		if sym, ok := symtab.Lookup(toks[0].Lexeme); ok && (sym.Kind == symbols.KindVariable || sym.Kind == symbols.KindGlobal) {
			p.pos = 2
			expr, err := p.parseExpr(0)
			if err != nil {
				return nil, err
			}
			if err := p.expectEnd(); err != nil {
				return nil, err
			}
			return &Statement{
				Pos: toks[0], IsAssign: true, VarID: sym.ID,
				IsGlobal: sym.Kind == symbols.KindGlobal, ReduceOp: sym.ReduceOp, Expr: expr,
			}, nil
		}
	}

	expr, err := p.parseExpr(0)
	if err != nil {
		return nil, err
	}
	if err := p.expectEnd(); err != nil {
		return nil, err
	}
	return &Statement{Pos: toks[0], Expr: expr}, nil
}

func (p *parser) at() token.Token {
	if p.pos >= len(p.toks) {
		return token.Token{Type: token.EOF}
	}
	return p.toks[p.pos]
}

func (p *parser) advance() token.Token {
	t := p.at()
	p.pos++
	return t
}

func (p *parser) expect(tt token.Type) (token.Token, error) {
	t := p.at()
	if t.Type != tt {
		return token.Token{}, diagnostics.New(diagnostics.PhaseParse, diagnostics.ErrPUnexpectedToken, t, t.Lexeme, string(tt))
	}
	return p.advance(), nil
}

func (p *parser) expectEnd() error {
	if p.pos != len(p.toks) {
		t := p.at()
		return diagnostics.New(diagnostics.PhaseParse, diagnostics.ErrPUnexpectedToken, t, t.Lexeme, "end of expression")
	}
	return nil
}

// parseExpr is precedence-climbing over catalog.AllOperators (// "Operator precedence and associativity follow standard arithmetic
// conventions ... left-to-right tie-breaks except for `^`").
func (p *parser) parseExpr(minPrec int) (*ast.Node, error) {
	left, err := p.parseUnary()
	if err != nil {
		return nil, err
	}
	for {
		t := p.at()
		op, ok := catalog.LookupOperator(string(t.Type))
		if !ok || op.Precedence < minPrec {
			return left, nil
		}
		p.advance()
		nextMin := op.Precedence + 1
		if op.Assoc == catalog.AssocRight {
			nextMin = op.Precedence
		}
		right, err := p.parseExpr(nextMin)
		if err != nil {
			return nil, err
		}
		node := ast.NewOperator(t, op.Canonical, left, right)
		left, err = p.finishFunctional(node)
		if err != nil {
			return nil, err
		}
	}
}

func (p *parser) parseUnary() (*ast.Node, error) {
	t := p.at()
	if canonical, ok := catalog.UnaryOperators[string(t.Type)]; ok {
		p.advance()
		operand, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		node := ast.NewOperator(t, canonical, operand)
		return p.finishFunctional(node)
	}
	return p.parsePrimary()
}

func (p *parser) parsePrimary() (*ast.Node, error) {
	t := p.at()
	switch t.Type {
	case token.NUMBER:
		p.advance()
		return ast.NewSampleLiteral(t, t.Literal.(float64)), nil

	case token.META:
		p.advance()
		return p.parseImageRef(t)

	case token.LPAREN:
		p.advance()
		inner, err := p.parseExpr(0)
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(token.RPAREN); err != nil {
			return nil, err
		}
		return inner, nil

	case token.IDENT:
		return p.parseIdent()

	case token.EOF:
		return nil, diagnostics.New(diagnostics.PhaseParse, diagnostics.ErrPUnexpectedEnd, t)

	default:
		return nil, diagnostics.New(diagnostics.PhaseParse, diagnostics.ErrPUnexpectedToken, t, t.Lexeme, "an expression")
	}
}

func (p *parser) parseImageRef(t token.Token) (*ast.Node, error) {
	imageID := t.Lexeme
	if imageID == "T" || imageID == "target" {
		imageID = ""
	}
	channel := 0
	hasChannel := false
	if p.at().Type == token.LBRACKET {
		p.advance()
		ct, err := p.expect(token.NUMBER)
		if err != nil {
			return nil, err
		}
		channel = int(ct.Literal.(float64))
		hasChannel = true
		if _, err := p.expect(token.RBRACKET); err != nil {
			return nil, err
		}
	}
	return ast.NewImageRef(t, imageID, channel, hasChannel), nil
}

func (p *parser) parseIdent() (*ast.Node, error) {
	t := p.advance()
	name := t.Lexeme

	if p.at().Type == token.LPAREN {
		entry, canonical, seenAs, ok := p.cat.Lookup(name)
		if !ok {
			return nil, diagnostics.New(diagnostics.PhaseParse, diagnostics.ErrPUnknownIdent, t, name)
		}
		p.advance() // '('
		args, err := p.parseArgs()
		if err != nil {
			return nil, err
		}
		node := ast.NewFunction(t, canonical, seenAs, args)
		return p.finishFunctionalWithEntry(node, entry)
	}

	if sym, ok := p.symtab.Lookup(name); ok {
		switch sym.Kind {
		case symbols.KindConstant:
			if sym.Value.Length == 3 {
				return ast.NewPixelLiteral(t, sym.Value), nil
			}
			return ast.NewSampleLiteral(t, sym.Value.Samples[0]), nil
		case symbols.KindVariable, symbols.KindGlobal:
			return ast.NewVarRef(t, name, sym.ID), nil
		}
	}

	if p.cat.IsReserved(name) {
		n := ast.NewConstRef(t, name)
		n.SetInvariant(true)
		return n, nil
	}

	return nil, diagnostics.New(diagnostics.PhaseParse, diagnostics.ErrPUnknownIdent, t, name)
}

func (p *parser) parseArgs() ([]*ast.Node, error) {
	var args []*ast.Node
	if p.at().Type == token.RPAREN {
		p.advance()
		return args, nil
	}
	for {
		arg, err := p.parseExpr(0)
		if err != nil {
			return nil, err
		}
		args = append(args, arg)
		if p.at().Type == token.COMMA {
			p.advance()
			continue
		}
		break
	}
	if _, err := p.expect(token.RPAREN); err != nil {
		return nil, err
	}
	return args, nil
}

// finishFunctional looks up node's own catalog entry (used for operator
// nodes built inline by parseExpr/parseUnary, whose canonical token always
// exists) and runs stage 2.
func (p *parser) finishFunctional(node *ast.Node) (*ast.Node, error) {
	entry, _, _, ok := p.cat.Lookup(node.FuncName)
	if !ok {
		return nil, diagnostics.Internal(node.Pos, node.FuncName, "operator missing its catalog entry")
	}
	return p.finishFunctionalWithEntry(node, entry)
}

// finishFunctionalWithEntry runs the stage-2 semantic parse for one
// functional node: argument validation, invariance, and (where the entry
// declares one) generator execution.
func (p *parser) finishFunctionalWithEntry(node *ast.Node, entry *catalog.Entry) (*ast.Node, error) {
	result := entry.Validate(node.Pos, node.Args)
	switch result.Decision {
	case catalog.Reject:
		if result.ArgIndex < 0 {
			return nil, diagnostics.New(diagnostics.PhaseValidate, diagnostics.ErrVArgType, node.Pos, node.FuncName, 0, result.Reason)
		}
		return nil, diagnostics.New(diagnostics.PhaseValidate, diagnostics.ErrVArgType, node.Pos, node.FuncName, result.ArgIndex+1, result.Reason)
	case catalog.AcceptRewrite:
		return result.Rewrite, nil
	}

	node.SetInvariant(entry.Invariant(node.Args))

	if entry.Generate != nil {
		rewritten, err := entry.Generate(node.Pos, node.Args, p.gc)
		if err != nil {
			return nil, diagnostics.New(diagnostics.PhaseGenerate, diagnostics.ErrGFailed, node.Pos, node.FuncName, err.Error())
		}
		// A generated image is sampled per pixel, so an IMAGE_REF result
		// is never marked invariant; folded literals already are.
		if node.Invariant() && rewritten.Kind != ast.KindImageRef {
			rewritten.SetInvariant(true)
		}
		return rewritten, nil
	}

	return node, nil
}
