package symbols

import (
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/vahlkar/pixmath/internal/pixel"
	"github.com/vahlkar/pixmath/internal/registry"
)

// Table is the sorted set of symbols for one run.
type Table struct {
	order   []string
	symbols map[string]*Symbol
	nextID  int
}

func newTable() *Table {
	return &Table{symbols: make(map[string]*Symbol)}
}

// Lookup finds a symbol by name.
func (t *Table) Lookup(name string) (*Symbol, bool) {
	s, ok := t.symbols[name]
	return s, ok
}

// NumVariableSlots returns how many TLS cells a worker needs, i.e. one past
// the highest variable/global id assigned.
func (t *Table) NumVariableSlots() int { return t.nextID }

// Names returns symbol names in sorted order, for deterministic iteration
// (e.g. reduction of globals at end of run).
func (t *Table) Names() []string {
	out := append([]string(nil), t.order...)
	sort.Strings(out)
	return out
}

// Globals returns every KindGlobal symbol, sorted by name.
func (t *Table) Globals() []*Symbol {
	var out []*Symbol
	for _, name := range t.Names() {
		s := t.symbols[name]
		if s.Kind == KindGlobal {
			out = append(out, s)
		}
	}
	return out
}

var valueFuncArity = map[string][2]int{
	"kwd_value":        {2, 2},
	"kwd_defined":       {2, 2},
	"property_value":    {2, 2},
	"property_defined":  {2, 2},
	"envvar_value":      {1, 1},
	"envvar_defined":    {1, 1},
	"width":    {1, 1},
	"height":   {1, 1},
	"area":     {1, 1},
	"invarea":  {1, 1},
	"iscolor":  {1, 1},
	"min":      {1, 1},
	"max":      {1, 1},
	"median":   {1, 1},
	"mean":     {1, 1},
	"mdev":     {1, 1},
	"adev":     {1, 1},
	"sdev":     {1, 1},
	"modulus":  {1, 1},
	"ssqr":     {1, 1},
	"asqr":     {1, 1},
	"pixel":    {3, 4},
}

// ParseDeclarations builds a Table from a declaration string of the form
// "name1=value1, name2=value2, ..."Identifiers must be
// unique, syntactically valid, and must not shadow a built-in function
// token or alias (isBuiltin reports whether a name is reserved).
func ParseDeclarations(decl string, isBuiltin func(string) bool) (*Table, error) {
	t := newTable()
	entries, err := splitTopLevel(decl)
	if err != nil {
		return nil, err
	}
	for _, entry := range entries {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}
		if err := t.parseOne(entry, isBuiltin); err != nil {
			return nil, err
		}
	}
	return t, nil
}

// splitTopLevel splits decl on commas that are not nested inside
// parentheses, so `pixel(img,1,2)` stays one entry while the declarations
// around it still split on their own commas.
func splitTopLevel(decl string) ([]string, error) {
	var out []string
	depth := 0
	start := 0
	for i, r := range decl {
		switch r {
		case '(':
			depth++
		case ')':
			depth--
			if depth < 0 {
				return nil, fmt.Errorf("symbol declarations: unbalanced ')'")
			}
		case ',':
			if depth == 0 {
				out = append(out, decl[start:i])
				start = i + 1
			}
		}
	}
	if depth != 0 {
		return nil, fmt.Errorf("symbol declarations: unbalanced '('")
	}
	out = append(out, decl[start:])
	return out, nil
}

func (t *Table) parseOne(entry string, isBuiltin func(string) bool) error {
	name, rest, hasEq := strings.Cut(entry, "=")
	name = strings.TrimSpace(name)
	if name == "" {
		return fmt.Errorf("symbol declarations: empty identifier in %q", entry)
	}
	if !validIdentifier(name) {
		return fmt.Errorf("symbol declarations: invalid identifier %q", name)
	}
	if _, exists := t.symbols[name]; exists {
		return fmt.Errorf("symbol declarations: %q is declared more than once", name)
	}
	if isBuiltin != nil && isBuiltin(name) {
		return fmt.Errorf("symbol declarations: %q shadows a built-in function token or alias", name)
	}

	if !hasEq {
		// Bare variable declaration: `name` alone.
		sym := &Symbol{Name: name, Kind: KindVariable, ID: t.nextID}
		t.nextID++
		t.symbols[name] = sym
		t.order = append(t.order, name)
		return nil
	}

	rest = strings.TrimSpace(rest)
	sym, err := t.parseValue(name, rest)
	if err != nil {
		return err
	}
	t.symbols[name] = sym
	t.order = append(t.order, name)
	return nil
}

func (t *Table) parseValue(name, rest string) (*Symbol, error) {
	if fn, argStr, ok := splitCall(rest); ok {
		args := splitArgs(argStr)
		switch fn {
		case "init":
			if len(args) != 1 {
				return nil, fmt.Errorf("symbol %q: init() takes exactly one argument", name)
			}
			v, err := parseNumber(args[0])
			if err != nil {
				return nil, fmt.Errorf("symbol %q: init(): %w", name, err)
			}
			id := t.nextID
			t.nextID++
			return &Symbol{Name: name, Kind: KindVariable, ID: id, Init: v}, nil

		case "global":
			if len(args) < 1 || len(args) > 2 {
				return nil, fmt.Errorf("symbol %q: global() takes one or two arguments", name)
			}
			var op ReduceOp
			switch strings.TrimSpace(args[0]) {
			case "+":
				op = ReduceSum
			case "*":
				op = ReduceProduct
			default:
				return nil, fmt.Errorf("symbol %q: global() operator must be '+' or '*', got %q", name, args[0])
			}
			init := op.Identity()
			if len(args) == 2 {
				v, err := parseNumber(args[1])
				if err != nil {
					return nil, fmt.Errorf("symbol %q: global(): %w", name, err)
				}
				init = v
			}
			id := t.nextID
			t.nextID++
			return &Symbol{Name: name, Kind: KindGlobal, ID: id, Init: init, ReduceOp: op}, nil

		default:
			window, ok := valueFuncArity[fn]
			if !ok {
				return nil, fmt.Errorf("symbol %q: unknown value function %q", name, fn)
			}
			if len(args) < window[0] || len(args) > window[1] {
				return nil, fmt.Errorf("symbol %q: %s() expects between %d and %d argument(s), got %d",
					name, fn, window[0], window[1], len(args))
			}
			return t.parseValueFunc(name, fn, args)
		}
	}

	// Immediate scalar, or three colon-separated numbers for RGB.
	if strings.Contains(rest, ":") {
		parts := strings.Split(rest, ":")
		if len(parts) != 3 {
			return nil, fmt.Errorf("symbol %q: RGB constant must have exactly three colon-separated numbers", name)
		}
		var p pixel.Pixel
		p.Length = 3
		for i, part := range parts {
			v, err := parseNumber(part)
			if err != nil {
				return nil, fmt.Errorf("symbol %q: %w", name, err)
			}
			p.Samples[i] = v
		}
		return &Symbol{Name: name, Kind: KindConstant, Value: p}, nil
	}

	v, err := parseNumber(rest)
	if err != nil {
		return nil, fmt.Errorf("symbol %q: %w", name, err)
	}
	return &Symbol{Name: name, Kind: KindConstant, Value: pixel.NewScalar(0, 0, v, nil)}, nil
}

func (t *Table) parseValueFunc(name, fn string, args []string) (*Symbol, error) {
	ref := &ValueFuncRef{Func: fn}
	unquote := func(s string) string {
		s = strings.TrimSpace(s)
		if len(s) >= 2 && (s[0] == '"' || s[0] == '\'') && s[len(s)-1] == s[0] {
			return s[1 : len(s)-1]
		}
		return s
	}
	switch fn {
	case "envvar_value", "envvar_defined":
		ref.NameArg = unquote(args[0])
	case "kwd_value", "kwd_defined", "property_value", "property_defined":
		ref.ImageArg = unquote(args[0])
		ref.NameArg = unquote(args[1])
	case "pixel":
		ref.ImageArg = unquote(args[0])
		x, err := strconv.Atoi(strings.TrimSpace(args[1]))
		if err != nil {
			return nil, fmt.Errorf("symbol %q: pixel(): x must be an integer", name)
		}
		y, err := strconv.Atoi(strings.TrimSpace(args[2]))
		if err != nil {
			return nil, fmt.Errorf("symbol %q: pixel(): y must be an integer", name)
		}
		ref.X, ref.Y = x, y
		if len(args) == 4 {
			c, err := strconv.Atoi(strings.TrimSpace(args[3]))
			if err != nil {
				return nil, fmt.Errorf("symbol %q: pixel(): channel must be an integer", name)
			}
			ref.C, ref.HasC = c, true
		}
	default: // stats queries, all `fn(img)`
		ref.ImageArg = unquote(args[0])
	}
	return &Symbol{Name: name, Kind: KindConstant, Pending: ref}, nil
}

// Resolve evaluates every pending value-function constant against the
// given image registry, turning it into an immediate Value. Must run once
// before parsing.
func (t *Table) Resolve(reg registry.Registry) error {
	for _, name := range t.order {
		sym := t.symbols[name]
		if sym.Kind != KindConstant || sym.Pending == nil {
			continue
		}
		v, err := resolveValueFunc(sym.Pending, reg)
		if err != nil {
			return fmt.Errorf("symbol %q: %w", name, err)
		}
		sym.Value = v
		sym.Pending = nil
	}
	return nil
}

func resolveValueFunc(ref *ValueFuncRef, reg registry.Registry) (pixel.Pixel, error) {
	boolPixel := func(b bool) pixel.Pixel {
		if b {
			return pixel.NewScalar(0, 0, 1, nil)
		}
		return pixel.NewScalar(0, 0, 0, nil)
	}

	switch ref.Func {
	case "envvar_value":
		s, ok := os.LookupEnv(ref.NameArg)
		if !ok {
			return pixel.Pixel{}, fmt.Errorf("envvar_value: environment variable %q is not set", ref.NameArg)
		}
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return pixel.Pixel{}, fmt.Errorf("envvar_value(%q): %w", ref.NameArg, err)
		}
		return pixel.NewScalar(0, 0, v, nil), nil
	case "envvar_defined":
		_, ok := os.LookupEnv(ref.NameArg)
		return boolPixel(ok), nil
	}

	img, ok := reg.Lookup(ref.ImageArg)
	if !ok {
		return pixel.Pixel{}, fmt.Errorf("unknown image %q", ref.ImageArg)
	}

	switch ref.Func {
	case "kwd_value":
		v, found := img.KeywordValue(ref.NameArg)
		if !found {
			return pixel.Pixel{}, fmt.Errorf("keyword %q not found on image %q", ref.NameArg, ref.ImageArg)
		}
		return pixel.Pixel{Length: v.Length, Samples: v.Samples}, nil
	case "kwd_defined":
		_, found := img.KeywordValue(ref.NameArg)
		return boolPixel(found), nil
	case "property_value":
		v, found := img.PropertyValue(ref.NameArg)
		if !found {
			return pixel.Pixel{}, fmt.Errorf("property %q not found on image %q", ref.NameArg, ref.ImageArg)
		}
		return pixel.Pixel{Length: v.Length, Samples: v.Samples}, nil
	case "property_defined":
		_, found := img.PropertyValue(ref.NameArg)
		return boolPixel(found), nil
	case "width":
		return pixel.NewScalar(0, 0, float64(img.Width()), nil), nil
	case "height":
		return pixel.NewScalar(0, 0, float64(img.Height()), nil), nil
	case "area":
		return pixel.NewScalar(0, 0, img.Area(), nil), nil
	case "invarea":
		return pixel.NewScalar(0, 0, img.InvArea(), nil), nil
	case "iscolor":
		return boolPixel(img.IsColor()), nil
	case "min":
		return pixel.NewScalar(0, 0, img.Min(0), nil), nil
	case "max":
		return pixel.NewScalar(0, 0, img.Max(0), nil), nil
	case "median":
		return pixel.NewScalar(0, 0, img.Median(0), nil), nil
	case "mean":
		return pixel.NewScalar(0, 0, img.Mean(0), nil), nil
	case "mdev":
		return pixel.NewScalar(0, 0, img.MDev(0), nil), nil
	case "adev":
		return pixel.NewScalar(0, 0, img.ADev(0), nil), nil
	case "sdev":
		return pixel.NewScalar(0, 0, img.SDev(0), nil), nil
	case "modulus":
		return pixel.NewScalar(0, 0, img.Modulus(0), nil), nil
	case "ssqr":
		return pixel.NewScalar(0, 0, img.SSqr(0), nil), nil
	case "asqr":
		return pixel.NewScalar(0, 0, img.ASqr(0), nil), nil
	case "pixel":
		c := 0
		if ref.HasC {
			c = ref.C
		}
		return pixel.NewScalar(0, 0, img.Sample(ref.X, ref.Y, c), nil), nil
	}
	return pixel.Pixel{}, fmt.Errorf("unknown value function %q", ref.Func)
}

func validIdentifier(s string) bool {
	if s == "" {
		return false
	}
	for i, r := range s {
		if r == '_' || (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') {
			continue
		}
		if i > 0 && r >= '0' && r <= '9' {
			continue
		}
		return false
	}
	return true
}

func parseNumber(s string) (float64, error) {
	s = strings.TrimSpace(s)
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("not a number: %q", s)
	}
	return v, nil
}

// splitCall recognizes a top-level `name(args)` call spanning the whole
// string, returning the function name and the raw argument text.
func splitCall(s string) (fn, args string, ok bool) {
	s = strings.TrimSpace(s)
	if !strings.HasSuffix(s, ")") {
		return "", "", false
	}
	open := strings.IndexByte(s, '(')
	if open < 0 {
		return "", "", false
	}
	name := strings.TrimSpace(s[:open])
	if !validIdentifier(name) {
		return "", "", false
	}
	return name, s[open+1 : len(s)-1], true
}

func splitArgs(s string) []string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	parts, _ := splitTopLevel(s)
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	return parts
}
