package symbols

import (
	"os"
	"testing"
)

func notReserved(string) bool { return false }

func TestParseDeclarationsInitAndGlobal(t *testing.T) {
	table, err := ParseDeclarations("k=init(3), s=global(+,0)", notReserved)
	if err != nil {
		t.Fatalf("ParseDeclarations: %v", err)
	}

	k, ok := table.Lookup("k")
	if !ok {
		t.Fatal("symbol k not found")
	}
	if k.Kind != KindVariable || k.Init != 3 {
		t.Errorf("k: got kind %v init %v, want KindVariable init 3", k.Kind, k.Init)
	}

	s, ok := table.Lookup("s")
	if !ok {
		t.Fatal("symbol s not found")
	}
	if s.Kind != KindGlobal || s.ReduceOp != ReduceSum || s.Init != 0 {
		t.Errorf("s: got kind %v op %v init %v, want KindGlobal ReduceSum 0", s.Kind, s.ReduceOp, s.Init)
	}

	if table.NumVariableSlots() != 2 {
		t.Errorf("got %d variable slots, want 2", table.NumVariableSlots())
	}
	if len(table.Globals()) != 1 || table.Globals()[0].Name != "s" {
		t.Errorf("Globals() = %+v, want just [s]", table.Globals())
	}
}

func TestParseDeclarationsGlobalDefaultsToOperatorIdentity(t *testing.T) {
	table, err := ParseDeclarations("p=global(*)", notReserved)
	if err != nil {
		t.Fatalf("ParseDeclarations: %v", err)
	}
	p, ok := table.Lookup("p")
	if !ok {
		t.Fatal("symbol p not found")
	}
	if p.Init != ReduceProduct.Identity() {
		t.Errorf("got init %v, want the product identity %v", p.Init, ReduceProduct.Identity())
	}
}

func TestParseDeclarationsRejectsUnknownOperator(t *testing.T) {
	if _, err := ParseDeclarations("s=global(-,0)", notReserved); err == nil {
		t.Fatal("expected an error for an unsupported global() operator, got none")
	}
}

func TestParseDeclarationsRGBConstant(t *testing.T) {
	table, err := ParseDeclarations("c=0.1:0.2:0.3", notReserved)
	if err != nil {
		t.Fatalf("ParseDeclarations: %v", err)
	}
	c, ok := table.Lookup("c")
	if !ok {
		t.Fatal("symbol c not found")
	}
	if c.Kind != KindConstant || c.Value.Length != 3 {
		t.Fatalf("c: got kind %v length %v, want KindConstant length 3", c.Kind, c.Value.Length)
	}
	if c.Value.Samples[0] != 0.1 || c.Value.Samples[1] != 0.2 || c.Value.Samples[2] != 0.3 {
		t.Errorf("got samples %v, want [0.1 0.2 0.3]", c.Value.Samples)
	}
}

func TestEnvvarValueResolvesNumericEnv(t *testing.T) {
	t.Setenv("PIXMATH_TEST_ENVVAR", "3.5")
	table, err := ParseDeclarations("x=envvar_value(PIXMATH_TEST_ENVVAR)", notReserved)
	if err != nil {
		t.Fatalf("ParseDeclarations: %v", err)
	}
	if err := table.Resolve(nil); err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	x, ok := table.Lookup("x")
	if !ok {
		t.Fatal("symbol x not found")
	}
	if x.Value.Sample(0) != 3.5 {
		t.Errorf("got %v, want 3.5", x.Value.Sample(0))
	}
}

func TestEnvvarValueMissingIsError(t *testing.T) {
	os.Unsetenv("PIXMATH_TEST_ENVVAR_MISSING")
	table, err := ParseDeclarations("x=envvar_value(PIXMATH_TEST_ENVVAR_MISSING)", notReserved)
	if err != nil {
		t.Fatalf("ParseDeclarations: %v", err)
	}
	if err := table.Resolve(nil); err == nil {
		t.Fatal("expected an error for an unset environment variable, got none")
	}
}

func TestEnvvarValueNonNumericIsError(t *testing.T) {
	t.Setenv("PIXMATH_TEST_ENVVAR_NONNUMERIC", "not-a-number")
	table, err := ParseDeclarations("x=envvar_value(PIXMATH_TEST_ENVVAR_NONNUMERIC)", notReserved)
	if err != nil {
		t.Fatalf("ParseDeclarations: %v", err)
	}
	if err := table.Resolve(nil); err == nil {
		t.Fatal("expected an error for a non-numeric environment value, got none")
	}
}

func TestEnvvarDefined(t *testing.T) {
	t.Setenv("PIXMATH_TEST_ENVVAR_DEFINED", "anything")
	table, err := ParseDeclarations("d=envvar_defined(PIXMATH_TEST_ENVVAR_DEFINED)", notReserved)
	if err != nil {
		t.Fatalf("ParseDeclarations: %v", err)
	}
	if err := table.Resolve(nil); err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	d, ok := table.Lookup("d")
	if !ok {
		t.Fatal("symbol d not found")
	}
	if d.Value.Sample(0) != 1 {
		t.Errorf("got %v, want 1 (defined)", d.Value.Sample(0))
	}
}

func TestReduceOpIdentityAndCombine(t *testing.T) {
	if ReduceSum.Identity() != 0 {
		t.Errorf("sum identity: got %v, want 0", ReduceSum.Identity())
	}
	if ReduceProduct.Identity() != 1 {
		t.Errorf("product identity: got %v, want 1", ReduceProduct.Identity())
	}
	if got := ReduceSum.Combine(2, 3); got != 5 {
		t.Errorf("sum combine: got %v, want 5", got)
	}
	if got := ReduceProduct.Combine(2, 3); got != 6 {
		t.Errorf("product combine: got %v, want 6", got)
	}
}
