package predicate

import (
	"testing"

	"crysknife/internal/engineversion"
)

type fakeCtx struct {
	root string
	v    engineversion.Version
}

func (f fakeCtx) EngineRoot() string                   { return f.root }
func (f fakeCtx) CurrentVersion() engineversion.Version { return f.v }

func TestEvalAlwaysNever(t *testing.T) {
	if ok, _ := Eval(nil, "Always", "x"); !ok {
		t.Error("Always should be true")
	}
	if ok, _ := Eval(nil, "Never", "x"); ok {
		t.Error("Never should be false")
	}
}

func TestEvalNameMatches(t *testing.T) {
	ok, warns := Eval(nil, "NameMatches:Foo|Bar", "path/to/FooBar.cpp")
	if !ok || len(warns) != 0 {
		t.Fatalf("got %v %v", ok, warns)
	}
	ok, _ = Eval(nil, "NameMatches:Baz", "FooBar.cpp")
	if ok {
		t.Error("expected no match")
	}
}

func TestEvalNegation(t *testing.T) {
	a, _ := Eval(nil, "NameMatches:Foo", "FooBar.cpp")
	b, _ := Eval(nil, "NameMatches:!Foo", "FooBar.cpp")
	if a == b {
		t.Errorf("negation did not flip result: %v %v", a, b)
	}
}

func TestEvalConjunctionWithinTerm(t *testing.T) {
	// Conjunction flips OR to AND across the term's values.
	ok, _ := Eval(nil, "NameMatches:Conjunction|Foo|Missing", "FooBar.cpp")
	if ok {
		t.Error("AND of Foo(true) and Missing(false) should be false")
	}
	ok, _ = Eval(nil, "NameMatches:Conjunction|Foo|Bar", "FooBar.cpp")
	if !ok {
		t.Error("AND of Foo(true) and Bar(true) should be true")
	}
}

func TestEvalRootConjunction(t *testing.T) {
	ok, _ := Eval(nil, "Conjunction,Always,Never", "x")
	if ok {
		t.Error("root AND of true,false should be false")
	}
	ok, _ = Eval(nil, "Always,Never", "x")
	if !ok {
		t.Error("default root OR of true,false should be true")
	}
}

func TestEvalNewerThan(t *testing.T) {
	ctx := fakeCtx{v: engineversion.Version{Major: 5, Minor: 2, Patch: 0}}
	ok, _ := Eval(ctx, "NewerThan:5.1", "x")
	if !ok {
		t.Error("5.2.0 should be newer than 5.1")
	}
	ok, _ = Eval(ctx, "NewerThan:5.3", "x")
	if ok {
		t.Error("5.2.0 should not be newer than 5.3")
	}
}

func TestEvalTargetExists(t *testing.T) {
	ctx := fakeCtx{root: t.TempDir()}
	ok, _ := Eval(ctx, "TargetExists:nope.txt", "x")
	if ok {
		t.Error("nope.txt should not exist")
	}
}

func TestEvalIsTruthy(t *testing.T) {
	cases := map[string]bool{
		"5":       true,
		"0":       false,
		"-1":      false,
		"True":    true,
		"on":      true,
		"off":     false,
		"3==3":    true,
		"3!=3":    false,
		"3>2":     true,
		"foo==foo": true,
	}
	for v, want := range cases {
		got := isTruthy(v)
		if got != want {
			t.Errorf("isTruthy(%q) = %v, want %v", v, got, want)
		}
	}
}

func TestEvalUnknownKeywordWarns(t *testing.T) {
	ok, warns := Eval(nil, "Bogus:v", "x")
	if ok {
		t.Error("unknown keyword should evaluate false")
	}
	if len(warns) != 1 {
		t.Fatalf("expected one warning, got %v", warns)
	}
}
