package decorator

import (
	"testing"

	"crysknife/internal/dmp"
	"crysknife/internal/engineversion"
)

func TestExtractFindsMultipleDirectives(t *testing.T) {
	text := "// Plug: @Crysknife(MatchContext=Upper,MatchLength=10)\nINJ"
	got := Extract(text)
	if len(got) != 2 {
		t.Fatalf("expected 2 directives, got %v", got)
	}
	if got[0].Key != "MatchContext" || got[0].Value != "Upper" {
		t.Errorf("unexpected first directive: %+v", got[0])
	}
}

func TestApplyConflictingMatchContextErrors(t *testing.T) {
	d := NewDecoration()
	if err := d.Apply(Directive{Key: "MatchContext", Value: "Upper"}, engineversion.Version{}); err != nil {
		t.Fatal(err)
	}
	if err := d.Apply(Directive{Key: "MatchContext", Value: "Lower"}, engineversion.Version{}); err == nil {
		t.Error("expected conflict error")
	}
}

func TestApplyIdempotent(t *testing.T) {
	d := NewDecoration()
	if err := d.Apply(Directive{Key: "MatchLength", Value: "10"}, engineversion.Version{}); err != nil {
		t.Fatal(err)
	}
	if err := d.Apply(Directive{Key: "MatchLength", Value: "10"}, engineversion.Version{}); err != nil {
		t.Errorf("repeating identical directive should be a no-op, got %v", err)
	}
}

func TestUnknownDirectiveWarnsNotErrors(t *testing.T) {
	d := NewDecoration()
	if err := d.Apply(Directive{Key: "Bogus", Value: "x"}, engineversion.Version{}); err != nil {
		t.Fatalf("unknown directive should not error: %v", err)
	}
	if len(d.Warnings) != 1 {
		t.Errorf("expected 1 warning, got %v", d.Warnings)
	}
}

func TestEngineVersionGateSkip(t *testing.T) {
	patch, _, err := ForHunk(dmp.NewPatch(), "@Crysknife(EngineNewerThan=5.2)", engineversion.Version{Major: 5, Minor: 1})
	if err != nil {
		t.Fatal(err)
	}
	if patch.Skip != dmp.SkipTrue {
		t.Errorf("engine 5.1 should be skipped by EngineNewerThan=5.2, got %v", patch.Skip)
	}

	patch, _, err = ForHunk(dmp.NewPatch(), "@Crysknife(EngineNewerThan=5.2)", engineversion.Version{Major: 5, Minor: 3})
	if err != nil {
		t.Fatal(err)
	}
	if patch.Skip != dmp.SkipFalse {
		t.Errorf("engine 5.3 should not be skipped by EngineNewerThan=5.2, got %v", patch.Skip)
	}
}
