package dmp

import "testing"

func TestPatchMakeAndApplyRoundTrip(t *testing.T) {
	e := NewEngine()
	before := "The quick brown fox jumps over the lazy dog."
	after := "The quick brown fox leaps over the lazy hound."

	patches := e.PatchMake(before, after)
	if len(patches) == 0 {
		t.Fatal("PatchMake returned no hunks for a changed document")
	}

	result := e.PatchApply(patches, before)
	if result.Text != after {
		t.Errorf("PatchApply() = %q, want %q", result.Text, after)
	}
	for i, ok := range result.Applied {
		if !ok {
			t.Errorf("hunk %d failed to apply against its own source text", i)
		}
	}
}

func TestPatchApplyToleratesDrift(t *testing.T) {
	e := NewEngine()
	before := "line one\nline two\nline three\n"
	after := "line one\nline TWO\nline three\n"
	patches := e.PatchMake(before, after)

	drifted := "prefix context\n" + before + "suffix context\n"
	result := e.PatchApply(patches, drifted)
	want := "prefix context\n" + after + "suffix context\n"
	if result.Text != want {
		t.Errorf("PatchApply with drift = %q, want %q", result.Text, want)
	}
}

func TestPatchApplySkipsSkippedHunks(t *testing.T) {
	e := NewEngine()
	patches := e.PatchMake("hello world", "hello there world")
	for i := range patches {
		patches[i].Skip = SkipTrue
	}
	result := e.PatchApply(patches, "hello world")
	if result.Text != "hello world" {
		t.Errorf("PatchApply with all hunks skipped = %q, want unchanged text", result.Text)
	}
}

func TestPatchConstrainTrimsContext(t *testing.T) {
	e := NewEngine()
	p := NewPatch()
	p.Diffs = Diffs{
		{Op: DiffEqual, Text: "abcd"},
		{Op: DiffDelete, Text: "X"},
		{Op: DiffInsert, Text: "Y"},
		{Op: DiffEqual, Text: "wxyz"},
	}
	p.Length1, p.Length2 = 6, 6
	p.ContextDir = ContextUpper
	p.ContextLength = 2

	got := e.PatchConstrain(p)
	if got.Diffs[0].Text != "cd" {
		t.Errorf("leading context = %q, want %q", got.Diffs[0].Text, "cd")
	}
	last := got.Diffs[len(got.Diffs)-1]
	if last.Op == DiffEqual {
		t.Errorf("trailing context should have been dropped entirely, got %q", last.Text)
	}
}

func TestPatchSplitMaxHandlesOversizedHunks(t *testing.T) {
	e := NewEngine()
	e.MatchMaxBits = 16
	before := "0123456789abcdefghijklmnopqrstuvwxyz"
	after := "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZ"
	patches := e.PatchMake(before, after)
	result := e.PatchApply(patches, before)
	if result.Text != after {
		t.Errorf("PatchApply after split_max = %q, want %q", result.Text, after)
	}
}
