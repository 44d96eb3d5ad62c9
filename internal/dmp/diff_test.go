package dmp

import "testing"

func TestDiffMainRoundTrip(t *testing.T) {
	e := NewEngine()
	cases := []struct{ a, b string }{
		{"hello world", "hello there world"},
		{"the quick brown fox", "the slow brown fox jumps"},
		{"", "inserted"},
		{"deleted entirely", ""},
		{"same", "same"},
	}
	for _, c := range cases {
		diffs := e.DiffMain(c.a, c.b)
		if got := diffs.Text1(); got != c.a {
			t.Errorf("DiffMain(%q,%q).Text1() = %q, want %q", c.a, c.b, got, c.a)
		}
		if got := diffs.Text2(); got != c.b {
			t.Errorf("DiffMain(%q,%q).Text2() = %q, want %q", c.a, c.b, got, c.b)
		}
	}
}

func TestDiffCleanupSemanticMergesTrivialEquality(t *testing.T) {
	e := NewEngine()
	diffs := Diffs{
		{Op: DiffDelete, Text: "ab"},
		{Op: DiffEqual, Text: "cd"},
		{Op: DiffDelete, Text: "e"},
		{Op: DiffEqual, Text: "f"},
		{Op: DiffInsert, Text: "g"},
	}
	got := e.DiffCleanupSemantic(diffs)
	if got.Text1() != diffs.Text1() || got.Text2() != diffs.Text2() {
		t.Errorf("cleanup changed text: Text1 %q->%q Text2 %q->%q", diffs.Text1(), got.Text1(), diffs.Text2(), got.Text2())
	}
}

func TestDiffLevenshtein(t *testing.T) {
	diffs := Diffs{
		{Op: DiffEqual, Text: "abc"},
		{Op: DiffDelete, Text: "de"},
		{Op: DiffInsert, Text: "xyz"},
	}
	if got := DiffLevenshtein(diffs); got != 3 {
		t.Errorf("DiffLevenshtein() = %d, want 3", got)
	}
}

func TestDiffPrettyTextMarksOperations(t *testing.T) {
	diffs := Diffs{
		{Op: DiffEqual, Text: "a"},
		{Op: DiffDelete, Text: "b"},
		{Op: DiffInsert, Text: "c"},
	}
	got := DiffPrettyText(diffs)
	if got != "a[-b-]{+c+}" {
		t.Errorf("DiffPrettyText() = %q", got)
	}
}

func TestDiffMainLargeInputUsesLineMode(t *testing.T) {
	e := NewEngine()
	var a, b string
	for i := 0; i < 200; i++ {
		a += "line unchanged\n"
		b += "line unchanged\n"
	}
	a += "removed tail\n"
	b += "added tail\n"
	diffs := e.DiffMain(a, b)
	if diffs.Text1() != a {
		t.Fatalf("Text1 mismatch after line-mode diff")
	}
	if diffs.Text2() != b {
		t.Fatalf("Text2 mismatch after line-mode diff")
	}
}
