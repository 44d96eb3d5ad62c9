package injection

import "testing"

func TestUnpatchMultilineInjection(t *testing.T) {
	r := Compile("Plug", DefaultCommentTagFormat())
	content := "int a;\n// Plug: Begin\nINJ\n// Plug: End\nint b;"
	got := r.Unpatch(content)
	want := "int a;\nint b;"
	if got != want {
		t.Errorf("Unpatch() = %q, want %q", got, want)
	}
}

func TestUnpatchDeletionRestore(t *testing.T) {
	r := Compile("Plug", DefaultCommentTagFormat())
	content := "// Plug-was-x: Begin\n// int x = 1;\n// Plug: End\nint x = 2;"
	got := r.Unpatch(content)
	want := "int x = 1;\nint x = 2;"
	if got != want {
		t.Errorf("Unpatch() = %q, want %q", got, want)
	}
}

func TestUnpatchIsNoopWithoutTag(t *testing.T) {
	r := Compile("Plug", DefaultCommentTagFormat())
	content := "int a;\nint b;\n// unrelated comment\n"
	if got := r.Unpatch(content); got != content {
		t.Errorf("Unpatch() modified untagged content: %q", got)
	}
}

func TestUnpatchNestedRegions(t *testing.T) {
	r := Compile("Plug", DefaultCommentTagFormat())
	content := "before\n" +
		"// Plug: Begin\n" +
		"outer-start\n" +
		"// Plug: Begin\n" +
		"inner\n" +
		"// Plug: End\n" +
		"outer-end\n" +
		"// Plug: End\n" +
		"after"
	got := r.Unpatch(content)
	want := "before\nafter"
	if got != want {
		t.Errorf("Unpatch() with nested regions = %q, want %q", got, want)
	}
}

func TestUnpatchSingleline(t *testing.T) {
	r := Compile("Plug", DefaultCommentTagFormat())
	content := "int injected = 1; // Plug\nint kept = 2;"
	got := r.Unpatch(content)
	want := "\nint kept = 2;"
	if got != want {
		t.Errorf("Unpatch() singleline = %q, want %q", got, want)
	}
}

func TestUnpatchNextline(t *testing.T) {
	r := Compile("Plug", DefaultCommentTagFormat())
	content := "// Plug\nint injected = 1;\nint kept = 2;"
	got := r.Unpatch(content)
	want := "int kept = 2;"
	if got != want {
		t.Errorf("Unpatch() nextline = %q, want %q", got, want)
	}
}

func TestClearResidualKeepsOwnerTag(t *testing.T) {
	format := DefaultCommentTagFormat()
	content := "head\n// Owner: Begin\nmine\n// Owner: End\n" +
		"// Sibling: Begin\ntheirs\n// Sibling: End\ntail"
	got := ClearResidual(content, "Owner", format, []string{"Owner", "Sibling"})
	want := "head\n// Owner: Begin\nmine\n// Owner: End\ntail"
	if got != want {
		t.Errorf("ClearResidual() = %q, want %q", got, want)
	}
}

func TestComposerAppliesEveryPlugin(t *testing.T) {
	c := NewComposer(DefaultCommentTagFormat(), "A", "B")
	content := "// A: Begin\nfromA\n// A: End\n// B: Begin\nfromB\n// B: End\nrest"
	got := c.Unpatch(content)
	if got != "rest" {
		t.Errorf("Composer.Unpatch() = %q, want %q", got, "rest")
	}
}
