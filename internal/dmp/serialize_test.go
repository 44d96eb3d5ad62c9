package dmp

import "testing"

func TestPatchTextRoundTrip(t *testing.T) {
	e := NewEngine()
	before := "alpha beta gamma delta"
	after := "alpha BETA gamma DELTA extra"
	patches := e.PatchMake(before, after)

	text := PatchToText(patches)
	parsed, err := PatchFromText(text)
	if err != nil {
		t.Fatalf("PatchFromText: %v", err)
	}
	if len(parsed) != len(patches) {
		t.Fatalf("round-trip hunk count = %d, want %d", len(parsed), len(patches))
	}

	result := e.PatchApply(parsed, before)
	if result.Text != after {
		t.Errorf("PatchApply(parsed) = %q, want %q", result.Text, after)
	}

	if PatchToText(parsed) != text {
		t.Errorf("serialize(parse(text)) != text")
	}
}

func TestPatchFromTextRejectsBadHeader(t *testing.T) {
	if _, err := PatchFromText("not a patch header\n"); err == nil {
		t.Error("expected an error for a malformed patch header")
	}
}

func TestPatchFromTextEmpty(t *testing.T) {
	patches, err := PatchFromText("")
	if err != nil {
		t.Fatalf("PatchFromText(\"\"): %v", err)
	}
	if len(patches) != 0 {
		t.Errorf("PatchFromText(\"\") returned %d hunks, want 0", len(patches))
	}
}
