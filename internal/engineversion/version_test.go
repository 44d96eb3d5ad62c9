package engineversion

import "testing"

func TestNewerThan(t *testing.T) {
	v := MustParse("5.1.0")
	if !v.NewerThan(v) {
		t.Error("a version must be newer-than-or-equal to itself")
	}
	if !MustParse("5.1.0").NewerThan(MustParse("5.0.99")) {
		t.Error("5.1.0 should be newer than 5.0.99")
	}
	if !MustParse("5.0.0").NewerThan(MustParse("5.0")) {
		t.Error("5.0.0 should be newer-than-or-equal to 5.0 (missing patch defaults to 0)")
	}
	if MustParse("5.0.0").NewerThan(MustParse("5.0.1")) {
		t.Error("5.0.0 should not be newer than 5.0.1")
	}
}

func TestParseErrors(t *testing.T) {
	if _, err := Parse("not-a-version"); err == nil {
		t.Error("expected parse error")
	}
}

func TestCurrentVersionGlobal(t *testing.T) {
	Set(MustParse("5.3.1"))
	if !IsSet() {
		t.Error("expected IsSet true after Set")
	}
	if Current().Compare(MustParse("5.3.1")) != 0 {
		t.Errorf("Current() = %v, want 5.3.1", Current())
	}
}
