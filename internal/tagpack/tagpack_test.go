package tagpack

import (
	"regexp"
	"testing"
)

func simpleFormat() ConfiguredFormat {
	return ConfiguredFormat{
		Prefix: Field{Pattern: regexp.MustCompile(`// `), Template: "// ${Tag}"},
		Suffix: Field{Pattern: regexp.MustCompile(``)},
		Begin:  Field{Pattern: regexp.MustCompile(`: Begin`), Template: "// ${Tag}: Begin"},
		End:    Field{Pattern: regexp.MustCompile(`: End`), Template: "// ${Tag}: End"},
	}
}

func TestPackRewritesToCanonical(t *testing.T) {
	text := "int a;\n// Plug: Begin\nX\n// Plug: End\nint b;"
	out, results := Pack(text, simpleFormat(), false)
	if out != text {
		t.Errorf("Pack on already-canonical text changed it: %q", out)
	}
	if len(results) != 2 {
		t.Fatalf("expected 2 matches, got %d", len(results))
	}
}

func TestUnpackExpandsVariables(t *testing.T) {
	format := ConfiguredFormat{
		Prefix: Field{Template: "// ${Tag}"},
		Begin:  Field{Template: "// ${Tag}: Begin [${Ver|unknown}]"},
		End:    Field{Template: "// ${Tag}: End"},
	}
	text := "// Plug: Begin"
	out, warns := Unpack(text, format, map[string]string{}, nil)
	if len(warns) != 0 {
		t.Fatalf("unexpected warnings: %v", warns)
	}
	want := "// Plug: Begin [unknown]"
	if out != want {
		t.Errorf("Unpack() = %q, want %q", out, want)
	}
}

func TestUnpackWarnsOnUnresolvedVariable(t *testing.T) {
	format := ConfiguredFormat{Prefix: Field{Template: "// ${Tag} ${Missing}"}}
	out, warns := Unpack("// Plug", format, nil, nil)
	if len(warns) != 1 {
		t.Fatalf("expected 1 warning, got %v", warns)
	}
	if out != "// Plug ${Missing}" {
		t.Errorf("unresolved variable should be left literal, got %q", out)
	}
}
