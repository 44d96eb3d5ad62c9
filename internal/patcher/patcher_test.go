package patcher

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"crysknife/internal/dmp"
	"crysknife/internal/engineversion"
	"crysknife/internal/injection"
	"crysknife/internal/tagpack"
)

func TestGenerateSplitsOnInjectionBoundary(t *testing.T) {
	before := "int a;\nint b;\n"
	after := "int a;\n// Acme: Begin\nint injected;\n// Acme: End\nint b;\n"

	engine := dmp.NewEngine()
	regex := injection.Compile("Acme", injection.DefaultCommentTagFormat())

	bundle, _, err := Generate(engine, before, after, regex, engineversion.Version{})
	require.NoError(t, err)
	require.NotEmpty(t, bundle.Hunks)

	result := engine.PatchApply(bundle.Hunks, before)
	require.Equal(t, after, result.Text)
}

func TestGenerateAppliesEngineVersionGate(t *testing.T) {
	before := "int a;\n"
	after := "int a;\n// Acme: Begin\n// @Crysknife(EngineNewerThan=10.0)\nint injected;\n// Acme: End\n"

	engine := dmp.NewEngine()
	regex := injection.Compile("Acme", injection.DefaultCommentTagFormat())

	bundle, _, err := Generate(engine, before, after, regex, engineversion.Version{Major: 1})
	require.NoError(t, err)

	foundSkip := false
	for _, h := range bundle.Hunks {
		if h.Skip == dmp.SkipTrue {
			foundSkip = true
		}
	}
	require.True(t, foundSkip, "a hunk gated by EngineNewerThan=10.0 under engine 1.0 should be marked skip")
}

func TestSerializeDeserializeRoundTrip(t *testing.T) {
	before := "int a;\n"
	after := "int a;\n// Acme: Begin\nint injected;\n// Acme: End\n"

	engine := dmp.NewEngine()
	regex := injection.Compile("Acme", injection.DefaultCommentTagFormat())
	bundle, _, err := Generate(engine, before, after, regex, engineversion.Version{})
	require.NoError(t, err)

	// protected=true exercises patch_to_text/patch_from_text and decorator
	// reconstruction without tagpack's in-tree regex matching, which is
	// covered directly by the tagpack package's own tests.
	format := tagpack.ConfiguredFormat{}
	text := Serialize(bundle, format, true)
	require.Contains(t, text, "@@")

	reloaded, _, err := Deserialize(text, format, nil, true, engineversion.Version{})
	require.NoError(t, err)
	require.Equal(t, len(bundle.Hunks), len(reloaded.Hunks))

	result := engine.PatchApply(reloaded.Hunks, before)
	require.Equal(t, after, result.Text)
}

func TestProtectedSerializeSkipsPacking(t *testing.T) {
	before := "int a;\n"
	after := "int a;\n// Acme: Begin\nint injected;\n// Acme: End\n"

	engine := dmp.NewEngine()
	regex := injection.Compile("Acme", injection.DefaultCommentTagFormat())
	bundle, _, err := Generate(engine, before, after, regex, engineversion.Version{})
	require.NoError(t, err)

	text := Serialize(bundle, tagpack.ConfiguredFormat{}, true)
	require.True(t, strings.Contains(text, "Acme"))
}

func TestApplyReportsFailureForUnmatchableHunk(t *testing.T) {
	h := dmp.NewPatch()
	h.Diffs = dmp.Diffs{
		{Op: dmp.DiffEqual, Text: "totally unrelated context that will not be found anywhere near here"},
		{Op: dmp.DiffInsert, Text: "injected"},
	}
	h.Length1 = len([]rune("totally unrelated context that will not be found anywhere near here"))
	h.Length2 = h.Length1 + len("injected")

	engine := dmp.NewEngine()
	bundle := newBundle([]dmp.Patch{h})

	_, failures, applied := Apply(engine, bundle, "nothing matches this at all")
	require.False(t, applied)
	require.Len(t, failures, 1)
}

func TestMergeDisabledKeepsSkippedHistory(t *testing.T) {
	skipped := dmp.NewPatch()
	skipped.Skip = dmp.SkipTrue
	skipped.Diffs = dmp.Diffs{{Op: dmp.DiffInsert, Text: "old"}}

	history := newBundle([]dmp.Patch{skipped})
	fresh := newBundle(nil)

	merged := Merge(dmp.NewEngine(), MergeDisabled, history, fresh, "", engineversion.Version{})
	require.Len(t, merged.Hunks, 1)
	require.Equal(t, dmp.SkipTrue, merged.Hunks[0].Skip)
}

func TestMergeStrictPreservesHistoryOverNearEqualNewHunk(t *testing.T) {
	text := "leading context line\ninserted text\ntrailing context line\n"

	histHunk := dmp.NewPatch()
	histHunk.Diffs = dmp.Diffs{
		{Op: dmp.DiffEqual, Text: "leading context line\n"},
		{Op: dmp.DiffInsert, Text: "inserted text\n"},
		{Op: dmp.DiffEqual, Text: "trailing context line\n"},
	}
	histHunk.Start2 = 0
	histHunk.Length1 = len([]rune("leading context line\ntrailing context line\n"))
	histHunk.Length2 = len([]rune(text))

	// A near-equal (Levenshtein < 3 once trimmed) regeneration of the same
	// insert, as patch_make would produce if the file were unchanged.
	freshHunk := dmp.NewPatch()
	freshHunk.Diffs = dmp.Diffs{
		{Op: dmp.DiffEqual, Text: "leading context line\n"},
		{Op: dmp.DiffInsert, Text: "inserted text!\n"},
		{Op: dmp.DiffEqual, Text: "trailing context line\n"},
	}
	freshHunk.Start2 = 0
	freshHunk.Length1 = histHunk.Length1
	freshHunk.Length2 = len([]rune("leading context line\ninserted text!\ntrailing context line\n"))

	history := newBundle([]dmp.Patch{histHunk})
	fresh := newBundle([]dmp.Patch{freshHunk})

	merged := Merge(dmp.NewEngine(), MergeStrict, history, fresh, text, engineversion.Version{})
	require.Len(t, merged.Hunks, 1, "history should be preserved and the near-equal new hunk discarded")
	require.Equal(t, "inserted text\n", merged.Hunks[0].Diffs[1].Text)
}
