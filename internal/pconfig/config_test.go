package pconfig

import (
	"testing"

	"github.com/stretchr/testify/require"

	"crysknife/internal/engineversion"
)

type testCtx struct{ root string }

func (c testCtx) EngineRoot() string                   { return c.root }
func (c testCtx) CurrentVersion() engineversion.Version { return engineversion.Version{} }

func TestBuildResolvesVariablesAndHierarchy(t *testing.T) {
	main := `
[Variables]
PluginName=Acme
Greeting=Hello, ${PluginName}

[Source/Private]
SkipIf=Always:1

[Global]
FlattenIf=Never:1
`
	cs, err := Build("Acme", "", main, "", testCtx{}, nil)
	require.NoError(t, err)
	require.Equal(t, "Hello, Acme", cs.Vars["Greeting"])

	res, _ := cs.Hierarchy.Resolve(testCtx{}, "Source/Private/File.h", false)
	require.True(t, res.Skipped)
}

func TestBuildBaseDomainSurvivesUserOverride(t *testing.T) {
	base := `
[Global]
^BaseSkipIf=Always:1
`
	main := `
[Global]
SkipIf=Never:1
`
	cs, err := Build("Acme", base, main, "", testCtx{}, nil)
	require.NoError(t, err)

	res, _ := cs.Hierarchy.Resolve(testCtx{}, "Any/File.h", false)
	require.True(t, res.Skipped, "Base-domain SkipIf must still fire even though the user domain says Never")
}

func TestBuildDependenciesRecurse(t *testing.T) {
	main := `
[Dependencies]
Widgets=1
`
	loader := func(name string) (string, error) {
		require.Equal(t, "Widgets", name)
		return "[Variables]\nOwner=Acme\n", nil
	}
	cs, err := Build("Acme", "", main, "", testCtx{}, loader)
	require.NoError(t, err)
	require.Contains(t, cs.Children, "Widgets")
	require.Equal(t, "Acme", cs.Children["Widgets"].Vars["Owner"])
}

func TestSelectLocalConfigRejectsMultipleActive(t *testing.T) {
	candidates := map[string]string{
		"Alice": "[Variables]\nCRYSKNIFE_LOCAL_CONFIG_PREDICATE=Always:1\n",
		"Bob":   "[Variables]\nCRYSKNIFE_LOCAL_CONFIG_PREDICATE=Always:1\n",
	}
	_, err := SelectLocalConfig(candidates, testCtx{})
	require.Error(t, err)
}

func TestSelectLocalConfigPicksSoleActive(t *testing.T) {
	candidates := map[string]string{
		"Alice": "[Variables]\nCRYSKNIFE_LOCAL_CONFIG_PREDICATE=Never:1\n",
		"Bob":   "[Variables]\nCRYSKNIFE_LOCAL_CONFIG_PREDICATE=Always:1\n",
	}
	tag, err := SelectLocalConfig(candidates, testCtx{})
	require.NoError(t, err)
	require.Equal(t, "Bob", tag)
}

func TestCacheRoundTrip(t *testing.T) {
	c := Cache{LocalConfigSuffix: "Bob", Children: []string{"Widgets", "Gadgets"}}
	parsed, err := ParseCache(c.String())
	require.NoError(t, err)
	require.Equal(t, c.LocalConfigSuffix, parsed.LocalConfigSuffix)
	require.ElementsMatch(t, c.Children, parsed.Children)
}
