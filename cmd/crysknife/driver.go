// Package main implements the crysknife CLI: a thin driver around the
// core patch engine. This file holds the shared plumbing every subcommand
// uses to load a plugin's configuration and walk its SourcePatch tree;
// cmd_*.go files hold one cobra command each.
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"crysknife/internal/dmp"
	"crysknife/internal/engineversion"
	"crysknife/internal/injection"
	"crysknife/internal/logging"
	"crysknife/internal/pconfig"
	"crysknife/internal/predicate"
	"crysknife/internal/tagpack"
)

const (
	mainConfigName  = "Crysknife.ini"
	localConfigName = "CrysknifeLocal.ini"
	cacheConfigName = "CrysknifeCache.ini"
	sourcePatchDir  = "SourcePatch"
)

// plugin bundles the config and injection state one CLI invocation needs
// to generate/apply/clear a single plugin against a single engine tree.
type plugin struct {
	Name       string
	Root       string // <plugin>/SourcePatch
	EngineRoot string
	Config     *pconfig.ConfigSystem
	Regex      *injection.Regex
	Format     tagpack.ConfiguredFormat
	Version    engineversion.Version
}

func readOptional(path string) string {
	data, err := os.ReadFile(path)
	if err != nil {
		return ""
	}
	return string(data)
}

// defaultConfiguredFormat matches the canonical "// <Tag>: Begin"/": End"
// spelling verbatim, so Pack/Unpack is the identity transform unless a
// plugin's config overrides it — a reasonable default for a driver that
// doesn't (yet) read CommentTagFormat overrides out of Crysknife.ini.
func defaultConfiguredFormat() tagpack.ConfiguredFormat {
	return tagpack.ConfiguredFormat{
		Prefix: tagpack.Field{Pattern: regexp.MustCompile(`// `), Template: "// ${Tag}"},
		Suffix: tagpack.Field{Pattern: regexp.MustCompile(``)},
		Begin:  tagpack.Field{Pattern: regexp.MustCompile(`: Begin`), Template: "// ${Tag}: Begin"},
		End:    tagpack.Field{Pattern: regexp.MustCompile(`: End`), Template: "// ${Tag}: End"},
	}
}

// loadPlugin reads a plugin's SourcePatch config stack (repo-wide
// BaseCrysknife.ini, the plugin's own Crysknife.ini/CrysknifeLocal.ini)
// and builds its ConfigSystem and injection regex, per spec §4.6/§6.1.
func loadPlugin(pluginDir, engineRoot string) (*plugin, error) {
	log := logging.Get(logging.CategoryConfig)

	name := filepath.Base(pluginDir)
	root := filepath.Join(pluginDir, sourcePatchDir)

	version, err := engineversion.ReadFromHeader(engineRoot)
	if err != nil {
		log.Warn("could not read engine version header: %v", err)
	} else {
		engineversion.Set(version)
	}

	ctx := predicate.Global{Root: engineRoot}

	baseText := readOptional(filepath.Join(engineRoot, "Plugins", "Crysknife", "BaseCrysknife.ini"))
	mainText := readOptional(filepath.Join(root, mainConfigName))
	overrides := readOptional(filepath.Join(root, localConfigName))

	cs, err := pconfig.Build(name, baseText, mainText, overrides, ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("crysknife: loading %s: %w", name, err)
	}
	for _, w := range cs.Warnings {
		log.Warn("%s", w.Error())
	}

	format := defaultConfiguredFormat()
	regex := injection.Compile(name, injection.DefaultCommentTagFormat())

	return &plugin{
		Name:       name,
		Root:       root,
		EngineRoot: engineRoot,
		Config:     cs,
		Regex:      regex,
		Format:     format,
		Version:    engineversion.Current(),
	}, nil
}

// managedFile is one file crysknife tracks under a plugin's SourcePatch
// tree: either a serialized patch (IsPatch) mirroring an existing engine
// file, or a new file copied verbatim when the engine file is absent.
type managedFile struct {
	RelPath    string // relative to SourcePatch/, patch extension stripped
	PatchPath  string // absolute path of the artifact under SourcePatch/
	EnginePath string // absolute path of the managed engine file
	IsPatch    bool
	Protected  bool
}

// walk enumerates every managed file under p.Root, applying the plugin's
// Skip/Flatten/Remap rules to compute each one's engine-tree destination.
func (p *plugin) walk() ([]managedFile, error) {
	var files []managedFile
	ctx := predicate.Global{Root: p.EngineRoot}

	err := filepath.WalkDir(p.Root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		base := d.Name()
		if base == mainConfigName || base == localConfigName || base == cacheConfigName {
			return nil
		}

		rel, err := filepath.Rel(p.Root, path)
		if err != nil {
			return err
		}
		rel = filepath.ToSlash(rel)

		protected := strings.HasSuffix(rel, ".protected.patch")
		isPatch := protected || strings.HasSuffix(rel, ".patch")
		lookup := rel
		switch {
		case protected:
			lookup = strings.TrimSuffix(rel, ".protected.patch")
		case isPatch:
			lookup = strings.TrimSuffix(rel, ".patch")
		}

		res, warnings := p.Config.Hierarchy.Resolve(ctx, lookup, isPatch)
		for _, w := range warnings {
			logging.Get(logging.CategoryConfig).Warn("%s", w.Error())
		}
		if res.Skipped {
			logging.Get(logging.CategoryConfig).Debug("skip %s", rel)
			return nil
		}

		dest := res.Dest
		if isPatch {
			dest = strings.TrimSuffix(dest, ".patch")
		}

		files = append(files, managedFile{
			RelPath:    lookup,
			PatchPath:  path,
			EnginePath: filepath.Join(p.EngineRoot, filepath.FromSlash(dest)),
			IsPatch:    isPatch,
			Protected:  protected,
		})
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Slice(files, func(i, j int) bool { return files[i].RelPath < files[j].RelPath })
	return files, nil
}

// artifactPath returns the on-disk SourcePatch path a managed file's
// serialized patch should be written to, given whether it is protected.
func artifactPath(root, relPath string, protected bool) string {
	if protected {
		return filepath.Join(root, filepath.FromSlash(relPath)+".protected.patch")
	}
	return filepath.Join(root, filepath.FromSlash(relPath)+".patch")
}

// newEngine returns a fresh diff-match-patch engine with default
// parameters; each subcommand run creates one and uses it for every file
// it processes. dmp.Engine holds only tunable parameters, no per-call
// state.
func newEngine() *dmp.Engine {
	return dmp.NewEngine()
}
