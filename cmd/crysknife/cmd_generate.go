package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"crysknife/internal/logging"
	"crysknife/internal/patcher"
)

var (
	protectedFlag bool
	mergeModeFlag string
)

var generateCmd = &cobra.Command{
	Use:   "generate <plugin-dir>",
	Short: "Diff a plugin's guard-annotated engine edits into SourcePatch/*.patch",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		p, err := loadPlugin(args[0], engineRoot)
		if err != nil {
			return err
		}
		mode, err := parseMergeMode(mergeModeFlag)
		if err != nil {
			return err
		}
		return runGenerate(p, mode, protectedFlag)
	},
}

func init() {
	generateCmd.Flags().BoolVar(&protectedFlag, "protected", false, "Write .protected.patch (retains in-tree captures)")
	generateCmd.Flags().StringVar(&mergeModeFlag, "merge", "enabled", "Incremental merge mode: disabled|enabled|strict")
}

func parseMergeMode(s string) (patcher.MergeMode, error) {
	switch s {
	case "disabled":
		return patcher.MergeDisabled, nil
	case "enabled":
		return patcher.MergeEnabled, nil
	case "strict":
		return patcher.MergeStrict, nil
	default:
		return 0, fmt.Errorf("crysknife: unknown merge mode %q", s)
	}
}

func runGenerate(p *plugin, mode patcher.MergeMode, protected bool) error {
	log := logging.Get(logging.CategoryPatch)
	engine := newEngine()

	files, err := p.walk()
	if err != nil {
		return fmt.Errorf("crysknife generate: %w", err)
	}

	for _, f := range files {
		if !f.IsPatch {
			continue
		}
		after, err := os.ReadFile(f.EnginePath)
		if err != nil {
			log.Warn("skip %s: engine file unreadable: %v", f.RelPath, err)
			continue
		}
		before := p.Regex.Unpatch(string(after))

		fresh, warns, err := patcher.Generate(engine, before, string(after), p.Regex, p.Version)
		if err != nil {
			return fmt.Errorf("crysknife generate: %s: %w", f.RelPath, err)
		}
		for _, w := range warns {
			log.Warn("%s: %s", f.RelPath, w)
		}

		bundle := fresh
		if historyText := readOptional(f.PatchPath); historyText != "" {
			history, _, err := patcher.Deserialize(historyText, p.Format, p.Config.Vars, f.Protected, p.Version)
			if err != nil {
				log.Warn("%s: discarding unreadable history: %v", f.RelPath, err)
			} else {
				bundle = patcher.Merge(engine, mode, history, fresh, before, p.Version)
			}
		}

		dest := artifactPath(p.Root, f.RelPath, protected)
		if err := os.MkdirAll(filepath.Dir(dest), 0755); err != nil {
			return fmt.Errorf("crysknife generate: %w", err)
		}
		text := patcher.Serialize(bundle, p.Format, protected)
		if err := os.WriteFile(dest, []byte(text), 0644); err != nil {
			return fmt.Errorf("crysknife generate: writing %s: %w", dest, err)
		}
		consoleLog.Sugar().Infof("generated %s (%d hunks)", f.RelPath, len(bundle.Hunks))
	}
	return nil
}
