package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"crysknife/internal/logging"
	"crysknife/internal/patcher"
)

var dryRun bool

var applyCmd = &cobra.Command{
	Use:   "apply <plugin-dir>",
	Short: "Fuzzy-apply a plugin's SourcePatch onto the engine tree",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		p, err := loadPlugin(args[0], engineRoot)
		if err != nil {
			return err
		}
		return runApply(p, dryRun)
	},
}

func init() {
	applyCmd.Flags().BoolVar(&dryRun, "dry-run", false, "Report what would change without writing")
}

func runApply(p *plugin, dryRun bool) error {
	log := logging.Get(logging.CategoryApply)
	engine := newEngine()

	files, err := p.walk()
	if err != nil {
		return fmt.Errorf("crysknife apply: %w", err)
	}

	for _, f := range files {
		if !f.IsPatch {
			if _, err := os.Stat(f.EnginePath); err == nil {
				continue // new-file copy already present; apply is a no-op
			}
			if dryRun {
				consoleLog.Sugar().Infof("would copy new file %s", f.RelPath)
				continue
			}
			if err := copyNewFile(f.PatchPath, f.EnginePath); err != nil {
				return fmt.Errorf("crysknife apply: copying %s: %w", f.RelPath, err)
			}
			consoleLog.Sugar().Infof("copied new file %s", f.RelPath)
			continue
		}

		text := readOptional(f.PatchPath)
		if text == "" {
			continue
		}
		bundle, warns, err := patcher.Deserialize(text, p.Format, p.Config.Vars, f.Protected, p.Version)
		if err != nil {
			return fmt.Errorf("crysknife apply: %s: %w", f.RelPath, err)
		}
		for _, w := range warns {
			log.Warn("%s: %s", f.RelPath, w)
		}

		current := readOptional(f.EnginePath)
		result, failures, applied := patcher.Apply(engine, bundle, current)
		for _, fail := range failures {
			log.Error("%s", fail.RenderText())
			consoleLog.Sugar().Warnf("%s: hunk %d failed to apply", f.RelPath, fail.HunkIndex)
		}
		if !applied {
			consoleLog.Sugar().Errorf("%s: no hunks applied", f.RelPath)
			continue
		}
		if dryRun {
			consoleLog.Sugar().Infof("would apply %s", f.RelPath)
			continue
		}
		if err := os.MkdirAll(filepath.Dir(f.EnginePath), 0755); err != nil {
			return fmt.Errorf("crysknife apply: %w", err)
		}
		if err := os.WriteFile(f.EnginePath, []byte(result), 0644); err != nil {
			return fmt.Errorf("crysknife apply: writing %s: %w", f.EnginePath, err)
		}
		consoleLog.Sugar().Infof("applied %s", f.RelPath)
	}
	return nil
}

func copyNewFile(src, dst string) error {
	data, err := os.ReadFile(src)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(dst), 0755); err != nil {
		return err
	}
	return os.WriteFile(dst, data, 0644)
}
