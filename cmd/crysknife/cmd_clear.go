package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"crysknife/internal/logging"
)

var clearAllHistory bool

var clearCmd = &cobra.Command{
	Use:   "clear <plugin-dir>",
	Short: "Strip a plugin's guarded edits back out of the engine tree",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		p, err := loadPlugin(args[0], engineRoot)
		if err != nil {
			return err
		}
		return runClear(p)
	},
}

func init() {
	clearCmd.Flags().BoolVar(&clearAllHistory, "all-history", false, "Also remove the serialized SourcePatch artifacts")
}

func runClear(p *plugin) error {
	log := logging.Get(logging.CategoryInjection)

	files, err := p.walk()
	if err != nil {
		return fmt.Errorf("crysknife clear: %w", err)
	}

	for _, f := range files {
		if !f.IsPatch {
			if err := os.Remove(f.EnginePath); err != nil && !os.IsNotExist(err) {
				return fmt.Errorf("crysknife clear: removing %s: %w", f.EnginePath, err)
			}
			consoleLog.Sugar().Infof("removed new file %s", f.RelPath)
			continue
		}

		current := readOptional(f.EnginePath)
		if current == "" {
			continue
		}
		cleared := p.Regex.Unpatch(current)
		if cleared == current {
			log.Debug("%s: nothing to clear", f.RelPath)
			continue
		}
		if err := os.WriteFile(f.EnginePath, []byte(cleared), 0644); err != nil {
			return fmt.Errorf("crysknife clear: writing %s: %w", f.EnginePath, err)
		}
		consoleLog.Sugar().Infof("cleared %s", f.RelPath)

		if clearAllHistory {
			if err := os.Remove(f.PatchPath); err != nil && !os.IsNotExist(err) {
				return fmt.Errorf("crysknife clear: removing %s: %w", f.PatchPath, err)
			}
		}
	}
	return nil
}
