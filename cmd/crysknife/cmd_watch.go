package main

import (
	"fmt"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	"crysknife/internal/logging"
	"crysknife/internal/patcher"
)

var watchDebounce time.Duration

var watchCmd = &cobra.Command{
	Use:   "watch <plugin-dir>",
	Short: "Watch a plugin's SourcePatch directory and re-run generate when it changes",
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
		return runWatch(p, mode)
	},
}

func init() {
	watchCmd.Flags().StringVar(&mergeModeFlag, "merge", "enabled", "Incremental merge mode: disabled|enabled|strict")
	watchCmd.Flags().DurationVar(&watchDebounce, "debounce", 500*time.Millisecond, "Debounce window for batching rapid saves")
}

// runWatch re-runs generate on p once up front, then again on a debounced
// timer whenever fsnotify reports a write, create, remove or rename in
// p's SourcePatch directory (its top level only; subdirectories are not
// watched) — the
// same debounced-ticker shape the teacher's Mangle file watcher uses.
func runWatch(p *plugin, mode patcher.MergeMode) error {
	log := logging.Get(logging.CategoryCLI)

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("crysknife watch: %w", err)
	}
	defer watcher.Close()

	if err := watcher.Add(p.Root); err != nil {
		return fmt.Errorf("crysknife watch: %w", err)
	}
	consoleLog.Sugar().Infof("watching %s", p.Root)

	if err := runGenerate(p, mode, protectedFlag); err != nil {
		log.Error("initial generate failed: %v", err)
	}

	dirty := false
	ticker := time.NewTicker(watchDebounce)
	defer ticker.Stop()

	for {
		select {
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) != 0 {
				dirty = true
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			log.Error("watch error: %v", err)
		case <-ticker.C:
			if !dirty {
				continue
			}
			dirty = false
			if err := runGenerate(p, mode, protectedFlag); err != nil {
				log.Error("generate failed: %v", err)
				consoleLog.Sugar().Errorf("generate failed: %v", err)
				continue
			}
			consoleLog.Sugar().Info("regenerated after change")
		}
	}
}
