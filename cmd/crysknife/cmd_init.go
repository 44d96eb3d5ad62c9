package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
)

const defaultMainConfig = `[Global]
; Per-plugin patch configuration. See BaseCrysknife.ini for repo-wide
; defaults this file's rules cannot override unless ^Base-prefixed.

[Variables]
`

const defaultBaseConfig = `[Global]
; Repo-wide defaults loaded before every plugin's own Crysknife.ini.

[Variables]
`

var forceInit bool

var initCmd = &cobra.Command{
	Use:   "init <plugin-dir>",
	Short: "Scaffold a plugin's SourcePatch config and the repo-wide base config",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		pluginDir := args[0]
		root := filepath.Join(pluginDir, sourcePatchDir)
		if err := os.MkdirAll(root, 0755); err != nil {
			return fmt.Errorf("crysknife init: %w", err)
		}

		if err := writeIfAbsent(filepath.Join(root, mainConfigName), defaultMainConfig, forceInit); err != nil {
			return err
		}
		if err := writeIfAbsent(filepath.Join(root, cacheConfigName), "", forceInit); err != nil {
			return err
		}

		baseDir := filepath.Join(engineRoot, "Plugins", "Crysknife")
		if err := os.MkdirAll(baseDir, 0755); err != nil {
			return fmt.Errorf("crysknife init: %w", err)
		}
		if err := writeIfAbsent(filepath.Join(baseDir, "BaseCrysknife.ini"), defaultBaseConfig, false); err != nil {
			return err
		}

		consoleLog.Sugar().Infof("initialized %s against engine root %s", filepath.Base(pluginDir), engineRoot)
		return nil
	},
}

func init() {
	initCmd.Flags().BoolVarP(&forceInit, "force", "f", false, "Overwrite existing config files")
}

func writeIfAbsent(path, content string, force bool) error {
	if !force {
		if _, err := os.Stat(path); err == nil {
			return nil
		}
	}
	return os.WriteFile(path, []byte(content), 0644)
}
