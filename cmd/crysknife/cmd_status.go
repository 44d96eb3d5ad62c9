package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var reportFlag bool

var statusCmd = &cobra.Command{
	Use:   "status <plugin-dir>",
	Short: "Report which engine files a plugin manages and their current state",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		p, err := loadPlugin(args[0], engineRoot)
		if err != nil {
			return err
		}
		return runStatus(p, reportFlag)
	},
}

func init() {
	statusCmd.Flags().BoolVar(&reportFlag, "report", false, "Emit a machine-readable YAML report instead of text")
}

// FileStatus is one managed file's reported state, the structured summary
// --report emits as YAML for scripting.
type FileStatus struct {
	Path      string `yaml:"path"`
	Kind      string `yaml:"kind"` // "patch" or "new-file"
	Protected bool   `yaml:"protected,omitempty"`
	EngineHas bool   `yaml:"engine_has_file"`
	Artifact  bool   `yaml:"artifact_exists"`
}

// Report is the top-level --report document.
type Report struct {
	Plugin     string       `yaml:"plugin"`
	EngineRoot string       `yaml:"engine_root"`
	Version    string       `yaml:"engine_version"`
	Files      []FileStatus `yaml:"files"`
}

func runStatus(p *plugin, asReport bool) error {
	files, err := p.walk()
	if err != nil {
		return fmt.Errorf("crysknife status: %w", err)
	}

	report := Report{Plugin: p.Name, EngineRoot: p.EngineRoot, Version: p.Version.String()}
	for _, f := range files {
		kind := "new-file"
		if f.IsPatch {
			kind = "patch"
		}
		_, engineErr := os.Stat(f.EnginePath)
		_, artifactErr := os.Stat(f.PatchPath)
		report.Files = append(report.Files, FileStatus{
			Path:      f.RelPath,
			Kind:      kind,
			Protected: f.Protected,
			EngineHas: engineErr == nil,
			Artifact:  artifactErr == nil,
		})
	}

	if asReport {
		data, err := yaml.Marshal(report)
		if err != nil {
			return fmt.Errorf("crysknife status: %w", err)
		}
		fmt.Print(string(data))
		return nil
	}

	for _, f := range report.Files {
		fmt.Printf("%-8s %-30s engine=%v artifact=%v\n", f.Kind, f.Path, f.EngineHas, f.Artifact)
	}
	return nil
}
