package logging

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func resetState() {
	CloseAll()
	loggers = make(map[Category]*Logger)
	logsDir = ""
	workspace = ""
	configLoaded = false
	config = loggingConfig{}
}

// TestAllCategoriesLog tests that all categories create log files when debug_mode is true
func TestAllCategoriesLog(t *testing.T) {
	tempDir, err := os.MkdirTemp("", "logging_test")
	if err != nil {
		t.Fatalf("Failed to create temp dir: %v", err)
	}
	defer os.RemoveAll(tempDir)

	configDir := filepath.Join(tempDir, ".crysknife")
	if err := os.MkdirAll(configDir, 0755); err != nil {
		t.Fatalf("Failed to create config dir: %v", err)
	}

	configContent := `{
		"logging": {
			"level": "debug",
			"debug_mode": true,
			"categories": {
				"cli": true,
				"config": true,
				"predicate": true,
				"injection": true,
				"diff": true,
				"match": true,
				"patch": true,
				"merge": true,
				"apply": true
			}
		}
	}`

	configPath := filepath.Join(configDir, "config.json")
	if err := os.WriteFile(configPath, []byte(configContent), 0644); err != nil {
		t.Fatalf("Failed to write config: %v", err)
	}

	resetState()

	if err := Initialize(tempDir); err != nil {
		t.Fatalf("Failed to initialize logging: %v", err)
	}

	if !IsDebugMode() {
		t.Error("Expected debug mode to be enabled")
	}

	categories := []Category{
		CategoryCLI, CategoryConfig, CategoryPredicate, CategoryInjection,
		CategoryDiff, CategoryMatch, CategoryPatch, CategoryMerge, CategoryApply,
	}

	for _, cat := range categories {
		if !IsCategoryEnabled(cat) {
			t.Errorf("Category %s should be enabled", cat)
		}
		logger := Get(cat)
		logger.Info("Test info message for %s", cat)
		logger.Debug("Test debug message for %s", cat)
		logger.Warn("Test warn message for %s", cat)
		logger.Error("Test error message for %s", cat)
	}

	CloseAll()

	logsPath := filepath.Join(tempDir, ".crysknife", "logs")
	entries, err := os.ReadDir(logsPath)
	if err != nil {
		t.Fatalf("Failed to read logs dir: %v", err)
	}

	for _, cat := range categories {
		found := false
		for _, entry := range entries {
			if strings.Contains(entry.Name(), string(cat)+".log") {
				found = true
				content, err := os.ReadFile(filepath.Join(logsPath, entry.Name()))
				if err != nil {
					t.Errorf("Failed to read log file for %s: %v", cat, err)
					continue
				}
				if len(content) == 0 {
					t.Errorf("Log file for %s is empty", cat)
				}
				break
			}
		}
		if !found {
			t.Errorf("No log file found for category: %s", cat)
		}
	}
}

// TestDebugModeDisabled tests that no logs are created when debug_mode is false
func TestDebugModeDisabled(t *testing.T) {
	tempDir, err := os.MkdirTemp("", "logging_test_disabled")
	if err != nil {
		t.Fatalf("Failed to create temp dir: %v", err)
	}
	defer os.RemoveAll(tempDir)

	configDir := filepath.Join(tempDir, ".crysknife")
	if err := os.MkdirAll(configDir, 0755); err != nil {
		t.Fatalf("Failed to create config dir: %v", err)
	}

	configContent := `{
		"logging": {
			"level": "debug",
			"debug_mode": false,
			"categories": {"cli": true, "patch": true}
		}
	}`

	configPath := filepath.Join(configDir, "config.json")
	if err := os.WriteFile(configPath, []byte(configContent), 0644); err != nil {
		t.Fatalf("Failed to write config: %v", err)
	}

	resetState()

	if err := Initialize(tempDir); err != nil {
		t.Fatalf("Failed to initialize logging: %v", err)
	}

	if IsDebugMode() {
		t.Error("Expected debug mode to be DISABLED (production mode)")
	}

	for _, cat := range []Category{CategoryCLI, CategoryPatch, CategoryMerge} {
		if IsCategoryEnabled(cat) {
			t.Errorf("Category %s should be DISABLED when debug_mode=false", cat)
		}
	}

	logger := Get(CategoryCLI)
	logger.Info("This should NOT be logged")
	logger.Debug("This should NOT be logged")
	logger.Error("This should NOT be logged")

	CloseAll()

	logsPath := filepath.Join(tempDir, ".crysknife", "logs")
	if _, err := os.Stat(logsPath); err == nil {
		entries, _ := os.ReadDir(logsPath)
		if len(entries) > 0 {
			t.Errorf("Expected NO log files in production mode, but found %d files", len(entries))
		}
	} else if !os.IsNotExist(err) {
		t.Fatalf("unexpected stat error: %v", err)
	}
}

// TestCategoryToggle tests individual category enable/disable
func TestCategoryToggle(t *testing.T) {
	tempDir, err := os.MkdirTemp("", "logging_test_category")
	if err != nil {
		t.Fatalf("Failed to create temp dir: %v", err)
	}
	defer os.RemoveAll(tempDir)

	configDir := filepath.Join(tempDir, ".crysknife")
	if err := os.MkdirAll(configDir, 0755); err != nil {
		t.Fatalf("Failed to create config dir: %v", err)
	}

	configContent := `{
		"logging": {
			"level": "debug",
			"debug_mode": true,
			"categories": {
				"cli": true,
				"patch": true,
				"merge": false,
				"injection": false
			}
		}
	}`

	configPath := filepath.Join(configDir, "config.json")
	if err := os.WriteFile(configPath, []byte(configContent), 0644); err != nil {
		t.Fatalf("Failed to write config: %v", err)
	}

	resetState()

	if err := Initialize(tempDir); err != nil {
		t.Fatalf("Failed to initialize: %v", err)
	}

	if !IsCategoryEnabled(CategoryCLI) {
		t.Error("cli should be enabled")
	}
	if !IsCategoryEnabled(CategoryPatch) {
		t.Error("patch should be enabled")
	}
	if IsCategoryEnabled(CategoryMerge) {
		t.Error("merge should be DISABLED")
	}
	if IsCategoryEnabled(CategoryInjection) {
		t.Error("injection should be DISABLED")
	}
	if !IsCategoryEnabled(CategoryDiff) {
		t.Error("diff (not in config) should default to enabled")
	}

	Get(CategoryCLI).Info("This SHOULD be logged")
	Get(CategoryPatch).Info("This SHOULD be logged")
	Get(CategoryMerge).Info("This should NOT be logged")
	Get(CategoryInjection).Info("This should NOT be logged")
	Get(CategoryDiff).Info("This SHOULD be logged (default enabled)")

	CloseAll()

	logsPath := filepath.Join(tempDir, ".crysknife", "logs")
	entries, _ := os.ReadDir(logsPath)

	hasCLI, hasPatch, hasMerge, hasInjection := false, false, false, false
	for _, e := range entries {
		name := e.Name()
		if strings.Contains(name, "cli") {
			hasCLI = true
		}
		if strings.Contains(name, "patch") {
			hasPatch = true
		}
		if strings.Contains(name, "merge") {
			hasMerge = true
		}
		if strings.Contains(name, "injection") {
			hasInjection = true
		}
	}

	if !hasCLI {
		t.Error("Expected cli log file")
	}
	if !hasPatch {
		t.Error("Expected patch log file")
	}
	if hasMerge {
		t.Error("Should NOT have merge log file (disabled)")
	}
	if hasInjection {
		t.Error("Should NOT have injection log file (disabled)")
	}
}

// TestTimerLogging tests the timing helper
func TestTimerLogging(t *testing.T) {
	tempDir, err := os.MkdirTemp("", "logging_test_timer")
	if err != nil {
		t.Fatalf("Failed to create temp dir: %v", err)
	}
	defer os.RemoveAll(tempDir)

	configDir := filepath.Join(tempDir, ".crysknife")
	os.MkdirAll(configDir, 0755)
	configContent := `{"logging": {"level": "debug", "debug_mode": true}}`
	os.WriteFile(filepath.Join(configDir, "config.json"), []byte(configContent), 0644)

	resetState()
	Initialize(tempDir)

	timer := StartTimer(CategoryDiff, "TestOperation")
	time.Sleep(time.Millisecond)
	elapsed := timer.Stop()

	if elapsed <= 0 {
		t.Error("Timer should have recorded non-zero duration")
	}

	CloseAll()
}

// TestRequestLogger exercises correlation-ID scoped logging used around a
// single CLI invocation spanning multiple files.
func TestRequestLogger(t *testing.T) {
	tempDir, err := os.MkdirTemp("", "logging_test_request")
	if err != nil {
		t.Fatalf("Failed to create temp dir: %v", err)
	}
	defer os.RemoveAll(tempDir)

	configDir := filepath.Join(tempDir, ".crysknife")
	os.MkdirAll(configDir, 0755)
	configContent := `{"logging": {"level": "debug", "debug_mode": true}}`
	os.WriteFile(filepath.Join(configDir, "config.json"), []byte(configContent), 0644)

	resetState()
	Initialize(tempDir)

	rl := WithRequestID(CategoryApply, "req-1").WithField("plugin", "Acme")
	rl.Info("applying bundle")
	rl.Warn("hunk %d skipped", 3)

	CloseAll()

	logsPath := filepath.Join(tempDir, ".crysknife", "logs")
	entries, _ := os.ReadDir(logsPath)
	found := false
	for _, e := range entries {
		if strings.Contains(e.Name(), "apply.log") {
			found = true
		}
	}
	if !found {
		t.Error("Expected apply log file from request logger")
	}
}
