// Package engineversion tracks the engine version Crysknife is generating or
// applying patches against. The version is process-global and set once at
// startup: every ConfigSystem and decorator evaluation compares against it.
package engineversion

import (
	"fmt"
	"os"
	"regexp"
	"strconv"
	"strings"
	"sync"
)

// Version is a (major, minor, patch) triple compared lexicographically.
type Version struct {
	Major, Minor, Patch int
}

// Compare returns -1, 0, or 1 as v is less than, equal to, or greater than o.
func (v Version) Compare(o Version) int {
	switch {
	case v.Major != o.Major:
		return sign(v.Major - o.Major)
	case v.Minor != o.Minor:
		return sign(v.Minor - o.Minor)
	default:
		return sign(v.Patch - o.Patch)
	}
}

// NewerThan reports whether v is greater than or equal to o.
func (v Version) NewerThan(o Version) bool {
	return v.Compare(o) >= 0
}

func (v Version) String() string {
	return fmt.Sprintf("%d.%d.%d", v.Major, v.Minor, v.Patch)
}

func sign(n int) int {
	switch {
	case n < 0:
		return -1
	case n > 0:
		return 1
	default:
		return 0
	}
}

// versionComponent matches up to three dot-separated numeric components
// (with an optional leading "v"); a missing
// trailing component (e.g. "5.0") is treated as 0, per spec §8:
// 5.0.0.newer_than(5.0) == true.
var versionComponent = regexp.MustCompile(`^\s*v?(\d+)(?:\.(\d+))?(?:\.(\d+))?`)

// Parse parses a dotted version string such as "5.2" or "5.2.1".
func Parse(s string) (Version, error) {
	m := versionComponent.FindStringSubmatch(strings.TrimSpace(s))
	if m == nil {
		return Version{}, fmt.Errorf("engineversion: cannot parse %q", s)
	}
	major, _ := strconv.Atoi(m[1])
	minor, _ := strconv.Atoi(m[2])
	patch, _ := strconv.Atoi(m[3])
	return Version{Major: major, Minor: minor, Patch: patch}, nil
}

// MustParse is Parse but panics on error; for use with constant version
// strings embedded in decorator directives after they are already validated.
func MustParse(s string) Version {
	v, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return v
}

// versionHeaderRegex mirrors the macro layout of
// Runtime/Launch/Resources/Version.h in the canonical engine tree.
var versionHeaderRegex = regexp.MustCompile(
	`(?s)#define\s+ENGINE_MAJOR_VERSION\s+(\d+).*?` +
		`#define\s+ENGINE_MINOR_VERSION\s+(\d+).*?` +
		`#define\s+ENGINE_PATCH_VERSION\s+(\d+)`)

// ReadFromHeader reads (major, minor, patch) from the engine's
// Runtime/Launch/Resources/Version.h relative to engineRoot.
func ReadFromHeader(engineRoot string) (Version, error) {
	path := engineRoot + "/Runtime/Launch/Resources/Version.h"
	data, err := os.ReadFile(path)
	if err != nil {
		return Version{}, fmt.Errorf("engineversion: reading %s: %w", path, err)
	}
	m := versionHeaderRegex.FindStringSubmatch(string(data))
	if m == nil {
		return Version{}, fmt.Errorf("engineversion: no version macros found in %s", path)
	}
	major, _ := strconv.Atoi(m[1])
	minor, _ := strconv.Atoi(m[2])
	patch, _ := strconv.Atoi(m[3])
	return Version{Major: major, Minor: minor, Patch: patch}, nil
}

var (
	current    Version
	currentSet bool
	mu         sync.RWMutex
)

// Set installs the process-global current engine version. Per spec §5 this
// must happen before any ConfigSystem is constructed; calling it twice
// overwrites the previous value (tests do this routinely).
func Set(v Version) {
	mu.Lock()
	defer mu.Unlock()
	current = v
	currentSet = true
}

// Current returns the process-global current engine version. It is the zero
// Version until Set is called.
func Current() Version {
	mu.RLock()
	defer mu.RUnlock()
	return current
}

// IsSet reports whether Set has been called yet.
func IsSet() bool {
	mu.RLock()
	defer mu.RUnlock()
	return currentSet
}
