package scenario

import (
	"bytes"
	"embed"
	"fmt"
	"io/fs"
	"path"
	"sort"
	"strings"
)

//go:embed examples/*.yaml
var builtinScenarios embed.FS

// Builtins returns the names of the bundled example scenarios, sorted.
func Builtins() []string {
	entries, err := fs.ReadDir(builtinScenarios, "examples")
	if err != nil {
		return nil
	}
	var names []string
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".yaml") {
			continue
		}
		names = append(names, strings.TrimSuffix(e.Name(), ".yaml"))
	}
	sort.Strings(names)
	return names
}

// Builtin loads a bundled example scenario by name.
func Builtin(name string) (*Scenario, error) {
	// embed.FS paths are always slash-separated.
	data, err := fs.ReadFile(builtinScenarios, path.Join("examples", name+".yaml"))
	if err != nil {
		return nil, fmt.Errorf("builtin scenario %q: %w", name, err)
	}
	return Parse(bytes.NewReader(data))
}
