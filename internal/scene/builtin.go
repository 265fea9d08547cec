package scene

import (
	"embed"
	"fmt"
	"io/fs"
	"path"
	"sort"
	"strings"
)

// builtinScenes holds the example scenes shipped with the binary.
//
//go:embed builtin/*.yaml
var builtinScenes embed.FS

// BuiltinNames lists the builtin scene names in sorted order.
func BuiltinNames() []string {
	matches, err := fs.Glob(builtinScenes, "builtin/*.yaml")
	if err != nil {
		return nil
	}
	names := make([]string, len(matches))
	for i, m := range matches {
		names[i] = strings.TrimSuffix(path.Base(m), ".yaml")
	}
	sort.Strings(names)
	return names
}

// Builtin parses the builtin scene called name.
func Builtin(name string) (*Scene, error) {
	data, err := builtinScenes.ReadFile("builtin/" + name + ".yaml")
	if err != nil {
		return nil, fmt.Errorf("%q (available: %s): %w", name, strings.Join(BuiltinNames(), ", "), ErrUnknownBuiltin)
	}
	return Parse(data)
}
