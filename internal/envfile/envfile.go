// Package envfile parses pasted environment-variable text (.env files,
// shell exports, YAML-ish "KEY: value" lists) into CI variables.
package envfile

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/vilaca/gitlab-desk/internal/domain"
)

// Entry is one parsed KEY/VALUE pair.
type Entry struct {
	Key   string
	Value string
}

var (
	assignLine = regexp.MustCompile(`^([A-Za-z_][A-Za-z0-9_]*)\s*=\s*(.*)$`)
	colonLine  = regexp.MustCompile(`^([A-Za-z_][A-Za-z0-9_]*)\s*:\s*(.*)$`)
)

// Parse extracts entries from text. Blank lines and "#" comments are ignored
// and a leading "export " is stripped. It reports false when the text has no
// content lines or fewer than half of them parse, in which case the text is
// probably not environment variables at all.
func Parse(text string) ([]Entry, bool) {
	var lines []string
	for _, line := range strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		lines = append(lines, line)
	}
	if len(lines) == 0 {
		return nil, false
	}

	entries := make([]Entry, 0, len(lines))
	for _, line := range lines {
		if entry, ok := parseLine(line); ok {
			entries = append(entries, entry)
		}
	}

	if 2*len(entries) < len(lines) {
		return nil, false
	}
	return entries, true
}

func parseLine(line string) (Entry, bool) {
	line = strings.TrimPrefix(line, "export ")

	m := assignLine.FindStringSubmatch(line)
	if m == nil {
		m = colonLine.FindStringSubmatch(line)
	}
	if m == nil {
		return Entry{}, false
	}
	return Entry{Key: m[1], Value: unquote(strings.TrimSpace(m[2]))}, true
}

// unquote strips one pair of matching surrounding quotes.
func unquote(v string) string {
	if len(v) >= 2 {
		if (v[0] == '"' && v[len(v)-1] == '"') || (v[0] == '\'' && v[len(v)-1] == '\'') {
			return v[1 : len(v)-1]
		}
	}
	return v
}

// Preset selects the protection flags applied to imported variables.
type Preset string

const (
	PresetUnprotected     Preset = "unprotected"
	PresetProtected       Preset = "protected"
	PresetProtectedMasked Preset = "protected_masked"
)

// Presets lists the valid presets in display order.
var Presets = []Preset{PresetUnprotected, PresetProtected, PresetProtectedMasked}

// ParsePreset validates a preset name.
func ParsePreset(s string) (Preset, error) {
	for _, p := range Presets {
		if string(p) == s {
			return p, nil
		}
	}
	return "", fmt.Errorf("unknown import preset %q (want one of %s, %s, %s)",
		s, PresetUnprotected, PresetProtected, PresetProtectedMasked)
}

// ToVariables converts entries to env_var variables in the given scope
// (empty means "*") with the preset's flags applied.
func ToVariables(entries []Entry, preset Preset, scope string) []domain.CIVariable {
	if scope == "" {
		scope = domain.ScopeAll
	}
	variables := make([]domain.CIVariable, 0, len(entries))
	for _, e := range entries {
		v := domain.NewVariable(e.Key, e.Value)
		v.EnvironmentScope = scope
		v.Protected = preset == PresetProtected || preset == PresetProtectedMasked
		v.Masked = preset == PresetProtectedMasked
		variables = append(variables, v)
	}
	return variables
}
