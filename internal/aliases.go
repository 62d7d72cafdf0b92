package internal

import (
	"strings"

	"github.com/samber/lo"
)

// AddAlias appends a trimmed alias unless it is blank or already present.
// The input slice is never modified.
func AddAlias(current []string, candidate string) []string {
	candidate = strings.TrimSpace(candidate)
	if candidate == "" || lo.Contains(current, candidate) {
		return current
	}
	out := make([]string, 0, len(current)+1)
	out = append(out, current...)
	return append(out, candidate)
}

// RemoveAlias drops every exact match of alias
func RemoveAlias(current []string, alias string) []string {
	if !lo.Contains(current, alias) {
		return current
	}
	return lo.Without(current, alias)
}

// NormalizeAliases trims entries, drops blanks and removes duplicates while
// keeping first-seen order
func NormalizeAliases(aliases []string) []string {
	out := make([]string, 0, len(aliases))
	for _, a := range aliases {
		out = AddAlias(out, a)
	}
	return out
}

// ParseAliasInput splits comma-separated user input into an alias set
func ParseAliasInput(input string) []string {
	return NormalizeAliases(strings.Split(input, ","))
}
