package internal

import (
	"encoding/json"
	"regexp"
	"strings"
)

var (
	// quotedItemPattern matches a single- or double-quoted item, allowing
	// backslash escapes inside it
	quotedItemPattern = regexp.MustCompile(`"(?:[^"\\]|\\.)*"|'(?:[^'\\]|\\.)*'`)
	escapedQuote      = regexp.MustCompile(`\\(['"])`)
	leadingTagPattern = regexp.MustCompile(`^\[(.*?)\]\s?(.*)$`)
)

// ParseListString decodes a legacy serialized list. It understands a
// bracketed list of quoted items (['a', "b"]), a bracketed JSON array of
// strings, and falls back to splitting on newlines. It never fails.
func ParseListString(content string) []string {
	if content == "" {
		return []string{}
	}

	trimmed := strings.TrimSpace(content)
	if strings.HasPrefix(trimmed, "[") && strings.HasSuffix(trimmed, "]") && len(trimmed) >= 2 {
		inner := trimmed[1 : len(trimmed)-1]
		if matches := quotedItemPattern.FindAllString(inner, -1); len(matches) > 0 {
			items := make([]string, 0, len(matches))
			for _, m := range matches {
				items = append(items, escapedQuote.ReplaceAllString(m[1:len(m)-1], "$1"))
			}
			return items
		}

		var items []string
		if err := json.Unmarshal([]byte(trimmed), &items); err == nil {
			if items == nil {
				items = []string{}
			}
			return items
		}
		LogDebug("list string %q is not a quoted list, splitting on newlines", truncate(trimmed, 40))
	}

	return strings.Split(content, "\n")
}

// SplitTag separates a leading bracketed tag from the rest of a line:
// "[Title] text" yields ("Title", "text", true).
func SplitTag(line string) (tag, rest string, ok bool) {
	m := leadingTagPattern.FindStringSubmatch(line)
	if m == nil {
		return "", line, false
	}
	return m[1], m[2], true
}
