// Package promptvar finds and fills the [placeholder] variables of a prompt template.
package promptvar

import (
	"regexp"
	"strings"
)

var variablePattern = regexp.MustCompile(`\[([^\]]+)\]`)

type Field struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// Extract returns the distinct variable names of text in first-occurrence order.
// Names are case and whitespace sensitive.
func Extract(text string) []string {
	names := []string{}
	if text == "" {
		return names
	}

	seen := make(map[string]struct{})
	for _, m := range variablePattern.FindAllStringSubmatch(text, -1) {
		name := m[1]
		if _, ok := seen[name]; ok {
			continue
		}
		seen[name] = struct{}{}
		names = append(names, name)
	}
	return names
}

// Fields returns one empty input field per variable of text.
func Fields(text string) []Field {
	names := Extract(text)
	fields := make([]Field, len(names))
	for i, n := range names {
		fields[i] = Field{Name: n}
	}
	return fields
}

// Substitute replaces every literal "[name]" of content whose value is non-empty.
// Variables with blank or missing values stay bracketed. Keys that are not
// variables of content are ignored.
func Substitute(content string, values map[string]string) string {
	if len(values) == 0 {
		return content
	}

	for _, name := range Extract(content) {
		v := values[name]
		if v == "" {
			continue
		}
		content = strings.ReplaceAll(content, "["+name+"]", v)
	}
	return content
}

// Missing lists the variables of content that have no value yet.
func Missing(content string, values map[string]string) []string {
	missing := []string{}
	for _, name := range Extract(content) {
		if values[name] == "" {
			missing = append(missing, name)
		}
	}
	return missing
}
