package service

import (
	"regexp"
	"strings"
)

var (
	fenceStartRe = regexp.MustCompile("(?is)^\\s*```(?:markdown|md|text)?[ \\t]*\\n?")
	fenceEndRe   = regexp.MustCompile("(?is)\\s*```\\s*$")
)

// cleanNarrative quita BOM y fences ```markdown ... ``` que algunos modelos
// agregan alrededor del reporte. Si no queda texto devuelve "".
func cleanNarrative(raw string) string {
	s := strings.TrimSpace(raw)
	if s == "" {
		return ""
	}

	s = strings.TrimPrefix(s, "\uFEFF")

	if strings.HasPrefix(s, "```") {
		s = fenceStartRe.ReplaceAllString(s, "")
		s = fenceEndRe.ReplaceAllString(s, "")
	}
	return strings.TrimSpace(s)
}
