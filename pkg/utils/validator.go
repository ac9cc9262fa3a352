package utils

import (
	"regexp"
	"strings"
)

var controlChars = regexp.MustCompile(`[\x00-\x08\x0b-\x1f\x7f]`)

// SanitizeText strips control characters (keeping newlines and tabs) and
// surrounding whitespace from free text such as notes and rejection reasons
func SanitizeText(s string) string {
	return strings.TrimSpace(controlChars.ReplaceAllString(s, ""))
}
