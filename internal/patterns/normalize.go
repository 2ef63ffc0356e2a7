package patterns

import "regexp"

var (
	lineColumnRe = regexp.MustCompile(`:\d+:\d+|\(\d+,\s*\d+\)`)
	filePathRe   = regexp.MustCompile(`[\w@~./\\-]*[\w-]\.(?:tsx|ts|jsx|js|mjs|cjs|json|scss|css)\b`)
	quotedRe     = regexp.MustCompile("'[^']*'|\"[^\"]*\"|`[^`]*`")
	digitsRe     = regexp.MustCompile(`\d+`)
)

// Normalize reduces an error message to its canonical pattern: line and
// column markers become ":L:C", source file paths "<file>", quoted
// literals "<string>" and any remaining number "N".
func Normalize(message string) string {
	s := lineColumnRe.ReplaceAllString(message, ":L:C")
	s = filePathRe.ReplaceAllString(s, "<file>")
	s = quotedRe.ReplaceAllString(s, "<string>")
	s = digitsRe.ReplaceAllString(s, "N")
	return s
}
