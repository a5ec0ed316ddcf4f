package parser

import (
	"regexp"
	"strings"
	"unicode"
)

// space matches Unicode whitespace; RE2's \s is ASCII only, and legacy
// files carry no-break spaces between label and number
const space = `[\s\v\x{00A0}\x{1680}\x{2000}-\x{200A}\x{2028}\x{2029}\x{202F}\x{205F}\x{3000}\x{FEFF}]`

// titleRegex is the slide title vocabulary
var titleRegex = regexp.MustCompile(`(?i)^(Vers(` + space + `*\d*)?|Chorus(` + space + `*\d*)?|Pre[- ]?Chorus(` + space + `*\d*)?|Bridge|Ending|Eingangsspiel|Blank)$`)

// lineBreak matches both line ending styles accepted on input
var lineBreak = regexp.MustCompile(`\r?\n`)

// IsTitle reports whether line, trimmed, is a slide title
func IsTitle(line string) bool {
	return titleRegex.MatchString(trimSpace(line))
}

// trimSpace trims Unicode whitespace and byte order marks
func trimSpace(line string) string {
	return strings.TrimFunc(line, func(r rune) bool {
		return unicode.IsSpace(r) || r == '\uFEFF'
	})
}

// IsTitledFormat reports whether any line of the song is a slide title.
// The decision covers the whole document.
func IsTitledFormat(lines []string) bool {
	for _, line := range lines {
		if IsTitle(line) {
			return true
		}
	}
	return false
}

// SplitLines splits text on \n or \r\n. A final line terminator does not
// produce a trailing empty line.
func SplitLines(text string) []string {
	if text == "" {
		return []string{}
	}

	lines := lineBreak.Split(text, -1)
	if n := len(lines); n > 1 && lines[n-1] == "" {
		lines = lines[:n-1]
	}
	return lines
}
