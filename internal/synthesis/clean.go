package synthesis

import (
	"regexp"
	"strings"
	"unicode"
)

// metaPatterns strip references to the retrieval mechanics that models
// tend to emit despite prompt instructions. Applied in order.
var metaPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)according to the (document|context|text|excerpt)s?,?\s*`),
	regexp.MustCompile(`(?i)based on the (provided )?(document|context|text|excerpt)s?,?\s*`),
	regexp.MustCompile(`(?i)as mentioned in the (document|context|text|excerpt)s?,?\s*`),
	regexp.MustCompile(`(?i)in the provided (document|context|text|excerpt)s?,?\s*`),
	regexp.MustCompile(`\[.*?\]`),
	regexp.MustCompile(`(?i)\(source:.*?\)`),
}

var (
	spaceRun         = regexp.MustCompile(`\s+`)
	periodRun        = regexp.MustCompile(`\.\.+`)
	spaceBeforePunct = regexp.MustCompile(`\s+([.!?,;:])`)
)

// Clean post-processes a raw model completion: removes meta-references,
// normalizes whitespace and runs of periods, capitalizes the first
// letter, and ensures terminal punctuation. Returns the empty string
// unchanged.
func Clean(answer string) string {
	cleaned := answer
	for _, pattern := range metaPatterns {
		cleaned = pattern.ReplaceAllString(cleaned, "")
	}

	cleaned = spaceRun.ReplaceAllString(cleaned, " ")
	cleaned = spaceBeforePunct.ReplaceAllString(cleaned, "$1")
	cleaned = periodRun.ReplaceAllString(cleaned, ".")
	cleaned = strings.TrimSpace(cleaned)
	if cleaned == "" {
		return ""
	}

	runes := []rune(cleaned)
	runes[0] = unicode.ToUpper(runes[0])
	cleaned = string(runes)

	if last := runes[len(runes)-1]; last != '.' && last != '!' && last != '?' {
		cleaned += "."
	}
	return cleaned
}
