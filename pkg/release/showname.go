package release

import (
	"regexp"
	"strings"
	"unicode"
)

var (
	trailingSeparators = regexp.MustCompile(`[._\s]+$`)
	tokenSplit         = regexp.MustCompile(`[._\s]+`)
	allDigits          = regexp.MustCompile(`^\d+$`)
)

var stopwords = map[string]bool{
	"the": true, "and": true, "but": true, "for": true,
	"nor": true, "yet": true, "so": true,
}

// ExtractShowName guesses the show name from an episode filename. The result
// is a grouping hint and may be wrong for unusual names.
func ExtractShowName(filename string) string {
	if loc := sxxeyyPattern.FindStringIndex(filename); loc != nil {
		prefix := parenYearRegex.ReplaceAllString(filename[:loc[0]], "")
		prefix = trailingSeparators.ReplaceAllString(prefix, "")
		if len([]rune(prefix)) > 1 {
			return prefix
		}
	}

	for _, part := range tokenSplit.Split(filename, -1) {
		if len([]rune(part)) <= 1 || allDigits.MatchString(part) {
			continue
		}
		if stopwords[strings.ToLower(part)] || !hasLetter(part) {
			continue
		}
		return part
	}

	if fields := strings.Fields(filename); len(fields) > 0 {
		return fields[0]
	}
	return filename
}

func hasLetter(s string) bool {
	for _, r := range s {
		if unicode.IsLetter(r) {
			return true
		}
	}
	return false
}
