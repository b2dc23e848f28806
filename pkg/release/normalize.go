package release

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
	"golang.org/x/text/width"
)

var (
	parenYearRegex   = regexp.MustCompile(`\s*\(\d{4}\)\s*`)
	bracketRegex     = regexp.MustCompile(`\[.*?\]`)
	cjkBracketRegex  = regexp.MustCompile(`【.*?】`)
	standaloneYear   = regexp.MustCompile(`(^|[^0-9A-Za-z])\d{4}([^0-9A-Za-z]|$)`)
	resolutionRegex  = regexp.MustCompile(`(?i)\d{3,4}p`)
	codecRegex       = regexp.MustCompile(`(?i)x264|x265|h264|h265`)
	separatorRun     = regexp.MustCompile(`[._-]+`)
	whitespaceRun    = regexp.MustCompile(`\s+`)
	sourceTokenRegex = regexp.MustCompile(`(?i)(^|[^a-z0-9])(?:bdrip|bd|web-dl|webrip|hdtv|bluray)([^a-z0-9]|$)`)
)

// CleanSearchName turns a folder or file name into a catalog search query.
// Years, bracketed annotations, resolution, source and codec tags are removed
// and separator runs collapse to single spaces.
func CleanSearchName(name string) string {
	s := foldWidth(norm.NFC.String(name))

	s = parenYearRegex.ReplaceAllString(s, " ")
	s = bracketRegex.ReplaceAllString(s, " ")
	s = cjkBracketRegex.ReplaceAllString(s, " ")
	s = resolutionRegex.ReplaceAllString(s, " ")
	s = stripDelimited(standaloneYear, s)
	s = stripDelimited(sourceTokenRegex, s)
	s = codecRegex.ReplaceAllString(s, " ")

	s = collapse(s)
	if s == "" {
		// A title made only of a year ("1923") would otherwise vanish.
		return collapse(bracketRegex.ReplaceAllString(name, " "))
	}
	return s
}

// stripDelimited removes tokens matched with their surrounding delimiters
// captured, repeating until adjacent tokens are all gone.
func stripDelimited(re *regexp.Regexp, s string) string {
	for {
		next := re.ReplaceAllString(s, "${1} ${2}")
		if next == s {
			return s
		}
		s = next
	}
}

func collapse(s string) string {
	s = separatorRun.ReplaceAllString(s, " ")
	s = whitespaceRun.ReplaceAllString(s, " ")
	return strings.TrimSpace(s)
}

// foldWidth maps full-width ASCII variants such as （２０２３） to their
// narrow forms.
func foldWidth(s string) string {
	result, _, err := transform.String(width.Fold, s)
	if err != nil {
		return s
	}
	return result
}

// CleanTitle normalizes a title for similarity scoring: lower case, accents
// and punctuation removed, leading articles dropped.
func CleanTitle(title string) string {
	s := strings.ToLower(foldWidth(title))
	s = removeAccents(s)

	s = strings.ReplaceAll(s, "&", " and ")
	s = strings.ReplaceAll(s, "'", "")
	s = separatorRun.ReplaceAllString(s, " ")

	parts := strings.Split(s, ":")
	for i, part := range parts {
		parts[i] = stripLeadingArticle(strings.TrimSpace(part))
	}
	s = strings.Join(parts, " ")

	var b strings.Builder
	for _, r := range s {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || unicode.IsSpace(r) {
			b.WriteRune(r)
		}
	}
	return strings.Join(strings.Fields(b.String()), " ")
}

func removeAccents(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	result, _, _ := transform.String(t, s)
	return result
}

func stripLeadingArticle(s string) string {
	for _, art := range []string{"the ", "a ", "an "} {
		if strings.HasPrefix(s, art) {
			return strings.TrimPrefix(s, art)
		}
	}
	return s
}
