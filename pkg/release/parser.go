package release

import (
	"regexp"
	"strconv"
)

// episodePattern extracts a season/episode pair from a filename.
// A pattern with a single capture group yields season 1.
type episodePattern struct {
	re *regexp.Regexp
}

func (p episodePattern) match(name string) (EpisodeKey, bool) {
	m := p.re.FindStringSubmatch(name)
	if m == nil {
		return EpisodeKey{}, false
	}
	if len(m) == 2 {
		ep, err := strconv.Atoi(m[1])
		if err != nil {
			return EpisodeKey{}, false
		}
		return EpisodeKey{Season: 1, Episode: ep}, true
	}
	season, err := strconv.Atoi(m[1])
	if err != nil {
		return EpisodeKey{}, false
	}
	ep, err := strconv.Atoi(m[2])
	if err != nil {
		return EpisodeKey{}, false
	}
	return EpisodeKey{Season: season, Episode: ep}, true
}

// Order matters: the first match wins.
var mainPatterns = []episodePattern{
	{regexp.MustCompile(`(?i)S(\d{1,2})E(\d{1,2})`)},
	{regexp.MustCompile(`(?i)(\d{1,2})x(\d{1,2})`)},
	{regexp.MustCompile(`(?i)Season\s*(\d{1,2}).*?Episode\s*(\d{1,2})`)},
	{regexp.MustCompile(`(?i)Episode\s*(\d{1,2})`)},
}

var anchoredPatterns = []episodePattern{
	{regexp.MustCompile(`(?i)\.S(\d{1,2})E(\d{1,2})\.`)},
	{regexp.MustCompile(`(?i)-S(\d{1,2})E(\d{1,2})-`)},
	{regexp.MustCompile(`(?i)\.(\d{1,2})x(\d{1,2})\.`)},
	{regexp.MustCompile(`(?i)-(\d{1,2})x(\d{1,2})-`)},
}

// sxxeyyPattern detects the canonical SxxEyy token.
var sxxeyyPattern = regexp.MustCompile(`(?i)S\d{1,2}E\d{1,2}`)

// ParseEpisode extracts the season and episode from a filename.
// Returns false when nothing matches, which is common and not an error.
func ParseEpisode(filename string) (EpisodeKey, bool) {
	for _, p := range mainPatterns {
		if key, ok := p.match(filename); ok {
			return key, true
		}
	}
	return ParseEpisodeStrict(filename)
}

// ParseEpisodeStrict only consults the delimiter-anchored patterns
// (".S01E01.", "-S01E01-", ".01x01.", "-01x01-").
func ParseEpisodeStrict(filename string) (EpisodeKey, bool) {
	for _, p := range anchoredPatterns {
		if key, ok := p.match(filename); ok {
			return key, true
		}
	}
	return EpisodeKey{}, false
}

// HasSeasonEpisodeToken reports whether filename carries an SxxEyy token.
func HasSeasonEpisodeToken(filename string) bool {
	return sxxeyyPattern.MatchString(filename)
}
