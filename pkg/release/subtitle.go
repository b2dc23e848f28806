package release

import "strings"

// Subtitle language codes returned by DetectSubtitleLanguage.
const (
	SubtitleChinese  = "zh"
	SubtitleEnglish  = "en"
	SubtitleJapanese = "ja"
)

type subtitleKeywords struct {
	lang     string
	keywords []string
}

// Checked in order; the first language with a matching keyword wins.
var subtitleLanguages = []subtitleKeywords{
	{SubtitleChinese, []string{
		"简中", "简体中文", "简体", "繁中", "繁体中文", "繁体", "zh", "chn", "chinese",
		"中文", "中字", "simplified", "traditional", "sc", "tc", "zn",
	}},
	{SubtitleEnglish, []string{
		"en", "eng", "english", "英文", "英语", "英字", "us", "uk", "american", "british",
	}},
	{SubtitleJapanese, []string{
		"jp", "jpn", "japanese", "ja", "日文", "日语", "日字", "nihongo", "にほんご", "ひらがな", "カタカナ",
	}},
}

// DetectSubtitleLanguage returns "zh", "en", "ja" or "" for a subtitle filename.
func DetectSubtitleLanguage(filename string) string {
	lower := strings.ToLower(filename)
	for _, l := range subtitleLanguages {
		for _, kw := range l.keywords {
			if strings.Contains(lower, kw) {
				return l.lang
			}
		}
	}
	return ""
}

// LanguageSuffix returns the filename suffix for a detected language, such as
// ".zh", or "" when the language is unknown.
func LanguageSuffix(lang string) string {
	if lang == "" {
		return ""
	}
	return "." + lang
}
