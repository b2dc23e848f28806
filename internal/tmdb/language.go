package tmdb

import (
	"golang.org/x/text/language"
)

const (
	langSimplifiedChinese  = "zh-CN"
	langTraditionalChinese = "zh-TW"
	langEnglish            = "en-US"
)

var defaultPriority = []string{langEnglish, langSimplifiedChinese, langTraditionalChinese}

// LanguagePriority returns the ordered locales tried for detail requests.
// Chinese variants prefer each other before English; any other language is
// tried first and then falls back to English and both Chinese variants.
func LanguagePriority(lang string) []string {
	tag, err := language.Parse(lang)
	if err != nil {
		return defaultPriority
	}

	base, _ := tag.Base()
	if base.String() == "zh" {
		if isTraditional(tag) {
			return []string{langTraditionalChinese, langSimplifiedChinese, langEnglish}
		}
		return []string{langSimplifiedChinese, langTraditionalChinese, langEnglish}
	}

	primary := tag.String()
	out := []string{primary}
	for _, l := range defaultPriority {
		if l != primary {
			out = append(out, l)
		}
	}
	return out
}

func isTraditional(tag language.Tag) bool {
	if script, conf := tag.Script(); conf == language.Exact && script.String() == "Hant" {
		return true
	}
	region, conf := tag.Region()
	if conf == language.No {
		return false
	}
	switch region.String() {
	case "TW", "HK", "MO":
		return true
	}
	return false
}

// IsChinese reports whether lang is a Chinese locale.
func IsChinese(lang string) bool {
	tag, err := language.Parse(lang)
	if err != nil {
		return false
	}
	base, _ := tag.Base()
	return base.String() == "zh"
}
