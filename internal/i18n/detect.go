// Package i18n provides language detection and the localized message
// catalog for assistant replies. Five locales are supported: English,
// Urdu, Arabic, Chinese and Turkish. The locale is always an explicit
// value passed by the caller; there is no ambient global.
package i18n

import (
	"strings"

	"golang.org/x/text/language"
)

// Supported locale codes.
const (
	LocaleEnglish = "en"
	LocaleUrdu    = "ur"
	LocaleArabic  = "ar"
	LocaleChinese = "zh"
	LocaleTurkish = "tr"
)

// supportedTags is ordered: the first entry is the fallback for
// unmatchable input.
var supportedTags = []language.Tag{
	language.English,
	language.Urdu,
	language.Arabic,
	language.Chinese,
	language.Turkish,
}

var supportedCodes = []string{
	LocaleEnglish,
	LocaleUrdu,
	LocaleArabic,
	LocaleChinese,
	LocaleTurkish,
}

var matcher = language.NewMatcher(supportedTags)

// Match normalizes an arbitrary BCP 47 language tag (e.g. "zh-TW",
// "en-US") to one of the supported locale codes. Unparseable or
// unsupported tags fall back to English.
func Match(code string) string {
	if code == "" {
		return LocaleEnglish
	}
	tag, err := language.Parse(code)
	if err != nil {
		return LocaleEnglish
	}
	_, idx, conf := matcher.Match(tag)
	if conf == language.No {
		return LocaleEnglish
	}
	return supportedCodes[idx]
}

// Urdu is written in Arabic script; these letters exist in Urdu but not
// in standard Arabic and distinguish the two.
var urduSpecific = map[rune]bool{
	'ں': true, 'ے': true, 'ہ': true, 'ڈ': true, 'ٹ': true, 'ڑ': true, 'ژ': true,
}

var turkishSpecial = map[rune]bool{
	'ğ': true, 'ş': true, 'ı': true, 'ö': true, 'ü': true, 'ç': true,
	'Ğ': true, 'Ş': true, 'İ': true, 'Ö': true, 'Ü': true, 'Ç': true,
}

func isChinese(r rune) bool {
	// CJK Unified Ideographs
	return r >= 0x4E00 && r <= 0x9FFF
}

func isArabicScript(r rune) bool {
	// Arabic block, shared by Arabic and Urdu
	return r >= 0x0600 && r <= 0x06FF
}

// Detect guesses the locale of free text using script heuristics:
//
//  1. Chinese when more than 30% of the characters are CJK ideographs.
//  2. Arabic script when more than 40% of the characters are in the
//     Arabic block; Urdu-specific letters decide between ur and ar.
//  3. Turkish when Turkish-specific letters are present.
//  4. English otherwise.
func Detect(text string) string {
	text = strings.TrimSpace(text)
	if text == "" {
		return LocaleEnglish
	}

	var chinese, arabic, urdu, turkish, total int
	for _, r := range text {
		total++
		switch {
		case isChinese(r):
			chinese++
		case isArabicScript(r):
			arabic++
			if urduSpecific[r] {
				urdu++
			}
		case turkishSpecial[r]:
			turkish++
		}
	}

	if chinese > 0 && float64(chinese)/float64(total) > 0.3 {
		return LocaleChinese
	}
	if arabic > 0 && float64(arabic)/float64(total) > 0.4 {
		if urdu > 0 {
			return LocaleUrdu
		}
		return LocaleArabic
	}
	if turkish > 0 {
		return LocaleTurkish
	}
	return LocaleEnglish
}

// Name returns the human-readable name of a locale code.
func Name(code string) string {
	switch code {
	case LocaleUrdu:
		return "Urdu (اردو)"
	case LocaleArabic:
		return "Arabic (العربية)"
	case LocaleChinese:
		return "Chinese (中文)"
	case LocaleTurkish:
		return "Turkish (Türkçe)"
	default:
		return "English"
	}
}
