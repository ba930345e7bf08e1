package config

import (
	"fmt"
	"strings"

	"github.com/abadojack/whatlanggo"
	"golang.org/x/text/language"
)

// Language codes accepted by the transcription backend.
const (
	LanguageChinese = "zh"
	LanguageEnglish = "en"
	// LanguageAuto asks the service to pick a code from the video title.
	LanguageAuto = "auto"
)

var supportedLanguages = map[string]language.Tag{
	LanguageChinese: language.Chinese,
	LanguageEnglish: language.English,
}

// NormalizeLanguage maps a user-supplied language code onto the closed set
// supported by the backend. "auto" passes through for later detection.
func NormalizeLanguage(code string) (string, error) {
	code = strings.ToLower(strings.TrimSpace(code))
	if code == LanguageAuto {
		return LanguageAuto, nil
	}
	if _, ok := supportedLanguages[code]; ok {
		return code, nil
	}
	return "", fmt.Errorf("unsupported language %q", code)
}

// LanguageTag returns the BCP 47 tag for a supported code.
func LanguageTag(code string) (language.Tag, bool) {
	tag, ok := supportedLanguages[code]
	return tag, ok
}

// DetectLanguage guesses a supported language code from free text, typically
// the provider-reported video title. Unconfident or unsupported detections
// fall back to fallback.
func DetectLanguage(text, fallback string) string {
	if strings.TrimSpace(text) == "" {
		return fallback
	}
	info := whatlanggo.Detect(text)
	switch info.Lang {
	case whatlanggo.Cmn:
		return LanguageChinese
	case whatlanggo.Eng:
		if info.IsReliable() {
			return LanguageEnglish
		}
	}
	return fallback
}
