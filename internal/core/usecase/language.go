package usecase

import (
	"strings"
	"unicode"

	"github.com/kirillkom/claimsense/internal/core/domain"
)

// Marathi-only signals. Words shared with Hindi (का, नाही/nahi, to, ...) are left to the Hindi bucket.
var (
	marathiRunes = []rune{'ळ'}

	marathiWords = map[string]struct{}{
		"काय": {}, "आहे": {}, "मध्ये": {}, "आणि": {}, "किंवा": {}, "देखील": {},
		"होय": {}, "कसे": {}, "कुठे": {}, "कधी": {}, "आता": {}, "तुमचा": {}, "माझा": {},
	}

	romanizedMarathiWords = map[string]struct{}{
		"kay": {}, "ahe": {}, "madhye": {}, "ani": {}, "kinva": {}, "dekhil": {}, "hoy": {},
		"kase": {}, "kuthe": {}, "kadhi": {}, "aata": {}, "amhi": {}, "tyacha": {}, "tyachi": {},
		"maza": {}, "mazi": {}, "tuzha": {}, "tuzhi": {}, "amcha": {}, "amchi": {}, "kasa": {},
		"ahes": {}, "yeil": {}, "karto": {}, "karte": {},
	}

	romanizedHindiWords = map[string]struct{}{
		"kya": {}, "hai": {}, "mein": {}, "aur": {}, "phir": {}, "bhi": {}, "nahi": {}, "nahin": {},
		"haan": {}, "kaise": {}, "kahan": {}, "kab": {}, "kaun": {}, "aap": {}, "tum": {}, "hum": {},
		"unka": {}, "unki": {}, "mera": {}, "meri": {}, "tera": {}, "teri": {}, "hamara": {}, "hamari": {},
	}
)

// DetectLanguage guesses the claimant's language from their own message.
// Marathi-specific signals win over Devanagari in general; everything else is English.
func DetectLanguage(text string) domain.Language {
	tokens := tokenize(text)

	for _, r := range marathiRunes {
		if strings.ContainsRune(text, r) {
			return domain.LanguageMarathi
		}
	}
	for _, tok := range tokens {
		if _, ok := marathiWords[tok]; ok {
			return domain.LanguageMarathi
		}
		if _, ok := romanizedMarathiWords[tok]; ok {
			return domain.LanguageMarathi
		}
	}

	for _, r := range text {
		if unicode.Is(unicode.Devanagari, r) {
			return domain.LanguageHindi
		}
	}
	for _, tok := range tokens {
		if _, ok := romanizedHindiWords[tok]; ok {
			return domain.LanguageHindi
		}
	}
	return domain.LanguageEnglish
}

func tokenize(text string) []string {
	return strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		if unicode.Is(unicode.Devanagari, r) {
			return r == '।' || r == '॥'
		}
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}
