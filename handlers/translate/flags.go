package translate

import (
	"strings"
	"unicode/utf8"
)

const (
	regionalIndicatorA = 0x1F1E6
	regionalIndicatorZ = 0x1F1FF
)

// 国家代码到语言代码，未列出的国家直接使用小写代码
var countryLanguages = map[string]string{
	"GB": "en",
	"US": "en",
	"AU": "en",
	"JP": "ja",
	"CN": "zh-CN",
	"TW": "zh-TW",
	"KR": "ko",
	"BR": "pt",
	"UA": "uk",
	"GR": "el",
	"CZ": "cs",
	"DK": "da",
	"SE": "sv",
	"IN": "hi",
	"VN": "vi",
	"IL": "he",
	"SA": "ar",
	"EG": "ar",
	"IR": "fa",
	"MX": "es",
	"AT": "de",
}

// 语言代码到展示用的国旗
var languageCountries = map[string]string{
	"en": "GB",
	"ja": "JP",
	"zh": "CN",
	"ko": "KR",
	"uk": "UA",
	"el": "GR",
	"cs": "CZ",
	"da": "DK",
	"sv": "SE",
	"hi": "IN",
	"vi": "VN",
	"he": "IL",
	"ar": "SA",
	"fa": "IR",
}

// DecodeFlag returns the two-letter region code of a flag emoji such as 🇫🇷.
func DecodeFlag(emoji string) (string, bool) {
	if utf8.RuneCountInString(emoji) != 2 {
		return "", false
	}
	var code []byte
	for _, r := range emoji {
		if r < regionalIndicatorA || r > regionalIndicatorZ {
			return "", false
		}
		code = append(code, byte('A'+r-regionalIndicatorA))
	}
	return string(code), true
}

// EncodeFlag is the inverse of DecodeFlag. Anything that is not two ASCII
// letters yields "".
func EncodeFlag(code string) string {
	code = strings.ToUpper(code)
	if len(code) != 2 {
		return ""
	}
	var b strings.Builder
	for i := 0; i < len(code); i++ {
		c := code[i]
		if c < 'A' || c > 'Z' {
			return ""
		}
		b.WriteRune(rune(regionalIndicatorA + int(c-'A')))
	}
	return b.String()
}

// TargetLanguage maps a flag region code to the language to translate into.
func TargetLanguage(region string) string {
	region = strings.ToUpper(region)
	if lang, ok := countryLanguages[region]; ok {
		return lang
	}
	return strings.ToLower(region)
}

// LanguageFlag picks the flag shown next to text written in lang. Unknown
// codes fall back to the code itself in brackets.
func LanguageFlag(lang string) string {
	base := strings.ToLower(lang)
	region := ""
	if i := strings.IndexByte(base, '-'); i >= 0 {
		base, region = base[:i], base[i+1:]
	}
	if region == "" {
		region = languageCountries[base]
	}
	if region == "" {
		region = base
	}
	if flag := EncodeFlag(region); flag != "" {
		return flag
	}
	return "[" + lang + "]"
}
