package translator

import (
	"elk-bot/model"
	"fmt"

	"github.com/abadojack/whatlanggo"
)

// iso6391Fallback covers languages whatlanggo knows but has no ISO 639-1
// code for. The rest fall back to their 639-3 code.
var iso6391Fallback = map[whatlanggo.Lang]string{
	whatlanggo.Pes: "fa",
	whatlanggo.Ydd: "yi",
}

// Whatlang detects languages with trigram statistics. It has no random
// state, so the same text always yields the same code.
type Whatlang struct {
	// Options restricts detection, e.g. to a whitelist of languages.
	Options whatlanggo.Options
}

func (w Whatlang) Detect(text string) (string, error) {
	info := whatlanggo.DetectWithOptions(text, w.Options)
	if code := LanguageCode(info.Lang); code != "" {
		return code, nil
	}
	return "", fmt.Errorf("%w: no language recognised", model.ErrDetection)
}

// LanguageCode maps a whatlanggo language to the code used by role names and
// the translation service. It returns "" for an unknown language.
func LanguageCode(lang whatlanggo.Lang) string {
	if code := lang.Iso6391(); code != "" {
		return code
	}
	if code, ok := iso6391Fallback[lang]; ok {
		return code
	}
	return lang.Iso6393()
}
