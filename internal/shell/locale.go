package shell

// DefaultLocale is used for languages without a recognizer locale.
const DefaultLocale = "en-US"

// recognizerLocales maps language codes to speech recognizer locales. It is
// a subset of the gateway registry.
var recognizerLocales = map[string]string{
	"en": "en-US",
	"hi": "hi-IN",
	"bn": "bn-IN",
	"te": "te-IN",
	"mr": "mr-IN",
	"ta": "ta-IN",
	"gu": "gu-IN",
	"kn": "kn-IN",
	"ml": "ml-IN",
	"pa": "pa-IN",
	"ur": "ur-PK",
	"es": "es-ES",
	"fr": "fr-FR",
	"zh": "zh-CN",
	"ar": "ar-SA",
}

// LocaleFor returns the recognizer locale for code.
func LocaleFor(code string) string {
	if l, ok := recognizerLocales[code]; ok {
		return l
	}
	return DefaultLocale
}
