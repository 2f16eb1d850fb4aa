package media

// Recognition languages the pipeline supports. Each maps to one installable
// speech model.
const (
	LanguageChinese = "zh"
	LanguageEnglish = "en"
)

// IsSupportedLanguage reports whether a speech model can exist for lang
func IsSupportedLanguage(lang string) bool {
	return lang == LanguageChinese || lang == LanguageEnglish
}
