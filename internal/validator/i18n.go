package validator

import (
	"embed"

	"github.com/kaptinlin/go-i18n"
)

//go:embed locales/*.json
var localesFS embed.FS

// Bundle returns an initialized internationalization bundle with embedded
// locales, for use with Localize. The server itself publishes the English
// ValidationError.Message and does not call Bundle.
func Bundle() (*i18n.I18n, error) {
	bundle := i18n.NewBundle(
		i18n.WithDefaultLocale("en"),
		i18n.WithLocales("en", "zh-Hans"),
	)
	err := bundle.LoadFS(localesFS, "locales/*.json")
	return bundle, err
}

// Localize renders a ValidationError's message through the bundle for a
// given locale, falling back to the error's own English Message if the
// code has no localized template.
func Localize(bundle *i18n.I18n, locale string, e *ValidationError) string {
	if bundle == nil {
		return e.Message
	}
	localizer := bundle.NewLocalizer(locale)
	msg, err := localizer.Translate(e.Code, e.Params)
	if err != nil || msg == "" {
		return e.Message
	}
	return msg
}
