package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/teacher-directory/internal/i18n"
)

const (
	// ContextLanguageKey stores the active language code.
	ContextLanguageKey = "language"
	// ContextTranslatorKey stores the *i18n.Translator for the active language.
	ContextTranslatorKey = "translator"
)

// Language resolves the active language from the lang cookie, then Accept-Language,
// then defaultLang, and exposes a translator for it.
func Language(bundle *i18n.Bundle, defaultLang string) gin.HandlerFunc {
	if !bundle.Has(defaultLang) {
		defaultLang = i18n.BaseLanguage
	}
	return func(c *gin.Context) {
		stored, _ := c.Cookie(i18n.CookieName)
		accept := c.GetHeader("Accept-Language")

		code := defaultLang
		if bundle.Has(strings.TrimSpace(stored)) || strings.TrimSpace(accept) != "" {
			code = bundle.Resolve(stored, accept)
		}

		c.Set(ContextLanguageKey, code)
		c.Set(ContextTranslatorKey, bundle.Translator(code))
		c.Next()
	}
}

// Translator returns the translator chosen by Language. Without the middleware it is nil,
// which translates every key to itself.
func Translator(c *gin.Context) *i18n.Translator {
	if value, ok := c.Get(ContextTranslatorKey); ok {
		if tr, ok := value.(*i18n.Translator); ok {
			return tr
		}
	}
	return nil
}
