package middleware

import (
	"context"
	"net/http"

	"golang.org/x/text/language"
)

// LanguageCookieName stores the language chosen by the user.
const LanguageCookieName = "PREFERRED_LANGUAGE"

const languageKey contextKey = "language"

// SupportedLanguages lists the UI languages; the first one is the fallback.
var SupportedLanguages = []language.Tag{
	language.English,
	language.Spanish,
	language.Chinese,
	language.French,
	language.German,
	language.Japanese,
	language.Korean,
	language.Portuguese,
}

var languageMatcher = language.NewMatcher(SupportedLanguages)

// MatchLanguage resolves the preferred language. An explicit preference
// wins over the Accept-Language header.
func MatchLanguage(preferred, acceptLanguage string) language.Tag {
	var wanted []language.Tag
	if preferred != "" {
		if t, err := language.Parse(preferred); err == nil {
			wanted = append(wanted, t)
		}
	}
	if tags, _, err := language.ParseAcceptLanguage(acceptLanguage); err == nil {
		wanted = append(wanted, tags...)
	}
	_, idx, _ := languageMatcher.Match(wanted...)
	return SupportedLanguages[idx]
}

// IsSupportedLanguage reports whether code names a supported language exactly.
func IsSupportedLanguage(code string) (language.Tag, bool) {
	t, err := language.Parse(code)
	if err != nil {
		return language.Und, false
	}
	base, _ := t.Base()
	for _, s := range SupportedLanguages {
		if sb, _ := s.Base(); sb == base {
			return s, true
		}
	}
	return language.Und, false
}

// LanguageFromContext returns the language resolved by Language.
func LanguageFromContext(ctx context.Context) language.Tag {
	if t, ok := ctx.Value(languageKey).(language.Tag); ok {
		return t
	}
	return SupportedLanguages[0]
}

// Language resolves the request language and stores it in the context.
func Language(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var preferred string
		if c, err := r.Cookie(LanguageCookieName); err == nil {
			preferred = c.Value
		}
		tag := MatchLanguage(preferred, r.Header.Get("Accept-Language"))
		w.Header().Set("Content-Language", tag.String())
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), languageKey, tag)))
	})
}
