package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"golang.org/x/text/language"
)

func TestMatchLanguage(t *testing.T) {
	tests := []struct {
		name      string
		preferred string
		accept    string
		want      language.Tag
	}{
		{"nothing falls back to english", "", "", language.English},
		{"accept language", "", "fr-CH, fr;q=0.9, en;q=0.8", language.French},
		{"cookie wins", "es", "fr-CH, fr;q=0.9", language.Spanish},
		{"unknown cookie uses header", "xx-invalid!", "de", language.German},
		{"unsupported header", "", "sw", language.English},
		{"regional variant", "", "pt-BR", language.Portuguese},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := MatchLanguage(tt.preferred, tt.accept)
			base, _ := got.Base()
			wantBase, _ := tt.want.Base()
			assert.Equal(t, wantBase, base)
		})
	}
}

func TestIsSupportedLanguage(t *testing.T) {
	tag, ok := IsSupportedLanguage("ja")
	assert.True(t, ok)
	assert.Equal(t, language.Japanese, tag)

	_, ok = IsSupportedLanguage("sw")
	assert.False(t, ok)
	_, ok = IsSupportedLanguage("")
	assert.False(t, ok)
}

func TestLanguage(t *testing.T) {
	var got language.Tag
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = LanguageFromContext(r.Context())
	})
	req := httptest.NewRequest(http.MethodGet, "http://test/", nil)
	req.Header.Set("Accept-Language", "ko")
	req.AddCookie(&http.Cookie{Name: LanguageCookieName, Value: "zh"})
	rr := httptest.NewRecorder()

	Language(next).ServeHTTP(rr, req)

	base, _ := got.Base()
	zh, _ := language.Chinese.Base()
	assert.Equal(t, zh, base)
	assert.Equal(t, "zh", rr.Header().Get("Content-Language"))
}
