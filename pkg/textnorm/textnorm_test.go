package textnorm

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{name: "empty", input: "", want: ""},
		{name: "accents and case", input: "Que Horas São?", want: "que horas sao"},
		{name: "currency and punctuation", input: "iPhone 12, até R$ 3.500!!", want: "iphone 12 ate r 3 500"},
		{name: "collapse whitespace", input: "  bom\t\tdia \n ", want: "bom dia"},
		{name: "spanish", input: "¿Cuánto cuesta el teléfono?", want: "cuanto cuesta el telefono"},
		{name: "cedilla and tilde", input: "Promoção AÇÃO", want: "promocao acao"},
		{name: "only symbols", input: "?!...", want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Normalize(tt.input))
		})
	}
}

func TestNormalizeIsIdempotent(t *testing.T) {
	inputs := []string{
		"Bom dia!", "iphone 12 128GB preto", "Até R$ 1.234,56", "ÁÉÍÓÚ ñ ç",
		"e drone", "   ", "2º lugar", "US$ 300 - Gs 150.000",
	}
	for _, in := range inputs {
		once := Normalize(in)
		assert.Equal(t, once, Normalize(once), "input %q", in)
	}
}

func TestTokenize(t *testing.T) {
	assert.Equal(t, []string{"iphone", "12", "128gb"}, NormalizeTokens("iPhone 12 - 128GB"))
	assert.Empty(t, Tokenize(""))
}

func TestSingularize(t *testing.T) {
	tests := []struct {
		token string
		want  string
	}{
		{"celulares", "celular"},
		{"limoes", "limao"},
		{"paes", "pao"},
		{"anais", "anal"},
		{"jardins", "jardim"},
		{"drones", "dron"},
		{"fones", "fon"},
		{"notebooks", "notebook"},
		{"tvs", "tvs"},
		{"mes", "mes"},
		{"gas", "gas"},
	}

	for _, tt := range tests {
		t.Run(tt.token, func(t *testing.T) {
			assert.Equal(t, tt.want, Singularize(tt.token))
		})
	}
}

func TestSingularizeStableOnSingulars(t *testing.T) {
	singulars := []string{"celular", "drone", "iphone", "notebook", "camisa", "perfume", "cabo", "mouse", "limao", "jardim"}
	for _, s := range singulars {
		assert.Equal(t, s, Singularize(s), "token %q", s)
	}
}

func TestDetectLanguage(t *testing.T) {
	assert.Equal(t, LangES, DetectLanguage(NormalizeTokens("hola, busco un celular barato")))
	assert.Equal(t, LangPT, DetectLanguage(NormalizeTokens("oi, quero um celular")))
	assert.Equal(t, LangPT, DetectLanguage(nil))
}

func TestDetectLanguageOrKeepsFallback(t *testing.T) {
	assert.Equal(t, LangES, DetectLanguageOr(NormalizeTokens("iphone 12"), LangES))
	assert.Equal(t, LangPT, DetectLanguageOr(NormalizeTokens("quero iphone"), LangES))
	assert.Equal(t, LangPT, DetectLanguageOr(nil, ""))
}
