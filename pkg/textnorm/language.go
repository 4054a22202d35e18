package textnorm

// Language is the phrasing language of a turn.
type Language string

const (
	LangPT Language = "pt"
	LangES Language = "es"
)

var spanishMarkers = map[string]struct{}{
	"hola": {}, "quiero": {}, "busco": {}, "necesito": {}, "gracias": {}, "cuanto": {},
	"cuesta": {}, "hasta": {}, "desde": {}, "entre": {}, "mas": {}, "barato": {},
	"caro": {}, "tienes": {}, "tienen": {}, "quien": {}, "eres": {}, "ayuda": {},
	"buenos": {}, "buenas": {}, "negro": {}, "blanco": {}, "rojo": {}, "azul": {},
	"y": {}, "tambien": {}, "el": {}, "los": {}, "las": {}, "una": {}, "por": {},
	"favor": {}, "precio": {}, "hay": {}, "hora": {}, "es": {},
}

var portugueseMarkers = map[string]struct{}{
	"oi": {}, "ola": {}, "quero": {}, "procuro": {}, "preciso": {}, "obrigado": {},
	"obrigada": {}, "quanto": {}, "custa": {}, "ate": {}, "partir": {}, "mais": {},
	"caro": {}, "tem": {}, "voce": {}, "vc": {}, "ajuda": {}, "bom": {}, "boa": {},
	"preto": {}, "branco": {}, "vermelho": {}, "e": {}, "tambem": {}, "o": {},
	"os": {}, "um": {}, "uma": {}, "pra": {}, "para": {}, "preco": {}, "horas": {},
	"sao": {}, "nao": {},
}

// DetectLanguage picks es when Spanish marker words outnumber Portuguese ones.
// Portuguese is the default for ties and unknown text.
func DetectLanguage(tokens []string) Language {
	return DetectLanguageOr(tokens, LangPT)
}

// DetectLanguageOr returns fallback when no marker word of either language appears,
// so a session keeps its language across terse turns like "iphone 12".
func DetectLanguageOr(tokens []string, fallback Language) Language {
	es, pt := 0, 0
	for _, tok := range tokens {
		if _, ok := spanishMarkers[tok]; ok {
			es++
		}
		if _, ok := portugueseMarkers[tok]; ok {
			pt++
		}
	}
	switch {
	case es == 0 && pt == 0 && fallback != "":
		return fallback
	case es > pt:
		return LangES
	}
	return LangPT
}
