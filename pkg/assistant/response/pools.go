package response

import "shop-assistant-be/pkg/textnorm"

// Pool keys double as variant-counter keys in the session.
const (
	poolResultsIntro    = "results_intro"
	poolManyResults     = "many_results"
	poolNoExactMatch    = "no_exact_match"
	poolClarifyModel    = "clarify_model"
	poolClarifyPrice    = "clarify_price"
	poolClarifyColor    = "clarify_color"
	poolClarifyCategory = "clarify_category"
	poolNotFound        = "not_found"
	poolCrossSellIntro  = "cross_sell_intro"
	poolAccessoryIntro  = "accessory_intro"
	poolSmallTalk       = "small_talk"
	poolHelp            = "help"
	poolWhoAmI          = "whoami"
	poolTime            = "time"
	poolOutOfDomain     = "out_of_domain"
	poolUnknown         = "unknown"
)

type pools map[string][]string

// Templates taking a subject use a single %s.
var phrasing = map[textnorm.Language]pools{
	textnorm.LangPT: {
		poolResultsIntro: {
			"Encontrei estas opções pra você:",
			"Olha só o que eu achei:",
			"Separei algumas opções:",
			"Aqui estão os resultados:",
		},
		poolManyResults: {
			"Encontrei bastante coisa de %s.",
			"Tem várias opções de %s por aqui.",
			"Achei muitas opções de %s.",
		},
		poolNoExactMatch: {
			"Não encontrei exatamente %s.",
			"Hmm, não achei %s com esses detalhes.",
			"Por enquanto não apareceu %s assim.",
		},
		poolClarifyModel: {
			"Qual modelo de %s você procura?",
			"Tem algum modelo de %s em mente?",
			"Me diz qual modelo de %s você quer que eu procure.",
		},
		poolClarifyPrice: {
			"Quanto você pretende investir em %s?",
			"Qual é o seu orçamento para %s?",
			"Até quanto você quer gastar com %s?",
		},
		poolClarifyColor: {
			"Tem preferência de cor para %s?",
			"Qual cor de %s você prefere?",
			"E a cor, alguma preferência para %s?",
		},
		poolClarifyCategory: {
			"Pode me contar um pouco mais sobre o tipo de %s que você quer?",
			"Que tipo de %s seria ideal pra você?",
			"Me dá mais um detalhe sobre o %s que você procura?",
		},
		poolNotFound: {
			"Infelizmente não encontrei %s no momento.",
			"Poxa, não temos %s disponível agora.",
			"Procurei bem, mas não achei %s.",
		},
		poolCrossSellIntro: {
			"Que tal dar uma olhada em:",
			"Talvez você goste de:",
			"Posso te mostrar também:",
		},
		poolAccessoryIntro: {
			"Pra combinar, também temos:",
			"Aproveita e confere:",
			"Vai bem junto:",
		},
		poolSmallTalk: {
			"Oi! Tudo ótimo por aqui. O que você está procurando hoje?",
			"Olá! Em que posso te ajudar nas compras hoje?",
			"Oi, que bom te ver! Quer que eu procure algum produto?",
		},
		poolHelp: {
			"Eu te ajudo a encontrar produtos. Diga o que procura, por exemplo \"iphone 12 preto até 4000\".",
			"É só me dizer o produto, modelo, cor ou faixa de preço que eu busco pra você.",
			"Posso procurar produtos, comparar preços e mostrar o mais barato. Experimente \"drone mais barato\".",
		},
		poolWhoAmI: {
			"Sou o assistente virtual da loja e estou aqui pra te ajudar a encontrar produtos.",
			"Eu sou um assistente de compras automático. Me diga o que você procura!",
		},
		poolTime: {
			"Agora são %s.",
			"São %s neste momento.",
		},
		poolOutOfDomain: {
			"Posso te ajudar com produtos da loja. Qual produto você procura?",
			"Esse assunto eu não sei responder, mas posso buscar produtos pra você. O que você quer?",
			"Não entendi qual produto você procura. Pode me dizer o nome dele?",
		},
		poolUnknown: {
			"Não entendi muito bem. Pode repetir de outro jeito?",
			"Desculpa, não captei. O que você está procurando?",
		},
	},
	textnorm.LangES: {
		poolResultsIntro: {
			"Encontré estas opciones para ti:",
			"Mira lo que encontré:",
			"Te separé algunas opciones:",
			"Aquí están los resultados:",
		},
		poolManyResults: {
			"Encontré muchas opciones de %s.",
			"Hay varias opciones de %s.",
			"Tengo bastantes opciones de %s.",
		},
		poolNoExactMatch: {
			"No encontré exactamente %s.",
			"Hmm, no hallé %s con esos detalles.",
			"Por ahora no aparece %s así.",
		},
		poolClarifyModel: {
			"¿Qué modelo de %s buscas?",
			"¿Tienes algún modelo de %s en mente?",
			"¿Cuál modelo de %s quieres que busque?",
		},
		poolClarifyPrice: {
			"¿Cuánto quieres invertir en %s?",
			"¿Cuál es tu presupuesto para %s?",
			"¿Hasta cuánto quieres gastar en %s?",
		},
		poolClarifyColor: {
			"¿Tienes preferencia de color para %s?",
			"¿Qué color de %s prefieres?",
			"¿Y el color de %s, alguna preferencia?",
		},
		poolClarifyCategory: {
			"¿Me cuentas un poco más sobre el tipo de %s que quieres?",
			"¿Qué tipo de %s sería ideal para ti?",
			"¿Me das un detalle más sobre el %s que buscas?",
		},
		poolNotFound: {
			"Lamentablemente no encontré %s por ahora.",
			"Uy, no tenemos %s disponible ahora.",
			"Busqué bien, pero no encontré %s.",
		},
		poolCrossSellIntro: {
			"¿Qué tal echar un vistazo a:",
			"Quizás te guste:",
			"También puedo mostrarte:",
		},
		poolAccessoryIntro: {
			"Para combinar, también tenemos:",
			"Aprovecha y mira:",
			"Va muy bien con:",
		},
		poolSmallTalk: {
			"¡Hola! Todo bien por aquí. ¿Qué estás buscando hoy?",
			"¡Hola! ¿En qué te ayudo con tus compras hoy?",
			"¡Qué gusto! ¿Quieres que busque algún producto?",
		},
		poolHelp: {
			"Te ayudo a encontrar productos. Dime qué buscas, por ejemplo \"iphone 12 negro hasta 4000\".",
			"Solo dime el producto, modelo, color o rango de precio y lo busco para ti.",
			"Puedo buscar productos, comparar precios y mostrarte el más barato. Prueba \"drone más barato\".",
		},
		poolWhoAmI: {
			"Soy el asistente virtual de la tienda y estoy aquí para ayudarte a encontrar productos.",
			"Soy un asistente de compras automático. ¡Dime qué buscas!",
		},
		poolTime: {
			"Ahora son las %s.",
			"Son las %s en este momento.",
		},
		poolOutOfDomain: {
			"Puedo ayudarte con productos de la tienda. ¿Qué producto buscas?",
			"De ese tema no sé, pero puedo buscar productos para ti. ¿Qué quieres?",
			"No entendí qué producto buscas. ¿Me dices el nombre?",
		},
		poolUnknown: {
			"No entendí muy bien. ¿Puedes decirlo de otra forma?",
			"Perdón, no capté. ¿Qué estás buscando?",
		},
	},
}

type lineWords struct {
	askPrice   string
	inStock    string
	outOfStock string
}

var productLineWords = map[textnorm.Language]lineWords{
	textnorm.LangPT: {askPrice: "preço sob consulta", inStock: "em estoque", outOfStock: "esgotado"},
	textnorm.LangES: {askPrice: "precio a consultar", inStock: "en stock", outOfStock: "agotado"},
}

func poolFor(lang textnorm.Language, key string) []string {
	if p, ok := phrasing[lang][key]; ok && len(p) > 0 {
		return p
	}
	return phrasing[textnorm.LangPT][key]
}
