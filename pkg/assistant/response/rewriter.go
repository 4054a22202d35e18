package response

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	"shop-assistant-be/internal/pkg/logger"
	"shop-assistant-be/pkg/llm"
	"shop-assistant-be/pkg/textnorm"
)

const (
	minRewriteRatio = 0.5
	maxRewriteRatio = 2.5
	rewriteTokens   = 400
)

var rePriceString = regexp.MustCompile(`R\$\s?[\d.,]+`)

// Fragments of the prompt itself. Output containing any of them is an echo.
var instructionMarkers = []string{
	"<rascunho>",
	"</rascunho>",
	"<borrador>",
	"</borrador>",
	"reescreva",
	"reescribe",
	"instrucoes:",
	"instrucciones:",
	"tom:",
	"tono:",
}

// Rewriter restyles an already correct reply through an LLM. Any doubt about the
// output returns the draft unchanged.
type Rewriter struct {
	provider llm.LLMProvider
	tone     string
	timeout  time.Duration
	logger   logger.ILogger
}

func NewRewriter(provider llm.LLMProvider, tone string, timeout time.Duration, log logger.ILogger) *Rewriter {
	if tone == "" {
		tone = "amigavel"
	}
	if timeout <= 0 {
		timeout = 3 * time.Second
	}
	return &Rewriter{provider: provider, tone: tone, timeout: timeout, logger: log}
}

// Rewrite returns the restyled draft, or the draft itself when the provider is
// missing, fails, times out or produces something unusable.
func (r *Rewriter) Rewrite(ctx context.Context, draft string, lang textnorm.Language) string {
	if r == nil || r.provider == nil || strings.TrimSpace(draft) == "" {
		return draft
	}

	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	out, err := r.provider.Generate(ctx, r.prompt(draft, lang),
		llm.WithTemperature(0.4),
		llm.WithMaxTokens(rewriteTokens),
	)
	if err != nil {
		r.logger.Warn("Rewrite", "Provider failed, keeping draft", map[string]interface{}{
			"error": err.Error(),
		})
		return draft
	}

	out = strings.Trim(strings.TrimSpace(out), "\"")
	if reason := rejectRewrite(draft, out); reason != "" {
		r.logger.Debug("Rewrite", "Rewrite rejected, keeping draft", map[string]interface{}{
			"reason": reason,
		})
		return draft
	}
	return out
}

func (r *Rewriter) prompt(draft string, lang textnorm.Language) string {
	if lang == textnorm.LangES {
		return fmt.Sprintf("Reescribe el mensaje de un asistente de tienda en español.\n"+
			"Instrucciones: mantén todos los productos, precios y números exactamente iguales. "+
			"No agregues información. Responde solo con el mensaje.\nTono: %s\n<borrador>\n%s\n</borrador>",
			r.tone, draft)
	}
	return fmt.Sprintf("Reescreva a mensagem de um assistente de loja em português.\n"+
		"Instruções: mantenha todos os produtos, preços e números exatamente iguais. "+
		"Não acrescente informação. Responda apenas com a mensagem.\nTom: %s\n<rascunho>\n%s\n</rascunho>",
		r.tone, draft)
}

// rejectRewrite returns why out cannot replace draft, or "" when it can.
func rejectRewrite(draft, out string) string {
	if out == "" {
		return "empty"
	}

	dl := float64(utf8.RuneCountInString(draft))
	ol := float64(utf8.RuneCountInString(out))
	if ol < dl*minRewriteRatio {
		return "too short"
	}
	if ol > dl*maxRewriteRatio {
		return "too long"
	}

	folded := textnorm.Fold(out)
	for _, m := range instructionMarkers {
		if strings.Contains(folded, m) {
			return "echoed instructions"
		}
	}

	for _, p := range rePriceString.FindAllString(draft, -1) {
		if !strings.Contains(out, strings.TrimRight(p, ".,")) {
			return "dropped price " + p
		}
	}
	return ""
}
