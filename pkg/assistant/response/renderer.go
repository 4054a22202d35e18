// FILE: pkg/assistant/response/renderer.go
// PURPOSE: Turn a dialogue decision into reply text with per-session phrasing rotation

package response

import (
	"context"
	"fmt"
	"strings"
	"time"

	"shop-assistant-be/internal/pkg/logger"
	"shop-assistant-be/pkg/assistant/intent"
	"shop-assistant-be/pkg/assistant/policy"
	"shop-assistant-be/pkg/catalog"
	"shop-assistant-be/pkg/textnorm"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// VariantPicker advances a session's rotation counter for a pool.
type VariantPicker interface {
	NextVariant(ctx context.Context, id, key string, poolSize int) (int, error)
}

type Renderer struct {
	picker VariantPicker
	logger logger.ILogger
}

func NewRenderer(picker VariantPicker, log logger.ILogger) *Renderer {
	return &Renderer{picker: picker, logger: log}
}

// Render formats a catalog decision. It only prints what the items carry.
func (r *Renderer) Render(ctx context.Context, sessionID string, lang textnorm.Language, d policy.Decision) string {
	subject := Subject(d.Query, lang)
	var lines []string

	switch d.Type {
	case policy.Results:
		lines = append(lines, r.pick(ctx, sessionID, lang, poolResultsIntro))
		for i, it := range d.Items {
			lines = append(lines, FormatItem(i+1, it, lang))
		}
		if len(d.Suggestions) > 0 {
			lines = append(lines, r.pick(ctx, sessionID, lang, poolAccessoryIntro)+" "+strings.Join(d.Suggestions, ", ")+".")
		}

	case policy.Clarification:
		lead := poolManyResults
		if d.Total == 0 {
			lead = poolNoExactMatch
		}
		lines = append(lines,
			r.pick(ctx, sessionID, lang, lead, subject)+" "+r.pick(ctx, sessionID, lang, clarifyPool(d.Focus), subject))

	default:
		lines = append(lines, r.pick(ctx, sessionID, lang, poolNotFound, subject))
		if len(d.Suggestions) > 0 {
			lines = append(lines, r.pick(ctx, sessionID, lang, poolCrossSellIntro))
			for _, s := range d.Suggestions {
				lines = append(lines, "- "+s)
			}
		}
	}

	return strings.Join(lines, "\n")
}

// RenderConversational answers turns that never reach the catalog.
func (r *Renderer) RenderConversational(ctx context.Context, sessionID string, lang textnorm.Language, in intent.Intent, now time.Time) string {
	switch in {
	case intent.SmallTalk:
		return r.pick(ctx, sessionID, lang, poolSmallTalk)
	case intent.Help:
		return r.pick(ctx, sessionID, lang, poolHelp)
	case intent.WhoAmI:
		return r.pick(ctx, sessionID, lang, poolWhoAmI)
	case intent.TimeQuery:
		return r.pick(ctx, sessionID, lang, poolTime, now.Format("15:04"))
	case intent.OutOfDomain:
		return r.pick(ctx, sessionID, lang, poolOutOfDomain)
	default:
		return r.pick(ctx, sessionID, lang, poolUnknown)
	}
}

func (r *Renderer) pick(ctx context.Context, sessionID string, lang textnorm.Language, key string, args ...interface{}) string {
	pool := poolFor(lang, key)
	if len(pool) == 0 {
		return ""
	}

	idx := 0
	if r.picker != nil {
		n, err := r.picker.NextVariant(ctx, sessionID, key, len(pool))
		if err != nil {
			r.logger.Warn("Renderer", "Variant rotation failed, using first phrasing", map[string]interface{}{
				"session_id": sessionID,
				"pool":       key,
				"error":      err.Error(),
			})
		} else if n >= 0 && n < len(pool) {
			idx = n
		}
	}

	if len(args) == 0 {
		return pool[idx]
	}
	return fmt.Sprintf(pool[idx], args...)
}

func clarifyPool(f policy.ClarificationFocus) string {
	switch f {
	case policy.AskModel:
		return poolClarifyModel
	case policy.AskPrice:
		return poolClarifyPrice
	case policy.AskColor:
		return poolClarifyColor
	default:
		return poolClarifyCategory
	}
}

// Subject names what the query is about, e.g. "iphone 12".
func Subject(q catalog.QuerySignal, lang textnorm.Language) string {
	subject := q.Product
	if subject == "" {
		subject = q.Category
	}
	if subject == "" {
		if lang == textnorm.LangES {
			return "eso"
		}
		return "isso"
	}
	if q.Model != "" {
		subject += " " + q.Model
	}
	return subject
}

// FormatItem renders one numbered product line: title, brand, price, stock.
func FormatItem(n int, it catalog.Item, lang textnorm.Language) string {
	words, ok := productLineWords[lang]
	if !ok {
		words = productLineWords[textnorm.LangPT]
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%d. %s", n, it.Title)
	if it.Brand != nil && *it.Brand != "" {
		fmt.Fprintf(&b, " (%s)", *it.Brand)
	}
	b.WriteString(" - ")
	if it.Price != nil {
		b.WriteString(FormatPrice(*it.Price, lang))
	} else {
		b.WriteString(words.askPrice)
	}
	b.WriteString(" - ")
	if it.InStock {
		b.WriteString(words.inStock)
	} else {
		b.WriteString(words.outOfStock)
	}
	return b.String()
}

// FormatPrice prints a BRL amount with locale grouping, e.g. "R$ 1.234,56".
func FormatPrice(v float64, lang textnorm.Language) string {
	tag := language.BrazilianPortuguese
	if lang == textnorm.LangES {
		tag = language.Spanish
	}
	return "R$ " + message.NewPrinter(tag).Sprintf("%.2f", v)
}
