// FILE: pkg/assistant/pipeline/pipeline.go
// PURPOSE: One conversational turn, from raw utterance to reply text

package pipeline

import (
	"context"
	"errors"
	"time"

	"shop-assistant-be/internal/pkg/logger"
	"shop-assistant-be/pkg/assistant/intent"
	"shop-assistant-be/pkg/assistant/policy"
	"shop-assistant-be/pkg/assistant/query"
	"shop-assistant-be/pkg/assistant/response"
	"shop-assistant-be/pkg/assistant/slots"
	"shop-assistant-be/pkg/catalog"
	"shop-assistant-be/pkg/store"
	"shop-assistant-be/pkg/textnorm"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

var ErrEmptySessionID = errors.New("session id is required")

// Reply is what one turn produces for the caller.
type Reply struct {
	SessionID    string                    `json:"session_id"`
	Text         string                    `json:"text"`
	Language     textnorm.Language         `json:"language"`
	Intent       intent.Intent             `json:"intent"`
	ResponseType policy.ResponseType       `json:"response_type,omitempty"`
	Focus        policy.ClarificationFocus `json:"clarification_focus,omitempty"`
	Items        []catalog.Item            `json:"items,omitempty"`
	Suggestions  []string                  `json:"suggestions,omitempty"`
	Query        *catalog.QuerySignal      `json:"query,omitempty"`
}

// TurnEvent describes a finished turn for analytics and the message log.
type TurnEvent struct {
	SessionID    string
	Utterance    string
	Reply        Reply
	ResultCount  int
	FocusChanged bool
	SlotFilled   bool
	Paging       bool
	RewriteTried bool
	Rewritten    bool
	Duration     time.Duration
	At           time.Time
}

// Observer is notified after every turn. It must not block for long.
type Observer interface {
	ObserveTurn(ctx context.Context, ev TurnEvent)
}

type Option func(*Pipeline)

func WithRewriter(rw *response.Rewriter) Option {
	return func(p *Pipeline) { p.rewriter = rw }
}

func WithObserver(o Observer) Option {
	return func(p *Pipeline) { p.observers = append(p.observers, o) }
}

// WithClock overrides the time source used for time queries and event stamps.
func WithClock(now func() time.Time) Option {
	return func(p *Pipeline) { p.now = now }
}

type Pipeline struct {
	classifier *intent.Classifier
	sessions   store.SessionStore
	catalog    catalog.Executor
	renderer   *response.Renderer
	rewriter   *response.Rewriter
	observers  []Observer
	gate       *sessionGate
	tracer     trace.Tracer
	logger     logger.ILogger
	now        func() time.Time
}

func New(dict intent.DictionarySource, sessions store.SessionStore, exec catalog.Executor, log logger.ILogger, opts ...Option) *Pipeline {
	p := &Pipeline{
		classifier: intent.NewClassifier(dict),
		sessions:   sessions,
		catalog:    exec,
		renderer:   response.NewRenderer(sessions, log),
		gate:       newSessionGate(),
		tracer:     otel.Tracer("shop-assistant/pipeline"),
		logger:     log,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Handle runs one turn. Turns of the same session are serialized; conversational
// failures never surface as errors, only a cancelled wait for the session does.
func (p *Pipeline) Handle(ctx context.Context, sessionID, utterance string) (Reply, error) {
	if sessionID == "" {
		return Reply{}, ErrEmptySessionID
	}

	release, err := p.gate.Acquire(ctx, sessionID)
	if err != nil {
		return Reply{}, err
	}
	defer release()

	start := p.now()
	ctx, span := p.tracer.Start(ctx, "assistant.turn", trace.WithAttributes(
		attribute.String("session.id", sessionID),
	))
	defer span.End()
	ctx = catalog.WithSession(ctx, sessionID)

	sess := p.loadSession(ctx, sessionID)

	normalized := textnorm.Normalize(utterance)
	tokens := textnorm.Tokenize(normalized)
	lang := textnorm.DetectLanguageOr(tokens, textnorm.Language(sess.Language))
	res := p.classifier.Classify(normalized)

	ev := TurnEvent{SessionID: sessionID, Utterance: utterance, At: start}
	reply := Reply{SessionID: sessionID, Language: lang, Intent: res.Intent}
	patch := store.Patch{Language: store.String(string(lang)), CountTurn: true}

	switch {
	case res.Intent.Conversational():
		reply.Text = p.renderer.RenderConversational(ctx, sessionID, lang, res.Intent, p.now())

	default:
		ex := slots.Extract(utterance)
		out := query.Build(query.Input{
			Intent: res,
			Slots:  ex,
			Price:  ex.Price,
			Focus:  sess.Focus(),
			Tokens: tokens,
		})

		if out.OutOfDomain {
			reply.Intent = intent.OutOfDomain
			if len(normalized) < 2 {
				reply.Intent = intent.Unknown
			}
			reply.Text = p.renderer.RenderConversational(ctx, sessionID, lang, reply.Intent, p.now())
			break
		}

		reply.Intent = intent.ProductSearch
		items := p.search(ctx, *out.Query)
		d := policy.Decide(policy.Input{Query: *out.Query, Results: items, FailedFocus: sess.FailedFocus})

		reply.ResponseType = d.Type
		reply.Focus = d.Focus
		reply.Items = d.Items
		reply.Suggestions = d.Suggestions
		reply.Query = out.Query
		reply.Text = p.renderer.Render(ctx, sessionID, lang, d)

		patch.FocusProduct = store.String(out.NewFocus.Product)
		patch.FocusCategory = store.String(out.NewFocus.Category)
		patch.LastQuery = out.Query
		switch {
		case d.MarkFailure:
			patch.FailedFocus = store.String(out.Query.FocusKey())
		case d.ClearFailure:
			patch.FailedFocus = store.String("")
		}

		ev.ResultCount = len(items)
		ev.FocusChanged = out.FocusChanged
		ev.SlotFilled = out.SlotFilled
		ev.Paging = out.Paging
	}

	if p.rewriter != nil {
		draft := reply.Text
		reply.Text = p.rewrite(ctx, draft, lang)
		ev.RewriteTried = true
		ev.Rewritten = reply.Text != draft
	}

	if _, err := p.sessions.Update(ctx, sessionID, patch); err != nil {
		p.logger.Error("Pipeline", "Failed to persist session after turn", map[string]interface{}{
			"session_id": sessionID,
			"error":      err.Error(),
		})
	}

	span.SetAttributes(
		attribute.String("assistant.intent", string(reply.Intent)),
		attribute.String("assistant.response_type", string(reply.ResponseType)),
		attribute.String("assistant.language", string(lang)),
		attribute.Int("assistant.results", ev.ResultCount),
	)

	ev.Reply = reply
	ev.Duration = p.now().Sub(start)
	for _, o := range p.observers {
		o.ObserveTurn(ctx, ev)
	}

	p.logger.Debug("Pipeline", "Turn handled", map[string]interface{}{
		"session_id":    sessionID,
		"intent":        reply.Intent,
		"response_type": reply.ResponseType,
		"results":       ev.ResultCount,
		"duration_ms":   ev.Duration.Milliseconds(),
	})

	return reply, nil
}

// loadSession never fails: a broken store yields a fresh, unsaved session.
func (p *Pipeline) loadSession(ctx context.Context, id string) *store.Session {
	sess, err := p.sessions.Get(ctx, id)
	if err != nil || sess == nil {
		fields := map[string]interface{}{"session_id": id}
		if err != nil {
			fields["error"] = err.Error()
		}
		p.logger.Warn("Pipeline", "Session unavailable, starting fresh", fields)
		return store.NewSession(id, store.NewSeed())
	}
	return sess
}

func (p *Pipeline) search(ctx context.Context, q catalog.QuerySignal) []catalog.Item {
	ctx, span := p.tracer.Start(ctx, "assistant.catalog", trace.WithAttributes(
		attribute.String("assistant.focus", q.FocusKey()),
		attribute.Int("assistant.offset", q.Offset),
	))
	defer span.End()

	items, err := p.catalog.Search(ctx, q)
	if err != nil {
		span.RecordError(err)
		p.logger.Warn("Pipeline", "Catalog search failed, treating as no results", map[string]interface{}{
			"focus": q.FocusKey(),
			"error": err.Error(),
		})
		return []catalog.Item{}
	}
	if items == nil {
		return []catalog.Item{}
	}
	return items
}

func (p *Pipeline) rewrite(ctx context.Context, draft string, lang textnorm.Language) string {
	ctx, span := p.tracer.Start(ctx, "assistant.rewrite")
	defer span.End()
	return p.rewriter.Rewrite(ctx, draft, lang)
}
