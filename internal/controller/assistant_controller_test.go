package controller

import (
	"encoding/json"
	"io"
	"net/http/httptest"
	"strings"
	"testing"

	"shop-assistant-be/internal/dto"
	"shop-assistant-be/internal/pkg/logger"
	"shop-assistant-be/internal/pkg/serverutils"
	"shop-assistant-be/internal/repository/memory"
	"shop-assistant-be/internal/service"
	"shop-assistant-be/pkg/assistant/pipeline"
	"shop-assistant-be/pkg/canon"
	"shop-assistant-be/pkg/catalog"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const adminToken = "test-token"

func price(v float64) *float64 { return &v }

func newTestApp(t *testing.T) *fiber.App {
	t.Helper()
	log := logger.NewNopLogger()
	dict := canon.NewStore(log)
	items := []catalog.Item{
		{ID: "1", Title: "iPhone 12 128GB Preto", Category: "celular", Price: price(3999), InStock: true},
		{ID: "2", Title: "Perfume Floral 100ml", Category: "perfumaria", Price: price(249.9), InStock: true},
	}
	sessions := memory.NewSessionRepository(0, nil, log)
	p := pipeline.New(dict, sessions, catalog.NewMemoryExecutor(items, dict), log)
	svc := service.NewAssistantService(p, sessions, dict, "", nil, log)

	app := fiber.New()
	app.Use(serverutils.ErrorHandlerMiddleware())
	api := app.Group("/api")
	NewAssistantController(svc, nil, log).RegisterRoutes(api)
	NewAssistantAdminController(svc, adminToken).RegisterRoutes(api)
	return app
}

func decode[T any](t *testing.T, body io.Reader) serverutils.Response[T] {
	t.Helper()
	raw, err := io.ReadAll(body)
	require.NoError(t, err)
	var res serverutils.Response[T]
	require.NoError(t, json.Unmarshal(raw, &res))
	return res
}

func postChat(t *testing.T, app *fiber.App, body string) (int, serverutils.Response[dto.ChatResponse]) {
	t.Helper()
	req := httptest.NewRequest("POST", "/api/assistant/chat", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	require.NoError(t, err)
	if resp.StatusCode != fiber.StatusOK {
		return resp.StatusCode, serverutils.Response[dto.ChatResponse]{}
	}
	return resp.StatusCode, decode[dto.ChatResponse](t, resp.Body)
}

func TestChatEndpoint(t *testing.T) {
	app := newTestApp(t)

	status, res := postChat(t, app, `{"session_id":"web-1","message":"iphone 12 128gb preto"}`)
	require.Equal(t, fiber.StatusOK, status)
	assert.True(t, res.Success)
	assert.Equal(t, "web-1", res.Data.SessionId)
	assert.Equal(t, "PRODUCT_SEARCH", res.Data.Intent)
	assert.Equal(t, "results", res.Data.ResponseType)
	require.Len(t, res.Data.Items, 1)
	assert.Equal(t, "1", res.Data.Items[0].Id)
	assert.NotEmpty(t, res.Data.Reply)

	status, res = postChat(t, app, `{"message":"Bom dia"}`)
	require.Equal(t, fiber.StatusOK, status)
	assert.NotEmpty(t, res.Data.SessionId)
	assert.Equal(t, "SMALL_TALK", res.Data.Intent)
}

func TestChatEndpointRejectsBadInput(t *testing.T) {
	app := newTestApp(t)

	tests := []struct {
		name string
		body string
	}{
		{name: "malformed json", body: `{"message":`},
		{name: "missing message", body: `{"session_id":"x"}`},
		{name: "message too long", body: `{"message":"` + strings.Repeat("a", 501) + `"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, _ := postChat(t, app, tt.body)
			assert.Equal(t, fiber.StatusBadRequest, status)
		})
	}
}

func TestHistoryWithoutDatabase(t *testing.T) {
	app := newTestApp(t)
	resp, err := app.Test(httptest.NewRequest("GET", "/api/assistant/sessions/web-1/history", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusServiceUnavailable, resp.StatusCode)
}

func TestWebSocketRequiresUpgrade(t *testing.T) {
	app := newTestApp(t)
	resp, err := app.Test(httptest.NewRequest("GET", "/api/assistant/ws", nil))
	require.NoError(t, err)
	// No hub is wired in this app.
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
}

func TestAdminSessionRoutes(t *testing.T) {
	app := newTestApp(t)

	status, _ := postChat(t, app, `{"session_id":"web-2","message":"quero perfume"}`)
	require.Equal(t, fiber.StatusOK, status)

	get := func(method, path, token string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(method, path, nil)
		if token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
		resp, err := app.Test(req)
		require.NoError(t, err)
		rec := httptest.NewRecorder()
		rec.Code = resp.StatusCode
		_, _ = io.Copy(rec.Body, resp.Body)
		return rec
	}

	rec := get("GET", "/api/admin/assistant/sessions/web-2", "")
	assert.Equal(t, fiber.StatusUnauthorized, rec.Code)

	rec = get("GET", "/api/admin/assistant/sessions/web-2", adminToken)
	require.Equal(t, fiber.StatusOK, rec.Code)
	snap := decode[dto.SessionSnapshotResponse](t, rec.Body)
	assert.Equal(t, "perfume", snap.Data.FocusProduct)
	assert.Equal(t, 1, snap.Data.Turns)

	rec = get("DELETE", "/api/admin/assistant/sessions/web-2", adminToken)
	assert.Equal(t, fiber.StatusOK, rec.Code)

	rec = get("GET", "/api/admin/assistant/sessions/web-2", adminToken)
	require.Equal(t, fiber.StatusOK, rec.Code)
	snap = decode[dto.SessionSnapshotResponse](t, rec.Body)
	assert.Empty(t, snap.Data.FocusProduct)

	rec = get("POST", "/api/admin/assistant/canon/reload", adminToken)
	assert.Equal(t, fiber.StatusBadRequest, rec.Code)
}
