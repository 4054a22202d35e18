package controller

import (
	"context"
	"encoding/json"
	"errors"

	"shop-assistant-be/internal/dto"
	"shop-assistant-be/internal/pkg/logger"
	"shop-assistant-be/internal/pkg/serverutils"
	"shop-assistant-be/internal/service"
	internalWS "shop-assistant-be/internal/websocket"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
	"github.com/google/uuid"
)

type IAssistantController interface {
	RegisterRoutes(r fiber.Router)
	Chat(ctx *fiber.Ctx) error
	Stream(ctx *fiber.Ctx) error
	GetHistory(ctx *fiber.Ctx) error
}

type assistantController struct {
	service service.IAssistantService
	hub     *internalWS.Hub
	logger  logger.ILogger
}

// NewAssistantController builds the public chat routes. hub may be nil, which
// disables the WebSocket endpoint.
func NewAssistantController(service service.IAssistantService, hub *internalWS.Hub, log logger.ILogger) IAssistantController {
	return &assistantController{service: service, hub: hub, logger: log}
}

func (c *assistantController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/assistant")
	h.Post("/chat", c.Chat)
	h.Get("/ws", c.Stream)
	h.Get("/sessions/:id/history", c.GetHistory)
}

func (c *assistantController) Chat(ctx *fiber.Ctx) error {
	var req dto.ChatRequest
	if err := ctx.BodyParser(&req); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(serverutils.ErrorResponse(400, "Invalid request body"))
	}

	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.service.Chat(ctx.UserContext(), &req)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success chat", res))
}

// Stream upgrades to a WebSocket and runs turns for one session. The session id
// comes from ?session_id= and is generated when absent.
func (c *assistantController) Stream(ctx *fiber.Ctx) error {
	if c.hub == nil {
		return ctx.Status(fiber.StatusNotFound).JSON(serverutils.ErrorResponse(404, "WebSocket chat is disabled"))
	}
	if !websocket.IsWebSocketUpgrade(ctx) {
		return fiber.ErrUpgradeRequired
	}

	sessionId := ctx.Query("session_id")
	if sessionId == "" {
		sessionId = uuid.NewString()
	}
	if len(sessionId) > 128 {
		return ctx.Status(fiber.StatusBadRequest).JSON(serverutils.ErrorResponse(400, "session_id is too long"))
	}

	return websocket.New(func(conn *websocket.Conn) {
		c.logger.Info("AssistantController", "Starting WebSocket session", map[string]interface{}{"session_id": sessionId})
		internalWS.ServeWs(context.Background(), c.hub, conn, sessionId, c.turn)
		c.logger.Info("AssistantController", "WebSocket session ended", map[string]interface{}{"session_id": sessionId})
	})(ctx)
}

func (c *assistantController) turn(ctx context.Context, sessionId, text string) ([]byte, error) {
	res, err := c.service.Chat(ctx, &dto.ChatRequest{SessionId: sessionId, Message: text})
	if err != nil {
		return nil, err
	}
	return json.Marshal(res)
}

func (c *assistantController) GetHistory(ctx *fiber.Ctx) error {
	sessionId := ctx.Params("id")
	limit := ctx.QueryInt("limit", 50)

	res, err := c.service.GetHistory(ctx.UserContext(), sessionId, limit)
	if err != nil {
		if errors.Is(err, service.ErrHistoryUnavailable) {
			return ctx.Status(fiber.StatusServiceUnavailable).JSON(serverutils.ErrorResponse(503, err.Error()))
		}
		return ctx.Status(fiber.StatusInternalServerError).JSON(serverutils.ErrorResponse(500, err.Error()))
	}

	return ctx.JSON(serverutils.SuccessResponse("Success get history", res))
}

// --- Operator routes ---

type IAssistantAdminController interface {
	RegisterRoutes(r fiber.Router)
	ReloadDictionary(ctx *fiber.Ctx) error
	GetLogs(ctx *fiber.Ctx) error
	GetLogDetail(ctx *fiber.Ctx) error
	GetSession(ctx *fiber.Ctx) error
	ClearSession(ctx *fiber.Ctx) error
}

type assistantAdminController struct {
	service    service.IAssistantService
	adminToken string
}

func NewAssistantAdminController(service service.IAssistantService, adminToken string) IAssistantAdminController {
	return &assistantAdminController{service: service, adminToken: adminToken}
}

func (c *assistantAdminController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/admin/assistant")
	h.Use(serverutils.AdminTokenMiddleware(c.adminToken))
	h.Post("/canon/reload", c.ReloadDictionary)
	h.Get("/logs", c.GetLogs)
	h.Get("/logs/:id", c.GetLogDetail)
	h.Get("/sessions/:id", c.GetSession)
	h.Delete("/sessions/:id", c.ClearSession)
}

func (c *assistantAdminController) ReloadDictionary(ctx *fiber.Ctx) error {
	res, err := c.service.ReloadDictionary(ctx.UserContext())
	if err != nil {
		if errors.Is(err, service.ErrDictionaryPathUnset) {
			return ctx.Status(fiber.StatusBadRequest).JSON(serverutils.ErrorResponse(400, err.Error()))
		}
		return ctx.Status(fiber.StatusUnprocessableEntity).JSON(serverutils.ErrorResponse(422, err.Error()))
	}
	return ctx.JSON(serverutils.SuccessResponse("Dictionary reloaded", res))
}

func (c *assistantAdminController) GetLogs(ctx *fiber.Ctx) error {
	var q dto.LogQuery
	if err := ctx.QueryParser(&q); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(serverutils.ErrorResponse(400, "Invalid query"))
	}
	if err := serverutils.ValidateRequest(q); err != nil {
		return err
	}

	res, err := c.service.GetLogs(ctx.UserContext(), q.Level, q.Limit, q.Offset)
	if err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(serverutils.ErrorResponse(500, err.Error()))
	}
	return ctx.JSON(serverutils.SuccessResponse("System logs", res))
}

func (c *assistantAdminController) GetLogDetail(ctx *fiber.Ctx) error {
	res, err := c.service.GetLogById(ctx.UserContext(), ctx.Params("id"))
	if errors.Is(err, logger.ErrLogNotFound) || (err == nil && res == nil) {
		return ctx.Status(fiber.StatusNotFound).JSON(serverutils.ErrorResponse(404, "Log not found"))
	}
	if err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(serverutils.ErrorResponse(500, err.Error()))
	}
	return ctx.JSON(serverutils.SuccessResponse("Log detail", res))
}

func (c *assistantAdminController) GetSession(ctx *fiber.Ctx) error {
	res, err := c.service.GetSession(ctx.UserContext(), ctx.Params("id"))
	if err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(serverutils.ErrorResponse(500, err.Error()))
	}
	return ctx.JSON(serverutils.SuccessResponse("Session snapshot", res))
}

func (c *assistantAdminController) ClearSession(ctx *fiber.Ctx) error {
	if err := c.service.ClearSession(ctx.UserContext(), ctx.Params("id")); err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(serverutils.ErrorResponse(500, err.Error()))
	}
	return ctx.JSON(serverutils.SuccessResponse[any]("Session cleared", nil))
}
