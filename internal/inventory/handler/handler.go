package handler

import (
	"github.com/fekuna/stockroom-service/internal/apperror"
	"github.com/fekuna/stockroom-service/internal/inventory"
	"github.com/fekuna/stockroom-service/internal/inventory/dto"
	"github.com/fekuna/stockroom-service/pkg/logger"
	"github.com/fekuna/stockroom-service/pkg/response"
	"github.com/gofiber/fiber/v2"
)

type InventoryHandler struct {
	uc     inventory.UseCase
	logger logger.ZapLogger
}

func NewInventoryHandler(uc inventory.UseCase, log logger.ZapLogger) *InventoryHandler {
	return &InventoryHandler{
		uc:     uc,
		logger: log,
	}
}

func (h *InventoryHandler) RegisterRoutes(r fiber.Router) {
	r.Post("/items/:id/stock", h.ApplyDelta)
	r.Get("/items/:id/logs", h.ListItemLogs)
	r.Post("/cart", h.SubmitCart)
	r.Get("/logs", h.ListLogs)
	r.Put("/logs/:id", h.EditLog)
	r.Delete("/logs/:id", h.DeleteLog)
	r.Get("/history/stock", h.StockOverTime)
	r.Get("/history/stats", h.Statistics)
}

func (h *InventoryHandler) ApplyDelta(c *fiber.Ctx) error {
	var input dto.ApplyDeltaInput
	if err := c.BodyParser(&input); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	input.ItemID = c.Params("id")

	res, err := h.uc.ApplyDelta(c.UserContext(), &input)
	if err != nil {
		return apperror.Respond(c, h.logger, err, "Failed to update stock")
	}
	return response.Success(c, res)
}

func (h *InventoryHandler) ListItemLogs(c *fiber.Ctx) error {
	logs, err := h.uc.ListItemLogs(c.UserContext(), c.Params("id"))
	if err != nil {
		return apperror.Respond(c, h.logger, err, "Failed to fetch item history")
	}
	return response.Success(c, logs)
}

func (h *InventoryHandler) SubmitCart(c *fiber.Ctx) error {
	var input dto.SubmitCartInput
	if err := c.BodyParser(&input); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	res, err := h.uc.SubmitCart(c.UserContext(), &input)
	if err != nil {
		return apperror.Respond(c, h.logger, err, "Failed to submit order")
	}
	return response.SuccessMessage(c, "Order submitted successfully", res)
}

func (h *InventoryHandler) ListLogs(c *fiber.Ctx) error {
	entries, err := h.uc.ListLogs(c.UserContext())
	if err != nil {
		return apperror.Respond(c, h.logger, err, "Failed to fetch order history")
	}
	return response.Success(c, entries)
}

func (h *InventoryHandler) EditLog(c *fiber.Ctx) error {
	var input dto.EditLogInput
	if err := c.BodyParser(&input); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	input.LogID = c.Params("id")

	if err := h.uc.EditLog(c.UserContext(), &input); err != nil {
		return apperror.Respond(c, h.logger, err, "Failed to edit order log")
	}
	return response.SuccessMessage(c, "Log updated", nil)
}

func (h *InventoryHandler) DeleteLog(c *fiber.Ctx) error {
	if err := h.uc.DeleteLog(c.UserContext(), c.Params("id")); err != nil {
		return apperror.Respond(c, h.logger, err, "Failed to delete order log")
	}
	return response.SuccessMessage(c, "Log deleted", nil)
}

func (h *InventoryHandler) StockOverTime(c *fiber.Ctx) error {
	points, err := h.uc.StockOverTime(c.UserContext())
	if err != nil {
		return apperror.Respond(c, h.logger, err, "Failed to fetch stock history")
	}
	return response.Success(c, points)
}

func (h *InventoryHandler) Statistics(c *fiber.Ctx) error {
	stats, err := h.uc.Statistics(c.UserContext())
	if err != nil {
		return apperror.Respond(c, h.logger, err, "Failed to fetch statistics")
	}
	return response.Success(c, stats)
}
