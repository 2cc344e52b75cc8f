package handler

import (
	"github.com/fekuna/stockroom-service/internal/apperror"
	"github.com/fekuna/stockroom-service/internal/item"
	"github.com/fekuna/stockroom-service/internal/item/dto"
	"github.com/fekuna/stockroom-service/pkg/logger"
	"github.com/fekuna/stockroom-service/pkg/response"
	"github.com/gofiber/fiber/v2"
)

type ItemHandler struct {
	uc     item.UseCase
	logger logger.ZapLogger
}

func NewItemHandler(uc item.UseCase, log logger.ZapLogger) *ItemHandler {
	return &ItemHandler{uc: uc, logger: log}
}

func (h *ItemHandler) RegisterRoutes(r fiber.Router) {
	r.Get("/items", h.ListItems)
	r.Get("/items/available", h.ListAvailableItems)
	r.Get("/items/:id", h.GetItem)
	r.Post("/items", h.CreateItem)
	r.Put("/items/:id", h.UpdateItem)
	r.Delete("/items/:id", h.DeleteItem)
}

func (h *ItemHandler) ListItems(c *fiber.Ctx) error {
	filters := &dto.ItemFilters{
		SearchQuery: c.Query("q"),
		Category:    c.Query("category"),
	}
	items, err := h.uc.ListItems(c.UserContext(), filters)
	if err != nil {
		return apperror.Respond(c, h.logger, err, "Failed to fetch items")
	}
	return response.Success(c, items)
}

func (h *ItemHandler) ListAvailableItems(c *fiber.Ctx) error {
	items, err := h.uc.ListAvailableItems(c.UserContext())
	if err != nil {
		return apperror.Respond(c, h.logger, err, "Failed to fetch items")
	}
	return response.Success(c, items)
}

func (h *ItemHandler) GetItem(c *fiber.Ctx) error {
	it, err := h.uc.GetItem(c.UserContext(), c.Params("id"))
	if err != nil {
		return apperror.Respond(c, h.logger, err, "Failed to fetch item")
	}
	return response.Success(c, it)
}

func (h *ItemHandler) CreateItem(c *fiber.Ctx) error {
	var input dto.CreateItemInput
	if err := c.BodyParser(&input); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	it, err := h.uc.CreateItem(c.UserContext(), &input)
	if err != nil {
		return apperror.Respond(c, h.logger, err, "Failed to create item")
	}
	return response.Created(c, it)
}

func (h *ItemHandler) UpdateItem(c *fiber.Ctx) error {
	var input dto.UpdateItemInput
	if err := c.BodyParser(&input); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	input.ID = c.Params("id")

	it, err := h.uc.UpdateItem(c.UserContext(), &input)
	if err != nil {
		return apperror.Respond(c, h.logger, err, "Failed to update item")
	}
	return response.Success(c, it)
}

func (h *ItemHandler) DeleteItem(c *fiber.Ctx) error {
	if err := h.uc.DeleteItem(c.UserContext(), c.Params("id")); err != nil {
		return apperror.Respond(c, h.logger, err, "Failed to delete item")
	}
	return response.SuccessMessage(c, "Item deleted", nil)
}
