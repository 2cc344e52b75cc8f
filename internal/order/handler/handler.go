package handler

import (
	"github.com/fekuna/stockroom-service/internal/apperror"
	"github.com/fekuna/stockroom-service/internal/location"
	"github.com/fekuna/stockroom-service/internal/order"
	"github.com/fekuna/stockroom-service/internal/order/dto"
	"github.com/fekuna/stockroom-service/pkg/logger"
	"github.com/fekuna/stockroom-service/pkg/response"
	"github.com/gofiber/fiber/v2"
)

type OrderHandler struct {
	uc        order.UseCase
	locations location.UseCase
	logger    logger.ZapLogger
}

func NewOrderHandler(uc order.UseCase, locations location.UseCase, log logger.ZapLogger) *OrderHandler {
	return &OrderHandler{uc: uc, locations: locations, logger: log}
}

func (h *OrderHandler) RegisterRoutes(r fiber.Router) {
	r.Get("/orders", h.ListOrders)
	r.Get("/orders/:id", h.GetOrder)
	r.Get("/orders/:id/cart", h.GetOrderAsCart)
	r.Patch("/orders/:id/status", h.UpdateStatus)
	r.Get("/locations/:slug/orders", h.ListLocationOrders)
	r.Post("/locations/:slug/requests", h.SubmitRequest)
}

func (h *OrderHandler) ListOrders(c *fiber.Ctx) error {
	filters := &dto.OrderFilters{
		Status:       c.Query("status", "all"),
		StorageClass: c.Query("storage"),
	}
	orders, err := h.uc.ListOrders(c.UserContext(), filters)
	if err != nil {
		return apperror.Respond(c, h.logger, err, "Failed to fetch orders")
	}
	return response.Success(c, orders)
}

func (h *OrderHandler) GetOrder(c *fiber.Ctx) error {
	o, err := h.uc.GetOrder(c.UserContext(), c.Params("id"))
	if err != nil {
		return apperror.Respond(c, h.logger, err, "Failed to fetch order")
	}
	return response.Success(c, o)
}

func (h *OrderHandler) GetOrderAsCart(c *fiber.Ctx) error {
	cart, err := h.uc.GetOrderAsCart(c.UserContext(), c.Params("id"))
	if err != nil {
		return apperror.Respond(c, h.logger, err, "Failed to get order for cart")
	}
	return response.Success(c, cart)
}

func (h *OrderHandler) UpdateStatus(c *fiber.Ctx) error {
	var input dto.UpdateStatusInput
	if err := c.BodyParser(&input); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	input.OrderID = c.Params("id")

	o, err := h.uc.UpdateStatus(c.UserContext(), &input)
	if err != nil {
		return apperror.Respond(c, h.logger, err, "Failed to update order status")
	}
	return response.Success(c, o)
}

func (h *OrderHandler) ListLocationOrders(c *fiber.Ctx) error {
	loc, err := h.locations.GetLocationBySlug(c.UserContext(), c.Params("slug"))
	if err != nil {
		return apperror.Respond(c, h.logger, err, "Failed to fetch location orders")
	}

	orders, err := h.uc.ListOrdersByLocation(c.UserContext(), loc.ID)
	if err != nil {
		return apperror.Respond(c, h.logger, err, "Failed to fetch location orders")
	}
	return response.Success(c, orders)
}

func (h *OrderHandler) SubmitRequest(c *fiber.Ctx) error {
	var input dto.SubmitRequestInput
	if err := c.BodyParser(&input); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	loc, err := h.locations.GetLocationBySlug(c.UserContext(), c.Params("slug"))
	if err != nil {
		return apperror.Respond(c, h.logger, err, "Failed to submit request")
	}
	input.LocationID = loc.ID

	res, err := h.uc.SubmitRequest(c.UserContext(), &input)
	if err != nil {
		return apperror.Respond(c, h.logger, err, "Failed to submit request")
	}
	return response.Created(c, res)
}
