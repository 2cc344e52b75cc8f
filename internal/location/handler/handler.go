package handler

import (
	"github.com/fekuna/stockroom-service/internal/apperror"
	"github.com/fekuna/stockroom-service/internal/location"
	"github.com/fekuna/stockroom-service/internal/location/dto"
	"github.com/fekuna/stockroom-service/pkg/logger"
	"github.com/fekuna/stockroom-service/pkg/response"
	"github.com/gofiber/fiber/v2"
)

type LocationHandler struct {
	uc     location.UseCase
	logger logger.ZapLogger
}

func NewLocationHandler(uc location.UseCase, log logger.ZapLogger) *LocationHandler {
	return &LocationHandler{uc: uc, logger: log}
}

func (h *LocationHandler) RegisterRoutes(r fiber.Router) {
	r.Get("/locations", h.ListLocations)
	r.Post("/locations", h.CreateLocation)
	r.Get("/locations/:slug", h.GetLocation)
}

func (h *LocationHandler) ListLocations(c *fiber.Ctx) error {
	locations, err := h.uc.ListLocations(c.UserContext())
	if err != nil {
		return apperror.Respond(c, h.logger, err, "Failed to fetch locations")
	}
	return response.Success(c, locations)
}

func (h *LocationHandler) CreateLocation(c *fiber.Ctx) error {
	var input dto.CreateLocationInput
	if err := c.BodyParser(&input); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	loc, err := h.uc.CreateLocation(c.UserContext(), &input)
	if err != nil {
		return apperror.Respond(c, h.logger, err, "Failed to create location")
	}
	return response.Created(c, loc)
}

func (h *LocationHandler) GetLocation(c *fiber.Ctx) error {
	loc, err := h.uc.GetLocationBySlug(c.UserContext(), c.Params("slug"))
	if err != nil {
		return apperror.Respond(c, h.logger, err, "Failed to fetch location")
	}
	return response.Success(c, loc)
}
