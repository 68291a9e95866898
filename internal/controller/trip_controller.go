package controller

import (
	"lazy-tourist-be/internal/dto"
	"lazy-tourist-be/internal/pkg/serverutils"
	"lazy-tourist-be/internal/service"

	"github.com/gofiber/fiber/v2"
)

type ITripController interface {
	RegisterRoutes(r fiber.Router)
	Health(ctx *fiber.Ctx) error
	Start(ctx *fiber.Ctx) error
	SendMessage(ctx *fiber.Ctx) error
	Show(ctx *fiber.Ctx) error
	Itinerary(ctx *fiber.Ctx) error
	Abort(ctx *fiber.Ctx) error
}

type tripController struct {
	service   service.ITripService
	jwtSecret string
}

func NewTripController(service service.ITripService, jwtSecret string) ITripController {
	return &tripController{service: service, jwtSecret: jwtSecret}
}

func (c *tripController) RegisterRoutes(r fiber.Router) {
	r.Get("/health", c.Health)
	r.Post("/trips", c.Start)

	auth := serverutils.SessionTokenMiddleware(c.jwtSecret)
	h := r.Group("/trips")
	h.Get("/:id", auth, c.Show)
	h.Post("/:id/messages", auth, c.SendMessage)
	h.Get("/:id/itinerary", auth, c.Itinerary)
	h.Delete("/:id", auth, c.Abort)
}

func (c *tripController) Health(ctx *fiber.Ctx) error {
	return ctx.JSON(serverutils.SuccessResponse("OK", fiber.Map{"status": "up"}))
}

// Start opens a planning session from the first request.
// @Summary Start a trip planning session
// @Tags Trips
// @Accept json
// @Produce json
// @Success 200 {object} dto.StartTripResponse
// @Router /api/trips [post]
func (c *tripController) Start(ctx *fiber.Ctx) error {
	var req dto.StartTripRequest
	if err := ctx.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
	}

	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.service.Start(ctx.UserContext(), &req)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Trip session started", res))
}

// SendMessage answers the question the session is waiting on.
// @Summary Send a message to a trip session
// @Tags Trips
// @Security BearerAuth
// @Accept json
// @Produce json
// @Success 200 {object} dto.TripResponse
// @Router /api/trips/{id}/messages [post]
func (c *tripController) SendMessage(ctx *fiber.Ctx) error {
	var req dto.SendMessageRequest
	if err := ctx.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
	}

	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.service.SendMessage(ctx.UserContext(), ctx.Params("id"), &req)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Message processed", res))
}

func (c *tripController) Show(ctx *fiber.Ctx) error {
	res, err := c.service.Show(ctx.UserContext(), ctx.Params("id"))
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success show trip", res))
}

func (c *tripController) Itinerary(ctx *fiber.Ctx) error {
	markdown, err := c.service.Itinerary(ctx.UserContext(), ctx.Params("id"))
	if err != nil {
		return err
	}

	ctx.Set(fiber.HeaderContentType, "text/markdown; charset=utf-8")
	return ctx.SendString(markdown)
}

func (c *tripController) Abort(ctx *fiber.Ctx) error {
	res, err := c.service.Abort(ctx.UserContext(), ctx.Params("id"))
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Trip session aborted", res))
}
