package controller

import (
	"ai-docstore-be/internal/dto"
	"ai-docstore-be/internal/pkg/serverutils"
	"ai-docstore-be/internal/service"

	"github.com/gofiber/fiber/v2"
)

type IQueryController interface {
	RegisterRoutes(r fiber.Router)
	Ask(ctx *fiber.Ctx) error
	Suggestions(ctx *fiber.Ctx) error
}

type queryController struct {
	service service.IQueryService
	auth    fiber.Handler
}

func NewQueryController(service service.IQueryService, auth fiber.Handler) IQueryController {
	return &queryController{service: service, auth: auth}
}

func (c *queryController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/query/v1")
	h.Use(c.auth)
	h.Post("", c.Ask)
	h.Get("suggestions", c.Suggestions)
}

func (c *queryController) Ask(ctx *fiber.Ctx) error {
	var req dto.QueryRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}

	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.service.Ask(ctx.UserContext(), &req)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success query", res))
}

func (c *queryController) Suggestions(ctx *fiber.Ctx) error {
	var req dto.SuggestionsRequest
	if err := ctx.QueryParser(&req); err != nil {
		return err
	}

	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.service.Suggestions(ctx.UserContext(), &req)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success get suggestions", res))
}
