package controller

import (
	"bytes"
	"time"

	"ai-docstore-be/internal/dto"
	"ai-docstore-be/internal/pkg/serverutils"
	"ai-docstore-be/internal/service"
	"ai-docstore-be/pkg/catalog"

	"github.com/gofiber/fiber/v2"
)

type IDocumentController interface {
	RegisterRoutes(r fiber.Router)
	GetAll(ctx *fiber.Ctx) error
	Stats(ctx *fiber.Ctx) error
	Export(ctx *fiber.Ctx) error
	Delete(ctx *fiber.Ctx) error
}

type documentController struct {
	service service.IDocumentService
	auth    fiber.Handler
}

func NewDocumentController(service service.IDocumentService, auth fiber.Handler) IDocumentController {
	return &documentController{service: service, auth: auth}
}

func (c *documentController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/document/v1")
	h.Use(c.auth)
	h.Get("", c.GetAll)
	h.Get("stats", c.Stats)
	h.Get("export", c.Export)
	h.Delete("", c.Delete)
}

func (c *documentController) parseList(ctx *fiber.Ctx) (*dto.ListDocumentsRequest, error) {
	var req dto.ListDocumentsRequest
	if err := ctx.QueryParser(&req); err != nil {
		return nil, err
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return nil, err
	}
	return &req, nil
}

func (c *documentController) GetAll(ctx *fiber.Ctx) error {
	req, err := c.parseList(ctx)
	if err != nil {
		return err
	}

	res, err := c.service.List(ctx.UserContext(), req)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success get all documents", res))
}

func (c *documentController) Stats(ctx *fiber.Ctx) error {
	res, err := c.service.Stats(ctx.UserContext())
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success get document stats", res))
}

func (c *documentController) Export(ctx *fiber.Ctx) error {
	req, err := c.parseList(ctx)
	if err != nil {
		return err
	}

	var buf bytes.Buffer
	if err := c.service.Export(ctx.UserContext(), req, &buf); err != nil {
		return err
	}

	ctx.Attachment(catalog.ExportFileName(time.Now()))
	ctx.Set(fiber.HeaderContentType, "text/csv; charset=utf-8")
	return ctx.Send(buf.Bytes())
}

func (c *documentController) Delete(ctx *fiber.Ctx) error {
	var req dto.DeleteDocumentsRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}

	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.service.Delete(ctx.UserContext(), req.Names)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Documents deleted", res))
}
