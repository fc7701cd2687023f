package controller

import (
	"fmt"
	"io"

	"ai-docstore-be/internal/dto"
	"ai-docstore-be/internal/pkg/serverutils"
	"ai-docstore-be/internal/service"
	"ai-docstore-be/pkg/apperror"
	"ai-docstore-be/pkg/ingest"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

const uploadFilesField = "files"

type IUploadController interface {
	RegisterRoutes(r fiber.Router)
	Create(ctx *fiber.Ctx) error
	Show(ctx *fiber.Ctx) error
}

type uploadController struct {
	service  service.IUploadService
	auth     fiber.Handler
	maxBytes int64
}

func NewUploadController(service service.IUploadService, auth fiber.Handler, maxBytes int64) IUploadController {
	if maxBytes <= 0 {
		maxBytes = ingest.DefaultMaxBytes
	}
	return &uploadController{service: service, auth: auth, maxBytes: maxBytes}
}

func (c *uploadController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/upload/v1")
	h.Use(c.auth)
	h.Post("", c.Create)
	h.Get(":id", c.Show)
}

func (c *uploadController) Create(ctx *fiber.Ctx) error {
	userId, _ := uuid.Parse(ctx.Locals("user_id").(string))

	var req dto.UploadRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}

	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	form, err := ctx.MultipartForm()
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(serverutils.ErrorResponse(400, "Multipart form required"))
	}

	headers := form.File[uploadFilesField]
	files := make([]ingest.File, 0, len(headers))
	for _, fh := range headers {
		// reject before reading: the orchestrator would only see the truncated data
		if fh.Size > c.maxBytes {
			return &apperror.ValidationError{
				Field:   fh.Filename,
				Message: fmt.Sprintf("file is %d bytes, limit is %d", fh.Size, c.maxBytes),
			}
		}
		f, err := fh.Open()
		if err != nil {
			return err
		}
		data, err := io.ReadAll(f)
		f.Close()
		if err != nil {
			return err
		}
		files = append(files, ingest.File{
			Name:     fh.Filename,
			MIMEType: fh.Header.Get(fiber.HeaderContentType),
			Data:     data,
		})
	}

	res, err := c.service.Start(ctx.UserContext(), userId, &req, files)
	if err != nil {
		return err
	}

	return ctx.Status(fiber.StatusAccepted).JSON(serverutils.SuccessResponse("Upload started", res))
}

func (c *uploadController) Show(ctx *fiber.Ctx) error {
	userId, _ := uuid.Parse(ctx.Locals("user_id").(string))
	id, err := uuid.Parse(ctx.Params("id"))
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(serverutils.ErrorResponse(400, "Invalid upload id"))
	}

	res, err := c.service.Get(ctx.UserContext(), userId, id)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success get upload", res))
}
