package controller

import (
	"ai-docstore-be/internal/dto"
	"ai-docstore-be/internal/pkg/serverutils"
	"ai-docstore-be/internal/service"

	"github.com/gofiber/fiber/v2"
)

type ISpeechController interface {
	RegisterRoutes(r fiber.Router)
	Synthesize(ctx *fiber.Ctx) error
	Transcribe(ctx *fiber.Ctx) error
}

type speechController struct {
	service service.ISpeechService
	auth    fiber.Handler
}

func NewSpeechController(service service.ISpeechService, auth fiber.Handler) ISpeechController {
	return &speechController{service: service, auth: auth}
}

func (c *speechController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/speech/v1")
	h.Use(c.auth)
	h.Post("synthesize", c.Synthesize)
	h.Post("transcribe", c.Transcribe)
}

// Synthesize returns base64 PCM, or a WAV file with ?format=wav.
func (c *speechController) Synthesize(ctx *fiber.Ctx) error {
	var req dto.SynthesizeRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}

	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	if ctx.Query("format") == "wav" {
		wav, err := c.service.SynthesizeWAV(ctx.UserContext(), &req)
		if err != nil {
			return err
		}
		ctx.Attachment("speech.wav")
		ctx.Set(fiber.HeaderContentType, "audio/wav")
		return ctx.Send(wav)
	}

	res, err := c.service.Synthesize(ctx.UserContext(), &req)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success synthesize", res))
}

func (c *speechController) Transcribe(ctx *fiber.Ctx) error {
	var req dto.TranscribeRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}

	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.service.Transcribe(ctx.UserContext(), &req)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success transcribe", res))
}
