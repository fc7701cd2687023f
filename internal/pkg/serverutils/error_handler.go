package serverutils

import (
	"encoding/json"
	"errors"

	"ai-docstore-be/pkg/apperror"
	"ai-docstore-be/pkg/gemini"

	"github.com/gofiber/fiber/v2"
)

const (
	CodeCredentialError = "CREDENTIAL_ERROR"
	CodeValidationError = "VALIDATION_ERROR"
)

type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// MapError turns an error into an HTTP status and a response body.
func MapError(err error) (int, BaseResponse[any]) {
	var fiberErr *fiber.Error
	if errors.As(err, &fiberErr) {
		return fiberErr.Code, ErrorResponse(fiberErr.Code, fiberErr.Message)
	}

	var syntaxErr *json.SyntaxError
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &syntaxErr) || errors.As(err, &typeErr) {
		return fiber.StatusBadRequest, ErrorResponse(fiber.StatusBadRequest, "Invalid request body")
	}

	switch apperror.Classify(err) {
	case apperror.KindValidation:
		res := ErrorResponse(fiber.StatusBadRequest, err.Error())
		res.ErrorCode = CodeValidationError
		res.Data = fieldErrors(err)
		return fiber.StatusBadRequest, res

	case apperror.KindCredential:
		res := ErrorResponse(fiber.StatusUnauthorized, err.Error())
		res.ErrorCode = CodeCredentialError
		return fiber.StatusUnauthorized, res

	case apperror.KindNotFound:
		return fiber.StatusNotFound, ErrorResponse(fiber.StatusNotFound, err.Error())

	case apperror.KindOperationTimeout:
		return fiber.StatusGatewayTimeout, ErrorResponse(fiber.StatusGatewayTimeout, err.Error())

	case apperror.KindOperationFailed:
		return fiber.StatusBadGateway, ErrorResponse(fiber.StatusBadGateway, err.Error())

	case apperror.KindNoResponse:
		return fiber.StatusServiceUnavailable, ErrorResponse(fiber.StatusServiceUnavailable, err.Error())

	case apperror.KindTransport:
		status := fiber.StatusBadGateway
		var apiErr *gemini.APIError
		if errors.As(err, &apiErr) && apiErr.HTTPStatus >= 400 {
			status = apiErr.HTTPStatus
		}
		return status, ErrorResponse(status, err.Error())
	}

	return fiber.StatusInternalServerError, ErrorResponse(fiber.StatusInternalServerError, err.Error())
}

func fieldErrors(err error) []FieldError {
	var many apperror.ValidationErrors
	if errors.As(err, &many) {
		out := make([]FieldError, 0, len(many))
		for _, v := range many {
			out = append(out, FieldError{Field: v.Field, Message: v.Message})
		}
		return out
	}
	var one *apperror.ValidationError
	if errors.As(err, &one) {
		return []FieldError{{Field: one.Field, Message: one.Message}}
	}
	return nil
}

// ErrorHandlerMiddleware renders any error returned further down the chain.
func ErrorHandlerMiddleware() fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		err := ctx.Next()
		if err == nil {
			return nil
		}
		status, body := MapError(err)
		return ctx.Status(status).JSON(body)
	}
}
