package serverutils

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http/httptest"
	"testing"

	"ai-docstore-be/pkg/apperror"
	"ai-docstore-be/pkg/gemini"
	"ai-docstore-be/pkg/operation"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMapErrorStatuses(t *testing.T) {
	cases := []struct {
		name   string
		err    error
		status int
	}{
		{"fiber", fiber.ErrMethodNotAllowed, fiber.StatusMethodNotAllowed},
		{"validation", &apperror.ValidationError{Field: "store", Message: "is required"}, 400},
		{"credential", &apperror.CredentialError{}, 401},
		{"not found", &apperror.NotFoundError{Resource: "store", ID: "x"}, 404},
		{"timeout", &operation.TimeoutError{Handle: "operations/1"}, 504},
		{"operation failed", &operation.FailedError{Handle: "operations/1"}, 502},
		{"transport with status", &gemini.APIError{HTTPStatus: 429, Status: "RESOURCE_EXHAUSTED", Message: "quota"}, 429},
		{"json", &json.SyntaxError{}, 400},
		{"unknown", errors.New("boom"), 500},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			status, body := MapError(tc.err)
			assert.Equal(t, tc.status, status)
			assert.Equal(t, tc.status, body.Code)
			assert.False(t, body.Success)
		})
	}
}

func TestMapErrorValidationCarriesFields(t *testing.T) {
	err := fmt.Errorf("upload: %w", apperror.ValidationErrors{
		{Field: "version", Message: "must be dotted numeric"},
		{Field: "store", Message: "is required"},
	})

	status, body := MapError(err)
	assert.Equal(t, 400, status)
	assert.Equal(t, CodeValidationError, body.ErrorCode)
	fields, ok := body.Data.([]FieldError)
	require.True(t, ok)
	assert.Len(t, fields, 2)
	assert.Equal(t, "version", fields[0].Field)
}

func TestErrorHandlerMiddlewareRendersCredentialError(t *testing.T) {
	app := fiber.New()
	app.Use(ErrorHandlerMiddleware())
	app.Get("/", func(ctx *fiber.Ctx) error {
		return &apperror.CredentialError{Cause: errors.New("API key not valid")}
	})

	resp, err := app.Test(httptest.NewRequest("GET", "/", nil))
	require.NoError(t, err)
	assert.Equal(t, 401, resp.StatusCode)

	raw, _ := io.ReadAll(resp.Body)
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(raw, &body))
	assert.Equal(t, CodeCredentialError, body["error_code"])
}
