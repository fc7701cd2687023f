package controller

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http/httptest"
	"strings"
	"testing"

	"ai-docstore-be/internal/dto"
	"ai-docstore-be/internal/pkg/serverutils"
	"ai-docstore-be/pkg/apperror"
	"ai-docstore-be/pkg/credential"
	"ai-docstore-be/pkg/ingest"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testUser = uuid.MustParse("6f1c2b7e-9a1d-4c55-8f0e-3b2a1d4c5e6f")

func fakeAuth(ctx *fiber.Ctx) error {
	ctx.Locals("user_id", testUser.String())
	ctx.SetUserContext(credential.WithUser(ctx.UserContext(), testUser.String()))
	return ctx.Next()
}

func newApp(register func(r fiber.Router)) *fiber.App {
	app := fiber.New()
	app.Use(serverutils.ErrorHandlerMiddleware())
	register(app.Group("/api"))
	return app
}

func decode(t *testing.T, body io.Reader) map[string]interface{} {
	t.Helper()
	raw, err := io.ReadAll(body)
	require.NoError(t, err)
	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(raw, &out))
	return out
}

type stubUploadService struct {
	userId  uuid.UUID
	req     *dto.UploadRequest
	files   []ingest.File
	ctxUser string
}

func (s *stubUploadService) Start(ctx context.Context, userId uuid.UUID, req *dto.UploadRequest, files []ingest.File) (*dto.UploadJobResponse, error) {
	s.userId, s.req, s.files = userId, req, files
	s.ctxUser, _ = credential.UserFromContext(ctx)
	return &dto.UploadJobResponse{Id: uuid.New(), StoreRef: req.Store, Status: "pending"}, nil
}

func (s *stubUploadService) Get(ctx context.Context, userId uuid.UUID, jobId uuid.UUID) (*dto.UploadJobResponse, error) {
	return nil, &apperror.NotFoundError{Resource: "upload job", ID: jobId.String()}
}

func multipartBody(t *testing.T, fields map[string]string, files map[string]string) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for k, v := range fields {
		require.NoError(t, w.WriteField(k, v))
	}
	for name, content := range files {
		fw, err := w.CreateFormFile(uploadFilesField, name)
		require.NoError(t, err)
		_, err = fw.Write([]byte(content))
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())
	return &buf, w.FormDataContentType()
}

func TestUploadControllerCreate(t *testing.T) {
	svc := &stubUploadService{}
	app := newApp(NewUploadController(svc, fakeAuth, 1024).RegisterRoutes)

	body, contentType := multipartBody(t,
		map[string]string{"store": "manuals", "version": "1.2", "tags": "a,b"},
		map[string]string{"guide.txt": "hello"},
	)
	req := httptest.NewRequest("POST", "/api/upload/v1", body)
	req.Header.Set("Content-Type", contentType)

	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusAccepted, resp.StatusCode)

	assert.Equal(t, testUser, svc.userId)
	assert.Equal(t, testUser.String(), svc.ctxUser)
	assert.Equal(t, "manuals", svc.req.Store)
	assert.Equal(t, "1.2", svc.req.Version)
	require.Len(t, svc.files, 1)
	assert.Equal(t, "guide.txt", svc.files[0].Name)
	assert.Equal(t, []byte("hello"), svc.files[0].Data)
}

func TestUploadControllerValidation(t *testing.T) {
	svc := &stubUploadService{}
	app := newApp(NewUploadController(svc, fakeAuth, 4).RegisterRoutes)

	body, contentType := multipartBody(t, map[string]string{"version": "one"}, map[string]string{"a.txt": "x"})
	req := httptest.NewRequest("POST", "/api/upload/v1", body)
	req.Header.Set("Content-Type", contentType)
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, 400, resp.StatusCode)
	out := decode(t, resp.Body)
	assert.Equal(t, serverutils.CodeValidationError, out["error_code"])

	body, contentType = multipartBody(t, map[string]string{"store": "manuals"}, map[string]string{"big.txt": "too large"})
	req = httptest.NewRequest("POST", "/api/upload/v1", body)
	req.Header.Set("Content-Type", contentType)
	resp, err = app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, 400, resp.StatusCode)
	assert.Nil(t, svc.req)
}

func TestUploadControllerShow(t *testing.T) {
	app := newApp(NewUploadController(&stubUploadService{}, fakeAuth, 0).RegisterRoutes)

	resp, err := app.Test(httptest.NewRequest("GET", "/api/upload/v1/"+uuid.NewString(), nil))
	require.NoError(t, err)
	assert.Equal(t, 404, resp.StatusCode)

	resp, err = app.Test(httptest.NewRequest("GET", "/api/upload/v1/not-a-uuid", nil))
	require.NoError(t, err)
	assert.Equal(t, 400, resp.StatusCode)
}

type stubDocumentService struct {
	listed *dto.ListDocumentsRequest
	err    error
}

func (s *stubDocumentService) List(ctx context.Context, req *dto.ListDocumentsRequest) (*dto.ListDocumentsResponse, error) {
	s.listed = req
	if s.err != nil {
		return nil, s.err
	}
	return &dto.ListDocumentsResponse{Documents: []dto.DocumentResponse{}, Total: 0}, nil
}

func (s *stubDocumentService) Stats(ctx context.Context) (*dto.DocumentStatsResponse, error) {
	return &dto.DocumentStatsResponse{}, nil
}

func (s *stubDocumentService) Export(ctx context.Context, req *dto.ListDocumentsRequest, w io.Writer) error {
	_, err := io.WriteString(w, "\"Name\"\r\n")
	return err
}

func (s *stubDocumentService) Delete(ctx context.Context, names []string) (*dto.BulkDeleteResult, error) {
	return &dto.BulkDeleteResult{Deleted: names, Failed: []dto.BulkDeleteError{}}, nil
}

func TestDocumentControllerListParsesFilters(t *testing.T) {
	svc := &stubDocumentService{}
	app := newApp(NewDocumentController(svc, fakeAuth).RegisterRoutes)

	resp, err := app.Test(httptest.NewRequest("GET", "/api/document/v1?q=reset&stores=manuals&sort=version&order=asc", nil))
	require.NoError(t, err)
	assert.Equal(t, 200, resp.StatusCode)
	assert.Equal(t, "reset", svc.listed.Query)
	assert.Equal(t, "manuals", svc.listed.Stores)
	assert.Equal(t, "version", svc.listed.Sort)

	resp, err = app.Test(httptest.NewRequest("GET", "/api/document/v1?sort=colour", nil))
	require.NoError(t, err)
	assert.Equal(t, 400, resp.StatusCode)
}

func TestDocumentControllerCredentialError(t *testing.T) {
	svc := &stubDocumentService{err: &apperror.CredentialError{}}
	app := newApp(NewDocumentController(svc, fakeAuth).RegisterRoutes)

	resp, err := app.Test(httptest.NewRequest("GET", "/api/document/v1", nil))
	require.NoError(t, err)
	assert.Equal(t, 401, resp.StatusCode)
	assert.Equal(t, serverutils.CodeCredentialError, decode(t, resp.Body)["error_code"])
}

func TestDocumentControllerExport(t *testing.T) {
	app := newApp(NewDocumentController(&stubDocumentService{}, fakeAuth).RegisterRoutes)

	resp, err := app.Test(httptest.NewRequest("GET", "/api/document/v1/export", nil))
	require.NoError(t, err)
	assert.Equal(t, 200, resp.StatusCode)
	assert.Equal(t, "text/csv; charset=utf-8", resp.Header.Get("Content-Type"))
	assert.True(t, strings.HasPrefix(resp.Header.Get("Content-Disposition"), "attachment"))
}

func TestDocumentControllerDelete(t *testing.T) {
	app := newApp(NewDocumentController(&stubDocumentService{}, fakeAuth).RegisterRoutes)

	req := httptest.NewRequest("DELETE", "/api/document/v1", strings.NewReader(`{"names":["fileSearchStores/m/documents/a"]}`))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, 200, resp.StatusCode)

	req = httptest.NewRequest("DELETE", "/api/document/v1", strings.NewReader(`{"names":[]}`))
	req.Header.Set("Content-Type", "application/json")
	resp, err = app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, 400, resp.StatusCode)

	req = httptest.NewRequest("DELETE", "/api/document/v1", strings.NewReader(`{"names":`))
	req.Header.Set("Content-Type", "application/json")
	resp, err = app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, 400, resp.StatusCode)
}
