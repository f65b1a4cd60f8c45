package transport_test

import (
	"bytes"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/facturechain/facturechain/anchor"
	"github.com/facturechain/facturechain/common"
	"github.com/facturechain/facturechain/controllers"
	"github.com/facturechain/facturechain/db/stores"
	"github.com/facturechain/facturechain/lib/service"
	"github.com/facturechain/facturechain/lib/tokens"
	"github.com/facturechain/facturechain/lib/transport"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ziflex/lecho/v3"
)

func newTestServer(t *testing.T) (*echo.Echo, *service.FacturechainService) {
	t.Helper()
	svc := &service.FacturechainService{
		Config: &service.Config{
			JWTSecret:            []byte("test-secret"),
			JWTAccessTokenExpiry: 3600,
			MinPasswordLength:    8,
			UploadLimitBytes:     512 * 1024,
			DefaultRateLimit:     1000,
			StrictRateLimit:      1000,
			BurstRateLimit:       1000,
		},
		Stores:   stores.NewMemoryStores(),
		Anchorer: anchor.NewMockAnchorer("polygon-amoy-mock"),
		Logger:   zerolog.New(io.Discard),
	}
	echoLogger := lecho.From(svc.Logger)
	e := transport.InitEcho(svc.Config, echoLogger)
	logMw := transport.CreateLoggingMiddleware(echoLogger)
	strict := transport.CreateRateLimitMiddleware(svc.Config.StrictRateLimit, svc.Config.BurstRateLimit)
	secured := e.Group("", tokens.Middleware(svc.Config.JWTSecret), logMw)
	transport.RegisterEndpoints(svc, e, secured, strict, logMw)
	return e, svc
}

func multipartUpload(t *testing.T, size int) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	part, err := writer.CreateFormFile("file", "facture.pdf")
	require.NoError(t, err)
	_, err = part.Write(bytes.Repeat([]byte("a"), size))
	require.NoError(t, err)
	require.NoError(t, writer.Close())
	return &buf, writer.FormDataContentType()
}

// A typical PDF is bigger than the JSON body cap; the upload route must
// still accept it and log the attempt.
func TestUploadAcceptsFilesAboveJSONBodyLimit(t *testing.T) {
	e, svc := newTestServer(t)

	body, contentType := multipartUpload(t, 300*1024)
	req := httptest.NewRequest(http.MethodPost, "/api/verify/upload", body)
	req.Header.Set(echo.HeaderContentType, contentType)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	var outcome controllers.VerifyResponseBody
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&outcome))
	assert.Equal(t, common.VerificationResultNotFound, outcome.Status)
	assert.Equal(t, 1, stores.LogCount(svc.Stores))
}

func TestUploadRejectsFilesAboveConfiguredLimit(t *testing.T) {
	e, svc := newTestServer(t)

	body, contentType := multipartUpload(t, 550*1024)
	req := httptest.NewRequest(http.MethodPost, "/api/verify/upload", body)
	req.Header.Set(echo.HeaderContentType, contentType)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "size limit")
	assert.Equal(t, 0, stores.LogCount(svc.Stores))
}

func TestJSONEndpointsKeepSmallBodyLimit(t *testing.T) {
	e, _ := newTestServer(t)

	payload := append([]byte(`{"email":"a@example.com","password":"`), bytes.Repeat([]byte("a"), 300*1024)...)
	payload = append(payload, []byte(`"}`)...)
	req := httptest.NewRequest(http.MethodPost, "/api/auth/login", bytes.NewReader(payload))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
}
