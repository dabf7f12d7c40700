package api

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/workforce-ai/roster-import/internal/api/handlers"
	"github.com/workforce-ai/roster-import/internal/config"
	"github.com/workforce-ai/roster-import/internal/importer"
	"github.com/workforce-ai/roster-import/internal/imports"
	"github.com/workforce-ai/roster-import/internal/imports/importstest"
	"github.com/workforce-ai/roster-import/internal/uploader"
	"github.com/workforce-ai/roster-import/pkg/auth"
)

type nopIdempotency struct{ handlers.IdempotencyStore }

func testConfig() *config.Config {
	return &config.Config{
		JWT:    config.JWTConfig{Secret: "router-test-secret", Issuer: "test", ExpiryHours: 1},
		Upload: config.UploadConfig{MaxFileSize: 1 << 20, AllowedExtensions: []string{".csv", ".xlsx"}},
	}
}

func testEngine(t *testing.T) (*config.Config, http.Handler) {
	t.Helper()
	cfg := testConfig()
	svc := imports.NewService(importstest.NewStore(), &importstest.Uploader{}, importer.Options{})
	return cfg, newEngine(handlers.NewImportHandler(svc, nopIdempotency{}, cfg), cfg)
}

func bearer(t *testing.T, cfg *config.Config, operatorID uuid.UUID, role string) string {
	t.Helper()
	token, err := auth.GenerateToken(cfg.JWT.Secret, cfg.JWT.Issuer, operatorID, role, 1)
	require.NoError(t, err)
	return "Bearer " + token
}

func TestRouter_Health(t *testing.T) {
	_, h := testEngine(t)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "roster-import")
}

func TestRouter_RequiresAuth(t *testing.T) {
	_, h := testEngine(t)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/v1/imports", nil))

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRouter_RolePermissions(t *testing.T) {
	tests := []struct {
		role       string
		createCode int
	}{
		{auth.RoleAdmin, http.StatusCreated},
		{auth.RoleOperator, http.StatusCreated},
		{auth.RoleViewer, http.StatusForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.role, func(t *testing.T) {
			cfg, h := testEngine(t)
			req := httptest.NewRequest(http.MethodPost, "/api/v1/imports", nil)
			req.Header.Set("Authorization", bearer(t, cfg, uuid.New(), tt.role))
			w := httptest.NewRecorder()
			h.ServeHTTP(w, req)

			assert.Equal(t, tt.createCode, w.Code)
		})
	}
}

func TestRouter_ViewerCanReadOperatorsImport(t *testing.T) {
	cfg, h := testEngine(t)
	operatorID := uuid.New()

	req := httptest.NewRequest(http.MethodPost, "/api/v1/imports", nil)
	req.Header.Set("Authorization", bearer(t, cfg, operatorID, auth.RoleOperator))
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	require.Equal(t, http.StatusCreated, w.Code)

	var created struct {
		Data struct {
			ImportID string `json:"import_id"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))

	req = httptest.NewRequest(http.MethodGet, "/api/v1/imports/"+created.Data.ImportID, nil)
	req.Header.Set("Authorization", bearer(t, cfg, operatorID, auth.RoleViewer))
	w = httptest.NewRecorder()
	h.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	_, err := mw.CreateFormFile("file", "roster.csv")
	require.NoError(t, err)
	require.NoError(t, mw.Close())
	req = httptest.NewRequest(http.MethodPut, "/api/v1/imports/"+created.Data.ImportID+"/file", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Authorization", bearer(t, cfg, operatorID, auth.RoleViewer))
	w = httptest.NewRecorder()
	h.ServeHTTP(w, req)
	assert.Equal(t, http.StatusForbidden, w.Code, "viewers cannot select files")
}

func TestRouter_DevToken(t *testing.T) {
	cfg, h := testEngine(t)
	operatorID := uuid.New()

	body := `{"operator_id":"` + operatorID.String() + `","role":"viewer"}`
	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/dev/token", bytes.NewBufferString(body)))
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Data struct {
			Token string `json:"token"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	claims, err := auth.ValidateToken(resp.Data.Token, cfg.JWT.Secret)
	require.NoError(t, err)
	assert.Equal(t, operatorID, claims.OperatorID)
	assert.Equal(t, auth.RoleViewer, claims.Role)

	w = httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/dev/token", bytes.NewBufferString(`{"operator_id":"x"}`)))
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestNewUploader_PicksDestination(t *testing.T) {
	cfg := testConfig()
	_, isPostgres := NewUploader(nil, cfg).(*uploader.PostgresUploader)
	assert.True(t, isPostgres)

	cfg.BatchUpload = config.BatchUploadConfig{URL: "http://backend.local/users/bulk"}
	_, isHTTP := NewUploader(nil, cfg).(*uploader.HTTPUploader)
	assert.True(t, isHTTP)
}
