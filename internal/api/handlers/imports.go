package handlers

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/workforce-ai/roster-import/internal/api/middleware"
	"github.com/workforce-ai/roster-import/internal/api/response"
	"github.com/workforce-ai/roster-import/internal/config"
	"github.com/workforce-ai/roster-import/internal/imports"
	"github.com/workforce-ai/roster-import/internal/ingest"
	"github.com/workforce-ai/roster-import/internal/repository"
	"github.com/workforce-ai/roster-import/internal/session"
)

const idempotencyResourceUpload = "import_upload"

// ImportService is the workflow the handler drives. Implemented by imports.Service.
type ImportService interface {
	Create(ctx context.Context, operatorID uuid.UUID) (*session.Session, error)
	Get(ctx context.Context, operatorID, id uuid.UUID) (*session.Session, error)
	List(ctx context.Context, operatorID uuid.UUID, limit int) ([]*session.Session, error)
	SelectFile(ctx context.Context, operatorID, id uuid.UUID, filename string, r io.Reader) (*session.Session, error)
	Submit(ctx context.Context, operatorID, id uuid.UUID) (*session.Session, error)
}

// IdempotencyStore claims Idempotency-Key values. Implemented by
// repository.IdempotencyRepository.
type IdempotencyStore interface {
	Claim(ctx context.Context, operatorID uuid.UUID, key, resourceType string, resourceID uuid.UUID) (*repository.IdempotencyResult, error)
	Release(ctx context.Context, operatorID uuid.UUID, key, resourceType string) error
}

// ImportHandler handles the roster import endpoints.
type ImportHandler struct {
	service     ImportService
	idempotency IdempotencyStore
	cfg         *config.Config
}

// NewImportHandler creates a new import handler.
func NewImportHandler(service ImportService, idempotency IdempotencyStore, cfg *config.Config) *ImportHandler {
	return &ImportHandler{
		service:     service,
		idempotency: idempotency,
		cfg:         cfg,
	}
}

// importView is a session as returned by the API.
type importView struct {
	*session.Session
	CanSubmit bool `json:"can_submit"`
}

func viewOf(s *session.Session) importView {
	return importView{Session: s, CanSubmit: s.CanSubmit()}
}

// importSummary is a list entry; it leaves out the report body.
type importSummary struct {
	ImportID      uuid.UUID     `json:"import_id"`
	State         session.State `json:"state"`
	Filename      string        `json:"filename,omitempty"`
	ValidCount    int           `json:"valid_count"`
	UploadedCount int           `json:"uploaded_count"`
	CreatedAt     time.Time     `json:"created_at"`
	UpdatedAt     time.Time     `json:"updated_at"`
}

// HandleCreate handles POST /api/v1/imports.
func (h *ImportHandler) HandleCreate(c *gin.Context) {
	operatorID := c.MustGet(middleware.OperatorIDKey).(uuid.UUID)

	sess, err := h.service.Create(c.Request.Context(), operatorID)
	if err != nil {
		h.serviceError(c, err)
		return
	}

	c.Header(middleware.ImportIDHeader, sess.ID.String())
	c.Header("Location", "/api/v1/imports/"+sess.ID.String())
	response.Success(c, http.StatusCreated, viewOf(sess))
}

// HandleList handles GET /api/v1/imports.
func (h *ImportHandler) HandleList(c *gin.Context) {
	operatorID := c.MustGet(middleware.OperatorIDKey).(uuid.UUID)

	limit := 20
	if v := c.Query("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 || n > 100 {
			response.BadRequest(c, "limit must be between 1 and 100", nil)
			return
		}
		limit = n
	}

	sessions, err := h.service.List(c.Request.Context(), operatorID, limit)
	if err != nil {
		h.serviceError(c, err)
		return
	}

	out := make([]importSummary, len(sessions))
	for i, s := range sessions {
		out[i] = importSummary{
			ImportID:      s.ID,
			State:         s.State,
			Filename:      s.Filename,
			UploadedCount: s.UploadedCount,
			CreatedAt:     s.CreatedAt,
			UpdatedAt:     s.UpdatedAt,
		}
		if s.Report != nil {
			out[i].ValidCount = s.Report.ValidCount()
		}
	}

	response.Success(c, http.StatusOK, gin.H{"imports": out, "count": len(out)})
}

// HandleGet handles GET /api/v1/imports/:import_id.
func (h *ImportHandler) HandleGet(c *gin.Context) {
	operatorID := c.MustGet(middleware.OperatorIDKey).(uuid.UUID)
	importID, ok := importIDParam(c)
	if !ok {
		return
	}

	sess, err := h.service.Get(c.Request.Context(), operatorID, importID)
	if err != nil {
		h.serviceError(c, err)
		return
	}

	response.Success(c, http.StatusOK, viewOf(sess))
}

// HandleSelectFile handles PUT /api/v1/imports/:import_id/file.
func (h *ImportHandler) HandleSelectFile(c *gin.Context) {
	operatorID := c.MustGet(middleware.OperatorIDKey).(uuid.UUID)
	importID, ok := importIDParam(c)
	if !ok {
		return
	}

	file, err := c.FormFile("file")
	if err != nil {
		response.BadRequest(c, "file field is required", nil)
		return
	}

	ext := strings.ToLower(filepath.Ext(file.Filename))
	if !slices.Contains(h.cfg.Upload.AllowedExtensions, ext) {
		response.BadRequest(c, "file must be one of: "+strings.Join(h.cfg.Upload.AllowedExtensions, ", "), nil)
		return
	}

	if file.Size > h.cfg.Upload.MaxFileSize {
		response.TooLarge(c, fmt.Sprintf("file exceeds max size of %d bytes", h.cfg.Upload.MaxFileSize))
		return
	}

	src, err := file.Open()
	if err != nil {
		response.InternalError(c, "failed to open uploaded file")
		return
	}
	defer src.Close()

	sess, err := h.service.SelectFile(c.Request.Context(), operatorID, importID, file.Filename, src)
	if err != nil {
		h.serviceError(c, err)
		return
	}

	if sess.State == session.StateValidationFailed && sess.Failure != nil {
		details := gin.H{"import_id": sess.ID}
		if len(sess.Failure.MissingHeaders) > 0 {
			details["missing_headers"] = sess.Failure.MissingHeaders
		}
		response.Unprocessable(c, sess.Failure.Code, sess.Failure.Message, details)
		return
	}

	response.Success(c, http.StatusOK, viewOf(sess))
}

// HandleSubmit handles POST /api/v1/imports/:import_id/upload.
func (h *ImportHandler) HandleSubmit(c *gin.Context) {
	operatorID := c.MustGet(middleware.OperatorIDKey).(uuid.UUID)
	importID, ok := importIDParam(c)
	if !ok {
		return
	}
	ctx := c.Request.Context()

	// Check idempotency key atomically; a replay gets 409 with the session as it is now
	idempotencyKey := c.GetHeader("Idempotency-Key")
	if idempotencyKey != "" {
		claim, err := h.idempotency.Claim(ctx, operatorID, idempotencyKey, idempotencyResourceUpload, importID)
		if err != nil {
			response.InternalError(c, fmt.Sprintf("idempotency check failed: %v", err))
			return
		}
		if claim.AlreadyExists {
			if claim.ResourceID != importID {
				response.BadRequest(c, "idempotency key already used for another import", nil)
				return
			}
			existing, err := h.service.Get(ctx, operatorID, importID)
			if err != nil {
				h.serviceError(c, err)
				return
			}
			response.Conflict(c, "duplicate upload (idempotency key match)", viewOf(existing))
			return
		}
	}

	sess, err := h.service.Submit(ctx, operatorID, importID)
	if err != nil {
		h.releaseKey(c, operatorID, idempotencyKey)
		h.serviceError(c, err)
		return
	}

	if sess.State == session.StateUploadFailed && sess.Failure != nil {
		// The same key may be used to retry a rejected batch.
		h.releaseKey(c, operatorID, idempotencyKey)
		response.BadGateway(c, sess.Failure.Code, sess.Failure.Message)
		return
	}

	response.Success(c, http.StatusOK, viewOf(sess))
}

func (h *ImportHandler) releaseKey(c *gin.Context, operatorID uuid.UUID, key string) {
	if key == "" {
		return
	}
	if err := h.idempotency.Release(context.WithoutCancel(c.Request.Context()), operatorID, key, idempotencyResourceUpload); err != nil {
		_ = c.Error(fmt.Errorf("release idempotency key: %w", err))
	}
}

func (h *ImportHandler) serviceError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, imports.ErrNotFound):
		response.NotFound(c, "import not found")
	case errors.Is(err, session.ErrInvalidTransition):
		response.InvalidState(c, err.Error())
	case errors.Is(err, session.ErrNothingToUpload):
		response.Unprocessable(c, "NOTHING_TO_UPLOAD", err.Error(), nil)
	case errors.Is(err, imports.ErrConcurrentUpdate):
		response.Error(c, http.StatusConflict, "CONCURRENT_UPDATE", err.Error(), nil)
	case errors.Is(err, ingest.ErrUnsupportedFormat):
		response.BadRequest(c, err.Error(), nil)
	default:
		_ = c.Error(err)
		response.InternalError(c, "import request failed")
	}
}

func importIDParam(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("import_id"))
	if err != nil {
		response.BadRequest(c, "invalid import_id", nil)
		return uuid.Nil, false
	}
	c.Header(middleware.ImportIDHeader, id.String())
	return id, true
}
