package analysis

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"imagelens-backend/internal/shared/server/middleware"
	"imagelens-backend/internal/shared/server/respond"
	"imagelens-backend/internal/shared/util"
	"imagelens-backend/internal/usage"
)

// Uploads larger than this are rejected before reading into memory.
const maxUploadBytes = 10 << 20

var allowedImageTypes = map[string]struct{}{
	"image/jpeg": {},
	"image/jpg":  {},
	"image/png":  {},
	"image/webp": {},
	"image/gif":  {},
	"image/bmp":  {},
	"image/tiff": {},
}

// Handler exposes the analyze endpoint.
type Handler struct {
	Svc *Service
}

// NewHandler constructs a Handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{Svc: svc}
}

// RegisterRoutes attaches analysis routes to the router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/analyze", h.analyze)
}

func (h *Handler) analyze(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxUploadBytes)

	file, header, err := c.Request.FormFile("file")
	if err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "file field is required", nil)
		return
	}
	defer file.Close()

	contentType := header.Header.Get("Content-Type")
	if !isImageContentType(contentType) {
		respond.Error(c, http.StatusBadRequest, "validation_error",
			fmt.Sprintf("File must be an image. Received: %s", contentType), nil)
		return
	}

	fileName, err := util.SanitizeFileName(header.Filename)
	if err != nil {
		fileName = "upload"
	}

	image, err := io.ReadAll(file)
	if err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "failed to read upload", nil)
		return
	}
	if len(image) == 0 {
		respond.Error(c, http.StatusBadRequest, "validation_error", "uploaded file is empty", nil)
		return
	}

	userID := middleware.UserIDFromContext(c)
	requestID := middleware.RequestIDFromContext(c)

	rec, err := h.Svc.Analyze(c.Request.Context(), userID, requestID, image)
	if err != nil {
		switch {
		case errors.Is(err, usage.ErrLimitReached):
			respond.Error(c, http.StatusTooManyRequests, "limit_reached", "analysis quota exhausted", nil)
		default:
			respond.Error(c, http.StatusBadGateway, "capability_error", "analysis capability unavailable", nil)
		}
		return
	}

	c.Set("contentCategory", string(rec.Category))

	if rec.Category == CategoryError {
		respond.Error(c, http.StatusForbidden, "region_blocked",
			"The analysis provider is not available in your region.", map[string]any{
				"usage": rec.Usage,
			})
		return
	}

	analyzedBy := middleware.UserEmailFromContext(c)
	if analyzedBy == "" {
		analyzedBy = userID
	}

	respond.JSON(c, http.StatusOK, ToResponse(rec, fileName, analyzedBy))
}

func isImageContentType(contentType string) bool {
	if contentType == "" {
		return false
	}
	if _, ok := allowedImageTypes[contentType]; ok {
		return true
	}
	return strings.HasPrefix(contentType, "image/")
}
