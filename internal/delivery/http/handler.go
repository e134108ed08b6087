package http

import (
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"

	"github.com/foodguard/backend/internal/domain"
	"github.com/foodguard/backend/internal/usecase"
	"github.com/gin-gonic/gin"
)

const (
	// imageField is the multipart field carrying the uploaded image
	imageField = "image_file"
	// defaultMaxUploadBytes applies when the handler is built without a limit
	defaultMaxUploadBytes = 10 << 20
)

// Handler holds dependencies for HTTP handlers
type Handler struct {
	users          *usecase.UserService
	scans          *usecase.ScanService
	products       domain.ProductResolver
	maxUploadBytes int64
}

// NewHandler creates a new HTTP handler
func NewHandler(
	users *usecase.UserService,
	scans *usecase.ScanService,
	products domain.ProductResolver,
	maxUploadBytes int64,
) *Handler {
	if maxUploadBytes <= 0 {
		maxUploadBytes = defaultMaxUploadBytes
	}
	return &Handler{
		users:          users,
		scans:          scans,
		products:       products,
		maxUploadBytes: maxUploadBytes,
	}
}

// HealthCheck returns the health status of the API
func (h *Handler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": "foodguard-backend",
		"version": "1.0.0",
	})
}

// Register creates a user from the registration form
func (h *Handler) Register(c *gin.Context) {
	var req domain.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid request body: " + err.Error(),
		})
		return
	}

	user, err := h.users.Register(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, user)
}

// Me returns the current user's profile
func (h *Handler) Me(c *gin.Context) {
	c.JSON(http.StatusOK, currentUser(c))
}

// UpdateSensitivities replaces the current user's allergies and health conditions
func (h *Handler) UpdateSensitivities(c *gin.Context) {
	var req domain.SensitivityUpdate
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid request body: " + err.Error(),
		})
		return
	}

	user, err := h.users.UpdateSensitivities(c.Request.Context(), currentUser(c).Mobile, req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, user)
}

// Suggestions returns the allergy and health condition choices offered to users
func (h *Handler) Suggestions(c *gin.Context) {
	c.JSON(http.StatusOK, h.users.Suggestions())
}

// Scan runs the barcode pipeline on an uploaded image for the current user
func (h *Handler) Scan(c *gin.Context) {
	if c.Request.ContentLength > h.maxUploadBytes {
		h.uploadTooLarge(c)
		return
	}
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxUploadBytes)

	header, err := c.FormFile(imageField)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			h.uploadTooLarge(c)
			return
		}
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "No file part named " + imageField,
		})
		return
	}

	file, err := header.Open()
	if err != nil {
		log.Printf("[HTTP] opening upload %q failed: %v", header.Filename, err)
		c.JSON(http.StatusBadRequest, gin.H{"error": "Could not read the uploaded file"})
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		log.Printf("[HTTP] reading upload %q failed: %v", header.Filename, err)
		c.JSON(http.StatusBadRequest, gin.H{"error": "Could not read the uploaded file"})
		return
	}

	outcome := h.scans.Scan(c.Request.Context(), domain.ImageUpload{
		Filename: header.Filename,
		Data:     data,
	}, currentUser(c))

	c.JSON(statusForState(outcome.State), outcome)
}

func (h *Handler) uploadTooLarge(c *gin.Context) {
	c.JSON(http.StatusRequestEntityTooLarge, gin.H{
		"error": fmt.Sprintf("Image exceeds the %d byte upload limit", h.maxUploadBytes),
	})
}

// LookupProduct returns product details for a barcode
func (h *Handler) LookupProduct(c *gin.Context) {
	product, err := h.products.Resolve(c.Request.Context(), c.Param("barcode"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, product)
}

// CheckProduct checks a known barcode against the current user's profile
func (h *Handler) CheckProduct(c *gin.Context) {
	outcome := h.scans.CheckBarcode(c.Request.Context(), c.Param("barcode"), currentUser(c))
	c.JSON(statusForState(outcome.State), outcome)
}

// statusForState maps scan outcomes to HTTP status codes.
// Not finding a barcode or a product is a valid answer, not a failure.
func statusForState(state domain.ScanState) int {
	switch state {
	case domain.ScanCompleted, domain.ScanNoBarcodeFound, domain.ScanProductNotFound:
		return http.StatusOK
	case domain.ScanUnsupportedFile, domain.ScanInvalidInput:
		return http.StatusBadRequest
	case domain.ScanImageUnreadable:
		return http.StatusUnprocessableEntity
	case domain.ScanLookupFailed:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// respondError maps domain errors to HTTP responses
func respondError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, domain.ErrInvalidInput):
		status = http.StatusBadRequest
	case errors.Is(err, domain.ErrUserNotFound), errors.Is(err, domain.ErrProductNotFound):
		status = http.StatusNotFound
	case errors.Is(err, domain.ErrUserExists):
		status = http.StatusConflict
	case errors.Is(err, domain.ErrRateLimited):
		status = http.StatusTooManyRequests
	case errors.Is(err, domain.ErrResolver):
		status = http.StatusBadGateway
	}

	if status == http.StatusInternalServerError {
		log.Printf("[HTTP] %s %s: %v", c.Request.Method, c.Request.URL.Path, err)
		c.JSON(status, gin.H{"error": "Internal server error"})
		return
	}
	c.JSON(status, gin.H{"error": err.Error()})
}
