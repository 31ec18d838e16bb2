package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/herafoundry/hera_data_engine/internal/core/domain"
	portssvc "github.com/herafoundry/hera_data_engine/internal/core/ports/services"
	"github.com/herafoundry/hera_data_engine/internal/middleware"
)

// smartCodeHandler handles HTTP requests for the smart-code registry.
type smartCodeHandler struct {
	smartCodeService portssvc.SmartCodeSvcFacade
}

func newSmartCodeHandler(smartCodeService portssvc.SmartCodeSvcFacade) *smartCodeHandler {
	return &smartCodeHandler{smartCodeService: smartCodeService}
}

func registerSmartCodeRoutes(rg *gin.RouterGroup, smartCodeSvc portssvc.SmartCodeSvcFacade) {
	h := newSmartCodeHandler(smartCodeSvc)
	smartCodes := rg.Group("/smart-codes")
	{
		smartCodes.POST("", h.registerSmartCode)
		smartCodes.POST("/reload", h.reloadRegistry)
		smartCodes.GET("/:code/behavior", h.getBehavior)
	}
}

type registerSmartCodeRequest struct {
	Prefix   string          `json:"prefix" binding:"required"`
	Metadata json.RawMessage `json:"metadata" binding:"required"`
}

// registerSmartCode godoc
// @Summary Register a smart-code family
// @Description Upserts a registry row declaring behavior for a smart-code prefix and reloads the cache
// @Tags smart-codes
// @Accept  json
// @Produce  json
// @Param   request body handlers.registerSmartCodeRequest true "Registry entry"
// @Success 201 {object} map[string]string "Registered prefix"
// @Failure 400 {object} map[string]string "Invalid prefix or behavior metadata"
// @Router /smart-codes [post]
func (h *smartCodeHandler) registerSmartCode(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	var req registerSmartCodeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind smart code registration", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	entry := domain.SmartCodeEntry{Prefix: req.Prefix, Metadata: req.Metadata}
	if err := h.smartCodeService.Register(c.Request.Context(), entry, userID); err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"prefix": req.Prefix})
}

// reloadRegistry godoc
// @Summary Reload the smart-code registry cache
// @Tags smart-codes
// @Produce  json
// @Success 200 {object} map[string]string "Reloaded"
// @Failure 503 {object} map[string]string "Registry unavailable"
// @Router /smart-codes/reload [post]
func (h *smartCodeHandler) reloadRegistry(c *gin.Context) {
	if _, ok := requireUserID(c); !ok {
		return
	}
	if err := h.smartCodeService.Reload(c.Request.Context()); err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "reloaded"})
}

// getBehavior godoc
// @Summary Resolve the behavior of a smart code
// @Description Parses the code and returns the merged behavior descriptor of the matching registry families
// @Tags smart-codes
// @Produce  json
// @Param   code path string true "Smart code"
// @Success 200 {object} domain.SmartCodeBehavior "Behavior descriptor"
// @Failure 400 {object} map[string]string "Malformed smart code"
// @Router /smart-codes/{code}/behavior [get]
func (h *smartCodeHandler) getBehavior(c *gin.Context) {
	if _, ok := requireUserID(c); !ok {
		return
	}
	behavior, err := h.smartCodeService.Behavior(c.Request.Context(), c.Param("code"))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, behavior)
}
