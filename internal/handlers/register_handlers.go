package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/herafoundry/hera_data_engine/cmd/docs"
	"github.com/herafoundry/hera_data_engine/internal/apperrors"
	portssvc "github.com/herafoundry/hera_data_engine/internal/core/ports/services"
	"github.com/herafoundry/hera_data_engine/internal/core/services"
	"github.com/herafoundry/hera_data_engine/internal/middleware"
	"github.com/herafoundry/hera_data_engine/pkg/config"
)

// RegisterRoutes sets up all application routes, injecting dependencies using interfaces
func RegisterRoutes(
	r *gin.Engine,
	cfg *config.Config,
	svcs *portssvc.ServiceContainer,
) {
	RegisterCustomValidators()

	// Add health check route
	r.GET("/health", func(c *gin.Context) {
		c.String(200, "OK")
	})

	setupAPIV1Routes(r, cfg, svcs)
	setupSwaggerRoutes(r, cfg)
}

// RegisterCustomValidators wires the smart-code grammar into gin's binding
// layer so malformed codes are rejected before any handler runs.
func RegisterCustomValidators() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		_ = v.RegisterValidation("smartcode", validateSmartCode)
	}
}

// setupAPIV1Routes configures the /api/v1 group and delegates to specific route registrations
func setupAPIV1Routes(
	r *gin.Engine,
	cfg *config.Config,
	svcs *portssvc.ServiceContainer,
) {
	// Apply AuthMiddleware to the entire v1 group
	v1 := r.Group("/api/v1", middleware.AuthMiddleware(cfg.JWTSecret))

	registerOrganizationRoutes(v1, svcs.Organization)
	registerSmartCodeRoutes(v1, svcs.SmartCode)

	// Store routes are nested under the organization they act on; the path
	// organization must match the body's organization_id.
	org := v1.Group("/organizations/:orgID")
	RegisterEntityRoutes(org, svcs.Entity, svcs.Query)
	registerTransactionRoutes(org, svcs.Transaction)
	registerRelationshipRoutes(org, svcs.Relationship)
}

// setupSwaggerRoutes configures the swagger documentation routes
func setupSwaggerRoutes(r *gin.Engine, cfg *config.Config) {
	if cfg.IsProduction {
		//no swagger in prod
		return
	}
	docs.SwaggerInfo.BasePath = "/api/v1"
	swagger := r.Group("/swagger")
	swagger.GET("/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
}

// resolveOrgID reconciles the path organization with the body's
// organization_id. An empty body value inherits the path; a mismatch is a
// request-validation error, never a silent override.
func resolveOrgID(c *gin.Context, bodyOrgID string) (string, bool) {
	pathOrgID := c.Param("orgID")
	if bodyOrgID != "" && bodyOrgID != pathOrgID {
		c.JSON(http.StatusBadRequest, gin.H{"error": "organization_id in body does not match request path"})
		return "", false
	}
	return pathOrgID, true
}

// requireUserID pulls the authenticated actor out of the request context.
func requireUserID(c *gin.Context) (string, bool) {
	userID, ok := middleware.GetUserIDFromCtx(c.Request.Context())
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return "", false
	}
	return userID, true
}

// respondServiceError maps service and repository errors onto HTTP statuses.
// Sentinels decide the class; the err text carries the detail.
func respondServiceError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, apperrors.ErrForbidden):
		c.JSON(http.StatusForbidden, gin.H{"error": "Forbidden"})
	case errors.Is(err, apperrors.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Not found"})
	case errors.Is(err, apperrors.ErrDuplicate),
		errors.Is(err, apperrors.ErrConflict),
		errors.Is(err, services.ErrAlreadyReversed),
		errors.Is(err, services.ErrNotPosted),
		errors.Is(err, services.ErrEntityReferenced):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, apperrors.ErrValidation),
		errors.Is(err, services.ErrUnbalanced),
		errors.Is(err, services.ErrLedgerMinLines),
		errors.Is(err, services.ErrLineNumbersNotDense),
		errors.Is(err, services.ErrTransactionTypeMissing),
		errors.Is(err, services.ErrTransactionIDMissing),
		errors.Is(err, services.ErrEntityTypeMissing),
		errors.Is(err, services.ErrEntityNameMissing),
		errors.Is(err, services.ErrEntityPayloadMissing),
		errors.Is(err, services.ErrEntityIDMissing),
		errors.Is(err, services.ErrEntityDeleted),
		errors.Is(err, services.ErrRequiredFieldMissing),
		errors.Is(err, services.ErrCrossTenantEdge),
		errors.Is(err, services.ErrSelfRelationship),
		errors.Is(err, services.ErrRelationshipFilterMissing):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, apperrors.ErrUnavailable):
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Storage temporarily unavailable"})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
	}
}
