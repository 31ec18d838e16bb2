package handlers

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	portssvc "github.com/herafoundry/hera_data_engine/internal/core/ports/services"
	"github.com/herafoundry/hera_data_engine/internal/dto"
	"github.com/herafoundry/hera_data_engine/internal/middleware"
)

// organizationHandler handles HTTP requests for tenant management.
type organizationHandler struct {
	organizationService portssvc.OrganizationSvcFacade
}

func newOrganizationHandler(organizationService portssvc.OrganizationSvcFacade) *organizationHandler {
	return &organizationHandler{organizationService: organizationService}
}

func registerOrganizationRoutes(rg *gin.RouterGroup, organizationSvc portssvc.OrganizationSvcFacade) {
	h := newOrganizationHandler(organizationSvc)
	organizations := rg.Group("/organizations")
	{
		organizations.POST("", h.createOrganization)
		organizations.GET("", h.listOrganizations)
		organizations.GET("/:orgID", h.getOrganizationByID)
		organizations.POST("/:orgID/members", h.addMember)
	}
}

// createOrganization godoc
// @Summary Create an organization
// @Description Registers a new tenant and makes the caller its first admin
// @Tags organizations
// @Accept  json
// @Produce  json
// @Param   request body dto.CreateOrganizationRequest true "Organization details"
// @Success 201 {object} dto.OrganizationResponse "Created organization"
// @Failure 400 {object} map[string]string "Invalid request format"
// @Failure 409 {object} map[string]string "Organization name already in use"
// @Router /organizations [post]
func (h *organizationHandler) createOrganization(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	var req dto.CreateOrganizationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind create organization request", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	org, err := h.organizationService.CreateOrganization(c.Request.Context(), req, userID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, dto.ToOrganizationResponse(org))
}

// listOrganizations godoc
// @Summary List the caller's organizations
// @Description Returns every active organization the authenticated user belongs to
// @Tags organizations
// @Produce  json
// @Success 200 {object} map[string][]dto.OrganizationResponse "Organizations"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Router /organizations [get]
func (h *organizationHandler) listOrganizations(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	orgs, err := h.organizationService.ListUserOrganizations(c.Request.Context(), userID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"organizations": dto.ToOrganizationResponses(orgs)})
}

// getOrganizationByID godoc
// @Summary Get an organization by ID
// @Tags organizations
// @Produce  json
// @Param   orgID path string true "Organization ID"
// @Success 200 {object} dto.OrganizationResponse "Organization"
// @Failure 403 {object} map[string]string "Forbidden"
// @Failure 404 {object} map[string]string "Organization not found"
// @Router /organizations/{orgID} [get]
func (h *organizationHandler) getOrganizationByID(c *gin.Context) {
	orgID := c.Param("orgID")

	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	org, err := h.organizationService.GetOrganizationByID(c.Request.Context(), orgID, userID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.ToOrganizationResponse(org))
}

// addMember godoc
// @Summary Add a member to an organization
// @Description Grants a user a role within the organization; admin only
// @Tags organizations
// @Accept  json
// @Produce  json
// @Param   orgID path string true "Organization ID"
// @Param   request body dto.AddMemberRequest true "Member details"
// @Success 200 {object} map[string]string "Membership granted"
// @Failure 400 {object} map[string]string "Invalid request format"
// @Failure 403 {object} map[string]string "Forbidden"
// @Router /organizations/{orgID}/members [post]
func (h *organizationHandler) addMember(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	orgID := c.Param("orgID")

	var req dto.AddMemberRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind add member request", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	if err := h.organizationService.AddMember(c.Request.Context(), orgID, req, userID); err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "member added"})
}
