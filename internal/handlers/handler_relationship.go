package handlers

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	portssvc "github.com/herafoundry/hera_data_engine/internal/core/ports/services"
	"github.com/herafoundry/hera_data_engine/internal/dto"
	"github.com/herafoundry/hera_data_engine/internal/middleware"
)

// relationshipHandler handles HTTP requests for the relationship log.
type relationshipHandler struct {
	relationshipService portssvc.RelationshipSvcFacade
}

func newRelationshipHandler(relationshipService portssvc.RelationshipSvcFacade) *relationshipHandler {
	return &relationshipHandler{relationshipService: relationshipService}
}

func registerRelationshipRoutes(rg *gin.RouterGroup, relationshipSvc portssvc.RelationshipSvcFacade) {
	h := newRelationshipHandler(relationshipSvc)
	relationships := rg.Group("/relationships")
	{
		relationships.POST("", h.upsertRelationship)
		relationships.GET("", h.queryRelationships)
	}
}

// upsertRelationship godoc
// @Summary Upsert a relationship edge
// @Description Appends a typed, directed edge; for exclusive relationship types the new edge supersedes the prior one with a warning
// @Tags relationships
// @Accept  json
// @Produce  json
// @Param   orgID path string true "Organization ID"
// @Param   request body dto.UpsertRelationshipRequest true "Relationship upsert"
// @Success 201 {object} map[string]any "Created edge ID plus warnings"
// @Failure 400 {object} map[string]string "Invalid request format or self-referencing edge"
// @Failure 403 {object} map[string]string "Forbidden"
// @Failure 404 {object} map[string]string "Endpoint entity not found"
// @Router /organizations/{orgID}/relationships [post]
func (h *relationshipHandler) upsertRelationship(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	var req dto.UpsertRelationshipRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind relationship upsert request", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}
	orgID, ok := resolveOrgID(c, req.OrganizationID)
	if !ok {
		return
	}
	req.OrganizationID = orgID

	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	relationshipID, warnings, err := h.relationshipService.UpsertRelationship(c.Request.Context(), req, userID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	resp := gin.H{"id": relationshipID}
	if len(warnings) > 0 {
		resp["warnings"] = warnings
	}
	c.JSON(http.StatusCreated, resp)
}

// queryRelationships godoc
// @Summary Query relationship edges
// @Description Lists edges newest-first filtered by endpoint and type; at least one of from_entity_id or to_entity_id is required
// @Tags relationships
// @Produce  json
// @Param   orgID path string true "Organization ID"
// @Param   from_entity_id query string false "Source entity filter"
// @Param   to_entity_id query string false "Target entity filter"
// @Param   relationship_type query string false "Relationship type filter"
// @Success 200 {object} dto.QueryRelationshipsResponse "Edges, newest first"
// @Failure 400 {object} map[string]string "Missing endpoint filter"
// @Failure 403 {object} map[string]string "Forbidden"
// @Router /organizations/{orgID}/relationships [get]
func (h *relationshipHandler) queryRelationships(c *gin.Context) {
	params := dto.QueryRelationshipsParams{
		OrganizationID:   c.Param("orgID"),
		FromEntityID:     c.Query("from_entity_id"),
		ToEntityID:       c.Query("to_entity_id"),
		RelationshipType: c.Query("relationship_type"),
	}

	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	edges, err := h.relationshipService.QueryRelationships(c.Request.Context(), params, userID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	resp := dto.QueryRelationshipsResponse{
		Relationships: make([]dto.RelationshipResponse, len(edges)),
	}
	for i, edge := range edges {
		resp.Relationships[i] = dto.ToRelationshipResponse(edge)
	}
	c.JSON(http.StatusOK, resp)
}
