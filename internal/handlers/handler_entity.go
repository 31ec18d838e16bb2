package handlers

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	portssvc "github.com/herafoundry/hera_data_engine/internal/core/ports/services"
	"github.com/herafoundry/hera_data_engine/internal/dto"
	"github.com/herafoundry/hera_data_engine/internal/middleware"
)

// entityHandler handles HTTP requests for the entity store.
type entityHandler struct {
	entityService portssvc.EntitySvcFacade
	queryService  portssvc.QuerySvcFacade
}

func newEntityHandler(entityService portssvc.EntitySvcFacade, queryService portssvc.QuerySvcFacade) *entityHandler {
	return &entityHandler{
		entityService: entityService,
		queryService:  queryService,
	}
}

// RegisterEntityRoutes mounts the entity store routes on the organization group.
func RegisterEntityRoutes(rg *gin.RouterGroup, entitySvc portssvc.EntitySvcFacade, querySvc portssvc.QuerySvcFacade) {
	h := newEntityHandler(entitySvc, querySvc)
	entities := rg.Group("/entities")
	{
		entities.POST("", h.handleEntityAction)
		entities.GET("/:entityID/activity", h.getEntityActivity)
	}
}

// handleEntityAction godoc
// @Summary Execute an entity store action
// @Description Multiplexed entry point: CREATE, READ, UPDATE or DELETE an entity depending on the action field
// @Tags entities
// @Accept  json
// @Produce  json
// @Param   orgID path string true "Organization ID"
// @Param   request body dto.EntityActionRequest true "Entity action envelope"
// @Success 200 {object} dto.EntityResponse "Entity view (READ/UPDATE) or list (READ without id)"
// @Success 201 {object} dto.EntityResponse "Created entity (CREATE)"
// @Failure 400 {object} map[string]string "Invalid request format"
// @Failure 403 {object} map[string]string "Forbidden"
// @Failure 404 {object} map[string]string "Entity not found"
// @Failure 409 {object} map[string]string "Duplicate entity code or referenced entity"
// @Router /organizations/{orgID}/entities [post]
func (h *entityHandler) handleEntityAction(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	var req dto.EntityActionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind entity action request", slog.String("error", err.Error()))
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

	switch req.Action {
	case dto.ActionCreate:
		entity, warnings, err := h.entityService.CreateEntity(c.Request.Context(), req, userID)
		if err != nil {
			respondServiceError(c, err)
			return
		}
		c.JSON(http.StatusCreated, dto.ToEntityResponse(entity, warnings))

	case dto.ActionRead:
		if req.Entity != nil && req.Entity.EntityID != "" {
			opts := dto.EntityOptions{IncludeDynamic: true, IncludeRelationships: true}
			if req.Options != nil {
				opts = *req.Options
			}
			entity, err := h.entityService.GetEntityByID(c.Request.Context(), orgID, req.Entity.EntityID, opts, userID)
			if err != nil {
				respondServiceError(c, err)
				return
			}
			c.JSON(http.StatusOK, dto.ToEntityResponse(entity, nil))
			return
		}
		entities, err := h.entityService.ListEntities(c.Request.Context(), req, userID)
		if err != nil {
			respondServiceError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"entities": dto.ToEntityResponses(entities)})

	case dto.ActionUpdate:
		entity, err := h.entityService.UpdateEntity(c.Request.Context(), req, userID)
		if err != nil {
			respondServiceError(c, err)
			return
		}
		c.JSON(http.StatusOK, dto.ToEntityResponse(entity, nil))

	case dto.ActionDelete:
		if err := h.entityService.DeleteEntity(c.Request.Context(), req, userID); err != nil {
			respondServiceError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "deleted"})

	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "Unknown action"})
	}
}

// getEntityActivity godoc
// @Summary Get the activity view of an entity
// @Description Composes the entity with its relationships and the most recent transactions touching it
// @Tags entities
// @Produce  json
// @Param   orgID path string true "Organization ID"
// @Param   entityID path string true "Entity ID"
// @Param   limit query int false "Maximum transactions to include"
// @Success 200 {object} dto.EntityActivityResponse "Composed activity view"
// @Failure 403 {object} map[string]string "Forbidden"
// @Failure 404 {object} map[string]string "Entity not found"
// @Router /organizations/{orgID}/entities/{entityID}/activity [get]
func (h *entityHandler) getEntityActivity(c *gin.Context) {
	orgID := c.Param("orgID")
	entityID := c.Param("entityID")
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))

	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	entity, relationships, transactions, err := h.queryService.EntityActivity(c.Request.Context(), orgID, entityID, limit, userID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	resp := dto.EntityActivityResponse{
		Entity: dto.ToEntityResponse(entity, nil),
	}
	for _, rel := range relationships {
		resp.Relationships = append(resp.Relationships, dto.ToRelationshipResponse(rel))
	}
	for i := range transactions {
		resp.Transactions = append(resp.Transactions, dto.ToTransactionResponse(&transactions[i]))
	}
	c.JSON(http.StatusOK, resp)
}
