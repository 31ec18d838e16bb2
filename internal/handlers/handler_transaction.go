package handlers

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	portssvc "github.com/herafoundry/hera_data_engine/internal/core/ports/services"
	"github.com/herafoundry/hera_data_engine/internal/dto"
	"github.com/herafoundry/hera_data_engine/internal/middleware"
)

// transactionHandler handles HTTP requests for the transaction engine.
type transactionHandler struct {
	transactionService portssvc.TransactionSvcFacade
}

func newTransactionHandler(transactionService portssvc.TransactionSvcFacade) *transactionHandler {
	return &transactionHandler{transactionService: transactionService}
}

func registerTransactionRoutes(rg *gin.RouterGroup, transactionSvc portssvc.TransactionSvcFacade) {
	h := newTransactionHandler(transactionSvc)
	transactions := rg.Group("/transactions")
	{
		transactions.POST("", h.handleTransactionAction)
		transactions.GET("", h.queryTransactions)
		transactions.GET("/:transactionID", h.getTransactionByID)
	}
}

// handleTransactionAction godoc
// @Summary Execute a transaction engine action
// @Description Multiplexed entry point: EMIT (default), QUERY or REVERSE a transaction depending on the action field
// @Tags transactions
// @Accept  json
// @Produce  json
// @Param   orgID path string true "Organization ID"
// @Param   request body dto.TransactionActionRequest true "Transaction action envelope"
// @Success 200 {object} dto.ListTransactionsResponse "Query page (QUERY) or reversing transaction (REVERSE)"
// @Success 201 {object} dto.TransactionResponse "Emitted transaction with lines"
// @Failure 400 {object} map[string]string "Invalid request format or unbalanced ledger lines"
// @Failure 403 {object} map[string]string "Forbidden"
// @Failure 404 {object} map[string]string "Transaction not found"
// @Failure 409 {object} map[string]string "Transaction already reversed or not posted"
// @Router /organizations/{orgID}/transactions [post]
func (h *transactionHandler) handleTransactionAction(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	var req dto.TransactionActionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind transaction action request", slog.String("error", err.Error()))
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
	case dto.ActionQuery:
		params := dto.TransactionQueryParams{}
		if req.Query != nil {
			params = *req.Query
		}
		params.OrganizationID = orgID
		h.respondTransactionPage(c, params, userID)

	case dto.ActionReverse:
		reversal, err := h.transactionService.ReverseTransaction(c.Request.Context(), orgID, req.TransactionID, req.ReversalReason, req.ReversalSmartCode, userID)
		if err != nil {
			respondServiceError(c, err)
			return
		}
		c.JSON(http.StatusOK, dto.ToTransactionResponse(reversal))

	default: // EMIT is the default for bodies without an action.
		txn, matches, warnings, err := h.transactionService.EmitTransaction(c.Request.Context(), req, userID)
		if err != nil {
			respondServiceError(c, err)
			return
		}
		resp := dto.ToTransactionResponse(txn)
		resp.Warnings = warnings
		if len(matches) > 0 {
			resp.DuplicateMatches = dto.ToDuplicateMatchResponses(matches)
		}
		c.JSON(http.StatusCreated, resp)
	}
}

// queryTransactions godoc
// @Summary Query transactions
// @Description Lists transactions newest-first with filters and cursor pagination
// @Tags transactions
// @Produce  json
// @Param   orgID path string true "Organization ID"
// @Param   transaction_type query string false "Transaction type filter"
// @Param   entity_id query string false "Match source, target or line entity"
// @Param   date_from query string false "Start date (YYYY-MM-DD)"
// @Param   date_to query string false "End date (YYYY-MM-DD)"
// @Param   status query string false "Status filter" Enums(draft, posted, reversed)
// @Param   include_lines query bool false "Include transaction lines"
// @Param   limit query int false "Page size"
// @Param   next_token query string false "Cursor from the previous page"
// @Success 200 {object} dto.ListTransactionsResponse "One page of transactions"
// @Failure 403 {object} map[string]string "Forbidden"
// @Router /organizations/{orgID}/transactions [get]
func (h *transactionHandler) queryTransactions(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	var params dto.TransactionQueryParams
	if err := c.ShouldBindQuery(&params); err != nil {
		logger.Warn("Failed to bind transaction query params", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}
	params.OrganizationID = c.Param("orgID")

	userID, ok := requireUserID(c)
	if !ok {
		return
	}
	h.respondTransactionPage(c, params, userID)
}

func (h *transactionHandler) respondTransactionPage(c *gin.Context, params dto.TransactionQueryParams, userID string) {
	txns, nextToken, err := h.transactionService.ListTransactions(c.Request.Context(), params, userID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	resp := dto.ListTransactionsResponse{
		Transactions: make([]dto.TransactionResponse, len(txns)),
		NextToken:    nextToken,
	}
	for i := range txns {
		resp.Transactions[i] = dto.ToTransactionResponse(&txns[i])
	}
	c.JSON(http.StatusOK, resp)
}

// getTransactionByID godoc
// @Summary Get a transaction by ID
// @Description Returns the transaction header with its ordered lines
// @Tags transactions
// @Produce  json
// @Param   orgID path string true "Organization ID"
// @Param   transactionID path string true "Transaction ID"
// @Success 200 {object} dto.TransactionResponse "Transaction with lines"
// @Failure 403 {object} map[string]string "Forbidden"
// @Failure 404 {object} map[string]string "Transaction not found"
// @Router /organizations/{orgID}/transactions/{transactionID} [get]
func (h *transactionHandler) getTransactionByID(c *gin.Context) {
	orgID := c.Param("orgID")
	transactionID := c.Param("transactionID")

	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	txn, err := h.transactionService.GetTransactionByID(c.Request.Context(), orgID, transactionID, userID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.ToTransactionResponse(txn))
}
