package handler

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	lendingapp "github.com/loanbook/backend/internal/application/lending"
	"github.com/loanbook/backend/internal/domain/lending"
)

// TransactionHandler handles ledger query endpoints. The ledger is
// append-only: entries are written by drawdown execution and repayment
// processing, so the HTTP surface is read-only.
type TransactionHandler struct {
	BaseHandler
	transactionService *lendingapp.TransactionService
}

// NewTransactionHandler creates a new TransactionHandler
func NewTransactionHandler(transactionService *lendingapp.TransactionService) *TransactionHandler {
	return &TransactionHandler{
		transactionService: transactionService,
	}
}

// ListTransactionsQuery carries the query parameters for ledger listing
type ListTransactionsQuery struct {
	FacilityID string `form:"facility_id" binding:"omitempty,uuid"`
	LoanID     string `form:"loan_id" binding:"omitempty,uuid"`
	PartyID    string `form:"party_id" binding:"omitempty,uuid"`
	Type       string `form:"type" binding:"omitempty,oneof=DRAWDOWN PAYMENT FACILITY_INVESTMENT FEE_PAYMENT TRADE SETTLEMENT"`
	FromDate   string `form:"from_date" binding:"omitempty,datetime=2006-01-02"`
	ToDate     string `form:"to_date" binding:"omitempty,datetime=2006-01-02"`
	Page       int    `form:"page" binding:"omitempty,min=1"`
	PageSize   int    `form:"page_size" binding:"omitempty,min=1,max=100"`
}

// GetByID retrieves a ledger entry by its ID
func (h *TransactionHandler) GetByID(c *gin.Context) {
	transactionID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid transaction ID format")
		return
	}

	transaction, err := h.transactionService.GetTransaction(c.Request.Context(), transactionID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, transaction)
}

// List retrieves a paginated list of ledger entries with optional filtering
func (h *TransactionHandler) List(c *gin.Context) {
	var q ListTransactionsQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	filter := lending.TransactionFilter{Filter: pageFilter(q.Page, q.PageSize)}
	if q.FacilityID != "" {
		id, err := uuid.Parse(q.FacilityID)
		if err != nil {
			h.BadRequest(c, "Invalid facility ID format")
			return
		}
		filter.FacilityID = &id
	}
	if q.LoanID != "" {
		id, err := uuid.Parse(q.LoanID)
		if err != nil {
			h.BadRequest(c, "Invalid loan ID format")
			return
		}
		filter.LoanID = &id
	}
	if q.PartyID != "" {
		id, err := uuid.Parse(q.PartyID)
		if err != nil {
			h.BadRequest(c, "Invalid party ID format")
			return
		}
		filter.PartyID = &id
	}
	if q.Type != "" {
		entryType := lending.TransactionType(q.Type)
		filter.Type = &entryType
	}
	if q.FromDate != "" {
		from, _ := time.Parse("2006-01-02", q.FromDate)
		filter.FromDate = &from
	}
	if q.ToDate != "" {
		to, _ := time.Parse("2006-01-02", q.ToDate)
		filter.ToDate = &to
	}

	result, err := h.transactionService.ListTransactions(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.SuccessWithMeta(c, result.Items, result.Total, result.Page, result.PageSize)
}
