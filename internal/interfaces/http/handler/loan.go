package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	lendingapp "github.com/loanbook/backend/internal/application/lending"
	"github.com/loanbook/backend/internal/domain/lending"
)

// LoanHandler handles loan-related API endpoints. Loans are created by
// drawdown execution, never directly, so the surface is read-only plus the
// overdue transition.
type LoanHandler struct {
	BaseHandler
	paymentService *lendingapp.PaymentService
}

// NewLoanHandler creates a new LoanHandler
func NewLoanHandler(paymentService *lendingapp.PaymentService) *LoanHandler {
	return &LoanHandler{
		paymentService: paymentService,
	}
}

// ListLoansQuery carries the query parameters for loan listing
type ListLoansQuery struct {
	FacilityID string `form:"facility_id" binding:"omitempty,uuid"`
	BorrowerID string `form:"borrower_id" binding:"omitempty,uuid"`
	Status     string `form:"status" binding:"omitempty,oneof=DRAFT ACTIVE OVERDUE COMPLETED"`
	Page       int    `form:"page" binding:"omitempty,min=1"`
	PageSize   int    `form:"page_size" binding:"omitempty,min=1,max=100"`
}

// GetByID retrieves a loan, with its amortization schedule, by ID
func (h *LoanHandler) GetByID(c *gin.Context) {
	loanID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid loan ID format")
		return
	}

	loan, err := h.paymentService.GetLoan(c.Request.Context(), loanID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, loan)
}

// List retrieves a paginated list of loans with optional filtering
func (h *LoanHandler) List(c *gin.Context) {
	var q ListLoansQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	filter := lending.LoanFilter{Filter: pageFilter(q.Page, q.PageSize)}
	if q.FacilityID != "" {
		id, err := uuid.Parse(q.FacilityID)
		if err != nil {
			h.BadRequest(c, "Invalid facility ID format")
			return
		}
		filter.FacilityID = &id
	}
	if q.BorrowerID != "" {
		id, err := uuid.Parse(q.BorrowerID)
		if err != nil {
			h.BadRequest(c, "Invalid borrower ID format")
			return
		}
		filter.BorrowerID = &id
	}
	if q.Status != "" {
		status := lending.LoanStatus(q.Status)
		filter.Status = &status
	}

	result, err := h.paymentService.ListLoans(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.SuccessWithMeta(c, result.Items, result.Total, result.Page, result.PageSize)
}

// MarkOverdue moves an active loan with a past-due installment to OVERDUE
func (h *LoanHandler) MarkOverdue(c *gin.Context) {
	loanID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid loan ID format")
		return
	}

	asOf, err := asOfDate(c)
	if err != nil {
		h.BadRequest(c, "Invalid as_of date, expected YYYY-MM-DD")
		return
	}

	loan, err := h.paymentService.MarkLoanOverdue(c.Request.Context(), loanID, asOf)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, loan)
}
