package handler

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	lendingapp "github.com/loanbook/backend/internal/application/lending"
	"github.com/loanbook/backend/internal/domain/lending"
)

// PaymentHandler handles repayment-related API endpoints
type PaymentHandler struct {
	BaseHandler
	paymentService *lendingapp.PaymentService
}

// NewPaymentHandler creates a new PaymentHandler
func NewPaymentHandler(paymentService *lendingapp.PaymentService) *PaymentHandler {
	return &PaymentHandler{
		paymentService: paymentService,
	}
}

// ProcessPaymentRequest represents an ad-hoc repayment against a loan
type ProcessPaymentRequest struct {
	PaymentDate time.Time `json:"payment_date" binding:"required" example:"2025-07-01T00:00:00Z"`
	Principal   float64   `json:"principal" binding:"gte=0" example:"50000.00"`
	Interest    float64   `json:"interest" binding:"gte=0" example:"1250.00"`
	Currency    string    `json:"currency" binding:"required,len=3,currency" example:"USD"`
}

// ScheduledPaymentRequest represents the settlement of one schedule entry
type ScheduledPaymentRequest struct {
	PaymentDate time.Time `json:"payment_date" binding:"required"`
}

// SweepOverdueResponse reports how many loans an overdue sweep marked
type SweepOverdueResponse struct {
	Marked int    `json:"marked" example:"3"`
	AsOf   string `json:"as_of" example:"2025-07-01"`
}

// ListPaymentsQuery carries the query parameters for payment listing
type ListPaymentsQuery struct {
	LoanID   string `form:"loan_id" binding:"omitempty,uuid"`
	FromDate string `form:"from_date" binding:"omitempty,datetime=2006-01-02"`
	ToDate   string `form:"to_date" binding:"omitempty,datetime=2006-01-02"`
	Page     int    `form:"page" binding:"omitempty,min=1"`
	PageSize int    `form:"page_size" binding:"omitempty,min=1,max=100"`
}

// Process records an ad-hoc repayment against a loan. The whole payment is
// accepted or rejected; an overdraw leaves the loan untouched.
func (h *PaymentHandler) Process(c *gin.Context) {
	loanID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid loan ID format")
		return
	}

	var req ProcessPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	payment, err := h.paymentService.ProcessPayment(c.Request.Context(), lendingapp.PaymentRequest{
		LoanID:      loanID,
		PaymentDate: req.PaymentDate,
		Principal:   toDecimal(req.Principal),
		Interest:    toDecimal(req.Interest),
		Currency:    req.Currency,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, payment)
}

// ProcessScheduled settles an amortization schedule entry with its
// precomputed principal and interest
func (h *PaymentHandler) ProcessScheduled(c *gin.Context) {
	paymentDetailID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid payment detail ID format")
		return
	}

	var req ScheduledPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	payment, err := h.paymentService.ProcessScheduledPayment(c.Request.Context(), lendingapp.ScheduledPaymentRequest{
		PaymentDetailID: paymentDetailID,
		PaymentDate:     req.PaymentDate,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, payment)
}

// GetByID retrieves a payment by its ID
func (h *PaymentHandler) GetByID(c *gin.Context) {
	paymentID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid payment ID format")
		return
	}

	payment, err := h.paymentService.GetPayment(c.Request.Context(), paymentID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, payment)
}

// List retrieves a paginated list of payments with optional filtering
func (h *PaymentHandler) List(c *gin.Context) {
	var q ListPaymentsQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	filter := lending.PaymentFilter{Filter: pageFilter(q.Page, q.PageSize)}
	if q.LoanID != "" {
		id, err := uuid.Parse(q.LoanID)
		if err != nil {
			h.BadRequest(c, "Invalid loan ID format")
			return
		}
		filter.LoanID = &id
	}
	if q.FromDate != "" {
		from, _ := time.Parse("2006-01-02", q.FromDate)
		filter.FromDate = &from
	}
	if q.ToDate != "" {
		to, _ := time.Parse("2006-01-02", q.ToDate)
		filter.ToDate = &to
	}

	result, err := h.paymentService.ListPayments(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.SuccessWithMeta(c, result.Items, result.Total, result.Page, result.PageSize)
}

// SweepOverdue marks every active loan with a past-due installment as
// OVERDUE. The same sweep runs daily from the scheduler; this endpoint
// triggers it on demand.
func (h *PaymentHandler) SweepOverdue(c *gin.Context) {
	asOf, err := asOfDate(c)
	if err != nil {
		h.BadRequest(c, "Invalid as_of date, expected YYYY-MM-DD")
		return
	}

	marked, err := h.paymentService.SweepOverdueLoans(c.Request.Context(), asOf)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, SweepOverdueResponse{
		Marked: marked,
		AsOf:   asOf.Format("2006-01-02"),
	})
}

// asOfDate reads the optional as_of query parameter, defaulting to now
func asOfDate(c *gin.Context) (time.Time, error) {
	raw := c.Query("as_of")
	if raw == "" {
		return time.Now().UTC(), nil
	}
	return time.Parse("2006-01-02", raw)
}
