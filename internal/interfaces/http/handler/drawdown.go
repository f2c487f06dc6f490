package handler

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	lendingapp "github.com/loanbook/backend/internal/application/lending"
	"github.com/loanbook/backend/internal/domain/lending"
)

// DrawdownHandler handles drawdown-related API endpoints
type DrawdownHandler struct {
	BaseHandler
	drawdownService *lendingapp.DrawdownService
}

// NewDrawdownHandler creates a new DrawdownHandler
func NewDrawdownHandler(drawdownService *lendingapp.DrawdownService) *DrawdownHandler {
	return &DrawdownHandler{
		drawdownService: drawdownService,
	}
}

// CreateDrawdownRequest represents a request to stage a drawdown
type CreateDrawdownRequest struct {
	FacilityID      string    `json:"facility_id" binding:"required,uuid"`
	BorrowerID      string    `json:"borrower_id" binding:"required,uuid"`
	Amount          float64   `json:"amount" binding:"required,gt=0" example:"1000000.00"`
	Currency        string    `json:"currency" binding:"required,len=3" example:"USD"`
	Purpose         string    `json:"purpose" binding:"required,min=1,max=500" example:"Working capital"`
	AnnualRate      float64   `json:"annual_rate" binding:"gte=0,lte=100" example:"4.25"`
	DrawdownDate    time.Time `json:"drawdown_date" binding:"required" example:"2025-06-01T00:00:00Z"`
	RepaymentMonths int       `json:"repayment_months" binding:"required,min=1,max=600" example:"12"`
	RepaymentCycle  string    `json:"repayment_cycle" binding:"required,oneof=MONTHLY QUARTERLY" example:"MONTHLY"`
	RepaymentMethod string    `json:"repayment_method" binding:"required,oneof=EQUAL_INSTALLMENT BULLET" example:"EQUAL_INSTALLMENT"`
}

// UpdateDrawdownRequest represents a request to amend a staged drawdown
type UpdateDrawdownRequest struct {
	Amount          float64   `json:"amount" binding:"required,gt=0"`
	Currency        string    `json:"currency" binding:"required,len=3"`
	Purpose         string    `json:"purpose" binding:"required,min=1,max=500"`
	AnnualRate      float64   `json:"annual_rate" binding:"gte=0,lte=100"`
	DrawdownDate    time.Time `json:"drawdown_date" binding:"required"`
	RepaymentMonths int       `json:"repayment_months" binding:"required,min=1,max=600"`
	RepaymentCycle  string    `json:"repayment_cycle" binding:"required,oneof=MONTHLY QUARTERLY"`
	RepaymentMethod string    `json:"repayment_method" binding:"required,oneof=EQUAL_INSTALLMENT BULLET"`
	ExpectedVersion int       `json:"expected_version" binding:"required,min=1" example:"1"`
}

// AmountPieRequest is one explicit per-investor allocation override
type AmountPieRequest struct {
	InvestorID string  `json:"investor_id" binding:"required,uuid"`
	Amount     float64 `json:"amount" binding:"required,gt=0"`
}

// ExecuteDrawdownRequest represents a request to execute a staged drawdown.
// Allocations are optional; when omitted the facility's share pies drive the
// split.
type ExecuteDrawdownRequest struct {
	Allocations []AmountPieRequest `json:"allocations" binding:"omitempty,dive"`
}

// ListDrawdownsQuery carries the query parameters for drawdown listing
type ListDrawdownsQuery struct {
	FacilityID string `form:"facility_id" binding:"omitempty,uuid"`
	BorrowerID string `form:"borrower_id" binding:"omitempty,uuid"`
	Status     string `form:"status" binding:"omitempty,oneof=PENDING EXECUTED FAILED"`
	FromDate   string `form:"from_date" binding:"omitempty,datetime=2006-01-02"`
	ToDate     string `form:"to_date" binding:"omitempty,datetime=2006-01-02"`
	Page       int    `form:"page" binding:"omitempty,min=1"`
	PageSize   int    `form:"page_size" binding:"omitempty,min=1,max=100"`
}

// Create stages a drawdown request in PENDING against a facility
func (h *DrawdownHandler) Create(c *gin.Context) {
	var req CreateDrawdownRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	facilityID, err := uuid.Parse(req.FacilityID)
	if err != nil {
		h.BadRequest(c, "Invalid facility ID format")
		return
	}
	borrowerID, err := uuid.Parse(req.BorrowerID)
	if err != nil {
		h.BadRequest(c, "Invalid borrower ID format")
		return
	}

	drawdown, err := h.drawdownService.CreateDrawdown(c.Request.Context(), lendingapp.DrawdownRequest{
		FacilityID:      facilityID,
		BorrowerID:      borrowerID,
		Amount:          toDecimal(req.Amount),
		Currency:        req.Currency,
		Purpose:         req.Purpose,
		AnnualRate:      toDecimal(req.AnnualRate),
		DrawdownDate:    req.DrawdownDate,
		RepaymentMonths: req.RepaymentMonths,
		RepaymentCycle:  req.RepaymentCycle,
		RepaymentMethod: req.RepaymentMethod,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, drawdown)
}

// Execute executes a staged drawdown, optionally with explicit per-investor
// allocation overrides. On success the response carries the executed
// drawdown together with the loan it produced.
func (h *DrawdownHandler) Execute(c *gin.Context) {
	drawdownID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid drawdown ID format")
		return
	}

	// the body is optional: executing without one allocates by share pies
	var req ExecuteDrawdownRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			h.BadRequest(c, err.Error())
			return
		}
	}

	overrides := make([]lendingapp.AmountPieInput, 0, len(req.Allocations))
	for _, pie := range req.Allocations {
		investorID, err := uuid.Parse(pie.InvestorID)
		if err != nil {
			h.BadRequest(c, "Invalid investor ID format")
			return
		}
		overrides = append(overrides, lendingapp.AmountPieInput{
			InvestorID: investorID,
			Amount:     toDecimal(pie.Amount),
		})
	}

	result, err := h.drawdownService.ExecuteDrawdown(c.Request.Context(), drawdownID, overrides)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, result)
}

// GetByID retrieves a drawdown by its ID
func (h *DrawdownHandler) GetByID(c *gin.Context) {
	drawdownID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid drawdown ID format")
		return
	}

	drawdown, err := h.drawdownService.GetDrawdown(c.Request.Context(), drawdownID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, drawdown)
}

// List retrieves a paginated list of drawdowns with optional filtering
func (h *DrawdownHandler) List(c *gin.Context) {
	var q ListDrawdownsQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	filter := lending.DrawdownFilter{Filter: pageFilter(q.Page, q.PageSize)}
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
		status := lending.DrawdownStatus(q.Status)
		filter.Status = &status
	}
	if q.FromDate != "" {
		from, _ := time.Parse("2006-01-02", q.FromDate)
		filter.FromDate = &from
	}
	if q.ToDate != "" {
		to, _ := time.Parse("2006-01-02", q.ToDate)
		filter.ToDate = &to
	}

	result, err := h.drawdownService.ListDrawdowns(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.SuccessWithMeta(c, result.Items, result.Total, result.Page, result.PageSize)
}

// Update amends a PENDING or FAILED drawdown
func (h *DrawdownHandler) Update(c *gin.Context) {
	drawdownID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid drawdown ID format")
		return
	}

	var req UpdateDrawdownRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	drawdown, err := h.drawdownService.UpdateDrawdown(c.Request.Context(), drawdownID, lendingapp.UpdateDrawdownRequest{
		Amount:          toDecimal(req.Amount),
		Currency:        req.Currency,
		Purpose:         req.Purpose,
		AnnualRate:      toDecimal(req.AnnualRate),
		DrawdownDate:    req.DrawdownDate,
		RepaymentMonths: req.RepaymentMonths,
		RepaymentCycle:  req.RepaymentCycle,
		RepaymentMethod: req.RepaymentMethod,
		ExpectedVersion: req.ExpectedVersion,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, drawdown)
}

// Delete removes a drawdown, unwinding funding when it was already executed
func (h *DrawdownHandler) Delete(c *gin.Context) {
	drawdownID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid drawdown ID format")
		return
	}

	if err := h.drawdownService.DeleteDrawdown(c.Request.Context(), drawdownID); err != nil {
		h.HandleError(c, err)
		return
	}

	h.NoContent(c)
}
