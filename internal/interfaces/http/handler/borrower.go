package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	partyapp "github.com/loanbook/backend/internal/application/party"
	"github.com/loanbook/backend/internal/domain/party"
)

// BorrowerHandler handles borrower-related API endpoints
type BorrowerHandler struct {
	BaseHandler
	partyService *partyapp.PartyService
}

// NewBorrowerHandler creates a new BorrowerHandler
func NewBorrowerHandler(partyService *partyapp.PartyService) *BorrowerHandler {
	return &BorrowerHandler{
		partyService: partyService,
	}
}

// RegisterBorrowerRequest represents a request to register a borrower
type RegisterBorrowerRequest struct {
	Name         string  `json:"name" binding:"required,min=1,max=200" example:"Northwind Industries"`
	CompanyCode  string  `json:"company_code" binding:"required,min=1,max=50" example:"NWI-001"`
	CreditRating string  `json:"credit_rating" binding:"required,oneof=AAA AA A BBB BB B CCC" example:"BBB"`
	CreditLimit  float64 `json:"credit_limit" binding:"required,gt=0" example:"10000000.00"`
	Currency     string  `json:"currency" binding:"required,len=3" example:"USD"`
}

// UpdateBorrowerRequest represents a request to update a borrower's profile
type UpdateBorrowerRequest struct {
	Name            string  `json:"name" binding:"required,min=1,max=200"`
	CompanyCode     string  `json:"company_code" binding:"required,min=1,max=50"`
	CreditRating    string  `json:"credit_rating" binding:"required,oneof=AAA AA A BBB BB B CCC"`
	CreditLimit     float64 `json:"credit_limit" binding:"required,gt=0"`
	Currency        string  `json:"currency" binding:"required,len=3"`
	ExpectedVersion int     `json:"expected_version" binding:"required,min=1" example:"1"`
}

// ListBorrowersQuery carries the query parameters for borrower listing
type ListBorrowersQuery struct {
	Status       string `form:"status" binding:"omitempty,oneof=ACTIVE RESTRICTED"`
	CreditRating string `form:"credit_rating" binding:"omitempty,oneof=AAA AA A BBB BB B CCC"`
	Name         string `form:"name" binding:"omitempty,max=200"`
	Page         int    `form:"page" binding:"omitempty,min=1"`
	PageSize     int    `form:"page_size" binding:"omitempty,min=1,max=100"`
}

// Register registers a new borrower with a unique company code
func (h *BorrowerHandler) Register(c *gin.Context) {
	var req RegisterBorrowerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	borrower, err := h.partyService.RegisterBorrower(c.Request.Context(), partyapp.BorrowerRequest{
		Name:         req.Name,
		CompanyCode:  req.CompanyCode,
		CreditRating: req.CreditRating,
		CreditLimit:  toDecimal(req.CreditLimit),
		Currency:     req.Currency,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, borrower)
}

// GetByID retrieves a borrower by its ID
func (h *BorrowerHandler) GetByID(c *gin.Context) {
	borrowerID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid borrower ID format")
		return
	}

	borrower, err := h.partyService.GetBorrower(c.Request.Context(), borrowerID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, borrower)
}

// List retrieves a paginated list of borrowers with optional filtering
func (h *BorrowerHandler) List(c *gin.Context) {
	var q ListBorrowersQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	filter := party.BorrowerFilter{Filter: pageFilter(q.Page, q.PageSize)}
	if q.Status != "" {
		status := party.PartyStatus(q.Status)
		filter.Status = &status
	}
	if q.CreditRating != "" {
		rating := party.CreditRating(q.CreditRating)
		filter.CreditRating = &rating
	}
	if q.Name != "" {
		filter.Name = &q.Name
	}

	result, err := h.partyService.ListBorrowers(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.SuccessWithMeta(c, result.Items, result.Total, result.Page, result.PageSize)
}

// Update updates an ACTIVE borrower's profile
func (h *BorrowerHandler) Update(c *gin.Context) {
	borrowerID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid borrower ID format")
		return
	}

	var req UpdateBorrowerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	borrower, err := h.partyService.UpdateBorrower(c.Request.Context(), borrowerID, partyapp.BorrowerRequest{
		Name:         req.Name,
		CompanyCode:  req.CompanyCode,
		CreditRating: req.CreditRating,
		CreditLimit:  toDecimal(req.CreditLimit),
		Currency:     req.Currency,
	}, req.ExpectedVersion)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, borrower)
}
