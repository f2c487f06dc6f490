package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	partyapp "github.com/loanbook/backend/internal/application/party"
	"github.com/loanbook/backend/internal/domain/party"
)

// InvestorHandler handles investor-related API endpoints
type InvestorHandler struct {
	BaseHandler
	partyService *partyapp.PartyService
}

// NewInvestorHandler creates a new InvestorHandler
func NewInvestorHandler(partyService *partyapp.PartyService) *InvestorHandler {
	return &InvestorHandler{
		partyService: partyService,
	}
}

// RegisterInvestorRequest represents a request to register an investor
type RegisterInvestorRequest struct {
	Name               string  `json:"name" binding:"required,min=1,max=200" example:"First Meridian Bank"`
	CompanyCode        string  `json:"company_code" binding:"required,min=1,max=50" example:"FMB-001"`
	Type               string  `json:"type" binding:"required,oneof=LEAD_BANK BANK INSTITUTION FUND" example:"LEAD_BANK"`
	InvestmentCapacity float64 `json:"investment_capacity" binding:"required,gt=0" example:"50000000.00"`
	Currency           string  `json:"currency" binding:"required,len=3" example:"USD"`
}

// UpdateInvestorRequest represents a request to update an investor's profile
type UpdateInvestorRequest struct {
	Name               string  `json:"name" binding:"required,min=1,max=200"`
	CompanyCode        string  `json:"company_code" binding:"required,min=1,max=50"`
	Type               string  `json:"type" binding:"required,oneof=LEAD_BANK BANK INSTITUTION FUND"`
	InvestmentCapacity float64 `json:"investment_capacity" binding:"required,gt=0"`
	Currency           string  `json:"currency" binding:"required,len=3"`
	ExpectedVersion    int     `json:"expected_version" binding:"required,min=1" example:"1"`
}

// ListInvestorsQuery carries the query parameters for investor listing
type ListInvestorsQuery struct {
	Status   string `form:"status" binding:"omitempty,oneof=ACTIVE RESTRICTED"`
	Type     string `form:"type" binding:"omitempty,oneof=LEAD_BANK BANK INSTITUTION FUND"`
	Name     string `form:"name" binding:"omitempty,max=200"`
	Page     int    `form:"page" binding:"omitempty,min=1"`
	PageSize int    `form:"page_size" binding:"omitempty,min=1,max=100"`
}

// Register registers a new investor with a unique company code
func (h *InvestorHandler) Register(c *gin.Context) {
	var req RegisterInvestorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	investor, err := h.partyService.RegisterInvestor(c.Request.Context(), partyapp.InvestorRequest{
		Name:               req.Name,
		CompanyCode:        req.CompanyCode,
		Type:               req.Type,
		InvestmentCapacity: toDecimal(req.InvestmentCapacity),
		Currency:           req.Currency,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, investor)
}

// GetByID retrieves an investor by its ID
func (h *InvestorHandler) GetByID(c *gin.Context) {
	investorID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid investor ID format")
		return
	}

	investor, err := h.partyService.GetInvestor(c.Request.Context(), investorID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, investor)
}

// List retrieves a paginated list of investors with optional filtering
func (h *InvestorHandler) List(c *gin.Context) {
	var q ListInvestorsQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	filter := party.InvestorFilter{Filter: pageFilter(q.Page, q.PageSize)}
	if q.Status != "" {
		status := party.PartyStatus(q.Status)
		filter.Status = &status
	}
	if q.Type != "" {
		investorType := party.InvestorType(q.Type)
		filter.Type = &investorType
	}
	if q.Name != "" {
		filter.Name = &q.Name
	}

	result, err := h.partyService.ListInvestors(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.SuccessWithMeta(c, result.Items, result.Total, result.Page, result.PageSize)
}

// Update updates an ACTIVE investor's profile
func (h *InvestorHandler) Update(c *gin.Context) {
	investorID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid investor ID format")
		return
	}

	var req UpdateInvestorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	investor, err := h.partyService.UpdateInvestor(c.Request.Context(), investorID, partyapp.InvestorRequest{
		Name:               req.Name,
		CompanyCode:        req.CompanyCode,
		Type:               req.Type,
		InvestmentCapacity: toDecimal(req.InvestmentCapacity),
		Currency:           req.Currency,
	}, req.ExpectedVersion)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, investor)
}
