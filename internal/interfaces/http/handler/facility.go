package handler

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	lendingapp "github.com/loanbook/backend/internal/application/lending"
	"github.com/loanbook/backend/internal/domain/lending"
)

// FacilityHandler handles facility-related API endpoints
type FacilityHandler struct {
	BaseHandler
	facilityService *lendingapp.FacilityService
}

// NewFacilityHandler creates a new FacilityHandler
func NewFacilityHandler(facilityService *lendingapp.FacilityService) *FacilityHandler {
	return &FacilityHandler{
		facilityService: facilityService,
	}
}

// SharePieRequest is one investor's ownership share in a facility request
type SharePieRequest struct {
	InvestorID string  `json:"investor_id" binding:"required,uuid"`
	Share      float64 `json:"share" binding:"required,gt=0,lte=100" example:"40.5"`
}

// CreateFacilityRequest represents a request to create a new facility
type CreateFacilityRequest struct {
	SyndicateID string            `json:"syndicate_id" binding:"required,uuid"`
	Commitment  float64           `json:"commitment" binding:"required,gt=0" example:"5000000.00"`
	Currency    string            `json:"currency" binding:"required,len=3" example:"USD"`
	StartDate   time.Time         `json:"start_date" binding:"required" example:"2025-01-01T00:00:00Z"`
	EndDate     time.Time         `json:"end_date" binding:"required" example:"2030-01-01T00:00:00Z"`
	AnnualRate  float64           `json:"annual_rate" binding:"gte=0,lte=100" example:"4.25"`
	PenaltyRate float64           `json:"penalty_rate" binding:"gte=0,lte=100" example:"8.5"`
	SharePies   []SharePieRequest `json:"share_pies" binding:"required,min=1,dive"`
}

// ListFacilitiesQuery carries the query parameters for facility listing
type ListFacilitiesQuery struct {
	SyndicateID string `form:"syndicate_id" binding:"omitempty,uuid"`
	Status      string `form:"status" binding:"omitempty,oneof=DRAFT ACTIVE COMPLETED"`
	Currency    string `form:"currency" binding:"omitempty,len=3"`
	Page        int    `form:"page" binding:"omitempty,min=1"`
	PageSize    int    `form:"page_size" binding:"omitempty,min=1,max=100"`
}

// Create creates a facility in DRAFT under an existing syndicate
func (h *FacilityHandler) Create(c *gin.Context) {
	var req CreateFacilityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	syndicateID, err := uuid.Parse(req.SyndicateID)
	if err != nil {
		h.BadRequest(c, "Invalid syndicate ID format")
		return
	}

	pies := make([]lendingapp.SharePieInput, 0, len(req.SharePies))
	for _, pie := range req.SharePies {
		investorID, err := uuid.Parse(pie.InvestorID)
		if err != nil {
			h.BadRequest(c, "Invalid investor ID format")
			return
		}
		pies = append(pies, lendingapp.SharePieInput{
			InvestorID: investorID,
			Share:      toDecimal(pie.Share),
		})
	}

	facility, err := h.facilityService.CreateFacility(c.Request.Context(), lendingapp.CreateFacilityRequest{
		SyndicateID: syndicateID,
		Commitment:  toDecimal(req.Commitment),
		Currency:    req.Currency,
		StartDate:   req.StartDate,
		EndDate:     req.EndDate,
		AnnualRate:  toDecimal(req.AnnualRate),
		PenaltyRate: toDecimal(req.PenaltyRate),
		SharePies:   pies,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, facility)
}

// GetByID retrieves a facility by its ID
func (h *FacilityHandler) GetByID(c *gin.Context) {
	facilityID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid facility ID format")
		return
	}

	facility, err := h.facilityService.GetFacility(c.Request.Context(), facilityID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, facility)
}

// List retrieves a paginated list of facilities with optional filtering
func (h *FacilityHandler) List(c *gin.Context) {
	var q ListFacilitiesQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	filter := lending.FacilityFilter{Filter: pageFilter(q.Page, q.PageSize)}
	if q.SyndicateID != "" {
		id, err := uuid.Parse(q.SyndicateID)
		if err != nil {
			h.BadRequest(c, "Invalid syndicate ID format")
			return
		}
		filter.SyndicateID = &id
	}
	if q.Status != "" {
		status := lending.FacilityStatus(q.Status)
		filter.Status = &status
	}
	if q.Currency != "" {
		filter.Currency = &q.Currency
	}

	result, err := h.facilityService.ListFacilities(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.SuccessWithMeta(c, result.Items, result.Total, result.Page, result.PageSize)
}

// RevertToDraft reverts an ACTIVE facility with no remaining drawdowns back
// to DRAFT
func (h *FacilityHandler) RevertToDraft(c *gin.Context) {
	facilityID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid facility ID format")
		return
	}

	facility, err := h.facilityService.RevertFacilityToDraft(c.Request.Context(), facilityID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, facility)
}

// Complete moves a facility whose loans are all repaid to COMPLETED
func (h *FacilityHandler) Complete(c *gin.Context) {
	facilityID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid facility ID format")
		return
	}

	facility, err := h.facilityService.CompleteFacility(c.Request.Context(), facilityID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, facility)
}
