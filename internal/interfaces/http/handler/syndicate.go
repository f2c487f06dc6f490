package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	lendingapp "github.com/loanbook/backend/internal/application/lending"
	"github.com/loanbook/backend/internal/domain/lending"
)

// SyndicateHandler handles syndicate-related API endpoints
type SyndicateHandler struct {
	BaseHandler
	syndicateService *lendingapp.SyndicateService
}

// NewSyndicateHandler creates a new SyndicateHandler
func NewSyndicateHandler(syndicateService *lendingapp.SyndicateService) *SyndicateHandler {
	return &SyndicateHandler{
		syndicateService: syndicateService,
	}
}

// CreateSyndicateRequest represents a request to form a new syndicate
type CreateSyndicateRequest struct {
	Name       string   `json:"name" binding:"required,min=1,max=200" example:"Project Atlas Syndicate"`
	LeadBankID string   `json:"lead_bank_id" binding:"required,uuid" example:"a81bc81b-dead-4e5d-abff-90865d1e13b1"`
	BorrowerID string   `json:"borrower_id" binding:"required,uuid" example:"b71cc92c-beef-4f6e-bcff-81754d2e24c2"`
	MemberIDs  []string `json:"member_ids" binding:"required,min=1,dive,uuid"`
}

// UpdateSyndicateRequest represents a request to restructure a draft syndicate
type UpdateSyndicateRequest struct {
	Name            string   `json:"name" binding:"required,min=1,max=200" example:"Project Atlas Syndicate"`
	LeadBankID      string   `json:"lead_bank_id" binding:"required,uuid"`
	BorrowerID      string   `json:"borrower_id" binding:"required,uuid"`
	MemberIDs       []string `json:"member_ids" binding:"required,min=1,dive,uuid"`
	ExpectedVersion int      `json:"expected_version" binding:"required,min=1" example:"1"`
}

// ListSyndicatesQuery carries the query parameters for syndicate listing
type ListSyndicatesQuery struct {
	Status     string `form:"status" binding:"omitempty,oneof=DRAFT ACTIVE COMPLETED"`
	LeadBankID string `form:"lead_bank_id" binding:"omitempty,uuid"`
	BorrowerID string `form:"borrower_id" binding:"omitempty,uuid"`
	Name       string `form:"name" binding:"omitempty,max=200"`
	Page       int    `form:"page" binding:"omitempty,min=1"`
	PageSize   int    `form:"page_size" binding:"omitempty,min=1,max=100"`
}

// Create forms a new syndicate in DRAFT
func (h *SyndicateHandler) Create(c *gin.Context) {
	var req CreateSyndicateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	appReq, err := req.toAppRequest()
	if err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	syndicate, err := h.syndicateService.CreateSyndicate(c.Request.Context(), appReq)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, syndicate)
}

// GetByID retrieves a syndicate by its ID
func (h *SyndicateHandler) GetByID(c *gin.Context) {
	syndicateID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid syndicate ID format")
		return
	}

	syndicate, err := h.syndicateService.GetSyndicate(c.Request.Context(), syndicateID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, syndicate)
}

// List retrieves a paginated list of syndicates with optional filtering
func (h *SyndicateHandler) List(c *gin.Context) {
	var q ListSyndicatesQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	filter := lending.SyndicateFilter{Filter: pageFilter(q.Page, q.PageSize)}
	if q.Status != "" {
		status := lending.SyndicateStatus(q.Status)
		filter.Status = &status
	}
	if q.LeadBankID != "" {
		id, err := uuid.Parse(q.LeadBankID)
		if err != nil {
			h.BadRequest(c, "Invalid lead bank ID format")
			return
		}
		filter.LeadBankID = &id
	}
	if q.BorrowerID != "" {
		id, err := uuid.Parse(q.BorrowerID)
		if err != nil {
			h.BadRequest(c, "Invalid borrower ID format")
			return
		}
		filter.BorrowerID = &id
	}
	if q.Name != "" {
		filter.Name = &q.Name
	}

	result, err := h.syndicateService.ListSyndicates(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.SuccessWithMeta(c, result.Items, result.Total, result.Page, result.PageSize)
}

// Update restructures a DRAFT syndicate
func (h *SyndicateHandler) Update(c *gin.Context) {
	syndicateID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid syndicate ID format")
		return
	}

	var req UpdateSyndicateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	leadBankID, err := uuid.Parse(req.LeadBankID)
	if err != nil {
		h.BadRequest(c, "Invalid lead bank ID format")
		return
	}
	borrowerID, err := uuid.Parse(req.BorrowerID)
	if err != nil {
		h.BadRequest(c, "Invalid borrower ID format")
		return
	}
	memberIDs, err := parseUUIDs(req.MemberIDs)
	if err != nil {
		h.BadRequest(c, "Invalid member ID format")
		return
	}

	syndicate, err := h.syndicateService.UpdateSyndicate(c.Request.Context(), syndicateID, lendingapp.UpdateSyndicateRequest{
		Name:            req.Name,
		LeadBankID:      leadBankID,
		BorrowerID:      borrowerID,
		MemberIDs:       memberIDs,
		ExpectedVersion: req.ExpectedVersion,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, syndicate)
}

func (r CreateSyndicateRequest) toAppRequest() (lendingapp.CreateSyndicateRequest, error) {
	leadBankID, err := uuid.Parse(r.LeadBankID)
	if err != nil {
		return lendingapp.CreateSyndicateRequest{}, err
	}
	borrowerID, err := uuid.Parse(r.BorrowerID)
	if err != nil {
		return lendingapp.CreateSyndicateRequest{}, err
	}
	memberIDs, err := parseUUIDs(r.MemberIDs)
	if err != nil {
		return lendingapp.CreateSyndicateRequest{}, err
	}
	return lendingapp.CreateSyndicateRequest{
		Name:       r.Name,
		LeadBankID: leadBankID,
		BorrowerID: borrowerID,
		MemberIDs:  memberIDs,
	}, nil
}
