package lending

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/loanbook/backend/internal/domain/lending"
	"github.com/loanbook/backend/internal/domain/party"
	"github.com/loanbook/backend/internal/domain/shared"
)

// SyndicateService orchestrates syndicate formation and structural edits
type SyndicateService struct {
	syndicateRepo  lending.SyndicateRepository
	borrowerRepo   party.BorrowerRepository
	investorRepo   party.InvestorRepository
	eventPublisher shared.EventPublisher
}

// NewSyndicateService creates a new SyndicateService. The event publisher
// is optional; pass nil to disable domain event publishing.
func NewSyndicateService(
	syndicateRepo lending.SyndicateRepository,
	borrowerRepo party.BorrowerRepository,
	investorRepo party.InvestorRepository,
	eventPublisher shared.EventPublisher,
) *SyndicateService {
	return &SyndicateService{
		syndicateRepo:  syndicateRepo,
		borrowerRepo:   borrowerRepo,
		investorRepo:   investorRepo,
		eventPublisher: eventPublisher,
	}
}

// CreateSyndicateRequest carries the inputs for syndicate formation
type CreateSyndicateRequest struct {
	Name       string
	LeadBankID uuid.UUID
	BorrowerID uuid.UUID
	MemberIDs  []uuid.UUID
}

// CreateSyndicate forms a syndicate in DRAFT. The name must be unique and
// the lead bank must be an investor qualified to lead.
func (s *SyndicateService) CreateSyndicate(ctx context.Context, req CreateSyndicateRequest) (*lending.Syndicate, error) {
	if err := s.validateComposition(ctx, req.Name, req.LeadBankID, req.BorrowerID, req.MemberIDs); err != nil {
		return nil, err
	}

	existing, err := s.syndicateRepo.FindByName(ctx, req.Name)
	if err != nil {
		return nil, fmt.Errorf("failed to check syndicate name: %w", err)
	}
	if existing != nil {
		return nil, shared.NewDomainError(shared.CodeAlreadyExists,
			fmt.Sprintf("syndicate name %q is already taken", req.Name))
	}

	syndicate, err := lending.NewSyndicate(req.Name, req.LeadBankID, req.BorrowerID, req.MemberIDs)
	if err != nil {
		return nil, err
	}
	if err := s.syndicateRepo.Save(ctx, syndicate); err != nil {
		return nil, fmt.Errorf("failed to save syndicate: %w", err)
	}
	publishDomainEvents(ctx, s.eventPublisher, syndicate)

	return syndicate, nil
}

// UpdateSyndicateRequest carries structural edits plus the caller's
// last-seen version
type UpdateSyndicateRequest struct {
	Name            string
	LeadBankID      uuid.UUID
	BorrowerID      uuid.UUID
	MemberIDs       []uuid.UUID
	ExpectedVersion int
}

// UpdateSyndicate replaces the structural fields of a DRAFT syndicate
func (s *SyndicateService) UpdateSyndicate(ctx context.Context, id uuid.UUID, req UpdateSyndicateRequest) (*lending.Syndicate, error) {
	syndicate, err := s.syndicateRepo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to load syndicate: %w", err)
	}
	if syndicate == nil {
		return nil, shared.ErrNotFound
	}
	if err := syndicate.CheckVersion(req.ExpectedVersion); err != nil {
		return nil, err
	}

	if err := s.validateComposition(ctx, req.Name, req.LeadBankID, req.BorrowerID, req.MemberIDs); err != nil {
		return nil, err
	}
	if req.Name != syndicate.Name {
		existing, err := s.syndicateRepo.FindByName(ctx, req.Name)
		if err != nil {
			return nil, fmt.Errorf("failed to check syndicate name: %w", err)
		}
		if existing != nil {
			return nil, shared.NewDomainError(shared.CodeAlreadyExists,
				fmt.Sprintf("syndicate name %q is already taken", req.Name))
		}
	}

	if err := syndicate.UpdateDetails(req.Name, req.LeadBankID, req.BorrowerID, req.MemberIDs); err != nil {
		return nil, err
	}
	if err := s.syndicateRepo.SaveWithLock(ctx, syndicate, req.ExpectedVersion); err != nil {
		return nil, fmt.Errorf("failed to save syndicate: %w", err)
	}

	return syndicate, nil
}

// GetSyndicate returns a syndicate by ID
func (s *SyndicateService) GetSyndicate(ctx context.Context, id uuid.UUID) (*lending.Syndicate, error) {
	syndicate, err := s.syndicateRepo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to load syndicate: %w", err)
	}
	if syndicate == nil {
		return nil, shared.ErrNotFound
	}
	return syndicate, nil
}

// ListSyndicates returns syndicates matching the filter with a total count
func (s *SyndicateService) ListSyndicates(ctx context.Context, filter lending.SyndicateFilter) (*shared.Paginated[lending.Syndicate], error) {
	syndicates, err := s.syndicateRepo.FindAll(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list syndicates: %w", err)
	}
	total, err := s.syndicateRepo.Count(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to count syndicates: %w", err)
	}
	result := shared.NewPaginated(syndicates, total, filter.Page, filter.Limit())
	return &result, nil
}

// validateComposition checks that the borrower exists, all members exist,
// and the lead bank is a qualified lead-bank investor.
func (s *SyndicateService) validateComposition(ctx context.Context, name string, leadBankID, borrowerID uuid.UUID, memberIDs []uuid.UUID) error {
	if name == "" {
		return shared.NewValidationError("syndicate name cannot be empty")
	}

	borrower, err := s.borrowerRepo.FindByID(ctx, borrowerID)
	if err != nil {
		return fmt.Errorf("failed to load borrower: %w", err)
	}
	if borrower == nil {
		return shared.NewDomainError(shared.CodeNotFound,
			fmt.Sprintf("borrower %s does not exist", borrowerID))
	}

	leadBank, err := s.investorRepo.FindByID(ctx, leadBankID)
	if err != nil {
		return fmt.Errorf("failed to load lead bank: %w", err)
	}
	if leadBank == nil {
		return shared.NewDomainError(shared.CodeNotFound,
			fmt.Sprintf("lead bank %s does not exist", leadBankID))
	}
	if !leadBank.IsQualifiedLeadBank() {
		return shared.NewDomainError(shared.CodeUnqualifiedParty,
			fmt.Sprintf("investor %s is not qualified to lead a syndicate", leadBank.Name))
	}

	for _, memberID := range memberIDs {
		if memberID == leadBankID {
			continue
		}
		member, err := s.investorRepo.FindByID(ctx, memberID)
		if err != nil {
			return fmt.Errorf("failed to load syndicate member: %w", err)
		}
		if member == nil {
			return shared.NewDomainError(shared.CodeNotFound,
				fmt.Sprintf("syndicate member %s does not exist", memberID))
		}
	}

	return nil
}
