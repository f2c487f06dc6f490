package lending

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/loanbook/backend/internal/domain/lending"
	"github.com/loanbook/backend/internal/domain/party"
	"github.com/loanbook/backend/internal/domain/shared"
	"github.com/loanbook/backend/internal/domain/shared/valueobject"
	"github.com/loanbook/backend/internal/domain/uow"
	"github.com/shopspring/decimal"
)

// FacilityService orchestrates facility lifecycle operations
type FacilityService struct {
	uow            uow.UnitOfWork
	facilityRepo   lending.FacilityRepository
	syndicateRepo  lending.SyndicateRepository
	drawdownRepo   lending.DrawdownRepository
	loanRepo       lending.LoanRepository
	eventPublisher shared.EventPublisher
}

// NewFacilityService creates a new FacilityService. The event publisher is
// optional; pass nil to disable domain event publishing.
func NewFacilityService(
	unitOfWork uow.UnitOfWork,
	facilityRepo lending.FacilityRepository,
	syndicateRepo lending.SyndicateRepository,
	drawdownRepo lending.DrawdownRepository,
	loanRepo lending.LoanRepository,
	eventPublisher shared.EventPublisher,
) *FacilityService {
	return &FacilityService{
		uow:            unitOfWork,
		facilityRepo:   facilityRepo,
		syndicateRepo:  syndicateRepo,
		drawdownRepo:   drawdownRepo,
		loanRepo:       loanRepo,
		eventPublisher: eventPublisher,
	}
}

// SharePieInput is one investor's ownership share in a facility request
type SharePieInput struct {
	InvestorID uuid.UUID
	Share      decimal.Decimal
}

// CreateFacilityRequest carries the inputs for facility creation
type CreateFacilityRequest struct {
	SyndicateID uuid.UUID
	Commitment  decimal.Decimal
	Currency    string
	StartDate   time.Time
	EndDate     time.Time
	AnnualRate  decimal.Decimal
	PenaltyRate decimal.Decimal
	SharePies   []SharePieInput
}

// CreateFacility creates a facility in DRAFT under an existing syndicate.
// Every SharePie investor must be a syndicate member, and each becomes
// RESTRICTED on first participation.
func (s *FacilityService) CreateFacility(ctx context.Context, req CreateFacilityRequest) (*lending.Facility, error) {
	commitment, err := valueobject.NewMoney(req.Commitment, valueobject.Currency(req.Currency))
	if err != nil {
		return nil, err
	}
	annualRate, err := valueobject.NewPercentage(req.AnnualRate)
	if err != nil {
		return nil, err
	}
	penaltyRate, err := valueobject.NewPercentage(req.PenaltyRate)
	if err != nil {
		return nil, err
	}
	pies := make(lending.SharePies, 0, len(req.SharePies))
	for _, in := range req.SharePies {
		share, err := valueobject.NewPercentage(in.Share)
		if err != nil {
			return nil, err
		}
		pies = append(pies, lending.SharePie{InvestorID: in.InvestorID, Share: share})
	}

	syndicate, err := s.syndicateRepo.FindByID(ctx, req.SyndicateID)
	if err != nil {
		return nil, fmt.Errorf("failed to load syndicate: %w", err)
	}
	if syndicate == nil {
		return nil, shared.ErrNotFound
	}
	for _, pie := range pies {
		if !syndicate.MemberIDs.Contains(pie.InvestorID) {
			return nil, shared.NewBusinessRuleViolation(
				fmt.Sprintf("investor %s is not a member of syndicate %s", pie.InvestorID, syndicate.Name))
		}
	}

	existing, err := s.facilityRepo.FindBySyndicate(ctx, req.SyndicateID)
	if err != nil {
		return nil, fmt.Errorf("failed to check existing facilities: %w", err)
	}
	if len(existing) > 0 {
		return nil, shared.NewBusinessRuleViolation(
			fmt.Sprintf("syndicate %s already has a facility", syndicate.Name))
	}

	facility, err := lending.NewFacility(req.SyndicateID, commitment, req.StartDate, req.EndDate,
		lending.InterestTerms{AnnualRate: annualRate, PenaltyRate: penaltyRate}, pies)
	if err != nil {
		return nil, err
	}

	err = s.uow.WithinTx(ctx, func(r uow.Repos) error {
		if err := r.Facilities.Save(ctx, facility); err != nil {
			return fmt.Errorf("failed to save facility: %w", err)
		}
		// SharePie investors become RESTRICTED on first participation
		for _, pie := range facility.SharePies {
			investor, err := r.Investors.FindByID(ctx, pie.InvestorID)
			if err != nil {
				return fmt.Errorf("failed to load investor %s: %w", pie.InvestorID, err)
			}
			if investor == nil {
				return shared.ErrNotFound
			}
			if investor.Status == party.PartyStatusRestricted {
				continue
			}
			expected := investor.Version
			if err := investor.Restrict(); err != nil {
				return err
			}
			if err := r.Investors.SaveWithLock(ctx, investor, expected); err != nil {
				return fmt.Errorf("failed to restrict investor %s: %w", pie.InvestorID, err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	publishDomainEvents(ctx, s.eventPublisher, facility)

	return facility, nil
}

// GetFacility returns a facility by ID
func (s *FacilityService) GetFacility(ctx context.Context, id uuid.UUID) (*lending.Facility, error) {
	facility, err := s.facilityRepo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to load facility: %w", err)
	}
	if facility == nil {
		return nil, shared.ErrNotFound
	}
	return facility, nil
}

// ListFacilities returns facilities matching the filter with a total count
func (s *FacilityService) ListFacilities(ctx context.Context, filter lending.FacilityFilter) (*shared.Paginated[lending.Facility], error) {
	facilities, err := s.facilityRepo.FindAll(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list facilities: %w", err)
	}
	total, err := s.facilityRepo.Count(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to count facilities: %w", err)
	}
	result := shared.NewPaginated(facilities, total, filter.Page, filter.Limit())
	return &result, nil
}

// RevertFacilityToDraft reverts an ACTIVE facility with zero remaining
// drawdowns back to DRAFT, and its syndicate with it.
func (s *FacilityService) RevertFacilityToDraft(ctx context.Context, id uuid.UUID) (*lending.Facility, error) {
	var facility *lending.Facility

	err := s.uow.WithinTx(ctx, func(r uow.Repos) error {
		var err error
		facility, err = r.Facilities.FindByID(ctx, id)
		if err != nil {
			return fmt.Errorf("failed to load facility: %w", err)
		}
		if facility == nil {
			return shared.ErrNotFound
		}

		attached, err := r.Drawdowns.CountByFacility(ctx, id, nil)
		if err != nil {
			return fmt.Errorf("failed to count drawdowns: %w", err)
		}

		expected := facility.Version
		if err := facility.RevertToDraft(attached); err != nil {
			return err
		}
		if err := r.Facilities.SaveWithLock(ctx, facility, expected); err != nil {
			return fmt.Errorf("failed to save facility: %w", err)
		}

		return revertSyndicate(ctx, r, facility.SyndicateID)
	})
	if err != nil {
		return nil, err
	}
	publishDomainEvents(ctx, s.eventPublisher, facility)

	return facility, nil
}

// CompleteFacility moves a facility whose loans are all repaid to COMPLETED,
// and its syndicate with it.
func (s *FacilityService) CompleteFacility(ctx context.Context, id uuid.UUID) (*lending.Facility, error) {
	var facility *lending.Facility

	err := s.uow.WithinTx(ctx, func(r uow.Repos) error {
		var err error
		facility, err = r.Facilities.FindByID(ctx, id)
		if err != nil {
			return fmt.Errorf("failed to load facility: %w", err)
		}
		if facility == nil {
			return shared.ErrNotFound
		}
		return completeFacility(ctx, r, facility)
	})
	if err != nil {
		return nil, err
	}
	publishDomainEvents(ctx, s.eventPublisher, facility)

	return facility, nil
}

// completeFacility fires ALL_LOANS_REPAID on the facility and
// FACILITY_COMPLETED on its syndicate. Shared with the payment flow, which
// completes the facility on the final payment of its last loan.
func completeFacility(ctx context.Context, r uow.Repos, facility *lending.Facility) error {
	outstanding, err := r.Loans.CountOutstandingByFacility(ctx, facility.ID)
	if err != nil {
		return fmt.Errorf("failed to count outstanding loans: %w", err)
	}

	expected := facility.Version
	if err := facility.Complete(outstanding); err != nil {
		return err
	}
	if err := r.Facilities.SaveWithLock(ctx, facility, expected); err != nil {
		return fmt.Errorf("failed to save facility: %w", err)
	}

	syndicate, err := r.Syndicates.FindByID(ctx, facility.SyndicateID)
	if err != nil {
		return fmt.Errorf("failed to load syndicate: %w", err)
	}
	if syndicate == nil {
		return shared.ErrNotFound
	}
	expected = syndicate.Version
	if err := syndicate.MarkFacilityCompleted(); err != nil {
		return err
	}
	if err := r.Syndicates.SaveWithLock(ctx, syndicate, expected); err != nil {
		return fmt.Errorf("failed to save syndicate: %w", err)
	}
	return nil
}

// revertSyndicate fires FACILITY_DELETED on an ACTIVE syndicate, returning
// it to DRAFT alongside its facility.
func revertSyndicate(ctx context.Context, r uow.Repos, syndicateID uuid.UUID) error {
	syndicate, err := r.Syndicates.FindByID(ctx, syndicateID)
	if err != nil {
		return fmt.Errorf("failed to load syndicate: %w", err)
	}
	if syndicate == nil {
		return shared.ErrNotFound
	}
	if syndicate.Status != lending.SyndicateStatusActive {
		return nil
	}
	expected := syndicate.Version
	if err := syndicate.MarkFacilityDeleted(); err != nil {
		return err
	}
	if err := r.Syndicates.SaveWithLock(ctx, syndicate, expected); err != nil {
		return fmt.Errorf("failed to save syndicate: %w", err)
	}
	return nil
}
