package lending

import (
	"context"
	"errors"
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

// DrawdownService orchestrates the staging, execution and removal of
// drawdowns. Execution is the multi-aggregate operation at the center of the
// system: it allocates funds across investors, creates the loan with its
// schedule, activates the facility and syndicate, and adjusts the
// participating parties, all in one transaction.
type DrawdownService struct {
	uow            uow.UnitOfWork
	drawdownRepo   lending.DrawdownRepository
	facilityRepo   lending.FacilityRepository
	borrowerRepo   party.BorrowerRepository
	eventPublisher shared.EventPublisher
}

// NewDrawdownService creates a new DrawdownService. The event publisher is
// optional; pass nil to disable domain event publishing.
func NewDrawdownService(
	unitOfWork uow.UnitOfWork,
	drawdownRepo lending.DrawdownRepository,
	facilityRepo lending.FacilityRepository,
	borrowerRepo party.BorrowerRepository,
	eventPublisher shared.EventPublisher,
) *DrawdownService {
	return &DrawdownService{
		uow:            unitOfWork,
		drawdownRepo:   drawdownRepo,
		facilityRepo:   facilityRepo,
		borrowerRepo:   borrowerRepo,
		eventPublisher: eventPublisher,
	}
}

// DrawdownRequest carries the inputs for staging a drawdown
type DrawdownRequest struct {
	FacilityID      uuid.UUID
	BorrowerID      uuid.UUID
	Amount          decimal.Decimal
	Currency        string
	Purpose         string
	AnnualRate      decimal.Decimal
	DrawdownDate    time.Time
	RepaymentMonths int
	RepaymentCycle  string
	RepaymentMethod string
}

// AmountPieInput is one explicit per-investor allocation override
type AmountPieInput struct {
	InvestorID uuid.UUID
	Amount     decimal.Decimal
}

// DrawdownResult bundles the executed drawdown with the loan it produced
type DrawdownResult struct {
	Drawdown *lending.Drawdown
	Loan     *lending.Loan
}

// CreateDrawdown stages a drawdown request in PENDING against an existing
// facility. The request must match the facility currency and fit inside the
// commitment; execution happens separately.
func (s *DrawdownService) CreateDrawdown(ctx context.Context, req DrawdownRequest) (*lending.Drawdown, error) {
	amount, err := valueobject.NewMoney(req.Amount, valueobject.Currency(req.Currency))
	if err != nil {
		return nil, err
	}
	rate, err := valueobject.NewPercentage(req.AnnualRate)
	if err != nil {
		return nil, err
	}

	facility, err := s.facilityRepo.FindByID(ctx, req.FacilityID)
	if err != nil {
		return nil, fmt.Errorf("failed to load facility: %w", err)
	}
	if facility == nil {
		return nil, shared.ErrNotFound
	}
	if err := validateDrawdownAgainstFacility(amount, facility); err != nil {
		return nil, err
	}

	borrower, err := s.borrowerRepo.FindByID(ctx, req.BorrowerID)
	if err != nil {
		return nil, fmt.Errorf("failed to load borrower: %w", err)
	}
	if borrower == nil {
		return nil, shared.NewDomainError(shared.CodeNotFound,
			fmt.Sprintf("borrower %s does not exist", req.BorrowerID))
	}

	drawdown, err := lending.NewDrawdown(req.FacilityID, req.BorrowerID, amount, req.Purpose,
		rate, req.DrawdownDate, req.RepaymentMonths,
		lending.RepaymentCycle(req.RepaymentCycle), lending.RepaymentMethod(req.RepaymentMethod))
	if err != nil {
		return nil, err
	}
	if err := s.drawdownRepo.Save(ctx, drawdown); err != nil {
		return nil, fmt.Errorf("failed to save drawdown: %w", err)
	}
	publishDomainEvents(ctx, s.eventPublisher, drawdown)

	return drawdown, nil
}

// ExecuteDrawdown executes a staged drawdown: allocates the amount across
// the facility's share pies (or validates explicit overrides), creates the
// loan with its amortization schedule, fires the facility, syndicate and
// party transitions, funds the investors, and writes the ledger entries.
// All of it commits in one transaction; a business-rule rejection marks the
// drawdown FAILED in its own transaction and surfaces the original error.
func (s *DrawdownService) ExecuteDrawdown(ctx context.Context, drawdownID uuid.UUID, overrides []AmountPieInput) (*DrawdownResult, error) {
	result := &DrawdownResult{}

	err := s.uow.WithinTx(ctx, func(r uow.Repos) error {
		drawdown, err := r.Drawdowns.FindByID(ctx, drawdownID)
		if err != nil {
			return fmt.Errorf("failed to load drawdown: %w", err)
		}
		if drawdown == nil {
			return shared.ErrNotFound
		}
		result.Drawdown = drawdown

		if drawdown.Status == lending.DrawdownStatusExecuted {
			return shared.NewDomainError(shared.CodeInvalidState, "drawdown has already been executed")
		}

		facility, err := r.Facilities.FindByID(ctx, drawdown.FacilityID)
		if err != nil {
			return fmt.Errorf("failed to load facility: %w", err)
		}
		if facility == nil {
			return shared.ErrNotFound
		}
		if err := validateDrawdownAgainstFacility(drawdown.Amount, facility); err != nil {
			return err
		}

		allocations, err := resolveAllocations(drawdown.Amount, facility.SharePies, overrides)
		if err != nil {
			return err
		}

		loan, err := lending.NewLoan(facility.ID, drawdown.ID, drawdown.BorrowerID,
			drawdown.Amount, drawdown.AnnualRate, drawdown.DrawdownDate,
			drawdown.RepaymentMonths, drawdown.Cycle, drawdown.Method, facility.SharePies)
		if err != nil {
			return err
		}
		if err := r.Loans.Save(ctx, loan); err != nil {
			return fmt.Errorf("failed to save loan: %w", err)
		}
		result.Loan = loan

		expected := facility.Version
		if err := facility.MarkDrawdownExecuted(); err != nil {
			return err
		}
		if err := r.Facilities.SaveWithLock(ctx, facility, expected); err != nil {
			return fmt.Errorf("failed to save facility: %w", err)
		}

		if err := activateSyndicate(ctx, r, facility.SyndicateID); err != nil {
			return err
		}
		if err := restrictBorrower(ctx, r, drawdown.BorrowerID); err != nil {
			return err
		}
		if err := fundInvestors(ctx, r, allocations); err != nil {
			return err
		}

		expected = drawdown.Version
		if err := drawdown.Execute(allocations, loan.ID); err != nil {
			return err
		}
		if err := r.Drawdowns.SaveWithLock(ctx, drawdown, expected); err != nil {
			return fmt.Errorf("failed to save drawdown: %w", err)
		}

		return writeDrawdownLedger(ctx, r, drawdown, allocations)
	})

	if err != nil {
		// record the rejection on the drawdown outside the rolled-back
		// transaction so the borrower can amend and retry
		if isExecutionRejection(err) {
			s.recordFailure(ctx, drawdownID, err)
		}
		return nil, err
	}
	publishDomainEvents(ctx, s.eventPublisher, result.Drawdown, result.Loan)

	return result, nil
}

// UpdateDrawdownRequest carries staged-field edits plus the caller's
// last-seen version
type UpdateDrawdownRequest struct {
	Amount          decimal.Decimal
	Currency        string
	Purpose         string
	AnnualRate      decimal.Decimal
	DrawdownDate    time.Time
	RepaymentMonths int
	RepaymentCycle  string
	RepaymentMethod string
	ExpectedVersion int
}

// UpdateDrawdown amends a PENDING or FAILED drawdown
func (s *DrawdownService) UpdateDrawdown(ctx context.Context, id uuid.UUID, req UpdateDrawdownRequest) (*lending.Drawdown, error) {
	amount, err := valueobject.NewMoney(req.Amount, valueobject.Currency(req.Currency))
	if err != nil {
		return nil, err
	}
	rate, err := valueobject.NewPercentage(req.AnnualRate)
	if err != nil {
		return nil, err
	}

	drawdown, err := s.drawdownRepo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to load drawdown: %w", err)
	}
	if drawdown == nil {
		return nil, shared.ErrNotFound
	}
	if err := drawdown.CheckVersion(req.ExpectedVersion); err != nil {
		return nil, err
	}

	facility, err := s.facilityRepo.FindByID(ctx, drawdown.FacilityID)
	if err != nil {
		return nil, fmt.Errorf("failed to load facility: %w", err)
	}
	if facility == nil {
		return nil, shared.ErrNotFound
	}
	if amount.Currency() != facility.Currency() {
		return nil, shared.NewDomainError(shared.CodeCurrencyMismatch,
			fmt.Sprintf("drawdown currency %s does not match facility currency %s", amount.Currency(), facility.Currency()))
	}

	if err := drawdown.Update(amount, req.Purpose, rate, req.DrawdownDate,
		req.RepaymentMonths, lending.RepaymentCycle(req.RepaymentCycle),
		lending.RepaymentMethod(req.RepaymentMethod)); err != nil {
		return nil, err
	}
	if err := s.drawdownRepo.SaveWithLock(ctx, drawdown, req.ExpectedVersion); err != nil {
		return nil, fmt.Errorf("failed to save drawdown: %w", err)
	}

	return drawdown, nil
}

// DeleteDrawdown removes a drawdown. Staged requests delete freely. An
// executed drawdown is removable only while its loan is still DRAFT: the
// deletion unwinds investor funding, removes the loan and its ledger
// entries, and reverts the facility (and syndicate) to DRAFT when it was
// the facility's last drawdown.
func (s *DrawdownService) DeleteDrawdown(ctx context.Context, id uuid.UUID) error {
	return s.uow.WithinTx(ctx, func(r uow.Repos) error {
		drawdown, err := r.Drawdowns.FindByID(ctx, id)
		if err != nil {
			return fmt.Errorf("failed to load drawdown: %w", err)
		}
		if drawdown == nil {
			return shared.ErrNotFound
		}

		if drawdown.Status != lending.DrawdownStatusExecuted {
			if err := r.Drawdowns.Delete(ctx, id); err != nil {
				return fmt.Errorf("failed to delete drawdown: %w", err)
			}
			return nil
		}

		loan, err := r.Loans.FindByDrawdown(ctx, id)
		if err != nil {
			return fmt.Errorf("failed to load loan: %w", err)
		}
		if loan != nil {
			if loan.Status != lending.LoanStatusDraft {
				return shared.NewBusinessRuleViolation(
					fmt.Sprintf("cannot delete executed drawdown: its loan is %s", loan.Status))
			}
			if err := r.Transactions.DeleteByLoan(ctx, loan.ID); err != nil {
				return fmt.Errorf("failed to delete ledger entries: %w", err)
			}
			if err := r.Loans.Delete(ctx, loan.ID); err != nil {
				return fmt.Errorf("failed to delete loan: %w", err)
			}
		}

		// unwind investor funding
		for _, pie := range drawdown.Allocations {
			investor, err := r.Investors.FindByID(ctx, pie.InvestorID)
			if err != nil {
				return fmt.Errorf("failed to load investor %s: %w", pie.InvestorID, err)
			}
			if investor == nil {
				return shared.ErrNotFound
			}
			expected := investor.Version
			if err := investor.DecreaseInvestment(pie.Amount); err != nil {
				return err
			}
			if err := r.Investors.SaveWithLock(ctx, investor, expected); err != nil {
				return fmt.Errorf("failed to save investor %s: %w", pie.InvestorID, err)
			}
		}

		if err := r.Drawdowns.Delete(ctx, id); err != nil {
			return fmt.Errorf("failed to delete drawdown: %w", err)
		}

		remaining, err := r.Drawdowns.CountByFacility(ctx, drawdown.FacilityID, nil)
		if err != nil {
			return fmt.Errorf("failed to count drawdowns: %w", err)
		}
		if remaining != 0 {
			return nil
		}

		facility, err := r.Facilities.FindByID(ctx, drawdown.FacilityID)
		if err != nil {
			return fmt.Errorf("failed to load facility: %w", err)
		}
		if facility == nil {
			return shared.ErrNotFound
		}
		expected := facility.Version
		if err := facility.RevertToDraft(0); err != nil {
			return err
		}
		if err := r.Facilities.SaveWithLock(ctx, facility, expected); err != nil {
			return fmt.Errorf("failed to save facility: %w", err)
		}

		return revertSyndicate(ctx, r, facility.SyndicateID)
	})
}

// GetDrawdown returns a drawdown by ID
func (s *DrawdownService) GetDrawdown(ctx context.Context, id uuid.UUID) (*lending.Drawdown, error) {
	drawdown, err := s.drawdownRepo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to load drawdown: %w", err)
	}
	if drawdown == nil {
		return nil, shared.ErrNotFound
	}
	return drawdown, nil
}

// ListDrawdowns returns drawdowns matching the filter with a total count
func (s *DrawdownService) ListDrawdowns(ctx context.Context, filter lending.DrawdownFilter) (*shared.Paginated[lending.Drawdown], error) {
	drawdowns, err := s.drawdownRepo.FindAll(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list drawdowns: %w", err)
	}
	var total int64
	if filter.FacilityID != nil {
		total, err = s.drawdownRepo.CountByFacility(ctx, *filter.FacilityID, filter.Status)
	} else {
		total = int64(len(drawdowns))
	}
	if err != nil {
		return nil, fmt.Errorf("failed to count drawdowns: %w", err)
	}
	result := shared.NewPaginated(drawdowns, total, filter.Page, filter.Limit())
	return &result, nil
}

// validateDrawdownAgainstFacility checks currency match and commitment fit
func validateDrawdownAgainstFacility(amount valueobject.Money, facility *lending.Facility) error {
	if amount.Currency() != facility.Currency() {
		return shared.NewDomainError(shared.CodeCurrencyMismatch,
			fmt.Sprintf("drawdown currency %s does not match facility currency %s", amount.Currency(), facility.Currency()))
	}
	exceeds, err := amount.GreaterThan(facility.Commitment)
	if err != nil {
		return shared.NewDomainError(shared.CodeCurrencyMismatch, err.Error())
	}
	if exceeds {
		return shared.NewBusinessRuleViolation(
			fmt.Sprintf("drawdown amount %s exceeds facility commitment %s", amount, facility.Commitment))
	}
	return nil
}

// resolveAllocations computes the per-investor allocations from the share
// pies, or validates explicit overrides against the drawdown amount.
func resolveAllocations(amount valueobject.Money, pies lending.SharePies, overrides []AmountPieInput) (lending.AmountPies, error) {
	if len(overrides) == 0 {
		return lending.AllocateByShares(amount, pies)
	}

	explicit := make(lending.AmountPies, 0, len(overrides))
	for _, in := range overrides {
		m, err := valueobject.NewMoney(in.Amount, amount.Currency())
		if err != nil {
			return nil, err
		}
		explicit = append(explicit, lending.AmountPie{InvestorID: in.InvestorID, Amount: m})
	}
	if err := explicit.ValidateAgainst(amount); err != nil {
		return nil, err
	}
	return explicit, nil
}

// activateSyndicate fires FACILITY_CREATED on a DRAFT syndicate when its
// facility executes a first drawdown
func activateSyndicate(ctx context.Context, r uow.Repos, syndicateID uuid.UUID) error {
	syndicate, err := r.Syndicates.FindByID(ctx, syndicateID)
	if err != nil {
		return fmt.Errorf("failed to load syndicate: %w", err)
	}
	if syndicate == nil {
		return shared.ErrNotFound
	}
	if syndicate.Status != lending.SyndicateStatusDraft {
		return nil
	}
	expected := syndicate.Version
	if err := syndicate.MarkFacilityCreated(); err != nil {
		return err
	}
	if err := r.Syndicates.SaveWithLock(ctx, syndicate, expected); err != nil {
		return fmt.Errorf("failed to save syndicate: %w", err)
	}
	return nil
}

// restrictBorrower fires FACILITY_PARTICIPATION on the borrower if not
// already restricted
func restrictBorrower(ctx context.Context, r uow.Repos, borrowerID uuid.UUID) error {
	borrower, err := r.Borrowers.FindByID(ctx, borrowerID)
	if err != nil {
		return fmt.Errorf("failed to load borrower: %w", err)
	}
	if borrower == nil {
		return shared.ErrNotFound
	}
	if borrower.Status == party.PartyStatusRestricted {
		return nil
	}
	expected := borrower.Version
	if err := borrower.Restrict(); err != nil {
		return err
	}
	if err := r.Borrowers.SaveWithLock(ctx, borrower, expected); err != nil {
		return fmt.Errorf("failed to save borrower: %w", err)
	}
	return nil
}

// fundInvestors restricts each allocated investor and increases their
// running investment amount
func fundInvestors(ctx context.Context, r uow.Repos, allocations lending.AmountPies) error {
	for _, pie := range allocations {
		// a zero allocation funds nothing, so the investor stays untouched
		if !pie.Amount.IsPositive() {
			continue
		}
		investor, err := r.Investors.FindByID(ctx, pie.InvestorID)
		if err != nil {
			return fmt.Errorf("failed to load investor %s: %w", pie.InvestorID, err)
		}
		if investor == nil {
			return shared.ErrNotFound
		}
		expected := investor.Version
		if investor.Status != party.PartyStatusRestricted {
			if err := investor.Restrict(); err != nil {
				return err
			}
		}
		if err := investor.IncreaseInvestment(pie.Amount); err != nil {
			return err
		}
		if err := r.Investors.SaveWithLock(ctx, investor, expected); err != nil {
			return fmt.Errorf("failed to save investor %s: %w", pie.InvestorID, err)
		}
	}
	return nil
}

// writeDrawdownLedger appends the DRAWDOWN entry plus one
// FACILITY_INVESTMENT entry per funding investor
func writeDrawdownLedger(ctx context.Context, r uow.Repos, drawdown *lending.Drawdown, allocations lending.AmountPies) error {
	loanID := drawdown.LoanID
	entry, err := lending.NewTransaction(lending.TransactionTypeDrawdown,
		drawdown.FacilityID, drawdown.BorrowerID, &loanID, drawdown.Amount, drawdown.DrawdownDate)
	if err != nil {
		return err
	}
	if err := r.Transactions.Save(ctx, entry); err != nil {
		return fmt.Errorf("failed to save ledger entry: %w", err)
	}

	for _, pie := range allocations {
		if !pie.Amount.IsPositive() {
			continue
		}
		investment, err := lending.NewTransaction(lending.TransactionTypeFacilityInvestment,
			drawdown.FacilityID, pie.InvestorID, &loanID, pie.Amount, drawdown.DrawdownDate)
		if err != nil {
			return err
		}
		if err := r.Transactions.Save(ctx, investment); err != nil {
			return fmt.Errorf("failed to save ledger entry: %w", err)
		}
	}
	return nil
}

// isExecutionRejection distinguishes guard and allocation rejections, which
// should be recorded on the drawdown, from infrastructure failures, which
// should not.
func isExecutionRejection(err error) bool {
	var de *shared.DomainError
	if !errors.As(err, &de) {
		return false
	}
	return shared.IsBusinessRuleViolation(err) || shared.IsAllocationError(err) || shared.IsValidationError(err)
}

// recordFailure marks the drawdown FAILED in its own transaction, after the
// execution transaction has rolled back
func (s *DrawdownService) recordFailure(ctx context.Context, drawdownID uuid.UUID, cause error) {
	drawdown, err := s.drawdownRepo.FindByID(ctx, drawdownID)
	if err != nil || drawdown == nil {
		return
	}
	expected := drawdown.Version
	if err := drawdown.MarkFailed(cause.Error()); err != nil {
		return
	}
	// best effort: losing this race just leaves the drawdown PENDING
	if err := s.drawdownRepo.SaveWithLock(ctx, drawdown, expected); err == nil {
		publishDomainEvents(ctx, s.eventPublisher, drawdown)
	}
}
