// Package uow defines the unit-of-work boundary for operations that must
// commit changes to several aggregates atomically (drawdown execution,
// payment distribution, drawdown deletion).
package uow

import (
	"context"

	"github.com/loanbook/backend/internal/domain/lending"
	"github.com/loanbook/backend/internal/domain/party"
)

// Repos bundles transaction-bound repositories. Every repository in one
// Repos value runs against the same database transaction.
type Repos struct {
	Facilities   lending.FacilityRepository
	Syndicates   lending.SyndicateRepository
	Drawdowns    lending.DrawdownRepository
	Loans        lending.LoanRepository
	Payments     lending.PaymentRepository
	Transactions lending.TransactionRepository
	Borrowers    party.BorrowerRepository
	Investors    party.InvestorRepository
}

// UnitOfWork runs fn inside a single database transaction. If fn returns an
// error the transaction rolls back and no aggregate is left partially
// written.
type UnitOfWork interface {
	WithinTx(ctx context.Context, fn func(r Repos) error) error
}
