package lending

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/loanbook/backend/internal/domain/lending"
	"github.com/loanbook/backend/internal/domain/shared"
)

// TransactionService exposes read access to the fund-movement ledger.
// Entries are written by the drawdown and payment services; this service
// only queries them.
type TransactionService struct {
	transactionRepo lending.TransactionRepository
}

// NewTransactionService creates a new TransactionService
func NewTransactionService(transactionRepo lending.TransactionRepository) *TransactionService {
	return &TransactionService{transactionRepo: transactionRepo}
}

// GetTransaction returns a ledger entry by ID
func (s *TransactionService) GetTransaction(ctx context.Context, id uuid.UUID) (*lending.Transaction, error) {
	tx, err := s.transactionRepo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to load transaction: %w", err)
	}
	if tx == nil {
		return nil, shared.ErrNotFound
	}
	return tx, nil
}

// ListTransactions returns ledger entries matching the filter with a total count
func (s *TransactionService) ListTransactions(ctx context.Context, filter lending.TransactionFilter) (*shared.Paginated[lending.Transaction], error) {
	transactions, err := s.transactionRepo.FindAll(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list transactions: %w", err)
	}
	total, err := s.transactionRepo.Count(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to count transactions: %w", err)
	}
	result := shared.NewPaginated(transactions, total, filter.Page, filter.Limit())
	return &result, nil
}
