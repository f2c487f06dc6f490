package lending

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/loanbook/backend/internal/domain/shared"
	"github.com/loanbook/backend/internal/domain/shared/valueobject"
)

// TransactionType tags the business meaning of a ledger entry
type TransactionType string

const (
	TransactionTypeDrawdown           TransactionType = "DRAWDOWN"
	TransactionTypePayment            TransactionType = "PAYMENT"
	TransactionTypeFacilityInvestment TransactionType = "FACILITY_INVESTMENT"
	TransactionTypeFeePayment         TransactionType = "FEE_PAYMENT"
	TransactionTypeTrade              TransactionType = "TRADE"
	TransactionTypeSettlement         TransactionType = "SETTLEMENT"
)

// IsValid checks if the transaction type is valid
func (t TransactionType) IsValid() bool {
	switch t {
	case TransactionTypeDrawdown, TransactionTypePayment, TransactionTypeFacilityInvestment,
		TransactionTypeFeePayment, TransactionTypeTrade, TransactionTypeSettlement:
		return true
	}
	return false
}

// TransactionStatus is the settlement status of a ledger entry
type TransactionStatus string

const (
	TransactionStatusCompleted TransactionStatus = "COMPLETED"
	TransactionStatusFailed    TransactionStatus = "FAILED"
)

// Transaction is one entry in the facility-scoped ledger. Every drawdown
// execution and payment settlement appends one; the ledger is the audit
// trail for money movement and is never rewritten.
type Transaction struct {
	shared.BaseAggregateRoot
	Type       TransactionType   `json:"type"`
	FacilityID uuid.UUID         `json:"facility_id"`
	LoanID     *uuid.UUID        `json:"loan_id,omitempty"`
	PartyID    uuid.UUID         `json:"party_id"`
	Amount     valueobject.Money `json:"amount"`
	Status     TransactionStatus `json:"status"`
	OccurredAt time.Time         `json:"occurred_at"`
}

// NewTransaction appends a completed ledger entry
func NewTransaction(txType TransactionType, facilityID, partyID uuid.UUID,
	loanID *uuid.UUID, amount valueobject.Money, occurredAt time.Time) (*Transaction, error) {

	if !txType.IsValid() {
		return nil, shared.NewValidationError(fmt.Sprintf("invalid transaction type: %s", txType))
	}
	if facilityID == uuid.Nil {
		return nil, shared.NewValidationError("facility ID is required")
	}
	if partyID == uuid.Nil {
		return nil, shared.NewValidationError("party ID is required")
	}
	if !amount.IsPositive() {
		return nil, shared.NewValidationError("transaction amount must be positive")
	}
	if occurredAt.IsZero() {
		occurredAt = time.Now()
	}

	return &Transaction{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Type:              txType,
		FacilityID:        facilityID,
		LoanID:            loanID,
		PartyID:           partyID,
		Amount:            amount,
		Status:            TransactionStatusCompleted,
		OccurredAt:        occurredAt,
	}, nil
}
