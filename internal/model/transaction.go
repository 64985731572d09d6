package model

import "time"

// TransactionType is the direction of a ledger entry.
type TransactionType string

const (
	TransactionEarn  TransactionType = "earn"
	TransactionSpend TransactionType = "spend"
)

// IsValid checks if the transaction type is one of the known types.
func (t TransactionType) IsValid() bool {
	return t == TransactionEarn || t == TransactionSpend
}

// Transaction is an immutable ledger entry.
type Transaction struct {
	ID     string          `json:"id"`
	Type   TransactionType `json:"type"`
	Amount int64           `json:"amount"`
	Date   time.Time       `json:"date"`
}

// Signed returns the amount with the sign applied to the balance.
func (t Transaction) Signed() int64 {
	if t.Type == TransactionSpend {
		return -t.Amount
	}
	return t.Amount
}
