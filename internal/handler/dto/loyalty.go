// Package dto provides Data Transfer Objects for API requests and responses.
package dto

import (
	"encoding/json"
	"time"

	"github.com/pointkeep/pointkeep/internal/middleware"
	"github.com/pointkeep/pointkeep/internal/model"
)

// RegisterRequest represents the request body for registering a user.
type RegisterRequest struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

// TransactionRequest represents the request body for recording a
// transaction. Amount stays raw so a quoted or missing value can be told
// apart from a bad number.
type TransactionRequest struct {
	UserID string          `json:"userId"`
	Type   string          `json:"type"`
	Amount json.RawMessage `json:"amount"`
}

// UserResponse represents a user in API responses.
type UserResponse struct {
	ID           string                `json:"id"`
	Name         string                `json:"name"`
	Email        string                `json:"email"`
	Balance      int64                 `json:"balance"`
	Transactions []TransactionResponse `json:"transactions"`
	CreatedAt    time.Time             `json:"createdAt"`
}

// BalanceResponse represents a balance lookup.
type BalanceResponse struct {
	UserID  string `json:"userId"`
	Name    string `json:"name"`
	Email   string `json:"email"`
	Balance int64  `json:"balance"`
}

// TransactionResponse represents a ledger entry in API responses.
type TransactionResponse struct {
	ID     string    `json:"id"`
	Type   string    `json:"type"`
	Amount int64     `json:"amount"`
	Date   time.Time `json:"date"`
}

// ErrorResponse represents an error in API responses.
type ErrorResponse struct {
	Error  string                  `json:"error"`
	Code   string                  `json:"code"`
	Errors []middleware.FieldError `json:"errors,omitempty"`
}

// ToUserResponse converts a model.User to UserResponse.
func ToUserResponse(u *model.User) UserResponse {
	return UserResponse{
		ID:           u.ID,
		Name:         u.Name,
		Email:        u.Email,
		Balance:      u.Balance,
		Transactions: ToTransactionResponses(u.Transactions),
		CreatedAt:    u.CreatedAt,
	}
}

// ToBalanceResponse converts a model.BalanceView to BalanceResponse.
func ToBalanceResponse(v *model.BalanceView) BalanceResponse {
	return BalanceResponse{
		UserID:  v.UserID,
		Name:    v.Name,
		Email:   v.Email,
		Balance: v.Balance,
	}
}

// ToTransactionResponse converts a model.Transaction to TransactionResponse.
func ToTransactionResponse(tx model.Transaction) TransactionResponse {
	return TransactionResponse{
		ID:     tx.ID,
		Type:   string(tx.Type),
		Amount: tx.Amount,
		Date:   tx.Date,
	}
}

// ToTransactionResponses converts a ledger. The result is never nil so an
// empty history encodes as [].
func ToTransactionResponses(txs []model.Transaction) []TransactionResponse {
	out := make([]TransactionResponse, len(txs))
	for i, tx := range txs {
		out[i] = ToTransactionResponse(tx)
	}
	return out
}
