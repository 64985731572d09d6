// Package model defines domain entities for the application.
package model

import "time"

// User is a loyalty program member and the owner of a points ledger.
type User struct {
	ID           string        `json:"id"`
	Name         string        `json:"name"`
	Email        string        `json:"email"`
	Balance      int64         `json:"balance"`
	Transactions []Transaction `json:"transactions"`
	CreatedAt    time.Time     `json:"created_at"`
}

// NewUser returns a user with zero balance and an empty ledger.
func NewUser(id, name, email string) *User {
	return &User{
		ID:           id,
		Name:         name,
		Email:        email,
		Balance:      0,
		Transactions: []Transaction{},
		CreatedAt:    time.Now().UTC(),
	}
}

// Clone returns a deep copy of the user.
// Transactions are values, so copying the slice is enough.
func (u *User) Clone() *User {
	if u == nil {
		return nil
	}
	c := *u
	c.Transactions = make([]Transaction, len(u.Transactions))
	copy(c.Transactions, u.Transactions)
	return &c
}

// LedgerBalance recomputes the balance from the transaction history.
func (u *User) LedgerBalance() int64 {
	var total int64
	for _, tx := range u.Transactions {
		total += tx.Signed()
	}
	return total
}

// BalanceView is the public projection returned by balance lookups.
type BalanceView struct {
	UserID  string `json:"userId"`
	Name    string `json:"name"`
	Email   string `json:"email"`
	Balance int64  `json:"balance"`
}

// View projects the user onto a BalanceView.
func (u *User) View() *BalanceView {
	return &BalanceView{
		UserID:  u.ID,
		Name:    u.Name,
		Email:   u.Email,
		Balance: u.Balance,
	}
}
