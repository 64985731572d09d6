// Package service provides business logic for the application.
package service

import (
	"context"
	"errors"
	"log/slog"
	"math"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/oklog/ulid/v2"
	"github.com/puzpuzpuz/xsync/v3"

	"github.com/pointkeep/pointkeep/internal/cache"
	"github.com/pointkeep/pointkeep/internal/metrics"
	"github.com/pointkeep/pointkeep/internal/model"
)

// Service errors.
var (
	ErrDuplicateEmail      = errors.New("email is already registered")
	ErrUserNotFound        = errors.New("user not found")
	ErrInsufficientBalance = errors.New("insufficient balance")
	ErrInvalidTransaction  = errors.New("invalid transaction")
	ErrBalanceOverflow     = errors.New("balance would exceed the maximum")
)

// UserStore is the authoritative user storage the ledger runs against.
type UserStore interface {
	CreateUser(id, name, email string) *model.User
	GetUser(id string) (*model.User, bool)
	Exists(id string) bool
	GetUserByEmail(email string) (*model.User, bool)
	UpdateUser(user *model.User)
}

// LedgerService registers users and records points transactions.
//
// Reads go through the user cache and fall back to the store. Writes go to
// the store and then refresh the cache entry for the affected user.
// Registration runs under a service-wide lock. Transactions and cache
// repopulation after a miss run under a per-user lock, so neither the
// balance check nor the cache entry can be raced by a concurrent writer.
type LedgerService struct {
	store   UserStore
	cache   *cache.TTL[*model.User]
	metrics metrics.Recorder
	logger  *slog.Logger

	registerMu sync.Mutex
	userLocks  *xsync.MapOf[string, *sync.Mutex]

	newUserID func() string
	newTxID   func() string
	now       func() time.Time
}

// NewLedgerService creates a new LedgerService.
func NewLedgerService(store UserStore, userCache *cache.TTL[*model.User], recorder metrics.Recorder, logger *slog.Logger) *LedgerService {
	if recorder == nil {
		recorder = metrics.NewNoop()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &LedgerService{
		store:     store,
		cache:     userCache,
		metrics:   recorder,
		logger:    logger,
		userLocks: xsync.NewMapOf[string, *sync.Mutex](),
		newUserID: func() string { return uuid.New().String() },
		newTxID:   func() string { return ulid.Make().String() },
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// Register creates a user with a zero balance.
// Returns ErrDuplicateEmail if the email is taken.
func (s *LedgerService) Register(ctx context.Context, name, email string) (*model.User, error) {
	s.registerMu.Lock()
	defer s.registerMu.Unlock()

	if _, exists := s.store.GetUserByEmail(email); exists {
		s.metrics.IncDuplicateEmail()
		s.logger.WarnContext(ctx, "registration_duplicate_email", slog.String("email", email))
		return nil, ErrDuplicateEmail
	}

	user := s.store.CreateUser(s.newUserID(), name, email)
	s.cache.Set(user.ID, user.Clone())

	s.metrics.IncUserRegistered()
	s.logger.InfoContext(ctx, "user_registered",
		slog.String("user_id", user.ID),
		slog.String("email", user.Email),
	)

	return user, nil
}

// GetBalance returns the balance view for a user.
func (s *LedgerService) GetBalance(ctx context.Context, userID string) (*model.BalanceView, error) {
	user, err := s.lookup(ctx, userID)
	if err != nil {
		return nil, err
	}
	return user.View(), nil
}

// GetTransactions returns a user's transactions in creation order.
func (s *LedgerService) GetTransactions(ctx context.Context, userID string) ([]model.Transaction, error) {
	user, err := s.lookup(ctx, userID)
	if err != nil {
		return nil, err
	}
	txs := make([]model.Transaction, len(user.Transactions))
	copy(txs, user.Transactions)
	return txs, nil
}

// lookup is the read-through path: cache first, then the store.
// A miss repopulates under the user's lock so that an older snapshot can
// never replace one written by RecordTransaction.
// The returned user is a shared cache snapshot and must not be mutated.
func (s *LedgerService) lookup(ctx context.Context, userID string) (*model.User, error) {
	if user, ok := s.cache.Get(userID); ok {
		s.metrics.IncCacheHit()
		s.logger.DebugContext(ctx, "user_lookup", slog.String("user_id", userID), slog.String("source", "cache"))
		return user, nil
	}
	s.metrics.IncCacheMiss()

	if !s.store.Exists(userID) {
		s.logger.InfoContext(ctx, "user_not_found", slog.String("user_id", userID))
		return nil, ErrUserNotFound
	}

	unlock := s.lockUser(userID)
	defer unlock()

	// A writer may have refreshed the entry while we waited.
	if user, ok := s.cache.Get(userID); ok {
		return user, nil
	}

	user, ok := s.store.GetUser(userID)
	if !ok {
		return nil, ErrUserNotFound
	}

	s.cache.Set(userID, user)
	s.logger.DebugContext(ctx, "user_lookup", slog.String("user_id", userID), slog.String("source", "store"))

	return user, nil
}

// RecordTransaction appends an earn or spend transaction to a user's
// ledger. The user is read from the store, never the cache, so the balance
// check always sees the committed value. A rejected transaction leaves the
// user untouched.
func (s *LedgerService) RecordTransaction(ctx context.Context, userID string, txType model.TransactionType, amount int64) (*model.Transaction, error) {
	if !txType.IsValid() || amount <= 0 {
		s.metrics.IncTransactionRejected(metrics.ReasonInvalid)
		return nil, ErrInvalidTransaction
	}

	// Users are never deleted, so an unknown ID can be rejected before a
	// lock is allocated for it.
	if !s.store.Exists(userID) {
		s.metrics.IncTransactionRejected(metrics.ReasonUserNotFound)
		s.logger.InfoContext(ctx, "user_not_found", slog.String("user_id", userID))
		return nil, ErrUserNotFound
	}

	unlock := s.lockUser(userID)
	defer unlock()

	user, ok := s.store.GetUser(userID)
	if !ok {
		return nil, ErrUserNotFound
	}

	if txType == model.TransactionSpend && user.Balance < amount {
		s.metrics.IncTransactionRejected(metrics.ReasonInsufficientBalance)
		s.logger.WarnContext(ctx, "transaction_rejected",
			slog.String("user_id", userID),
			slog.String("reason", metrics.ReasonInsufficientBalance),
			slog.Int64("amount", amount),
			slog.Int64("balance", user.Balance),
		)
		return nil, ErrInsufficientBalance
	}

	if txType == model.TransactionEarn && amount > math.MaxInt64-user.Balance {
		s.metrics.IncTransactionRejected(metrics.ReasonBalanceOverflow)
		s.logger.WarnContext(ctx, "transaction_rejected",
			slog.String("user_id", userID),
			slog.String("reason", metrics.ReasonBalanceOverflow),
			slog.Int64("amount", amount),
			slog.Int64("balance", user.Balance),
		)
		return nil, ErrBalanceOverflow
	}

	tx := model.Transaction{
		ID:     s.newTxID(),
		Type:   txType,
		Amount: amount,
		Date:   s.now(),
	}

	user.Balance += tx.Signed()
	user.Transactions = append(user.Transactions, tx)

	s.store.UpdateUser(user)
	s.cache.Set(userID, user)

	s.metrics.IncTransactionCommitted(string(txType))
	s.logger.InfoContext(ctx, "transaction_recorded",
		slog.String("user_id", userID),
		slog.String("transaction_id", tx.ID),
		slog.String("type", string(tx.Type)),
		slog.Int64("amount", tx.Amount),
		slog.Int64("balance", user.Balance),
	)

	return &tx, nil
}

// lockUser acquires the mutex guarding userID's read-modify-write.
func (s *LedgerService) lockUser(userID string) func() {
	mu, _ := s.userLocks.LoadOrCompute(userID, func() *sync.Mutex {
		return &sync.Mutex{}
	})
	mu.Lock()
	return mu.Unlock
}
