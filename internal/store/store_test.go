package store

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/pointkeep/pointkeep/internal/model"
)

func TestUserStore_CreateAndGet(t *testing.T) {
	t.Parallel()

	s := New()
	created := s.CreateUser("u-1", "Ann", "ann@x.com")

	if created.ID != "u-1" || created.Balance != 0 || len(created.Transactions) != 0 {
		t.Fatalf("unexpected created user: %+v", created)
	}

	got, ok := s.GetUser("u-1")
	if !ok {
		t.Fatal("expected user to be found")
	}
	if got.Name != "Ann" || got.Email != "ann@x.com" {
		t.Errorf("GetUser() = %+v, want Ann/ann@x.com", got)
	}
}

func TestUserStore_GetUser_Missing(t *testing.T) {
	t.Parallel()

	s := New()
	if _, ok := s.GetUser("nope"); ok {
		t.Error("expected missing user")
	}
}

func TestUserStore_Exists(t *testing.T) {
	t.Parallel()

	s := New()
	s.CreateUser("u-1", "Ann", "ann@x.com")

	if !s.Exists("u-1") {
		t.Error("Exists(u-1) = false, want true")
	}
	if s.Exists("nope") {
		t.Error("Exists(nope) = true, want false")
	}

	s.Reset()
	if s.Exists("u-1") {
		t.Error("Exists(u-1) after Reset = true, want false")
	}
}

func TestUserStore_GetUserByEmail(t *testing.T) {
	t.Parallel()

	s := New()
	s.CreateUser("u-1", "Ann", "ann@x.com")
	s.CreateUser("u-2", "Bob", "bob@x.com")

	got, ok := s.GetUserByEmail("bob@x.com")
	if !ok {
		t.Fatal("expected bob to be found")
	}
	if got.ID != "u-2" {
		t.Errorf("ID = %s, want u-2", got.ID)
	}

	// Comparison is exact.
	if _, ok := s.GetUserByEmail("BOB@x.com"); ok {
		t.Error("email lookup should be case-sensitive")
	}
	if _, ok := s.GetUserByEmail("carol@x.com"); ok {
		t.Error("expected no match for unknown email")
	}
}

func TestUserStore_UpdateUser_VisibleImmediately(t *testing.T) {
	t.Parallel()

	s := New()
	s.CreateUser("u-1", "Ann", "ann@x.com")

	u, _ := s.GetUser("u-1")
	u.Balance = 100
	u.Transactions = append(u.Transactions, model.Transaction{ID: "t1", Type: model.TransactionEarn, Amount: 100})
	s.UpdateUser(u)

	got, _ := s.GetUser("u-1")
	if got.Balance != 100 {
		t.Errorf("Balance = %d, want 100", got.Balance)
	}
	if len(got.Transactions) != 1 {
		t.Errorf("len(Transactions) = %d, want 1", len(got.Transactions))
	}
}

func TestUserStore_ReturnsCopies(t *testing.T) {
	t.Parallel()

	s := New()
	created := s.CreateUser("u-1", "Ann", "ann@x.com")
	created.Balance = 500

	got, _ := s.GetUser("u-1")
	if got.Balance != 0 {
		t.Fatalf("mutating the returned user leaked into the store: balance %d", got.Balance)
	}

	got.Balance = 700
	again, _ := s.GetUser("u-1")
	if again.Balance != 0 {
		t.Errorf("mutating a fetched user leaked into the store: balance %d", again.Balance)
	}
}

func TestUserStore_LenAndReset(t *testing.T) {
	t.Parallel()

	s := New()
	for i := 0; i < 5; i++ {
		s.CreateUser(fmt.Sprintf("u-%d", i), "n", fmt.Sprintf("%d@x.com", i))
	}
	if s.Len() != 5 {
		t.Errorf("Len() = %d, want 5", s.Len())
	}

	s.Reset()
	if s.Len() != 0 {
		t.Errorf("Len() after Reset = %d, want 0", s.Len())
	}
}

func TestUserStore_Ping(t *testing.T) {
	t.Parallel()

	s := New()
	if err := s.Ping(context.Background()); err != nil {
		t.Errorf("Ping() = %v, want nil", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := s.Ping(ctx); err == nil {
		t.Error("Ping() with canceled context should fail")
	}
}

func TestUserStore_ConcurrentDistinctUsers(t *testing.T) {
	t.Parallel()

	s := New()
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			id := fmt.Sprintf("u-%d", i)
			s.CreateUser(id, "n", id+"@x.com")
			u, ok := s.GetUser(id)
			if !ok {
				t.Errorf("user %s not found after create", id)
				return
			}
			u.Balance = int64(i)
			s.UpdateUser(u)
		}(i)
	}
	wg.Wait()

	if s.Len() != 50 {
		t.Fatalf("Len() = %d, want 50", s.Len())
	}
	for i := 0; i < 50; i++ {
		u, _ := s.GetUser(fmt.Sprintf("u-%d", i))
		if u.Balance != int64(i) {
			t.Errorf("u-%d balance = %d, want %d", i, u.Balance, i)
		}
	}
}
