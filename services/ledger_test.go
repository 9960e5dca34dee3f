package services

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/nicawallet/wallet-api/models"
	"github.com/nicawallet/wallet-api/storage"
)

// countingStore wraps the memory store to observe how often writes reach it.
type countingStore struct {
	storage.Store
	creates int
}

func (s *countingStore) CreateTransaction(ctx context.Context, tx *models.Transaction) error {
	s.creates++
	return s.Store.CreateTransaction(ctx, tx)
}

func newTestLedger(t *testing.T) (*LedgerService, *countingStore) {
	t.Helper()
	store := &countingStore{Store: storage.NewMemoryStore()}
	return NewLedgerService(store), store
}

func addReq(amount, description, txType, category string) models.AddTransactionRequest {
	return models.AddTransactionRequest{
		Amount:      json.RawMessage(amount),
		Description: description,
		Type:        txType,
		Category:    category,
	}
}

func TestAddAndList(t *testing.T) {
	svc, _ := newTestLedger(t)
	ctx := context.Background()

	tx, err := svc.Add(ctx, "alice", addReq(`"2000"`, "Salario", "income", "Otros"))
	if err != nil {
		t.Fatalf("Add: %v", err)
	}
	if tx.ID == "" {
		t.Error("Add did not assign an id")
	}
	if tx.CreatedAt.IsZero() {
		t.Error("Add did not assign a server timestamp")
	}
	if tx.Amount != 200000 {
		t.Errorf("amount = %d, want 200000 minor units", tx.Amount)
	}

	if _, err := svc.Add(ctx, "alice", addReq(`500`, "Mercado", "expense", "Comida")); err != nil {
		t.Fatalf("Add: %v", err)
	}

	txs, err := svc.List(ctx, "alice")
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(txs) != 2 {
		t.Fatalf("List returned %d transactions, want 2", len(txs))
	}
	// Newest first.
	if txs[0].Description != "Mercado" || txs[1].Description != "Salario" {
		t.Errorf("List order wrong: %q then %q", txs[0].Description, txs[1].Description)
	}
}

func TestAddValidationNeverReachesStore(t *testing.T) {
	svc, store := newTestLedger(t)
	ctx := context.Background()

	bad := []models.AddTransactionRequest{
		addReq(``, "desc", "expense", "Comida"),        // missing amount
		addReq(`0`, "desc", "expense", "Comida"),       // zero
		addReq(`-5`, "desc", "expense", "Comida"),      // negative
		addReq(`"nope"`, "desc", "expense", "Comida"),  // unparseable
		addReq(`1.234`, "desc", "expense", "Comida"),   // sub-cent precision
		addReq(`10`, "   ", "expense", "Comida"),       // blank description
		addReq(`10`, "", "expense", "Comida"),          // empty description
		addReq(`10`, "desc", "transfer", "Comida"),     // unknown type
		addReq(`10`, "desc", "", "Comida"),             // missing type
	}

	for i, req := range bad {
		if _, err := svc.Add(ctx, "alice", req); !errors.Is(err, ErrValidation) {
			t.Errorf("case %d: err = %v, want ErrValidation", i, err)
		}
	}

	if store.creates != 0 {
		t.Errorf("store saw %d writes from invalid input, want 0", store.creates)
	}
}

func TestAddUnknownCategoryFallsBack(t *testing.T) {
	svc, _ := newTestLedger(t)

	tx, err := svc.Add(context.Background(), "alice", addReq(`10`, "algo", "expense", "Criptomonedas"))
	if err != nil {
		t.Fatalf("Add: %v", err)
	}
	if tx.Category != DefaultCategory.Name {
		t.Errorf("category = %q, want fallback %q", tx.Category, DefaultCategory.Name)
	}
}

func TestListWithoutSession(t *testing.T) {
	svc, _ := newTestLedger(t)

	txs, err := svc.List(context.Background(), "")
	if err != nil {
		t.Fatalf("List without session must not error, got %v", err)
	}
	if len(txs) != 0 {
		t.Errorf("List without session returned %d transactions, want 0", len(txs))
	}
}

func TestAddWithoutSession(t *testing.T) {
	svc, store := newTestLedger(t)

	if _, err := svc.Add(context.Background(), "", addReq(`10`, "x", "expense", "")); !errors.Is(err, ErrNoSession) {
		t.Errorf("err = %v, want ErrNoSession", err)
	}
	if store.creates != 0 {
		t.Error("sessionless write reached the store")
	}
}

func TestDeleteIsOwnerScoped(t *testing.T) {
	svc, _ := newTestLedger(t)
	ctx := context.Background()

	tx, err := svc.Add(ctx, "alice", addReq(`100`, "privado", "expense", "Hogar"))
	if err != nil {
		t.Fatalf("Add: %v", err)
	}

	// Bob supplies Alice's real transaction id.
	if err := svc.Delete(ctx, "bob", tx.ID); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("cross-user delete: err = %v, want ErrNotFound", err)
	}

	txs, _ := svc.List(ctx, "alice")
	if len(txs) != 1 {
		t.Fatalf("victim's data changed: %d transactions left, want 1", len(txs))
	}

	// The owner can delete it.
	if err := svc.Delete(ctx, "alice", tx.ID); err != nil {
		t.Fatalf("owner delete: %v", err)
	}
	txs, _ = svc.List(ctx, "alice")
	if len(txs) != 0 {
		t.Errorf("%d transactions left after delete, want 0", len(txs))
	}
}

func recvSnapshot(t *testing.T, sub *Subscription) []models.Transaction {
	t.Helper()
	select {
	case snap, ok := <-sub.C:
		if !ok {
			t.Fatal("subscription closed unexpectedly")
		}
		return snap
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for snapshot")
		return nil
	}
}

func TestSubscribeDeliversSnapshots(t *testing.T) {
	svc, _ := newTestLedger(t)
	ctx := context.Background()

	if _, err := svc.Add(ctx, "alice", addReq(`500`, "inicial", "expense", "Comida")); err != nil {
		t.Fatalf("Add: %v", err)
	}

	sub := svc.Subscribe(ctx, "alice")
	defer sub.Cancel()

	initial := recvSnapshot(t, sub)
	if len(initial) != 1 {
		t.Fatalf("initial snapshot has %d transactions, want 1", len(initial))
	}

	if _, err := svc.Add(ctx, "alice", addReq(`2000`, "salario", "income", "Otros")); err != nil {
		t.Fatalf("Add: %v", err)
	}

	next := recvSnapshot(t, sub)
	if len(next) != 2 {
		t.Fatalf("snapshot after write has %d transactions, want 2", len(next))
	}
	// Full replacement snapshot, newest first.
	if next[0].Description != "salario" {
		t.Errorf("snapshot head = %q, want newest entry", next[0].Description)
	}

	summary := Summarize(next)
	if summary.Balance != 150000 {
		t.Errorf("balance over snapshot = %d, want 150000", summary.Balance)
	}
}

func TestSubscribeIsUserScoped(t *testing.T) {
	svc, _ := newTestLedger(t)
	ctx := context.Background()

	aliceSub := svc.Subscribe(ctx, "alice")
	defer aliceSub.Cancel()
	recvSnapshot(t, aliceSub)

	// A write by bob must not reach alice's stream.
	if _, err := svc.Add(ctx, "bob", addReq(`10`, "suyo", "expense", "Ocio")); err != nil {
		t.Fatalf("Add: %v", err)
	}

	select {
	case snap, ok := <-aliceSub.C:
		if ok {
			t.Fatalf("alice received bob's write: %d transactions", len(snap))
		}
		t.Fatal("alice's subscription closed unexpectedly")
	case <-time.After(100 * time.Millisecond):
	}
}

func TestCancelStopsNotifications(t *testing.T) {
	svc, _ := newTestLedger(t)
	ctx := context.Background()

	sub := svc.Subscribe(ctx, "alice")
	recvSnapshot(t, sub)

	sub.Cancel()

	// A write after Cancel returned must not deliver anything.
	if _, err := svc.Add(ctx, "alice", addReq(`10`, "tarde", "expense", "Ocio")); err != nil {
		t.Fatalf("Add: %v", err)
	}

	if snap, ok := <-sub.C; ok {
		t.Fatalf("received snapshot (%d transactions) after Cancel", len(snap))
	}

	// Cancelling twice is fine.
	sub.Cancel()
}

func TestSubscribeDuringLogout(t *testing.T) {
	svc, _ := newTestLedger(t)
	ctx := context.Background()

	// Logout keeps tearing down alice's subscriptions while connections keep
	// opening. Neither side may ever touch a closed channel.
	stop := make(chan struct{})
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for {
			select {
			case <-stop:
				return
			default:
				svc.CancelSubscriptions("alice")
			}
		}
	}()

	for i := 0; i < 5000; i++ {
		svc.Subscribe(ctx, "alice").Cancel()
	}

	close(stop)
	wg.Wait()
}

func TestCancelSubscriptionsClosesAll(t *testing.T) {
	svc, _ := newTestLedger(t)
	ctx := context.Background()

	a := svc.Subscribe(ctx, "alice")
	b := svc.Subscribe(ctx, "alice")
	recvSnapshot(t, a)
	recvSnapshot(t, b)

	svc.CancelSubscriptions("alice")

	for i, sub := range []*Subscription{a, b} {
		select {
		case _, ok := <-sub.C:
			if ok {
				t.Errorf("subscription %d still delivering after logout", i)
			}
		case <-time.After(time.Second):
			t.Errorf("subscription %d not closed after logout", i)
		}
	}
}
