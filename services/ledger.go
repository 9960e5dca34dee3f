package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/nicawallet/wallet-api/models"
	"github.com/nicawallet/wallet-api/storage"
)

var (
	// ErrValidation marks bad transaction input. Wrapped errors carry the
	// field-level detail.
	ErrValidation = errors.New("invalid transaction")

	// ErrNoSession is returned when a write is attempted without an
	// authenticated user.
	ErrNoSession = errors.New("no authenticated session")
)

// LedgerService is the only gateway between a session and transaction
// storage. Every operation derives its scope exclusively from the userID the
// caller authenticated as; no method accepts a user id from request input.
type LedgerService struct {
	store storage.Store
	hub   *snapshotHub
}

func NewLedgerService(store storage.Store) *LedgerService {
	return &LedgerService{store: store, hub: newSnapshotHub()}
}

// List returns the user's current snapshot, newest first. No session means no
// data: an empty userID yields an empty snapshot, not an error.
func (s *LedgerService) List(ctx context.Context, userID string) ([]models.Transaction, error) {
	if userID == "" {
		return []models.Transaction{}, nil
	}
	return s.store.ListTransactions(ctx, userID)
}

// Add validates the input and persists a new transaction. Nothing reaches the
// store unless validation passes. On success every live subscription of the
// user receives the new snapshot.
func (s *LedgerService) Add(ctx context.Context, userID string, req models.AddTransactionRequest) (*models.Transaction, error) {
	if userID == "" {
		return nil, ErrNoSession
	}

	if len(req.Amount) == 0 {
		return nil, fmt.Errorf("%w: amount is required", ErrValidation)
	}
	var amount models.Amount
	if err := json.Unmarshal(req.Amount, &amount); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidation, err)
	}
	if amount <= 0 {
		return nil, fmt.Errorf("%w: amount must be positive", ErrValidation)
	}

	description := strings.TrimSpace(req.Description)
	if description == "" {
		return nil, fmt.Errorf("%w: description must not be empty", ErrValidation)
	}

	txType := models.TransactionType(req.Type)
	if !txType.Valid() {
		return nil, fmt.Errorf("%w: type must be income or expense", ErrValidation)
	}

	tx := &models.Transaction{
		UserID:      userID,
		Amount:      amount,
		Description: description,
		Type:        txType,
		// Denormalized at write time: the category name is stored, the
		// rendering hints stay config.
		Category: ResolveCategory(req.Category).Name,
	}

	if err := s.store.CreateTransaction(ctx, tx); err != nil {
		return nil, err
	}

	s.publishSnapshot(ctx, userID)
	return tx, nil
}

// Delete removes one of the user's own transactions permanently. A foreign or
// unknown id yields storage.ErrNotFound; another user's data is unreachable
// by construction.
func (s *LedgerService) Delete(ctx context.Context, userID, id string) error {
	if userID == "" {
		return ErrNoSession
	}
	if err := s.store.DeleteTransaction(ctx, userID, id); err != nil {
		return err
	}
	s.publishSnapshot(ctx, userID)
	return nil
}

// Summary aggregates the user's current snapshot.
func (s *LedgerService) Summary(ctx context.Context, userID string) (models.Summary, error) {
	txs, err := s.List(ctx, userID)
	if err != nil {
		return models.Summary{}, err
	}
	return Summarize(txs), nil
}

// Subscribe opens a live view over the user's ledger. The current snapshot
// is delivered immediately, then a full replacement snapshot follows every
// mutation by any of the user's sessions. The caller owns the subscription
// and must Cancel it.
func (s *LedgerService) Subscribe(ctx context.Context, userID string) *Subscription {
	sub := s.hub.subscribe(userID)
	if userID == "" {
		// No session, no data: hand back an already-closed stream.
		sub.Cancel()
		return sub
	}

	txs, err := s.store.ListTransactions(ctx, userID)
	if err != nil {
		log.Printf("⚠️ Initial snapshot load failed for subscription: %v", err)
		txs = []models.Transaction{}
	}
	// The hub serializes this against publish and cancel: a fresher concurrent
	// snapshot is kept, and a cancelled subscription is left alone.
	s.hub.sendInitial(sub, txs)
	return sub
}

// CancelSubscriptions tears down all live subscriptions of a user. Called on
// logout: losing the session implicitly closes its streams.
func (s *LedgerService) CancelSubscriptions(userID string) {
	s.hub.cancelAll(userID)
}

func (s *LedgerService) publishSnapshot(ctx context.Context, userID string) {
	txs, err := s.store.ListTransactions(ctx, userID)
	if err != nil {
		// The write itself succeeded; subscribers catch up on the next one.
		log.Printf("⚠️ Snapshot reload failed after write: %v", err)
		return
	}
	s.hub.publish(userID, txs)
}
