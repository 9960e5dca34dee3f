// Package storage provides persistence for users, sessions and transactions.
package storage

import (
	"context"
	"errors"

	"github.com/nicawallet/wallet-api/models"
)

// ErrNotFound is returned when a row does not exist. Transaction lookups are
// always scoped to an owning user, so a foreign id surfaces as ErrNotFound
// too; callers cannot distinguish "missing" from "not yours".
var ErrNotFound = errors.New("not found")

// ErrDuplicateEmail is returned by CreateUser when the email is taken.
var ErrDuplicateEmail = errors.New("email already registered")

// Store is the persistence contract. Every transaction method takes the
// owning user id and implementations must scope the underlying query with it;
// there is no way to address another user's rows through this interface.
type Store interface {
	// Users
	CreateUser(ctx context.Context, user *models.User) error
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	GetUserByID(ctx context.Context, id string) (*models.User, error)
	UpdateUser(ctx context.Context, user *models.User) error
	DeleteUser(ctx context.Context, id string) error

	// Refresh-token sessions
	CreateSession(ctx context.Context, session *models.Session) error
	GetSessionByToken(ctx context.Context, refreshToken string) (*models.Session, error)
	DeleteUserSessions(ctx context.Context, userID string) error
	PurgeExpiredSessions(ctx context.Context) (int64, error)

	// Transactions. CreateTransaction assigns ID and CreatedAt (server clock,
	// non-decreasing per user). ListTransactions orders by CreatedAt
	// descending. DeleteTransaction removes the row only when it belongs to
	// userID.
	CreateTransaction(ctx context.Context, tx *models.Transaction) error
	ListTransactions(ctx context.Context, userID string) ([]models.Transaction, error)
	DeleteTransaction(ctx context.Context, userID, id string) error

	Close() error
}
