package storage

import (
	"context"
	"database/sql"
	"errors"
	"net"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/nicawallet/wallet-api/models"
	"github.com/nicawallet/wallet-api/utils"
)

// PostgresStore persists everything in Postgres. Writes are single-statement
// (atomic per row) except account deletion, which runs in a transaction.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

const (
	retryAttempts = 3
	retryBaseWait = 100 * time.Millisecond
)

// withRetry re-runs fn on transient connectivity failures with exponential
// backoff. Anything else surfaces immediately.
func withRetry(ctx context.Context, fn func() error) error {
	var err error
	for attempt := 0; attempt < retryAttempts; attempt++ {
		if attempt > 0 {
			select {
			case <-time.After(retryBaseWait << (attempt - 1)):
			case <-ctx.Done():
				return ctx.Err()
			}
		}
		err = fn()
		if err == nil || !isTransient(err) {
			return err
		}
	}
	return err
}

func isTransient(err error) bool {
	var netErr net.Error
	if errors.As(err, &netErr) {
		return true
	}
	if errors.Is(err, sql.ErrConnDone) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		// Class 08: connection exceptions, class 57: operator intervention
		// (e.g. failover shutdown).
		return pqErr.Code.Class() == "08" || pqErr.Code.Class() == "57"
	}
	return false
}

// --- Users ---

func (s *PostgresStore) CreateUser(ctx context.Context, user *models.User) error {
	return withRetry(ctx, func() error {
		err := s.db.QueryRowContext(ctx, `
			INSERT INTO users (email, password_hash, name)
			VALUES ($1, $2, $3)
			RETURNING id, created_at, updated_at
		`, user.Email, user.PasswordHash, user.Name).Scan(&user.ID, &user.CreatedAt, &user.UpdatedAt)

		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" {
			return ErrDuplicateEmail
		}
		return err
	})
}

func (s *PostgresStore) scanUser(row *sql.Row) (*models.User, error) {
	var user models.User
	var totpSecret sql.NullString
	err := row.Scan(&user.ID, &user.Email, &user.PasswordHash, &user.Name,
		&totpSecret, &user.TOTPEnabled, &user.CreatedAt, &user.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	user.TOTPSecret = totpSecret.String
	return &user, nil
}

const userColumns = `id, email, password_hash, name, totp_secret, totp_enabled, created_at, updated_at`

func (s *PostgresStore) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	var user *models.User
	err := withRetry(ctx, func() error {
		var err error
		user, err = s.scanUser(s.db.QueryRowContext(ctx,
			`SELECT `+userColumns+` FROM users WHERE email = $1`, email))
		return err
	})
	return user, err
}

func (s *PostgresStore) GetUserByID(ctx context.Context, id string) (*models.User, error) {
	var user *models.User
	err := withRetry(ctx, func() error {
		var err error
		user, err = s.scanUser(s.db.QueryRowContext(ctx,
			`SELECT `+userColumns+` FROM users WHERE id = $1`, id))
		return err
	})
	return user, err
}

func (s *PostgresStore) UpdateUser(ctx context.Context, user *models.User) error {
	return withRetry(ctx, func() error {
		result, err := s.db.ExecContext(ctx, `
			UPDATE users
			SET name = $1, password_hash = $2, totp_secret = $3, totp_enabled = $4, updated_at = NOW()
			WHERE id = $5
		`, user.Name, user.PasswordHash, user.TOTPSecret, user.TOTPEnabled, user.ID)
		if err != nil {
			return err
		}
		rows, _ := result.RowsAffected()
		if rows == 0 {
			return ErrNotFound
		}
		return nil
	})
}

// DeleteUser removes the account and everything it owns atomically. A failed
// transaction is rolled back, so retrying the whole thing is safe.
func (s *PostgresStore) DeleteUser(ctx context.Context, id string) error {
	return withRetry(ctx, func() error {
		return s.deleteUserTx(ctx, id)
	})
}

func (s *PostgresStore) deleteUserTx(ctx context.Context, id string) error {
	return utils.WithTransaction(s.db, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM sessions WHERE user_id = $1`, id); err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM transactions WHERE user_id = $1`, id); err != nil {
			return err
		}
		result, err := tx.ExecContext(ctx, `DELETE FROM users WHERE id = $1`, id)
		if err != nil {
			return err
		}
		rows, _ := result.RowsAffected()
		if rows == 0 {
			return ErrNotFound
		}
		return nil
	})
}

// --- Sessions ---

func (s *PostgresStore) CreateSession(ctx context.Context, session *models.Session) error {
	return withRetry(ctx, func() error {
		return s.db.QueryRowContext(ctx, `
			INSERT INTO sessions (user_id, refresh_token, expires_at)
			VALUES ($1, $2, $3)
			RETURNING id, created_at
		`, session.UserID, session.RefreshToken, session.ExpiresAt).Scan(&session.ID, &session.CreatedAt)
	})
}

func (s *PostgresStore) GetSessionByToken(ctx context.Context, refreshToken string) (*models.Session, error) {
	var session models.Session
	err := withRetry(ctx, func() error {
		err := s.db.QueryRowContext(ctx, `
			SELECT id, user_id, refresh_token, expires_at, created_at
			FROM sessions
			WHERE refresh_token = $1 AND expires_at > NOW()
		`, refreshToken).Scan(&session.ID, &session.UserID, &session.RefreshToken,
			&session.ExpiresAt, &session.CreatedAt)
		if err == sql.ErrNoRows {
			return ErrNotFound
		}
		return err
	})
	if err != nil {
		return nil, err
	}
	return &session, nil
}

func (s *PostgresStore) DeleteUserSessions(ctx context.Context, userID string) error {
	return withRetry(ctx, func() error {
		_, err := s.db.ExecContext(ctx, `DELETE FROM sessions WHERE user_id = $1`, userID)
		return err
	})
}

func (s *PostgresStore) PurgeExpiredSessions(ctx context.Context) (int64, error) {
	var purged int64
	err := withRetry(ctx, func() error {
		result, err := s.db.ExecContext(ctx, `DELETE FROM sessions WHERE expires_at < NOW()`)
		if err != nil {
			return err
		}
		purged, err = result.RowsAffected()
		return err
	})
	if err != nil {
		return 0, err
	}
	return purged, nil
}

// --- Transactions ---

func (s *PostgresStore) CreateTransaction(ctx context.Context, tx *models.Transaction) error {
	// created_at comes from the database clock so ordering stays consistent
	// across clients with skewed clocks.
	return withRetry(ctx, func() error {
		return s.db.QueryRowContext(ctx, `
			INSERT INTO transactions (user_id, amount, description, type, category)
			VALUES ($1, $2, $3, $4, $5)
			RETURNING id, created_at
		`, tx.UserID, int64(tx.Amount), tx.Description, string(tx.Type), tx.Category).
			Scan(&tx.ID, &tx.CreatedAt)
	})
}

func (s *PostgresStore) ListTransactions(ctx context.Context, userID string) ([]models.Transaction, error) {
	var txs []models.Transaction
	err := withRetry(ctx, func() error {
		rows, err := s.db.QueryContext(ctx, `
			SELECT id, user_id, amount, description, type, category, created_at
			FROM transactions
			WHERE user_id = $1
			ORDER BY created_at DESC, id DESC
		`, userID)
		if err != nil {
			return err
		}
		defer rows.Close()

		txs = []models.Transaction{}
		for rows.Next() {
			var t models.Transaction
			var amount int64
			var txType string
			if err := rows.Scan(&t.ID, &t.UserID, &amount, &t.Description, &txType, &t.Category, &t.CreatedAt); err != nil {
				return err
			}
			t.Amount = models.Amount(amount)
			t.Type = models.TransactionType(txType)
			txs = append(txs, t)
		}
		return rows.Err()
	})
	if err != nil {
		return nil, err
	}
	return txs, nil
}

func (s *PostgresStore) DeleteTransaction(ctx context.Context, userID, id string) error {
	if _, err := uuid.Parse(id); err != nil {
		// Malformed ids would otherwise error at the uuid column.
		return ErrNotFound
	}
	return withRetry(ctx, func() error {
		result, err := s.db.ExecContext(ctx, `
			DELETE FROM transactions WHERE id = $1 AND user_id = $2
		`, id, userID)
		if err != nil {
			return err
		}
		rows, _ := result.RowsAffected()
		if rows == 0 {
			return ErrNotFound
		}
		return nil
	})
}

func (s *PostgresStore) Close() error {
	return s.db.Close()
}
