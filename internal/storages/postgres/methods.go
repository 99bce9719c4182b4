package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"strings"

	"github.com/lib/pq"
	"github.com/sirupsen/logrus"

	"github.com/daftari/backend/internal/models"
)

const rateKey = "global_usd_rate"

func (s *Store) ListTransactions(ctx context.Context, userID string) ([]models.Transaction, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, user_id, amount, original_amount, input_currency, usd_rate,
		       description, notes, type, date, created_at
		FROM transactions
		WHERE user_id = $1`, userID)
	if err != nil {
		logrus.WithError(err).Warn("transactions unreadable, treating as empty")
		return []models.Transaction{}, nil
	}
	defer rows.Close()

	out := make([]models.Transaction, 0)
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			logrus.WithError(err).Warn("skipping corrupt transaction row")
			continue
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

func (s *Store) UpsertTransaction(ctx context.Context, tx models.Transaction) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO transactions (id, user_id, amount, original_amount, input_currency,
		                          usd_rate, description, notes, type, date, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		ON CONFLICT (id) DO UPDATE SET
			user_id = EXCLUDED.user_id,
			amount = EXCLUDED.amount,
			original_amount = EXCLUDED.original_amount,
			input_currency = EXCLUDED.input_currency,
			usd_rate = EXCLUDED.usd_rate,
			description = EXCLUDED.description,
			notes = EXCLUDED.notes,
			type = EXCLUDED.type,
			date = EXCLUDED.date,
			created_at = EXCLUDED.created_at`,
		tx.ID, tx.UserID, tx.Amount, tx.OriginalAmount, string(tx.InputCurrency),
		tx.UsdRate, tx.Description, tx.Notes, string(tx.Type), tx.Date, tx.CreatedAt)
	if err != nil {
		return fmt.Errorf("upsert transaction %s: %w", tx.ID, err)
	}
	return nil
}

func (s *Store) DeleteTransaction(ctx context.Context, id string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM transactions WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete transaction %s: %w", id, err)
	}
	return nil
}

func (s *Store) GetGlobalRate(ctx context.Context) (float64, error) {
	var value string
	err := s.db.QueryRowContext(ctx,
		`SELECT value FROM settings WHERE key = $1`, rateKey).Scan(&value)
	if err == sql.ErrNoRows {
		return models.DefaultUsdRate, nil
	}
	if err != nil {
		return 0, fmt.Errorf("read global rate: %w", err)
	}

	rate, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
	if err != nil || rate <= 0 {
		logrus.WithField("value", value).Warn("stored rate unreadable, using default")
		return models.DefaultUsdRate, nil
	}
	return rate, nil
}

func (s *Store) SetGlobalRate(ctx context.Context, rate float64) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO settings (key, value) VALUES ($1, $2)
		ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value`,
		rateKey, strconv.FormatFloat(rate, 'f', -1, 64))
	if err != nil {
		return fmt.Errorf("set global rate: %w", err)
	}
	return nil
}

func (s *Store) ListUsers(ctx context.Context) ([]models.User, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, username, password FROM users`)
	if err != nil {
		logrus.WithError(err).Warn("users unreadable, treating as empty")
		return []models.User{}, nil
	}
	defer rows.Close()

	out := make([]models.User, 0)
	for rows.Next() {
		var u models.User
		if err := rows.Scan(&u.ID, &u.Username, &u.Password); err != nil {
			logrus.WithError(err).Warn("skipping corrupt user row")
			continue
		}
		out = append(out, u)
	}
	return out, rows.Err()
}

func (s *Store) CreateUser(ctx context.Context, user models.User) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO users (id, username, password) VALUES ($1, $2, $3)`,
		user.ID, user.Username, user.Password)
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23505" {
			return models.ErrUsernameTaken
		}
		return fmt.Errorf("create user: %w", err)
	}
	return nil
}

func (s *Store) GetUser(ctx context.Context, id string) (*models.User, error) {
	return s.getUser(ctx, `SELECT id, username, password FROM users WHERE id = $1`, id)
}

func (s *Store) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	return s.getUser(ctx, `SELECT id, username, password FROM users WHERE username = $1`, username)
}

func (s *Store) getUser(ctx context.Context, query, arg string) (*models.User, error) {
	var u models.User
	err := s.db.QueryRowContext(ctx, query, arg).Scan(&u.ID, &u.Username, &u.Password)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("lookup user: %w", err)
	}
	return &u, nil
}

func (s *Store) Snapshot(ctx context.Context) (*models.Snapshot, error) {
	snap := &models.Snapshot{}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, user_id, amount, original_amount, input_currency, usd_rate,
		       description, notes, type, date, created_at
		FROM transactions`)
	if err != nil {
		return nil, fmt.Errorf("snapshot transactions: %w", err)
	}
	defer rows.Close()

	snap.Transactions = make([]models.Transaction, 0)
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			logrus.WithError(err).Warn("skipping corrupt transaction row in snapshot")
			continue
		}
		snap.Transactions = append(snap.Transactions, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("snapshot transactions: %w", err)
	}

	users, err := s.ListUsers(ctx)
	if err != nil {
		return nil, err
	}
	snap.Users = users

	rate, err := s.GetGlobalRate(ctx)
	if err != nil {
		return nil, err
	}
	snap.GlobalUsdRate = rate

	return snap, nil
}

// Replace applies a snapshot inside one database transaction so a failed
// import leaves the previous state fully intact.
func (s *Store) Replace(ctx context.Context, snap *models.Snapshot) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin replace: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM transactions`); err != nil {
		return fmt.Errorf("clear transactions: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM users`); err != nil {
		return fmt.Errorf("clear users: %w", err)
	}

	for _, t := range snap.Transactions {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO transactions (id, user_id, amount, original_amount, input_currency,
			                          usd_rate, description, notes, type, date, created_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
			t.ID, t.UserID, t.Amount, t.OriginalAmount, string(t.InputCurrency),
			t.UsdRate, t.Description, t.Notes, string(t.Type), t.Date, t.CreatedAt)
		if err != nil {
			return fmt.Errorf("restore transaction %s: %w", t.ID, err)
		}
	}

	for _, u := range snap.Users {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO users (id, username, password) VALUES ($1, $2, $3)`,
			u.ID, u.Username, u.Password)
		if err != nil {
			return fmt.Errorf("restore user %s: %w", u.ID, err)
		}
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO settings (key, value) VALUES ($1, $2)
		ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value`,
		rateKey, strconv.FormatFloat(snap.GlobalUsdRate, 'f', -1, 64))
	if err != nil {
		return fmt.Errorf("restore global rate: %w", err)
	}

	return tx.Commit()
}

func scanTransaction(rows *sql.Rows) (models.Transaction, error) {
	var t models.Transaction
	var currency, txType string
	err := rows.Scan(&t.ID, &t.UserID, &t.Amount, &t.OriginalAmount, &currency,
		&t.UsdRate, &t.Description, &t.Notes, &txType, &t.Date, &t.CreatedAt)
	t.InputCurrency = models.Currency(currency)
	t.Type = models.TransactionType(txType)
	return t, err
}
