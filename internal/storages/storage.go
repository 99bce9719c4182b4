// Package storages defines the persistence contract the ledger core depends
// on. Any conforming backend (local sqlite file, postgres, in-memory) is
// substitutable without touching the currency or aggregation logic.
package storages

import (
	"context"

	"github.com/daftari/backend/internal/models"
)

// Storage is the ledger store contract.
//
// UpsertTransaction and DeleteTransaction must be atomic per transaction id:
// a reader never observes a partially written entry, even when a sync import
// runs between two calls. DeleteTransaction is idempotent; deleting an
// unknown id is a no-op, not an error.
//
// Replace applies a snapshot all-or-nothing: if it fails, the previous state
// must remain fully intact. A successful Replace overwrites transactions,
// users and the global rate wholesale (last writer wins, no merge).
type Storage interface {
	ListTransactions(ctx context.Context, userID string) ([]models.Transaction, error)
	UpsertTransaction(ctx context.Context, tx models.Transaction) error
	DeleteTransaction(ctx context.Context, id string) error

	GetGlobalRate(ctx context.Context) (float64, error)
	SetGlobalRate(ctx context.Context, rate float64) error

	ListUsers(ctx context.Context) ([]models.User, error)
	CreateUser(ctx context.Context, user models.User) error
	GetUser(ctx context.Context, id string) (*models.User, error)
	GetUserByUsername(ctx context.Context, username string) (*models.User, error)

	Snapshot(ctx context.Context) (*models.Snapshot, error)
	Replace(ctx context.Context, snap *models.Snapshot) error

	Close() error
}
