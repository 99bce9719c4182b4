package storages

import (
	"fmt"

	"github.com/daftari/backend/internal/storages/memory"
	"github.com/daftari/backend/internal/storages/postgres"
	"github.com/daftari/backend/internal/storages/sqlite"
)

// Backend compile-time checks.
var (
	_ Storage = (*memory.Store)(nil)
	_ Storage = (*sqlite.Store)(nil)
	_ Storage = (*postgres.Store)(nil)
)

// New selects a Storage backend by name: "sqlite" (default), "postgres" or
// "memory".
func New(backend string) (Storage, error) {
	switch backend {
	case "", "sqlite":
		return sqlite.New(sqlite.GetPath())
	case "postgres":
		return postgres.New()
	case "memory":
		return memory.New(), nil
	default:
		return nil, fmt.Errorf("unknown storage backend %q (want sqlite, postgres or memory)", backend)
	}
}
