package storage

import (
	"fmt"
	"log"

	"github.com/nicawallet/wallet-api/config"
)

// Open builds the Store selected by DATA_BACKEND. Postgres is the default;
// the memory backend exists for local development and tests.
func Open(cfg *config.Config) (Store, error) {
	switch cfg.DataBackend {
	case "postgres":
		db, err := config.InitDB(cfg.DatabaseURL)
		if err != nil {
			return nil, err
		}
		if err := config.RunMigrations(db); err != nil {
			db.Close()
			return nil, err
		}
		return NewPostgresStore(db), nil
	case "memory":
		log.Println("⚠️  Using in-memory storage: data will not survive a restart")
		return NewMemoryStore(), nil
	default:
		return nil, fmt.Errorf("unknown DATA_BACKEND %q (want postgres or memory)", cfg.DataBackend)
	}
}
