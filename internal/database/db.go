// internal/database/db.go
package database

import (
	"database/sql"
	"fmt"

	_ "github.com/lib/pq"
)

// Open opens a PostgreSQL connection pool. sql.Open does not dial; callers
// should Ping before serving traffic.
func Open(databaseURL string) (*sql.DB, error) {
	db, err := sql.Open("postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	return db, nil
}
