package convlog

import (
	"database/sql"

	"github.com/foliolabs/folio/internal/store"
)

// Migrations returns the conversation log's database migrations.
func Migrations() []store.Migration {
	return []store.Migration{
		{
			Version:     1,
			Description: "create conversation log table",
			Up: func(tx *sql.Tx) error {
				stmts := []string{
					`CREATE TABLE IF NOT EXISTS conversation_log (
						id         INTEGER PRIMARY KEY,
						role       TEXT    NOT NULL CHECK (role IN ('user', 'assistant')),
						content    TEXT    NOT NULL,
						created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
					)`,
					`CREATE INDEX IF NOT EXISTS idx_conversation_log_created ON conversation_log(created_at)`,
				}
				for _, stmt := range stmts {
					if _, err := tx.Exec(stmt); err != nil {
						return err
					}
				}
				return nil
			},
		},
	}
}
