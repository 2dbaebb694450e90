package store

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"testing"
)

func newTestDB(t *testing.T) *SQLiteStore {
	t.Helper()
	db, err := New(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func TestNew_CreatesDatabase(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	if err := db.DB().Ping(); err != nil {
		t.Errorf("Ping() error = %v", err)
	}
}

func TestMigrate_AppliesOnce(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	ctx := context.Background()

	applied := 0
	migrations := []Migration{
		{
			Version:     1,
			Description: "create test table",
			Up: func(tx *sql.Tx) error {
				applied++
				_, err := tx.Exec("CREATE TABLE test_items (id INTEGER PRIMARY KEY, name TEXT)")
				return err
			},
		},
	}

	if err := db.Migrate(ctx, "test", migrations); err != nil {
		t.Fatalf("Migrate() error = %v", err)
	}
	if err := db.Migrate(ctx, "test", migrations); err != nil {
		t.Fatalf("second Migrate() error = %v", err)
	}
	if applied != 1 {
		t.Errorf("migration applied %d times, want 1", applied)
	}

	if _, err := db.DB().Exec("INSERT INTO test_items (name) VALUES ('x')"); err != nil {
		t.Errorf("migrated table unusable: %v", err)
	}
}

func TestMigrate_RollsBackOnFailure(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	ctx := context.Background()

	migrations := []Migration{
		{
			Version:     1,
			Description: "failing migration",
			Up: func(tx *sql.Tx) error {
				if _, err := tx.Exec("CREATE TABLE half_done (id INTEGER)"); err != nil {
					return err
				}
				return errors.New("boom")
			},
		},
	}

	if err := db.Migrate(ctx, "test", migrations); err == nil {
		t.Fatal("Migrate() expected error")
	}

	var count int
	err := db.DB().QueryRow(
		"SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name='half_done'",
	).Scan(&count)
	if err != nil {
		t.Fatalf("query sqlite_master: %v", err)
	}
	if count != 0 {
		t.Error("failed migration left table behind")
	}
}

func TestTx_CommitAndRollback(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	ctx := context.Background()

	if _, err := db.DB().Exec("CREATE TABLE kv (k TEXT PRIMARY KEY, v TEXT)"); err != nil {
		t.Fatalf("create table: %v", err)
	}

	err := db.Tx(ctx, func(tx *sql.Tx) error {
		_, err := tx.Exec("INSERT INTO kv (k, v) VALUES ('a', '1')")
		return err
	})
	if err != nil {
		t.Fatalf("Tx() commit error = %v", err)
	}

	err = db.Tx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.Exec("INSERT INTO kv (k, v) VALUES ('b', '2')"); err != nil {
			return err
		}
		return errors.New("abort")
	})
	if err == nil {
		t.Fatal("Tx() expected rollback error")
	}

	var count int
	if err := db.DB().QueryRow("SELECT COUNT(*) FROM kv").Scan(&count); err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 1 {
		t.Errorf("row count = %d, want 1 (rolled-back insert must not persist)", count)
	}
}

func TestCheckVersion_FirstRunAndUpgrade(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	ctx := context.Background()

	if err := db.CheckVersion(ctx, "0.1.0"); err != nil {
		t.Fatalf("first CheckVersion() error = %v", err)
	}
	if err := db.CheckVersion(ctx, "0.1.0"); err != nil {
		t.Fatalf("same-version CheckVersion() error = %v", err)
	}
	if err := db.CheckVersion(ctx, "0.2.0"); err != nil {
		t.Fatalf("upgrade CheckVersion() error = %v", err)
	}
}

func TestCheckVersion_RejectsOlderBinary(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	ctx := context.Background()

	if err := db.CheckVersion(ctx, "0.2.0"); err != nil {
		t.Fatalf("CheckVersion() error = %v", err)
	}

	err := db.CheckVersion(ctx, "0.1.0")
	if !errors.Is(err, ErrNewerSchema) {
		t.Errorf("CheckVersion() error = %v, want ErrNewerSchema", err)
	}
}

func TestCheckVersion_DevBypasses(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	ctx := context.Background()

	if err := db.CheckVersion(ctx, "0.5.0"); err != nil {
		t.Fatalf("CheckVersion() error = %v", err)
	}
	if err := db.CheckVersion(ctx, "dev"); err != nil {
		t.Errorf("dev binary should always pass, got %v", err)
	}
}
