package database

import (
	"elk-bot/model"
	"fmt"
	"os"
	"path/filepath"

	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"
)

// InitAuditDB opens the audit database and ensures the table exists.
func InitAuditDB(dbPath string) (*sqlx.DB, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), os.ModePerm); err != nil {
		return nil, fmt.Errorf("failed to create audit database directory: %w", err)
	}
	db, err := sqlx.Connect("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("failed to connect to audit database: %w", err)
	}

	schema := `
    CREATE TABLE IF NOT EXISTS task_log (
        id INTEGER PRIMARY KEY AUTOINCREMENT,
        task TEXT NOT NULL,
        user_id TEXT NOT NULL,
        user_name TEXT NOT NULL,
        channel_id TEXT NOT NULL,
        channel_name TEXT NOT NULL,
        details TEXT NOT NULL,
        created_at DATETIME NOT NULL
    );
    CREATE INDEX IF NOT EXISTS idx_task_log_created_at ON task_log (created_at);`

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create task_log table: %w", err)
	}

	return db, nil
}

// AddTaskRecord appends a command invocation to the audit trail.
func AddTaskRecord(db *sqlx.DB, record model.TaskRecord) (int64, error) {
	query := `INSERT INTO task_log (task, user_id, user_name, channel_id, channel_name, details, created_at)
              VALUES (:task, :user_id, :user_name, :channel_id, :channel_name, :details, :created_at)`

	result, err := db.NamedExec(query, record)
	if err != nil {
		return 0, fmt.Errorf("failed to insert task record: %w", err)
	}
	return result.LastInsertId()
}

// RecentTaskRecords returns up to limit records, newest first.
func RecentTaskRecords(db *sqlx.DB, limit int) ([]model.TaskRecord, error) {
	var records []model.TaskRecord
	query := "SELECT * FROM task_log ORDER BY created_at DESC, id DESC LIMIT ?"
	if err := db.Select(&records, query, limit); err != nil {
		return nil, fmt.Errorf("failed to get task records: %w", err)
	}
	return records, nil
}

// CountTaskRecords returns how many records the audit trail holds.
func CountTaskRecords(db *sqlx.DB) (int, error) {
	var count int
	if err := db.Get(&count, "SELECT COUNT(*) FROM task_log"); err != nil {
		return 0, fmt.Errorf("failed to count task records: %w", err)
	}
	return count, nil
}
