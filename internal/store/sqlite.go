package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	_ "modernc.org/sqlite"

	"github.com/ryssroad/discord-ai/internal/model"
)

// Store is the durable log of dialog messages and free-text audit entries,
// keyed by account. Safe for concurrent account sessions: each logical write
// is a single statement and the write lock serializes them.
type Store struct {
	db   *sql.DB
	mu   sync.Mutex
	path string
}

// LogEntry is one row of the append-only audit trail.
type LogEntry struct {
	ID        int64  `json:"id"`
	AccountID string `json:"account_id"`
	Text      string `json:"text"`
	CreatedAt string `json:"created_at"`
}

// New opens (or creates) the SQLite database at path and ensures the schema.
func New(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	s := &Store{db: db, path: path}
	if err := s.initialize(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func (s *Store) initialize() error {
	schema := `
	CREATE TABLE IF NOT EXISTS messages (
		id TEXT,
		account_id TEXT,
		author_id TEXT,
		content TEXT,
		timestamp TEXT,
		referenced_message_id TEXT,
		is_bot INTEGER,
		PRIMARY KEY (id, account_id)
	);

	CREATE TABLE IF NOT EXISTS logs (
		log_id INTEGER PRIMARY KEY AUTOINCREMENT,
		account_id TEXT,
		log_text TEXT,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	);
	CREATE INDEX IF NOT EXISTS idx_messages_account_author ON messages(account_id, author_id);
	CREATE INDEX IF NOT EXISTS idx_logs_account ON logs(account_id);
	`
	if _, err := s.db.Exec(schema); err != nil {
		return fmt.Errorf("failed to initialize schema: %w", err)
	}
	return nil
}

// SaveMessage upserts one dialog record for the account. Idempotent: the
// primary key (id, account_id) makes a repeated save a no-op rewrite.
func (s *Store) SaveMessage(ctx context.Context, accountID string, rec model.DialogRecord, isBot bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	isBotInt := 0
	if isBot {
		isBotInt = 1
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT OR REPLACE INTO messages
		(id, account_id, author_id, content, timestamp, referenced_message_id, is_bot)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		rec.ID, accountID, rec.AuthorID, rec.Content, rec.Timestamp,
		nullable(rec.ReferencedMessageID), isBotInt,
	)
	if err != nil {
		return fmt.Errorf("save message %s: %w", rec.ID, err)
	}
	return nil
}

// MessageExists reports whether a record for (messageID, accountID) is
// already stored. Backs the durable side of the dedup check so a restart
// does not re-answer messages that survived in the database.
func (s *Store) MessageExists(ctx context.Context, accountID, messageID string) (bool, error) {
	var one int
	err := s.db.QueryRowContext(ctx,
		`SELECT 1 FROM messages WHERE id = ? AND account_id = ?`,
		messageID, accountID,
	).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("lookup message %s: %w", messageID, err)
	}
	return true, nil
}

// GetDialogContext returns the recent two-party thread between the account
// and one counterpart user: the limit most recent records authored by either
// side, reordered oldest to newest.
func (s *Store) GetDialogContext(ctx context.Context, accountID, userID string, limit int) (model.DialogContext, error) {
	dc := model.DialogContext{UserID: userID}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, author_id, content, timestamp, referenced_message_id
		FROM messages
		WHERE account_id = ?
		  AND (author_id = ? OR author_id = ?)
		ORDER BY timestamp DESC
		LIMIT ?`,
		accountID, userID, accountID, limit,
	)
	if err != nil {
		return dc, fmt.Errorf("query dialog context: %w", err)
	}
	defer rows.Close()

	var newestFirst []model.DialogRecord
	for rows.Next() {
		var rec model.DialogRecord
		var refID sql.NullString
		if err := rows.Scan(&rec.ID, &rec.AuthorID, &rec.Content, &rec.Timestamp, &refID); err != nil {
			return dc, fmt.Errorf("scan dialog record: %w", err)
		}
		rec.ReferencedMessageID = refID.String
		newestFirst = append(newestFirst, rec)
	}
	if err := rows.Err(); err != nil {
		return dc, fmt.Errorf("iterate dialog records: %w", err)
	}

	for i := len(newestFirst) - 1; i >= 0; i-- {
		dc.Messages = append(dc.Messages, newestFirst[i])
	}
	return dc, nil
}

// SaveLog appends one free-text entry to the account's audit trail.
func (s *Store) SaveLog(ctx context.Context, accountID, text string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO logs (account_id, log_text) VALUES (?, ?)`,
		accountID, text,
	)
	if err != nil {
		return fmt.Errorf("save log: %w", err)
	}
	return nil
}

// RecentLogs returns the limit newest audit entries for the account,
// newest first.
func (s *Store) RecentLogs(ctx context.Context, accountID string, limit int) ([]LogEntry, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT log_id, account_id, log_text, created_at
		FROM logs
		WHERE account_id = ?
		ORDER BY log_id DESC
		LIMIT ?`,
		accountID, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("query logs: %w", err)
	}
	defer rows.Close()

	var entries []LogEntry
	for rows.Next() {
		var e LogEntry
		if err := rows.Scan(&e.ID, &e.AccountID, &e.Text, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan log entry: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

func (s *Store) Close() error {
	return s.db.Close()
}

func nullable(v string) any {
	if v == "" {
		return nil
	}
	return v
}
