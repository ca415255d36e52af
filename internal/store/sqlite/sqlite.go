package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/mattn/go-sqlite3"

	"github.com/messagely/server/internal/store"
)

// SQLiteStore implements store.Store for SQLite.
type SQLiteStore struct {
	db *sql.DB
}

// New creates a new SQLite store and applies the schema.
// dbPath is the path to the SQLite database file.
func New(dbPath string) (*SQLiteStore, error) {
	db, err := open(dbPath)
	if err != nil {
		return nil, err
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

// NewWithSetup creates a new SQLite store and runs a setup function instead
// of the built-in schema. Useful for tests.
func NewWithSetup(dbPath string, setup func(*sql.DB) error) (*SQLiteStore, error) {
	db, err := open(dbPath)
	if err != nil {
		return nil, err
	}

	if setup != nil {
		if err := setup(db); err != nil {
			db.Close()
			return nil, fmt.Errorf("setup: %w", err)
		}
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

func open(dbPath string) (*sql.DB, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	// SQLite works best with a single connection; this also serializes
	// writers so conditional updates cannot interleave.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	return db, nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// isUniqueViolation reports whether err is a unique or primary key
// constraint failure.
func isUniqueViolation(err error) bool {
	var sqliteErr sqlite3.Error
	if !errors.As(err, &sqliteErr) {
		return false
	}
	return sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique ||
		sqliteErr.ExtendedCode == sqlite3.ErrConstraintPrimaryKey
}

// isForeignKeyViolation reports whether err is a foreign key constraint
// failure.
func isForeignKeyViolation(err error) bool {
	var sqliteErr sqlite3.Error
	if !errors.As(err, &sqliteErr) {
		return false
	}
	return sqliteErr.ExtendedCode == sqlite3.ErrConstraintForeignKey
}

// ==== UserStore implementation ====

// CreateUser inserts a new user record.
func (s *SQLiteStore) CreateUser(ctx context.Context, user *store.User) error {
	query := `
		INSERT INTO users (username, password_hash, first_name, last_name, phone, join_at, last_login_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`
	_, err := s.db.ExecContext(ctx, query,
		user.Username,
		user.PasswordHash,
		user.FirstName,
		user.LastName,
		user.Phone,
		user.JoinAt,
		user.LastLoginAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return store.ErrUsernameTaken
		}
		return fmt.Errorf("insert user: %w", err)
	}

	return nil
}

// GetUserByUsername retrieves a full user record including the password hash.
func (s *SQLiteStore) GetUserByUsername(ctx context.Context, username string) (*store.User, error) {
	query := `
		SELECT username, password_hash, first_name, last_name, phone, join_at, last_login_at
		FROM users
		WHERE username = ?
	`
	var user store.User
	err := s.db.QueryRowContext(ctx, query, username).Scan(
		&user.Username,
		&user.PasswordHash,
		&user.FirstName,
		&user.LastName,
		&user.Phone,
		&user.JoinAt,
		&user.LastLoginAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrUserNotFound
		}
		return nil, fmt.Errorf("query user: %w", err)
	}

	return &user, nil
}

// UserExists reports whether a username is registered.
func (s *SQLiteStore) UserExists(ctx context.Context, username string) (bool, error) {
	query := `SELECT 1 FROM users WHERE username = ?`
	var exists int
	err := s.db.QueryRowContext(ctx, query, username).Scan(&exists)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, nil
		}
		return false, fmt.Errorf("query user existence: %w", err)
	}
	return true, nil
}

// ListUsers returns public profiles of all users ordered by username.
func (s *SQLiteStore) ListUsers(ctx context.Context) ([]*store.UserProfile, error) {
	query := `
		SELECT username, first_name, last_name, phone
		FROM users
		ORDER BY username ASC
	`
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query users: %w", err)
	}
	defer rows.Close()

	var profiles []*store.UserProfile
	for rows.Next() {
		var p store.UserProfile
		if err := rows.Scan(&p.Username, &p.FirstName, &p.LastName, &p.Phone); err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}
		profiles = append(profiles, &p)
	}

	return profiles, rows.Err()
}

// TouchLastLogin overwrites last_login_at for the user.
func (s *SQLiteStore) TouchLastLogin(ctx context.Context, username string, at time.Time) error {
	query := `UPDATE users SET last_login_at = ? WHERE username = ?`
	result, err := s.db.ExecContext(ctx, query, at, username)
	if err != nil {
		return fmt.Errorf("update last login: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("get rows affected: %w", err)
	}
	if rows == 0 {
		return store.ErrUserNotFound
	}
	return nil
}

// ==== MessageStore implementation ====

// CreateMessage inserts a message and assigns its ID.
func (s *SQLiteStore) CreateMessage(ctx context.Context, msg *store.Message) error {
	query := `
		INSERT INTO messages (from_username, to_username, body, sent_at)
		VALUES (?, ?, ?, ?)
	`
	result, err := s.db.ExecContext(ctx, query, msg.FromUsername, msg.ToUsername, msg.Body, msg.SentAt)
	if err != nil {
		if isForeignKeyViolation(err) {
			return store.ErrUserNotFound
		}
		return fmt.Errorf("insert message: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("get last insert id: %w", err)
	}

	msg.ID = id
	return nil
}

// GetMessage retrieves a message with both party profiles joined in a single
// query.
func (s *SQLiteStore) GetMessage(ctx context.Context, id int64) (*store.MessageDetail, error) {
	query := `
		SELECT m.id, m.from_username, m.to_username, m.body, m.sent_at, m.read_at,
		       f.first_name, f.last_name, f.phone,
		       t.first_name, t.last_name, t.phone
		FROM messages m
		JOIN users f ON f.username = m.from_username
		JOIN users t ON t.username = m.to_username
		WHERE m.id = ?
	`
	var (
		detail   store.MessageDetail
		readAt   sql.NullTime
		fromUser store.UserProfile
		toUser   store.UserProfile
	)
	err := s.db.QueryRowContext(ctx, query, id).Scan(
		&detail.ID,
		&detail.FromUsername,
		&detail.ToUsername,
		&detail.Body,
		&detail.SentAt,
		&readAt,
		&fromUser.FirstName,
		&fromUser.LastName,
		&fromUser.Phone,
		&toUser.FirstName,
		&toUser.LastName,
		&toUser.Phone,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrMessageNotFound
		}
		return nil, fmt.Errorf("query message: %w", err)
	}

	if readAt.Valid {
		detail.ReadAt = &readAt.Time
	}
	fromUser.Username = detail.FromUsername
	toUser.Username = detail.ToUsername
	detail.FromUser = &fromUser
	detail.ToUser = &toUser

	return &detail, nil
}

// MarkMessageRead sets read_at only if it is currently null. When the row
// was already read the stored timestamp is returned unchanged, so the
// operation is idempotent and safe under concurrent invocation.
func (s *SQLiteStore) MarkMessageRead(ctx context.Context, id int64, at time.Time) (*store.Message, error) {
	query := `UPDATE messages SET read_at = ? WHERE id = ? AND read_at IS NULL`
	if _, err := s.db.ExecContext(ctx, query, at, id); err != nil {
		return nil, fmt.Errorf("update read_at: %w", err)
	}

	return s.getMessageRow(ctx, id)
}

// getMessageRow retrieves a bare message row without profile joins.
func (s *SQLiteStore) getMessageRow(ctx context.Context, id int64) (*store.Message, error) {
	query := `
		SELECT id, from_username, to_username, body, sent_at, read_at
		FROM messages
		WHERE id = ?
	`
	var (
		msg    store.Message
		readAt sql.NullTime
	)
	err := s.db.QueryRowContext(ctx, query, id).Scan(
		&msg.ID,
		&msg.FromUsername,
		&msg.ToUsername,
		&msg.Body,
		&msg.SentAt,
		&readAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrMessageNotFound
		}
		return nil, fmt.Errorf("query message: %w", err)
	}

	if readAt.Valid {
		msg.ReadAt = &readAt.Time
	}
	return &msg, nil
}

// MessagesTo returns all messages addressed to the user joined with the
// sender profile. A single JOIN avoids per-message sender lookups.
func (s *SQLiteStore) MessagesTo(ctx context.Context, username string) ([]*store.MailboxMessage, error) {
	query := `
		SELECT m.id, m.body, m.sent_at, m.read_at,
		       u.username, u.first_name, u.last_name, u.phone
		FROM messages m
		JOIN users u ON u.username = m.from_username
		WHERE m.to_username = ?
		ORDER BY m.id ASC
	`
	return s.queryMailbox(ctx, query, username)
}

// MessagesFrom returns all messages sent by the user joined with the
// recipient profile.
func (s *SQLiteStore) MessagesFrom(ctx context.Context, username string) ([]*store.MailboxMessage, error) {
	query := `
		SELECT m.id, m.body, m.sent_at, m.read_at,
		       u.username, u.first_name, u.last_name, u.phone
		FROM messages m
		JOIN users u ON u.username = m.to_username
		WHERE m.from_username = ?
		ORDER BY m.id ASC
	`
	return s.queryMailbox(ctx, query, username)
}

func (s *SQLiteStore) queryMailbox(ctx context.Context, query, username string) ([]*store.MailboxMessage, error) {
	rows, err := s.db.QueryContext(ctx, query, username)
	if err != nil {
		return nil, fmt.Errorf("query mailbox: %w", err)
	}
	defer rows.Close()

	var messages []*store.MailboxMessage
	for rows.Next() {
		var (
			msg    store.MailboxMessage
			readAt sql.NullTime
			peer   store.UserProfile
		)
		if err := rows.Scan(
			&msg.ID,
			&msg.Body,
			&msg.SentAt,
			&readAt,
			&peer.Username,
			&peer.FirstName,
			&peer.LastName,
			&peer.Phone,
		); err != nil {
			return nil, fmt.Errorf("scan mailbox message: %w", err)
		}
		if readAt.Valid {
			msg.ReadAt = &readAt.Time
		}
		msg.Peer = &peer
		messages = append(messages, &msg)
	}

	return messages, rows.Err()
}

// Ensure SQLiteStore implements store.Store
var _ store.Store = (*SQLiteStore)(nil)
