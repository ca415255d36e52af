package sqlite

// schema is applied on startup. CREATE IF NOT EXISTS keeps restarts cheap;
// there is no migration history to track yet.
const schema = `
CREATE TABLE IF NOT EXISTS users (
	username      TEXT PRIMARY KEY,
	password_hash TEXT NOT NULL,
	first_name    TEXT NOT NULL,
	last_name     TEXT NOT NULL,
	phone         TEXT NOT NULL,
	join_at       DATETIME NOT NULL,
	last_login_at DATETIME NOT NULL
);

CREATE TABLE IF NOT EXISTS messages (
	id            INTEGER PRIMARY KEY AUTOINCREMENT,
	from_username TEXT NOT NULL REFERENCES users(username),
	to_username   TEXT NOT NULL REFERENCES users(username),
	body          TEXT NOT NULL,
	sent_at       DATETIME NOT NULL,
	read_at       DATETIME
);

CREATE INDEX IF NOT EXISTS idx_messages_to ON messages(to_username);
CREATE INDEX IF NOT EXISTS idx_messages_from ON messages(from_username);
`
