package store

const Schema = `
CREATE TABLE IF NOT EXISTS users (
	username TEXT PRIMARY KEY,
	password_hash TEXT NOT NULL,
	group_name TEXT NOT NULL DEFAULT 'guest',
	created_at DATETIME DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS book_requests (
	id TEXT PRIMARY KEY,
	asin TEXT NOT NULL,
	username TEXT NOT NULL,
	title TEXT NOT NULL,
	subtitle TEXT,
	authors TEXT NOT NULL DEFAULT '[]',
	narrators TEXT NOT NULL DEFAULT '[]',
	cover_url TEXT,
	downloaded BOOLEAN NOT NULL DEFAULT 0,
	created_at DATETIME DEFAULT CURRENT_TIMESTAMP,

	FOREIGN KEY (username) REFERENCES users(username) ON DELETE CASCADE
);

-- One active request per (book, user); duplicates resolve at insert time.
CREATE UNIQUE INDEX IF NOT EXISTS idx_book_requests_asin_user ON book_requests(asin, username);
CREATE INDEX IF NOT EXISTS idx_book_requests_username ON book_requests(username);

CREATE TABLE IF NOT EXISTS manual_requests (
	id TEXT PRIMARY KEY,
	username TEXT NOT NULL,
	title TEXT NOT NULL,
	subtitle TEXT,
	authors TEXT NOT NULL DEFAULT '[]',
	narrators TEXT NOT NULL DEFAULT '[]',
	publish_date TEXT,
	additional_info TEXT,
	downloaded BOOLEAN NOT NULL DEFAULT 0,
	created_at DATETIME DEFAULT CURRENT_TIMESTAMP,

	FOREIGN KEY (username) REFERENCES users(username) ON DELETE CASCADE
);

CREATE TABLE IF NOT EXISTS notifications (
	id TEXT PRIMARY KEY,
	name TEXT NOT NULL,
	event TEXT NOT NULL,
	url TEXT NOT NULL,
	title_template TEXT NOT NULL DEFAULT '',
	body_template TEXT NOT NULL DEFAULT '',
	headers TEXT NOT NULL DEFAULT '{}',
	created_at DATETIME DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_notifications_event ON notifications(event);

CREATE TABLE IF NOT EXISTS jobs (
	id TEXT PRIMARY KEY,
	type TEXT NOT NULL,
	status TEXT NOT NULL,
	source_id TEXT,
	payload BLOB,
	error TEXT,
	created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
	updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS settings (
	key TEXT PRIMARY KEY,
	value TEXT NOT NULL,
	updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
);
`
