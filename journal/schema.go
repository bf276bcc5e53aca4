// journal/schema.go
package journal

// Schema is valid for both SQLite and PostgreSQL. Column types are limited
// to ones both engines accept and that go-sqlite3 maps back to Go types
// (TIMESTAMP -> time.Time, BOOLEAN -> bool).
const Schema = `
CREATE TABLE IF NOT EXISTS accounts (
	id TEXT PRIMARY KEY,
	user_id TEXT NOT NULL,
	name TEXT NOT NULL,
	broker TEXT NOT NULL DEFAULT '',
	currency TEXT NOT NULL DEFAULT 'USD',
	starting_balance DOUBLE PRECISION NOT NULL DEFAULT 0,
	archived BOOLEAN NOT NULL DEFAULT FALSE,
	created_at TIMESTAMP NOT NULL,
	UNIQUE (user_id, name)
);

CREATE TABLE IF NOT EXISTS import_batches (
	id TEXT PRIMARY KEY,
	user_id TEXT NOT NULL,
	account_id TEXT REFERENCES accounts(id) ON DELETE SET NULL,
	file_name TEXT NOT NULL DEFAULT '',
	rows_total INTEGER NOT NULL DEFAULT 0,
	imported INTEGER NOT NULL DEFAULT 0,
	skipped INTEGER NOT NULL DEFAULT 0,
	duplicates INTEGER NOT NULL DEFAULT 0,
	created_at TIMESTAMP NOT NULL
);

CREATE TABLE IF NOT EXISTS trades (
	id TEXT PRIMARY KEY,
	user_id TEXT NOT NULL,
	account_id TEXT REFERENCES accounts(id) ON DELETE SET NULL,
	symbol TEXT NOT NULL,
	side TEXT NOT NULL,
	entry_price DOUBLE PRECISION NOT NULL DEFAULT 0,
	exit_price DOUBLE PRECISION NOT NULL DEFAULT 0,
	entry_time TIMESTAMP,
	exit_time TIMESTAMP,
	contracts INTEGER NOT NULL,
	stop_loss DOUBLE PRECISION NOT NULL DEFAULT 0,
	take_profit DOUBLE PRECISION NOT NULL DEFAULT 0,
	commission DOUBLE PRECISION NOT NULL DEFAULT 0,
	fees DOUBLE PRECISION NOT NULL DEFAULT 0,
	gross_pnl DOUBLE PRECISION NOT NULL DEFAULT 0,
	net_pnl DOUBLE PRECISION NOT NULL DEFAULT 0,
	r_multiple DOUBLE PRECISION,
	pnl_source TEXT NOT NULL DEFAULT 'computed',
	setup TEXT NOT NULL DEFAULT '',
	notes TEXT NOT NULL DEFAULT '',
	emotions TEXT NOT NULL DEFAULT '[]',
	mistakes TEXT NOT NULL DEFAULT '[]',
	tags TEXT NOT NULL DEFAULT '[]',
	rating INTEGER NOT NULL DEFAULT 0,
	entry_rating INTEGER NOT NULL DEFAULT 0,
	exit_rating INTEGER NOT NULL DEFAULT 0,
	is_public BOOLEAN NOT NULL DEFAULT FALSE,
	share_token TEXT UNIQUE,
	source TEXT NOT NULL DEFAULT 'manual',
	import_batch_id TEXT REFERENCES import_batches(id) ON DELETE CASCADE,
	deleted_at TIMESTAMP,
	created_at TIMESTAMP NOT NULL,
	updated_at TIMESTAMP NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_trades_user_entry ON trades(user_id, entry_time);
CREATE INDEX IF NOT EXISTS idx_trades_user_exit ON trades(user_id, exit_time);
CREATE INDEX IF NOT EXISTS idx_trades_batch ON trades(import_batch_id);

CREATE TABLE IF NOT EXISTS instruments (
	user_id TEXT NOT NULL,
	symbol TEXT NOT NULL,
	name TEXT NOT NULL DEFAULT '',
	exchange TEXT NOT NULL DEFAULT '',
	tick_size DOUBLE PRECISION NOT NULL,
	tick_value DOUBLE PRECISION NOT NULL,
	currency TEXT NOT NULL DEFAULT 'USD',
	PRIMARY KEY (user_id, symbol)
);

CREATE TABLE IF NOT EXISTS user_rules (
	id TEXT PRIMARY KEY,
	user_id TEXT NOT NULL,
	name TEXT NOT NULL,
	description TEXT NOT NULL DEFAULT '',
	category TEXT NOT NULL DEFAULT '',
	active BOOLEAN NOT NULL DEFAULT TRUE,
	position INTEGER NOT NULL DEFAULT 0,
	created_at TIMESTAMP NOT NULL,
	UNIQUE (user_id, name)
);

CREATE TABLE IF NOT EXISTS user_rule_checks (
	id TEXT PRIMARY KEY,
	user_id TEXT NOT NULL,
	rule_id TEXT NOT NULL REFERENCES user_rules(id) ON DELETE CASCADE,
	day TEXT NOT NULL,
	followed BOOLEAN NOT NULL,
	note TEXT NOT NULL DEFAULT '',
	UNIQUE (rule_id, day)
);

CREATE INDEX IF NOT EXISTS idx_rule_checks_user_day ON user_rule_checks(user_id, day);

CREATE TABLE IF NOT EXISTS journal_screenshots (
	id TEXT PRIMARY KEY,
	user_id TEXT NOT NULL,
	trade_id TEXT NOT NULL REFERENCES trades(id) ON DELETE CASCADE,
	url TEXT NOT NULL,
	caption TEXT NOT NULL DEFAULT '',
	created_at TIMESTAMP NOT NULL
);
`
