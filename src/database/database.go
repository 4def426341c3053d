package database

import (
	"database/sql"
	stdlog "log"

	"github.com/username/fintrack/backend/src/logger"
	_ "modernc.org/sqlite"
)

var DB *sql.DB

func InitDB(databasePath string) {
	db, err := sql.Open("sqlite", databasePath)
	if err != nil {
		stdlog.Fatalf("failed to open database at %s: %v", databasePath, err)
	}

	// Ledger units are single writer transactions; let concurrent writers
	// queue instead of failing immediately with SQLITE_BUSY.
	if _, err := db.Exec(`PRAGMA busy_timeout = 5000;`); err != nil {
		stdlog.Fatalf("failed to set busy_timeout: %v", err)
	}

	DB = db

	if logger.L != nil {
		logger.L.Info("Checking database schema", "databasePath", databasePath)
	} else {
		stdlog.Println("Checking database schema for:", databasePath)
	}

	if err := InitSchema(db); err != nil {
		stdlog.Fatalf("failed to initialize database schema: %v", err)
	}
	migrateAccountsTable(db)
}

// InitSchema creates all tables if they do not exist yet. It is exported so
// tests can bootstrap an in-memory database the same way the server does.
func InitSchema(db *sql.DB) error {
	createTableStatement := `
	CREATE TABLE IF NOT EXISTS users (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		username TEXT NOT NULL UNIQUE,
		password TEXT NOT NULL,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	);

	CREATE TABLE IF NOT EXISTS sessions (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		user_id INTEGER NOT NULL,
		token TEXT NOT NULL,
		refresh_token TEXT NOT NULL,
		user_agent TEXT,
		client_ip TEXT,
		is_blocked BOOLEAN DEFAULT FALSE,
		expires_at TIMESTAMP,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		FOREIGN KEY(user_id) REFERENCES users(id)
	);

	CREATE TABLE IF NOT EXISTS accounts (
		id TEXT PRIMARY KEY,
		user_id INTEGER NOT NULL,
		name TEXT NOT NULL,
		type TEXT NOT NULL,
		category TEXT NOT NULL,
		balance TEXT NOT NULL,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	);
	CREATE INDEX IF NOT EXISTS idx_accounts_user ON accounts(user_id);

	CREATE TABLE IF NOT EXISTS transactions (
		id TEXT PRIMARY KEY,
		user_id INTEGER NOT NULL,
		type TEXT NOT NULL,
		date TEXT NOT NULL,
		category TEXT NOT NULL,
		description TEXT NOT NULL,
		amount TEXT NOT NULL,
		account_id TEXT NOT NULL,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	);
	CREATE INDEX IF NOT EXISTS idx_transactions_user_date ON transactions(user_id, date);

	CREATE TABLE IF NOT EXISTS transfers (
		id TEXT PRIMARY KEY,
		user_id INTEGER NOT NULL,
		from_account_id TEXT NOT NULL,
		to_account_id TEXT NOT NULL,
		amount TEXT NOT NULL,
		date TEXT NOT NULL,
		note TEXT,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	);
	CREATE INDEX IF NOT EXISTS idx_transfers_user ON transfers(user_id);

	CREATE TABLE IF NOT EXISTS user_data (
		user_id INTEGER PRIMARY KEY,
		document TEXT NOT NULL,
		updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	);`

	_, err := db.Exec(createTableStatement)
	return err
}

// migrateAccountsTable backfills the updated_at column for databases created
// before it was added to the schema.
func migrateAccountsTable(db *sql.DB) {
	rows, err := db.Query(`PRAGMA table_info(accounts);`)
	if err != nil {
		stdlog.Printf("could not inspect accounts table: %v", err)
		return
	}
	defer rows.Close()

	hasUpdatedAt := false
	for rows.Next() {
		var cid int
		var name, colType string
		var notNull, pk int
		var dfltValue sql.NullString
		if err := rows.Scan(&cid, &name, &colType, &notNull, &dfltValue, &pk); err != nil {
			stdlog.Printf("could not scan accounts column info: %v", err)
			return
		}
		if name == "updated_at" {
			hasUpdatedAt = true
		}
	}
	if rows.Err() != nil {
		return
	}

	if !hasUpdatedAt {
		if _, err := db.Exec(`ALTER TABLE accounts ADD COLUMN updated_at TIMESTAMP;`); err != nil {
			stdlog.Printf("could not add accounts.updated_at: %v", err)
		} else if logger.L != nil {
			logger.L.Info("Migrated accounts table: added updated_at column")
		}
	}
}
