// Package database owns the SQLite connection, schema migrations and the
// small SQL helpers shared by every handler package.
package database

import (
	"database/sql"
	"fmt"
	"strconv"
	"strings"
	"time"

	_ "modernc.org/sqlite"
)

// TimeFormat is the timestamp layout stored in every *_at column.
const TimeFormat = "2006-01-02 15:04:05"

// Now returns the current time in the storage layout.
func Now() string {
	return time.Now().Format(TimeFormat)
}

// Open opens the SQLite database at path with WAL mode, busy timeout and
// foreign keys enabled, then runs migrations.
func Open(path string) (*sql.DB, error) {
	sep := "?"
	if strings.Contains(path, "?") {
		sep = "&"
	}
	db, err := sql.Open("sqlite", path+sep+"_journal_mode=WAL&_busy_timeout=10000&_foreign_keys=1")
	if err != nil {
		return nil, err
	}

	// SQLite handles one writer plus concurrent readers under WAL.
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(0)

	// Some drivers don't parse connection string params, set them explicitly.
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		return nil, fmt.Errorf("enable WAL mode: %w", err)
	}
	if _, err := db.Exec("PRAGMA busy_timeout=30000"); err != nil {
		return nil, fmt.Errorf("set busy_timeout: %w", err)
	}
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		return nil, fmt.Errorf("enable foreign keys: %w", err)
	}

	if err := Migrate(db); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}

// Migrate creates all tables if missing. CHECK constraints mirror the enum
// slices in internal/validation; the two lists must stay in sync.
func Migrate(db *sql.DB) error {
	tables := []string{
		`CREATE TABLE IF NOT EXISTS work_orders (
			id TEXT PRIMARY KEY,
			item_code TEXT NOT NULL,
			description TEXT DEFAULT '',
			ordered_qty REAL NOT NULL CHECK(ordered_qty > 0),
			status TEXT DEFAULT 'draft' CHECK(status IN ('draft','open','in_progress','completed','cancelled','on_hold')),
			material_qc_status TEXT DEFAULT '',
			first_piece_qc_status TEXT DEFAULT '',
			sales_order_ref TEXT DEFAULT '',
			notes TEXT DEFAULT '',
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
			started_at DATETIME,
			completed_at DATETIME
		)`,
		`CREATE TABLE IF NOT EXISTS production_batches (
			id TEXT PRIMARY KEY,
			work_order_id TEXT NOT NULL,
			stage TEXT DEFAULT 'cutting' CHECK(stage IN ('cutting','production','external','qc','packing','dispatched')),
			status TEXT DEFAULT 'in_queue' CHECK(status IN ('in_queue','in_progress','completed')),
			produced_qty REAL CHECK(produced_qty IS NULL OR produced_qty >= 0),
			qc_approved_qty REAL CHECK(qc_approved_qty IS NULL OR qc_approved_qty >= 0),
			dispatched_qty REAL CHECK(dispatched_qty IS NULL OR dispatched_qty >= 0),
			qc_status TEXT DEFAULT '',
			external_process TEXT DEFAULT '',
			external_partner TEXT DEFAULT '',
			stage_entered_at DATETIME DEFAULT CURRENT_TIMESTAMP,
			ended_at DATETIME,
			FOREIGN KEY (work_order_id) REFERENCES work_orders(id) ON DELETE CASCADE
		)`,
		`CREATE TABLE IF NOT EXISTS cartons (
			id TEXT PRIMARY KEY,
			work_order_id TEXT NOT NULL,
			quantity REAL CHECK(quantity IS NULL OR quantity >= 0),
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
			FOREIGN KEY (work_order_id) REFERENCES work_orders(id) ON DELETE CASCADE
		)`,
		`CREATE TABLE IF NOT EXISTS external_moves (
			id TEXT PRIMARY KEY,
			work_order_id TEXT NOT NULL,
			process TEXT NOT NULL,
			partner TEXT DEFAULT '',
			qty_sent REAL NOT NULL DEFAULT 0 CHECK(qty_sent >= 0),
			qty_returned REAL NOT NULL DEFAULT 0 CHECK(qty_returned >= 0),
			status TEXT DEFAULT 'dispatched' CHECK(status IN ('dispatched','partial','returned','cancelled')),
			dispatch_date TEXT DEFAULT '',
			expected_return TEXT DEFAULT '',
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
			FOREIGN KEY (work_order_id) REFERENCES work_orders(id) ON DELETE CASCADE
		)`,
		`CREATE TABLE IF NOT EXISTS finished_goods (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			item_code TEXT NOT NULL,
			work_order_id TEXT DEFAULT '',
			qty_available REAL NOT NULL DEFAULT 0 CHECK(qty_available >= 0),
			updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE TABLE IF NOT EXISTS ncrs (
			id TEXT PRIMARY KEY,
			title TEXT NOT NULL,
			description TEXT DEFAULT '',
			work_order_id TEXT DEFAULT '',
			item_code TEXT DEFAULT '',
			defect_type TEXT DEFAULT '',
			severity TEXT DEFAULT 'minor' CHECK(severity IN ('minor','major','critical')),
			status TEXT DEFAULT 'open' CHECK(status IN ('open','investigating','resolved','closed')),
			root_cause TEXT DEFAULT '',
			corrective_action TEXT DEFAULT '',
			created_by TEXT DEFAULT '',
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
			resolved_at DATETIME
		)`,
		`CREATE TABLE IF NOT EXISTS audit_log (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			module TEXT NOT NULL,
			action TEXT NOT NULL,
			record_id TEXT NOT NULL,
			actor TEXT DEFAULT '',
			summary TEXT DEFAULT '',
			ip_address TEXT DEFAULT '',
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE TABLE IF NOT EXISTS app_settings (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL,
			updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)`,
	}
	for _, ddl := range tables {
		if _, err := db.Exec(ddl); err != nil {
			return fmt.Errorf("migration: %w", err)
		}
	}

	indexes := []string{
		`CREATE INDEX IF NOT EXISTS idx_batches_wo ON production_batches(work_order_id)`,
		`CREATE INDEX IF NOT EXISTS idx_cartons_wo ON cartons(work_order_id)`,
		`CREATE INDEX IF NOT EXISTS idx_moves_wo ON external_moves(work_order_id)`,
		`CREATE INDEX IF NOT EXISTS idx_goods_item ON finished_goods(item_code)`,
		`CREATE INDEX IF NOT EXISTS idx_ncrs_wo ON ncrs(work_order_id)`,
	}
	for _, ddl := range indexes {
		if _, err := db.Exec(ddl); err != nil {
			return fmt.Errorf("index migration: %w", err)
		}
	}
	return nil
}

// Seed inserts a small demo dataset when the database is empty.
func Seed(db *sql.DB) {
	var count int
	db.QueryRow("SELECT COUNT(*) FROM work_orders").Scan(&count)
	if count > 0 {
		return
	}
	year := time.Now().Format("2006")
	wo := "WO-" + year + "-0001"
	db.Exec(`INSERT INTO work_orders (id,item_code,description,ordered_qty,status,material_qc_status,first_piece_qc_status,sales_order_ref) VALUES (?,?,?,?,?,?,?,?)`,
		wo, "FG-1000", "Anodized enclosure, small", 1000.0, "in_progress", "passed", "pending", "SO-"+year+"-0042")
	db.Exec(`INSERT INTO production_batches (id,work_order_id,stage,status,produced_qty,qc_status) VALUES (?,?,?,?,?,?)`,
		"PB-"+year+"-0001", wo, "production", "in_progress", 400.0, "pending")
	db.Exec(`INSERT INTO production_batches (id,work_order_id,stage,status,produced_qty,qc_approved_qty,qc_status) VALUES (?,?,?,?,?,?,?)`,
		"PB-"+year+"-0002", wo, "qc", "completed", 300.0, 280.0, "passed")
	db.Exec(`INSERT INTO cartons (id,work_order_id,quantity) VALUES (?,?,?)`,
		"CTN-"+year+"-0001", wo, 120.0)
	db.Exec(`INSERT INTO external_moves (id,work_order_id,process,partner,qty_sent,qty_returned,status) VALUES (?,?,?,?,?,?,?)`,
		"EXM-"+year+"-0001", wo, "anodizing", "Acme Finishing", 200.0, 150.0, "partial")
	db.Exec(`INSERT INTO finished_goods (item_code,work_order_id,qty_available) VALUES (?,?,?)`,
		"FG-1000", wo, 80.0)
}

// NextID generates the next sequential ID like "WO-2026-0001" for a table
// whose primary keys follow the prefix-year-number convention.
func NextID(db *sql.DB, prefix, table string, digits int) string {
	year := time.Now().Format("2006")
	pattern := prefix + "-" + year + "-%"
	var maxID sql.NullString
	db.QueryRow("SELECT id FROM "+table+" WHERE id LIKE ? ORDER BY id DESC LIMIT 1", pattern).Scan(&maxID)

	next := 1
	if maxID.Valid {
		parts := strings.Split(maxID.String, "-")
		if len(parts) >= 3 {
			if n, err := strconv.Atoi(parts[len(parts)-1]); err == nil {
				next = n + 1
			}
		}
	}
	return fmt.Sprintf("%s-%s-%0*d", prefix, year, digits, next)
}

// SP converts a NullString to *string.
func SP(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	return &ns.String
}

// FP converts a NullFloat64 to *float64.
func FP(nf sql.NullFloat64) *float64 {
	if !nf.Valid {
		return nil
	}
	return &nf.Float64
}
