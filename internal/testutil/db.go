// Package testutil opens in-memory sqlite databases that mirror the
// postgres schema closely enough for service and scheduler tests.
package testutil

import (
	"fmt"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Seeded status ids, kept in step with the status registry migration.
const (
	ContextConnectionRequest int64 = 1
	ContextCustomer          int64 = 2
	ContextSupportTicket     int64 = 3

	StatusRequestNew       int64 = 101
	StatusRequestApproved  int64 = 102
	StatusRequestDenied    int64 = 103
	StatusRequestCompleted int64 = 104

	StatusCustomerActive    int64 = 201
	StatusCustomerSuspended int64 = 202
	StatusCustomerClosed    int64 = 203

	StatusTicketOpen       int64 = 301
	StatusTicketInProgress int64 = 302
	StatusTicketCompleted  int64 = 303
)

var dbSeq atomic.Int64

var schema = []string{
	`CREATE TABLE status_contexts (
		id INTEGER PRIMARY KEY,
		name TEXT NOT NULL UNIQUE
	)`,
	`CREATE TABLE statuses (
		id INTEGER PRIMARY KEY,
		context_id INTEGER NOT NULL,
		label TEXT NOT NULL,
		UNIQUE (context_id, label)
	)`,
	`CREATE TABLE customers (
		id INTEGER PRIMARY KEY,
		name TEXT NOT NULL,
		email TEXT NOT NULL,
		phone TEXT NOT NULL UNIQUE,
		status_id INTEGER NOT NULL,
		balance INTEGER NOT NULL DEFAULT 0,
		preferred_notification TEXT NOT NULL DEFAULT 'email',
		created_at DATETIME,
		updated_at DATETIME
	)`,
	`CREATE TABLE addresses (
		id INTEGER PRIMARY KEY,
		customer_id INTEGER NOT NULL,
		line TEXT NOT NULL
	)`,
	`CREATE TABLE tariffs (
		id INTEGER PRIMARY KEY,
		name TEXT NOT NULL,
		price INTEGER NOT NULL,
		currency TEXT NOT NULL DEFAULT 'UAH'
	)`,
	`CREATE TABLE services (
		id INTEGER PRIMARY KEY,
		name TEXT NOT NULL
	)`,
	`CREATE TABLE tariff_services (
		tariff_id INTEGER NOT NULL,
		service_id INTEGER NOT NULL,
		position INTEGER NOT NULL DEFAULT 0,
		PRIMARY KEY (tariff_id, service_id)
	)`,
	`CREATE TABLE equipment (
		id INTEGER PRIMARY KEY,
		name TEXT NOT NULL,
		stock_quantity INTEGER NOT NULL DEFAULT 0 CHECK (stock_quantity >= 0)
	)`,
	`CREATE TABLE connection_requests (
		id INTEGER PRIMARY KEY,
		customer_id INTEGER NOT NULL,
		address_id INTEGER NOT NULL,
		tariff_id INTEGER NOT NULL,
		status_id INTEGER NOT NULL,
		notes TEXT,
		created_at DATETIME,
		updated_at DATETIME
	)`,
	`CREATE TABLE contracts (
		id INTEGER PRIMARY KEY,
		customer_id INTEGER NOT NULL,
		connection_request_id INTEGER NOT NULL UNIQUE,
		address_id INTEGER NOT NULL,
		service_id INTEGER NOT NULL,
		tariff_id INTEGER,
		start_date DATETIME NOT NULL,
		end_date DATETIME,
		created_at DATETIME
	)`,
	`CREATE TABLE contract_equipment (
		id INTEGER PRIMARY KEY,
		contract_id INTEGER NOT NULL,
		equipment_id INTEGER NOT NULL,
		assigned_at DATETIME
	)`,
	`CREATE TABLE support_tickets (
		id INTEGER PRIMARY KEY,
		customer_id INTEGER NOT NULL,
		subject TEXT NOT NULL,
		status_id INTEGER NOT NULL,
		technician TEXT,
		created_at DATETIME,
		updated_at DATETIME
	)`,
	`CREATE TABLE invoices (
		id INTEGER PRIMARY KEY,
		contract_id INTEGER NOT NULL,
		amount INTEGER NOT NULL,
		issue_date DATETIME NOT NULL,
		due_date DATETIME NOT NULL,
		description TEXT NOT NULL,
		status TEXT NOT NULL DEFAULT 'pending',
		paid_at DATETIME,
		created_at DATETIME,
		updated_at DATETIME
	)`,
	`CREATE TABLE payments (
		id INTEGER PRIMARY KEY,
		customer_id INTEGER NOT NULL,
		amount INTEGER NOT NULL CHECK (amount > 0),
		payment_date DATETIME NOT NULL,
		method TEXT NOT NULL,
		applied_at DATETIME
	)`,
	`CREATE TABLE billing_events (
		id INTEGER PRIMARY KEY,
		event_type TEXT NOT NULL,
		aggregate_id INTEGER NOT NULL,
		payload TEXT NOT NULL DEFAULT '{}',
		dedupe_key TEXT UNIQUE,
		published BOOLEAN NOT NULL DEFAULT 0,
		published_at DATETIME,
		created_at DATETIME
	)`,
	`INSERT INTO status_contexts (id, name) VALUES
		(1, 'ConnectionRequest'), (2, 'Customer'), (3, 'SupportTicket')`,
	`INSERT INTO statuses (id, context_id, label) VALUES
		(101, 1, 'New'), (102, 1, 'Approved'), (103, 1, 'Denied'), (104, 1, 'Completed'),
		(201, 2, 'Active'), (202, 2, 'Suspended'), (203, 2, 'Closed'),
		(301, 3, 'Open'), (302, 3, 'In Progress'), (303, 3, 'Completed')`,
}

// OpenDB returns an isolated in-memory database with the full schema and
// seeded status registry. FOR UPDATE clauses are stripped since sqlite
// serializes writers anyway.
func OpenDB(t testing.TB) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:netbill_%d_%d?mode=memory&cache=shared", time.Now().UnixNano(), dbSeq.Add(1))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
		NowFunc: func() time.Time {
			return time.Now().UTC()
		},
	})
	if err != nil {
		t.Fatalf("failed to open sqlite: %v", err)
	}

	stripLocking := func(d *gorm.DB) {
		sql := d.Statement.SQL.String()
		if strings.Contains(sql, "FOR UPDATE") {
			newSQL := strings.ReplaceAll(sql, "FOR UPDATE SKIP LOCKED", "")
			newSQL = strings.ReplaceAll(newSQL, "FOR UPDATE", "")
			d.Statement.SQL.Reset()
			d.Statement.SQL.WriteString(newSQL)
		}
	}
	if err := db.Callback().Query().Before("gorm:query").Register("sqlite_strip_locking", stripLocking); err != nil {
		t.Fatalf("failed to register query callback: %v", err)
	}
	if err := db.Callback().Row().Before("gorm:row").Register("sqlite_strip_locking_row", stripLocking); err != nil {
		t.Fatalf("failed to register row callback: %v", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("failed to get sql db: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	for _, stmt := range schema {
		if err := db.Exec(stmt).Error; err != nil {
			t.Fatalf("failed to apply schema: %v\n%s", err, stmt)
		}
	}
	return db
}
