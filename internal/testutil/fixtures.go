package testutil

import (
	"fmt"
	"testing"
	"time"

	"gorm.io/gorm"
)

func exec(t testing.TB, db *gorm.DB, sql string, args ...any) {
	t.Helper()
	if err := db.Exec(sql, args...).Error; err != nil {
		t.Fatalf("fixture failed: %v\n%s", err, sql)
	}
}

func InsertCustomer(t testing.TB, db *gorm.DB, id int64, balance int64, channel string) {
	t.Helper()
	now := time.Now().UTC()
	exec(t, db,
		`INSERT INTO customers (id, name, email, phone, status_id, balance, preferred_notification, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		id,
		fmt.Sprintf("Customer %d", id),
		fmt.Sprintf("customer%d@example.com", id),
		fmt.Sprintf("+380%09d", id%1000000000),
		StatusCustomerActive,
		balance,
		channel,
		now,
		now,
	)
}

func InsertAddress(t testing.TB, db *gorm.DB, id, customerID int64) {
	t.Helper()
	exec(t, db, `INSERT INTO addresses (id, customer_id, line) VALUES (?, ?, ?)`,
		id, customerID, fmt.Sprintf("Khreshchatyk St, %d", id))
}

// InsertTariff creates the tariff and one service per id, in position order.
func InsertTariff(t testing.TB, db *gorm.DB, id int64, name string, price int64, serviceIDs ...int64) {
	t.Helper()
	exec(t, db, `INSERT INTO tariffs (id, name, price, currency) VALUES (?, ?, ?, 'UAH')`, id, name, price)
	for i, serviceID := range serviceIDs {
		exec(t, db, `INSERT OR IGNORE INTO services (id, name) VALUES (?, ?)`,
			serviceID, fmt.Sprintf("Service %d", serviceID))
		exec(t, db, `INSERT INTO tariff_services (tariff_id, service_id, position) VALUES (?, ?, ?)`,
			id, serviceID, i)
	}
}

func InsertEquipment(t testing.TB, db *gorm.DB, id int64, stock int) {
	t.Helper()
	exec(t, db, `INSERT INTO equipment (id, name, stock_quantity) VALUES (?, ?, ?)`,
		id, fmt.Sprintf("Router %d", id), stock)
}

func InsertRequest(t testing.TB, db *gorm.DB, id, customerID, addressID, tariffID, statusID int64) {
	t.Helper()
	now := time.Now().UTC()
	exec(t, db,
		`INSERT INTO connection_requests (id, customer_id, address_id, tariff_id, status_id, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		id, customerID, addressID, tariffID, statusID, now, now)
}

type ContractRow struct {
	ID         int64
	CustomerID int64
	RequestID  int64
	AddressID  int64
	ServiceID  int64
	TariffID   *int64
	StartDate  time.Time
	EndDate    *time.Time
}

func InsertContract(t testing.TB, db *gorm.DB, row ContractRow) {
	t.Helper()
	exec(t, db,
		`INSERT INTO contracts (id, customer_id, connection_request_id, address_id, service_id, tariff_id, start_date, end_date, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		row.ID, row.CustomerID, row.RequestID, row.AddressID, row.ServiceID, row.TariffID,
		row.StartDate, row.EndDate, time.Now().UTC())
}

func InsertInvoice(t testing.TB, db *gorm.DB, id, contractID, amount int64, due time.Time, status string) {
	t.Helper()
	now := time.Now().UTC()
	exec(t, db,
		`INSERT INTO invoices (id, contract_id, amount, issue_date, due_date, description, status, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		id, contractID, amount, due.AddDate(0, 0, -30), due, "fixture invoice", status, now, now)
}

// Subscriber is a customer with one contract on a single-service tariff.
type Subscriber struct {
	CustomerID int64
	AddressID  int64
	TariffID   int64
	ServiceID  int64
	RequestID  int64
	ContractID int64
}

// SeedSubscriber derives every id from base so tests can seed several
// subscribers side by side.
func SeedSubscriber(t testing.TB, db *gorm.DB, base int64, price, balance int64, start time.Time, end *time.Time) Subscriber {
	t.Helper()
	s := Subscriber{
		CustomerID: base + 1,
		AddressID:  base + 2,
		TariffID:   base + 3,
		ServiceID:  base + 4,
		RequestID:  base + 5,
		ContractID: base + 6,
	}
	InsertCustomer(t, db, s.CustomerID, balance, "email")
	InsertAddress(t, db, s.AddressID, s.CustomerID)
	InsertTariff(t, db, s.TariffID, fmt.Sprintf("Fiber %d", base), price, s.ServiceID)
	InsertRequest(t, db, s.RequestID, s.CustomerID, s.AddressID, s.TariffID, StatusRequestApproved)
	tariffID := s.TariffID
	InsertContract(t, db, ContractRow{
		ID:         s.ContractID,
		CustomerID: s.CustomerID,
		RequestID:  s.RequestID,
		AddressID:  s.AddressID,
		ServiceID:  s.ServiceID,
		TariffID:   &tariffID,
		StartDate:  start,
		EndDate:    end,
	})
	return s
}

func Count(t testing.TB, db *gorm.DB, sql string, args ...any) int64 {
	t.Helper()
	var n int64
	if err := db.Raw(sql, args...).Scan(&n).Error; err != nil {
		t.Fatalf("count failed: %v\n%s", err, sql)
	}
	return n
}

func Balance(t testing.TB, db *gorm.DB, customerID int64) int64 {
	t.Helper()
	return Count(t, db, `SELECT balance FROM customers WHERE id = ?`, customerID)
}

func InvoiceStatus(t testing.TB, db *gorm.DB, invoiceID int64) string {
	t.Helper()
	var status string
	if err := db.Raw(`SELECT status FROM invoices WHERE id = ?`, invoiceID).Scan(&status).Error; err != nil {
		t.Fatalf("invoice status failed: %v", err)
	}
	return status
}
