package repository

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/netbill/internal/customer/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

const customerColumns = `id, name, email, phone, status_id, balance, preferred_notification, created_at, updated_at`

func (r *repo) Insert(ctx context.Context, db *gorm.DB, customer *domain.Customer) error {
	return db.WithContext(ctx).Exec(
		`INSERT INTO customers (`+customerColumns+`)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		customer.ID,
		customer.Name,
		customer.Email,
		customer.Phone,
		customer.StatusID,
		customer.Balance,
		customer.PreferredNotification,
		customer.CreatedAt,
		customer.UpdatedAt,
	).Error
}

func (r *repo) InsertAddress(ctx context.Context, db *gorm.DB, address *domain.Address) error {
	return db.WithContext(ctx).Exec(
		`INSERT INTO addresses (id, customer_id, line) VALUES (?, ?, ?)`,
		address.ID,
		address.CustomerID,
		address.Line,
	).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*domain.Customer, error) {
	return r.find(ctx, db, `SELECT `+customerColumns+` FROM customers WHERE id = ?`, id)
}

func (r *repo) FindByIDForUpdate(ctx context.Context, db *gorm.DB, id snowflake.ID) (*domain.Customer, error) {
	return r.find(ctx, db, `SELECT `+customerColumns+` FROM customers WHERE id = ? FOR UPDATE`, id)
}

func (r *repo) find(ctx context.Context, db *gorm.DB, query string, id snowflake.ID) (*domain.Customer, error) {
	var customer domain.Customer
	if err := db.WithContext(ctx).Raw(query, id).Scan(&customer).Error; err != nil {
		return nil, err
	}
	if customer.ID == 0 {
		return nil, nil
	}
	return &customer, nil
}

func (r *repo) UpdateStatus(ctx context.Context, db *gorm.DB, id, statusID snowflake.ID, now time.Time) (int64, error) {
	result := db.WithContext(ctx).Exec(
		`UPDATE customers SET status_id = ?, updated_at = ? WHERE id = ?`,
		statusID,
		now,
		id,
	)
	return result.RowsAffected, result.Error
}

func (r *repo) Credit(ctx context.Context, db *gorm.DB, id snowflake.ID, amount int64, now time.Time) (int64, error) {
	result := db.WithContext(ctx).Exec(
		`UPDATE customers SET balance = balance + ?, updated_at = ? WHERE id = ?`,
		amount,
		now,
		id,
	)
	return result.RowsAffected, result.Error
}

func (r *repo) Debit(ctx context.Context, db *gorm.DB, id snowflake.ID, amount int64, now time.Time) (int64, error) {
	result := db.WithContext(ctx).Exec(
		`UPDATE customers SET balance = balance - ?, updated_at = ?
		 WHERE id = ? AND balance >= ?`,
		amount,
		now,
		id,
		amount,
	)
	return result.RowsAffected, result.Error
}

func (r *repo) ListIDsWithPositiveBalance(ctx context.Context, db *gorm.DB) ([]snowflake.ID, error) {
	var ids []snowflake.ID
	err := db.WithContext(ctx).Raw(
		`SELECT id FROM customers WHERE balance > 0 ORDER BY id ASC`,
	).Scan(&ids).Error
	if err != nil {
		return nil, err
	}
	return ids, nil
}

func (r *repo) SumActiveTariffs(ctx context.Context, db *gorm.DB, id snowflake.ID, today time.Time) (int64, error) {
	var total int64
	err := db.WithContext(ctx).Raw(
		`SELECT COALESCE(SUM(t.price), 0)
		 FROM contracts c
		 JOIN tariffs t ON t.id = c.tariff_id
		 WHERE c.customer_id = ? AND (c.end_date IS NULL OR c.end_date > ?)`,
		id,
		today,
	).Scan(&total).Error
	return total, err
}
