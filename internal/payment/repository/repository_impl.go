package repository

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/netbill/internal/payment/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, payment *domain.Payment) error {
	return db.WithContext(ctx).Exec(
		`INSERT INTO payments (id, customer_id, amount, payment_date, method, applied_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		payment.ID,
		payment.CustomerID,
		payment.Amount,
		payment.PaymentDate,
		payment.Method,
		payment.AppliedAt,
	).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*domain.Payment, error) {
	var payment domain.Payment
	err := db.WithContext(ctx).Raw(
		`SELECT id, customer_id, amount, payment_date, method, applied_at
		 FROM payments WHERE id = ?`,
		id,
	).Scan(&payment).Error
	if err != nil {
		return nil, err
	}
	if payment.ID == 0 {
		return nil, nil
	}
	return &payment, nil
}

func (r *repo) StampApplied(ctx context.Context, db *gorm.DB, id snowflake.ID, now time.Time) error {
	return db.WithContext(ctx).Exec(
		`UPDATE payments SET applied_at = ? WHERE id = ?`,
		now,
		id,
	).Error
}

func (r *repo) SumAll(ctx context.Context, db *gorm.DB) (int64, error) {
	var total int64
	err := db.WithContext(ctx).Raw(`SELECT COALESCE(SUM(amount), 0) FROM payments`).Scan(&total).Error
	return total, err
}
