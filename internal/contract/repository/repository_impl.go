package repository

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/netbill/internal/contract/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

const contractColumns = `id, customer_id, connection_request_id, address_id, service_id, tariff_id, start_date, end_date, created_at`

func (r *repo) Insert(ctx context.Context, db *gorm.DB, contract *domain.Contract) error {
	return db.WithContext(ctx).Exec(
		`INSERT INTO contracts (`+contractColumns+`)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		contract.ID,
		contract.CustomerID,
		contract.ConnectionRequestID,
		contract.AddressID,
		contract.ServiceID,
		contract.TariffID,
		contract.StartDate,
		contract.EndDate,
		contract.CreatedAt,
	).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*domain.Contract, error) {
	return r.findOne(ctx, db, `SELECT `+contractColumns+` FROM contracts WHERE id = ?`, id)
}

func (r *repo) FindByRequestID(ctx context.Context, db *gorm.DB, requestID snowflake.ID) (*domain.Contract, error) {
	return r.findOne(ctx, db, `SELECT `+contractColumns+` FROM contracts WHERE connection_request_id = ?`, requestID)
}

func (r *repo) findOne(ctx context.Context, db *gorm.DB, query string, arg snowflake.ID) (*domain.Contract, error) {
	var contract domain.Contract
	if err := db.WithContext(ctx).Raw(query, arg).Scan(&contract).Error; err != nil {
		return nil, err
	}
	if contract.ID == 0 {
		return nil, nil
	}
	return &contract, nil
}

func (r *repo) Terminate(ctx context.Context, db *gorm.DB, id snowflake.ID, today time.Time) (int64, error) {
	result := db.WithContext(ctx).Exec(
		`UPDATE contracts SET end_date = ?
		 WHERE id = ? AND (end_date IS NULL OR end_date > ?) AND start_date < ?`,
		today,
		id,
		today,
		today,
	)
	return result.RowsAffected, result.Error
}

func (r *repo) ListActive(ctx context.Context, db *gorm.DB, today time.Time) ([]domain.Contract, error) {
	var items []domain.Contract
	err := db.WithContext(ctx).Raw(
		`SELECT `+contractColumns+` FROM contracts
		 WHERE end_date IS NULL OR end_date > ?
		 ORDER BY id ASC`,
		today,
	).Scan(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}
