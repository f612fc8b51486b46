package repository

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/netbill/internal/connectionrequest/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, request *domain.ConnectionRequest) error {
	return db.WithContext(ctx).Exec(
		`INSERT INTO connection_requests (id, customer_id, address_id, tariff_id, status_id, notes, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		request.ID,
		request.CustomerID,
		request.AddressID,
		request.TariffID,
		request.StatusID,
		request.Notes,
		request.CreatedAt,
		request.UpdatedAt,
	).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*domain.ConnectionRequest, error) {
	var request domain.ConnectionRequest
	err := db.WithContext(ctx).Raw(
		`SELECT id, customer_id, address_id, tariff_id, status_id, notes, created_at, updated_at
		 FROM connection_requests WHERE id = ?`,
		id,
	).Scan(&request).Error
	if err != nil {
		return nil, err
	}
	if request.ID == 0 {
		return nil, nil
	}
	return &request, nil
}

func (r *repo) UpdateStatus(ctx context.Context, db *gorm.DB, id, statusID snowflake.ID, now time.Time) (int64, error) {
	result := db.WithContext(ctx).Exec(
		`UPDATE connection_requests SET status_id = ?, updated_at = ? WHERE id = ?`,
		statusID,
		now,
		id,
	)
	return result.RowsAffected, result.Error
}
