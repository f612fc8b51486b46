package repository

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/netbill/internal/supportticket/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, ticket *domain.SupportTicket) error {
	return db.WithContext(ctx).Exec(
		`INSERT INTO support_tickets (id, customer_id, subject, status_id, technician, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		ticket.ID,
		ticket.CustomerID,
		ticket.Subject,
		ticket.StatusID,
		ticket.Technician,
		ticket.CreatedAt,
		ticket.UpdatedAt,
	).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*domain.SupportTicket, error) {
	var ticket domain.SupportTicket
	err := db.WithContext(ctx).Raw(
		`SELECT id, customer_id, subject, status_id, technician, created_at, updated_at
		 FROM support_tickets WHERE id = ?`,
		id,
	).Scan(&ticket).Error
	if err != nil {
		return nil, err
	}
	if ticket.ID == 0 {
		return nil, nil
	}
	return &ticket, nil
}

func (r *repo) UpdateStatus(ctx context.Context, db *gorm.DB, id, statusID snowflake.ID, now time.Time) (int64, error) {
	result := db.WithContext(ctx).Exec(
		`UPDATE support_tickets SET status_id = ?, updated_at = ? WHERE id = ?`,
		statusID, now, id,
	)
	return result.RowsAffected, result.Error
}

func (r *repo) Assign(ctx context.Context, db *gorm.DB, id, statusID snowflake.ID, technician string, now time.Time) (int64, error) {
	result := db.WithContext(ctx).Exec(
		`UPDATE support_tickets SET technician = ?, status_id = ?, updated_at = ? WHERE id = ?`,
		technician, statusID, now, id,
	)
	return result.RowsAffected, result.Error
}
