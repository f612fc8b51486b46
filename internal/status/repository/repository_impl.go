package repository

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/netbill/internal/status/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) ListByContext(ctx context.Context, db *gorm.DB, contextName string) ([]domain.Status, error) {
	var items []domain.Status
	err := db.WithContext(ctx).Raw(
		`SELECT s.id, s.context_id, s.label, c.name AS context_name
		 FROM statuses s
		 JOIN status_contexts c ON c.id = s.context_id
		 WHERE c.name = ?
		 ORDER BY s.id ASC`,
		contextName,
	).Scan(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*domain.Status, error) {
	var item domain.Status
	err := db.WithContext(ctx).Raw(
		`SELECT s.id, s.context_id, s.label, c.name AS context_name
		 FROM statuses s
		 JOIN status_contexts c ON c.id = s.context_id
		 WHERE s.id = ?`,
		id,
	).Scan(&item).Error
	if err != nil {
		return nil, err
	}
	if item.ID == 0 {
		return nil, nil
	}
	return &item, nil
}
