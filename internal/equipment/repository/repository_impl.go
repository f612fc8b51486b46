package repository

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/netbill/internal/equipment/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*domain.Equipment, error) {
	var item domain.Equipment
	err := db.WithContext(ctx).Raw(
		`SELECT id, name, stock_quantity FROM equipment WHERE id = ?`,
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

func (r *repo) DecrementStock(ctx context.Context, db *gorm.DB, id snowflake.ID) (int64, error) {
	result := db.WithContext(ctx).Exec(
		`UPDATE equipment SET stock_quantity = stock_quantity - 1
		 WHERE id = ? AND stock_quantity > 0`,
		id,
	)
	return result.RowsAffected, result.Error
}

func (r *repo) InsertAssignment(ctx context.Context, db *gorm.DB, assignment *domain.ContractEquipment) error {
	return db.WithContext(ctx).Exec(
		`INSERT INTO contract_equipment (id, contract_id, equipment_id, assigned_at)
		 VALUES (?, ?, ?, ?)`,
		assignment.ID,
		assignment.ContractID,
		assignment.EquipmentID,
		assignment.AssignedAt,
	).Error
}

func (r *repo) ListByContract(ctx context.Context, db *gorm.DB, contractID snowflake.ID) ([]domain.ContractEquipment, error) {
	var items []domain.ContractEquipment
	err := db.WithContext(ctx).Raw(
		`SELECT id, contract_id, equipment_id, assigned_at
		 FROM contract_equipment WHERE contract_id = ? ORDER BY id ASC`,
		contractID,
	).Scan(&items).Error
	return items, err
}
