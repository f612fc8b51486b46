package repository

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/netbill/internal/catalog/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) FindTariff(ctx context.Context, db *gorm.DB, id snowflake.ID) (*domain.Tariff, error) {
	var tariff domain.Tariff
	err := db.WithContext(ctx).Raw(
		`SELECT id, name, price, currency FROM tariffs WHERE id = ?`,
		id,
	).Scan(&tariff).Error
	if err != nil {
		return nil, err
	}
	if tariff.ID == 0 {
		return nil, nil
	}
	return &tariff, nil
}

func (r *repo) FirstService(ctx context.Context, db *gorm.DB, tariffID snowflake.ID) (*domain.Service, error) {
	var service domain.Service
	err := db.WithContext(ctx).Raw(
		`SELECT s.id, s.name
		 FROM tariff_services ts
		 JOIN services s ON s.id = ts.service_id
		 WHERE ts.tariff_id = ?
		 ORDER BY ts.position ASC, s.id ASC
		 LIMIT 1`,
		tariffID,
	).Scan(&service).Error
	if err != nil {
		return nil, err
	}
	if service.ID == 0 {
		return nil, nil
	}
	return &service, nil
}

func (r *repo) FindAddress(ctx context.Context, db *gorm.DB, id snowflake.ID) (*domain.Address, error) {
	var address domain.Address
	err := db.WithContext(ctx).Raw(
		`SELECT id, customer_id, line FROM addresses WHERE id = ?`,
		id,
	).Scan(&address).Error
	if err != nil {
		return nil, err
	}
	if address.ID == 0 {
		return nil, nil
	}
	return &address, nil
}
