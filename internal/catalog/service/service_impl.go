package service

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/netbill/internal/catalog/domain"
	"go.uber.org/fx"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB   *gorm.DB
	Repo domain.Repository
}

type Service struct {
	db   *gorm.DB
	repo domain.Repository
}

func New(p Params) domain.Catalog {
	return &Service{db: p.DB, repo: p.Repo}
}

func (s *Service) GetTariff(ctx context.Context, id snowflake.ID) (domain.Tariff, error) {
	item, err := s.repo.FindTariff(ctx, s.db, id)
	if err != nil {
		return domain.Tariff{}, err
	}
	if item == nil {
		return domain.Tariff{}, domain.ErrTariffNotFound
	}
	return *item, nil
}

func (s *Service) FirstService(ctx context.Context, tariffID snowflake.ID) (domain.Service, error) {
	item, err := s.repo.FirstService(ctx, s.db, tariffID)
	if err != nil {
		return domain.Service{}, err
	}
	if item == nil {
		return domain.Service{}, domain.ErrServiceNotFound
	}
	return *item, nil
}

func (s *Service) GetAddress(ctx context.Context, id snowflake.ID) (domain.Address, error) {
	item, err := s.repo.FindAddress(ctx, s.db, id)
	if err != nil {
		return domain.Address{}, err
	}
	if item == nil {
		return domain.Address{}, domain.ErrAddressNotFound
	}
	return *item, nil
}
