package service

import (
	"context"
	"fmt"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/netbill/internal/clock"
	"github.com/smallbiznis/netbill/internal/equipment/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB    *gorm.DB
	Log   *zap.Logger
	GenID *snowflake.Node
	Clock clock.Clock
	Repo  domain.Repository
}

type Service struct {
	db    *gorm.DB
	log   *zap.Logger
	genID *snowflake.Node
	clock clock.Clock
	repo  domain.Repository
}

func New(p Params) domain.Service {
	return &Service{
		db:    p.DB,
		log:   p.Log.Named("equipment.service"),
		genID: p.GenID,
		clock: p.Clock,
		repo:  p.Repo,
	}
}

func (s *Service) Assign(ctx context.Context, tx *gorm.DB, contractID snowflake.ID, equipmentIDs []snowflake.ID) ([]domain.ContractEquipment, error) {
	now := s.clock.Now()
	assigned := make([]domain.ContractEquipment, 0, len(equipmentIDs))
	for _, id := range equipmentIDs {
		item, err := s.repo.FindByID(ctx, tx, id)
		if err != nil {
			return nil, err
		}
		if item == nil {
			return nil, fmt.Errorf("equipment %s: %w", id, domain.ErrNotFound)
		}

		affected, err := s.repo.DecrementStock(ctx, tx, id)
		if err != nil {
			return nil, err
		}
		if affected == 0 {
			return nil, fmt.Errorf("equipment %s: %w", id, domain.ErrOutOfStock)
		}

		assignment := domain.ContractEquipment{
			ID:          s.genID.Generate(),
			ContractID:  contractID,
			EquipmentID: id,
			AssignedAt:  now,
		}
		if err := s.repo.InsertAssignment(ctx, tx, &assignment); err != nil {
			return nil, err
		}
		assigned = append(assigned, assignment)
	}
	return assigned, nil
}

func (s *Service) ListByContract(ctx context.Context, contractID snowflake.ID) ([]domain.ContractEquipment, error) {
	return s.repo.ListByContract(ctx, s.db, contractID)
}
