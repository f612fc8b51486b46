package service

import (
	"context"
	"fmt"
	"time"

	"github.com/bwmarrin/snowflake"
	billingeventdomain "github.com/smallbiznis/netbill/internal/billingevent/domain"
	"github.com/smallbiznis/netbill/internal/clock"
	"github.com/smallbiznis/netbill/internal/contract/domain"
	"github.com/smallbiznis/netbill/internal/validation"
	pkgdb "github.com/smallbiznis/netbill/pkg/db"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB     *gorm.DB
	Log    *zap.Logger
	GenID  *snowflake.Node
	Clock  clock.Clock
	Repo   domain.Repository
	Events billingeventdomain.Emitter
}

type Service struct {
	db     *gorm.DB
	log    *zap.Logger
	genID  *snowflake.Node
	clock  clock.Clock
	repo   domain.Repository
	events billingeventdomain.Emitter
}

func New(p Params) domain.Service {
	return &Service{
		db:     p.DB,
		log:    p.Log.Named("contract.service"),
		genID:  p.GenID,
		clock:  p.Clock,
		repo:   p.Repo,
		events: p.Events,
	}
}

func (s *Service) CreateTx(ctx context.Context, tx *gorm.DB, draft domain.Draft) (domain.Contract, error) {
	start := clock.DateOf(draft.StartDate)
	var end *time.Time
	if draft.EndDate != nil {
		d := clock.DateOf(*draft.EndDate)
		end = &d
	}
	if err := domain.ValidateDates(start, end); err != nil {
		return domain.Contract{}, err
	}

	existing, err := s.repo.FindByRequestID(ctx, tx, draft.ConnectionRequestID)
	if err != nil {
		return domain.Contract{}, err
	}
	if existing != nil {
		return domain.Contract{}, domain.ErrConflict
	}

	contract := domain.Contract{
		ID:                  s.genID.Generate(),
		CustomerID:          draft.CustomerID,
		ConnectionRequestID: draft.ConnectionRequestID,
		AddressID:           draft.AddressID,
		ServiceID:           draft.ServiceID,
		TariffID:            draft.TariffID,
		StartDate:           start,
		EndDate:             end,
		CreatedAt:           s.clock.Now(),
	}
	if err := s.repo.Insert(ctx, tx, &contract); err != nil {
		if pkgdb.IsDuplicateKeyErr(err) {
			return domain.Contract{}, domain.ErrConflict
		}
		return domain.Contract{}, err
	}

	payload := map[string]any{
		"contract_id":           contract.ID.String(),
		"customer_id":           contract.CustomerID.String(),
		"connection_request_id": contract.ConnectionRequestID.String(),
		"start_date":            contract.StartDate.Format(time.DateOnly),
	}
	if err := s.events.Emit(ctx, tx, billingeventdomain.EventContractCreated, contract.ID,
		fmt.Sprintf("%s:%s", billingeventdomain.EventContractCreated, contract.ID), payload); err != nil {
		return domain.Contract{}, err
	}
	return contract, nil
}

func (s *Service) Terminate(ctx context.Context, id snowflake.ID) (bool, error) {
	if id == 0 {
		return false, domain.ErrInvalidID
	}
	today := clock.Today(s.clock)

	terminated := false
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		contract, err := s.repo.FindByID(ctx, tx, id)
		if err != nil {
			return err
		}
		if contract == nil {
			return domain.ErrNotFound
		}
		if contract.EndDate != nil && !contract.EndDate.After(today) {
			return nil
		}
		if !contract.StartDate.Before(today) {
			return validation.New("end_date", validation.CodeDateOrder,
				"contract cannot be terminated on or before its start date")
		}

		affected, err := s.repo.Terminate(ctx, tx, id, today)
		if err != nil {
			return err
		}
		if affected == 0 {
			return nil
		}
		terminated = true

		return s.events.Emit(ctx, tx, billingeventdomain.EventContractTerminated, id,
			fmt.Sprintf("%s:%s", billingeventdomain.EventContractTerminated, id),
			map[string]any{
				"contract_id": id.String(),
				"end_date":    today.Format(time.DateOnly),
			})
	})
	if err != nil {
		return false, err
	}

	if terminated {
		s.log.Info("contract terminated",
			zap.String("contract_id", id.String()),
			zap.Time("end_date", today),
		)
	}
	return terminated, nil
}

func (s *Service) Get(ctx context.Context, id snowflake.ID) (domain.Contract, error) {
	if id == 0 {
		return domain.Contract{}, domain.ErrInvalidID
	}
	item, err := s.repo.FindByID(ctx, s.db, id)
	if err != nil {
		return domain.Contract{}, err
	}
	if item == nil {
		return domain.Contract{}, domain.ErrNotFound
	}
	return *item, nil
}

func (s *Service) GetByRequest(ctx context.Context, requestID snowflake.ID) (*domain.Contract, error) {
	return s.repo.FindByRequestID(ctx, s.db, requestID)
}

func (s *Service) ListActive(ctx context.Context, now time.Time) ([]domain.Contract, error) {
	return s.repo.ListActive(ctx, s.db, clock.DateOf(now))
}
