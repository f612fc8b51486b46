package service

import (
	"context"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/netbill/internal/clock"
	"github.com/smallbiznis/netbill/internal/customer/domain"
	statusdomain "github.com/smallbiznis/netbill/internal/status/domain"
	"github.com/smallbiznis/netbill/internal/validation"
	pkgdb "github.com/smallbiznis/netbill/pkg/db"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB       *gorm.DB
	Log      *zap.Logger
	GenID    *snowflake.Node
	Clock    clock.Clock
	Repo     domain.Repository
	Statuses statusdomain.Service
}

type Service struct {
	db       *gorm.DB
	log      *zap.Logger
	genID    *snowflake.Node
	clock    clock.Clock
	repo     domain.Repository
	statuses statusdomain.Service
}

func New(p Params) domain.Service {
	return &Service{
		db:       p.DB,
		log:      p.Log.Named("customer.service"),
		genID:    p.GenID,
		clock:    p.Clock,
		repo:     p.Repo,
		statuses: p.Statuses,
	}
}

func (s *Service) Create(ctx context.Context, req domain.CreateCustomerRequest) (domain.Customer, error) {
	req.Name = strings.TrimSpace(req.Name)
	req.Email = strings.TrimSpace(req.Email)
	req.Phone = strings.TrimSpace(req.Phone)
	if req.PreferredNotification == "" {
		req.PreferredNotification = domain.NotifyEmail
	}
	if err := validation.Struct(req); err != nil {
		return domain.Customer{}, err
	}

	statusID := req.StatusID
	if statusID == 0 {
		active, err := s.statuses.Resolve(ctx, statusdomain.ContextCustomer, statusdomain.LabelActive)
		if err != nil {
			return domain.Customer{}, err
		}
		statusID = active.ID
	}
	if err := s.statuses.Validate(ctx, statusID, statusdomain.ContextCustomer); err != nil {
		return domain.Customer{}, err
	}

	now := s.clock.Now()
	customer := domain.Customer{
		ID:                    s.genID.Generate(),
		Name:                  req.Name,
		Email:                 req.Email,
		Phone:                 req.Phone,
		StatusID:              statusID,
		PreferredNotification: req.PreferredNotification,
		CreatedAt:             now,
		UpdatedAt:             now,
	}
	if err := s.repo.Insert(ctx, s.db, &customer); err != nil {
		if pkgdb.IsDuplicateKeyErr(err) {
			return domain.Customer{}, validation.New("phone", validation.CodeInvalid, "phone is already registered")
		}
		return domain.Customer{}, err
	}
	return customer, nil
}

func (s *Service) AddAddress(ctx context.Context, req domain.AddAddressRequest) (domain.Address, error) {
	req.Line = strings.TrimSpace(req.Line)
	if err := validation.Struct(req); err != nil {
		return domain.Address{}, err
	}
	if _, err := s.GetByID(ctx, req.CustomerID); err != nil {
		return domain.Address{}, err
	}

	address := domain.Address{
		ID:         s.genID.Generate(),
		CustomerID: req.CustomerID,
		Line:       req.Line,
	}
	if err := s.repo.InsertAddress(ctx, s.db, &address); err != nil {
		return domain.Address{}, err
	}
	return address, nil
}

func (s *Service) GetByID(ctx context.Context, id snowflake.ID) (domain.Customer, error) {
	if id == 0 {
		return domain.Customer{}, domain.ErrInvalidID
	}
	item, err := s.repo.FindByID(ctx, s.db, id)
	if err != nil {
		return domain.Customer{}, err
	}
	if item == nil {
		return domain.Customer{}, domain.ErrNotFound
	}
	return *item, nil
}

func (s *Service) UpdateStatus(ctx context.Context, id, statusID snowflake.ID) error {
	if id == 0 {
		return domain.ErrInvalidID
	}
	if err := s.statuses.Validate(ctx, statusID, statusdomain.ContextCustomer); err != nil {
		return err
	}
	affected, err := s.repo.UpdateStatus(ctx, s.db, id, statusID, s.clock.Now())
	if err != nil {
		return err
	}
	if affected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (s *Service) TotalMonthlyPayment(ctx context.Context, id snowflake.ID) (int64, error) {
	if _, err := s.GetByID(ctx, id); err != nil {
		return 0, err
	}
	return s.repo.SumActiveTariffs(ctx, s.db, id, clock.Today(s.clock))
}
