package service

import (
	"context"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/netbill/internal/clock"
	customerdomain "github.com/smallbiznis/netbill/internal/customer/domain"
	statusdomain "github.com/smallbiznis/netbill/internal/status/domain"
	"github.com/smallbiznis/netbill/internal/supportticket/domain"
	"github.com/smallbiznis/netbill/internal/validation"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB        *gorm.DB
	Log       *zap.Logger
	GenID     *snowflake.Node
	Clock     clock.Clock
	Repo      domain.Repository
	Customers customerdomain.Service
	Statuses  statusdomain.Service
}

type Service struct {
	db        *gorm.DB
	log       *zap.Logger
	genID     *snowflake.Node
	clock     clock.Clock
	repo      domain.Repository
	customers customerdomain.Service
	statuses  statusdomain.Service
}

func New(p Params) domain.Service {
	return &Service{
		db:        p.DB,
		log:       p.Log.Named("supportticket.service"),
		genID:     p.GenID,
		clock:     p.Clock,
		repo:      p.Repo,
		customers: p.Customers,
		statuses:  p.Statuses,
	}
}

func (s *Service) Create(ctx context.Context, req domain.CreateTicketRequest) (domain.SupportTicket, error) {
	req.Subject = strings.TrimSpace(req.Subject)
	if err := validation.Struct(req); err != nil {
		return domain.SupportTicket{}, err
	}
	if _, err := s.customers.GetByID(ctx, req.CustomerID); err != nil {
		return domain.SupportTicket{}, err
	}

	statusID := req.StatusID
	if statusID == 0 {
		open, err := s.statuses.Resolve(ctx, statusdomain.ContextSupportTicket, statusdomain.LabelOpen)
		if err != nil {
			return domain.SupportTicket{}, err
		}
		statusID = open.ID
	}
	if err := s.statuses.Validate(ctx, statusID, statusdomain.ContextSupportTicket); err != nil {
		return domain.SupportTicket{}, err
	}

	now := s.clock.Now()
	ticket := domain.SupportTicket{
		ID:         s.genID.Generate(),
		CustomerID: req.CustomerID,
		Subject:    req.Subject,
		StatusID:   statusID,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := s.repo.Insert(ctx, s.db, &ticket); err != nil {
		return domain.SupportTicket{}, err
	}
	return ticket, nil
}

func (s *Service) Get(ctx context.Context, id snowflake.ID) (domain.SupportTicket, error) {
	if id == 0 {
		return domain.SupportTicket{}, domain.ErrInvalidID
	}
	item, err := s.repo.FindByID(ctx, s.db, id)
	if err != nil {
		return domain.SupportTicket{}, err
	}
	if item == nil {
		return domain.SupportTicket{}, domain.ErrNotFound
	}
	return *item, nil
}

func (s *Service) AssignTechnician(ctx context.Context, id snowflake.ID, technician string) error {
	if id == 0 {
		return domain.ErrInvalidID
	}
	technician = strings.TrimSpace(technician)
	if technician == "" {
		return validation.New("technician", validation.CodeRequired, "technician is required")
	}
	target, err := s.resolve(ctx, statusdomain.LabelInProgress)
	if err != nil {
		return err
	}
	affected, err := s.repo.Assign(ctx, s.db, id, target, technician, s.clock.Now())
	if err != nil {
		return err
	}
	if affected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (s *Service) MarkCompleted(ctx context.Context, id snowflake.ID) error {
	if id == 0 {
		return domain.ErrInvalidID
	}
	target, err := s.resolve(ctx, statusdomain.LabelCompleted)
	if err != nil {
		return err
	}
	affected, err := s.repo.UpdateStatus(ctx, s.db, id, target, s.clock.Now())
	if err != nil {
		return err
	}
	if affected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (s *Service) resolve(ctx context.Context, label string) (snowflake.ID, error) {
	status, err := s.statuses.Resolve(ctx, statusdomain.ContextSupportTicket, label)
	if err != nil {
		return 0, err
	}
	if err := s.statuses.Validate(ctx, status.ID, statusdomain.ContextSupportTicket); err != nil {
		return 0, err
	}
	return status.ID, nil
}
