package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	billingeventdomain "github.com/smallbiznis/netbill/internal/billingevent/domain"
	"github.com/smallbiznis/netbill/internal/clock"
	invoicedomain "github.com/smallbiznis/netbill/internal/invoice/domain"
	"github.com/smallbiznis/netbill/internal/observability/metrics"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type ServiceParam struct {
	fx.In

	DB      *gorm.DB
	Log     *zap.Logger
	GenID   *snowflake.Node
	Clock   clock.Clock
	Repo    invoicedomain.Repository
	Events  billingeventdomain.Emitter
	Metrics *metrics.Metrics `optional:"true"`
}

type Service struct {
	db  *gorm.DB
	log *zap.Logger

	genID   *snowflake.Node
	clock   clock.Clock
	repo    invoicedomain.Repository
	events  billingeventdomain.Emitter
	metrics *metrics.Metrics
}

func NewService(p ServiceParam) invoicedomain.Service {
	return &Service{
		db:  p.DB,
		log: p.Log.Named("invoice.service"),

		genID:   p.GenID,
		clock:   p.Clock,
		repo:    p.Repo,
		events:  p.Events,
		metrics: p.Metrics,
	}
}

func (s *Service) CreateTx(ctx context.Context, tx *gorm.DB, draft invoicedomain.Draft) (invoicedomain.Invoice, error) {
	if draft.ContractID == 0 {
		return invoicedomain.Invoice{}, invoicedomain.ErrInvalidID
	}
	if draft.Amount < 0 {
		return invoicedomain.Invoice{}, invoicedomain.ErrInvalidAmount
	}

	now := s.clock.Now()
	issue := draft.IssueDate
	if issue.IsZero() {
		issue = now
	}
	invoice := invoicedomain.Invoice{
		ID:          s.genID.Generate(),
		ContractID:  draft.ContractID,
		Amount:      draft.Amount,
		IssueDate:   clock.DateOf(issue),
		DueDate:     clock.DateOf(draft.DueDate),
		Description: strings.TrimSpace(draft.Description),
		Status:      invoicedomain.InvoiceStatusPending,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.repo.Insert(ctx, tx, &invoice); err != nil {
		return invoicedomain.Invoice{}, err
	}

	payload := map[string]any{
		"invoice_id":  invoice.ID.String(),
		"contract_id": invoice.ContractID.String(),
		"amount":      invoice.Amount,
		"due_date":    invoice.DueDate.Format(time.DateOnly),
		"source":      draft.Source,
	}
	if draft.CustomerID != 0 {
		payload["customer_id"] = draft.CustomerID.String()
	}
	if err := s.events.Emit(ctx, tx, billingeventdomain.EventInvoiceCreated, invoice.ID,
		fmt.Sprintf("%s:%s", billingeventdomain.EventInvoiceCreated, invoice.ID), payload); err != nil {
		return invoicedomain.Invoice{}, err
	}

	if s.metrics != nil {
		s.metrics.RecordInvoiceCreated(ctx, draft.Source)
	}
	return invoice, nil
}

func (s *Service) GetByID(ctx context.Context, id snowflake.ID) (invoicedomain.Invoice, error) {
	if id == 0 {
		return invoicedomain.Invoice{}, invoicedomain.ErrInvalidID
	}
	item, err := s.repo.FindByID(ctx, s.db, id)
	if err != nil {
		return invoicedomain.Invoice{}, err
	}
	if item == nil {
		return invoicedomain.Invoice{}, invoicedomain.ErrNotFound
	}
	return *item, nil
}

func (s *Service) MarkPaid(ctx context.Context, id snowflake.ID) (bool, error) {
	if id == 0 {
		return false, invoicedomain.ErrInvalidID
	}

	paid := false
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		item, err := s.repo.FindByID(ctx, tx, id)
		if err != nil {
			return err
		}
		if item == nil {
			return invoicedomain.ErrNotFound
		}
		if !invoicedomain.CanTransition(item.Status, invoicedomain.InvoiceStatusPaid) {
			return nil
		}

		affected, err := s.repo.MarkPaid(ctx, tx, id, s.clock.Now())
		if err != nil {
			return err
		}
		if affected == 0 {
			return nil
		}
		paid = true
		return s.events.Emit(ctx, tx, billingeventdomain.EventInvoicePaid, id,
			fmt.Sprintf("%s:%s", billingeventdomain.EventInvoicePaid, id),
			map[string]any{
				"invoice_id": id.String(),
				"amount":     item.Amount,
				"source":     "manual",
			})
	})
	if err != nil {
		return false, err
	}
	if paid && s.metrics != nil {
		s.metrics.RecordInvoicePaid(ctx, "manual")
	}
	return paid, nil
}

func (s *Service) CheckOverdue(ctx context.Context) (int64, error) {
	now := s.clock.Now()
	today := clock.DateOf(now)

	var marked int64
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		affected, err := s.repo.MarkOverdue(ctx, tx, today, now)
		if err != nil {
			return err
		}
		marked = affected
		if affected == 0 {
			return nil
		}
		return s.events.Emit(ctx, tx, billingeventdomain.EventInvoiceOverdue, 0, "",
			map[string]any{
				"count": affected,
				"as_of": today.Format(time.DateOnly),
			})
	})
	if err != nil {
		return 0, err
	}

	if marked > 0 {
		s.log.Info("invoices marked overdue", zap.Int64("count", marked))
	}
	return marked, nil
}
