package service

import (
	"context"
	"strings"

	"github.com/bwmarrin/snowflake"
	billingeventdomain "github.com/smallbiznis/netbill/internal/billingevent/domain"
	"github.com/smallbiznis/netbill/internal/clock"
	customerdomain "github.com/smallbiznis/netbill/internal/customer/domain"
	"github.com/smallbiznis/netbill/internal/observability/metrics"
	paymentdomain "github.com/smallbiznis/netbill/internal/payment/domain"
	"github.com/smallbiznis/netbill/internal/validation"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB           *gorm.DB
	Log          *zap.Logger
	GenID        *snowflake.Node
	Clock        clock.Clock
	Repo         paymentdomain.Repository
	CustomerRepo customerdomain.Repository
	Events       billingeventdomain.Emitter
	Metrics      *metrics.Metrics `optional:"true"`
}

type Service struct {
	db           *gorm.DB
	log          *zap.Logger
	genID        *snowflake.Node
	clock        clock.Clock
	repo         paymentdomain.Repository
	customerRepo customerdomain.Repository
	events       billingeventdomain.Emitter
	metrics      *metrics.Metrics
}

func NewService(p Params) paymentdomain.Service {
	return &Service{
		db:           p.DB,
		log:          p.Log.Named("payment.service"),
		genID:        p.GenID,
		clock:        p.Clock,
		repo:         p.Repo,
		customerRepo: p.CustomerRepo,
		events:       p.Events,
		metrics:      p.Metrics,
	}
}

func (s *Service) Record(ctx context.Context, req paymentdomain.RecordPaymentRequest) (paymentdomain.Payment, error) {
	req.Method = strings.TrimSpace(req.Method)
	if err := validation.Struct(req); err != nil {
		return paymentdomain.Payment{}, err
	}

	customer, err := s.customerRepo.FindByID(ctx, s.db, req.CustomerID)
	if err != nil {
		return paymentdomain.Payment{}, err
	}
	if customer == nil {
		return paymentdomain.Payment{}, paymentdomain.ErrCustomerNotFound
	}

	payment := paymentdomain.Payment{
		ID:          s.genID.Generate(),
		CustomerID:  req.CustomerID,
		Amount:      req.Amount,
		PaymentDate: s.clock.Now(),
		Method:      req.Method,
	}
	if err := s.repo.Insert(ctx, s.db, &payment); err != nil {
		return paymentdomain.Payment{}, err
	}
	return payment, nil
}

func (s *Service) ApplyToBalance(ctx context.Context, paymentID snowflake.ID) error {
	if paymentID == 0 {
		return paymentdomain.ErrInvalidID
	}

	var payment *paymentdomain.Payment
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		payment, err = s.repo.FindByID(ctx, tx, paymentID)
		if err != nil {
			return err
		}
		if payment == nil {
			return paymentdomain.ErrNotFound
		}

		now := s.clock.Now()
		affected, err := s.customerRepo.Credit(ctx, tx, payment.CustomerID, payment.Amount, now)
		if err != nil {
			return err
		}
		if affected == 0 {
			return paymentdomain.ErrCustomerNotFound
		}
		if err := s.repo.StampApplied(ctx, tx, paymentID, now); err != nil {
			return err
		}

		return s.events.Emit(ctx, tx, billingeventdomain.EventPaymentApplied, paymentID, "",
			map[string]any{
				"payment_id":  paymentID.String(),
				"customer_id": payment.CustomerID.String(),
				"amount":      payment.Amount,
			})
	})
	if err != nil {
		return err
	}

	s.log.Info("payment applied to balance",
		zap.String("payment_id", paymentID.String()),
		zap.String("customer_id", payment.CustomerID.String()),
		zap.Int64("amount", payment.Amount),
	)
	if s.metrics != nil {
		s.metrics.RecordPaymentApplied(ctx, payment.Method)
	}
	return nil
}

func (s *Service) GetByID(ctx context.Context, id snowflake.ID) (paymentdomain.Payment, error) {
	if id == 0 {
		return paymentdomain.Payment{}, paymentdomain.ErrInvalidID
	}
	item, err := s.repo.FindByID(ctx, s.db, id)
	if err != nil {
		return paymentdomain.Payment{}, err
	}
	if item == nil {
		return paymentdomain.Payment{}, paymentdomain.ErrNotFound
	}
	return *item, nil
}
