package service

import (
	"context"

	billingoverview "github.com/smallbiznis/netbill/internal/billingoverview/domain"
	invoicedomain "github.com/smallbiznis/netbill/internal/invoice/domain"
	paymentdomain "github.com/smallbiznis/netbill/internal/payment/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB       *gorm.DB
	Log      *zap.Logger
	Invoices invoicedomain.Repository
	Payments paymentdomain.Repository
}

type Service struct {
	db       *gorm.DB
	log      *zap.Logger
	invoices invoicedomain.Repository
	payments paymentdomain.Repository
}

func NewService(p Params) billingoverview.Service {
	return &Service{
		db:       p.DB,
		log:      p.Log.Named("billingoverview.service"),
		invoices: p.Invoices,
		payments: p.Payments,
	}
}

func (s *Service) GetSummary(ctx context.Context) (billingoverview.Summary, error) {
	totals, err := s.invoices.SumByStatus(ctx, s.db)
	if err != nil {
		return billingoverview.Summary{}, err
	}
	revenue, err := s.payments.SumAll(ctx, s.db)
	if err != nil {
		return billingoverview.Summary{}, err
	}

	summary := billingoverview.Summary{
		TotalRevenue:  revenue,
		PaidAmount:    totals[invoicedomain.InvoiceStatusPaid],
		PendingAmount: totals[invoicedomain.InvoiceStatusPending],
		OverdueAmount: totals[invoicedomain.InvoiceStatusOverdue],
	}
	for _, amount := range totals {
		summary.TotalInvoiced += amount
	}
	summary.CollectionRate = computeRate(summary.PaidAmount, summary.TotalInvoiced)
	summary.HasData = summary.TotalInvoiced > 0 || revenue > 0
	return summary, nil
}

// computeRate returns nil when nothing was invoiced.
func computeRate(collected, invoiced int64) *float64 {
	if invoiced <= 0 {
		return nil
	}
	rate := float64(collected) / float64(invoiced)
	return &rate
}
