package domain

import "context"

// Summary is the financial overview across all customers. Amounts are in
// minor units.
type Summary struct {
	TotalRevenue   int64    `json:"total_revenue"`
	TotalInvoiced  int64    `json:"total_invoiced"`
	PaidAmount     int64    `json:"paid_amount"`
	PendingAmount  int64    `json:"pending_amount"`
	OverdueAmount  int64    `json:"overdue_amount"`
	CollectionRate *float64 `json:"collection_rate,omitempty"`
	HasData        bool     `json:"has_data"`
}

// Service exposes read-only billing overview data.
type Service interface {
	GetSummary(ctx context.Context) (Summary, error)
}
