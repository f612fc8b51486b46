package service

import (
	"context"
	"errors"
	"strings"

	"github.com/bwmarrin/snowflake"
	catalogdomain "github.com/smallbiznis/netbill/internal/catalog/domain"
	"github.com/smallbiznis/netbill/internal/clock"
	"github.com/smallbiznis/netbill/internal/config"
	"github.com/smallbiznis/netbill/internal/connectionrequest/domain"
	contractdomain "github.com/smallbiznis/netbill/internal/contract/domain"
	equipmentdomain "github.com/smallbiznis/netbill/internal/equipment/domain"
	invoicedomain "github.com/smallbiznis/netbill/internal/invoice/domain"
	"github.com/smallbiznis/netbill/internal/observability/metrics"
	statusdomain "github.com/smallbiznis/netbill/internal/status/domain"
	"github.com/smallbiznis/netbill/internal/validation"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const (
	partialEquipmentNotFound = "equipment_not_found"
	partialOutOfStock        = "equipment_out_of_stock"
	partialInvoice           = "invoice_failed"
)

type Params struct {
	fx.In

	DB        *gorm.DB
	Log       *zap.Logger
	GenID     *snowflake.Node
	Clock     clock.Clock
	Repo      domain.Repository
	Statuses  statusdomain.Service
	Catalog   catalogdomain.Catalog
	Contracts contractdomain.Service
	Equipment equipmentdomain.Service
	Invoices  invoicedomain.Service
	Billing   *config.BillingConfigHolder `optional:"true"`
	Metrics   *metrics.Metrics            `optional:"true"`
}

type Service struct {
	db        *gorm.DB
	log       *zap.Logger
	genID     *snowflake.Node
	clock     clock.Clock
	repo      domain.Repository
	statuses  statusdomain.Service
	catalog   catalogdomain.Catalog
	contracts contractdomain.Service
	equipment equipmentdomain.Service
	invoices  invoicedomain.Service
	billing   *config.BillingConfigHolder
	metrics   *metrics.Metrics
}

func New(p Params) domain.Service {
	return &Service{
		db:        p.DB,
		log:       p.Log.Named("connectionrequest.service"),
		genID:     p.GenID,
		clock:     p.Clock,
		repo:      p.Repo,
		statuses:  p.Statuses,
		catalog:   p.Catalog,
		contracts: p.Contracts,
		equipment: p.Equipment,
		invoices:  p.Invoices,
		billing:   p.Billing,
		metrics:   p.Metrics,
	}
}

func (s *Service) Create(ctx context.Context, req domain.CreateRequest) (domain.ConnectionRequest, error) {
	req.Notes = strings.TrimSpace(req.Notes)
	if err := validation.Struct(req); err != nil {
		return domain.ConnectionRequest{}, err
	}

	address, err := s.catalog.GetAddress(ctx, req.AddressID)
	if err != nil {
		if errors.Is(err, catalogdomain.ErrAddressNotFound) {
			return domain.ConnectionRequest{}, validation.New("address_id", validation.CodeInvalid, "address does not exist")
		}
		return domain.ConnectionRequest{}, err
	}
	if !address.OwnedBy(req.CustomerID) {
		return domain.ConnectionRequest{}, validation.New("address_id", validation.CodeOwnership,
			"address does not belong to the customer")
	}
	if _, err := s.catalog.GetTariff(ctx, req.TariffID); err != nil {
		if errors.Is(err, catalogdomain.ErrTariffNotFound) {
			return domain.ConnectionRequest{}, validation.New("tariff_id", validation.CodeInvalid, "tariff does not exist")
		}
		return domain.ConnectionRequest{}, err
	}

	statusID := req.StatusID
	if statusID == 0 {
		created, err := s.statuses.Resolve(ctx, statusdomain.ContextConnectionRequest, statusdomain.LabelNew)
		if err != nil {
			return domain.ConnectionRequest{}, err
		}
		statusID = created.ID
	}
	if err := s.statuses.Validate(ctx, statusID, statusdomain.ContextConnectionRequest); err != nil {
		return domain.ConnectionRequest{}, err
	}

	now := s.clock.Now()
	request := domain.ConnectionRequest{
		ID:         s.genID.Generate(),
		CustomerID: req.CustomerID,
		AddressID:  req.AddressID,
		TariffID:   req.TariffID,
		StatusID:   statusID,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if req.Notes != "" {
		notes := req.Notes
		request.Notes = &notes
	}
	if err := s.repo.Insert(ctx, s.db, &request); err != nil {
		return domain.ConnectionRequest{}, err
	}
	return request, nil
}

func (s *Service) Get(ctx context.Context, id snowflake.ID) (domain.ConnectionRequest, error) {
	if id == 0 {
		return domain.ConnectionRequest{}, domain.ErrInvalidID
	}
	item, err := s.repo.FindByID(ctx, s.db, id)
	if err != nil {
		return domain.ConnectionRequest{}, err
	}
	if item == nil {
		return domain.ConnectionRequest{}, domain.ErrNotFound
	}
	return *item, nil
}

// Approve commits the status change and the contract together, then
// attaches equipment and issues the first invoice in a second transaction.
// A failure in the second step never rolls back the contract.
func (s *Service) Approve(ctx context.Context, id snowflake.ID, req domain.ApproveRequest) (domain.ApproveResult, error) {
	request, err := s.Get(ctx, id)
	if err != nil {
		return domain.ApproveResult{}, err
	}

	denied, err := s.statuses.Resolve(ctx, statusdomain.ContextConnectionRequest, statusdomain.LabelDenied)
	if err != nil {
		return domain.ApproveResult{}, err
	}
	if request.StatusID == denied.ID {
		return domain.ApproveResult{}, domain.ErrConflict
	}
	existing, err := s.contracts.GetByRequest(ctx, id)
	if err != nil {
		return domain.ApproveResult{}, err
	}
	if existing != nil {
		return domain.ApproveResult{}, domain.ErrConflict
	}

	today := clock.Today(s.clock)
	start := today
	if req.StartDate != nil {
		start = clock.DateOf(*req.StartDate)
	}
	if err := contractdomain.ValidateDates(start, req.EndDate); err != nil {
		return domain.ApproveResult{}, err
	}

	tariff, err := s.catalog.GetTariff(ctx, request.TariffID)
	if err != nil {
		return domain.ApproveResult{}, err
	}
	service, err := s.catalog.FirstService(ctx, request.TariffID)
	if err != nil {
		return domain.ApproveResult{}, err
	}
	approved, err := s.statuses.Resolve(ctx, statusdomain.ContextConnectionRequest, statusdomain.LabelApproved)
	if err != nil {
		return domain.ApproveResult{}, err
	}

	var contract contractdomain.Contract
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		affected, err := s.repo.UpdateStatus(ctx, tx, id, approved.ID, s.clock.Now())
		if err != nil {
			return err
		}
		if affected == 0 {
			return domain.ErrNotFound
		}

		tariffID := tariff.ID
		contract, err = s.contracts.CreateTx(ctx, tx, contractdomain.Draft{
			CustomerID:          request.CustomerID,
			ConnectionRequestID: request.ID,
			AddressID:           request.AddressID,
			ServiceID:           service.ID,
			TariffID:            &tariffID,
			StartDate:           start,
			EndDate:             req.EndDate,
		})
		return err
	})
	if err != nil {
		if errors.Is(err, contractdomain.ErrConflict) {
			return domain.ApproveResult{}, domain.ErrConflict
		}
		return domain.ApproveResult{}, err
	}

	result := domain.ApproveResult{ContractID: contract.ID}

	var invoice invoicedomain.Invoice
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := s.equipment.Assign(ctx, tx, contract.ID, req.EquipmentIDs); err != nil {
			return err
		}
		var err error
		invoice, err = s.invoices.CreateTx(ctx, tx, invoicedomain.Draft{
			ContractID:  contract.ID,
			CustomerID:  request.CustomerID,
			Amount:      tariff.Price,
			IssueDate:   today,
			DueDate:     today.AddDate(0, 0, s.dueDays()),
			Description: invoicedomain.ApprovalDescription(tariff.Name),
			Source:      invoicedomain.SourceApproval,
		})
		return err
	})
	if err != nil {
		reason := partialReason(err)
		s.log.Warn("approval completed partially",
			zap.String("request_id", id.String()),
			zap.String("contract_id", contract.ID.String()),
			zap.String("reason", reason),
			zap.Error(err),
		)
		if s.metrics != nil {
			s.metrics.RecordApprovalPartialFailure(ctx, reason)
		}
		result.Partial = err
		return result, nil
	}

	result.InvoiceID = invoice.ID
	s.log.Info("connection request approved",
		zap.String("request_id", id.String()),
		zap.String("contract_id", contract.ID.String()),
		zap.String("invoice_id", invoice.ID.String()),
	)
	return result, nil
}

func (s *Service) Decline(ctx context.Context, id snowflake.ID) error {
	if _, err := s.Get(ctx, id); err != nil {
		return err
	}
	existing, err := s.contracts.GetByRequest(ctx, id)
	if err != nil {
		return err
	}
	if existing != nil {
		return domain.ErrConflict
	}
	return s.setStatus(ctx, id, statusdomain.LabelDenied)
}

func (s *Service) Complete(ctx context.Context, id snowflake.ID) error {
	request, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	created, err := s.statuses.Resolve(ctx, statusdomain.ContextConnectionRequest, statusdomain.LabelNew)
	if err != nil {
		return err
	}
	if request.StatusID != created.ID {
		return domain.ErrConflict
	}
	return s.setStatus(ctx, id, statusdomain.LabelCompleted)
}

func (s *Service) setStatus(ctx context.Context, id snowflake.ID, label string) error {
	target, err := s.statuses.Resolve(ctx, statusdomain.ContextConnectionRequest, label)
	if err != nil {
		return err
	}
	affected, err := s.repo.UpdateStatus(ctx, s.db, id, target.ID, s.clock.Now())
	if err != nil {
		return err
	}
	if affected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (s *Service) dueDays() int {
	if s.billing == nil {
		return config.DefaultBillingConfig().ApprovalInvoiceDueDays
	}
	return s.billing.Get().ApprovalInvoiceDueDays
}

func partialReason(err error) string {
	switch {
	case errors.Is(err, equipmentdomain.ErrNotFound):
		return partialEquipmentNotFound
	case errors.Is(err, equipmentdomain.ErrOutOfStock):
		return partialOutOfStock
	default:
		return partialInvoice
	}
}
