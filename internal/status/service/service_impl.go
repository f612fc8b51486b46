package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/netbill/internal/cache"
	"github.com/smallbiznis/netbill/internal/config"
	"github.com/smallbiznis/netbill/internal/status/domain"
	"github.com/smallbiznis/netbill/internal/validation"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB      *gorm.DB
	Log     *zap.Logger
	Repo    domain.Repository
	Billing *config.BillingConfigHolder `optional:"true"`
}

type Service struct {
	db      *gorm.DB
	log     *zap.Logger
	repo    domain.Repository
	billing *config.BillingConfigHolder

	byContext cache.Cache[string, []domain.Status]
	byID      cache.Cache[snowflake.ID, domain.Status]
}

func New(p Params) domain.Service {
	return &Service{
		db:        p.DB,
		log:       p.Log.Named("status.service"),
		repo:      p.Repo,
		billing:   p.Billing,
		byContext: cache.NewTTLCache[string, []domain.Status](),
		byID:      cache.NewTTLCache[snowflake.ID, domain.Status](),
	}
}

func (s *Service) StatusesByContext(ctx context.Context, contextName string) ([]domain.Status, error) {
	name := strings.TrimSpace(contextName)
	if name == "" {
		return []domain.Status{}, nil
	}
	if items, ok := s.byContext.Get(name); ok {
		return items, nil
	}

	items, err := s.repo.ListByContext(ctx, s.db, name)
	if err != nil {
		return nil, err
	}
	if items == nil {
		items = []domain.Status{}
	}

	ttl := s.cacheTTL()
	s.byContext.Set(name, items, ttl)
	for _, item := range items {
		s.byID.Set(item.ID, item, ttl)
	}
	return items, nil
}

func (s *Service) Resolve(ctx context.Context, contextName, label string) (domain.Status, error) {
	items, err := s.StatusesByContext(ctx, contextName)
	if err != nil {
		return domain.Status{}, err
	}
	for _, item := range items {
		if item.Label == label {
			return item, nil
		}
	}
	return domain.Status{}, validation.New("status", validation.CodeInvalid,
		fmt.Sprintf("%q is not a %s status", label, contextName))
}

func (s *Service) Validate(ctx context.Context, statusID snowflake.ID, expectedContext string) error {
	item, ok := s.byID.Get(statusID)
	if !ok {
		found, err := s.repo.FindByID(ctx, s.db, statusID)
		if err != nil {
			return err
		}
		if found == nil {
			return validation.New("status", validation.CodeInvalid, "unknown status")
		}
		item = *found
		s.byID.Set(item.ID, item, s.cacheTTL())
	}

	if item.ContextName != expectedContext {
		return validation.New("status", validation.CodeContextMismatch,
			fmt.Sprintf("status %q belongs to %s, expected %s", item.Label, item.ContextName, expectedContext))
	}
	return nil
}

func (s *Service) cacheTTL() time.Duration {
	if s.billing == nil {
		return config.DefaultBillingConfig().StatusCacheTTL
	}
	return s.billing.Get().StatusCacheTTL
}
