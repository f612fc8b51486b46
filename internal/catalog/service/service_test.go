package service

import (
	"context"
	"testing"

	"github.com/smallbiznis/netbill/internal/catalog/domain"
	"github.com/smallbiznis/netbill/internal/catalog/repository"
	"github.com/smallbiznis/netbill/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFirstServiceFollowsPosition(t *testing.T) {
	db := testutil.OpenDB(t)
	testutil.InsertTariff(t, db, 1, "Fiber 500", 30000, 12, 11)
	catalog := New(Params{DB: db, Repo: repository.Provide()})
	ctx := context.Background()

	tariff, err := catalog.GetTariff(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, "Fiber 500", tariff.Name)
	assert.EqualValues(t, 30000, tariff.Price)

	first, err := catalog.FirstService(ctx, 1)
	require.NoError(t, err)
	assert.EqualValues(t, 12, first.ID)

	_, err = catalog.GetTariff(ctx, 2)
	assert.ErrorIs(t, err, domain.ErrTariffNotFound)

	testutil.InsertTariff(t, db, 3, "Empty", 100)
	_, err = catalog.FirstService(ctx, 3)
	assert.ErrorIs(t, err, domain.ErrServiceNotFound)
}

func TestGetAddress(t *testing.T) {
	db := testutil.OpenDB(t)
	testutil.InsertCustomer(t, db, 5, 0, "email")
	testutil.InsertAddress(t, db, 6, 5)
	catalog := New(Params{DB: db, Repo: repository.Provide()})

	addr, err := catalog.GetAddress(context.Background(), 6)
	require.NoError(t, err)
	assert.True(t, addr.OwnedBy(5))
	assert.False(t, addr.OwnedBy(7))

	_, err = catalog.GetAddress(context.Background(), 60)
	assert.ErrorIs(t, err, domain.ErrAddressNotFound)
}
