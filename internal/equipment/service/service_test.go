package service

import (
	"context"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/netbill/internal/clock"
	"github.com/smallbiznis/netbill/internal/equipment/domain"
	"github.com/smallbiznis/netbill/internal/equipment/repository"
	"github.com/smallbiznis/netbill/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func newTestService(t *testing.T) (domain.Service, *gorm.DB) {
	t.Helper()
	db := testutil.OpenDB(t)
	node, err := snowflake.NewNode(1)
	require.NoError(t, err)
	svc := New(Params{
		DB:    db,
		Log:   zap.NewNop(),
		GenID: node,
		Clock: clock.NewFakeClock(time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)),
		Repo:  repository.Provide(),
	})
	return svc, db
}

func TestAssignDecrementsStock(t *testing.T) {
	svc, db := newTestService(t)
	testutil.InsertEquipment(t, db, 1, 2)
	testutil.InsertEquipment(t, db, 2, 1)
	ctx := context.Background()

	var assigned []domain.ContractEquipment
	err := db.Transaction(func(tx *gorm.DB) error {
		var err error
		assigned, err = svc.Assign(ctx, tx, 50, []snowflake.ID{1, 2})
		return err
	})
	require.NoError(t, err)
	assert.Len(t, assigned, 2)
	assert.EqualValues(t, 1, testutil.Count(t, db, `SELECT stock_quantity FROM equipment WHERE id = 1`))
	assert.EqualValues(t, 0, testutil.Count(t, db, `SELECT stock_quantity FROM equipment WHERE id = 2`))

	listed, err := svc.ListByContract(ctx, 50)
	require.NoError(t, err)
	assert.Len(t, listed, 2)
}

func TestAssignOutOfStockRollsBack(t *testing.T) {
	svc, db := newTestService(t)
	testutil.InsertEquipment(t, db, 1, 3)
	testutil.InsertEquipment(t, db, 2, 0)
	ctx := context.Background()

	err := db.Transaction(func(tx *gorm.DB) error {
		_, err := svc.Assign(ctx, tx, 50, []snowflake.ID{1, 2})
		return err
	})
	assert.ErrorIs(t, err, domain.ErrOutOfStock)
	assert.EqualValues(t, 3, testutil.Count(t, db, `SELECT stock_quantity FROM equipment WHERE id = 1`))
	assert.Zero(t, testutil.Count(t, db, `SELECT COUNT(1) FROM contract_equipment`))
}

func TestAssignUnknownEquipment(t *testing.T) {
	svc, db := newTestService(t)
	err := db.Transaction(func(tx *gorm.DB) error {
		_, err := svc.Assign(context.Background(), tx, 50, []snowflake.ID{99})
		return err
	})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
