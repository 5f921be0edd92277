package ledger

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"fintrack/internal/database"
	"fintrack/internal/logger"
	"fintrack/internal/models"
	"fintrack/internal/testutil"
)

func TestReconcile(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)
	uow := database.NewUnitOfWork(db)
	ctx := context.Background()

	user := testutil.CreateTestUser(t, db)
	healthy := testutil.CreateTestAccountWithBalance(t, db, user.ID, "100")
	drifting := testutil.CreateTestAccountWithBalance(t, db, user.ID, "100")
	// Written behind the engine's back.
	testutil.CreateTestTransaction(t, db, user.ID, drifting.ID, models.TransactionTypeExpense, "12.50")

	core, logs := observer.New(zapcore.WarnLevel)
	defer logger.Replace(zap.New(core))()

	report, err := Reconcile(ctx, uow, false)
	require.NoError(t, err)
	assert.Equal(t, 2, report.AccountsChecked)
	require.Len(t, report.Drifts, 1)
	require.Equal(t, 1, logs.FilterMessage("ledger drift detected").Len())

	d := report.Drifts[0]
	assert.Equal(t, drifting.ID, d.AccountID)
	assert.Equal(t, user.ID, d.UserID)
	assert.True(t, d.Recorded.Equal(dec("100")))
	assert.True(t, d.Expected.Equal(dec("87.50")))
	assert.True(t, d.Difference.Equal(dec("-12.50")))
	assert.False(t, d.Fixed)
	testutil.AssertBalance(t, db, drifting.ID, "100")

	report, err = Reconcile(ctx, uow, true)
	require.NoError(t, err)
	require.Len(t, report.Drifts, 1)
	assert.True(t, report.Drifts[0].Fixed)
	testutil.AssertBalance(t, db, drifting.ID, "87.50")
	testutil.AssertBalance(t, db, healthy.ID, "100")
	testutil.AssertLedgerConsistent(t, db)

	report, err = Reconcile(ctx, uow, false)
	require.NoError(t, err)
	assert.Empty(t, report.Drifts)
	assert.Equal(t, 2, logs.FilterMessage("ledger drift detected").Len(), "a clean run logs nothing")
}

func TestReconcile_AccountWithoutTransactions(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)
	user := testutil.CreateTestUser(t, db)
	account := testutil.CreateTestAccount(t, db, user.ID)
	require.NoError(t, db.Model(&models.Account{}).Where("id = ?", account.ID).Update("balance", dec("5")).Error)

	report, err := Reconcile(context.Background(), database.NewUnitOfWork(db), true)
	require.NoError(t, err)
	require.Len(t, report.Drifts, 1)
	assert.True(t, report.Drifts[0].Expected.IsZero())
	testutil.AssertBalance(t, db, account.ID, "0")
}
