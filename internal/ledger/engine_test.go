package ledger

import (
	"context"
	"math/rand"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"fintrack/internal/database"
	apperrors "fintrack/internal/errors"
	"fintrack/internal/models"
	"fintrack/internal/testutil"
)

func setupEngine(t *testing.T) (*Engine, *gorm.DB) {
	t.Helper()
	db := testutil.SetupTestDB(t)
	t.Cleanup(func() { testutil.TeardownTestDB(t, db) })
	return NewEngine(database.NewUnitOfWork(db)), db
}

func countTransactions(t *testing.T, db *gorm.DB) int64 {
	t.Helper()
	var n int64
	require.NoError(t, db.Model(&models.Transaction{}).Count(&n).Error)
	return n
}

func ptr[T any](v T) *T { return &v }

func TestApplyCreate_TypeDrivesSign(t *testing.T) {
	engine, db := setupEngine(t)
	ctx := context.Background()
	user := testutil.CreateTestUser(t, db)

	incomeAcct := testutil.CreateTestAccountWithBalance(t, db, user.ID, "100")
	expenseAcct := testutil.CreateTestAccountWithBalance(t, db, user.ID, "100")

	_, err := engine.ApplyCreate(ctx, user.ID, NewTransaction{
		AccountID: incomeAcct.ID, Type: models.TransactionTypeIncome, Amount: dec("40"),
	})
	require.NoError(t, err)
	_, err = engine.ApplyCreate(ctx, user.ID, NewTransaction{
		AccountID: expenseAcct.ID, Type: models.TransactionTypeExpense, Amount: dec("40"),
	})
	require.NoError(t, err)

	testutil.AssertBalance(t, db, incomeAcct.ID, "140")
	testutil.AssertBalance(t, db, expenseAcct.ID, "60")
	testutil.AssertLedgerConsistent(t, db)
}

func TestApplyCreate_StoresTransaction(t *testing.T) {
	engine, db := setupEngine(t)
	fixed := time.Date(2024, time.March, 1, 10, 0, 0, 0, time.UTC)
	engine.now = func() time.Time { return fixed }

	user := testutil.CreateTestUser(t, db)
	account := testutil.CreateTestAccount(t, db, user.ID)
	category := testutil.CreateTestCategory(t, db, models.CategoryTypeBoth)

	created, err := engine.ApplyCreate(context.Background(), user.ID, NewTransaction{
		AccountID:   account.ID,
		CategoryID:  &category.ID,
		Type:        models.TransactionTypeExpense,
		Amount:      dec("12.34"),
		Description: "Groceries",
	})
	require.NoError(t, err)
	assert.NotZero(t, created.ID)
	assert.Equal(t, user.ID, created.UserID)
	assert.Equal(t, fixed, created.Date)

	var stored models.Transaction
	require.NoError(t, db.First(&stored, created.ID).Error)
	assert.Equal(t, "Groceries", stored.Description)
	require.NotNil(t, stored.CategoryID)
	assert.Equal(t, category.ID, *stored.CategoryID)
	assert.True(t, stored.Amount.Equal(dec("12.34")))
	testutil.AssertBalance(t, db, account.ID, "-12.34")
}

func TestApplyCreate_Rejections(t *testing.T) {
	engine, db := setupEngine(t)
	ctx := context.Background()
	user := testutil.CreateTestUser(t, db)
	stranger := testutil.CreateTestUser(t, db)
	account := testutil.CreateTestAccountWithBalance(t, db, user.ID, "100")
	foreign := testutil.CreateTestAccountWithBalance(t, db, stranger.ID, "100")
	expenseCat := testutil.CreateTestCategory(t, db, models.CategoryTypeExpense)
	missingCat := uint(9999)
	before := countTransactions(t, db)

	tests := []struct {
		name string
		in   NewTransaction
		code string
	}{
		{"negative amount", NewTransaction{AccountID: account.ID, Type: models.TransactionTypeExpense, Amount: dec("-5")}, "INVALID_INPUT"},
		{"zero amount", NewTransaction{AccountID: account.ID, Type: models.TransactionTypeIncome, Amount: dec("0")}, "INVALID_INPUT"},
		{"sub-cent amount", NewTransaction{AccountID: account.ID, Type: models.TransactionTypeIncome, Amount: dec("0.001")}, "INVALID_INPUT"},
		{"unknown type", NewTransaction{AccountID: account.ID, Type: "transfer", Amount: dec("5")}, "INVALID_INPUT"},
		{"missing account", NewTransaction{AccountID: 9999, Type: models.TransactionTypeIncome, Amount: dec("5")}, "ACCOUNT_NOT_FOUND"},
		{"someone else's account", NewTransaction{AccountID: foreign.ID, Type: models.TransactionTypeIncome, Amount: dec("5")}, "ACCOUNT_NOT_FOUND"},
		{"incompatible category", NewTransaction{AccountID: account.ID, CategoryID: &expenseCat.ID, Type: models.TransactionTypeIncome, Amount: dec("5")}, "INCOMPATIBLE_CATEGORY"},
		{"missing category", NewTransaction{AccountID: account.ID, CategoryID: &missingCat, Type: models.TransactionTypeIncome, Amount: dec("5")}, "CATEGORY_NOT_FOUND"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := engine.ApplyCreate(ctx, user.ID, tt.in)
			testutil.AssertAppError(t, err, tt.code)
		})
	}

	testutil.AssertBalance(t, db, account.ID, "100")
	testutil.AssertBalance(t, db, foreign.ID, "100")
	assert.Equal(t, before, countTransactions(t, db))
}

func TestApplyCreateThenDelete_NetZero(t *testing.T) {
	engine, db := setupEngine(t)
	ctx := context.Background()
	user := testutil.CreateTestUser(t, db)
	account := testutil.CreateTestAccountWithBalance(t, db, user.ID, "75.50")

	for _, typ := range []models.TransactionType{models.TransactionTypeIncome, models.TransactionTypeExpense} {
		created, err := engine.ApplyCreate(ctx, user.ID, NewTransaction{AccountID: account.ID, Type: typ, Amount: dec("19.99")})
		require.NoError(t, err)

		deleted, err := engine.ApplyDelete(ctx, user.ID, created.ID)
		require.NoError(t, err)
		assert.Equal(t, created.ID, deleted.ID)

		testutil.AssertBalance(t, db, account.ID, "75.50")
	}

	// Only the opening balance remains.
	assert.Equal(t, int64(1), countTransactions(t, db))
}

func TestApplyUpdate_AccountMove(t *testing.T) {
	engine, db := setupEngine(t)
	ctx := context.Background()
	user := testutil.CreateTestUser(t, db)
	x := testutil.CreateTestAccountWithBalance(t, db, user.ID, "100")
	y := testutil.CreateTestAccountWithBalance(t, db, user.ID, "50")

	txn, err := engine.ApplyCreate(ctx, user.ID, NewTransaction{AccountID: x.ID, Type: models.TransactionTypeExpense, Amount: dec("30")})
	require.NoError(t, err)
	testutil.AssertBalance(t, db, x.ID, "70")

	updated, err := engine.ApplyUpdate(ctx, user.ID, txn.ID, TransactionChanges{AccountID: &y.ID})
	require.NoError(t, err)
	assert.Equal(t, y.ID, updated.AccountID)

	testutil.AssertBalance(t, db, x.ID, "100")
	testutil.AssertBalance(t, db, y.ID, "20")
	testutil.AssertLedgerConsistent(t, db)
}

func TestApplyUpdate_AllFieldsAtOnce(t *testing.T) {
	engine, db := setupEngine(t)
	ctx := context.Background()
	user := testutil.CreateTestUser(t, db)
	x := testutil.CreateTestAccountWithBalance(t, db, user.ID, "100")
	y := testutil.CreateTestAccountWithBalance(t, db, user.ID, "100")
	salary := testutil.CreateTestCategory(t, db, models.CategoryTypeIncome)
	food := testutil.CreateTestCategory(t, db, models.CategoryTypeExpense)

	txn, err := engine.ApplyCreate(ctx, user.ID, NewTransaction{
		AccountID: x.ID, CategoryID: &salary.ID, Type: models.TransactionTypeIncome, Amount: dec("40"),
	})
	require.NoError(t, err)

	newDate := time.Date(2024, time.January, 2, 0, 0, 0, 0, time.UTC)
	foodID := &food.ID
	updated, err := engine.ApplyUpdate(ctx, user.ID, txn.ID, TransactionChanges{
		AccountID:   &y.ID,
		CategoryID:  &foodID,
		Type:        ptr(models.TransactionTypeExpense),
		Amount:      ptr(dec("10")),
		Description: ptr("moved"),
		Date:        &newDate,
	})
	require.NoError(t, err)
	assert.Equal(t, "moved", updated.Description)
	assert.Equal(t, newDate, updated.Date)

	testutil.AssertBalance(t, db, x.ID, "100")
	testutil.AssertBalance(t, db, y.ID, "90")
	testutil.AssertLedgerConsistent(t, db)
}

func TestApplyUpdate_SameAccountAmountAndType(t *testing.T) {
	engine, db := setupEngine(t)
	ctx := context.Background()
	user := testutil.CreateTestUser(t, db)
	account := testutil.CreateTestAccountWithBalance(t, db, user.ID, "100")

	txn, err := engine.ApplyCreate(ctx, user.ID, NewTransaction{AccountID: account.ID, Type: models.TransactionTypeExpense, Amount: dec("30")})
	require.NoError(t, err)

	_, err = engine.ApplyUpdate(ctx, user.ID, txn.ID, TransactionChanges{Amount: ptr(dec("45"))})
	require.NoError(t, err)
	testutil.AssertBalance(t, db, account.ID, "55")

	_, err = engine.ApplyUpdate(ctx, user.ID, txn.ID, TransactionChanges{Type: ptr(models.TransactionTypeIncome)})
	require.NoError(t, err)
	testutil.AssertBalance(t, db, account.ID, "145")

	// Description only: no balance change, no version bump.
	before := testutil.ReloadAccount(t, db, account.ID).Version
	_, err = engine.ApplyUpdate(ctx, user.ID, txn.ID, TransactionChanges{Description: ptr("note")})
	require.NoError(t, err)
	assert.Equal(t, before, testutil.ReloadAccount(t, db, account.ID).Version)
	testutil.AssertLedgerConsistent(t, db)
}

func TestApplyUpdate_ClearCategory(t *testing.T) {
	engine, db := setupEngine(t)
	ctx := context.Background()
	user := testutil.CreateTestUser(t, db)
	account := testutil.CreateTestAccount(t, db, user.ID)
	category := testutil.CreateTestCategory(t, db, models.CategoryTypeExpense)

	txn, err := engine.ApplyCreate(ctx, user.ID, NewTransaction{
		AccountID: account.ID, CategoryID: &category.ID, Type: models.TransactionTypeExpense, Amount: dec("5"),
	})
	require.NoError(t, err)

	var none *uint
	updated, err := engine.ApplyUpdate(ctx, user.ID, txn.ID, TransactionChanges{CategoryID: &none})
	require.NoError(t, err)
	assert.Nil(t, updated.CategoryID)

	var stored models.Transaction
	require.NoError(t, db.First(&stored, txn.ID).Error)
	assert.Nil(t, stored.CategoryID)
}

func TestApplyUpdate_RejectionsLeaveEverythingUnchanged(t *testing.T) {
	engine, db := setupEngine(t)
	ctx := context.Background()
	user := testutil.CreateTestUser(t, db)
	stranger := testutil.CreateTestUser(t, db)
	account := testutil.CreateTestAccountWithBalance(t, db, user.ID, "100")
	foreign := testutil.CreateTestAccountWithBalance(t, db, stranger.ID, "100")
	food := testutil.CreateTestCategory(t, db, models.CategoryTypeExpense)

	txn, err := engine.ApplyCreate(ctx, user.ID, NewTransaction{
		AccountID: account.ID, CategoryID: &food.ID, Type: models.TransactionTypeExpense, Amount: dec("30"),
	})
	require.NoError(t, err)

	tests := []struct {
		name string
		id   uint
		ch   TransactionChanges
		code string
	}{
		{"negative amount", txn.ID, TransactionChanges{Amount: ptr(dec("-5"))}, "INVALID_INPUT"},
		{"type incompatible with category", txn.ID, TransactionChanges{Type: ptr(models.TransactionTypeIncome)}, "INCOMPATIBLE_CATEGORY"},
		{"move to someone else's account", txn.ID, TransactionChanges{AccountID: &foreign.ID}, "ACCOUNT_NOT_FOUND"},
		{"missing transaction", 9999, TransactionChanges{Amount: ptr(dec("1"))}, "TRANSACTION_NOT_FOUND"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := engine.ApplyUpdate(ctx, user.ID, tt.id, tt.ch)
			testutil.AssertAppError(t, err, tt.code)
		})
	}

	testutil.AssertBalance(t, db, account.ID, "70")
	testutil.AssertBalance(t, db, foreign.ID, "100")

	var stored models.Transaction
	require.NoError(t, db.First(&stored, txn.ID).Error)
	assert.Equal(t, models.TransactionTypeExpense, stored.Type)
	assert.Equal(t, account.ID, stored.AccountID)
	assert.True(t, stored.Amount.Equal(dec("30")))
}

func TestOwnershipIsolation(t *testing.T) {
	engine, db := setupEngine(t)
	ctx := context.Background()
	owner := testutil.CreateTestUser(t, db)
	intruder := testutil.CreateTestUser(t, db)
	account := testutil.CreateTestAccountWithBalance(t, db, owner.ID, "100")
	intruderAcct := testutil.CreateTestAccountWithBalance(t, db, intruder.ID, "10")

	txn, err := engine.ApplyCreate(ctx, owner.ID, NewTransaction{AccountID: account.ID, Type: models.TransactionTypeExpense, Amount: dec("25")})
	require.NoError(t, err)

	_, err = engine.ApplyUpdate(ctx, intruder.ID, txn.ID, TransactionChanges{AccountID: &intruderAcct.ID, Amount: ptr(dec("1"))})
	testutil.AssertAppError(t, err, "TRANSACTION_NOT_FOUND")

	_, err = engine.ApplyDelete(ctx, intruder.ID, txn.ID)
	testutil.AssertAppError(t, err, "TRANSACTION_NOT_FOUND")

	testutil.AssertBalance(t, db, account.ID, "75")
	testutil.AssertBalance(t, db, intruderAcct.ID, "10")
	assert.Equal(t, int64(3), countTransactions(t, db))
}

func TestApplyDelete_Missing(t *testing.T) {
	engine, db := setupEngine(t)
	user := testutil.CreateTestUser(t, db)

	_, err := engine.ApplyDelete(context.Background(), user.ID, 42)
	testutil.AssertAppError(t, err, "TRANSACTION_NOT_FOUND")
}

func TestApplyAdjustments_StaleVersionRollsBack(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)
	uow := database.NewUnitOfWork(db)
	user := testutil.CreateTestUser(t, db)
	account := testutil.CreateTestAccountWithBalance(t, db, user.ID, "100")

	stale := testutil.ReloadAccount(t, db, account.ID)
	// Another writer got in after our read.
	require.NoError(t, db.Model(&models.Account{}).Where("id = ?", account.ID).Update("version", stale.Version+1).Error)
	before := countTransactions(t, db)

	err := uow.Do(context.Background(), func(tx *gorm.DB) error {
		row := &models.Transaction{UserID: user.ID, AccountID: account.ID, Type: models.TransactionTypeIncome, Amount: dec("5"), Date: time.Now()}
		if err := tx.Create(row).Error; err != nil {
			return err
		}
		return applyAdjustments(tx, map[uint]*models.Account{account.ID: stale}, CreateAdjustments(EntryOf(row)))
	})

	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrConsistencyConflict)
	assert.True(t, apperrors.IsRetryable(err))
	testutil.AssertBalance(t, db, account.ID, "100")
	assert.Equal(t, before, countTransactions(t, db))
}

func TestApplyAdjustments_BumpsVersion(t *testing.T) {
	engine, db := setupEngine(t)
	user := testutil.CreateTestUser(t, db)
	account := testutil.CreateTestAccount(t, db, user.ID)
	before := testutil.ReloadAccount(t, db, account.ID).Version

	_, err := engine.ApplyCreate(context.Background(), user.ID, NewTransaction{AccountID: account.ID, Type: models.TransactionTypeIncome, Amount: dec("1")})
	require.NoError(t, err)

	assert.Equal(t, before+1, testutil.ReloadAccount(t, db, account.ID).Version)
}

func TestInvariant_RandomSequence(t *testing.T) {
	engine, db := setupEngine(t)
	ctx := context.Background()
	user := testutil.CreateTestUser(t, db)

	accounts := []uint{
		testutil.CreateTestAccountWithBalance(t, db, user.ID, "100").ID,
		testutil.CreateTestAccountWithBalance(t, db, user.ID, "-20").ID,
		testutil.CreateTestAccount(t, db, user.ID).ID,
	}
	types := []models.TransactionType{models.TransactionTypeIncome, models.TransactionTypeExpense}

	rng := rand.New(rand.NewSource(42))
	amount := func() decimal.Decimal { return decimal.New(int64(rng.Intn(100000)+1), -2) }

	var live []uint
	for i := 0; i < 200; i++ {
		switch op := rng.Intn(3); {
		case op == 0 || len(live) == 0:
			created, err := engine.ApplyCreate(ctx, user.ID, NewTransaction{
				AccountID: accounts[rng.Intn(len(accounts))],
				Type:      types[rng.Intn(2)],
				Amount:    amount(),
			})
			require.NoError(t, err)
			live = append(live, created.ID)
		case op == 1:
			id := live[rng.Intn(len(live))]
			ch := TransactionChanges{}
			if rng.Intn(2) == 0 {
				ch.AccountID = &accounts[rng.Intn(len(accounts))]
			}
			if rng.Intn(2) == 0 {
				ch.Type = &types[rng.Intn(2)]
			}
			if rng.Intn(2) == 0 {
				ch.Amount = ptr(amount())
			}
			_, err := engine.ApplyUpdate(ctx, user.ID, id, ch)
			require.NoError(t, err)
		default:
			idx := rng.Intn(len(live))
			_, err := engine.ApplyDelete(ctx, user.ID, live[idx])
			require.NoError(t, err)
			live = append(live[:idx], live[idx+1:]...)
		}
	}

	testutil.AssertLedgerConsistent(t, db)
}

func TestConcurrentCreatesSameAccount(t *testing.T) {
	cfg := &database.Config{Driver: database.DriverSQLite, SQLitePath: filepath.Join(t.TempDir(), "ledger.db")}
	m, err := database.NewManager(cfg)
	require.NoError(t, err)
	defer func() { _ = m.Close() }()
	require.NoError(t, m.RunMigrations())

	db := m.DB()
	engine := NewEngine(database.NewUnitOfWork(db))
	user := testutil.CreateTestUser(t, db)
	account := testutil.CreateTestAccount(t, db, user.ID)

	const workers = 20
	var wg sync.WaitGroup
	errs := make(chan error, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			typ := models.TransactionTypeIncome
			if i%2 == 1 {
				typ = models.TransactionTypeExpense
			}
			_, err := engine.ApplyCreate(context.Background(), user.ID, NewTransaction{
				AccountID: account.ID, Type: typ, Amount: decimal.NewFromInt(int64(i + 1)),
			})
			errs <- err
		}(i)
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		require.NoError(t, err)
	}

	// Odd amounts are income, even are expense: 1-2+3-4...+19-20 = -10.
	testutil.AssertBalance(t, db, account.ID, "-10")
	testutil.AssertLedgerConsistent(t, db)
	assert.Equal(t, uint(workers), testutil.ReloadAccount(t, db, account.ID).Version)
}
