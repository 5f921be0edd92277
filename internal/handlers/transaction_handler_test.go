package handlers

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	apperrors "fintrack/internal/errors"
	"fintrack/internal/ledger"
	"fintrack/internal/models"
	"fintrack/internal/pagination"
	"fintrack/internal/services"
)

// --- mock transaction service ---

type mockTransactionService struct {
	createFn      func(userID uint, in ledger.NewTransaction) (*models.Transaction, error)
	getByIDFn     func(userID, transactionID uint) (*models.Transaction, error)
	listFn        func(userID uint, page pagination.PageRequest, sort pagination.SortRequest, filter services.TransactionFilter) (*pagination.PageResponse[models.Transaction], error)
	listAccountFn func(userID, accountID uint, filter services.TransactionFilter) (*pagination.PageResponse[models.Transaction], error)
	updateFn      func(userID, transactionID uint, changes ledger.TransactionChanges) (*models.Transaction, error)
	deleteFn      func(userID, transactionID uint) error
}

func (m *mockTransactionService) CreateTransaction(_ context.Context, userID uint, in ledger.NewTransaction) (*models.Transaction, error) {
	if m.createFn != nil {
		return m.createFn(userID, in)
	}
	return &models.Transaction{}, nil
}

func (m *mockTransactionService) GetTransactionByID(_ context.Context, userID, transactionID uint) (*models.Transaction, error) {
	if m.getByIDFn != nil {
		return m.getByIDFn(userID, transactionID)
	}
	return &models.Transaction{}, nil
}

func (m *mockTransactionService) GetUserTransactions(_ context.Context, userID uint, page pagination.PageRequest, sort pagination.SortRequest, filter services.TransactionFilter) (*pagination.PageResponse[models.Transaction], error) {
	if m.listFn != nil {
		return m.listFn(userID, page, sort, filter)
	}
	resp := pagination.NewPageResponse([]models.Transaction{}, page, 0)
	return &resp, nil
}

func (m *mockTransactionService) GetAccountTransactions(_ context.Context, userID, accountID uint, page pagination.PageRequest, _ pagination.SortRequest, filter services.TransactionFilter) (*pagination.PageResponse[models.Transaction], error) {
	if m.listAccountFn != nil {
		return m.listAccountFn(userID, accountID, filter)
	}
	resp := pagination.NewPageResponse([]models.Transaction{}, page, 0)
	return &resp, nil
}

func (m *mockTransactionService) UpdateTransaction(_ context.Context, userID, transactionID uint, changes ledger.TransactionChanges) (*models.Transaction, error) {
	if m.updateFn != nil {
		return m.updateFn(userID, transactionID, changes)
	}
	return &models.Transaction{Base: models.Base{ID: transactionID}}, nil
}

func (m *mockTransactionService) DeleteTransaction(_ context.Context, userID, transactionID uint) error {
	if m.deleteFn != nil {
		return m.deleteFn(userID, transactionID)
	}
	return nil
}

var _ services.TransactionServicer = (*mockTransactionService)(nil)

func setupTransactionRouter(handler *TransactionHandler) *gin.Engine {
	r := gin.New()
	auth := r.Group("/users/:user_id", injectUserID(1))
	auth.POST("/transactions", handler.CreateTransaction)
	auth.GET("/transactions", handler.GetUserTransactions)
	auth.GET("/transactions/:transaction_id", handler.GetTransactionByID)
	auth.PUT("/transactions/:transaction_id", handler.UpdateTransaction)
	auth.DELETE("/transactions/:transaction_id", handler.DeleteTransaction)
	auth.GET("/accounts/:account_id/transactions", handler.GetAccountTransactions)
	return r
}

func TestTransactionHandler_CreateTransaction(t *testing.T) {
	t.Run("returns 201 and passes the request through", func(t *testing.T) {
		var got ledger.NewTransaction
		txSvc := &mockTransactionService{
			createFn: func(userID uint, in ledger.NewTransaction) (*models.Transaction, error) {
				got = in
				return &models.Transaction{
					Base: models.Base{ID: 9}, UserID: userID, AccountID: in.AccountID,
					Type: in.Type, Amount: in.Amount, Date: in.Date,
				}, nil
			},
		}
		audit := &mockAuditService{}
		r := setupTransactionRouter(NewTransactionHandler(txSvc, audit))

		rec := doRequest(r, "POST", "/users/1/transactions",
			`{"account_id":2,"category_id":4,"type":"expense","amount":12.5,"description":"Lunch","date":"2024-03-15"}`)

		if rec.Code != http.StatusCreated {
			t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
		}
		if got.AccountID != 2 || got.CategoryID == nil || *got.CategoryID != 4 {
			t.Errorf("unexpected ids %+v", got)
		}
		if !got.Amount.Equal(decimal.RequireFromString("12.5")) {
			t.Errorf("expected amount 12.5, got %s", got.Amount)
		}
		if !got.Date.Equal(time.Date(2024, time.March, 15, 0, 0, 0, 0, time.UTC)) {
			t.Errorf("unexpected date %v", got.Date)
		}
		if parseJSON(t, rec)["amount"] != 12.5 {
			t.Error("expected numeric amount 12.5 in response")
		}
		audit.assertLogged(t, services.AuditCreateTransaction, 9)
	})

	t.Run("rejects invalid input", func(t *testing.T) {
		bodies := map[string]string{
			"zero amount":     `{"account_id":2,"type":"expense","amount":0}`,
			"negative amount": `{"account_id":2,"type":"expense","amount":-5}`,
			"sub-cent amount": `{"account_id":2,"type":"expense","amount":1.234}`,
			"unknown type":    `{"account_id":2,"type":"transfer","amount":5}`,
			"missing account": `{"type":"income","amount":5}`,
			"bad date":        `{"account_id":2,"type":"income","amount":5,"date":"15/03/2024"}`,
		}
		for name, body := range bodies {
			t.Run(name, func(t *testing.T) {
				called := false
				txSvc := &mockTransactionService{
					createFn: func(uint, ledger.NewTransaction) (*models.Transaction, error) {
						called = true
						return &models.Transaction{}, nil
					},
				}
				r := setupTransactionRouter(NewTransactionHandler(txSvc, &mockAuditService{}))

				rec := doRequest(r, "POST", "/users/1/transactions", body)

				if rec.Code != http.StatusBadRequest {
					t.Fatalf("expected 400, got %d", rec.Code)
				}
				assertErrorCode(t, parseJSON(t, rec), "INVALID_INPUT")
				if called {
					t.Error("service must not be called")
				}
			})
		}
	})

	t.Run("maps ledger errors", func(t *testing.T) {
		tests := []struct {
			err        error
			wantStatus int
			retryAfter string
		}{
			{apperrors.ErrIncompatibleCategory, http.StatusBadRequest, ""},
			{apperrors.ErrAccountNotFound, http.StatusNotFound, ""},
			{apperrors.ErrConsistencyConflict, http.StatusConflict, "1"},
		}
		for _, tt := range tests {
			txSvc := &mockTransactionService{
				createFn: func(uint, ledger.NewTransaction) (*models.Transaction, error) { return nil, tt.err },
			}
			r := setupTransactionRouter(NewTransactionHandler(txSvc, &mockAuditService{}))

			rec := doRequest(r, "POST", "/users/1/transactions", `{"account_id":2,"type":"income","amount":5}`)

			if rec.Code != tt.wantStatus {
				t.Errorf("%v: expected %d, got %d", tt.err, tt.wantStatus, rec.Code)
			}
			if got := rec.Header().Get("Retry-After"); got != tt.retryAfter {
				t.Errorf("%v: expected Retry-After %q, got %q", tt.err, tt.retryAfter, got)
			}
		}
	})
}

func TestTransactionHandler_GetUserTransactions(t *testing.T) {
	t.Run("parses filters", func(t *testing.T) {
		var gotPage pagination.PageRequest
		var gotSort pagination.SortRequest
		var gotFilter services.TransactionFilter
		txSvc := &mockTransactionService{
			listFn: func(_ uint, page pagination.PageRequest, sort pagination.SortRequest, filter services.TransactionFilter) (*pagination.PageResponse[models.Transaction], error) {
				gotPage, gotSort, gotFilter = page, sort, filter
				resp := pagination.NewPageResponse([]models.Transaction{}, page, 0)
				return &resp, nil
			},
		}
		r := setupTransactionRouter(NewTransactionHandler(txSvc, &mockAuditService{}))

		rec := doRequest(r, "GET",
			"/users/1/transactions?start_date=2024-03-01&end_date=2024-03-31&transaction_type=expense&category_id=3&sort_by=amount&order=asc&skip=10&limit=5", "")

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
		}
		if gotPage.Skip != 10 || gotPage.Limit != 5 {
			t.Errorf("unexpected page %+v", gotPage)
		}
		if gotSort.SortBy != "amount" || gotSort.Order != "asc" {
			t.Errorf("unexpected sort %+v", gotSort)
		}
		if gotFilter.Type == nil || *gotFilter.Type != models.TransactionTypeExpense {
			t.Error("expected expense filter")
		}
		if gotFilter.CategoryID == nil || *gotFilter.CategoryID != 3 {
			t.Error("expected category filter 3")
		}
		if !gotFilter.FromDate.Equal(time.Date(2024, time.March, 1, 0, 0, 0, 0, time.UTC)) {
			t.Errorf("unexpected from date %v", gotFilter.FromDate)
		}
		wantTo := time.Date(2024, time.April, 1, 0, 0, 0, 0, time.UTC).Add(-time.Nanosecond)
		if !gotFilter.ToDate.Equal(wantTo) {
			t.Errorf("expected end_date to cover the whole day, got %v", gotFilter.ToDate)
		}
	})

	t.Run("rfc3339 end date is exact", func(t *testing.T) {
		var gotFilter services.TransactionFilter
		txSvc := &mockTransactionService{
			listFn: func(_ uint, page pagination.PageRequest, _ pagination.SortRequest, filter services.TransactionFilter) (*pagination.PageResponse[models.Transaction], error) {
				gotFilter = filter
				resp := pagination.NewPageResponse([]models.Transaction{}, page, 0)
				return &resp, nil
			},
		}
		r := setupTransactionRouter(NewTransactionHandler(txSvc, &mockAuditService{}))

		rec := doRequest(r, "GET", "/users/1/transactions?end_date=2024-03-31T12:00:00Z", "")

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
		if !gotFilter.ToDate.Equal(time.Date(2024, time.March, 31, 12, 0, 0, 0, time.UTC)) {
			t.Errorf("unexpected end date %v", gotFilter.ToDate)
		}
	})

	rejected := map[string]string{
		"bad sort column": "/users/1/transactions?sort_by=description",
		"bad order":       "/users/1/transactions?order=sideways",
		"bad type":        "/users/1/transactions?transaction_type=transfer",
		"bad start date":  "/users/1/transactions?start_date=yesterday",
		"reversed range":  "/users/1/transactions?start_date=2024-03-10&end_date=2024-03-01",
		"negative skip":   "/users/1/transactions?skip=-1",
		"bad category id": "/users/1/transactions?category_id=abc",
	}
	for name, path := range rejected {
		t.Run(name, func(t *testing.T) {
			r := setupTransactionRouter(NewTransactionHandler(&mockTransactionService{}, &mockAuditService{}))

			rec := doRequest(r, "GET", path, "")

			if rec.Code != http.StatusBadRequest {
				t.Fatalf("expected 400, got %d", rec.Code)
			}
			assertErrorCode(t, parseJSON(t, rec), "INVALID_INPUT")
		})
	}
}

func TestTransactionHandler_GetAccountTransactions(t *testing.T) {
	var gotAccount uint
	txSvc := &mockTransactionService{
		listAccountFn: func(_ uint, accountID uint, _ services.TransactionFilter) (*pagination.PageResponse[models.Transaction], error) {
			gotAccount = accountID
			return nil, apperrors.ErrAccountNotFound
		},
	}
	r := setupTransactionRouter(NewTransactionHandler(txSvc, &mockAuditService{}))

	rec := doRequest(r, "GET", "/users/1/accounts/8/transactions", "")

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
	if gotAccount != 8 {
		t.Errorf("expected account 8, got %d", gotAccount)
	}
}

func TestTransactionHandler_UpdateTransaction(t *testing.T) {
	t.Run("partial update leaves absent fields nil", func(t *testing.T) {
		var got ledger.TransactionChanges
		txSvc := &mockTransactionService{
			updateFn: func(_ uint, id uint, changes ledger.TransactionChanges) (*models.Transaction, error) {
				got = changes
				return &models.Transaction{Base: models.Base{ID: id}}, nil
			},
		}
		audit := &mockAuditService{}
		r := setupTransactionRouter(NewTransactionHandler(txSvc, audit))

		rec := doRequest(r, "PUT", "/users/1/transactions/6", `{"amount":20.25}`)

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
		}
		if got.Amount == nil || !got.Amount.Equal(decimal.RequireFromString("20.25")) {
			t.Errorf("expected amount 20.25, got %v", got.Amount)
		}
		if got.CategoryID != nil || got.AccountID != nil || got.Type != nil || got.Date != nil {
			t.Errorf("expected untouched fields to stay nil, got %+v", got)
		}
		audit.assertLogged(t, services.AuditUpdateTransaction, 6)
	})

	t.Run("null category clears it", func(t *testing.T) {
		var got ledger.TransactionChanges
		txSvc := &mockTransactionService{
			updateFn: func(_ uint, id uint, changes ledger.TransactionChanges) (*models.Transaction, error) {
				got = changes
				return &models.Transaction{Base: models.Base{ID: id}}, nil
			},
		}
		r := setupTransactionRouter(NewTransactionHandler(txSvc, &mockAuditService{}))

		rec := doRequest(r, "PUT", "/users/1/transactions/6", `{"category_id":null}`)

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
		if got.CategoryID == nil || *got.CategoryID != nil {
			t.Errorf("expected category to be cleared, got %v", got.CategoryID)
		}
	})

	t.Run("category and type together", func(t *testing.T) {
		var got ledger.TransactionChanges
		txSvc := &mockTransactionService{
			updateFn: func(_ uint, id uint, changes ledger.TransactionChanges) (*models.Transaction, error) {
				got = changes
				return &models.Transaction{Base: models.Base{ID: id}}, nil
			},
		}
		r := setupTransactionRouter(NewTransactionHandler(txSvc, &mockAuditService{}))

		rec := doRequest(r, "PUT", "/users/1/transactions/6", `{"category_id":3,"type":"income","account_id":4}`)

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
		if got.CategoryID == nil || *got.CategoryID == nil || **got.CategoryID != 3 {
			t.Error("expected category 3")
		}
		if *got.Type != models.TransactionTypeIncome || *got.AccountID != 4 {
			t.Errorf("unexpected changes %+v", got)
		}
	})

	t.Run("returns 400 on zero amount", func(t *testing.T) {
		r := setupTransactionRouter(NewTransactionHandler(&mockTransactionService{}, &mockAuditService{}))

		rec := doRequest(r, "PUT", "/users/1/transactions/6", `{"amount":0}`)

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
	})

	t.Run("returns 404 when missing", func(t *testing.T) {
		txSvc := &mockTransactionService{
			updateFn: func(uint, uint, ledger.TransactionChanges) (*models.Transaction, error) {
				return nil, apperrors.ErrTransactionNotFound
			},
		}
		r := setupTransactionRouter(NewTransactionHandler(txSvc, &mockAuditService{}))

		rec := doRequest(r, "PUT", "/users/1/transactions/6", `{"description":"x"}`)

		if rec.Code != http.StatusNotFound {
			t.Fatalf("expected 404, got %d", rec.Code)
		}
		assertErrorCode(t, parseJSON(t, rec), "TRANSACTION_NOT_FOUND")
	})
}

func TestTransactionHandler_DeleteTransaction(t *testing.T) {
	audit := &mockAuditService{}
	r := setupTransactionRouter(NewTransactionHandler(&mockTransactionService{}, audit))

	rec := doRequest(r, "DELETE", "/users/1/transactions/6", "")

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	audit.assertLogged(t, services.AuditDeleteTransaction, 6)
}
