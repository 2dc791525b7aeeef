package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"math/big"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"meridian/kudos_credit_ledger/internal/pkg/consts"
	"meridian/kudos_credit_ledger/internal/pkg/models"
)

type MockLoanService struct {
	mock.Mock
}

func (m *MockLoanService) OpenLoan(ctx context.Context, borrower string, req *models.BorrowRequest) (*models.Loan, error) {
	args := m.Called(ctx, borrower, req)
	if res := args.Get(0); res != nil {
		return res.(*models.Loan), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockLoanService) RepayLoan(ctx context.Context, caller string, loanID uint64, amount *big.Int) (*models.RepayReceipt, error) {
	args := m.Called(ctx, caller, loanID, amount)
	if res := args.Get(0); res != nil {
		return res.(*models.RepayReceipt), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockLoanService) DefaultLoan(ctx context.Context, caller string, loanID uint64) error {
	args := m.Called(ctx, caller, loanID)
	return args.Error(0)
}

func (m *MockLoanService) LoanStatus(ctx context.Context, loanID uint64) (*models.Loan, *big.Int, error) {
	args := m.Called(ctx, loanID)
	if res := args.Get(0); res != nil {
		return res.(*models.Loan), args.Get(1).(*big.Int), args.Error(2)
	}
	return nil, nil, args.Error(2)
}

func (m *MockLoanService) ActiveLoanOf(borrower string) (uint64, bool) {
	args := m.Called(borrower)
	return args.Get(0).(uint64), args.Bool(1)
}

func (m *MockLoanService) LockedCollateral(asset string) *big.Int {
	args := m.Called(asset)
	return args.Get(0).(*big.Int)
}

func (m *MockLoanService) BorrowerHistory(ctx context.Context, borrower string) ([]models.LoanArchive, error) {
	args := m.Called(ctx, borrower)
	if res := args.Get(0); res != nil {
		return res.([]models.LoanArchive), args.Error(1)
	}
	return nil, args.Error(1)
}

func setupTestRouter(service *MockLoanService) *gin.Engine {
	gin.SetMode(gin.TestMode)
	handler := NewLoanHandler(service)

	r := gin.New()
	r.POST("/api/v1/loans", handler.OpenLoan)
	r.GET("/api/v1/loans/:loanId", handler.GetLoan)
	r.POST("/api/v1/loans/:loanId/repay", handler.RepayLoan)
	r.POST("/api/v1/loans/:loanId/default", handler.DefaultLoan)
	r.GET("/api/v1/borrowers/:borrower/active", handler.ActiveLoan)
	r.GET("/api/v1/collateral/:asset", handler.LockedCollateral)
	return r
}

func performJSON(r *gin.Engine, method, path string, body interface{}) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestOpenLoanHandler_Success(t *testing.T) {
	service := new(MockLoanService)
	service.On("OpenLoan", mock.Anything, "alice", mock.MatchedBy(func(req *models.BorrowRequest) bool {
		return req.Asset == "USDk" && req.Amount.Int64() == 1_000_000 && req.CollateralAmount.Int64() == 500
	})).Return(&models.Loan{
		ID:               1,
		GUID:             "guid-1",
		Borrower:         "alice",
		Asset:            "USDk",
		CollateralAsset:  "GOLDk",
		Principal:        big.NewInt(1_000_000),
		PrincipalRepaid:  new(big.Int),
		CollateralAmount: big.NewInt(500),
		Status:           models.LoanStatusActive,
	}, nil)

	r := setupTestRouter(service)
	w := performJSON(r, http.MethodPost, "/api/v1/loans", models.OpenLoanRequest{
		Borrower:         "alice",
		Asset:            "USDk",
		Amount:           "1000000",
		CollateralAsset:  "GOLDk",
		CollateralAmount: "500",
		DurationSeconds:  864_000,
	})

	require.Equal(t, http.StatusCreated, w.Code)

	var resp models.LoanResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, uint64(1), resp.LoanID)
	assert.Equal(t, "1000000", resp.Principal)
	assert.Equal(t, models.LoanStatusActive, resp.Status)

	service.AssertExpectations(t)
}

func TestOpenLoanHandler_ValidationFailures(t *testing.T) {
	service := new(MockLoanService)
	r := setupTestRouter(service)

	// Missing borrower.
	w := performJSON(r, http.MethodPost, "/api/v1/loans", models.OpenLoanRequest{
		Asset:           "USDk",
		Amount:          "1000",
		DurationSeconds: 864_000,
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// Non-numeric amount.
	w = performJSON(r, http.MethodPost, "/api/v1/loans", models.OpenLoanRequest{
		Borrower:        "alice",
		Asset:           "USDk",
		Amount:          "one million",
		DurationSeconds: 864_000,
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// Uppercase borrower handle.
	w = performJSON(r, http.MethodPost, "/api/v1/loans", models.OpenLoanRequest{
		Borrower:        "Alice!",
		Asset:           "USDk",
		Amount:          "1000",
		DurationSeconds: 864_000,
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	service.AssertNotCalled(t, "OpenLoan", mock.Anything, mock.Anything, mock.Anything)
}

func TestOpenLoanHandler_PolicyRejectionMapsToForbidden(t *testing.T) {
	service := new(MockLoanService)
	service.On("OpenLoan", mock.Anything, "mallory", mock.Anything).Return(nil, consts.ErrPolicyDefaulter)

	r := setupTestRouter(service)
	w := performJSON(r, http.MethodPost, "/api/v1/loans", models.OpenLoanRequest{
		Borrower:        "mallory",
		Asset:           "USDk",
		Amount:          "1000",
		DurationSeconds: 864_000,
	})

	require.Equal(t, http.StatusForbidden, w.Code)

	var resp models.ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "KUDOS_POLICY_BORROWER_DEFAULTED", resp.Code)
}

func TestRepayLoanHandler(t *testing.T) {
	service := new(MockLoanService)
	service.On("RepayLoan", mock.Anything, "alice", uint64(7), big.NewInt(500)).Return(&models.RepayReceipt{
		PaidNet:     big.NewInt(500),
		TotalRepaid: big.NewInt(500),
		TotalDebt:   big.NewInt(1_002),
		FullyRepaid: false,
	}, nil)

	r := setupTestRouter(service)
	w := performJSON(r, http.MethodPost, "/api/v1/loans/7/repay", models.RepayLoanRequest{
		Caller: "alice",
		Amount: "500",
	})

	require.Equal(t, http.StatusOK, w.Code)

	var resp models.RepayResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "500", resp.PaidNet)
	assert.Equal(t, "1002", resp.TotalDebt)
	assert.False(t, resp.FullyRepaid)
}

func TestDefaultLoanHandler_NoBody(t *testing.T) {
	service := new(MockLoanService)
	service.On("DefaultLoan", mock.Anything, "", uint64(7)).Return(nil)

	r := setupTestRouter(service)
	w := performJSON(r, http.MethodPost, "/api/v1/loans/7/default", nil)

	assert.Equal(t, http.StatusNoContent, w.Code)
	service.AssertExpectations(t)
}

func TestDefaultLoanHandler_NotPastDue(t *testing.T) {
	service := new(MockLoanService)
	service.On("DefaultLoan", mock.Anything, "keeper", uint64(7)).Return(consts.ErrNotPastDue)

	r := setupTestRouter(service)
	w := performJSON(r, http.MethodPost, "/api/v1/loans/7/default", models.DefaultLoanRequest{Caller: "keeper"})

	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestGetLoanHandler_NotFound(t *testing.T) {
	service := new(MockLoanService)
	service.On("LoanStatus", mock.Anything, uint64(42)).Return(nil, nil, consts.ErrLoanNotFound)

	r := setupTestRouter(service)
	w := performJSON(r, http.MethodGet, "/api/v1/loans/42", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	// Non-numeric ids do not reach the service.
	w = performJSON(r, http.MethodGet, "/api/v1/loans/abc", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestActiveLoanHandler(t *testing.T) {
	service := new(MockLoanService)
	service.On("ActiveLoanOf", "alice").Return(uint64(3), true)
	service.On("LoanStatus", mock.Anything, uint64(3)).Return(&models.Loan{
		ID:               3,
		Borrower:         "alice",
		Asset:            "USDk",
		Principal:        big.NewInt(1_000),
		PrincipalRepaid:  new(big.Int),
		CollateralAmount: new(big.Int),
		Status:           models.LoanStatusActive,
	}, big.NewInt(1_001), nil)

	r := setupTestRouter(service)
	w := performJSON(r, http.MethodGet, "/api/v1/borrowers/alice/active", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var resp models.LoanResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "1001", resp.Debt)

	service.On("ActiveLoanOf", "bob").Return(uint64(0), false)
	w = performJSON(r, http.MethodGet, "/api/v1/borrowers/bob/active", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestLockedCollateralHandler(t *testing.T) {
	service := new(MockLoanService)
	service.On("LockedCollateral", "GOLDk").Return(big.NewInt(1_500))

	r := setupTestRouter(service)
	w := performJSON(r, http.MethodGet, "/api/v1/collateral/GOLDk", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"asset":"GOLDk","locked":"1500"}`, w.Body.String())
}
