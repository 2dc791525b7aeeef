package handlers

import (
	"math/big"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"meridian/kudos_credit_ledger/internal/pkg/common"
	"meridian/kudos_credit_ledger/internal/pkg/consts"
	"meridian/kudos_credit_ledger/internal/pkg/models"
	"meridian/kudos_credit_ledger/internal/pkg/services"
	"meridian/kudos_credit_ledger/internal/pkg/utils"
)

type LoanHandler struct {
	service services.LoanOrchestrator
}

func NewLoanHandler(service services.LoanOrchestrator) *LoanHandler {
	return &LoanHandler{service: service}
}

func (h *LoanHandler) OpenLoan(c *gin.Context) {
	var body models.OpenLoanRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := utils.ValidateRequest(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	amount, err := common.ParseAmount(body.Amount)
	if err != nil {
		c.JSON(utils.HTTPStatusForError(err), utils.ErrorBody(err))
		return
	}

	req := &models.BorrowRequest{
		Asset:    body.Asset,
		Amount:   amount,
		Duration: time.Duration(body.DurationSeconds) * time.Second,
		Proof:    []byte(body.Proof),
	}
	if body.CollateralAsset != "" {
		collateral, err := common.ParseAmount(body.CollateralAmount)
		if err != nil {
			c.JSON(utils.HTTPStatusForError(err), utils.ErrorBody(err))
			return
		}
		req.CollateralAsset = body.CollateralAsset
		req.CollateralAmount = collateral
	}

	loan, err := h.service.OpenLoan(c.Request.Context(), body.Borrower, req)
	if err != nil {
		c.JSON(utils.HTTPStatusForError(err), utils.ErrorBody(err))
		return
	}

	c.JSON(http.StatusCreated, loanResponse(loan, nil))
}

func (h *LoanHandler) RepayLoan(c *gin.Context) {
	loanID, err := parseLoanID(c)
	if err != nil {
		c.JSON(utils.HTTPStatusForError(err), utils.ErrorBody(err))
		return
	}

	var body models.RepayLoanRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := utils.ValidateRequest(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	amount, err := common.ParseAmount(body.Amount)
	if err != nil {
		c.JSON(utils.HTTPStatusForError(err), utils.ErrorBody(err))
		return
	}

	receipt, err := h.service.RepayLoan(c.Request.Context(), body.Caller, loanID, amount)
	if err != nil {
		c.JSON(utils.HTTPStatusForError(err), utils.ErrorBody(err))
		return
	}

	c.JSON(http.StatusOK, models.RepayResponse{
		PaidNet:     common.FormatAmount(receipt.PaidNet),
		TotalRepaid: common.FormatAmount(receipt.TotalRepaid),
		TotalDebt:   common.FormatAmount(receipt.TotalDebt),
		FullyRepaid: receipt.FullyRepaid,
	})
}

func (h *LoanHandler) DefaultLoan(c *gin.Context) {
	loanID, err := parseLoanID(c)
	if err != nil {
		c.JSON(utils.HTTPStatusForError(err), utils.ErrorBody(err))
		return
	}

	// Body is optional; an absent caller forfeits the bounty.
	var body models.DefaultLoanRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&body); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		if err := utils.ValidateRequest(&body); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
	}

	if err := h.service.DefaultLoan(c.Request.Context(), body.Caller, loanID); err != nil {
		c.JSON(utils.HTTPStatusForError(err), utils.ErrorBody(err))
		return
	}

	c.Status(http.StatusNoContent)
}

func (h *LoanHandler) GetLoan(c *gin.Context) {
	loanID, err := parseLoanID(c)
	if err != nil {
		c.JSON(utils.HTTPStatusForError(err), utils.ErrorBody(err))
		return
	}

	loan, debt, err := h.service.LoanStatus(c.Request.Context(), loanID)
	if err != nil {
		c.JSON(utils.HTTPStatusForError(err), utils.ErrorBody(err))
		return
	}

	c.JSON(http.StatusOK, loanResponse(loan, debt))
}

func (h *LoanHandler) ActiveLoan(c *gin.Context) {
	borrower := c.Param("borrower")
	loanID, ok := h.service.ActiveLoanOf(borrower)
	if !ok {
		c.JSON(http.StatusNotFound, utils.ErrorBody(consts.ErrLoanNotFound))
		return
	}

	loan, debt, err := h.service.LoanStatus(c.Request.Context(), loanID)
	if err != nil {
		c.JSON(utils.HTTPStatusForError(err), utils.ErrorBody(err))
		return
	}

	c.JSON(http.StatusOK, loanResponse(loan, debt))
}

func (h *LoanHandler) BorrowerHistory(c *gin.Context) {
	records, err := h.service.BorrowerHistory(c.Request.Context(), c.Param("borrower"))
	if err != nil {
		c.JSON(utils.HTTPStatusForError(err), utils.ErrorBody(err))
		return
	}
	if records == nil {
		records = []models.LoanArchive{}
	}
	c.JSON(http.StatusOK, records)
}

func (h *LoanHandler) LockedCollateral(c *gin.Context) {
	asset := c.Param("asset")
	c.JSON(http.StatusOK, gin.H{
		"asset":  asset,
		"locked": common.FormatAmount(h.service.LockedCollateral(asset)),
	})
}

func parseLoanID(c *gin.Context) (uint64, error) {
	id, err := strconv.ParseUint(c.Param("loanId"), 10, 64)
	if err != nil {
		return 0, consts.ErrLoanNotFound
	}
	return id, nil
}

func loanResponse(loan *models.Loan, debt *big.Int) models.LoanResponse {
	resp := models.LoanResponse{
		LoanID:           loan.ID,
		GUID:             loan.GUID,
		Borrower:         loan.Borrower,
		Asset:            loan.Asset,
		CollateralAsset:  loan.CollateralAsset,
		Principal:        common.FormatAmount(loan.Principal),
		PrincipalRepaid:  common.FormatAmount(loan.PrincipalRepaid),
		CollateralAmount: common.FormatAmount(loan.CollateralAmount),
		StartTs:          loan.StartTs,
		DueTs:            loan.DueTs,
		Status:           loan.Status,
	}
	if debt != nil {
		resp.Debt = common.FormatAmount(debt)
	}
	return resp
}
