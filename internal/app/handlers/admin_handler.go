package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"meridian/kudos_credit_ledger/internal/pkg/interest"
	"meridian/kudos_credit_ledger/internal/pkg/ledger"
	"meridian/kudos_credit_ledger/internal/pkg/models"
	"meridian/kudos_credit_ledger/internal/pkg/utils"
)

// LedgerAdmin is the runtime configuration surface of the ledger.
type LedgerAdmin interface {
	SetPaused(ctx context.Context, paused bool) error
	SetFees(ctx context.Context, originationBps, protocolBps, bountyBps uint64) error
	SetDurationBounds(ctx context.Context, min, max, grace time.Duration) error
	SetInterestModel(ctx context.Context, model ledger.DebtModel) error
	Paused() bool
	Snapshot() ledger.Config
}

type AdminHandler struct {
	admin LedgerAdmin
}

func NewAdminHandler(admin LedgerAdmin) *AdminHandler {
	return &AdminHandler{admin: admin}
}

func (h *AdminHandler) SetPaused(c *gin.Context) {
	var body models.SetPausedRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := utils.ValidateRequest(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.admin.SetPaused(c.Request.Context(), *body.Paused); err != nil {
		c.JSON(utils.HTTPStatusForError(err), utils.ErrorBody(err))
		return
	}
	c.JSON(http.StatusOK, gin.H{"paused": h.admin.Paused()})
}

func (h *AdminHandler) SetFees(c *gin.Context) {
	var body models.SetFeesRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.admin.SetFees(c.Request.Context(), body.OriginationFeeBps, body.ProtocolFeeBps, body.BountyBps); err != nil {
		c.JSON(utils.HTTPStatusForError(err), utils.ErrorBody(err))
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *AdminHandler) SetDurationBounds(c *gin.Context) {
	var body models.SetDurationBoundsRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := utils.ValidateRequest(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	err := h.admin.SetDurationBounds(c.Request.Context(),
		time.Duration(body.MinDurationSeconds)*time.Second,
		time.Duration(body.MaxDurationSeconds)*time.Second,
		time.Duration(body.GracePeriodSeconds)*time.Second,
	)
	if err != nil {
		c.JSON(utils.HTTPStatusForError(err), utils.ErrorBody(err))
		return
	}
	c.Status(http.StatusNoContent)
}

// SetInterestModel swaps the accrual model. Rates on already-open loans change
// with it; the model is a pure function of loan timestamps.
func (h *AdminHandler) SetInterestModel(c *gin.Context) {
	var body models.SetInterestModelRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.admin.SetInterestModel(c.Request.Context(), interest.NewModel(body.AprBps, body.PenaltyAprBps)); err != nil {
		c.JSON(utils.HTTPStatusForError(err), utils.ErrorBody(err))
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *AdminHandler) Config(c *gin.Context) {
	cfg := h.admin.Snapshot()
	c.JSON(http.StatusOK, gin.H{
		"originationFeeBps":  cfg.OriginationFeeBps,
		"protocolFeeBps":     cfg.ProtocolFeeBps,
		"bountyBps":          cfg.BountyBps,
		"minDurationSeconds": int64(cfg.MinDuration / time.Second),
		"maxDurationSeconds": int64(cfg.MaxDuration / time.Second),
		"gracePeriodSeconds": int64(cfg.GracePeriod / time.Second),
		"paused":             h.admin.Paused(),
	})
}
