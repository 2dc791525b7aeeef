package ledger

import (
	"context"
	"math/big"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"meridian/kudos_credit_ledger/internal/pkg/consts"
	"meridian/kudos_credit_ledger/internal/pkg/custody"
	"meridian/kudos_credit_ledger/internal/pkg/interest"
	"meridian/kudos_credit_ledger/internal/pkg/logger"
	"meridian/kudos_credit_ledger/internal/pkg/models"
	"meridian/kudos_credit_ledger/internal/pkg/reputation"
	"meridian/kudos_credit_ledger/internal/pkg/risk"
)

// RiskAssessor admits or rejects borrow requests. Swappable at runtime.
type RiskAssessor interface {
	AssessBorrow(ctx context.Context, borrower string, req *models.BorrowRequest) risk.Result
}

// DebtModel computes owed principal plus interest. Swappable at runtime.
type DebtModel interface {
	Debt(principal *big.Int, startTs, nowTs int64) *big.Int
	DebtWithPenalty(principal *big.Int, startTs, dueTs, nowTs int64) *big.Int
}

type Config struct {
	OriginationFeeBps uint64
	ProtocolFeeBps    uint64
	BountyBps         uint64
	MinDuration       time.Duration
	MaxDuration       time.Duration
	GracePeriod       time.Duration
	// Account is the custody owner name of the ledger's own funds.
	Account  string
	Treasury string
}

// Ledger owns the loan records, the active-loan index and the locked-collateral
// counters, and drives the None -> Active -> {Repaid, Defaulted} state machine.
//
// The execution model is a single global sequence of operations: callers do not
// run mutating calls concurrently. The busy latch is a reentrancy guard, not a
// lock; a mutating call arriving while another is in flight (typically a hook
// calling back into the ledger) is rejected outright.
type Ledger struct {
	cfg    Config
	policy RiskAssessor
	model  DebtModel
	vault  custody.Vault
	hook   reputation.Hook

	now  func() time.Time
	busy atomic.Bool

	paused       bool
	nextID       uint64
	loans        map[uint64]*models.Loan
	activeLoanOf map[string]uint64
	locked       map[string]*big.Int
}

func New(cfg Config, policy RiskAssessor, model DebtModel, vault custody.Vault, hook reputation.Hook) *Ledger {
	return &Ledger{
		cfg:          cfg,
		policy:       policy,
		model:        model,
		vault:        vault,
		hook:         hook,
		now:          time.Now,
		loans:        make(map[uint64]*models.Loan),
		activeLoanOf: make(map[string]uint64),
		locked:       make(map[string]*big.Int),
	}
}

// Open escrows the declared collateral, disburses principal net of the
// origination fee, records the loan as active and notifies the hook. Any
// failure unwinds every custody movement and leaves ledger state untouched.
func (l *Ledger) Open(ctx context.Context, borrower string, req *models.BorrowRequest) (uint64, error) {
	if err := l.enter(); err != nil {
		return 0, err
	}
	defer l.leave()

	if l.paused {
		return 0, consts.ErrLedgerPaused
	}
	if borrower == "" {
		return 0, consts.ErrInvalidBorrower
	}
	if req == nil || req.Asset == "" {
		return 0, consts.ErrInvalidAsset
	}
	if req.Amount == nil || req.Amount.Sign() <= 0 {
		return 0, consts.ErrInvalidAmount
	}
	if req.Duration < l.cfg.MinDuration || req.Duration > l.cfg.MaxDuration {
		return 0, consts.ErrDurationOutOfBounds
	}
	if l.policy == nil {
		return 0, consts.ErrRiskPolicyNotSet
	}
	if l.model == nil {
		return 0, consts.ErrInterestModelNotSet
	}
	if l.vault == nil {
		return 0, consts.ErrCustodyNotSet
	}
	if _, ok := l.activeLoanOf[borrower]; ok {
		return 0, consts.ErrActiveLoanExists
	}

	res := l.policy.AssessBorrow(ctx, borrower, req)
	if !res.Allowed {
		return 0, policyError(res.Reason)
	}
	if res.MaxBorrow != nil && req.Amount.Cmp(res.MaxBorrow) > 0 {
		return 0, consts.ErrPolicyOverLimit
	}

	balance, err := l.vault.BalanceOf(ctx, req.Asset, l.cfg.Account)
	if err != nil {
		return 0, err
	}
	free := new(big.Int).Sub(balance, l.lockedAmount(req.Asset))
	if free.Cmp(req.Amount) < 0 {
		return 0, consts.ErrInsufficientLiquidity
	}

	startTs := l.now().Unix()
	dueTs := startTs + int64(req.Duration/time.Second)

	collateral := new(big.Int)
	if req.CollateralAsset != "" && req.CollateralAmount != nil && req.CollateralAmount.Sign() > 0 {
		collateral.Set(req.CollateralAmount)
	}

	var undo []func()
	fail := func(err error) (uint64, error) {
		unwind(undo)
		return 0, err
	}

	if collateral.Sign() > 0 {
		if err := l.vault.Debit(ctx, req.CollateralAsset, borrower, collateral); err != nil {
			return fail(err)
		}
		undo = append(undo, func() { l.vault.Credit(ctx, req.CollateralAsset, borrower, collateral) })
		if err := l.vault.Credit(ctx, req.CollateralAsset, l.cfg.Account, collateral); err != nil {
			return fail(err)
		}
		undo = append(undo, func() { l.vault.Debit(ctx, req.CollateralAsset, l.cfg.Account, collateral) })
	}

	fee := mulBps(req.Amount, l.cfg.OriginationFeeBps)
	disbursed := new(big.Int).Sub(req.Amount, fee)

	if err := l.vault.Debit(ctx, req.Asset, l.cfg.Account, req.Amount); err != nil {
		return fail(err)
	}
	undo = append(undo, func() { l.vault.Credit(ctx, req.Asset, l.cfg.Account, req.Amount) })
	if disbursed.Sign() > 0 {
		if err := l.vault.Credit(ctx, req.Asset, borrower, disbursed); err != nil {
			return fail(err)
		}
		undo = append(undo, func() { l.vault.Debit(ctx, req.Asset, borrower, disbursed) })
	}
	if fee.Sign() > 0 {
		if err := l.vault.Credit(ctx, req.Asset, l.cfg.Treasury, fee); err != nil {
			return fail(err)
		}
		undo = append(undo, func() { l.vault.Debit(ctx, req.Asset, l.cfg.Treasury, fee) })
	}

	loanID := l.nextID + 1
	if l.hook != nil {
		if err := l.hook.OnLoanOpened(ctx, loanID, borrower); err != nil {
			return fail(err)
		}
	}

	l.nextID = loanID
	loan := &models.Loan{
		ID:               loanID,
		GUID:             uuid.NewString(),
		Borrower:         borrower,
		Asset:            req.Asset,
		CollateralAsset:  req.CollateralAsset,
		Principal:        new(big.Int).Set(req.Amount),
		PrincipalRepaid:  new(big.Int),
		CollateralAmount: collateral,
		StartTs:          startTs,
		DueTs:            dueTs,
		Status:           models.LoanStatusActive,
	}
	l.loans[loanID] = loan
	l.activeLoanOf[borrower] = loanID
	if collateral.Sign() > 0 {
		l.lockedAmount(req.CollateralAsset).Add(l.lockedAmount(req.CollateralAsset), collateral)
	}

	logger.Info(ctx, "loan %d opened: %s borrowed %s %s", loanID, borrower, req.Amount.String(), req.Asset)
	return loanID, nil
}

// Repay pulls amount from the borrower and credits it toward the debt. When the
// cumulative repayment covers the live debt the loan closes: overpay is
// refunded, collateral released, the protocol fee routed, and the hook told so.
func (l *Ledger) Repay(ctx context.Context, caller string, loanID uint64, amount *big.Int) (*models.RepayReceipt, error) {
	if err := l.enter(); err != nil {
		return nil, err
	}
	defer l.leave()

	if l.paused {
		return nil, consts.ErrLedgerPaused
	}
	if amount == nil || amount.Sign() <= 0 {
		return nil, consts.ErrInvalidAmount
	}
	if l.model == nil {
		return nil, consts.ErrInterestModelNotSet
	}
	if l.vault == nil {
		return nil, consts.ErrCustodyNotSet
	}

	loan, ok := l.loans[loanID]
	if !ok {
		return nil, consts.ErrLoanNotFound
	}
	if loan.Status != models.LoanStatusActive {
		return nil, consts.ErrLoanNotActive
	}
	if caller != loan.Borrower {
		return nil, consts.ErrCallerNotBorrower
	}

	var undo []func()
	fail := func(err error) (*models.RepayReceipt, error) {
		unwind(undo)
		return nil, err
	}

	if err := l.vault.Debit(ctx, loan.Asset, caller, amount); err != nil {
		return fail(err)
	}
	undo = append(undo, func() { l.vault.Credit(ctx, loan.Asset, caller, amount) })
	if err := l.vault.Credit(ctx, loan.Asset, l.cfg.Account, amount); err != nil {
		return fail(err)
	}
	undo = append(undo, func() { l.vault.Debit(ctx, loan.Asset, l.cfg.Account, amount) })

	nowTs := l.now().Unix()
	totalDebt := l.model.DebtWithPenalty(loan.Principal, loan.StartTs, loan.DueTs, nowTs)
	newRepaid := new(big.Int).Add(loan.PrincipalRepaid, amount)

	if newRepaid.Cmp(totalDebt) < 0 {
		if l.hook != nil {
			if err := l.hook.OnLoanRepaid(ctx, loanID, loan.Borrower, amount, newRepaid, totalDebt, false); err != nil {
				return fail(err)
			}
		}

		loan.PrincipalRepaid = newRepaid
		return &models.RepayReceipt{
			PaidNet:     new(big.Int).Set(amount),
			TotalRepaid: new(big.Int).Set(newRepaid),
			TotalDebt:   totalDebt,
			FullyRepaid: false,
		}, nil
	}

	// Full settlement: refund overpay, clamp, close out.
	overpay := new(big.Int).Sub(newRepaid, totalDebt)
	if overpay.Sign() > 0 {
		if err := l.vault.Debit(ctx, loan.Asset, l.cfg.Account, overpay); err != nil {
			return fail(err)
		}
		undo = append(undo, func() { l.vault.Credit(ctx, loan.Asset, l.cfg.Account, overpay) })
		if err := l.vault.Credit(ctx, loan.Asset, caller, overpay); err != nil {
			return fail(err)
		}
		undo = append(undo, func() { l.vault.Debit(ctx, loan.Asset, caller, overpay) })
	}
	paidNet := new(big.Int).Sub(amount, overpay)

	interestPortion := new(big.Int).Sub(totalDebt, loan.Principal)
	protocolFee := mulBps(interestPortion, l.cfg.ProtocolFeeBps)
	if protocolFee.Sign() > 0 {
		if err := l.vault.Debit(ctx, loan.Asset, l.cfg.Account, protocolFee); err != nil {
			return fail(err)
		}
		undo = append(undo, func() { l.vault.Credit(ctx, loan.Asset, l.cfg.Account, protocolFee) })
		if err := l.vault.Credit(ctx, loan.Asset, l.cfg.Treasury, protocolFee); err != nil {
			return fail(err)
		}
		undo = append(undo, func() { l.vault.Debit(ctx, loan.Asset, l.cfg.Treasury, protocolFee) })
	}

	if loan.CollateralAmount.Sign() > 0 {
		if err := l.vault.Debit(ctx, loan.CollateralAsset, l.cfg.Account, loan.CollateralAmount); err != nil {
			return fail(err)
		}
		released := new(big.Int).Set(loan.CollateralAmount)
		undo = append(undo, func() { l.vault.Credit(ctx, loan.CollateralAsset, l.cfg.Account, released) })
		if err := l.vault.Credit(ctx, loan.CollateralAsset, loan.Borrower, released); err != nil {
			return fail(err)
		}
		undo = append(undo, func() { l.vault.Debit(ctx, loan.CollateralAsset, loan.Borrower, released) })
	}

	if l.hook != nil {
		if err := l.hook.OnLoanRepaid(ctx, loanID, loan.Borrower, paidNet, totalDebt, totalDebt, true); err != nil {
			return fail(err)
		}
	}

	loan.PrincipalRepaid = new(big.Int).Set(totalDebt)
	loan.Status = models.LoanStatusRepaid
	delete(l.activeLoanOf, loan.Borrower)
	if loan.CollateralAmount.Sign() > 0 {
		l.lockedAmount(loan.CollateralAsset).Sub(l.lockedAmount(loan.CollateralAsset), loan.CollateralAmount)
	}

	logger.Info(ctx, "loan %d fully repaid by %s, debt %s %s", loanID, loan.Borrower, totalDebt.String(), loan.Asset)
	return &models.RepayReceipt{
		PaidNet:     paidNet,
		TotalRepaid: new(big.Int).Set(totalDebt),
		TotalDebt:   totalDebt,
		FullyRepaid: true,
	}, nil
}

// MarkDefault is permissionless: anyone may flip an overdue loan once the due
// date plus grace period has strictly passed, earning the configured bounty out
// of the loan's own escrow. Remaining collateral stays in ledger custody.
func (l *Ledger) MarkDefault(ctx context.Context, caller string, loanID uint64) error {
	if err := l.enter(); err != nil {
		return err
	}
	defer l.leave()

	if l.paused {
		return consts.ErrLedgerPaused
	}
	if l.vault == nil {
		return consts.ErrCustodyNotSet
	}

	loan, ok := l.loans[loanID]
	if !ok {
		return consts.ErrLoanNotFound
	}
	if loan.Status != models.LoanStatusActive {
		return consts.ErrLoanNotActive
	}

	deadline := loan.DueTs + int64(l.cfg.GracePeriod/time.Second)
	if l.now().Unix() <= deadline {
		return consts.ErrNotPastDue
	}

	var undo []func()

	bounty := new(big.Int)
	if caller != "" && loan.CollateralAmount.Sign() > 0 {
		bounty = mulBps(loan.CollateralAmount, l.cfg.BountyBps)
	}
	if bounty.Sign() > 0 {
		if err := l.vault.Debit(ctx, loan.CollateralAsset, l.cfg.Account, bounty); err != nil {
			unwind(undo)
			return err
		}
		undo = append(undo, func() { l.vault.Credit(ctx, loan.CollateralAsset, l.cfg.Account, bounty) })
		if err := l.vault.Credit(ctx, loan.CollateralAsset, caller, bounty); err != nil {
			unwind(undo)
			return err
		}
		undo = append(undo, func() { l.vault.Debit(ctx, loan.CollateralAsset, caller, bounty) })
	}

	if l.hook != nil {
		if err := l.hook.OnLoanDefaulted(ctx, loanID, loan.Borrower); err != nil {
			unwind(undo)
			return err
		}
	}

	loan.Status = models.LoanStatusDefaulted
	delete(l.activeLoanOf, loan.Borrower)
	if loan.CollateralAmount.Sign() > 0 {
		l.lockedAmount(loan.CollateralAsset).Sub(l.lockedAmount(loan.CollateralAsset), loan.CollateralAmount)
		loan.CollateralAmount.Sub(loan.CollateralAmount, bounty)
	}

	logger.Warn(ctx, "loan %d defaulted, borrower %s, bounty %s to %s", loanID, loan.Borrower, bounty.String(), caller)
	return nil
}

// GetDebt returns the live debt of an active loan; closed or unknown loans owe
// zero. Reads are not gated by the pause flag.
func (l *Ledger) GetDebt(ctx context.Context, loanID uint64) *big.Int {
	loan, ok := l.loans[loanID]
	if !ok || loan.Status != models.LoanStatusActive || l.model == nil {
		return new(big.Int)
	}
	return l.model.DebtWithPenalty(loan.Principal, loan.StartTs, loan.DueTs, l.now().Unix())
}

// GetLoan returns a copy of the loan record.
func (l *Ledger) GetLoan(ctx context.Context, loanID uint64) (*models.Loan, error) {
	loan, ok := l.loans[loanID]
	if !ok {
		return nil, consts.ErrLoanNotFound
	}
	return loan.Clone(), nil
}

// ActiveLoanOf returns the borrower's current active loan id, if any.
func (l *Ledger) ActiveLoanOf(borrower string) (uint64, bool) {
	id, ok := l.activeLoanOf[borrower]
	return id, ok
}

// LockedCollateral returns the total collateral escrowed for active loans in
// the given asset.
func (l *Ledger) LockedCollateral(asset string) *big.Int {
	return new(big.Int).Set(l.lockedAmount(asset))
}

func (l *Ledger) Paused() bool {
	return l.paused
}

func (l *Ledger) enter() error {
	if !l.busy.CompareAndSwap(false, true) {
		return consts.ErrReentrantCall
	}
	return nil
}

func (l *Ledger) leave() {
	l.busy.Store(false)
}

func (l *Ledger) lockedAmount(asset string) *big.Int {
	amount, ok := l.locked[asset]
	if !ok {
		amount = new(big.Int)
		l.locked[asset] = amount
	}
	return amount
}

func unwind(undo []func()) {
	for i := len(undo) - 1; i >= 0; i-- {
		undo[i]()
	}
}

func mulBps(v *big.Int, bps uint64) *big.Int {
	if v == nil || bps == 0 {
		return new(big.Int)
	}
	r := new(big.Int).Mul(v, new(big.Int).SetUint64(bps))
	return r.Quo(r, big.NewInt(interest.BpsDenominator))
}

func policyError(reason risk.Reason) error {
	switch reason {
	case risk.ReasonDefaulter:
		return consts.ErrPolicyDefaulter
	case risk.ReasonMissingProof:
		return consts.ErrPolicyMissingProof
	case risk.ReasonBadProof:
		return consts.ErrPolicyBadProof
	case risk.ReasonNoOracle:
		return consts.ErrPolicyNoOracle
	case risk.ReasonNoCollateral:
		return consts.ErrPolicyNoCollateral
	case risk.ReasonBadPrice:
		return consts.ErrPolicyBadPrice
	case risk.ReasonOverLimit:
		return consts.ErrPolicyOverLimit
	default:
		return consts.ErrBorrowNotAllowed
	}
}
