package ledger

import (
	"context"
	"math/big"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"meridian/kudos_credit_ledger/internal/pkg/consts"
	"meridian/kudos_credit_ledger/internal/pkg/custody"
	"meridian/kudos_credit_ledger/internal/pkg/interest"
	"meridian/kudos_credit_ledger/internal/pkg/models"
	"meridian/kudos_credit_ledger/internal/pkg/oracle"
	"meridian/kudos_credit_ledger/internal/pkg/reputation"
	"meridian/kudos_credit_ledger/internal/pkg/risk"
)

const (
	ledgerAccount = "ledger"
	treasury      = "treasury"
)

type fixture struct {
	t      *testing.T
	ctx    context.Context
	ledger *Ledger
	vault  *custody.MemoryVault
	store  *reputation.MemoryStore
	clock  time.Time
}

func newFixture(t *testing.T) *fixture {
	ctx := context.Background()
	vault := custody.NewMemoryVault()
	store := reputation.NewMemoryStore()

	feed := oracle.NewStaticFeed()
	feed.SetPrice("GOLDk", "USDk", big.NewInt(2), 0)

	policy := risk.NewPolicy(risk.Config{
		MaxRatioBps:         15000,
		ScoreFree:           800,
		NoCollateralCeiling: big.NewInt(1_000_000_000),
	}, store, feed, nil)

	l := New(Config{
		OriginationFeeBps: 50,
		ProtocolFeeBps:    1000,
		BountyBps:         200,
		MinDuration:       24 * time.Hour,
		MaxDuration:       365 * 24 * time.Hour,
		GracePeriod:       72 * time.Hour,
		Account:           ledgerAccount,
		Treasury:          treasury,
	}, policy, interest.NewModel(1000, 3000), vault, reputation.NewScoreHook(store, 100))

	f := &fixture{t: t, ctx: ctx, ledger: l, vault: vault, store: store, clock: time.Unix(1_700_000_000, 0)}
	l.now = func() time.Time { return f.clock }

	f.credit("USDk", ledgerAccount, 10_000_000)
	return f
}

func (f *fixture) credit(asset, owner string, amount int64) {
	require.NoError(f.t, f.vault.Credit(f.ctx, asset, owner, big.NewInt(amount)))
}

func (f *fixture) balance(asset, owner string) int64 {
	b, err := f.vault.BalanceOf(f.ctx, asset, owner)
	require.NoError(f.t, err)
	return b.Int64()
}

func (f *fixture) setScore(borrower string, score uint64) {
	require.NoError(f.t, f.store.SetScore(f.ctx, borrower, score))
}

func (f *fixture) advance(d time.Duration) {
	f.clock = f.clock.Add(d)
}

func TestLedger_OpenRepayRoundTrip(t *testing.T) {
	f := newFixture(t)
	f.setScore("alice", 800)
	f.credit("USDk", "alice", 100_000)

	id, err := f.ledger.Open(f.ctx, "alice", &models.BorrowRequest{
		Asset:    "USDk",
		Amount:   big.NewInt(1_000_000),
		Duration: 10 * 24 * time.Hour,
	})
	require.NoError(t, err)
	require.Equal(t, uint64(1), id)

	// 50 bps origination fee comes off the disbursement.
	assert.Equal(t, int64(1_095_000), f.balance("USDk", "alice"))
	assert.Equal(t, int64(5_000), f.balance("USDk", treasury))
	assert.Equal(t, int64(9_000_000), f.balance("USDk", ledgerAccount))

	active, ok := f.ledger.ActiveLoanOf("alice")
	require.True(t, ok)
	assert.Equal(t, id, active)

	// 10 days at 10% APR on 1,000,000.
	f.advance(10 * 24 * time.Hour)
	debt := f.ledger.GetDebt(f.ctx, id)
	require.Equal(t, int64(1_002_739), debt.Int64())

	receipt, err := f.ledger.Repay(f.ctx, "alice", id, debt)
	require.NoError(t, err)
	assert.True(t, receipt.FullyRepaid)
	assert.Equal(t, int64(1_002_739), receipt.PaidNet.Int64())
	assert.Equal(t, int64(1_002_739), receipt.TotalRepaid.Int64())

	loan, err := f.ledger.GetLoan(f.ctx, id)
	require.NoError(t, err)
	assert.Equal(t, models.LoanStatusRepaid, loan.Status)

	_, ok = f.ledger.ActiveLoanOf("alice")
	assert.False(t, ok)
	assert.Zero(t, f.ledger.GetDebt(f.ctx, id).Sign())

	// 10% protocol fee on the 2,739 interest portion goes to the treasury.
	assert.Equal(t, int64(5_273), f.balance("USDk", treasury))
	assert.Equal(t, int64(10_002_466), f.balance("USDk", ledgerAccount))

	// Full settlement earns the repay points.
	score, err := f.store.ScoreOf(f.ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, uint64(900), score)
}

func TestLedger_CollateralEscrowAndRelease(t *testing.T) {
	f := newFixture(t)
	f.credit("GOLDk", "bob", 1_000)
	f.credit("USDk", "bob", 2_000)

	id, err := f.ledger.Open(f.ctx, "bob", &models.BorrowRequest{
		Asset:            "USDk",
		Amount:           big.NewInt(1_000),
		CollateralAsset:  "GOLDk",
		CollateralAmount: big.NewInt(1_000),
		Duration:         30 * 24 * time.Hour,
	})
	require.NoError(t, err)

	assert.Zero(t, f.balance("GOLDk", "bob"))
	assert.Equal(t, int64(1_000), f.balance("GOLDk", ledgerAccount))
	assert.Equal(t, int64(1_000), f.ledger.LockedCollateral("GOLDk").Int64())

	// Same-instant settlement owes exactly the principal.
	receipt, err := f.ledger.Repay(f.ctx, "bob", id, big.NewInt(1_000))
	require.NoError(t, err)
	require.True(t, receipt.FullyRepaid)

	assert.Equal(t, int64(1_000), f.balance("GOLDk", "bob"))
	assert.Zero(t, f.balance("GOLDk", ledgerAccount))
	assert.Zero(t, f.ledger.LockedCollateral("GOLDk").Sign())
}

func TestLedger_LockedCollateralTracksActiveLoans(t *testing.T) {
	f := newFixture(t)
	f.credit("GOLDk", "bob", 1_000)
	f.credit("USDk", "bob", 2_000)
	f.credit("GOLDk", "carol", 500)

	bobLoan, err := f.ledger.Open(f.ctx, "bob", &models.BorrowRequest{
		Asset:            "USDk",
		Amount:           big.NewInt(1_000),
		CollateralAsset:  "GOLDk",
		CollateralAmount: big.NewInt(1_000),
		Duration:         30 * 24 * time.Hour,
	})
	require.NoError(t, err)

	carolLoan, err := f.ledger.Open(f.ctx, "carol", &models.BorrowRequest{
		Asset:            "USDk",
		Amount:           big.NewInt(600),
		CollateralAsset:  "GOLDk",
		CollateralAmount: big.NewInt(500),
		Duration:         2 * 24 * time.Hour,
	})
	require.NoError(t, err)

	assert.Equal(t, int64(1_500), f.ledger.LockedCollateral("GOLDk").Int64())

	_, err = f.ledger.Repay(f.ctx, "bob", bobLoan, big.NewInt(1_000))
	require.NoError(t, err)
	assert.Equal(t, int64(500), f.ledger.LockedCollateral("GOLDk").Int64())

	f.advance(5*24*time.Hour + time.Second)
	require.NoError(t, f.ledger.MarkDefault(f.ctx, "keeper", carolLoan))
	assert.Zero(t, f.ledger.LockedCollateral("GOLDk").Sign())
}

func TestLedger_PartialRepayKeepsLoanActive(t *testing.T) {
	f := newFixture(t)
	f.setScore("alice", 800)

	id, err := f.ledger.Open(f.ctx, "alice", &models.BorrowRequest{
		Asset:    "USDk",
		Amount:   big.NewInt(1_000_000),
		Duration: 10 * 24 * time.Hour,
	})
	require.NoError(t, err)

	before, err := f.ledger.GetLoan(f.ctx, id)
	require.NoError(t, err)

	f.advance(5 * 24 * time.Hour)
	receipt, err := f.ledger.Repay(f.ctx, "alice", id, big.NewInt(100_000))
	require.NoError(t, err)
	assert.False(t, receipt.FullyRepaid)
	assert.Equal(t, int64(100_000), receipt.TotalRepaid.Int64())

	after, err := f.ledger.GetLoan(f.ctx, id)
	require.NoError(t, err)
	assert.Equal(t, models.LoanStatusActive, after.Status)
	assert.Equal(t, before.DueTs, after.DueTs)
	assert.Equal(t, int64(100_000), after.PrincipalRepaid.Int64())

	_, ok := f.ledger.ActiveLoanOf("alice")
	assert.True(t, ok)

	// Partial repayment is reputation-neutral.
	score, err := f.store.ScoreOf(f.ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, uint64(800), score)
}

func TestLedger_OverpayIsRefunded(t *testing.T) {
	f := newFixture(t)
	f.setScore("alice", 800)
	f.credit("USDk", "alice", 100_000)

	id, err := f.ledger.Open(f.ctx, "alice", &models.BorrowRequest{
		Asset:    "USDk",
		Amount:   big.NewInt(1_000_000),
		Duration: 10 * 24 * time.Hour,
	})
	require.NoError(t, err)

	f.advance(10 * 24 * time.Hour)
	debt := f.ledger.GetDebt(f.ctx, id)
	balanceBefore := f.balance("USDk", "alice")

	receipt, err := f.ledger.Repay(f.ctx, "alice", id, new(big.Int).Add(debt, big.NewInt(500)))
	require.NoError(t, err)
	assert.True(t, receipt.FullyRepaid)
	assert.Zero(t, receipt.PaidNet.Cmp(debt))
	assert.Zero(t, receipt.TotalRepaid.Cmp(debt))

	// The excess 500 came straight back.
	assert.Equal(t, balanceBefore-debt.Int64(), f.balance("USDk", "alice"))
}

func TestLedger_PenaltyAccruesPastDue(t *testing.T) {
	f := newFixture(t)
	f.setScore("alice", 800)

	id, err := f.ledger.Open(f.ctx, "alice", &models.BorrowRequest{
		Asset:    "USDk",
		Amount:   big.NewInt(1_000_000),
		Duration: 10 * 24 * time.Hour,
	})
	require.NoError(t, err)

	// 10 days at 10% plus 10 overdue days at 30%.
	f.advance(20 * 24 * time.Hour)
	assert.Equal(t, int64(1_010_958), f.ledger.GetDebt(f.ctx, id).Int64())
}

func TestLedger_MarkDefaultTiming(t *testing.T) {
	f := newFixture(t)
	f.credit("GOLDk", "bob", 1_000)

	id, err := f.ledger.Open(f.ctx, "bob", &models.BorrowRequest{
		Asset:            "USDk",
		Amount:           big.NewInt(1_000),
		CollateralAsset:  "GOLDk",
		CollateralAmount: big.NewInt(1_000),
		Duration:         2 * 24 * time.Hour,
	})
	require.NoError(t, err)

	// Exactly at due plus grace is still within the window.
	f.advance(2*24*time.Hour + 72*time.Hour)
	err = f.ledger.MarkDefault(f.ctx, "keeper", id)
	assert.ErrorIs(t, err, consts.ErrNotPastDue)

	f.advance(time.Second)
	require.NoError(t, f.ledger.MarkDefault(f.ctx, "keeper", id))

	// 200 bps keeper bounty out of the 1000 GOLDk escrow.
	assert.Equal(t, int64(20), f.balance("GOLDk", "keeper"))
	assert.Equal(t, int64(980), f.balance("GOLDk", ledgerAccount))
	assert.Zero(t, f.ledger.LockedCollateral("GOLDk").Sign())

	loan, err := f.ledger.GetLoan(f.ctx, id)
	require.NoError(t, err)
	assert.Equal(t, models.LoanStatusDefaulted, loan.Status)
	assert.Equal(t, int64(980), loan.CollateralAmount.Int64())

	badged, err := f.store.HasBadge(f.ctx, "bob")
	require.NoError(t, err)
	assert.True(t, badged)

	_, ok := f.ledger.ActiveLoanOf("bob")
	assert.False(t, ok)

	// Terminal states cannot be defaulted again.
	err = f.ledger.MarkDefault(f.ctx, "keeper", id)
	assert.ErrorIs(t, err, consts.ErrLoanNotActive)
}

func TestLedger_MarkDefaultWithoutKeeperPaysNoBounty(t *testing.T) {
	f := newFixture(t)
	f.credit("GOLDk", "bob", 1_000)

	id, err := f.ledger.Open(f.ctx, "bob", &models.BorrowRequest{
		Asset:            "USDk",
		Amount:           big.NewInt(1_000),
		CollateralAsset:  "GOLDk",
		CollateralAmount: big.NewInt(1_000),
		Duration:         2 * 24 * time.Hour,
	})
	require.NoError(t, err)

	f.advance(5*24*time.Hour + time.Second)
	require.NoError(t, f.ledger.MarkDefault(f.ctx, "", id))

	assert.Equal(t, int64(1_000), f.balance("GOLDk", ledgerAccount))

	loan, err := f.ledger.GetLoan(f.ctx, id)
	require.NoError(t, err)
	assert.Equal(t, int64(1_000), loan.CollateralAmount.Int64())
}

func TestLedger_DefaulterCannotBorrowAgain(t *testing.T) {
	f := newFixture(t)
	f.credit("GOLDk", "bob", 2_000)

	id, err := f.ledger.Open(f.ctx, "bob", &models.BorrowRequest{
		Asset:            "USDk",
		Amount:           big.NewInt(1_000),
		CollateralAsset:  "GOLDk",
		CollateralAmount: big.NewInt(1_000),
		Duration:         2 * 24 * time.Hour,
	})
	require.NoError(t, err)

	f.advance(5*24*time.Hour + time.Second)
	require.NoError(t, f.ledger.MarkDefault(f.ctx, "keeper", id))

	_, err = f.ledger.Open(f.ctx, "bob", &models.BorrowRequest{
		Asset:            "USDk",
		Amount:           big.NewInt(100),
		CollateralAsset:  "GOLDk",
		CollateralAmount: big.NewInt(1_000),
		Duration:         2 * 24 * time.Hour,
	})
	assert.ErrorIs(t, err, consts.ErrPolicyDefaulter)
}

func TestLedger_OpenRejections(t *testing.T) {
	f := newFixture(t)
	f.setScore("alice", 800)

	req := func() *models.BorrowRequest {
		return &models.BorrowRequest{
			Asset:    "USDk",
			Amount:   big.NewInt(1_000),
			Duration: 10 * 24 * time.Hour,
		}
	}

	_, err := f.ledger.Open(f.ctx, "", req())
	assert.ErrorIs(t, err, consts.ErrInvalidBorrower)

	r := req()
	r.Amount = big.NewInt(0)
	_, err = f.ledger.Open(f.ctx, "alice", r)
	assert.ErrorIs(t, err, consts.ErrInvalidAmount)

	r = req()
	r.Duration = time.Hour
	_, err = f.ledger.Open(f.ctx, "alice", r)
	assert.ErrorIs(t, err, consts.ErrDurationOutOfBounds)

	r = req()
	r.Duration = 366 * 24 * time.Hour
	_, err = f.ledger.Open(f.ctx, "alice", r)
	assert.ErrorIs(t, err, consts.ErrDurationOutOfBounds)

	r = req()
	r.Amount = big.NewInt(20_000_000)
	_, err = f.ledger.Open(f.ctx, "alice", r)
	assert.ErrorIs(t, err, consts.ErrInsufficientLiquidity)

	_, err = f.ledger.Open(f.ctx, "alice", req())
	require.NoError(t, err)

	// One active loan per borrower.
	_, err = f.ledger.Open(f.ctx, "alice", req())
	assert.ErrorIs(t, err, consts.ErrActiveLoanExists)
}

func TestLedger_RepayRejections(t *testing.T) {
	f := newFixture(t)
	f.setScore("alice", 800)
	f.credit("USDk", "alice", 100)
	f.credit("USDk", "mallory", 10_000)

	id, err := f.ledger.Open(f.ctx, "alice", &models.BorrowRequest{
		Asset:    "USDk",
		Amount:   big.NewInt(1_000),
		Duration: 10 * 24 * time.Hour,
	})
	require.NoError(t, err)

	_, err = f.ledger.Repay(f.ctx, "mallory", id, big.NewInt(100))
	assert.ErrorIs(t, err, consts.ErrCallerNotBorrower)

	_, err = f.ledger.Repay(f.ctx, "alice", 42, big.NewInt(100))
	assert.ErrorIs(t, err, consts.ErrLoanNotFound)

	_, err = f.ledger.Repay(f.ctx, "alice", id, big.NewInt(0))
	assert.ErrorIs(t, err, consts.ErrInvalidAmount)

	_, err = f.ledger.Repay(f.ctx, "alice", id, big.NewInt(1_000))
	require.NoError(t, err)

	_, err = f.ledger.Repay(f.ctx, "alice", id, big.NewInt(100))
	assert.ErrorIs(t, err, consts.ErrLoanNotActive)
}

func TestLedger_PauseGatesMutatorsOnly(t *testing.T) {
	f := newFixture(t)
	f.setScore("alice", 800)

	id, err := f.ledger.Open(f.ctx, "alice", &models.BorrowRequest{
		Asset:    "USDk",
		Amount:   big.NewInt(1_000),
		Duration: 10 * 24 * time.Hour,
	})
	require.NoError(t, err)

	require.NoError(t, f.ledger.SetPaused(f.ctx, true))
	assert.True(t, f.ledger.Paused())

	_, err = f.ledger.Open(f.ctx, "bob", &models.BorrowRequest{
		Asset:    "USDk",
		Amount:   big.NewInt(100),
		Duration: 10 * 24 * time.Hour,
	})
	assert.ErrorIs(t, err, consts.ErrLedgerPaused)

	_, err = f.ledger.Repay(f.ctx, "alice", id, big.NewInt(100))
	assert.ErrorIs(t, err, consts.ErrLedgerPaused)

	err = f.ledger.MarkDefault(f.ctx, "keeper", id)
	assert.ErrorIs(t, err, consts.ErrLedgerPaused)

	// Reads keep working while paused.
	assert.Positive(t, f.ledger.GetDebt(f.ctx, id).Sign())
	_, err = f.ledger.GetLoan(f.ctx, id)
	require.NoError(t, err)

	require.NoError(t, f.ledger.SetPaused(f.ctx, false))
	_, err = f.ledger.Repay(f.ctx, "alice", id, big.NewInt(100))
	require.NoError(t, err)
}

// reenteringHook calls back into the ledger from inside the opened callback.
type reenteringHook struct {
	ledger *Ledger
}

func (h *reenteringHook) OnLoanOpened(ctx context.Context, loanID uint64, borrower string) error {
	_, err := h.ledger.Repay(ctx, borrower, loanID, big.NewInt(1))
	return err
}

func (h *reenteringHook) OnLoanRepaid(ctx context.Context, loanID uint64, borrower string, paid, totalRepaid, totalDebt *big.Int, fullyRepaid bool) error {
	return nil
}

func (h *reenteringHook) OnLoanDefaulted(ctx context.Context, loanID uint64, borrower string) error {
	return nil
}

func TestLedger_ReentrantHookIsRejectedAndUnwound(t *testing.T) {
	f := newFixture(t)
	f.setScore("alice", 800)
	f.ledger.hook = &reenteringHook{ledger: f.ledger}

	_, err := f.ledger.Open(f.ctx, "alice", &models.BorrowRequest{
		Asset:    "USDk",
		Amount:   big.NewInt(1_000),
		Duration: 10 * 24 * time.Hour,
	})
	assert.ErrorIs(t, err, consts.ErrReentrantCall)

	// Every custody movement was compensated and no state was recorded.
	assert.Zero(t, f.balance("USDk", "alice"))
	assert.Zero(t, f.balance("USDk", treasury))
	assert.Equal(t, int64(10_000_000), f.balance("USDk", ledgerAccount))

	_, ok := f.ledger.ActiveLoanOf("alice")
	assert.False(t, ok)
	_, err = f.ledger.GetLoan(f.ctx, 1)
	assert.ErrorIs(t, err, consts.ErrLoanNotFound)

	// The latch was released on the way out.
	f.ledger.hook = nil
	_, err = f.ledger.Open(f.ctx, "alice", &models.BorrowRequest{
		Asset:    "USDk",
		Amount:   big.NewInt(1_000),
		Duration: 10 * 24 * time.Hour,
	})
	require.NoError(t, err)
}

// failingHook rejects every callback with a fixed error.
type failingHook struct {
	err error
}

func (h *failingHook) OnLoanOpened(ctx context.Context, loanID uint64, borrower string) error {
	return h.err
}

func (h *failingHook) OnLoanRepaid(ctx context.Context, loanID uint64, borrower string, paid, totalRepaid, totalDebt *big.Int, fullyRepaid bool) error {
	return h.err
}

func (h *failingHook) OnLoanDefaulted(ctx context.Context, loanID uint64, borrower string) error {
	return h.err
}

func TestLedger_HookFailureUnwindsEverything(t *testing.T) {
	f := newFixture(t)
	f.setScore("alice", 800)
	f.ledger.hook = &failingHook{err: consts.ErrLoanNotFound}
	f.credit("GOLDk", "alice", 500)

	_, err := f.ledger.Open(f.ctx, "alice", &models.BorrowRequest{
		Asset:            "USDk",
		Amount:           big.NewInt(1_000),
		CollateralAsset:  "GOLDk",
		CollateralAmount: big.NewInt(500),
		Duration:         10 * 24 * time.Hour,
	})
	assert.ErrorIs(t, err, consts.ErrLoanNotFound)

	assert.Zero(t, f.balance("USDk", "alice"))
	assert.Equal(t, int64(500), f.balance("GOLDk", "alice"))
	assert.Zero(t, f.balance("GOLDk", ledgerAccount))
	assert.Equal(t, int64(10_000_000), f.balance("USDk", ledgerAccount))
	assert.Zero(t, f.ledger.LockedCollateral("GOLDk").Sign())
}

func TestLedger_AdminSetters(t *testing.T) {
	f := newFixture(t)
	f.setScore("alice", 800)

	require.NoError(t, f.ledger.SetFees(f.ctx, 0, 0, 0))
	require.NoError(t, f.ledger.SetDurationBounds(f.ctx, time.Hour, 48*time.Hour, time.Hour))

	cfg := f.ledger.Snapshot()
	assert.Zero(t, cfg.OriginationFeeBps)
	assert.Equal(t, time.Hour, cfg.MinDuration)
	assert.Equal(t, 48*time.Hour, cfg.MaxDuration)

	// Zero origination fee disburses the full principal.
	_, err := f.ledger.Open(f.ctx, "alice", &models.BorrowRequest{
		Asset:    "USDk",
		Amount:   big.NewInt(1_000),
		Duration: 2 * time.Hour,
	})
	require.NoError(t, err)
	assert.Equal(t, int64(1_000), f.balance("USDk", "alice"))

	require.NoError(t, f.ledger.SetRiskPolicy(f.ctx, nil))
	_, err = f.ledger.Open(f.ctx, "bob", &models.BorrowRequest{
		Asset:    "USDk",
		Amount:   big.NewInt(1_000),
		Duration: 2 * time.Hour,
	})
	assert.ErrorIs(t, err, consts.ErrRiskPolicyNotSet)

	require.NoError(t, f.ledger.SetInterestModel(f.ctx, nil))
	assert.Zero(t, f.ledger.GetDebt(f.ctx, 1).Sign())
}
