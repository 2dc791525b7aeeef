package risk

import (
	"context"
	"math/big"

	"meridian/kudos_credit_ledger/internal/pkg/interest"
	"meridian/kudos_credit_ledger/internal/pkg/models"
	"meridian/kudos_credit_ledger/internal/pkg/oracle"
	"meridian/kudos_credit_ledger/internal/pkg/proof"
	"meridian/kudos_credit_ledger/internal/pkg/reputation"
)

// Reason codes carried on a rejected (or capped) assessment.
type Reason string

const (
	ReasonNone         Reason = ""
	ReasonDefaulter    Reason = "DEFAULTER"
	ReasonMissingProof Reason = "MISSING_PROOF"
	ReasonBadProof     Reason = "BAD_PROOF"
	ReasonNoOracle     Reason = "NO_ORACLE"
	ReasonNoCollateral Reason = "NO_COLLATERAL"
	ReasonBadPrice     Reason = "BAD_PRICE"
	ReasonOverLimit    Reason = "LIMIT"
)

// Result is the ephemeral outcome of a borrow assessment.
type Result struct {
	Allowed            bool
	CollateralRatioBps uint64
	MaxBorrow          *big.Int
	Reason             Reason
}

type Config struct {
	// MaxRatioBps is the required collateral ratio at score zero, e.g. 15000
	// for 150% collateralization.
	MaxRatioBps uint64
	// ScoreFree is the reputation score at which the ratio reaches zero.
	ScoreFree uint64
	// NoCollateralCeiling caps uncollateralized borrowing at the top tier.
	NoCollateralCeiling *big.Int
	// RequireProof demands a verifiable identity proof on every request.
	RequireProof bool
}

// Policy decides admission and collateral requirements for borrow requests.
// The reputation store, price feed and proof verifier are all optional; a nil
// store means "no defaulters, score zero", and feed or verifier failures
// degrade to rejection of the single request, never to a crash.
type Policy struct {
	cfg        Config
	reputation reputation.Store
	feed       oracle.PriceFeed
	verifier   proof.Verifier
}

func NewPolicy(cfg Config, store reputation.Store, feed oracle.PriceFeed, verifier proof.Verifier) *Policy {
	return &Policy{
		cfg:        cfg,
		reputation: store,
		feed:       feed,
		verifier:   verifier,
	}
}

// IsDefaulter reports whether the borrower carries the default badge.
func (p *Policy) IsDefaulter(ctx context.Context, borrower string) bool {
	if p.reputation == nil {
		return false
	}
	badged, err := p.reputation.HasBadge(ctx, borrower)
	return err == nil && badged
}

// CollateralRatioBps maps the borrower's current score through the ratio ladder.
func (p *Policy) CollateralRatioBps(ctx context.Context, borrower string) uint64 {
	return p.RatioForScore(p.scoreOf(ctx, borrower))
}

// RatioForScore interpolates linearly from MaxRatioBps at score zero down to
// zero at ScoreFree, using ceiling division so no score lands in a more lenient
// tier than intended.
func (p *Policy) RatioForScore(score uint64) uint64 {
	if p.cfg.ScoreFree == 0 || score >= p.cfg.ScoreFree {
		return 0
	}
	remaining := p.cfg.ScoreFree - score
	return (p.cfg.MaxRatioBps*remaining + p.cfg.ScoreFree - 1) / p.cfg.ScoreFree
}

// AssessBorrow runs the admission checks in order, short-circuiting with a
// distinct reason per rejection. A LIMIT rejection still reports the computed
// ceiling so the caller can retry with a smaller amount.
func (p *Policy) AssessBorrow(ctx context.Context, borrower string, req *models.BorrowRequest) Result {
	if p.IsDefaulter(ctx, borrower) {
		return Result{MaxBorrow: new(big.Int), Reason: ReasonDefaulter}
	}

	if p.cfg.RequireProof {
		if len(req.Proof) == 0 {
			return Result{MaxBorrow: new(big.Int), Reason: ReasonMissingProof}
		}
		if p.verifier == nil {
			return Result{MaxBorrow: new(big.Int), Reason: ReasonBadProof}
		}
		ok, err := p.verifier.Verify(ctx, borrower, req.Proof)
		if err != nil || !ok {
			return Result{MaxBorrow: new(big.Int), Reason: ReasonBadProof}
		}
	}

	ratio := p.CollateralRatioBps(ctx, borrower)
	if ratio == 0 {
		ceiling := new(big.Int)
		if p.cfg.NoCollateralCeiling != nil {
			ceiling.Set(p.cfg.NoCollateralCeiling)
		}
		if req.Amount != nil && req.Amount.Cmp(ceiling) > 0 {
			return Result{MaxBorrow: ceiling, Reason: ReasonOverLimit}
		}
		return Result{Allowed: true, MaxBorrow: ceiling}
	}

	if req.CollateralAsset == "" || req.CollateralAmount == nil || req.CollateralAmount.Sign() <= 0 {
		return Result{CollateralRatioBps: ratio, MaxBorrow: new(big.Int), Reason: ReasonNoCollateral}
	}
	if p.feed == nil {
		return Result{CollateralRatioBps: ratio, MaxBorrow: new(big.Int), Reason: ReasonNoOracle}
	}

	price, decimals, err := p.feed.GetPrice(ctx, req.CollateralAsset, req.Asset)
	if err != nil || price == nil || price.Sign() <= 0 {
		return Result{CollateralRatioBps: ratio, MaxBorrow: new(big.Int), Reason: ReasonBadPrice}
	}

	// Collateral value in debt-asset terms, then the ceiling that value supports.
	value := new(big.Int).Mul(req.CollateralAmount, price)
	value.Quo(value, pow10(decimals))

	maxBorrow := value.Mul(value, big.NewInt(interest.BpsDenominator))
	maxBorrow.Quo(maxBorrow, new(big.Int).SetUint64(ratio))

	if req.Amount != nil && req.Amount.Cmp(maxBorrow) > 0 {
		return Result{CollateralRatioBps: ratio, MaxBorrow: maxBorrow, Reason: ReasonOverLimit}
	}

	return Result{Allowed: true, CollateralRatioBps: ratio, MaxBorrow: maxBorrow}
}

func (p *Policy) scoreOf(ctx context.Context, borrower string) uint64 {
	if p.reputation == nil {
		return 0
	}
	score, err := p.reputation.ScoreOf(ctx, borrower)
	if err != nil {
		return 0
	}
	return score
}

func pow10(decimals uint8) *big.Int {
	return new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(decimals)), nil)
}
