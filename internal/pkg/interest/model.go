package interest

import "math/big"

// SecondsPerYear is the accrual year used by the annualized rates.
const SecondsPerYear = 365 * 24 * 60 * 60

// BpsDenominator defines the scaling factor used for basis point math.
const BpsDenominator = 10_000

var rateDenominator = new(big.Int).Mul(big.NewInt(SecondsPerYear), big.NewInt(BpsDenominator))

// Model computes owed principal plus interest as a pure function of time.
// Rates are annual percentages in basis points and are immutable; swapping the
// model is how rates change. All division truncates toward zero, so interest
// rounds down in the borrower's favor.
type Model struct {
	aprBps        uint64
	penaltyAprBps uint64
}

func NewModel(aprBps, penaltyAprBps uint64) *Model {
	return &Model{
		aprBps:        aprBps,
		penaltyAprBps: penaltyAprBps,
	}
}

func (m *Model) AprBps() uint64 {
	return m.aprBps
}

func (m *Model) PenaltyAprBps() uint64 {
	return m.penaltyAprBps
}

// Debt returns principal plus normal-rate interest accrued over [startTs, nowTs].
// Zero principal or non-positive elapsed time owes exactly the principal.
func (m *Model) Debt(principal *big.Int, startTs, nowTs int64) *big.Int {
	if principal == nil {
		return new(big.Int)
	}
	if principal.Sign() <= 0 || nowTs <= startTs {
		return new(big.Int).Set(principal)
	}

	owed := new(big.Int).Set(principal)
	return owed.Add(owed, accrue(principal, m.aprBps, nowTs-startTs))
}

// DebtWithPenalty accrues normal-rate interest over [startTs, effectiveDue] and
// penalty-rate interest over (effectiveDue, nowTs], where effectiveDue is dueTs
// bounded below by startTs.
func (m *Model) DebtWithPenalty(principal *big.Int, startTs, dueTs, nowTs int64) *big.Int {
	effectiveDue := dueTs
	if effectiveDue < startTs {
		effectiveDue = startTs
	}
	if nowTs <= effectiveDue {
		return m.Debt(principal, startTs, nowTs)
	}
	if principal == nil {
		return new(big.Int)
	}
	if principal.Sign() <= 0 {
		return new(big.Int).Set(principal)
	}

	owed := new(big.Int).Set(principal)
	owed.Add(owed, accrue(principal, m.aprBps, effectiveDue-startTs))
	return owed.Add(owed, accrue(principal, m.penaltyAprBps, nowTs-effectiveDue))
}

// accrue computes principal * rateBps * seconds / (SecondsPerYear * 10000) with
// the multiplications done first at arbitrary precision.
func accrue(principal *big.Int, rateBps uint64, seconds int64) *big.Int {
	if rateBps == 0 || seconds <= 0 {
		return new(big.Int)
	}

	n := new(big.Int).Set(principal)
	n.Mul(n, new(big.Int).SetUint64(rateBps))
	n.Mul(n, big.NewInt(seconds))
	return n.Quo(n, rateDenominator)
}
