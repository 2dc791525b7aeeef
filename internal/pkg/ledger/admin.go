package ledger

import (
	"context"
	"time"

	"meridian/kudos_credit_ledger/internal/pkg/logger"
)

// Admin surface. Setters take the same reentrancy latch as the lifecycle
// operations so a hook cannot reconfigure the ledger mid-flight.

func (l *Ledger) SetPaused(ctx context.Context, paused bool) error {
	if err := l.enter(); err != nil {
		return err
	}
	defer l.leave()

	l.paused = paused
	logger.Warn(ctx, "ledger paused=%t", paused)
	return nil
}

func (l *Ledger) SetRiskPolicy(ctx context.Context, policy RiskAssessor) error {
	if err := l.enter(); err != nil {
		return err
	}
	defer l.leave()

	l.policy = policy
	return nil
}

func (l *Ledger) SetInterestModel(ctx context.Context, model DebtModel) error {
	if err := l.enter(); err != nil {
		return err
	}
	defer l.leave()

	l.model = model
	return nil
}

func (l *Ledger) SetFees(ctx context.Context, originationBps, protocolBps, bountyBps uint64) error {
	if err := l.enter(); err != nil {
		return err
	}
	defer l.leave()

	l.cfg.OriginationFeeBps = originationBps
	l.cfg.ProtocolFeeBps = protocolBps
	l.cfg.BountyBps = bountyBps
	logger.Info(ctx, "fees updated: origination=%d protocol=%d bounty=%d", originationBps, protocolBps, bountyBps)
	return nil
}

func (l *Ledger) SetDurationBounds(ctx context.Context, min, max, grace time.Duration) error {
	if err := l.enter(); err != nil {
		return err
	}
	defer l.leave()

	l.cfg.MinDuration = min
	l.cfg.MaxDuration = max
	l.cfg.GracePeriod = grace
	return nil
}

// Snapshot returns a copy of the current configuration.
func (l *Ledger) Snapshot() Config {
	return l.cfg
}
