package configs

import (
	"os"

	"gopkg.in/yaml.v3"
)

// Params holds the numeric knobs of the credit ledger. The simpler protocol
// variants (no fees, no bounty, permissive verifier) are expressed by zeroing
// the relevant values rather than by separate code paths.
type Params struct {
	Risk struct {
		MaxRatioBps         uint64 `yaml:"max_ratio_bps"`
		ScoreFree           uint64 `yaml:"score_free"`
		NoCollateralCeiling string `yaml:"no_collateral_ceiling"`
		RequireProof        bool   `yaml:"require_proof"`
	} `yaml:"risk"`
	Interest struct {
		AprBps        uint64 `yaml:"apr_bps"`
		PenaltyAprBps uint64 `yaml:"penalty_apr_bps"`
	} `yaml:"interest"`
	Ledger struct {
		OriginationFeeBps  uint64 `yaml:"origination_fee_bps"`
		ProtocolFeeBps     uint64 `yaml:"protocol_fee_bps"`
		BountyBps          uint64 `yaml:"bounty_bps"`
		MinDurationSeconds int64  `yaml:"min_duration_seconds"`
		MaxDurationSeconds int64  `yaml:"max_duration_seconds"`
		GracePeriodSeconds int64  `yaml:"grace_period_seconds"`
	} `yaml:"ledger"`
	Reputation struct {
		RepayPoints uint64 `yaml:"repay_points"`
	} `yaml:"reputation"`
}

// LoadParams reads the YAML parameters file named by PARAMS_FILE.
func LoadParams(path string) (*Params, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var p Params
	if err := yaml.Unmarshal(raw, &p); err != nil {
		return nil, err
	}

	return &p, nil
}
