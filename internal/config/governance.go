package config

import "time"

type Governance struct {
	// MinProposerPower is the minimum staked voting power required to create a proposal
	MinProposerPower int64 `env:"GOVERNANCE_MIN_PROPOSER_POWER" envDefault:"1000"`

	DeadlineWindow time.Duration `env:"GOVERNANCE_DEADLINE_WINDOW" envDefault:"24h"`
	SweepSchedule  string        `env:"GOVERNANCE_SWEEP_SCHEDULE" envDefault:"@every 1m"`
}
