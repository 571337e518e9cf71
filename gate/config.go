package gate

import (
	"fmt"
	"time"
)

type Config struct {
	StartingBalance int64
	Ante            int64

	// Decision window after a deal.
	DecisionTimeout time.Duration
	// Seconds between a resolved round and the next automatic deal.
	CountdownSeconds int

	// RNG seed (0 => time-based)
	Seed int64
}

func DefaultConfig() Config {
	return Config{
		StartingBalance:  DefaultStartingBalance,
		Ante:             DefaultAnte,
		DecisionTimeout:  DefaultDecisionTimeout,
		CountdownSeconds: DefaultCountdownSeconds,
	}
}

func (c Config) validate() error {
	if c.StartingBalance <= 0 {
		return fmt.Errorf("StartingBalance must be > 0")
	}
	if c.Ante <= 0 {
		return fmt.Errorf("Ante must be > 0")
	}
	if c.DecisionTimeout <= 0 {
		return fmt.Errorf("DecisionTimeout must be > 0")
	}
	if c.CountdownSeconds < 0 {
		return fmt.Errorf("CountdownSeconds must be >= 0")
	}
	return nil
}
