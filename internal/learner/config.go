package learner

import (
	"errors"
	"fmt"
	"time"

	"github.com/lox/drawpoker/poker"
)

// MaxPlayers is the largest table one deck can serve when every player
// discards all five cards.
const MaxPlayers = poker.NumCards / (2 * poker.HandSize)

// Config controls a simulation run.
type Config struct {
	Players       int
	Workers       int
	Seed          int64 // zero picks a seed from the clock
	Iterations    int
	ProgressEvery time.Duration
}

// DefaultConfig returns heads-up simulation with one worker.
func DefaultConfig() Config {
	return Config{
		Players:       2,
		Workers:       1,
		Iterations:    100000,
		ProgressEvery: 10 * time.Second,
	}
}

// Validate ensures the run parameters are usable.
func (c Config) Validate() error {
	if c.Players < 1 || c.Players > MaxPlayers {
		return fmt.Errorf("players must be between 1 and %d", MaxPlayers)
	}
	if c.Workers <= 0 {
		return errors.New("workers must be > 0")
	}
	if c.Iterations < 0 {
		return errors.New("iterations cannot be negative")
	}
	if c.ProgressEvery <= 0 {
		return errors.New("progress interval must be > 0")
	}
	return nil
}
