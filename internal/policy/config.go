package policy

import (
	"errors"
	"fmt"
)

// OpenCurves weight the three open choices.
type OpenCurves struct {
	Check, Open, AllIn Curve
}

// CallRaiseCurves weight the four call/raise choices.
type CallRaiseCurves struct {
	Fold, Call, Raise, AllIn Curve
}

// Config holds every threshold and coefficient of the betting policy.
type Config struct {
	// OpenThreshold forces a check below this win probability once the
	// player has drawn.
	OpenThreshold float64
	// ForceAllInThreshold forces all-in above this win probability.
	ForceAllInThreshold float64
	// ForceFoldThreshold forces a fold on call/raise below this win probability.
	ForceFoldThreshold float64

	Open      OpenCurves
	CallRaise CallRaiseCurves

	// Open amounts keep this many antes in reserve.
	KeepAntes float64
	// The share of free chips an open may use is 1/(1+e^(-steepness*(p-center))).
	OpenAmountSteepness float64
	OpenAmountCenter    float64
}

// DefaultConfig returns the tuned logistic policy.
func DefaultConfig() Config {
	return Config{
		OpenThreshold:       0.2,
		ForceAllInThreshold: 0.985,
		ForceFoldThreshold:  0.2,
		Open: OpenCurves{
			Check: Curve{A: 1, B: 1, C: 10, D: -0.2},
			Open:  Curve{A: 0, B: -1, C: 50, D: -0.45},
			AllIn: Curve{A: 0, B: -1, C: 100, D: -0.48},
		},
		CallRaise: CallRaiseCurves{
			Fold:  Curve{A: 1, B: 1, C: 5, D: 0.4, E: 1.2},
			Call:  Curve{A: 0, B: -1, C: 8, D: 0.25, E: 1},
			Raise: Curve{A: 0, B: -1, C: 60, D: -0.45, E: 0.1},
			AllIn: Curve{A: 0, B: -1, C: 200, D: -0.49, E: 0.02},
		},
		KeepAntes:           1,
		OpenAmountSteepness: 30,
		OpenAmountCenter:    0.9,
	}
}

// Validate ensures thresholds are probabilities and curves are finite.
func (c Config) Validate() error {
	for name, v := range map[string]float64{
		"open threshold":         c.OpenThreshold,
		"force all-in threshold": c.ForceAllInThreshold,
		"force fold threshold":   c.ForceFoldThreshold,
		"open amount center":     c.OpenAmountCenter,
	} {
		if v < 0 || v > 1 {
			return fmt.Errorf("%s must be within [0,1], got %g", name, v)
		}
	}
	if c.KeepAntes < 0 {
		return errors.New("keep antes cannot be negative")
	}
	if c.OpenAmountSteepness < 0 {
		return errors.New("open amount steepness cannot be negative")
	}
	curves := []struct {
		name  string
		curve Curve
	}{
		{"open check", c.Open.Check},
		{"open", c.Open.Open},
		{"open all-in", c.Open.AllIn},
		{"fold", c.CallRaise.Fold},
		{"call", c.CallRaise.Call},
		{"raise", c.CallRaise.Raise},
		{"call/raise all-in", c.CallRaise.AllIn},
	}
	for _, cv := range curves {
		if err := cv.curve.validate(cv.name); err != nil {
			return err
		}
	}
	return nil
}
