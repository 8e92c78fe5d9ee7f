package policy

import (
	"fmt"
	"math"
	"strings"
)

// Shape selects the functional form of a weight curve.
type Shape uint8

const (
	Logistic Shape = iota
	Exponential
)

func (s Shape) String() string {
	switch s {
	case Logistic:
		return "logistic"
	case Exponential:
		return "exponential"
	default:
		return "unknown"
	}
}

// ParseShape reads "logistic" or "exponential".
func ParseShape(s string) (Shape, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "logistic", "":
		return Logistic, nil
	case "exponential":
		return Exponential, nil
	default:
		return 0, fmt.Errorf("unknown curve shape %q", s)
	}
}

// Curve maps a win probability and a risk ratio to a non-negative sampling
// weight. With x = p - 0.5 + D - E*risk:
//
//	logistic:    A - B / (1 + e^(-C*x))
//	exponential: A + B * e^(C*x)
type Curve struct {
	Shape      Shape
	A, B, C, D float64
	E          float64 // risk sensitivity, unused by open decisions
}

// Weight evaluates the curve, clamped at zero.
func (c Curve) Weight(pWin, risk float64) float64 {
	x := pWin - 0.5 + c.D - c.E*risk
	var k float64
	switch c.Shape {
	case Exponential:
		k = c.A + c.B*math.Exp(c.C*x)
	default:
		k = c.A - c.B/(1+math.Exp(-c.C*x))
	}
	if k < 0 || math.IsNaN(k) {
		return 0
	}
	return k
}

func (c Curve) validate(name string) error {
	if c.Shape > Exponential {
		return fmt.Errorf("%s curve: unknown shape %d", name, c.Shape)
	}
	for _, v := range []float64{c.A, c.B, c.C, c.D, c.E} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("%s curve: coefficients must be finite", name)
		}
	}
	return nil
}
