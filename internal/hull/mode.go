package hull

import "go.uber.org/zap"

// Mode selects the perspective-function formulation used for nonlinear
// constraint bodies.
//
// ModeClassic is the original convex hull of Lee & Grossmann (2000):
//
//	y * h(v/y) <= 0
//
// ModeRegularized is the Grossmann & Lee (2003) variant, which keeps the
// denominator away from zero:
//
//	(y + eps) * h(v/(y + eps)) <= 0
//
// ModeRobust is the Furman, Sawaya & Grossmann formulation, which stays exact
// at y in {0,1} while avoiding the numerical trouble of the classic form:
//
//	((1-eps)*y + eps) * h(v/((1-eps)*y + eps)) - eps*h(0)*(1-y) <= 0
type Mode int

const (
	ModeClassic Mode = iota + 1
	ModeRegularized
	ModeRobust
)

func (m Mode) String() string {
	switch m {
	case ModeClassic:
		return "classic"
	case ModeRegularized:
		return "regularized"
	case ModeRobust:
		return "robust"
	default:
		return "unknown"
	}
}

// ParseMode parses a formulation mode name.
func ParseMode(s string) (Mode, error) {
	switch s {
	case "classic":
		return ModeClassic, nil
	case "regularized":
		return ModeRegularized, nil
	case "robust", "":
		return ModeRobust, nil
	default:
		return 0, newError(ErrUnknownMode, s, "want classic, regularized or robust")
	}
}

// DefaultEPS is the perturbation constant used by the regularized and robust
// formulations.
const DefaultEPS = 1e-2

// Config parameterizes a transformation run. The zero value is usable: mode
// defaults to ModeRobust, EPS to DefaultEPS, logging to a nop logger.
type Config struct {
	Mode   Mode
	EPS    float64
	Logger *zap.Logger
}

func (c Config) withDefaults() (Config, error) {
	if c.Mode == 0 {
		c.Mode = ModeRobust
	}
	switch c.Mode {
	case ModeClassic, ModeRegularized, ModeRobust:
	default:
		return c, newError(ErrUnknownMode, c.Mode.String(), "invalid mode %d", int(c.Mode))
	}
	if c.EPS == 0 {
		c.EPS = DefaultEPS
	}
	if c.Logger == nil {
		c.Logger = zap.NewNop()
	}
	return c, nil
}
