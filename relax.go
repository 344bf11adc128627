// Package gdphull relaxes generalized disjunctive programs into continuous
// algebraic models by forming the convex hull relaxation of each disjunction.
package gdphull

import (
	"os"
	"sort"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/polyopt/gdphull/internal/hull"
	"github.com/polyopt/gdphull/model"
)

// Formulation modes, re-exported for callers.
const (
	ModeClassic     = hull.ModeClassic
	ModeRegularized = hull.ModeRegularized
	ModeRobust      = hull.ModeRobust
)

// DefaultEPS is the default perturbation constant of the regularized and
// robust formulations.
const DefaultEPS = hull.DefaultEPS

// ParseMode parses a formulation mode name ("classic", "regularized",
// "robust"; empty means robust).
func ParseMode(s string) (hull.Mode, error) { return hull.ParseMode(s) }

// Options configures one relaxation run.
type Options struct {
	// Mode selects the perspective-function formulation. Zero means robust.
	Mode hull.Mode
	// EPS perturbs the regularized/robust denominators. Zero means DefaultEPS.
	EPS float64
	// Targets restricts the run to the named sub-trees (dot-separated paths;
	// a disjunction row as "path[key]"). Empty means the whole model.
	Targets []string
	// Logger receives debug/warn output. Nil means no logging.
	Logger *zap.Logger
}

// Relax transforms the model in place and returns the run result: the
// relaxation scope and the ledger views mapping originals to generated
// artifacts.
func Relax(m *model.Model, opts Options) (*hull.Result, error) {
	engine, err := hull.New(hull.Config{
		Mode:   opts.Mode,
		EPS:    opts.EPS,
		Logger: opts.Logger,
	})
	if err != nil {
		return nil, err
	}
	return engine.Apply(m, opts.Targets...)
}

// fileConfig is the on-disk shape of a .gdphull.yaml options file.
type fileConfig struct {
	Mode    string   `yaml:"mode"`
	EPS     float64  `yaml:"eps"`
	Targets []string `yaml:"targets"`
}

// LoadOptions reads run options from a YAML file. Keys other than mode, eps
// and targets are warned about and ignored, not rejected.
func LoadOptions(path string, logger *zap.Logger) (Options, error) {
	var opts Options

	raw, err := os.ReadFile(path)
	if err != nil {
		return opts, err
	}

	var keys map[string]any
	if err := yaml.Unmarshal(raw, &keys); err != nil {
		return opts, err
	}
	unknown := make([]string, 0, len(keys))
	for key := range keys {
		switch key {
		case "mode", "eps", "targets":
		default:
			unknown = append(unknown, key)
		}
	}
	sort.Strings(unknown)
	for _, key := range unknown {
		if logger != nil {
			logger.Warn("unrecognized option", zap.String("key", key), zap.String("file", path))
		}
	}

	var config fileConfig
	if err := yaml.Unmarshal(raw, &config); err != nil {
		return opts, err
	}

	mode, err := hull.ParseMode(config.Mode)
	if err != nil {
		return opts, err
	}
	opts.Mode = mode
	opts.EPS = config.EPS
	opts.Targets = config.Targets
	opts.Logger = logger
	return opts, nil
}
