package cmd

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/polyopt/gdphull"
	"github.com/polyopt/gdphull/internal/modelfile"
	"github.com/polyopt/gdphull/model"
)

var (
	relaxMode    string
	relaxEPS     float64
	relaxTargets []string
	relaxJSON    bool
	relaxOutPath string
)

var relaxCmd = &cobra.Command{
	Use:   "relax <model.yaml>",
	Short: "Relax a GDP model file into a continuous algebraic model",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		m, opts, err := loadModelAndOptions(args[0])
		if err != nil {
			return err
		}

		result, err := gdphull.Relax(m, opts)
		if err != nil {
			logger.Error("Relaxation failed", zap.Error(err))
			return err
		}

		out := os.Stdout
		if relaxOutPath != "" {
			f, err := os.Create(relaxOutPath)
			if err != nil {
				return err
			}
			defer f.Close()
			out = f
		}
		if relaxJSON {
			err = modelfile.WriteJSON(out, m)
		} else {
			err = modelfile.WriteText(out, m)
		}
		if err != nil {
			return err
		}

		scope := "nothing to relax"
		if result.Scope != nil {
			scope = result.Scope.Name()
		}
		color.Green("relaxed %s (mode=%s, scope=%s)", args[0], opts.Mode, scope)
		return nil
	},
}

func loadModelAndOptions(path string) (*model.Model, gdphull.Options, error) {
	var opts gdphull.Options
	if cfgFile != "" {
		var err error
		opts, err = gdphull.LoadOptions(cfgFile, logger)
		if err != nil {
			return nil, opts, fmt.Errorf("reading options file: %w", err)
		}
	}
	opts.Logger = logger

	if relaxMode != "" {
		mode, err := gdphull.ParseMode(relaxMode)
		if err != nil {
			return nil, opts, err
		}
		opts.Mode = mode
	}
	if relaxEPS != 0 {
		opts.EPS = relaxEPS
	}
	if len(relaxTargets) > 0 {
		opts.Targets = relaxTargets
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, opts, err
	}
	m, err := modelfile.Load(raw)
	if err != nil {
		return nil, opts, err
	}
	return m, opts, nil
}

func init() {
	relaxCmd.Flags().StringVarP(&relaxMode, "mode", "m", "", "formulation mode: classic, regularized or robust")
	relaxCmd.Flags().Float64Var(&relaxEPS, "eps", 0, "perturbation constant for the regularized/robust modes")
	relaxCmd.Flags().StringSliceVarP(&relaxTargets, "target", "t", nil, "restrict the run to the named sub-trees")
	relaxCmd.Flags().BoolVar(&relaxJSON, "json", false, "write the relaxed model as JSON")
	relaxCmd.Flags().StringVarP(&relaxOutPath, "output", "o", "", "write the relaxed model to a file instead of stdout")
}
