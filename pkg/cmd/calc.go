package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"gopkg.in/yaml.v3"

	"github.com/nekruzvatanshoev/tcoserv/pkg/tcoserv/calc"
	"github.com/nekruzvatanshoev/tcoserv/pkg/tcoserv/dal"
	"github.com/nekruzvatanshoev/tcoserv/pkg/tcoserv/validate"
)

const (
	CalcCmdName  = "calc"
	CalcCmdShort = "Compute a TCO comparison once and print it"
	CalcCmdLong  = `Compute a TCO comparison from flags and an optional scenario file.

Values are resolved in order: built-in defaults, then --input (YAML or JSON,
using the field names printed by "tcoserv defaults"), then explicit flags.
Percentages are on a 0-100 scale.`

	DefaultsCmdName  = "defaults"
	DefaultsCmdShort = "Print the default scenario"
)

// ErrInputRejected is returned by calc once the violations have been printed
var ErrInputRejected = errors.New("input rejected")

type inputFlag struct {
	field dal.Field
	name  string
	usage string
}

var inputFlags = []inputFlag{
	{dal.FieldAnnualMileage, "annual-mileage", "distance driven per year (0-100000)"},
	{dal.FieldEVPrice, "ev-price", "EV purchase price before incentive"},
	{dal.FieldGasPrice, "gas-price", "gasoline vehicle purchase price"},
	{dal.FieldEVIncentive, "ev-incentive", "one-time EV subsidy, at most the EV price"},
	{dal.FieldCEV, "c-ev", "EV energy cost per unit distance (0-100)"},
	{dal.FieldCGas, "c-gas", "gasoline energy cost per unit distance (0-100)"},
	{dal.FieldMaintDeltaPerYear, "maint-delta", "annual maintenance EV minus gas, negative when the EV is cheaper"},
	{dal.FieldResalePctEV, "resale-pct-ev", "EV resale value at the horizon, percent of EV price"},
	{dal.FieldResalePctGas, "resale-pct-gas", "gas resale value at the horizon, percent of gas price"},
	{dal.FieldYears, "years", "ownership horizon in years (1-20)"},
}

var (
	CalcCmd = &cobra.Command{
		Use:   CalcCmdName,
		Short: CalcCmdShort,
		Long:  CalcCmdLong,
		Args:  cobra.NoArgs,
		RunE:  calcCmdFunc(),
	}

	DefaultsCmd = &cobra.Command{
		Use:   DefaultsCmdName,
		Short: DefaultsCmdShort,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			format, _ := cmd.Flags().GetString("output")
			return writeOutput(cmd.OutOrStdout(), format, dal.Defaults())
		},
	}
)

func init() {
	RootCmd.AddCommand(CalcCmd, DefaultsCmd)

	defaults := dal.Defaults()
	flags := CalcCmd.Flags()
	for _, f := range inputFlags {
		v, _ := defaults.Get(f.field)
		flags.Float64(f.name, v, f.usage)
	}
	flags.StringP("input", "i", "", "scenario file (YAML or JSON)")
	flags.StringP("output", "o", "text", "output format: text, json or yaml")

	DefaultsCmd.Flags().StringP("output", "o", "yaml", "output format: json or yaml")
}

// loadScenario reads a YAML or JSON file over the defaults
func loadScenario(path string) (dal.InputParameters, error) {
	params := dal.Defaults()
	if path == "" {
		return params, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return dal.InputParameters{}, fmt.Errorf("read scenario: %w", err)
	}
	// JSON is valid YAML, so one decoder covers both
	if err := yaml.Unmarshal(data, &params); err != nil {
		return dal.InputParameters{}, fmt.Errorf("parse scenario %s: %w", path, err)
	}
	return params, nil
}

// applyFlags overrides params with every input flag set on the command line
func applyFlags(params dal.InputParameters, flags *pflag.FlagSet) (dal.InputParameters, error) {
	for _, f := range inputFlags {
		if !flags.Changed(f.name) {
			continue
		}
		v, err := flags.GetFloat64(f.name)
		if err != nil {
			return dal.InputParameters{}, err
		}
		if params, err = params.With(f.field, v); err != nil {
			return dal.InputParameters{}, err
		}
	}
	return params, nil
}

func calcCmdFunc() func(cmd *cobra.Command, args []string) error {
	return func(cmd *cobra.Command, args []string) error {
		flags := cmd.Flags()
		inputPath, _ := flags.GetString("input")
		format, _ := flags.GetString("output")

		params, err := loadScenario(inputPath)
		if err != nil {
			return err
		}
		if params, err = applyFlags(params, flags); err != nil {
			return err
		}

		result, err := calc.Evaluate(params)
		if err != nil {
			verrs, ok := validate.IsValidationError(err)
			if !ok {
				return err
			}
			for _, v := range verrs {
				fmt.Fprintln(cmd.ErrOrStderr(), v.Error())
			}
			return fmt.Errorf("%w: %d violation(s)", ErrInputRejected, len(verrs))
		}

		return writeOutput(cmd.OutOrStdout(), format, dal.TCOResponse{
			Input:     params,
			Result:    result,
			Breakdown: calc.BreakdownOf(result),
			Verdict:   dal.VerdictOf(result.DiffTCO),
		})
	}
}
