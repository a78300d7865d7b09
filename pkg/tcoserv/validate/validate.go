// Package validate checks TCO input parameters against their ranges and
// cross-field constraints. Every violation is reported, not just the first.
package validate

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/nekruzvatanshoev/tcoserv/pkg/tcoserv/dal"
)

// MsgIncentiveExceedsPrice is reported on evIncentive when it is above evPrice
const MsgIncentiveExceedsPrice = "Incentive cannot exceed EV price"

// MsgNotFinite is reported on a field holding NaN or an infinity
const MsgNotFinite = "must be a finite number"

// Violation ties a message to the field path that caused it
type Violation struct {
	Field   dal.Field `json:"field" yaml:"field"`
	Message string    `json:"message" yaml:"message"`
}

func (v Violation) Error() string {
	return fmt.Sprintf("%s: %s", v.Field, v.Message)
}

// ValidationErrors collects every violation found in one input
type ValidationErrors []Violation

func (e ValidationErrors) Error() string {
	msgs := make([]string, len(e))
	for i, v := range e {
		msgs[i] = v.Error()
	}
	return "invalid input: " + strings.Join(msgs, "; ")
}

// Fields returns the distinct field paths that carry a violation
func (e ValidationErrors) Fields() []dal.Field {
	seen := make(map[dal.Field]bool, len(e))
	var fields []dal.Field
	for _, v := range e {
		if !seen[v.Field] {
			seen[v.Field] = true
			fields = append(fields, v.Field)
		}
	}
	return fields
}

// IsValidationError unwraps err into its violations
func IsValidationError(err error) (ValidationErrors, bool) {
	var verrs ValidationErrors
	if errors.As(err, &verrs) {
		return verrs, true
	}
	return nil, false
}

type rangeRule struct {
	field    dal.Field
	min, max *float64
}

// crossRule relates several fields and is skipped when any of its inputs
// is not a finite number
type crossRule struct {
	field   dal.Field
	inputs  []dal.Field
	ok      func(p dal.InputParameters) bool
	message string
}

func bound(v float64) *float64 { return &v }

var rangeRules = []rangeRule{
	{field: dal.FieldAnnualMileage, min: bound(0), max: bound(100000)},
	{field: dal.FieldEVPrice, min: bound(0)},
	{field: dal.FieldGasPrice, min: bound(0)},
	{field: dal.FieldEVIncentive, min: bound(0)},
	{field: dal.FieldCEV, min: bound(0), max: bound(100)},
	{field: dal.FieldCGas, min: bound(0), max: bound(100)},
	{field: dal.FieldMaintDeltaPerYear},
	{field: dal.FieldResalePctEV, min: bound(0), max: bound(100)},
	{field: dal.FieldResalePctGas, min: bound(0), max: bound(100)},
	{field: dal.FieldYears, min: bound(1), max: bound(20)},
}

var crossRules = []crossRule{
	{
		field:   dal.FieldEVIncentive,
		inputs:  []dal.Field{dal.FieldEVIncentive, dal.FieldEVPrice},
		ok:      func(p dal.InputParameters) bool { return p.EVIncentive <= p.EVPrice },
		message: MsgIncentiveExceedsPrice,
	},
}

func (r crossRule) dependsOn(fields map[dal.Field]bool) bool {
	for _, f := range r.inputs {
		if fields[f] {
			return true
		}
	}
	return false
}

func isFinite(v float64) bool { return !math.IsNaN(v) && !math.IsInf(v, 0) }

func (r rangeRule) check(v float64) (string, bool) {
	switch {
	case !isFinite(v):
		return MsgNotFinite, false
	case r.min != nil && v < *r.min:
		return fmt.Sprintf("must be greater than or equal to %g", *r.min), false
	case r.max != nil && v > *r.max:
		return fmt.Sprintf("must be less than or equal to %g", *r.max), false
	}
	return "", true
}

// Validate returns p unchanged when it satisfies every rule, or a
// ValidationErrors listing range violations in field order followed by
// cross-field violations.
func Validate(p dal.InputParameters) (dal.InputParameters, error) {
	var verrs ValidationErrors
	nonFinite := map[dal.Field]bool{}

	for _, rule := range rangeRules {
		v, _ := p.Get(rule.field)
		if msg, ok := rule.check(v); !ok {
			verrs = append(verrs, Violation{Field: rule.field, Message: msg})
		}
		if !isFinite(v) {
			nonFinite[rule.field] = true
		}
	}

	for _, rule := range crossRules {
		if rule.dependsOn(nonFinite) {
			continue
		}
		if !rule.ok(p) {
			verrs = append(verrs, Violation{Field: rule.field, Message: rule.message})
		}
	}

	if len(verrs) > 0 {
		return dal.InputParameters{}, verrs
	}
	return p, nil
}
