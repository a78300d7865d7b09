package dal

import (
	"errors"
	"fmt"
)

// ErrUnknownField is returned when a field path does not name an input parameter
var ErrUnknownField = errors.New("unknown field")

// Field names an input parameter by its external path
type Field string

const (
	FieldAnnualMileage     Field = "annualMileage"
	FieldEVPrice           Field = "evPrice"
	FieldGasPrice          Field = "gasPrice"
	FieldEVIncentive       Field = "evIncentive"
	FieldCEV               Field = "cEV"
	FieldCGas              Field = "cGas"
	FieldMaintDeltaPerYear Field = "maintDeltaPerYear"
	FieldResalePctEV       Field = "resalePctEV"
	FieldResalePctGas      Field = "resalePctGas"
	FieldYears             Field = "years"
)

// Fields returns every input field in declaration order
func Fields() []Field {
	return []Field{
		FieldAnnualMileage,
		FieldEVPrice,
		FieldGasPrice,
		FieldEVIncentive,
		FieldCEV,
		FieldCGas,
		FieldMaintDeltaPerYear,
		FieldResalePctEV,
		FieldResalePctGas,
		FieldYears,
	}
}

// InputParameters defines the inputs of a TCO comparison.
// Percentages are kept on a 0-100 scale.
type InputParameters struct {
	AnnualMileage     float64 `json:"annualMileage" yaml:"annualMileage"`
	EVPrice           float64 `json:"evPrice" yaml:"evPrice"`
	GasPrice          float64 `json:"gasPrice" yaml:"gasPrice"`
	EVIncentive       float64 `json:"evIncentive" yaml:"evIncentive"`
	CEV               float64 `json:"cEV" yaml:"cEV"`
	CGas              float64 `json:"cGas" yaml:"cGas"`
	MaintDeltaPerYear float64 `json:"maintDeltaPerYear" yaml:"maintDeltaPerYear"`
	ResalePctEV       float64 `json:"resalePctEV" yaml:"resalePctEV"`
	ResalePctGas      float64 `json:"resalePctGas" yaml:"resalePctGas"`
	Years             float64 `json:"years" yaml:"years"`
}

// Defaults returns the default scenario
func Defaults() InputParameters {
	return InputParameters{
		AnnualMileage:     12000,
		EVPrice:           3000000,
		GasPrice:          2000000,
		EVIncentive:       150000,
		CEV:               1.5,
		CGas:              6.5,
		MaintDeltaPerYear: -5000,
		ResalePctEV:       45,
		ResalePctGas:      40,
		Years:             5,
	}
}

// Get returns the value stored for field
func (p InputParameters) Get(field Field) (float64, bool) {
	ptr := p.ref(field)
	if ptr == nil {
		return 0, false
	}
	return *ptr, true
}

// With returns a copy of p with field set to value. p itself is left untouched.
func (p InputParameters) With(field Field, value float64) (InputParameters, error) {
	ptr := p.ref(field)
	if ptr == nil {
		return p, fmt.Errorf("%w: %q", ErrUnknownField, field)
	}
	*ptr = value
	return p, nil
}

// Values returns the field values in Fields order
func (p InputParameters) Values() []float64 {
	fields := Fields()
	values := make([]float64, len(fields))
	for i, f := range fields {
		values[i], _ = p.Get(f)
	}
	return values
}

// ref points into the receiver's own copy
func (p *InputParameters) ref(field Field) *float64 {
	switch field {
	case FieldAnnualMileage:
		return &p.AnnualMileage
	case FieldEVPrice:
		return &p.EVPrice
	case FieldGasPrice:
		return &p.GasPrice
	case FieldEVIncentive:
		return &p.EVIncentive
	case FieldCEV:
		return &p.CEV
	case FieldCGas:
		return &p.CGas
	case FieldMaintDeltaPerYear:
		return &p.MaintDeltaPerYear
	case FieldResalePctEV:
		return &p.ResalePctEV
	case FieldResalePctGas:
		return &p.ResalePctGas
	case FieldYears:
		return &p.Years
	}
	return nil
}

// TCOResult defines the outcome of a TCO comparison
type TCOResult struct {
	KmTotal    float64 `json:"kmTotal" yaml:"kmTotal"`
	UpfrontEV  float64 `json:"upfrontEV" yaml:"upfrontEV"`
	UpfrontGas float64 `json:"upfrontGas" yaml:"upfrontGas"`
	EnergyEV   float64 `json:"energyEV" yaml:"energyEV"`
	EnergyGas  float64 `json:"energyGas" yaml:"energyGas"`
	MaintDelta float64 `json:"maintDelta" yaml:"maintDelta"`
	ResaleEV   float64 `json:"resaleEV" yaml:"resaleEV"`
	ResaleGas  float64 `json:"resaleGas" yaml:"resaleGas"`
	TCOEV      float64 `json:"tcoEV" yaml:"tcoEV"`
	TCOGas     float64 `json:"tcoGas" yaml:"tcoGas"`
	DiffTCO    float64 `json:"diffTCO" yaml:"diffTCO"`
	CPKEV      float64 `json:"cpkEV" yaml:"cpkEV"`
	CPKGas     float64 `json:"cpkGas" yaml:"cpkGas"`
}
