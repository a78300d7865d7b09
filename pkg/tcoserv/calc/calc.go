package calc

import (
	"math"

	"github.com/nekruzvatanshoev/tcoserv/pkg/tcoserv/dal"
	"github.com/nekruzvatanshoev/tcoserv/pkg/tcoserv/validate"
)

// ComputeTCO computes the ownership costs of both vehicles.
// p must have passed validate.Validate.
func ComputeTCO(p dal.InputParameters) dal.TCOResult {
	kmTotal := p.AnnualMileage * p.Years

	upfrontEV := p.EVPrice - p.EVIncentive
	upfrontGas := p.GasPrice

	energyEV := p.CEV * kmTotal
	energyGas := p.CGas * kmTotal

	// already EV minus gas, so it lands on the EV side only
	maintDelta := p.MaintDeltaPerYear * p.Years

	resaleEV := p.EVPrice * (p.ResalePctEV / 100)
	resaleGas := p.GasPrice * (p.ResalePctGas / 100)

	tcoEV := upfrontEV + energyEV + maintDelta - resaleEV
	tcoGas := upfrontGas + energyGas - resaleGas

	var cpkEV, cpkGas float64
	if kmTotal > 0 {
		cpkEV = tcoEV / kmTotal
		cpkGas = tcoGas / kmTotal
	}

	return dal.TCOResult{
		KmTotal:    kmTotal,
		UpfrontEV:  upfrontEV,
		UpfrontGas: upfrontGas,
		EnergyEV:   energyEV,
		EnergyGas:  energyGas,
		MaintDelta: maintDelta,
		ResaleEV:   resaleEV,
		ResaleGas:  resaleGas,
		TCOEV:      tcoEV,
		TCOGas:     tcoGas,
		DiffTCO:    tcoEV - tcoGas,
		CPKEV:      cpkEV,
		CPKGas:     cpkGas,
	}
}

// Evaluate validates p and computes its result
func Evaluate(p dal.InputParameters) (dal.TCOResult, error) {
	valid, err := validate.Validate(p)
	if err != nil {
		return dal.TCOResult{}, err
	}
	result := ComputeTCO(valid)
	if err := CheckFinite(result); err != nil {
		return dal.TCOResult{}, err
	}
	return result, nil
}

// MsgOverflow is reported on an input whose magnitude drives a result past
// the float64 range
const MsgOverflow = "is too large, the result is not a finite number"

type term struct {
	field dal.Field
	value float64
}

// CheckFinite returns a validate.ValidationErrors naming the inputs behind
// every non-finite value of r, or nil when r is finite throughout.
// Each overflowing cost is attributed to its largest term.
func CheckFinite(r dal.TCOResult) error {
	evTerms := []term{
		{dal.FieldEVPrice, r.UpfrontEV},
		{dal.FieldCEV, r.EnergyEV},
		{dal.FieldMaintDeltaPerYear, r.MaintDelta},
		{dal.FieldEVPrice, r.ResaleEV},
	}
	gasTerms := []term{
		{dal.FieldGasPrice, r.UpfrontGas},
		{dal.FieldCGas, r.EnergyGas},
		{dal.FieldGasPrice, r.ResaleGas},
	}

	var fields []dal.Field
	add := func(f dal.Field) {
		for _, seen := range fields {
			if seen == f {
				return
			}
		}
		fields = append(fields, f)
	}

	if !finite(r.KmTotal) {
		add(dal.FieldAnnualMileage)
	}
	if !finite(r.TCOEV) {
		add(largest(evTerms))
	}
	if !finite(r.TCOGas) {
		add(largest(gasTerms))
	}
	if !finite(r.DiffTCO) && finite(r.TCOEV) && finite(r.TCOGas) {
		if math.Abs(r.TCOEV) >= math.Abs(r.TCOGas) {
			add(largest(evTerms))
		} else {
			add(largest(gasTerms))
		}
	}
	// finite costs over a tiny distance
	if (!finite(r.CPKEV) && finite(r.TCOEV)) || (!finite(r.CPKGas) && finite(r.TCOGas)) {
		add(dal.FieldAnnualMileage)
	}

	if len(fields) == 0 {
		return nil
	}
	verrs := make(validate.ValidationErrors, 0, len(fields))
	for _, f := range fields {
		verrs = append(verrs, validate.Violation{Field: f, Message: MsgOverflow})
	}
	return verrs
}

func finite(v float64) bool { return !math.IsNaN(v) && !math.IsInf(v, 0) }

func largest(terms []term) dal.Field {
	best := terms[0]
	for _, t := range terms[1:] {
		if math.IsNaN(t.value) || math.Abs(t.value) > math.Abs(best.value) {
			best = t
		}
	}
	return best.field
}

// BreakdownOf lists the cost lines behind r. Resale is shown as a negative amount.
func BreakdownOf(r dal.TCOResult) dal.Breakdown {
	return dal.Breakdown{
		EV: dal.VehicleBreakdown{
			Items: []dal.LineItem{
				{Label: "Upfront (after incentive)", Amount: r.UpfrontEV},
				{Label: "Energy (total)", Amount: r.EnergyEV},
				{Label: "Maint. delta (total)", Amount: r.MaintDelta},
				{Label: "Resale", Amount: -r.ResaleEV},
			},
			Total: r.TCOEV,
		},
		Gas: dal.VehicleBreakdown{
			Items: []dal.LineItem{
				{Label: "Upfront", Amount: r.UpfrontGas},
				{Label: "Energy (total)", Amount: r.EnergyGas},
				{Label: "Maint. baseline", Amount: 0},
				{Label: "Resale", Amount: -r.ResaleGas},
			},
			Total: r.TCOGas,
		},
	}
}
