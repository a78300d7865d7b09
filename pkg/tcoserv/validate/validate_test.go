package validate

import (
	"errors"
	"fmt"
	"math"
	"testing"

	"github.com/nekruzvatanshoev/tcoserv/pkg/tcoserv/dal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func with(t *testing.T, p dal.InputParameters, field dal.Field, value float64) dal.InputParameters {
	t.Helper()
	out, err := p.With(field, value)
	require.NoError(t, err)
	return out
}

func TestValidate_Defaults(t *testing.T) {
	p, err := Validate(dal.Defaults())
	require.NoError(t, err)
	assert.Equal(t, dal.Defaults(), p)
}

func TestValidate_Boundaries(t *testing.T) {
	tests := []struct {
		name    string
		field   dal.Field
		value   float64
		wantErr bool
	}{
		{"years zero", dal.FieldYears, 0, true},
		{"years min", dal.FieldYears, 1, false},
		{"years max", dal.FieldYears, 20, false},
		{"years above max", dal.FieldYears, 21, true},
		{"mileage zero", dal.FieldAnnualMileage, 0, false},
		{"mileage max", dal.FieldAnnualMileage, 100000, false},
		{"mileage above max", dal.FieldAnnualMileage, 100000.5, true},
		{"mileage negative", dal.FieldAnnualMileage, -1, true},
		{"gas price zero", dal.FieldGasPrice, 0, false},
		{"gas price negative", dal.FieldGasPrice, -1, true},
		{"incentive negative", dal.FieldEVIncentive, -1, true},
		{"cEV max", dal.FieldCEV, 100, false},
		{"cEV above max", dal.FieldCEV, 101, true},
		{"cGas negative", dal.FieldCGas, -0.1, true},
		{"maint delta very negative", dal.FieldMaintDeltaPerYear, -1e9, false},
		{"maint delta positive", dal.FieldMaintDeltaPerYear, 1e9, false},
		{"resale ev max", dal.FieldResalePctEV, 100, false},
		{"resale ev above max", dal.FieldResalePctEV, 100.1, true},
		{"resale gas negative", dal.FieldResalePctGas, -5, true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Validate(with(t, dal.Defaults(), tc.field, tc.value))
			if !tc.wantErr {
				assert.NoError(t, err)
				return
			}
			verrs, ok := IsValidationError(err)
			require.True(t, ok, "expected ValidationErrors, got %v", err)
			require.Len(t, verrs, 1)
			assert.Equal(t, tc.field, verrs[0].Field)
		})
	}
}

func TestValidate_IncentiveEqualsPrice(t *testing.T) {
	p := with(t, dal.Defaults(), dal.FieldEVIncentive, dal.Defaults().EVPrice)
	_, err := Validate(p)
	assert.NoError(t, err)
}

func TestValidate_IncentiveAbovePrice(t *testing.T) {
	for _, incentive := range []float64{dal.Defaults().EVPrice + 1, 3500000} {
		t.Run(fmt.Sprintf("%g", incentive), func(t *testing.T) {
			_, err := Validate(with(t, dal.Defaults(), dal.FieldEVIncentive, incentive))

			verrs, ok := IsValidationError(err)
			require.True(t, ok)
			require.Len(t, verrs, 1)
			assert.Equal(t, dal.FieldEVIncentive, verrs[0].Field)
			assert.Equal(t, MsgIncentiveExceedsPrice, verrs[0].Message)
		})
	}
}

func TestValidate_CollectsAllViolations(t *testing.T) {
	p := dal.Defaults()
	p = with(t, p, dal.FieldYears, 0)
	p = with(t, p, dal.FieldCEV, 500)
	p = with(t, p, dal.FieldEVPrice, 100)
	p = with(t, p, dal.FieldResalePctGas, -1)

	out, err := Validate(p)
	assert.Equal(t, dal.InputParameters{}, out)

	verrs, ok := IsValidationError(err)
	require.True(t, ok)
	assert.Equal(t, []dal.Field{
		dal.FieldCEV,
		dal.FieldResalePctGas,
		dal.FieldYears,
		dal.FieldEVIncentive,
	}, verrs.Fields())
	assert.Equal(t, MsgIncentiveExceedsPrice, verrs[len(verrs)-1].Message)
}

func TestValidate_NonFinite(t *testing.T) {
	fields := []dal.Field{dal.FieldMaintDeltaPerYear, dal.FieldEVPrice, dal.FieldEVIncentive}
	for _, field := range fields {
		for _, v := range []float64{math.NaN(), math.Inf(1), math.Inf(-1)} {
			t.Run(fmt.Sprintf("%s=%v", field, v), func(t *testing.T) {
				_, err := Validate(with(t, dal.Defaults(), field, v))

				// no cross-field violation piles up on top of the non-finite one
				verrs, ok := IsValidationError(err)
				require.True(t, ok)
				require.Len(t, verrs, 1, "got %v", verrs)
				assert.Equal(t, field, verrs[0].Field)
				assert.Equal(t, MsgNotFinite, verrs[0].Message)
			})
		}
	}
}

func TestValidationErrors_Error(t *testing.T) {
	verrs := ValidationErrors{
		{Field: dal.FieldYears, Message: "must be greater than or equal to 1"},
		{Field: dal.FieldEVIncentive, Message: MsgIncentiveExceedsPrice},
	}

	assert.Equal(t,
		"invalid input: years: must be greater than or equal to 1; evIncentive: Incentive cannot exceed EV price",
		verrs.Error())

	wrapped := fmt.Errorf("calc request: %w", verrs)
	got, ok := IsValidationError(wrapped)
	require.True(t, ok)
	assert.Equal(t, verrs, got)

	_, ok = IsValidationError(errors.New("boom"))
	assert.False(t, ok)
}

func TestValidate_NegativeEVPrice(t *testing.T) {
	p := with(t, dal.Defaults(), dal.FieldEVPrice, -1)
	p = with(t, p, dal.FieldEVIncentive, -1)

	_, err := Validate(p)
	verrs, ok := IsValidationError(err)
	require.True(t, ok)
	assert.Equal(t, []dal.Field{dal.FieldEVPrice, dal.FieldEVIncentive}, verrs.Fields())
	assert.Len(t, verrs, 2)
}
