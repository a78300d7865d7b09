package dal

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWith_CopiesAndLeavesReceiver(t *testing.T) {
	base := Defaults()

	next, err := base.With(FieldYears, 8)
	require.NoError(t, err)

	assert.Equal(t, float64(8), next.Years)
	assert.Equal(t, float64(5), base.Years)
	assert.Equal(t, Defaults(), base)
}

func TestWith_EveryField(t *testing.T) {
	for i, f := range Fields() {
		t.Run(string(f), func(t *testing.T) {
			p, err := Defaults().With(f, float64(1000+i))
			require.NoError(t, err)

			got, ok := p.Get(f)
			require.True(t, ok)
			assert.Equal(t, float64(1000+i), got)
			assert.Equal(t, float64(1000+i), p.Values()[i])
		})
	}
}

func TestWith_UnknownField(t *testing.T) {
	p, err := Defaults().With(Field("tyrePressure"), 2)
	assert.True(t, errors.Is(err, ErrUnknownField))
	assert.Equal(t, Defaults(), p)

	_, ok := p.Get(Field("tyrePressure"))
	assert.False(t, ok)
}

func TestVerdictOf(t *testing.T) {
	assert.Equal(t, VerdictEVSaves, VerdictOf(-25000))
	assert.Equal(t, VerdictEVCostsMore, VerdictOf(0.01))
	assert.Equal(t, VerdictBreakEven, VerdictOf(0))
}
