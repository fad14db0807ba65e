package numeric

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"k8s.io/utils/ptr"
)

func f(v float64) *float64 { return ptr.To(v) }

func TestRelHumidity(t *testing.T) {
	rh := RelHumidity(f(23.0), f(21.5))
	assert.NotNil(t, rh)
	assert.InDelta(t, 91.6, *rh, 1.0)
}

func TestRelHumidity_negativeTemp(t *testing.T) {
	rh := RelHumidity(f(-5.5), f(-3.2))
	assert.NotNil(t, rh)
}

func TestRelHumidity_nilInputs(t *testing.T) {
	assert.Nil(t, RelHumidity(nil, f(1)))
	assert.Nil(t, RelHumidity(f(1), nil))
	assert.Nil(t, RelHumidity(nil, nil))
}

func TestQFF_withTemperature(t *testing.T) {
	p := QFF(f(1012.3), f(23.0), f(50), f(52.0))
	assert.NotNil(t, p)
	assert.Greater(t, *p, 1012.3)
}

func TestQFF_missingTemperatureFallsBackToQNH(t *testing.T) {
	withTemp := QFF(f(1000), f(15), f(100), f(45))
	withoutTemp := QFF(f(1000), nil, f(100), f(45))
	assert.NotNil(t, withTemp)
	assert.NotNil(t, withoutTemp)
	assert.NotEqual(t, *withTemp, *withoutTemp)
}

func TestQFF_nilWhenLocationMissing(t *testing.T) {
	assert.Nil(t, QFF(f(1000), f(15), nil, f(45)))
	assert.Nil(t, QFF(f(1000), f(15), f(100), nil))
	assert.Nil(t, QFF(nil, f(15), f(100), f(45)))
}

func TestQFF_seaLevelStationIsStable(t *testing.T) {
	p := QFF(f(1013.25), f(15), f(0), f(0))
	assert.NotNil(t, p)
	assert.InDelta(t, 1013.25, *p, 0.5)
}
