package model

import (
	"math"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
)

func TestObservationSetValid(t *testing.T) {
	assert := assert.New(t)

	x := []float64{1, 2}
	obs, err := NewObservationSet(x, []float64{3, 4}, []float64{0.1, 0.2})
	assert.NoError(err)
	assert.Equal(2, obs.Len())

	// Constructor copies, accessors copy
	x[0] = 99
	assert.Equal([]float64{1, 2}, obs.X())
	got := obs.DY()
	got[0] = -1
	assert.Equal([]float64{0.1, 0.2}, obs.DY())

	px, py, pdy := obs.Point(1)
	assert.Equal(2.0, px)
	assert.Equal(4.0, py)
	assert.Equal(0.2, pdy)
	assert.Equal([]float64{3, 4}, obs.Y())
}

func TestObservationSetInvalid(t *testing.T) {
	assert := assert.New(t)

	cases := []struct {
		name     string
		x, y, dy []float64
		expIndex int
	}{
		{"empty", nil, nil, nil, -1},
		{"mismatch y", []float64{1, 2}, []float64{1}, []float64{1, 1}, -1},
		{"mismatch dy", []float64{1, 2}, []float64{1, 2}, []float64{1}, -1},
		{"zero dy", []float64{1, 2}, []float64{1, 2}, []float64{1, 0}, 1},
		{"negative dy", []float64{1, 2}, []float64{1, 2}, []float64{-1, 1}, 0},
		{"nan dy", []float64{1}, []float64{1}, []float64{math.NaN()}, 0},
		{"inf y", []float64{1}, []float64{math.Inf(1)}, []float64{1}, 0},
	}

	for _, c := range cases {
		obs, err := NewObservationSet(c.x, c.y, c.dy)
		assert.Nil(obs, c.name)
		assert.Error(err, c.name)

		var oe *ObservationError
		if assert.True(errors.As(err, &oe), c.name) {
			assert.Equal(c.expIndex, oe.Index, c.name)
		}
	}

	var nilObs *ObservationSet
	assert.Error(nilObs.Check())
}
