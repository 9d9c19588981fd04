package sampler

import (
	"math"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/stat"

	"github.com/CraigKelly/paraminsight/buffer"
	"github.com/CraigKelly/paraminsight/model"
)

// WindowDrift is a cheap convergence check over the last window records: the
// difference between the means of the newer and older halves of the window,
// in units of the whole window's standard deviation. Values near zero suggest
// the chain has stopped trending. A parameter that never moved in the window
// has a drift of zero.
func WindowDrift(records []Record, window int) (model.Params, error) {
	histA := buffer.NewCircular[float64](window)
	histB := buffer.NewCircular[float64](window)
	if len(records) < histA.BufSize {
		return model.Params{}, errors.Errorf("Need %d records for drift, found %d", histA.BufSize, len(records))
	}

	for _, r := range records[len(records)-histA.BufSize:] {
		histA.Add(r.A)
		histB.Add(r.B)
	}

	return model.Params{A: halfDrift(histA), B: halfDrift(histB)}, nil
}

func halfDrift(hist *buffer.Circular[float64]) float64 {
	first := make([]float64, 0, hist.BufSize/2)
	for iter := hist.FirstHalf(); iter.Next(); {
		first = append(first, iter.Value())
	}
	second := make([]float64, 0, hist.BufSize/2)
	for iter := hist.SecondHalf(); iter.Next(); {
		second = append(second, iter.Value())
	}

	_, std := stat.MeanStdDev(append(append([]float64{}, first...), second...), nil)
	if std == 0 || math.IsNaN(std) {
		return 0
	}

	return (stat.Mean(second, nil) - stat.Mean(first, nil)) / std
}
