package cmd

import (
	"github.com/CraigKelly/paraminsight/model"
)

// SynthOutput simulates observations of the configured model at the true
// parameters and writes them in the observation file format
func SynthOutput(sp *startupParams) error {
	m, err := model.ModelByName(sp.cfg.Model)
	if err != nil {
		return err
	}

	obs, err := synthesize(sp, m, sp.cfg.Truth)
	if err != nil {
		return err
	}

	target := sp.out
	if sp.trace != nil {
		sp.out.Printf("Writing %d observations to trace file %v\n", obs.Len(), sp.cfg.TraceFile)
		target = sp.trace
	}

	return model.WriteObservations(target.Writer(), obs)
}
