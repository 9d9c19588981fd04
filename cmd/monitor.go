package cmd

import (
	"expvar"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/pkg/errors"

	"github.com/CraigKelly/paraminsight/sampler"
)

// monitor publishes sampler progress with expvar over HTTP. It doubles as a
// sampler.Observer. expvar names are process global, so a process may only
// start one monitor.
type monitor struct {
	info    *expvar.Map
	stopped chan struct{}
	server  *http.Server
	started time.Time

	TotalSteps *expvar.Int
	Chains     *expvar.Int
	Step       *expvar.Int
	Proposed   *expvar.Int
	Accepted   *expvar.Int
	Rejected   *expvar.Int
	Invalid    *expvar.Int
	AcceptRate *expvar.Float
	RunTime    *expvar.Float

	LastA    *expvar.Float
	LastB    *expvar.Float
	LastLogL *expvar.Float
}

// Start begins the monitor on addr (like ":8000")
func (m *monitor) Start(addr string) error {
	if m.info != nil {
		return errors.Errorf("BUG: You may only start the process monitor once")
	}

	m.info = expvar.NewMap("paraminsight-progress")
	m.stopped = make(chan struct{})
	m.started = time.Now()
	m.server = &http.Server{
		Addr: addr,
	}

	// Help the user and redirect to the only thing currently available:
	// the handler from the expvar package
	http.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/debug/vars", http.StatusTemporaryRedirect)
	})

	m.TotalSteps = expvar.NewInt("Total-Steps")
	m.Chains = expvar.NewInt("Chain-Count")
	m.Step = expvar.NewInt("Step")
	m.Proposed = expvar.NewInt("Proposed")
	m.Accepted = expvar.NewInt("Accepted")
	m.Rejected = expvar.NewInt("Rejected")
	m.Invalid = expvar.NewInt("Invalid-Proposals")
	m.AcceptRate = expvar.NewFloat("Acceptance-Rate")
	m.RunTime = expvar.NewFloat("Run-Time")

	m.LastA = expvar.NewFloat("Last-A")
	m.LastB = expvar.NewFloat("Last-B")
	m.LastLogL = expvar.NewFloat("Last-LogL")

	// Actual server that will close the stopped channel on exit
	started := make(chan struct{})
	go func() {
		defer close(m.stopped)
		fmt.Fprintf(os.Stderr, "HTTP now available at %v (see debug/vars/)\n", m.server.Addr)
		close(started)
		m.server.ListenAndServe()
	}()

	<-started
	return nil
}

// SetRun records which fit is running and how big it is
func (m *monitor) SetRun(name string, steps int, chains int) {
	if m.info == nil {
		return
	}

	cur := new(expvar.String)
	cur.Set(name)
	m.info.Set("Model", cur)

	m.TotalSteps.Set(int64(steps))
	m.Chains.Set(int64(chains))
}

// Observe implements sampler.Observer
func (m *monitor) Observe(step int, rec sampler.Record, stats sampler.Stats) {
	if m.info == nil {
		return
	}

	m.Step.Set(int64(step))
	m.Proposed.Set(stats.Proposed)
	m.Accepted.Set(stats.Accepted)
	m.Rejected.Set(stats.Rejected)
	m.Invalid.Set(stats.Invalid)
	m.AcceptRate.Set(stats.AcceptanceRate())
	m.RunTime.Set(time.Since(m.started).Seconds())

	m.LastA.Set(rec.A)
	m.LastB.Set(rec.B)
	m.LastLogL.Set(rec.LogL)
}

func (m *monitor) Stop() {
	if m.info == nil {
		return
	}

	m.server.Close()

	select {
	case <-m.stopped:
		fmt.Fprintf(os.Stderr, "HTTP Info Stopped\n")
	case <-time.After(2 * time.Second):
		fmt.Fprintf(os.Stderr, "HTTP would NOT stop: just continuing on\n")
	}
}
