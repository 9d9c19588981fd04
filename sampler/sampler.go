package sampler

// A Sampler produces a chain of parameter positions from its target
type Sampler interface {
	Run() (*Chain, error)
}

// An Observer is told about every step a sampler takes, on the sampler's own
// goroutine and before the next step starts. Step 0 is the initial state.
type Observer interface {
	Observe(step int, rec Record, stats Stats)
}

// ObserverFunc adapts a function to the Observer interface
type ObserverFunc func(step int, rec Record, stats Stats)

// Observe implements Observer
func (f ObserverFunc) Observe(step int, rec Record, stats Stats) {
	f(step, rec, stats)
}

// Observers fans one step out to several observers in order
type Observers []Observer

// Observe implements Observer
func (obs Observers) Observe(step int, rec Record, stats Stats) {
	for _, o := range obs {
		if o != nil {
			o.Observe(step, rec, stats)
		}
	}
}
